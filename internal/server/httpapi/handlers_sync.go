package httpapi

import (
	"net/http"
	"time"

	"github.com/kotirearend/giglog/internal/common"
	"github.com/kotirearend/giglog/internal/server/models"
	"github.com/kotirearend/giglog/internal/server/services"
)

type pushRequest struct {
	Gigs   []*models.Gig    `json:"gigs"`
	Venues []*models.Venue  `json:"venues"`
	People []*models.Person `json:"people"`
}

type pullResponse struct {
	Gigs   []*models.Gig    `json:"gigs"`
	Venues []*models.Venue  `json:"venues"`
	People []*models.Person `json:"people"`
}

func (s *Server) handlePush(w http.ResponseWriter, r *http.Request) {
	var req pushRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	err := s.sync.Push(r.Context(), userID(r), &services.PushBatch{
		Gigs:   req.Gigs,
		Venues: req.Venues,
		People: req.People,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePull(w http.ResponseWriter, r *http.Request) {
	sinceParam := r.URL.Query().Get("since")
	if sinceParam == "" {
		writeError(w, common.ErrorValidation)
		return
	}
	since, err := time.Parse(time.RFC3339Nano, sinceParam)
	if err != nil {
		writeError(w, common.ErrorValidation)
		return
	}

	result, err := s.sync.Pull(r.Context(), userID(r), since)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := pullResponse{Gigs: result.Gigs, Venues: result.Venues, People: result.People}
	if resp.Gigs == nil {
		resp.Gigs = []*models.Gig{}
	}
	if resp.Venues == nil {
		resp.Venues = []*models.Venue{}
	}
	if resp.People == nil {
		resp.People = []*models.Person{}
	}
	writeJSON(w, http.StatusOK, resp)
}
