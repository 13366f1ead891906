package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kotirearend/giglog/internal/common"
	"github.com/kotirearend/giglog/internal/server/models"
	"github.com/kotirearend/giglog/internal/server/repositories/gigs"
)

func (s *Server) handleCreateGig(w http.ResponseWriter, r *http.Request) {
	var gig models.Gig
	if err := decodeBody(r, &gig); err != nil {
		writeError(w, err)
		return
	}
	created, err := s.gigs.Create(r.Context(), userID(r), &gig)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateGig(w http.ResponseWriter, r *http.Request) {
	var gig models.Gig
	if err := decodeBody(r, &gig); err != nil {
		writeError(w, err)
		return
	}
	updated, err := s.gigs.Update(r.Context(), userID(r), chi.URLParam(r, "id"), &gig)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteGig(w http.ResponseWriter, r *http.Request) {
	if err := s.gigs.Delete(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetGig(w http.ResponseWriter, r *http.Request) {
	gig, err := s.gigs.Get(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, gig)
}

func (s *Server) handleListGigs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := gigs.ListFilter{
		Artist:  q.Get("artist"),
		VenueID: q.Get("venue_id"),
		Search:  q.Get("search"),
	}
	if year := q.Get("year"); year != "" {
		n, err := strconv.Atoi(year)
		if err != nil {
			writeError(w, fmt.Errorf("%w: bad year", common.ErrorValidation))
			return
		}
		filter.Year = n
	}

	list, err := s.gigs.List(r.Context(), userID(r), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []*models.Gig{}
	}
	writeJSON(w, http.StatusOK, list)
}
