package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kotirearend/giglog/internal/server/models"
)

func (s *Server) handleListVenues(w http.ResponseWriter, r *http.Request) {
	venues, err := s.library.Venues(r.Context(), userID(r), r.URL.Query().Get("search"))
	if err != nil {
		writeError(w, err)
		return
	}
	if venues == nil {
		venues = []*models.Venue{}
	}
	writeJSON(w, http.StatusOK, venues)
}

func (s *Server) handleCreateVenue(w http.ResponseWriter, r *http.Request) {
	var venue models.Venue
	if err := decodeBody(r, &venue); err != nil {
		writeError(w, err)
		return
	}
	created, err := s.library.CreateVenue(r.Context(), userID(r), &venue)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListPeople(w http.ResponseWriter, r *http.Request) {
	people, err := s.library.People(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	if people == nil {
		people = []*models.Person{}
	}
	writeJSON(w, http.StatusOK, people)
}

func (s *Server) handleCreatePerson(w http.ResponseWriter, r *http.Request) {
	var person models.Person
	if err := decodeBody(r, &person); err != nil {
		writeError(w, err)
		return
	}
	created, err := s.library.CreatePerson(r.Context(), userID(r), &person)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdatePerson(w http.ResponseWriter, r *http.Request) {
	var person models.Person
	if err := decodeBody(r, &person); err != nil {
		writeError(w, err)
		return
	}
	updated, err := s.library.UpdatePerson(r.Context(), userID(r), chi.URLParam(r, "id"), &person)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
