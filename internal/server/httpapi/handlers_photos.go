package httpapi

import (
	"net/http"

	"github.com/kotirearend/giglog/internal/common"
)

func (s *Server) handlePhotoUploadURL(w http.ResponseWriter, r *http.Request) {
	key, url, err := s.photos.GetPresignedPutUrl(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": key, "url": url})
}

func (s *Server) handlePhotoDownloadURL(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		writeError(w, common.ErrorValidation)
		return
	}
	url, err := s.photos.GetPresignedGetUrl(r.Context(), key)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}
