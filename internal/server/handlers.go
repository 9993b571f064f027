package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/meltforce/splits/internal/models"
	"github.com/meltforce/splits/internal/pace"
	"github.com/meltforce/splits/internal/segment"
	"github.com/meltforce/splits/internal/storage"
)

func (s *Server) handleAugment(w http.ResponseWriter, r *http.Request) {
	var seg models.Segment
	if err := json.NewDecoder(r.Body).Decode(&seg); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, segment.Augment(seg))
}

func (s *Server) handleTotal(w http.ResponseWriter, r *http.Request) {
	var segs []models.Segment
	if err := json.NewDecoder(r.Body).Decode(&segs); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, segment.MakeTotal(segs))
}

func (s *Server) handleNamedPaces(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, pace.NamedPaces())
}

func (s *Server) handleResolvePace(w http.ResponseWriter, r *http.Request) {
	p := r.URL.Query().Get("pace")
	if p == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "pace parameter required"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"pace": p, "resolved": pace.Resolve(p)})
}

func (s *Server) handlePace400(w http.ResponseWriter, r *http.Request) {
	p := r.URL.Query().Get("pace")
	if p == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "pace parameter required"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"pace": pace.Resolve(p), "pace_400": pace.Pace400(p)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case isNotFound(err):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case isConflict(err):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		s.log.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound) || errors.Is(err, segment.ErrNotFound)
}

func isConflict(err error) bool {
	return errors.Is(err, storage.ErrVersionConflict)
}
