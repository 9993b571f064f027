package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/meltforce/splits/internal/models"
)

type createTrainingRequest struct {
	Name     string           `json:"name"`
	Date     string           `json:"date"`
	Notes    string           `json:"notes"`
	Segments []models.Segment `json:"segments"`
}

func (s *Server) handleListTrainings(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateTraining(w http.ResponseWriter, r *http.Request) {
	var req createTrainingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	detail, err := s.svc.Create(r.Context(), models.Training{
		Name:     req.Name,
		Date:     date,
		Notes:    req.Notes,
		Segments: req.Segments,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, detail)
}

func (s *Server) handleGetTraining(w http.ResponseWriter, r *http.Request) {
	id, ok := trainingID(w, r)
	if !ok {
		return
	}
	detail, err := s.svc.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleDeleteTraining(w http.ResponseWriter, r *http.Request) {
	id, ok := trainingID(w, r)
	if !ok {
		return
	}
	if err := s.svc.Delete(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTrainingTotal(w http.ResponseWriter, r *http.Request) {
	id, ok := trainingID(w, r)
	if !ok {
		return
	}
	total, err := s.svc.Total(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, total)
}

func (s *Server) handleAddSegment(w http.ResponseWriter, r *http.Request) {
	id, ok := trainingID(w, r)
	if !ok {
		return
	}
	seg, ok := decodeSegment(w, r)
	if !ok {
		return
	}

	overwrite := r.URL.Query().Get("overwrite_id") == "true"
	added, err := s.svc.AddSegment(r.Context(), id, seg, overwrite)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

func (s *Server) handleUpdateSegment(w http.ResponseWriter, r *http.Request) {
	id, ok := trainingID(w, r)
	if !ok {
		return
	}
	seg, ok := decodeSegment(w, r)
	if !ok {
		return
	}
	seg.ID = chi.URLParam(r, "segmentID")

	updated, err := s.svc.UpdateSegment(r.Context(), id, seg)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleRemoveSegment(w http.ResponseWriter, r *http.Request) {
	id, ok := trainingID(w, r)
	if !ok {
		return
	}
	if err := s.svc.RemoveSegment(r.Context(), id, chi.URLParam(r, "segmentID")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSegmentDirty(w http.ResponseWriter, r *http.Request) {
	id, ok := trainingID(w, r)
	if !ok {
		return
	}
	seg, ok := decodeSegment(w, r)
	if !ok {
		return
	}
	seg.ID = chi.URLParam(r, "segmentID")

	dirty, err := s.svc.IsDirty(r.Context(), id, seg)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"dirty": dirty})
}

// trainingID parses the {id} URL parameter, writing a 400 on failure.
func trainingID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid training ID"})
		return uuid.Nil, false
	}
	return id, true
}

func decodeSegment(w http.ResponseWriter, r *http.Request) (models.Segment, bool) {
	var seg models.Segment
	if err := json.NewDecoder(r.Body).Decode(&seg); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return models.Segment{}, false
	}
	return seg, true
}

// parseDate accepts RFC3339 or YYYY-MM-DD. Empty means today (UTC).
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Now().UTC().Truncate(24 * time.Hour), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD or RFC3339", s)
	}
	return t, nil
}
