package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/splits/internal/ingest"
	"github.com/meltforce/splits/internal/storage"
)

// maxImportBytes caps the size of an uploaded split file.
const maxImportBytes = 1 << 20

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	id, ok := trainingID(w, r)
	if !ok {
		return
	}

	start := time.Now()
	result, err := s.splits.Ingest(r.Context(), http.MaxBytesReader(w, r.Body, maxImportBytes), id)
	s.logImport(id, "http", result, err, int(time.Since(start).Milliseconds()))
	if err != nil {
		s.log.Error("split import error", "training", id, "error", err)
		s.writeImportError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) writeImportError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	switch {
	case isNotFound(err):
		status = http.StatusNotFound
	case isConflict(err):
		status = http.StatusConflict
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) handleImportLogs(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	logs, err := s.importLogs.QueryImportLogs(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

// logImport records an import operation's result to the import_logs table.
func (s *Server) logImport(trainingID uuid.UUID, source string, result *ingest.Result, importErr error, durationMs int) {
	if result == nil {
		result = &ingest.Result{}
	}
	status := "success"
	var errMsg *string
	if importErr != nil {
		status = "error"
		msg := importErr.Error()
		errMsg = &msg
	}

	log := storage.ImportLog{
		TrainingID:       trainingID,
		Source:           source,
		Status:           status,
		SegmentsReceived: result.SegmentsReceived,
		SegmentsAdded:    result.SegmentsAdded,
		SegmentsInvalid:  result.SegmentsInvalid,
		DurationMs:       &durationMs,
		ErrorMessage:     errMsg,
	}

	ctx, cancel := contextWithTimeout()
	defer cancel()

	if _, err := s.importLogs.InsertImportLog(ctx, log); err != nil {
		s.log.Error("failed to log import", "source", source, "error", err)
	}
}

// contextWithTimeout returns a background context with a 5-second timeout for import logging.
func contextWithTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second) //nolint:mnd
}
