package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/meltforce/splits/internal/ingest"
	"github.com/meltforce/splits/internal/ingest/splitcsv"
	"github.com/meltforce/splits/internal/models"
	"github.com/meltforce/splits/internal/storage"
	"github.com/meltforce/splits/internal/training"
)

const testAPIKey = "test-key"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	db, err := storage.OpenLite(filepath.Join(t.TempDir(), "splits.db"))
	if err != nil {
		t.Fatalf("OpenLite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := training.NewService(db, log)
	return New(svc, splitcsv.NewProvider(svc, log), db, testAPIKey, log)
}

// do sends a request through the full router. Writes carry the API key.
func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("X-API-Key", testAPIKey)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode error: %v (body %q)", err, rec.Body.String())
	}
	return v
}

// TestHandleAugment verifies the stateless augment endpoint resolves named
// paces and derives the missing duration.
func TestHandleAugment(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/api/v1/segments/augment", `{"distance":10,"pace":"@EASY"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}
	got := decode[models.Segment](t, rec)
	if got.Duration != "00:51:40" || got.Pace != "05:10" || !got.IsValid {
		t.Errorf("segment = %+v", got)
	}
}

// TestHandleAugmentBadJSON verifies malformed bodies are rejected with 400.
func TestHandleAugmentBadJSON(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/api/v1/segments/augment", `{"distance":`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// TestHandleTotal verifies aggregation over a posted list, including the empty list.
func TestHandleTotal(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/v1/segments/total",
		`[{"distance":5,"duration":"00:25:00"},{"distance":5,"duration":"00:25:00"}]`)
	got := decode[models.Total](t, rec)
	if got != (models.Total{Distance: 10, Duration: "00:50:00", Pace: "05:00"}) {
		t.Errorf("total = %+v", got)
	}

	rec = do(t, s, http.MethodPost, "/api/v1/segments/total", `[]`)
	if got := decode[models.Total](t, rec); got != models.ZeroTotal() {
		t.Errorf("empty total = %+v", got)
	}
}

// TestHandlePaces verifies the vocabulary listing and the resolve and 400m helpers.
func TestHandlePaces(t *testing.T) {
	s := newTestServer(t)

	paces := decode[map[string]string](t, do(t, s, http.MethodGet, "/api/v1/paces", ""))
	if paces["@MP"] != "04:05" || len(paces) != 12 {
		t.Errorf("paces = %v", paces)
	}

	resolved := decode[map[string]string](t, do(t, s, http.MethodGet, "/api/v1/paces/resolve?pace=%40LT", ""))
	if resolved["resolved"] != "03:49" {
		t.Errorf("resolve = %v", resolved)
	}

	lap := decode[map[string]string](t, do(t, s, http.MethodGet, "/api/v1/paces/400?pace=05:00", ""))
	if lap["pace_400"] != "02:00" {
		t.Errorf("pace400 = %v", lap)
	}

	if rec := do(t, s, http.MethodGet, "/api/v1/paces/400", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("missing pace status = %d, want 400", rec.Code)
	}
}

// TestTrainingLifecycle drives create, add, update, dirty, total and delete
// through the router.
func TestTrainingLifecycle(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/v1/trainings",
		`{"name":"Intervals","date":"2026-05-04","segments":[{"distance":2,"pace":"@EASY"}]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body)
	}
	created := decode[training.Detail](t, rec)
	base := "/api/v1/trainings/" + created.ID.String()

	rec = do(t, s, http.MethodPost, base+"/segments", `{"distance":1,"pace":"@5KP"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add status = %d: %s", rec.Code, rec.Body)
	}
	added := decode[models.Segment](t, rec)
	if added.ID == "" || added.Duration != "00:03:30" {
		t.Fatalf("added = %+v", added)
	}

	rec = do(t, s, http.MethodPost, base+"/segments/"+added.ID+"/dirty", `{"distance":1,"duration":"00:03:30","pace":"03:30"}`)
	if got := decode[map[string]bool](t, rec); got["dirty"] {
		t.Errorf("dirty = true for unchanged segment")
	}

	rec = do(t, s, http.MethodPut, base+"/segments/"+added.ID, `{"distance":2,"pace":"03:30"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", rec.Code, rec.Body)
	}
	if got := decode[models.Segment](t, rec); got.Duration != "00:07:00" || got.ID != added.ID {
		t.Errorf("updated = %+v", got)
	}

	rec = do(t, s, http.MethodGet, base+"/total", "")
	if got := decode[models.Total](t, rec); got != (models.Total{Distance: 4, Duration: "00:17:20", Pace: "04:20"}) {
		t.Errorf("total = %+v", got)
	}

	rec = do(t, s, http.MethodGet, base, "")
	detail := decode[training.Detail](t, rec)
	if detail.Version != 3 || len(detail.Segments) != 2 || detail.Total.Distance != 4 {
		t.Errorf("detail = %+v", detail)
	}

	if rec := do(t, s, http.MethodDelete, base+"/segments/"+added.ID, ""); rec.Code != http.StatusNoContent {
		t.Errorf("remove status = %d", rec.Code)
	}
	if rec := do(t, s, http.MethodDelete, base, ""); rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, base, ""); rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", rec.Code)
	}
}

// TestUpdateUnknownSegmentReturns404 verifies the not-found contract of update
// at the HTTP layer.
func TestUpdateUnknownSegmentReturns404(t *testing.T) {
	s := newTestServer(t)
	created := decode[training.Detail](t, do(t, s, http.MethodPost, "/api/v1/trainings", `{"name":"Easy"}`))

	rec := do(t, s, http.MethodPut, "/api/v1/trainings/"+created.ID.String()+"/segments/missing", `{"distance":1,"pace":"05:00"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

// TestWritesRequireAPIKey verifies mutating routes are protected while reads are open.
func TestWritesRequireAPIKey(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/trainings", strings.NewReader(`{"name":"x"}`))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("create without key status = %d, want 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/trainings", nil)
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("list without key status = %d, want 200", rec.Code)
	}
}

// TestInvalidTrainingID verifies non-UUID identifiers are rejected with 400.
func TestInvalidTrainingID(t *testing.T) {
	s := newTestServer(t)
	if rec := do(t, s, http.MethodGet, "/api/v1/trainings/not-a-uuid", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// TestHandleImport verifies CSV import through the API and that it is logged.
func TestHandleImport(t *testing.T) {
	s := newTestServer(t)
	created := decode[training.Detail](t, do(t, s, http.MethodPost, "/api/v1/trainings", `{"name":"Imported"}`))

	body := "#;DISTANCE;DURATION;PACE\n1;2;;@EASY\n2;;00:03:30;03:30\n"
	rec := do(t, s, http.MethodPost, "/api/v1/trainings/"+created.ID.String()+"/import", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	result := decode[ingest.Result](t, rec)
	if result.SegmentsAdded != 2 || result.SegmentsValid != 2 {
		t.Errorf("result = %+v", result)
	}

	logs := decode[[]storage.ImportLog](t, do(t, s, http.MethodGet, "/api/v1/import-logs", ""))
	if len(logs) != 1 || logs[0].Status != "success" || logs[0].TrainingID != created.ID {
		t.Errorf("logs = %+v", logs)
	}
}

// TestHandleImportUnknownTraining verifies a missing training yields 404 and an error log.
func TestHandleImportUnknownTraining(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/api/v1/trainings/"+uuid.NewString()+"/import", "1;;05:00\n")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404: %s", rec.Code, rec.Body)
	}

	logs := decode[[]storage.ImportLog](t, do(t, s, http.MethodGet, "/api/v1/import-logs", ""))
	if len(logs) != 1 || logs[0].Status != "error" {
		t.Errorf("logs = %+v", logs)
	}
}
