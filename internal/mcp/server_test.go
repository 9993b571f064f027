package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/meltforce/splits/internal/models"
	"github.com/meltforce/splits/internal/storage"
)

// fakeSource is an in-memory DataSource.
type fakeSource struct {
	trainings []models.Training
}

func (f *fakeSource) ListTrainings(context.Context) ([]models.TrainingSummary, error) {
	out := make([]models.TrainingSummary, 0, len(f.trainings))
	for _, t := range f.trainings {
		out = append(out, models.TrainingSummary{ID: t.ID, Name: t.Name, Date: t.Date, Version: t.Version, SegmentCount: len(t.Segments)})
	}
	return out, nil
}

func (f *fakeSource) GetTraining(_ context.Context, id uuid.UUID) (*models.Training, error) {
	for _, t := range f.trainings {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, storage.ErrNotFound
}

func newHandlers(ds DataSource) *handlers {
	return &handlers{ds: ds, log: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func callTool(t *testing.T, fn func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) *mcp.CallToolResult {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	result, err := fn(context.Background(), req)
	if err != nil {
		t.Fatalf("tool returned error: %v", err)
	}
	return result
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("empty tool result")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content type = %T, want TextContent", result.Content[0])
	}
	return text.Text
}

func decodeResult[T any](t *testing.T, result *mcp.CallToolResult) T {
	t.Helper()
	if result.IsError {
		t.Fatalf("tool error: %s", resultText(t, result))
	}
	var v T
	if err := json.Unmarshal([]byte(resultText(t, result)), &v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

// TestAugmentSegmentTool verifies the missing value is derived from a named pace.
func TestAugmentSegmentTool(t *testing.T) {
	h := newHandlers(&fakeSource{})
	got := decodeResult[models.Segment](t, callTool(t, h.augmentSegment, map[string]any{
		"distance": 21.0975,
		"pace":     "@MP",
	}))
	want := models.Segment{Distance: 21.0975, Duration: "01:26:09", Pace: "04:05", IsValid: true}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("augment_segment mismatch (-want +got):\n%s", diff)
	}
}

// TestAugmentSegmentToolUnderdetermined verifies one known value is rejected.
func TestAugmentSegmentToolUnderdetermined(t *testing.T) {
	h := newHandlers(&fakeSource{})
	result := callTool(t, h.augmentSegment, map[string]any{"pace": "05:00"})
	if !result.IsError {
		t.Error("expected tool error for a single known value")
	}
}

// TestSegmentsTotalTool verifies totals over generic JSON arguments.
func TestSegmentsTotalTool(t *testing.T) {
	h := newHandlers(&fakeSource{})
	got := decodeResult[models.Total](t, callTool(t, h.segmentsTotal, map[string]any{
		"segments": []any{
			map[string]any{"distance": 2.0, "pace": "05:00"},
			map[string]any{"distance": 1.0, "duration": "00:04:00"},
		},
	}))
	want := models.Total{Distance: 3, Duration: "00:14:00", Pace: "04:40"}
	if got != want {
		t.Errorf("segments_total = %+v, want %+v", got, want)
	}
}

// TestPaceTools verifies resolve_pace and pace_400.
func TestPaceTools(t *testing.T) {
	h := newHandlers(&fakeSource{})

	resolved := decodeResult[map[string]string](t, callTool(t, h.resolvePace, map[string]any{"pace": "@10KP"}))
	if resolved["resolved"] != "03:36" {
		t.Errorf("resolve_pace = %v", resolved)
	}

	lap := decodeResult[map[string]string](t, callTool(t, h.pace400, map[string]any{"pace": "@MP+5%"}))
	if lap["pace_400"] != "01:43" {
		t.Errorf("pace_400 = %v", lap)
	}

	if result := callTool(t, h.resolvePace, map[string]any{}); !result.IsError {
		t.Error("expected tool error without pace")
	}
}

// TestListTrainingsTool verifies optional date bounds filter the listing.
func TestListTrainingsTool(t *testing.T) {
	ds := &fakeSource{trainings: []models.Training{
		{ID: uuid.New(), Name: "March", Date: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)},
		{ID: uuid.New(), Name: "April", Date: time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)},
	}}
	h := newHandlers(ds)

	all := decodeResult[[]models.TrainingSummary](t, callTool(t, h.listTrainings, nil))
	if len(all) != 2 {
		t.Errorf("got %d trainings, want 2", len(all))
	}

	april := decodeResult[[]models.TrainingSummary](t, callTool(t, h.listTrainings, map[string]any{"start": "2026-04-01"}))
	if len(april) != 1 || april[0].Name != "April" {
		t.Errorf("filtered = %+v", april)
	}

	if result := callTool(t, h.listTrainings, map[string]any{"end": "not-a-date"}); !result.IsError {
		t.Error("expected tool error for invalid date")
	}
}

// TestGetTrainingTool verifies the training is returned with its total, and
// unknown or malformed IDs are reported as tool errors.
func TestGetTrainingTool(t *testing.T) {
	id := uuid.New()
	ds := &fakeSource{trainings: []models.Training{{
		ID:   id,
		Name: "Intervals",
		Segments: []models.Segment{
			{ID: "a", Distance: 1, Duration: "00:03:30", Pace: "03:30", IsValid: true},
			{ID: "b", Distance: 1, Duration: "00:05:30", Pace: "05:30", IsValid: true},
		},
	}}}
	h := newHandlers(ds)

	got := decodeResult[struct {
		Training models.Training `json:"training"`
		Total    models.Total    `json:"total"`
	}](t, callTool(t, h.getTraining, map[string]any{"id": id.String()}))
	if got.Training.Name != "Intervals" {
		t.Errorf("name = %q", got.Training.Name)
	}
	if want := (models.Total{Distance: 2, Duration: "00:09:00", Pace: "04:30"}); got.Total != want {
		t.Errorf("total = %+v, want %+v", got.Total, want)
	}

	if result := callTool(t, h.getTraining, map[string]any{"id": uuid.NewString()}); !result.IsError {
		t.Error("expected tool error for unknown training")
	}
	if result := callTool(t, h.getTraining, map[string]any{"id": "nope"}); !result.IsError {
		t.Error("expected tool error for malformed ID")
	}
}

// TestNamedPacesResource verifies the resource lists the full vocabulary.
func TestNamedPacesResource(t *testing.T) {
	h := newHandlers(&fakeSource{})
	var req mcp.ReadResourceRequest
	req.Params.URI = "splits://named_paces"

	contents, err := h.namedPaces(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	text, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("content type = %T", contents[0])
	}
	var paces map[string]string
	if err := json.Unmarshal([]byte(text.Text), &paces); err != nil {
		t.Fatal(err)
	}
	if len(paces) != 12 || paces["@RECOV"] != "05:30" {
		t.Errorf("paces = %v", paces)
	}
}

// TestParseFlexTime verifies both accepted date layouts.
func TestParseFlexTime(t *testing.T) {
	d, err := parseFlexTime("2024-01-31")
	if err != nil || d.Day() != 31 {
		t.Errorf("date = %v, %v", d, err)
	}
	ts, err := parseFlexTime("2024-06-15T10:30:00Z")
	if err != nil || ts.Hour() != 10 || ts.Minute() != 30 {
		t.Errorf("timestamp = %v, %v", ts, err)
	}
	if _, err := parseFlexTime("not-a-date"); err == nil {
		t.Error("expected error for invalid date")
	}
}
