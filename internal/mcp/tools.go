package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/meltforce/splits/internal/models"
	"github.com/meltforce/splits/internal/pace"
	"github.com/meltforce/splits/internal/segment"
	"github.com/meltforce/splits/internal/storage"
)

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// dateFilter returns the inclusive [start, end] bounds for list_trainings.
// Zero values mean unbounded.
func dateFilter(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return start, end, nil
}

// --- Tool definitions ---

var toolAugmentSegment = mcp.NewTool("augment_segment",
	mcp.WithDescription("Complete a segment from two of its three values. Returns distance (km), duration (HH:MM:SS), pace (MM:SS per km) and whether they are consistent. Pace may be a named pace such as @MP or @5KP."),
	mcp.WithNumber("distance", mcp.Description("Distance in kilometers. Omit or 0 when unknown.")),
	mcp.WithString("duration", mcp.Description("Duration as HH:MM:SS, MM:SS or minutes. Omit when unknown.")),
	mcp.WithString("pace", mcp.Description("Pace per kilometer as MM:SS or a named pace (@EASY, @MP, @LT, @5KP, ...). Omit when unknown.")),
)

var toolSegmentsTotal = mcp.NewTool("segments_total",
	mcp.WithDescription("Total distance, duration and average pace of a list of segments. Each segment is augmented first."),
	mcp.WithArray("segments", mcp.Required(),
		mcp.Description("Segments as objects with distance, duration and pace"),
		mcp.Items(map[string]any{"type": "object"}),
	),
)

var toolResolvePace = mcp.NewTool("resolve_pace",
	mcp.WithDescription("Translate a named pace (e.g. @MP) into its MM:SS value. Literal paces are returned unchanged."),
	mcp.WithString("pace", mcp.Required(), mcp.Description("Named or literal pace")),
)

var toolPace400 = mcp.NewTool("pace_400",
	mcp.WithDescription("Lap time for 400 meters at the given pace per kilometer."),
	mcp.WithString("pace", mcp.Required(), mcp.Description("Named or literal pace per kilometer")),
)

var toolListTrainings = mcp.NewTool("list_trainings",
	mcp.WithDescription("List stored trainings, newest first, with their segment counts."),
	mcp.WithString("start", mcp.Description("Only trainings on or after this date (YYYY-MM-DD or ISO 8601).")),
	mcp.WithString("end", mcp.Description("Only trainings on or before this date (YYYY-MM-DD or ISO 8601).")),
)

var toolGetTraining = mcp.NewTool("get_training",
	mcp.WithDescription("Get a stored training with its segments and computed total."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Training UUID")),
)

// --- Tool handlers ---

func (h *handlers) augmentSegment(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	seg := models.Segment{
		Distance: req.GetFloat("distance", 0),
		Duration: req.GetString("duration", ""),
		Pace:     req.GetString("pace", ""),
	}
	if len(segment.Missing(seg)) > 1 {
		return mcp.NewToolResultError("at least two of distance, duration and pace are required"), nil
	}
	return jsonResult(segment.Augment(seg))
}

func (h *handlers) segmentsTotal(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, ok := req.GetArguments()["segments"]
	if !ok {
		return mcp.NewToolResultError("segments parameter is required"), nil
	}

	// Arguments arrive as generic JSON values; round-trip them into segments.
	data, err := json.Marshal(raw)
	if err != nil {
		return mcp.NewToolResultError("invalid segments: " + err.Error()), nil
	}
	var segs []models.Segment
	if err := json.Unmarshal(data, &segs); err != nil {
		return mcp.NewToolResultError("invalid segments: " + err.Error()), nil
	}

	return jsonResult(segment.MakeTotal(segs))
}

func (h *handlers) resolvePace(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := req.RequireString("pace")
	if err != nil {
		return mcp.NewToolResultError("pace parameter is required"), nil
	}
	return jsonResult(map[string]string{"pace": p, "resolved": pace.Resolve(p)})
}

func (h *handlers) pace400(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := req.RequireString("pace")
	if err != nil {
		return mcp.NewToolResultError("pace parameter is required"), nil
	}
	return jsonResult(map[string]string{"pace": pace.Resolve(p), "pace_400": pace.Pace400(p)})
}

func (h *handlers) listTrainings(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := dateFilter(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	list, err := h.ds.ListTrainings(ctx)
	if err != nil {
		h.log.Error("mcp list_trainings", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	filtered := make([]models.TrainingSummary, 0, len(list))
	for _, t := range list {
		if !start.IsZero() && t.Date.Before(start) {
			continue
		}
		if !end.IsZero() && t.Date.After(end) {
			continue
		}
		filtered = append(filtered, t)
	}
	return jsonResult(filtered)
}

func (h *handlers) getTraining(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idStr, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return mcp.NewToolResultError("invalid training ID"), nil
	}

	t, err := h.ds.GetTraining(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return mcp.NewToolResultError("training not found"), nil
	}
	if err != nil {
		h.log.Error("mcp get_training", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	return jsonResult(map[string]any{
		"training": t,
		"total":    segment.MakeTotal(t.Segments),
	})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
