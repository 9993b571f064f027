// Package training applies segment operations to stored trainings using
// read, copy, replace transactions with optimistic versioning.
package training

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/meltforce/splits/internal/models"
	"github.com/meltforce/splits/internal/segment"
	"github.com/meltforce/splits/internal/storage"
)

// maxAttempts bounds retries when a concurrent writer bumped the version.
const maxAttempts = 3

// Detail is a training together with its computed total.
type Detail struct {
	*models.Training
	Total models.Total `json:"total"`
}

// Service wraps a Store with the segment collection operations.
type Service struct {
	store storage.Store
	log   *slog.Logger
}

// NewService creates a training service.
func NewService(store storage.Store, log *slog.Logger) *Service {
	return &Service{store: store, log: log}
}

// Create stores a new training. Any segments it carries are augmented and
// given fresh identifiers.
func (s *Service) Create(ctx context.Context, t models.Training) (*Detail, error) {
	var segs []models.Segment
	for _, seg := range t.Segments {
		segs = segment.Add(seg, segs, true)
	}
	t.Segments = segs

	if err := s.store.CreateTraining(ctx, &t); err != nil {
		return nil, err
	}
	s.log.Info("training created", "id", t.ID, "segments", len(t.Segments))
	return detail(&t), nil
}

// Get returns a training with its total.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Detail, error) {
	t, err := s.store.GetTraining(ctx, id)
	if err != nil {
		return nil, err
	}
	return detail(t), nil
}

// List returns training summaries.
func (s *Service) List(ctx context.Context) ([]models.TrainingSummary, error) {
	return s.store.ListTrainings(ctx)
}

// Delete removes a training.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteTraining(ctx, id); err != nil {
		return err
	}
	s.log.Info("training deleted", "id", id)
	return nil
}

// Total aggregates the segments of a training.
func (s *Service) Total(ctx context.Context, id uuid.UUID) (models.Total, error) {
	t, err := s.store.GetTraining(ctx, id)
	if err != nil {
		return models.Total{}, err
	}
	return segment.MakeTotal(t.Segments), nil
}

// AddSegment appends seg to the training. The stored segment, with its
// assigned ID and derived fields, is returned.
func (s *Service) AddSegment(ctx context.Context, id uuid.UUID, seg models.Segment, overwriteID bool) (models.Segment, error) {
	var added models.Segment
	err := s.modify(ctx, id, func(segs []models.Segment) ([]models.Segment, error) {
		out := segment.Add(seg, segs, overwriteID)
		added = out[len(out)-1]
		return out, nil
	})
	return added, err
}

// UpdateSegment replaces the segment with seg.ID. Returns segment.ErrNotFound
// if the training has no such segment.
func (s *Service) UpdateSegment(ctx context.Context, id uuid.UUID, seg models.Segment) (models.Segment, error) {
	var updated models.Segment
	err := s.modify(ctx, id, func(segs []models.Segment) ([]models.Segment, error) {
		out, err := segment.Update(seg, segs)
		if err != nil {
			return nil, err
		}
		updated, _ = segment.Find(seg.ID, out)
		return out, nil
	})
	return updated, err
}

// RemoveSegment deletes the segment with segmentID. Removing an unknown
// segment succeeds without writing.
func (s *Service) RemoveSegment(ctx context.Context, id uuid.UUID, segmentID string) error {
	return s.modify(ctx, id, func(segs []models.Segment) ([]models.Segment, error) {
		if _, ok := segment.Find(segmentID, segs); !ok {
			return nil, errUnchanged
		}
		return segment.Remove(models.Segment{ID: segmentID}, segs), nil
	})
}

// AppendSegments adds every segment in order, each with a fresh ID, in one write.
func (s *Service) AppendSegments(ctx context.Context, id uuid.UUID, in []models.Segment) ([]models.Segment, error) {
	var added []models.Segment
	err := s.modify(ctx, id, func(segs []models.Segment) ([]models.Segment, error) {
		added = added[:0]
		out := segs
		for _, seg := range in {
			out = segment.Add(seg, out, true)
			added = append(added, out[len(out)-1])
		}
		return out, nil
	})
	return added, err
}

// IsDirty reports whether seg differs from the stored segment with the same ID.
func (s *Service) IsDirty(ctx context.Context, id uuid.UUID, seg models.Segment) (bool, error) {
	t, err := s.store.GetTraining(ctx, id)
	if err != nil {
		return false, err
	}
	return segment.IsDirty(seg, t.Segments), nil
}

// errUnchanged lets a modify callback skip the write.
var errUnchanged = errors.New("unchanged")

// modify runs fn against the current segment list and stores the result,
// retrying from a fresh read when another writer got there first.
func (s *Service) modify(ctx context.Context, id uuid.UUID, fn func([]models.Segment) ([]models.Segment, error)) error {
	for attempt := 1; ; attempt++ {
		t, err := s.store.GetTraining(ctx, id)
		if err != nil {
			return err
		}

		segs, err := fn(models.CloneSegments(t.Segments))
		if errors.Is(err, errUnchanged) {
			return nil
		}
		if err != nil {
			return err
		}

		_, err = s.store.SaveSegments(ctx, id, t.Version, segs)
		if err == nil {
			return nil
		}
		if !errors.Is(err, storage.ErrVersionConflict) || attempt >= maxAttempts {
			return fmt.Errorf("saving segments of training %s: %w", id, err)
		}
		s.log.Warn("training version conflict, retrying", "id", id, "attempt", attempt)
	}
}

func detail(t *models.Training) *Detail {
	if t.Segments == nil {
		t.Segments = []models.Segment{}
	}
	return &Detail{Training: t, Total: segment.MakeTotal(t.Segments)}
}
