package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/splits/internal/models"
)

var (
	// ErrNotFound is returned when a training does not exist.
	ErrNotFound = errors.New("training not found")
	// ErrVersionConflict is returned when a training changed since it was read.
	ErrVersionConflict = errors.New("training version conflict")
)

// Store persists trainings and their segment lists. Segment writes replace the
// whole list and succeed only if the stored version still equals expectedVersion.
type Store interface {
	CreateTraining(ctx context.Context, t *models.Training) error
	GetTraining(ctx context.Context, id uuid.UUID) (*models.Training, error)
	ListTrainings(ctx context.Context) ([]models.TrainingSummary, error)
	SaveSegments(ctx context.Context, id uuid.UUID, expectedVersion int, segs []models.Segment) (int, error)
	DeleteTraining(ctx context.Context, id uuid.UUID) error
}

// Compile-time checks: both backends satisfy Store.
var (
	_ Store = (*DB)(nil)
	_ Store = (*LiteDB)(nil)
)

// prepareNew fills the server-assigned fields of a training about to be created.
func prepareNew(t *models.Training, now time.Time) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Segments == nil {
		t.Segments = []models.Segment{}
	}
	t.Version = 1
	t.CreatedAt = now
	t.UpdatedAt = now
}
