package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/meltforce/splits/internal/models"
)

// CreateTraining inserts t, assigning its ID (if unset), version and timestamps.
func (db *DB) CreateTraining(ctx context.Context, t *models.Training) error {
	prepareNew(t, time.Now().UTC())

	segs, err := json.Marshal(t.Segments)
	if err != nil {
		return fmt.Errorf("encoding segments: %w", err)
	}

	_, err = db.Pool.Exec(ctx,
		`INSERT INTO trainings (id, name, date, notes, version, segments, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		t.ID, t.Name, t.Date, t.Notes, t.Version, segs, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting training: %w", err)
	}
	return nil
}

// GetTraining retrieves a training with its segments.
func (db *DB) GetTraining(ctx context.Context, id uuid.UUID) (*models.Training, error) {
	var t models.Training
	var segs []byte
	err := db.Pool.QueryRow(ctx,
		`SELECT id, name, date, notes, version, segments, created_at, updated_at
		 FROM trainings WHERE id = $1`, id).
		Scan(&t.ID, &t.Name, &t.Date, &t.Notes, &t.Version, &segs, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying training: %w", err)
	}

	if err := json.Unmarshal(segs, &t.Segments); err != nil {
		return nil, fmt.Errorf("decoding segments of training %s: %w", id, err)
	}
	return &t, nil
}

// ListTrainings returns all trainings, most recent first.
func (db *DB) ListTrainings(ctx context.Context) ([]models.TrainingSummary, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, name, date, version, jsonb_array_length(segments)
		 FROM trainings
		 ORDER BY date DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying trainings: %w", err)
	}
	defer rows.Close()

	result := []models.TrainingSummary{}
	for rows.Next() {
		var s models.TrainingSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.Date, &s.Version, &s.SegmentCount); err != nil {
			return nil, fmt.Errorf("scanning training: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// SaveSegments replaces the segment list if the stored version equals
// expectedVersion. Returns the new version.
func (db *DB) SaveSegments(ctx context.Context, id uuid.UUID, expectedVersion int, segs []models.Segment) (int, error) {
	data, err := json.Marshal(models.CloneSegments(segs))
	if err != nil {
		return 0, fmt.Errorf("encoding segments: %w", err)
	}

	var version int
	err = db.Pool.QueryRow(ctx,
		`UPDATE trainings SET segments = $3, version = version + 1, updated_at = $4
		 WHERE id = $1 AND version = $2
		 RETURNING version`,
		id, expectedVersion, data, time.Now().UTC()).Scan(&version)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, db.missingOrConflict(ctx, id)
	}
	if err != nil {
		return 0, fmt.Errorf("updating segments of training %s: %w", id, err)
	}
	return version, nil
}

// DeleteTraining removes a training and its segments.
func (db *DB) DeleteTraining(ctx context.Context, id uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM trainings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting training %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// missingOrConflict tells apart a vanished training from a stale version after a no-op update.
func (db *DB) missingOrConflict(ctx context.Context, id uuid.UUID) error {
	var exists bool
	err := db.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM trainings WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking training %s: %w", id, err)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrVersionConflict
}
