package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/splits/internal/models"
	_ "modernc.org/sqlite"
)

// Timestamps are stored as fixed-width UTC text so that ORDER BY on the
// column sorts chronologically.
const (
	liteDateLayout  = "2006-01-02"
	liteStampLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// LiteDB implements Store on a single SQLite file. Used for local mode and tests.
type LiteDB struct {
	db *sql.DB
}

// OpenLite opens (or creates) the SQLite database at path and ensures the schema exists.
func OpenLite(path string) (*LiteDB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database dir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS trainings (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		date        TEXT NOT NULL,
		notes       TEXT NOT NULL DEFAULT '',
		version     INTEGER NOT NULL DEFAULT 1,
		segments    TEXT NOT NULL DEFAULT '[]',
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating trainings table: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS import_logs (
		id                 INTEGER PRIMARY KEY AUTOINCREMENT,
		training_id        TEXT NOT NULL,
		created_at         TEXT NOT NULL,
		source             TEXT NOT NULL,
		status             TEXT NOT NULL,
		segments_received  INTEGER NOT NULL DEFAULT 0,
		segments_added     INTEGER NOT NULL DEFAULT 0,
		segments_invalid   INTEGER NOT NULL DEFAULT 0,
		duration_ms        INTEGER,
		error_message      TEXT
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating import_logs table: %w", err)
	}

	return &LiteDB{db: db}, nil
}

// Close closes the database.
func (l *LiteDB) Close() error {
	return l.db.Close()
}

// CreateTraining inserts t, assigning its ID (if unset), version and timestamps.
func (l *LiteDB) CreateTraining(ctx context.Context, t *models.Training) error {
	prepareNew(t, time.Now().UTC())

	segs, err := json.Marshal(t.Segments)
	if err != nil {
		return fmt.Errorf("encoding segments: %w", err)
	}

	_, err = l.db.ExecContext(ctx,
		`INSERT INTO trainings (id, name, date, notes, version, segments, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID.String(), t.Name, t.Date.Format(liteDateLayout), t.Notes, t.Version, string(segs),
		t.CreatedAt.UTC().Format(liteStampLayout), t.UpdatedAt.UTC().Format(liteStampLayout))
	if err != nil {
		return fmt.Errorf("inserting training: %w", err)
	}
	return nil
}

// GetTraining retrieves a training with its segments.
func (l *LiteDB) GetTraining(ctx context.Context, id uuid.UUID) (*models.Training, error) {
	var t models.Training
	var rawID, date, segs, created, upd string
	err := l.db.QueryRowContext(ctx,
		`SELECT id, name, date, notes, version, segments, created_at, updated_at
		 FROM trainings WHERE id = ?`, id.String()).
		Scan(&rawID, &t.Name, &date, &t.Notes, &t.Version, &segs, &created, &upd)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying training: %w", err)
	}

	if t.ID, err = uuid.Parse(rawID); err != nil {
		return nil, fmt.Errorf("parsing training id %q: %w", rawID, err)
	}
	if t.Date, err = time.Parse(liteDateLayout, date); err != nil {
		return nil, fmt.Errorf("parsing training date %q: %w", date, err)
	}
	if t.CreatedAt, err = time.Parse(liteStampLayout, created); err != nil {
		return nil, fmt.Errorf("parsing created_at %q: %w", created, err)
	}
	if t.UpdatedAt, err = time.Parse(liteStampLayout, upd); err != nil {
		return nil, fmt.Errorf("parsing updated_at %q: %w", upd, err)
	}
	if err := json.Unmarshal([]byte(segs), &t.Segments); err != nil {
		return nil, fmt.Errorf("decoding segments of training %s: %w", id, err)
	}
	return &t, nil
}

// ListTrainings returns all trainings, most recent first.
func (l *LiteDB) ListTrainings(ctx context.Context) ([]models.TrainingSummary, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, name, date, version, json_array_length(segments)
		 FROM trainings
		 ORDER BY date DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying trainings: %w", err)
	}
	defer rows.Close()

	result := []models.TrainingSummary{}
	for rows.Next() {
		var s models.TrainingSummary
		var rawID, date string
		if err := rows.Scan(&rawID, &s.Name, &date, &s.Version, &s.SegmentCount); err != nil {
			return nil, fmt.Errorf("scanning training: %w", err)
		}
		if s.ID, err = uuid.Parse(rawID); err != nil {
			return nil, fmt.Errorf("parsing training id %q: %w", rawID, err)
		}
		if s.Date, err = time.Parse(liteDateLayout, date); err != nil {
			return nil, fmt.Errorf("parsing training date %q: %w", date, err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// SaveSegments replaces the segment list if the stored version equals
// expectedVersion. Returns the new version.
func (l *LiteDB) SaveSegments(ctx context.Context, id uuid.UUID, expectedVersion int, segs []models.Segment) (int, error) {
	data, err := json.Marshal(models.CloneSegments(segs))
	if err != nil {
		return 0, fmt.Errorf("encoding segments: %w", err)
	}

	res, err := l.db.ExecContext(ctx,
		`UPDATE trainings SET segments = ?, version = version + 1, updated_at = ?
		 WHERE id = ? AND version = ?`,
		string(data), time.Now().UTC().Format(liteStampLayout), id.String(), expectedVersion)
	if err != nil {
		return 0, fmt.Errorf("updating segments of training %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("updating segments of training %s: %w", id, err)
	}
	if n == 0 {
		return 0, l.missingOrConflict(ctx, id)
	}
	return expectedVersion + 1, nil
}

// DeleteTraining removes a training and its segments.
func (l *LiteDB) DeleteTraining(ctx context.Context, id uuid.UUID) error {
	res, err := l.db.ExecContext(ctx, `DELETE FROM trainings WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("deleting training %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting training %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (l *LiteDB) missingOrConflict(ctx context.Context, id uuid.UUID) error {
	var count int
	err := l.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM trainings WHERE id = ?`, id.String()).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking training %s: %w", id, err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrVersionConflict
}
