package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ImportLog represents a single segment import's outcome.
type ImportLog struct {
	ID               int64     `json:"id"`
	TrainingID       uuid.UUID `json:"training_id"`
	CreatedAt        time.Time `json:"created_at"`
	Source           string    `json:"source"`
	Status           string    `json:"status"`
	SegmentsReceived int       `json:"segments_received"`
	SegmentsAdded    int       `json:"segments_added"`
	SegmentsInvalid  int       `json:"segments_invalid"`
	DurationMs       *int      `json:"duration_ms"`
	ErrorMessage     *string   `json:"error_message"`
}

// ImportLogStore records import outcomes. Both backends implement it.
type ImportLogStore interface {
	InsertImportLog(ctx context.Context, log ImportLog) (int64, error)
	QueryImportLogs(ctx context.Context, limit int) ([]ImportLog, error)
}

var (
	_ ImportLogStore = (*DB)(nil)
	_ ImportLogStore = (*LiteDB)(nil)
)

// InsertImportLog creates a new import log entry and returns its ID.
func (db *DB) InsertImportLog(ctx context.Context, log ImportLog) (int64, error) {
	var id int64
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO import_logs (training_id, source, status, segments_received, segments_added,
		 segments_invalid, duration_ms, error_message)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 RETURNING id`,
		log.TrainingID, log.Source, log.Status, log.SegmentsReceived, log.SegmentsAdded,
		log.SegmentsInvalid, log.DurationMs, log.ErrorMessage,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting import log: %w", err)
	}
	return id, nil
}

// QueryImportLogs returns the most recent import logs.
func (db *DB) QueryImportLogs(ctx context.Context, limit int) ([]ImportLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT id, training_id, created_at, source, status, segments_received, segments_added,
		 segments_invalid, duration_ms, error_message
		 FROM import_logs
		 ORDER BY created_at DESC
		 LIMIT $1`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("querying import logs: %w", err)
	}
	defer rows.Close()

	result := []ImportLog{}
	for rows.Next() {
		var l ImportLog
		if err := rows.Scan(&l.ID, &l.TrainingID, &l.CreatedAt, &l.Source, &l.Status,
			&l.SegmentsReceived, &l.SegmentsAdded, &l.SegmentsInvalid, &l.DurationMs, &l.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scanning import log: %w", err)
		}
		result = append(result, l)
	}
	return result, rows.Err()
}

// InsertImportLog creates a new import log entry and returns its ID.
func (l *LiteDB) InsertImportLog(ctx context.Context, log ImportLog) (int64, error) {
	res, err := l.db.ExecContext(ctx,
		`INSERT INTO import_logs (training_id, created_at, source, status, segments_received,
		 segments_added, segments_invalid, duration_ms, error_message)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		log.TrainingID.String(), time.Now().UTC().Format(liteStampLayout), log.Source, log.Status,
		log.SegmentsReceived, log.SegmentsAdded, log.SegmentsInvalid, log.DurationMs, log.ErrorMessage)
	if err != nil {
		return 0, fmt.Errorf("inserting import log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("inserting import log: %w", err)
	}
	return id, nil
}

// QueryImportLogs returns the most recent import logs.
func (l *LiteDB) QueryImportLogs(ctx context.Context, limit int) ([]ImportLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, training_id, created_at, source, status, segments_received, segments_added,
		 segments_invalid, duration_ms, error_message
		 FROM import_logs
		 ORDER BY id DESC
		 LIMIT ?`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("querying import logs: %w", err)
	}
	defer rows.Close()

	result := []ImportLog{}
	for rows.Next() {
		var log ImportLog
		var trainingID, created string
		if err := rows.Scan(&log.ID, &trainingID, &created, &log.Source, &log.Status,
			&log.SegmentsReceived, &log.SegmentsAdded, &log.SegmentsInvalid, &log.DurationMs, &log.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scanning import log: %w", err)
		}
		if log.TrainingID, err = uuid.Parse(trainingID); err != nil {
			return nil, fmt.Errorf("parsing import log training id %q: %w", trainingID, err)
		}
		if log.CreatedAt, err = time.Parse(liteStampLayout, created); err != nil {
			return nil, fmt.Errorf("parsing import log created_at %q: %w", created, err)
		}
		result = append(result, log)
	}
	return result, rows.Err()
}
