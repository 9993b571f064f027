package models

import (
	"time"

	"github.com/google/uuid"
)

// Training owns an ordered list of segments. Version increases on every
// segment write and is used for optimistic concurrency.
type Training struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Date      time.Time `json:"date"`
	Notes     string    `json:"notes,omitempty"`
	Version   int       `json:"version"`
	Segments  []Segment `json:"segments"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TrainingSummary is a training listing row without its segments.
type TrainingSummary struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Date         time.Time `json:"date"`
	Version      int       `json:"version"`
	SegmentCount int       `json:"segment_count"`
}
