package segment

import (
	"errors"

	"github.com/google/uuid"
	"github.com/meltforce/splits/internal/models"
)

// ErrNotFound is returned when no segment carries the requested identifier.
var ErrNotFound = errors.New("segment not found")

// newID generates segment identifiers. Replaced in tests.
var newID = uuid.NewString

// Find returns the first segment whose ID equals id.
func Find(id string, segs []models.Segment) (models.Segment, bool) {
	if i := indexOf(id, segs); i >= 0 {
		return segs[i], true
	}
	return models.Segment{}, false
}

// Remove returns a copy of segs without the first segment matching s.ID.
// An unknown ID yields an unchanged copy.
func Remove(s models.Segment, segs []models.Segment) []models.Segment {
	i := indexOf(s.ID, segs)
	if i < 0 {
		return models.CloneSegments(segs)
	}
	out := make([]models.Segment, 0, len(segs)-1)
	out = append(out, segs[:i]...)
	return append(out, segs[i+1:]...)
}

// Add augments s and returns a copy of segs with it appended. s gets a fresh
// ID when it has none, when overwriteID is set, or when its ID is already taken.
func Add(s models.Segment, segs []models.Segment, overwriteID bool) []models.Segment {
	if s.ID == "" || overwriteID || indexOf(s.ID, segs) >= 0 {
		s.ID = newID()
	}
	out := make([]models.Segment, 0, len(segs)+1)
	out = append(out, segs...)
	return append(out, Augment(s))
}

// Update augments s and returns a copy of segs with the segment of the same ID replaced.
func Update(s models.Segment, segs []models.Segment) ([]models.Segment, error) {
	i := indexOf(s.ID, segs)
	if i < 0 {
		return nil, ErrNotFound
	}
	out := models.CloneSegments(segs)
	out[i] = Augment(s)
	return out, nil
}

// IsDirty reports whether a stored segment with s.ID exists and differs from s
// in distance, duration or pace.
func IsDirty(s models.Segment, segs []models.Segment) bool {
	stored, ok := Find(s.ID, segs)
	if !ok {
		return false
	}
	return stored.Distance != s.Distance || stored.Duration != s.Duration || stored.Pace != s.Pace
}

func indexOf(id string, segs []models.Segment) int {
	for i, s := range segs {
		if s.ID == id {
			return i
		}
	}
	return -1
}
