package models

// Segment is one distance/duration/pace record within a training.
// Zero values stand for "not entered".
type Segment struct {
	ID       string  `json:"id"`
	Distance float64 `json:"distance"`
	Duration string  `json:"duration"`
	Pace     string  `json:"pace"`
	IsValid  bool    `json:"is_valid"`
}

// Total is the aggregate of a list of segments. It is computed on demand and never stored.
type Total struct {
	Distance float64 `json:"distance"`
	Duration string  `json:"duration"`
	Pace     string  `json:"pace"`
}

// ZeroTotal returns the total of an empty segment list.
func ZeroTotal() Total {
	return Total{Distance: 0, Duration: "00:00:00", Pace: "00:00"}
}

// CloneSegments returns an independent copy of segs. A nil input yields an empty, non-nil slice.
func CloneSegments(segs []Segment) []Segment {
	out := make([]Segment, len(segs))
	copy(out, segs)
	return out
}
