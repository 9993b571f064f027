package segment

import (
	"github.com/meltforce/splits/internal/models"
	"github.com/meltforce/splits/internal/pace"
)

// Missing returns the quantities of s that have no real value, in field order.
func Missing(s models.Segment) []Field {
	var out []Field
	if hasNoDistance(s.Distance) {
		out = append(out, FieldDistance)
	}
	if hasNoClock(s.Duration) {
		out = append(out, FieldDuration)
	}
	if hasNoClock(s.Pace) {
		out = append(out, FieldPace)
	}
	return out
}

// CanAugment reports whether exactly one of distance, duration and pace is missing.
func CanAugment(s models.Segment) bool {
	return len(Missing(s)) == 1
}

// Augment returns a copy of s with its named pace resolved, its duration
// shorthand expanded, the single missing quantity derived (if exactly one is
// missing) and IsValid recomputed.
func Augment(s models.Segment) models.Segment {
	out := s
	out.Pace = pace.Resolve(out.Pace)
	if !hasNoClock(out.Duration) {
		out.Duration = pace.NormalizeDuration(out.Duration)
	}

	if missing := Missing(out); len(missing) == 1 {
		switch missing[0] {
		case FieldDistance:
			out.Distance = pace.DistanceFrom(out.Duration, out.Pace)
		case FieldDuration:
			out.Duration = pace.DurationFrom(out.Distance, out.Pace)
		case FieldPace:
			out.Pace = pace.PaceFrom(out.Duration, out.Distance)
		}
	}

	out.IsValid = IsValid(out)
	return out
}

// IsValid reports whether the stored duration and pace agree with the values
// recomputed from the other quantities. Distance itself is not round-tripped.
func IsValid(s models.Segment) bool {
	duration := pace.DurationFrom(s.Distance, s.Pace)
	p := pace.PaceFrom(s.Duration, s.Distance)
	return duration == s.Duration && p == s.Pace
}
