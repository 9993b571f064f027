package segment

import "strings"

// Field names a segment quantity.
type Field int

const (
	FieldDistance Field = iota
	FieldDuration
	FieldPace
)

func (f Field) String() string {
	switch f {
	case FieldDistance:
		return "distance"
	case FieldDuration:
		return "duration"
	case FieldPace:
		return "pace"
	default:
		return "unknown"
	}
}

// clockPlaceholders are the string values that mean "not entered".
var clockPlaceholders = map[string]bool{
	"":         true,
	"0":        true,
	"00:00":    true,
	"00:00:00": true,
}

// hasNoDistance reports whether d is absent. Negative distances are treated as absent.
func hasNoDistance(d float64) bool {
	return d <= 0
}

// hasNoClock reports whether a duration or pace string is absent or a placeholder.
func hasNoClock(s string) bool {
	return clockPlaceholders[strings.TrimSpace(s)]
}
