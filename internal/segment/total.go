package segment

import (
	"math"

	"github.com/meltforce/splits/internal/models"
	"github.com/meltforce/splits/internal/pace"
)

// MakeTotal folds segments into a total: distances and durations are summed
// after augmenting each segment, then the total pace is derived.
func MakeTotal(segs []models.Segment) models.Total {
	total := models.ZeroTotal()
	if len(segs) == 0 {
		return total
	}

	var seconds int
	var distance float64
	for _, s := range segs {
		a := Augment(s)
		distance += a.Distance
		if !hasNoClock(a.Duration) {
			if sec, err := pace.Seconds(a.Duration); err == nil {
				seconds += sec
			}
		}
		total.Duration = pace.FormatDuration(seconds)
	}
	total.Distance = roundDistance(distance)

	// Pace takes precedence when both are placeholders.
	if hasNoClock(total.Pace) {
		total.Pace = pace.PaceFrom(total.Duration, total.Distance)
	} else if hasNoClock(total.Duration) {
		total.Duration = pace.DurationFrom(total.Distance, total.Pace)
	}
	return total
}

// roundDistance rounds to three decimals, the precision distances are kept at.
func roundDistance(d float64) float64 {
	return math.Round(d*1000) / 1000
}
