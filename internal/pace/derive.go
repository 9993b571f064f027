package pace

import "math"

// DurationFrom returns the HH:MM:SS duration needed to cover distance at pace.
func DurationFrom(distance float64, pace string) string {
	paceSec := float64(secondsOrZero(pace))
	return FormatDuration(wholeSeconds(paceSec * distance))
}

// PaceFrom returns the MM:SS pace of covering distance in duration.
// A zero distance yields "00:00".
func PaceFrom(duration string, distance float64) string {
	if distance == 0 {
		return FormatPace(0)
	}
	durSec := float64(secondsOrZero(duration))
	return FormatPace(wholeSeconds(durSec / distance))
}

// DistanceFrom returns the distance covered in duration at pace, rounded to meters.
// A zero duration or pace yields 0.
func DistanceFrom(duration, pace string) float64 {
	durSec := secondsOrZero(duration)
	paceSec := secondsOrZero(pace)
	if durSec == 0 || paceSec == 0 {
		return 0
	}
	return roundTo(float64(durSec)/float64(paceSec), 3)
}

// Pace400 converts a per-kilometer pace into the time for one 400m lap.
// Named paces are resolved first.
func Pace400(pace string) string {
	paceSec := float64(secondsOrZero(Resolve(pace)))
	return FormatPace(wholeSeconds(paceSec / 10 * 4))
}

// MaxSeconds caps derived clock values. Larger products saturate instead of
// overflowing the int conversion.
const MaxSeconds = 1 << 53

// wholeSeconds rounds f to whole seconds within [0, MaxSeconds]. NaN yields 0.
func wholeSeconds(f float64) int {
	switch {
	case math.IsNaN(f) || f <= 0:
		return 0
	case f >= MaxSeconds:
		return MaxSeconds
	}
	return int(math.Round(f))
}
