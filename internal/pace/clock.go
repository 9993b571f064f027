package pace

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Seconds parses a clock string into whole seconds.
// Accepted forms: "HH:MM:SS", "MM:SS" and a bare integer, which counts as minutes.
func Seconds(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty clock value")
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("clock value %q has too many fields", s)
	}

	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return 0, fmt.Errorf("parsing clock value %q: %w", s, err)
		}
		if n < 0 {
			return 0, fmt.Errorf("clock value %q is negative", s)
		}
		nums[i] = n
	}

	switch len(nums) {
	case 3:
		return nums[0]*3600 + nums[1]*60 + nums[2], nil
	case 2:
		return nums[0]*60 + nums[1], nil
	default:
		return nums[0] * 60, nil
	}
}

// secondsOrZero is Seconds for the derivation formulas, which treat
// unparseable input as zero.
func secondsOrZero(s string) int {
	n, err := Seconds(s)
	if err != nil {
		return 0
	}
	return n
}

// FormatDuration renders seconds as HH:MM:SS. Hours grow past two digits if needed.
func FormatDuration(sec int) string {
	if sec < 0 {
		sec = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", sec/3600, sec%3600/60, sec%60)
}

// FormatPace renders seconds per unit as MM:SS. Minutes are not wrapped into hours.
func FormatPace(sec int) string {
	if sec < 0 {
		sec = 0
	}
	return fmt.Sprintf("%02d:%02d", sec/60, sec%60)
}

// NormalizeDuration expands duration shorthand to HH:MM:SS.
// "45:00" -> "00:45:00", "90" -> "01:30:00". Full or unparseable values are returned as-is.
func NormalizeDuration(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return s
	}
	if strings.Count(trimmed, ":") >= 2 {
		return s
	}
	sec, err := Seconds(trimmed)
	if err != nil {
		return s
	}
	return FormatDuration(sec)
}

// roundTo rounds f to the given number of decimal places.
func roundTo(f float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(f*p) / p
}
