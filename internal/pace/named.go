package pace

import "strings"

// Marker prefixes a symbolic pace token, e.g. "@EASY".
const Marker = "@"

// namedPaces maps race-pace labels (without the marker) to a pace per kilometer.
var namedPaces = map[string]string{
	"RECOV": "05:30",
	"EASY":  "05:10",
	"LRP":   "04:45",
	"MP":    "04:05",
	"MP+5%": "04:17",
	"21KP":  "03:53",
	"16KP":  "03:49",
	"LT":    "03:49",
	"10KP":  "03:36",
	"5KP":   "03:30",
	"3KP":   "03:21",
	"MIP":   "03:10",
}

// Resolve translates a named pace into its literal MM:SS value.
// Values without the marker and unknown tokens are returned unchanged.
func Resolve(p string) string {
	if !strings.HasPrefix(p, Marker) {
		return p
	}
	if literal, ok := namedPaces[strings.TrimPrefix(p, Marker)]; ok {
		return literal
	}
	return p
}

// IsNamed reports whether p carries the named-pace marker.
func IsNamed(p string) bool {
	return strings.HasPrefix(p, Marker)
}

// NamedPaces returns a copy of the vocabulary keyed by the marked token.
func NamedPaces() map[string]string {
	out := make(map[string]string, len(namedPaces))
	for token, literal := range namedPaces {
		out[Marker+token] = literal
	}
	return out
}
