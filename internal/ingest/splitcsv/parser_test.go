package splitcsv

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/meltforce/splits/internal/models"
)

const sampleSplits = `
// Thursday intervals
#;DISTANCE;DURATION;PACE
1;2;;@EASY
2;1;;@5KP
3;0,4;01:24;
4;1;;@5KP
5;;00:10:20;05:10
`

// TestParseSplits verifies the happy path: header and comments skipped,
// index column optional, European decimals, empty cells kept empty.
func TestParseSplits(t *testing.T) {
	rows, err := Parse(strings.NewReader(sampleSplits))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	want := []Row{
		{Line: 4, Segment: models.Segment{Distance: 2, Pace: "@EASY"}},
		{Line: 5, Segment: models.Segment{Distance: 1, Pace: "@5KP"}},
		{Line: 6, Segment: models.Segment{Distance: 0.4, Duration: "01:24"}},
		{Line: 7, Segment: models.Segment{Distance: 1, Pace: "@5KP"}},
		{Line: 8, Segment: models.Segment{Duration: "00:10:20", Pace: "05:10"}},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

// TestParseWithoutIndex verifies three-column rows without the index column.
func TestParseWithoutIndex(t *testing.T) {
	rows, err := Parse(strings.NewReader("distance;duration;pace\n10;;\"05:00\"\n"))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if rows[0].Segment.Distance != 10 || rows[0].Segment.Pace != "05:00" {
		t.Errorf("row = %+v", rows[0])
	}
}

// TestParseErrors verifies malformed lines are reported with their line number.
func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"too few cells", "10;05:00\n", "line 1"},
		{"bad distance", "\nten;;05:00\n", "line 2"},
		{"negative distance", "-1;;05:00\n", "negative distance"},
		{"nan distance", "NaN;;05:00\n", "invalid distance"},
		{"infinite distance", "Inf;;05:00\n", "invalid distance"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

// TestParseEmpty verifies empty input yields no rows and no error.
func TestParseEmpty(t *testing.T) {
	rows, err := Parse(strings.NewReader("\n\n#;DISTANCE;DURATION;PACE\n"))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("rows = %d, want 0", len(rows))
	}
}
