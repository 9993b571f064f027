// Package splitcsv reads workout splits from semicolon-separated text:
//
//	#;DISTANCE;DURATION;PACE
//	2;;@EASY
//	1,5;06:00;
//	;00:10:00;05:00
//
// Cells may be empty; the missing quantity is derived on import.
package splitcsv

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/meltforce/splits/internal/models"
)

var (
	// headerRe matches: #;DISTANCE;DURATION;PACE (case-insensitive, index column optional)
	headerRe = regexp.MustCompile(`(?i)^(#;)?DISTANCE;DURATION;PACE$`)

	// rowRe matches: [index;]distance;duration;pace with any cell empty
	rowRe = regexp.MustCompile(`^(?:(\d+);)?([^;]*);([^;]*);([^;]*)$`)
)

// Row is a parsed line with its 1-based line number in the input.
type Row struct {
	Line    int
	Segment models.Segment
}

// Parse reads split rows. Blank lines, header lines and lines starting with
// "//" are skipped. A malformed line is an error that names its line number.
func Parse(r io.Reader) ([]Row, error) {
	scanner := bufio.NewScanner(r)
	var rows []Row
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "//") || headerRe.MatchString(line) {
			continue
		}

		m := rowRe.FindStringSubmatch(line)
		if m == nil {
			return nil, fmt.Errorf("line %d: expected distance;duration;pace, got %q", lineNo, line)
		}

		distance, err := parseDistance(m[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		rows = append(rows, Row{
			Line: lineNo,
			Segment: models.Segment{
				Distance: distance,
				Duration: unquote(m[3]),
				Pace:     unquote(m[4]),
			},
		})
	}

	return rows, scanner.Err()
}

// parseDistance accepts European decimal commas: "1,5" -> 1.5. Empty means absent.
func parseDistance(s string) (float64, error) {
	s = unquote(s)
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid distance %q", s)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid distance %q", s)
	}
	if f < 0 {
		return 0, fmt.Errorf("negative distance %q", s)
	}
	return f, nil
}

func unquote(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"`)
}
