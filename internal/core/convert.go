package core

// convert.go turns raw CSV cells into typed record fields.
//
// Teachers export grade sheets from Excel, Google Sheets and school portals,
// so cells arrive with stray whitespace, Excel formula prefixes (="85") and
// quoting artifacts. Grade coercion never fails: a cell that is not a plain
// numeral becomes an absent grade.

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// numericRegex validates that a string is a plain numeral after cleanup.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// ParseGrade converts a cell to a Grade.
// Returns an absent grade for empty, non-numeric or non-finite input.
func ParseGrade(s string) Grade {
	s = CleanCell(s)
	if s == "" || !numericRegex.MatchString(s) {
		return Grade{}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return Grade{}
	}
	return Grade{Value: v, Valid: true}
}

// ParseStatus converts a cell to a Status.
// Matching is case-insensitive; anything unrecognized is StatusOther.
func ParseStatus(s string) Status {
	switch strings.ToUpper(CleanCell(s)) {
	case string(StatusPass):
		return StatusPass
	case string(StatusFail):
		return StatusFail
	case string(StatusAbsent):
		return StatusAbsent
	default:
		return StatusOther
	}
}

// RoundGrade rounds v to two decimal places.
//
// Rounding is half-to-even on the exact binary value of v, which is what
// strconv produces: 0.125 rounds to 0.12, 0.375 to 0.38.
func RoundGrade(v float64) float64 {
	r, _ := strconv.ParseFloat(FormatGrade(v), 64)
	return r
}

// FormatGrade renders v with exactly two decimals ("85.00").
func FormatGrade(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// HeaderIndex maps column names (lowercase) to their position in the CSV row.
type HeaderIndex map[string]int

// MakeHeaderIndex creates a HeaderIndex from a CSV header row.
// Keys are lowercased for case-insensitive matching; the first occurrence of
// a repeated column wins.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		key := strings.ToLower(CleanCell(h))
		if _, seen := idx[key]; !seen {
			idx[key] = i
		}
	}
	return idx
}

// lookup returns the position of the first of names present in the index.
func (h HeaderIndex) lookup(names ...string) (int, bool) {
	for _, n := range names {
		if pos, ok := h[strings.ToLower(n)]; ok {
			return pos, true
		}
	}
	return 0, false
}

// CleanCell removes common CSV artifacts from a cell value:
// - Trims whitespace
// - Removes Excel formula prefix (="...")
// - Removes surrounding quotes
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") && len(s) >= 3 {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	s = strings.Trim(s, `"'`)
	return strings.TrimSpace(s)
}

// isEmptyRow reports whether every cell in row is blank.
func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
