package core

import "strconv"

// Status is a student's outcome for one exam sheet.
type Status string

const (
	StatusPass   Status = "PASS"
	StatusFail   Status = "FAIL"
	StatusAbsent Status = "ABSENT"
	StatusOther  Status = "OTHER"
)

// Recognized reports whether s is one of PASS, FAIL or ABSENT.
func (s Status) Recognized() bool {
	return s == StatusPass || s == StatusFail || s == StatusAbsent
}

// Grade is an optional numeric grade.
// Valid is false when the cell was empty or not a number; an absent grade is
// distinct from a grade of zero.
type Grade struct {
	Value float64
	Valid bool
}

// String renders the grade without trailing zeros, or "" when absent.
func (g Grade) String() string {
	if !g.Valid {
		return ""
	}
	return strconv.FormatFloat(g.Value, 'f', -1, 64)
}

// Record is one student's row.
//
// Cells holds every column of the row verbatim, in the owning table's column
// order, so extra columns (roll number, seat, remarks) pass through untouched.
type Record struct {
	Name   string
	Grade  Grade
	Status Status
	Cells  []string
}
