package core

// aggregate.go holds the derived views a teacher asks for after an upload.
// Every function here is pure: it reads a Table and returns a new view.

import (
	"sort"
	"strconv"
)

// TopN returns the n best-graded rows, projected to name and grade.
//
// Rows are sorted by grade descending; ties keep file order. Rows with an
// absent grade never appear. A table with fewer graded rows than n returns
// all of them. Fails with *EmptyTableError when no row has a grade.
func TopN(t *Table, n int) (*Table, error) {
	graded := gradedRecords(t)
	if len(graded) == 0 {
		return nil, &EmptyTableError{Op: "top"}
	}

	sort.SliceStable(graded, func(i, j int) bool {
		return graded[i].Grade.Value > graded[j].Grade.Value
	})

	if n < 0 {
		n = 0
	}
	if n < len(graded) {
		graded = graded[:n]
	}
	return t.project(graded, t.nameCol, t.gradeCol), nil
}

// FilterByStatus returns every row with the given status, projected to name
// and status. No match yields an empty view.
func FilterByStatus(t *Table, status Status) *Table {
	var matched []Record
	for _, rec := range t.Records {
		if rec.Status == status {
			matched = append(matched, rec)
		}
	}
	return t.project(matched, t.nameCol, t.statusCol)
}

// Average returns the mean of all defined grades.
// ok is false when no row has a grade; absent grades are excluded from both
// the sum and the count.
func Average(t *Table) (avg float64, ok bool) {
	var sum float64
	var n int
	for _, rec := range t.Records {
		if rec.Grade.Valid {
			sum += rec.Grade.Value
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// AboveAverage returns rows graded strictly above the average, projected to
// name and grade.
func AboveAverage(t *Table) *Table {
	return compareToAverage(t, func(g, avg float64) bool { return g > avg })
}

// BelowAverage returns rows graded strictly below the average, projected to
// name and grade.
func BelowAverage(t *Table) *Table {
	return compareToAverage(t, func(g, avg float64) bool { return g < avg })
}

func compareToAverage(t *Table, keep func(g, avg float64) bool) *Table {
	avg, ok := Average(t)
	var matched []Record
	if ok {
		for _, rec := range t.Records {
			if rec.Grade.Valid && keep(rec.Grade.Value, avg) {
				matched = append(matched, rec)
			}
		}
	}
	return t.project(matched, t.nameCol, t.gradeCol)
}

// Summary counts rows by status. Rows with an unrecognized status are counted
// in Total only.
type Summary struct {
	Total  int `json:"total"`
	Passed int `json:"passed"`
	Failed int `json:"failed"`
	Absent int `json:"absent"`
}

// Summarize computes the status counts of t.
func Summarize(t *Table) Summary {
	s := Summary{Total: len(t.Records)}
	for _, rec := range t.Records {
		switch rec.Status {
		case StatusPass:
			s.Passed++
		case StatusFail:
			s.Failed++
		case StatusAbsent:
			s.Absent++
		}
	}
	return s
}

// Header implements View.
func (s Summary) Header() []string {
	return []string{"Total Students", "Passed Students", "Failed Students", "Absent Students"}
}

// Rows implements View.
func (s Summary) Rows() [][]string {
	return [][]string{{
		strconv.Itoa(s.Total),
		strconv.Itoa(s.Passed),
		strconv.Itoa(s.Failed),
		strconv.Itoa(s.Absent),
	}}
}

// AverageResult is the single-row view of the class average.
type AverageResult struct {
	Value float64 `json:"value"`
	Count int     `json:"count"`
}

// Header implements View.
func (a AverageResult) Header() []string {
	return []string{"Average Marks"}
}

// Rows implements View.
func (a AverageResult) Rows() [][]string {
	return [][]string{{FormatGrade(a.Value)}}
}

// AverageView returns the class average as a view.
// Fails with *EmptyTableError when no row has a grade.
func AverageView(t *Table) (AverageResult, error) {
	avg, ok := Average(t)
	if !ok {
		return AverageResult{}, &EmptyTableError{Op: "average"}
	}
	return AverageResult{Value: avg, Count: len(gradedRecords(t))}, nil
}

// FindByName returns the single row whose name matches, ignoring case and
// surrounding whitespace. The first match wins.
//
// The returned one-row table keeps every column; its grade is rounded to two
// decimals and rendered as "85.00", an absent grade as "". Bulk views are not
// rounded.
func FindByName(t *Table, name string) (*Table, error) {
	key := nameKey(name)
	for _, rec := range t.Records {
		if key == "" || nameKey(rec.Name) != key {
			continue
		}

		row := t.project([]Record{rec}, t.allColumns()...)
		found := &row.Records[0]
		if found.Grade.Valid {
			found.Grade.Value = RoundGrade(found.Grade.Value)
		}
		if t.gradeCol >= 0 {
			cell := ""
			if found.Grade.Valid {
				cell = FormatGrade(found.Grade.Value)
			}
			found.Cells[t.gradeCol] = cell
		}
		return row, nil
	}
	return nil, &NotFoundError{Kind: "student", Key: name}
}

// gradedRecords returns the records with a defined grade, in file order.
func gradedRecords(t *Table) []Record {
	var out []Record
	for _, rec := range t.Records {
		if rec.Grade.Valid {
			out = append(out, rec)
		}
	}
	return out
}
