package core

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Required result-sheet columns. Header matching is case-insensitive.
const (
	ColumnName   = "NAME"
	ColumnGrade  = "GRADE"
	ColumnResult = "RESULT"
	ColumnStatus = "STATUS" // accepted in place of RESULT
)

// MaxHeaderSearchRows is the maximum number of non-empty rows scanned for the
// header. Portal exports often put a title block above the real header.
var MaxHeaderSearchRows = 20

// View is anything the export codec can serialize: a header plus rows of
// cells in header order.
type View interface {
	Header() []string
	Rows() [][]string
}

// Table is an ordered set of records sharing one column set.
// A Table is not modified after construction; derived views are new tables.
type Table struct {
	Columns []string
	Records []Record

	// Skipped counts data rows dropped while parsing because the name cell
	// was blank.
	Skipped int

	// Column positions of the typed fields; -1 when projected away.
	nameCol   int
	gradeCol  int
	statusCol int
}

// ParseTableBytes parses an uploaded result sheet held in memory.
func ParseTableBytes(data []byte) (*Table, error) {
	return ParseTable(bytes.NewReader(data))
}

// ParseTable reads a result sheet and builds a Table.
//
// The only data-dependent failure is a *SchemaError when the NAME, GRADE or
// RESULT/STATUS column cannot be found. Bad grade cells become absent grades
// and rows without a name are skipped.
func ParseTable(r io.Reader) (*Table, error) {
	cr := csv.NewReader(NewSanitizingReader(r))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := findHeader(cr)
	if err != nil {
		return nil, err
	}

	idx := MakeHeaderIndex(header)
	nameCol, _ := idx.lookup(ColumnName)
	gradeCol, _ := idx.lookup(ColumnGrade)
	statusCol, _ := idx.lookup(ColumnResult, ColumnStatus)

	t := &Table{
		Columns:   make([]string, len(header)),
		nameCol:   nameCol,
		gradeCol:  gradeCol,
		statusCol: statusCol,
	}
	for i, h := range header {
		t.Columns[i] = CleanCell(h)
	}

	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if isEmptyRow(row) {
			continue
		}

		cells := fitRow(row, len(t.Columns))
		name := CleanCell(cells[nameCol])
		if name == "" {
			t.Skipped++
			continue
		}

		t.Records = append(t.Records, Record{
			Name:   name,
			Grade:  ParseGrade(cells[gradeCol]),
			Status: ParseStatus(cells[statusCol]),
			Cells:  cells,
		})
	}

	return t, nil
}

// findHeader consumes rows until one carrying every required column is found.
func findHeader(cr *csv.Reader) ([]string, error) {
	var first []string
	for scanned := 0; scanned < MaxHeaderSearchRows; {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if isEmptyRow(row) {
			continue
		}
		scanned++

		if first == nil {
			first = row
		}
		if len(missingColumns(MakeHeaderIndex(row))) == 0 {
			return row, nil
		}
	}

	return nil, &SchemaError{Missing: missingColumns(MakeHeaderIndex(first))}
}

// missingColumns lists the required columns absent from idx.
func missingColumns(idx HeaderIndex) []string {
	var missing []string
	if _, ok := idx.lookup(ColumnName); !ok {
		missing = append(missing, ColumnName)
	}
	if _, ok := idx.lookup(ColumnGrade); !ok {
		missing = append(missing, ColumnGrade)
	}
	if _, ok := idx.lookup(ColumnResult, ColumnStatus); !ok {
		missing = append(missing, ColumnResult)
	}
	return missing
}

// fitRow pads or truncates row to exactly n cells.
func fitRow(row []string, n int) []string {
	cells := make([]string, n)
	copy(cells, row)
	return cells
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.Records)
}

// Header implements View.
func (t *Table) Header() []string {
	out := make([]string, len(t.Columns))
	copy(out, t.Columns)
	return out
}

// Rows implements View.
func (t *Table) Rows() [][]string {
	rows := make([][]string, len(t.Records))
	for i, rec := range t.Records {
		rows[i] = rec.Cells
	}
	return rows
}

// NameColumn returns the header of the name column, or "" if projected away.
func (t *Table) NameColumn() string { return t.column(t.nameCol) }

// GradeColumn returns the header of the grade column, or "" if projected away.
func (t *Table) GradeColumn() string { return t.column(t.gradeCol) }

// StatusColumn returns the header of the status column, or "" if projected away.
func (t *Table) StatusColumn() string { return t.column(t.statusCol) }

func (t *Table) column(pos int) string {
	if pos < 0 || pos >= len(t.Columns) {
		return ""
	}
	return t.Columns[pos]
}

// project builds a derived table over records keeping only the columns at
// positions cols (positions into t.Columns), in that order. Negative
// positions (columns already projected away) are ignored.
func (t *Table) project(records []Record, positions ...int) *Table {
	cols := make([]int, 0, len(positions))
	for _, c := range positions {
		if c >= 0 && c < len(t.Columns) {
			cols = append(cols, c)
		}
	}

	out := &Table{
		Columns:   make([]string, len(cols)),
		Records:   make([]Record, len(records)),
		nameCol:   -1,
		gradeCol:  -1,
		statusCol: -1,
	}

	for i, c := range cols {
		out.Columns[i] = t.Columns[c]
		switch c {
		case t.nameCol:
			out.nameCol = i
		case t.gradeCol:
			out.gradeCol = i
		case t.statusCol:
			out.statusCol = i
		}
	}

	for i, rec := range records {
		cells := make([]string, len(cols))
		for j, c := range cols {
			cells[j] = rec.Cells[c]
		}
		out.Records[i] = Record{
			Name:   rec.Name,
			Grade:  rec.Grade,
			Status: rec.Status,
			Cells:  cells,
		}
	}

	return out
}

// allColumns returns the positions of every column of t.
func (t *Table) allColumns() []int {
	cols := make([]int, len(t.Columns))
	for i := range cols {
		cols[i] = i
	}
	return cols
}

// nameKey normalizes a name for lookup comparisons.
func nameKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
