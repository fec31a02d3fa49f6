package core

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseViewKind(t *testing.T) {
	for _, k := range ViewKinds() {
		got, err := ParseViewKind(string(k))
		if err != nil || got != k {
			t.Errorf("ParseViewKind(%q) = %q, %v", k, got, err)
		}
	}

	if got, err := ParseViewKind(" Above-Average "); err != nil || got != ViewAboveAverage {
		t.Errorf("ParseViewKind is not case/space tolerant: %q, %v", got, err)
	}

	if _, err := ParseViewKind("median"); !errors.Is(err, ErrUnknownView) {
		t.Errorf("err = %v, want ErrUnknownView", err)
	}
}

func TestViewKindNames(t *testing.T) {
	tests := []struct {
		kind      ViewKind
		n         int
		wantLabel string
		wantStem  string
	}{
		{ViewTop, 5, "Top 5 Students", "top_5_students"},
		{ViewTop, 3, "Top 3 Students", "top_3_students"},
		{ViewFailed, 0, "Failed Students", "failed_students"},
		{ViewPassed, 0, "Passed Students", "passed_students"},
		{ViewAbsent, 0, "Absent Students", "absent_students"},
		{ViewAverage, 0, "Average Marks", "average_marks"},
		{ViewAboveAverage, 0, "Above Average Students", "above_average_students"},
		{ViewBelowAverage, 0, "Below Average Students", "below_average_students"},
		{ViewSummary, 0, "Summary of Results", "summary"},
	}
	for _, tt := range tests {
		if got := tt.kind.Label(tt.n); got != tt.wantLabel {
			t.Errorf("%s.Label(%d) = %q, want %q", tt.kind, tt.n, got, tt.wantLabel)
		}
		if got := tt.kind.FileStem(tt.n); got != tt.wantStem {
			t.Errorf("%s.FileStem(%d) = %q, want %q", tt.kind, tt.n, got, tt.wantStem)
		}
	}
}

func TestBuildView(t *testing.T) {
	tbl := mustParse(t, "Name,Grade,Result\nAlice,85,PASS\nBob,40,FAIL\nCara,,ABSENT\n")

	tests := []struct {
		kind       ViewKind
		wantHeader []string
		wantRows   [][]string
	}{
		{ViewTop, []string{"Name", "Grade"}, [][]string{{"Alice", "85"}, {"Bob", "40"}}},
		{ViewFailed, []string{"Name", "Result"}, [][]string{{"Bob", "FAIL"}}},
		{ViewPassed, []string{"Name", "Result"}, [][]string{{"Alice", "PASS"}}},
		{ViewAbsent, []string{"Name", "Result"}, [][]string{{"Cara", "ABSENT"}}},
		{ViewAverage, []string{"Average Marks"}, [][]string{{"62.50"}}},
		{ViewAboveAverage, []string{"Name", "Grade"}, [][]string{{"Alice", "85"}}},
		{ViewBelowAverage, []string{"Name", "Grade"}, [][]string{{"Bob", "40"}}},
		{ViewSummary, []string{"Total Students", "Passed Students", "Failed Students", "Absent Students"}, [][]string{{"3", "1", "1", "1"}}},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			v, err := BuildView(tbl, tt.kind, DefaultTopN)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(v.Header(), tt.wantHeader) {
				t.Errorf("Header = %v, want %v", v.Header(), tt.wantHeader)
			}
			if !reflect.DeepEqual(v.Rows(), tt.wantRows) {
				t.Errorf("Rows = %v, want %v", v.Rows(), tt.wantRows)
			}
		})
	}
}

func TestBuildView_Errors(t *testing.T) {
	noGrades := mustParse(t, "Name,Grade,Result\nCara,,ABSENT\n")

	for _, kind := range []ViewKind{ViewTop, ViewAverage} {
		v, err := BuildView(noGrades, kind, 5)
		if !IsEmptyTable(err) {
			t.Errorf("%s: err = %v, want *EmptyTableError", kind, err)
		}
		if v != nil {
			t.Errorf("%s: view = %v, want nil interface", kind, v)
		}
	}

	if _, err := BuildView(noGrades, ViewKind("median"), 5); !errors.Is(err, ErrUnknownView) {
		t.Errorf("err = %v, want ErrUnknownView", err)
	}
}
