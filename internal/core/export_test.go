package core

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"csv", FormatCSV, false},
		{"CSV", FormatCSV, false},
		{" xlsx ", FormatXLSX, false},
		{"excel", FormatXLSX, false},
		{"pdf", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.input)
		if tt.wantErr {
			var fe *UnsupportedFormatError
			if !errors.As(err, &fe) {
				t.Errorf("ParseFormat(%q) err = %v, want *UnsupportedFormatError", tt.input, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", tt.input, got, err, tt.want)
		}
	}
}

func TestFormatMetadata(t *testing.T) {
	if FormatCSV.Extension() != ".csv" || FormatXLSX.Extension() != ".xlsx" {
		t.Errorf("extensions = %q, %q", FormatCSV.Extension(), FormatXLSX.Extension())
	}
	if FormatXLSX.ContentType() != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("xlsx content type = %q", FormatXLSX.ContentType())
	}
	if FormatCSV.ContentType() != "text/csv; charset=utf-8" {
		t.Errorf("csv content type = %q", FormatCSV.ContentType())
	}
}

func TestExportCSV(t *testing.T) {
	tbl := mustParse(t, "Name,Grade,Result\nAlice,85,PASS\n\"Smith, Bob\",40,FAIL\n")

	top, err := TopN(tbl, 5)
	if err != nil {
		t.Fatal(err)
	}
	data, err := Encode(top, FormatCSV)
	if err != nil {
		t.Fatal(err)
	}

	want := "Name,Grade\nAlice,85\n\"Smith, Bob\",40\n"
	if string(data) != want {
		t.Errorf("csv = %q, want %q", data, want)
	}
}

func TestExportCSV_Summary(t *testing.T) {
	var buf bytes.Buffer
	if err := Export(&buf, Summary{Total: 3, Passed: 1, Failed: 1, Absent: 1}, FormatCSV); err != nil {
		t.Fatal(err)
	}
	want := "Total Students,Passed Students,Failed Students,Absent Students\n3,1,1,1\n"
	if buf.String() != want {
		t.Errorf("csv = %q, want %q", buf.String(), want)
	}
}

func TestExportCSV_EmptyView(t *testing.T) {
	tbl := mustParse(t, sampleSheet)
	data, err := Encode(FilterByStatus(tbl, StatusOther), FormatCSV)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "Name,Result\n" {
		t.Errorf("csv = %q, want header only", data)
	}
}

func TestExportXLSX(t *testing.T) {
	tbl := mustParse(t, "Roll,Name,Grade,Result\n007,Alice,85,PASS\n008,Bob,72.5,PASS\n009,Cara,AB,ABSENT\n")

	data, err := Encode(tbl, FormatXLSX)
	if err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	if sheets := f.GetSheetList(); !reflect.DeepEqual(sheets, []string{SheetName}) {
		t.Errorf("sheets = %v, want [%s]", sheets, SheetName)
	}

	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{
		{"Roll", "Name", "Grade", "Result"},
		{"007", "Alice", "85", "PASS"},
		{"008", "Bob", "72.5", "PASS"},
		{"009", "Cara", "AB", "ABSENT"},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("rows = %v, want %v", rows, want)
	}

	// Canonical numerals are stored as numbers, anything else as text.
	typ, err := f.GetCellType(SheetName, "C2")
	if err != nil {
		t.Fatal(err)
	}
	if typ != excelize.CellTypeUnset && typ != excelize.CellTypeNumber {
		t.Errorf("C2 type = %v, want number", typ)
	}
	typ, err = f.GetCellType(SheetName, "A2")
	if err != nil {
		t.Fatal(err)
	}
	if typ != excelize.CellTypeSharedString && typ != excelize.CellTypeInlineString {
		t.Errorf("A2 type = %v, want string", typ)
	}
}

func TestExport_UnsupportedFormat(t *testing.T) {
	var buf bytes.Buffer
	err := Export(&buf, Summary{}, Format("pdf"))

	var fe *UnsupportedFormatError
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want *UnsupportedFormatError", err)
	}
	if fe.Format != "pdf" {
		t.Errorf("Format = %q", fe.Format)
	}
	if buf.Len() != 0 {
		t.Error("nothing should be written for an unsupported format")
	}
}

func TestToCells(t *testing.T) {
	got := toCells([]string{"85", "72.5", "007", "AB", "", "1e3", "-4"}, true)
	want := []interface{}{float64(85), 72.5, "007", "AB", "", "1e3", float64(-4)}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("toCells = %#v, want %#v", got, want)
	}

	header := toCells([]string{"85"}, false)
	if header[0] != "85" {
		t.Errorf("header cell converted: %#v", header[0])
	}
}
