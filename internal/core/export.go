package core

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// SheetName is the single worksheet written to XLSX exports.
const SheetName = "Sheet1"

// ParseFormat converts a format token ("csv", "xlsx", "excel") to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	default:
		return "", &UnsupportedFormatError{Format: s}
	}
}

// Extension returns the file extension including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// ContentType returns the MIME type served with exports of this format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Encode serializes v in format f.
func Encode(v View, f Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Export(&buf, v, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Export writes v to w in format f.
func Export(w io.Writer, v View, f Format) error {
	switch f {
	case FormatCSV:
		return writeCSV(w, v)
	case FormatXLSX:
		return writeXLSX(w, v)
	default:
		return &UnsupportedFormatError{Format: string(f)}
	}
}

// writeCSV writes the header and rows with no index column.
func writeCSV(w io.Writer, v View) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(v.Header()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range v.Rows() {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// writeXLSX writes a workbook with one sheet holding the header and rows.
func writeXLSX(w io.Writer, v View) error {
	f := excelize.NewFile()
	defer f.Close()

	header := v.Header()
	if err := setRow(f, 1, toCells(header, false)); err != nil {
		return err
	}
	for i, row := range v.Rows() {
		if err := setRow(f, i+2, toCells(row, true)); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, row int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(SheetName, cell, &cells); err != nil {
		return fmt.Errorf("write xlsx row %d: %w", row, err)
	}
	return nil
}

// toCells converts text cells for excelize. When numeric is set, cells whose
// text is a canonical number ("85", "72.5") are stored as numbers; anything
// else, including "007", stays text.
func toCells(row []string, numeric bool) []interface{} {
	out := make([]interface{}, len(row))
	for i, s := range row {
		out[i] = s
		if !numeric {
			continue
		}
		if v, err := strconv.ParseFloat(s, 64); err == nil && strconv.FormatFloat(v, 'f', -1, 64) == s {
			out[i] = v
		}
	}
	return out
}
