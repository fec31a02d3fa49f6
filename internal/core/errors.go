package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsupportedContentType is returned when an upload is not declared as
	// delimited text.
	ErrUnsupportedContentType = errors.New("unsupported content type: upload must be a CSV file")

	// ErrUnknownView is returned for a view token that names no aggregation.
	ErrUnknownView = errors.New("unknown view")
)

// SchemaError reports required columns missing from an uploaded sheet.
// Nothing is stored when an upload fails with a SchemaError.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required column(s): %s", strings.Join(e.Missing, ", "))
}

// EmptyTableError is returned when an aggregation needs at least one row with
// a defined grade and the table has none.
type EmptyTableError struct {
	Op string
}

func (e *EmptyTableError) Error() string {
	return fmt.Sprintf("%s: no rows with a numeric grade", e.Op)
}

// NotFoundError is returned when a cohort or a student name has no result.
type NotFoundError struct {
	Kind string // "cohort" or "student"
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Key)
}

// UnsupportedFormatError is returned for an export format token other than
// csv or xlsx.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported export format %q (use csv or xlsx)", e.Format)
}

// IsNotFound reports whether err is or wraps a *NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsEmptyTable reports whether err is or wraps an *EmptyTableError.
func IsEmptyTable(err error) bool {
	var et *EmptyTableError
	return errors.As(err, &et)
}
