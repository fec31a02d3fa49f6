package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "schema error lists missing columns",
			err:         &SchemaError{Missing: []string{"GRADE", "RESULT"}},
			wantCode:    "VAL001",
			wantMessage: "Missing column(s): GRADE, RESULT",
		},
		{
			name:        "wrapped schema error still matches",
			err:         fmt.Errorf("upload TE_CS_I: %w", &SchemaError{Missing: []string{"NAME"}}),
			wantCode:    "VAL001",
			wantMessage: "Missing column(s): NAME",
		},
		{
			name:        "cohort not found",
			err:         &NotFoundError{Kind: "cohort", Key: "TE_CS_I"},
			wantCode:    "RES001",
			wantMessage: "No results have been uploaded for this cohort",
		},
		{
			name:        "student not found",
			err:         &NotFoundError{Kind: "student", Key: "Dave"},
			wantCode:    "RES002",
			wantMessage: "Student not found",
		},
		{
			name:        "empty table",
			err:         &EmptyTableError{Op: "top"},
			wantCode:    "RES003",
			wantMessage: "No student in this sheet has a numeric grade",
		},
		{
			name:        "unsupported format",
			err:         &UnsupportedFormatError{Format: "pdf"},
			wantCode:    "FILE005",
			wantMessage: "Unsupported export format",
		},
		{
			name:        "unsupported content type",
			err:         fmt.Errorf("upload: %w", ErrUnsupportedContentType),
			wantCode:    "FILE002",
			wantMessage: "Only CSV files can be uploaded",
		},
		{
			name:        "too many uploads",
			err:         ErrTooManyUploads,
			wantCode:    "UPL001",
			wantMessage: "System is busy processing other uploads",
		},
		{
			name:        "context cancelled",
			err:         fmt.Errorf("acquire slot: %w", context.Canceled),
			wantCode:    "UPL002",
			wantMessage: "Request was cancelled",
		},
		{
			name:        "file too large pattern",
			err:         errors.New("file too large: 20MB exceeds limit"),
			wantCode:    "FILE001",
			wantMessage: "File exceeds the maximum upload size",
		},
		{
			name:        "invalid credentials pattern",
			err:         errors.New("invalid username or password"),
			wantCode:    "AUTH001",
			wantMessage: "Invalid username or password",
		},
		{
			name:        "rate limit pattern",
			err:         errors.New("rate limit exceeded"),
			wantCode:    "RATE001",
			wantMessage: "Too many requests",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("EMPTY FILE uploaded"),
			wantCode:    "FILE003",
			wantMessage: "The uploaded file is empty",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	result := FormatUserError(&NotFoundError{Kind: "student", Key: "Dave"})

	expected := "Student not found (Code: RES002). Check the spelling of the name"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}
	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil error is not user facing", err: nil, want: false},
		{name: "typed error is user facing", err: &EmptyTableError{Op: "average"}, want: true},
		{name: "known pattern is user facing", err: errors.New("empty file"), want: true},
		{name: "unknown error is not user facing", err: errors.New("random internal error xyz"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewUserError(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		if got := NewUserError(nil); got != nil {
			t.Errorf("NewUserError(nil) = %v, want nil", got)
		}
	})

	t.Run("wraps technical error with user message", func(t *testing.T) {
		techErr := &NotFoundError{Kind: "cohort", Key: "BE_IT_II"}
		userErr := NewUserError(techErr)

		if userErr.Error() != "No results have been uploaded for this cohort" {
			t.Errorf("Error() = %q, want user message", userErr.Error())
		}
		if !errors.Is(userErr, techErr) {
			t.Error("Unwrap() should return original error")
		}
		if !IsNotFound(userErr) {
			t.Error("IsNotFound should see through UserError")
		}
	})
}
