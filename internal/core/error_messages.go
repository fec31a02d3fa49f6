package core

// # Error Codes Reference
//
// User-facing messages carry a code that users can quote to support staff.
// Codes are grouped by category:
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Missing column: the sheet lacks NAME, GRADE or RESULT
//	VAL002 - Invalid cohort: year, department or semester is empty
//	VAL003 - Invalid request: a required field is empty or malformed
//	VAL004 - Unknown view: the requested view does not exist
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large
//	FILE002 - Unsupported file type (not delimited text)
//	FILE003 - Empty file
//	FILE004 - No file selected
//	FILE005 - Unsupported export format
//
// # Result Errors (RES001-RES099)
//
//	RES001 - Cohort not found
//	RES002 - Student not found
//	RES003 - No grades in the sheet
//
// # Authentication Errors (AUTH001-AUTH099)
//
//	AUTH001 - Invalid username or password
//	AUTH002 - Username already taken
//	AUTH003 - Session expired or missing
//
// # Upload Errors (UPL001-UPL099)
//
//	UPL001 - System busy: too many uploads
//	UPL002 - Request cancelled
//	UPL003 - Request timed out
//
// # Rate Limiting (RATE001)
//
// # Default Error (ERR000)
//
// Typed errors are matched first with errors.As. Everything else falls back
// to case-insensitive substring patterns; the first match wins.

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var (
	msgMissingColumn = UserMessage{
		Message: "Required column is missing from the sheet",
		Action:  "Make sure the header row contains NAME, GRADE and RESULT",
		Code:    "VAL001",
	}
	msgCohortNotFound = UserMessage{
		Message: "No results have been uploaded for this cohort",
		Action:  "Check the year, department and semester",
		Code:    "RES001",
	}
	msgStudentNotFound = UserMessage{
		Message: "Student not found",
		Action:  "Check the spelling of the name",
		Code:    "RES002",
	}
	msgEmptyTable = UserMessage{
		Message: "No student in this sheet has a numeric grade",
		Action:  "Check the GRADE column of the uploaded file",
		Code:    "RES003",
	}
	msgUnsupportedFormat = UserMessage{
		Message: "Unsupported export format",
		Action:  "Choose CSV or Excel",
		Code:    "FILE005",
	}
	msgUnsupportedType = UserMessage{
		Message: "Only CSV files can be uploaded",
		Action:  "Save the sheet as CSV and upload it again",
		Code:    "FILE002",
	}
	msgUnknownView = UserMessage{
		Message: "Unknown view",
		Action:  "Pick one of the listed views",
		Code:    "VAL004",
	}
	msgTooManyUploads = UserMessage{
		Message: "System is busy processing other uploads",
		Action:  "Please wait a moment and try again",
		Code:    "UPL001",
	}
	msgCancelled = UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "UPL002",
	}
	msgTimeout = UserMessage{
		Message: "Request timed out",
		Action:  "Try a smaller file or check your connection",
		Code:    "UPL003",
	}
)

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error text (case-insensitive) to user messages.
// Order matters: more specific patterns come first.
var errorPatterns = []errorPattern{
	{pattern: "missing required column", msg: msgMissingColumn},
	{
		pattern: "invalid cohort",
		msg: UserMessage{
			Message: "Year, department and semester are all required",
			Action:  "Fill in every cohort field",
			Code:    "VAL002",
		},
	},
	{
		pattern: "invalid request",
		msg: UserMessage{
			Message: "Some required fields are missing or invalid",
			Action:  "Review the form and try again",
			Code:    "VAL003",
		},
	},
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Remove unused columns or split the sheet",
			Code:    "FILE001",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Please upload a CSV file with a header and data rows",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a CSV file to upload",
			Code:    "FILE004",
		},
	},
	{
		pattern: "invalid username or password",
		msg: UserMessage{
			Message: "Invalid username or password",
			Action:  "Check your credentials and try again",
			Code:    "AUTH001",
		},
	},
	{
		pattern: "username already taken",
		msg: UserMessage{
			Message: "That username is already taken",
			Action:  "Choose a different username",
			Code:    "AUTH002",
		},
	},
	{
		pattern: "session expired",
		msg: UserMessage{
			Message: "Your session has expired",
			Action:  "Please log in again",
			Code:    "AUTH003",
		},
	},
	{pattern: "too many uploads", msg: msgTooManyUploads},
	{pattern: "context canceled", msg: msgCancelled},
	{pattern: "context deadline exceeded", msg: msgTimeout},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000). Support staff
// should check the logs for the technical error.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	if msg, ok := mapTyped(err); ok {
		return msg
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

func mapTyped(err error) (UserMessage, bool) {
	var (
		schemaErr *SchemaError
		notFound  *NotFoundError
		emptyErr  *EmptyTableError
		formatErr *UnsupportedFormatError
	)
	switch {
	case errors.As(err, &schemaErr):
		msg := msgMissingColumn
		msg.Message = fmt.Sprintf("Missing column(s): %s", strings.Join(schemaErr.Missing, ", "))
		return msg, true
	case errors.As(err, &notFound):
		if notFound.Kind == "student" {
			return msgStudentNotFound, true
		}
		return msgCohortNotFound, true
	case errors.As(err, &emptyErr):
		return msgEmptyTable, true
	case errors.As(err, &formatErr):
		return msgUnsupportedFormat, true
	case errors.Is(err, ErrUnsupportedContentType):
		return msgUnsupportedType, true
	case errors.Is(err, ErrUnknownView):
		return msgUnknownView, true
	case errors.Is(err, ErrTooManyUploads):
		return msgTooManyUploads, true
	case errors.Is(err, context.Canceled):
		return msgCancelled, true
	case errors.Is(err, context.DeadlineExceeded):
		return msgTimeout, true
	}
	return UserMessage{}, false
}

// FormatUserError creates a formatted error string for display:
// "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
