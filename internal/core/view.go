package core

import (
	"fmt"
	"strings"
)

// ViewKind names one of the derived views offered on the teacher dashboard.
type ViewKind string

const (
	ViewTop          ViewKind = "top"
	ViewFailed       ViewKind = "failed"
	ViewPassed       ViewKind = "passed"
	ViewAbsent       ViewKind = "absent"
	ViewAverage      ViewKind = "average"
	ViewAboveAverage ViewKind = "above-average"
	ViewBelowAverage ViewKind = "below-average"
	ViewSummary      ViewKind = "summary"
)

// DefaultTopN is the number of rows in the "top" view when none is given.
const DefaultTopN = 5

// ViewKinds lists every view in dashboard order.
func ViewKinds() []ViewKind {
	return []ViewKind{
		ViewTop, ViewFailed, ViewPassed, ViewAbsent,
		ViewAverage, ViewAboveAverage, ViewBelowAverage, ViewSummary,
	}
}

// ParseViewKind converts a query token to a ViewKind.
func ParseViewKind(s string) (ViewKind, error) {
	k := ViewKind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range ViewKinds() {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownView, s)
}

// Label returns the dashboard title of the view.
func (k ViewKind) Label(n int) string {
	switch k {
	case ViewTop:
		return fmt.Sprintf("Top %d Students", n)
	case ViewFailed:
		return "Failed Students"
	case ViewPassed:
		return "Passed Students"
	case ViewAbsent:
		return "Absent Students"
	case ViewAverage:
		return "Average Marks"
	case ViewAboveAverage:
		return "Above Average Students"
	case ViewBelowAverage:
		return "Below Average Students"
	case ViewSummary:
		return "Summary of Results"
	default:
		return string(k)
	}
}

// FileStem returns the base name used for exported files of this view,
// e.g. "top_5_students" or "failed_students".
func (k ViewKind) FileStem(n int) string {
	switch k {
	case ViewTop:
		return fmt.Sprintf("top_%d_students", n)
	case ViewAverage:
		return "average_marks"
	case ViewSummary:
		return "summary"
	default:
		return strings.ReplaceAll(string(k), "-", "_") + "_students"
	}
}

// BuildView computes the view of the given kind over t.
// n is only used by ViewTop.
func BuildView(t *Table, kind ViewKind, n int) (View, error) {
	switch kind {
	case ViewTop:
		top, err := TopN(t, n)
		if err != nil {
			return nil, err
		}
		return top, nil
	case ViewFailed:
		return FilterByStatus(t, StatusFail), nil
	case ViewPassed:
		return FilterByStatus(t, StatusPass), nil
	case ViewAbsent:
		return FilterByStatus(t, StatusAbsent), nil
	case ViewAverage:
		avg, err := AverageView(t)
		if err != nil {
			return nil, err
		}
		return avg, nil
	case ViewAboveAverage:
		return AboveAverage(t), nil
	case ViewBelowAverage:
		return BelowAverage(t), nil
	case ViewSummary:
		return Summarize(t), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownView, string(kind))
	}
}
