package core

import (
	"context"
	"time"
)

// Preview is a read-only report on a sheet before it is uploaded.
type Preview struct {
	Columns          []string     `json:"columns"`
	NameColumn       string       `json:"nameColumn"`
	GradeColumn      string       `json:"gradeColumn"`
	StatusColumn     string       `json:"statusColumn"`
	Rows             int          `json:"rows"`
	Skipped          int          `json:"skipped"`
	AbsentGrades     int          `json:"absentGrades"`
	OtherStatuses    int          `json:"otherStatuses"`
	Summary          Summary      `json:"summary"`
	Samples          []RowPreview `json:"samples"`
	ProcessingTimeMs int64        `json:"processingTimeMs"`
}

// RowPreview is one sample row keyed by column name.
type RowPreview struct {
	Name   string            `json:"name"`
	Values map[string]string `json:"values"`
	Issues []string          `json:"issues,omitempty"`
}

const maxPreviewSamples = 10

// Preview parses data without storing anything and reports what an upload
// would contain. Schema errors are returned the same way Upload returns them.
func (s *Service) Preview(ctx context.Context, data []byte) (*Preview, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errEmptyFile
	}

	start := time.Now()
	t, err := ParseTableBytes(data)
	if err != nil {
		return nil, err
	}

	p := buildPreview(t)
	p.ProcessingTimeMs = time.Since(start).Milliseconds()
	return p, nil
}

func buildPreview(t *Table) *Preview {
	p := &Preview{
		Columns:      t.Header(),
		NameColumn:   t.NameColumn(),
		GradeColumn:  t.GradeColumn(),
		StatusColumn: t.StatusColumn(),
		Rows:         t.Len(),
		Skipped:      t.Skipped,
		Summary:      Summarize(t),
	}

	for _, rec := range t.Records {
		var issues []string
		if !rec.Grade.Valid {
			p.AbsentGrades++
			issues = append(issues, "grade is not a number")
		}
		if !rec.Status.Recognized() {
			p.OtherStatuses++
			issues = append(issues, "result is not PASS, FAIL or ABSENT")
		}

		if len(p.Samples) < maxPreviewSamples {
			values := make(map[string]string, len(t.Columns))
			for i, col := range t.Columns {
				values[col] = rec.Cells[i]
			}
			p.Samples = append(p.Samples, RowPreview{
				Name:   rec.Name,
				Values: values,
				Issues: issues,
			})
		}
	}
	return p
}
