package core

import (
	"context"
	"time"
)

// BlobArchive persists raw upload bytes. Archiving is best-effort: a failed
// Store never undoes a catalog update.
type BlobArchive interface {
	// Store saves data under name and returns a backend-specific handle.
	Store(ctx context.Context, name string, data []byte) (string, error)
}

// UploadRequest is one teacher upload.
type UploadRequest struct {
	Cohort      CohortKey `validate:"required"`
	FileName    string    `validate:"max=255"`
	ContentType string
	Data        []byte `validate:"required"`
	UploadedBy  string `validate:"max=64"`
}

// UploadRecord is the history entry for a successful upload.
type UploadRecord struct {
	ID            string    `json:"id"`
	Cohort        CohortKey `json:"cohort"`
	FileName      string    `json:"fileName"`
	Rows          int       `json:"rows"`
	Skipped       int       `json:"skipped"`
	AbsentGrades  int       `json:"absentGrades"`
	ArchiveHandle string    `json:"archiveHandle,omitempty"`
	ArchiveError  string    `json:"archiveError,omitempty"`
	UploadedBy    string    `json:"uploadedBy,omitempty"`
	UploadedAt    time.Time `json:"uploadedAt"`
}

// Archived reports whether the raw bytes reached the blob archive.
func (r UploadRecord) Archived() bool {
	return r.ArchiveError == "" && r.ArchiveHandle != ""
}

// ExportFile is an encoded view ready to be sent to a client.
type ExportFile struct {
	Name   string
	Format Format
	Data   []byte
}

// CohortInfo describes one catalog entry for listings.
type CohortInfo struct {
	Key      CohortKey `json:"key"`
	ID       string    `json:"id"`
	Students int       `json:"students"`
}
