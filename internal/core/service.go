package core

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/JonMunkholm/gradebook/internal/logging"
)

// DefaultMaxFileSize bounds a single upload when no limit is configured.
const DefaultMaxFileSize int64 = 10 << 20

var errEmptyFile = errors.New("empty file")

// acceptedContentTypes are the media types browsers send for CSV files.
var acceptedContentTypes = map[string]bool{
	"text/csv":                 true,
	"application/csv":          true,
	"text/plain":               true,
	"application/vnd.ms-excel": true,
}

// ServiceConfig holds the tunables of a Service. Zero values pick defaults.
type ServiceConfig struct {
	MaxFileSize          int64
	MaxConcurrentUploads int
	MaxUploadWait        time.Duration
	DefaultTopN          int
	HistorySize          int
}

// Service runs the upload, view, lookup and export operations over a
// Catalog. It is safe for concurrent use.
type Service struct {
	catalog  *Catalog
	archive  BlobArchive
	limiter  *UploadLimiter
	history  *uploadHistory
	validate *validator.Validate

	maxFileSize int64
	topN        int
}

// NewService creates a Service. archive may be nil, in which case uploads are
// only kept in the catalog.
func NewService(catalog *Catalog, archive BlobArchive, cfg ServiceConfig) *Service {
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = DefaultMaxFileSize
	}
	if cfg.DefaultTopN <= 0 {
		cfg.DefaultTopN = DefaultTopN
	}
	return &Service{
		catalog:     catalog,
		archive:     archive,
		limiter:     NewUploadLimiter(cfg.MaxConcurrentUploads, cfg.MaxUploadWait),
		history:     newUploadHistory(cfg.HistorySize),
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		maxFileSize: cfg.MaxFileSize,
		topN:        cfg.DefaultTopN,
	}
}

// DefaultTopN is the row count used for the top view when the caller gives none.
func (s *Service) DefaultTopN() int {
	return s.topN
}

// Upload parses req.Data and stores the table under req.Cohort, replacing any
// earlier upload for that cohort. Nothing is stored when parsing fails.
//
// The raw bytes are then handed to the blob archive. An archive failure is
// logged and recorded on the returned UploadRecord; it does not fail the upload.
func (s *Service) Upload(ctx context.Context, req UploadRequest) (*UploadRecord, error) {
	key, err := s.validateUpload(req)
	if err != nil {
		return nil, err
	}

	if req.UploadedBy == "" {
		req.UploadedBy = UploaderFromContext(ctx)
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	log := logging.WithFields(ctx,
		"cohort", key.String(),
		"file", req.FileName,
		"uploaded_by", req.UploadedBy,
		"ip", IPAddressFromContext(ctx),
	)

	t, err := ParseTableBytes(req.Data)
	if err != nil {
		log.Warn("upload rejected", "error", err)
		return nil, fmt.Errorf("upload %s: %w", key, err)
	}

	s.catalog.Put(key, t)

	rec := UploadRecord{
		ID:         uuid.New().String(),
		Cohort:     key,
		FileName:   req.FileName,
		Rows:       t.Len(),
		Skipped:    t.Skipped,
		UploadedBy: req.UploadedBy,
		UploadedAt: time.Now(),
	}
	for _, r := range t.Records {
		if !r.Grade.Valid {
			rec.AbsentGrades++
		}
	}

	if s.archive != nil {
		handle, err := s.archive.Store(ctx, key.FileName(), req.Data)
		if err != nil {
			log.Warn("archive failed, results kept in memory only", "error", err)
			rec.ArchiveError = err.Error()
		} else {
			rec.ArchiveHandle = handle
		}
	}

	s.history.add(rec)
	log.Info("upload stored",
		"upload_id", rec.ID,
		"rows", rec.Rows,
		"skipped", rec.Skipped,
		"absent_grades", rec.AbsentGrades,
		"archived", rec.Archived(),
	)
	return &rec, nil
}

// validateUpload checks everything that can be checked before parsing and
// returns the normalized cohort key.
func (s *Service) validateUpload(req UploadRequest) (CohortKey, error) {
	key := CohortKey{
		Year:       strings.TrimSpace(req.Cohort.Year),
		Department: strings.TrimSpace(req.Cohort.Department),
		Semester:   strings.TrimSpace(req.Cohort.Semester),
	}
	if err := s.validate.Struct(key); err != nil {
		return CohortKey{}, fmt.Errorf("invalid cohort: %w", err)
	}

	if len(req.Data) == 0 {
		return CohortKey{}, errEmptyFile
	}
	if int64(len(req.Data)) > s.maxFileSize {
		return CohortKey{}, fmt.Errorf("file too large: %d bytes exceeds limit of %d", len(req.Data), s.maxFileSize)
	}
	if err := s.validate.Struct(req); err != nil {
		return CohortKey{}, fmt.Errorf("invalid request: %w", err)
	}
	if !isDelimitedText(req.ContentType, req.FileName) {
		return CohortKey{}, fmt.Errorf("%w (got %q)", ErrUnsupportedContentType, req.ContentType)
	}
	return key, nil
}

// isDelimitedText accepts the CSV media types, or any type when the file
// name ends in .csv.
func isDelimitedText(contentType, fileName string) bool {
	if strings.EqualFold(filepath.Ext(fileName), ".csv") {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return acceptedContentTypes[strings.ToLower(mediaType)]
}

// Table returns the stored table for key.
func (s *Service) Table(key CohortKey) (*Table, error) {
	return s.catalog.Get(key)
}

// View computes a derived view of the cohort's table. n is only used by the
// top view.
func (s *Service) View(key CohortKey, kind ViewKind, n int) (View, error) {
	t, err := s.catalog.Get(key)
	if err != nil {
		return nil, err
	}
	return BuildView(t, kind, n)
}

// Lookup returns the one-row table for a student of the cohort.
func (s *Service) Lookup(key CohortKey, name string) (*Table, error) {
	t, err := s.catalog.Get(key)
	if err != nil {
		return nil, err
	}
	return FindByName(t, name)
}

// Export computes a view and encodes it in format f.
func (s *Service) Export(key CohortKey, kind ViewKind, n int, f Format) (*ExportFile, error) {
	v, err := s.View(key, kind, n)
	if err != nil {
		return nil, err
	}
	data, err := Encode(v, f)
	if err != nil {
		return nil, fmt.Errorf("export %s %s: %w", key, kind, err)
	}
	return &ExportFile{
		Name:   kind.FileStem(n) + f.Extension(),
		Format: f,
		Data:   data,
	}, nil
}

// Cohorts lists the uploaded cohorts in upload order.
func (s *Service) Cohorts() []CohortInfo {
	var out []CohortInfo
	for key := range s.catalog.Keys() {
		info := CohortInfo{Key: key, ID: key.ID()}
		if t, err := s.catalog.Get(key); err == nil {
			info.Students = t.Len()
		}
		out = append(out, info)
	}
	return out
}

// History returns recent successful uploads, newest first.
func (s *Service) History(limit int) []UploadRecord {
	return s.history.list(limit)
}

// LimiterStatus reports upload slot usage.
func (s *Service) LimiterStatus() UploadLimiterStatus {
	return s.limiter.Status()
}

// WaitForUploads blocks until in-flight uploads finish or ctx ends.
func (s *Service) WaitForUploads(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
