package core

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

type recordingArchive struct {
	mu    sync.Mutex
	names []string
	err   error
}

func (a *recordingArchive) Store(_ context.Context, name string, data []byte) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return "", a.err
	}
	a.names = append(a.names, name)
	return "blob-" + name, nil
}

func newTestService(archive BlobArchive) *Service {
	return NewService(NewCatalog(), archive, ServiceConfig{MaxFileSize: 1024})
}

func uploadReq(data string) UploadRequest {
	return UploadRequest{
		Cohort:      CohortKey{"TE", "CS", "I"},
		FileName:    "results.csv",
		ContentType: "text/csv",
		Data:        []byte(data),
		UploadedBy:  "mrs.k",
	}
}

func TestService_Upload(t *testing.T) {
	archive := &recordingArchive{}
	svc := newTestService(archive)

	rec, err := svc.Upload(context.Background(), uploadReq(sampleSheet))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if rec.ID == "" || rec.Rows != 3 || rec.AbsentGrades != 1 {
		t.Errorf("record = %+v", rec)
	}
	if rec.ArchiveHandle != "blob-TE_CS_I.csv" || !rec.Archived() {
		t.Errorf("archive handle = %q, archived = %v", rec.ArchiveHandle, rec.Archived())
	}
	if rec.UploadedBy != "mrs.k" {
		t.Errorf("UploadedBy = %q", rec.UploadedBy)
	}

	tbl, err := svc.Table(CohortKey{"TE", "CS", "I"})
	if err != nil || tbl.Len() != 3 {
		t.Fatalf("Table = %v, %v", tbl, err)
	}

	if h := svc.History(0); len(h) != 1 || h[0].ID != rec.ID {
		t.Errorf("History = %+v", h)
	}
	if c := svc.Cohorts(); len(c) != 1 || c[0].ID != "TE_CS_I" || c[0].Students != 3 {
		t.Errorf("Cohorts = %+v", c)
	}
	if s := svc.LimiterStatus(); s.Active != 0 {
		t.Errorf("slot leaked: %+v", s)
	}
}

func TestService_LookupBySeparatorCohort(t *testing.T) {
	svc := newTestService(&recordingArchive{})

	for _, key := range []CohortKey{{"2024", "COMP_SCI", "I"}, {"2024", "COMP", "SCI_I"}, {"TE", "CS/IT", "I"}} {
		req := uploadReq(sampleSheet)
		req.Cohort = key
		if _, err := svc.Upload(context.Background(), req); err != nil {
			t.Fatalf("Upload(%+v): %v", key, err)
		}
	}

	cohorts := svc.Cohorts()
	if len(cohorts) != 3 {
		t.Fatalf("Cohorts = %+v, want 3 distinct entries", cohorts)
	}
	for _, c := range cohorts {
		key, err := ParseCohortKey(c.ID)
		if err != nil {
			t.Fatalf("ParseCohortKey(%q): %v", c.ID, err)
		}
		if key != c.Key {
			t.Errorf("ParseCohortKey(%q) = %+v, want %+v", c.ID, key, c.Key)
		}
		if _, err := svc.Lookup(key, "alice"); err != nil {
			t.Errorf("Lookup(%+v): %v", key, err)
		}
	}
}

func TestService_Upload_TrimsCohort(t *testing.T) {
	svc := newTestService(nil)
	req := uploadReq(sampleSheet)
	req.Cohort = CohortKey{" TE ", "CS ", " I"}

	if _, err := svc.Upload(context.Background(), req); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Table(CohortKey{"TE", "CS", "I"}); err != nil {
		t.Errorf("trimmed key not stored: %v", err)
	}
}

func TestService_Upload_ArchiveFailureIsNotFatal(t *testing.T) {
	svc := newTestService(&recordingArchive{err: errors.New("disk full")})

	rec, err := svc.Upload(context.Background(), uploadReq(sampleSheet))
	if err != nil {
		t.Fatalf("Upload returned archive error: %v", err)
	}
	if rec.ArchiveError != "disk full" || rec.Archived() {
		t.Errorf("record = %+v", rec)
	}
	if _, err := svc.Table(rec.Cohort); err != nil {
		t.Errorf("catalog not updated: %v", err)
	}
}

func TestService_Upload_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*UploadRequest)
		check   func(error) bool
		wantMsg string
	}{
		{
			name:   "missing columns",
			mutate: func(r *UploadRequest) { r.Data = []byte("Name,Marks\nA,1\n") },
			check: func(err error) bool {
				var se *SchemaError
				return errors.As(err, &se)
			},
		},
		{
			name:    "blank cohort field",
			mutate:  func(r *UploadRequest) { r.Cohort.Semester = "  " },
			wantMsg: "invalid cohort",
		},
		{
			name:    "empty file",
			mutate:  func(r *UploadRequest) { r.Data = nil },
			wantMsg: "empty file",
		},
		{
			name:    "too large",
			mutate:  func(r *UploadRequest) { r.Data = bytes.Repeat([]byte("x"), 2048) },
			wantMsg: "file too large",
		},
		{
			name: "not delimited text",
			mutate: func(r *UploadRequest) {
				r.ContentType = "application/pdf"
				r.FileName = "results.pdf"
			},
			check: func(err error) bool { return errors.Is(err, ErrUnsupportedContentType) },
		},
		{
			name:    "uploader name too long",
			mutate:  func(r *UploadRequest) { r.UploadedBy = strings.Repeat("u", 65) },
			wantMsg: "invalid request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(&recordingArchive{})
			req := uploadReq(sampleSheet)
			tt.mutate(&req)

			_, err := svc.Upload(context.Background(), req)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.check != nil && !tt.check(err) {
				t.Errorf("unexpected error type: %v", err)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("err = %q, want it to contain %q", err, tt.wantMsg)
			}
			if svc.catalog.Len() != 0 || len(svc.History(0)) != 0 {
				t.Error("failed upload left state behind")
			}
		})
	}
}

func TestService_Upload_FailedReuploadKeepsPrevious(t *testing.T) {
	svc := newTestService(nil)
	if _, err := svc.Upload(context.Background(), uploadReq(sampleSheet)); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Upload(context.Background(), uploadReq("Name,Marks\nA,1\n")); err == nil {
		t.Fatal("expected schema error")
	}

	tbl, err := svc.Table(CohortKey{"TE", "CS", "I"})
	if err != nil || tbl.Len() != 3 {
		t.Errorf("previous table lost: %v, %v", tbl, err)
	}
}

func TestIsDelimitedText(t *testing.T) {
	tests := []struct {
		contentType, fileName string
		want                  bool
	}{
		{"text/csv", "a.txt", true},
		{"text/csv; charset=utf-8", "", true},
		{"application/csv", "", true},
		{"text/plain", "", true},
		{"application/vnd.ms-excel", "", true},
		{"application/octet-stream", "marks.CSV", true},
		{"application/octet-stream", "marks.xlsx", false},
		{"", "", false},
		{"image/png", "", false},
	}
	for _, tt := range tests {
		if got := isDelimitedText(tt.contentType, tt.fileName); got != tt.want {
			t.Errorf("isDelimitedText(%q, %q) = %v, want %v", tt.contentType, tt.fileName, got, tt.want)
		}
	}
}

func TestService_ViewLookupExport(t *testing.T) {
	svc := newTestService(nil)
	key := CohortKey{"TE", "CS", "I"}
	if _, err := svc.Upload(context.Background(), uploadReq(sampleSheet)); err != nil {
		t.Fatal(err)
	}

	v, err := svc.View(key, ViewFailed, 0)
	if err != nil {
		t.Fatal(err)
	}
	if rows := v.Rows(); len(rows) != 1 || rows[0][0] != "Bob" {
		t.Errorf("failed view rows = %v", rows)
	}

	row, err := svc.Lookup(key, "cara")
	if err != nil {
		t.Fatal(err)
	}
	if got := row.Rows()[0]; got[1] != "72.50" {
		t.Errorf("lookup grade cell = %q, want 72.50", got[1])
	}

	if _, err := svc.Lookup(key, "Dave"); !IsNotFound(err) {
		t.Errorf("lookup Dave err = %v", err)
	}
	if _, err := svc.View(CohortKey{"BE", "CS", "I"}, ViewSummary, 0); !IsNotFound(err) {
		t.Errorf("unknown cohort err = %v", err)
	}

	file, err := svc.Export(key, ViewTop, 5, FormatXLSX)
	if err != nil {
		t.Fatal(err)
	}
	if file.Name != "top_5_students.xlsx" || file.Format != FormatXLSX {
		t.Errorf("export file = %s (%s)", file.Name, file.Format)
	}
	f, err := excelize.OpenReader(bytes.NewReader(file.Data))
	if err != nil {
		t.Fatalf("export is not a workbook: %v", err)
	}
	defer f.Close()
	rows, _ := f.GetRows(SheetName)
	if len(rows) != 3 {
		t.Errorf("workbook rows = %v", rows)
	}

	csvFile, err := svc.Export(key, ViewSummary, 0, FormatCSV)
	if err != nil {
		t.Fatal(err)
	}
	if csvFile.Name != "summary.csv" || !strings.HasPrefix(string(csvFile.Data), "Total Students,") {
		t.Errorf("csv export = %s %q", csvFile.Name, csvFile.Data)
	}
}

func TestService_Preview(t *testing.T) {
	svc := newTestService(nil)

	p, err := svc.Preview(context.Background(), []byte("Name,Grade,Result\nAlice,85,PASS\n,1,PASS\nBob,AB,maybe\n"))
	if err != nil {
		t.Fatal(err)
	}
	if p.Rows != 2 || p.Skipped != 1 || p.AbsentGrades != 1 || p.OtherStatuses != 1 {
		t.Errorf("preview = %+v", p)
	}
	if p.GradeColumn != "Grade" || len(p.Samples) != 2 {
		t.Errorf("preview = %+v", p)
	}
	if len(p.Samples[1].Issues) != 2 {
		t.Errorf("Bob issues = %v", p.Samples[1].Issues)
	}
	if svc.catalog.Len() != 0 {
		t.Error("Preview stored a table")
	}

	if _, err := svc.Preview(context.Background(), nil); err == nil {
		t.Error("expected error for empty data")
	}
	var se *SchemaError
	if _, err := svc.Preview(context.Background(), []byte("a,b\n1,2\n")); !errors.As(err, &se) {
		t.Errorf("err = %v, want *SchemaError", err)
	}
}

func TestService_HistoryBounded(t *testing.T) {
	svc := NewService(NewCatalog(), nil, ServiceConfig{HistorySize: 3})
	for i := 0; i < 5; i++ {
		req := uploadReq(sampleSheet)
		req.Cohort.Year = string(rune('A' + i))
		if _, err := svc.Upload(context.Background(), req); err != nil {
			t.Fatal(err)
		}
	}

	h := svc.History(0)
	if len(h) != 3 {
		t.Fatalf("History has %d entries, want 3", len(h))
	}
	if h[0].Cohort.Year != "E" || h[2].Cohort.Year != "C" {
		t.Errorf("History order = %s, %s, %s", h[0].Cohort.Year, h[1].Cohort.Year, h[2].Cohort.Year)
	}
	if got := svc.History(2); len(got) != 2 {
		t.Errorf("History(2) = %d entries", len(got))
	}
}

func TestService_WaitForUploads(t *testing.T) {
	svc := newTestService(nil)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := svc.WaitForUploads(ctx); err != nil {
		t.Errorf("WaitForUploads with no uploads: %v", err)
	}
}

func TestService_DefaultTopN(t *testing.T) {
	if got := newTestService(nil).DefaultTopN(); got != DefaultTopN {
		t.Errorf("DefaultTopN = %d", got)
	}
	svc := NewService(NewCatalog(), nil, ServiceConfig{DefaultTopN: 10})
	if svc.DefaultTopN() != 10 {
		t.Errorf("DefaultTopN = %d, want 10", svc.DefaultTopN())
	}
}

func TestService_Upload_UploaderFromContext(t *testing.T) {
	svc := newTestService(nil)
	req := uploadReq(sampleSheet)
	req.UploadedBy = ""

	ctx := ContextWithUploader(context.Background(), "teacher1")
	ctx = ContextWithIPAddress(ctx, "10.0.0.7")

	rec, err := svc.Upload(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	if rec.UploadedBy != "teacher1" {
		t.Errorf("UploadedBy = %q, want teacher1", rec.UploadedBy)
	}
	if IPAddressFromContext(ctx) != "10.0.0.7" {
		t.Errorf("IPAddressFromContext = %q", IPAddressFromContext(ctx))
	}
}
