package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/gradebook/internal/core"
	"github.com/JonMunkholm/gradebook/internal/logging"
	mw "github.com/JonMunkholm/gradebook/internal/web/middleware"
	"github.com/JonMunkholm/gradebook/internal/web/templates"
)

// recentUploads is how many history entries the dashboard lists.
const recentUploads = 10

// multipartOverhead is allowed on top of the file size limit for the form's
// other fields and boundaries.
const multipartOverhead = 64 << 10

func (s *Server) handleTeacherDashboard(w http.ResponseWriter, r *http.Request) {
	sess, _ := mw.SessionFromContext(r.Context())
	p := templates.TeacherDashboardParams{
		Session: sess,
		Cohorts: s.service.Cohorts(),
		History: s.service.History(recentUploads),
		Limiter: s.service.LimiterStatus(),
		TopN:    s.service.DefaultTopN(),
	}
	if uploaded := r.URL.Query().Get("uploaded"); uploaded != "" {
		p.Notice = "Results for " + uploaded + " uploaded."
	}
	s.render(w, r, http.StatusOK, templates.TeacherDashboard(p))
}

// readUploadForm parses the multipart form and returns the file bytes,
// its name and its declared content type.
func (s *Server) readUploadForm(w http.ResponseWriter, r *http.Request) ([]byte, string, string, error) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, "", "", fmt.Errorf("file too large: %w", err)
		}
		return nil, "", "", fmt.Errorf("invalid request: %w", err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", "", errors.New("no file provided")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", "", fmt.Errorf("read upload: %w", err)
	}
	return data, header.Filename, header.Header.Get("Content-Type"), nil
}

// handleUpload stores an uploaded result sheet for the cohort named in the
// form. HTMX requests get the upload summary partial; plain form posts are
// redirected to the cohort page.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	data, name, contentType, err := s.readUploadForm(w, r)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	rec, err := s.service.Upload(ctx, core.UploadRequest{
		Cohort: core.CohortKey{
			Year:       r.FormValue("year"),
			Department: r.FormValue("department"),
			Semester:   r.FormValue("semester"),
		},
		FileName:    name,
		ContentType: contentType,
		Data:        data,
	})
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	switch {
	case isHTMX(r):
		s.render(w, r, http.StatusOK, templates.UploadSummary(*rec))
	case wantsJSON(r):
		writeJSON(w, http.StatusCreated, rec)
	default:
		http.Redirect(w, r, templates.CohortPath(rec.Cohort), http.StatusSeeOther)
	}
}

// handlePreview reports what an upload would contain without storing it.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	data, _, _, err := s.readUploadForm(w, r)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	preview, err := s.service.Preview(r.Context(), data)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

// handleCohortView renders one derived view of a cohort. A view that needs
// graded rows renders a message instead of failing when there are none.
func (s *Server) handleCohortView(w http.ResponseWriter, r *http.Request) {
	key, err := cohortFromPath(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	kind, n, err := s.viewFromQuery(r, "view")
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	sess, _ := mw.SessionFromContext(r.Context())
	p := templates.CohortPageParams{Session: sess, Cohort: key, Kind: kind, N: n}

	v, err := s.service.View(key, kind, n)
	switch {
	case core.IsEmptyTable(err):
		p.Message = core.MapError(err).Message
	case err != nil:
		s.respondError(w, r, err, 0)
		return
	default:
		p.Header, p.Rows = v.Header(), v.Rows()
	}
	s.render(w, r, http.StatusOK, templates.CohortPage(p))
}

// handleExport downloads a view as CSV or XLSX.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	key, err := cohortFromPath(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	kind, n, err := s.viewFromQuery(r, "view")
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	format := core.FormatCSV
	if raw := r.URL.Query().Get("format"); raw != "" {
		if format, err = core.ParseFormat(raw); err != nil {
			s.respondError(w, r, err, 0)
			return
		}
	}

	file, err := s.service.Export(key, kind, n, format)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	logging.FromContext(r.Context()).Info("export",
		"cohort", key.String(),
		"view", kind,
		"format", format,
		"bytes", len(file.Data),
	)

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Data)))
	_, _ = w.Write(file.Data)
}

// handleTemplate downloads a blank result sheet with the expected header.
func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	format := core.FormatCSV
	if raw := r.URL.Query().Get("format"); raw != "" {
		var err error
		if format, err = core.ParseFormat(raw); err != nil {
			s.respondError(w, r, err, 0)
			return
		}
	}

	file, err := core.SheetTemplate(format)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Data)))
	_, _ = w.Write(file.Data)
}
