package templates

import (
	"context"
	"net/url"
	"strconv"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/gradebook/internal/auth"
	"github.com/JonMunkholm/gradebook/internal/core"
)

// CohortPath is the teacher page of a cohort.
func CohortPath(key core.CohortKey) string {
	return "/teacher/cohorts/" + url.PathEscape(key.Year) + "/" +
		url.PathEscape(key.Department) + "/" + url.PathEscape(key.Semester)
}

// ViewPath links to one view of a cohort.
func ViewPath(key core.CohortKey, kind core.ViewKind, n int) string {
	q := url.Values{"view": {string(kind)}}
	if kind == core.ViewTop {
		q.Set("n", strconv.Itoa(n))
	}
	return CohortPath(key) + "?" + q.Encode()
}

// ExportPath links to the download of one view.
func ExportPath(key core.CohortKey, kind core.ViewKind, n int, f core.Format) string {
	q := url.Values{"view": {string(kind)}, "format": {string(f)}}
	if kind == core.ViewTop {
		q.Set("n", strconv.Itoa(n))
	}
	return CohortPath(key) + "/export?" + q.Encode()
}

// TeacherDashboardParams holds everything shown on the teacher home page.
type TeacherDashboardParams struct {
	Session auth.Session
	Cohorts []core.CohortInfo
	History []core.UploadRecord
	Limiter core.UploadLimiterStatus
	TopN    int
	Notice  string
	Error   string
}

// TeacherDashboard renders the upload form, the cohort list and recent uploads.
func TeacherDashboard(p TeacherDashboardParams) templ.Component {
	body := component(func(ctx context.Context, h *htmlWriter) {
		h.child(ctx, Alert("info", p.Notice))
		h.child(ctx, Alert("error", p.Error))

		h.raw(`<section><h2>Upload results</h2>`)
		h.raw(`<form method="post" action="/teacher/upload" enctype="multipart/form-data">`)
		for _, f := range [][2]string{{"year", "Year"}, {"department", "Department"}, {"semester", "Semester"}} {
			h.raw(`<label for="` + f[0] + `">` + f[1] + `</label><input required id="` + f[0] + `" name="` + f[0] + `">`)
		}
		h.raw(`<p class="muted">The sheet needs NAME, GRADE and RESULT columns. Download a blank <a href="/teacher/template">CSV</a> or <a href="/teacher/template?format=xlsx">Excel</a> template.</p>`)
		h.raw(`<label for="file">Result sheet (CSV)</label><input required id="file" name="file" type="file" accept=".csv,text/csv">`)
		h.raw(`<p><button type="submit">Upload</button> <button type="submit" formaction="/teacher/preview">Preview</button></p></form>`)
		h.rawf(`<p class="muted">Upload slots in use: %d of %d</p></section>`, p.Limiter.Active, p.Limiter.MaxConcurrent)

		h.raw(`<section><h2>Cohorts</h2>`)
		if len(p.Cohorts) == 0 {
			h.raw(`<p class="muted">No results uploaded yet.</p>`)
		} else {
			h.raw("<table><thead><tr><th>Cohort</th><th>Students</th><th>Views</th></tr></thead><tbody>")
			for _, c := range p.Cohorts {
				h.raw("<tr><td><a")
				h.href(CohortPath(c.Key))
				h.raw(">")
				h.text(c.ID)
				h.raw("</a></td><td>")
				h.text(strconv.Itoa(c.Students))
				h.raw("</td><td><nav>")
				for _, kind := range core.ViewKinds() {
					h.raw("<a")
					h.href(ViewPath(c.Key, kind, p.TopN))
					h.raw(">")
					h.text(kind.Label(p.TopN))
					h.raw("</a>")
				}
				h.raw("</nav></td></tr>")
			}
			h.raw("</tbody></table>")
		}
		h.raw("</section>")

		h.raw(`<section><h2>Recent uploads</h2>`)
		if len(p.History) == 0 {
			h.raw(`<p class="muted">Nothing uploaded since the server started.</p>`)
		}
		for _, rec := range p.History {
			h.child(ctx, UploadSummary(rec))
		}
		h.raw("</section>")
	})
	return Layout("Teacher Dashboard", &p.Session, body)
}

// UploadSummary is the HTMX partial returned after an upload.
func UploadSummary(rec core.UploadRecord) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<div class="upload"><a`)
		h.href(CohortPath(rec.Cohort))
		h.raw("><strong>")
		h.text(rec.Cohort.String())
		h.raw("</strong></a> ")
		h.text(rec.FileName)
		h.rawf(` · %d students`, rec.Rows)
		if rec.Skipped > 0 {
			h.rawf(`, %d rows skipped`, rec.Skipped)
		}
		if rec.AbsentGrades > 0 {
			h.rawf(`, %d without a grade`, rec.AbsentGrades)
		}
		h.raw(` <span class="muted">`)
		h.text(rec.UploadedAt.Format("2006-01-02 15:04"))
		if rec.UploadedBy != "" {
			h.text(" by " + rec.UploadedBy)
		}
		if rec.ArchiveError != "" {
			h.text(" · not archived")
		}
		h.raw("</span></div>")
	})
}

// CohortPageParams holds one computed view of a cohort.
type CohortPageParams struct {
	Session auth.Session
	Cohort  core.CohortKey
	Kind    core.ViewKind
	N       int
	Header  []string
	Rows    [][]string
	Message string
}

// CohortPage renders a view of a cohort with links to the other views and
// to the exports.
func CohortPage(p CohortPageParams) templ.Component {
	body := component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<p><a href="/teacher">&larr; Dashboard</a></p><section><nav>`)
		for _, kind := range core.ViewKinds() {
			h.raw("<a")
			h.href(ViewPath(p.Cohort, kind, p.N))
			h.raw(">")
			h.text(kind.Label(p.N))
			h.raw("</a>")
		}
		h.raw("</nav></section><section><h2>")
		h.text(p.Kind.Label(p.N))
		h.raw("</h2>")
		if p.Message != "" {
			h.child(ctx, Alert("info", p.Message))
		} else {
			h.child(ctx, ResultTable(p.Header, p.Rows))
			h.raw("<p>Download: ")
			for _, f := range []core.Format{core.FormatCSV, core.FormatXLSX} {
				h.raw("<a")
				h.href(ExportPath(p.Cohort, p.Kind, p.N, f))
				h.raw(">")
				h.text(p.Kind.FileStem(p.N) + f.Extension())
				h.raw("</a> ")
			}
			h.raw("</p>")
		}
		h.raw("</section>")
	})
	return Layout("Results "+p.Cohort.String(), &p.Session, body)
}
