package templates

import (
	"context"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/gradebook/internal/auth"
	"github.com/JonMunkholm/gradebook/internal/core"
)

// StudentPageParams fills the student lookup page. Header and Rows hold the
// matched result when a lookup succeeded.
type StudentPageParams struct {
	Session  auth.Session
	Cohorts  []core.CohortInfo
	Selected string
	Name     string
	Header   []string
	Rows     [][]string
	Message  string
}

// StudentPage renders the cohort selector, the name search and its result.
func StudentPage(p StudentPageParams) templ.Component {
	body := component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<section>`)
		if len(p.Cohorts) == 0 {
			h.raw(`<p class="muted">No results have been published yet.</p></section>`)
			return
		}
		h.raw(`<form method="get" action="/student"><label for="cohort">Year, department and semester</label><select id="cohort" name="cohort">`)
		for _, c := range p.Cohorts {
			h.raw("<option")
			h.attr("value", c.ID)
			if c.ID == p.Selected {
				h.raw(" selected")
			}
			h.raw(">")
			h.text(c.Key.Year + " " + c.Key.Department + " semester " + c.Key.Semester)
			h.raw("</option>")
		}
		h.raw(`</select><label for="name">Your name</label><input id="name" name="name" required`)
		h.attr("value", p.Name)
		h.raw(`><p><button type="submit">Find my result</button></p></form></section>`)

		if p.Message != "" {
			h.child(ctx, Alert("info", p.Message))
		}
		if len(p.Rows) > 0 {
			h.raw("<section><h2>Result</h2>")
			h.child(ctx, ResultTable(p.Header, p.Rows))
			h.raw("</section>")
		}
	})
	return Layout("Student Dashboard", &p.Session, body)
}
