package templates

import (
	"context"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/gradebook/internal/auth"
)

const styles = `
body{font-family:system-ui,sans-serif;margin:0;background:#f6f7f9;color:#1f2933}
header{display:flex;justify-content:space-between;align-items:center;padding:.75rem 1.5rem;background:#243b53;color:#fff}
header a,header button{color:#fff;background:none;border:0;font:inherit;cursor:pointer}
main{max-width:960px;margin:1.5rem auto;padding:0 1rem}
section{background:#fff;border-radius:6px;padding:1rem 1.25rem;margin-bottom:1rem;box-shadow:0 1px 2px rgba(0,0,0,.08)}
table{border-collapse:collapse;width:100%}
th,td{text-align:left;padding:.35rem .5rem;border-bottom:1px solid #e4e7eb}
label{display:block;margin:.5rem 0 .2rem}
input,select{padding:.35rem;min-width:12rem}
.alert{padding:.75rem 1rem;border-radius:4px;margin-bottom:1rem}
.alert-error{background:#fde8e8;color:#9b1c1c}
.alert-info{background:#e1effe;color:#1e429f}
.muted{color:#7b8794;font-size:.9em}
nav a{margin-right:.75rem}
`

// Layout wraps body in the page shell. sess is nil on the login and sign-up
// pages.
func Layout(title string, sess *auth.Session, body templ.Component) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw("<title>")
		h.text(title)
		h.raw(" · Gradebook</title><style>" + styles + "</style></head><body>")

		h.raw("<header><strong>Gradebook</strong>")
		if sess != nil {
			h.raw(`<form method="post" action="/logout"><span class="muted">`)
			h.text(sess.Username + " (" + sess.Role.Title() + ")")
			h.raw(`</span> <button type="submit">Log out</button></form>`)
		}
		h.raw("</header><main><h1>")
		h.text(title)
		h.raw("</h1>")
		h.child(ctx, body)
		h.raw("</main></body></html>")
	})
}

// Alert renders an informational or error banner. An empty message renders
// nothing.
func Alert(kind, message string) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		if message == "" {
			return
		}
		h.raw(`<div class="alert alert-` + kind + `" role="alert">`)
		h.text(message)
		h.raw("</div>")
	})
}

// ErrorAlert is the HTMX partial returned for failed requests.
func ErrorAlert(message, action, code string) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<div class="alert alert-error" role="alert"><strong>`)
		h.text(message)
		h.raw("</strong>")
		if action != "" {
			h.raw("<div>")
			h.text(action)
			h.raw("</div>")
		}
		if code != "" {
			h.raw(`<div class="muted">Error code: `)
			h.text(code)
			h.raw("</div>")
		}
		h.raw("</div>")
	})
}

// ResultTable renders a header row and data rows.
func ResultTable(header []string, rows [][]string) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.raw("<table><thead><tr>")
		for _, col := range header {
			h.raw("<th>")
			h.text(col)
			h.raw("</th>")
		}
		h.raw("</tr></thead><tbody>")
		for _, row := range rows {
			h.raw("<tr>")
			for _, cell := range row {
				h.raw("<td>")
				h.text(cell)
				h.raw("</td>")
			}
			h.raw("</tr>")
		}
		h.raw("</tbody></table>")
		if len(rows) == 0 {
			h.raw(`<p class="muted">No matching students.</p>`)
		}
	})
}
