package web

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/gradebook/internal/core"
	"github.com/JonMunkholm/gradebook/internal/logging"
)

// render writes an HTML component with the given status.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render failed", "path", r.URL.Path, "error", err)
	}
}

// parseIntParam parses a positive integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

// cohortFromPath reads the {year}/{dept}/{sem} route parameters.
func cohortFromPath(r *http.Request) (core.CohortKey, error) {
	return core.NewCohortKey(
		pathParam(r, "year"),
		pathParam(r, "dept"),
		pathParam(r, "sem"),
	)
}

// pathParam returns a decoded route parameter. chi matches on RawPath when
// the request path holds an escaped slash, and its params are then still
// escaped.
func pathParam(r *http.Request, name string) string {
	v := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return v
	}
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}

// viewFromQuery reads ?view= (default top) and ?n= (default from config).
func (s *Server) viewFromQuery(r *http.Request, param string) (core.ViewKind, int, error) {
	n := parseIntParam(r, "n", s.service.DefaultTopN())
	raw := r.URL.Query().Get(param)
	if raw == "" {
		return core.ViewTop, n, nil
	}
	kind, err := core.ParseViewKind(raw)
	return kind, n, err
}

// viewJSON is the API rendering of a View.
type viewJSON struct {
	Cohort  string     `json:"cohort"`
	View    string     `json:"view,omitempty"`
	Label   string     `json:"label,omitempty"`
	Header  []string   `json:"header"`
	Rows    [][]string `json:"rows"`
	Message string     `json:"message,omitempty"`
}

func newViewJSON(key core.CohortKey, v core.View) viewJSON {
	rows := v.Rows()
	if rows == nil {
		rows = [][]string{}
	}
	return viewJSON{Cohort: key.ID(), Header: v.Header(), Rows: rows}
}
