package web

import (
	"net/http"
	"strings"

	"github.com/JonMunkholm/gradebook/internal/core"
	"github.com/JonMunkholm/gradebook/internal/logging"
	mw "github.com/JonMunkholm/gradebook/internal/web/middleware"
	"github.com/JonMunkholm/gradebook/internal/web/templates"
)

// handleStudentDashboard lists the cohorts and, when ?cohort= and ?name= are
// given, shows that student's result.
func (s *Server) handleStudentDashboard(w http.ResponseWriter, r *http.Request) {
	sess, _ := mw.SessionFromContext(r.Context())
	q := r.URL.Query()
	p := templates.StudentPageParams{
		Session:  sess,
		Cohorts:  s.service.Cohorts(),
		Selected: q.Get("cohort"),
		Name:     strings.TrimSpace(q.Get("name")),
	}

	if p.Selected == "" || p.Name == "" {
		s.render(w, r, http.StatusOK, templates.StudentPage(p))
		return
	}

	status := http.StatusOK
	key, err := core.ParseCohortKey(p.Selected)
	if err == nil {
		var t *core.Table
		t, err = s.service.Lookup(key, p.Name)
		if err == nil {
			p.Header, p.Rows = t.Header(), t.Rows()
		}
	}
	if err != nil {
		status = statusFor(err)
		p.Message = core.MapError(err).Message
		logging.FromContext(r.Context()).Info("student lookup failed",
			"username", sess.Username,
			"cohort", p.Selected,
			"error", err,
		)
	}
	s.render(w, r, status, templates.StudentPage(p))
}
