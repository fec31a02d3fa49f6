package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/gradebook/internal/core"
)

// handleListCohorts returns every uploaded cohort in upload order.
func (s *Server) handleListCohorts(w http.ResponseWriter, r *http.Request) {
	cohorts := s.service.Cohorts()
	if cohorts == nil {
		cohorts = []core.CohortInfo{}
	}
	writeJSON(w, http.StatusOK, cohorts)
}

// handleAPIView returns one derived view of a cohort.
func (s *Server) handleAPIView(w http.ResponseWriter, r *http.Request) {
	key, err := cohortFromPath(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	kind, err := core.ParseViewKind(chi.URLParam(r, "view"))
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	n := parseIntParam(r, "n", s.service.DefaultTopN())

	v, err := s.service.View(key, kind, n)
	if core.IsEmptyTable(err) {
		writeJSON(w, http.StatusOK, viewJSON{
			Cohort:  key.ID(),
			View:    string(kind),
			Label:   kind.Label(n),
			Header:  []string{},
			Rows:    [][]string{},
			Message: core.MapError(err).Message,
		})
		return
	}
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	resp := newViewJSON(key, v)
	resp.View, resp.Label = string(kind), kind.Label(n)
	writeJSON(w, http.StatusOK, resp)
}

// handleAPILookup returns the rounded result row of one student.
func (s *Server) handleAPILookup(w http.ResponseWriter, r *http.Request) {
	key, err := cohortFromPath(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	t, err := s.service.Lookup(key, r.URL.Query().Get("name"))
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, newViewJSON(key, t))
}

// StatusResponse is returned by GET /api/status.
type StatusResponse struct {
	Status  string                   `json:"status"`
	Cohorts int                      `json:"cohorts"`
	Uploads core.UploadLimiterStatus `json:"uploads"`
}

// handleStatus reports liveness, catalog size and upload slot usage.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{
		Status:  "ok",
		Cohorts: len(s.service.Cohorts()),
		Uploads: s.service.LimiterStatus(),
	})
}
