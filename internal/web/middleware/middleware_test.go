package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/gradebook/internal/auth"
)

func TestTrustedRealIP(t *testing.T) {
	tests := []struct {
		name       string
		trusted    []string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"no proxies strips port", nil, "203.0.113.9:5555", nil, "203.0.113.9"},
		{"untrusted header ignored", nil, "203.0.113.9:5555", map[string]string{"X-Real-IP": "1.2.3.4"}, "203.0.113.9"},
		{"trusted x-real-ip", []string{"10.0.0.0/8"}, "10.1.2.3:80", map[string]string{"X-Real-IP": "198.51.100.7"}, "198.51.100.7"},
		{"trusted xff first entry", []string{"10.0.0.0/8"}, "10.1.2.3:80", map[string]string{"X-Forwarded-For": "198.51.100.7, 10.1.2.3"}, "198.51.100.7"},
		{"bare ip trusted", []string{"127.0.0.1"}, "127.0.0.1:80", map[string]string{"X-Real-IP": "198.51.100.8"}, "198.51.100.8"},
		{"invalid header value", []string{"10.0.0.0/8"}, "10.1.2.3:80", map[string]string{"X-Real-IP": "not-an-ip"}, "10.1.2.3"},
		{"invalid cidr skipped", []string{"garbage"}, "10.1.2.3:80", map[string]string{"X-Real-IP": "198.51.100.7"}, "10.1.2.3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := TrustedRealIP(tt.trusted)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				got = r.RemoteAddr
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)
			if got != tt.want {
				t.Errorf("RemoteAddr = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
	var buf bytes.Buffer
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))

	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("hello"))
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/student", nil))

	out := buf.String()
	for _, want := range []string{"msg=request", "path=/student", "status=418", "bytes=5"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q: %s", want, out)
		}
	}
}

type stubAuthenticator struct {
	sessions map[string]auth.Session
	err      error
}

func (s stubAuthenticator) Authenticate(_ context.Context, token string) (auth.Session, error) {
	if s.err != nil {
		return auth.Session{}, s.err
	}
	sess, ok := s.sessions[token]
	if !ok {
		return auth.Session{}, auth.ErrSessionExpired
	}
	return sess, nil
}

func TestTokenFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := TokenFromRequest(req); got != "" {
		t.Errorf("empty request token = %q", got)
	}

	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "from-cookie"})
	if got := TokenFromRequest(req); got != "from-cookie" {
		t.Errorf("cookie token = %q", got)
	}

	req.Header.Set("Authorization", "Bearer from-header")
	if got := TokenFromRequest(req); got != "from-header" {
		t.Errorf("bearer token = %q", got)
	}

	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	if got := TokenFromRequest(req); got != "" {
		t.Errorf("basic auth should yield no token, got %q", got)
	}
}

func TestLoadSessionAndRequireRole(t *testing.T) {
	teacher := auth.Session{ID: "1", Username: "mrs.k", Role: auth.RoleTeacher, ExpiresAt: time.Now().Add(time.Hour)}
	student := auth.Session{ID: "2", Username: "alice", Role: auth.RoleStudent, ExpiresAt: time.Now().Add(time.Hour)}
	a := stubAuthenticator{sessions: map[string]auth.Session{"t": teacher, "s": student}}

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, _ := SessionFromContext(r.Context())
		_, _ = w.Write([]byte(sess.Username))
	})

	tests := []struct {
		name     string
		path     string
		token    string
		roles    []auth.Role
		wantCode int
		wantLoc  string
		wantBody string
	}{
		{"teacher page ok", "/teacher", "t", []auth.Role{auth.RoleTeacher}, http.StatusOK, "", "mrs.k"},
		{"anonymous page redirects", "/teacher", "", []auth.Role{auth.RoleTeacher}, http.StatusSeeOther, "/login", ""},
		{"bad token page redirects", "/teacher", "bogus", []auth.Role{auth.RoleTeacher}, http.StatusSeeOther, "/login", ""},
		{"wrong role page redirects home", "/teacher", "s", []auth.Role{auth.RoleTeacher}, http.StatusSeeOther, "/", ""},
		{"anonymous api 401", "/api/role", "", nil, http.StatusUnauthorized, "", "AUTH003"},
		{"wrong role api 403", "/api/cohorts", "s", []auth.Role{auth.RoleTeacher}, http.StatusForbidden, "", "AUTH004"},
		{"any role api ok", "/api/role", "s", nil, http.StatusOK, "", "alice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := LoadSession(a)(RequireRole(tt.roles...)(ok))
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantLoc != "" && rec.Header().Get("Location") != tt.wantLoc {
				t.Errorf("Location = %q, want %q", rec.Header().Get("Location"), tt.wantLoc)
			}
			if tt.wantBody != "" && !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body = %q, want it to contain %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestLoadSession_AuthenticatorFailure(t *testing.T) {
	a := stubAuthenticator{err: errors.New("redis down")}
	var had bool
	h := LoadSession(a)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		_, had = SessionFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "anything"})
	h.ServeHTTP(httptest.NewRecorder(), req)

	if had {
		t.Error("session should not be set when the authenticator fails")
	}
}
