package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/JonMunkholm/gradebook/internal/auth"
	"github.com/JonMunkholm/gradebook/internal/core"
	"github.com/JonMunkholm/gradebook/internal/logging"
	mw "github.com/JonMunkholm/gradebook/internal/web/middleware"
	"github.com/JonMunkholm/gradebook/internal/web/templates"
)

// maxJSONBody bounds API request bodies other than uploads.
const maxJSONBody = 1 << 20

// dashboardPath is the home page of a role.
func dashboardPath(role auth.Role) string {
	if role == auth.RoleTeacher {
		return "/teacher"
	}
	return "/student"
}

// handleHome sends logged-in users to their dashboard and everyone else to
// the login page.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if sess, ok := mw.SessionFromContext(r.Context()); ok {
		http.Redirect(w, r, dashboardPath(sess.Role), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	p := templates.LoginParams{}
	if r.URL.Query().Get("registered") != "" {
		p.Notice = "Account created. Please log in."
	}
	s.render(w, r, http.StatusOK, templates.LoginPage(p))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.respondError(w, r, fmt.Errorf("invalid request: %w", err), http.StatusBadRequest)
		return
	}
	username := r.PostFormValue("username")

	sess, token, err := s.sessions.Login(r.Context(), username, r.PostFormValue("password"))
	if err != nil {
		logging.FromContext(r.Context()).Info("login failed", "username", username, "error", err)
		s.render(w, r, statusFor(err), templates.LoginPage(templates.LoginParams{
			Username: username,
			Error:    core.MapError(err).Message,
		}))
		return
	}

	s.setSessionCookie(w, token, sess.ExpiresAt)
	logging.FromContext(r.Context()).Info("login", "username", sess.Username, "role", sess.Role)
	http.Redirect(w, r, dashboardPath(sess.Role), http.StatusSeeOther)
}

func (s *Server) handleSignupPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, templates.SignupPage(templates.SignupParams{Role: string(auth.RoleStudent)}))
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.respondError(w, r, fmt.Errorf("invalid request: %w", err), http.StatusBadRequest)
		return
	}
	req := auth.SignupRequest{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
		Role:     r.PostFormValue("role"),
	}

	if err := s.sessions.Signup(r.Context(), req); err != nil {
		s.render(w, r, statusFor(err), templates.SignupPage(templates.SignupParams{
			Username: req.Username,
			Role:     req.Role,
			Error:    signupMessage(err),
		}))
		return
	}
	http.Redirect(w, r, "/login?registered=1", http.StatusSeeOther)
}

// signupMessage shows field problems verbatim and maps everything else.
func signupMessage(err error) string {
	var ve *auth.ValidationError
	if errors.As(err, &ve) {
		return "Please fix: " + strings.TrimPrefix(ve.Error(), "invalid request: ")
	}
	return core.MapError(err).Message
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess, ok := mw.SessionFromContext(r.Context()); ok {
		if err := s.sessions.Logout(r.Context(), sess); err != nil {
			logging.FromContext(r.Context()).Warn("logout: revoke failed", "username", sess.Username, "error", err)
		}
	}
	s.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     mw.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   s.cfg.Auth.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     mw.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.Auth.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned by POST /api/login.
type LoginResponse struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	Role      auth.Role `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *Server) handleAPISignup(w http.ResponseWriter, r *http.Request) {
	var req auth.SignupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	if err := s.sessions.Signup(r.Context(), req); err != nil {
		var ve *auth.ValidationError
		if errors.As(err, &ve) {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error":  "Some required fields are missing or invalid",
				"code":   "VAL003",
				"fields": ve.Fields,
			})
			return
		}
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "User registered successfully"})
}

func (s *Server) handleAPILogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	sess, token, err := s.sessions.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{
		Token:     token,
		Username:  sess.Username,
		Role:      sess.Role,
		ExpiresAt: sess.ExpiresAt,
	})
}

// handleRole reports who the bearer token belongs to.
func (s *Server) handleRole(w http.ResponseWriter, r *http.Request) {
	sess, _ := mw.SessionFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{
		"username": sess.Username,
		"role":     sess.Role.String(),
	})
}

// decodeJSON reads a bounded JSON body into v, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request: malformed JSON body: %w", err)
	}
	return nil
}
