package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/JonMunkholm/gradebook/internal/auth"
)

// SessionCookie is the name of the cookie holding the session token.
const SessionCookie = "session"

// Authenticator turns a session token into a Session.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (auth.Session, error)
}

type sessionKey struct{}

// ContextWithSession stores sess in ctx.
func ContextWithSession(ctx context.Context, sess auth.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, sess)
}

// SessionFromContext returns the session stored by LoadSession, if any.
func SessionFromContext(ctx context.Context) (auth.Session, bool) {
	sess, ok := ctx.Value(sessionKey{}).(auth.Session)
	return sess, ok
}

// TokenFromRequest returns the bearer token, or the session cookie when no
// Authorization header is present.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// LoadSession authenticates the request's token and stores the session in
// the request context. Requests without a valid token continue anonymously;
// RequireRole decides whether that is allowed.
func LoadSession(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			sess, err := a.Authenticate(r.Context(), token)
			switch {
			case err == nil:
				r = r.WithContext(ContextWithSession(r.Context(), sess))
			case errors.Is(err, auth.ErrSessionExpired):
				slog.Debug("auth: rejected session token", "path", r.URL.Path)
			default:
				slog.Warn("auth: session check failed",
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
					"error", err,
				)
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole rejects requests whose session is missing or has a role not in
// roles. An empty roles list accepts any logged-in user.
//
// API requests get a JSON 401 or 403; page requests are redirected to the
// login page, or to / when logged in with the wrong role.
func RequireRole(roles ...auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := SessionFromContext(r.Context())
			if !ok {
				if isAPI(r) {
					writeAuthError(w, http.StatusUnauthorized, "session expired, please log in again", "AUTH003")
					return
				}
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			if len(roles) > 0 && !slices.Contains(roles, sess.Role) {
				slog.Warn("auth: role not permitted",
					"path", r.URL.Path,
					"username", sess.Username,
					"role", sess.Role,
				)
				if isAPI(r) {
					writeAuthError(w, http.StatusForbidden, "this page is not available for your role", "AUTH004")
					return
				}
				http.Redirect(w, r, "/", http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isAPI(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/") ||
		strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeAuthError(w http.ResponseWriter, status int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + message + `","message":"` + message + `","code":"` + code + `"}`))
}
