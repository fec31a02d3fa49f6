package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Issuer is the iss claim of every session token.
const Issuer = "gradebook"

// DefaultSessionTTL is used when the configured TTL is not positive.
const DefaultSessionTTL = 12 * time.Hour

// Session is the authenticated user of a request.
type Session struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// TTL returns the time left until the session expires.
func (s Session) TTL(now time.Time) time.Duration {
	return s.ExpiresAt.Sub(now)
}

// SignupRequest is a new account as submitted by the sign-up form or API.
type SignupRequest struct {
	Username string `json:"username" validate:"notblank,min=3,max=64"`
	Password string `json:"password" validate:"required,min=6,max=72,maxbytes=72"`
	Role     string `json:"role" validate:"required,oneof=teacher student"`
}

type sessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Manager signs users up, logs them in and authenticates session tokens.
type Manager struct {
	store    CredentialStore
	revoker  Revoker
	secret   []byte
	ttl      time.Duration
	validate *validator.Validate
	now      func() time.Time
}

// NewManager creates a Manager. A nil revoker disables logout revocation.
func NewManager(store CredentialStore, revoker Revoker, secret []byte, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Manager{
		store:    store,
		revoker:  revoker,
		secret:   secret,
		ttl:      ttl,
		validate: newValidator(),
		now:      time.Now,
	}
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	// bcrypt rejects passwords longer than 72 bytes, whatever the rune count.
	_ = v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Param())
		return err == nil && len(fl.Field().String()) <= n
	})
	return v
}

// ValidationError lists the fields of a rejected SignupRequest.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range []string{"username", "password", "role"} {
		if msg, ok := e.Fields[f]; ok {
			parts = append(parts, f+" "+msg)
		}
	}
	return "invalid request: " + strings.Join(parts, ", ")
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "maxbytes":
		return fmt.Sprintf("must be at most %s bytes", fe.Param())
	case "oneof":
		return "must be teacher or student"
	default:
		return "is invalid"
	}
}

// Signup validates req and registers the account.
func (m *Manager) Signup(ctx context.Context, req SignupRequest) error {
	req.Username = strings.TrimSpace(req.Username)
	req.Role = strings.ToLower(strings.TrimSpace(req.Role))

	if err := m.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		ve := &ValidationError{Fields: make(map[string]string, len(verrs))}
		for _, fe := range verrs {
			ve.Fields[fe.Field()] = fieldMessage(fe)
		}
		return ve
	}

	role, err := ParseRole(req.Role)
	if err != nil {
		return err
	}
	if err := m.store.Register(ctx, req.Username, req.Password, role); err != nil {
		return err
	}
	slog.Info("user registered", "username", req.Username, "role", role)
	return nil
}

// Login verifies the credentials and issues a session with its signed token.
func (m *Manager) Login(ctx context.Context, username, password string) (Session, string, error) {
	username = strings.TrimSpace(username)
	role, err := m.store.Verify(ctx, username, password)
	if err != nil {
		return Session{}, "", err
	}

	now := m.now()
	sess := Session{
		ID:        uuid.New().String(),
		Username:  username,
		Role:      role,
		ExpiresAt: now.Add(m.ttl).Truncate(time.Second),
	}

	claims := sessionClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   sess.Username,
			ID:        sess.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return Session{}, "", fmt.Errorf("sign session token: %w", err)
	}
	return sess, token, nil
}

// Authenticate checks a token's signature, expiry and revocation and returns
// its session. Every rejection is ErrSessionExpired except a revocation
// lookup failure, which is returned wrapped.
func (m *Manager) Authenticate(ctx context.Context, token string) (Session, error) {
	if token == "" {
		return Session{}, ErrSessionExpired
	}

	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (interface{}, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return Session{}, ErrSessionExpired
	}

	role, err := ParseRole(claims.Role)
	if err != nil || claims.ID == "" || claims.Subject == "" {
		return Session{}, ErrSessionExpired
	}

	if m.revoker != nil {
		revoked, err := m.revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			return Session{}, err
		}
		if revoked {
			return Session{}, ErrSessionExpired
		}
	}

	return Session{
		ID:        claims.ID,
		Username:  claims.Subject,
		Role:      role,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Logout revokes the session until it would have expired.
func (m *Manager) Logout(ctx context.Context, sess Session) error {
	if m.revoker == nil {
		return nil
	}
	return m.revoker.Revoke(ctx, sess.ID, sess.TTL(m.now()))
}

// TTL is the lifetime of newly issued sessions.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}
