// Package auth verifies users, issues session tokens and revokes them.
//
// Credentials live behind CredentialStore (Postgres in production, memory in
// tests and local runs). A successful login yields a Session carried as an
// HS256 JWT; logout revokes the token ID until it would have expired.
package auth

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned for an unknown user and for a wrong
	// password alike.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrDuplicateUsername is returned by Register when the name is taken.
	ErrDuplicateUsername = errors.New("username already taken")

	// ErrInvalidRole is returned for a role other than teacher or student.
	ErrInvalidRole = errors.New("invalid role")

	// ErrSessionExpired is returned for a missing, expired, malformed or
	// revoked session token.
	ErrSessionExpired = errors.New("session expired or revoked")
)

// CredentialStore verifies and registers users. Implementations hash
// passwords; callers only ever pass plaintext in.
type CredentialStore interface {
	Verify(ctx context.Context, username, password string) (Role, error)
	Register(ctx context.Context, username, password string, role Role) error
}

// bcryptCost is a variable so tests can lower it.
var bcryptCost = bcrypt.DefaultCost

func hashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
}

// compareHash is swapped in tests to count comparisons.
var compareHash = bcrypt.CompareHashAndPassword

func checkPassword(hash []byte, password string) error {
	if err := compareHash(hash, []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// missingUserHash is compared against when the username is unknown, so a miss
// costs the same bcrypt work as a wrong password.
var missingUserHash = sync.OnceValue(func() []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte("gradebook-missing-user"), bcryptCost)
	if err != nil {
		panic(err)
	}
	return hash
})

// rejectUnknownUser burns one comparison and returns ErrInvalidCredentials.
func rejectUnknownUser(password string) error {
	_ = checkPassword(missingUserHash(), password)
	return ErrInvalidCredentials
}
