package auth

import (
	"context"
	"sync"
)

type memoryUser struct {
	hash []byte
	role Role
}

// MemoryStore is a CredentialStore kept in process memory. Users are lost on
// restart; it backs tests and runs without DATABASE_URL.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]memoryUser
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]memoryUser)}
}

// Verify implements CredentialStore.
func (s *MemoryStore) Verify(_ context.Context, username, password string) (Role, error) {
	s.mu.RLock()
	u, ok := s.users[username]
	s.mu.RUnlock()
	if !ok {
		return "", rejectUnknownUser(password)
	}
	if err := checkPassword(u.hash, password); err != nil {
		return "", err
	}
	return u.role, nil
}

// Register implements CredentialStore.
func (s *MemoryStore) Register(_ context.Context, username, password string, role Role) error {
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[username]; exists {
		return ErrDuplicateUsername
	}
	s.users[username] = memoryUser{hash: hash, role: role}
	return nil
}

// Len returns the number of registered users.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}
