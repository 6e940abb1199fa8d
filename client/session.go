package client

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Storage keys. These match what a browser front end would keep in local
// storage, so a Storage backed by one interoperates with existing sessions.
const (
	storageKeyToken = "auth_token"
	storageKeyUser  = "user_data"
)

// Storage is the persistence boundary for session credentials. Implementations
// are injected so tests and embedders can supply their own.
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
}

// MemoryStorage is a Storage held in process memory. Safe for concurrent use.
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string]string)}
}

func (m *MemoryStorage) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *MemoryStorage) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryStorage) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Session holds the current viewer's credentials: a bearer token and a cached
// copy of the user object. Both live in the injected Storage; an empty session
// is an anonymous viewer.
type Session struct {
	mu      sync.RWMutex
	storage Storage
	token   string
	user    *User
}

// NewSession builds a session over storage, loading any credentials already
// present. A corrupt cached user is discarded rather than surfaced: the token
// alone still authenticates, and /users/me can restore the copy.
func NewSession(storage Storage) *Session {
	s := &Session{storage: storage}
	if token, ok := storage.Get(storageKeyToken); ok {
		s.token = token
	}
	if raw, ok := storage.Get(storageKeyUser); ok {
		var u User
		if err := json.Unmarshal([]byte(raw), &u); err == nil {
			s.user = &u
		}
	}
	return s
}

// Authenticated reports whether the session carries a token.
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

// Token returns the bearer token, or "" for an anonymous session.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the cached user object, or nil for an anonymous session.
func (s *Session) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// SetCredentials stores a token and user, replacing any prior session.
func (s *Session) SetCredentials(token string, user *User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := s.storage.Set(storageKeyToken, token); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	if err := s.storage.Set(storageKeyUser, string(raw)); err != nil {
		return fmt.Errorf("store user: %w", err)
	}

	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()
	return nil
}

// Clear removes both credentials, returning the session to anonymous.
func (s *Session) Clear() error {
	if err := s.storage.Delete(storageKeyToken); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	if err := s.storage.Delete(storageKeyUser); err != nil {
		return fmt.Errorf("clear user: %w", err)
	}

	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()
	return nil
}
