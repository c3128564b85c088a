// Package session owns the authenticated session: an opaque bearer token
// plus the minimal identity returned by login and registration. Persistence
// is best-effort; a failed read is indistinguishable from a missing session
// and surfaces later as an authentication failure on the next gated call.
package session

import "sync"

// Session is the credential and identity issued by a successful login or
// registration. It is stored and replaced wholesale.
type Session struct {
	Token    string
	UserID   string
	Username string
}

// Store persists at most one session. Save overwrites atomically, Get
// reports absence after Clear or before any Save.
type Store interface {
	Save(s Session) error
	Get() (Session, bool)
	Clear() error
}

// MemoryStore keeps the session in process memory. Used by tests and as a
// fallback when no persistent path is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	current Session
	present bool
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save replaces the stored session.
func (m *MemoryStore) Save(s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = s
	m.present = true
	return nil
}

// Get returns the stored session, if any.
func (m *MemoryStore) Get() (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.present {
		return Session{}, false
	}
	return m.current, true
}

// Clear drops the stored session.
func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = Session{}
	m.present = false
	return nil
}
