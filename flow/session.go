// Package flow is the client-side case-assembly toolkit. It drives the same
// journey the mobile app does: establish an identity (account or guest),
// collect third-party details and damage photos, optionally grade the damage,
// and submit the finished case to the API.
package flow

import (
	"sync"

	"github.com/gofrs/uuid"
)

// Session is the client's authentication state. Exactly one of UserID and
// GuestID is set once a session exists.
type Session struct {
	Token   string
	UserID  uuid.UUID
	GuestID uuid.UUID
}

// IsUser reports whether the session belongs to a registered account.
func (s Session) IsUser() bool {
	return !s.UserID.IsNil()
}

// IsGuest reports whether the session belongs to a guest.
func (s Session) IsGuest() bool {
	return !s.GuestID.IsNil()
}

// HasToken reports whether any session has been established.
func (s Session) HasToken() bool {
	return s.Token != ""
}

// Store persists the session between runs. Load returns a zero Session, not
// an error, when nothing has been stored yet.
type Store interface {
	Load() (Session, error)
	Save(Session) error
	Clear() error
}

// MemoryStore is a process-lifetime Store, safe for concurrent use.
type MemoryStore struct {
	mu      sync.Mutex
	session Session
}

// NewMemoryStore returns an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load() (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session, nil
}

func (m *MemoryStore) Save(s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = s
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = Session{}
	return nil
}
