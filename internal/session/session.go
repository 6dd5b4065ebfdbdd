// Package session implements opaque-token sessions over a pluggable store.
// The manager never assumes a specific backend; memory and Redis stores are
// provided.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Session errors
var (
	ErrNotFound = errors.New("session not found")
	ErrExpired  = errors.New("session expired")
)

// Session binds an opaque token to one account id for a fixed lifetime.
type Session struct {
	// AccountID is the id of the authenticated account.
	AccountID int64 `json:"account_id"`
	// CreatedAt is when the session was issued.
	CreatedAt time.Time `json:"created_at"`
	// ExpiresAt is when the session stops being valid.
	ExpiresAt time.Time `json:"expires_at"`
}

// Store persists sessions keyed by token.
type Store interface {
	// Save stores the session under token for at least ttl.
	Save(ctx context.Context, token string, s Session, ttl time.Duration) error
	// Get returns the session for token, or ErrNotFound.
	Get(ctx context.Context, token string) (Session, error)
	// Delete removes the session for token. Deleting a missing token is not
	// an error.
	Delete(ctx context.Context, token string) error
}

// Manager issues, resolves, and destroys sessions.
type Manager struct {
	store Store
	ttl   time.Duration
	// now is the clock; injectable for tests.
	now func() time.Time
}

// NewManager constructs a Manager over the given store with a fixed session
// lifetime.
func NewManager(store Store, ttl time.Duration) *Manager {
	return &Manager{store: store, ttl: ttl, now: time.Now}
}

// Create issues a new session bound to the account id and returns its token.
func (m *Manager) Create(ctx context.Context, accountID int64) (string, error) {
	token := uuid.NewString()
	now := m.now()
	s := Session{
		AccountID: accountID,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.store.Save(ctx, token, s, m.ttl); err != nil {
		return "", err
	}
	return token, nil
}

// Get resolves a token to its session. An expired session is removed from the
// store and reported as ErrExpired.
func (m *Manager) Get(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	s, err := m.store.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if m.now().After(s.ExpiresAt) {
		_ = m.store.Delete(ctx, token)
		return nil, ErrExpired
	}
	return &s, nil
}

// Destroy removes the session for token.
func (m *Manager) Destroy(ctx context.Context, token string) error {
	return m.store.Delete(ctx, token)
}
