package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pharmalink/pharmacy-pos/pkg/auth"
	"github.com/pharmalink/pharmacy-pos/pkg/storage/kv"
	"github.com/pharmalink/pharmacy-pos/pkg/types"
)

// TokenKey is the storage key holding the persisted bearer token.
const TokenKey = "session:token"

// Pharmacy is the pharmacy summary attached to the signed-in user.
type Pharmacy struct {
	ID            types.ID `json:"id,omitempty"`
	Name          string   `json:"name"`
	Address       string   `json:"address,omitempty"`
	Phone         string   `json:"phone,omitempty"`
	LicenseNumber string   `json:"licenseNumber,omitempty"`
	Status        string   `json:"status,omitempty"`
}

// User is the signed-in staff member as returned by the backend.
type User struct {
	ID       types.ID  `json:"id,omitempty"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Role     string    `json:"role,omitempty"`
	Pharmacy *Pharmacy `json:"pharmacy,omitempty"`
}

// Session is a point-in-time view of the signed-in state.
type Session struct {
	Token     string     `json:"-"`
	User      *User      `json:"user"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// Reader exposes the read-only surface needed by middleware.
type Reader interface {
	Current() (Session, bool)
}

// Manager keeps the token and user in memory and persists the token so a
// restart does not sign the operator out.
type Manager struct {
	store kv.Store
	now   func() time.Time

	mu      sync.RWMutex
	token   string
	user    *User
	expires *time.Time
}

// NewManager constructs a session manager over the given store.
func NewManager(store kv.Store) (*Manager, error) {
	if store == nil {
		return nil, fmt.Errorf("kv store is required")
	}
	return &Manager{store: store, now: time.Now}, nil
}

// Restore loads a persisted token. The user profile stays unknown until the
// next login. An expired token is discarded.
func (m *Manager) Restore(ctx context.Context) error {
	token, err := m.store.Get(ctx, TokenKey)
	if errors.Is(err, kv.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("restoring session: %w", err)
	}

	expires := expiryOf(token)
	if expires != nil && !m.now().Before(*expires) {
		return m.store.Delete(ctx, TokenKey)
	}

	m.mu.Lock()
	m.token = token
	m.user = nil
	m.expires = expires
	m.mu.Unlock()
	return nil
}

// Login records a fresh token and user and persists the token.
func (m *Manager) Login(ctx context.Context, token string, user User) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.ErrEmptyToken
	}
	if err := m.store.Set(ctx, TokenKey, token); err != nil {
		return fmt.Errorf("persisting session: %w", err)
	}

	u := user
	m.mu.Lock()
	m.token = token
	m.user = &u
	m.expires = expiryOf(token)
	m.mu.Unlock()
	return nil
}

// SetUser refreshes the cached profile of the signed-in user. It is a no-op
// when nobody is signed in.
func (m *Manager) SetUser(user User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token == "" {
		return
	}
	u := user
	m.user = &u
}

// Logout forgets the in-memory session and removes the persisted token.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	m.token = ""
	m.user = nil
	m.expires = nil
	m.mu.Unlock()

	if err := m.store.Delete(ctx, TokenKey); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

// Current returns the active session, if any.
func (m *Manager) Current() (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.token == "" {
		return Session{}, false
	}
	if m.expires != nil && !m.now().Before(*m.expires) {
		return Session{}, false
	}

	sess := Session{Token: m.token, ExpiresAt: m.expires}
	if m.user != nil {
		u := *m.user
		sess.User = &u
	}
	return sess, true
}

// Token returns the active bearer token or an empty string.
func (m *Manager) Token() string {
	sess, ok := m.Current()
	if !ok {
		return ""
	}
	return sess.Token
}

// expiryOf returns the exp claim of a JWT. Opaque tokens have no local expiry.
func expiryOf(token string) *time.Time {
	claims, err := auth.ParseUnverified(token)
	if err != nil || claims.ExpiresAt == nil {
		return nil
	}
	exp := claims.ExpiresAt.Time
	return &exp
}
