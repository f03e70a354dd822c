package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kaeso/goKeyless/store"
)

const sessionKeyPrefix = "as"

// ErrNotFound is returned when no session is stored for the user.
var ErrNotFound = errors.New("session: not found")

// ErrUnavailable is returned when the storage backend fails.
var ErrUnavailable = errors.New("session: storage unavailable")

// Manager persists one session per user and answers expiry questions with a
// configurable clock-skew tolerance.
type Manager struct {
	store store.SecureStore
	skew  time.Duration
	now   func() time.Time
}

// NewManager creates a Manager over st. skew widens the expiry window so a
// session is treated as expired slightly before its server-side deadline.
func NewManager(st store.SecureStore, skew time.Duration, now func() time.Time) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{
		store: st,
		skew:  skew,
		now:   now,
	}
}

func sessionKey(userID string) string {
	return sessionKeyPrefix + ":" + userID
}

// Store atomically replaces the user's session. An existing session is
// superseded, never merged.
func (m *Manager) Store(ctx context.Context, s *Session) error {
	blob, err := Encode(s)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := m.store.Put(ctx, sessionKey(s.UserID), blob); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Current describes the current operation and its observable behavior.
//
// Current returns [ErrNotFound] when no session exists and [ErrCorrupt]
// when the stored blob cannot be decoded.
func (m *Manager) Current(ctx context.Context, userID string) (*Session, error) {
	blob, err := m.store.Get(ctx, sessionKey(userID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return Decode(blob)
}

// Delete removes the user's session. Deleting an absent session is not an
// error.
func (m *Manager) Delete(ctx context.Context, userID string) error {
	if err := m.store.Delete(ctx, sessionKey(userID)); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// IsExpired reports whether s must be refreshed before use. The skew
// tolerance makes a session expire early so a token never reaches the
// server already dead.
func (m *Manager) IsExpired(s *Session) bool {
	if s == nil {
		return true
	}
	deadline := time.Unix(s.ExpiresAt, 0).Add(-m.skew)
	return !m.now().Before(deadline)
}
