package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"menuboard/internal/model"
)

// Session is one authenticated admin login.
type Session struct {
	Token     string
	UserID    uuid.UUID
	Username  string
	ExpiresAt time.Time
}

// SessionManager holds active sessions in memory. Sessions do not survive
// a restart; admins simply log in again. Expired entries are pruned lazily
// on lookup.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]Session
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionManager creates a manager issuing sessions valid for ttl.
func NewSessionManager(ttl time.Duration) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create issues a new session for the given admin. The token is 32 random
// bytes, hex encoded.
func (m *SessionManager) Create(user model.AdminUser) (Session, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return Session{}, fmt.Errorf("generate session token: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	sess := Session{
		Token:     hex.EncodeToString(buf),
		UserID:    user.ID,
		Username:  user.Username,
		ExpiresAt: m.now().Add(m.ttl),
	}
	m.sessions[sess.Token] = sess
	return sess, nil
}

// Lookup returns the session for token if it exists and has not expired.
func (m *SessionManager) Lookup(token string) (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[token]
	if !ok {
		return Session{}, false
	}
	if !sess.ExpiresAt.After(m.now()) {
		delete(m.sessions, token)
		return Session{}, false
	}
	return sess, true
}

// Destroy removes the session for token. Destroying an unknown token is
// a no-op.
func (m *SessionManager) Destroy(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
}
