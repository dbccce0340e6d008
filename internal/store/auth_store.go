package store

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/appointment-booking/internal/models"
)

// SessionRevoker invalidates a session on the remote data service.
type SessionRevoker interface {
	SignOut(ctx context.Context, session *models.Session) error
}

// SessionSource exposes the cached session to other stores.
type SessionSource interface {
	Session() *models.Session
}

// AuthStore caches the signed-in session for one browser session. It never
// re-verifies the session remotely; the data service rejects stale tokens itself.
type AuthStore struct {
	revoker SessionRevoker
	logger  *zap.Logger

	mu      sync.RWMutex
	session *models.Session

	subMu       sync.Mutex
	subscribers map[int]func(*models.Session)
	nextSubID   int
}

// NewAuthStore constructs an empty auth store.
func NewAuthStore(revoker SessionRevoker, logger *zap.Logger) *AuthStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthStore{
		revoker:     revoker,
		logger:      logger,
		subscribers: make(map[int]func(*models.Session)),
	}
}

// SetSession replaces the cached session. A nil session signs out locally.
func (a *AuthStore) SetSession(session *models.Session) {
	a.mu.Lock()
	a.session = copySession(session)
	current := copySession(a.session)
	a.mu.Unlock()

	a.notify(current)
}

// Session returns a copy of the cached session or nil.
func (a *AuthStore) Session() *models.Session {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return copySession(a.session)
}

// User returns the cached user or nil.
func (a *AuthStore) User() *models.User {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.session == nil {
		return nil
	}
	user := a.session.User
	return &user
}

func (a *AuthStore) IsAuthenticated() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.session != nil
}

func (a *AuthStore) IsAdmin() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.session != nil && a.session.User.IsAdmin()
}

// SignOut invalidates the remote session and clears the cached one. Local state is
// cleared even when the remote call fails; that failure is returned.
func (a *AuthStore) SignOut(ctx context.Context) error {
	a.mu.Lock()
	session := a.session
	a.session = nil
	a.mu.Unlock()

	if session == nil {
		return nil
	}
	a.notify(nil)

	if a.revoker == nil {
		return nil
	}
	if err := a.revoker.SignOut(ctx, session); err != nil {
		a.logger.Warn("remote sign out failed", zap.String("user_id", session.User.ID), zap.Error(err))
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

// Subscribe registers fn to receive the session after every change (nil after sign out).
func (a *AuthStore) Subscribe(fn func(*models.Session)) (unsubscribe func()) {
	a.subMu.Lock()
	id := a.nextSubID
	a.nextSubID++
	a.subscribers[id] = fn
	a.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			a.subMu.Lock()
			delete(a.subscribers, id)
			a.subMu.Unlock()
		})
	}
}

func (a *AuthStore) notify(session *models.Session) {
	a.subMu.Lock()
	fns := make([]func(*models.Session), 0, len(a.subscribers))
	for _, fn := range a.subscribers {
		fns = append(fns, fn)
	}
	a.subMu.Unlock()

	for _, fn := range fns {
		fn(copySession(session))
	}
}

func copySession(session *models.Session) *models.Session {
	if session == nil {
		return nil
	}
	clone := *session
	return &clone
}
