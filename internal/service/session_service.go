package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/appointment-booking/internal/models"
	"github.com/noah-isme/appointment-booking/internal/store"
	appErrors "github.com/noah-isme/appointment-booking/pkg/errors"
	"github.com/noah-isme/appointment-booking/pkg/events"
)

type sessionPersistence interface {
	Get(ctx context.Context, id string) (*models.Session, error)
	Save(ctx context.Context, id string, session *models.Session, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
	Touch(ctx context.Context, id string, ttl time.Duration) error
}

type sessionGauge interface {
	SetActiveSessions(count int)
}

// UserSession holds the stores of one browser session.
type UserSession struct {
	ID           string
	Auth         *store.AuthStore
	Appointments *store.AppointmentStore

	lastSeen    atomic.Int64
	unsubscribe func()
}

// LastSeen reports when the session was last used.
func (s *UserSession) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

func (s *UserSession) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

// SessionConfig wires the collaborators every session's stores share.
type SessionConfig struct {
	Data      store.DataService
	Revoker   store.SessionRevoker
	Persist   sessionPersistence
	Recorder  store.Recorder
	Publisher events.Publisher
	Gauge     sessionGauge
	TTL       time.Duration
	Logger    *zap.Logger
}

// SessionService creates and tracks per-session stores. Signed-in sessions are
// mirrored to the persistence layer so they survive a restart.
type SessionService struct {
	cfg    SessionConfig
	logger *zap.Logger
	now    func() time.Time

	mu       sync.RWMutex
	sessions map[string]*UserSession
}

// NewSessionService constructs a SessionService.
func NewSessionService(cfg SessionConfig) *SessionService {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.Publisher == nil {
		cfg.Publisher = events.NoopPublisher{}
	}
	return &SessionService{
		cfg:      cfg,
		logger:   cfg.Logger,
		now:      time.Now,
		sessions: make(map[string]*UserSession),
	}
}

// TTL is the idle lifetime of a session.
func (s *SessionService) TTL() time.Duration {
	return s.cfg.TTL
}

// Open creates a fresh browser session with empty stores.
func (s *SessionService) Open() *UserSession {
	us, _ := s.register(uuid.NewString(), nil)
	return us
}

// Lookup returns the session for id, restoring it from persistence when it is not in
// memory. Unknown ids return ErrNotFound.
func (s *SessionService) Lookup(ctx context.Context, id string) (*UserSession, error) {
	if id == "" {
		return nil, appErrors.ErrNotFound
	}
	s.mu.RLock()
	us, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok {
		us.touch(s.now())
		return us, nil
	}

	if s.cfg.Persist == nil {
		return nil, appErrors.ErrNotFound
	}
	saved, err := s.cfg.Persist.Get(ctx, id)
	if err != nil {
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return nil, appErrors.ErrNotFound
		}
		s.logger.Warn("failed to restore session", zap.String("session_id", id), zap.Error(err))
		return nil, appErrors.ErrNotFound
	}

	us, _ = s.register(id, saved)
	return us, nil
}

// Close drops the session from memory and persistence.
func (s *SessionService) Close(ctx context.Context, id string) {
	s.mu.Lock()
	us, ok := s.sessions[id]
	delete(s.sessions, id)
	count := len(s.sessions)
	s.mu.Unlock()

	if ok && us.unsubscribe != nil {
		us.unsubscribe()
	}
	if s.cfg.Persist != nil {
		if err := s.cfg.Persist.Delete(ctx, id); err != nil {
			s.logger.Warn("failed to delete persisted session", zap.String("session_id", id), zap.Error(err))
		}
	}
	s.setGauge(count)
}

// Count reports sessions held in memory.
func (s *SessionService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep evicts sessions idle for longer than idle. Persisted copies are kept and
// expire through their own TTL.
func (s *SessionService) Sweep(idle time.Duration) int {
	cutoff := s.now().Add(-idle)
	var evicted []*UserSession

	s.mu.Lock()
	for id, us := range s.sessions {
		if us.LastSeen().Before(cutoff) {
			evicted = append(evicted, us)
			delete(s.sessions, id)
		}
	}
	count := len(s.sessions)
	s.mu.Unlock()

	for _, us := range evicted {
		if us.unsubscribe != nil {
			us.unsubscribe()
		}
	}
	s.setGauge(count)
	if len(evicted) > 0 {
		s.logger.Debug("evicted idle sessions", zap.Int("count", len(evicted)))
	}
	return len(evicted)
}

// Run sweeps idle sessions every interval until ctx is done.
func (s *SessionService) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(s.cfg.TTL)
		}
	}
}

// Refresh extends the persisted TTL of a signed-in session.
func (s *SessionService) Refresh(ctx context.Context, us *UserSession) {
	if s.cfg.Persist == nil || !us.Auth.IsAuthenticated() {
		return
	}
	if err := s.cfg.Persist.Touch(ctx, us.ID, s.cfg.TTL); err != nil {
		s.logger.Debug("session refresh failed", zap.String("session_id", us.ID), zap.Error(err))
	}
}

// register adds a session for id holding the given auth session, which may be nil.
// The entry is visible to other callers only once fully initialised. When a
// concurrent caller registered id first, its session is returned and created is false.
func (s *SessionService) register(id string, session *models.Session) (us *UserSession, created bool) {
	auth := store.NewAuthStore(s.cfg.Revoker, s.logger)
	opts := []store.Option{store.WithPublisher(s.cfg.Publisher)}
	if s.cfg.Recorder != nil {
		opts = append(opts, store.WithRecorder(s.cfg.Recorder))
	}
	us = &UserSession{
		ID:           id,
		Auth:         auth,
		Appointments: store.NewAppointmentStore(s.cfg.Data, auth, s.logger.With(zap.String("session_id", id)), opts...),
	}
	us.touch(s.now())
	if session != nil {
		auth.SetSession(session)
	}
	us.unsubscribe = auth.Subscribe(func(session *models.Session) {
		s.persist(id, session)
	})

	s.mu.Lock()
	if existing, ok := s.sessions[id]; ok {
		s.mu.Unlock()
		us.unsubscribe()
		existing.touch(s.now())
		return existing, false
	}
	s.sessions[id] = us
	count := len(s.sessions)
	s.mu.Unlock()

	s.setGauge(count)
	return us, true
}

func (s *SessionService) persist(id string, session *models.Session) {
	if s.cfg.Persist == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var err error
	if session == nil {
		err = s.cfg.Persist.Delete(ctx, id)
	} else {
		err = s.cfg.Persist.Save(ctx, id, session, s.cfg.TTL)
	}
	if err != nil {
		s.logger.Warn("failed to persist session", zap.String("session_id", id), zap.Error(err))
	}
}

func (s *SessionService) setGauge(count int) {
	if s.cfg.Gauge != nil {
		s.cfg.Gauge.SetActiveSessions(count)
	}
}
