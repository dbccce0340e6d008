package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/noah-isme/appointment-booking/internal/models"
	appErrors "github.com/noah-isme/appointment-booking/pkg/errors"
	"github.com/noah-isme/appointment-booking/pkg/events"
)

type stubData struct {
	mu           sync.Mutex
	slots        []models.TimeSlot
	appointments []models.Appointment

	listSlotsErr error
	listApptErr  error
	insertErr    error
	deleteErr    error

	insertedSlots [][]models.NewTimeSlot
	deleted       []string
	slotFetches   int
}

func (s *stubData) ListSlots(context.Context, *models.Session) ([]models.TimeSlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slotFetches++
	if s.listSlotsErr != nil {
		return nil, s.listSlotsErr
	}
	return append([]models.TimeSlot(nil), s.slots...), nil
}

func (s *stubData) ListAppointments(context.Context, *models.Session) ([]models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listApptErr != nil {
		return nil, s.listApptErr
	}
	return append([]models.Appointment(nil), s.appointments...), nil
}

func (s *stubData) InsertAppointment(context.Context, *models.Session, models.NewAppointment) error {
	return nil
}

func (s *stubData) UpdateAppointmentStatus(context.Context, *models.Session, string, models.AppointmentStatus) error {
	return nil
}

func (s *stubData) InsertSlots(_ context.Context, _ *models.Session, slots []models.NewTimeSlot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return s.insertErr
	}
	s.insertedSlots = append(s.insertedSlots, slots)
	for _, slot := range slots {
		s.slots = append(s.slots, models.TimeSlot{
			ID:          fmt.Sprintf("gen-%d", len(s.slots)+1),
			StartTime:   slot.StartTime,
			EndTime:     slot.EndTime,
			IsAvailable: slot.IsAvailable,
		})
	}
	return nil
}

func (s *stubData) DeleteSlot(_ context.Context, _ *models.Session, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, id)
	kept := s.slots[:0]
	for _, slot := range s.slots {
		if slot.ID != id {
			kept = append(kept, slot)
		}
	}
	s.slots = kept
	return nil
}

type stubRevoker struct {
	err   error
	calls int
}

func (r *stubRevoker) SignOut(context.Context, *models.Session) error {
	r.calls++
	return r.err
}

type stubAuthenticator struct {
	session *models.Session
	err     error
	calls   int
}

func (a *stubAuthenticator) SignInWithPassword(_ context.Context, email, _ string) (*models.Session, error) {
	a.calls++
	if a.err != nil {
		return nil, a.err
	}
	session := *a.session
	session.User.Email = email
	return &session, nil
}

type memoryPersistence struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
	touched  []string
}

func newMemoryPersistence() *memoryPersistence {
	return &memoryPersistence{sessions: make(map[string]*models.Session)}
}

func (m *memoryPersistence) Get(_ context.Context, id string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	if !ok {
		return nil, appErrors.ErrCacheMiss
	}
	copied := *session
	return &copied, nil
}

func (m *memoryPersistence) Save(_ context.Context, id string, session *models.Session, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *session
	m.sessions[id] = &copied
	return nil
}

func (m *memoryPersistence) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *memoryPersistence) Touch(_ context.Context, id string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touched = append(m.touched, id)
	return nil
}

func (m *memoryPersistence) has(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[id]
	return ok
}

type gaugeRecorder struct {
	mu   sync.Mutex
	last int
}

func (g *gaugeRecorder) SetActiveSessions(count int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.last = count
}

type capturePublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *capturePublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

func (p *capturePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, event := range p.events {
		out = append(out, event.Type)
	}
	return out
}

func testSession(role models.UserRole) *models.Session {
	return &models.Session{
		ID:          "sess-1",
		User:        models.User{ID: "user-1", Email: "user@example.com", FullName: "Test User", Role: role},
		AccessToken: "token",
		ExpiresAt:   time.Now().Add(time.Hour),
	}
}

func newTestSessions(data *stubData, persist sessionPersistence) *SessionService {
	return NewSessionService(SessionConfig{Data: data, Revoker: &stubRevoker{}, Persist: persist, TTL: time.Hour})
}

func signedIn(svc *SessionService, role models.UserRole) *UserSession {
	us := svc.Open()
	us.Auth.SetSession(testSession(role))
	return us
}
