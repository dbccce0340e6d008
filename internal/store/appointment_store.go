package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/appointment-booking/internal/models"
	appErrors "github.com/noah-isme/appointment-booking/pkg/errors"
	"github.com/noah-isme/appointment-booking/pkg/events"
)

// Store operation names used for metrics and logs.
const (
	OpFetchSlots        = "fetch_slots"
	OpFetchAppointments = "fetch_appointments"
	OpBookAppointment   = "book_appointment"
	OpCancelAppointment = "cancel_appointment"
)

// DataService is the remote data service as seen by the appointment store. A nil
// session means the call is made anonymously.
type DataService interface {
	ListSlots(ctx context.Context, session *models.Session) ([]models.TimeSlot, error)
	ListAppointments(ctx context.Context, session *models.Session) ([]models.Appointment, error)
	InsertAppointment(ctx context.Context, session *models.Session, appointment models.NewAppointment) error
	UpdateAppointmentStatus(ctx context.Context, session *models.Session, id string, status models.AppointmentStatus) error
}

// Recorder observes completed store operations.
type Recorder interface {
	ObserveStoreOperation(operation, outcome string, duration time.Duration)
}

// Snapshot is a copy of the store state. Version increases with every change.
type Snapshot struct {
	Slots        []models.TimeSlot    `json:"slots"`
	Appointments []models.Appointment `json:"appointments"`
	Loading      bool                 `json:"loading"`
	Error        *string              `json:"error"`
	Version      uint64               `json:"version"`
}

// Option configures an AppointmentStore.
type Option func(*AppointmentStore)

// WithRecorder reports operation outcomes to r.
func WithRecorder(r Recorder) Option {
	return func(s *AppointmentStore) { s.recorder = r }
}

// WithPublisher emits domain events after successful mutations.
func WithPublisher(p events.Publisher) Option {
	return func(s *AppointmentStore) { s.publisher = p }
}

// AppointmentStore caches slots and the session's appointments. Operations may run
// concurrently. Loading is true while any operation is in flight. A completing
// operation writes the error only if no later-issued operation has completed, and a
// fetch result is applied only if it is newer than the last one applied.
type AppointmentStore struct {
	data      DataService
	auth      SessionSource
	logger    *zap.Logger
	recorder  Recorder
	publisher events.Publisher

	mu            sync.Mutex
	slots         []models.TimeSlot
	appointments  []models.Appointment
	err           *string
	inflight      int
	issued        uint64
	lastCompleted uint64
	slotSeq       uint64
	slotApplied   uint64
	apptSeq       uint64
	apptApplied   uint64
	version       uint64

	subMu       sync.Mutex
	subscribers map[int]func(Snapshot)
	nextSubID   int
}

// NewAppointmentStore constructs a store bound to one auth store.
func NewAppointmentStore(data DataService, auth SessionSource, logger *zap.Logger, opts ...Option) *AppointmentStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &AppointmentStore{
		data:        data,
		auth:        auth,
		logger:      logger,
		publisher:   events.NoopPublisher{},
		subscribers: make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type operation struct {
	name    string
	token   uint64
	seq     uint64
	started time.Time
}

// FetchSlots replaces the cached slots with all slots ordered by start time.
func (s *AppointmentStore) FetchSlots(ctx context.Context) error {
	return s.fetchSlots(ctx, true)
}

// FetchAppointments replaces the cached appointments with the session's appointments,
// newest first.
func (s *AppointmentStore) FetchAppointments(ctx context.Context) error {
	return s.fetchAppointments(ctx, true)
}

func (s *AppointmentStore) fetchSlots(ctx context.Context, clearError bool) error {
	op := s.begin(OpFetchSlots, &s.slotSeq, clearError)
	slots, err := s.data.ListSlots(ctx, s.auth.Session())
	if err == nil {
		sortSlots(slots)
	}
	s.finish(op, err, func() {
		if op.seq > s.slotApplied {
			s.slots = slots
			s.slotApplied = op.seq
		}
	})
	return err
}

func (s *AppointmentStore) fetchAppointments(ctx context.Context, clearError bool) error {
	op := s.begin(OpFetchAppointments, &s.apptSeq, clearError)
	appointments, err := s.data.ListAppointments(ctx, s.auth.Session())
	if err == nil {
		sortAppointments(appointments)
	}
	s.finish(op, err, func() {
		if op.seq > s.apptApplied {
			s.appointments = appointments
			s.apptApplied = op.seq
		}
	})
	return err
}

// BookAppointment books slotID for the signed-in user with status confirmed, then
// re-fetches appointments and slots. A failed re-fetch is recorded in the state but
// does not fail the booking.
func (s *AppointmentStore) BookAppointment(ctx context.Context, slotID string, notes *string) error {
	op := s.begin(OpBookAppointment, nil, true)

	session := s.auth.Session()
	if session == nil {
		err := appErrors.Clone(appErrors.ErrUnauthenticated, "")
		s.finish(op, err, nil)
		return err
	}

	err := s.data.InsertAppointment(ctx, session, models.NewAppointment{
		UserID: session.User.ID,
		SlotID: slotID,
		Notes:  notes,
		Status: models.AppointmentConfirmed,
	})
	if err != nil {
		s.finish(op, err, nil)
		return err
	}

	s.publish(ctx, events.NewEvent(events.TypeAppointmentBooked, slotID, session.User.ID, map[string]interface{}{
		"slot_id": slotID,
		"notes":   notes,
	}))
	s.resync(ctx)
	s.finish(op, nil, nil)
	return nil
}

// CancelAppointment marks the appointment cancelled and re-fetches both collections.
// Slot availability is left to the data service.
func (s *AppointmentStore) CancelAppointment(ctx context.Context, appointmentID string) error {
	op := s.begin(OpCancelAppointment, nil, true)

	if current, ok := s.findAppointment(appointmentID); ok && !current.Status.CanTransitionTo(models.AppointmentCancelled) {
		err := appErrors.Clone(appErrors.ErrInvalidTransition, "appointment is already "+string(current.Status))
		s.finish(op, err, nil)
		return err
	}

	session := s.auth.Session()
	if err := s.data.UpdateAppointmentStatus(ctx, session, appointmentID, models.AppointmentCancelled); err != nil {
		s.finish(op, err, nil)
		return err
	}

	userID := ""
	if session != nil {
		userID = session.User.ID
	}
	s.publish(ctx, events.NewEvent(events.TypeAppointmentCancelled, appointmentID, userID, map[string]interface{}{
		"appointment_id": appointmentID,
	}))
	s.resync(ctx)
	s.finish(op, nil, nil)
	return nil
}

// resync re-fetches appointments then slots. Neither step clears an error the other
// recorded.
func (s *AppointmentStore) resync(ctx context.Context) {
	if err := s.fetchAppointments(ctx, false); err != nil {
		s.logger.Warn("appointments re-fetch after mutation failed", zap.Error(err))
	}
	if err := s.fetchSlots(ctx, false); err != nil {
		s.logger.Warn("slots re-fetch after mutation failed", zap.Error(err))
	}
}

// Snapshot returns a copy of the current state.
func (s *AppointmentStore) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Reset drops cached collections and the error. Fetches still in flight are
// discarded when they complete.
func (s *AppointmentStore) Reset() {
	s.mu.Lock()
	s.slots = nil
	s.appointments = nil
	s.err = nil
	s.slotApplied = s.slotSeq
	s.apptApplied = s.apptSeq
	s.version++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
}

// Subscribe registers fn to receive a snapshot after every state change. Snapshots
// may arrive out of order across concurrent operations; compare Version.
func (s *AppointmentStore) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subscribers, id)
			s.subMu.Unlock()
		})
	}
}

func (s *AppointmentStore) begin(name string, seq *uint64, clearError bool) operation {
	s.mu.Lock()
	s.issued++
	op := operation{name: name, token: s.issued, started: time.Now()}
	if seq != nil {
		*seq++
		op.seq = *seq
	}
	s.inflight++
	if clearError {
		s.err = nil
	}
	s.version++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
	return op
}

func (s *AppointmentStore) finish(op operation, err error, apply func()) {
	s.mu.Lock()
	s.inflight--
	if err == nil && apply != nil {
		apply()
	}
	if err != nil && op.token >= s.lastCompleted {
		msg := errorMessage(err)
		s.err = &msg
	}
	if op.token > s.lastCompleted {
		s.lastCompleted = op.token
	}
	s.version++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	outcome := "success"
	if err != nil {
		outcome = "error"
		s.logger.Debug("store operation failed", zap.String("operation", op.name), zap.Error(err))
	}
	if s.recorder != nil {
		s.recorder.ObserveStoreOperation(op.name, outcome, time.Since(op.started))
	}
	s.notify(snap)
}

func (s *AppointmentStore) findAppointment(id string) (models.Appointment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, appointment := range s.appointments {
		if appointment.ID == id {
			return appointment, true
		}
	}
	return models.Appointment{}, false
}

func (s *AppointmentStore) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish event failed", zap.String("type", event.Type), zap.Error(err))
	}
}

func (s *AppointmentStore) snapshotLocked() Snapshot {
	snap := Snapshot{
		Slots:        make([]models.TimeSlot, len(s.slots)),
		Appointments: make([]models.Appointment, len(s.appointments)),
		Loading:      s.inflight > 0,
		Version:      s.version,
	}
	copy(snap.Slots, s.slots)
	for i, appointment := range s.appointments {
		snap.Appointments[i] = copyAppointment(appointment)
	}
	if s.err != nil {
		msg := *s.err
		snap.Error = &msg
	}
	return snap
}

func (s *AppointmentStore) notify(snap Snapshot) {
	s.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for i, fn := range fns {
		if i == 0 {
			fn(snap)
			continue
		}
		fn(copySnapshot(snap))
	}
}

func copySnapshot(snap Snapshot) Snapshot {
	clone := snap
	clone.Slots = append([]models.TimeSlot(nil), snap.Slots...)
	clone.Appointments = make([]models.Appointment, len(snap.Appointments))
	for i, appointment := range snap.Appointments {
		clone.Appointments[i] = copyAppointment(appointment)
	}
	if snap.Error != nil {
		msg := *snap.Error
		clone.Error = &msg
	}
	return clone
}

func copyAppointment(appointment models.Appointment) models.Appointment {
	if appointment.TimeSlot != nil {
		slot := *appointment.TimeSlot
		appointment.TimeSlot = &slot
	}
	if appointment.Notes != nil {
		notes := *appointment.Notes
		appointment.Notes = &notes
	}
	return appointment
}

func sortSlots(slots []models.TimeSlot) {
	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].StartTime.Before(slots[j].StartTime)
	})
}

func sortAppointments(appointments []models.Appointment) {
	sort.SliceStable(appointments, func(i, j int) bool {
		return appointments[i].CreatedAt.After(appointments[j].CreatedAt)
	})
}

// errorMessage is the text shown inline for a failed operation.
func errorMessage(err error) string {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return err.Error()
}
