package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/noah-isme/appointment-booking/internal/models"
)

// fakeDataService emulates the remote data service: inserts flip slot availability
// and cancellations release the slot.
type fakeDataService struct {
	mu           sync.Mutex
	slots        []models.TimeSlot
	appointments []models.Appointment

	listSlotsErr        error
	listAppointmentsErr error
	insertErr           error
	updateErr           error

	listSlotsFn func(ctx context.Context) ([]models.TimeSlot, error)

	calls    []string
	inserted []models.NewAppointment
	sessions []*models.Session
}

func (f *fakeDataService) ListSlots(ctx context.Context, session *models.Session) ([]models.TimeSlot, error) {
	f.record("list_slots", session)
	if f.listSlotsFn != nil {
		return f.listSlotsFn(ctx)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listSlotsErr != nil {
		return nil, f.listSlotsErr
	}
	return append([]models.TimeSlot(nil), f.slots...), nil
}

func (f *fakeDataService) ListAppointments(_ context.Context, session *models.Session) ([]models.Appointment, error) {
	f.record("list_appointments", session)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listAppointmentsErr != nil {
		return nil, f.listAppointmentsErr
	}
	out := make([]models.Appointment, 0, len(f.appointments))
	for _, appointment := range f.appointments {
		for i := range f.slots {
			if f.slots[i].ID == appointment.SlotID {
				slot := f.slots[i]
				appointment.TimeSlot = &slot
			}
		}
		out = append(out, appointment)
	}
	return out, nil
}

func (f *fakeDataService) InsertAppointment(_ context.Context, session *models.Session, appointment models.NewAppointment) error {
	f.record("insert_appointment", session)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, appointment)
	now := time.Now()
	f.appointments = append(f.appointments, models.Appointment{
		ID:        fmt.Sprintf("appt-%d", len(f.appointments)+1),
		UserID:    appointment.UserID,
		SlotID:    appointment.SlotID,
		Status:    appointment.Status,
		Notes:     appointment.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	})
	f.setAvailability(appointment.SlotID, false)
	return nil
}

func (f *fakeDataService) UpdateAppointmentStatus(_ context.Context, session *models.Session, id string, status models.AppointmentStatus) error {
	f.record("update_appointment", session)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	for i := range f.appointments {
		if f.appointments[i].ID == id {
			f.appointments[i].Status = status
			f.setAvailability(f.appointments[i].SlotID, status == models.AppointmentCancelled)
			return nil
		}
	}
	return fmt.Errorf("appointment %s not found", id)
}

func (f *fakeDataService) setAvailability(slotID string, available bool) {
	for i := range f.slots {
		if f.slots[i].ID == slotID {
			f.slots[i].IsAvailable = available
		}
	}
}

func (f *fakeDataService) record(call string, session *models.Session) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	f.sessions = append(f.sessions, session)
}

func (f *fakeDataService) callCount(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, c := range f.calls {
		if c == call {
			count++
		}
	}
	return count
}

func (f *fakeDataService) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type fakeRevoker struct {
	err     error
	revoked []*models.Session
}

func (f *fakeRevoker) SignOut(_ context.Context, session *models.Session) error {
	f.revoked = append(f.revoked, session)
	return f.err
}

type recordedOperation struct {
	operation string
	outcome   string
}

type fakeRecorder struct {
	mu         sync.Mutex
	operations []recordedOperation
}

func (r *fakeRecorder) ObserveStoreOperation(operation, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.operations = append(r.operations, recordedOperation{operation: operation, outcome: outcome})
}

func userSession(id string, role models.UserRole) *models.Session {
	return &models.Session{
		ID:          "session-" + id,
		AccessToken: "token-" + id,
		User:        models.User{ID: id, Email: id + "@example.com", FullName: "User " + id, Role: role},
		ExpiresAt:   time.Now().Add(time.Hour),
	}
}

func strPtr(s string) *string { return &s }
