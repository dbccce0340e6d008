package repository

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/lib/pq"

	"github.com/noah-isme/appointment-booking/internal/models"
	appErrors "github.com/noah-isme/appointment-booking/pkg/errors"
)

// PostgresDataService serves the store ports straight from the database for
// self-hosted deployments. Without row level security, reads and writes are scoped
// to the session user here.
type PostgresDataService struct {
	slots        *SlotRepository
	appointments *AppointmentRepository
	recorder     RemoteRecorder
}

func NewPostgresDataService(slots *SlotRepository, appointments *AppointmentRepository) *PostgresDataService {
	return &PostgresDataService{slots: slots, appointments: appointments}
}

// SetRecorder attaches remote call metrics.
func (s *PostgresDataService) SetRecorder(recorder RemoteRecorder) {
	s.recorder = recorder
}

func (s *PostgresDataService) ListSlots(ctx context.Context, _ *models.Session) ([]models.TimeSlot, error) {
	var slots []models.TimeSlot
	err := s.observe("list_slots", func() error {
		var err error
		slots, err = s.slots.List(ctx)
		return err
	})
	return slots, err
}

// ListAppointments returns nothing for anonymous callers.
func (s *PostgresDataService) ListAppointments(ctx context.Context, session *models.Session) ([]models.Appointment, error) {
	if session == nil {
		return []models.Appointment{}, nil
	}
	var appointments []models.Appointment
	err := s.observe("list_appointments", func() error {
		var err error
		appointments, err = s.appointments.ListByUser(ctx, session.User.ID)
		return err
	})
	return appointments, err
}

func (s *PostgresDataService) InsertAppointment(ctx context.Context, session *models.Session, appointment models.NewAppointment) error {
	if session == nil {
		return appErrors.Clone(appErrors.ErrUnauthenticated, "")
	}
	if appointment.UserID != session.User.ID {
		return appErrors.Remote(http.StatusForbidden, "cannot book on behalf of another user")
	}
	return s.observe("insert_appointment", func() error {
		return s.appointments.Create(ctx, appointment)
	})
}

func (s *PostgresDataService) UpdateAppointmentStatus(ctx context.Context, session *models.Session, id string, status models.AppointmentStatus) error {
	if session == nil {
		return appErrors.Clone(appErrors.ErrUnauthenticated, "")
	}
	return s.observe("update_appointment", func() error {
		found, err := s.appointments.UpdateStatus(ctx, session.User.ID, id, status)
		if err != nil {
			return err
		}
		if !found {
			return appErrors.Remote(http.StatusNotFound, "appointment not found")
		}
		return nil
	})
}

// InsertSlots requires an admin session.
func (s *PostgresDataService) InsertSlots(ctx context.Context, session *models.Session, slots []models.NewTimeSlot) error {
	if err := requireAdmin(session); err != nil {
		return err
	}
	return s.observe("insert_slots", func() error {
		return s.slots.InsertBatch(ctx, slots)
	})
}

// DeleteSlot requires an admin session.
func (s *PostgresDataService) DeleteSlot(ctx context.Context, session *models.Session, id string) error {
	if err := requireAdmin(session); err != nil {
		return err
	}
	return s.observe("delete_slot", func() error {
		deleted, err := s.slots.Delete(ctx, id)
		if err != nil {
			return err
		}
		if !deleted {
			return appErrors.Remote(http.StatusNotFound, "time slot not found")
		}
		return nil
	})
}

func (s *PostgresDataService) observe(operation string, fn func() error) error {
	started := time.Now()
	err := databaseError(fn())
	if s.recorder != nil {
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		s.recorder.ObserveRemoteCall(operation, outcome, time.Since(started))
	}
	return err
}

func requireAdmin(session *models.Session) error {
	if session == nil {
		return appErrors.Clone(appErrors.ErrUnauthenticated, "")
	}
	if !session.User.IsAdmin() {
		return appErrors.Remote(http.StatusForbidden, "admin role required")
	}
	return nil
}

// databaseError maps driver failures to remote errors the store can show inline.
func databaseError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, ErrSlotUnavailable) {
		return appErrors.Remote(http.StatusConflict, ErrSlotUnavailable.Error())
	}
	if errors.Is(err, ErrStatusUnchanged) {
		return appErrors.Clone(appErrors.ErrInvalidTransition, ErrStatusUnchanged.Error())
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return appErrors.Wrap(err, appErrors.ErrRemote.Code, http.StatusBadGateway, "network timeout")
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "23":
			return appErrors.Remote(http.StatusConflict, pqErr.Message)
		case "22":
			return appErrors.Remote(http.StatusBadRequest, pqErr.Message)
		}
		return appErrors.Wrap(err, appErrors.ErrRemote.Code, http.StatusBadGateway, pqErr.Message)
	}
	return appErrors.Wrap(err, appErrors.ErrRemote.Code, http.StatusBadGateway, "database error")
}
