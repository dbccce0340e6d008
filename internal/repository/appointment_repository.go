package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/appointment-booking/internal/models"
)

// ErrSlotUnavailable is returned when booking a slot that is already taken or gone.
var ErrSlotUnavailable = errors.New("time slot is no longer available")

// ErrStatusUnchanged is returned when an appointment already has the requested status.
var ErrStatusUnchanged = errors.New("appointment already has that status")

// AppointmentRepository provides database access for appointments.
type AppointmentRepository struct {
	db *sqlx.DB
}

// NewAppointmentRepository creates a new instance of AppointmentRepository.
func NewAppointmentRepository(db *sqlx.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

type appointmentRow struct {
	models.Appointment
	SlotRefID       sql.NullString `db:"slot_ref_id"`
	SlotStartTime   sql.NullTime   `db:"slot_start_time"`
	SlotEndTime     sql.NullTime   `db:"slot_end_time"`
	SlotIsAvailable sql.NullBool   `db:"slot_is_available"`
	SlotCreatedAt   sql.NullTime   `db:"slot_created_at"`
	SlotUpdatedAt   sql.NullTime   `db:"slot_updated_at"`
}

func (r appointmentRow) toModel() models.Appointment {
	appointment := r.Appointment
	if r.SlotRefID.Valid {
		appointment.TimeSlot = &models.TimeSlot{
			ID:          r.SlotRefID.String,
			StartTime:   r.SlotStartTime.Time,
			EndTime:     r.SlotEndTime.Time,
			IsAvailable: r.SlotIsAvailable.Bool,
			CreatedAt:   r.SlotCreatedAt.Time,
			UpdatedAt:   r.SlotUpdatedAt.Time,
		}
	}
	return appointment
}

// ListByUser returns the user's appointments joined with their slot, newest first.
func (r *AppointmentRepository) ListByUser(ctx context.Context, userID string) ([]models.Appointment, error) {
	const query = `SELECT a.id, a.user_id, a.slot_id, a.status, a.notes, a.created_at, a.updated_at,
s.id AS slot_ref_id, s.start_time AS slot_start_time, s.end_time AS slot_end_time, s.is_available AS slot_is_available, s.created_at AS slot_created_at, s.updated_at AS slot_updated_at
FROM appointments a LEFT JOIN time_slots s ON s.id = a.slot_id
WHERE a.user_id = $1 ORDER BY a.created_at DESC`
	var rows []appointmentRow
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	appointments := make([]models.Appointment, 0, len(rows))
	for _, row := range rows {
		appointments = append(appointments, row.toModel())
	}
	return appointments, nil
}

// Create books the slot and inserts the appointment in one transaction. The slot is
// claimed first so two bookings cannot both succeed.
func (r *AppointmentRepository) Create(ctx context.Context, appointment models.NewAppointment) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin booking: %w", err)
	}

	res, err := tx.ExecContext(ctx, `UPDATE time_slots SET is_available = FALSE, updated_at = $2 WHERE id = $1 AND is_available`, appointment.SlotID, time.Now().UTC())
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("claim time slot: %w", err)
	}
	if affected, err := res.RowsAffected(); err != nil || affected == 0 {
		_ = tx.Rollback()
		if err != nil {
			return fmt.Errorf("claim time slot rows: %w", err)
		}
		return ErrSlotUnavailable
	}

	const insert = `INSERT INTO appointments (id, user_id, slot_id, status, notes, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $6)`
	if _, err := tx.ExecContext(ctx, insert, uuid.NewString(), appointment.UserID, appointment.SlotID, appointment.Status, appointment.Notes, time.Now().UTC()); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert appointment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit booking: %w", err)
	}
	return nil
}

// UpdateStatus changes the status of one of the user's appointments. Cancelling
// releases the slot. It reports whether the appointment was found; an appointment
// already in the requested status is left alone and yields ErrStatusUnchanged, so
// a repeated cancel never releases a slot that has since been booked again.
func (r *AppointmentRepository) UpdateStatus(ctx context.Context, userID, id string, status models.AppointmentStatus) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin status update: %w", err)
	}

	now := time.Now().UTC()
	var slotID string
	err = tx.GetContext(ctx, &slotID, `UPDATE appointments SET status = $3, updated_at = $4 WHERE id = $1 AND user_id = $2 AND status <> $3 RETURNING slot_id`, id, userID, status, now)
	if err != nil {
		defer tx.Rollback() //nolint:errcheck
		if !errors.Is(err, sql.ErrNoRows) {
			return false, fmt.Errorf("update appointment status: %w", err)
		}
		var current models.AppointmentStatus
		err = tx.GetContext(ctx, &current, `SELECT status FROM appointments WHERE id = $1 AND user_id = $2`, id, userID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return false, nil
		case err != nil:
			return false, fmt.Errorf("load appointment status: %w", err)
		}
		return true, ErrStatusUnchanged
	}

	if status == models.AppointmentCancelled {
		if _, err := tx.ExecContext(ctx, `UPDATE time_slots SET is_available = TRUE, updated_at = $2 WHERE id = $1`, slotID, now); err != nil {
			_ = tx.Rollback()
			return false, fmt.Errorf("release time slot: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit status update: %w", err)
	}
	return true, nil
}
