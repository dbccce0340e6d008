package models

import "time"

// AppointmentStatus tracks the lifecycle of a booking.
type AppointmentStatus string

const (
	// AppointmentPending is reserved; bookings are written as confirmed.
	AppointmentPending   AppointmentStatus = "pending"
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentCancelled AppointmentStatus = "cancelled"
)

// Valid reports whether the status is one of the known values.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentPending, AppointmentConfirmed, AppointmentCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the client may move an appointment to next.
// Cancellation is the only transition and it is terminal.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	if next != AppointmentCancelled {
		return false
	}
	return s == AppointmentPending || s == AppointmentConfirmed
}

// Appointment links a user to a slot. TimeSlot is populated only from the remote join.
type Appointment struct {
	ID        string            `db:"id" json:"id"`
	UserID    string            `db:"user_id" json:"user_id"`
	SlotID    string            `db:"slot_id" json:"slot_id"`
	Status    AppointmentStatus `db:"status" json:"status"`
	Notes     *string           `db:"notes" json:"notes"`
	CreatedAt time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt time.Time         `db:"updated_at" json:"updated_at"`
	TimeSlot  *TimeSlot         `db:"-" json:"time_slots,omitempty"`
}

// Cancellable reports whether the appointment list offers a cancel action.
func (a Appointment) Cancellable() bool {
	return a.Status.CanTransitionTo(AppointmentCancelled)
}

// NewAppointment is the insert payload for a booking.
type NewAppointment struct {
	UserID string            `db:"user_id" json:"user_id"`
	SlotID string            `db:"slot_id" json:"slot_id"`
	Notes  *string           `db:"notes" json:"notes,omitempty"`
	Status AppointmentStatus `db:"status" json:"status"`
}
