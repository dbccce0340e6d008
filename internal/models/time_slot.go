package models

import (
	"fmt"
	"time"
)

// TimeSlot is a fixed-duration interval that can be booked once.
type TimeSlot struct {
	ID          string    `db:"id" json:"id"`
	StartTime   time.Time `db:"start_time" json:"start_time"`
	EndTime     time.Time `db:"end_time" json:"end_time"`
	IsAvailable bool      `db:"is_available" json:"is_available"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Bookable reports whether the slot can be offered for booking at now.
func (s TimeSlot) Bookable(now time.Time) bool {
	return s.IsAvailable && s.StartTime.After(now)
}

// Duration returns the slot width.
func (s TimeSlot) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}

// Validate checks the slot interval.
func (s TimeSlot) Validate() error {
	if !s.EndTime.After(s.StartTime) {
		return fmt.Errorf("slot end %s must be after start %s", s.EndTime.Format(time.RFC3339), s.StartTime.Format(time.RFC3339))
	}
	return nil
}

// NewTimeSlot is the insert payload for a slot. The remote service assigns ids and timestamps.
type NewTimeSlot struct {
	StartTime   time.Time `db:"start_time" json:"start_time"`
	EndTime     time.Time `db:"end_time" json:"end_time"`
	IsAvailable bool      `db:"is_available" json:"is_available"`
}

// SlotFilter narrows the admin slot listing.
type SlotFilter string

const (
	SlotFilterAll       SlotFilter = "all"
	SlotFilterAvailable SlotFilter = "available"
	SlotFilterBooked    SlotFilter = "booked"
)

// ParseSlotFilter maps user input to a filter, defaulting to all.
func ParseSlotFilter(raw string) (SlotFilter, error) {
	switch SlotFilter(raw) {
	case "", SlotFilterAll:
		return SlotFilterAll, nil
	case SlotFilterAvailable, SlotFilterBooked:
		return SlotFilter(raw), nil
	default:
		return "", fmt.Errorf("unknown slot filter %q", raw)
	}
}

// Match reports whether the slot passes the filter.
func (f SlotFilter) Match(slot TimeSlot) bool {
	switch f {
	case SlotFilterAvailable:
		return slot.IsAvailable
	case SlotFilterBooked:
		return !slot.IsAvailable
	default:
		return true
	}
}
