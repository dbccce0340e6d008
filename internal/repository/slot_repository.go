package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/appointment-booking/internal/models"
)

// SlotRepository provides database access for time slots.
type SlotRepository struct {
	db *sqlx.DB
}

// NewSlotRepository creates a new instance of SlotRepository.
func NewSlotRepository(db *sqlx.DB) *SlotRepository {
	return &SlotRepository{db: db}
}

// List returns all slots ordered by start time.
func (r *SlotRepository) List(ctx context.Context) ([]models.TimeSlot, error) {
	const query = `SELECT id, start_time, end_time, is_available, created_at, updated_at FROM time_slots ORDER BY start_time ASC`
	var slots []models.TimeSlot
	if err := r.db.SelectContext(ctx, &slots, query); err != nil {
		return nil, fmt.Errorf("list time slots: %w", err)
	}
	return slots, nil
}

type slotInsert struct {
	ID          string    `db:"id"`
	StartTime   time.Time `db:"start_time"`
	EndTime     time.Time `db:"end_time"`
	IsAvailable bool      `db:"is_available"`
	CreatedAt   time.Time `db:"created_at"`
}

// InsertBatch writes all slots in one transaction.
func (r *SlotRepository) InsertBatch(ctx context.Context, slots []models.NewTimeSlot) error {
	if len(slots) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin slot insert: %w", err)
	}

	const query = `INSERT INTO time_slots (id, start_time, end_time, is_available, created_at, updated_at) VALUES (:id, :start_time, :end_time, :is_available, :created_at, :created_at)`
	now := time.Now().UTC()
	for i := range slots {
		row := slotInsert{
			ID:          uuid.NewString(),
			StartTime:   slots[i].StartTime.UTC(),
			EndTime:     slots[i].EndTime.UTC(),
			IsAvailable: slots[i].IsAvailable,
			CreatedAt:   now,
		}
		if _, err := tx.NamedExecContext(ctx, query, row); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert time slot %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit slot insert: %w", err)
	}
	return nil
}

// Delete removes a slot. It reports whether a row was deleted.
func (r *SlotRepository) Delete(ctx context.Context, id string) (bool, error) {
	const query = `DELETE FROM time_slots WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("delete time slot: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete time slot rows: %w", err)
	}
	return affected > 0, nil
}
