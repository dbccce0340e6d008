package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/appointment-booking/internal/dto"
	"github.com/noah-isme/appointment-booking/internal/models"
	appErrors "github.com/noah-isme/appointment-booking/pkg/errors"
	"github.com/noah-isme/appointment-booking/pkg/events"
)

const dateLayout = "2006-01-02"

type slotAdmin interface {
	InsertSlots(ctx context.Context, session *models.Session, slots []models.NewTimeSlot) error
	DeleteSlot(ctx context.Context, session *models.Session, id string) error
}

// GenerateResult describes a bulk slot insert.
type GenerateResult struct {
	Created int
	From    time.Time
	To      time.Time
	// RefreshErr is a failed slot re-fetch after a successful insert.
	RefreshErr error
}

// AdminService manages time slots on behalf of admin sessions.
type AdminService struct {
	slots     slotAdmin
	generator *SlotGenerator
	publisher events.Publisher
	logger    *zap.Logger
}

// NewAdminService constructs an AdminService.
func NewAdminService(slots slotAdmin, generator *SlotGenerator, publisher events.Publisher, logger *zap.Logger) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if generator == nil {
		generator = NewSlotGenerator(SlotGeneratorConfig{})
	}
	return &AdminService{slots: slots, generator: generator, publisher: publisher, logger: logger}
}

// ParseDate reads a YYYY-MM-DD date in the generator's zone. An empty value means today.
func (s *AdminService) ParseDate(raw string) (time.Time, error) {
	loc := s.generator.Location()
	if raw == "" {
		now := time.Now().In(loc)
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc), nil
	}
	date, err := time.ParseInLocation(dateLayout, raw, loc)
	if err != nil {
		return time.Time{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "date must be YYYY-MM-DD")
	}
	return date, nil
}

// GenerateWeek bulk inserts a week of slots starting at date and re-fetches the
// session's slots. Existing slots are not checked, so repeating a week duplicates it.
func (s *AdminService) GenerateWeek(ctx context.Context, us *UserSession, date time.Time) (*GenerateResult, error) {
	session, err := adminSession(us)
	if err != nil {
		return nil, err
	}

	batch := s.generator.GenerateWeek(date)
	if err := s.slots.InsertSlots(ctx, session, batch); err != nil {
		return nil, err
	}

	result := &GenerateResult{Created: len(batch)}
	if len(batch) > 0 {
		result.From = batch[0].StartTime
		result.To = batch[len(batch)-1].EndTime
	}
	s.logger.Info("generated slots",
		zap.String("user_id", session.User.ID),
		zap.Int("count", result.Created),
		zap.Time("from", result.From),
	)
	s.publish(ctx, events.NewEvent(events.TypeSlotsGenerated, result.From.Format(dateLayout), session.User.ID, map[string]interface{}{
		"count": result.Created,
		"from":  result.From,
		"to":    result.To,
	}))

	result.RefreshErr = us.Appointments.FetchSlots(ctx)
	return result, nil
}

// DeleteSlot removes a slot by id and re-fetches the session's slots. A failed
// re-fetch is left in the store state and not returned.
func (s *AdminService) DeleteSlot(ctx context.Context, us *UserSession, id string) error {
	session, err := adminSession(us)
	if err != nil {
		return err
	}
	if err := s.slots.DeleteSlot(ctx, session, id); err != nil {
		return err
	}
	s.publish(ctx, events.NewEvent(events.TypeSlotDeleted, id, session.User.ID, map[string]interface{}{
		"slot_id": id,
	}))
	if err := us.Appointments.FetchSlots(ctx); err != nil {
		s.logger.Warn("slots re-fetch after delete failed", zap.Error(err))
	}
	return nil
}

// ListSlots applies filter to the session's cached slots.
func (s *AdminService) ListSlots(us *UserSession, filter models.SlotFilter) []models.TimeSlot {
	snap := us.Appointments.Snapshot()
	filtered := make([]models.TimeSlot, 0, len(snap.Slots))
	for _, slot := range snap.Slots {
		if filter.Match(slot) {
			filtered = append(filtered, slot)
		}
	}
	return filtered
}

// Week returns the Monday-start week containing date.
func (s *AdminService) Week(date time.Time) dto.WeekRange {
	return weekRange(date.In(s.generator.Location()))
}

func weekRange(date time.Time) dto.WeekRange {
	start := weekStart(date)
	days := make([]string, 7)
	for i := range days {
		days[i] = start.AddDate(0, 0, i).Format(dateLayout)
	}
	return dto.WeekRange{
		Start:    days[0],
		End:      days[6],
		Previous: start.AddDate(0, 0, -7).Format(dateLayout),
		Next:     start.AddDate(0, 0, 7).Format(dateLayout),
		Days:     days,
	}
}

// weekStart returns local midnight of the Monday on or before date.
func weekStart(date time.Time) time.Time {
	offset := (int(date.Weekday()) + 6) % 7
	y, m, d := date.Date()
	return time.Date(y, m, d-offset, 0, 0, 0, 0, date.Location())
}

func adminSession(us *UserSession) (*models.Session, error) {
	if us == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthenticated, "")
	}
	session := us.Auth.Session()
	if session == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthenticated, "")
	}
	if !session.User.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "admin role required")
	}
	return session, nil
}

func (s *AdminService) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish event", zap.String("type", event.Type), zap.Error(err))
	}
}
