package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/appointment-booking/internal/models"
	appErrors "github.com/noah-isme/appointment-booking/pkg/errors"
	"github.com/noah-isme/appointment-booking/pkg/events"
)

func newTestAdmin(data *stubData, pub events.Publisher) *AdminService {
	gen := NewSlotGenerator(SlotGeneratorConfig{Location: time.UTC})
	return NewAdminService(data, gen, pub, nil)
}

func TestAdminGenerateWeekInsertsAndRefreshes(t *testing.T) {
	data := &stubData{}
	pub := &capturePublisher{}
	svc := newTestAdmin(data, pub)
	us := signedIn(newTestSessions(data, nil), models.RoleAdmin)

	monday := time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC)
	result, err := svc.GenerateWeek(context.Background(), us, monday)
	require.NoError(t, err)

	assert.Equal(t, 56, result.Created)
	assert.Equal(t, time.Date(2024, time.June, 3, 9, 0, 0, 0, time.UTC), result.From)
	assert.Equal(t, time.Date(2024, time.June, 9, 17, 0, 0, 0, time.UTC), result.To)
	assert.NoError(t, result.RefreshErr)

	require.Len(t, data.insertedSlots, 1, "one bulk insert")
	assert.Len(t, data.insertedSlots[0], 56)
	assert.Len(t, us.Appointments.Snapshot().Slots, 56)
	assert.Equal(t, []string{events.TypeSlotsGenerated}, pub.types())
}

func TestAdminGenerateWeekRequiresAdmin(t *testing.T) {
	data := &stubData{}
	svc := newTestAdmin(data, nil)
	sessions := newTestSessions(data, nil)

	_, err := svc.GenerateWeek(context.Background(), signedIn(sessions, models.RoleUser), time.Now())
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	_, err = svc.GenerateWeek(context.Background(), sessions.Open(), time.Now())
	assert.True(t, errors.Is(err, appErrors.ErrUnauthenticated))
	assert.Empty(t, data.insertedSlots)
}

func TestAdminGenerateWeekInsertFailure(t *testing.T) {
	data := &stubData{insertErr: appErrors.Remote(403, "permission denied for table time_slots")}
	svc := newTestAdmin(data, nil)
	us := signedIn(newTestSessions(data, nil), models.RoleAdmin)

	_, err := svc.GenerateWeek(context.Background(), us, time.Now())
	require.Error(t, err)
	assert.Zero(t, data.slotFetches, "no refresh after failed insert")
}

func TestAdminGenerateWeekKeepsResultWhenRefreshFails(t *testing.T) {
	data := &stubData{listSlotsErr: errors.New("network timeout")}
	svc := newTestAdmin(data, nil)
	us := signedIn(newTestSessions(data, nil), models.RoleAdmin)

	result, err := svc.GenerateWeek(context.Background(), us, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 56, result.Created)
	require.Error(t, result.RefreshErr)
	require.NotNil(t, us.Appointments.Snapshot().Error)
	assert.Equal(t, "network timeout", *us.Appointments.Snapshot().Error)
}

func TestAdminDeleteSlot(t *testing.T) {
	data := &stubData{slots: []models.TimeSlot{
		{ID: "a", StartTime: time.Now().Add(time.Hour), EndTime: time.Now().Add(2 * time.Hour), IsAvailable: true},
		{ID: "b", StartTime: time.Now().Add(3 * time.Hour), EndTime: time.Now().Add(4 * time.Hour), IsAvailable: true},
	}}
	pub := &capturePublisher{}
	svc := newTestAdmin(data, pub)
	us := signedIn(newTestSessions(data, nil), models.RoleAdmin)

	require.NoError(t, svc.DeleteSlot(context.Background(), us, "a"))
	assert.Equal(t, []string{"a"}, data.deleted)
	slots := us.Appointments.Snapshot().Slots
	require.Len(t, slots, 1)
	assert.Equal(t, "b", slots[0].ID)
	assert.Equal(t, []string{events.TypeSlotDeleted}, pub.types())
}

func TestAdminListSlotsFilter(t *testing.T) {
	start := time.Now().Add(time.Hour)
	data := &stubData{slots: []models.TimeSlot{
		{ID: "free", StartTime: start, EndTime: start.Add(time.Hour), IsAvailable: true},
		{ID: "taken", StartTime: start.Add(time.Hour), EndTime: start.Add(2 * time.Hour), IsAvailable: false},
	}}
	svc := newTestAdmin(data, nil)
	us := signedIn(newTestSessions(data, nil), models.RoleAdmin)
	require.NoError(t, us.Appointments.FetchSlots(context.Background()))

	assert.Len(t, svc.ListSlots(us, models.SlotFilterAll), 2)
	available := svc.ListSlots(us, models.SlotFilterAvailable)
	require.Len(t, available, 1)
	assert.Equal(t, "free", available[0].ID)
	booked := svc.ListSlots(us, models.SlotFilterBooked)
	require.Len(t, booked, 1)
	assert.Equal(t, "taken", booked[0].ID)
}

func TestAdminWeekStartsMonday(t *testing.T) {
	svc := newTestAdmin(&stubData{}, nil)

	week := svc.Week(time.Date(2024, time.June, 9, 15, 0, 0, 0, time.UTC))
	assert.Equal(t, "2024-06-03", week.Start)
	assert.Equal(t, "2024-06-09", week.End)
	assert.Equal(t, "2024-05-27", week.Previous)
	assert.Equal(t, "2024-06-10", week.Next)
	assert.Len(t, week.Days, 7)

	week = svc.Week(time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "2024-06-03", week.Start)
}

func TestAdminParseDate(t *testing.T) {
	svc := newTestAdmin(&stubData{}, nil)

	date, err := svc.ParseDate("2024-06-03")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC), date)

	_, err = svc.ParseDate("03/06/2024")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	today, err := svc.ParseDate("")
	require.NoError(t, err)
	assert.Zero(t, today.Hour())
}
