package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/appointment-booking/internal/dto"
	"github.com/noah-isme/appointment-booking/internal/models"
	"github.com/noah-isme/appointment-booking/internal/store"
)

const dashboardUpcomingLimit = 5

// ViewService builds the page view models from a session's stores. Every view
// loads its collection first, the way the pages fetch on mount; load failures
// surface through the view's error field.
type ViewService struct {
	admin    *AdminService
	location *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

// NewViewService constructs a ViewService. Calendar days are computed in loc.
func NewViewService(admin *AdminService, loc *time.Location, logger *zap.Logger) *ViewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	return &ViewService{admin: admin, location: loc, logger: logger, now: time.Now}
}

// Login reports whether the session is already signed in.
func (s *ViewService) Login(us *UserSession, redirect string) dto.LoginView {
	view := dto.LoginView{}
	if us == nil {
		return view
	}
	if user := us.Auth.User(); user != nil {
		u := userView(*user)
		view.Authenticated = true
		view.User = &u
		view.Redirect = redirect
	}
	return view
}

// Calendar loads slots and groups them by local day. rawDate selects the day shown;
// an empty or invalid value selects today.
func (s *ViewService) Calendar(ctx context.Context, us *UserSession, rawDate string) dto.CalendarView {
	s.load(ctx, us.Appointments.FetchSlots, "slots")
	snap := us.Appointments.Snapshot()
	now := s.now()
	selected := s.parseDay(rawDate, now)
	selectedKey := selected.Format(dateLayout)
	todayKey := now.In(s.location).Format(dateLayout)

	days := make(map[string][]dto.SlotView)
	for _, slot := range snap.Slots {
		key := slot.StartTime.In(s.location).Format(dateLayout)
		days[key] = append(days[key], slotView(slot, now))
	}

	start := weekStart(selected)
	week := make([]dto.CalendarDay, 7)
	for i := range week {
		day := start.AddDate(0, 0, i)
		key := day.Format(dateLayout)
		bookable := 0
		for _, slot := range days[key] {
			if slot.Bookable {
				bookable++
			}
		}
		week[i] = dto.CalendarDay{
			Date:          key,
			Weekday:       day.Weekday().String(),
			Selected:      key == selectedKey,
			Today:         key == todayKey,
			BookableSlots: bookable,
		}
	}

	daySlots := days[selectedKey]
	if daySlots == nil {
		daySlots = []dto.SlotView{}
	}
	return dto.CalendarView{
		ViewState:    viewState(snap, len(daySlots) == 0),
		SelectedDate: selectedKey,
		PrevWeek:     selected.AddDate(0, 0, -7).Format(dateLayout),
		NextWeek:     selected.AddDate(0, 0, 7).Format(dateLayout),
		Week:         week,
		Slots:        daySlots,
		Days:         days,
	}
}

// Appointments loads the user's appointments, newest first.
func (s *ViewService) Appointments(ctx context.Context, us *UserSession) dto.AppointmentListView {
	s.load(ctx, us.Appointments.FetchAppointments, "appointments")
	snap := us.Appointments.Snapshot()

	views := make([]dto.AppointmentView, 0, len(snap.Appointments))
	for _, appointment := range snap.Appointments {
		views = append(views, appointmentView(appointment))
	}
	return dto.AppointmentListView{
		ViewState:    viewState(snap, len(views) == 0),
		Appointments: views,
	}
}

// Dashboard loads appointments and summarises them for the signed-in user.
func (s *ViewService) Dashboard(ctx context.Context, us *UserSession) dto.DashboardView {
	s.load(ctx, us.Appointments.FetchAppointments, "appointments")
	snap := us.Appointments.Snapshot()
	now := s.now()

	var stats dto.DashboardStats
	var hours time.Duration
	upcoming := make([]models.Appointment, 0)
	for _, appointment := range snap.Appointments {
		switch appointment.Status {
		case models.AppointmentConfirmed:
			stats.ConfirmedAppointments++
			if appointment.TimeSlot != nil {
				hours += appointment.TimeSlot.Duration()
			}
			if appointment.TimeSlot == nil || appointment.TimeSlot.StartTime.After(now) {
				upcoming = append(upcoming, appointment)
			}
		case models.AppointmentCancelled:
			stats.CancelledAppointments++
		}
	}
	stats.UpcomingAppointments = len(upcoming)
	stats.TotalHoursBooked = hours.Hours()

	sort.SliceStable(upcoming, func(i, j int) bool {
		a, b := upcoming[i].TimeSlot, upcoming[j].TimeSlot
		if a == nil || b == nil {
			return a != nil
		}
		return a.StartTime.Before(b.StartTime)
	})
	if len(upcoming) > dashboardUpcomingLimit {
		upcoming = upcoming[:dashboardUpcomingLimit]
	}
	next := make([]dto.AppointmentView, 0, len(upcoming))
	for _, appointment := range upcoming {
		next = append(next, appointmentView(appointment))
	}

	view := dto.DashboardView{
		ViewState: viewState(snap, len(snap.Appointments) == 0),
		Stats:     stats,
		Upcoming:  next,
	}
	if user := us.Auth.User(); user != nil {
		view.User = userView(*user)
	}
	return view
}

// Admin loads slots for the time slot manager. rawFilter must be all, available or booked.
func (s *ViewService) Admin(ctx context.Context, us *UserSession, rawDate, rawFilter string) (dto.AdminView, error) {
	filter, err := models.ParseSlotFilter(rawFilter)
	if err != nil {
		return dto.AdminView{}, err
	}
	s.load(ctx, us.Appointments.FetchSlots, "slots")
	snap := us.Appointments.Snapshot()
	now := s.now()
	selected := s.parseDay(rawDate, now)

	var counts dto.AdminSlotCounts
	for _, slot := range snap.Slots {
		counts.All++
		if slot.IsAvailable {
			counts.Available++
		} else {
			counts.Booked++
		}
	}

	filtered := s.admin.ListSlots(us, filter)
	slots := make([]dto.SlotView, 0, len(filtered))
	for _, slot := range filtered {
		slots = append(slots, slotView(slot, now))
	}

	return dto.AdminView{
		ViewState:    viewState(snap, len(slots) == 0),
		SelectedDate: selected.Format(dateLayout),
		Filter:       string(filter),
		Week:         s.admin.Week(selected),
		Counts:       counts,
		Slots:        slots,
	}, nil
}

// Store renders a full store snapshot for the event stream.
func (s *ViewService) Store(snap store.Snapshot) dto.StoreView {
	now := s.now()
	view := dto.StoreView{
		ViewState:    viewState(snap, len(snap.Slots) == 0 && len(snap.Appointments) == 0),
		Slots:        make([]dto.SlotView, 0, len(snap.Slots)),
		Appointments: make([]dto.AppointmentView, 0, len(snap.Appointments)),
	}
	for _, slot := range snap.Slots {
		view.Slots = append(view.Slots, slotView(slot, now))
	}
	for _, appointment := range snap.Appointments {
		view.Appointments = append(view.Appointments, appointmentView(appointment))
	}
	return view
}

func (s *ViewService) load(ctx context.Context, fetch func(context.Context) error, what string) {
	if err := fetch(ctx); err != nil {
		s.logger.Debug("view load failed", zap.String("collection", what), zap.Error(err))
	}
}

func (s *ViewService) parseDay(raw string, now time.Time) time.Time {
	if raw != "" {
		if day, err := time.ParseInLocation(dateLayout, raw, s.location); err == nil {
			return day
		}
	}
	local := now.In(s.location)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.location)
}

func viewState(snap store.Snapshot, empty bool) dto.ViewState {
	return dto.ViewState{
		Loading: snap.Loading,
		Error:   snap.Error,
		Empty:   empty,
		Version: snap.Version,
	}
}

func userView(user models.User) dto.UserView {
	return dto.UserView{
		ID:       user.ID,
		Email:    user.Email,
		FullName: user.FullName,
		Role:     string(user.Role),
		IsAdmin:  user.IsAdmin(),
	}
}

func slotView(slot models.TimeSlot, now time.Time) dto.SlotView {
	return dto.SlotView{
		ID:          slot.ID,
		StartTime:   slot.StartTime,
		EndTime:     slot.EndTime,
		IsAvailable: slot.IsAvailable,
		Bookable:    slot.Bookable(now),
	}
}

func appointmentView(appointment models.Appointment) dto.AppointmentView {
	view := dto.AppointmentView{
		ID:          appointment.ID,
		SlotID:      appointment.SlotID,
		Status:      string(appointment.Status),
		Notes:       appointment.Notes,
		CreatedAt:   appointment.CreatedAt,
		Cancellable: appointment.Cancellable(),
	}
	if appointment.TimeSlot != nil {
		start, end := appointment.TimeSlot.StartTime, appointment.TimeSlot.EndTime
		view.StartTime = &start
		view.EndTime = &end
	}
	return view
}
