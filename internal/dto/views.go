package dto

import "time"

// UserView is the navbar identity.
type UserView struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
	IsAdmin  bool   `json:"isAdmin"`
}

// ViewState mirrors the store flags every view renders.
type ViewState struct {
	Loading bool    `json:"loading"`
	Error   *string `json:"error,omitempty"`
	Empty   bool    `json:"empty"`
	Version uint64  `json:"version"`
}

// LoginView tells the login page whether a session already exists.
type LoginView struct {
	Authenticated bool      `json:"authenticated"`
	User          *UserView `json:"user,omitempty"`
	Redirect      string    `json:"redirect,omitempty"`
}

// SlotView is a slot as offered to the user.
type SlotView struct {
	ID          string    `json:"id"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	IsAvailable bool      `json:"isAvailable"`
	Bookable    bool      `json:"bookable"`
}

// CalendarDay is one entry of the week strip.
type CalendarDay struct {
	Date          string `json:"date"`
	Weekday       string `json:"weekday"`
	Selected      bool   `json:"selected"`
	Today         bool   `json:"today"`
	BookableSlots int    `json:"bookableSlots"`
}

// CalendarView groups slots by local calendar day.
type CalendarView struct {
	ViewState
	SelectedDate string                `json:"selectedDate"`
	PrevWeek     string                `json:"prevWeek"`
	NextWeek     string                `json:"nextWeek"`
	Week         []CalendarDay         `json:"week"`
	Slots        []SlotView            `json:"slots"`
	Days         map[string][]SlotView `json:"days"`
}

// AppointmentView is one row of the appointment list.
type AppointmentView struct {
	ID          string     `json:"id"`
	SlotID      string     `json:"slotId"`
	Status      string     `json:"status"`
	Notes       *string    `json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	StartTime   *time.Time `json:"startTime,omitempty"`
	EndTime     *time.Time `json:"endTime,omitempty"`
	Cancellable bool       `json:"cancellable"`
}

// AppointmentListView lists the user's appointments, newest first.
type AppointmentListView struct {
	ViewState
	Appointments []AppointmentView `json:"appointments"`
}

// DashboardStats are the headline numbers on the dashboard.
type DashboardStats struct {
	UpcomingAppointments  int     `json:"upcomingAppointments"`
	ConfirmedAppointments int     `json:"confirmedAppointments"`
	CancelledAppointments int     `json:"cancelledAppointments"`
	TotalHoursBooked      float64 `json:"totalHoursBooked"`
}

// DashboardView greets the user and summarises their bookings.
type DashboardView struct {
	ViewState
	User     UserView          `json:"user"`
	Stats    DashboardStats    `json:"stats"`
	Upcoming []AppointmentView `json:"upcoming"`
}

// WeekRange is a Monday-start week.
type WeekRange struct {
	Start    string   `json:"start"`
	End      string   `json:"end"`
	Previous string   `json:"previous"`
	Next     string   `json:"next"`
	Days     []string `json:"days"`
}

// AdminSlotCounts totals slots by availability.
type AdminSlotCounts struct {
	All       int `json:"all"`
	Available int `json:"available"`
	Booked    int `json:"booked"`
}

// AdminView is the time slot manager.
type AdminView struct {
	ViewState
	SelectedDate string          `json:"selectedDate"`
	Filter       string          `json:"filter"`
	Week         WeekRange       `json:"week"`
	Counts       AdminSlotCounts `json:"counts"`
	Slots        []SlotView      `json:"slots"`
}

// StoreView is one event of the store stream.
type StoreView struct {
	ViewState
	Slots        []SlotView        `json:"slots"`
	Appointments []AppointmentView `json:"appointments"`
}
