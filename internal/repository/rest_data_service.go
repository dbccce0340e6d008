package repository

import (
	"context"
	"net/http"
	"net/url"

	"github.com/noah-isme/appointment-booking/internal/models"
)

const (
	slotsPath        = "/rest/v1/time_slots"
	appointmentsPath = "/rest/v1/appointments"
)

// RESTDataService reads and writes slots and appointments through the REST API.
// Row level security on the service scopes appointments to the token's user.
type RESTDataService struct {
	client *RESTClient
}

func NewRESTDataService(client *RESTClient) *RESTDataService {
	return &RESTDataService{client: client}
}

func (s *RESTDataService) ListSlots(ctx context.Context, session *models.Session) ([]models.TimeSlot, error) {
	var slots []models.TimeSlot
	err := s.client.do(ctx, restRequest{
		operation: "list_slots",
		method:    http.MethodGet,
		path:      slotsPath,
		query:     url.Values{"select": {"*"}, "order": {"start_time.asc"}},
		token:     accessToken(session),
	}, &slots)
	if err != nil {
		return nil, err
	}
	return slots, nil
}

func (s *RESTDataService) ListAppointments(ctx context.Context, session *models.Session) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := s.client.do(ctx, restRequest{
		operation: "list_appointments",
		method:    http.MethodGet,
		path:      appointmentsPath,
		query:     url.Values{"select": {"*,time_slots(*)"}, "order": {"created_at.desc"}},
		token:     accessToken(session),
	}, &appointments)
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (s *RESTDataService) InsertAppointment(ctx context.Context, session *models.Session, appointment models.NewAppointment) error {
	return s.client.do(ctx, restRequest{
		operation: "insert_appointment",
		method:    http.MethodPost,
		path:      appointmentsPath,
		token:     accessToken(session),
		body:      appointment,
		headers:   map[string]string{"Prefer": "return=minimal"},
	}, nil)
}

func (s *RESTDataService) UpdateAppointmentStatus(ctx context.Context, session *models.Session, id string, status models.AppointmentStatus) error {
	return s.client.do(ctx, restRequest{
		operation: "update_appointment",
		method:    http.MethodPatch,
		path:      appointmentsPath,
		query:     url.Values{"id": {eq(id)}},
		token:     accessToken(session),
		body:      map[string]models.AppointmentStatus{"status": status},
		headers:   map[string]string{"Prefer": "return=minimal"},
	}, nil)
}

// InsertSlots submits all slots in one bulk insert.
func (s *RESTDataService) InsertSlots(ctx context.Context, session *models.Session, slots []models.NewTimeSlot) error {
	return s.client.do(ctx, restRequest{
		operation: "insert_slots",
		method:    http.MethodPost,
		path:      slotsPath,
		token:     accessToken(session),
		body:      slots,
		headers:   map[string]string{"Prefer": "return=minimal"},
	}, nil)
}

func (s *RESTDataService) DeleteSlot(ctx context.Context, session *models.Session, id string) error {
	return s.client.do(ctx, restRequest{
		operation: "delete_slot",
		method:    http.MethodDelete,
		path:      slotsPath,
		query:     url.Values{"id": {eq(id)}},
		token:     accessToken(session),
	}, nil)
}

func accessToken(session *models.Session) string {
	if session == nil {
		return ""
	}
	return session.AccessToken
}
