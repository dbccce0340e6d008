package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/noah-isme/appointment-booking/internal/dto"
	appErrors "github.com/noah-isme/appointment-booking/pkg/errors"
	"github.com/noah-isme/appointment-booking/pkg/response"
)

// AppointmentHandler exposes the appointment store mutations.
type AppointmentHandler struct {
	validate *validator.Validate
}

// NewAppointmentHandler creates a new handler.
func NewAppointmentHandler(validate *validator.Validate) *AppointmentHandler {
	if validate == nil {
		validate = validator.New()
	}
	return &AppointmentHandler{validate: validate}
}

// Book godoc
// @Summary Book a time slot
// @Description Books the slot as confirmed and resynchronises appointments and slots
// @Tags Appointments
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param payload body dto.BookAppointmentRequest true "Booking"
// @Success 201 {object} response.Envelope{data=dto.MutationResponse}
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /api/v1/appointments [post]
func (h *AppointmentHandler) Book(c *gin.Context) {
	us, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req dto.BookAppointmentRequest
	if !bindAndValidate(c, h.validate, &req, "invalid booking payload") {
		return
	}
	if req.Notes != nil && strings.TrimSpace(*req.Notes) == "" {
		req.Notes = nil
	}

	if err := us.Appointments.BookAppointment(c.Request.Context(), req.SlotID, req.Notes); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, mutationResponse("booked", us.Appointments.Snapshot()))
}

// Cancel godoc
// @Summary Cancel an appointment
// @Description Marks the appointment cancelled and resynchronises appointments and slots
// @Tags Appointments
// @Produce json
// @Param id path string true "Appointment ID"
// @Success 200 {object} response.Envelope{data=dto.MutationResponse}
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /api/v1/appointments/{id}/cancel [post]
func (h *AppointmentHandler) Cancel(c *gin.Context) {
	us, ok := sessionFromContext(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid appointment id"))
		return
	}

	if err := us.Appointments.CancelAppointment(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mutationResponse("cancelled", us.Appointments.Snapshot()))
}

// RefreshSlots godoc
// @Summary Re-fetch time slots
// @Description Reloads the session's slots from the data service
// @Tags Appointments
// @Produce json
// @Success 200 {object} response.Envelope{data=dto.MutationResponse}
// @Failure 502 {object} response.Envelope
// @Router /api/v1/slots/refresh [post]
func (h *AppointmentHandler) RefreshSlots(c *gin.Context) {
	us, ok := sessionFromContext(c)
	if !ok {
		return
	}
	if err := us.Appointments.FetchSlots(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mutationResponse("refreshed", us.Appointments.Snapshot()))
}
