package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/appointment-booking/internal/service"
	appErrors "github.com/noah-isme/appointment-booking/pkg/errors"
	"github.com/noah-isme/appointment-booking/pkg/response"
)

// ViewHandler serves the page view models.
type ViewHandler struct {
	views *service.ViewService
}

// NewViewHandler creates a new handler.
func NewViewHandler(views *service.ViewService) *ViewHandler {
	return &ViewHandler{views: views}
}

// Dashboard godoc
// @Summary Dashboard view
// @Description Greeting and booking statistics for the signed-in user
// @Tags Views
// @Produce json
// @Success 200 {object} response.Envelope{data=dto.DashboardView}
// @Failure 401 {object} response.Envelope
// @Router /dashboard [get]
func (h *ViewHandler) Dashboard(c *gin.Context) {
	us, ok := sessionFromContext(c)
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, h.views.Dashboard(c.Request.Context(), us))
}

// Calendar godoc
// @Summary Calendar view
// @Description Time slots grouped by day with a Monday-start week strip
// @Tags Views
// @Produce json
// @Param date query string false "Selected day (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope{data=dto.CalendarView}
// @Failure 401 {object} response.Envelope
// @Router /calendar [get]
func (h *ViewHandler) Calendar(c *gin.Context) {
	us, ok := sessionFromContext(c)
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, h.views.Calendar(c.Request.Context(), us, c.Query("date")))
}

// Appointments godoc
// @Summary Appointment list view
// @Description The user's appointments, newest first, with their booked slot
// @Tags Views
// @Produce json
// @Success 200 {object} response.Envelope{data=dto.AppointmentListView}
// @Failure 401 {object} response.Envelope
// @Router /appointments [get]
func (h *ViewHandler) Appointments(c *gin.Context) {
	us, ok := sessionFromContext(c)
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, h.views.Appointments(c.Request.Context(), us))
}

// Admin godoc
// @Summary Admin panel view
// @Description Time slot manager with availability filter and week navigation
// @Tags Admin
// @Produce json
// @Param date query string false "Selected day (YYYY-MM-DD)"
// @Param filter query string false "all, available or booked"
// @Success 200 {object} response.Envelope{data=dto.AdminView}
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin [get]
func (h *ViewHandler) Admin(c *gin.Context) {
	us, ok := sessionFromContext(c)
	if !ok {
		return
	}
	view, err := h.views.Admin(c.Request.Context(), us, c.Query("date"), c.Query("filter"))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "filter must be all, available or booked"))
		return
	}
	response.JSON(c, http.StatusOK, view)
}
