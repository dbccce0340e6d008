package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/noah-isme/appointment-booking/internal/dto"
	"github.com/noah-isme/appointment-booking/internal/models"
	"github.com/noah-isme/appointment-booking/internal/service"
	appErrors "github.com/noah-isme/appointment-booking/pkg/errors"
	"github.com/noah-isme/appointment-booking/pkg/response"
)

// AdminHandler wires the time slot manager actions.
type AdminHandler struct {
	admin    *service.AdminService
	export   *service.ExportService
	validate *validator.Validate
}

// NewAdminHandler creates a new handler.
func NewAdminHandler(admin *service.AdminService, export *service.ExportService, validate *validator.Validate) *AdminHandler {
	if validate == nil {
		validate = validator.New()
	}
	return &AdminHandler{admin: admin, export: export, validate: validate}
}

// Generate godoc
// @Summary Generate a week of slots
// @Description Creates one-hour slots 09:00-17:00 for seven days from the given date
// @Tags Admin
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param payload body dto.GenerateSlotsRequest true "Start date"
// @Success 201 {object} response.Envelope{data=dto.GenerateSlotsResponse}
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /api/v1/admin/slots/generate [post]
func (h *AdminHandler) Generate(c *gin.Context) {
	us, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req dto.GenerateSlotsRequest
	if !bindAndValidate(c, h.validate, &req, "invalid generate payload") {
		return
	}
	date, err := h.admin.ParseDate(req.Date)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.admin.GenerateWeek(c.Request.Context(), us, date)
	if err != nil {
		response.Error(c, err)
		return
	}

	res := dto.GenerateSlotsResponse{
		Created: result.Created,
		From:    result.From.Format("2006-01-02"),
		To:      result.To.Format("2006-01-02"),
		Days:    h.admin.Week(date).Days,
	}
	if result.RefreshErr != nil {
		res.Error = us.Appointments.Snapshot().Error
	}
	response.Created(c, res)
}

// DeleteSlot godoc
// @Summary Delete a time slot
// @Tags Admin
// @Produce json
// @Param id path string true "Slot ID"
// @Success 200 {object} response.Envelope{data=dto.MutationResponse}
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /api/v1/admin/slots/{id} [delete]
func (h *AdminHandler) DeleteSlot(c *gin.Context) {
	us, ok := sessionFromContext(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid slot id"))
		return
	}

	if err := h.admin.DeleteSlot(c.Request.Context(), us, id); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mutationResponse("deleted", us.Appointments.Snapshot()))
}

// Export godoc
// @Summary Export time slots
// @Description Downloads the session's slots as CSV or PDF
// @Tags Admin
// @Produce text/csv,application/pdf
// @Param format query string false "csv or pdf" default(csv)
// @Param filter query string false "all, available or booked"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /api/v1/admin/slots/export [get]
func (h *AdminHandler) Export(c *gin.Context) {
	us, ok := sessionFromContext(c)
	if !ok {
		return
	}
	filter, err := models.ParseSlotFilter(c.Query("filter"))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "filter must be all, available or booked"))
		return
	}

	result, err := h.export.ExportSlots(h.admin.ListSlots(us, filter), filter, c.DefaultQuery("format", service.ExportFormatCSV))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, result.Filename, result.ContentType, result.Body)
}
