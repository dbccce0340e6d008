package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/appointment-booking/internal/models"
	appErrors "github.com/noah-isme/appointment-booking/pkg/errors"
	"github.com/noah-isme/appointment-booking/pkg/export"
)

// Export formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

type renderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
	Extension() string
}

// ExportResult is a rendered file ready for download.
type ExportResult struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders the admin slot schedule.
type ExportService struct {
	renderers map[string]renderer
	location  *time.Location
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService constructs an ExportService. Slot times are printed in loc.
func NewExportService(loc *time.Location, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	return &ExportService{
		renderers: map[string]renderer{
			ExportFormatCSV: export.NewCSVExporter(),
			ExportFormatPDF: export.NewPDFExporter(),
		},
		location:  loc,
		logger:    logger,
		now:       time.Now,
	}
}

// ExportSlots renders slots in the requested format.
func (s *ExportService) ExportSlots(slots []models.TimeSlot, filter models.SlotFilter, format string) (*ExportResult, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}
	r, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	payload, err := r.Render(s.slotDataset(slots, filter))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	filename := fmt.Sprintf("time_slots_%s_%s.%s", filter, s.now().In(s.location).Format("20060102_150405"), r.Extension())
	s.logger.Debug("rendered slot export", zap.String("format", format), zap.Int("rows", len(slots)), zap.Int("bytes", len(payload)))
	return &ExportResult{Filename: filename, ContentType: r.ContentType(), Body: payload}, nil
}

func (s *ExportService) slotDataset(slots []models.TimeSlot, filter models.SlotFilter) export.Dataset {
	rows := make([]map[string]string, 0, len(slots))
	for i, slot := range slots {
		start := slot.StartTime.In(s.location)
		status := "Available"
		if !slot.IsAvailable {
			status = "Booked"
		}
		rows = append(rows, map[string]string{
			"No":      strconv.Itoa(i + 1),
			"Date":    start.Format(dateLayout),
			"Day":     start.Weekday().String(),
			"Start":   start.Format("15:04"),
			"End":     slot.EndTime.In(s.location).Format("15:04"),
			"Status":  status,
			"Slot ID": slot.ID,
		})
	}
	return export.Dataset{
		Title:    "Time Slots",
		Subtitle: fmt.Sprintf("Filter: %s, generated %s", filter, s.now().In(s.location).Format("2006-01-02 15:04 MST")),
		Headers:  []string{"No", "Date", "Day", "Start", "End", "Status", "Slot ID"},
		Rows:     rows,
	}
}
