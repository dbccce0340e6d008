package service

import (
	"time"

	"github.com/noah-isme/appointment-booking/internal/models"
)

// SlotGeneratorConfig sets the daily window and span of generated slots.
type SlotGeneratorConfig struct {
	Location     *time.Location
	DayStartHour int
	DayEndHour   int
	Days         int
}

// SlotGenerator builds one-hour slots for consecutive days.
type SlotGenerator struct {
	cfg SlotGeneratorConfig
}

// NewSlotGenerator applies the 09:00-17:00, seven day defaults to unset fields.
func NewSlotGenerator(cfg SlotGeneratorConfig) *SlotGenerator {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.DayEndHour <= cfg.DayStartHour {
		cfg.DayStartHour, cfg.DayEndHour = 9, 17
	}
	if cfg.Days <= 0 {
		cfg.Days = 7
	}
	return &SlotGenerator{cfg: cfg}
}

// Location is the zone slots are generated in.
func (g *SlotGenerator) Location() *time.Location {
	return g.cfg.Location
}

// GenerateWeek returns available one-hour slots for each day starting at date's
// calendar day in the generator's zone. Existing slots are not consulted.
func (g *SlotGenerator) GenerateWeek(date time.Time) []models.NewTimeSlot {
	loc := g.cfg.Location
	year, month, day := date.In(loc).Date()
	perDay := g.cfg.DayEndHour - g.cfg.DayStartHour

	slots := make([]models.NewTimeSlot, 0, g.cfg.Days*perDay)
	for i := 0; i < g.cfg.Days; i++ {
		for hour := g.cfg.DayStartHour; hour < g.cfg.DayEndHour; hour++ {
			slots = append(slots, models.NewTimeSlot{
				StartTime:   time.Date(year, month, day+i, hour, 0, 0, 0, loc),
				EndTime:     time.Date(year, month, day+i, hour+1, 0, 0, 0, loc),
				IsAvailable: true,
			})
		}
	}
	return slots
}
