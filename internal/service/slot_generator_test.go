package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotGeneratorMondayYieldsFullWeek(t *testing.T) {
	loc := time.FixedZone("WIB", 7*3600)
	gen := NewSlotGenerator(SlotGeneratorConfig{Location: loc})

	monday := time.Date(2024, time.June, 3, 0, 0, 0, 0, loc)
	slots := gen.GenerateWeek(monday)
	require.Len(t, slots, 56)

	perDay := map[time.Weekday]int{}
	for _, slot := range slots {
		start := slot.StartTime.In(loc)
		assert.True(t, slot.IsAvailable)
		assert.Equal(t, time.Hour, slot.EndTime.Sub(slot.StartTime))
		assert.GreaterOrEqual(t, start.Hour(), 9)
		assert.LessOrEqual(t, slot.EndTime.In(loc).Hour(), 17)
		assert.Zero(t, start.Minute())
		perDay[start.Weekday()]++
	}
	require.Len(t, perDay, 7)
	for day, count := range perDay {
		assert.Equal(t, 8, count, day.String())
	}

	assert.Equal(t, time.Date(2024, time.June, 3, 9, 0, 0, 0, loc), slots[0].StartTime)
	assert.Equal(t, time.Date(2024, time.June, 9, 17, 0, 0, 0, loc), slots[55].EndTime)
}

func TestSlotGeneratorUsesCalendarDayInZone(t *testing.T) {
	loc := time.FixedZone("WIB", 7*3600)
	gen := NewSlotGenerator(SlotGeneratorConfig{Location: loc})

	// 20:00 UTC on Sunday is already Monday in WIB.
	slots := gen.GenerateWeek(time.Date(2024, time.June, 2, 20, 0, 0, 0, time.UTC))
	require.NotEmpty(t, slots)
	assert.Equal(t, time.Monday, slots[0].StartTime.Weekday())
}

func TestSlotGeneratorCustomWindow(t *testing.T) {
	gen := NewSlotGenerator(SlotGeneratorConfig{Location: time.UTC, DayStartHour: 13, DayEndHour: 15, Days: 2})

	slots := gen.GenerateWeek(time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC))
	require.Len(t, slots, 4)
	assert.Equal(t, 13, slots[0].StartTime.Hour())
	assert.Equal(t, 4, slots[3].StartTime.Day())
}

func TestSlotGeneratorDefaultsInvalidWindow(t *testing.T) {
	gen := NewSlotGenerator(SlotGeneratorConfig{DayStartHour: 18, DayEndHour: 8})

	assert.Equal(t, time.Local, gen.Location())
	assert.Len(t, gen.GenerateWeek(time.Now()), 56)
}
