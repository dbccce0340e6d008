package config

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, BackendREST, cfg.Data.Backend)
	assert.Equal(t, 10*time.Second, cfg.Data.Timeout)
	assert.Equal(t, 9, cfg.Slots.DayStartHour)
	assert.Equal(t, 17, cfg.Slots.DayEndHour)
	assert.Equal(t, 7, cfg.Slots.Days)
	assert.Equal(t, "booking_session", cfg.Session.CookieName)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DATA_BACKEND", "POSTGRES")
	t.Setenv("SLOTS_TIMEZONE", "Europe/Berlin")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("SESSION_TTL", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendPostgres, cfg.Data.Backend)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Events.Brokers)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "Europe/Berlin", cfg.Slots.Location().String())
}

func TestLoadRejectsInvalidSlotHours(t *testing.T) {
	t.Setenv("SLOTS_DAY_START_HOUR", "17")
	t.Setenv("SLOTS_DAY_END_HOUR", "9")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("DATA_BACKEND", "firebase")

	_, err := Load()
	require.Error(t, err)
}

func TestSlotsLocationFallsBackToLocal(t *testing.T) {
	assert.Equal(t, time.Local, SlotsConfig{TimeZone: "Mars/Olympus"}.Location())
	assert.Equal(t, time.Local, SlotsConfig{}.Location())
}
