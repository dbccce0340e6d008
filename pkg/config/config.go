package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Data backends understood by the application root.
const (
	BackendREST     = "rest"
	BackendPostgres = "postgres"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Data     DataConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Session  SessionConfig
	CORS     CORSConfig
	Log      LogConfig
	Slots    SlotsConfig
	Login    LoginConfig
	Events   EventsConfig
}

// DataConfig points the application at the remote data service.
type DataConfig struct {
	Backend string
	URL     string
	AnonKey string
	Timeout time.Duration
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig is only used by the postgres backend, which issues its own access tokens.
type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

// SessionConfig controls the browser session cookie and idle eviction.
type SessionConfig struct {
	CookieName    string
	TTL           time.Duration
	Secure        bool
	SweepInterval time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SlotsConfig parameterises admin slot generation.
type SlotsConfig struct {
	TimeZone     string
	DayStartHour int
	DayEndHour   int
	Days         int
}

// Location resolves the configured time zone, falling back to the process local zone.
func (c SlotsConfig) Location() *time.Location {
	if c.TimeZone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.Local
	}
	return loc
}

// LoginConfig throttles sign-in attempts per client IP.
type LoginConfig struct {
	RateLimitRPS   float64
	RateLimitBurst int
}

// EventsConfig toggles domain event publishing to Kafka.
type EventsConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Data = DataConfig{
		Backend: strings.ToLower(v.GetString("DATA_BACKEND")),
		URL:     strings.TrimRight(v.GetString("DATA_URL"), "/"),
		AnonKey: v.GetString("DATA_ANON_KEY"),
		Timeout: parseDuration(v.GetString("DATA_TIMEOUT"), 10*time.Second),
	}

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("ENABLE_REDIS_SESSIONS"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), time.Hour),
	}

	cfg.Session = SessionConfig{
		CookieName:    v.GetString("SESSION_COOKIE"),
		TTL:           parseDuration(v.GetString("SESSION_TTL"), 24*time.Hour),
		Secure:        v.GetBool("SESSION_SECURE"),
		SweepInterval: parseDuration(v.GetString("SESSION_SWEEP_INTERVAL"), 5*time.Minute),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Slots = SlotsConfig{
		TimeZone:     v.GetString("SLOTS_TIMEZONE"),
		DayStartHour: v.GetInt("SLOTS_DAY_START_HOUR"),
		DayEndHour:   v.GetInt("SLOTS_DAY_END_HOUR"),
		Days:         v.GetInt("SLOTS_DAYS"),
	}

	cfg.Login = LoginConfig{
		RateLimitRPS:   v.GetFloat64("LOGIN_RATE_LIMIT_RPS"),
		RateLimitBurst: v.GetInt("LOGIN_RATE_LIMIT_BURST"),
	}

	cfg.Events = EventsConfig{
		Enabled: v.GetBool("ENABLE_EVENTS"),
		Brokers: splitAndTrim(v.GetString("KAFKA_BROKERS")),
		Topic:   v.GetString("KAFKA_TOPIC"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Data.Backend {
	case BackendREST:
		if c.Data.URL == "" {
			return errors.New("DATA_URL is required for the rest backend")
		}
	case BackendPostgres:
	default:
		return errors.New("DATA_BACKEND must be one of rest, postgres")
	}
	if c.Slots.DayEndHour <= c.Slots.DayStartHour {
		return errors.New("SLOTS_DAY_END_HOUR must be after SLOTS_DAY_START_HOUR")
	}
	if c.Slots.Days <= 0 {
		return errors.New("SLOTS_DAYS must be positive")
	}
	if c.Events.Enabled && len(c.Events.Brokers) == 0 {
		return errors.New("KAFKA_BROKERS is required when ENABLE_EVENTS is set")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DATA_BACKEND", BackendREST)
	v.SetDefault("DATA_URL", "http://localhost:54321")
	v.SetDefault("DATA_ANON_KEY", "")
	v.SetDefault("DATA_TIMEOUT", "10s")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "postgres")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("ENABLE_REDIS_SESSIONS", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "1h")

	v.SetDefault("SESSION_COOKIE", "booking_session")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("SESSION_SECURE", false)
	v.SetDefault("SESSION_SWEEP_INTERVAL", "5m")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SLOTS_TIMEZONE", "")
	v.SetDefault("SLOTS_DAY_START_HOUR", 9)
	v.SetDefault("SLOTS_DAY_END_HOUR", 17)
	v.SetDefault("SLOTS_DAYS", 7)

	v.SetDefault("LOGIN_RATE_LIMIT_RPS", 1.0)
	v.SetDefault("LOGIN_RATE_LIMIT_BURST", 5)

	v.SetDefault("ENABLE_EVENTS", false)
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_TOPIC", "booking.events")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
