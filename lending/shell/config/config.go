// Package config loads the lendingd configuration with the precedence
// command-line flag > environment variable > .env file > default, and validates it.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Configuration keys. Command-line flags are mapped onto the same keys.
const (
	KeyEnv                = "ENV"
	KeyLogLevel           = "LOG_LEVEL"
	KeyLogFormat          = "LOG_FORMAT"
	KeyServerPort         = "SERVER_PORT"
	KeyServerReadTimeout  = "SERVER_READ_TIMEOUT"
	KeyServerWriteTimeout = "SERVER_WRITE_TIMEOUT"
	KeyServerIdleTimeout  = "SERVER_IDLE_TIMEOUT"
	KeyCORSOrigins        = "CORS_ALLOWED_ORIGINS"
	KeyRateLimitRPS       = "RATE_LIMIT_RPS"
	KeyRateLimitBurst     = "RATE_LIMIT_BURST"
	KeyJournalDriver      = "JOURNAL_DRIVER"
	KeyJournalDSN         = "JOURNAL_DSN"
	KeyJournalTable       = "JOURNAL_TABLE"
	KeyJournalBuffer      = "JOURNAL_BUFFER"
	KeyActiveReaders      = "ACTIVE_READERS"
	KeyMembersDBPath      = "MEMBERS_DB_PATH"
	KeyAMQPURL            = "AMQP_URL"
	KeyAMQPExchange       = "AMQP_EXCHANGE"
	KeyFeeSchedule        = "FEE_SCHEDULE"
)

const (
	EnvProduction = "production"

	JournalDriverMemory = "memory"
	JournalDriverPGX    = "pgx"
	JournalDriverSQL    = "sql"
	JournalDriverSQLX   = "sqlx"

	FeeScheduleFlat   = "flat"
	FeeScheduleTiered = "tiered"
)

var (
	ErrReadingEnvFileFailed = errors.New("reading .env file failed")
	ErrInvalidValue         = errors.New("invalid config value")
	ErrValidationFailed     = errors.New("config validation failed")
)

// Config holds the application configuration.
type Config struct {
	App           AppConfig
	Logger        LoggerConfig
	Server        ServerConfig
	Journal       JournalConfig
	Members       MembersConfig
	Notifications NotificationsConfig
	Fees          FeesConfig
}

type AppConfig struct {
	Environment string `validate:"oneof=development staging production"`
}

type LoggerConfig struct {
	Level string `validate:"oneof=debug info warn error"`
	// Format is json or text; empty selects json in production and text otherwise.
	Format string `validate:"omitempty,oneof=json text"`
}

// ServerConfig configures the HTTP surface. A RateLimitRPS of 0 disables rate limiting.
type ServerConfig struct {
	Port           string        `validate:"required,numeric"`
	ReadTimeout    time.Duration `validate:"gt=0"`
	WriteTimeout   time.Duration `validate:"gt=0"`
	IdleTimeout    time.Duration `validate:"gt=0"`
	CORSOrigins    []string      `validate:"dive,required"`
	RateLimitRPS   float64       `validate:"gte=0"`
	RateLimitBurst int           `validate:"gte=0"`
}

// JournalConfig selects the event store engine of the lending journal.
type JournalConfig struct {
	Driver     string `validate:"oneof=memory pgx sql sqlx"`
	DSN        string `validate:"required_unless=Driver memory"`
	Table      string `validate:"required"`
	BufferSize int    `validate:"gt=0"`
}

// MembersConfig configures the activity checker: a SQLite members database when DBPath is set,
// the static ActiveReaders list otherwise.
type MembersConfig struct {
	ActiveReaders []string
	DBPath        string
}

// NotificationsConfig enables the AMQP notifier when AMQPURL is set, notifications are logged otherwise.
type NotificationsConfig struct {
	AMQPURL  string `validate:"omitempty,url"`
	Exchange string `validate:"required_with=AMQPURL"`
}

type FeesConfig struct {
	Schedule string `validate:"oneof=flat tiered"`
}

// Overrides holds values given on the command line, keyed by configuration key.
type Overrides map[string]string

type sources struct {
	overrides Overrides
	dotenv    map[string]string
}

// Load builds the Config from overrides, the environment, the .env file at envFile (a missing file
// is ignored) and defaults, then validates it.
func Load(overrides Overrides, envFile string) (*Config, error) {
	dotenv := map[string]string{}

	if envFile != "" {
		values, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			dotenv = values
		case !errors.Is(err, os.ErrNotExist):
			return nil, errors.Join(ErrReadingEnvFileFailed, err)
		}
	}

	src := sources{overrides: overrides, dotenv: dotenv}

	cfg := &Config{
		App: AppConfig{
			Environment: src.value(KeyEnv, "development"),
		},
		Logger: LoggerConfig{
			Level:  strings.ToLower(src.value(KeyLogLevel, "info")),
			Format: strings.ToLower(src.value(KeyLogFormat, "")),
		},
		Server: ServerConfig{
			Port:        src.value(KeyServerPort, "8080"),
			CORSOrigins: splitList(src.value(KeyCORSOrigins, "")),
		},
		Journal: JournalConfig{
			Driver: src.value(KeyJournalDriver, JournalDriverMemory),
			DSN:    src.value(KeyJournalDSN, ""),
			Table:  src.value(KeyJournalTable, "lending_journal"),
		},
		Members: MembersConfig{
			ActiveReaders: splitList(src.value(KeyActiveReaders, "")),
			DBPath:        src.value(KeyMembersDBPath, ""),
		},
		Notifications: NotificationsConfig{
			AMQPURL:  src.value(KeyAMQPURL, ""),
			Exchange: src.value(KeyAMQPExchange, "lending.notifications"),
		},
		Fees: FeesConfig{
			Schedule: src.value(KeyFeeSchedule, FeeScheduleFlat),
		},
	}

	var err error

	if cfg.Server.ReadTimeout, err = src.duration(KeyServerReadTimeout, "15s"); err != nil {
		return nil, err
	}

	if cfg.Server.WriteTimeout, err = src.duration(KeyServerWriteTimeout, "15s"); err != nil {
		return nil, err
	}

	if cfg.Server.IdleTimeout, err = src.duration(KeyServerIdleTimeout, "60s"); err != nil {
		return nil, err
	}

	if cfg.Server.RateLimitRPS, err = src.float(KeyRateLimitRPS, 0); err != nil {
		return nil, err
	}

	if cfg.Server.RateLimitBurst, err = src.integer(KeyRateLimitBurst, 20); err != nil {
		return nil, err
	}

	if cfg.Journal.BufferSize, err = src.integer(KeyJournalBuffer, 1024); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the struct tag constraints of all sections.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			fields := make([]string, 0, len(validationErrs))
			for _, fieldErr := range validationErrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fieldErr.Namespace(), fieldErr.Tag()))
			}

			return fmt.Errorf("%w: %s", ErrValidationFailed, strings.Join(fields, ", "))
		}

		return errors.Join(ErrValidationFailed, err)
	}

	return nil
}

// IsProduction reports whether the app runs in the production environment.
func (c *Config) IsProduction() bool {
	return c.App.Environment == EnvProduction
}

func (s sources) value(key, defaultValue string) string {
	if v := s.overrides[key]; v != "" {
		return v
	}

	if v := os.Getenv(key); v != "" {
		return v
	}

	if v := s.dotenv[key]; v != "" {
		return v
	}

	return defaultValue
}

func (s sources) duration(key, defaultValue string) (time.Duration, error) {
	raw := s.value(key, defaultValue)

	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q: %w", ErrInvalidValue, key, raw, err)
	}

	return d, nil
}

func (s sources) integer(key string, defaultValue int) (int, error) {
	raw := s.value(key, "")
	if raw == "" {
		return defaultValue, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q: %w", ErrInvalidValue, key, raw, err)
	}

	return n, nil
}

func (s sources) float(key string, defaultValue float64) (float64, error) {
	raw := s.value(key, "")
	if raw == "" {
		return defaultValue, nil
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q: %w", ErrInvalidValue, key, raw, err)
	}

	return f, nil
}

func splitList(raw string) []string {
	items := make([]string, 0)

	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}

	return items
}
