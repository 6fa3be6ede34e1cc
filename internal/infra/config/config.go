package config

import (
	"fmt"
	"os"
	"strings" // For LogLevel normalization

	"club_meeting_bot/internal/domain/meeting"
	"club_meeting_bot/internal/domain/roster"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	TelegramToken   string `yaml:"-" env:"TELEGRAM_TOKEN"`
	AdminTelegramID int64  `yaml:"-" env:"ADMIN_TELEGRAM_ID"`
	DatabaseDriver  string `yaml:"-" env:"DATABASE_DRIVER"` // sqlite or postgres
	DatabaseURL     string `yaml:"-" env:"DATABASE_URL"`
	ArchivePath     string `yaml:"archive_path" env:"ARCHIVE_PATH"`
	LogLevel        string `yaml:"-" env:"LOG_LEVEL"`
	Environment     string `yaml:"-" env:"ENVIRONMENT"`
	TimeZone        string `yaml:"timezone" env:"TIMEZONE"`
	MatchMode       string `yaml:"match_mode" env:"MATCH_MODE"`
	ScheduleFile    string `yaml:"-" env:"SCHEDULE_FILE"`

	Schedule ScheduleConfig `yaml:"schedule"`
}

// ScheduleConfig is the weekly rhythm: submission window, meeting day and
// the roster reset.
type ScheduleConfig struct {
	DeadlineWeekday Weekday `yaml:"deadline_weekday" env:"DEADLINE_WEEKDAY"`
	DeadlineHour    int     `yaml:"deadline_hour" env:"DEADLINE_HOUR"`
	ReopenWeekday   Weekday `yaml:"reopen_weekday" env:"REOPEN_WEEKDAY"`
	ReopenHour      int     `yaml:"reopen_hour" env:"REOPEN_HOUR"`
	MeetingWeekday  Weekday `yaml:"meeting_weekday" env:"MEETING_WEEKDAY"`
	Quorum          int     `yaml:"quorum" env:"QUORUM"`
	ResetWeekday    Weekday `yaml:"reset_weekday" env:"RESET_WEEKDAY"`
	ResetHour       int     `yaml:"reset_hour" env:"RESET_HOUR"`
	ResetMinute     int     `yaml:"reset_minute" env:"RESET_MINUTE"`
}

// Default returns the configuration used when nothing is set.
func Default() *AppConfig {
	s := meeting.DefaultSchedule()
	return &AppConfig{
		DatabaseDriver: "sqlite",
		DatabaseURL:    "data/meeting.db",
		ArchivePath:    "data/archive.log",
		LogLevel:       "info",
		Environment:    "development",
		TimeZone:       "Europe/Berlin",
		MatchMode:      string(roster.MatchConjunctive),
		Schedule: ScheduleConfig{
			DeadlineWeekday: Weekday(s.DeadlineWeekday),
			DeadlineHour:    s.DeadlineHour,
			ReopenWeekday:   Weekday(s.ReopenWeekday),
			ReopenHour:      s.ReopenHour,
			MeetingWeekday:  Weekday(s.MeetingWeekday),
			Quorum:          s.Quorum,
			ResetWeekday:    Weekday(s.MeetingWeekday),
			ResetHour:       22,
			ResetMinute:     50,
		},
	}
}

// Load reads configuration from defaults, an optional YAML schedule file and
// environment variables (including a .env file if present), in that order.
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := Default()

	if path := os.Getenv("SCHEDULE_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.Environment = strings.ToLower(cfg.Environment)
	cfg.DatabaseDriver = strings.ToLower(cfg.DatabaseDriver)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read schedule file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse schedule file %s: %w", path, err)
	}
	return nil
}

// Validate checks value ranges and enumerations.
func (c *AppConfig) Validate() error {
	switch c.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is not set")
	}
	if _, err := roster.ParseMatchMode(c.MatchMode); err != nil {
		return fmt.Errorf("invalid MATCH_MODE: %w", err)
	}
	if _, err := meeting.NewZoneClock(c.TimeZone); err != nil {
		return fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	if err := c.MeetingSchedule().Validate(); err != nil {
		return fmt.Errorf("invalid schedule: %w", err)
	}
	if c.Schedule.ResetHour < 0 || c.Schedule.ResetHour > 23 {
		return fmt.Errorf("invalid RESET_HOUR %d", c.Schedule.ResetHour)
	}
	if c.Schedule.ResetMinute < 0 || c.Schedule.ResetMinute > 59 {
		return fmt.Errorf("invalid RESET_MINUTE %d", c.Schedule.ResetMinute)
	}
	return nil
}

// RequireTelegram reports an error when the bot cannot be started.
func (c *AppConfig) RequireTelegram() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is not set")
	}
	return nil
}

func (c *AppConfig) MeetingSchedule() meeting.Schedule {
	return meeting.Schedule{
		DeadlineWeekday: c.Schedule.DeadlineWeekday.Std(),
		DeadlineHour:    c.Schedule.DeadlineHour,
		ReopenWeekday:   c.Schedule.ReopenWeekday.Std(),
		ReopenHour:      c.Schedule.ReopenHour,
		MeetingWeekday:  c.Schedule.MeetingWeekday.Std(),
		Quorum:          c.Schedule.Quorum,
	}
}

// Match returns the configured matching mode. Load has validated it.
func (c *AppConfig) Match() roster.MatchMode {
	m, _ := roster.ParseMatchMode(c.MatchMode)
	return m
}
