package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"club_meeting_bot/internal/domain/roster"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DatabaseDriver != "sqlite" {
		t.Errorf("driver = %q", cfg.DatabaseDriver)
	}
	if cfg.Match() != roster.MatchConjunctive {
		t.Errorf("match mode = %q", cfg.Match())
	}
	s := cfg.MeetingSchedule()
	if s.DeadlineWeekday != time.Thursday || s.DeadlineHour != 15 {
		t.Errorf("deadline = %s %d", s.DeadlineWeekday, s.DeadlineHour)
	}
	if s.ReopenWeekday != time.Friday || s.ReopenHour != 21 {
		t.Errorf("reopen = %s %d", s.ReopenWeekday, s.ReopenHour)
	}
	if cfg.Schedule.ResetWeekday.Std() != time.Friday || cfg.Schedule.ResetHour != 22 || cfg.Schedule.ResetMinute != 50 {
		t.Errorf("reset = %+v", cfg.Schedule)
	}
	if err := cfg.RequireTelegram(); err == nil {
		t.Error("expected missing token error")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "token")
	t.Setenv("MATCH_MODE", "disjunctive")
	t.Setenv("DEADLINE_WEEKDAY", "mittwoch")
	t.Setenv("RESET_WEEKDAY", "6")
	t.Setenv("QUORUM", "5")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Match() != roster.MatchDisjunctive {
		t.Errorf("match mode = %q", cfg.Match())
	}
	if cfg.Schedule.DeadlineWeekday.Std() != time.Wednesday {
		t.Errorf("deadline weekday = %s", cfg.Schedule.DeadlineWeekday.Std())
	}
	if cfg.Schedule.ResetWeekday.Std() != time.Saturday {
		t.Errorf("reset weekday = %s", cfg.Schedule.ResetWeekday.Std())
	}
	if cfg.MeetingSchedule().Quorum != 5 {
		t.Errorf("quorum = %d", cfg.MeetingSchedule().Quorum)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level = %q", cfg.LogLevel)
	}
	if err := cfg.RequireTelegram(); err != nil {
		t.Errorf("require telegram: %v", err)
	}
}

func TestLoadScheduleFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedule.yaml")
	content := `timezone: Europe/Vienna
schedule:
  deadline_weekday: wednesday
  deadline_hour: 18
  reset_minute: 5
  quorum: 3
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("SCHEDULE_FILE", path)
	t.Setenv("DEADLINE_HOUR", "20")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TimeZone != "Europe/Vienna" {
		t.Errorf("timezone = %q", cfg.TimeZone)
	}
	if cfg.Schedule.DeadlineWeekday.Std() != time.Wednesday {
		t.Errorf("deadline weekday = %s", cfg.Schedule.DeadlineWeekday.Std())
	}
	if cfg.Schedule.DeadlineHour != 20 {
		t.Errorf("env should win over file, deadline hour = %d", cfg.Schedule.DeadlineHour)
	}
	if cfg.Schedule.ResetMinute != 5 || cfg.Schedule.Quorum != 3 {
		t.Errorf("schedule = %+v", cfg.Schedule)
	}
	// untouched values keep their defaults
	if cfg.Schedule.ReopenHour != 21 {
		t.Errorf("reopen hour = %d", cfg.Schedule.ReopenHour)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		key, value, want string
	}{
		{"MATCH_MODE", "sometimes", "MATCH_MODE"},
		{"DATABASE_DRIVER", "mysql", "DATABASE_DRIVER"},
		{"TIMEZONE", "Mars/Olympus", "TIMEZONE"},
		{"RESET_MINUTE", "60", "RESET_MINUTE"},
		{"REOPEN_WEEKDAY", "someday", "parse env"},
		{"QUORUM", "0", "quorum"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestWeekdayUnmarshalText(t *testing.T) {
	for in, want := range map[string]time.Weekday{
		"Friday": time.Friday, "freitag": time.Friday, "0": time.Sunday, " 4 ": time.Thursday,
	} {
		var w Weekday
		if err := w.UnmarshalText([]byte(in)); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", in, err)
		}
		if w.Std() != want {
			t.Errorf("UnmarshalText(%q) = %s, want %s", in, w.Std(), want)
		}
	}
	var w Weekday
	if err := w.UnmarshalText([]byte("7")); err == nil {
		t.Error("expected error for 7")
	}
}
