package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Weekday is a time.Weekday that parses English or German day names and the
// numbers 0-6 (Sunday = 0) from environment variables and YAML.
type Weekday time.Weekday

var weekdayNames = map[string]time.Weekday{
	"sunday": time.Sunday, "sonntag": time.Sunday,
	"monday": time.Monday, "montag": time.Monday,
	"tuesday": time.Tuesday, "dienstag": time.Tuesday,
	"wednesday": time.Wednesday, "mittwoch": time.Wednesday,
	"thursday": time.Thursday, "donnerstag": time.Thursday,
	"friday": time.Friday, "freitag": time.Friday,
	"saturday": time.Saturday, "samstag": time.Saturday,
}

func (w *Weekday) UnmarshalText(text []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	if wd, ok := weekdayNames[s]; ok {
		*w = Weekday(wd)
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 6 {
		return fmt.Errorf("invalid weekday %q", string(text))
	}
	*w = Weekday(n)
	return nil
}

func (w Weekday) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(time.Weekday(w).String())), nil
}

func (w Weekday) Std() time.Weekday { return time.Weekday(w) }
