package meeting

import (
	"fmt"
	"time"
)

// Schedule describes the weekly sign-up rhythm. The submission window is
// closed from the deadline (inclusive) until the reopen time (exclusive).
type Schedule struct {
	DeadlineWeekday time.Weekday
	DeadlineHour    int
	ReopenWeekday   time.Weekday
	ReopenHour      int
	MeetingWeekday  time.Weekday
	Quorum          int
}

// DefaultSchedule: deadline Thursday 15:00, reopen Friday 21:00, meeting on
// Friday, quorum of four.
func DefaultSchedule() Schedule {
	return Schedule{
		DeadlineWeekday: time.Thursday,
		DeadlineHour:    15,
		ReopenWeekday:   time.Friday,
		ReopenHour:      21,
		MeetingWeekday:  time.Friday,
		Quorum:          4,
	}
}

func (s Schedule) Validate() error {
	if s.DeadlineHour < 0 || s.DeadlineHour > 23 {
		return fmt.Errorf("deadline hour %d out of range", s.DeadlineHour)
	}
	if s.ReopenHour < 0 || s.ReopenHour > 23 {
		return fmt.Errorf("reopen hour %d out of range", s.ReopenHour)
	}
	if s.Quorum < 1 {
		return fmt.Errorf("quorum must be at least 1, got %d", s.Quorum)
	}
	return nil
}

const secondsPerWeek = 7 * 24 * 60 * 60

func weekOffset(wd time.Weekday, hour, minute, second int) int {
	return ((int(wd)*24+hour)*60+minute)*60 + second
}

// IsOpen reports whether submissions are accepted at now. now is interpreted
// in its own location, so callers pass times from the club's Clock.
func (s Schedule) IsOpen(now time.Time) bool {
	pos := weekOffset(now.Weekday(), now.Hour(), now.Minute(), now.Second())
	closeAt := weekOffset(s.DeadlineWeekday, s.DeadlineHour, 0, 0)
	openAt := weekOffset(s.ReopenWeekday, s.ReopenHour, 0, 0)

	switch {
	case closeAt == openAt:
		return true
	case closeAt < openAt:
		return pos < closeAt || pos >= openAt
	default:
		// closed interval wraps across Saturday/Sunday
		return pos >= openAt && pos < closeAt
	}
}

// NextMeetingDate returns midnight of the coming meeting day. On the meeting
// day itself it moves one week ahead once the reopen hour has passed.
func (s Schedule) NextMeetingDate(now time.Time) time.Time {
	days := (int(s.MeetingWeekday) - int(now.Weekday()) + 7) % 7
	if now.Weekday() == s.MeetingWeekday && now.Hour() >= s.ReopenHour {
		days += 7
	}
	return time.Date(now.Year(), now.Month(), now.Day()+days, 0, 0, 0, 0, now.Location())
}

var germanWeekdays = [...]string{
	time.Sunday:    "Sonntag",
	time.Monday:    "Montag",
	time.Tuesday:   "Dienstag",
	time.Wednesday: "Mittwoch",
	time.Thursday:  "Donnerstag",
	time.Friday:    "Freitag",
	time.Saturday:  "Samstag",
}

// GermanWeekday returns the German name of wd.
func GermanWeekday(wd time.Weekday) string {
	return germanWeekdays[wd]
}

// DeadlineText renders the deadline as shown to participants, e.g.
// "Donnerstag um 15 Uhr".
func (s Schedule) DeadlineText() string {
	return fmt.Sprintf("%s um %d Uhr", GermanWeekday(s.DeadlineWeekday), s.DeadlineHour)
}
