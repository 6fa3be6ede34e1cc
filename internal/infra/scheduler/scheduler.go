package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"club_meeting_bot/internal/app" // For CycleService interface
	"club_meeting_bot/internal/domain/meeting"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

var ErrAlreadyStarted = errors.New("cycle scheduler already started")

// State is the scheduler's position in its wait/reset loop.
type State string

const (
	StateIdle      State = "idle"
	StateWaiting   State = "waiting"
	StateResetting State = "resetting"
	StateStopped   State = "stopped"
)

const (
	// maxWait bounds a single sleep so wall clock jumps are noticed.
	defaultMaxWait = time.Hour
	resetTimeout   = 1 * time.Minute
)

// timerFunc starts a timer; the returned func stops it.
type timerFunc func(d time.Duration) (<-chan time.Time, func() bool)

func realTimer(d time.Duration) (<-chan time.Time, func() bool) {
	t := time.NewTimer(d)
	return t.C, t.Stop
}

// CycleScheduler resets the roster once per weekly boundary. It is a single
// goroutine parked on a timer, woken by the timer or by Stop.
type CycleScheduler struct {
	cycles   app.CycleService
	clock    meeting.Clock
	schedule cron.Schedule
	spec     string
	logger   *logrus.Entry

	newTimer timerFunc
	maxWait  time.Duration

	mu      sync.Mutex
	state   State
	until   time.Time
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// ResetSpec renders the weekly reset instant as a standard cron expression.
func ResetSpec(weekday time.Weekday, hour, minute int, loc *time.Location) string {
	return fmt.Sprintf("CRON_TZ=%s %d %d * * %d", loc.String(), minute, hour, int(weekday))
}

func NewCycleScheduler(
	cycles app.CycleService,
	clock meeting.Clock,
	loc *time.Location,
	resetWeekday time.Weekday,
	resetHour int,
	resetMinute int,
	logger *logrus.Entry,
) (*CycleScheduler, error) {
	spec := ResetSpec(resetWeekday, resetHour, resetMinute, loc)
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid reset schedule %q: %w", spec, err)
	}
	return &CycleScheduler{
		cycles:   cycles,
		clock:    clock,
		schedule: schedule,
		spec:     spec,
		logger:   logger,
		newTimer: realTimer,
		maxWait:  defaultMaxWait,
		state:    StateIdle,
	}, nil
}

// NextReset returns the first reset instant strictly after now.
func (s *CycleScheduler) NextReset(now time.Time) time.Time {
	next := s.schedule.Next(now)
	for !next.After(now) {
		next = next.AddDate(0, 0, 7)
	}
	return next
}

// PrevReset returns the latest reset instant at or before now.
func (s *CycleScheduler) PrevReset(now time.Time) time.Time {
	prev := s.schedule.Next(now.AddDate(0, 0, -7))
	for prev.After(now) {
		prev = prev.AddDate(0, 0, -7)
	}
	return prev
}

// State reports the current state and, while waiting, the reset instant.
func (s *CycleScheduler) State() (State, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.until
}

func (s *CycleScheduler) setState(st State, until time.Time) {
	s.mu.Lock()
	s.state, s.until = st, until
	s.mu.Unlock()
}

// Start launches the scheduler goroutine. Only one run per instance.
func (s *CycleScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return ErrAlreadyStarted
	}
	s.started = true

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	s.logger.WithField("spec", s.spec).Info("Starting cycle scheduler...")
	go s.run(ctx)
	return nil
}

// Stop cancels the wait and joins the goroutine, giving up when ctx ends.
func (s *CycleScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()
	if cancel == nil {
		return nil
	}

	s.logger.Info("Stopping cycle scheduler...")
	cancel()
	select {
	case <-done:
		s.logger.Info("Cycle scheduler gracefully stopped.")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("cycle scheduler did not stop: %w", ctx.Err())
	}
}

func (s *CycleScheduler) run(ctx context.Context) {
	defer close(s.done)
	defer s.setState(StateStopped, time.Time{})

	s.catchUp(ctx)

	var announced, fired time.Time
	for {
		now := s.clock.Now()
		next := s.NextReset(now)
		s.setState(StateWaiting, next)
		if !next.Equal(announced) {
			s.logger.WithField("next_reset", next.Format(time.RFC3339)).Info("Next roster reset scheduled")
			announced = next
		}

		if !s.sleep(ctx, next.Sub(now)) {
			return
		}

		// the timer only says that time passed; the clock decides
		now = s.clock.Now()
		if now.Before(next) {
			continue
		}
		// a clock stepped back after a reset, or a manual rollover, can
		// present a boundary that is already done
		if next.Equal(fired) || s.cycleCovers(ctx, next) {
			s.logger.WithField("boundary", next.Format(time.RFC3339)).Info("Roster already reset for this boundary, skipping")
			continue
		}
		if s.reset(now) {
			fired = next
		}
	}
}

// cycleCovers reports whether the current cycle started at or after boundary.
func (s *CycleScheduler) cycleCovers(ctx context.Context, boundary time.Time) bool {
	started, err := s.cycles.EnsureCycle(ctx, s.clock.Now())
	if err != nil {
		s.logger.WithError(err).Warn("Could not read current cycle before reset")
		return false
	}
	return !started.Before(boundary)
}

func (s *CycleScheduler) sleep(ctx context.Context, d time.Duration) bool {
	if d < 0 {
		d = 0
	}
	if d > s.maxWait {
		d = s.maxWait
	}
	c, stop := s.newTimer(d)
	defer stop()

	select {
	case <-ctx.Done():
		return false
	case <-c:
		return true
	}
}

// catchUp fires one reset when the current cycle began before the latest
// boundary, i.e. the process was down when the reset was due.
func (s *CycleScheduler) catchUp(ctx context.Context) {
	now := s.clock.Now()
	started, err := s.cycles.EnsureCycle(ctx, now)
	if err != nil {
		s.logger.WithError(err).Error("Could not determine current cycle, skipping catch-up check")
		return
	}
	prev := s.PrevReset(now)
	if !started.Before(prev) {
		return
	}
	s.logger.WithFields(logrus.Fields{
		"cycle_started": started.Format(time.RFC3339),
		"missed_reset":  prev.Format(time.RFC3339),
	}).Warn("Roster reset was missed while stopped, resetting now")
	s.reset(now)
}

func (s *CycleScheduler) reset(now time.Time) bool {
	s.setState(StateResetting, time.Time{})

	// a running reset is finished even during shutdown
	ctx, cancel := context.WithTimeout(context.Background(), resetTimeout)
	defer cancel()

	n, err := s.cycles.Rollover(ctx, now)
	if err != nil {
		s.logger.WithError(err).Error("Roster reset failed, retrying at the next scheduled reset")
		return false
	}
	s.logger.WithField("entries", n).Info("Roster reset completed")
	return true
}
