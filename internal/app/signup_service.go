// internal/app/signup_service.go
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"club_meeting_bot/internal/domain/meeting"
	"club_meeting_bot/internal/domain/roster"
	idb "club_meeting_bot/internal/infra/database" // For ErrCycleNotFound

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Custom application-level errors
var ErrWindowClosed = fmt.Errorf("submission window is closed")
var ErrStoreUnavailable = fmt.Errorf("roster store unavailable")
var ErrCycleChanged = fmt.Errorf("roster was reset since the confirmation was requested")

// ArchiveDateLayout is the date format of archive lines.
const ArchiveDateLayout = "2006-01-02"

// ArchiveSink receives one line per archived roster entry.
type ArchiveSink interface {
	AppendLine(line string) error
}

// Result is the non-error outcome of a submission.
type Result string

const (
	ResultAdded          Result = "added"
	ResultDuplicateFound Result = "duplicate_found"
)

// Outcome carries the normalized entry. For ResultDuplicateFound the entry is
// the key a confirmed ConfirmAndDelete call must be made with, and CycleID
// names the cycle it was found in ("" before the first cycle is recorded).
type Outcome struct {
	Result  Result
	Entry   roster.Entry
	CycleID string
}

// CycleService is the part of the sign-up service the scheduler drives.
type CycleService interface {
	// EnsureCycle returns when the current cycle started, recording now as the
	// start if no cycle exists yet.
	EnsureCycle(ctx context.Context, now time.Time) (time.Time, error)
	// Rollover archives and clears the roster, starting a new cycle at now.
	Rollover(ctx context.Context, now time.Time) (int, error)
}

// SignupService owns every roster mutation. mu serializes each
// check-and-mutate sequence and the rollover against each other.
type SignupService struct {
	mu       sync.Mutex
	repo     roster.Repository
	archive  ArchiveSink
	clock    meeting.Clock
	schedule meeting.Schedule
	mode     roster.MatchMode
	logger   *logrus.Entry
}

func NewSignupService(
	repo roster.Repository,
	archive ArchiveSink,
	clock meeting.Clock,
	schedule meeting.Schedule,
	mode roster.MatchMode,
	logger *logrus.Entry,
) *SignupService {
	return &SignupService{
		repo:     repo,
		archive:  archive,
		clock:    clock,
		schedule: schedule,
		mode:     mode,
		logger:   logger,
	}
}

func storeError(err error) error {
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}

// Submit toggles attendance: a new participant is added, a known one yields
// ResultDuplicateFound and must be confirmed via ConfirmAndDelete.
// Validation failures are *roster.ValidationError; a closed window is ErrWindowClosed.
func (s *SignupService) Submit(ctx context.Context, name, callSign string) (Outcome, error) {
	entry, err := roster.NewEntry(name, callSign)
	if err != nil {
		s.logger.WithError(err).Debug("Submission rejected")
		return Outcome{}, err
	}
	if !s.schedule.IsOpen(s.clock.Now()) {
		return Outcome{}, ErrWindowClosed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m := roster.Matcher{Mode: s.mode, Key: entry}
	exists, err := s.repo.Exists(ctx, m)
	if err != nil {
		s.logger.WithError(err).Error("Failed to check roster for existing entry")
		return Outcome{}, storeError(err)
	}
	if exists {
		cycleID, err := s.currentCycleID(ctx)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Result: ResultDuplicateFound, Entry: entry, CycleID: cycleID}, nil
	}

	if err := s.repo.Insert(ctx, &entry); err != nil {
		s.logger.WithError(err).Error("Failed to insert roster entry")
		return Outcome{}, storeError(err)
	}
	s.logger.WithFields(logrus.Fields{
		"call_sign": entry.CallSign,
		"name":      entry.Name,
	}).Info("Entry added")
	return Outcome{Result: ResultAdded, Entry: entry}, nil
}

// ConfirmAndDelete removes every entry matching the pair under the configured
// mode and returns how many were removed. Changes are refused while the
// window is closed.
func (s *SignupService) ConfirmAndDelete(ctx context.Context, name, callSign string) (int64, error) {
	return s.confirmAndDelete(ctx, nil, name, callSign)
}

// ConfirmAndDeleteInCycle is ConfirmAndDelete for a confirmation issued in
// cycle cycleID. It returns ErrCycleChanged once the roster has been reset
// since, so a late confirmation cannot remove a sign-up of the new cycle.
func (s *SignupService) ConfirmAndDeleteInCycle(ctx context.Context, cycleID, name, callSign string) (int64, error) {
	return s.confirmAndDelete(ctx, &cycleID, name, callSign)
}

func (s *SignupService) confirmAndDelete(ctx context.Context, cycleID *string, name, callSign string) (int64, error) {
	entry, err := roster.NewEntry(name, callSign)
	if err != nil {
		return 0, err
	}
	if !s.schedule.IsOpen(s.clock.Now()) {
		return 0, ErrWindowClosed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if cycleID != nil {
		current, err := s.currentCycleID(ctx)
		if err != nil {
			return 0, err
		}
		if current != *cycleID {
			return 0, ErrCycleChanged
		}
	}

	n, err := s.repo.DeleteWhere(ctx, roster.Matcher{Mode: s.mode, Key: entry})
	if err != nil {
		s.logger.WithError(err).Error("Failed to delete roster entry")
		return 0, storeError(err)
	}
	s.logger.WithFields(logrus.Fields{
		"call_sign": entry.CallSign,
		"name":      entry.Name,
		"deleted":   n,
	}).Info("Entry deleted")
	return n, nil
}

// CurrentStatus reports the roster size, quorum and window state.
func (s *SignupService) CurrentStatus(ctx context.Context) (meeting.Status, error) {
	entries, err := s.repo.ListAll(ctx)
	if err != nil {
		return meeting.Status{}, storeError(err)
	}
	now := s.clock.Now()
	return s.schedule.Report(len(entries), s.schedule.IsOpen(now), s.schedule.NextMeetingDate(now)), nil
}

// Participants lists the current roster in sign-up order.
func (s *SignupService) Participants(ctx context.Context) ([]roster.Entry, error) {
	entries, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	return entries, nil
}

// currentCycleID is the id of the running cycle, "" if none is recorded.
func (s *SignupService) currentCycleID(ctx context.Context) (string, error) {
	cur, err := s.repo.CurrentCycle(ctx)
	if errors.Is(err, idb.ErrCycleNotFound) {
		return "", nil
	}
	if err != nil {
		return "", storeError(err)
	}
	return cur.ID, nil
}

func (s *SignupService) EnsureCycle(ctx context.Context, now time.Time) (time.Time, error) {
	cur, err := s.repo.CurrentCycle(ctx)
	if err == nil {
		return cur.StartedAt, nil
	}
	if !errors.Is(err, idb.ErrCycleNotFound) {
		return time.Time{}, storeError(err)
	}

	c := &roster.Cycle{ID: uuid.NewString(), StartedAt: now}
	if err := s.repo.StartCycle(ctx, c); err != nil {
		return time.Time{}, storeError(err)
	}
	s.logger.WithField("cycle_id", c.ID).Info("No cycle recorded yet, starting the first one")
	return now, nil
}

// ArchiveLine renders one archive record: "date, call_sign, name".
func ArchiveLine(date time.Time, e roster.Entry) string {
	return fmt.Sprintf("%s, %s, %s", date.Format(ArchiveDateLayout), e.CallSign, e.Name)
}

// Rollover archives every entry dated with now, then clears the roster and
// starts a new cycle in one transaction. Archive failures are logged and do
// not stop the clear. It returns the number of entries cleared.
func (s *SignupService) Rollover(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.repo.ListAll(ctx)
	if err != nil {
		return 0, storeError(err)
	}

	archived := 0
	for _, e := range entries {
		if err := s.archive.AppendLine(ArchiveLine(now, e)); err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"call_sign": e.CallSign,
				"name":      e.Name,
			}).Warn("Failed to archive roster entry, continuing with reset")
			continue
		}
		archived++
	}

	c := &roster.Cycle{ID: uuid.NewString(), StartedAt: now, ArchivedEntries: archived}
	if err := s.repo.ClearAndStartCycle(ctx, c); err != nil {
		return 0, storeError(err)
	}

	s.logger.WithFields(logrus.Fields{
		"cycle_id": c.ID,
		"entries":  len(entries),
		"archived": archived,
	}).Info("Roster reset")
	return len(entries), nil
}
