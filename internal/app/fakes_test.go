package app

import (
	"context"
	"errors"
	"io"
	"runtime"
	"sync"
	"time"

	"club_meeting_bot/internal/domain/roster"
	idb "club_meeting_bot/internal/infra/database"

	"github.com/sirupsen/logrus"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// memoryRepository is goroutine safe per call only, like a real store
// without serializable transactions.
type memoryRepository struct {
	mu      sync.Mutex
	entries []roster.Entry
	cycles  []roster.Cycle
	nextID  int64
	failAll error
}

func (r *memoryRepository) Insert(_ context.Context, e *roster.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return r.failAll
	}
	r.nextID++
	e.ID = r.nextID
	r.entries = append(r.entries, *e)
	return nil
}

func (r *memoryRepository) DeleteWhere(_ context.Context, m roster.Matcher) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return 0, r.failAll
	}
	kept := r.entries[:0]
	var n int64
	for _, e := range r.entries {
		if m.Matches(e) {
			n++
			continue
		}
		kept = append(kept, e)
	}
	r.entries = kept
	return n, nil
}

func (r *memoryRepository) Exists(_ context.Context, m roster.Matcher) (bool, error) {
	r.mu.Lock()
	if r.failAll != nil {
		r.mu.Unlock()
		return false, r.failAll
	}
	found := false
	for _, e := range r.entries {
		if m.Matches(e) {
			found = true
			break
		}
	}
	r.mu.Unlock()
	// widen the window between check and insert
	runtime.Gosched()
	return found, nil
}

func (r *memoryRepository) ListAll(_ context.Context) ([]roster.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return nil, r.failAll
	}
	out := make([]roster.Entry, len(r.entries))
	copy(out, r.entries)
	return out, nil
}

func (r *memoryRepository) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return r.failAll
	}
	r.entries = nil
	return nil
}

func (r *memoryRepository) ClearAndStartCycle(_ context.Context, c *roster.Cycle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return r.failAll
	}
	r.entries = nil
	r.cycles = append(r.cycles, *c)
	return nil
}

func (r *memoryRepository) StartCycle(_ context.Context, c *roster.Cycle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return r.failAll
	}
	r.cycles = append(r.cycles, *c)
	return nil
}

func (r *memoryRepository) CurrentCycle(_ context.Context) (*roster.Cycle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return nil, r.failAll
	}
	if len(r.cycles) == 0 {
		return nil, idb.ErrCycleNotFound
	}
	c := r.cycles[len(r.cycles)-1]
	return &c, nil
}

type memorySink struct {
	mu    sync.Mutex
	lines []string
	fail  bool
}

func (s *memorySink) AppendLine(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("disk full")
	}
	s.lines = append(s.lines, line)
	return nil
}

func (s *memorySink) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lines...)
}

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}
