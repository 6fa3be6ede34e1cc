package roster

import "context"

// Repository persists the roster of the current cycle. It carries no business
// rules; callers serialize check-then-act sequences themselves.
type Repository interface {
	Insert(ctx context.Context, e *Entry) error
	DeleteWhere(ctx context.Context, m Matcher) (int64, error)
	Exists(ctx context.Context, m Matcher) (bool, error)
	ListAll(ctx context.Context) ([]Entry, error)
	// Clear empties the roster and leaves the cycle history alone. Rollover
	// uses ClearAndStartCycle; Clear is the bare store operation for
	// maintenance and tests.
	Clear(ctx context.Context) error

	// ClearAndStartCycle empties the roster and records c in one transaction.
	ClearAndStartCycle(ctx context.Context, c *Cycle) error
	StartCycle(ctx context.Context, c *Cycle) error
	CurrentCycle(ctx context.Context) (*Cycle, error)
}
