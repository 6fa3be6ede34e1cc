package roster

import "time"

// Cycle is the period between two roster resets. A new row is written every
// time the roster is cleared.
type Cycle struct {
	ID              string
	StartedAt       time.Time
	ArchivedEntries int // entries archived when this cycle began
}
