// Package meeting holds the weekly calendar rules of the club meeting: when
// sign-ups are accepted, when the meeting takes place and whether it is held.
package meeting

import (
	"fmt"
	"time"
	_ "time/tzdata" // zone database for hosts without one
)

// Clock supplies the current time in the club's civil time zone.
type Clock interface {
	Now() time.Time
}

// ZoneClock is the wall clock pinned to one location.
type ZoneClock struct {
	loc *time.Location
}

func NewZoneClock(zone string) (*ZoneClock, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("failed to load time zone %q: %w", zone, err)
	}
	return &ZoneClock{loc: loc}, nil
}

func (c *ZoneClock) Now() time.Time {
	return time.Now().In(c.loc)
}

func (c *ZoneClock) Location() *time.Location {
	return c.loc
}
