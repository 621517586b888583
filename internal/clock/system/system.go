// Package system provides the wall clock that stamps fetch-cache entries.
package system

import "time"

// Clock reads the current time in UTC. It satisfies fetcher.Clock, which the
// page cache uses to judge TTL expiry; tests substitute a fake.
type Clock struct{}

// New returns the real clock.
func New() *Clock {
	return &Clock{}
}

// Now returns the current UTC time.
func (Clock) Now() time.Time {
	return time.Now().UTC()
}
