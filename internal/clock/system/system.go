// Package system provides the wall-clock implementation of awards.Clock.
package system

import "time"

// Clock reports the real current time in UTC. The pipeline captures one
// timestamp from it at run start and evaluates every liveness comparison
// against that instant.
type Clock struct{}

// New creates a new Clock.
func New() *Clock {
	return &Clock{}
}

// Now returns the current UTC time.
func (Clock) Now() time.Time {
	return time.Now().UTC()
}
