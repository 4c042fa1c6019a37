// Package system provides the wall-clock implementation of refresh.Clock.
package system

import "time"

// Clock reports real time in UTC.
type Clock struct{}

// New creates a new Clock.
func New() *Clock {
	return &Clock{}
}

// Now returns the current time.
func (Clock) Now() time.Time {
	return time.Now().UTC()
}
