package utils

import "time"

// Clock supplies the current time. Injected wherever past/future or
// business-hour decisions are made so tests can pin the instant.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// NewClock returns a wall-clock backed Clock.
func NewClock() Clock { return realClock{} }

// FixedClock always reports the same instant. For tests.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }
