package utils

import "time"

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always reports the same instant.
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }

// Today formats the clock's current UTC day as YYYY-MM-DD.
func Today(c Clock) string {
	return c.Now().UTC().Format(time.DateOnly)
}
