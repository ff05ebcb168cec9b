// Package clock abstracts wall-clock time so audit records and scan
// timestamps can be made deterministic in tests.
package clock

import "time"

// Clock provides an abstraction for time operations to enable deterministic testing.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the system time.
type RealClock struct{}

// Now returns the current system time.
func (c *RealClock) Now() time.Time {
	return time.Now()
}

// FakeClock implements Clock with a fixed time for testing.
type FakeClock struct {
	current time.Time
}

// NewFakeClock creates a new FakeClock with the given time.
func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{current: t}
}

// Now returns the fixed time.
func (c *FakeClock) Now() time.Time {
	return c.current
}

// Advance moves the fixed time forward by the given duration.
func (c *FakeClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}

// Seconds returns c.Now() truncated to whole seconds. Persisted timestamps
// (audit records, file modification times) use second precision.
func Seconds(c Clock) time.Time {
	return Truncate(c.Now())
}

// Truncate drops sub-second precision and monotonic clock readings from t.
func Truncate(t time.Time) time.Time {
	return t.Truncate(time.Second).Round(0)
}
