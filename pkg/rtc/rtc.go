// Package rtc is a software real time clock driven by the sampling ticks of the receiver.
// It flywheels between two minute frames and is corrected by every decoded frame.
package rtc

import (
	"sync"

	"dcf77rx/pkg/dcf77"
)

// Clock counts ticks and carries them into seconds, minutes, hours and the day of week.
// Tick and SetTime belong to the tick loop, Now and Synced may be called from any goroutine.
type Clock struct {
	sync.RWMutex
	rate int
	// div is the tick count within the current second.
	div int
	// reset restarts the second on the next tick after a correction.
	reset  bool
	now    dcf77.Time
	synced bool
	// corrections counts the applied SetTime calls.
	corrections uint64
}

// New returns a clock advancing one second every rate ticks, starting at 00:00:00.
func New(rate int) *Clock {
	return &Clock{rate: rate}
}

// SetTime applies a correction. The sub-second divider is re-phased on the next tick.
func (c *Clock) SetTime(t dcf77.Time) {
	c.Lock()
	defer c.Unlock()

	c.now = t
	c.reset = true
	c.synced = true
	c.corrections++
}

// Tick advances the clock by one sampling tick. It reports whether a second started.
func (c *Clock) Tick() bool {
	c.Lock()
	defer c.Unlock()

	if c.reset {
		c.div = 0
		c.reset = false
		return true
	}

	c.div++
	if c.div < c.rate {
		return false
	}

	c.div = 0
	c.now = next(c.now)
	return true
}

// Now returns the current time.
func (c *Clock) Now() dcf77.Time {
	c.RLock()
	defer c.RUnlock()
	return c.now
}

// Synced reports whether the clock has been corrected at least once.
func (c *Clock) Synced() bool {
	c.RLock()
	defer c.RUnlock()
	return c.synced
}

// Corrections returns the number of applied corrections.
func (c *Clock) Corrections() uint64 {
	c.RLock()
	defer c.RUnlock()
	return c.corrections
}

// next returns t advanced by one second.
func next(t dcf77.Time) dcf77.Time {
	if t.Second++; t.Second < 60 {
		return t
	}
	t.Second = 0
	if t.Minute++; t.Minute < 60 {
		return t
	}
	t.Minute = 0
	if t.Hour++; t.Hour < 24 {
		return t
	}
	t.Hour = 0
	t.DayOfWeek = (t.DayOfWeek + 1) % 7
	return t
}
