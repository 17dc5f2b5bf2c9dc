package engine

import (
	"sync"
	"time"
)

// Clock supplies the current time to the tick loop. The engine compares
// schedule boundaries against Clock.Now() rather than time.Now() so tests
// can drive the state machine deterministically.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production clock. All engine time handling is in UTC.
type SystemClock struct{}

// Now returns the current wall-clock time in UTC.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// ManualClock returns a fixed instant until advanced. Used in tests to
// place ticks exactly at or across schedule boundaries.
//
// Thread-safety: safe for concurrent use via internal mutex.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualClock creates a clock frozen at the given instant.
func NewManualClock(now time.Time) *ManualClock {
	return &ManualClock{now: now.UTC()}
}

// Now returns the clock's current instant.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set jumps the clock to the given instant.
func (c *ManualClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now.UTC()
}
