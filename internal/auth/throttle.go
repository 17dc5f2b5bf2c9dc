package auth

import (
	"math"
	"sync"
	"time"
)

// CooldownCapSeconds bounds the login cooldown regardless of how many
// failures accumulate.
const CooldownCapSeconds = 30

type throttleEntry struct {
	failCount     int
	cooldownUntil time.Time
}

// LoginThrottle slows down repeated failed logins per username. Each
// failure doubles the cooldown up to the cap; a successful login resets
// the counter. State is in-memory only, which is enough to blunt online
// guessing against this single-process service.
type LoginThrottle struct {
	mu      sync.Mutex
	entries map[string]throttleEntry
	now     func() time.Time
}

// NewLoginThrottle creates an empty throttle.
func NewLoginThrottle() *LoginThrottle {
	return &LoginThrottle{
		entries: make(map[string]throttleEntry),
		now:     time.Now,
	}
}

// WaitSeconds returns how many whole seconds the username must wait
// before the next attempt, rounded up; 0 means no cooldown is active.
func (t *LoginThrottle) WaitSeconds(username string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.entries[username]
	if !ok {
		return 0
	}
	remaining := entry.cooldownUntil.Sub(t.now())
	if remaining <= 0 {
		return 0
	}
	return int(remaining.Seconds()) + 1
}

// RecordFailure increments the failure count and starts the next
// cooldown window.
func (t *LoginThrottle) RecordFailure(username string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry := t.entries[username]
	entry.failCount++
	entry.cooldownUntil = t.now().Add(time.Duration(CooldownSeconds(entry.failCount)) * time.Second)
	t.entries[username] = entry
}

// RecordSuccess clears any throttle state for the username.
func (t *LoginThrottle) RecordSuccess(username string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, username)
}

// CooldownSeconds returns min(cap, 2^failCount) seconds. The exponent is
// capped before conversion: a float-to-int conversion of an out-of-range
// value is implementation-defined and could come out negative.
func CooldownSeconds(failCount int) int {
	if failCount >= 5 { // 2^5 already exceeds the cap
		return CooldownCapSeconds
	}
	return int(math.Pow(2, float64(failCount)))
}
