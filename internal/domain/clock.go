package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// clock is a package-level time source so tests can freeze time via SetClock.
// Production code uses the real clock; tests inject a fake for deterministic
// windows and backoff sequencing.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// Clock returns the current time source. Retry sleeps and window math go
// through it so fake clocks drive them in tests.
func Clock() clockwork.Clock {
	return clock
}

// Now reads the current time from the active clock, in UTC.
func Now() time.Time {
	return clock.Now().UTC()
}
