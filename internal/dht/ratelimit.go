package dht

import (
	"time"

	"github.com/sweeney/dht-sensor/internal/gpio"
)

// Source produces sensor readings on demand.
type Source interface {
	Decode() (Reading, error)
}

// RateLimiter gates a decode source to the sensor's minimum re-read interval.
// A call inside the window fails with ErrTooFrequent without touching the
// line.
//
// Not safe for concurrent use: the timestamp is single-caller state. Callers
// that share a RateLimiter across goroutines must serialize externally.
type RateLimiter struct {
	src       Source
	clock     gpio.Clock
	minMicros int64
	lastRead  int64 // clock micros of the last attempt; 0 means never read
}

// NewRateLimiter wraps src with the given minimum interval, normally
// MinReadInterval.
func NewRateLimiter(src Source, clock gpio.Clock, minInterval time.Duration) *RateLimiter {
	return &RateLimiter{
		src:       src,
		clock:     clock,
		minMicros: minInterval.Microseconds(),
	}
}

// Decode runs one read attempt through the gate. The window is armed before
// the protocol outcome is known: a failed decode still stirred the sensor,
// which needs its full recovery time either way. A rejected call does not
// re-arm the window, so a caller hammering Decode still gets through once
// the interval from the last real attempt has passed.
func (r *RateLimiter) Decode() (Reading, error) {
	now := r.clock.Now()
	if r.lastRead != 0 && now-r.lastRead < r.minMicros {
		return Reading{}, ErrTooFrequent
	}
	r.lastRead = now
	return r.src.Decode()
}
