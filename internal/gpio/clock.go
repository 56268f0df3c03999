package gpio

import "time"

// RealClock reads the monotonic system clock at microsecond resolution.
type RealClock struct {
	base time.Time
}

// NewRealClock creates a clock whose origin is the moment of the call.
func NewRealClock() *RealClock {
	return &RealClock{base: time.Now()}
}

// Now returns microseconds since the clock was created. time.Since uses the
// monotonic reading, so wall-clock adjustments do not affect it.
func (c *RealClock) Now() int64 {
	return time.Since(c.base).Microseconds()
}

// Delay busy-waits for short intervals and sleeps for long ones.
// Below a millisecond time.Sleep cannot be trusted to wake on time on a
// general-purpose kernel, so the wait is a spin on the monotonic clock.
func (c *RealClock) Delay(micros int64) {
	if micros <= 0 {
		return
	}
	if micros >= 1000 {
		time.Sleep(time.Duration(micros) * time.Microsecond)
		return
	}
	start := time.Now()
	for time.Since(start) < time.Duration(micros)*time.Microsecond {
	}
}
