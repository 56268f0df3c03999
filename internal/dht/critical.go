package dht

import (
	"runtime"
	"runtime/debug"
)

// Guard approximates an uninterruptible execution window for the sampling
// region, where timing tolerances are single-digit microseconds.
type Guard interface {
	// Enter begins the critical region and returns the function that ends it.
	Enter() (release func())
}

// RuntimeGuard pins the calling goroutine to its OS thread and disables
// garbage collection for the duration of the region. This is the strongest
// guarantee a userspace Go process can give; unlike a bare-metal interrupt
// disable it cannot stop kernel preemption, so decodes on a loaded host can
// still lose edges and fail with ErrTimeout or ErrChecksum. Those failures
// are detected and reported, never returned as silent bad data.
type RuntimeGuard struct{}

// Enter locks the OS thread and turns GC off until release is called.
func (RuntimeGuard) Enter() func() {
	runtime.LockOSThread()
	gcPercent := debug.SetGCPercent(-1)
	return func() {
		debug.SetGCPercent(gcPercent)
		runtime.UnlockOSThread()
	}
}

// NopGuard does nothing. Simulated lines run on virtual time, where
// scheduling jitter cannot corrupt a measurement.
type NopGuard struct{}

// Enter returns a release that does nothing.
func (NopGuard) Enter() func() {
	return func() {}
}
