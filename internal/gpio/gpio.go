// Package gpio provides the minimal pin and timing capability needed to
// bit-bang a single-wire sensor, with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The sim implementation allows testing without hardware.
package gpio

// Direction is the configured data direction of a line.
type Direction int

const (
	// Input releases the line; the level is read from the wire (pull-up biased).
	Input Direction = iota
	// Output drives the line to the last set level.
	Output
)

// Line is a single GPIO line with direction control. This is deliberately
// minimal: direction set, level set, level get. The protocol decoder needs
// nothing else from the hardware.
type Line interface {
	// SetDirection switches the line between driven output and released input.
	SetDirection(dir Direction) error

	// SetLevel drives the line to 0 or 1. Only meaningful in Output direction.
	SetLevel(level int) error

	// Level returns the current line level (0 or 1).
	// It must be cheap: the decoder calls it in a microsecond-scale busy loop,
	// so implementations return 0 on a read failure rather than an error.
	Level() int

	// Close releases the line.
	Close() error
}

// Clock provides microsecond timing for the protocol decoder.
// The real implementation is the monotonic system clock; the sim
// implementation runs on virtual time so decodes are deterministic.
type Clock interface {
	// Now returns monotonic time in microseconds since an arbitrary origin.
	Now() int64

	// Delay waits for at least the given number of microseconds.
	Delay(micros int64)
}

// DefaultPin is the BCM pin number the sensor data line is wired to.
const DefaultPin = 4

// DefaultChip is the GPIO character device for the Raspberry Pi header pins.
const DefaultChip = "gpiochip0"
