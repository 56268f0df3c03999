package dht

import "errors"

// Decode failures stay typed inside the process; collapsing them into a
// single generic bad-read signal is the publishing boundary's decision.
var (
	// ErrTooFrequent means a read was attempted before the sensor's recovery
	// interval elapsed. Retry after waiting.
	ErrTooFrequent = errors.New("read attempted inside the sensor recovery interval")

	// ErrTimeout means an expected edge never arrived. The sensor is
	// disconnected, miswired, or the line was too noisy to sample.
	ErrTimeout = errors.New("timed out waiting for a sensor edge")

	// ErrChecksum means all 40 bits were sampled but the trailing checksum
	// byte does not match. Usually transient line noise or timing drift.
	ErrChecksum = errors.New("frame checksum mismatch")
)

// IsBadRead reports whether err is a protocol-level decode failure. All of
// these are recoverable by retrying after the sensor recovery interval.
func IsBadRead(err error) bool {
	return errors.Is(err, ErrTooFrequent) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrChecksum)
}
