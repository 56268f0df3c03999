//go:build !linux

package gpio

import "errors"

// RealLine is not available on non-Linux platforms.
type RealLine struct{}

// NewRealLine returns an error on non-Linux platforms.
func NewRealLine(chipName string, pin int) (*RealLine, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// SetDirection is not implemented on non-Linux platforms.
func (l *RealLine) SetDirection(dir Direction) error {
	return errors.New("gpio: not supported")
}

// SetLevel is not implemented on non-Linux platforms.
func (l *RealLine) SetLevel(level int) error {
	return errors.New("gpio: not supported")
}

// Level always reads 0 on non-Linux platforms.
func (l *RealLine) Level() int {
	return 0
}

// Close is not implemented on non-Linux platforms.
func (l *RealLine) Close() error {
	return nil
}
