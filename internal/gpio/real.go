//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealLine drives a line on actual hardware using the Linux GPIO character
// device. The sensor bus idles high, so the line is requested as input with
// the pull-up enabled and flipped to output only for the wake pulse.
type RealLine struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// NewRealLine requests the given BCM pin on the named chip.
func NewRealLine(chipName string, pin int) (*RealLine, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	line, err := chip.RequestLine(pin, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request sensor pin %d: %w", pin, err)
	}

	return &RealLine{chip: chip, line: line}, nil
}

// SetDirection reconfigures the line. Output starts driven high so switching
// direction does not glitch the idle-high bus.
func (l *RealLine) SetDirection(dir Direction) error {
	if dir == Output {
		if err := l.line.Reconfigure(gpiocdev.AsOutput(1)); err != nil {
			return fmt.Errorf("reconfigure as output: %w", err)
		}
		return nil
	}
	if err := l.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullUp); err != nil {
		return fmt.Errorf("reconfigure as input: %w", err)
	}
	return nil
}

// SetLevel drives the line level.
func (l *RealLine) SetLevel(level int) error {
	if err := l.line.SetValue(level); err != nil {
		return fmt.Errorf("set level: %w", err)
	}
	return nil
}

// Level returns the current line level. A read failure reports 0, which the
// decoder surfaces as a timeout rather than a corrupted bit.
func (l *RealLine) Level() int {
	v, err := l.line.Value()
	if err != nil {
		return 0
	}
	return v
}

// Close restores the line to input with pull-up (the bus idle state, and the
// Pi boot default for this wiring) before releasing it.
func (l *RealLine) Close() error {
	var errs []error

	if l.line != nil {
		if err := l.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullUp); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure sensor pin: %w", err))
		}
		if err := l.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close sensor pin: %w", err))
		}
	}
	if l.chip != nil {
		if err := l.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
