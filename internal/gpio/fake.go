package gpio

// SimClock is a virtual microsecond clock for tests. Each Now call advances
// time by Step, modelling the cost of one pass through a busy-poll loop, so
// decodes against a SimLine terminate deterministically.
type SimClock struct {
	now int64

	// Step is the number of microseconds Now advances per call.
	Step int64
}

// NewSimClock creates a clock at virtual time zero with a 1 µs step.
func NewSimClock() *SimClock {
	return &SimClock{Step: 1}
}

// Now returns the virtual time, advancing it by Step first.
func (c *SimClock) Now() int64 {
	c.now += c.Step
	return c.now
}

// Delay advances virtual time by the given number of microseconds.
func (c *SimClock) Delay(micros int64) {
	if micros > 0 {
		c.now += micros
	}
}

// Advance moves virtual time forward without a decoder call, e.g. to get past
// a rate-limit window between reads.
func (c *SimClock) Advance(micros int64) {
	c.now += micros
}

// Pulse is one wire level held for a duration in microseconds.
type Pulse struct {
	Level    int
	Duration int64
}

// SimLine is a test double that plays a scripted pulse train on virtual time.
// The script is anchored to the moment the line is released to input (the end
// of the wake pulse), which is when a real sensor starts answering.
type SimLine struct {
	clock  *SimClock
	pulses []Pulse

	dir        Direction
	driveLevel int
	frameStart int64
	lowStart   int64
	lowDriven  bool

	// WakeLow records how long the line was held low before release, in
	// microseconds. Zero until a wake pulse completed.
	WakeLow int64

	// Released reports whether the line was returned to input after a wake pulse.
	Released bool

	// Closed tracks if Close was called.
	Closed bool
}

// NewSimLine creates a line scripted with the given pulses, idle high.
func NewSimLine(clock *SimClock, pulses []Pulse) *SimLine {
	return &SimLine{
		clock:      clock,
		pulses:     pulses,
		dir:        Input,
		driveLevel: 1,
	}
}

// SetDirection switches the line. Releasing to input after a low drive
// completes the wake pulse and starts the scripted frame.
func (l *SimLine) SetDirection(dir Direction) error {
	if dir == l.dir {
		return nil
	}
	l.dir = dir
	if dir == Output {
		// Mirrors the real line, which starts driven high.
		l.driveLevel = 1
		return nil
	}
	if dir == Input {
		if l.lowDriven {
			l.WakeLow = l.clock.now - l.lowStart
			l.lowDriven = false
		}
		l.Released = true
		l.frameStart = l.clock.now
	}
	return nil
}

// SetLevel records the driven level and the start of a low drive.
func (l *SimLine) SetLevel(level int) error {
	if l.dir == Output && level == 0 && l.driveLevel != 0 {
		l.lowStart = l.clock.now
		l.lowDriven = true
	}
	l.driveLevel = level
	return nil
}

// Level returns the scripted wire level at the current virtual time.
// After the script ends the line floats back high on the pull-up.
func (l *SimLine) Level() int {
	if l.dir == Output {
		return l.driveLevel
	}
	if !l.Released {
		return 1
	}
	elapsed := l.clock.now - l.frameStart
	for _, p := range l.pulses {
		if elapsed < p.Duration {
			return p.Level
		}
		elapsed -= p.Duration
	}
	return 1
}

// Close marks the line as closed.
func (l *SimLine) Close() error {
	l.Closed = true
	return nil
}

// Sensor frame timing, per the DHT11/AM2302 datasheets: the sensor answers
// with 80 µs low / 80 µs high, then sends each bit as 54 µs low followed by a
// high whose length encodes the value (~28 µs for 0, ~70 µs for 1), and pulls
// low once more before releasing the bus.
const (
	frameIdleHigh    = 40
	frameResponseLow = 80
	frameResponseHi  = 80
	frameBitLow      = 54
	frameBitHighZero = 28
	frameBitHighOne  = 70
)

// SensorFrame builds the pulse train a healthy sensor produces for the given
// 5-byte payload (humidity, temperature, checksum; most significant bit
// first within each byte).
func SensorFrame(payload [5]byte) []Pulse {
	pulses := []Pulse{
		{Level: 1, Duration: frameIdleHigh},
		{Level: 0, Duration: frameResponseLow},
		{Level: 1, Duration: frameResponseHi},
	}
	for _, b := range payload {
		for bit := 7; bit >= 0; bit-- {
			high := int64(frameBitHighZero)
			if b&(1<<uint(bit)) != 0 {
				high = frameBitHighOne
			}
			pulses = append(pulses,
				Pulse{Level: 0, Duration: frameBitLow},
				Pulse{Level: 1, Duration: high})
		}
	}
	return append(pulses, Pulse{Level: 0, Duration: frameBitLow})
}
