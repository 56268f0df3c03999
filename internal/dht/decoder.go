// Package dht decodes readings from a DHT11/DHT22-class single-wire
// humidity/temperature sensor by bit-banging a GPIO line.
//
// The wire protocol: the host wakes the sensor by holding the line low, then
// releases it to the pull-up. The sensor answers with an 80 µs low / 80 µs
// high response, then sends 40 bits, each one a ~54 µs low phase followed by
// a high phase whose duration encodes the value: ~28 µs for a 0, ~70 µs for
// a 1. The payload is 16 bits of humidity, 16 bits of temperature (both in
// tenths, temperature sign-magnitude) and an 8-bit checksum.
//
// Datasheets:
// https://components101.com/sites/default/files/component_datasheet/DHT11-Temperature-Sensor.pdf
// https://cdn-shop.adafruit.com/datasheets/Digital+humidity+and+temperature+sensor+AM2302.pdf
package dht

import (
	"fmt"
	"time"

	"github.com/sweeney/dht-sensor/internal/gpio"
)

const (
	// WakePulse is how long the wake handshake holds the line low. The
	// datasheets ask for up to 18 ms; this is the value for real hardware.
	WakePulse = 18 * time.Millisecond

	// WakePulseShort is a 2 ms wake pulse. Too short for a physical sensor,
	// but it is what simulated sensors (wokwi and this package's SimLine
	// tests) respond to, and what the field deployments this replaces used.
	WakePulseShort = 2 * time.Millisecond

	// MinReadInterval is the recovery time the sensor needs between reads.
	MinReadInterval = 2 * time.Second

	// settleMicros is the pause between releasing the line and sampling,
	// giving the pull-up time to bring the bus high.
	settleMicros = 25

	// maxEdgeWaitMicros bounds every half-pulse. The longest legitimate
	// phase is the 80 µs response; anything slower is a dead or noisy line.
	maxEdgeWaitMicros = 90

	// oneThresholdMicros splits the two high-phase durations: a 0 is high
	// for at most ~28 µs, a 1 for ~70 µs.
	oneThresholdMicros = 30
)

// Decoder runs the wire protocol on one line. It performs no retries and no
// rate limiting; wrap it in a RateLimiter to respect MinReadInterval.
type Decoder struct {
	line       gpio.Line
	clock      gpio.Clock
	guard      Guard
	wakeMicros int64
}

// NewDecoder creates a decoder for the given line. wakePulse should be
// WakePulse on real hardware and WakePulseShort against simulators.
func NewDecoder(line gpio.Line, clock gpio.Clock, guard Guard, wakePulse time.Duration) *Decoder {
	return &Decoder{
		line:       line,
		clock:      clock,
		guard:      guard,
		wakeMicros: wakePulse.Microseconds(),
	}
}

// Decode wakes the sensor, samples one 40-bit frame and validates it.
// It blocks for the full exchange: the wake pulse plus a worst case of
// 83 half-pulses at 90 µs each, around 7.5 ms of busy-waiting.
func (d *Decoder) Decode() (Reading, error) {
	// Wake handshake: drive the line low, then release it to the pull-up.
	if err := d.line.SetDirection(gpio.Output); err != nil {
		return Reading{}, fmt.Errorf("wake handshake: %w", err)
	}
	if err := d.line.SetLevel(0); err != nil {
		return Reading{}, fmt.Errorf("wake handshake: %w", err)
	}
	d.clock.Delay(d.wakeMicros)
	if err := d.line.SetDirection(gpio.Input); err != nil {
		return Reading{}, fmt.Errorf("release line: %w", err)
	}
	d.clock.Delay(settleMicros)

	var rawHumidity, rawTemperature, data uint16

	release := d.guard.Enter()

	// Three priming half-pulses (the tail of the idle high and the sensor's
	// response), then 80 half-pulses carrying the 40 data bits. The parity
	// of i gives the line level for the phase being waited out.
	for i := -3; i < 80; i++ {
		expect := i & 1
		start := d.clock.Now()
		var age int64
		for {
			age = d.clock.Now() - start
			if age > maxEdgeWaitMicros {
				release()
				return Reading{}, ErrTimeout
			}
			if d.line.Level() != expect {
				break
			}
		}

		if i >= 0 && i&1 == 1 {
			// End of a data bit's high phase. A long high is a 1.
			data <<= 1
			if age > oneThresholdMicros {
				data |= 1
			}
		}

		switch i {
		case 31:
			rawHumidity = data
		case 63:
			rawTemperature = data
			data = 0
		}
	}
	release()

	// The remaining 8 bits in the accumulator are the checksum byte.
	if Checksum(rawHumidity, rawTemperature) != uint8(data) {
		return Reading{}, ErrChecksum
	}

	return newReading(rawHumidity, rawTemperature, uint8(data)), nil
}
