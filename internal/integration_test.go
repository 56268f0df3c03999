package internal

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sweeney/dht-sensor/internal/dht"
	"github.com/sweeney/dht-sensor/internal/gpio"
	"github.com/sweeney/dht-sensor/internal/mqtt"
	"github.com/sweeney/dht-sensor/internal/status"
)

// newSimChain wires a simulated sensor transmitting the given frame into the
// full decode chain the daemon uses: decoder behind the rate limiter.
func newSimChain(payload [5]byte) (dht.Source, *gpio.SimClock) {
	clock := gpio.NewSimClock()
	line := gpio.NewSimLine(clock, gpio.SensorFrame(payload))
	decoder := dht.NewDecoder(line, clock, dht.NopGuard{}, dht.WakePulseShort)
	return dht.NewRateLimiter(decoder, clock, dht.MinReadInterval), clock
}

// TestIntegrationDecodeToPublish runs a simulated sensor frame through
// decode, rate limiting, status tracking and MQTT payload formatting.
func TestIntegrationDecodeToPublish(t *testing.T) {
	source, clock := newSimChain([5]byte{0x01, 0xB4, 0x00, 0xC3, 0x78})
	publisher := mqtt.NewFakePublisher()
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tracker := status.NewTracker(start, status.Config{PinBCM: 4})

	// First read decodes and publishes.
	reading, err := source.Decode()
	if err != nil {
		t.Fatalf("first decode: %v", err)
	}
	tracker.RecordReading(start, reading)
	if err := publisher.Publish(mqtt.ReadingEvent{Timestamp: start, Reading: reading}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	var parsed mqtt.Payload
	if err := json.Unmarshal(publisher.Payloads[0], &parsed); err != nil {
		t.Fatalf("invalid reading JSON: %v", err)
	}
	if parsed.DHT.Humidity != 43.6 {
		t.Errorf("published humidity = %v, want 43.6", parsed.DHT.Humidity)
	}
	if parsed.DHT.Temperature != 19.5 {
		t.Errorf("published temperature = %v, want 19.5", parsed.DHT.Temperature)
	}
	if parsed.DHT.Raw != "01b400c378" {
		t.Errorf("published raw = %q, want 01b400c378", parsed.DHT.Raw)
	}

	// An immediate second read is rejected by the rate gate and goes out as
	// the collapsed bad_read signal.
	_, err = source.Decode()
	if !errors.Is(err, dht.ErrTooFrequent) {
		t.Fatalf("second decode: error = %v, want ErrTooFrequent", err)
	}
	tracker.RecordFailure(err)
	if err := publisher.PublishError(mqtt.ErrorEvent{Timestamp: start, Err: err}); err != nil {
		t.Fatalf("publish error: %v", err)
	}

	var parsedErr mqtt.ErrorPayload
	if err := json.Unmarshal(publisher.ErrorPayloads[0], &parsedErr); err != nil {
		t.Fatalf("invalid error JSON: %v", err)
	}
	if parsedErr.DHT.Error != mqtt.BadRead {
		t.Errorf("published error = %q, want %q", parsedErr.DHT.Error, mqtt.BadRead)
	}

	// After the recovery interval the sensor can be read again.
	clock.Advance(dht.MinReadInterval.Microseconds())
	reading, err = source.Decode()
	if err != nil {
		t.Fatalf("third decode: %v", err)
	}
	tracker.RecordReading(start.Add(dht.MinReadInterval), reading)

	snap := tracker.Snapshot()
	if snap.Counts.OK != 2 || snap.Counts.TooFrequent != 1 {
		t.Errorf("counts = %+v, want ok=2 too_frequent=1", snap.Counts)
	}
	if snap.Last == nil || snap.Last.Humidity != 43.6 {
		t.Errorf("last reading = %+v, want humidity 43.6", snap.Last)
	}

	// The status JSON the web endpoint serves reflects the same state.
	var sj status.StatusJSON
	if err := json.Unmarshal(status.FormatJSON(snap), &sj); err != nil {
		t.Fatalf("invalid status JSON: %v", err)
	}
	if sj.Status.Counts.OK != 2 {
		t.Errorf("status JSON ok count = %d, want 2", sj.Status.Counts.OK)
	}
	if sj.Status.Reading == nil || sj.Status.Reading.Raw != "01b400c378" {
		t.Errorf("status JSON reading = %+v", sj.Status.Reading)
	}
}

// TestIntegrationCorruptedFrame checks that a corrupted transmission is
// rejected end to end and reported as a bad read, never as data.
func TestIntegrationCorruptedFrame(t *testing.T) {
	// Checksum byte has one flipped bit.
	source, _ := newSimChain([5]byte{0x01, 0xB4, 0x00, 0xC3, 0x79})
	publisher := mqtt.NewFakePublisher()
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tracker := status.NewTracker(start, status.Config{})

	_, err := source.Decode()
	if !errors.Is(err, dht.ErrChecksum) {
		t.Fatalf("error = %v, want ErrChecksum", err)
	}
	tracker.RecordFailure(err)
	if err := publisher.PublishError(mqtt.ErrorEvent{Timestamp: start, Err: err}); err != nil {
		t.Fatalf("publish error: %v", err)
	}

	if len(publisher.Events) != 0 {
		t.Errorf("published %d readings from a corrupted frame, want 0", len(publisher.Events))
	}

	var parsedErr mqtt.ErrorPayload
	if err := json.Unmarshal(publisher.ErrorPayloads[0], &parsedErr); err != nil {
		t.Fatalf("invalid error JSON: %v", err)
	}
	if parsedErr.DHT.Error != mqtt.BadRead {
		t.Errorf("published error = %q, want %q", parsedErr.DHT.Error, mqtt.BadRead)
	}

	snap := tracker.Snapshot()
	if snap.Counts.Checksum != 1 {
		t.Errorf("checksum failures = %d, want 1", snap.Counts.Checksum)
	}
	if snap.Last != nil {
		t.Errorf("last reading = %+v, want none", snap.Last)
	}
}

// TestIntegrationNegativeTemperature runs a below-zero frame through the
// chain and checks the sign survives into the published payload.
func TestIntegrationNegativeTemperature(t *testing.T) {
	source, _ := newSimChain([5]byte{0x01, 0x58, 0x80, 0x32, 0x0B})
	publisher := mqtt.NewFakePublisher()

	reading, err := source.Decode()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if err := publisher.Publish(mqtt.ReadingEvent{Timestamp: time.Now(), Reading: reading}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	var parsed mqtt.Payload
	if err := json.Unmarshal(publisher.Payloads[0], &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.DHT.Temperature != -5.0 {
		t.Errorf("published temperature = %v, want -5.0", parsed.DHT.Temperature)
	}
	if parsed.DHT.Raw != "0158ffce0b" {
		t.Errorf("published raw = %q, want 0158ffce0b", parsed.DHT.Raw)
	}
}
