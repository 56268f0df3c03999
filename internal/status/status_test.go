package status

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sweeney/dht-sensor/internal/dht"
)

func testConfig() Config {
	return Config{
		PinBCM:      4,
		PollMs:      10000,
		HeartbeatMs: 900000,
		WakePulseUs: 18000,
		Broker:      "tcp://192.168.1.200:1883",
		HTTPAddr:    ":80",
	}
}

func TestNewTrackerSnapshot(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tr := NewTracker(start, testConfig())

	snap := tr.Snapshot()
	if !snap.StartTime.Equal(start) {
		t.Errorf("StartTime = %v, want %v", snap.StartTime, start)
	}
	if snap.Last != nil {
		t.Error("new tracker should have no last reading")
	}
	if snap.Counts != (ReadCounts{}) {
		t.Errorf("new tracker counts = %+v, want zero", snap.Counts)
	}
	if snap.Config.PinBCM != 4 {
		t.Errorf("Config.PinBCM = %d, want 4", snap.Config.PinBCM)
	}
}

func TestRecordReading(t *testing.T) {
	tr := NewTracker(time.Now(), testConfig())
	at := time.Date(2026, 3, 5, 8, 30, 0, 0, time.UTC)
	r := dht.Reading{HumidityRaw: 0x01B4, TemperatureRaw: 195, Checksum: 0x78}

	tr.RecordReading(at, r)

	snap := tr.Snapshot()
	if snap.Last == nil {
		t.Fatal("no last reading recorded")
	}
	if !snap.Last.Time.Equal(at) {
		t.Errorf("Last.Time = %v, want %v", snap.Last.Time, at)
	}
	if snap.Last.Humidity != 43.6 {
		t.Errorf("Last.Humidity = %v, want 43.6", snap.Last.Humidity)
	}
	if snap.Last.Temperature != 19.5 {
		t.Errorf("Last.Temperature = %v, want 19.5", snap.Last.Temperature)
	}
	if snap.Last.Raw != "01b400c378" {
		t.Errorf("Last.Raw = %s, want 01b400c378", snap.Last.Raw)
	}
	if snap.Counts.OK != 1 {
		t.Errorf("Counts.OK = %d, want 1", snap.Counts.OK)
	}
}

func TestRecordFailureClassification(t *testing.T) {
	tr := NewTracker(time.Now(), testConfig())

	tr.RecordFailure(dht.ErrTooFrequent)
	tr.RecordFailure(dht.ErrTimeout)
	tr.RecordFailure(dht.ErrTimeout)
	tr.RecordFailure(dht.ErrChecksum)
	tr.RecordFailure(fmt.Errorf("read: %w", dht.ErrTimeout))
	tr.RecordFailure(errors.New("something else"))

	snap := tr.Snapshot()
	want := ReadCounts{TooFrequent: 1, Timeout: 3, Checksum: 2}
	if snap.Counts != want {
		t.Errorf("Counts = %+v, want %+v", snap.Counts, want)
	}
	if snap.Counts.Failures() != 6 {
		t.Errorf("Failures() = %d, want 6", snap.Counts.Failures())
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	tr := NewTracker(time.Now(), testConfig())
	tr.RecordReading(time.Now(), dht.Reading{HumidityRaw: 100, TemperatureRaw: 100})

	snap := tr.Snapshot()
	tr.RecordFailure(dht.ErrTimeout)

	if snap.Counts.Timeout != 0 {
		t.Error("snapshot mutated after later tracker update")
	}
}

func TestSetMQTTConnectedAndNetwork(t *testing.T) {
	tr := NewTracker(time.Now(), testConfig())

	tr.SetMQTTConnected(true)
	tr.SetNetwork(&NetworkInfo{Type: "wifi", IP: "192.168.1.50", Status: "connected"})

	snap := tr.Snapshot()
	if !snap.MQTTConnected {
		t.Error("MQTTConnected not set")
	}
	if snap.Network == nil || snap.Network.IP != "192.168.1.50" {
		t.Errorf("Network = %+v, want IP 192.168.1.50", snap.Network)
	}
}

func TestUptime(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	snap := Snapshot{StartTime: start, Now: start.Add(90 * time.Second)}
	if snap.Uptime() != 90*time.Second {
		t.Errorf("Uptime = %v, want 90s", snap.Uptime())
	}
}

func TestFormatJSON(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tr := NewTracker(start, testConfig())
	tr.RecordReading(start.Add(time.Minute), dht.Reading{HumidityRaw: 0x01B4, TemperatureRaw: 195, Checksum: 0x78})
	tr.RecordFailure(dht.ErrChecksum)
	tr.SetMQTTConnected(true)

	data := FormatJSON(tr.Snapshot())

	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Status.Event != "" {
		t.Errorf("web status should carry no event, got %q", parsed.Status.Event)
	}
	if parsed.Status.Reading == nil {
		t.Fatal("no reading in status JSON")
	}
	if parsed.Status.Reading.Humidity != 43.6 {
		t.Errorf("reading humidity = %v, want 43.6", parsed.Status.Reading.Humidity)
	}
	if parsed.Status.Counts.OK != 1 || parsed.Status.Counts.Checksum != 1 {
		t.Errorf("counts = %+v, want ok=1 checksum=1", parsed.Status.Counts)
	}
	if !parsed.Status.MQTT.Connected {
		t.Error("mqtt connected flag not set in JSON")
	}
	if parsed.Status.Config.WakePulseUs != 18000 {
		t.Errorf("config wake_pulse_us = %d, want 18000", parsed.Status.Config.WakePulseUs)
	}
}

func TestFormatStatusEvent(t *testing.T) {
	tr := NewTracker(time.Now(), testConfig())

	data := FormatStatusEvent(tr.Snapshot(), "SHUTDOWN", "SIGTERM")

	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Status.Event != "SHUTDOWN" {
		t.Errorf("event = %q, want SHUTDOWN", parsed.Status.Event)
	}
	if parsed.Status.Reason != "SIGTERM" {
		t.Errorf("reason = %q, want SIGTERM", parsed.Status.Reason)
	}
	if parsed.Status.Reading != nil {
		t.Error("no reading recorded, but status JSON has one")
	}
}
