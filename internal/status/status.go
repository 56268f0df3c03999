// Package status provides a thread-safe status tracker for the dht-sensor
// daemon. It is read by HTTP handlers and snapshotted into MQTT system events.
package status

import (
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/sweeney/dht-sensor/internal/dht"
)

// NetworkInfo contains network state, as reported by the pi-helper env file.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	PinBCM      int
	PollMs      int64
	HeartbeatMs int64
	WakePulseUs int64
	Broker      string
	HTTPAddr    string
}

// ReadCounts tracks read outcomes since startup.
type ReadCounts struct {
	OK          int
	TooFrequent int
	Timeout     int
	Checksum    int
}

// Failures returns the total number of failed reads.
func (c ReadCounts) Failures() int {
	return c.TooFrequent + c.Timeout + c.Checksum
}

// LastReading is the most recent successful decode.
type LastReading struct {
	Time        time.Time
	Humidity    float64
	Temperature float64
	Raw         string // wire-order payload, hex encoded
}

// Snapshot is a point-in-time view of daemon state. It is a value type,
// safe to use after the lock is released.
type Snapshot struct {
	Last          *LastReading
	Counts        ReadCounts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// RecordReading stores a successful decode and bumps the OK count.
func (t *Tracker) RecordReading(at time.Time, r dht.Reading) {
	raw := r.Payload()
	t.mu.Lock()
	t.snap.Last = &LastReading{
		Time:        at,
		Humidity:    r.Humidity(),
		Temperature: r.Temperature(),
		Raw:         hex.EncodeToString(raw[:]),
	}
	t.snap.Counts.OK++
	t.mu.Unlock()
}

// RecordFailure classifies a decode error and bumps the matching count.
// Unrecognized errors count as checksum failures.
func (t *Tracker) RecordFailure(err error) {
	t.mu.Lock()
	switch {
	case errors.Is(err, dht.ErrTooFrequent):
		t.snap.Counts.TooFrequent++
	case errors.Is(err, dht.ErrTimeout):
		t.snap.Counts.Timeout++
	default:
		t.snap.Counts.Checksum++
	}
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
