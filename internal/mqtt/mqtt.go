// Package mqtt publishes sensor readings with abstraction for testing.
// This is also the boundary where the decoder's typed failures are collapsed
// into the single "bad_read" signal downstream consumers expect; the typed
// cause stays in the process log.
package mqtt

import (
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/sweeney/dht-sensor/internal/dht"
)

// Topic is the MQTT topic for sensor readings.
const Topic = "sensors/dht/readings"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "sensors/dht/system"

// Publisher publishes readings to MQTT.
type Publisher interface {
	// Publish sends a decoded reading to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event ReadingEvent) error

	// PublishError reports a failed read to the broker as a bad_read signal.
	PublishError(event ErrorEvent) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// ReadingEvent is one decoded reading to publish.
type ReadingEvent struct {
	Timestamp time.Time
	Reading   dht.Reading
}

// ErrorEvent is one failed read attempt to publish.
type ErrorEvent struct {
	Timestamp time.Time
	Err       error
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure for a reading.
type Payload struct {
	DHT ReadingPayload `json:"dht"`
}

// ReadingPayload contains the reading details.
type ReadingPayload struct {
	Timestamp   string  `json:"timestamp"`
	Humidity    float64 `json:"humidity"`
	Temperature float64 `json:"temperature"`
	Raw         string  `json:"raw"` // wire-order payload, hex encoded
}

// FormatPayload creates the JSON payload for a reading.
func FormatPayload(event ReadingEvent) ([]byte, error) {
	raw := event.Reading.Payload()
	payload := Payload{
		DHT: ReadingPayload{
			Timestamp:   event.Timestamp.UTC().Format(time.RFC3339),
			Humidity:    event.Reading.Humidity(),
			Temperature: event.Reading.Temperature(),
			Raw:         hex.EncodeToString(raw[:]),
		},
	}
	return json.Marshal(payload)
}

// BadRead is the collapsed error signal published for every protocol-level
// decode failure. Consumers cannot distinguish the cause from the message;
// the daemon log carries the typed error.
const BadRead = "bad_read"

// ErrorPayload represents the MQTT message payload for a failed read.
type ErrorPayload struct {
	DHT ErrorInner `json:"dht"`
}

// ErrorInner contains the failed-read details.
type ErrorInner struct {
	Timestamp string `json:"timestamp"`
	Error     string `json:"error"`
}

// FormatErrorPayload creates the JSON payload for a failed read. Every
// protocol-level failure collapses to BadRead here, by contract with the
// legacy consumers of this feed.
func FormatErrorPayload(event ErrorEvent) ([]byte, error) {
	payload := ErrorPayload{
		DHT: ErrorInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Error:     BadRead,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
