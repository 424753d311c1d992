// Package mqtt mirrors button presses and lifecycle events to an MQTT broker,
// with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/button-bridge/internal/logic"
)

// Topic is the MQTT topic for accepted presses.
const Topic = "home/buttons/bridge/presses"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "home/buttons/bridge/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends an accepted press to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event logic.PressEvent) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "OFFLINE"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload for a press.
type Payload struct {
	Press PressPayload `json:"press"`
}

// PressPayload contains the press details.
type PressPayload struct {
	Timestamp string  `json:"timestamp"`
	Epoch     float64 `json:"epoch"`
	Button    int     `json:"button"`
}

// FormatPayload creates the JSON payload for a press.
func FormatPayload(event logic.PressEvent) ([]byte, error) {
	payload := Payload{
		Press: PressPayload{
			Timestamp: event.Time.UTC().Format(time.RFC3339Nano),
			Epoch:     event.Seconds(),
			Button:    event.Button,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT) that don't carry a full status snapshot.
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
