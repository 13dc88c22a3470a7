// Package mqtt publishes button gesture events with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sweeney/multibutton/internal/button"
)

// Topic is the MQTT topic for gesture events.
const Topic = "input/buttons/events"

// TopicSystem is the MQTT topic for daemon lifecycle events.
const TopicSystem = "input/buttons/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a gesture event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event GestureEvent) error

	// PublishSystem sends a daemon lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// GestureEvent is one detected gesture on one button.
type GestureEvent struct {
	Timestamp time.Time
	Button    string
	ID        uint8
	Event     button.Event
	Repeat    uint8
	Pressed   bool
}

// SystemEvent represents a daemon lifecycle event (startup, shutdown,
// heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g. "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g. "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // pre-formatted JSON; if set, FormatSystemPayload returns it directly
	Retained   bool   // whether the broker should retain the message
}

// Payload is the MQTT message payload structure for gestures.
type Payload struct {
	Button ButtonPayload `json:"button"`
}

// ButtonPayload contains the gesture event details.
type ButtonPayload struct {
	Timestamp string `json:"timestamp"`
	Name      string `json:"name"`
	ID        uint8  `json:"id"`
	Event     string `json:"event"`
	Repeat    uint8  `json:"repeat"`
	Pressed   bool   `json:"pressed"`
}

// SystemPayload is the payload structure for lifecycle events.
type SystemPayload struct {
	System SystemInner `json:"system"`
}

// SystemInner contains the lifecycle event details.
type SystemInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatPayload serializes a gesture event to its JSON wire form.
func FormatPayload(event GestureEvent) ([]byte, error) {
	p := Payload{
		Button: ButtonPayload{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339Nano),
			Name:      event.Button,
			ID:        event.ID,
			Event:     event.Event.String(),
			Repeat:    event.Repeat,
			Pressed:   event.Pressed,
		},
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal gesture payload: %w", err)
	}
	return data, nil
}

// FormatSystemPayload serializes a lifecycle event. A pre-formatted
// RawPayload (e.g. a full status snapshot) is passed through untouched.
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if len(event.RawPayload) > 0 {
		return event.RawPayload, nil
	}
	p := SystemPayload{
		System: SystemInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal system payload: %w", err)
	}
	return data, nil
}
