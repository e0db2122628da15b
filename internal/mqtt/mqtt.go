// Package mqtt connects the robot to the driver station over MQTT:
// lifecycle events and telemetry go out, gamepad snapshots come in.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/pushbot-teleop/internal/telemetry"
)

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "robot/pushbot/system"

// TopicTelemetry is the MQTT topic for operator telemetry.
const TopicTelemetry = "robot/pushbot/telemetry"

// TopicGamepad is the MQTT topic the driver station publishes gamepad state on.
const TopicGamepad = "robot/pushbot/gamepad"

// Publisher publishes robot messages to MQTT.
type Publisher interface {
	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// PublishTelemetry sends one flushed batch of telemetry lines.
	PublishTelemetry(msg TelemetryMessage) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "STOP_BUTTON" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp,omitempty"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	inner := SystemPayloadInner{
		Event:  event.Event,
		Reason: event.Reason,
	}
	if !event.Timestamp.IsZero() {
		inner.Timestamp = event.Timestamp.UTC().Format(time.RFC3339)
	}
	return json.Marshal(SystemPayload{System: inner})
}

// TelemetryMessage is one Update worth of telemetry lines.
type TelemetryMessage struct {
	Timestamp time.Time
	Lines     []telemetry.Line
}

// TelemetryPayload is the JSON envelope for telemetry.
type TelemetryPayload struct {
	Telemetry TelemetryPayloadInner `json:"telemetry"`
}

// TelemetryPayloadInner contains the flushed lines.
type TelemetryPayloadInner struct {
	Timestamp string          `json:"timestamp"`
	Lines     []TelemetryLine `json:"lines"`
}

// TelemetryLine is one label/value pair.
type TelemetryLine struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// FormatTelemetryPayload creates the JSON payload for a telemetry batch.
func FormatTelemetryPayload(msg TelemetryMessage) ([]byte, error) {
	lines := make([]TelemetryLine, 0, len(msg.Lines))
	for _, l := range msg.Lines {
		lines = append(lines, TelemetryLine{Label: l.Label, Value: l.Value})
	}
	return json.Marshal(TelemetryPayload{
		Telemetry: TelemetryPayloadInner{
			Timestamp: msg.Timestamp.UTC().Format(time.RFC3339Nano),
			Lines:     lines,
		},
	})
}
