package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Phase         string       `json:"phase"`
	SlowMode      bool         `json:"slow_mode"`
	Cycles        int          `json:"cycles"`
	Drive         DriveJSON    `json:"drive"`
	Buttons       []ButtonJSON `json:"buttons"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Config        ConfigJSON   `json:"config"`
}

// DriveJSON reports the last drivetrain command.
type DriveJSON struct {
	Left  float64 `json:"left"`
	Right float64 `json:"right"`
}

// ButtonJSON is the JSON representation of one button reader.
type ButtonJSON struct {
	Name     string `json:"name"`
	Down     bool   `json:"down"`
	Presses  int    `json:"presses"`
	Releases int    `json:"releases"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs      int64  `json:"poll_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Broker      string `json:"broker"`
	HTTPAddr    string `json:"http_addr"`
	Input       string `json:"input"`
	Telemetry   string `json:"telemetry"`
}

func buildInner(snap Snapshot) StatusInner {
	phase := string(snap.OpMode.Phase)
	if phase == "" {
		phase = "UNKNOWN"
	}

	buttons := make([]ButtonJSON, 0, len(snap.OpMode.Buttons))
	for _, b := range snap.OpMode.Buttons {
		buttons = append(buttons, ButtonJSON{
			Name:     b.Name,
			Down:     b.Down,
			Presses:  b.Presses,
			Releases: b.Releases,
		})
	}

	return StatusInner{
		Phase:         phase,
		SlowMode:      snap.OpMode.Slow,
		Cycles:        snap.OpMode.Cycles,
		Drive:         DriveJSON{Left: snap.OpMode.LeftPower, Right: snap.OpMode.RightPower},
		Buttons:       buttons,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Config: ConfigJSON{
			PollMs:      snap.Config.PollMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
			Input:       snap.Config.Input,
			Telemetry:   snap.Config.Telemetry,
		},
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
