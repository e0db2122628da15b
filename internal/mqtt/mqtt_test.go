package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sweeney/pushbot-teleop/internal/telemetry"
)

func TestTopics(t *testing.T) {
	for got, want := range map[string]string{
		TopicSystem:    "robot/pushbot/system",
		TopicTelemetry: "robot/pushbot/telemetry",
		TopicGamepad:   "robot/pushbot/gamepad",
	} {
		if got != want {
			t.Errorf("topic: got %q, want %q", got, want)
		}
	}
}

func TestFormatSystemPayloadExactJSON(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC),
		Event:     "SHUTDOWN",
		Reason:    "SIGTERM",
	}
	got, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"system":{"timestamp":"2026-10-14T09:30:00Z","event":"SHUTDOWN","reason":"SIGTERM"}}`
	if string(got) != want {
		t.Errorf("payload:\ngot  %s\nwant %s", got, want)
	}
}

func TestFormatSystemPayloadTimezoneConversion(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	event := SystemEvent{Timestamp: time.Date(2026, 10, 14, 11, 30, 0, 0, loc), Event: "HEARTBEAT"}
	got, _ := FormatSystemPayload(event)

	var p SystemPayload
	if err := json.Unmarshal(got, &p); err != nil {
		t.Fatal(err)
	}
	if p.System.Timestamp != "2026-10-14T09:30:00Z" {
		t.Errorf("timestamp: got %q", p.System.Timestamp)
	}
	if p.System.Reason != "" {
		t.Errorf("reason should be omitted, got %q", p.System.Reason)
	}
}

func TestFormatSystemPayloadRaw(t *testing.T) {
	raw := []byte(`{"status":{}}`)
	got, err := FormatSystemPayload(SystemEvent{Event: "STARTUP", RawPayload: raw})
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(raw) {
		t.Errorf("expected raw payload, got %s", got)
	}
}

func TestWillPayloadFormat(t *testing.T) {
	want := `{"system":{"event":"OFFLINE","reason":"CONNECTION_LOST"}}`
	if got := string(WillPayload()); got != want {
		t.Errorf("will payload:\ngot  %s\nwant %s", got, want)
	}
}

func TestFormatTelemetryPayload(t *testing.T) {
	msg := TelemetryMessage{
		Timestamp: time.Date(2026, 10, 14, 9, 30, 0, 500000000, time.UTC),
		Lines: []telemetry.Line{
			{Label: "Button a state:", Value: "pressed"},
			{Label: "Error Thrown", Value: "stall"},
		},
	}
	got, err := FormatTelemetryPayload(msg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"telemetry":{"timestamp":"2026-10-14T09:30:00.5Z","lines":[` +
		`{"label":"Button a state:","value":"pressed"},` +
		`{"label":"Error Thrown","value":"stall"}]}}`
	if string(got) != want {
		t.Errorf("payload:\ngot  %s\nwant %s", got, want)
	}
}

func TestFormatTelemetryPayloadEmptyLines(t *testing.T) {
	got, _ := FormatTelemetryPayload(TelemetryMessage{Timestamp: time.Unix(0, 0)})

	var p TelemetryPayload
	if err := json.Unmarshal(got, &p); err != nil {
		t.Fatal(err)
	}
	if p.Telemetry.Lines == nil {
		t.Error("lines should encode as an empty array, not null")
	}
}

func TestFakePublisher(t *testing.T) {
	f := NewFakePublisher()
	f.PublishSystem(SystemEvent{Event: "STARTUP"})
	f.PublishSystem(SystemEvent{Event: "SHUTDOWN", Reason: "SIGINT"})
	f.PublishTelemetry(TelemetryMessage{Lines: []telemetry.Line{{Label: "a", Value: "1"}}})

	if diff := cmp.Diff([]string{"STARTUP", "SHUTDOWN"}, f.Events()); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
	if len(f.SystemPayloads) != 2 {
		t.Errorf("expected 2 payloads, got %d", len(f.SystemPayloads))
	}
	if len(f.Telemetry) != 1 {
		t.Errorf("expected 1 telemetry batch, got %d", len(f.Telemetry))
	}

	f.Close()
	if !f.Closed {
		t.Error("expected Closed after Close")
	}
}

func TestFakePublisherErrors(t *testing.T) {
	f := NewFakePublisher()
	f.PublishSystemError = errors.New("broker down")
	f.PublishTelemetryError = errors.New("broker down")

	if err := f.PublishSystem(SystemEvent{Event: "STARTUP"}); err == nil {
		t.Error("expected system publish error")
	}
	if err := f.PublishTelemetry(TelemetryMessage{}); err == nil {
		t.Error("expected telemetry publish error")
	}
	if len(f.SystemEvents) != 0 || len(f.Telemetry) != 0 {
		t.Error("failed publishes should not be recorded")
	}
}
