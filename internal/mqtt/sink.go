package mqtt

import (
	"time"

	"github.com/sweeney/pushbot-teleop/internal/telemetry"
)

// TelemetryPublisher is the subset of Publisher used by TelemetrySink.
type TelemetryPublisher interface {
	PublishTelemetry(msg TelemetryMessage) error
}

// TelemetrySink is a telemetry.Sink that publishes each Update as one message.
type TelemetrySink struct {
	pub     TelemetryPublisher
	now     func() time.Time
	pending []telemetry.Line
}

// NewTelemetrySink creates a sink over pub. A nil now uses time.Now.
func NewTelemetrySink(pub TelemetryPublisher, now func() time.Time) *TelemetrySink {
	if now == nil {
		now = time.Now
	}
	return &TelemetrySink{pub: pub, now: now}
}

// AddData buffers one line.
func (s *TelemetrySink) AddData(label, value string) {
	s.pending = append(s.pending, telemetry.Line{Label: label, Value: value})
}

// Update publishes the buffered lines. Nothing is sent when the buffer is empty.
func (s *TelemetrySink) Update() error {
	if len(s.pending) == 0 {
		return nil
	}
	msg := TelemetryMessage{Timestamp: s.now(), Lines: s.pending}
	s.pending = nil
	return s.pub.PublishTelemetry(msg)
}
