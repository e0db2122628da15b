package mqtt

// FakePublisher records published messages for test assertions.
type FakePublisher struct {
	// SystemEvents contains all system events that were published.
	SystemEvents []SystemEvent

	// SystemPayloads contains the JSON payloads for system events.
	SystemPayloads [][]byte

	// Telemetry contains all telemetry batches that were published.
	Telemetry []TelemetryMessage

	// PublishSystemError, if set, will be returned by PublishSystem.
	PublishSystemError error

	// PublishTelemetryError, if set, will be returned by PublishTelemetry.
	PublishTelemetryError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// PublishSystem records the system event.
func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}

	f.SystemEvents = append(f.SystemEvents, event)

	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemPayloads = append(f.SystemPayloads, payload)

	return nil
}

// PublishTelemetry records the telemetry batch.
func (f *FakePublisher) PublishTelemetry(msg TelemetryMessage) error {
	if f.PublishTelemetryError != nil {
		return f.PublishTelemetryError
	}
	f.Telemetry = append(f.Telemetry, msg)
	return nil
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}

// IsConnected reports whether the fake publisher is "connected".
func (f *FakePublisher) IsConnected() bool {
	return f.Connected
}

// Events returns the names of published system events in order.
func (f *FakePublisher) Events() []string {
	out := make([]string, 0, len(f.SystemEvents))
	for _, e := range f.SystemEvents {
		out = append(out, e.Event)
	}
	return out
}
