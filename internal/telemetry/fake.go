package telemetry

// FakeSink records telemetry for test assertions.
type FakeSink struct {
	// Pending holds lines added since the last Update.
	Pending []Line

	// Flushes contains one entry per Update call with the lines it flushed.
	Flushes [][]Line

	// UpdateError, if set, is returned by Update after recording the flush.
	UpdateError error
}

// NewFakeSink creates an empty FakeSink.
func NewFakeSink() *FakeSink {
	return &FakeSink{}
}

// AddData records a pending line.
func (f *FakeSink) AddData(label, value string) {
	f.Pending = append(f.Pending, Line{Label: label, Value: value})
}

// Update moves pending lines into Flushes.
func (f *FakeSink) Update() error {
	f.Flushes = append(f.Flushes, f.Pending)
	f.Pending = nil
	return f.UpdateError
}

// Lines returns every flushed line in order.
func (f *FakeSink) Lines() []Line {
	var out []Line
	for _, fl := range f.Flushes {
		out = append(out, fl...)
	}
	return out
}

// Reset clears recorded telemetry.
func (f *FakeSink) Reset() {
	f.Pending = nil
	f.Flushes = nil
	f.UpdateError = nil
}
