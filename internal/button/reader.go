// Package button tracks press and release transitions of a boolean input
// sampled once per control cycle.
//
// A Reader holds exactly two samples: the value seen by the previous call to
// Sample and the value seen by the latest one. Edge queries compare those two
// and never read the input themselves; IsDown always reads it live.
// Changes that happen and revert between two Sample calls are not observed.
package button

import (
	"fmt"

	"github.com/sweeney/pushbot-teleop/internal/telemetry"
)

const (
	valuePressed    = "pressed"
	valueNotPressed = "not pressed"
)

// Reader is a two-sample edge detector over a Signal.
// It is not safe for concurrent use.
type Reader struct {
	signal Signal
	label  string
	sink   telemetry.Sink // nil: no diagnostics

	prev bool
	curr bool

	shifts uint64 // successful samples, lets Set tell a failed read from a failed report
}

// Option configures a Reader.
type Option func(*Reader)

// WithLabel sets the name used in diagnostic lines.
func WithLabel(label string) Option {
	return func(r *Reader) {
		r.label = label
	}
}

// WithTelemetry binds a diagnostic sink. The Reader writes to it but does
// not own it. A nil sink leaves diagnostics disabled.
func WithTelemetry(sink telemetry.Sink) Option {
	return func(r *Reader) {
		r.sink = sink
	}
}

// NewReader binds a Reader to sig and seeds both samples from one read, so
// no transition is reported until the input actually changes.
// A read error is returned unmodified.
func NewReader(sig Signal, opts ...Option) (*Reader, error) {
	if sig == nil {
		panic("button: nil signal")
	}
	r := &Reader{signal: sig}
	for _, opt := range opts {
		opt(r)
	}

	v, err := sig.Read()
	if err != nil {
		return nil, err
	}
	r.prev = v
	r.curr = v
	return r, nil
}

// Sample reads the signal and shifts it into the history. It must be called
// once per control cycle.
//
// If the read fails the error is returned unmodified and the history is left
// as it was. When a sink is bound, the signal is read again after the shift
// and its live value is reported as one line followed by a flush.
func (r *Reader) Sample() error {
	v, err := r.signal.Read()
	if err != nil {
		return err
	}
	r.prev = r.curr
	r.curr = v
	r.shifts++

	if r.sink == nil {
		return nil
	}
	return r.report()
}

// report emits the live state. The live read may disagree with curr if the
// signal changed since the sample above.
func (r *Reader) report() error {
	down, err := r.IsDown()
	if err != nil {
		return err
	}
	value := valueNotPressed
	if down {
		value = valuePressed
	}
	r.sink.AddData(fmt.Sprintf("Button %s state:", r.label), value)
	return r.sink.Update()
}

// IsDown reads the signal now. It does not touch the history.
func (r *Reader) IsDown() (bool, error) {
	return r.signal.Read()
}

// WasJustPressed reports a false to true transition between the last two samples.
func (r *Reader) WasJustPressed() bool {
	return !r.prev && r.curr
}

// WasJustReleased reports a true to false transition between the last two samples.
func (r *Reader) WasJustReleased() bool {
	return r.prev && !r.curr
}

// StateJustChanged reports any transition between the last two samples.
func (r *Reader) StateJustChanged() bool {
	return r.prev != r.curr
}

// State returns the previous and current samples.
func (r *Reader) State() (prev, curr bool) {
	return r.prev, r.curr
}

// Label returns the diagnostic name.
func (r *Reader) Label() string {
	return r.label
}
