package button

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sweeney/pushbot-teleop/internal/telemetry"
)

// scriptSignal returns scripted values in order, repeating the last.
// An entry in errs at the same index makes that read fail.
type scriptSignal struct {
	values []bool
	errs   map[int]error
	calls  int
}

func (s *scriptSignal) Read() (bool, error) {
	i := s.calls
	s.calls++
	if err, ok := s.errs[i]; ok {
		return false, err
	}
	if i >= len(s.values) {
		i = len(s.values) - 1
	}
	return s.values[i], nil
}

func mustReader(t *testing.T, sig Signal, opts ...Option) *Reader {
	t.Helper()
	r, err := NewReader(sig, opts...)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	return r
}

func TestNewReaderSeedsBothStates(t *testing.T) {
	for _, v := range []bool{false, true} {
		r := mustReader(t, Const(v))
		prev, curr := r.State()
		if prev != v || curr != v {
			t.Errorf("seed %v: got prev=%v curr=%v", v, prev, curr)
		}
		if r.StateJustChanged() {
			t.Errorf("seed %v: no change expected right after construction", v)
		}
	}
}

func TestNewReaderReadError(t *testing.T) {
	readErr := errors.New("device unplugged")
	sig := SignalFunc(func() (bool, error) { return false, readErr })

	r, err := NewReader(sig)
	if err != readErr {
		t.Errorf("expected unmodified error, got %v", err)
	}
	if r != nil {
		t.Error("expected nil reader on error")
	}
}

func TestNewReaderNilSignalPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for nil signal")
		}
	}()
	NewReader(nil)
}

func TestPressScenario(t *testing.T) {
	sig := NewToggle(false)
	r := mustReader(t, sig)

	down, err := r.IsDown()
	if err != nil || down {
		t.Fatalf("IsDown: got %v, %v", down, err)
	}
	if r.WasJustPressed() {
		t.Error("WasJustPressed should be false after construction")
	}

	sig.Set(true)
	if err := r.Sample(); err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if !r.WasJustPressed() {
		t.Error("expected WasJustPressed after rising edge")
	}
	if r.WasJustReleased() {
		t.Error("WasJustReleased should be false on rising edge")
	}
	if !r.StateJustChanged() {
		t.Error("expected StateJustChanged on rising edge")
	}

	if err := r.Sample(); err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if r.WasJustPressed() {
		t.Error("WasJustPressed should clear while held")
	}
	if r.StateJustChanged() {
		t.Error("StateJustChanged should clear while held")
	}
}

func TestReleaseScenario(t *testing.T) {
	sig := NewToggle(true)
	r := mustReader(t, sig)

	sig.Set(false)
	r.Sample()

	if !r.WasJustReleased() {
		t.Error("expected WasJustReleased after falling edge")
	}
	if r.WasJustPressed() {
		t.Error("WasJustPressed should be false on falling edge")
	}
	if !r.StateJustChanged() {
		t.Error("expected StateJustChanged on falling edge")
	}
}

func TestFlickerBetweenSamplesIsLost(t *testing.T) {
	sig := NewToggle(false)
	r := mustReader(t, sig)

	// Pressed and released again without an intervening Sample
	sig.Set(true)
	sig.Set(false)
	r.Sample()

	prev, curr := r.State()
	if prev || curr {
		t.Errorf("expected net false->false, got prev=%v curr=%v", prev, curr)
	}
	if r.WasJustPressed() || r.WasJustReleased() || r.StateJustChanged() {
		t.Error("flicker between samples must not be reported")
	}
}

func TestHistoryTracksLastTwoSamples(t *testing.T) {
	values := []bool{false, true, true, false, true, false, false, true}
	sig := &scriptSignal{values: values}
	r := mustReader(t, sig) // consumes values[0]

	for n := 1; n < len(values); n++ {
		if err := r.Sample(); err != nil {
			t.Fatalf("sample %d: %v", n, err)
		}
		prev, curr := r.State()
		if curr != values[n] || prev != values[n-1] {
			t.Errorf("sample %d: got prev=%v curr=%v, want prev=%v curr=%v",
				n, prev, curr, values[n-1], values[n])
		}
	}
}

func TestEdgeQueriesAreConsistent(t *testing.T) {
	tests := []struct {
		prev, curr                 bool
		pressed, released, changed bool
	}{
		{false, false, false, false, false},
		{false, true, true, false, true},
		{true, false, false, true, true},
		{true, true, false, false, false},
	}

	for _, tt := range tests {
		sig := NewToggle(tt.prev)
		r := mustReader(t, sig)
		sig.Set(tt.curr)
		r.Sample()

		if r.WasJustPressed() != tt.pressed {
			t.Errorf("%v->%v: WasJustPressed=%v, want %v", tt.prev, tt.curr, r.WasJustPressed(), tt.pressed)
		}
		if r.WasJustReleased() != tt.released {
			t.Errorf("%v->%v: WasJustReleased=%v, want %v", tt.prev, tt.curr, r.WasJustReleased(), tt.released)
		}
		if r.StateJustChanged() != tt.changed {
			t.Errorf("%v->%v: StateJustChanged=%v, want %v", tt.prev, tt.curr, r.StateJustChanged(), tt.changed)
		}
		if r.WasJustPressed() && r.WasJustReleased() {
			t.Errorf("%v->%v: pressed and released are mutually exclusive", tt.prev, tt.curr)
		}
		if (r.WasJustPressed() || r.WasJustReleased()) && !r.StateJustChanged() {
			t.Errorf("%v->%v: an edge implies a change", tt.prev, tt.curr)
		}
	}
}

func TestConstantSignalNeverChanges(t *testing.T) {
	r := mustReader(t, Const(true))
	for i := 0; i < 20; i++ {
		r.Sample()
		if r.StateJustChanged() {
			t.Fatalf("iteration %d: constant signal reported a change", i)
		}
	}
}

func TestSampleErrorLeavesHistory(t *testing.T) {
	readErr := errors.New("bus timeout")
	sig := &scriptSignal{
		values: []bool{false, true, true, false},
		errs:   map[int]error{2: readErr},
	}
	r := mustReader(t, sig) // read 0: false

	r.Sample() // read 1: true
	if !r.WasJustPressed() {
		t.Fatal("expected rising edge before failure")
	}

	err := r.Sample() // read 2 fails
	if err != readErr {
		t.Fatalf("expected unmodified error, got %v", err)
	}
	prev, curr := r.State()
	if prev != false || curr != true {
		t.Errorf("history changed on failed read: prev=%v curr=%v", prev, curr)
	}
	if !r.WasJustPressed() {
		t.Error("edge from the last successful sample should still be visible")
	}

	r.Sample() // read 3: false
	if !r.WasJustReleased() {
		t.Error("expected falling edge after recovery")
	}
}

func TestIsDownReadsLive(t *testing.T) {
	sig := NewToggle(false)
	r := mustReader(t, sig)

	sig.Set(true)
	down, _ := r.IsDown()
	if !down {
		t.Error("IsDown should see the live value")
	}
	if _, curr := r.State(); curr {
		t.Error("IsDown must not update the history")
	}
	if r.WasJustPressed() {
		t.Error("edge queries must not resample")
	}
}

func TestIsDownError(t *testing.T) {
	readErr := errors.New("gone")
	sig := &scriptSignal{values: []bool{true}, errs: map[int]error{1: readErr}}
	r := mustReader(t, sig)

	if _, err := r.IsDown(); err != readErr {
		t.Errorf("expected unmodified error, got %v", err)
	}
}

func TestNoSinkProducesNoOutput(t *testing.T) {
	sink := telemetry.NewFakeSink()
	sig := NewToggle(false)
	mustReader(t, sig, WithLabel("bound"), WithTelemetry(sink))
	r := mustReader(t, sig, WithLabel("a"))

	for i := 0; i < 10; i++ {
		sig.Flip()
		if err := r.Sample(); err != nil {
			t.Fatalf("iteration %d: %v", i, err)
		}
	}
	if !r.StateJustChanged() {
		t.Error("expected the unbound reader to track the signal")
	}
	if len(sink.Flushes) != 0 || len(sink.Pending) != 0 {
		t.Errorf("unbound reader wrote to telemetry: %+v", sink.Flushes)
	}
}

func TestNilSinkOptionIsAbsent(t *testing.T) {
	r := mustReader(t, Const(true), WithTelemetry(nil))
	if err := r.Sample(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSampleReportsToSink(t *testing.T) {
	sink := telemetry.NewFakeSink()
	sig := NewToggle(false)
	r := mustReader(t, sig, WithLabel("a"), WithTelemetry(sink))

	if len(sink.Flushes) != 0 {
		t.Fatal("construction must not emit telemetry")
	}

	r.Sample()
	sig.Set(true)
	r.Sample()

	want := [][]telemetry.Line{
		{{Label: "Button a state:", Value: "not pressed"}},
		{{Label: "Button a state:", Value: "pressed"}},
	}
	if diff := cmp.Diff(want, sink.Flushes); diff != "" {
		t.Errorf("flushes mismatch (-want +got):\n%s", diff)
	}
}

func TestSampleReportsLiveValue(t *testing.T) {
	// The report re-reads the signal: read 0 seeds, read 1 samples, read 2 reports.
	sink := telemetry.NewFakeSink()
	sig := &scriptSignal{values: []bool{false, false, true}}
	r := mustReader(t, sig, WithLabel("x"), WithTelemetry(sink))

	r.Sample()

	if _, curr := r.State(); curr {
		t.Error("captured sample should be false")
	}
	lines := sink.Lines()
	if len(lines) != 1 || lines[0].Value != "pressed" {
		t.Errorf("expected live value reported, got %+v", lines)
	}
}

func TestSampleReportReadError(t *testing.T) {
	readErr := errors.New("flaky")
	sink := telemetry.NewFakeSink()
	sig := &scriptSignal{values: []bool{false, true}, errs: map[int]error{2: readErr}}
	r := mustReader(t, sig, WithTelemetry(sink))

	if err := r.Sample(); err != readErr {
		t.Fatalf("expected report read error, got %v", err)
	}
	if !r.WasJustPressed() {
		t.Error("shift should be committed before the report")
	}
	if len(sink.Flushes) != 0 {
		t.Error("nothing should be flushed when the report read fails")
	}
}

func TestSampleSinkUpdateError(t *testing.T) {
	sink := telemetry.NewFakeSink()
	sink.UpdateError = errors.New("display closed")
	r := mustReader(t, Const(true), WithTelemetry(sink))

	if err := r.Sample(); err == nil {
		t.Error("expected Update error")
	}
}

func TestLabel(t *testing.T) {
	r := mustReader(t, Const(false), WithLabel("start"))
	if r.Label() != "start" {
		t.Errorf("Label: got %q", r.Label())
	}
}
