package button

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sweeney/pushbot-teleop/internal/telemetry"
)

func TestSetSampleAll(t *testing.T) {
	a := NewToggle(false)
	b := NewToggle(true)
	s := NewSet()
	s.Add("a", mustReader(t, a))
	s.Add("b", mustReader(t, b))

	a.Set(true)
	b.Set(false)
	if err := s.SampleAll(); err != nil {
		t.Fatalf("SampleAll: %v", err)
	}

	ra, _ := s.Get("a")
	rb, _ := s.Get("b")
	if !ra.WasJustPressed() {
		t.Error("a: expected rising edge")
	}
	if !rb.WasJustReleased() {
		t.Error("b: expected falling edge")
	}
}

func TestSetNamesOrder(t *testing.T) {
	s := NewSet()
	s.Add("start", mustReader(t, Const(false)))
	s.Add("a", mustReader(t, Const(false)))
	s.Add("back", mustReader(t, Const(false)))
	s.Add("a", mustReader(t, Const(true))) // replace keeps position

	if diff := cmp.Diff([]string{"start", "a", "back"}, s.Names()); diff != "" {
		t.Errorf("Names mismatch (-want +got):\n%s", diff)
	}
	r, _ := s.Get("a")
	if _, curr := r.State(); !curr {
		t.Error("replacement reader not stored")
	}
}

func TestSetGetMissing(t *testing.T) {
	if _, ok := NewSet().Get("nope"); ok {
		t.Error("expected missing reader")
	}
}

func TestSetSampleAllContinuesPastReadError(t *testing.T) {
	readErr := errors.New("line error")
	first := NewToggle(false)
	failing := &scriptSignal{values: []bool{false}, errs: map[int]error{1: readErr}}
	last := NewToggle(false)

	s := NewSet()
	s.Add("first", mustReader(t, first))
	s.Add("failing", mustReader(t, failing))
	s.Add("last", mustReader(t, last))

	first.Set(true)
	last.Set(true)
	err := s.SampleAll()
	if !errors.Is(err, readErr) {
		t.Fatalf("expected wrapped read error, got %v", err)
	}
	if !strings.Contains(err.Error(), "failing") {
		t.Errorf("error should name the reader: %v", err)
	}

	rf, _ := s.Get("first")
	rl, _ := s.Get("last")
	if !rf.WasJustPressed() || !rl.WasJustPressed() {
		t.Error("readers around the failure are still sampled")
	}
	if !s.Sampled("first") || !s.Sampled("last") {
		t.Error("first and last should report sampled")
	}
	if s.Sampled("failing") {
		t.Error("failing reader kept its history and should not report sampled")
	}
}

func TestSetSampleAllJoinsErrors(t *testing.T) {
	errA := errors.New("a gone")
	errB := errors.New("b gone")
	s := NewSet()
	s.Add("a", mustReader(t, &scriptSignal{values: []bool{false}, errs: map[int]error{1: errA}}))
	s.Add("b", mustReader(t, &scriptSignal{values: []bool{false}, errs: map[int]error{1: errB}}))

	err := s.SampleAll()
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Errorf("expected both errors, got %v", err)
	}
}

func TestSetReportFailureStillSampled(t *testing.T) {
	sink := telemetry.NewFakeSink()
	sink.UpdateError = errors.New("publish timeout")
	sig := NewToggle(false)

	s := NewSet()
	s.Add("start", mustReader(t, sig, WithLabel("start"), WithTelemetry(sink)))

	sig.Set(true)
	if err := s.SampleAll(); !errors.Is(err, sink.UpdateError) {
		t.Fatalf("expected update error, got %v", err)
	}
	if !s.Sampled("start") {
		t.Error("a failed report does not undo the shift")
	}
	r, _ := s.Get("start")
	if !r.WasJustPressed() {
		t.Error("expected rising edge despite the report failure")
	}
}

func TestSetSampledRecovers(t *testing.T) {
	readErr := errors.New("glitch")
	s := NewSet()
	s.Add("x", mustReader(t, &scriptSignal{values: []bool{false, false, true}, errs: map[int]error{1: readErr}}))

	if err := s.SampleAll(); !errors.Is(err, readErr) {
		t.Fatalf("expected read error, got %v", err)
	}
	if s.Sampled("x") {
		t.Error("x should not be sampled after a read error")
	}
	if err := s.SampleAll(); err != nil {
		t.Fatalf("SampleAll: %v", err)
	}
	if !s.Sampled("x") {
		t.Error("x should be sampled again after a good read")
	}
	if s.Sampled("missing") {
		t.Error("unknown names are never sampled")
	}
}
