// Package teleop runs the driver-controlled period of a pushbot match.
//
// An OpMode waits for the start button, then drives the robot from the
// gamepad sticks until the back button is pressed or it is stopped
// externally. Step must be called once per control cycle.
package teleop

import (
	"errors"
	"fmt"
	"log"

	"github.com/sweeney/pushbot-teleop/internal/button"
	"github.com/sweeney/pushbot-teleop/internal/drive"
	"github.com/sweeney/pushbot-teleop/internal/gamepad"
	"github.com/sweeney/pushbot-teleop/internal/telemetry"
)

// Phase is the op mode lifecycle stage.
type Phase string

const (
	PhaseWaiting Phase = "WAITING"
	PhaseRunning Phase = "RUNNING"
	PhaseStopped Phase = "STOPPED"
)

// Control buttons.
const (
	StartButton = gamepad.ButtonStart
	StopButton  = gamepad.ButtonBack
	SlowButton  = gamepad.ButtonA
)

// Options configures an OpMode.
type Options struct {
	// SlowOutput is the drivetrain scale in slow mode.
	SlowOutput float64

	// TelemetryButtons report their state every cycle. Requires a sink.
	TelemetryButtons []gamepad.Button
}

// ButtonCounts tallies edges seen by one reader.
type ButtonCounts struct {
	Presses  int
	Releases int
}

// OpMode owns the gamepad readers and the drivetrain for one session.
// It is not safe for concurrent use.
type OpMode struct {
	pad     *gamepad.Gamepad
	dt      *drive.Differential
	tel     telemetry.Sink
	readers *button.Set
	opts    Options

	phase  Phase
	slow   bool
	cycles int
	counts map[gamepad.Button]*ButtonCounts
}

// New polls the gamepad once and binds one reader per button. tel may be nil.
func New(pad *gamepad.Gamepad, dt *drive.Differential, tel telemetry.Sink, opts Options) (*OpMode, error) {
	if opts.SlowOutput <= 0 || opts.SlowOutput > 1 {
		opts.SlowOutput = 0.5
	}
	if err := pad.Update(); err != nil {
		return nil, fmt.Errorf("initial gamepad update: %w", err)
	}

	reporting := make(map[gamepad.Button]bool, len(opts.TelemetryButtons))
	for _, b := range opts.TelemetryButtons {
		reporting[b] = true
	}

	op := &OpMode{
		pad:     pad,
		dt:      dt,
		tel:     tel,
		readers: button.NewSet(),
		opts:    opts,
		phase:   PhaseWaiting,
		counts:  make(map[gamepad.Button]*ButtonCounts, len(gamepad.Buttons)),
	}

	for _, b := range gamepad.Buttons {
		var ropts []button.Option
		if reporting[b] && tel != nil {
			ropts = append(ropts, button.WithTelemetry(tel))
		}
		r, err := pad.Reader(b, ropts...)
		if err != nil {
			return nil, fmt.Errorf("reader %s: %w", b, err)
		}
		op.readers.Add(string(b), r)
		op.counts[b] = &ButtonCounts{}
	}

	return op, nil
}

// Step runs one control cycle: refresh the gamepad, sample every reader,
// then act on the current phase. A gamepad error skips the cycle. Reader
// errors do not: edges of the readers that sampled are still acted on, and
// the errors are returned joined with any drive error.
func (op *OpMode) Step() error {
	if op.phase == PhaseStopped {
		return nil
	}
	if err := op.pad.Update(); err != nil {
		return fmt.Errorf("update gamepad: %w", err)
	}
	sampleErr := op.readers.SampleAll()
	op.cycles++
	op.tally()

	switch op.phase {
	case PhaseWaiting:
		if op.justPressed(StartButton) {
			op.phase = PhaseRunning
			log.Printf("teleop: started after %d cycles", op.cycles)
		}

	case PhaseRunning:
		if op.justPressed(StopButton) {
			log.Printf("teleop: stop requested")
			return errors.Join(sampleErr, op.Stop())
		}
		if op.justPressed(SlowButton) {
			op.setSlow(!op.slow)
		}
		if err := op.dt.ArcadeDrive(op.pad.LeftY(), op.pad.RightX()); err != nil {
			return errors.Join(sampleErr, fmt.Errorf("drive: %w", err))
		}
	}
	return sampleErr
}

// Stop brakes the drivetrain and ends the session. A braking failure is
// reported to telemetry and returned. Stopping twice is a no-op.
func (op *OpMode) Stop() error {
	if op.phase == PhaseStopped {
		return nil
	}
	op.phase = PhaseStopped

	err := op.dt.Stop(drive.SafetyBrake)
	if err != nil && op.tel != nil {
		op.tel.AddData("Error Thrown", err.Error())
		if uerr := op.tel.Update(); uerr != nil {
			log.Printf("teleop: telemetry update failed: %v", uerr)
		}
	}
	return err
}

// Active reports whether the session has not been stopped.
func (op *OpMode) Active() bool {
	return op.phase != PhaseStopped
}

// Phase returns the lifecycle stage.
func (op *OpMode) Phase() Phase {
	return op.phase
}

// Reader returns the edge reader bound to b.
func (op *OpMode) Reader(b gamepad.Button) (*button.Reader, bool) {
	return op.readers.Get(string(b))
}

func (op *OpMode) justPressed(b gamepad.Button) bool {
	r, ok := op.readers.Get(string(b))
	return ok && op.readers.Sampled(string(b)) && r.WasJustPressed()
}

func (op *OpMode) setSlow(on bool) {
	op.slow = on
	if on {
		op.dt.SetMaxOutput(op.opts.SlowOutput)
	} else {
		op.dt.SetMaxOutput(1)
	}
	log.Printf("teleop: slow mode %v (max output %.2f)", on, op.dt.MaxOutput())
}

func (op *OpMode) tally() {
	for _, b := range gamepad.Buttons {
		if !op.readers.Sampled(string(b)) {
			continue
		}
		r, _ := op.readers.Get(string(b))
		c := op.counts[b]
		if r.WasJustPressed() {
			c.Presses++
		}
		if r.WasJustReleased() {
			c.Releases++
		}
	}
}
