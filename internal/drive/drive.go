// Package drive provides a differential drivetrain over abstract motors.
package drive

import (
	"errors"
	"fmt"
	"math"
)

// Safety selects how a motor comes to rest.
type Safety string

const (
	SafetyBrake   Safety = "BRAKE"    // short the windings, stop immediately
	SafetySwift   Safety = "SWIFT"    // cut power and coast
	SafetyEaseOff Safety = "EASE_OFF" // ramp power down
)

// Motor is one powered output.
type Motor interface {
	// Set applies power in [-1, 1].
	Set(power float64) error

	// Stop halts the motor using the given mode.
	Stop(mode Safety) error
}

// Differential drives a left and right motor bank.
type Differential struct {
	left, right   Motor
	maxOutput     float64
	rightInverted bool

	leftPower, rightPower float64
}

// NewDifferential creates a drivetrain at full output with the right side
// inverted, which is how the motors are mounted on a pushbot.
func NewDifferential(left, right Motor) *Differential {
	return &Differential{
		left:          left,
		right:         right,
		maxOutput:     1,
		rightInverted: true,
	}
}

// SetMaxOutput scales every subsequent command. Values are clamped to [0, 1].
func (d *Differential) SetMaxOutput(max float64) {
	d.maxOutput = clamp(max, 0, 1)
}

// MaxOutput returns the current output scale.
func (d *Differential) MaxOutput() float64 {
	return d.maxOutput
}

// SetRightInverted controls whether right-side power is negated.
func (d *Differential) SetRightInverted(inverted bool) {
	d.rightInverted = inverted
}

// ArcadeDrive mixes a forward and turn command, each in [-1, 1].
// The mix is normalized so neither side exceeds full power.
func (d *Differential) ArcadeDrive(forward, turn float64) error {
	forward = clamp(forward, -1, 1)
	turn = clamp(turn, -1, 1)

	left := forward + turn
	right := forward - turn
	if m := math.Max(math.Abs(left), math.Abs(right)); m > 1 {
		left /= m
		right /= m
	}

	return d.apply(left*d.maxOutput, right*d.maxOutput)
}

// Powers returns the last left and right commands as seen from the robot,
// before right-side inversion.
func (d *Differential) Powers() (left, right float64) {
	return d.leftPower, d.rightPower
}

// Stop halts both sides. Both motors are always asked to stop.
func (d *Differential) Stop(mode Safety) error {
	var errs []error
	if err := d.left.Stop(mode); err != nil {
		errs = append(errs, fmt.Errorf("stop left: %w", err))
	}
	if err := d.right.Stop(mode); err != nil {
		errs = append(errs, fmt.Errorf("stop right: %w", err))
	}
	d.leftPower, d.rightPower = 0, 0
	return errors.Join(errs...)
}

func (d *Differential) apply(left, right float64) error {
	out := right
	if d.rightInverted {
		out = -right
	}
	if err := d.left.Set(left); err != nil {
		return fmt.Errorf("set left: %w", err)
	}
	if err := d.right.Set(out); err != nil {
		return fmt.Errorf("set right: %w", err)
	}
	d.leftPower, d.rightPower = left, right
	return nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
