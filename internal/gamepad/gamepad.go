// Package gamepad caches one controller snapshot per control cycle and
// exposes its buttons as button signals.
package gamepad

import (
	"errors"
	"fmt"
	"sort"

	"github.com/sweeney/pushbot-teleop/internal/button"
)

// Button names a digital control on the gamepad.
type Button string

const (
	ButtonA          Button = "a"
	ButtonB          Button = "b"
	ButtonX          Button = "x"
	ButtonY          Button = "y"
	DpadUp           Button = "dpad_up"
	DpadDown         Button = "dpad_down"
	DpadLeft         Button = "dpad_left"
	DpadRight        Button = "dpad_right"
	LeftBumper       Button = "left_bumper"
	RightBumper      Button = "right_bumper"
	ButtonBack       Button = "back"
	ButtonStart      Button = "start"
	LeftStickButton  Button = "left_stick_button"
	RightStickButton Button = "right_stick_button"
)

// Buttons lists every known button.
var Buttons = []Button{
	ButtonA, ButtonB, ButtonX, ButtonY,
	DpadUp, DpadDown, DpadLeft, DpadRight,
	LeftBumper, RightBumper,
	ButtonBack, ButtonStart,
	LeftStickButton, RightStickButton,
}

// ParseButton returns the Button with the given name.
func ParseButton(name string) (Button, error) {
	for _, b := range Buttons {
		if string(b) == name {
			return b, nil
		}
	}
	return "", fmt.Errorf("unknown button %q", name)
}

// ErrNoState is returned when a button is read before the first Update.
var ErrNoState = errors.New("gamepad: no state")

// State is one controller snapshot. Sticks are raw device values in [-1, 1]
// with positive Y pointing down, as controllers report them.
type State struct {
	Pressed      map[Button]bool
	LeftX        float64
	LeftY        float64
	RightX       float64
	RightY       float64
	LeftTrigger  float64
	RightTrigger float64
}

// PressedNames returns the names of held buttons, sorted.
func (s State) PressedNames() []string {
	var out []string
	for b, on := range s.Pressed {
		if on {
			out = append(out, string(b))
		}
	}
	sort.Strings(out)
	return out
}

// Source produces controller snapshots.
type Source interface {
	Poll() (State, error)
}

// Gamepad holds the snapshot for the current cycle.
type Gamepad struct {
	src   Source
	state State
	valid bool
}

// New creates a Gamepad over src. Call Update before reading it.
func New(src Source) *Gamepad {
	return &Gamepad{src: src}
}

// Update polls the source once. On error the previous snapshot is kept.
func (g *Gamepad) Update() error {
	s, err := g.src.Poll()
	if err != nil {
		return err
	}
	g.state = s
	g.valid = true
	return nil
}

// State returns the cached snapshot.
func (g *Gamepad) State() State {
	return g.state
}

// Button reports whether b is held in the cached snapshot.
func (g *Gamepad) Button(b Button) (bool, error) {
	if !g.valid {
		return false, ErrNoState
	}
	return g.state.Pressed[b], nil
}

// LeftX returns the left stick horizontal axis.
func (g *Gamepad) LeftX() float64 { return g.state.LeftX }

// LeftY returns the left stick vertical axis, positive forward.
func (g *Gamepad) LeftY() float64 { return -g.state.LeftY }

// RightX returns the right stick horizontal axis.
func (g *Gamepad) RightX() float64 { return g.state.RightX }

// RightY returns the right stick vertical axis, positive forward.
func (g *Gamepad) RightY() float64 { return -g.state.RightY }

// ButtonSignal exposes one gamepad button as a button.Signal.
func ButtonSignal(g *Gamepad, b Button) button.Signal {
	return button.SignalFunc(func() (bool, error) {
		return g.Button(b)
	})
}

// Reader builds an edge reader for b, labeled with the button name unless
// opts set another label.
func (g *Gamepad) Reader(b Button, opts ...button.Option) (*button.Reader, error) {
	opts = append([]button.Option{button.WithLabel(string(b))}, opts...)
	return button.NewReader(ButtonSignal(g, b), opts...)
}
