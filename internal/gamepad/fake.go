package gamepad

import "errors"

// FakeSource is a test double that returns scripted snapshots.
type FakeSource struct {
	// States contains scripted snapshots. Each Poll consumes the next one.
	States []State

	// index tracks current position in States
	index int

	// PollError, if set, will be returned by Poll.
	PollError error
}

// NewFakeSource creates a FakeSource with the given snapshots.
func NewFakeSource(states []State) *FakeSource {
	return &FakeSource{States: states}
}

// Press builds a snapshot with the given buttons held and sticks centered.
func Press(buttons ...Button) State {
	s := State{Pressed: make(map[Button]bool, len(buttons))}
	for _, b := range buttons {
		s.Pressed[b] = true
	}
	return s
}

// Poll returns the next scripted snapshot.
// If snapshots are exhausted, returns the last one repeatedly.
func (f *FakeSource) Poll() (State, error) {
	if f.PollError != nil {
		return State{}, f.PollError
	}

	if len(f.States) == 0 {
		return State{}, errors.New("no states configured")
	}

	s := f.States[f.index]
	if f.index < len(f.States)-1 {
		f.index++
	}
	return s, nil
}

// Reset rewinds to the first snapshot.
func (f *FakeSource) Reset() {
	f.index = 0
}
