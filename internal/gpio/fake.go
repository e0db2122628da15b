package gpio

import (
	"errors"
	"fmt"

	"github.com/sweeney/pushbot-teleop/internal/gamepad"
)

// FakePanel is a test double that returns scripted raw line values.
type FakePanel struct {
	// Mapping assigns pins to buttons.
	Mapping Mapping

	// Samples contains scripted raw values keyed by pin.
	// Each call to Poll() consumes the next sample. Unlisted pins read 1 (released).
	Samples []map[int]int

	// index tracks current position in Samples
	index int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned for every line read.
	ReadError error
}

// NewFakePanel creates a FakePanel with the given mapping and samples.
func NewFakePanel(m Mapping, samples []map[int]int) *FakePanel {
	return &FakePanel{Mapping: m, Samples: samples}
}

// Poll decodes the next scripted sample.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakePanel) Poll() (gamepad.State, error) {
	if len(f.Samples) == 0 {
		return gamepad.State{}, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}

	return readPanel(f.Mapping, func(pin int) (int, error) {
		if f.ReadError != nil {
			return 0, f.ReadError
		}
		v, ok := sample[pin]
		if !ok {
			return 1, nil
		}
		if v != 0 && v != 1 {
			return 0, fmt.Errorf("invalid raw value %d", v)
		}
		return v, nil
	})
}

// Close marks the panel as closed.
func (f *FakePanel) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the panel to the beginning of samples.
func (f *FakePanel) Reset() {
	f.index = 0
	f.Closed = false
}
