// Package gpio reads push buttons wired to GPIO lines as a gamepad source.
// The real implementation uses Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

import (
	"fmt"
	"sort"

	"github.com/sweeney/pushbot-teleop/internal/gamepad"
)

// Panel reads button states from GPIO lines.
type Panel interface {
	// Poll returns a snapshot with the mapped buttons filled in.
	// Lines are wired active-low: raw 0 = pressed. Sticks are always centered.
	Poll() (gamepad.State, error)

	// Close releases GPIO resources.
	Close() error
}

// Mapping assigns BCM pin numbers to gamepad buttons.
type Mapping map[gamepad.Button]int

// DefaultMapping is the pushbot's operator panel (BCM numbering).
var DefaultMapping = Mapping{
	gamepad.ButtonStart: 26,
	gamepad.ButtonBack:  16,
	gamepad.ButtonA:     5,
	gamepad.ButtonB:     6,
	gamepad.ButtonX:     13,
	gamepad.ButtonY:     19,
}

// Buttons returns the mapped buttons ordered by pin.
func (m Mapping) Buttons() []gamepad.Button {
	out := make([]gamepad.Button, 0, len(m))
	for b := range m {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return m[out[i]] < m[out[j]] })
	return out
}

// Validate rejects negative pins and pins shared by two buttons.
func (m Mapping) Validate() error {
	seen := make(map[int]gamepad.Button, len(m))
	for _, b := range m.Buttons() {
		pin := m[b]
		if pin < 0 {
			return fmt.Errorf("button %s: invalid pin %d", b, pin)
		}
		if other, ok := seen[pin]; ok {
			return fmt.Errorf("pin %d assigned to both %s and %s", pin, other, b)
		}
		seen[pin] = b
	}
	return nil
}

// readPanel builds a snapshot from raw line values.
func readPanel(m Mapping, value func(pin int) (int, error)) (gamepad.State, error) {
	s := gamepad.State{Pressed: make(map[gamepad.Button]bool, len(m))}
	for _, b := range m.Buttons() {
		raw, err := value(m[b])
		if err != nil {
			return gamepad.State{}, fmt.Errorf("read %s pin %d: %w", b, m[b], err)
		}
		// Invert: raw active (1) = released, raw inactive (0) = pressed
		s.Pressed[b] = raw == 0
	}
	return s, nil
}
