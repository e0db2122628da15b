//go:build !linux

package gpio

import (
	"errors"

	"github.com/sweeney/pushbot-teleop/internal/gamepad"
)

// RealPanel is not available on non-Linux platforms.
type RealPanel struct{}

// NewRealPanel returns an error on non-Linux platforms.
func NewRealPanel(m Mapping) (*RealPanel, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// Poll is not implemented on non-Linux platforms.
func (p *RealPanel) Poll() (gamepad.State, error) {
	return gamepad.State{}, errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (p *RealPanel) Close() error {
	return nil
}
