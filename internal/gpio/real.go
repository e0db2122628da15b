//go:build linux

package gpio

import (
	"fmt"

	"github.com/sweeney/pushbot-teleop/internal/gamepad"
	"github.com/warthog618/go-gpiocdev"
)

// RealPanel reads buttons from actual hardware using Linux GPIO character device.
type RealPanel struct {
	mapping Mapping
	chip    *gpiocdev.Chip
	lines   map[int]*gpiocdev.Line
}

// NewRealPanel requests one input line per mapped button.
func NewRealPanel(m Mapping) (*RealPanel, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	chip, err := gpiocdev.NewChip("gpiochip0", gpiocdev.WithConsumer("pushbot-teleop"))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	p := &RealPanel{
		mapping: m,
		chip:    chip,
		lines:   make(map[int]*gpiocdev.Line, len(m)),
	}

	// Buttons short the line to ground, so idle must read high.
	for _, b := range m.Buttons() {
		pin := m[b]
		line, err := chip.RequestLine(pin, gpiocdev.AsInput, gpiocdev.WithPullUp)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("request %s pin %d: %w", b, pin, err)
		}
		p.lines[pin] = line
	}

	return p, nil
}

// Poll returns the current button states.
func (p *RealPanel) Poll() (gamepad.State, error) {
	return readPanel(p.mapping, func(pin int) (int, error) {
		return p.lines[pin].Value()
	})
}

// Close releases GPIO resources.
// Reconfigures lines to input with pull-down (matching Pi boot defaults)
// before closing.
func (p *RealPanel) Close() error {
	var errs []error

	for _, b := range p.mapping.Buttons() {
		line, ok := p.lines[p.mapping[b]]
		if !ok {
			continue
		}
		if err := line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure %s pin: %w", b, err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s pin: %w", b, err))
		}
	}
	if p.chip != nil {
		if err := p.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
