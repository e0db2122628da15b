package drive

import (
	"log"
	"math"
)

// LogMotor logs power changes instead of driving hardware. It is used when
// the daemon runs in simulation.
type LogMotor struct {
	Name  string
	power float64
}

// NewLogMotor creates a LogMotor.
func NewLogMotor(name string) *LogMotor {
	return &LogMotor{Name: name}
}

// Set logs the new power when it differs from the last one by at least 0.01.
func (m *LogMotor) Set(power float64) error {
	if math.Abs(power-m.power) >= 0.01 {
		log.Printf("motor %s: power %.2f", m.Name, power)
	}
	m.power = power
	return nil
}

// Stop logs the stop.
func (m *LogMotor) Stop(mode Safety) error {
	log.Printf("motor %s: stop %s", m.Name, mode)
	m.power = 0
	return nil
}

// FakeMotor records commands for test assertions.
type FakeMotor struct {
	// Powers contains every power passed to Set.
	Powers []float64

	// Stops contains every mode passed to Stop.
	Stops []Safety

	// SetError, if set, will be returned by Set.
	SetError error

	// StopError, if set, will be returned by Stop.
	StopError error
}

// Set records the power.
func (m *FakeMotor) Set(power float64) error {
	if m.SetError != nil {
		return m.SetError
	}
	m.Powers = append(m.Powers, power)
	return nil
}

// Stop records the mode.
func (m *FakeMotor) Stop(mode Safety) error {
	m.Stops = append(m.Stops, mode)
	return m.StopError
}

// Last returns the most recent power, or 0 if none.
func (m *FakeMotor) Last() float64 {
	if len(m.Powers) == 0 {
		return 0
	}
	return m.Powers[len(m.Powers)-1]
}
