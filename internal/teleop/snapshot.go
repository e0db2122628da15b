package teleop

import "github.com/sweeney/pushbot-teleop/internal/gamepad"

// ButtonStatus is the view of one reader after the latest cycle.
type ButtonStatus struct {
	Name     string
	Down     bool
	Presses  int
	Releases int
}

// Snapshot is a point-in-time copy of op mode state.
type Snapshot struct {
	Phase      Phase
	Slow       bool
	Cycles     int
	LeftPower  float64
	RightPower float64
	Buttons    []ButtonStatus
}

// Snapshot copies the current state. Buttons are listed in gamepad order.
func (op *OpMode) Snapshot() Snapshot {
	left, right := op.dt.Powers()
	s := Snapshot{
		Phase:      op.phase,
		Slow:       op.slow,
		Cycles:     op.cycles,
		LeftPower:  left,
		RightPower: right,
		Buttons:    make([]ButtonStatus, 0, len(gamepad.Buttons)),
	}
	for _, b := range gamepad.Buttons {
		r, _ := op.readers.Get(string(b))
		_, curr := r.State()
		c := op.counts[b]
		s.Buttons = append(s.Buttons, ButtonStatus{
			Name:     string(b),
			Down:     curr,
			Presses:  c.Presses,
			Releases: c.Releases,
		})
	}
	return s
}
