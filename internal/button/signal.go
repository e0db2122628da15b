package button

// Signal is a boolean input that can be read on demand.
// Reading must not mutate any Reader state.
type Signal interface {
	Read() (bool, error)
}

// SignalFunc adapts a function to a Signal.
type SignalFunc func() (bool, error)

// Read calls f.
func (f SignalFunc) Read() (bool, error) {
	return f()
}

// Const is a Signal with a fixed value.
type Const bool

// Read returns the constant.
func (c Const) Read() (bool, error) {
	return bool(c), nil
}

// Toggle is a settable simulated Signal.
type Toggle struct {
	on bool
}

// NewToggle creates a Toggle with the given initial value.
func NewToggle(on bool) *Toggle {
	return &Toggle{on: on}
}

// Read returns the current value.
func (t *Toggle) Read() (bool, error) {
	return t.on, nil
}

// Set changes the value.
func (t *Toggle) Set(on bool) {
	t.on = on
}

// Flip inverts the value.
func (t *Toggle) Flip() {
	t.on = !t.on
}

// Not inverts s.
func Not(s Signal) Signal {
	return SignalFunc(func() (bool, error) {
		v, err := s.Read()
		if err != nil {
			return false, err
		}
		return !v, nil
	})
}

// Any is true when at least one operand is true. Every operand is read so
// a failing operand is reported even when an earlier one is true.
func Any(signals ...Signal) Signal {
	return SignalFunc(func() (bool, error) {
		out := false
		for _, s := range signals {
			v, err := s.Read()
			if err != nil {
				return false, err
			}
			out = out || v
		}
		return out, nil
	})
}

// All is true when every operand is true. All of no operands is true.
func All(signals ...Signal) Signal {
	return SignalFunc(func() (bool, error) {
		out := true
		for _, s := range signals {
			v, err := s.Read()
			if err != nil {
				return false, err
			}
			out = out && v
		}
		return out, nil
	})
}
