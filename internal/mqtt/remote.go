package mqtt

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sweeney/pushbot-teleop/internal/gamepad"
)

// ErrStale is returned when no gamepad snapshot arrived recently enough.
var ErrStale = errors.New("mqtt: gamepad state is stale")

// GamepadPayload is the driver station's JSON message.
type GamepadPayload struct {
	Gamepad GamepadPayloadInner `json:"gamepad"`
}

// GamepadPayloadInner holds held buttons and axes.
type GamepadPayloadInner struct {
	Buttons      []string `json:"buttons"`
	LeftX        float64  `json:"left_x"`
	LeftY        float64  `json:"left_y"`
	RightX       float64  `json:"right_x"`
	RightY       float64  `json:"right_y"`
	LeftTrigger  float64  `json:"left_trigger"`
	RightTrigger float64  `json:"right_trigger"`
}

// ParseGamepadPayload decodes a driver station message.
func ParseGamepadPayload(data []byte) (gamepad.State, error) {
	var p GamepadPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return gamepad.State{}, fmt.Errorf("decode gamepad payload: %w", err)
	}

	g := p.Gamepad
	s := gamepad.State{
		Pressed:      make(map[gamepad.Button]bool, len(g.Buttons)),
		LeftX:        g.LeftX,
		LeftY:        g.LeftY,
		RightX:       g.RightX,
		RightY:       g.RightY,
		LeftTrigger:  g.LeftTrigger,
		RightTrigger: g.RightTrigger,
	}
	for _, name := range g.Buttons {
		b, err := gamepad.ParseButton(name)
		if err != nil {
			return gamepad.State{}, err
		}
		s.Pressed[b] = true
	}
	return s, nil
}

// RemoteGamepad caches the latest driver station snapshot. Handle is called
// from the MQTT client goroutine; Poll from the control loop.
type RemoteGamepad struct {
	staleAfter time.Duration
	now        func() time.Time

	mu       sync.Mutex
	state    gamepad.State
	received time.Time
	has      bool
}

// NewRemoteGamepad creates an empty cache. A staleAfter of 0 never expires.
func NewRemoteGamepad(staleAfter time.Duration, now func() time.Time) *RemoteGamepad {
	if now == nil {
		now = time.Now
	}
	return &RemoteGamepad{staleAfter: staleAfter, now: now}
}

// Handle decodes and stores one message. Invalid messages leave the cache untouched.
func (r *RemoteGamepad) Handle(payload []byte) error {
	s, err := ParseGamepadPayload(payload)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.state = s
	r.received = r.now()
	r.has = true
	r.mu.Unlock()
	return nil
}

// Poll returns the cached snapshot, or ErrStale if none is fresh.
func (r *RemoteGamepad) Poll() (gamepad.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.has {
		return gamepad.State{}, ErrStale
	}
	if r.staleAfter > 0 && r.now().Sub(r.received) > r.staleAfter {
		return gamepad.State{}, ErrStale
	}
	return r.state, nil
}
