package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sweeney/pushbot-teleop/internal/config"
	"github.com/sweeney/pushbot-teleop/internal/gamepad"
	"github.com/sweeney/pushbot-teleop/internal/gpio"
	"github.com/sweeney/pushbot-teleop/internal/mqtt"
)

// newPanel opens the GPIO panel. Tests replace it with a fake.
var newPanel = func(m gpio.Mapping) (gpio.Panel, error) {
	return gpio.NewRealPanel(m)
}

// errInterrupted is returned when a signal arrives before the source is ready.
var errInterrupted = errors.New("interrupted while waiting for gamepad")

// openSource returns the gamepad source selected by kind and a func that
// releases it. pub is required for the mqtt source.
func openSource(kind string, cfg config.Config, pub *mqtt.RealPublisher) (gamepad.Source, func(), error) {
	switch kind {
	case "gpio":
		m, err := cfg.Mapping()
		if err != nil {
			return nil, nil, err
		}
		panel, err := newPanel(m)
		if err != nil {
			return nil, nil, fmt.Errorf("init gpio: %w", err)
		}
		return panel, func() { panel.Close() }, nil

	case "mqtt":
		if pub == nil {
			return nil, nil, errors.New("input mqtt requires -broker")
		}
		remote := mqtt.NewRemoteGamepad(cfg.StaleAfter, time.Now)
		if err := pub.SubscribeGamepad(remote); err != nil {
			return nil, nil, fmt.Errorf("subscribe gamepad: %w", err)
		}
		return remote, func() {}, nil

	case "sim":
		return gamepad.NewFakeSource(simScript()), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown input %q", kind)
	}
}

// waitForSource polls src every interval until it yields a snapshot.
// Remote gamepads have nothing to report until the driver station connects.
func waitForSource(src gamepad.Source, interval time.Duration, sig <-chan os.Signal) error {
	_, err := src.Poll()
	if err == nil {
		return nil
	}
	log.Printf("waiting for gamepad: %v", err)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case s := <-sig:
			log.Printf("received %v while waiting for gamepad", s)
			return errInterrupted
		case <-ticker.C:
			if _, err := src.Poll(); err == nil {
				log.Printf("gamepad ready")
				return nil
			}
		}
	}
}

// simScript presses start, drives a short arc with one slow mode toggle,
// then holds still until interrupted. waitForSource consumes the first
// snapshot.
func simScript() []gamepad.State {
	idle := gamepad.Press()
	var script []gamepad.State
	for i := 0; i < 5; i++ {
		script = append(script, idle)
	}
	script = append(script, gamepad.Press(gamepad.ButtonStart), idle)

	forward := gamepad.State{Pressed: map[gamepad.Button]bool{}, LeftY: -0.8, RightX: 0.2}
	for i := 0; i < 50; i++ {
		script = append(script, forward)
	}
	slow := forward
	slow.Pressed = map[gamepad.Button]bool{gamepad.ButtonA: true}
	script = append(script, slow)
	for i := 0; i < 50; i++ {
		script = append(script, forward)
	}
	return append(script, idle)
}
