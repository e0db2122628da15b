// Package config loads the robot description from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/pushbot-teleop/internal/gamepad"
	"github.com/sweeney/pushbot-teleop/internal/gpio"
)

// Config describes the robot wiring and driving behaviour.
type Config struct {
	// Buttons maps gamepad button names to BCM pins for the GPIO panel.
	Buttons map[string]int `yaml:"buttons"`

	Motors Motors `yaml:"motors"`

	// TelemetryButtons lists buttons whose readers report to telemetry
	// every cycle.
	TelemetryButtons []string `yaml:"telemetry_buttons"`

	// SlowOutput is the drivetrain scale while slow mode is on.
	SlowOutput float64 `yaml:"slow_output"`

	// StaleAfter is how long a remote gamepad snapshot stays valid.
	StaleAfter time.Duration `yaml:"stale_after"`
}

// Motors names the drivetrain outputs.
type Motors struct {
	Left          string `yaml:"left"`
	Right         string `yaml:"right"`
	RightInverted bool   `yaml:"right_inverted"`
}

// Default returns the stock pushbot configuration.
func Default() Config {
	buttons := make(map[string]int, len(gpio.DefaultMapping))
	for b, pin := range gpio.DefaultMapping {
		buttons[string(b)] = pin
	}
	return Config{
		Buttons: buttons,
		Motors: Motors{
			Left:          "left",
			Right:         "right",
			RightInverted: true,
		},
		SlowOutput: 0.5,
		StaleAfter: 500 * time.Millisecond,
	}
}

// Load reads the YAML file at path over the defaults. An empty path
// returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
// Keys absent from the document keep their default. A buttons section
// replaces the default mapping entirely rather than merging into it.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	defaults := cfg.Buttons
	cfg.Buttons = nil

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Buttons == nil {
		cfg.Buttons = defaults
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks button names, pins and ranges.
func (c Config) Validate() error {
	if _, err := c.Mapping(); err != nil {
		return err
	}
	if _, err := c.Telemetry(); err != nil {
		return err
	}
	if c.SlowOutput <= 0 || c.SlowOutput > 1 {
		return fmt.Errorf("slow_output must be in (0, 1], got %v", c.SlowOutput)
	}
	if c.StaleAfter < 0 {
		return fmt.Errorf("stale_after must not be negative, got %v", c.StaleAfter)
	}
	return nil
}

// Mapping converts the buttons section to a GPIO mapping.
func (c Config) Mapping() (gpio.Mapping, error) {
	m := make(gpio.Mapping, len(c.Buttons))
	for name, pin := range c.Buttons {
		b, err := gamepad.ParseButton(name)
		if err != nil {
			return nil, fmt.Errorf("buttons: %w", err)
		}
		m[b] = pin
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("buttons: %w", err)
	}
	return m, nil
}

// Telemetry returns the buttons that report to telemetry.
func (c Config) Telemetry() ([]gamepad.Button, error) {
	out := make([]gamepad.Button, 0, len(c.TelemetryButtons))
	for _, name := range c.TelemetryButtons {
		b, err := gamepad.ParseButton(name)
		if err != nil {
			return nil, fmt.Errorf("telemetry_buttons: %w", err)
		}
		out = append(out, b)
	}
	return out, nil
}
