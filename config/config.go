// Package config holds the board wiring and timing of a macropad.
package config

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// Defaults for the reference build
const (
	DefaultPWMPeriodNs  = 2000000 // 500 Hz
	DefaultPulseCycles  = 4
	DefaultLoopPeriodMs = 50
)

// MaxPin is one past the highest GPIO number accepted
const MaxPin = 48

// EncoderConfig wires one rotary encoder
type EncoderConfig struct {
	A      string `json:"a"`
	B      string `json:"b"`
	Button string `json:"button"`
}

// DisplayConfig wires the SPI display
type DisplayConfig struct {
	SCK string `json:"sck"`
	SDO string `json:"sdo"`
	DC  string `json:"dc"`
	RST string `json:"rst"`
	CS  string `json:"cs"`
}

// BoardConfig is the complete board description
type BoardConfig struct {
	Rows         [4]string        `json:"rows"`
	Columns      [4]string        `json:"columns"`
	MotorPin     string           `json:"motor_pin"`
	GroundPin    string           `json:"ground_pin"`
	PWMPeriodNs  uint64           `json:"pwm_period_ns"`
	Encoders     [2]EncoderConfig `json:"encoders"`
	Display      *DisplayConfig   `json:"display,omitempty"`
	PulseCycles  uint16           `json:"pulse_cycles"`
	LoopPeriodMs uint32           `json:"loop_period_ms"`
}

// ValidationError names the offending field of a BoardConfig
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "config: " + e.Field + ": " + e.Reason
}

var ErrInvalidPin = errors.New("invalid pin name")

// LoadConfig parses a JSON board description, fills defaults and validates it
func LoadConfig(jsonData []byte) (*BoardConfig, error) {
	var config BoardConfig

	err := json.Unmarshal(jsonData, &config)
	if err != nil {
		return nil, err
	}

	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// applyDefaults fills in missing timing values
func applyDefaults(config *BoardConfig) {
	if config.PWMPeriodNs == 0 {
		config.PWMPeriodNs = DefaultPWMPeriodNs
	}
	if config.PulseCycles == 0 {
		config.PulseCycles = DefaultPulseCycles
	}
	if config.LoopPeriodMs == 0 {
		config.LoopPeriodMs = DefaultLoopPeriodMs
	}
}

// DefaultConfig returns the reference Raspberry Pi Pico wiring
func DefaultConfig() *BoardConfig {
	return &BoardConfig{
		Rows:      [4]string{"gpio6", "gpio7", "gpio8", "gpio9"},
		Columns:   [4]string{"gpio2", "gpio3", "gpio4", "gpio5"},
		MotorPin:  "gpio14",
		GroundPin: "gpio15",
		Encoders: [2]EncoderConfig{
			{A: "gpio16", B: "gpio17", Button: "gpio18"},
			{A: "gpio19", B: "gpio20", Button: "gpio21"},
		},
		Display: &DisplayConfig{
			SCK: "gpio10",
			SDO: "gpio11",
			DC:  "gpio12",
			RST: "gpio13",
			CS:  "gpio22",
		},
		PWMPeriodNs:  DefaultPWMPeriodNs,
		PulseCycles:  DefaultPulseCycles,
		LoopPeriodMs: DefaultLoopPeriodMs,
	}
}

// ParsePin converts a pin name such as "gpio12" (or plain "12") to its number
func ParsePin(name string) (uint32, error) {
	s := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), "gpio")
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil || n >= MaxPin {
		return 0, ErrInvalidPin
	}
	return uint32(n), nil
}

// Validate checks that every pin is valid and used once, and that the
// timing values are usable
func (c *BoardConfig) Validate() error {
	used := make(map[uint32]string)
	claim := func(field, name string) error {
		pin, err := ParsePin(name)
		if err != nil {
			return &ValidationError{Field: field, Reason: "invalid pin " + strconv.Quote(name)}
		}
		if prev, ok := used[pin]; ok {
			return &ValidationError{Field: field, Reason: "pin " + name + " already used by " + prev}
		}
		used[pin] = field
		return nil
	}

	for i, name := range c.Rows {
		if err := claim("rows["+strconv.Itoa(i)+"]", name); err != nil {
			return err
		}
	}
	for i, name := range c.Columns {
		if err := claim("columns["+strconv.Itoa(i)+"]", name); err != nil {
			return err
		}
	}
	if err := claim("motor_pin", c.MotorPin); err != nil {
		return err
	}
	if err := claim("ground_pin", c.GroundPin); err != nil {
		return err
	}
	for i, enc := range c.Encoders {
		prefix := "encoders[" + strconv.Itoa(i) + "]."
		if err := claim(prefix+"a", enc.A); err != nil {
			return err
		}
		if err := claim(prefix+"b", enc.B); err != nil {
			return err
		}
		if err := claim(prefix+"button", enc.Button); err != nil {
			return err
		}
	}
	if d := c.Display; d != nil {
		for _, p := range []struct{ field, name string }{
			{"display.sck", d.SCK},
			{"display.sdo", d.SDO},
			{"display.dc", d.DC},
			{"display.rst", d.RST},
			{"display.cs", d.CS},
		} {
			if err := claim(p.field, p.name); err != nil {
				return err
			}
		}
	}

	if c.PulseCycles == 0 {
		return &ValidationError{Field: "pulse_cycles", Reason: "must be at least 1"}
	}
	if c.PWMPeriodNs == 0 {
		return &ValidationError{Field: "pwm_period_ns", Reason: "must be positive"}
	}
	if c.LoopPeriodMs == 0 {
		return &ValidationError{Field: "loop_period_ms", Reason: "must be positive"}
	}
	return nil
}
