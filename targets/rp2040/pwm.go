//go:build rp2040 || rp2350

package main

import (
	"errors"
	"machine"

	"macropad/core"
)

// PWM_MAX is the duty range exposed to the core
const PWM_MAX = 255

var errSliceMismatch = errors.New("motor and ground pins must share a PWM slice")

// pwmPeripheral is an interface for PWM hardware peripherals
// This abstracts over TinyGo's unexported *pwmGroup type
type pwmPeripheral interface {
	Configure(config machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	Top() uint32
	Set(channel uint8, value uint32)
}

// pwmChannel implements core.PWMOutput for one channel of a slice.
// Disable holds the output low; the slice itself keeps running.
type pwmChannel struct {
	pwm     pwmPeripheral
	channel uint8
	duty    uint32
	enabled bool
}

// NewMotorChannels configures the slice shared by the motor and its ground
// pin at the given period and returns both channels, initially off
func NewMotorChannels(motorPin, groundPin core.GPIOPin, periodNs uint64) (core.PWMOutput, core.PWMOutput, error) {
	// GPIO N maps to slice (N >> 1) & 0x7, channel N & 1
	slice := uint8((motorPin >> 1) & 0x7)
	if uint8((groundPin>>1)&0x7) != slice {
		return nil, nil, errSliceMismatch
	}

	pwm := getPWMPeripheral(slice)
	if err := pwm.Configure(machine.PWMConfig{Period: periodNs}); err != nil {
		return nil, nil, err
	}

	motor, err := newPWMChannel(pwm, motorPin)
	if err != nil {
		return nil, nil, err
	}
	ground, err := newPWMChannel(pwm, groundPin)
	if err != nil {
		return nil, nil, err
	}
	// The ground side only ever sits at zero, so keep it driven
	ground.Enable()
	return motor, ground, nil
}

func newPWMChannel(pwm pwmPeripheral, pin core.GPIOPin) (*pwmChannel, error) {
	channel, err := pwm.Channel(machine.Pin(pin))
	if err != nil {
		return nil, err
	}
	pwm.Set(channel, 0)
	return &pwmChannel{pwm: pwm, channel: channel}, nil
}

// MaxDuty returns the maximum duty value (255)
func (c *pwmChannel) MaxDuty() uint32 {
	return PWM_MAX
}

// SetDuty sets the duty cycle; 0 is off and PWM_MAX is fully on
func (c *pwmChannel) SetDuty(value uint32) {
	if value > PWM_MAX {
		value = PWM_MAX
	}
	c.duty = value
	if c.enabled {
		c.apply()
	}
}

// Enable starts driving the channel at the current duty
func (c *pwmChannel) Enable() {
	c.enabled = true
	c.apply()
}

// Disable holds the channel low
func (c *pwmChannel) Disable() {
	c.enabled = false
	c.pwm.Set(c.channel, 0)
}

func (c *pwmChannel) apply() {
	// Scale 0-255 to 0-Top()
	top := c.pwm.Top()
	c.pwm.Set(c.channel, (c.duty*top)/PWM_MAX)
}

// getPWMPeripheral returns the PWM peripheral for a given slice number
func getPWMPeripheral(sliceNum uint8) pwmPeripheral {
	switch sliceNum {
	case 0:
		return machine.PWM0
	case 1:
		return machine.PWM1
	case 2:
		return machine.PWM2
	case 3:
		return machine.PWM3
	case 4:
		return machine.PWM4
	case 5:
		return machine.PWM5
	case 6:
		return machine.PWM6
	case 7:
		return machine.PWM7
	default:
		return machine.PWM0
	}
}
