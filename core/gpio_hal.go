package core

// GPIOPin identifies a hardware GPIO pin number
type GPIOPin uint32

// NoPin marks an error that did not come from a numbered pin
const NoPin GPIOPin = 0xFFFFFFFF

// GPIODriver is the pin-number based GPIO interface a board provides.
// Platform-specific implementations handle actual hardware control.
type GPIODriver interface {
	// ConfigureOutput configures a pin as a digital output
	ConfigureOutput(pin GPIOPin) error

	// ConfigureInputPullUp configures a pin as a digital input with pull-up resistor
	ConfigureInputPullUp(pin GPIOPin) error

	// SetPin sets the pin to high (true) or low (false)
	SetPin(pin GPIOPin, value bool) error

	// GetPin reads the current pin level (true = high)
	GetPin(pin GPIOPin) (bool, error)
}

// DigitalInput reads the electrical level of a single pin.
// true means the pin reads high.
type DigitalInput interface {
	Get() (bool, error)
}

// DigitalOutput drives a single pin high (true) or low (false).
type DigitalOutput interface {
	Set(high bool) error
}

// Delayer blocks the caller for a short, fixed time.
type Delayer interface {
	DelayMicroseconds(us uint32)
}

// QuadratureCounter is a hardware (or interrupt driven) rotary counter.
// The value wraps at the counter's native width.
type QuadratureCounter interface {
	Count() uint32
}
