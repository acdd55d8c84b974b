package core

// InputPin binds one pin of a GPIODriver to the DigitalInput capability.
type InputPin struct {
	driver GPIODriver
	pin    GPIOPin
}

// NewInputPin configures pin as a pulled-up input and returns its binding.
// Rows and buttons idle high and are pulled low when a switch closes.
func NewInputPin(driver GPIODriver, pin GPIOPin) (*InputPin, error) {
	if err := driver.ConfigureInputPullUp(pin); err != nil {
		return nil, &PinError{Op: OpConfigure, Pin: pin, Err: err}
	}
	return &InputPin{driver: driver, pin: pin}, nil
}

// Get reads the pin level
func (p *InputPin) Get() (bool, error) {
	value, err := p.driver.GetPin(p.pin)
	if err != nil {
		return false, &PinError{Op: OpRead, Pin: p.pin, Err: err}
	}
	return value, nil
}

// OutputPin binds one pin of a GPIODriver to the DigitalOutput capability.
type OutputPin struct {
	driver GPIODriver
	pin    GPIOPin
}

// NewOutputPin configures pin as an output and drives it to initial.
func NewOutputPin(driver GPIODriver, pin GPIOPin, initial bool) (*OutputPin, error) {
	if err := driver.ConfigureOutput(pin); err != nil {
		return nil, &PinError{Op: OpConfigure, Pin: pin, Err: err}
	}
	p := &OutputPin{driver: driver, pin: pin}
	if err := p.Set(initial); err != nil {
		return nil, err
	}
	return p, nil
}

// Set drives the pin
func (p *OutputPin) Set(high bool) error {
	if err := p.driver.SetPin(p.pin, high); err != nil {
		return &PinError{Op: OpWrite, Pin: p.pin, Err: err}
	}
	return nil
}
