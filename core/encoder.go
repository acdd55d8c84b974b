package core

// Encoder is a rotary encoder with a push button.
// It caches nothing; every call reads the hardware.
type Encoder struct {
	counter QuadratureCounter
	button  DigitalInput
}

// NewEncoder wraps a quadrature counter and the encoder's button input
func NewEncoder(counter QuadratureCounter, button DigitalInput) (*Encoder, error) {
	if counter == nil || button == nil {
		return nil, ErrNilCapability
	}
	return &Encoder{counter: counter, button: button}, nil
}

// Count returns the raw counter value, wrapping at the counter's width
func (e *Encoder) Count() uint32 {
	return e.counter.Count()
}

// IsPressed reports whether the button is held (input reads low)
func (e *Encoder) IsPressed() (bool, error) {
	high, err := e.button.Get()
	if err != nil {
		return false, asPinError(OpRead, err)
	}
	return !high, nil
}
