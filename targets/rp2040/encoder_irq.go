//go:build rp2350

package main

import (
	"machine"

	"macropad/core"

	"tinygo.org/x/drivers/encoders"
)

// irqQuadrature implements core.QuadratureCounter with pin-change interrupts
type irqQuadrature struct {
	dev *encoders.QuadratureDevice
}

// NewQuadratureCounter attaches an interrupt-driven decoder to A and B.
// index is unused; every encoder gets its own interrupt handlers.
func NewQuadratureCounter(index uint8, pinA, pinB core.GPIOPin) (core.QuadratureCounter, error) {
	dev := encoders.NewQuadratureViaInterrupt(machine.Pin(pinA), machine.Pin(pinB))
	if err := dev.Configure(encoders.QuadratureConfig{Precision: 1}); err != nil {
		return nil, err
	}
	return &irqQuadrature{dev: dev}, nil
}

// Count returns the position reinterpreted as a wrapping counter
func (q *irqQuadrature) Count() uint32 {
	return uint32(int32(q.dev.Position()))
}
