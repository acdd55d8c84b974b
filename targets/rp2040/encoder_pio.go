//go:build rp2040

package main

import (
	"errors"
	"machine"

	"macropad/core"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"
)

// Quadrature counter program. X holds the count; every rising edge of A
// moves it up or down depending on B and pushes the new value.
//
//	0: wait 0 pin 0      ; A low
//	1: wait 1 pin 0      ; A rising
//	2: jmp pin 7         ; B high: count down
//	3: mov x, ~x         ; x + 1 == ~(~x - 1)
//	4: jmp x-- 5
//	5: mov x, ~x
//	6: jmp 8
//	7: jmp x-- 8         ; x - 1
//	8: mov isr, x
//	9: push noblock
var quadratureProgram = []uint16{
	0x2020,
	0x20A0,
	0x00C7,
	0xA029,
	0x0045,
	0xA029,
	0x0008,
	0x0048,
	0xA0C1,
	0x8000,
}

// Jumps are absolute, so the program must sit at offset 0
const quadraturePIOOrigin = 0

// pioQuadrature implements core.QuadratureCounter on a PIO0 state machine
type pioQuadrature struct {
	sm   rp2pio.StateMachine
	last uint32
}

var quadratureLoaded bool

var errStateMachineClaimed = errors.New("PIO0 state machine already claimed")

// NewQuadratureCounter starts a counter on PIO0 state machine index.
// A and B need external or encoder-board pull-ups.
func NewQuadratureCounter(index uint8, pinA, pinB core.GPIOPin) (core.QuadratureCounter, error) {
	pio := rp2pio.PIO0
	sm := pio.StateMachine(index)
	if !sm.TryClaim() {
		return nil, errStateMachineClaimed
	}

	// Both state machines run the same program
	if !quadratureLoaded {
		if _, err := pio.AddProgram(quadratureProgram, quadraturePIOOrigin); err != nil {
			return nil, err
		}
		quadratureLoaded = true
	}

	a := machine.Pin(pinA)
	b := machine.Pin(pinB)
	a.Configure(machine.PinConfig{Mode: pio.PinMode()})
	b.Configure(machine.PinConfig{Mode: pio.PinMode()})

	cfg := rp2pio.DefaultStateMachineConfig()
	cfg.SetInPins(a)
	cfg.SetJmpPin(b)
	cfg.SetWrap(quadraturePIOOrigin+uint8(len(quadratureProgram))-1, quadraturePIOOrigin)

	// Slow sampling rejects contact bounce
	cfg.SetClkDivIntFrac(1000, 0)

	sm.Init(quadraturePIOOrigin, cfg)
	sm.SetPindirsConsecutive(a, 1, false)
	sm.SetPindirsConsecutive(b, 1, false)
	sm.SetEnabled(true)

	return &pioQuadrature{sm: sm}, nil
}

// Count drains the RX FIFO and returns the newest value
func (q *pioQuadrature) Count() uint32 {
	for !q.sm.IsRxFIFOEmpty() {
		q.last = q.sm.RxGet()
	}
	return q.last
}
