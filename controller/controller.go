// Package controller runs the macropad's per-iteration control loop: it
// scans the matrix, steps the vibration pulse, reacts to key edges and
// answers host commands.
package controller

import (
	"errors"

	"macropad/core"
	"macropad/protocol"
)

// Encoder indexes
const (
	EncoderA = 0
	EncoderB = 1
)

// MarkerRadius is the radius of the marker drawn by the marker key. The
// encoder position is the top-left corner of the marker's bounding box.
const MarkerRadius = 8

// Cells with a dedicated reaction. The first column carries the encoder
// and clear keys.
var (
	KeyReportA    = core.Coord{Col: 0, Row: 0}
	KeyReportB    = core.Coord{Col: 0, Row: 1}
	KeyClear      = core.Coord{Col: 0, Row: 2}
	KeyDrawMarker = core.Coord{Col: 2, Row: 2}
)

// Display is the part of the screen the controller draws on
type Display interface {
	Clear() error
	FillCircle(x, y, r int16) error
}

// Link sends reports to the host. protocol.Transport implements it.
type Link interface {
	Send(msgID uint16, args func(output protocol.OutputBuffer)) error
}

// Controller owns the core components and the reaction rules
type Controller struct {
	matrix   *core.Matrix
	vibrator *core.Vibrator
	encoders [2]*core.Encoder
	display  Display
	link     Link

	pulseCycles uint16
	clock       uint32
	events      core.EventRing
	buttons     [2]bool
	lastErr     error
}

// New creates a Controller. display may be nil on boards without a screen.
func New(matrix *core.Matrix, vibrator *core.Vibrator, encoders [2]*core.Encoder,
	display Display, link Link, pulseCycles uint16) (*Controller, error) {
	if matrix == nil || vibrator == nil || link == nil ||
		encoders[EncoderA] == nil || encoders[EncoderB] == nil {
		return nil, core.ErrNilCapability
	}
	return &Controller{
		matrix:      matrix,
		vibrator:    vibrator,
		encoders:    encoders,
		display:     display,
		link:        link,
		pulseCycles: pulseCycles,
	}, nil
}

// Poll runs one loop iteration. A scan failure is reported to the host and
// returned, after the rest of the iteration has run on the partial scan.
func (c *Controller) Poll() error {
	c.clock++

	scanErr := c.matrix.Update()
	if scanErr != nil {
		c.reportScanFault(scanErr)
	}

	wasActive := c.vibrator.Active()
	c.vibrator.Update()
	if wasActive && !c.vibrator.Active() {
		// ran to completion
		c.events.Record(core.EvtPulseStop, c.clock, 0, 0)
	}

	core.Critical(c.drain)

	if err := c.pollButtons(); err != nil && scanErr == nil {
		return err
	}
	return scanErr
}

func (c *Controller) drain() {
	changes := c.matrix.Changes()
	for {
		change, ok := changes.Next()
		if !ok {
			return
		}
		c.events.Record(core.EvtKeyEdge, c.clock,
			uint32(change.Row)*core.GridSize+uint32(change.Col), uint32(change.State))

		if change.State == core.Pressing {
			c.react(change.Coord)
		}
	}
}

// react handles a key that just started closing
func (c *Controller) react(at core.Coord) {
	c.startPulse(c.pulseCycles)

	switch at {
	case KeyReportA:
		c.reportCount(EncoderA)
	case KeyReportB:
		c.reportCount(EncoderB)
	case KeyDrawMarker:
		if c.display != nil {
			x := int16(c.encoders[EncoderA].Count() / 4)
			y := int16(c.encoders[EncoderB].Count() / 4)
			c.note(c.display.FillCircle(x+MarkerRadius, y+MarkerRadius, MarkerRadius))
			core.DebugPrintln("[CTRL] marker at " + itoa(int(x)) + "," + itoa(int(y)))
		}
	case KeyClear:
		c.clearDisplay()
	default:
		c.note(c.link.Send(protocol.MsgKeyState,
			protocol.KeyStateArgs(at.Col, at.Row, uint8(core.Pressing))))
	}
}

func (c *Controller) startPulse(cycles uint16) {
	if c.vibrator.Active() || cycles == 0 {
		return
	}
	c.vibrator.Enable(cycles)
	c.events.Record(core.EvtPulseStart, c.clock, uint32(cycles), 0)
}

// stopPulse cuts an active pulse short
func (c *Controller) stopPulse() {
	if !c.vibrator.Active() {
		return
	}
	left := c.vibrator.Remaining()
	c.vibrator.Disable()
	c.events.Record(core.EvtPulseStop, c.clock, uint32(left), 0)
}

func (c *Controller) clearDisplay() {
	if c.display == nil {
		return
	}
	c.note(c.display.Clear())
	core.DebugPrintln("[CTRL] display cleared")
}

func (c *Controller) reportCount(encoder uint8) {
	c.note(c.link.Send(protocol.MsgEncoderCount,
		protocol.EncoderCountArgs(encoder, c.encoders[encoder].Count())))
}

// pollButtons reports each encoder button on every iteration it is held
func (c *Controller) pollButtons() error {
	var firstErr error
	for i, enc := range c.encoders {
		pressed, err := enc.IsPressed()
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if pressed != c.buttons[i] {
			c.buttons[i] = pressed
			if pressed {
				c.events.Record(core.EvtButton, c.clock, uint32(i), 1)
			}
		}
		if pressed {
			c.note(c.link.Send(protocol.MsgEncoderButton, protocol.EncoderButtonArgs(uint8(i), true)))
		}
	}
	return firstErr
}

func (c *Controller) reportScanFault(err error) {
	var scanErr *core.ScanError
	if !errors.As(err, &scanErr) {
		return
	}
	c.events.Record(core.EvtScanFault, c.clock,
		uint32(scanErr.Col)<<8|uint32(scanErr.Row), uint32(scanErr.Op))
	c.note(c.link.Send(protocol.MsgScanFault,
		protocol.ScanFaultArgs(scanErr.Col, scanErr.Row, uint8(scanErr.Op))))
	core.DebugPrintln("[CTRL] " + err.Error())
}

// note keeps the most recent send or display error for LastError
func (c *Controller) note(err error) {
	if err != nil {
		c.lastErr = err
	}
}

// LastError returns and clears the most recent reporting failure
func (c *Controller) LastError() error {
	err := c.lastErr
	c.lastErr = nil
	return err
}

// Clock returns the number of iterations run so far
func (c *Controller) Clock() uint32 {
	return c.clock
}

// Events returns the controller's event ring
func (c *Controller) Events() *core.EventRing {
	return &c.events
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [12]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
