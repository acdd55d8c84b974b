package controller

import (
	"errors"
	"testing"

	"macropad/core"
	"macropad/protocol"
)

var errPinBroken = errors.New("pin broken")

// keyboard is a switch grid; a row reads low while a driven-low column
// has a closed switch on it
type keyboard struct {
	closed   [core.GridSize][core.GridSize]bool // [col][row]
	colLevel [core.GridSize]bool
	writeErr map[int]error
}

type row struct {
	kb *keyboard
	r  int
}

func (r row) Get() (bool, error) {
	for c := 0; c < core.GridSize; c++ {
		if !r.kb.colLevel[c] && r.kb.closed[c][r.r] {
			return false, nil
		}
	}
	return true, nil
}

type column struct {
	kb *keyboard
	c  int
}

func (c column) Set(high bool) error {
	if err, ok := c.kb.writeErr[c.c]; ok {
		return err
	}
	c.kb.colLevel[c.c] = high
	return nil
}

func (kb *keyboard) DelayMicroseconds(uint32) {}

func (kb *keyboard) press(c core.Coord)   { kb.closed[c.Col][c.Row] = true }
func (kb *keyboard) release(c core.Coord) { kb.closed[c.Col][c.Row] = false }

type pwm struct {
	duty    uint32
	max     uint32
	enabled bool
}

func (p *pwm) SetDuty(d uint32) { p.duty = d }
func (p *pwm) MaxDuty() uint32  { return p.max }
func (p *pwm) Enable()          { p.enabled = true }
func (p *pwm) Disable()         { p.enabled = false }

type counter struct{ n uint32 }

func (c *counter) Count() uint32 { return c.n }

type button struct {
	high bool
	err  error
}

func (b *button) Get() (bool, error) { return b.high, b.err }

type circle struct{ x, y, r int16 }

type display struct {
	clears  int
	circles []circle
}

func (d *display) Clear() error {
	d.clears++
	d.circles = nil
	return nil
}

func (d *display) FillCircle(x, y, r int16) error {
	d.circles = append(d.circles, circle{x, y, r})
	return nil
}

// link decodes every report it is given
type link struct {
	t    *testing.T
	sent []protocol.Message
}

func (l *link) Send(id uint16, args func(protocol.OutputBuffer)) error {
	out := protocol.NewScratchOutput()
	protocol.EncodeVLQUint(out, uint32(id))
	if args != nil {
		args(out)
	}
	msgs, err := protocol.DecodeMessages(out.Result())
	if err != nil {
		l.t.Fatalf("undecodable report %d: %v", id, err)
	}
	l.sent = append(l.sent, msgs...)
	return nil
}

func (l *link) named(name string) []protocol.Message {
	var out []protocol.Message
	for _, m := range l.sent {
		if m.Name() == name {
			out = append(out, m)
		}
	}
	return out
}

type rig struct {
	ctrl     *Controller
	kb       *keyboard
	motor    *pwm
	counters [2]*counter
	buttons  [2]*button
	display  *display
	link     *link
}

func newRig(t *testing.T) *rig {
	t.Helper()

	r := &rig{
		kb:      &keyboard{writeErr: make(map[int]error)},
		motor:   &pwm{max: 255},
		display: &display{},
		link:    &link{t: t},
	}

	var rows [core.GridSize]core.DigitalInput
	var cols [core.GridSize]core.DigitalOutput
	for i := 0; i < core.GridSize; i++ {
		rows[i] = row{kb: r.kb, r: i}
		cols[i] = column{kb: r.kb, c: i}
	}
	matrix, err := core.NewMatrix(rows, cols, r.kb)
	if err != nil {
		t.Fatalf("NewMatrix: %v", err)
	}

	vib, err := core.NewVibrator(r.motor, &pwm{max: 255})
	if err != nil {
		t.Fatalf("NewVibrator: %v", err)
	}

	var encoders [2]*core.Encoder
	for i := range encoders {
		r.counters[i] = &counter{}
		r.buttons[i] = &button{high: true}
		if encoders[i], err = core.NewEncoder(r.counters[i], r.buttons[i]); err != nil {
			t.Fatalf("NewEncoder: %v", err)
		}
	}

	r.ctrl, err = New(matrix, vib, encoders, r.display, r.link, 4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func (r *rig) poll(t *testing.T) {
	t.Helper()
	if err := r.ctrl.Poll(); err != nil {
		t.Fatalf("Poll: %v", err)
	}
}
