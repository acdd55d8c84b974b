package core

import (
	"errors"
	"fmt"
	"testing"
)

var errPinBroken = errors.New("pin broken")

// fakeKeyboard simulates the switch grid behind a matrix: a row reads low
// when any currently driven-low column has a closed switch on that row.
type fakeKeyboard struct {
	closed   [GridSize][GridSize]bool // [col][row]
	colLevel [GridSize]bool
	readErr  map[Coord]error
	writeErr map[int]error
	log      []string
	delays   []uint32
}

type fakeRow struct {
	kb  *fakeKeyboard
	row int
}

func (r fakeRow) Get() (bool, error) {
	for c := 0; c < GridSize; c++ {
		if r.kb.colLevel[c] {
			continue
		}
		if err, ok := r.kb.readErr[Coord{Col: uint8(c), Row: uint8(r.row)}]; ok {
			return false, err
		}
		if r.kb.closed[c][r.row] {
			return false, nil
		}
	}
	return true, nil
}

type fakeColumn struct {
	kb  *fakeKeyboard
	col int
}

func (c fakeColumn) Set(high bool) error {
	if err, ok := c.kb.writeErr[c.col]; ok {
		return err
	}
	c.kb.colLevel[c.col] = high
	level := 0
	if high {
		level = 1
	}
	c.kb.log = append(c.kb.log, fmt.Sprintf("c%d=%d", c.col, level))
	return nil
}

func (kb *fakeKeyboard) DelayMicroseconds(us uint32) {
	kb.delays = append(kb.delays, us)
	kb.log = append(kb.log, fmt.Sprintf("wait%d", us))
}

// newTestMatrix builds a matrix over a fake keyboard with an empty log
func newTestMatrix(t *testing.T) (*Matrix, *fakeKeyboard) {
	t.Helper()

	kb := &fakeKeyboard{
		readErr:  make(map[Coord]error),
		writeErr: make(map[int]error),
	}

	var rows [GridSize]DigitalInput
	var cols [GridSize]DigitalOutput
	for i := 0; i < GridSize; i++ {
		rows[i] = fakeRow{kb: kb, row: i}
		cols[i] = fakeColumn{kb: kb, col: i}
	}

	m, err := NewMatrix(rows, cols, kb)
	if err != nil {
		t.Fatalf("NewMatrix failed: %v", err)
	}
	kb.log = nil

	return m, kb
}

// drain collects every pending change
func drain(m *Matrix) []Change {
	var out []Change
	changes := m.Changes()
	for ch, ok := changes.Next(); ok; ch, ok = changes.Next() {
		out = append(out, ch)
	}
	return out
}

// fakePWM records every duty value written to it
type fakePWM struct {
	max      uint32
	duty     uint32
	enabled  bool
	duties   []uint32
	enables  int
	disables int
}

func (p *fakePWM) SetDuty(value uint32) {
	p.duty = value
	p.duties = append(p.duties, value)
}

func (p *fakePWM) MaxDuty() uint32 { return p.max }

func (p *fakePWM) Enable() {
	p.enabled = true
	p.enables++
}

func (p *fakePWM) Disable() {
	p.enabled = false
	p.disables++
}

type fakeCounter struct {
	value uint32
	reads int
}

func (c *fakeCounter) Count() uint32 {
	c.reads++
	return c.value
}

type fakeInput struct {
	high bool
	err  error
}

func (i *fakeInput) Get() (bool, error) {
	return i.high, i.err
}

// fakeGPIO is a pin-number based driver
type fakeGPIO struct {
	levels    map[GPIOPin]bool
	outputs   map[GPIOPin]bool
	pullups   map[GPIOPin]bool
	failPins  map[GPIOPin]bool
	configErr error
}

func newFakeGPIO() *fakeGPIO {
	return &fakeGPIO{
		levels:   make(map[GPIOPin]bool),
		outputs:  make(map[GPIOPin]bool),
		pullups:  make(map[GPIOPin]bool),
		failPins: make(map[GPIOPin]bool),
	}
}

func (g *fakeGPIO) ConfigureOutput(pin GPIOPin) error {
	if g.configErr != nil {
		return g.configErr
	}
	g.outputs[pin] = true
	return nil
}

func (g *fakeGPIO) ConfigureInputPullUp(pin GPIOPin) error {
	if g.configErr != nil {
		return g.configErr
	}
	g.pullups[pin] = true
	g.levels[pin] = true
	return nil
}

func (g *fakeGPIO) SetPin(pin GPIOPin, value bool) error {
	if g.failPins[pin] {
		return errPinBroken
	}
	g.levels[pin] = value
	return nil
}

func (g *fakeGPIO) GetPin(pin GPIOPin) (bool, error) {
	if g.failPins[pin] {
		return false, errPinBroken
	}
	return g.levels[pin], nil
}
