// Key matrix scanning
// Columns are driven low one at a time; rows are pulled high, so a closed
// switch pulls its row low while its column is active.
package core

// GridSize is the number of rows and columns of the key matrix
const GridSize = 4

// SettleMicros is the time a driven column is given before rows are sampled
const SettleMicros = 5

// KeyState is the debounced state of one matrix cell
type KeyState uint8

const (
	Released KeyState = iota
	Pressing
	Pressed
	Releasing
)

func (s KeyState) String() string {
	switch s {
	case Released:
		return "released"
	case Pressing:
		return "pressing"
	case Pressed:
		return "pressed"
	case Releasing:
		return "releasing"
	default:
		return "invalid"
	}
}

// next returns the state that follows s after one reading.
// Pressing and Releasing last a single scan: a stable reading confirms
// them, a flicker bounces them to the opposite transient.
func (s KeyState) next(closed bool) KeyState {
	switch s {
	case Released:
		if closed {
			return Pressing
		}
	case Pressing:
		if closed {
			return Pressed
		}
		return Releasing
	case Pressed:
		if !closed {
			return Releasing
		}
	case Releasing:
		if closed {
			return Pressing
		}
		return Released
	}
	return s
}

// Coord identifies one switch of the matrix
type Coord struct {
	Col uint8
	Row uint8
}

// Matrix is a debounced GridSize x GridSize key matrix.
// It owns its row and column pins; nothing else may touch them.
type Matrix struct {
	rows    [GridSize]DigitalInput
	columns [GridSize]DigitalOutput
	delay   Delayer

	// Indexed [col][row]
	states  [GridSize][GridSize]KeyState
	changed [GridSize][GridSize]bool
}

// NewMatrix creates a matrix over the given pins and releases every column.
// All cells start Released with no pending changes.
func NewMatrix(rows [GridSize]DigitalInput, columns [GridSize]DigitalOutput, delay Delayer) (*Matrix, error) {
	if delay == nil {
		return nil, ErrNilCapability
	}
	for i := 0; i < GridSize; i++ {
		if rows[i] == nil || columns[i] == nil {
			return nil, ErrNilCapability
		}
	}

	m := &Matrix{
		rows:    rows,
		columns: columns,
		delay:   delay,
	}

	for c, col := range m.columns {
		if err := col.Set(true); err != nil {
			return nil, &ScanError{Col: uint8(c), Op: OpWrite, Err: err}
		}
	}

	return m, nil
}

// Update performs one full scan of the matrix.
// A pin failure aborts the scan and is returned as a *ScanError; cells
// visited before the failure keep their new states.
func (m *Matrix) Update() error {
	for c := 0; c < GridSize; c++ {
		col := m.columns[c]

		if err := col.Set(false); err != nil {
			return &ScanError{Col: uint8(c), Op: OpWrite, Err: err}
		}

		m.delay.DelayMicroseconds(SettleMicros)

		for r := 0; r < GridSize; r++ {
			high, err := m.rows[r].Get()
			if err != nil {
				// Leave no column active; the read failure is what gets reported
				_ = col.Set(true)
				return &ScanError{Col: uint8(c), Row: uint8(r), Op: OpRead, Err: err}
			}
			m.apply(c, r, !high)
		}

		if err := col.Set(true); err != nil {
			return &ScanError{Col: uint8(c), Op: OpWrite, Err: err}
		}
	}
	return nil
}

// apply advances one cell and flags it if its state changed
func (m *Matrix) apply(c, r int, closed bool) {
	prev := m.states[c][r]
	next := prev.next(closed)
	if next != prev {
		m.states[c][r] = next
		m.changed[c][r] = true
	}
}

// State returns the current state of one cell without consuming its change
func (m *Matrix) State(at Coord) KeyState {
	return m.states[at.Col][at.Row]
}

// States returns a copy of every cell state, indexed [col][row]
func (m *Matrix) States() [GridSize][GridSize]KeyState {
	return m.states
}

// Pending returns the number of cells with an undrained change
func (m *Matrix) Pending() int {
	n := 0
	for c := range m.changed {
		for r := range m.changed[c] {
			if m.changed[c][r] {
				n++
			}
		}
	}
	return n
}
