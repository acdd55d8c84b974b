package core

// Change is one cell that changed state since the last drain
type Change struct {
	Coord
	State KeyState
}

// Changes is a one-shot cursor over the changed cells of a Matrix.
// Cells are visited in row-major order starting at (0,0); every cell
// returned by Next has its change flag cleared. Only one Changes may be
// in use at a time, and the matrix must not be updated while it is.
type Changes struct {
	m    *Matrix
	next int
}

// Changes starts a drain of the cells changed since the previous drain
func (m *Matrix) Changes() Changes {
	return Changes{m: m}
}

// Next returns the next changed cell, or false once the grid is exhausted
func (c *Changes) Next() (Change, bool) {
	for c.next < GridSize*GridSize {
		row := uint8(c.next / GridSize)
		col := uint8(c.next % GridSize)
		c.next++

		if c.m.changed[col][row] {
			c.m.changed[col][row] = false
			return Change{
				Coord: Coord{Col: col, Row: row},
				State: c.m.states[col][row],
			}, true
		}
	}
	return Change{}, false
}
