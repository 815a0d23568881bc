package swarm

import (
	"iter"
)

var _ iCursor = &Cursor{}

// Cursor walks a table's rows in lock-step across every column, forwards
// or backwards. The table is locked from the first Next until the walk
// ends or Reset is called.
type Cursor struct {
	particles *Particles
	reverse   bool

	// Current iteration state
	set       *columnSet
	rowIndex  int
	remaining int

	initialized bool
	err         error
}

func newCursor(p *Particles, reverse bool) *Cursor {
	return &Cursor{
		particles: p,
		reverse:   reverse,
	}
}

func (c *Cursor) Next() bool {
	if !c.initialized {
		c.initialize()
	}
	if c.rowIndex < c.remaining {
		c.rowIndex++
		return true
	}
	c.Reset()
	return false
}

// Rows yields (index, row) pairs in the cursor's direction.
func (c *Cursor) Rows() iter.Seq2[int, Row] {
	return func(yield func(int, Row) bool) {
		defer c.Reset()
		for c.Next() {
			row := c.Row()
			if !yield(row.index, row) {
				return
			}
		}
	}
}

func (c *Cursor) initialize() {
	if c.initialized {
		return
	}
	c.particles.Lock()
	c.set = c.particles.store.live
	c.remaining = c.set.len()
	c.rowIndex = 0
	c.initialized = true
}

// Reset ends the walk and unlocks the table. Errors from operations queued
// during the walk are kept for Err.
func (c *Cursor) Reset() {
	if !c.initialized {
		return
	}
	c.rowIndex = 0
	c.remaining = 0
	c.set = nil
	c.initialized = false
	if err := c.particles.Unlock(); err != nil {
		c.particles.logger.Error().Err(err).Msg("queued operations failed after iteration")
		if c.err == nil {
			c.err = err
		}
	}
}

// Err returns the first error raised while applying queued operations.
func (c *Cursor) Err() error {
	return c.err
}

// Row returns the row under the cursor.
func (c *Cursor) Row() Row {
	if c.reverse {
		return Row{set: c.set, index: c.remaining - c.rowIndex}
	}
	return Row{set: c.set, index: c.rowIndex - 1}
}

func (c *Cursor) Remaining() int {
	return c.remaining - c.rowIndex
}

// Distance is the number of rows between the ends of the walk.
func (c *Cursor) Distance() int {
	if !c.initialized {
		return c.particles.Len()
	}
	return c.remaining
}

// Rows yields every row front to back.
func (p *Particles) Rows() iter.Seq2[int, Row] {
	return newCursor(p, false).Rows()
}

// Backward yields every row back to front.
func (p *Particles) Backward() iter.Seq2[int, Row] {
	return newCursor(p, true).Rows()
}
