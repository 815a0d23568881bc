package spatial

import (
	"math"

	"github.com/TheBitDrifter/swarm"
)

var _ swarm.SpatialIndex = &CellList{}

// maxCellsPerDimension caps the grid so sparse domains stay cheap.
const maxCellsPerDimension = 1 << 10

// CellList bins particles into a regular grid and wants the table sorted
// by cell, tombstoned particles last. It rebuilds on every notification
// and reports whether the table needs its order applied.
type CellList struct {
	base

	cellsPerDim int
	cellWidth   swarm.Vector
	numCells    int

	// cellStart[c]:cellStart[c+1] spans cell c's rows in rows.
	cellStart []int
	rows      []int
	order     []int
}

func NewCellList() *CellList {
	return &CellList{}
}

func (c *CellList) AddPointsAtEnd(v swarm.View, oldLen int) bool {
	return c.rebuild(v)
}

func (c *CellList) AfterDeleteRange(v swarm.View, start, count int) bool {
	return c.rebuild(v)
}

func (c *CellList) AfterDeleteParticles(v swarm.View) bool {
	return c.rebuild(v)
}

func (c *CellList) UpdatePositions(v swarm.View, numDead int, deadScan []int) bool {
	return c.rebuild(v)
}

func (c *CellList) Ordered() bool {
	return true
}

// Order returns the permutation computed by the last rebuild.
func (c *CellList) Order() []int {
	return c.order
}

func (c *CellList) UpdateIterators(v swarm.View) {
	c.rebuild(v)
}

// CellsPerDimension returns the current grid resolution.
func (c *CellList) CellsPerDimension() int {
	return c.cellsPerDim
}

// rebuild counting-sorts the rows of v by cell into c.rows and c.order and
// reports whether v is out of cell order.
func (c *CellList) rebuild(v swarm.View) bool {
	c.bind(v)
	if !c.set {
		return false
	}
	n := v.Len()
	c.resizeGrid(n)

	dead := c.numCells
	cells := make([]int, n)
	counts := make([]int, c.numCells+2)
	for i := 0; i < n; i++ {
		cell := dead
		if v.Alive(i) {
			cell = c.cellFor(v.Position(i))
		}
		cells[i] = cell
		counts[cell+1]++
	}
	for k := 1; k < len(counts); k++ {
		counts[k] += counts[k-1]
	}
	c.cellStart = counts

	next := make([]int, len(counts))
	copy(next, counts)
	order := make([]int, n)
	sorted := true
	for i, cell := range cells {
		d := next[cell]
		next[cell]++
		order[d] = i
		if d != i {
			sorted = false
		}
	}
	c.order = order
	c.rows = order
	return !sorted
}

func (c *CellList) resizeGrid(n int) {
	dim := c.domain.Dimension
	target := float64(max(1, n/c.leafCapacity))
	per := int(math.Floor(math.Pow(target, 1/float64(dim))))
	per = min(max(1, per), maxCellsPerDimension)

	c.cellsPerDim = per
	c.numCells = 1
	width := c.domain.Width()
	for d := 0; d < dim; d++ {
		c.cellWidth[d] = width[d] / float64(per)
		c.numCells *= per
	}
}

func (c *CellList) cellCoord(x float64, d int) int {
	k := int(math.Floor((x - c.domain.Low[d]) / c.cellWidth[d]))
	return min(max(k, 0), c.cellsPerDim-1)
}

func (c *CellList) cellFor(pos swarm.Vector) int {
	cell := 0
	for d := c.domain.Dimension - 1; d >= 0; d-- {
		cell = cell*c.cellsPerDim + c.cellCoord(pos[d], d)
	}
	return cell
}

// span lists the distinct cell coordinates along d touched by the
// interval [x-r, x+r].
func (c *CellList) span(x, r float64, d int) []int {
	lo := int(math.Floor((x - r - c.domain.Low[d]) / c.cellWidth[d]))
	hi := int(math.Floor((x + r - c.domain.Low[d]) / c.cellWidth[d]))
	if !c.domain.Periodic[d] {
		lo = max(lo, 0)
		hi = min(hi, c.cellsPerDim-1)
		out := make([]int, 0, max(0, hi-lo+1))
		for k := lo; k <= hi; k++ {
			out = append(out, k)
		}
		return out
	}
	if hi-lo+1 >= c.cellsPerDim {
		out := make([]int, c.cellsPerDim)
		for k := range out {
			out[k] = k
		}
		return out
	}
	out := make([]int, 0, hi-lo+1)
	for k := lo; k <= hi; k++ {
		out = append(out, ((k%c.cellsPerDim)+c.cellsPerDim)%c.cellsPerDim)
	}
	return out
}

// Neighbours returns every live particle within radius of centre.
func (c *CellList) Neighbours(centre swarm.Vector, radius float64) ([]Neighbour, error) {
	if err := c.checkView(); err != nil {
		return nil, err
	}
	if !c.set || c.view.Len() == 0 {
		return nil, nil
	}
	dim := c.domain.Dimension
	var spans [swarm.MaxDimensions][]int
	for d := 0; d < swarm.MaxDimensions; d++ {
		if d < dim {
			spans[d] = c.span(centre[d], radius, d)
		} else {
			spans[d] = []int{0}
		}
	}

	var out []Neighbour
	for _, k2 := range spans[2] {
		for _, k1 := range spans[1] {
			for _, k0 := range spans[0] {
				cell := k0 + c.cellsPerDim*(k1+c.cellsPerDim*k2)
				for _, i := range c.rows[c.cellStart[cell]:c.cellStart[cell+1]] {
					if n, ok := c.within(i, centre, radius); ok {
						out = append(out, n)
					}
				}
			}
		}
	}
	return out, nil
}
