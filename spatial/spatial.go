// Package spatial holds neighbour-search indices that plug into a swarm
// table. BruteForce tolerates any row layout; CellList keeps rows sorted
// by cell and asks the table to reorder whenever that order breaks.
package spatial

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/TheBitDrifter/swarm"
)

// ErrStaleView is returned by queries issued after the table relocated rows
// without resynchronizing the index.
var ErrStaleView = eris.New("spatial index holds a stale view of the particles")

// Neighbour is one query hit.
type Neighbour struct {
	Index int
	// Displacement from the query centre to the particle, minimum image.
	Displacement swarm.Vector
	Distance     float64
}

// required lists the columns every index reads through its view.
var required = []swarm.AttributeType{swarm.Position, swarm.Alive}

var requirements = func() swarm.Query {
	q := swarm.Factory.NewQuery()
	q.And(required)
	return q
}()

type base struct {
	domain       swarm.Domain
	leafCapacity int
	set          bool
	view         swarm.View
	// schema already checked against requirements
	schema *swarm.Schema
}

// bind adopts v, checking each new schema once. A schema lacking a
// required column panics with a SchemaViolationError.
func (b *base) bind(v swarm.View) {
	if s := v.Schema(); s != nil && s != b.schema {
		if !requirements.Evaluate(s) {
			s.Require(required...)
		}
		b.schema = s
	}
	b.view = v
}

func (b *base) SetDomain(domain swarm.Domain, leafCapacity int) {
	b.domain = domain
	b.leafCapacity = max(1, leafCapacity)
	b.set = true
}

func (b *base) DomainHasBeenSet() bool {
	return b.set
}

func (b *base) Domain() swarm.Domain {
	return b.domain
}

func (b *base) BeforeDeleteRange(start, count int) {}

func (b *base) BeforeDeleteParticles(deadScan []int) {}

func (b *base) checkView() error {
	if !b.view.Valid() {
		return eris.Wrapf(ErrStaleView, "view generation %d", b.view.Generation())
	}
	return nil
}

// within tests row i against the query ball and returns the hit.
func (b *base) within(i int, centre swarm.Vector, radius float64) (Neighbour, bool) {
	if !b.view.Alive(i) {
		return Neighbour{}, false
	}
	dx := b.domain.CorrectDisplacement(b.view.Position(i).Sub(centre))
	sq := 0.0
	for d := 0; d < b.domain.Dimension; d++ {
		sq += dx[d] * dx[d]
	}
	if sq > radius*radius {
		return Neighbour{}, false
	}
	return Neighbour{Index: i, Displacement: dx, Distance: math.Sqrt(sq)}, true
}
