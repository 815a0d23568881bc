package swarm

import "iter"

// SpatialIndex is the neighbour-search structure a table keeps in sync.
// It never owns particle storage: it holds a View that Particles refreshes
// after every relocation.
type SpatialIndex interface {
	SetDomain(domain Domain, leafCapacity int)
	DomainHasBeenSet() bool
	Domain() Domain

	// AddPointsAtEnd is told rows [oldLen, v.Len()) were appended and
	// reports whether the index now needs Order applied.
	AddPointsAtEnd(v View, oldLen int) bool

	// BeforeDeleteRange runs before rows [start, start+count) are removed;
	// AfterDeleteRange runs once they are gone.
	BeforeDeleteRange(start, count int)
	AfterDeleteRange(v View, start, count int) bool

	// BeforeDeleteParticles receives the exclusive scan of dead rows over
	// the current (pre-compaction) indices; AfterDeleteParticles runs once
	// they have been dropped.
	BeforeDeleteParticles(deadScan []int)
	AfterDeleteParticles(v View) bool

	// UpdatePositions runs after positions changed in place. numDead rows
	// are tombstoned; deadScan is as for BeforeDeleteParticles.
	UpdatePositions(v View, numDead int, deadScan []int) bool

	// Ordered reports whether surviving rows must keep their relative order.
	Ordered() bool
	// Order is the gather permutation the index wants applied.
	Order() []int
	UpdateIterators(v View)
}

// Operator is the read-only face pairwise kernels consume.
type Operator interface {
	Len() int
	Schema() *Schema
	CorrectDisplacement(dx Vector) Vector
}

type iCursor interface {
	Rows() iter.Seq2[int, Row]
	Next() bool
}

// Query tests whether a schema carries a combination of attributes.
type Query interface {
	QueryNode
	And(items ...interface{}) QueryNode
	Or(items ...interface{}) QueryNode
	Not(items ...interface{}) QueryNode
}

type QueryNode interface {
	Evaluate(schema *Schema) bool
}
