package swarm

import (
	"math/rand/v2"

	"github.com/TheBitDrifter/table"
)

// registry hands every attribute a stable bit for the life of the process.
// Schemas only ever mark bits handed out here.
var registry = table.Factory.NewSchema()

// Built-in attributes present in every schema.
var (
	Position  = FactoryNewAttribute[Vector]("position")
	ID        = FactoryNewAttribute[uint64]("id")
	Alive     = FactoryNewAttribute[bool]("alive")
	Generator = FactoryNewAttribute[rand.PCG]("generator")
)

var builtins = []AttributeType{Position, ID, Alive, Generator}

// AttributeType is the untyped face of an Attribute, used wherever
// attributes of different value types are handled together.
type AttributeType interface {
	ElementType() table.ElementType
	Name() string
	Bit() uint32
	// New returns a pointer to a fresh zero value of the attribute's type.
	New() any
	newColumn(capacity int) column
}

// Attribute is a tag selecting one column of a particle table. Values are
// reached through the schema slot the attribute resolves to.
type Attribute[T any] struct {
	elem table.ElementType
	name string
	bit  uint32
}

// FactoryNewAttribute declares a new attribute with its own column. Every
// call registers a fresh identity, so attributes may share a value type;
// declare each one once, at package level.
func FactoryNewAttribute[T any](name string) Attribute[T] {
	elem := table.FactoryNewElementType[T]()
	registry.Register(elem)
	return Attribute[T]{
		elem: elem,
		name: name,
		bit:  registry.RowIndexFor(elem),
	}
}

// ElementType returns the table element type backing the attribute.
func (a Attribute[T]) ElementType() table.ElementType {
	return a.elem
}

func (a Attribute[T]) Name() string {
	return a.name
}

func (a Attribute[T]) Bit() uint32 {
	return a.bit
}

func (a Attribute[T]) New() any {
	return new(T)
}

func (a Attribute[T]) newColumn(capacity int) column {
	return &typedColumn[T]{data: make([]T, 0, capacity)}
}

// Column returns the live column of a in p. The slice is only valid until
// the next structural operation on p.
func (a Attribute[T]) Column(p *Particles) []T {
	return a.columnIn(p.store.live).data
}

// Get returns a pointer to a's value for the particle stored at index i.
func (a Attribute[T]) Get(p *Particles, i int) *T {
	p.checkIndex(i)
	return &a.columnIn(p.store.live).data[i]
}

// At returns a pointer to a's value for the row.
func (a Attribute[T]) At(row Row) *T {
	return &a.columnIn(row.set).data[row.index]
}

// FromCursor returns a pointer to a's value for the row under the cursor.
func (a Attribute[T]) FromCursor(c *Cursor) *T {
	return a.At(c.Row())
}

// Set stores v as a's value in the detached record.
func (a Attribute[T]) Set(rec *Record, v T) {
	rec.set(a, v)
}

// Value returns a's value in the record, or the zero value if unset.
func (a Attribute[T]) Value(rec Record) T {
	if v, ok := rec.values[a.bit]; ok {
		return v.(T)
	}
	var zero T
	return zero
}

func (a Attribute[T]) columnIn(set *columnSet) *typedColumn[T] {
	return set.columns[set.schema.mustSlot(a)].(*typedColumn[T])
}
