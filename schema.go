package swarm

import (
	"iter"

	"github.com/TheBitDrifter/mask"
	iter_util "github.com/TheBitDrifter/util/iter"
)

var _ mask.Maskable = &Schema{}

// Schema fixes the attribute set of a particle table and maps each
// attribute to its column slot. It never changes once built.
type Schema struct {
	attributes []AttributeType
	mask       mask.Mask
	slotByBit  []int
	names      Cache[AttributeType]
}

func newSchema(user ...AttributeType) *Schema {
	all := make([]AttributeType, 0, len(builtins)+len(user))
	all = append(all, builtins...)
	all = append(all, user...)

	maxBit := uint32(0)
	for _, attr := range all {
		maxBit = max(maxBit, attr.Bit())
	}
	s := &Schema{
		attributes: all,
		slotByBit:  make([]int, maxBit+1),
		names:      FactoryNewCache[AttributeType](len(all)),
	}
	for i := range s.slotByBit {
		s.slotByBit[i] = -1
	}
	for slot, attr := range all {
		bit := attr.Bit()
		if prev := s.slotByBit[bit]; prev >= 0 {
			panic(SchemaViolationError{
				Attribute: attr.Name(),
				Reason:    "listed twice (same identity as " + all[prev].Name() + ")",
			})
		}
		if _, err := s.names.Register(attr.Name(), attr); err != nil {
			panic(SchemaViolationError{Attribute: attr.Name(), Reason: err.Error()})
		}
		s.slotByBit[bit] = slot
		s.mask.Mark(bit)
	}
	return s
}

// Mask returns the set of attribute bits this schema carries.
func (s *Schema) Mask() mask.Mask {
	return s.mask
}

// Len returns the number of columns.
func (s *Schema) Len() int {
	return len(s.attributes)
}

// Has reports whether every given attribute belongs to the schema.
func (s *Schema) Has(attrs ...AttributeType) bool {
	var want mask.Mask
	for _, attr := range attrs {
		want.Mark(attr.Bit())
	}
	return s.mask.ContainsAll(want)
}

// Require panics with a SchemaViolationError unless every attribute is
// part of the schema. Collaborators call it once at construction.
func (s *Schema) Require(attrs ...AttributeType) {
	for _, attr := range attrs {
		s.mustSlot(attr)
	}
}

// Slot returns the column slot of attr.
func (s *Schema) Slot(attr AttributeType) (int, bool) {
	bit := attr.Bit()
	if int(bit) >= len(s.slotByBit) || s.slotByBit[bit] < 0 {
		return -1, false
	}
	return s.slotByBit[bit], true
}

func (s *Schema) mustSlot(attr AttributeType) int {
	slot, ok := s.Slot(attr)
	if !ok {
		panic(SchemaViolationError{Attribute: attr.Name(), Reason: "not registered in schema"})
	}
	return slot
}

// Attributes yields the schema's attributes in slot order.
func (s *Schema) Attributes() iter.Seq[AttributeType] {
	return func(yield func(AttributeType) bool) {
		for _, attr := range s.attributes {
			if !yield(attr) {
				return
			}
		}
	}
}

// UserAttributes returns the non built-in attributes in slot order.
func (s *Schema) UserAttributes() []AttributeType {
	return iter_util.Collect(s.Attributes())[len(builtins):]
}

// AttributeByName looks an attribute up by its declared name.
func (s *Schema) AttributeByName(name string) (AttributeType, bool) {
	return s.names.Lookup(name)
}
