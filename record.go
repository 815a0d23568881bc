package swarm

// Record is a detached copy of one particle's attributes. It is what
// Append consumes and what Particles.Record returns; changing it never
// touches storage.
type Record struct {
	values map[uint32]any
}

// NewRecord returns a record positioned at pos with every other attribute
// at its zero value.
func NewRecord(pos Vector) Record {
	rec := Record{}
	Position.Set(&rec, pos)
	return rec
}

func (r *Record) set(attr AttributeType, v any) {
	if r.values == nil {
		r.values = make(map[uint32]any)
	}
	r.values[attr.Bit()] = v
}

// SetAny stores v, which must be of attr's value type, in the record.
func (r *Record) SetAny(attr AttributeType, v any) {
	r.set(attr, v)
}

// Any returns attr's value in the record and whether it was set.
func (r Record) Any(attr AttributeType) (any, bool) {
	v, ok := r.values[attr.Bit()]
	return v, ok
}

// Row is a view over the particle stored at one index. Pointers obtained
// through it alias storage.
type Row struct {
	set   *columnSet
	index int
}

func (r Row) Index() int {
	return r.index
}

// Value returns attr's value for the row as an untyped value.
func (r Row) Value(attr AttributeType) any {
	return r.set.columns[r.set.schema.mustSlot(attr)].value(r.index)
}

// SetValue stores v, which must be of attr's value type, into the row.
func (r Row) SetValue(attr AttributeType, v any) {
	r.set.columns[r.set.schema.mustSlot(attr)].setValue(r.index, v)
}
