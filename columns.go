package swarm

// column is one attribute's values across all stored particles.
type column interface {
	len() int
	resize(n int)
	appendValue(v any)
	swapRemove(i int)
	shiftRemove(lo, hi int)
	moveTail(lo, n int)
	gatherInto(dst column, order []int)
	value(i int) any
	setValue(i int, v any)
	clear()
}

type typedColumn[T any] struct {
	data []T
}

func (c *typedColumn[T]) len() int {
	return len(c.data)
}

func (c *typedColumn[T]) resize(n int) {
	if n <= cap(c.data) {
		old := len(c.data)
		c.data = c.data[:n]
		if n > old {
			clear(c.data[old:])
		}
		return
	}
	grown := make([]T, n, max(n, 2*cap(c.data)))
	copy(grown, c.data)
	c.data = grown
}

func (c *typedColumn[T]) appendValue(v any) {
	if v == nil {
		var zero T
		c.data = append(c.data, zero)
		return
	}
	c.data = append(c.data, v.(T))
}

func (c *typedColumn[T]) swapRemove(i int) {
	last := len(c.data) - 1
	c.data[i] = c.data[last]
	var zero T
	c.data[last] = zero
	c.data = c.data[:last]
}

func (c *typedColumn[T]) shiftRemove(lo, hi int) {
	n := len(c.data)
	copy(c.data[lo:], c.data[hi:])
	clear(c.data[n-(hi-lo):])
	c.data = c.data[:n-(hi-lo)]
}

// moveTail overwrites [lo, lo+n) with the last n values and drops the tail.
func (c *typedColumn[T]) moveTail(lo, n int) {
	end := len(c.data)
	copy(c.data[lo:lo+n], c.data[end-n:])
	clear(c.data[end-n:])
	c.data = c.data[:end-n]
}

func (c *typedColumn[T]) gatherInto(dst column, order []int) {
	out := dst.(*typedColumn[T])
	out.resize(len(order))
	for d, src := range order {
		out.data[d] = c.data[src]
	}
}

func (c *typedColumn[T]) value(i int) any {
	return c.data[i]
}

func (c *typedColumn[T]) setValue(i int, v any) {
	c.data[i] = v.(T)
}

func (c *typedColumn[T]) clear() {
	clear(c.data)
	c.data = c.data[:0]
}

// columnSet is one buffer: a column per schema slot, index aligned.
type columnSet struct {
	schema  *Schema
	columns []column
}

func newColumnSet(schema *Schema, capacity int) *columnSet {
	set := &columnSet{
		schema:  schema,
		columns: make([]column, 0, schema.Len()),
	}
	for attr := range schema.Attributes() {
		set.columns = append(set.columns, attr.newColumn(capacity))
	}
	return set
}

func (s *columnSet) len() int {
	return s.columns[0].len()
}

// columnStore owns the live buffer and the scratch buffer used by
// gatherPermute. Every structural change bumps generation so views held
// by an index can tell they are stale.
type columnStore struct {
	live       *columnSet
	scratch    *columnSet
	generation uint64
}

func newColumnStore(schema *Schema, capacity int) *columnStore {
	return &columnStore{
		live:    newColumnSet(schema, capacity),
		scratch: newColumnSet(schema, 0),
	}
}

func (st *columnStore) len() int {
	return st.live.len()
}

func (st *columnStore) resize(n int) {
	for _, c := range st.live.columns {
		c.resize(n)
	}
	st.generation++
}

// appendRecord appends one row; attributes missing from rec get zero values.
func (st *columnStore) appendRecord(rec Record) {
	for slot, attr := range st.live.schema.attributes {
		st.live.columns[slot].appendValue(rec.values[attr.Bit()])
	}
	st.generation++
}

func (st *columnStore) swapRemove(i int) {
	for _, c := range st.live.columns {
		c.swapRemove(i)
	}
	st.generation++
}

func (st *columnStore) shiftRemove(lo, hi int) {
	if lo >= hi {
		return
	}
	for _, c := range st.live.columns {
		c.shiftRemove(lo, hi)
	}
	st.generation++
}

func (st *columnStore) moveTail(lo, n int) {
	if n == 0 {
		return
	}
	for _, c := range st.live.columns {
		c.moveTail(lo, n)
	}
	st.generation++
}

// gatherPermute writes live[order[d]] into scratch[d] for every column and
// then swaps the two buffers. order must be a permutation of [0, len).
func (st *columnStore) gatherPermute(order []int) error {
	if err := validatePermutation(order, st.len()); err != nil {
		return err
	}
	for slot, c := range st.live.columns {
		c.gatherInto(st.scratch.columns[slot], order)
	}
	st.live, st.scratch = st.scratch, st.live
	st.generation++
	return nil
}

func (st *columnStore) clear() {
	for _, c := range st.live.columns {
		c.clear()
	}
	for _, c := range st.scratch.columns {
		c.clear()
	}
	st.generation++
}

// record copies row i out of the live buffer.
func (st *columnStore) record(i int) Record {
	rec := Record{values: make(map[uint32]any, len(st.live.columns))}
	for slot, attr := range st.live.schema.attributes {
		rec.values[attr.Bit()] = st.live.columns[slot].value(i)
	}
	return rec
}

func validatePermutation(order []int, n int) error {
	if len(order) != n {
		return InvalidPermutationError{Length: len(order), Expected: n}
	}
	seen := make([]bool, n)
	for d, src := range order {
		if src < 0 || src >= n || seen[src] {
			return InvalidPermutationError{Length: len(order), Expected: n, Position: d, Source: src}
		}
		seen[src] = true
	}
	return nil
}
