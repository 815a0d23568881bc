package swarm

// View is the non-owning handle a SpatialIndex keeps into a table's live
// buffer. It is stamped with the store generation at creation; once the
// table relocates rows the view reports !Valid and must be replaced by the
// one passed to UpdateIterators.
type View struct {
	store      *columnStore
	set        *columnSet
	generation uint64
}

func newView(store *columnStore) View {
	return View{store: store, set: store.live, generation: store.generation}
}

// Valid reports whether no structural change happened since the view was
// taken.
func (v View) Valid() bool {
	return v.store != nil && v.store.generation == v.generation
}

// Schema returns the schema of the viewed table, or nil for a zero View.
func (v View) Schema() *Schema {
	if v.set == nil {
		return nil
	}
	return v.set.schema
}

func (v View) Generation() uint64 {
	return v.generation
}

func (v View) Len() int {
	if v.set == nil {
		return 0
	}
	return v.set.len()
}

func (v View) Row(i int) Row {
	return Row{set: v.set, index: i}
}

func (v View) Position(i int) Vector {
	return *Position.At(v.Row(i))
}

func (v View) ID(i int) uint64 {
	return *ID.At(v.Row(i))
}

func (v View) Alive(i int) bool {
	return *Alive.At(v.Row(i))
}

var _ SpatialIndex = &NoIndex{}

// NoIndex is the index of a table that has no neighbour search. It never
// has a domain and never asks for a reorder.
type NoIndex struct {
	view View
}

func (n *NoIndex) SetDomain(Domain, int) {}
func (n *NoIndex) DomainHasBeenSet() bool { return false }
func (n *NoIndex) Domain() Domain { return Domain{} }
func (n *NoIndex) AddPointsAtEnd(v View, _ int) bool { n.view = v; return false }
func (n *NoIndex) BeforeDeleteRange(int, int) {}
func (n *NoIndex) AfterDeleteRange(v View, _, _ int) bool { n.view = v; return false }
func (n *NoIndex) BeforeDeleteParticles([]int) {}
func (n *NoIndex) AfterDeleteParticles(v View) bool { n.view = v; return false }
func (n *NoIndex) UpdatePositions(v View, _ int, _ []int) bool { n.view = v; return false }
func (n *NoIndex) Ordered() bool { return false }
func (n *NoIndex) Order() []int { return nil }
func (n *NoIndex) UpdateIterators(v View) { n.view = v }
