package swarm

import (
	"errors"
	"math/rand/v2"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/TheBitDrifter/swarm/internal/parallel"
)

var _ Operator = &Particles{}

// Particles is a columnar table of particles kept consistent with a
// spatial index. It exclusively owns its storage; the index only ever sees
// Views.
type Particles struct {
	schema   *Schema
	store    *columnStore
	index    SpatialIndex
	nextID   uint64
	seed     uint64
	locks    int
	opQueue  opQueue
	logger   zerolog.Logger
	grain    int
	capacity int
	deadScan []int
}

func newParticles(schema *Schema, opts ...Option) *Particles {
	p := &Particles{
		schema:  schema,
		index:   &NoIndex{},
		logger:  Config.defaultLogger(),
		grain:   Config.grain,
		opQueue: newOpQueue(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.store = newColumnStore(schema, p.capacity)
	return p
}

func (p *Particles) Schema() *Schema {
	return p.schema
}

func (p *Particles) Len() int {
	return p.store.len()
}

// Seed returns the base seed of the per-particle generators.
func (p *Particles) Seed() uint64 {
	return p.seed
}

// NextID returns the id the next created particle will get.
func (p *Particles) NextID() uint64 {
	return p.nextID
}

// Indexed reports whether a spatial index with a domain is attached.
func (p *Particles) Indexed() bool {
	return p.index.DomainHasBeenSet()
}

func (p *Particles) Index() SpatialIndex {
	return p.index
}

// Domain returns the index domain; ok is false while unindexed.
func (p *Particles) Domain() (Domain, bool) {
	if !p.Indexed() {
		return Domain{}, false
	}
	return p.index.Domain(), true
}

// View returns a fresh handle on the live buffer.
func (p *Particles) View() View {
	return newView(p.store)
}

// Row returns a view of the particle stored at index i. It panics when i is
// out of range.
func (p *Particles) Row(i int) Row {
	p.checkIndex(i)
	return Row{set: p.store.live, index: i}
}

// Record returns a detached copy of the particle stored at index i.
func (p *Particles) Record(i int) Record {
	p.checkIndex(i)
	return p.store.record(i)
}

// Find returns the index of the particle with the given id.
func (p *Particles) Find(id uint64) (int, bool) {
	for i, v := range ID.Column(p) {
		if v == id {
			return i, true
		}
	}
	return -1, false
}

// CorrectDisplacement maps dx onto its minimum image in the periodic
// dimensions of the domain. Unindexed tables return dx unchanged.
func (p *Particles) CorrectDisplacement(dx Vector) Vector {
	domain, ok := p.Domain()
	if !ok {
		return dx
	}
	return domain.CorrectDisplacement(dx)
}

func (p *Particles) Locked() bool {
	return p.locks > 0
}

// Lock bars structural operations until the matching Unlock. Locks nest.
func (p *Particles) Lock() {
	p.locks++
}

// Unlock releases one lock; releasing the last one applies every queued
// operation.
func (p *Particles) Unlock() error {
	if p.locks == 0 {
		return nil
	}
	p.locks--
	if p.locks > 0 {
		return nil
	}
	return p.processOperationQueue()
}

// Append adds a particle with a fresh id and generator and returns its id.
// When the table is indexed and the position is not finite or falls outside
// a bounded dimension, the particle is dropped again, the table is left as
// it was and an OutOfDomainError is returned.
func (p *Particles) Append(rec Record) (uint64, error) {
	if p.Locked() {
		return 0, LockedParticlesError{}
	}
	oldLen := p.Len()
	id, err := p.push(rec)
	if err != nil {
		p.index.UpdateIterators(p.View())
		return id, err
	}
	if p.Indexed() && p.index.AddPointsAtEnd(p.View(), oldLen) {
		if err := p.reorder(p.index.Order()); err != nil {
			return id, eris.Wrap(err, "failed to reorder after append")
		}
	}
	return id, nil
}

// AppendAll appends every record and tells the index about the whole batch
// at once. Records outside the domain are rejected individually; the ids of
// the accepted ones are returned along with the joined rejections.
func (p *Particles) AppendAll(recs []Record) ([]uint64, error) {
	if p.Locked() {
		return nil, LockedParticlesError{}
	}
	oldLen := p.Len()
	ids := make([]uint64, 0, len(recs))
	var rejected []error
	for _, rec := range recs {
		id, err := p.push(rec)
		if err != nil {
			rejected = append(rejected, err)
			continue
		}
		ids = append(ids, id)
	}
	if p.Indexed() {
		if len(ids) == 0 {
			p.index.UpdateIterators(p.View())
		} else if p.index.AddPointsAtEnd(p.View(), oldLen) {
			if err := p.reorder(p.index.Order()); err != nil {
				return ids, eris.Wrap(err, "failed to reorder after append")
			}
		}
	}
	return ids, errors.Join(rejected...)
}

// push appends rec as the last row and stamps its id, generator and alive
// flag. An out-of-domain row is popped again before returning.
func (p *Particles) push(rec Record) (uint64, error) {
	p.store.appendRecord(rec)
	last := p.Len() - 1
	id := p.nextID
	p.nextID++
	p.initRow(last, id)

	if !p.Indexed() {
		return id, nil
	}
	pos := Position.Get(p, last)
	if p.index.Domain().Enforce(pos) {
		return id, nil
	}
	*Alive.Get(p, last) = false
	err := OutOfDomainError{ID: id, Position: *pos}
	p.logger.Warn().
		Uint64("id", id).
		Str("position", pos.String()).
		Msg("particle pushed outside the domain has been removed")
	p.store.swapRemove(last)
	return id, err
}

func (p *Particles) initRow(i int, id uint64) {
	row := Row{set: p.store.live, index: i}
	*ID.At(row) = id
	*Alive.At(row) = true
	*Generator.At(row) = seedFor(p.seed, id)
}

func seedFor(seed, id uint64) rand.PCG {
	return *rand.NewPCG(seed, id)
}

// Erase removes the particle stored at index i. Unordered indices let the
// last particle take its slot; ordered ones get the tail shifted down.
func (p *Particles) Erase(i int) error {
	if p.Locked() {
		return LockedParticlesError{}
	}
	p.checkIndex(i)
	indexed := p.Indexed()
	if indexed {
		p.index.BeforeDeleteRange(i, 1)
	}
	switch {
	case i == p.Len()-1:
		p.store.swapRemove(i)
	case p.index.Ordered():
		p.store.shiftRemove(i, i+1)
	default:
		p.store.swapRemove(i)
	}
	if indexed {
		return p.afterDelete(p.index.AfterDeleteRange(p.View(), i, 1))
	}
	return nil
}

// EraseRange removes the particles stored in [lo, hi).
func (p *Particles) EraseRange(lo, hi int) error {
	if p.Locked() {
		return LockedParticlesError{}
	}
	n := p.Len()
	if lo < 0 || hi > n || lo > hi {
		panic(InvalidRangeError{Lo: lo, Hi: hi, Len: n})
	}
	count := hi - lo
	if count == 0 {
		return nil
	}
	indexed := p.Indexed()
	if indexed {
		p.index.BeforeDeleteRange(lo, count)
	}
	if n-hi > count && !p.index.Ordered() {
		p.store.moveTail(lo, count)
	} else {
		p.store.shiftRemove(lo, hi)
	}
	if indexed {
		return p.afterDelete(p.index.AfterDeleteRange(p.View(), lo, count))
	}
	return nil
}

func (p *Particles) afterDelete(needsReorder bool) error {
	if !needsReorder {
		return nil
	}
	if err := p.reorder(p.index.Order()); err != nil {
		return eris.Wrap(err, "failed to reorder after delete")
	}
	return nil
}

// Kill tombstones the particle stored at index i. It stays in place until
// the next Compact or UpdatePositions. Safe inside ForEach for the row
// being visited.
func (p *Particles) Kill(i int) {
	*Alive.Get(p, i) = false
}

// Compact physically drops every tombstoned particle. Survivors keep their
// relative order.
func (p *Particles) Compact() error {
	if p.Locked() {
		return LockedParticlesError{}
	}
	n := p.Len()
	numDead := p.scanDead()
	if numDead == 0 {
		return nil
	}
	indexed := p.Indexed()
	if indexed {
		p.index.BeforeDeleteParticles(p.deadScan)
	}
	if err := p.dropDead(numDead); err != nil {
		return err
	}
	p.logger.Debug().Int("dead", numDead).Int("remaining", n-numDead).Msg("compacted particles")
	if indexed {
		return p.afterDelete(p.index.AfterDeleteParticles(p.View()))
	}
	return nil
}

// dropDead gathers live rows to the front, dead ones to the tail, and cuts
// the tail. p.deadScan must be current.
func (p *Particles) dropDead(numDead int) error {
	n := p.Len()
	alive := Alive.Column(p)
	scan := p.deadScan
	survivors := n - numDead
	order := make([]int, n)
	parallel.For(n, p.grain, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			if alive[i] {
				order[i-scan[i]] = i
			} else {
				order[survivors+scan[i]] = i
			}
		}
	})
	if err := p.store.gatherPermute(order); err != nil {
		return eris.Wrap(err, "failed to move dead particles to the tail")
	}
	p.store.resize(survivors)
	return nil
}

// scanDead fills p.deadScan with the exclusive scan of !alive and returns
// the number of dead rows.
func (p *Particles) scanDead() int {
	n := p.Len()
	if cap(p.deadScan) < n {
		p.deadScan = make([]int, n)
	}
	p.deadScan = p.deadScan[:n]
	alive := Alive.Column(p)
	return parallel.ExclusiveScan(n, p.grain, func(i int) bool { return !alive[i] }, p.deadScan)
}

// Reorder applies the gather permutation order: the particle stored at
// order[d] moves to index d. Ids travel with their rows.
func (p *Particles) Reorder(order []int) error {
	if p.Locked() {
		return LockedParticlesError{}
	}
	return p.reorder(order)
}

func (p *Particles) reorder(order []int) error {
	if len(order) == 0 {
		return nil
	}
	p.logger.Debug().Int("particles", len(order)).Msg("reordering particles")
	if err := p.store.gatherPermute(order); err != nil {
		return err
	}
	p.index.UpdateIterators(p.View())
	return nil
}

// UpdatePositions re-applies the domain to every particle after positions
// changed in place, lets the index catch up and drops particles that left a
// bounded dimension. Unindexed tables are left alone.
func (p *Particles) UpdatePositions() error {
	if p.Locked() {
		return LockedParticlesError{}
	}
	if !p.Indexed() {
		return nil
	}
	p.enforceAll(p.index.Domain())
	numDead := p.scanDead()
	if p.index.UpdatePositions(p.View(), numDead, p.deadScan) {
		if err := p.reorder(p.index.Order()); err != nil {
			return eris.Wrap(err, "failed to reorder after position update")
		}
	}
	if numDead > 0 {
		return p.Compact()
	}
	return nil
}

func (p *Particles) enforceAll(domain Domain) {
	pos := Position.Column(p)
	alive := Alive.Column(p)
	parallel.For(len(pos), p.grain, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			if !domain.Enforce(&pos[i]) {
				alive[i] = false
			}
		}
	})
}

// InitNeighbourSearch sets the index domain, drops particles outside it and
// hands every remaining particle to the index.
func (p *Particles) InitNeighbourSearch(domain Domain, leafCapacity int) error {
	if p.Locked() {
		return LockedParticlesError{}
	}
	if err := domain.Validate(); err != nil {
		return err
	}
	if _, none := p.index.(*NoIndex); none {
		return eris.New("no spatial index attached, construct the table WithIndex")
	}
	if leafCapacity <= 0 {
		leafCapacity = Config.leafCapacity
	}
	p.logger.Debug().
		Str("low", domain.Low.String()).
		Str("high", domain.High.String()).
		Int("leaf_capacity", leafCapacity).
		Msg("initialising neighbour search")

	p.index.SetDomain(domain, leafCapacity)
	p.enforceAll(domain)
	if numDead := p.scanDead(); numDead > 0 {
		if err := p.dropDead(numDead); err != nil {
			return err
		}
	}
	if p.index.AddPointsAtEnd(p.View(), 0) {
		if err := p.reorder(p.index.Order()); err != nil {
			return eris.Wrap(err, "failed to reorder after indexing")
		}
	}
	return nil
}

// SetSeed changes the base seed and re-derives every particle's generator
// from its id.
func (p *Particles) SetSeed(seed uint64) {
	p.seed = seed
	ids := ID.Column(p)
	gens := Generator.Column(p)
	parallel.For(len(ids), p.grain, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			gens[i] = seedFor(seed, ids[i])
		}
	})
}

// Resize grows or shrinks the table to n particles. New particles get
// fresh ids and generators; they are not checked against the domain and
// the index is only resynchronized, not told about them.
func (p *Particles) Resize(n int) error {
	if p.Locked() {
		return LockedParticlesError{}
	}
	old := p.Len()
	p.store.resize(n)
	if n > old {
		first := p.nextID
		parallel.For(n-old, p.grain, func(lo, hi int) {
			for k := lo; k < hi; k++ {
				p.initRow(old+k, first+uint64(k))
			}
		})
		p.nextID += uint64(n - old)
	}
	p.index.UpdateIterators(p.View())
	return nil
}

// Clear removes every particle. Ids keep counting from where they were.
func (p *Particles) Clear() error {
	if p.Locked() {
		return LockedParticlesError{}
	}
	p.store.clear()
	p.index.UpdateIterators(p.View())
	return nil
}

// ForEach runs fn over every row on the parallel backend. The table is
// locked meanwhile; fn may only touch its own row, tombstone it through
// Kill, and queue work with EnqueueAppend/EnqueueKill.
func (p *Particles) ForEach(fn func(Row)) error {
	p.Lock()
	set := p.store.live
	parallel.For(set.len(), p.grain, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			fn(Row{set: set, index: i})
		}
	})
	return p.Unlock()
}

func (p *Particles) checkIndex(i int) {
	if n := p.Len(); i < 0 || i >= n {
		panic(IndexOutOfRangeError{Index: i, Len: n})
	}
}
