package swarm

import (
	"errors"
	"sync"

	"github.com/rotisserie/eris"
)

type operationType int

const (
	opCreate operationType = iota
	opDestroy
)

type operation struct {
	typ    operationType
	record Record
	id     uint64
}

// opQueue collects work requested while the table is locked. Workers of a
// parallel ForEach enqueue concurrently, hence the mutex.
type opQueue struct {
	mu             sync.Mutex
	createOps      []operation
	destroyOps     []operation
	pendingDestroy map[uint64]struct{}
}

func newOpQueue() opQueue {
	return opQueue{
		pendingDestroy: make(map[uint64]struct{}),
	}
}

func (q *opQueue) enqueueOp(op operation) {
	q.mu.Lock()
	defer q.mu.Unlock()
	switch op.typ {
	case opCreate:
		q.createOps = append(q.createOps, op)
	case opDestroy:
		if _, exists := q.pendingDestroy[op.id]; exists {
			return
		}
		q.pendingDestroy[op.id] = struct{}{}
		q.destroyOps = append(q.destroyOps, op)
	}
}

func (q *opQueue) empty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.createOps) == 0 && len(q.destroyOps) == 0
}

// EnqueueAppend appends rec now, or once the table is unlocked.
func (p *Particles) EnqueueAppend(rec Record) error {
	if !p.Locked() {
		_, err := p.Append(rec)
		return err
	}
	p.opQueue.enqueueOp(operation{typ: opCreate, record: rec})
	return nil
}

// EnqueueKill removes the particle with the given id now, or once the table
// is unlocked. Unknown ids are ignored.
func (p *Particles) EnqueueKill(id uint64) error {
	if !p.Locked() {
		if i, ok := p.Find(id); ok {
			p.Kill(i)
			return p.Compact()
		}
		return nil
	}
	p.opQueue.enqueueOp(operation{typ: opDestroy, id: id})
	return nil
}

// processOperationQueue applies queued creates, then queued kills followed
// by a single compaction.
func (p *Particles) processOperationQueue() error {
	if p.opQueue.empty() {
		return nil
	}
	q := &p.opQueue
	q.mu.Lock()
	creates, destroys := q.createOps, q.destroyOps
	q.createOps, q.destroyOps = nil, nil
	clear(q.pendingDestroy)
	q.mu.Unlock()

	if len(creates) > 0 {
		recs := make([]Record, len(creates))
		for i, op := range creates {
			recs[i] = op.record
		}
		if _, err := p.AppendAll(recs); err != nil {
			var outside OutOfDomainError
			if !errors.As(err, &outside) {
				return eris.Wrap(err, "failed to process queued particle creation")
			}
		}
	}

	if len(destroys) > 0 {
		doomed := make(map[uint64]struct{}, len(destroys))
		for _, op := range destroys {
			doomed[op.id] = struct{}{}
		}
		ids := ID.Column(p)
		alive := Alive.Column(p)
		for i, id := range ids {
			if _, ok := doomed[id]; ok {
				alive[i] = false
			}
		}
		if err := p.Compact(); err != nil {
			return eris.Wrap(err, "failed to process queued particle removal")
		}
	}
	return nil
}
