package spatial

import "github.com/TheBitDrifter/swarm"

var _ swarm.SpatialIndex = &BruteForce{}

// BruteForce answers queries by scanning every particle. It keeps no
// per-row state, so the table may move rows freely.
type BruteForce struct {
	base
}

func NewBruteForce() *BruteForce {
	return &BruteForce{}
}

func (b *BruteForce) AddPointsAtEnd(v swarm.View, oldLen int) bool {
	b.bind(v)
	return false
}

func (b *BruteForce) AfterDeleteRange(v swarm.View, start, count int) bool {
	b.bind(v)
	return false
}

func (b *BruteForce) AfterDeleteParticles(v swarm.View) bool {
	b.bind(v)
	return false
}

func (b *BruteForce) UpdatePositions(v swarm.View, numDead int, deadScan []int) bool {
	b.bind(v)
	return false
}

func (b *BruteForce) Ordered() bool {
	return false
}

func (b *BruteForce) Order() []int {
	return nil
}

func (b *BruteForce) UpdateIterators(v swarm.View) {
	b.bind(v)
}

// Neighbours returns every live particle within radius of centre.
func (b *BruteForce) Neighbours(centre swarm.Vector, radius float64) ([]Neighbour, error) {
	if err := b.checkView(); err != nil {
		return nil, err
	}
	var out []Neighbour
	for i := 0; i < b.view.Len(); i++ {
		if n, ok := b.within(i, centre, radius); ok {
			out = append(out, n)
		}
	}
	return out, nil
}
