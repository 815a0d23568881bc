package swarm

import (
	"fmt"
	"math"
)

// MaxDimensions is the largest spatial dimension a table can carry.
const MaxDimensions = 3

// Vector is a particle position or displacement. Only the first
// Domain.Dimension components take part in domain logic.
type Vector [MaxDimensions]float64

// Periodicity flags each dimension as periodic (true) or bounded (false).
type Periodicity [MaxDimensions]bool

func (v Vector) Add(o Vector) Vector {
	for d := range v {
		v[d] += o[d]
	}
	return v
}

func (v Vector) Sub(o Vector) Vector {
	for d := range v {
		v[d] -= o[d]
	}
	return v
}

func (v Vector) String() string {
	return fmt.Sprintf("(%g, %g, %g)", v[0], v[1], v[2])
}

// Any reports whether at least one of the first n flags is set.
func (p Periodicity) Any(n int) bool {
	for d := 0; d < n && d < MaxDimensions; d++ {
		if p[d] {
			return true
		}
	}
	return false
}

// All reports whether all of the first n flags are set.
func (p Periodicity) All(n int) bool {
	for d := 0; d < n && d < MaxDimensions; d++ {
		if !p[d] {
			return false
		}
	}
	return true
}

// Domain is the cuboid a table's particles live in. It is the stateless
// enforcer applied to every appended or moved particle.
type Domain struct {
	Low       Vector
	High      Vector
	Periodic  Periodicity
	Dimension int
}

// NewDomain builds a domain of the given dimension from the leading
// components of low, high and periodic.
func NewDomain(dimension int, low, high Vector, periodic Periodicity) (Domain, error) {
	d := Domain{Low: low, High: high, Periodic: periodic, Dimension: dimension}
	if err := d.Validate(); err != nil {
		return Domain{}, err
	}
	return d, nil
}

func (d Domain) Validate() error {
	if d.Dimension < 1 || d.Dimension > MaxDimensions {
		return InvalidDomainError{Domain: d, Reason: fmt.Sprintf("dimension %d not in [1, %d]", d.Dimension, MaxDimensions)}
	}
	for i := 0; i < d.Dimension; i++ {
		if !(d.Low[i] < d.High[i]) {
			return InvalidDomainError{Domain: d, Reason: fmt.Sprintf("low[%d]=%g is not below high[%d]=%g", i, d.Low[i], i, d.High[i])}
		}
	}
	return nil
}

// Width returns high-low per dimension.
func (d Domain) Width() Vector {
	return d.High.Sub(d.Low)
}

// Enforce wraps periodic dimensions of r into [low, high) and reports false
// as soon as a bounded dimension falls outside [low, high) or any
// coordinate is NaN or infinite. A rejected position is left untouched
// from that dimension on.
func (d Domain) Enforce(r *Vector) bool {
	for i := 0; i < d.Dimension; i++ {
		low, high := d.Low[i], d.High[i]
		if math.IsNaN(r[i]) || math.IsInf(r[i], 0) {
			return false
		}
		if d.Periodic[i] {
			r[i] = wrap(r[i], low, high)
			continue
		}
		if !(r[i] >= low && r[i] < high) {
			return false
		}
	}
	return true
}

// Contains reports whether r lies inside the domain without modifying it.
func (d Domain) Contains(r Vector) bool {
	for i := 0; i < d.Dimension; i++ {
		if !(r[i] >= d.Low[i] && r[i] < d.High[i]) {
			return false
		}
	}
	return true
}

// CorrectDisplacement maps dx onto its minimum image along periodic
// dimensions, leaving each component in (-w/2, w/2].
func (d Domain) CorrectDisplacement(dx Vector) Vector {
	for i := 0; i < d.Dimension; i++ {
		if !d.Periodic[i] {
			continue
		}
		w := d.High[i] - d.Low[i]
		dx[i] -= w * math.Floor(dx[i]/w+0.5)
		if dx[i] <= -w/2 {
			dx[i] += w
		}
	}
	return dx
}

func wrap(x, low, high float64) float64 {
	if x >= low && x < high {
		return x
	}
	w := high - low
	x = low + math.Mod(x-low, w)
	if x < low {
		x += w
	}
	// rounding can land exactly on high
	if x >= high {
		x = low
	}
	return x
}
