package swarm

import "fmt"

type LockedParticlesError struct{}

func (e LockedParticlesError) Error() string {
	return "particles are currently locked"
}

// OutOfDomainError reports an append rejected because the position fell
// outside a bounded dimension. The table is left as it was.
type OutOfDomainError struct {
	ID       uint64
	Position Vector
}

func (e OutOfDomainError) Error() string {
	return fmt.Sprintf("particle %d at %v is outside the domain and has been removed", e.ID, e.Position)
}

// SchemaViolationError is the panic value raised when an attribute is
// resolved against a schema that does not carry it.
type SchemaViolationError struct {
	Attribute string
	Reason    string
}

func (e SchemaViolationError) Error() string {
	return fmt.Sprintf("attribute %q: %s", e.Attribute, e.Reason)
}

type InvalidPermutationError struct {
	Length, Expected int
	Position, Source int
}

func (e InvalidPermutationError) Error() string {
	if e.Length != e.Expected {
		return fmt.Sprintf("permutation has length %d, table has %d rows", e.Length, e.Expected)
	}
	return fmt.Sprintf("permutation entry %d -> %d is out of range or repeated", e.Position, e.Source)
}

type InvalidDomainError struct {
	Domain Domain
	Reason string
}

func (e InvalidDomainError) Error() string {
	return fmt.Sprintf("invalid domain: %s", e.Reason)
}

// IndexOutOfRangeError is the panic value for direct access past the end
// of the table.
type IndexOutOfRangeError struct {
	Index, Len int
}

func (e IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("row index %d out of range for %d particles", e.Index, e.Len)
}

type InvalidRangeError struct {
	Lo, Hi, Len int
}

func (e InvalidRangeError) Error() string {
	return fmt.Sprintf("range [%d, %d) invalid for %d particles", e.Lo, e.Hi, e.Len)
}

type DuplicateKeyError struct {
	Key string
}

func (e DuplicateKeyError) Error() string {
	return fmt.Sprintf("key %q already registered", e.Key)
}

type CacheFullError struct {
	Capacity int
}

func (e CacheFullError) Error() string {
	return fmt.Sprintf("cache at maximum capacity (%d)", e.Capacity)
}
