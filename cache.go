package swarm

var _ Cache[any] = &SimpleCache[any]{}

// Cache is a small append-only keyed registry.
type Cache[T any] interface {
	Lookup(string) (T, bool)
	Register(string, T) (int, error)
}

type SimpleCache[T any] struct {
	items       []T
	itemIndices map[string]int
	maxCapacity int
}

func FactoryNewCache[T any](cap int) Cache[T] {
	return &SimpleCache[T]{
		items:       make([]T, 0, cap),
		itemIndices: make(map[string]int, cap),
		maxCapacity: cap,
	}
}

func (c *SimpleCache[T]) Lookup(key string) (T, bool) {
	index, ok := c.itemIndices[key]
	if !ok {
		var zero T
		return zero, false
	}
	return c.items[index], true
}

// Register adds item under key and returns its index. Keys are unique;
// registering a key twice or past capacity fails.
func (c *SimpleCache[T]) Register(key string, item T) (int, error) {
	if _, exists := c.itemIndices[key]; exists {
		return -1, DuplicateKeyError{Key: key}
	}
	if len(c.items) >= c.maxCapacity {
		return -1, CacheFullError{Capacity: c.maxCapacity}
	}
	idx := len(c.items)
	c.itemIndices[key] = idx
	c.items = append(c.items, item)
	return idx, nil
}
