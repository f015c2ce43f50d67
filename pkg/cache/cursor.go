package cache

import "iter"

// Cursor is a single-pass iterator over the children of one parent.
//
// The child ids are snapshotted when the cursor is created; each entity is
// looked up only when the cursor reaches it. Ids whose entity was removed in
// between are skipped. An exhausted cursor stays exhausted.
type Cursor[K comparable, V any] struct {
	keys     []K
	position int
	lookup   func(K) (V, bool)
}

func newCursor[K comparable, V any](keys []K, lookup func(K) (V, bool)) *Cursor[K, V] {
	return &Cursor[K, V]{keys: keys, lookup: lookup}
}

// Len returns the number of ids in the snapshot.
func (c *Cursor[K, V]) Len() int {
	return len(c.keys)
}

// Remaining returns the number of snapshot ids not yet visited. Skipped ids
// count as visited.
func (c *Cursor[K, V]) Remaining() int {
	return len(c.keys) - c.position
}

// HasNext reports whether a further entity can be taken. It skips ahead over
// ids that no longer resolve.
func (c *Cursor[K, V]) HasNext() bool {
	for c.position < len(c.keys) {
		if _, ok := c.lookup(c.keys[c.position]); ok {
			return true
		}
		c.position++
	}

	return false
}

// Next returns the next live entity. It returns false once the cursor is
// exhausted.
func (c *Cursor[K, V]) Next() (V, bool) {
	for c.position < len(c.keys) {
		key := c.keys[c.position]
		c.position++
		if value, ok := c.lookup(key); ok {
			return value, true
		}
	}

	var zero V
	return zero, false
}

// All drains the cursor as a range-over-func sequence.
func (c *Cursor[K, V]) All() iter.Seq[V] {
	return func(yield func(V) bool) {
		for {
			value, ok := c.Next()
			if !ok || !yield(value) {
				return
			}
		}
	}
}

// Collect drains the cursor into a slice.
func (c *Cursor[K, V]) Collect() []V {
	values := make([]V, 0, c.Remaining())
	for value := range c.All() {
		values = append(values, value)
	}

	return values
}
