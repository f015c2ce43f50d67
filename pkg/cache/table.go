package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// store is the backing storage of a Table.
type store[K comparable, V any] interface {
	get(key K) (V, bool)
	set(key K, value V)
	remove(key K) bool
	len() int
	keys() []K
	clear()
}

// mapStore is an unbounded store.
type mapStore[K comparable, V any] struct {
	entries map[K]V
}

func newMapStore[K comparable, V any]() *mapStore[K, V] {
	return &mapStore[K, V]{entries: make(map[K]V)}
}

func (s *mapStore[K, V]) get(key K) (V, bool) {
	value, ok := s.entries[key]

	return value, ok
}

func (s *mapStore[K, V]) set(key K, value V) {
	s.entries[key] = value
}

func (s *mapStore[K, V]) remove(key K) bool {
	if _, ok := s.entries[key]; !ok {
		return false
	}
	delete(s.entries, key)

	return true
}

func (s *mapStore[K, V]) len() int {
	return len(s.entries)
}

func (s *mapStore[K, V]) keys() []K {
	keys := make([]K, 0, len(s.entries))
	for key := range s.entries {
		keys = append(keys, key)
	}

	return keys
}

func (s *mapStore[K, V]) clear() {
	s.entries = make(map[K]V)
}

// lruStore is a bounded store that evicts the least recently used entry.
type lruStore[K comparable, V any] struct {
	entries *lru.Cache[K, V]
}

// newLRUStore creates a bounded store. onEvict runs for every entry that leaves
// the store, including explicit removals.
func newLRUStore[K comparable, V any](size int, onEvict func(K, V)) (*lruStore[K, V], error) {
	entries, err := lru.NewWithEvict[K, V](size, onEvict)
	if err != nil {
		return nil, err
	}

	return &lruStore[K, V]{entries: entries}, nil
}

func (s *lruStore[K, V]) get(key K) (V, bool) {
	return s.entries.Get(key)
}

func (s *lruStore[K, V]) set(key K, value V) {
	s.entries.Add(key, value)
}

func (s *lruStore[K, V]) remove(key K) bool {
	return s.entries.Remove(key)
}

func (s *lruStore[K, V]) len() int {
	return s.entries.Len()
}

func (s *lruStore[K, V]) keys() []K {
	return s.entries.Keys()
}

func (s *lruStore[K, V]) clear() {
	s.entries.Purge()
}

// Table holds the latest known value of one entity type, at most one per key.
//
// Reads are exported; writes happen only through Cache handlers.
type Table[K comparable, V any] struct {
	store store[K, V]
	merge func(old, update V) V
}

func newTable[K comparable, V any](merge func(old, update V) V) *Table[K, V] {
	return &Table[K, V]{
		store: newMapStore[K, V](),
		merge: merge,
	}
}

// Get returns the value stored under key.
func (t *Table[K, V]) Get(key K) (V, bool) {
	return t.store.get(key)
}

// Has reports whether key has an entry.
func (t *Table[K, V]) Has(key K) bool {
	_, ok := t.store.get(key)

	return ok
}

// Len returns the number of entries.
func (t *Table[K, V]) Len() int {
	return t.store.len()
}

// Keys enumerates every key in unspecified order.
func (t *Table[K, V]) Keys() []K {
	return t.store.keys()
}

// upsert inserts value, or merges it onto the existing entry, and returns the
// stored result.
func (t *Table[K, V]) upsert(key K, value V) V {
	if existing, ok := t.store.get(key); ok && t.merge != nil {
		value = t.merge(existing, value)
	}
	t.store.set(key, value)

	return value
}

// set stores value as is.
func (t *Table[K, V]) set(key K, value V) {
	t.store.set(key, value)
}

func (t *Table[K, V]) remove(key K) bool {
	return t.store.remove(key)
}

func (t *Table[K, V]) clear() {
	t.store.clear()
}

// patch applies a partial value to an existing entry. It never creates an
// entry and reports whether one was updated.
func patch[K comparable, V any, P any](table *Table[K, V], key K, partial P, apply func(V, P) V) (V, bool) {
	existing, ok := table.store.get(key)
	if !ok {
		var zero V
		return zero, false
	}
	updated := apply(existing, partial)
	table.store.set(key, updated)

	return updated, true
}
