package cache

// orderedSet keeps insertion order with O(1) add, remove and lookup.
//
// Removed items stay in items until compaction; position maps each live item
// to its current slot, so a stale slot is one whose item maps elsewhere or
// nowhere.
type orderedSet[T comparable] struct {
	items    []T
	position map[T]int
	stale    int
}

func newOrderedSet[T comparable]() *orderedSet[T] {
	return &orderedSet[T]{position: make(map[T]int)}
}

func (s *orderedSet[T]) add(item T) bool {
	if _, ok := s.position[item]; ok {
		return false
	}
	s.position[item] = len(s.items)
	s.items = append(s.items, item)

	return true
}

func (s *orderedSet[T]) remove(item T) bool {
	if _, ok := s.position[item]; !ok {
		return false
	}
	delete(s.position, item)
	s.stale++
	if s.stale > len(s.items)/2 {
		s.compact()
	}

	return true
}

func (s *orderedSet[T]) has(item T) bool {
	_, ok := s.position[item]

	return ok
}

func (s *orderedSet[T]) len() int {
	return len(s.position)
}

// snapshot copies the live items in insertion order.
func (s *orderedSet[T]) snapshot() []T {
	live := make([]T, 0, len(s.position))
	for slot, item := range s.items {
		if current, ok := s.position[item]; ok && current == slot {
			live = append(live, item)
		}
	}

	return live
}

func (s *orderedSet[T]) compact() {
	live := s.snapshot()
	for slot, item := range live {
		s.position[item] = slot
	}
	s.items = live
	s.stale = 0
}

// Index maps a parent id to the ordered set of its child ids.
//
// A parent with no children has no entry.
type Index[P comparable, C comparable] struct {
	sets map[P]*orderedSet[C]
}

func newIndex[P comparable, C comparable]() *Index[P, C] {
	return &Index[P, C]{sets: make(map[P]*orderedSet[C])}
}

// Children returns a snapshot of the children of parent in insertion order.
func (x *Index[P, C]) Children(parent P) []C {
	set, ok := x.sets[parent]
	if !ok {
		return nil
	}

	return set.snapshot()
}

// Has reports whether child is indexed under parent.
func (x *Index[P, C]) Has(parent P, child C) bool {
	set, ok := x.sets[parent]

	return ok && set.has(child)
}

// HasParent reports whether parent has at least one child.
func (x *Index[P, C]) HasParent(parent P) bool {
	_, ok := x.sets[parent]

	return ok
}

// Len returns the number of children under parent.
func (x *Index[P, C]) Len(parent P) int {
	set, ok := x.sets[parent]
	if !ok {
		return 0
	}

	return set.len()
}

// Parents enumerates every parent with children in unspecified order.
func (x *Index[P, C]) Parents() []P {
	parents := make([]P, 0, len(x.sets))
	for parent := range x.sets {
		parents = append(parents, parent)
	}

	return parents
}

// Contains reports whether child is indexed under any parent. It scans every
// parent.
func (x *Index[P, C]) Contains(child C) bool {
	for _, set := range x.sets {
		if set.has(child) {
			return true
		}
	}

	return false
}

func (x *Index[P, C]) add(parent P, child C) {
	set, ok := x.sets[parent]
	if !ok {
		set = newOrderedSet[C]()
		x.sets[parent] = set
	}
	set.add(child)
}

func (x *Index[P, C]) remove(parent P, child C) {
	set, ok := x.sets[parent]
	if !ok {
		return
	}
	set.remove(child)
	if set.len() == 0 {
		delete(x.sets, parent)
	}
}

// drop removes parent and returns its former children.
func (x *Index[P, C]) drop(parent P) []C {
	set, ok := x.sets[parent]
	if !ok {
		return nil
	}
	delete(x.sets, parent)

	return set.snapshot()
}

func (x *Index[P, C]) clear() {
	x.sets = make(map[P]*orderedSet[C])
}
