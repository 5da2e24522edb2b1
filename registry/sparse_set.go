package registry

// ID is any integer identifier starting at 1. Zero is never a valid id.
type ID interface {
	~int | ~int64 | ~uint32 | ~uint64
}

// SparseSet stores values keyed by id in a dense slice. Iteration order is
// insertion order until a Remove swaps the last element into the hole.
type SparseSet[K ID, V any] struct {
	denseIDs    []K
	denseValues []V
	sparse      []int
}

// Has returns true if the id exists in the set.
func (s *SparseSet[K, V]) Has(id K) bool {
	if s == nil || id <= 0 || int(id)-1 >= len(s.sparse) {
		return false
	}
	idx := s.sparse[int(id)-1]
	return idx >= 0 && idx < len(s.denseIDs) && s.denseIDs[idx] == id
}

// Get returns the value for id.
func (s *SparseSet[K, V]) Get(id K) (V, bool) {
	if !s.Has(id) {
		var zero V
		return zero, false
	}
	return s.denseValues[s.sparse[int(id)-1]], true
}

// Set inserts or updates the value for id.
func (s *SparseSet[K, V]) Set(id K, v V) {
	if s == nil || id <= 0 {
		return
	}
	for int(id)-1 >= len(s.sparse) {
		s.sparse = append(s.sparse, -1)
	}
	if s.Has(id) {
		s.denseValues[s.sparse[int(id)-1]] = v
		return
	}
	s.denseIDs = append(s.denseIDs, id)
	s.denseValues = append(s.denseValues, v)
	s.sparse[int(id)-1] = len(s.denseIDs) - 1
}

// Remove deletes the value for id and reports whether it was present.
func (s *SparseSet[K, V]) Remove(id K) bool {
	if s == nil || !s.Has(id) {
		return false
	}
	idx := s.sparse[int(id)-1]
	last := len(s.denseIDs) - 1
	lastID := s.denseIDs[last]

	s.denseIDs[idx] = s.denseIDs[last]
	s.denseValues[idx] = s.denseValues[last]
	s.sparse[int(lastID)-1] = idx

	var zero V
	s.denseValues[last] = zero
	s.denseIDs = s.denseIDs[:last]
	s.denseValues = s.denseValues[:last]
	s.sparse[int(id)-1] = -1
	return true
}

func (s *SparseSet[K, V]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.denseIDs)
}

// IDs returns the dense id list. The slice is owned by the set.
func (s *SparseSet[K, V]) IDs() []K {
	if s == nil {
		return nil
	}
	return s.denseIDs
}

// Values returns the dense value list. The slice is owned by the set.
func (s *SparseSet[K, V]) Values() []V {
	if s == nil {
		return nil
	}
	return s.denseValues
}

// Clear drops every entry but keeps the allocated capacity.
func (s *SparseSet[K, V]) Clear() {
	if s == nil {
		return
	}
	for _, id := range s.denseIDs {
		s.sparse[int(id)-1] = -1
	}
	clear(s.denseValues)
	s.denseIDs = s.denseIDs[:0]
	s.denseValues = s.denseValues[:0]
}
