// Package store provides an in-memory entity cache with multi-attribute
// secondary indexing. It is generic over any type that implements
// index.Indexable and assumes a single writer: the engine loop performs
// all mutations in sequence.
package store

import "mtengine/internal/index"

// Store combines an id→entity map with one secondary index over the
// entity's attribute keys.
type Store[T index.Indexable] struct {
	idx   *index.Index
	items map[string]T
}

func New[T index.Indexable]() *Store[T] {
	return &Store[T]{
		idx:   index.New(),
		items: make(map[string]T),
	}
}

// Get is an O(1) point lookup by id.
func (s *Store[T]) Get(id string) (T, bool) {
	v, ok := s.items[id]
	return v, ok
}

// Len reports the number of stored entities.
func (s *Store[T]) Len() int { return len(s.items) }

// Add indexes the entity and inserts it by id. An existing entity under
// the same id is overwritten.
func (s *Store[T]) Add(v T) {
	s.idx.Add(v)
	s.items[v.ID()] = v
}

// Remove drops the id from every index bucket and returns the removed
// entity, if it was present.
func (s *Store[T]) Remove(id string) (T, bool) {
	s.idx.Remove(id)
	v, ok := s.items[id]
	if ok {
		delete(s.items, id)
	}
	return v, ok
}

// Query resolves ids through the index and returns the matching entities.
// An id present in the index but missing from the entity map is skipped;
// the two structures cannot diverge under correct use, and a stray id must
// not take the query down.
func (s *Store[T]) Query(q index.Query) []T {
	ids := s.idx.Query(q)
	result := make([]T, 0, len(ids))
	for id := range ids {
		if v, ok := s.items[id]; ok {
			result = append(result, v)
		}
	}
	return result
}

// RemoveMatching removes every queried entity for which keep returns
// false, and returns the removed entities.
func (s *Store[T]) RemoveMatching(q index.Query, keep func(T) bool) []T {
	var doomed []string
	for id := range s.idx.Query(q) {
		v, ok := s.items[id]
		if !ok {
			continue
		}
		if !keep(v) {
			doomed = append(doomed, id)
		}
	}
	removed := make([]T, 0, len(doomed))
	for _, id := range doomed {
		if v, ok := s.Remove(id); ok {
			removed = append(removed, v)
		}
	}
	return removed
}

// UpdateOne hands the entity under id (or the zero value and ok=false) to
// fn and passes fn's result back to the caller. The store never inserts a
// new entry through this path; fn mutates the existing entity in place.
func (s *Store[T]) UpdateOne(id string, fn func(v T, ok bool) (T, bool)) (T, bool) {
	v, ok := s.items[id]
	return fn(v, ok)
}

// UpdateMatching applies fn to every entity matched by the query and
// collects the side values fn chooses to emit. Iteration order over the
// matched set is not defined.
func UpdateMatching[T index.Indexable, R any](s *Store[T], q index.Query, fn func(T) (R, bool)) []R {
	var result []R
	for _, v := range s.Query(q) {
		if r, ok := fn(v); ok {
			result = append(result, r)
		}
	}
	return result
}
