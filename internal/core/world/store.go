package world

import "github.com/zeusync/asteroids/internal/core/models"

// Store holds one component type keyed by entity.
type Store[T any] struct {
	items map[models.EntityID]*T
}

func newStore[T any]() *Store[T] {
	return &Store[T]{items: make(map[models.EntityID]*T)}
}

// Get returns the component of id. The pointer stays valid until the
// component is removed; writes through it mutate the world.
func (s *Store[T]) Get(id models.EntityID) (*T, bool) {
	v, ok := s.items[id]
	return v, ok
}

func (s *Store[T]) Has(id models.EntityID) bool {
	_, ok := s.items[id]
	return ok
}

func (s *Store[T]) Len() int { return len(s.items) }

func (s *Store[T]) set(id models.EntityID, v T) {
	if cur, ok := s.items[id]; ok {
		*cur = v
		return
	}
	s.items[id] = &v
}

func (s *Store[T]) delete(id models.EntityID) {
	delete(s.items, id)
}
