package ecs

import "reflect"

const sparseAbsent = -1

// ComponentStore holds every T attached to any entity, packed into a dense
// slice for cache-friendly iteration. A sparse slice maps entity index to
// dense slot; removal swaps the last slot into the hole so the dense arrays
// never fragment.
//
// Pointers returned by Add and Get are valid only until the next Add or
// Remove on the same store; both can relocate dense storage.
type ComponentStore[T any] struct {
	sparse   []int32
	dense    []T
	entities []Entity
}

// NewComponentStore creates an empty store. Stores are normally created
// lazily by the Registry; standalone construction exists for tests and
// tooling.
func NewComponentStore[T any]() *ComponentStore[T] {
	return &ComponentStore[T]{}
}

// Size returns the number of components held.
func (s *ComponentStore[T]) Size() int {
	return len(s.dense)
}

// slot returns the dense slot for e, or -1. The dense entity record is
// double-checked so a stale sparse entry left for a recycled index reads as
// absent instead of aliasing another entity's component, and an
// out-of-bounds sparse value reads as absent instead of crashing.
func (s *ComponentStore[T]) slot(e Entity) int {
	if e.Index == 0 || int(e.Index) >= len(s.sparse) {
		return -1
	}
	i := int(s.sparse[e.Index])
	if i < 0 || i >= len(s.dense) || s.entities[i] != e {
		return -1
	}
	return i
}

// Add attaches v to e, replacing any existing T in place (same dense slot).
func (s *ComponentStore[T]) Add(e Entity, v T) *T {
	if i := s.slot(e); i >= 0 {
		s.dense[i] = v
		return &s.dense[i]
	}
	for int(e.Index) >= len(s.sparse) {
		s.sparse = append(s.sparse, sparseAbsent)
	}
	s.dense = append(s.dense, v)
	s.entities = append(s.entities, e)
	s.sparse[e.Index] = int32(len(s.dense) - 1)
	return &s.dense[len(s.dense)-1]
}

// Remove detaches e's component by swapping the last dense slot into its
// place and popping. O(1); dense order is not preserved. No-op if absent.
func (s *ComponentStore[T]) Remove(e Entity) {
	i := s.slot(e)
	if i < 0 {
		return
	}
	last := len(s.dense) - 1
	moved := s.entities[last]
	s.dense[i] = s.dense[last]
	s.entities[i] = moved
	s.sparse[moved.Index] = int32(i)

	var zero T
	s.dense[last] = zero
	s.dense = s.dense[:last]
	s.entities = s.entities[:last]
	s.sparse[e.Index] = sparseAbsent
}

// Has reports whether e has a component in this store.
func (s *ComponentStore[T]) Has(e Entity) bool {
	return s.slot(e) >= 0
}

// Get returns a pointer to e's component, or nil.
func (s *ComponentStore[T]) Get(e Entity) *T {
	if i := s.slot(e); i >= 0 {
		return &s.dense[i]
	}
	return nil
}

// TryGet returns a copy of e's component.
func (s *ComponentStore[T]) TryGet(e Entity) (T, bool) {
	if i := s.slot(e); i >= 0 {
		return s.dense[i], true
	}
	var zero T
	return zero, false
}

// Each visits every (entity, component) pair in dense order. The callback
// must not add or remove components of this type; queue such changes
// through the Registry's command buffer instead.
func (s *ComponentStore[T]) Each(fn func(Entity, *T)) {
	for i := range s.dense {
		fn(s.entities[i], &s.dense[i])
	}
}

func (s *ComponentStore[T]) componentType() reflect.Type {
	return reflect.TypeFor[T]()
}

func (s *ComponentStore[T]) size() int {
	return len(s.dense)
}

func (s *ComponentStore[T]) entityAt(i int) Entity {
	return s.entities[i]
}

func (s *ComponentStore[T]) remove(e Entity) {
	s.Remove(e)
}

func (s *ComponentStore[T]) has(e Entity) bool {
	return s.Has(e)
}

func (s *ComponentStore[T]) clear() {
	s.sparse = s.sparse[:0]
	s.dense = s.dense[:0]
	s.entities = s.entities[:0]
}

func (s *ComponentStore[T]) getAny(e Entity) any {
	if i := s.slot(e); i >= 0 {
		return s.dense[i]
	}
	return nil
}

func (s *ComponentStore[T]) addAny(e Entity, v any) bool {
	switch val := v.(type) {
	case T:
		s.Add(e, val)
	case *T:
		s.Add(e, *val)
	default:
		return false
	}
	return true
}

func (s *ComponentStore[T]) ptrAt(i int) any {
	return &s.dense[i]
}

func (s *ComponentStore[T]) getPtr(e Entity) any {
	if i := s.slot(e); i >= 0 {
		return &s.dense[i]
	}
	return nil
}
