package ecs

import "reflect"

// SetResource stores a world-global value of type T, replacing any previous
// one, and returns a stable pointer to it. Resources are for state that
// belongs to the world rather than to any entity: clocks, score, tuning.
func SetResource[T any](w *World, v T) *T {
	p := new(T)
	*p = v
	w.resources[reflect.TypeFor[T]()] = p
	return p
}

// GetResource returns the world-global T, or nil if none was set. The
// pointer is stable for the lifetime of the world.
func GetResource[T any](w *World) *T {
	if p, ok := w.resources[reflect.TypeFor[T]()]; ok {
		return p.(*T)
	}
	return nil
}

// RemoveResource drops the world-global T, if any.
func RemoveResource[T any](w *World) {
	delete(w.resources, reflect.TypeFor[T]())
}
