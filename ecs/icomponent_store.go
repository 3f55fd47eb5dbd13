package ecs

import "reflect"

// componentStore is the type-erased face of a ComponentStore[T]. It is what
// lets the Registry own stores for arbitrarily many component types behind
// one type-keyed map.
type componentStore interface {
	componentType() reflect.Type
	remove(e Entity)
	has(e Entity) bool
	size() int
	entityAt(i int) Entity
	clear()

	// getAny and addAny carry component values as any so serialization
	// code can operate purely on registered type names. addAny accepts a
	// T or a *T.
	getAny(e Entity) any
	addAny(e Entity, v any) bool

	// ptrAt and getPtr return a *T as any for view population. getPtr
	// returns a nil interface when the entity has no component.
	ptrAt(i int) any
	getPtr(e Entity) any
}
