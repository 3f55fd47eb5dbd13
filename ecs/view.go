package ecs

import (
	"iter"
	"reflect"
	"sort"
	"unsafe"
)

// View is a query over entities carrying a specific combination of
// component types. The type parameter T must be a struct whose fields are
// pointers to component types; embedded fields are required, and named
// fields may be marked `ecs:"optional"`.
//
// Iteration drives the smallest required store and probes the others by
// entity, so the cost is O(size of smallest store x number of fields). The
// driving store is chosen on every call because store sizes shift between
// frames. Component pointers in the yielded struct follow the usual rule:
// valid only until the next structural change to that component's store.
type View[T any] struct {
	registry    *Registry
	types       []reflect.Type
	optional    []bool
	fieldOffset []uintptr
}

// NewView creates a view over r for the struct type T.
func NewView[T any](r *Registry) *View[T] {
	v := &View[T]{}
	v.Init(r)
	return v
}

// Init wires the view to a registry. Called by NewView, and by the
// Scheduler for View fields declared on registered systems.
func (v *View[T]) Init(r *Registry) {
	var zero T
	structType := reflect.TypeOf(zero)
	if structType.Kind() != reflect.Struct {
		panic("View type parameter must be a struct")
	}

	types := make([]reflect.Type, 0, structType.NumField())
	optional := make([]bool, 0, structType.NumField())
	fieldOffset := make([]uintptr, 0, structType.NumField())

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		if field.Type.Kind() != reflect.Ptr {
			panic("View struct fields must be pointer types")
		}
		types = append(types, field.Type.Elem())
		fieldOffset = append(fieldOffset, field.Offset)

		// Embedded fields are always required.
		isOptional := false
		if !field.Anonymous {
			if tag := field.Tag.Get("ecs"); tag != "" {
				if tag == "optional" {
					isOptional = true
				} else {
					panic("invalid ecs tag value: \"" + tag + "\" (only \"optional\" is supported)")
				}
			}
		}
		optional = append(optional, isOptional)
	}

	v.registry = r
	v.types = types
	v.optional = optional
	v.fieldOffset = fieldOffset
}

// resolveStores looks up the member stores and picks the smallest required
// one as the driving store. primary is -1 when a required store does not
// exist yet, in which case no entity can match.
func (v *View[T]) resolveStores() (stores []componentStore, primary int) {
	stores = make([]componentStore, len(v.types))
	primary = -1
	for i, t := range v.types {
		s := v.registry.storeByType(t)
		stores[i] = s
		if v.optional[i] {
			continue
		}
		if s == nil {
			return stores, -1
		}
		if primary < 0 || s.size() < stores[primary].size() {
			primary = i
		}
	}
	return stores, primary
}

// populate writes component pointers into the result struct through the
// pre-computed field offsets, avoiding reflection in the hot path. The
// driving store's component is taken straight from its dense slot; the
// others resolve by entity. Returns false if a required component is
// missing.
func (v *View[T]) populate(resultPtr unsafe.Pointer, e Entity, denseIdx int, stores []componentStore, primary int) bool {
	for i := range v.types {
		fieldPtr := unsafe.Pointer(uintptr(resultPtr) + v.fieldOffset[i])

		var componentPtr any
		if i == primary {
			componentPtr = stores[i].ptrAt(denseIdx)
		} else if stores[i] != nil {
			componentPtr = stores[i].getPtr(e)
		}

		if componentPtr == nil {
			if !v.optional[i] {
				return false
			}
			*(*unsafe.Pointer)(fieldPtr) = nil
			continue
		}
		*(*unsafe.Pointer)(fieldPtr) = (*iface)(unsafe.Pointer(&componentPtr)).data
	}
	return true
}

// Iter yields every live entity that has all required components, in the
// driving store's dense order. That order is an implementation detail and
// changes with unrelated removals; use IterSorted wherever output must not
// depend on insertion/removal history. Structural changes during iteration
// must go through the Queue* functions.
func (v *View[T]) Iter() iter.Seq2[Entity, T] {
	return func(yield func(Entity, T) bool) {
		stores, primary := v.resolveStores()
		if primary < 0 {
			return
		}
		p := stores[primary]

		var result T
		resultPtr := unsafe.Pointer(&result)

		for i := 0; i < p.size(); i++ {
			e := p.entityAt(i)
			if !v.registry.entities.isAlive(e) {
				continue
			}
			if !v.populate(resultPtr, e, i, stores, primary) {
				continue
			}
			if !yield(e, result) {
				return
			}
		}
	}
}

// Values yields just the component structs, for callers that do not need
// the entity.
func (v *View[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, value := range v.Iter() {
			if !yield(value) {
				return
			}
		}
	}
}

// IterSorted materializes the matches, stable-sorts them by entity
// (ascending index then generation, or the provided comparator), then
// yields. Use this wherever entity creation order must not leak into
// visible output through the dense-array traversal order.
func (v *View[T]) IterSorted(less ...func(a, b Entity) bool) iter.Seq2[Entity, T] {
	cmp := Entity.Less
	if len(less) > 0 && less[0] != nil {
		cmp = less[0]
	}
	return func(yield func(Entity, T) bool) {
		var entities []Entity
		var items []T
		for e, item := range v.Iter() {
			entities = append(entities, e)
			items = append(items, item)
		}

		order := make([]int, len(entities))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			return cmp(entities[order[a]], entities[order[b]])
		})

		for _, i := range order {
			if !yield(entities[i], items[i]) {
				return
			}
		}
	}
}

// Fill populates *ptr for e. Returns false if e is dead or missing a
// required component.
func (v *View[T]) Fill(e Entity, ptr *T) bool {
	if !v.registry.entities.isAlive(e) {
		return false
	}
	stores, _ := v.resolveStores()
	return v.populate(unsafe.Pointer(ptr), e, -1, stores, -1)
}

// Get returns a populated view struct for e, or nil if e is dead or missing
// a required component.
func (v *View[T]) Get(e Entity) *T {
	var result T
	if !v.Fill(e, &result) {
		return nil
	}
	return &result
}
