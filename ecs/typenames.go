package ecs

import (
	"reflect"

	"go.uber.org/zap"
)

// typeNames is the bidirectional component-type-to-name table consumed by
// save/serialization code, which must persist components under stable
// string identifiers rather than compiler type strings. Registration also
// captures the factories the decode path needs to rebuild typed stores and
// values from a bare name.
type typeNames struct {
	byType map[reflect.Type]*typeNameEntry
	byName map[string]*typeNameEntry
}

type typeNameEntry struct {
	name     string
	typ      reflect.Type
	newStore func() componentStore
	newValue func() any
}

func newTypeNames() *typeNames {
	return &typeNames{
		byType: make(map[reflect.Type]*typeNameEntry),
		byName: make(map[string]*typeNameEntry),
	}
}

// RegisterTypeName binds component type T to a stable name. Conflicting
// registrations (same type under a different name, or the same name for a
// different type) are logged as errors and ignored; the first registration
// wins. This runs at startup, so failing safe beats crashing.
func RegisterTypeName[T any](r *Registry, name string) {
	t := reflect.TypeFor[T]()

	if existing, ok := r.names.byType[t]; ok {
		if existing.name != name {
			r.log.Error("component type already registered under a different name",
				zap.String("type", t.String()),
				zap.String("registered", existing.name),
				zap.String("rejected", name))
		}
		return
	}
	if existing, ok := r.names.byName[name]; ok {
		r.log.Error("component name already bound to a different type",
			zap.String("name", name),
			zap.String("registered", existing.typ.String()),
			zap.String("rejected", t.String()))
		return
	}

	entry := &typeNameEntry{
		name:     name,
		typ:      t,
		newStore: func() componentStore { return NewComponentStore[T]() },
		newValue: func() any { return new(T) },
	}
	r.names.byType[t] = entry
	r.names.byName[name] = entry
}

// TypeName returns the registered name for T, or "".
func TypeName[T any](r *Registry) string {
	return r.NameOf(reflect.TypeFor[T]())
}

// NameOf returns the registered name for t, or "".
func (r *Registry) NameOf(t reflect.Type) string {
	if entry, ok := r.names.byType[t]; ok {
		return entry.name
	}
	return ""
}

// TypeByName returns the component type registered under name, or nil.
func (r *Registry) TypeByName(name string) reflect.Type {
	if entry, ok := r.names.byName[name]; ok {
		return entry.typ
	}
	return nil
}

// NewValueByName returns a pointer to a zero value of the type registered
// under name, suitable as a decode target, or nil for unknown names.
func (r *Registry) NewValueByName(name string) any {
	if entry, ok := r.names.byName[name]; ok {
		return entry.newValue()
	}
	return nil
}

// AddByName attaches a decoded component value (T or *T) to e using its
// registered type name, creating the typed store if needed. Returns false
// with a log line if the name is unknown, the entity is dead, or the value
// has the wrong dynamic type.
func (r *Registry) AddByName(e Entity, name string, v any) bool {
	entry, ok := r.names.byName[name]
	if !ok {
		r.log.Warn("add with unknown component name", zap.String("name", name))
		return false
	}
	if !r.entities.isAlive(e) {
		r.log.Warn("add on dead entity",
			zap.Stringer("entity", e),
			zap.String("component", name))
		return false
	}
	s, ok := r.stores[entry.typ]
	if !ok {
		s = entry.newStore()
		r.stores[entry.typ] = s
	}
	if !s.addAny(e, v) {
		r.log.Error("component value has wrong dynamic type",
			zap.String("name", name),
			zap.String("want", entry.typ.String()),
			zap.String("got", reflect.TypeOf(v).String()))
		return false
	}
	r.recordComposition(e, entry.typ)
	return true
}
