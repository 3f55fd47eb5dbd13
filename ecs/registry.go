package ecs

import (
	"reflect"
	"slices"

	"github.com/kamstrup/intmap"
	"go.uber.org/zap"
)

// Registry owns every component store, entity lifecycle bookkeeping, the
// per-entity composition table, and the deferred command buffer. Component
// access goes through the generic package-level functions (Add, Get, Has,
// Each) and through Views, since Go methods cannot be generic.
//
// The Registry is single-threaded and not reentrant-safe: structural
// changes requested while a View or Each is iterating must go through the
// Queue* functions and are applied by FlushCommandBuffer.
type Registry struct {
	entities    *entityManager
	stores      map[reflect.Type]componentStore
	composition *intmap.Map[uint32, []reflect.Type]

	live    []Entity
	livePos *intmap.Map[uint32, int]

	commands      *Commands
	destroyQueue  []Entity
	destroyQueued *intmap.Map[uint64, struct{}]

	names *typeNames
	log   *zap.Logger
}

// NewRegistry creates an empty registry. A nil logger disables logging.
func NewRegistry(log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		entities:      newEntityManager(),
		stores:        make(map[reflect.Type]componentStore),
		composition:   intmap.New[uint32, []reflect.Type](256),
		livePos:       intmap.New[uint32, int](256),
		commands:      newCommands(),
		destroyQueued: intmap.New[uint64, struct{}](64),
		names:         newTypeNames(),
		log:           log,
	}
}

// CreateEntity allocates a fresh entity with no components.
func (r *Registry) CreateEntity() Entity {
	e := r.entities.create()
	r.livePos.Put(e.Index, len(r.live))
	r.live = append(r.live, e)
	return e
}

// IsAlive reports whether e is a currently valid handle.
func (r *Registry) IsAlive(e Entity) bool {
	return r.entities.isAlive(e)
}

// Destroy removes every component attached to e and retires the handle.
// Safe on dead or nil entities.
func (r *Registry) Destroy(e Entity) {
	if !r.entities.isAlive(e) {
		r.log.Debug("destroy on dead entity", zap.Stringer("entity", e))
		return
	}
	if types, ok := r.composition.Get(e.Index); ok && len(types) > 0 {
		for _, t := range types {
			if s, ok := r.stores[t]; ok {
				s.remove(e)
			}
		}
	} else {
		// Composition tracking can legitimately be empty, but the stores
		// stay the source of truth if it was ever bypassed.
		for _, s := range r.stores {
			s.remove(e)
		}
	}
	r.composition.Del(e.Index)
	r.removeLive(e)
	r.entities.destroy(e)
}

func (r *Registry) removeLive(e Entity) {
	pos, ok := r.livePos.Get(e.Index)
	if !ok {
		return
	}
	last := len(r.live) - 1
	moved := r.live[last]
	r.live[pos] = moved
	r.livePos.Put(moved.Index, pos)
	r.live = r.live[:last]
	r.livePos.Del(e.Index)
}

// QueueDestroy schedules e for destruction at the next FlushCommandBuffer
// or ProcessDestroyQueue call. Duplicate queues collapse to one.
func (r *Registry) QueueDestroy(e Entity) {
	if _, ok := r.destroyQueued.Get(e.key()); ok {
		return
	}
	r.destroyQueued.Put(e.key(), struct{}{})
	r.destroyQueue = append(r.destroyQueue, e)
}

// ProcessDestroyQueue destroys every queued entity through the normal path.
func (r *Registry) ProcessDestroyQueue() {
	queue := r.destroyQueue
	r.destroyQueue = nil
	r.destroyQueued.Clear()
	for _, e := range queue {
		r.Destroy(e)
	}
}

// FlushCommandBuffer applies every queued structural mutation, then the
// destroy queue. The owning loop calls this at a safe point between
// iteration passes. The destroy queue runs after the commands so a queued
// add cannot leak a component onto an entity queued for destruction.
func (r *Registry) FlushCommandBuffer() {
	r.commands.flush(r)
	r.ProcessDestroyQueue()
}

// Composition returns the component types tracked for e, or nil for dead
// or unknown entities. The returned slice must not be modified.
func (r *Registry) Composition(e Entity) []reflect.Type {
	if !r.entities.isAlive(e) {
		return nil
	}
	types, _ := r.composition.Get(e.Index)
	return types
}

// Alive returns the live entity list in an unspecified order. The slice is
// owned by the registry and must not be modified.
func (r *Registry) Alive() []Entity {
	return r.live
}

// Clear drops every store, all entities, and any queued commands. Used for
// scene reset and save loading. Registered type names survive; they are
// startup configuration.
func (r *Registry) Clear() {
	r.stores = make(map[reflect.Type]componentStore)
	r.composition.Clear()
	r.live = r.live[:0]
	r.livePos.Clear()
	r.commands = newCommands()
	r.destroyQueue = nil
	r.destroyQueued.Clear()
	r.entities.clear()
}

func (r *Registry) recordComposition(e Entity, t reflect.Type) {
	types, _ := r.composition.Get(e.Index)
	if slices.Contains(types, t) {
		return
	}
	r.composition.Put(e.Index, append(types, t))
}

func (r *Registry) forgetComposition(e Entity, t reflect.Type) {
	types, ok := r.composition.Get(e.Index)
	if !ok {
		return
	}
	i := slices.Index(types, t)
	if i < 0 {
		return
	}
	r.composition.Put(e.Index, slices.Delete(types, i, i+1))
}

func (r *Registry) compositionHas(e Entity, t reflect.Type) bool {
	types, ok := r.composition.Get(e.Index)
	return ok && slices.Contains(types, t)
}

func (r *Registry) storeByType(t reflect.Type) componentStore {
	return r.stores[t]
}

func storeFor[T any](r *Registry) *ComponentStore[T] {
	t := reflect.TypeFor[T]()
	if s, ok := r.stores[t]; ok {
		return s.(*ComponentStore[T])
	}
	s := NewComponentStore[T]()
	r.stores[t] = s
	return s
}

// Add attaches v to e, replacing any existing T, and records T in e's
// composition. Returns nil (logged) for dead entities. The returned pointer
// is valid only until the next structural change to T's store; re-fetch by
// entity instead of caching it across frames.
func Add[T any](r *Registry, e Entity, v T) *T {
	if !r.entities.isAlive(e) {
		r.log.Warn("add on dead entity",
			zap.Stringer("entity", e),
			zap.String("component", reflect.TypeFor[T]().String()))
		return nil
	}
	s := storeFor[T](r)
	p := s.Add(e, v)
	r.recordComposition(e, s.componentType())
	return p
}

// Remove detaches T from e. No-op if e is dead or has no T.
func Remove[T any](r *Registry, e Entity) {
	if !r.entities.isAlive(e) {
		r.log.Debug("remove on dead entity",
			zap.Stringer("entity", e),
			zap.String("component", reflect.TypeFor[T]().String()))
		return
	}
	t := reflect.TypeFor[T]()
	s, ok := r.stores[t]
	if !ok {
		return
	}
	s.remove(e)
	r.forgetComposition(e, t)
}

// Has reports whether live entity e carries a T. The composition table and
// the store itself must both agree.
func Has[T any](r *Registry, e Entity) bool {
	if !r.entities.isAlive(e) {
		return false
	}
	t := reflect.TypeFor[T]()
	s, ok := r.stores[t]
	if !ok || !s.has(e) {
		return false
	}
	return r.compositionHas(e, t)
}

// Get returns a pointer to e's T, or nil. Same lifetime caveat as Add.
func Get[T any](r *Registry, e Entity) *T {
	if !r.entities.isAlive(e) {
		return nil
	}
	s, ok := r.stores[reflect.TypeFor[T]()]
	if !ok {
		return nil
	}
	return s.(*ComponentStore[T]).Get(e)
}

// TryGet returns a copy of e's T.
func TryGet[T any](r *Registry, e Entity) (T, bool) {
	if p := Get[T](r, e); p != nil {
		return *p, true
	}
	var zero T
	return zero, false
}

// Each visits every live entity carrying a T, in dense store order.
// Entities that read as dead are skipped. Structural changes during the
// walk must go through the Queue* functions.
func Each[T any](r *Registry, fn func(Entity, *T)) {
	s, ok := r.stores[reflect.TypeFor[T]()]
	if !ok {
		return
	}
	store := s.(*ComponentStore[T])
	for i := 0; i < store.Size(); i++ {
		e := store.entityAt(i)
		if !r.entities.isAlive(e) {
			continue
		}
		fn(e, &store.dense[i])
	}
}

// ComponentValue returns a copy of e's component of dynamic type t as an
// any, or nil. Consumed by serialization code working from type names.
func (r *Registry) ComponentValue(e Entity, t reflect.Type) any {
	if !r.entities.isAlive(e) {
		return nil
	}
	s, ok := r.stores[t]
	if !ok {
		return nil
	}
	return s.getAny(e)
}
