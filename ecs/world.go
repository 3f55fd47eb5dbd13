package ecs

import (
	"reflect"

	"go.uber.org/zap"
)

// World is the façade the rest of the engine talks to: one Registry, one
// EventBus, and a bag of world-global resources. A simulation owns exactly
// one World; it must not be copied.
type World struct {
	registry  *Registry
	events    *EventBus
	resources map[reflect.Type]any
	log       *zap.Logger
}

// NewWorld creates an empty world. A nil logger disables logging.
func NewWorld(log *zap.Logger) *World {
	if log == nil {
		log = zap.NewNop()
	}
	return &World{
		registry:  NewRegistry(log),
		events:    NewEventBus(log),
		resources: make(map[reflect.Type]any),
		log:       log,
	}
}

// Registry returns the component registry.
func (w *World) Registry() *Registry {
	return w.registry
}

// Events returns the event bus.
func (w *World) Events() *EventBus {
	return w.events
}

// CreateEntity allocates a fresh entity.
func (w *World) CreateEntity() Entity {
	return w.registry.CreateEntity()
}

// DestroyEntity immediately destroys e. Inside iteration, use QueueDestroy
// instead.
func (w *World) DestroyEntity(e Entity) {
	w.registry.Destroy(e)
}

// IsAlive reports whether e is a valid handle.
func (w *World) IsAlive(e Entity) bool {
	return w.registry.IsAlive(e)
}

// QueueDestroy schedules e for destruction at the next flush.
func (w *World) QueueDestroy(e Entity) {
	w.registry.QueueDestroy(e)
}

// FlushCommandBuffer applies queued structural changes, then the destroy
// queue.
func (w *World) FlushCommandBuffer() {
	w.registry.FlushCommandBuffer()
}

// Clear resets the registry for a fresh scene (save loading, scene reset).
// Event subscriptions, resources, and registered type names survive.
func (w *World) Clear() {
	w.registry.Clear()
}
