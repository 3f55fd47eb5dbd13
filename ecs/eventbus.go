package ecs

import (
	"reflect"

	"go.uber.org/zap"
)

// Stage names a pump point in the owning game loop.
type Stage string

const (
	// StagePreFlush is pumped after the pre-flush systems run, before the
	// command buffer is applied.
	StagePreFlush Stage = "pre_flush"
	// StagePostFlush is pumped at the end of the frame.
	StagePostFlush Stage = "post_flush"
)

// Subscription is the opaque token returned by Subscribe. It carries the
// event type internally so Unsubscribe does not need to be parameterized at
// the call site.
type Subscription struct {
	typ reflect.Type
	id  uint64
}

// EventBus is a type-indexed publish/subscribe queue with staged delivery.
// Emit never delivers synchronously; events buffer until Pump, and events
// emitted while pumping are held for the next Pump. Within one pump, event
// types dispatch in the order they were first subscribed or emitted to,
// each type's events in FIFO order, and each event to its handlers in
// subscription order.
type EventBus struct {
	queues  map[reflect.Type]eventQueue
	order   []reflect.Type
	nextID  uint64
	pumping bool
	log     *zap.Logger
}

// NewEventBus creates an empty bus. A nil logger disables logging.
func NewEventBus(log *zap.Logger) *EventBus {
	if log == nil {
		log = zap.NewNop()
	}
	return &EventBus{
		queues: make(map[reflect.Type]eventQueue),
		log:    log,
	}
}

// eventQueue is the type-erased face of a typedEventQueue[E].
type eventQueue interface {
	swapPending()
	dispatch(bus *EventBus, stage Stage, w *World)
	compact()
	unsubscribe(id uint64) bool
}

type handlerEntry[E any] struct {
	id    uint64
	fn    func(*World, E)
	alive bool
}

type typedEventQueue[E any] struct {
	typ          reflect.Type
	handlers     []handlerEntry[E]
	pending      []E
	snapshot     []E
	needsCompact bool
}

// queueFor lazily creates the queue for E. First touch is also when the
// type enters the cross-type dispatch order, which is why that order is
// deterministic for a fixed startup sequence.
func queueFor[E any](b *EventBus) *typedEventQueue[E] {
	t := reflect.TypeFor[E]()
	if q, ok := b.queues[t]; ok {
		return q.(*typedEventQueue[E])
	}
	q := &typedEventQueue[E]{typ: t}
	b.queues[t] = q
	b.order = append(b.order, t)
	return q
}

// Subscribe registers fn for events of type E and returns a token for
// Unsubscribe. Handlers run in subscription order. Subscribing from inside
// a handler is safe; the new handler first sees events dispatched after the
// current type's pass.
func Subscribe[E any](b *EventBus, fn func(*World, E)) Subscription {
	q := queueFor[E](b)
	b.nextID++
	q.handlers = append(q.handlers, handlerEntry[E]{id: b.nextID, fn: fn, alive: true})
	return Subscription{typ: q.typ, id: b.nextID}
}

// Unsubscribe deactivates the handler identified by sub. Invalid tokens are
// logged no-ops. Deactivation is immediate, so a handler can remove itself
// or a not-yet-invoked peer mid-dispatch; the entry is physically compacted
// out after the type's next dispatch, never mid-pass.
func (b *EventBus) Unsubscribe(sub Subscription) {
	if sub.typ == nil {
		b.log.Warn("unsubscribe with invalid token")
		return
	}
	q, ok := b.queues[sub.typ]
	if !ok {
		b.log.Warn("unsubscribe for unknown event type",
			zap.String("event", sub.typ.String()))
		return
	}
	if !q.unsubscribe(sub.id) {
		b.log.Warn("unsubscribe with unknown handler id",
			zap.String("event", sub.typ.String()),
			zap.Uint64("id", sub.id))
	}
}

// Emit buffers ev for delivery at the next Pump. O(1) amortized, never
// synchronous, safe to call from inside a handler.
func Emit[E any](b *EventBus, ev E) {
	q := queueFor[E](b)
	q.pending = append(q.pending, ev)
}

// Pump delivers every event buffered before the call. Event types first
// touched during this pump are deferred to the next one. A nested Pump from
// inside a handler is a logged no-op, which keeps a misbehaving handler
// from recursing the bus.
func (b *EventBus) Pump(stage Stage, w *World) {
	if b.pumping {
		b.log.Warn("re-entrant pump ignored", zap.String("stage", string(stage)))
		return
	}
	b.pumping = true
	defer func() { b.pumping = false }()

	known := make([]reflect.Type, len(b.order))
	copy(known, b.order)

	// Swap every pending buffer first so emissions from handlers of an
	// earlier type land in the next pump, not later in this one.
	for _, t := range known {
		b.queues[t].swapPending()
	}
	for _, t := range known {
		q := b.queues[t]
		q.dispatch(b, stage, w)
		q.compact()
	}
}

func (q *typedEventQueue[E]) swapPending() {
	q.pending, q.snapshot = q.snapshot[:0], q.pending
}

func (q *typedEventQueue[E]) dispatch(b *EventBus, stage Stage, w *World) {
	// Handler count is frozen here; handlers subscribed during this pass
	// do not see this pump's events. Aliveness is checked per delivery so
	// an unsubscribe takes effect for the remaining events immediately.
	frozen := len(q.handlers)
	for i := range q.snapshot {
		for h := 0; h < frozen; h++ {
			if !q.handlers[h].alive {
				continue
			}
			q.invoke(b, stage, w, q.handlers[h].fn, q.snapshot[i])
		}
	}
	q.snapshot = q.snapshot[:0]
}

// invoke isolates handler panics: one faulty handler must not stop delivery
// to the rest.
func (q *typedEventQueue[E]) invoke(b *EventBus, stage Stage, w *World, fn func(*World, E), ev E) {
	defer func() {
		if rec := recover(); rec != nil {
			b.log.Error("event handler panicked",
				zap.String("event", q.typ.String()),
				zap.String("stage", string(stage)),
				zap.Any("panic", rec))
		}
	}()
	fn(w, ev)
}

func (q *typedEventQueue[E]) compact() {
	if !q.needsCompact {
		return
	}
	kept := q.handlers[:0]
	for _, entry := range q.handlers {
		if entry.alive {
			kept = append(kept, entry)
		}
	}
	q.handlers = kept
	q.needsCompact = false
}

func (q *typedEventQueue[E]) unsubscribe(id uint64) bool {
	for i := range q.handlers {
		if q.handlers[i].id == id && q.handlers[i].alive {
			q.handlers[i].alive = false
			q.needsCompact = true
			return true
		}
	}
	return false
}
