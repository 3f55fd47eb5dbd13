package ecs

// Commands buffers structural mutations requested while stores are being
// iterated, so iteration never invalidates itself. Operations keep their
// submission order across kinds and are applied by
// Registry.FlushCommandBuffer.
type Commands struct {
	ops []func(*Registry)
}

func newCommands() *Commands {
	return &Commands{}
}

func (c *Commands) push(op func(*Registry)) {
	c.ops = append(c.ops, op)
}

func (c *Commands) flush(r *Registry) {
	// Index loop: ops queued by an op run in the same flush, after the
	// current batch.
	for i := 0; i < len(c.ops); i++ {
		c.ops[i](r)
	}
	c.ops = c.ops[:0]
}

// QueueAdd defers Add(r, e, v) until the next FlushCommandBuffer. v is
// captured by value. Liveness is re-checked at execution time; an add
// against an entity that died in the meantime is dropped with a log line.
func QueueAdd[T any](r *Registry, e Entity, v T) {
	r.commands.push(func(r *Registry) {
		Add(r, e, v)
	})
}

// QueueRemove defers Remove[T](r, e) until the next FlushCommandBuffer.
func QueueRemove[T any](r *Registry, e Entity) {
	r.commands.push(func(r *Registry) {
		Remove[T](r, e)
	})
}

// SpawnInit attaches one component to a freshly spawned entity.
type SpawnInit func(*Registry, Entity)

// SpawnComponent captures v by value for a queued spawn.
func SpawnComponent[T any](v T) SpawnInit {
	return func(r *Registry, e Entity) {
		Add(r, e, v)
	}
}

// QueueSpawn defers creation of a new entity carrying the given components.
func (r *Registry) QueueSpawn(inits ...SpawnInit) {
	r.commands.push(func(r *Registry) {
		e := r.CreateEntity()
		for _, init := range inits {
			init(r, e)
		}
	})
}
