package main

import (
	"math/rand"

	"github.com/saltline/keel/ecs"
)

// Component set for the stress workload.

type Position struct {
	X, Y float64
}

type Velocity struct {
	DX, DY float64
}

type Health struct {
	Current, Max int
}

type Lifetime struct {
	Remaining float64
}

// Events.

type DamageEvent struct {
	Target ecs.Entity
	Amount int
}

type DeathEvent struct {
	Entity ecs.Entity
}

// Census is a world resource updated each frame by the post-flush census
// system.
type Census struct {
	Alive  int
	Deaths int64
	Spawns int64
}

func registerTypeNames(r *ecs.Registry) {
	ecs.RegisterTypeName[Position](r, "position")
	ecs.RegisterTypeName[Velocity](r, "velocity")
	ecs.RegisterTypeName[Health](r, "health")
	ecs.RegisterTypeName[Lifetime](r, "lifetime")
}

func subscribeHandlers(w *ecs.World) {
	ecs.Subscribe(w.Events(), func(w *ecs.World, ev DamageEvent) {
		h := ecs.Get[Health](w.Registry(), ev.Target)
		if h == nil {
			return
		}
		h.Current -= ev.Amount
		if h.Current <= 0 {
			ecs.Emit(w.Events(), DeathEvent{Entity: ev.Target})
		}
	})

	ecs.Subscribe(w.Events(), func(w *ecs.World, ev DeathEvent) {
		w.QueueDestroy(ev.Entity)
		if c := ecs.GetResource[Census](w); c != nil {
			c.Deaths++
		}
	})

	ecs.SetResource(w, Census{})
}

func spawnRandomEntity(w *ecs.World) {
	r := w.Registry()
	e := r.CreateEntity()
	ecs.Add(r, e, Position{X: rand.Float64() * 1000, Y: rand.Float64() * 1000})
	if rand.Intn(2) == 0 {
		ecs.Add(r, e, Velocity{DX: rand.Float64()*20 - 10, DY: rand.Float64()*20 - 10})
	}
	if rand.Intn(3) != 0 {
		ecs.Add(r, e, Health{Current: 100, Max: 100})
	}
	if rand.Intn(4) == 0 {
		ecs.Add(r, e, Lifetime{Remaining: rand.Float64() * 30})
	}
}

type movementSystem struct {
	Moving ecs.View[struct {
		*Position
		*Velocity
	}]
}

func (s *movementSystem) Execute(frame *ecs.UpdateFrame) {
	for _, m := range s.Moving.Iter() {
		m.Position.X += m.Velocity.DX * frame.DeltaTime
		m.Position.Y += m.Velocity.DY * frame.DeltaTime
	}
}

type damageSystem struct {
	Targets ecs.View[struct{ *Health }]
}

func (s *damageSystem) Execute(frame *ecs.UpdateFrame) {
	for e := range s.Targets.Iter() {
		if rand.Intn(100) == 0 {
			ecs.Emit(frame.World.Events(), DamageEvent{Target: e, Amount: rand.Intn(40) + 10})
		}
	}
}

type lifetimeSystem struct {
	Expiring ecs.View[struct{ *Lifetime }]
}

func (s *lifetimeSystem) Execute(frame *ecs.UpdateFrame) {
	r := frame.World.Registry()
	for e, item := range s.Expiring.Iter() {
		item.Lifetime.Remaining -= frame.DeltaTime
		if item.Lifetime.Remaining > 0 {
			continue
		}
		frame.World.QueueDestroy(e)

		// Keep the population roughly stable.
		r.QueueSpawn(
			ecs.SpawnComponent(Position{X: rand.Float64() * 1000, Y: rand.Float64() * 1000}),
			ecs.SpawnComponent(Lifetime{Remaining: rand.Float64() * 30}),
			ecs.SpawnComponent(Health{Current: 100, Max: 100}),
		)
		if c := ecs.GetResource[Census](frame.World); c != nil {
			c.Spawns++
		}
	}
}

type censusSystem struct{}

func (s *censusSystem) Execute(frame *ecs.UpdateFrame) {
	if c := ecs.GetResource[Census](frame.World); c != nil {
		c.Alive = len(frame.World.Registry().Alive())
	}
}
