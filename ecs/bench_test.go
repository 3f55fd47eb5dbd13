package ecs_test

import (
	"testing"

	"github.com/saltline/keel/ecs"
)

func benchRegistry(n int) *ecs.Registry {
	r := ecs.NewRegistry(nil)
	for i := 0; i < n; i++ {
		e := r.CreateEntity()
		ecs.Add(r, e, Position{X: float32(i), Y: float32(i)})
		if i%2 == 0 {
			ecs.Add(r, e, Velocity{DX: 1, DY: 1})
		}
		if i%4 == 0 {
			ecs.Add(r, e, Health{Current: 100, Max: 100})
		}
	}
	return r
}

func BenchmarkCreateEntity(b *testing.B) {
	r := ecs.NewRegistry(nil)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.CreateEntity()
	}
}

func BenchmarkCreateDestroyEntity(b *testing.B) {
	r := ecs.NewRegistry(nil)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e := r.CreateEntity()
		r.Destroy(e)
	}
}

func BenchmarkAddComponent(b *testing.B) {
	r := ecs.NewRegistry(nil)
	e := r.CreateEntity()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ecs.Add(r, e, Position{X: float32(i)})
	}
}

func BenchmarkGetComponent(b *testing.B) {
	r := benchRegistry(1000)
	e := r.Alive()[500]
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ecs.Get[Position](r, e)
	}
}

func BenchmarkHasComponent(b *testing.B) {
	r := benchRegistry(1000)
	e := r.Alive()[500]
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ecs.Has[Velocity](r, e)
	}
}

func BenchmarkEach1000(b *testing.B) {
	r := benchRegistry(1000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ecs.Each(r, func(_ ecs.Entity, p *Position) {
			p.X++
		})
	}
}

func BenchmarkViewIter1000x2(b *testing.B) {
	r := benchRegistry(1000)
	v := ecs.NewView[struct {
		*Position
		*Velocity
	}](r)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, m := range v.Iter() {
			m.Position.X += m.Velocity.DX
		}
	}
}

func BenchmarkViewIter1000x3(b *testing.B) {
	r := benchRegistry(1000)
	v := ecs.NewView[struct {
		*Position
		*Velocity
		*Health
	}](r)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, m := range v.Iter() {
			m.Position.X += m.Velocity.DX
		}
	}
}

func BenchmarkViewIterSorted1000(b *testing.B) {
	r := benchRegistry(1000)
	v := ecs.NewView[struct {
		*Position
	}](r)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for range v.IterSorted() {
		}
	}
}

func BenchmarkViewGet(b *testing.B) {
	r := benchRegistry(1000)
	v := ecs.NewView[struct {
		*Position
		*Velocity
	}](r)
	e := r.Alive()[500]
	var item struct {
		*Position
		*Velocity
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		v.Fill(e, &item)
	}
}

func BenchmarkQueueAddFlush(b *testing.B) {
	r := ecs.NewRegistry(nil)
	e := r.CreateEntity()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ecs.QueueAdd(r, e, Position{X: float32(i)})
		r.FlushCommandBuffer()
	}
}

func BenchmarkEventBusEmitPump(b *testing.B) {
	w := ecs.NewWorld(nil)
	bus := w.Events()
	sink := 0
	ecs.Subscribe(bus, func(_ *ecs.World, ev Damage) { sink += ev.Amount })
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ecs.Emit(bus, Damage{Amount: 1})
		bus.Pump(ecs.StagePreFlush, w)
	}
}
