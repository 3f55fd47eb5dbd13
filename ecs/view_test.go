package ecs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saltline/keel/ecs"
)

func TestViewIntersection(t *testing.T) {
	r := ecs.NewRegistry(nil)

	both := r.CreateEntity()
	ecs.Add(r, both, Position{X: 1})
	ecs.Add(r, both, Velocity{DX: 2})

	posOnly := r.CreateEntity()
	ecs.Add(r, posOnly, Position{X: 3})

	velOnly := r.CreateEntity()
	ecs.Add(r, velOnly, Velocity{DX: 4})

	v := ecs.NewView[struct {
		*Position
		*Velocity
	}](r)

	var matched []ecs.Entity
	for e, item := range v.Iter() {
		matched = append(matched, e)
		assert.Equal(t, float32(1), item.Position.X)
		assert.Equal(t, float32(2), item.Velocity.DX)
	}
	assert.Equal(t, []ecs.Entity{both}, matched)
}

// The driving store is the smallest required one, re-chosen per call. The
// match set must be the same whichever store happens to be smaller.
func TestViewIntersectionEitherStoreOrdering(t *testing.T) {
	for name, setup := range map[string]func(r *ecs.Registry, matching []ecs.Entity){
		"position smaller": func(r *ecs.Registry, matching []ecs.Entity) {
			for i := 0; i < 20; i++ {
				e := r.CreateEntity()
				ecs.Add(r, e, Velocity{DX: float32(i)})
			}
		},
		"velocity smaller": func(r *ecs.Registry, matching []ecs.Entity) {
			for i := 0; i < 20; i++ {
				e := r.CreateEntity()
				ecs.Add(r, e, Position{X: float32(i)})
			}
		},
	} {
		t.Run(name, func(t *testing.T) {
			r := ecs.NewRegistry(nil)

			matching := make([]ecs.Entity, 5)
			for i := range matching {
				matching[i] = r.CreateEntity()
				ecs.Add(r, matching[i], Position{X: float32(i)})
				ecs.Add(r, matching[i], Velocity{DX: float32(i)})
			}
			setup(r, matching)

			v := ecs.NewView[struct {
				*Position
				*Velocity
			}](r)

			var got []ecs.Entity
			for e := range v.Iter() {
				got = append(got, e)
			}
			assert.ElementsMatch(t, matching, got)
		})
	}
}

func TestViewMutationThroughPointers(t *testing.T) {
	r := ecs.NewRegistry(nil)
	e := r.CreateEntity()
	ecs.Add(r, e, Position{X: 1, Y: 1})
	ecs.Add(r, e, Velocity{DX: 10, DY: 20})

	v := ecs.NewView[struct {
		*Position
		*Velocity
	}](r)

	for _, item := range v.Iter() {
		item.Position.X += item.Velocity.DX
		item.Position.Y += item.Velocity.DY
	}

	p := ecs.Get[Position](r, e)
	require.NotNil(t, p)
	assert.Equal(t, Position{X: 11, Y: 21}, *p)
}

func TestViewOptionalField(t *testing.T) {
	r := ecs.NewRegistry(nil)

	named := r.CreateEntity()
	ecs.Add(r, named, Position{X: 1})
	ecs.Add(r, named, Name{Value: "keel"})

	anonymous := r.CreateEntity()
	ecs.Add(r, anonymous, Position{X: 2})

	v := ecs.NewView[struct {
		*Position
		Label *Name `ecs:"optional"`
	}](r)

	seen := map[ecs.Entity]bool{}
	for e, item := range v.Iter() {
		seen[e] = true
		switch e {
		case named:
			require.NotNil(t, item.Label)
			assert.Equal(t, "keel", item.Label.Value)
		case anonymous:
			assert.Nil(t, item.Label)
		}
	}
	assert.True(t, seen[named])
	assert.True(t, seen[anonymous])
}

func TestViewMissingStoreYieldsNothing(t *testing.T) {
	r := ecs.NewRegistry(nil)
	e := r.CreateEntity()
	ecs.Add(r, e, Position{X: 1})

	// No Velocity store exists at all.
	v := ecs.NewView[struct {
		*Position
		*Velocity
	}](r)

	count := 0
	for range v.Iter() {
		count++
	}
	assert.Zero(t, count)

	// An optional member with no store still matches.
	opt := ecs.NewView[struct {
		*Position
		Vel *Velocity `ecs:"optional"`
	}](r)
	for _, item := range opt.Iter() {
		count++
		assert.Nil(t, item.Vel)
	}
	assert.Equal(t, 1, count)
}

func TestViewSkipsDeadEntities(t *testing.T) {
	r := ecs.NewRegistry(nil)

	e1 := r.CreateEntity()
	e2 := r.CreateEntity()
	ecs.Add(r, e1, Position{X: 1})
	ecs.Add(r, e2, Position{X: 2})
	r.Destroy(e1)

	v := ecs.NewView[struct{ *Position }](r)
	var got []ecs.Entity
	for e := range v.Iter() {
		got = append(got, e)
	}
	assert.Equal(t, []ecs.Entity{e2}, got)
}

func TestViewIterSortedStableUnderChurn(t *testing.T) {
	r := ecs.NewRegistry(nil)

	entities := make([]ecs.Entity, 8)
	for i := range entities {
		entities[i] = r.CreateEntity()
		ecs.Add(r, entities[i], Score(i))
	}

	// Churn the dense order: removals swap tail entities into freed slots.
	ecs.Remove[Score](r, entities[1])
	ecs.Remove[Score](r, entities[4])
	ecs.Add(r, entities[1], Score(1))

	v := ecs.NewView[struct{ *Score }](r)
	var order []uint32
	for e := range v.IterSorted() {
		order = append(order, e.Index)
	}
	assert.Equal(t, []uint32{1, 2, 3, 4, 6, 7, 8}, order)
}

func TestViewIterSortedCustomComparator(t *testing.T) {
	r := ecs.NewRegistry(nil)
	for i := 0; i < 4; i++ {
		e := r.CreateEntity()
		ecs.Add(r, e, Score(i))
	}

	v := ecs.NewView[struct{ *Score }](r)
	var order []uint32
	for e := range v.IterSorted(func(a, b ecs.Entity) bool { return a.Index > b.Index }) {
		order = append(order, e.Index)
	}
	assert.Equal(t, []uint32{4, 3, 2, 1}, order)
}

func TestViewGetAndFill(t *testing.T) {
	r := ecs.NewRegistry(nil)

	e := r.CreateEntity()
	ecs.Add(r, e, Position{X: 7})
	ecs.Add(r, e, Velocity{DX: 8})

	bare := r.CreateEntity()
	ecs.Add(r, bare, Position{X: 9})

	v := ecs.NewView[struct {
		*Position
		*Velocity
	}](r)

	item := v.Get(e)
	require.NotNil(t, item)
	assert.Equal(t, float32(7), item.Position.X)
	assert.Equal(t, float32(8), item.Velocity.DX)

	assert.Nil(t, v.Get(bare), "missing required component")

	r.Destroy(e)
	assert.Nil(t, v.Get(e), "dead entity")
}

func TestViewValues(t *testing.T) {
	r := ecs.NewRegistry(nil)
	for i := 1; i <= 3; i++ {
		e := r.CreateEntity()
		ecs.Add(r, e, Score(i))
	}

	v := ecs.NewView[struct{ *Score }](r)
	total := Score(0)
	for item := range v.Values() {
		total += *item.Score
	}
	assert.Equal(t, Score(6), total)
}

func TestViewPanicsOnBadTypeParameter(t *testing.T) {
	r := ecs.NewRegistry(nil)

	assert.Panics(t, func() {
		ecs.NewView[struct{ Position }](r) // non-pointer field
	})
	assert.Panics(t, func() {
		ecs.NewView[struct {
			P *Position `ecs:"require"` // bogus tag value
		}](r)
	})
	assert.Panics(t, func() {
		ecs.NewView[int](r)
	})
}
