package ecs_test

import "github.com/saltline/keel/ecs"

// Common test component types
type Position struct {
	X, Y float32
}

type Velocity struct {
	DX, DY float32
}

type Name struct {
	Value string
}

type Health struct {
	Current int
	Max     int
}

type Marker struct{}

type AI struct {
	State int
}

// Custom primitive types for testing non-struct components
type Score int32
type Tag string

// Common test event types
type Damage struct {
	Amount int
}

type Heal struct {
	Amount int
}

type Spawned struct {
	Entity ecs.Entity
}

func newTestWorld() *ecs.World {
	return ecs.NewWorld(nil)
}
