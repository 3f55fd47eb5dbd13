package ecs

// UpdateFrame carries per-frame context into systems.
type UpdateFrame struct {
	DeltaTime float64
	World     *World
}

func newUpdateFrame(dt float64, w *World) *UpdateFrame {
	return &UpdateFrame{DeltaTime: dt, World: w}
}
