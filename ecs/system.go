package ecs

// Phase selects where in the frame a system runs relative to the command
// buffer flush.
type Phase int

const (
	// PhasePreFlush systems run first. Structural changes they queue are
	// applied before the post-flush systems see the world.
	PhasePreFlush Phase = iota
	// PhasePostFlush systems run after the flush.
	PhasePostFlush
)

// System is a unit of per-frame behavior. Systems may declare View fields;
// the Scheduler initializes them during Register, so a system never has to
// thread the registry through its constructor.
type System interface {
	Execute(frame *UpdateFrame)
}
