package ecs

import "fmt"

// Entity identifies a logical game object: an index into the registry's
// tables plus a generation counter. The generation is bumped when the index
// is recycled, so handles held across a destroy stop matching. Entities
// carry no data and are compared with ==.
type Entity struct {
	Index      uint32
	Generation uint32
}

// NilEntity is the zero Entity. Index 0 is never allocated.
var NilEntity = Entity{}

// Valid reports whether e could ever name an entity. It does not check
// liveness; use World.IsAlive for that.
func (e Entity) Valid() bool {
	return e.Index != 0
}

func (e Entity) String() string {
	return fmt.Sprintf("entity(%d:%d)", e.Index, e.Generation)
}

// Less orders entities by index, then generation. This is the default order
// for sorted views.
func (e Entity) Less(o Entity) bool {
	if e.Index != o.Index {
		return e.Index < o.Index
	}
	return e.Generation < o.Generation
}

// key packs the entity into a single integer map key.
func (e Entity) key() uint64 {
	return uint64(e.Index)<<32 | uint64(e.Generation)
}
