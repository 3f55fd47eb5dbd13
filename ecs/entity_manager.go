package ecs

// entityManager allocates entity indices and tracks their generations.
// Index 0 is reserved so the zero Entity can never be alive. Destroying an
// entity bumps its generation and recycles the index through the free list,
// which is what invalidates every previously issued handle to that index.
type entityManager struct {
	generations []uint32
	free        []uint32
}

func newEntityManager() *entityManager {
	return &entityManager{generations: make([]uint32, 1)}
}

func (m *entityManager) create() Entity {
	if n := len(m.free); n > 0 {
		idx := m.free[n-1]
		m.free = m.free[:n-1]
		return Entity{Index: idx, Generation: m.generations[idx]}
	}
	m.generations = append(m.generations, 0)
	return Entity{Index: uint32(len(m.generations) - 1)}
}

func (m *entityManager) isAlive(e Entity) bool {
	return e.Index != 0 &&
		int(e.Index) < len(m.generations) &&
		m.generations[e.Index] == e.Generation
}

// destroy retires e. Double-destroy is safe; the second call sees a dead
// handle and does nothing.
func (m *entityManager) destroy(e Entity) {
	if !m.isAlive(e) {
		return
	}
	m.generations[e.Index]++
	m.free = append(m.free, e.Index)
}

func (m *entityManager) clear() {
	m.generations = append(m.generations[:0], 0)
	m.free = m.free[:0]
}
