package snowflake

type operation struct {
	typ    operationType
	entity Entity
	key    componentKey
}

type operationType int

const (
	opNone operationType = iota
	opErase
	opRecycle
	opDestroy
)

type opQueue struct {
	componentOps   []operation
	destroyOps     []operation
	// pendingDestroy maps an entity to its entry in destroyOps.
	pendingDestroy map[Entity]int
	pendingMods    map[Entity][]int
}

func newOpQueue() opQueue {
	return opQueue{
		pendingDestroy: make(map[Entity]int),
		pendingMods:    make(map[Entity][]int),
	}
}

// EnqueueErase detaches component c from e now, or after the last Unlock when the manager
// is locked. Unlike Erase, a missing component is ignored.
func (m *EntityManager) EnqueueErase(c Component, e Entity) {
	if !m.Locked() {
		if pool := m.lookup(c.componentKey()); pool != nil {
			pool.Remove(e)
		}
		return
	}
	m.opQueue.enqueueComponentOp(opErase, e, c.componentKey())
}

// EnqueueRecycle recycles e now, or after the last Unlock when the manager is locked.
func (m *EntityManager) EnqueueRecycle(e Entity) {
	if !m.Locked() {
		m.recycle(e)
		return
	}
	m.opQueue.enqueueDestroy(opRecycle, e)
}

// EnqueueDestroy destroys e now, or after the last Unlock when the manager is locked.
// Pending erasures for e are dropped since Destroy covers them.
func (m *EntityManager) EnqueueDestroy(e Entity) {
	if !m.Locked() {
		m.destroy(e)
		return
	}
	m.opQueue.enqueueDestroy(opDestroy, e)
}

func (q *opQueue) enqueueComponentOp(typ operationType, e Entity, key componentKey) {
	// If entity is pending destroy, ignore component operations
	if idx, pending := q.pendingDestroy[e]; pending && q.destroyOps[idx].typ == opDestroy {
		return
	}
	q.pendingMods[e] = append(q.pendingMods[e], len(q.componentOps))
	q.componentOps = append(q.componentOps, operation{
		typ:    typ,
		entity: e,
		key:    key,
	})
}

func (q *opQueue) enqueueDestroy(typ operationType, e Entity) {
	if idx, exists := q.pendingDestroy[e]; exists {
		// A destroy supersedes a queued recycle; the reverse keeps the destroy.
		if typ == opDestroy && q.destroyOps[idx].typ == opRecycle {
			q.destroyOps[idx].typ = opDestroy
			q.dropMods(e)
		}
		return
	}
	q.pendingDestroy[e] = len(q.destroyOps)

	if typ == opDestroy {
		q.dropMods(e)
	}
	q.destroyOps = append(q.destroyOps, operation{
		typ:    typ,
		entity: e,
	})
}

func (q *opQueue) dropMods(e Entity) {
	for _, idx := range q.pendingMods[e] {
		q.componentOps[idx].typ = opNone
	}
	delete(q.pendingMods, e)
}

func (m *EntityManager) processOperationQueue() {
	q := &m.opQueue
	if len(q.componentOps) == 0 && len(q.destroyOps) == 0 {
		return
	}

	// Component removals first, so recycles see entities without components
	for _, op := range q.componentOps {
		if op.typ != opErase {
			continue
		}
		if pool := m.lookup(op.key); pool != nil {
			pool.Remove(op.entity)
		}
	}

	for _, op := range q.destroyOps {
		// Verify entity hasn't been recycled directly since it was queued
		if !m.Alive(op.entity) {
			continue
		}
		switch op.typ {
		case opRecycle:
			m.recycle(op.entity)
		case opDestroy:
			m.destroy(op.entity)
		}
	}

	// Clear all queues
	q.componentOps = q.componentOps[:0]
	q.destroyOps = q.destroyOps[:0]
	clear(q.pendingDestroy)
	clear(q.pendingMods)
}
