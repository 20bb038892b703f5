package snowflake

import (
	"iter"
	"reflect"
)

// EntityManager owns entity identities and the registry of component pools.
//
// Recycled entities form a free chain threaded through the entities slice: the slot of a
// free entity stores the id of the next free entity, next holds the head, and a live
// entity's slot stores its own id.
//
// Recycle does not remove components. Callers erase every component of an entity before
// recycling it, or call Destroy, which walks every pool. The manager is not synchronised.
type EntityManager struct {
	entities     []Entity
	next         Entity
	staticPools  []ComponentPool
	dynamicPools []ComponentPool
	pageSize     int
	locks        int
	opQueue      opQueue
}

func newEntityManager(pageSize, capacity int) *EntityManager {
	return &EntityManager{
		entities: make([]Entity, 0, capacity),
		next:     Null,
		pageSize: pageSize,
		opQueue:  newOpQueue(),
	}
}

// Create returns a fresh entity, reusing the most recently recycled id when there is one.
func (m *EntityManager) Create() Entity {
	if m.next == Null {
		e := Entity(len(m.entities))
		m.entities = append(m.entities, e)
		return e
	}
	e := m.next
	m.next = m.entities[e]
	m.entities[e] = e
	return e
}

// Recycle pushes e onto the free chain so a later Create can hand out its id again.
// The entity must be live and must no longer own components.
func (m *EntityManager) Recycle(e Entity) error {
	if m.Locked() {
		return LockedManagerError{}
	}
	m.recycle(e)
	return nil
}

func (m *EntityManager) recycle(e Entity) {
	if debugAssertions && !m.Alive(e) {
		panic(ContractViolationError{Op: "Recycle", Entity: e, Reason: "entity is not live"})
	}
	m.entities[e] = m.next
	m.next = e
}

// Destroy erases e from every registered pool and recycles it. It costs one lookup per
// pool; prefer explicit erasure plus Recycle when the owning pools are known.
func (m *EntityManager) Destroy(e Entity) error {
	if m.Locked() {
		return LockedManagerError{}
	}
	m.destroy(e)
	return nil
}

func (m *EntityManager) destroy(e Entity) {
	for pool := range m.Pools() {
		pool.Remove(e)
	}
	m.recycle(e)
}

// Alive reports whether e was created and has not been recycled since.
func (m *EntityManager) Alive(e Entity) bool {
	return int64(e) < int64(len(m.entities)) && m.entities[e] == e
}

// EntitiesCreated is the number of distinct ids handed out so far.
func (m *EntityManager) EntitiesCreated() int {
	return len(m.entities)
}

// EntitiesActive walks the free chain, so it costs O(recycled entities). Cache the result
// if it is needed often.
func (m *EntityManager) EntitiesActive() int {
	free := 0
	for e := m.next; e != Null; e = m.entities[e] {
		free++
	}
	return len(m.entities) - free
}

// Live yields every live entity in id order.
func (m *EntityManager) Live() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		for id, e := range m.entities {
			if e != Entity(id) {
				continue
			}
			if !yield(e) {
				return
			}
		}
	}
}

// Pool returns the pool registered for c, or nil if none has been created yet.
func (m *EntityManager) Pool(c Component) ComponentPool {
	return m.lookup(c.componentKey())
}

// Pools yields every registered pool, static ids first.
func (m *EntityManager) Pools() iter.Seq[ComponentPool] {
	return func(yield func(ComponentPool) bool) {
		for _, table := range [2][]ComponentPool{m.staticPools, m.dynamicPools} {
			for _, pool := range table {
				if pool == nil {
					continue
				}
				if !yield(pool) {
					return
				}
			}
		}
	}
}

// Clear forgets every entity and empties every pool. Pools stay registered.
func (m *EntityManager) Clear() error {
	if m.Locked() {
		return LockedManagerError{}
	}
	for pool := range m.Pools() {
		pool.Clear()
	}
	m.entities = m.entities[:0]
	m.next = Null
	return nil
}

func (m *EntityManager) Locked() bool {
	return m.locks > 0
}

// Lock defers Recycle, Destroy and Erase requests made through the Enqueue methods until
// the matching Unlock. Locks nest.
func (m *EntityManager) Lock() {
	m.locks++
}

// Unlock releases one lock and flushes the operation queue when the last one is gone.
func (m *EntityManager) Unlock() {
	if m.locks == 0 {
		return
	}
	m.locks--
	if m.locks == 0 {
		m.processOperationQueue()
	}
}

func (m *EntityManager) lookup(key componentKey) ComponentPool {
	table := m.dynamicPools
	if key.static {
		table = m.staticPools
	}
	if int(key.id) >= len(table) {
		return nil
	}
	return table[key.id]
}

func assurePool[C any](m *EntityManager, key componentKey) *componentPool[C] {
	table := &m.dynamicPools
	if key.static {
		table = &m.staticPools
	}
	if int(key.id) >= len(*table) {
		*table = append(*table, make([]ComponentPool, int(key.id)+1-len(*table))...)
	}
	if existing := (*table)[key.id]; existing != nil {
		return typedPool[C](existing)
	}
	pool := newComponentPool[C](key, m.pageSize)
	(*table)[key.id] = pool
	return pool
}

func typedPool[C any](pool ComponentPool) *componentPool[C] {
	if debugAssertions && pool == nil {
		panic(ContractViolationError{Op: "Pool", Entity: Null, Reason: reflect.TypeFor[C]().String() + " has no pool"})
	}
	typed, ok := pool.(*componentPool[C])
	if !ok {
		panic(PoolTypeError{ID: pool.ID(), Want: reflect.TypeFor[C](), Got: pool.Type()})
	}
	return typed
}

// Emplace attaches value to e in the pool of C, creating the pool on first use.
func Emplace[C any](m *EntityManager, e Entity, value C) *C {
	return assurePool[C](m, componentKeyFor[C]()).Emplace(e, value)
}

// EmplaceFunc attaches a zero C to e and constructs it in place with init.
func EmplaceFunc[C any](m *EntityManager, e Entity, init func(*C)) *C {
	return assurePool[C](m, componentKeyFor[C]()).EmplaceFunc(e, init)
}

// Get returns the C of e. Both the pool and the component must exist.
func Get[C any](m *EntityManager, e Entity) *C {
	return typedPool[C](m.lookup(componentKeyFor[C]())).Get(e)
}

// Find returns an iterator at the C of e, or an invalid iterator if there is none.
func Find[C any](m *EntityManager, e Entity) ComponentIterator[C] {
	pool := m.lookup(componentKeyFor[C]())
	if pool == nil {
		return ComponentIterator[C]{}
	}
	return typedPool[C](pool).Find(e)
}

// Has reports whether e owns a C.
func Has[C any](m *EntityManager, e Entity) bool {
	pool := m.lookup(componentKeyFor[C]())
	return pool != nil && pool.Contains(e)
}

// Erase detaches the C of e. The component must exist.
func Erase[C any](m *EntityManager, e Entity) error {
	if m.Locked() {
		return LockedManagerError{}
	}
	typedPool[C](m.lookup(componentKeyFor[C]())).Erase(e)
	return nil
}

// StorageOf returns the typed storage of C, creating the pool on first use.
func StorageOf[C any](m *EntityManager) *ComponentStorage[C] {
	return &assurePool[C](m, componentKeyFor[C]()).ComponentStorage
}
