package snowflake

import "reflect"

var _ Component = ComponentType[struct{}]{}

func (c ComponentType[C]) componentKey() componentKey {
	return c.key
}

// ID is the resolved component id; see Static for which table it indexes.
func (c ComponentType[C]) ID() ComponentID {
	return c.key.id
}

func (c ComponentType[C]) Static() bool {
	return c.key.static
}

// Emplace attaches value to e, creating the pool on first use
func (c ComponentType[C]) Emplace(m *EntityManager, e Entity, value C) *C {
	return assurePool[C](m, c.key).Emplace(e, value)
}

// EmplaceFunc attaches a zero C to e and constructs it in place with init
func (c ComponentType[C]) EmplaceFunc(m *EntityManager, e Entity, init func(*C)) *C {
	return assurePool[C](m, c.key).EmplaceFunc(e, init)
}

// Get retrieves the component of e without checking that it exists
func (c ComponentType[C]) Get(m *EntityManager, e Entity) *C {
	return typedPool[C](m.lookup(c.key)).Get(e)
}

// GetSafe retrieves the component of e, returning false when e has none
func (c ComponentType[C]) GetSafe(m *EntityManager, e Entity) (bool, *C) {
	it := c.Find(m, e)
	if !it.Valid() {
		return false, nil
	}
	return true, it.Value()
}

// Find returns an iterator at the component of e, or an invalid iterator
func (c ComponentType[C]) Find(m *EntityManager, e Entity) ComponentIterator[C] {
	pool := m.lookup(c.key)
	if pool == nil {
		return ComponentIterator[C]{}
	}
	return typedPool[C](pool).Find(e)
}

// GetFromCursor retrieves the component of the entity under the cursor
func (c ComponentType[C]) GetFromCursor(cursor *Cursor) *C {
	return c.Get(cursor.manager, cursor.current)
}

func (c ComponentType[C]) Contains(m *EntityManager, e Entity) bool {
	pool := m.lookup(c.key)
	return pool != nil && pool.Contains(e)
}

// Erase detaches the component of e, which must exist
func (c ComponentType[C]) Erase(m *EntityManager, e Entity) error {
	if m.Locked() {
		return LockedManagerError{}
	}
	typedPool[C](m.lookup(c.key)).Erase(e)
	return nil
}

// EraseSafe detaches the component of e, returning ComponentNotFoundError when e has none
func (c ComponentType[C]) EraseSafe(m *EntityManager, e Entity) error {
	if m.Locked() {
		return LockedManagerError{}
	}
	pool := m.lookup(c.key)
	if pool == nil || !pool.Contains(e) {
		return ComponentNotFoundError{Component: reflect.TypeFor[C](), Entity: e}
	}
	typedPool[C](pool).Erase(e)
	return nil
}

// Storage returns the typed storage behind this component in m
func (c ComponentType[C]) Storage(m *EntityManager) *ComponentStorage[C] {
	return &assurePool[C](m, c.key).ComponentStorage
}
