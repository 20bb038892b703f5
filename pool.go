package snowflake

import "reflect"

var _ ComponentPool = &componentPool[struct{}]{}

type componentPool[C any] struct {
	ComponentStorage[C]
	key componentKey
}

func newComponentPool[C any](key componentKey, pageSize int) *componentPool[C] {
	pool := &componentPool[C]{key: key}
	pool.set.init(pageSize)
	return pool
}

func (p *componentPool[C]) componentKey() componentKey {
	return p.key
}

func (p *componentPool[C]) ID() ComponentID {
	return p.key.id
}

func (p *componentPool[C]) Static() bool {
	return p.key.static
}

func (p *componentPool[C]) Type() reflect.Type {
	return reflect.TypeFor[C]()
}

// Remove erases the component of e if present and reports whether it did.
func (p *componentPool[C]) Remove(e Entity) bool {
	if !p.set.Exists(e) {
		return false
	}
	p.Erase(e)
	return true
}

// StorageFromPool downcasts a type-erased pool to its typed storage.
func StorageFromPool[C any](pool ComponentPool) (*ComponentStorage[C], error) {
	typed, ok := pool.(*componentPool[C])
	if !ok {
		return nil, PoolTypeError{ID: pool.ID(), Want: reflect.TypeFor[C](), Got: pool.Type()}
	}
	return &typed.ComponentStorage, nil
}
