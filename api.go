package snowflake

import (
	"iter"
	"reflect"
)

// Component is any handle that names a component type: a ComponentType or a ComponentPool.
// Queries and the deferred operation queue accept it.
type Component interface {
	componentKey() componentKey
}

// ComponentPool is the type-erased view of a ComponentStorage registered with an
// EntityManager. Downcast with StorageFromPool.
type ComponentPool interface {
	Component
	ID() ComponentID
	Static() bool
	Type() reflect.Type
	Contains(Entity) bool
	Remove(Entity) bool
	Size() int
	Entities() []Entity
	Clear()
}

type Query interface {
	QueryNode
	And(items ...any) QueryNode
	Or(items ...any) QueryNode
	Not(items ...any) QueryNode
}

type QueryNode interface {
	Evaluate(e Entity, m *EntityManager) bool
}

type iCursor interface {
	Entities() iter.Seq[Entity]
	Next() bool
}

type Cache[K comparable, T any] interface {
	GetIndex(K) (int, bool)
	GetItem(int) *T
	GetItem32(uint32) *T
	Register(K, T) (int, error)
	Len() int
}

// Cursor walks the entities of an EntityManager that match a query.
type Cursor struct {
	// The query to filter entities
	query QueryNode

	// The manager to iterate over
	manager *EntityManager

	// Current iteration state
	candidates []Entity
	pos        int
	current    Entity

	initialized bool
}

// ComponentType is a typed handle for component C. It resolves the component id once at
// creation, so its methods index the manager's pool table directly.
type ComponentType[C any] struct {
	key componentKey
}

type SimpleCache[K comparable, T any] struct {
	items       []T
	itemIndices map[K]int
	maxCapacity int
}
