package snowflake

import (
	"reflect"
	"sync"
)

// ComponentID identifies a component type inside one of the two pool tables of an
// EntityManager. Static and dynamic ids live in separate spaces.
type ComponentID uint32

const (
	// MaxStaticComponents bounds the ids StaticComponent types may claim.
	MaxStaticComponents = 256
	// MaxDynamicComponents bounds how many distinct types can receive a runtime id.
	MaxDynamicComponents = 4096
)

// StaticComponent is implemented by component types that carry a fixed id. The method must
// have a value receiver and return a constant; the manager then addresses the pool with a
// plain slice index and never touches the runtime registry. Pointer component types are
// never static, even when their element type is.
//
//	type Position struct{ X, Y float64 }
//
//	func (Position) StaticComponentID() snowflake.ComponentID { return 0 }
type StaticComponent interface {
	StaticComponentID() ComponentID
}

// ComponentInfo describes a type that was given a dynamic id.
type ComponentInfo struct {
	ID   ComponentID
	Type reflect.Type
}

type componentKey struct {
	id     ComponentID
	static bool
}

// registry hands out dynamic ids from a process-wide counter, one per type, on first use.
var registry = componentRegistry{
	cache: &SimpleCache[reflect.Type, ComponentInfo]{
		itemIndices: make(map[reflect.Type]int),
		maxCapacity: MaxDynamicComponents,
	},
}

type componentRegistry struct {
	mu    sync.RWMutex
	cache *SimpleCache[reflect.Type, ComponentInfo]
}

func (r *componentRegistry) idFor(t reflect.Type) ComponentID {
	r.mu.RLock()
	idx, ok := r.cache.GetIndex(t)
	r.mu.RUnlock()
	if ok {
		return ComponentID(idx)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	idx, err := r.cache.Register(t, ComponentInfo{ID: ComponentID(r.cache.Len()), Type: t})
	if err != nil {
		panic(err)
	}
	return ComponentID(idx)
}

func (r *componentRegistry) info(id ComponentID) (ComponentInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if int(id) >= r.cache.Len() {
		return ComponentInfo{}, false
	}
	return *r.cache.GetItem32(uint32(id)), true
}

// ComponentIDFor resolves the id of C and reports whether it is static. Dynamic ids are
// assigned on the first call for a type. It panics when the registry is full or a static
// id is out of range.
func ComponentIDFor[C any]() (ComponentID, bool) {
	key := componentKeyFor[C]()
	return key.id, key.static
}

// LookupComponentInfo returns the type registered under a dynamic id.
func LookupComponentInfo(id ComponentID) (ComponentInfo, bool) {
	return registry.info(id)
}

func componentKeyFor[C any]() componentKey {
	typ := reflect.TypeFor[C]()
	// A pointer shares its element's value methods but not its pool, and the zero
	// pointer is nil, so pointer types always take a runtime id.
	if typ.Kind() != reflect.Pointer {
		var zero C
		if sc, ok := any(zero).(StaticComponent); ok {
			id := sc.StaticComponentID()
			if id >= MaxStaticComponents {
				panic(StaticIDRangeError{Component: typ, ID: id})
			}
			return componentKey{id: id, static: true}
		}
	}
	return componentKey{id: registry.idFor(typ)}
}
