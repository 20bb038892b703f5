package snowflake

import (
	"cmp"
	"fmt"
	"math"
)

// Entity is an opaque handle identifying a scene object. Entities are plain values:
// copy them freely and compare them by id.
type Entity uint32

// Null is the reserved invalid entity. It never exists in any set.
const Null Entity = math.MaxUint32

// ID returns the raw identifier of the entity.
func (e Entity) ID() uint32 {
	return uint32(e)
}

// Valid reports whether e is not the Null sentinel. It says nothing about liveness.
func (e Entity) Valid() bool {
	return e != Null
}

func (e Entity) String() string {
	if e == Null {
		return "Entity(null)"
	}
	return fmt.Sprintf("Entity(%d)", uint32(e))
}

// Compare orders entities by id, for use with slices.SortFunc.
func Compare(a, b Entity) int {
	return cmp.Compare(a, b)
}
