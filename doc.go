/*
Package snowflake provides sparse-set entity storage for the glow renderer and for games and
simulations in general.

Every component type gets its own pool: a sparse set mapping entities to positions in a
packed array, paralleled by a packed array of component values. Lookups, inserts and
removals are O(1) and iteration walks contiguous memory.

Core Concepts:

  - Entity: An opaque 32-bit handle. Null is the reserved invalid value.
  - SparseSet: Paged sparse index plus a packed dense array of entities.
  - ComponentStorage: A SparseSet with component values kept aligned to its dense array.
  - EntityManager: Creates and recycles entities and owns one pool per component type.
  - Query: A way to find entities with specific component combinations.

Basic Usage:

	manager := snowflake.Factory.NewEntityManager()

	position := snowflake.FactoryNewComponent[Position]()
	velocity := snowflake.FactoryNewComponent[Velocity]()

	e := manager.Create()
	position.Emplace(manager, e, Position{X: 1})
	velocity.Emplace(manager, e, Velocity{X: 0.5})

	for e, pos := range position.Storage(manager).All() {
		if ok, vel := velocity.GetSafe(manager, e); ok {
			pos.X += vel.X
		}
	}

Iteration runs from the back of the dense arrays to the front. Appending while iterating is
safe; erasing anything but the current element is not. Cursors lock the manager and the
Enqueue methods defer erasures and recycles until the lock is released.

Preconditions on the hot paths (emplacing a present entity, reading or erasing an absent
one) are not checked in normal builds. Build with -tags snowflakedebug to turn them into
panics carrying a ContractViolationError.

Nothing in this package is synchronised. Give each pool a single writer or lock externally.
*/
package snowflake
