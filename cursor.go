package snowflake

import (
	"iter"

	iter_util "github.com/TheBitDrifter/util/iter"
)

var _ iCursor = &Cursor{}

func newCursor(query QueryNode, manager *EntityManager) *Cursor {
	return &Cursor{
		query:   query,
		manager: manager,
		current: Null,
	}
}

// Next advances to the next matching entity. The manager stays locked from the first call
// until Next returns false or Reset is called; use the Enqueue methods to erase, recycle
// or destroy in between.
func (c *Cursor) Next() bool {
	if !c.initialized {
		c.initialize()
	}
	for c.pos > 0 {
		c.pos--
		e := c.candidates[c.pos]
		if c.manager.Alive(e) && c.query.Evaluate(e, c.manager) {
			c.current = e
			return true
		}
	}
	c.Reset()
	return false
}

// Entity is the entity the cursor currently points at.
func (c *Cursor) Entity() Entity {
	return c.current
}

func (c *Cursor) Entities() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		for c.Next() {
			if !yield(c.current) {
				c.Reset()
				return
			}
		}
	}
}

func (c *Cursor) initialize() {
	if c.initialized {
		return
	}
	c.candidates = c.collectCandidates()
	c.pos = len(c.candidates)
	c.manager.Lock()
	c.initialized = true
}

// collectCandidates scans the smallest pool named by a root And, or every live entity.
// Pool data is used in place: pools only grow while the manager is locked, and entities
// appended after the cursor started lie above its position.
func (c *Cursor) collectCandidates() []Entity {
	root, ok := andRoot(c.query)
	if !ok {
		return iter_util.Collect(c.manager.Live())
	}
	var smallest ComponentPool
	for _, comp := range root.components {
		pool := c.manager.lookup(comp.componentKey())
		if pool == nil {
			return nil
		}
		if smallest == nil || pool.Size() < smallest.Size() {
			smallest = pool
		}
	}
	return smallest.Entities()
}

// Reset drops the iteration state and releases the manager lock taken by Next.
func (c *Cursor) Reset() {
	wasInitialized := c.initialized
	c.candidates = nil
	c.pos = 0
	c.current = Null
	c.initialized = false
	if wasInitialized {
		c.manager.Unlock()
	}
}

// TotalMatched counts the matching entities without moving the cursor.
func (c *Cursor) TotalMatched() int {
	total := 0
	for _, e := range c.collectCandidates() {
		if c.manager.Alive(e) && c.query.Evaluate(e, c.manager) {
			total++
		}
	}
	return total
}
