package snowflake

var _ Cache[string, any] = &SimpleCache[string, any]{}

func (c *SimpleCache[K, T]) GetIndex(key K) (int, bool) {
	index, ok := c.itemIndices[key]
	return index, ok
}

func (c *SimpleCache[K, T]) GetItem(index int) *T {
	item := &c.items[index]
	return item
}

func (c *SimpleCache[K, T]) GetItem32(index uint32) *T {
	item := &c.items[index]
	return item
}

// Register stores item under key and returns its index. Indices are dense and start at 0.
// Registering an existing key returns the index it already has.
func (c *SimpleCache[K, T]) Register(key K, item T) (int, error) {
	if idx, ok := c.itemIndices[key]; ok {
		return idx, nil
	}
	if len(c.items) >= c.maxCapacity {
		return -1, CacheCapacityError{Limit: c.maxCapacity}
	}

	idx := len(c.items)
	c.itemIndices[key] = idx
	c.items = append(c.items, item)

	return idx, nil
}

func (c *SimpleCache[K, T]) Len() int {
	return len(c.items)
}

func (c *SimpleCache[K, T]) Clear() {
	c.items = c.items[:0]
	c.itemIndices = make(map[K]int)
}
