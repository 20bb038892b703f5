package snowflake

import "math/bits"

// DefaultPageSize is the number of sparse slots per page unless Config says otherwise.
const DefaultPageSize = 16384

// Config holds global configuration for sets and managers created through Factory
var Config config = config{
	pageSize: DefaultPageSize,
}

type config struct {
	pageSize       int
	entityCapacity int
}

// SetPageSize configures the sparse page size of sets created afterwards
func (c *config) SetPageSize(size int) error {
	if !isPowerOfTwo(size) {
		return InvalidPageSizeError{Size: size}
	}
	c.pageSize = size
	return nil
}

func (c *config) PageSize() int {
	return c.pageSize
}

// SetEntityCapacity configures how many entity slots new managers reserve up front
func (c *config) SetEntityCapacity(n int) {
	c.entityCapacity = max(n, 0)
}

func (c *config) EntityCapacity() int {
	return c.entityCapacity
}

func isPowerOfTwo(n int) bool {
	return n > 0 && bits.OnesCount(uint(n)) == 1
}
