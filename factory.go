package snowflake

type factory struct{}

var Factory factory

// NewEntityManager creates a manager whose pools use Config's page size
func (f factory) NewEntityManager() *EntityManager {
	return newEntityManager(Config.PageSize(), Config.EntityCapacity())
}

// NewSparseSet creates a set with Config's page size
func (f factory) NewSparseSet() *SparseSet {
	set, err := newSparseSet(Config.PageSize())
	if err != nil {
		panic(err)
	}
	return set
}

func (f factory) NewQuery() Query {
	return newQuery()
}

func (f factory) NewCursor(query QueryNode, manager *EntityManager) *Cursor {
	return newCursor(query, manager)
}

// NewSparseSet creates a set with an explicit page size, which must be a power of two
func NewSparseSet(pageSize int) (*SparseSet, error) {
	return newSparseSet(pageSize)
}

// NewComponentStorage creates a standalone storage with an explicit page size
func NewComponentStorage[C any](pageSize int) (*ComponentStorage[C], error) {
	return newComponentStorage[C](pageSize)
}

func FactoryNewComponent[C any]() ComponentType[C] {
	return ComponentType[C]{key: componentKeyFor[C]()}
}

func FactoryNewStorage[C any]() *ComponentStorage[C] {
	sto, err := newComponentStorage[C](Config.PageSize())
	if err != nil {
		panic(err)
	}
	return sto
}

func FactoryNewCache[K comparable, T any](cap int) Cache[K, T] {
	return &SimpleCache[K, T]{
		itemIndices: make(map[K]int),
		maxCapacity: cap,
	}
}
