package snowflake

// Iterator walks a SparseSet from its last dense element down to the first.
//
// It holds an integer position rather than a slice, so growth of the set never moves the
// elements it has yet to visit: an iterator taken before a run of Emplace calls still
// visits exactly the entities that were present when it was created. Erasing any entity
// other than the current one invalidates it.
//
//	for it := set.Begin(); it.Valid(); it.Next() {
//		e := it.Entity()
//	}
type Iterator struct {
	set *SparseSet
	pos int
}

func (it Iterator) Valid() bool {
	return it.pos > 0
}

func (it *Iterator) Next() {
	it.pos--
}

func (it Iterator) Entity() Entity {
	return it.set.dense[it.pos-1]
}

// Index is the dense position the iterator points at.
func (it Iterator) Index() int {
	return it.pos - 1
}

func (it Iterator) Equal(other Iterator) bool {
	return it.set == other.set && it.pos == other.pos
}

// ComponentIterator is the ComponentStorage counterpart of Iterator. It follows the same
// append-safe, erase-unsafe contract.
type ComponentIterator[C any] struct {
	storage *ComponentStorage[C]
	pos     int
}

func (it ComponentIterator[C]) Valid() bool {
	return it.pos > 0
}

func (it *ComponentIterator[C]) Next() {
	it.pos--
}

func (it ComponentIterator[C]) Entity() Entity {
	return it.storage.set.dense[it.pos-1]
}

// Value points at the component under the iterator.
func (it ComponentIterator[C]) Value() *C {
	return &it.storage.values[it.pos-1]
}

func (it ComponentIterator[C]) Index() int {
	return it.pos - 1
}

func (it ComponentIterator[C]) Equal(other ComponentIterator[C]) bool {
	return it.storage == other.storage && it.pos == other.pos
}
