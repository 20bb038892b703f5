package snowflake

import (
	"iter"
	"sort"
)

// ComponentStorage keeps component values packed and index-aligned with a SparseSet of
// their owning entities: values[i] belongs to set.Data()[i].
//
// Like SparseSet it is not synchronised; give each storage a single writer.
type ComponentStorage[C any] struct {
	set    SparseSet
	values []C
}

func newComponentStorage[C any](pageSize int) (*ComponentStorage[C], error) {
	if !isPowerOfTwo(pageSize) {
		return nil, InvalidPageSizeError{Size: pageSize}
	}
	sto := &ComponentStorage[C]{}
	sto.set.init(pageSize)
	return sto, nil
}

// Emplace attaches value to e and returns a pointer to the stored copy. The pointer stays
// valid until the next Emplace or Erase on this storage. e must not already be present.
func (sto *ComponentStorage[C]) Emplace(e Entity, value C) *C {
	if debugAssertions && (e == Null || sto.set.Exists(e)) {
		panic(ContractViolationError{Op: "Emplace", Entity: e, Reason: "component already present or null entity"})
	}
	sto.values = append(sto.values, value)
	sto.set.Emplace(e)
	return &sto.values[len(sto.values)-1]
}

// EmplaceFunc attaches a zero C to e and lets init construct it in place.
func (sto *ComponentStorage[C]) EmplaceFunc(e Entity, init func(*C)) *C {
	var zero C
	c := sto.Emplace(e, zero)
	if init != nil {
		init(c)
	}
	return c
}

// Erase detaches the component of e. Values are swap-removed with the same target the
// set uses, which keeps both arrays aligned.
func (sto *ComponentStorage[C]) Erase(e Entity) {
	if debugAssertions && !sto.set.Exists(e) {
		panic(ContractViolationError{Op: "Erase", Entity: e, Reason: "component not present"})
	}
	pos := sto.set.Index(e)
	last := len(sto.values) - 1
	sto.values[pos] = sto.values[last]

	var zero C
	sto.values[last] = zero
	sto.values = sto.values[:last]
	sto.set.Erase(e)
}

// Get returns the component of e without checking presence.
func (sto *ComponentStorage[C]) Get(e Entity) *C {
	return &sto.values[sto.set.Index(e)]
}

// Find returns an iterator at the component of e, or End if e has none.
func (sto *ComponentStorage[C]) Find(e Entity) ComponentIterator[C] {
	if !sto.set.Exists(e) {
		return sto.End()
	}
	return ComponentIterator[C]{storage: sto, pos: sto.set.Index(e) + 1}
}

func (sto *ComponentStorage[C]) Contains(e Entity) bool {
	return sto.set.Exists(e)
}

func (sto *ComponentStorage[C]) Size() int {
	return len(sto.values)
}

func (sto *ComponentStorage[C]) Empty() bool {
	return len(sto.values) == 0
}

// Entities exposes the dense entity array. Callers must not modify it.
func (sto *ComponentStorage[C]) Entities() []Entity {
	return sto.set.Data()
}

// Values exposes the packed components, aligned with Entities.
func (sto *ComponentStorage[C]) Values() []C {
	return sto.values
}

// Set exposes the underlying sparse set for read-only use.
func (sto *ComponentStorage[C]) Set() *SparseSet {
	return &sto.set
}

func (sto *ComponentStorage[C]) Clear() {
	clear(sto.values)
	sto.values = sto.values[:0]
	sto.set.Clear()
}

// Swap exchanges the positions of two present entities and their components.
func (sto *ComponentStorage[C]) Swap(a, b Entity) {
	sto.swapPositions(sto.set.Index(a), sto.set.Index(b))
}

func (sto *ComponentStorage[C]) swapPositions(i, j int) {
	sto.values[i], sto.values[j] = sto.values[j], sto.values[i]
	sto.set.swapPositions(i, j)
}

// Sort reorders the storage in place so that iteration from Begin visits entities in
// ascending order of less.
func (sto *ComponentStorage[C]) Sort(less func(a, b Entity) bool) {
	// Iteration runs back to front, so the dense array is sorted in descending order.
	sort.Sort(storageSorter[C]{sto: sto, less: less})
}

type storageSorter[C any] struct {
	sto  *ComponentStorage[C]
	less func(a, b Entity) bool
}

func (s storageSorter[C]) Len() int { return s.sto.Size() }

func (s storageSorter[C]) Less(i, j int) bool {
	return s.less(s.sto.set.dense[j], s.sto.set.dense[i])
}

func (s storageSorter[C]) Swap(i, j int) { s.sto.swapPositions(i, j) }

func (sto *ComponentStorage[C]) Begin() ComponentIterator[C] {
	return ComponentIterator[C]{storage: sto, pos: len(sto.values)}
}

func (sto *ComponentStorage[C]) End() ComponentIterator[C] {
	return ComponentIterator[C]{storage: sto}
}

// All yields every (entity, component) pair back to front, with the append-safety of
// SparseSet.All.
func (sto *ComponentStorage[C]) All() iter.Seq2[Entity, *C] {
	return func(yield func(Entity, *C) bool) {
		for pos := len(sto.values); pos > 0; pos-- {
			if !yield(sto.set.dense[pos-1], &sto.values[pos-1]) {
				return
			}
		}
	}
}
