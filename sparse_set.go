package snowflake

import (
	"iter"
	"math"
	"math/bits"
)

const invalidIndex = math.MaxUint32

// SparseSet maps entities to positions in a packed dense array.
//
// The sparse side is split in pages of PageSize slots addressed by id >> shift. Pages are
// allocated on first insert into their id range and never shrink; only slots are
// invalidated. The dense side holds every present entity with no gaps, so
// dense[index(e)] == e for every e in the set.
//
// Erase swap-removes, so dense order is neither insertion order nor stable.
type SparseSet struct {
	pages    [][]uint32
	dense    []Entity
	pageSize int
	shift    uint
	mask     uint32
}

func newSparseSet(pageSize int) (*SparseSet, error) {
	if !isPowerOfTwo(pageSize) {
		return nil, InvalidPageSizeError{Size: pageSize}
	}
	s := &SparseSet{}
	s.init(pageSize)
	return s, nil
}

func (s *SparseSet) init(pageSize int) {
	s.pageSize = pageSize
	s.shift = uint(bits.TrailingZeros(uint(pageSize)))
	s.mask = uint32(pageSize - 1)
}

// Exists reports whether the entity's page is allocated and its slot is valid.
func (s *SparseSet) Exists(e Entity) bool {
	if e == Null {
		return false
	}
	page := int(uint32(e) >> s.shift)
	if page >= len(s.pages) || s.pages[page] == nil {
		return false
	}
	return s.pages[page][uint32(e)&s.mask] != invalidIndex
}

// Index returns the dense position of e. The entity must exist.
func (s *SparseSet) Index(e Entity) int {
	if debugAssertions && !s.Exists(e) {
		panic(ContractViolationError{Op: "Index", Entity: e, Reason: "entity not in set"})
	}
	return int(*s.slot(e))
}

// Emplace appends e to the dense array. The entity must not already exist.
func (s *SparseSet) Emplace(e Entity) {
	if debugAssertions && (e == Null || s.Exists(e)) {
		panic(ContractViolationError{Op: "Emplace", Entity: e, Reason: "entity already present or null"})
	}
	page := s.assure(int(uint32(e) >> s.shift))
	page[uint32(e)&s.mask] = uint32(len(s.dense))
	s.dense = append(s.dense, e)
}

// Erase removes e by moving the last dense entity into its position.
// The entity must exist.
func (s *SparseSet) Erase(e Entity) {
	if debugAssertions && !s.Exists(e) {
		panic(ContractViolationError{Op: "Erase", Entity: e, Reason: "entity not in set"})
	}
	pos := *s.slot(e)
	last := len(s.dense) - 1
	moved := s.dense[last]

	s.dense[pos] = moved
	*s.slot(moved) = pos
	// Invalidate after the move so erasing the last entity leaves its slot empty.
	*s.slot(e) = invalidIndex
	s.dense = s.dense[:last]
}

// Swap exchanges the dense positions of two existing entities.
func (s *SparseSet) Swap(a, b Entity) {
	if debugAssertions && (!s.Exists(a) || !s.Exists(b)) {
		panic(ContractViolationError{Op: "Swap", Entity: a, Reason: "both entities must be in set"})
	}
	s.swapPositions(int(*s.slot(a)), int(*s.slot(b)))
}

func (s *SparseSet) swapPositions(i, j int) {
	a, b := s.dense[i], s.dense[j]
	s.dense[i], s.dense[j] = b, a
	*s.slot(a) = uint32(j)
	*s.slot(b) = uint32(i)
}

func (s *SparseSet) Size() int {
	return len(s.dense)
}

func (s *SparseSet) Empty() bool {
	return len(s.dense) == 0
}

// Extent is the number of ids the sparse side can currently address without allocating.
func (s *SparseSet) Extent() int {
	return len(s.pages) * s.pageSize
}

func (s *SparseSet) PageSize() int {
	return s.pageSize
}

// Data exposes the dense array. Callers must not modify it.
func (s *SparseSet) Data() []Entity {
	return s.dense
}

// Reserve grows the dense capacity to at least n.
func (s *SparseSet) Reserve(n int) {
	if n > cap(s.dense) {
		grown := make([]Entity, len(s.dense), n)
		copy(grown, s.dense)
		s.dense = grown
	}
}

// Clear removes every entity. Allocated pages are kept.
func (s *SparseSet) Clear() {
	for _, e := range s.dense {
		*s.slot(e) = invalidIndex
	}
	s.dense = s.dense[:0]
}

// Begin returns an iterator positioned at the last dense element.
func (s *SparseSet) Begin() Iterator {
	return Iterator{set: s, pos: len(s.dense)}
}

func (s *SparseSet) End() Iterator {
	return Iterator{set: s}
}

// All yields (position, entity) pairs from the back of the dense array to the front.
// Appending during the range is safe, and so is erasing the entity just yielded.
func (s *SparseSet) All() iter.Seq2[int, Entity] {
	return func(yield func(int, Entity) bool) {
		for pos := len(s.dense); pos > 0; pos-- {
			if !yield(pos-1, s.dense[pos-1]) {
				return
			}
		}
	}
}

func (s *SparseSet) slot(e Entity) *uint32 {
	return &s.pages[uint32(e)>>s.shift][uint32(e)&s.mask]
}

func (s *SparseSet) assure(page int) []uint32 {
	if page >= len(s.pages) {
		s.pages = append(s.pages, make([][]uint32, page+1-len(s.pages))...)
	}
	if s.pages[page] == nil {
		fresh := make([]uint32, s.pageSize)
		for i := range fresh {
			fresh[i] = invalidIndex
		}
		s.pages[page] = fresh
	}
	return s.pages[page]
}
