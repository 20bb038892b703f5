package snowflake

import (
	"math/rand/v2"
	"slices"
	"testing"
)

func newTestStorage[C any](t *testing.T) *ComponentStorage[C] {
	t.Helper()
	sto, err := NewComponentStorage[C](16)
	if err != nil {
		t.Fatalf("NewComponentStorage failed: %v", err)
	}
	return sto
}

// TestComponentStorageErase tests the three-entity Position scenario
func TestComponentStorageErase(t *testing.T) {
	sto := newTestStorage[Position](t)
	sto.Emplace(0, Position{X: 1})
	sto.Emplace(1, Position{X: 2})
	sto.Emplace(2, Position{X: 3})

	sto.Erase(1)

	if got := *sto.Get(0); got != (Position{X: 1}) {
		t.Errorf("Get(0) = %+v, want {1 0}", got)
	}
	if got := *sto.Get(2); got != (Position{X: 3}) {
		t.Errorf("Get(2) = %+v, want {3 0}", got)
	}
	if !sto.Find(1).Equal(sto.End()) {
		t.Error("Find(1) did not return End()")
	}
	if sto.Size() != 2 {
		t.Errorf("Size() = %d, want 2", sto.Size())
	}
}

// TestComponentStorageAlignment runs random emplace/erase/mutate sequences against a map model
func TestComponentStorageAlignment(t *testing.T) {
	sto := newTestStorage[Health](t)
	model := make(map[Entity]Health)
	rng := rand.New(rand.NewPCG(1, 2))

	for step := 0; step < 5000; step++ {
		e := Entity(rng.IntN(300))
		_, present := model[e]

		switch {
		case !present:
			h := Health{Current: step, Max: int(e)}
			sto.Emplace(e, h)
			model[e] = h
		case rng.IntN(3) == 0:
			sto.Get(e).Current++
			h := model[e]
			h.Current++
			model[e] = h
		default:
			sto.Erase(e)
			delete(model, e)
		}
	}

	if sto.Size() != len(model) {
		t.Fatalf("Size() = %d, model has %d", sto.Size(), len(model))
	}
	for e, want := range model {
		if got := *sto.Get(e); got != want {
			t.Errorf("Get(%v) = %+v, want %+v", e, got, want)
		}
	}
	for i, e := range sto.Entities() {
		if sto.Values()[i] != model[e] {
			t.Errorf("Values()[%d] not aligned with %v", i, e)
		}
	}
	for e := Entity(0); e < 300; e++ {
		if _, present := model[e]; !present && sto.Find(e).Valid() {
			t.Errorf("Find(%v) valid after erase", e)
		}
	}
}

func TestComponentStorageEmplaceFunc(t *testing.T) {
	sto := newTestStorage[Health](t)

	h := sto.EmplaceFunc(4, func(h *Health) {
		h.Max = 100
		h.Current = h.Max
	})

	if *h != (Health{Current: 100, Max: 100}) {
		t.Errorf("EmplaceFunc built %+v", *h)
	}
	if sto.Get(4) != h {
		t.Error("EmplaceFunc pointer does not alias the stored component")
	}

	zero := sto.EmplaceFunc(5, nil)
	if *zero != (Health{}) {
		t.Errorf("EmplaceFunc(nil) built %+v, want zero value", *zero)
	}
}

func TestComponentStorageFind(t *testing.T) {
	sto := newTestStorage[Velocity](t)
	sto.Emplace(7, Velocity{X: 1, Y: 2})

	it := sto.Find(7)
	if !it.Valid() || it.Entity() != 7 {
		t.Fatalf("Find(7) returned an invalid iterator")
	}
	it.Value().X = 9

	if sto.Get(7).X != 9 {
		t.Error("mutation through Find iterator was lost")
	}
	if sto.Find(8).Valid() {
		t.Error("Find(8) valid for an absent entity")
	}
}

func TestComponentStorageSort(t *testing.T) {
	sto := newTestStorage[Health](t)
	for _, e := range []Entity{5, 1, 9, 3, 7} {
		sto.Emplace(e, Health{Current: int(e) * 10})
	}

	sto.Sort(func(a, b Entity) bool { return a < b })

	var order []Entity
	for e, h := range sto.All() {
		order = append(order, e)
		if h.Current != int(e)*10 {
			t.Errorf("component of %v moved away from its entity: %+v", e, *h)
		}
	}
	if !slices.Equal(order, []Entity{1, 3, 5, 7, 9}) {
		t.Errorf("iteration order = %v, want ascending", order)
	}
}

func TestComponentStorageIteratorAppendSafety(t *testing.T) {
	sto := newTestStorage[Position](t)
	for e := Entity(0); e < 5; e++ {
		sto.Emplace(e, Position{X: float64(e)})
	}

	var visited []Entity
	for it := sto.Begin(); it.Valid(); it.Next() {
		visited = append(visited, it.Entity())
		if it.Value().X != float64(it.Entity()) {
			t.Errorf("Value() of %v = %+v", it.Entity(), *it.Value())
		}
		sto.Emplace(it.Entity()+100, Position{})
	}

	if !slices.Equal(visited, []Entity{4, 3, 2, 1, 0}) {
		t.Errorf("visited = %v", visited)
	}
	if sto.Size() != 10 {
		t.Errorf("Size() = %d, want 10", sto.Size())
	}
}

func TestComponentStorageClear(t *testing.T) {
	sto := newTestStorage[Position](t)
	sto.Emplace(1, Position{X: 1})
	sto.Emplace(2, Position{X: 2})

	sto.Clear()

	if !sto.Empty() || sto.Contains(1) || sto.Contains(2) {
		t.Error("storage not empty after Clear")
	}
	sto.Emplace(2, Position{X: 5})
	if sto.Get(2).X != 5 {
		t.Error("reinsert after Clear returned stale data")
	}
}
