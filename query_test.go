package snowflake

import (
	"slices"
	"testing"
)

// populate creates 3 entities for each component combination
func populate(t *testing.T) (*EntityManager, ComponentType[Position], ComponentType[Velocity], ComponentType[Health]) {
	t.Helper()
	manager := Factory.NewEntityManager()
	position := FactoryNewComponent[Position]()
	velocity := FactoryNewComponent[Velocity]()
	health := FactoryNewComponent[Health]()

	for i := 0; i < 3; i++ {
		e := manager.Create()
		position.Emplace(manager, e, Position{})
	}
	for i := 0; i < 3; i++ {
		e := manager.Create()
		position.Emplace(manager, e, Position{})
		velocity.Emplace(manager, e, Velocity{X: 1})
	}
	for i := 0; i < 3; i++ {
		e := manager.Create()
		position.Emplace(manager, e, Position{})
		health.Emplace(manager, e, Health{})
	}
	for i := 0; i < 3; i++ {
		e := manager.Create()
		position.Emplace(manager, e, Position{})
		velocity.Emplace(manager, e, Velocity{X: 1})
		health.Emplace(manager, e, Health{})
	}
	return manager, position, velocity, health
}

func TestQueryOperations(t *testing.T) {
	manager, position, velocity, health := populate(t)

	tests := []struct {
		name  string
		build func(q Query) QueryNode
		want  int
	}{
		{"And", func(q Query) QueryNode { return q.And(position, velocity) }, 6},
		{"And all", func(q Query) QueryNode { return q.And(position, velocity, health) }, 3},
		{"Or", func(q Query) QueryNode { return q.Or(velocity, health) }, 9},
		{"Not", func(q Query) QueryNode { return q.Not(velocity) }, 6},
		{"And with Not child", func(q Query) QueryNode { return q.And(position, q.Not(health)) }, 6},
		{"Or with And child", func(q Query) QueryNode { return q.Or(q.And(velocity, health), health) }, 6},
		{"Unregistered component", func(q Query) QueryNode { return q.And(FactoryNewComponent[Frozen]()) }, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query := Factory.NewQuery()
			node := tt.build(query)
			cursor := Factory.NewCursor(node, manager)

			if got := cursor.TotalMatched(); got != tt.want {
				t.Errorf("TotalMatched() = %d, want %d", got, tt.want)
			}

			count := 0
			for cursor.Next() {
				count++
			}
			if count != tt.want {
				t.Errorf("Next() visited %d entities, want %d", count, tt.want)
			}
			if manager.Locked() {
				t.Error("manager still locked after the cursor finished")
			}
		})
	}
}

func TestCursorUpdatesComponents(t *testing.T) {
	manager, position, velocity, _ := populate(t)

	query := Factory.NewQuery()
	cursor := Factory.NewCursor(query.And(position, velocity), manager)

	for cursor.Next() {
		pos := position.GetFromCursor(cursor)
		vel := velocity.GetFromCursor(cursor)
		pos.X += vel.X
	}

	moved := 0
	for _, pos := range position.Storage(manager).All() {
		if pos.X == 1 {
			moved++
		}
	}
	if moved != 6 {
		t.Errorf("%d positions moved, want 6", moved)
	}
}

// TestCursorDefersDestroy tests destroying matched entities while a cursor is running
func TestCursorDefersDestroy(t *testing.T) {
	manager, position, velocity, _ := populate(t)

	query := Factory.NewQuery()
	cursor := Factory.NewCursor(query.And(velocity), manager)

	visited := 0
	for e := range cursor.Entities() {
		if !manager.Locked() {
			t.Fatal("manager not locked during iteration")
		}
		manager.EnqueueDestroy(e)
		visited++
	}

	if visited != 6 {
		t.Errorf("visited %d entities, want 6", visited)
	}
	if manager.Locked() {
		t.Error("manager still locked")
	}
	if velocity.Storage(manager).Size() != 0 {
		t.Errorf("velocity storage has %d entries after destroy", velocity.Storage(manager).Size())
	}
	if position.Storage(manager).Size() != 6 {
		t.Errorf("position storage has %d entries, want 6", position.Storage(manager).Size())
	}
	if manager.EntitiesActive() != 6 {
		t.Errorf("EntitiesActive() = %d, want 6", manager.EntitiesActive())
	}
}

func TestCursorEarlyBreak(t *testing.T) {
	manager, position, _, _ := populate(t)
	cursor := Factory.NewCursor(Factory.NewQuery().And(position), manager)

	for range cursor.Entities() {
		break
	}

	if manager.Locked() {
		t.Error("breaking out of Entities() left the manager locked")
	}
}

func TestCursorSkipsRecycled(t *testing.T) {
	manager := Factory.NewEntityManager()
	health := FactoryNewComponent[Health]()
	var entities []Entity
	for i := 0; i < 4; i++ {
		e := manager.Create()
		entities = append(entities, e)
	}
	health.Emplace(manager, entities[0], Health{})
	manager.Recycle(entities[2])

	cursor := Factory.NewCursor(Factory.NewQuery().Not(health), manager)
	var got []Entity
	for e := range cursor.Entities() {
		got = append(got, e)
	}
	slices.Sort(got)

	if !slices.Equal(got, []Entity{1, 3}) {
		t.Errorf("Not(health) matched %v, want [1 3]", got)
	}
}
