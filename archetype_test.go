package weave

import "testing"

type arA struct{ V int }
type arB struct{ V string }

func TestArchetypeAppendAndParity(t *testing.T) {
	a := ComponentTypeOf[arA]()
	b := ComponentTypeOf[arB]()
	schema := NewTypeBundle(a, b)
	arch := newArchetype(0, schema)

	e0 := EntityID{index: 0}
	row := arch.append([]ComponentBox{NewComponentBox(arA{V: 1}), NewComponentBox(arB{V: "x"})}, e0)
	if row != 0 {
		t.Fatalf("first append row = %d, want 0", row)
	}
	if arch.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", arch.Len())
	}
}

func TestArchetypeSwapRemoveRow(t *testing.T) {
	a := ComponentTypeOf[arA]()
	schema := NewTypeBundle(a)
	arch := newArchetype(0, schema)

	e0 := EntityID{index: 0}
	e1 := EntityID{index: 1}
	e2 := EntityID{index: 2}
	arch.append([]ComponentBox{NewComponentBox(arA{V: 0})}, e0)
	arch.append([]ComponentBox{NewComponentBox(arA{V: 1})}, e1)
	arch.append([]ComponentBox{NewComponentBox(arA{V: 2})}, e2)

	moved := arch.swapRemoveRow(0)
	if moved != e2 {
		t.Fatalf("swap-removing row 0 of 3 should move the last entity (e2) into it, got %v", moved)
	}
	if arch.Len() != 2 {
		t.Fatalf("Len() after swapRemoveRow = %d, want 2", arch.Len())
	}
	if arch.entities[0] != e2 {
		t.Fatalf("entities[0] = %v, want %v", arch.entities[0], e2)
	}
}

func TestArchetypeSwapRemoveLastRowReturnsItself(t *testing.T) {
	a := ComponentTypeOf[arA]()
	arch := newArchetype(0, NewTypeBundle(a))
	e0 := EntityID{index: 0}
	arch.append([]ComponentBox{NewComponentBox(arA{V: 0})}, e0)

	moved := arch.swapRemoveRow(0)
	if moved != e0 {
		t.Fatalf("removing the only row should return that row's own entity, got %v", moved)
	}
	if arch.Len() != 0 {
		t.Fatalf("Len() after removing the only row = %d, want 0", arch.Len())
	}
}

func TestArchetypeMigrateRowOutAdd(t *testing.T) {
	a := ComponentTypeOf[arA]()
	b := ComponentTypeOf[arB]()

	src := newArchetype(0, NewTypeBundle(a))
	dst := newArchetype(1, NewTypeBundle(a, b))

	e0 := EntityID{index: 0}
	src.append([]ComponentBox{NewComponentBox(arA{V: 5})}, e0)

	moved, newRow, err := src.migrateRowOut(0, dst, migrateAdd, b, NewComponentBox(arB{V: "hi"}))
	if err != nil {
		t.Fatalf("migrateRowOut error = %v", err)
	}
	if moved != e0 {
		t.Fatalf("migrating the only row should report moved == itself, got %v", moved)
	}
	if newRow != 0 {
		t.Fatalf("newRow = %d, want 0", newRow)
	}
	if src.Len() != 0 {
		t.Fatalf("source archetype should be empty after migrating its only row")
	}
	if dst.Len() != 1 {
		t.Fatalf("destination archetype should have one row")
	}

	aCol, _ := dst.columnFor(a)
	if got := aCol.(*typedColumn[arA]).at(0).V; got != 5 {
		t.Fatalf("migrated component A.V = %d, want 5", got)
	}
	bCol, _ := dst.columnFor(b)
	if got := bCol.(*typedColumn[arB]).at(0).V; got != "hi" {
		t.Fatalf("pushed component B.V = %q, want %q", got, "hi")
	}
}

func TestArchetypeMigrateRowOutRemove(t *testing.T) {
	a := ComponentTypeOf[arA]()
	b := ComponentTypeOf[arB]()

	src := newArchetype(0, NewTypeBundle(a, b))
	dst := newArchetype(1, NewTypeBundle(a))

	e0 := EntityID{index: 0}
	src.append([]ComponentBox{NewComponentBox(arA{V: 9}), NewComponentBox(arB{V: "bye"})}, e0)

	_, newRow, err := src.migrateRowOut(0, dst, migrateRemove, b, ComponentBox{})
	if err != nil {
		t.Fatalf("migrateRowOut error = %v", err)
	}
	if newRow != 0 {
		t.Fatalf("newRow = %d, want 0", newRow)
	}
	if dst.Len() != 1 {
		t.Fatalf("destination archetype should have one row")
	}
	aCol, _ := dst.columnFor(a)
	if got := aCol.(*typedColumn[arA]).at(0).V; got != 9 {
		t.Fatalf("migrated component A.V = %d, want 9", got)
	}
	if _, ok := dst.columnFor(b); ok {
		t.Fatalf("destination archetype must not carry the removed type's column")
	}
}

func TestArchetypeEdgeCache(t *testing.T) {
	a := ComponentTypeOf[arA]()
	b := ComponentTypeOf[arB]()
	arch := newArchetype(0, NewTypeBundle(a))

	if _, ok := arch.edgeFor(b); ok {
		t.Fatalf("fresh archetype should have no cached edges")
	}
	arch.setEdge(b, 3)
	idx, ok := arch.edgeFor(b)
	if !ok || idx != 3 {
		t.Fatalf("edgeFor(b) = (%d, %v), want (3, true)", idx, ok)
	}
}
