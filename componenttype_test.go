package weave

import "testing"

type tcPosition struct{ X, Y float64 }
type tcVelocity struct{ X, Y float64 }

func TestComponentTypeOfIsStable(t *testing.T) {
	a := ComponentTypeOf[tcPosition]()
	b := ComponentTypeOf[tcPosition]()
	if a != b {
		t.Fatalf("ComponentTypeOf[tcPosition]() returned two distinct values: %v, %v", a, b)
	}
}

func TestComponentTypeOfDistinctTypes(t *testing.T) {
	pos := ComponentTypeOf[tcPosition]()
	vel := ComponentTypeOf[tcVelocity]()
	if pos == vel {
		t.Fatalf("distinct Go types minted the same ComponentType: %v", pos)
	}
}

func TestComponentTypeLess(t *testing.T) {
	type a struct{}
	type b struct{}
	ta := ComponentTypeOf[a]()
	tb := ComponentTypeOf[b]()
	if ta.Less(tb) == tb.Less(ta) {
		t.Fatalf("Less must be a strict total order: ta.Less(tb)=%v tb.Less(ta)=%v", ta.Less(tb), tb.Less(ta))
	}
}
