package weave

import "testing"

type tbA struct{ V int }
type tbB struct{ V string }
type tbC struct{ V float64 }

func TestTypeBundleCanonicalOrder(t *testing.T) {
	a := ComponentTypeOf[tbA]()
	b := ComponentTypeOf[tbB]()
	c := ComponentTypeOf[tbC]()

	bundle := NewTypeBundle(c, a, b)
	types := bundle.Types()
	for i := 1; i < len(types); i++ {
		if !types[i-1].Less(types[i]) {
			t.Fatalf("TypeBundle.Types() not strictly ascending: %v", types)
		}
	}
}

func TestTypeBundleContains(t *testing.T) {
	a := ComponentTypeOf[tbA]()
	b := ComponentTypeOf[tbB]()
	c := ComponentTypeOf[tbC]()

	ab := NewTypeBundle(a, b)
	abc := NewTypeBundle(a, b, c)

	if !abc.Contains(ab) {
		t.Fatalf("{A,B,C} should contain {A,B}")
	}
	if ab.Contains(abc) {
		t.Fatalf("{A,B} should not contain {A,B,C}")
	}
	if !ab.Contains(ab) {
		t.Fatalf("a bundle must contain itself")
	}
}

func TestTypeBundleAddRemove(t *testing.T) {
	a := ComponentTypeOf[tbA]()
	b := ComponentTypeOf[tbB]()

	empty := NewTypeBundle()
	withA := empty.Add(a)
	if !withA.Has(a) || withA.Len() != 1 {
		t.Fatalf("Add(a) did not insert a: %v", withA)
	}

	// Adding a present type returns the receiver unchanged.
	same := withA.Add(a)
	if !same.Equal(withA) {
		t.Fatalf("Add of an already-present type must be a no-op")
	}

	withAB := withA.Add(b)
	if withAB.Len() != 2 || !withAB.Has(a) || !withAB.Has(b) {
		t.Fatalf("Add(b) did not produce {a,b}: %v", withAB)
	}

	back := withAB.Remove(b)
	if !back.Equal(withA) {
		t.Fatalf("Remove(b) did not return to {a}: %v", back)
	}

	// Removing an absent type returns the receiver unchanged (spec.md §3).
	unchanged := withA.Remove(b)
	if !unchanged.Equal(withA) {
		t.Fatalf("Remove of an absent type must be a no-op")
	}
}

func TestComponentBundleDuplicateType(t *testing.T) {
	b := NewComponentBundle()
	InsertComponent(b, tbA{V: 1})
	InsertComponent(b, tbA{V: 2})

	_, _, err := b.finalize()
	if err == nil {
		t.Fatalf("expected DuplicateTypeInBundleError, got nil")
	}
	if _, ok := err.(DuplicateTypeInBundleError); !ok {
		t.Fatalf("expected DuplicateTypeInBundleError, got %T: %v", err, err)
	}
}

func TestComponentBundleFinalize(t *testing.T) {
	b := NewComponentBundle()
	InsertComponent(b, tbA{V: 1})
	InsertComponent(b, tbB{V: "x"})

	boxes, schema, err := b.finalize()
	if err != nil {
		t.Fatalf("finalize() error = %v", err)
	}
	if len(boxes) != 2 {
		t.Fatalf("finalize() returned %d boxes, want 2", len(boxes))
	}
	if schema.Len() != 2 {
		t.Fatalf("finalize() schema has %d types, want 2", schema.Len())
	}
}
