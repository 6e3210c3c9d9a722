package weave

import (
	"strings"

	"github.com/TheBitDrifter/mask"
)

// TypeBundle is the canonical, ordered set of ComponentTypes that defines an
// Archetype's schema: a strictly ascending sequence with no duplicates. Its
// mask.Mask companion mirrors the teacher's archetype-matching idiom and is
// used as the fast map key for archetype lookup; the ascending slice remains
// the source of truth for iteration order and equality of meaning.
type TypeBundle struct {
	types []ComponentType
	bits  mask.Mask
}

// NewTypeBundle builds a canonical TypeBundle from an already-deduplicated
// set of ComponentTypes, sorting them ascending by id.
func NewTypeBundle(types ...ComponentType) TypeBundle {
	sorted := make([]ComponentType, len(types))
	copy(sorted, types)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].id < sorted[j-1].id; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	var bits mask.Mask
	for _, t := range sorted {
		bits.Mark(t.id)
	}
	return TypeBundle{types: sorted, bits: bits}
}

// Len returns the number of distinct ComponentTypes in the bundle.
func (tb TypeBundle) Len() int { return len(tb.types) }

// Types returns a defensive copy of the canonical ascending type sequence.
func (tb TypeBundle) Types() []ComponentType {
	out := make([]ComponentType, len(tb.types))
	copy(out, tb.types)
	return out
}

// Has reports whether t is a member of the bundle.
func (tb TypeBundle) Has(t ComponentType) bool {
	var m mask.Mask
	m.Mark(t.id)
	return tb.bits.ContainsAll(m)
}

// Contains reports whether tb is a superset of other — every type in other
// is also in tb. An archetype "matches" a query iff the archetype's schema
// Contains the query's requested TypeBundle (spec.md §4.5).
func (tb TypeBundle) Contains(other TypeBundle) bool {
	return tb.bits.ContainsAll(other.bits)
}

// Add returns the canonical bundle with t inserted. If t is already present
// the receiver is returned unchanged.
func (tb TypeBundle) Add(t ComponentType) TypeBundle {
	if tb.Has(t) {
		return tb
	}
	types := make([]ComponentType, len(tb.types)+1)
	i, inserted := 0, false
	for _, existing := range tb.types {
		if !inserted && t.id < existing.id {
			types[i] = t
			i++
			inserted = true
		}
		types[i] = existing
		i++
	}
	if !inserted {
		types[i] = t
	}
	bits := tb.bits
	bits.Mark(t.id)
	return TypeBundle{types: types, bits: bits}
}

// Remove returns the canonical bundle with t removed. Per spec.md §3, removing
// an absent type returns the receiver unchanged — callers must not rely on
// this path to detect absence; World.Migrate checks ComponentNotPresent first.
func (tb TypeBundle) Remove(t ComponentType) TypeBundle {
	if !tb.Has(t) {
		return tb
	}
	types := make([]ComponentType, 0, len(tb.types)-1)
	for _, existing := range tb.types {
		if existing.id != t.id {
			types = append(types, existing)
		}
	}
	bits := tb.bits
	bits.Unmark(t.id)
	return TypeBundle{types: types, bits: bits}
}

// Equal reports whether two bundles contain exactly the same types.
func (tb TypeBundle) Equal(other TypeBundle) bool {
	return tb.bits == other.bits
}

// key returns the value used to index archetypes by schema. mask.Mask is a
// comparable fixed-size value, exactly as the teacher uses it
// (idsGroupedByMask map[mask.Mask]archetypeID in storage.go).
func (tb TypeBundle) key() mask.Mask { return tb.bits }

// String renders the bundle's type names in canonical order, for debugging.
func (tb TypeBundle) String() string {
	if len(tb.types) == 0 {
		return "[]"
	}
	names := make([]string, len(tb.types))
	for i, t := range tb.types {
		names[i] = t.String()
	}
	return "[" + strings.Join(names, ", ") + "]"
}

// ComponentBundle is the builder consumed by World.Spawn: an unordered set of
// concrete component values assembled by the caller. Inserting the same
// ComponentType twice is recorded and surfaces as DuplicateTypeInBundleError
// when the bundle is finalized at spawn time (spec.md §4.4).
type ComponentBundle struct {
	boxes []ComponentBox
	seen  map[ComponentType]struct{}
	err   error
}

// NewComponentBundle returns an empty builder.
func NewComponentBundle() *ComponentBundle {
	return &ComponentBundle{seen: make(map[ComponentType]struct{})}
}

// Insert adds an already-boxed component value. Returns the receiver so
// calls chain; duplicate types are recorded, not panicked on, and surface as
// an error when the bundle is used to spawn.
func (b *ComponentBundle) Insert(box ComponentBox) *ComponentBundle {
	if _, dup := b.seen[box.typ]; dup {
		if b.err == nil {
			b.err = DuplicateTypeInBundleError{Type: box.typ}
		}
		return b
	}
	b.seen[box.typ] = struct{}{}
	b.boxes = append(b.boxes, box)
	return b
}

// InsertComponent boxes value and inserts it. This is the typical entry
// point: ComponentBundle builder methods cannot themselves be generic in Go,
// so the type parameter lives on this free function instead, mirroring how
// the teacher mints typed accessors via FactoryNewComponent[T]().
func InsertComponent[T any](b *ComponentBundle, value T) *ComponentBundle {
	return b.Insert(NewComponentBox(value))
}

// types returns the bundle's canonical TypeBundle.
func (b *ComponentBundle) types() TypeBundle {
	ts := make([]ComponentType, len(b.boxes))
	for i, box := range b.boxes {
		ts[i] = box.typ
	}
	return NewTypeBundle(ts...)
}

// finalize validates the bundle and returns its boxes plus canonical schema.
func (b *ComponentBundle) finalize() ([]ComponentBox, TypeBundle, error) {
	if b.err != nil {
		return nil, TypeBundle{}, b.err
	}
	return b.boxes, b.types(), nil
}
