package weave

import (
	"fmt"
	"math"
)

// EntityID is a safe handle to an entity: an index into the registry plus a
// generation counter that invalidates stale handles after reuse. Two
// EntityIDs are equal iff both fields match — ordinary struct equality.
type EntityID struct {
	index      uint32
	generation uint32
}

// Index returns the handle's registry slot.
func (e EntityID) Index() uint32 { return e.index }

// Generation returns the handle's generation.
func (e EntityID) Generation() uint32 { return e.generation }

func (e EntityID) String() string {
	return fmt.Sprintf("Entity(%d:%d)", e.index, e.generation)
}

// Location identifies where an entity's components live: an archetype index
// and the row within that archetype's columns.
type Location struct {
	Archetype int
	Row       int
}

type entityRecord struct {
	generation uint32
	hasLoc     bool
	loc        Location
}

// EntityRegistry is a slot array of (generation, optional Location) plus a
// freelist of indices free for reuse. See spec.md §4.3 for the full
// invariant set; reuse is LIFO and generation is bumped exactly once per
// Free call, matching original_source/ecs/src/entity.rs.
type EntityRegistry struct {
	records  []entityRecord
	freelist []uint32
}

// NewEntityRegistry returns an empty registry.
func NewEntityRegistry() *EntityRegistry {
	return &EntityRegistry{}
}

// Allocate returns a fresh EntityID with no location, reusing the
// most-recently-freed index if one is available.
func (r *EntityRegistry) Allocate() (EntityID, error) {
	if n := len(r.freelist); n > 0 {
		idx := r.freelist[n-1]
		r.freelist = r.freelist[:n-1]
		return EntityID{index: idx, generation: r.records[idx].generation}, nil
	}
	if uint64(len(r.records)) >= uint64(math.MaxUint32) {
		return EntityID{}, OutOfEntityIDsError{}
	}
	idx := uint32(len(r.records))
	r.records = append(r.records, entityRecord{})
	return EntityID{index: idx, generation: 0}, nil
}

// AllocateMany allocates n ids atomically: either all n succeed, or none are
// taken from the freelist or registry and an error is returned.
func (r *EntityRegistry) AllocateMany(n int) ([]EntityID, error) {
	if n <= 0 {
		return nil, nil
	}
	reuse := min(len(r.freelist), n)
	fresh := n - reuse
	if uint64(len(r.records))+uint64(fresh) > uint64(math.MaxUint32) {
		return nil, OutOfEntityIDsError{}
	}

	ids := make([]EntityID, n)
	for i := 0; i < reuse; i++ {
		idx := r.freelist[len(r.freelist)-1]
		r.freelist = r.freelist[:len(r.freelist)-1]
		ids[i] = EntityID{index: idx, generation: r.records[idx].generation}
	}
	for i := reuse; i < n; i++ {
		idx := uint32(len(r.records))
		r.records = append(r.records, entityRecord{})
		ids[i] = EntityID{index: idx, generation: 0}
	}
	return ids, nil
}

func (r *EntityRegistry) lookup(id EntityID) (*entityRecord, error) {
	idx := int(id.index)
	if idx < 0 || idx >= len(r.records) {
		return nil, EntityNotFoundError{ID: id}
	}
	rec := &r.records[idx]
	if rec.generation != id.generation {
		return nil, EntityWrongGenerationError{ID: id}
	}
	return rec, nil
}

// GetLocation returns the id's Location. The bool return is false either
// because the index/generation don't resolve (err != nil, spec.md's NotFound
// / WrongGen) or because the id is live but has not yet been placed
// (err == nil, spec.md's Live(None) — a freshly allocated id before
// World.Spawn records its archetype).
func (r *EntityRegistry) GetLocation(id EntityID) (Location, bool, error) {
	rec, err := r.lookup(id)
	if err != nil {
		return Location{}, false, err
	}
	if !rec.hasLoc {
		return Location{}, false, nil
	}
	return rec.loc, true, nil
}

// SetLocation overwrites id's location, returning the previous one if any.
func (r *EntityRegistry) SetLocation(id EntityID, loc Location) (Location, bool, error) {
	rec, err := r.lookup(id)
	if err != nil {
		return Location{}, false, err
	}
	old, hadOld := rec.loc, rec.hasLoc
	rec.loc, rec.hasLoc = loc, true
	return old, hadOld, nil
}

// SetManyLocations writes a contiguous block of rows, starting at startRow
// within archetypeIndex, to each id in order.
func (r *EntityRegistry) SetManyLocations(ids []EntityID, archetypeIndex, startRow int) error {
	for i, id := range ids {
		if _, _, err := r.SetLocation(id, Location{Archetype: archetypeIndex, Row: startRow + i}); err != nil {
			return err
		}
	}
	return nil
}

// Free clears id's location, bumps its generation by one, and returns the
// index to the freelist for reuse — unless its generation has already
// reached the 32-bit ceiling, in which case the index is retired instead, so
// callers never observe generation wraparound (spec.md §4.3).
func (r *EntityRegistry) Free(id EntityID) (Location, error) {
	rec, err := r.lookup(id)
	if err != nil {
		return Location{}, err
	}
	if !rec.hasLoc {
		return Location{}, EntityAlreadyFreedError{ID: id}
	}
	old := rec.loc
	rec.hasLoc = false
	rec.loc = Location{}

	if rec.generation == math.MaxUint32 {
		return old, nil
	}
	rec.generation++
	r.freelist = append(r.freelist, id.index)
	return old, nil
}
