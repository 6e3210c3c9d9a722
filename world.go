package weave

import "github.com/TheBitDrifter/mask"

// lockBitQueryActive is the single mask.Mask256 bit the World marks while any
// RunSystem call has live borrows outstanding, mirroring the teacher's
// storage-wide Locked()/AddLock(bit)/RemoveLock(bit) idiom (storage.go).
// Precise per-archetype reentrancy detection is tracked separately in
// activeBorrows; this bit only mirrors "is anything borrowed at all", and the
// structural-mutation checks consult activeBorrows, not this bit.
const lockBitQueryActive = 0

// columnKey identifies one archetype's column of a given component type, the
// unit of borrow tracked by World.columnBorrows.
type columnKey struct {
	archetype int
	typ       ComponentType
}

// columnBorrow tracks the live readers/writer count for one (archetype,
// ComponentType) column, generalizing the teacher's single storage-wide
// mask.Mask256 lock bit (storage.go) to per-column granularity: many readers
// XOR one writer, never both (spec.md §4.6).
type columnBorrow struct {
	readers int
	writer  bool
}

// World owns every Archetype and the EntityRegistry, and is the sole
// dispatch point for spawn/migrate/kill/query (spec.md §4.4).
type World struct {
	archetypes    []*Archetype
	index         map[mask.Mask]int
	registry      *EntityRegistry
	cache         *matchCache
	locked        mask.Mask256
	activeBorrows map[int]int
	columnBorrows map[columnKey]*columnBorrow
	events        WorldEvents
}

// NewWorld creates an empty world with a single degenerate archetype (empty
// schema) at index 0, per spec.md §6. It captures Config's current
// WorldEvents at construction time.
func NewWorld() *World {
	w := &World{
		index:         make(map[mask.Mask]int),
		registry:      NewEntityRegistry(),
		cache:         newMatchCache(),
		activeBorrows: make(map[int]int),
		columnBorrows: make(map[columnKey]*columnBorrow),
		events:        Config.events,
	}
	empty := NewTypeBundle()
	root := newArchetype(0, empty)
	w.archetypes = append(w.archetypes, root)
	w.index[empty.key()] = 0
	return w
}

// Archetypes returns the world's archetype vector. Indices are stable for
// the life of the World; callers must not retain the slice across a Spawn
// that might grow it.
func (w *World) Archetypes() []*Archetype {
	return w.archetypes
}

// Locate returns id's current Location, or the same three-way result as
// EntityRegistry.GetLocation.
func (w *World) Locate(id EntityID) (Location, bool, error) {
	return w.registry.GetLocation(id)
}

func (w *World) createArchetype(schema TypeBundle) int {
	idx := len(w.archetypes)
	arch := newArchetype(idx, schema)
	w.archetypes = append(w.archetypes, arch)
	w.index[schema.key()] = idx
	w.cache.observe(arch)
	if w.events.OnArchetypeCreated != nil {
		w.events.OnArchetypeCreated(arch)
	}
	return idx
}

func (w *World) resolveOrCreateArchetype(schema TypeBundle) int {
	if idx, ok := w.index[schema.key()]; ok {
		return idx
	}
	return w.createArchetype(schema)
}

func (w *World) beginBorrow(archIdx int) {
	w.activeBorrows[archIdx]++
	w.locked.Mark(lockBitQueryActive)
}

func (w *World) endBorrow(archIdx int) {
	w.activeBorrows[archIdx]--
	if w.activeBorrows[archIdx] <= 0 {
		delete(w.activeBorrows, archIdx)
	}
	if len(w.activeBorrows) == 0 {
		w.locked.Unmark(lockBitQueryActive)
	}
}

func (w *World) checkStructuralMutation(archIdx int) error {
	if w.activeBorrows[archIdx] > 0 {
		return StructuralMutationDuringQueryError{ArchetypeIndex: archIdx}
	}
	return nil
}

// acquireColumnBorrow takes a read or write borrow on archIdx's column of
// type typ. A read borrow fails if the column is currently write-borrowed; a
// write borrow fails if the column has any readers or a writer already. Both
// failure modes report StructuralMutationDuringQueryError: spec.md §7 has no
// distinct "borrow conflict" kind, and a reentrant system colliding with its
// own outer borrow is, from the caller's perspective, exactly the same
// "archetype is busy" condition as a Migrate racing a live RunSystem.
func (w *World) acquireColumnBorrow(archIdx int, typ ComponentType, kind accessKind) error {
	key := columnKey{archetype: archIdx, typ: typ}
	b, ok := w.columnBorrows[key]
	if !ok {
		b = &columnBorrow{}
		w.columnBorrows[key] = b
	}
	switch kind {
	case accessRead:
		if b.writer {
			return StructuralMutationDuringQueryError{ArchetypeIndex: archIdx}
		}
		b.readers++
	case accessWrite:
		if b.writer || b.readers > 0 {
			return StructuralMutationDuringQueryError{ArchetypeIndex: archIdx}
		}
		b.writer = true
	}
	return nil
}

// releaseColumnBorrow releases one borrow previously acquired with the same
// archIdx, typ and kind via acquireColumnBorrow.
func (w *World) releaseColumnBorrow(archIdx int, typ ComponentType, kind accessKind) {
	key := columnKey{archetype: archIdx, typ: typ}
	b, ok := w.columnBorrows[key]
	if !ok {
		return
	}
	switch kind {
	case accessRead:
		b.readers--
	case accessWrite:
		b.writer = false
	}
	if b.readers <= 0 && !b.writer {
		delete(w.columnBorrows, key)
	}
}

// Spawn allocates a new entity for bundle, resolving or creating the target
// archetype from the bundle's TypeBundle, and records its location.
func (w *World) Spawn(bundle *ComponentBundle) (EntityID, error) {
	boxes, schema, err := bundle.finalize()
	if err != nil {
		return EntityID{}, err
	}

	archIdx := w.resolveOrCreateArchetype(schema)
	if err := w.checkStructuralMutation(archIdx); err != nil {
		return EntityID{}, err
	}

	id, err := w.registry.Allocate()
	if err != nil {
		return EntityID{}, err
	}

	arch := w.archetypes[archIdx]
	row := arch.append(boxes, id)
	loc := Location{Archetype: archIdx, Row: row}
	if _, _, err := w.registry.SetLocation(id, loc); err != nil {
		return EntityID{}, err
	}
	if w.events.OnSpawn != nil {
		w.events.OnSpawn(id, loc)
	}
	return id, nil
}

// SpawnMany creates n entities sharing bundle's component values, recording
// their locations as one contiguous row block. See SPEC_FULL.md for why this
// batch-spawn path is part of the contract while batch migration is not.
func (w *World) SpawnMany(n int, bundle *ComponentBundle) ([]EntityID, error) {
	if n <= 0 {
		return nil, nil
	}
	boxes, schema, err := bundle.finalize()
	if err != nil {
		return nil, err
	}

	archIdx := w.resolveOrCreateArchetype(schema)
	if err := w.checkStructuralMutation(archIdx); err != nil {
		return nil, err
	}

	ids, err := w.registry.AllocateMany(n)
	if err != nil {
		return nil, err
	}

	arch := w.archetypes[archIdx]
	startRow := arch.Len()
	for _, id := range ids {
		arch.append(boxes, id)
	}
	if err := w.registry.SetManyLocations(ids, archIdx, startRow); err != nil {
		return nil, err
	}
	if w.events.OnSpawn != nil {
		for i, id := range ids {
			w.events.OnSpawn(id, Location{Archetype: archIdx, Row: startRow + i})
		}
	}
	return ids, nil
}

// Migration is the operation applied by World.Migrate: either adding one
// component box, or removing one component type.
type Migration struct {
	kind       migrationKind
	addBox     ComponentBox
	removeType ComponentType
}

// Add builds a Migration that inserts an already-boxed component value.
func Add(box ComponentBox) Migration {
	return Migration{kind: migrateAdd, addBox: box}
}

// AddValue boxes value and builds an Add migration from it.
func AddValue[T any](value T) Migration {
	return Add(NewComponentBox(value))
}

// Remove builds a Migration that removes the component of the given type.
func Remove(t ComponentType) Migration {
	return Migration{kind: migrateRemove, removeType: t}
}

// Migrate moves id to the archetype that differs from its current one by
// exactly op's component type, following spec.md §4.4's algorithm: resolve
// the source location, validate the precondition for op, consult (and on
// miss, populate) the archetype edge cache, then move the row.
func (w *World) Migrate(id EntityID, op Migration) error {
	loc, found, err := w.registry.GetLocation(id)
	if err != nil {
		return err
	}
	if !found {
		return EntityAlreadyFreedError{ID: id}
	}

	src := w.archetypes[loc.Archetype]

	var delta ComponentType
	switch op.kind {
	case migrateAdd:
		delta = op.addBox.typ
		if src.schema.Has(delta) {
			return ComponentAlreadyPresentError{Type: delta}
		}
	case migrateRemove:
		delta = op.removeType
		if !src.schema.Has(delta) {
			return ComponentNotPresentError{Type: delta}
		}
	}

	if err := w.checkStructuralMutation(src.index); err != nil {
		return err
	}

	dstIdx, ok := src.edgeFor(delta)
	if !ok {
		var targetSchema TypeBundle
		if op.kind == migrateAdd {
			targetSchema = src.schema.Add(delta)
		} else {
			targetSchema = src.schema.Remove(delta)
		}
		dstIdx = w.resolveOrCreateArchetype(targetSchema)
		src.setEdge(delta, dstIdx)
		w.archetypes[dstIdx].setEdge(delta, src.index)
	}

	if err := w.checkStructuralMutation(dstIdx); err != nil {
		return err
	}

	dst := w.archetypes[dstIdx]
	moved, newRow, err := src.migrateRowOut(loc.Row, dst, op.kind, delta, op.addBox)
	if err != nil {
		return err
	}

	dstLoc := Location{Archetype: dstIdx, Row: newRow}
	if _, _, err := w.registry.SetLocation(id, dstLoc); err != nil {
		return err
	}
	if moved != id {
		if _, _, err := w.registry.SetLocation(moved, loc); err != nil {
			return err
		}
	}
	if w.events.OnMigrate != nil {
		w.events.OnMigrate(id, loc, dstLoc)
	}
	return nil
}

// Kill destroys id: the row is removed first, then the id is freed, so the
// registry remains accurate even if row removal were to panic on a broken
// invariant (spec.md §9).
func (w *World) Kill(id EntityID) error {
	loc, found, err := w.registry.GetLocation(id)
	if err != nil {
		return err
	}
	if !found {
		return EntityAlreadyFreedError{ID: id}
	}

	if err := w.checkStructuralMutation(loc.Archetype); err != nil {
		return err
	}

	arch := w.archetypes[loc.Archetype]
	moved := arch.swapRemoveRow(loc.Row)
	if moved != id {
		if _, _, err := w.registry.SetLocation(moved, loc); err != nil {
			return err
		}
	}

	if _, err := w.registry.Free(id); err != nil {
		return err
	}
	if w.events.OnKill != nil {
		w.events.OnKill(id, loc)
	}
	return nil
}
