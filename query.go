package weave

import (
	"fmt"
	"sort"

	"github.com/TheBitDrifter/bark"
	"github.com/TheBitDrifter/mask"
)

type accessKind int

const (
	accessRead accessKind = iota
	accessWrite
)

type queryField struct {
	typ  ComponentType
	kind accessKind
}

// QueryPlan is a resolved, reusable description of a query's shape: which
// component types a row exposes for reading, which for writing, and the
// TypeBundle an archetype's schema must be a superset of to match (spec.md
// §4.5). readTypes/writeTypes are sorted ascending by ComponentType.id so
// World.RunSystem can acquire per-column borrows in a canonical order
// (spec.md §4.6) regardless of the order Read/Write were called in. Plans
// are built once by QueryBuilder.Build and then driven repeatedly through
// World.RunSystem.
type QueryPlan struct {
	fields     []queryField
	required   TypeBundle
	readTypes  []ComponentType
	writeTypes []ComponentType
}

// QueryBuilder accumulates Read/Write declarations; mirrors the teacher's
// query.go builder shape (NewQuery().With(...).Without(...)) adapted to
// read/write component access instead of with/without presence filters.
type QueryBuilder struct {
	fields []queryField
}

// NewQuery starts an empty query declaration.
func NewQuery() *QueryBuilder {
	return &QueryBuilder{}
}

// Read declares t as a read-only field of the resulting row shape.
func (q *QueryBuilder) Read(t ComponentType) *QueryBuilder {
	q.fields = append(q.fields, queryField{typ: t, kind: accessRead})
	return q
}

// Write declares t as a mutable field of the resulting row shape.
func (q *QueryBuilder) Write(t ComponentType) *QueryBuilder {
	q.fields = append(q.fields, queryField{typ: t, kind: accessWrite})
	return q
}

// Build validates the declared fields and returns the resolved plan. A
// component type appearing more than once — whether as Read+Read, Write+
// Write, or Read+Write — violates the row-shape aliasing rule (spec.md §4.6)
// and is rejected before any archetype is touched.
func (q *QueryBuilder) Build() (*QueryPlan, error) {
	var seen mask.Mask
	var readTypes, writeTypes []ComponentType
	types := make([]ComponentType, 0, len(q.fields))
	for _, f := range q.fields {
		var bit mask.Mask
		bit.Mark(f.typ.id)
		if seen.ContainsAll(bit) {
			return nil, QueryAliasingViolationError{Type: f.typ}
		}
		seen.Mark(f.typ.id)
		switch f.kind {
		case accessRead:
			readTypes = append(readTypes, f.typ)
		case accessWrite:
			writeTypes = append(writeTypes, f.typ)
		}
		types = append(types, f.typ)
	}
	sort.Slice(readTypes, func(i, j int) bool { return readTypes[i].id < readTypes[j].id })
	sort.Slice(writeTypes, func(i, j int) bool { return writeTypes[i].id < writeTypes[j].id })
	return &QueryPlan{
		fields:     append([]queryField(nil), q.fields...),
		required:   NewTypeBundle(types...),
		readTypes:  readTypes,
		writeTypes: writeTypes,
	}, nil
}

// Row is a handle to one entity's slot within a matching archetype, valid
// only for the duration of the RunSystem callback it was passed to.
type Row struct {
	archetype *Archetype
	row       int
}

// Entity returns the entity occupying this row.
func (r Row) Entity() EntityID {
	return r.archetype.entities[r.row]
}

// Get returns a pointer to row's component of type t. It panics if t is not
// part of the row's archetype schema, or if T does not match the type the
// ComponentType was minted for — both are caller bugs (a plan declared a
// type that the row's archetype doesn't carry, or the wrong Go type was
// used at the call site), not recoverable runtime conditions.
func Get[T any](r Row, t ComponentType) *T {
	col, ok := r.archetype.columnFor(t)
	if !ok {
		panic(bark.AddTrace(fmt.Errorf(
			"Get: type %s not present on archetype %s", t, r.archetype.schema,
		)))
	}
	typed, ok := col.(*typedColumn[T])
	if !ok {
		panic(bark.AddTrace(mustTypeMismatch(t, col.Type())))
	}
	return typed.at(r.row)
}

// RunSystem iterates every row of every archetype matching plan, in
// ascending archetype-index then ascending-row order (spec.md §5's
// deterministic iteration order). Borrows are held against each matched
// archetype for the duration of the call, so any Spawn/Migrate/Kill that
// would structurally mutate one of them fails with
// StructuralMutationDuringQueryError instead of corrupting the iteration
// (spec.md §8 scenario 6).
//
// Beyond that archetype-wide gate, RunSystem also acquires one borrow per
// (archetype, column) pair the plan touches — many readers or one writer,
// never both (spec.md §4.6, §5). Borrows are acquired in canonical order,
// reads before writes and each ascending by ComponentType.id, so a
// reentrant RunSystem call over the same archetype can never deadlock
// against itself: it either acquires cleanly or fails fast on the first
// conflicting column. Any acquisition failure rolls back everything already
// taken and returns the error without invoking fn.
func (w *World) RunSystem(plan *QueryPlan, fn func(Row)) error {
	matches := w.cache.lookup(plan.required, w.archetypes)

	for _, idx := range matches {
		w.beginBorrow(idx)
	}
	defer func() {
		for _, idx := range matches {
			w.endBorrow(idx)
		}
	}()

	type acquiredBorrow struct {
		archIdx int
		typ     ComponentType
		kind    accessKind
	}
	acquired := make([]acquiredBorrow, 0, len(matches)*(len(plan.readTypes)+len(plan.writeTypes)))
	rollback := func() {
		for i := len(acquired) - 1; i >= 0; i-- {
			a := acquired[i]
			w.releaseColumnBorrow(a.archIdx, a.typ, a.kind)
		}
	}

	for _, idx := range matches {
		for _, t := range plan.readTypes {
			if err := w.acquireColumnBorrow(idx, t, accessRead); err != nil {
				rollback()
				return err
			}
			acquired = append(acquired, acquiredBorrow{archIdx: idx, typ: t, kind: accessRead})
		}
		for _, t := range plan.writeTypes {
			if err := w.acquireColumnBorrow(idx, t, accessWrite); err != nil {
				rollback()
				return err
			}
			acquired = append(acquired, acquiredBorrow{archIdx: idx, typ: t, kind: accessWrite})
		}
	}
	defer rollback()

	for _, idx := range matches {
		arch := w.archetypes[idx]
		for row := 0; row < arch.Len(); row++ {
			fn(Row{archetype: arch, row: row})
		}
	}
	return nil
}
