package weave

import (
	"fmt"

	"github.com/TheBitDrifter/bark"
)

// migrationKind distinguishes the two transitions an Archetype edge can
// represent: an Add moves a row into an archetype with one more column, a
// Remove moves it into one with one fewer.
type migrationKind int

const (
	migrateAdd migrationKind = iota
	migrateRemove
)

// Archetype is a storage node keyed by its schema: one dense column per
// component type in the schema, plus a parallel EntityID column. Archetypes
// are created lazily and never destroyed (spec.md §3); their index is
// stable for the life of the World that owns them.
type Archetype struct {
	index    int
	schema   TypeBundle
	columns  []ComponentColumn
	colIndex map[ComponentType]int
	entities []EntityID
	edges    map[ComponentType]int
}

func newArchetype(index int, schema TypeBundle) *Archetype {
	types := schema.Types()
	columns := make([]ComponentColumn, len(types))
	colIndex := make(map[ComponentType]int, len(types))
	for i, t := range types {
		columns[i] = globalComponents.descriptorFor(t).newColumn()
		colIndex[t] = i
	}
	return &Archetype{
		index:    index,
		schema:   schema,
		columns:  columns,
		colIndex: colIndex,
		edges:    make(map[ComponentType]int),
	}
}

// Index returns this archetype's stable position in the World's archetype vector.
func (a *Archetype) Index() int { return a.index }

// Schema returns the archetype's TypeBundle.
func (a *Archetype) Schema() TypeBundle { return a.schema }

// Len returns the number of entity rows currently stored.
func (a *Archetype) Len() int { return len(a.entities) }

// Entities returns the archetype's parallel entity-id column. Callers must
// not mutate the returned slice.
func (a *Archetype) Entities() []EntityID { return a.entities }

func (a *Archetype) columnFor(t ComponentType) (ComponentColumn, bool) {
	idx, ok := a.colIndex[t]
	if !ok {
		return nil, false
	}
	return a.columns[idx], true
}

func (a *Archetype) checkParity() {
	n := len(a.entities)
	for _, col := range a.columns {
		if col.Len() != n {
			panic(bark.AddTrace(fmt.Errorf(
				"archetype %d: column %s length %d != entity count %d",
				a.index, col.Type(), col.Len(), n,
			)))
		}
	}
}

// append pushes one box per schema type (already validated to exactly match
// the schema by the caller, World.Spawn) plus the owning entity, and returns
// the new row.
func (a *Archetype) append(boxes []ComponentBox, entity EntityID) int {
	for _, box := range boxes {
		idx, ok := a.colIndex[box.typ]
		if !ok {
			panic(bark.AddTrace(fmt.Errorf(
				"append: type %s is not part of archetype schema %s", box.typ, a.schema,
			)))
		}
		if err := a.columns[idx].Push(box); err != nil {
			panic(bark.AddTrace(err))
		}
	}
	a.entities = append(a.entities, entity)
	row := len(a.entities) - 1
	a.checkParity()
	return row
}

// removeEntityRow swap-removes row from the entity column only; callers that
// also need to drop the row's components call it after handling the columns.
func (a *Archetype) removeEntityRow(row int) EntityID {
	last := len(a.entities) - 1
	moved := a.entities[last]
	if row != last {
		a.entities[row] = moved
	}
	a.entities = a.entities[:last]
	return moved
}

func (a *Archetype) pushEntityRow(e EntityID) int {
	a.entities = append(a.entities, e)
	return len(a.entities) - 1
}

// swapRemoveRow removes row from every column and from the entity column,
// returning the entity that now occupies row (or, if row was the last row,
// the removed entity itself). The caller (World.Kill) must update the
// registry entry for the returned entity.
func (a *Archetype) swapRemoveRow(row int) EntityID {
	for _, col := range a.columns {
		col.SwapRemove(row)
	}
	moved := a.removeEntityRow(row)
	a.checkParity()
	return moved
}

// migrateRowOut moves the components at row into target, which must have
// schema a.schema±{delta}, per kind. It walks the smaller of the two
// schemas as spec.md §4.2 requires, handles the one differing column
// separately, and returns the entity displaced within a by the swap-remove
// plus the row the migrated entity now occupies in target.
func (a *Archetype) migrateRowOut(row int, target *Archetype, kind migrationKind, delta ComponentType, addBox ComponentBox) (moved EntityID, newRow int, err error) {
	entity := a.entities[row]

	switch kind {
	case migrateAdd:
		for _, t := range a.schema.Types() {
			srcCol, _ := a.columnFor(t)
			dstCol, ok := target.columnFor(t)
			if !ok {
				panic(bark.AddTrace(fmt.Errorf("migrateRowOut(add): target missing shared column %s", t)))
			}
			if mErr := srcCol.MigrateRowTo(dstCol, row); mErr != nil {
				return EntityID{}, 0, mErr
			}
		}
		dstCol, ok := target.columnFor(delta)
		if !ok {
			panic(bark.AddTrace(fmt.Errorf("migrateRowOut(add): target missing added column %s", delta)))
		}
		if pErr := dstCol.Push(addBox); pErr != nil {
			return EntityID{}, 0, pErr
		}
	case migrateRemove:
		deltaCol, ok := a.columnFor(delta)
		if !ok {
			panic(bark.AddTrace(fmt.Errorf("migrateRowOut(remove): source missing removed column %s", delta)))
		}
		deltaCol.SwapRemove(row)
		for _, t := range target.schema.Types() {
			srcCol, _ := a.columnFor(t)
			dstCol, ok := target.columnFor(t)
			if !ok {
				panic(bark.AddTrace(fmt.Errorf("migrateRowOut(remove): target missing shared column %s", t)))
			}
			if mErr := srcCol.MigrateRowTo(dstCol, row); mErr != nil {
				return EntityID{}, 0, mErr
			}
		}
	}

	moved = a.removeEntityRow(row)
	newRow = target.pushEntityRow(entity)

	a.checkParity()
	target.checkParity()
	return moved, newRow, nil
}

// edgeFor looks up the cached neighbour archetype across the given delta type.
func (a *Archetype) edgeFor(t ComponentType) (int, bool) {
	idx, ok := a.edges[t]
	return idx, ok
}

func (a *Archetype) setEdge(t ComponentType, neighbour int) {
	a.edges[t] = neighbour
}

func (a *Archetype) String() string {
	return fmt.Sprintf("Archetype#%d%s", a.index, a.schema)
}
