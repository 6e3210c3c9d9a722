package weave

// ComponentColumn is a type-erased, dense array of one component type. All
// columns inside a single Archetype share the same length (spec.md §3);
// that invariant is enforced by Archetype, not by the column itself.
type ComponentColumn interface {
	Type() ComponentType
	Len() int

	// Push appends a boxed value. It fails with TypeMismatchError if the
	// box's type does not match the column's.
	Push(box ComponentBox) error

	// SwapRemove removes row by moving the last element into it, then
	// truncating. Callers must ensure row < Len(); out-of-range access
	// panics, matching spec.md §4.1's "caller invariant" contract.
	SwapRemove(row int)

	// SwapRemoveTake behaves like SwapRemove but returns the removed value
	// (the value that occupied row before the move) boxed.
	SwapRemoveTake(row int) ComponentBox

	// MigrateRowTo moves row from this column into target, equivalent to
	// target.Push(c.SwapRemoveTake(row)) without re-boxing. Fails with
	// TypeMismatchError if the column types differ.
	MigrateRowTo(target ComponentColumn, row int) error
}

// typedColumn is the concrete, generic backing store behind ComponentColumn.
// It is the "compile-time generated per-type vtable" option from spec.md §9:
// T's methods are resolved at compile time, and the only type-erasure cost is
// the interface dispatch through ComponentColumn itself.
type typedColumn[T any] struct {
	typ  ComponentType
	data []T
}

func newTypedColumn[T any](typ ComponentType) ComponentColumn {
	return &typedColumn[T]{typ: typ}
}

func (c *typedColumn[T]) Type() ComponentType { return c.typ }
func (c *typedColumn[T]) Len() int            { return len(c.data) }

func (c *typedColumn[T]) Push(box ComponentBox) error {
	if box.typ != c.typ {
		return mustTypeMismatch(c.typ, box.typ)
	}
	v, err := Cast[T](box)
	if err != nil {
		return err
	}
	c.data = append(c.data, v)
	return nil
}

func (c *typedColumn[T]) SwapRemove(row int) {
	last := len(c.data) - 1
	if row != last {
		c.data[row] = c.data[last]
	}
	var zero T
	c.data[last] = zero
	c.data = c.data[:last]
}

func (c *typedColumn[T]) SwapRemoveTake(row int) ComponentBox {
	removed := c.data[row]
	c.SwapRemove(row)
	return NewComponentBox(removed)
}

func (c *typedColumn[T]) MigrateRowTo(target ComponentColumn, row int) error {
	dst, ok := target.(*typedColumn[T])
	if !ok || dst.typ != c.typ {
		return mustTypeMismatch(c.typ, target.Type())
	}
	value := c.data[row]
	c.SwapRemove(row)
	dst.data = append(dst.data, value)
	return nil
}

// at returns a pointer to element row, used by the query machinery to build
// Row views without re-boxing.
func (c *typedColumn[T]) at(row int) *T {
	return &c.data[row]
}
