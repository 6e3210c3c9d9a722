package weave_test

import (
	"fmt"

	"github.com/weaveecs/weave"
)

// Position and Velocity are example components for Example_basic.
type Position struct{ X, Y float64 }
type Velocity struct{ X, Y float64 }

// Tagged is an example component for Example_migrate.
type Tagged struct{ Name string }

// Example_basic shows spawning an entity and running a read/write system
// over it.
func Example_basic() {
	w := weave.Factory.NewWorld()

	position := weave.ComponentTypeOf[Position]()
	velocity := weave.ComponentTypeOf[Velocity]()

	bundle := weave.Factory.NewComponentBundle()
	weave.InsertComponent(bundle, Position{X: 1, Y: 1})
	weave.InsertComponent(bundle, Velocity{X: 2, Y: 3})
	w.Spawn(bundle)

	plan, err := weave.Factory.NewQuery().Read(velocity).Write(position).Build()
	if err != nil {
		fmt.Println(err)
		return
	}

	w.RunSystem(plan, func(row weave.Row) {
		pos := weave.Get[Position](row, position)
		vel := weave.Get[Velocity](row, velocity)
		pos.X += vel.X
		pos.Y += vel.Y
		fmt.Printf("moved to (%.1f, %.1f)\n", pos.X, pos.Y)
	})

	// Output:
	// moved to (3.0, 4.0)
}

// Example_migrate shows attaching a component to an already-spawned entity.
func Example_migrate() {
	w := weave.Factory.NewWorld()
	tag := weave.ComponentTypeOf[Tagged]()

	id, err := w.Spawn(weave.Factory.NewComponentBundle())
	if err != nil {
		fmt.Println(err)
		return
	}

	if err := w.Migrate(id, weave.AddValue(Tagged{Name: "boss"})); err != nil {
		fmt.Println(err)
		return
	}

	plan, _ := weave.Factory.NewQuery().Read(tag).Build()
	w.RunSystem(plan, func(row weave.Row) {
		fmt.Println(weave.Get[Tagged](row, tag).Name)
	})

	// Output:
	// boss
}
