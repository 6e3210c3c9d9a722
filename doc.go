/*
Package weave is an archetype-based Entity-Component-System core.

Weave groups entities by the exact set of component types they carry,
storing components in dense per-type columns partitioned by archetype.
Systems are expressed as structured read/write queries over those
columns, not as callbacks registered with a scheduler: weave has no
scheduler, no change-tracking and no parallel execution model. It is a
data store, driven synchronously by its caller.

Core Concepts:

  - ComponentType: a process-stable identity for a Go struct type.
  - TypeBundle: the canonical, ordered set of ComponentTypes that defines
    an Archetype's schema.
  - Archetype: dense per-type columns plus a parallel entity-id column,
    one row per entity.
  - World: owns every Archetype and the entity registry; the only entry
    point for spawn/migrate/kill/query.

Basic Usage:

	w := weave.Factory.NewWorld()

	position := weave.ComponentTypeOf[Position]()
	velocity := weave.ComponentTypeOf[Velocity]()

	bundle := weave.Factory.NewComponentBundle()
	weave.InsertComponent(bundle, Position{X: 1})
	weave.InsertComponent(bundle, Velocity{X: 2})
	id, _ := w.Spawn(bundle)

	plan, _ := weave.Factory.NewQuery().
		Read(velocity).
		Write(position).
		Build()

	w.RunSystem(plan, func(row weave.Row) {
		pos := weave.Get[Position](row, position)
		vel := weave.Get[Velocity](row, velocity)
		pos.X += vel.X
	})

Weave is a library. It performs no file I/O, has no wire protocol and no
logging of its own; it is meant to be driven by a rendering, simulation
or scripting loop that owns those concerns.
*/
package weave
