package weave

// factory implements the factory pattern for weave's top-level constructors,
// matching the teacher's single `var Factory factory` entry point.
type factory struct{}

// Factory is the global factory instance for creating worlds, queries, and
// component bundles.
var Factory factory

// NewWorld creates a new, empty World.
func (f factory) NewWorld() *World {
	return NewWorld()
}

// NewQuery starts a new query declaration.
func (f factory) NewQuery() *QueryBuilder {
	return NewQuery()
}

// NewComponentBundle starts a new component bundle builder.
func (f factory) NewComponentBundle() *ComponentBundle {
	return NewComponentBundle()
}
