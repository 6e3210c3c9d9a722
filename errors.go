package weave

import "fmt"

// EntityNotFoundError is returned when an EntityId's index has never been allocated.
type EntityNotFoundError struct {
	ID EntityID
}

func (e EntityNotFoundError) Error() string {
	return fmt.Sprintf("entity not found: %v", e.ID)
}

// EntityWrongGenerationError is returned when an EntityId's generation does not
// match the registry's current generation for that index.
type EntityWrongGenerationError struct {
	ID EntityID
}

func (e EntityWrongGenerationError) Error() string {
	return fmt.Sprintf("entity has wrong generation: %v", e.ID)
}

// EntityAlreadyFreedError is returned by operations that require a live entity
// when the entity's index is live but carries no location (freed, or never placed).
type EntityAlreadyFreedError struct {
	ID EntityID
}

func (e EntityAlreadyFreedError) Error() string {
	return fmt.Sprintf("entity already freed: %v", e.ID)
}

// OutOfEntityIDsError is returned once the 32-bit index space is exhausted.
type OutOfEntityIDsError struct{}

func (e OutOfEntityIDsError) Error() string {
	return "out of entity ids"
}

// DuplicateTypeInBundleError is returned when a ComponentBundle contains the
// same ComponentType more than once.
type DuplicateTypeInBundleError struct {
	Type ComponentType
}

func (e DuplicateTypeInBundleError) Error() string {
	return fmt.Sprintf("duplicate component type in bundle: %s", e.Type)
}

// ComponentAlreadyPresentError is returned when Migrate(Add(...)) targets a type
// already present on the entity's archetype.
type ComponentAlreadyPresentError struct {
	Type ComponentType
}

func (e ComponentAlreadyPresentError) Error() string {
	return fmt.Sprintf("component already present: %s", e.Type)
}

// ComponentNotPresentError is returned when Migrate(Remove(...)) targets a type
// absent from the entity's archetype.
type ComponentNotPresentError struct {
	Type ComponentType
}

func (e ComponentNotPresentError) Error() string {
	return fmt.Sprintf("component not present: %s", e.Type)
}

// TypeMismatchError is returned by a column operation, or by Cast, attempted
// with the wrong component type. Archetype.append and Get wrap it with
// bark.AddTrace and panic; Archetype.migrateRowOut returns it, and World.Migrate
// passes it on to its caller, where it always indicates a bug in weave itself.
type TypeMismatchError struct {
	Want, Got ComponentType
}

func (e TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch: want %s, got %s", e.Want, e.Got)
}

// QueryAliasingViolationError is returned when a QueryPlan requests the same
// ComponentType more than once, or both as a read and as a write.
type QueryAliasingViolationError struct {
	Type ComponentType
}

func (e QueryAliasingViolationError) Error() string {
	return fmt.Sprintf("query aliasing violation on type: %s", e.Type)
}

// StructuralMutationDuringQueryError is returned when Spawn/Migrate/Kill would
// touch an archetype whose columns are currently borrowed by a live RunSystem call.
type StructuralMutationDuringQueryError struct {
	ArchetypeIndex int
}

func (e StructuralMutationDuringQueryError) Error() string {
	return fmt.Sprintf("structural mutation attempted on archetype %d during an active query", e.ArchetypeIndex)
}
