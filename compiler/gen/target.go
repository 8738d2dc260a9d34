package gen

import (
	"github.com/schemaforge/schemaforge/schema/field"
)

// TypeMapper is the capability set every target language implements
// once: mapping the canonical type taxonomy onto native types. Mappers
// are pure function tables; they hold no mutable state.
type TypeMapper interface {
	// Scalar maps a canonical type to the target's native type name.
	// It must cover the full taxonomy; CheckMapper enforces this at
	// registration time.
	Scalar(t field.Type) string
	// Nullable maps a native type name to its nullable variant.
	Nullable(native string, t field.Type) string
	// DefaultValue returns a native literal for a field, assignable
	// under the target's nullable/non-nullable distinction: empty
	// string for non-nullable strings, an explicit minimum sentinel
	// for non-nullable temporals, the target's null representation
	// for nullable columns.
	DefaultValue(f *Field) string
	// Collection maps an element type name to the target's collection
	// type name.
	Collection(element string) string
	// PrimaryKey returns the native type of primary-key ids.
	PrimaryKey(t field.Type) string
}

// Target generates every artifact kind for one language ecosystem.
// Each Gen method takes one resolved type and returns exactly one
// file; paths are derived from the target's own layout conventions.
// Generation is total over a validated graph: an error return here
// indicates a defect in the target, not a recoverable condition.
type Target interface {
	// Name returns the target name, e.g. "java". It prefixes every
	// output path of the target.
	Name() string
	// Mapper returns the target's type mapper.
	Mapper() TypeMapper
	// GenEntity generates the persistence entity/model artifact.
	GenEntity(t *Type) (*File, error)
	// GenDTO generates the DTO/schema artifact. Owned ManyToOne
	// relationships surface as foreign-key-id fields and ManyToMany
	// as id collections, never as nested objects.
	GenDTO(t *Type) (*File, error)
	// GenMapper generates the entity<->DTO mapper artifact.
	GenMapper(t *Type) (*File, error)
	// GenRepository generates the repository artifact.
	GenRepository(t *Type) (*File, error)
	// GenService generates the service artifact.
	GenService(t *Type) (*File, error)
	// GenController generates the controller/router artifact.
	GenController(t *Type) (*File, error)
	// GenMigration generates the migration artifact. seq is the
	// 1-based position in the graph's dependency-ordered migration
	// sequence.
	GenMigration(t *Type, seq int) (*File, error)
}

// ProjectGenerator is an optional target capability: shared,
// table-independent files such as the base/audit entity every
// generated entity extends. Detected by type assertion.
type ProjectGenerator interface {
	GenProject(g *Graph) ([]*File, error)
}

// CheckMapper verifies that a target's mapper covers the full
// canonical type taxonomy. It runs at registration time so an
// unmapped type is a build-time defect of the target, never a silent
// wrong type at generation time.
func CheckMapper(tgt Target) error {
	m := tgt.Mapper()
	for _, t := range field.Types() {
		if m.Scalar(t) == "" {
			return &UnmappedTypeError{Target: tgt.Name(), Type: t}
		}
		if m.Nullable(m.Scalar(t), t) == "" {
			return &UnmappedTypeError{Target: tgt.Name(), Type: t}
		}
	}
	for _, t := range []field.Type{field.TypeInt32, field.TypeInt64, field.TypeString, field.TypeUUID} {
		if m.PrimaryKey(t) == "" {
			return &UnmappedTypeError{Target: tgt.Name(), Type: t}
		}
	}
	if m.Collection(m.Scalar(field.TypeInt64)) == "" {
		return &UnmappedTypeError{Target: tgt.Name(), Type: field.TypeInt64}
	}
	return nil
}
