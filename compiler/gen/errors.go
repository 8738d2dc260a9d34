// Package gen provides the generation core: the resolved schema graph,
// the target abstraction, and the orchestrator that turns a graph into
// a set of generated files.
package gen

import (
	"errors"
	"fmt"
	"strings"

	"github.com/schemaforge/schemaforge/schema/field"
)

// Sentinel errors for common failure cases.
var (
	// ErrInvalidSchema indicates a schema definition error.
	ErrInvalidSchema = errors.New("schemaforge: invalid schema")
	// ErrInvalidRelation indicates a relationship resolution error.
	ErrInvalidRelation = errors.New("schemaforge: invalid relation")
	// ErrMissingConfig indicates a configuration error.
	ErrMissingConfig = errors.New("schemaforge: missing configuration")
	// ErrUnmappedType indicates a target mapper with an uncovered canonical type.
	ErrUnmappedType = errors.New("schemaforge: unmapped canonical type")
	// ErrPathCollision indicates two artifacts assigned the same output path.
	ErrPathCollision = errors.New("schemaforge: output path collision")
	// ErrGenerationFailed indicates a text generation failure.
	ErrGenerationFailed = errors.New("schemaforge: generation failed")
)

// SchemaError represents a malformed or inconsistent schema: duplicate
// table or column names, a missing or unsupported primary key, or a
// foreign key referencing a table not present in the schema.
type SchemaError struct {
	Table   string
	Column  string
	Message string
	Cause   error
}

func (e *SchemaError) Error() string {
	var b strings.Builder
	b.WriteString("schemaforge: schema error")
	if e.Table != "" {
		b.WriteString(" on table ")
		b.WriteString(e.Table)
	}
	if e.Column != "" {
		b.WriteString(" column ")
		b.WriteString(e.Column)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *SchemaError) Unwrap() error { return e.Cause }

// Is reports whether the target matches the sentinel error for SchemaError.
func (e *SchemaError) Is(target error) bool { return target == ErrInvalidSchema }

// NewSchemaError creates a new SchemaError.
func NewSchemaError(table, column, message string, cause error) *SchemaError {
	return &SchemaError{Table: table, Column: column, Message: message, Cause: cause}
}

// RelationError represents a relationship resolution error, e.g. a
// foreign key whose referenced column does not exist.
type RelationError struct {
	From    string
	To      string
	Column  string
	Message string
	Cause   error
}

func (e *RelationError) Error() string {
	var b strings.Builder
	b.WriteString("schemaforge: relation error")
	if e.From != "" && e.To != "" {
		fmt.Fprintf(&b, " (%s -> %s)", e.From, e.To)
	} else if e.From != "" {
		b.WriteString(" from ")
		b.WriteString(e.From)
	}
	if e.Column != "" {
		b.WriteString(" on column ")
		b.WriteString(e.Column)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *RelationError) Unwrap() error { return e.Cause }

// Is reports whether the target matches the sentinel error for RelationError.
func (e *RelationError) Is(target error) bool { return target == ErrInvalidRelation }

// NewRelationError creates a new RelationError.
func NewRelationError(from, to, column, message string, cause error) *RelationError {
	return &RelationError{From: from, To: to, Column: column, Message: message, Cause: cause}
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("schemaforge: config error for %q (value: %v): %s", e.Option, e.Value, e.Message)
	}
	return fmt.Sprintf("schemaforge: config error for %q: %s", e.Option, e.Message)
}

// Is reports whether the target matches the sentinel error for ConfigError.
func (e *ConfigError) Is(target error) bool { return target == ErrMissingConfig }

// NewConfigError creates a new ConfigError.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{Option: option, Value: value, Message: message}
}

// UnmappedTypeError reports a canonical type that a selected target's
// type mapper does not cover. It surfaces at target registration time
// through CheckMapper, never during generation.
type UnmappedTypeError struct {
	Target string
	Type   field.Type
}

func (e *UnmappedTypeError) Error() string {
	return fmt.Sprintf("schemaforge: target %q has no mapping for canonical type %s", e.Target, e.Type)
}

// Is reports whether the target matches the sentinel error for UnmappedTypeError.
func (e *UnmappedTypeError) Is(target error) bool { return target == ErrUnmappedType }

// OrchestrationError reports an output path collision between two
// generated artifacts. Paths are never silently overwritten.
type OrchestrationError struct {
	Path    string
	Message string
}

func (e *OrchestrationError) Error() string {
	return fmt.Sprintf("schemaforge: orchestration error for path %q: %s", e.Path, e.Message)
}

// Is reports whether the target matches the sentinel error for OrchestrationError.
func (e *OrchestrationError) Is(target error) bool { return target == ErrPathCollision }

// GenerationError represents a text generation failure. Generation is
// total over validated input, so this class indicates a defect in a
// target generator, not a recoverable condition.
type GenerationError struct {
	Target   string
	Artifact string
	File     string
	Cause    error
}

func (e *GenerationError) Error() string {
	var b strings.Builder
	b.WriteString("schemaforge: generation error")
	if e.Target != "" {
		b.WriteString(" in target ")
		b.WriteString(e.Target)
	}
	if e.Artifact != "" {
		b.WriteString(" for artifact ")
		b.WriteString(e.Artifact)
	}
	if e.File != "" {
		b.WriteString(" (file: ")
		b.WriteString(e.File)
		b.WriteString(")")
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *GenerationError) Unwrap() error { return e.Cause }

// Is reports whether the target matches the sentinel error for GenerationError.
func (e *GenerationError) Is(target error) bool { return target == ErrGenerationFailed }
