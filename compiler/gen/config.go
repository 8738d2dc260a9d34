package gen

import (
	"github.com/schemaforge/schemaforge/schema/field"
)

// Config holds the generation options of one request. It is built once
// through NewConfig, shared read-only by the graph and every target,
// and discarded with the request.
type Config struct {
	// BasePackage is the root namespace of the generated project in
	// reverse-domain notation, e.g. "com.example.shop". Each target
	// derives its own convention from it (Java package, Python
	// package, Go module path).
	BasePackage string

	// Header is an optional comment placed at the top of generated
	// files that support comments.
	Header string

	// IDType is the primary-key type used when a table does not
	// declare a primary key explicitly.
	IDType field.Type

	// AuditColumns is the base/audit field set shared by every table.
	// Generators exclude these names from business-column iteration;
	// migrations emit them on every table. The set is configuration,
	// not a hardcoded literal, so schemas with different audit
	// conventions can reuse the engine.
	AuditColumns []AuditColumn

	// Workers bounds the generation parallelism. Zero means
	// runtime.GOMAXPROCS(0).
	Workers int
}

// AuditColumn is one entry of the base/audit field set.
type AuditColumn struct {
	Name     string
	Type     field.Type
	Nullable bool
}

// DefaultAuditColumns is the audit convention used unless overridden:
// soft-delete, actor stamps and optimistic locking. The primary key is
// not listed; it is modeled separately on each table.
func DefaultAuditColumns() []AuditColumn {
	return []AuditColumn{
		{Name: "is_active", Type: field.TypeBool},
		{Name: "created_at", Type: field.TypeInstant},
		{Name: "updated_at", Type: field.TypeInstant},
		{Name: "created_by", Type: field.TypeString, Nullable: true},
		{Name: "updated_by", Type: field.TypeString, Nullable: true},
		{Name: "deleted_at", Type: field.TypeInstant, Nullable: true},
		{Name: "deleted_by", Type: field.TypeString, Nullable: true},
		{Name: "version", Type: field.TypeInt64},
	}
}

// AuditColumn returns the audit entry with the given name, or nil.
func (c *Config) AuditColumn(name string) *AuditColumn {
	for i := range c.AuditColumns {
		if c.AuditColumns[i].Name == name {
			return &c.AuditColumns[i]
		}
	}
	return nil
}

// auditName reports if the given column name belongs to the base/audit
// set. The primary-key name "id" always does.
func (c *Config) auditName(name string) bool {
	if name == "id" {
		return true
	}
	return c.AuditColumn(name) != nil
}
