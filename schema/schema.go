// Package schema defines the canonical, target-independent schema
// model: tables, columns and constraints. It carries no generation
// logic; construction is pure and the model is treated as immutable
// once built by a loader.
package schema

import (
	"github.com/schemaforge/schemaforge/schema/field"
)

// Schema is a full schema description: the closed set of tables a
// generation request operates on.
type Schema struct {
	Tables []*Table
}

// Table returns the table with the given name, or nil.
func (s *Schema) Table(name string) *Table {
	for _, t := range s.Tables {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// Table is one database table: its name, ordered columns, and
// composite unique constraints. The optional Module groups the
// generated artifacts of this table under a namespace; loaders default
// it to the singular form of the table name.
type Table struct {
	Name    string
	Module  string
	Columns []*Column
	// Uniques holds composite unique constraints. Single-column
	// uniqueness is expressed on the column itself.
	Uniques [][]string
}

// Column returns the column with the given name, or nil.
func (t *Table) Column(name string) *Column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// PrimaryKey returns the primary-key column, or nil if the table does
// not declare one explicitly.
func (t *Table) PrimaryKey() *Column {
	for _, c := range t.Columns {
		if c.PrimaryKey {
			return c
		}
	}
	return nil
}

// Column is one table column with its canonical type and constraints.
type Column struct {
	Name       string
	Type       field.Type
	Nullable   bool
	Unique     bool
	PrimaryKey bool
	// Default holds an optional literal default-value hint in
	// canonical (schema document) notation, e.g. "0", "true", "now".
	Default string
	// Ref marks this column as a foreign key.
	Ref *Reference
}

// Reference is a foreign-key target. An empty Column refers to the
// primary key of the referenced table.
type Reference struct {
	Table  string
	Column string
}
