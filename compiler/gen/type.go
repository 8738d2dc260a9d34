package gen

import (
	"github.com/schemaforge/schemaforge/naming"
	"github.com/schemaforge/schemaforge/schema"
	"github.com/schemaforge/schemaforge/schema/field"
)

type (
	// Type represents one table of the resolved graph: its business
	// fields, foreign keys and relationship edges. Targets read Types;
	// they never reach back into the raw schema.
	Type struct {
		Config *Config
		table  *schema.Table
		// Name is the table name as written in the schema, e.g.
		// "order_items".
		Name string
		// Module is the namespace the table's artifacts are grouped
		// under, e.g. "order_item".
		Module string
		// ID is the primary-key field.
		ID *Field
		// Fields holds the business columns: everything that is not
		// the primary key, not an audit column and not a foreign key.
		Fields []*Field
		// ForeignKeys holds the foreign-key columns residing in this
		// table, in schema order. Kept even after ManyToMany
		// reclassification so migration generators can emit the join
		// table.
		ForeignKeys []*ForeignKey
		// Edges holds the resolved relationships of this type.
		Edges []*Edge
		// JoinTable marks a pure junction table. Junction tables are
		// excluded from entity-bearing artifact kinds and only receive
		// a migration.
		JoinTable bool
	}

	// Field is one business (or primary-key) column.
	Field struct {
		def *schema.Column
		// Name is the column name in the database schema.
		Name string
		// Type is the canonical type of the column.
		Type field.Type
		// Nullable indicates the column accepts NULL.
		Nullable bool
		// Unique indicates a single-column uniqueness constraint.
		Unique bool
		// Default holds the schema's default-value hint, if any.
		Default string
	}

	// ForeignKey is a foreign-key column of a type together with its
	// resolved target.
	ForeignKey struct {
		// Field is the underlying column.
		Field *Field
		// RefTable is the referenced type.
		RefTable *Type
		// RefColumn is the referenced column name, the target's
		// primary key unless overridden.
		RefColumn string
	}

	// Edge is a resolved relationship between two types.
	Edge struct {
		// Name is the snake_case name of the edge on its holder:
		// "category" for a ManyToOne, "products" for the inverse.
		Name string
		// Type is the node the edge points to.
		Type *Type
		// Owner is the node holding the foreign key. For ManyToMany
		// edges it is the node the edge is declared on.
		Owner *Type
		// Rel is the relationship kind.
		Rel Rel
		// Column is the foreign-key column realizing the edge. Empty
		// for ManyToMany edges.
		Column string
		// Through is the junction table name for ManyToMany edges.
		Through string
		// ThroughColumns holds the junction's (owner column, reference
		// column) pair for ManyToMany edges.
		ThroughColumns [2]string
		// Ref is the inverse edge, if any.
		Ref *Edge
	}

	// Rel is a relationship kind.
	Rel uint8
)

// Relationship kinds.
const (
	ManyToOne Rel = iota + 1
	OneToMany
	ManyToMany
)

// String returns the kind name.
func (r Rel) String() string {
	switch r {
	case ManyToOne:
		return "ManyToOne"
	case OneToMany:
		return "OneToMany"
	case ManyToMany:
		return "ManyToMany"
	default:
		return "Unknown"
	}
}

// EntityName returns the PascalCase singular entity name of the type,
// e.g. "OrderItem" for table "order_items".
func (t *Type) EntityName() string {
	return naming.Pascal(naming.Singular(t.Name))
}

// SingularName returns the snake_case singular name, e.g. "order_item".
func (t *Type) SingularName() string {
	return naming.Singular(t.Name)
}

// PluralName returns the snake_case plural name, e.g. "order_items".
func (t *Type) PluralName() string {
	return naming.Plural(naming.Singular(t.Name))
}

// Uniques returns the composite unique constraints of the table.
func (t *Type) Uniques() [][]string {
	return t.table.Uniques
}

// ForeignKey returns the foreign key residing in the given column of
// this type, or nil.
func (t *Type) ForeignKey(column string) *ForeignKey {
	for _, fk := range t.ForeignKeys {
		if fk.Field.Name == column {
			return fk
		}
	}
	return nil
}

// EdgesOfKind returns the edges of the given relationship kind, in
// declaration order.
func (t *Type) EdgesOfKind(r Rel) []*Edge {
	var edges []*Edge
	for _, e := range t.Edges {
		if e.Rel == r {
			edges = append(edges, e)
		}
	}
	return edges
}

// ManyToOnes returns the ManyToOne edges owned by this type.
func (t *Type) ManyToOnes() []*Edge { return t.EdgesOfKind(ManyToOne) }

// OneToManys returns the inverse OneToMany edges held by this type.
func (t *Type) OneToManys() []*Edge { return t.EdgesOfKind(OneToMany) }

// ManyToManys returns the ManyToMany edges of this type.
func (t *Type) ManyToManys() []*Edge { return t.EdgesOfKind(ManyToMany) }

// PascalName returns the field name in PascalCase.
func (f *Field) PascalName() string { return naming.Pascal(f.Name) }

// CamelName returns the field name in camelCase.
func (f *Field) CamelName() string { return naming.Camel(f.Name) }

// HasDefault reports if the schema declared a default-value hint.
func (f *Field) HasDefault() bool { return f.Default != "" }

// PascalName returns the edge name in PascalCase.
func (e *Edge) PascalName() string { return naming.Pascal(e.Name) }

// CamelName returns the edge name in camelCase.
func (e *Edge) CamelName() string { return naming.Camel(e.Name) }

// IDName returns the snake_case name of the foreign-key-id projection
// of the edge in DTO artifacts: "category_id" for a ManyToOne edge,
// "product_ids" for a ManyToMany edge.
func (e *Edge) IDName() string {
	switch e.Rel {
	case ManyToMany, OneToMany:
		return naming.Singular(e.Name) + "_ids"
	default:
		if e.Column != "" {
			return e.Column
		}
		return e.Name + "_id"
	}
}
