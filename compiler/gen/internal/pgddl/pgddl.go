// Package pgddl renders PostgreSQL DDL for migration artifacts. It is
// shared by the targets whose migration tooling executes plain SQL
// (Flyway, golang-migrate, TypeORM query runners) so that every target
// creates byte-identical table shapes.
package pgddl

import (
	"fmt"
	"strings"

	"github.com/schemaforge/schemaforge/compiler/gen"
	"github.com/schemaforge/schemaforge/schema/field"
)

// ColumnType maps a canonical type to its PostgreSQL column type.
func ColumnType(t field.Type) string {
	switch t {
	case field.TypeInt32:
		return "INTEGER"
	case field.TypeInt64:
		return "BIGINT"
	case field.TypeFloat32:
		return "REAL"
	case field.TypeFloat64:
		return "DOUBLE PRECISION"
	case field.TypeDecimal:
		return "NUMERIC(19, 4)"
	case field.TypeBool:
		return "BOOLEAN"
	case field.TypeString:
		return "VARCHAR(255)"
	case field.TypeBytes:
		return "BYTEA"
	case field.TypeDate:
		return "DATE"
	case field.TypeDateTime:
		return "TIMESTAMP"
	case field.TypeTime:
		return "TIME"
	case field.TypeInstant:
		return "TIMESTAMPTZ"
	case field.TypeDuration:
		return "BIGINT"
	case field.TypeUUID:
		return "UUID"
	default:
		return ""
	}
}

// pkType returns the primary-key column definition.
func pkType(t field.Type) string {
	switch t {
	case field.TypeInt32:
		return "SERIAL"
	case field.TypeInt64:
		return "BIGSERIAL"
	case field.TypeUUID:
		return "UUID"
	default:
		return ColumnType(t)
	}
}

// auditDefault returns the DEFAULT clause value of an audit column,
// or "" when none applies.
func auditDefault(c gen.AuditColumn) string {
	if c.Nullable {
		return ""
	}
	switch {
	case c.Type == field.TypeBool:
		return "TRUE"
	case c.Type.Temporal():
		return "now()"
	case c.Type.Numeric():
		return "0"
	default:
		return ""
	}
}

// Literal renders a schema default-value hint as a SQL literal.
func Literal(f *gen.Field) string {
	switch {
	case f.Type == field.TypeString:
		return "'" + strings.ReplaceAll(f.Default, "'", "''") + "'"
	case f.Type.Temporal() && f.Default == "now":
		return "now()"
	default:
		return f.Default
	}
}

// CreateTable renders the CREATE TABLE statement of a type: primary
// key, business columns, foreign-key columns, the full audit set,
// named uniqueness and foreign-key constraints, plus indexes on the
// filterable audit columns.
func CreateTable(t *gen.Type) string {
	var (
		b     strings.Builder
		lines []string
	)
	fmt.Fprintf(&b, "CREATE TABLE %s (\n", t.Name)
	lines = append(lines, fmt.Sprintf("    %s %s PRIMARY KEY", t.ID.Name, pkType(t.ID.Type)))
	for _, f := range t.Fields {
		lines = append(lines, columnLine(f))
	}
	for _, fk := range t.ForeignKeys {
		lines = append(lines, columnLine(fk.Field))
	}
	for _, c := range t.Config.AuditColumns {
		line := fmt.Sprintf("    %s %s", c.Name, ColumnType(c.Type))
		if !c.Nullable {
			line += " NOT NULL"
		}
		if def := auditDefault(c); def != "" {
			line += " DEFAULT " + def
		}
		lines = append(lines, line)
	}
	for _, f := range t.Fields {
		if f.Unique {
			lines = append(lines, fmt.Sprintf("    CONSTRAINT uq_%s_%s UNIQUE (%s)", t.Name, f.Name, f.Name))
		}
	}
	var pair string
	if t.JoinTable {
		a, b := t.ForeignKeys[0].Field.Name, t.ForeignKeys[1].Field.Name
		pair = a + "_" + b
		lines = append(lines, fmt.Sprintf("    CONSTRAINT uq_%s_%s UNIQUE (%s, %s)", t.Name, pair, a, b))
	}
	for _, uq := range t.Uniques() {
		// Skip a declared constraint shadowing the junction pair.
		if name := strings.Join(uq, "_"); name != pair {
			lines = append(lines, fmt.Sprintf("    CONSTRAINT uq_%s_%s UNIQUE (%s)",
				t.Name, name, strings.Join(uq, ", ")))
		}
	}
	for _, fk := range t.ForeignKeys {
		lines = append(lines, fmt.Sprintf("    CONSTRAINT fk_%s_%s FOREIGN KEY (%s) REFERENCES %s (%s)",
			t.Name, fk.Field.Name, fk.Field.Name, fk.RefTable.Name, fk.RefColumn))
	}
	b.WriteString(strings.Join(lines, ",\n"))
	b.WriteString("\n);\n")
	for _, idx := range Indexes(t) {
		fmt.Fprintf(&b, "\nCREATE INDEX idx_%s_%s ON %s (%s);\n", t.Name, idx, t.Name, idx)
	}
	return b.String()
}

func columnLine(f *gen.Field) string {
	line := fmt.Sprintf("    %s %s", f.Name, ColumnType(f.Type))
	if !f.Nullable {
		line += " NOT NULL"
	}
	if f.HasDefault() {
		line += " DEFAULT " + Literal(f)
	}
	return line
}

// Indexes returns the audit columns every table is indexed on: the
// active flag and the creation timestamp, when present in the
// configured audit set.
func Indexes(t *gen.Type) []string {
	var idx []string
	for _, name := range []string{"is_active", "active", "created_at"} {
		if t.Config.AuditColumn(name) != nil {
			idx = append(idx, name)
		}
	}
	return idx
}

// DropTable renders the DROP TABLE statement used by down migrations.
func DropTable(t *gen.Type) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s;\n", t.Name)
}
