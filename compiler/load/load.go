// Package load parses schema documents into the canonical schema
// model. The document format is YAML: a list of tables with typed
// columns, constraints and foreign-key references. Structural
// validation beyond syntax (duplicates, primary keys, reference
// resolution) happens in gen.NewGraph.
package load

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/schemaforge/schemaforge/compiler/gen"
	"github.com/schemaforge/schemaforge/schema"
	"github.com/schemaforge/schemaforge/schema/field"
)

type document struct {
	Tables []table `yaml:"tables"`
}

type table struct {
	Name    string     `yaml:"name"`
	Module  string     `yaml:"module,omitempty"`
	Columns []column   `yaml:"columns"`
	Uniques [][]string `yaml:"uniques,omitempty"`
}

type column struct {
	Name       string    `yaml:"name"`
	Type       string    `yaml:"type,omitempty"`
	Nullable   bool      `yaml:"nullable,omitempty"`
	Unique     bool      `yaml:"unique,omitempty"`
	PrimaryKey bool      `yaml:"primary_key,omitempty"`
	Default    string    `yaml:"default,omitempty"`
	References reference `yaml:"references,omitempty"`
}

// reference accepts either the shorthand form ("categories") or the
// explicit form ({table: categories, column: id}).
type reference struct {
	Table  string `yaml:"table"`
	Column string `yaml:"column"`
}

func (r *reference) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		return node.Decode(&r.Table)
	}
	type plain reference
	return node.Decode((*plain)(r))
}

func (r reference) MarshalYAML() (any, error) {
	if r.Column == "" {
		return r.Table, nil
	}
	type plain reference
	return plain(r), nil
}

// Parse decodes a YAML schema document.
func Parse(data []byte) (*schema.Schema, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse schema document: %w", err)
	}
	sc := &schema.Schema{Tables: make([]*schema.Table, 0, len(doc.Tables))}
	for _, t := range doc.Tables {
		tbl := &schema.Table{
			Name:    t.Name,
			Module:  t.Module,
			Columns: make([]*schema.Column, 0, len(t.Columns)),
			Uniques: t.Uniques,
		}
		for _, c := range t.Columns {
			col, err := parseColumn(t.Name, c)
			if err != nil {
				return nil, err
			}
			tbl.Columns = append(tbl.Columns, col)
		}
		sc.Tables = append(sc.Tables, tbl)
	}
	return sc, nil
}

// ParseFile reads and decodes a YAML schema document from disk.
func ParseFile(path string) (*schema.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema document: %w", err)
	}
	return Parse(data)
}

// Marshal renders a schema back into the YAML document format, the
// inverse of Parse. Introspected schemas round-trip through it.
func Marshal(s *schema.Schema) ([]byte, error) {
	doc := document{Tables: make([]table, 0, len(s.Tables))}
	for _, t := range s.Tables {
		tbl := table{Name: t.Name, Module: t.Module, Uniques: t.Uniques}
		for _, c := range t.Columns {
			col := column{
				Name:       c.Name,
				Nullable:   c.Nullable,
				Unique:     c.Unique,
				PrimaryKey: c.PrimaryKey,
				Default:    c.Default,
			}
			if c.Type.Valid() {
				col.Type = c.Type.String()
			}
			if c.Ref != nil {
				col.References = reference{Table: c.Ref.Table, Column: c.Ref.Column}
			}
			tbl.Columns = append(tbl.Columns, col)
		}
		doc.Tables = append(doc.Tables, tbl)
	}
	return yaml.Marshal(&doc)
}

func parseColumn(tableName string, c column) (*schema.Column, error) {
	col := &schema.Column{
		Name:       c.Name,
		Nullable:   c.Nullable,
		Unique:     c.Unique,
		PrimaryKey: c.PrimaryKey,
		Default:    c.Default,
	}
	switch {
	case c.References.Table != "":
		// Foreign keys without a declared type inherit the referenced
		// column's type during graph resolution; an explicit type
		// stays authoritative and must match it.
		col.Ref = &schema.Reference{Table: c.References.Table, Column: c.References.Column}
		if c.Type == "" {
			return col, nil
		}
	case c.Type == "":
		return nil, gen.NewSchemaError(tableName, c.Name, "column without a type", nil)
	}
	if col.Type = field.TypeOf(c.Type); !col.Type.Valid() {
		return nil, gen.NewSchemaError(tableName, c.Name, fmt.Sprintf("unknown canonical type %q", c.Type), nil)
	}
	return col, nil
}
