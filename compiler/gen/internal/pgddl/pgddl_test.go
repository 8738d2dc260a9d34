package pgddl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemaforge/schemaforge/compiler/gen"
	"github.com/schemaforge/schemaforge/schema"
	"github.com/schemaforge/schemaforge/schema/field"
)

func testGraph(t *testing.T) *gen.Graph {
	t.Helper()
	cfg, err := gen.NewConfig(gen.WithBasePackage("com.example.shop"))
	require.NoError(t, err)
	g, err := gen.NewGraph(cfg, &schema.Schema{Tables: []*schema.Table{
		{
			Name: "categories",
			Columns: []*schema.Column{
				{Name: "name", Type: field.TypeString, Unique: true},
			},
		},
		{
			Name: "products",
			Columns: []*schema.Column{
				{Name: "sku", Type: field.TypeString, Unique: true},
				{Name: "name", Type: field.TypeString},
				{Name: "price", Type: field.TypeDecimal, Default: "0"},
				{Name: "notes", Type: field.TypeString, Nullable: true},
				{Name: "category_id", Type: field.TypeInt64, Ref: &schema.Reference{Table: "categories"}},
			},
			Uniques: [][]string{{"name", "category_id"}},
		},
		{
			Name: "tags",
			Columns: []*schema.Column{
				{Name: "name", Type: field.TypeString, Unique: true},
			},
		},
		{
			Name: "product_tags",
			Columns: []*schema.Column{
				{Name: "product_id", Type: field.TypeInt64, Ref: &schema.Reference{Table: "products"}},
				{Name: "tag_id", Type: field.TypeInt64, Ref: &schema.Reference{Table: "tags"}},
			},
			Uniques: [][]string{{"product_id", "tag_id"}},
		},
	}})
	require.NoError(t, err)
	return g
}

func TestColumnType(t *testing.T) {
	for _, typ := range field.Types() {
		assert.NotEmpty(t, ColumnType(typ), typ.String())
	}
	assert.Equal(t, "NUMERIC(19, 4)", ColumnType(field.TypeDecimal))
	assert.Equal(t, "TIMESTAMPTZ", ColumnType(field.TypeInstant))
	assert.Empty(t, ColumnType(field.TypeInvalid))
}

func TestCreateTable(t *testing.T) {
	g := testGraph(t)
	ddl := CreateTable(g.Type("products"))

	assert.Contains(t, ddl, "CREATE TABLE products (\n")
	assert.Contains(t, ddl, "    id BIGSERIAL PRIMARY KEY")
	assert.Contains(t, ddl, "    sku VARCHAR(255) NOT NULL")
	assert.Contains(t, ddl, "    price NUMERIC(19, 4) NOT NULL DEFAULT 0")
	assert.Contains(t, ddl, "    notes VARCHAR(255),\n")
	assert.Contains(t, ddl, "    category_id BIGINT NOT NULL")
	// Audit columns with server-side defaults.
	assert.Contains(t, ddl, "    is_active BOOLEAN NOT NULL DEFAULT TRUE")
	assert.Contains(t, ddl, "    created_at TIMESTAMPTZ NOT NULL DEFAULT now()")
	assert.Contains(t, ddl, "    deleted_at TIMESTAMPTZ,\n")
	assert.Contains(t, ddl, "    version BIGINT NOT NULL DEFAULT 0")
	// Named constraints.
	assert.Contains(t, ddl, "CONSTRAINT uq_products_sku UNIQUE (sku)")
	assert.Contains(t, ddl, "CONSTRAINT uq_products_name_category_id UNIQUE (name, category_id)")
	assert.Contains(t, ddl, "CONSTRAINT fk_products_category_id FOREIGN KEY (category_id) REFERENCES categories (id)")
	// Audit indexes.
	assert.Contains(t, ddl, "CREATE INDEX idx_products_is_active ON products (is_active);")
	assert.Contains(t, ddl, "CREATE INDEX idx_products_created_at ON products (created_at);")
}

func TestCreateTableJunction(t *testing.T) {
	g := testGraph(t)
	n := g.Type("product_tags")
	require.True(t, n.JoinTable)
	ddl := CreateTable(n)

	assert.Contains(t, ddl, "CONSTRAINT uq_product_tags_product_id_tag_id UNIQUE (product_id, tag_id)")
	// The declared composite unique shadows the junction pair; the
	// constraint is emitted exactly once.
	assert.Equal(t, 1, strings.Count(ddl, "uq_product_tags_product_id_tag_id"))
	assert.Contains(t, ddl, "CONSTRAINT fk_product_tags_product_id FOREIGN KEY (product_id) REFERENCES products (id)")
	assert.Contains(t, ddl, "CONSTRAINT fk_product_tags_tag_id FOREIGN KEY (tag_id) REFERENCES tags (id)")
}

func TestDropTable(t *testing.T) {
	g := testGraph(t)
	assert.Equal(t, "DROP TABLE IF EXISTS products;\n", DropTable(g.Type("products")))
}

func TestLiteral(t *testing.T) {
	tests := []struct {
		name     string
		field    *gen.Field
		expected string
	}{
		{"number", &gen.Field{Type: field.TypeInt64, Default: "42"}, "42"},
		{"bool", &gen.Field{Type: field.TypeBool, Default: "true"}, "true"},
		{"string", &gen.Field{Type: field.TypeString, Default: "draft"}, "'draft'"},
		{"string escaped", &gen.Field{Type: field.TypeString, Default: "it's"}, "'it''s'"},
		{"now", &gen.Field{Type: field.TypeInstant, Default: "now"}, "now()"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Literal(tt.field))
		})
	}
}
