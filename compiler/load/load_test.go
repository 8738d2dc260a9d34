package load

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemaforge/schemaforge/compiler/gen"
	"github.com/schemaforge/schemaforge/schema"
	"github.com/schemaforge/schemaforge/schema/field"
)

const shopDoc = `
tables:
  - name: categories
    columns:
      - name: name
        type: string
        unique: true
  - name: products
    module: catalog
    columns:
      - name: sku
        type: string
        unique: true
      - name: price
        type: decimal
        default: "0"
      - name: notes
        type: text
        nullable: true
      - name: category_id
        references: categories
    uniques:
      - [sku, category_id]
  - name: order_items
    columns:
      - name: quantity
        type: int32
      - name: order_id
        references:
          table: orders
          column: id
`

func TestParse(t *testing.T) {
	sc, err := Parse([]byte(shopDoc))
	require.NoError(t, err)
	require.Len(t, sc.Tables, 3)

	products := sc.Table("products")
	require.NotNil(t, products)
	assert.Equal(t, "catalog", products.Module)
	assert.Equal(t, [][]string{{"sku", "category_id"}}, products.Uniques)

	sku := products.Column("sku")
	require.NotNil(t, sku)
	assert.Equal(t, field.TypeString, sku.Type)
	assert.True(t, sku.Unique)

	price := products.Column("price")
	assert.Equal(t, field.TypeDecimal, price.Type)
	assert.Equal(t, "0", price.Default)

	// "text" is an accepted alias.
	notes := products.Column("notes")
	assert.Equal(t, field.TypeString, notes.Type)
	assert.True(t, notes.Nullable)
}

func TestParseReferenceForms(t *testing.T) {
	sc, err := Parse([]byte(shopDoc))
	require.NoError(t, err)

	// Shorthand: a bare table name, primary-key column. The type stays
	// unset until graph resolution inherits the referenced column's.
	short := sc.Table("products").Column("category_id")
	require.NotNil(t, short.Ref)
	assert.Equal(t, "categories", short.Ref.Table)
	assert.Empty(t, short.Ref.Column)
	assert.Equal(t, field.TypeInvalid, short.Type)

	// A declared type on a foreign key stays authoritative.
	typed, err := Parse([]byte("tables:\n  - name: posts\n    columns:\n      - name: author_id\n        type: uuid\n        references: users"))
	require.NoError(t, err)
	assert.Equal(t, field.TypeUUID, typed.Table("posts").Column("author_id").Type)

	// Explicit form with a column.
	full := sc.Table("order_items").Column("order_id")
	require.NotNil(t, full.Ref)
	assert.Equal(t, "orders", full.Ref.Table)
	assert.Equal(t, "id", full.Ref.Column)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"syntax", "tables: ["},
		{"missing type", "tables:\n  - name: users\n    columns:\n      - name: email"},
		{"unknown type", "tables:\n  - name: users\n    columns:\n      - name: email\n        type: emailaddress"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}

	_, err := Parse([]byte(tests[1].doc))
	assert.ErrorIs(t, err, gen.ErrInvalidSchema)
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte(shopDoc), 0o644))
	sc, err := ParseFile(path)
	require.NoError(t, err)
	assert.Len(t, sc.Tables, 3)

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestMarshalRoundTrip(t *testing.T) {
	src := &schema.Schema{Tables: []*schema.Table{
		{
			Name: "categories",
			Columns: []*schema.Column{
				{Name: "name", Type: field.TypeString, Unique: true},
				{Name: "parent_id", Ref: &schema.Reference{Table: "categories"}},
			},
		},
		{
			Name:   "products",
			Module: "catalog",
			Columns: []*schema.Column{
				{Name: "sku", Type: field.TypeString, Unique: true},
				{Name: "price", Type: field.TypeDecimal, Default: "0"},
				{Name: "notes", Type: field.TypeString, Nullable: true},
				{Name: "category_id", Type: field.TypeInt64, Ref: &schema.Reference{Table: "categories"}},
				{Name: "owner_code", Type: field.TypeString, Ref: &schema.Reference{Table: "owners", Column: "code"}},
			},
			Uniques: [][]string{{"sku", "category_id"}},
		},
	}}

	data, err := Marshal(src)
	require.NoError(t, err)
	parsed, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, src, parsed)
}
