package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemaforge/schemaforge/schema"
	"github.com/schemaforge/schemaforge/schema/field"
)

// shopSchema is the fixture shared by the resolver tests: categories,
// products (M2O to categories), tags, and a pure product_tags junction.
func shopSchema() *schema.Schema {
	return &schema.Schema{
		Tables: []*schema.Table{
			{
				Name: "categories",
				Columns: []*schema.Column{
					{Name: "name", Type: field.TypeString, Unique: true},
					{Name: "description", Type: field.TypeString, Nullable: true},
				},
			},
			{
				Name: "products",
				Columns: []*schema.Column{
					{Name: "sku", Type: field.TypeString, Unique: true},
					{Name: "name", Type: field.TypeString},
					{Name: "price", Type: field.TypeDecimal, Default: "0"},
					{Name: "is_active", Type: field.TypeBool},
					{Name: "created_at", Type: field.TypeInstant},
					{Name: "category_id", Type: field.TypeInt64, Ref: &schema.Reference{Table: "categories"}},
				},
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
		},
	}
}

func newTestConfig(t *testing.T, opts ...Option) *Config {
	t.Helper()
	cfg, err := NewConfig(append([]Option{WithBasePackage("com.example.shop")}, opts...)...)
	require.NoError(t, err)
	return cfg
}

func newTestGraph(t *testing.T, sc *schema.Schema, opts ...Option) *Graph {
	t.Helper()
	g, err := NewGraph(newTestConfig(t, opts...), sc)
	require.NoError(t, err)
	return g
}

func TestNewGraphResolvesManyToOne(t *testing.T) {
	g := newTestGraph(t, shopSchema())
	products := g.Type("products")
	require.NotNil(t, products)

	m2o := products.ManyToOnes()
	require.Len(t, m2o, 1)
	assert.Equal(t, "category", m2o[0].Name)
	assert.Equal(t, "categories", m2o[0].Type.Name)
	assert.Equal(t, "category_id", m2o[0].Column)

	inverse := g.Type("categories").OneToManys()
	require.Len(t, inverse, 1)
	assert.Equal(t, "products", inverse[0].Name)
	assert.Same(t, m2o[0], inverse[0].Ref)
	assert.Same(t, inverse[0], m2o[0].Ref)
}

func TestNewGraphImplicitPrimaryKey(t *testing.T) {
	g := newTestGraph(t, shopSchema())
	products := g.Type("products")
	require.NotNil(t, products.ID)
	assert.Equal(t, "id", products.ID.Name)
	assert.Equal(t, field.TypeInt64, products.ID.Type)
}

func TestNewGraphExplicitPrimaryKey(t *testing.T) {
	sc := &schema.Schema{Tables: []*schema.Table{{
		Name: "countries",
		Columns: []*schema.Column{
			{Name: "code", Type: field.TypeString, PrimaryKey: true},
			{Name: "name", Type: field.TypeString},
		},
	}}}
	g := newTestGraph(t, sc)
	n := g.Type("countries")
	assert.Equal(t, "code", n.ID.Name)
	assert.Equal(t, field.TypeString, n.ID.Type)
	// The primary key is not a business field.
	require.Len(t, n.Fields, 1)
	assert.Equal(t, "name", n.Fields[0].Name)
}

func TestNewGraphConfiguredIDType(t *testing.T) {
	g := newTestGraph(t, shopSchema(), WithIDType("uuid"))
	assert.Equal(t, field.TypeUUID, g.Type("products").ID.Type)
}

func TestNewGraphAuditColumnsExcluded(t *testing.T) {
	g := newTestGraph(t, shopSchema())
	products := g.Type("products")
	names := make([]string, 0, len(products.Fields))
	for _, f := range products.Fields {
		names = append(names, f.Name)
	}
	// is_active and created_at belong to the audit set; category_id is a
	// foreign key. Neither shows up as a business field.
	assert.Equal(t, []string{"sku", "name", "price"}, names)
	require.Len(t, products.ForeignKeys, 1)
	assert.Equal(t, "category_id", products.ForeignKeys[0].Field.Name)
	assert.Equal(t, "id", products.ForeignKeys[0].RefColumn)
}

func TestNewGraphModuleDefaultsToSingular(t *testing.T) {
	g := newTestGraph(t, shopSchema())
	assert.Equal(t, "product", g.Type("products").Module)
	assert.Equal(t, "category", g.Type("categories").Module)
}

func TestJunctionReclassification(t *testing.T) {
	g := newTestGraph(t, shopSchema())
	junction := g.Type("product_tags")
	require.NotNil(t, junction)
	assert.True(t, junction.JoinTable)
	assert.Empty(t, junction.Edges)

	m2m := g.Type("products").ManyToManys()
	require.Len(t, m2m, 1)
	assert.Equal(t, "tags", m2m[0].Name)
	assert.Equal(t, "product_tags", m2m[0].Through)
	assert.Equal(t, [2]string{"product_id", "tag_id"}, m2m[0].ThroughColumns)

	back := g.Type("tags").ManyToManys()
	require.Len(t, back, 1)
	assert.Equal(t, "products", back[0].Name)
	assert.Equal(t, [2]string{"tag_id", "product_id"}, back[0].ThroughColumns)
	assert.Same(t, m2m[0], back[0].Ref)

	// The inverse OneToMany edges toward the junction are dropped.
	for _, e := range g.Type("products").OneToManys() {
		assert.NotEqual(t, "product_tags", e.Type.Name)
	}
	// EntityNodes skips the junction.
	for _, n := range g.EntityNodes() {
		assert.NotEqual(t, "product_tags", n.Name)
	}
}

func TestJunctionWithBusinessColumnStaysEntity(t *testing.T) {
	sc := shopSchema()
	junction := sc.Tables[3]
	junction.Columns = append(junction.Columns, &schema.Column{Name: "position", Type: field.TypeInt32})

	g := newTestGraph(t, sc)
	n := g.Type("product_tags")
	assert.False(t, n.JoinTable)
	assert.Empty(t, g.Type("products").ManyToManys())
	require.Len(t, n.ManyToOnes(), 2)
}

func TestJunctionBothKeysSameTableStaysEntity(t *testing.T) {
	sc := &schema.Schema{Tables: []*schema.Table{
		{Name: "users", Columns: []*schema.Column{{Name: "name", Type: field.TypeString}}},
		{Name: "follows", Columns: []*schema.Column{
			{Name: "follower_id", Type: field.TypeInt64, Ref: &schema.Reference{Table: "users"}},
			{Name: "followed_id", Type: field.TypeInt64, Ref: &schema.Reference{Table: "users"}},
		}},
	}}
	g := newTestGraph(t, sc)
	assert.False(t, g.Type("follows").JoinTable)
	assert.Empty(t, g.Type("users").ManyToManys())
}

func TestSecondForeignKeyToSameTableDisambiguates(t *testing.T) {
	sc := &schema.Schema{Tables: []*schema.Table{
		{Name: "addresses", Columns: []*schema.Column{{Name: "street", Type: field.TypeString}}},
		{Name: "orders", Columns: []*schema.Column{
			{Name: "total", Type: field.TypeDecimal},
			{Name: "shipping_address_id", Type: field.TypeInt64, Ref: &schema.Reference{Table: "addresses"}},
			{Name: "billing_address_id", Type: field.TypeInt64, Ref: &schema.Reference{Table: "addresses"}},
		}},
	}}
	g := newTestGraph(t, sc)

	m2o := g.Type("orders").ManyToOnes()
	require.Len(t, m2o, 2)
	assert.Equal(t, "shipping_address", m2o[0].Name)
	assert.Equal(t, "billing_address", m2o[1].Name)

	inverse := g.Type("addresses").OneToManys()
	require.Len(t, inverse, 2)
	assert.Equal(t, "orders", inverse[0].Name)
	assert.Equal(t, "billing_address_orders", inverse[1].Name)
}

func TestNewGraphErrors(t *testing.T) {
	tests := []struct {
		name   string
		schema *schema.Schema
	}{
		{"nil schema", nil},
		{"empty schema", &schema.Schema{}},
		{"empty table name", &schema.Schema{Tables: []*schema.Table{{Name: ""}}}},
		{"duplicate table", &schema.Schema{Tables: []*schema.Table{
			{Name: "users", Columns: []*schema.Column{{Name: "name", Type: field.TypeString}}},
			{Name: "users", Columns: []*schema.Column{{Name: "name", Type: field.TypeString}}},
		}}},
		{"duplicate column", &schema.Schema{Tables: []*schema.Table{
			{Name: "users", Columns: []*schema.Column{
				{Name: "name", Type: field.TypeString},
				{Name: "name", Type: field.TypeString},
			}},
		}}},
		{"invalid column type", &schema.Schema{Tables: []*schema.Table{
			{Name: "users", Columns: []*schema.Column{{Name: "name"}}},
		}}},
		{"multiple primary keys", &schema.Schema{Tables: []*schema.Table{
			{Name: "users", Columns: []*schema.Column{
				{Name: "a", Type: field.TypeInt64, PrimaryKey: true},
				{Name: "b", Type: field.TypeInt64, PrimaryKey: true},
			}},
		}}},
		{"unsupported primary-key type", &schema.Schema{Tables: []*schema.Table{
			{Name: "users", Columns: []*schema.Column{{Name: "id", Type: field.TypeFloat64, PrimaryKey: true}}},
		}}},
		{"unknown foreign-key table", &schema.Schema{Tables: []*schema.Table{
			{Name: "products", Columns: []*schema.Column{
				{Name: "category_id", Type: field.TypeInt64, Ref: &schema.Reference{Table: "categories"}},
			}},
		}}},
		{"unique references unknown column", &schema.Schema{Tables: []*schema.Table{
			{Name: "users", Columns: []*schema.Column{{Name: "name", Type: field.TypeString}},
				Uniques: [][]string{{"email"}}},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGraph(newTestConfig(t), tt.schema)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidSchema)
		})
	}
}

func TestNewGraphUnknownRefColumn(t *testing.T) {
	sc := &schema.Schema{Tables: []*schema.Table{
		{Name: "categories", Columns: []*schema.Column{{Name: "name", Type: field.TypeString}}},
		{Name: "products", Columns: []*schema.Column{
			{Name: "category_code", Type: field.TypeString, Ref: &schema.Reference{Table: "categories", Column: "code"}},
		}},
	}}
	_, err := NewGraph(newTestConfig(t), sc)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRelation)
}

func TestForeignKeyInheritsReferencedType(t *testing.T) {
	sc := &schema.Schema{Tables: []*schema.Table{
		{Name: "users", Columns: []*schema.Column{
			{Name: "id", Type: field.TypeUUID, PrimaryKey: true},
			{Name: "email", Type: field.TypeString, Unique: true},
		}},
		{Name: "countries", Columns: []*schema.Column{
			{Name: "code", Type: field.TypeString, PrimaryKey: true},
		}},
		{Name: "posts", Columns: []*schema.Column{
			{Name: "title", Type: field.TypeString},
			// No declared type: inherited from users.id.
			{Name: "user_id", Ref: &schema.Reference{Table: "users"}},
			{Name: "country_code", Ref: &schema.Reference{Table: "countries", Column: "code"}},
		}},
	}}
	g := newTestGraph(t, sc)
	posts := g.Type("posts")
	require.Len(t, posts.ForeignKeys, 2)
	assert.Equal(t, field.TypeUUID, posts.ForeignKey("user_id").Field.Type)
	assert.Equal(t, field.TypeString, posts.ForeignKey("country_code").Field.Type)
}

func TestForeignKeyTypeMismatch(t *testing.T) {
	sc := &schema.Schema{Tables: []*schema.Table{
		{Name: "users", Columns: []*schema.Column{
			{Name: "id", Type: field.TypeUUID, PrimaryKey: true},
		}},
		{Name: "posts", Columns: []*schema.Column{
			{Name: "user_id", Type: field.TypeInt64, Ref: &schema.Reference{Table: "users"}},
			{Name: "title", Type: field.TypeString},
		}},
	}}
	_, err := NewGraph(newTestConfig(t), sc)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRelation)
	assert.Contains(t, err.Error(), "does not match referenced column")
}

func TestNewGraphNilConfig(t *testing.T) {
	_, err := NewGraph(nil, shopSchema())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingConfig)
}

func TestMigrationOrder(t *testing.T) {
	g := newTestGraph(t, shopSchema())
	order := g.MigrationOrder()
	require.Len(t, order, 4)

	pos := make(map[string]int, len(order))
	for i, n := range order {
		pos[n.Name] = i
	}
	assert.Less(t, pos["categories"], pos["products"])
	assert.Less(t, pos["products"], pos["product_tags"])
	assert.Less(t, pos["tags"], pos["product_tags"])

	// Independent roots are ordered by name.
	assert.Equal(t, []string{"categories", "tags"}, []string{order[0].Name, order[1].Name})
}

func TestMigrationOrderSelfReference(t *testing.T) {
	sc := &schema.Schema{Tables: []*schema.Table{
		{Name: "categories", Columns: []*schema.Column{
			{Name: "name", Type: field.TypeString},
			{Name: "parent_id", Type: field.TypeInt64, Nullable: true, Ref: &schema.Reference{Table: "categories"}},
		}},
	}}
	g := newTestGraph(t, sc)
	order := g.MigrationOrder()
	require.Len(t, order, 1)
	assert.Equal(t, "categories", order[0].Name)
}

func TestMigrationOrderCycleFallsBackToNames(t *testing.T) {
	sc := &schema.Schema{Tables: []*schema.Table{
		{Name: "b_side", Columns: []*schema.Column{
			{Name: "a_id", Type: field.TypeInt64, Nullable: true, Ref: &schema.Reference{Table: "a_side"}},
		}},
		{Name: "a_side", Columns: []*schema.Column{
			{Name: "b_id", Type: field.TypeInt64, Nullable: true, Ref: &schema.Reference{Table: "b_side"}},
		}},
	}}
	g := newTestGraph(t, sc)
	order := g.MigrationOrder()
	require.Len(t, order, 2)
	assert.Equal(t, "a_side", order[0].Name)
	assert.Equal(t, "b_side", order[1].Name)
}

func TestEdgeIDName(t *testing.T) {
	g := newTestGraph(t, shopSchema())
	m2o := g.Type("products").ManyToOnes()[0]
	assert.Equal(t, "category_id", m2o.IDName())
	m2m := g.Type("products").ManyToManys()[0]
	assert.Equal(t, "tag_ids", m2m.IDName())
}
