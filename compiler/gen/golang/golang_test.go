package golang

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemaforge/schemaforge/compiler/gen"
	"github.com/schemaforge/schemaforge/schema"
	"github.com/schemaforge/schemaforge/schema/field"
)

func testGraph(t *testing.T, opts ...gen.Option) *gen.Graph {
	t.Helper()
	cfg, err := gen.NewConfig(append([]gen.Option{gen.WithBasePackage("com.example.shop")}, opts...)...)
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
				{Name: "price", Type: field.TypeDecimal},
				{Name: "notes", Type: field.TypeString, Nullable: true},
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
		},
	}})
	require.NoError(t, err)
	return g
}

func TestMapperCoversTaxonomy(t *testing.T) {
	cfg, err := gen.NewConfig(gen.WithBasePackage("com.example.shop"))
	require.NoError(t, err)
	assert.NoError(t, gen.CheckMapper(NewTarget(cfg)))
}

func TestModulePath(t *testing.T) {
	g := testGraph(t)
	tgt := NewTarget(g.Config)
	assert.Equal(t, "example.com/shop", tgt.modulePath())
}

func TestGenEntity(t *testing.T) {
	g := testGraph(t)
	tgt := NewTarget(g.Config)

	f, err := tgt.GenEntity(g.Type("products"))
	require.NoError(t, err)
	assert.Equal(t, "internal/models/product.go", f.Path)

	src := string(f.Body)
	assert.Contains(t, src, "package models")
	assert.Contains(t, src, "type Product struct {")
	assert.Contains(t, src, "`db:\"sku\" json:\"sku\"`")
	assert.Contains(t, src, "Notes *string")
	assert.Contains(t, src, "CategoryID int64")
	assert.Contains(t, src, "Audit")
	assert.Contains(t, src, `const ProductTable = "products"`)
}

func TestGenDTO(t *testing.T) {
	g := testGraph(t)
	tgt := NewTarget(g.Config)

	f, err := tgt.GenDTO(g.Type("products"))
	require.NoError(t, err)
	assert.Equal(t, "internal/dtos/product.go", f.Path)

	src := string(f.Body)
	assert.Contains(t, src, "type ProductDTO struct {")
	assert.Contains(t, src, "ID *int64")
	assert.Contains(t, src, "CategoryID int64")
	assert.Contains(t, src, "TagIds []int64")
	assert.Contains(t, src, `json:"tagIds"`)
}

func TestGenMapper(t *testing.T) {
	g := testGraph(t)
	tgt := NewTarget(g.Config)

	f, err := tgt.GenMapper(g.Type("products"))
	require.NoError(t, err)
	assert.Equal(t, "internal/mappers/product.go", f.Path)

	src := string(f.Body)
	assert.Contains(t, src, "func ProductToDTO(")
	assert.Contains(t, src, "func ProductFromDTO(")
	assert.Contains(t, src, "if d.ID != nil {")
}

func TestGenRepository(t *testing.T) {
	g := testGraph(t)
	tgt := NewTarget(g.Config)

	f, err := tgt.GenRepository(g.Type("products"))
	require.NoError(t, err)
	assert.Equal(t, "internal/repositories/product.go", f.Path)

	src := string(f.Body)
	assert.Contains(t, src, "type ProductRepository struct {")
	assert.Contains(t, src, "pool *pgxpool.Pool")
	assert.Contains(t, src, "pgx.CollectRows(rows, pgx.RowToAddrOfStructByNameLax[models.Product])")
	assert.Contains(t, src, "RETURNING id")
	assert.Contains(t, src, "updated_at = now()")
	// The ManyToMany projection queries the junction table.
	assert.Contains(t, src, "func (r *ProductRepository) TagIDs(")
	assert.Contains(t, src, "FROM product_tags WHERE product_id = $1 ORDER BY tag_id")
}

func TestGenService(t *testing.T) {
	g := testGraph(t)
	tgt := NewTarget(g.Config)

	f, err := tgt.GenService(g.Type("products"))
	require.NoError(t, err)
	assert.Equal(t, "internal/services/product.go", f.Path)

	src := string(f.Body)
	assert.Contains(t, src, "type ProductService struct {")
	assert.Contains(t, src, "errors.Is(err, pgx.ErrNoRows)")
	assert.Contains(t, src, "ErrNotFound")
}

func TestGenController(t *testing.T) {
	g := testGraph(t)
	tgt := NewTarget(g.Config)

	f, err := tgt.GenController(g.Type("products"))
	require.NoError(t, err)
	assert.Equal(t, "internal/routes/product.go", f.Path)

	src := string(f.Body)
	assert.Contains(t, src, "func RegisterProductRoutes(")
	assert.Contains(t, src, `r.Group("/api/products")`)
	assert.Contains(t, src, "strconv.ParseInt")
}

func TestGenMigration(t *testing.T) {
	g := testGraph(t)
	tgt := NewTarget(g.Config)

	f, err := tgt.GenMigration(g.Type("products"), 3)
	require.NoError(t, err)
	assert.Equal(t, "migrations/0003_create_products.sql", f.Path)

	src := string(f.Body)
	assert.Contains(t, src, "-- +goose Up")
	assert.Contains(t, src, "CREATE TABLE products (")
	assert.Contains(t, src, "-- +goose Down")
	assert.Contains(t, src, "DROP TABLE IF EXISTS products;")
}

func TestGenProject(t *testing.T) {
	g := testGraph(t)
	tgt := NewTarget(g.Config)

	files, err := tgt.GenProject(g)
	require.NoError(t, err)

	byPath := map[string]string{}
	for _, f := range files {
		byPath[f.Path] = string(f.Body)
	}
	require.Contains(t, byPath, "internal/models/base.go")
	require.Contains(t, byPath, "internal/database/database.go")
	require.Contains(t, byPath, "internal/services/errors.go")
	require.Contains(t, byPath, "cmd/server/main.go")
	require.Contains(t, byPath, "go.mod")

	assert.Contains(t, byPath["internal/models/base.go"], "type Audit struct {")
	assert.Contains(t, byPath["internal/database/database.go"], "pgxpool.New(")
	assert.Contains(t, byPath["internal/services/errors.go"], `ErrNotFound = errors.New("not found")`)

	main := byPath["cmd/server/main.go"]
	assert.Contains(t, main, "gin.Default()")
	assert.Contains(t, main, "RegisterProductRoutes(")
	// Junction tables get no routes.
	assert.NotContains(t, main, "RegisterProductTagRoutes(")

	gomod := byPath["go.mod"]
	assert.Contains(t, gomod, "module example.com/shop")
	assert.Contains(t, gomod, "github.com/gin-gonic/gin")
	assert.Contains(t, gomod, "github.com/jackc/pgx/v5")
}

func TestGenProjectUUIDRequiresDep(t *testing.T) {
	uuidGraph := func(t *testing.T) *gen.Graph {
		t.Helper()
		cfg, err := gen.NewConfig(gen.WithBasePackage("example.com/blog"))
		require.NoError(t, err)
		g, err := gen.NewGraph(cfg, &schema.Schema{Tables: []*schema.Table{
			{
				Name: "users",
				Columns: []*schema.Column{
					{Name: "id", Type: field.TypeUUID, PrimaryKey: true},
					{Name: "email", Type: field.TypeString, Unique: true},
				},
			},
			{
				Name: "posts",
				Columns: []*schema.Column{
					{Name: "title", Type: field.TypeString},
					{Name: "user_id", Ref: &schema.Reference{Table: "users"}},
				},
			},
		}})
		require.NoError(t, err)
		return g
	}

	gomod := func(t *testing.T, g *gen.Graph) string {
		t.Helper()
		files, err := NewTarget(g.Config).GenProject(g)
		require.NoError(t, err)
		for _, f := range files {
			if f.Path == "go.mod" {
				return string(f.Body)
			}
		}
		t.Fatal("go.mod not generated")
		return ""
	}

	t.Run("default id type", func(t *testing.T) {
		g := testGraph(t, gen.WithIDType("uuid"))
		assert.Contains(t, gomod(t, g), "github.com/google/uuid")
	})
	// A single uuid primary key, and the foreign keys referencing it,
	// pull in the dependency even when the default id type is integer.
	t.Run("per-table primary key", func(t *testing.T) {
		g := uuidGraph(t)
		assert.Contains(t, gomod(t, g), "github.com/google/uuid")
	})
	t.Run("integer keys only", func(t *testing.T) {
		g := testGraph(t)
		assert.NotContains(t, gomod(t, g), "github.com/google/uuid")
	})
}

func TestGenerateFullTarget(t *testing.T) {
	g := testGraph(t)
	fs, err := gen.Generate(context.Background(), g, NewTarget(g.Config))
	require.NoError(t, err)
	assert.NotNil(t, fs.File("golang/internal/models/product.go"))
	assert.NotNil(t, fs.File("golang/migrations/0004_create_product_tags.sql"))
	assert.NotNil(t, fs.File("golang/go.mod"))
}
