package gen

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemaforge/schemaforge/schema/field"
)

// stubMapper covers the full taxonomy with placeholder names.
type stubMapper struct{}

func (stubMapper) Scalar(t field.Type) string                  { return "t_" + t.String() }
func (stubMapper) Nullable(native string, _ field.Type) string { return native + "?" }
func (stubMapper) DefaultValue(f *Field) string                { return "zero" }
func (stubMapper) Collection(element string) string            { return "[" + element + "]" }
func (stubMapper) PrimaryKey(t field.Type) string              { return "pk_" + t.String() }

// stubTarget emits one line per artifact so orchestration behavior can
// be asserted without a real language generator.
type stubTarget struct {
	name string
}

func (s *stubTarget) Name() string       { return s.name }
func (s *stubTarget) Mapper() TypeMapper { return stubMapper{} }

func (s *stubTarget) file(kind string, n *Type) (*File, error) {
	return &File{
		Path: fmt.Sprintf("%s/%s.txt", kind, n.SingularName()),
		Body: []byte(fmt.Sprintf("%s %s\n", kind, n.Name)),
	}, nil
}

func (s *stubTarget) GenEntity(n *Type) (*File, error)     { return s.file("entity", n) }
func (s *stubTarget) GenDTO(n *Type) (*File, error)        { return s.file("dto", n) }
func (s *stubTarget) GenMapper(n *Type) (*File, error)     { return s.file("mapper", n) }
func (s *stubTarget) GenRepository(n *Type) (*File, error) { return s.file("repository", n) }
func (s *stubTarget) GenService(n *Type) (*File, error)    { return s.file("service", n) }
func (s *stubTarget) GenController(n *Type) (*File, error) { return s.file("controller", n) }
func (s *stubTarget) GenMigration(n *Type, seq int) (*File, error) {
	return &File{
		Path: fmt.Sprintf("migrations/%04d_%s.txt", seq, n.Name),
		Body: []byte(fmt.Sprintf("migration %d %s\n", seq, n.Name)),
	}, nil
}

// projectTarget adds the optional shared-file capability.
type projectTarget struct {
	stubTarget
}

func (p *projectTarget) GenProject(g *Graph) ([]*File, error) {
	return []*File{{Path: "base.txt", Body: []byte("base\n")}}, nil
}

func TestGenerate(t *testing.T) {
	g := newTestGraph(t, shopSchema())
	fs, err := Generate(context.Background(), g, &stubTarget{name: "stub"})
	require.NoError(t, err)

	// Three entity tables x seven artifacts + one junction migration.
	assert.Equal(t, 3*7+1, fs.Len())

	// Paths carry the target prefix.
	require.NotNil(t, fs.File("stub/entity/product.txt"))
	assert.Equal(t, "entity products\n", string(fs.File("stub/entity/product.txt").Body))

	// The junction table only receives a migration.
	assert.Nil(t, fs.File("stub/entity/product_tag.txt"))
	assert.NotNil(t, fs.File("stub/migrations/0004_product_tags.txt"))
}

func TestGenerateMigrationSequence(t *testing.T) {
	g := newTestGraph(t, shopSchema())
	fs, err := Generate(context.Background(), g, &stubTarget{name: "stub"})
	require.NoError(t, err)

	assert.NotNil(t, fs.File("stub/migrations/0001_categories.txt"))
	assert.NotNil(t, fs.File("stub/migrations/0002_tags.txt"))
	assert.NotNil(t, fs.File("stub/migrations/0003_products.txt"))
	assert.NotNil(t, fs.File("stub/migrations/0004_product_tags.txt"))
}

func TestGenerateMultipleTargets(t *testing.T) {
	g := newTestGraph(t, shopSchema())
	fs, err := Generate(context.Background(), g, &stubTarget{name: "one"}, &stubTarget{name: "two"})
	require.NoError(t, err)
	assert.Equal(t, 2*(3*7+1), fs.Len())
	assert.NotNil(t, fs.File("one/entity/product.txt"))
	assert.NotNil(t, fs.File("two/entity/product.txt"))
}

func TestGenerateProjectFiles(t *testing.T) {
	g := newTestGraph(t, shopSchema())
	tgt := &projectTarget{stubTarget{name: "stub"}}
	fs, err := Generate(context.Background(), g, tgt)
	require.NoError(t, err)
	require.NotNil(t, fs.File("stub/base.txt"))
	assert.Equal(t, "base\n", string(fs.File("stub/base.txt").Body))
}

func TestGenerateDeterministic(t *testing.T) {
	g := newTestGraph(t, shopSchema())
	first, err := Generate(context.Background(), g, &stubTarget{name: "stub"})
	require.NoError(t, err)
	second, err := Generate(context.Background(), g, &stubTarget{name: "stub"})
	require.NoError(t, err)

	require.Equal(t, first.Len(), second.Len())
	a, b := first.Files(), second.Files()
	for i := range a {
		assert.Equal(t, a[i].Path, b[i].Path)
		assert.Equal(t, a[i].Body, b[i].Body)
	}
}

func TestGenerateNoTargets(t *testing.T) {
	g := newTestGraph(t, shopSchema())
	_, err := Generate(context.Background(), g)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingConfig)
}

func TestGenerateDuplicateTarget(t *testing.T) {
	g := newTestGraph(t, shopSchema())
	_, err := Generate(context.Background(), g, &stubTarget{name: "stub"}, &stubTarget{name: "stub"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingConfig)
}

// brokenMapper misses the decimal type.
type brokenMapper struct{ stubMapper }

func (brokenMapper) Scalar(t field.Type) string {
	if t == field.TypeDecimal {
		return ""
	}
	return "t_" + t.String()
}

type brokenTarget struct{ stubTarget }

func (b *brokenTarget) Mapper() TypeMapper { return brokenMapper{} }

func TestGenerateUnmappedType(t *testing.T) {
	g := newTestGraph(t, shopSchema())
	_, err := Generate(context.Background(), g, &brokenTarget{stubTarget{name: "broken"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnmappedType)
}

// collidingTarget assigns every artifact the same path.
type collidingTarget struct{ stubTarget }

func (c *collidingTarget) file(kind string, n *Type) (*File, error) {
	return &File{Path: "same.txt", Body: []byte(kind)}, nil
}

func (c *collidingTarget) GenEntity(n *Type) (*File, error) { return c.file("entity", n) }
func (c *collidingTarget) GenDTO(n *Type) (*File, error)    { return c.file("dto", n) }

func TestGeneratePathCollision(t *testing.T) {
	g := newTestGraph(t, shopSchema())
	_, err := Generate(context.Background(), g, &collidingTarget{stubTarget{name: "stub"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPathCollision)
}

func TestGenerateCanceledContext(t *testing.T) {
	g := newTestGraph(t, shopSchema())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Generate(ctx, g, &stubTarget{name: "stub"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCheckMapper(t *testing.T) {
	require.NoError(t, CheckMapper(&stubTarget{name: "stub"}))
	err := CheckMapper(&brokenTarget{stubTarget{name: "broken"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnmappedType)
}

func TestFileSetAdd(t *testing.T) {
	fs := NewFileSet()
	require.NoError(t, fs.Add(&File{Path: "a.txt", Body: []byte("a")}))
	require.Error(t, fs.Add(&File{Path: "a.txt", Body: []byte("b")}))
	require.Error(t, fs.Add(&File{Path: ""}))
	require.Error(t, fs.Add(nil))
	assert.Equal(t, 1, fs.Len())
	assert.Equal(t, "a", string(fs.File("a.txt").Body))
	assert.Nil(t, fs.File("missing.txt"))
}

func TestFileSetFilesSorted(t *testing.T) {
	fs := NewFileSet()
	for _, p := range []string{"c.txt", "a.txt", "b.txt"} {
		require.NoError(t, fs.Add(&File{Path: p}))
	}
	files := fs.Files()
	require.Len(t, files, 3)
	assert.Equal(t, "a.txt", files[0].Path)
	assert.Equal(t, "b.txt", files[1].Path)
	assert.Equal(t, "c.txt", files[2].Path)
}
