// Package golang generates the Go/gin target: plain struct models,
// DTOs, mappers, pgx repositories, services, gin routes and goose
// migrations. Source files are built with Jennifer and passed through
// goimports before they are emitted.
package golang

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/dave/jennifer/jen"
	"golang.org/x/tools/imports"

	"github.com/schemaforge/schemaforge/compiler/gen"
	"github.com/schemaforge/schemaforge/compiler/gen/internal/pgddl"
	"github.com/schemaforge/schemaforge/naming"
)

// Import paths of the generated scaffold's dependencies.
const (
	ginPkg     = "github.com/gin-gonic/gin"
	pgxPkg     = "github.com/jackc/pgx/v5"
	pgxPoolPkg = "github.com/jackc/pgx/v5/pgxpool"
)

// Target implements gen.Target for the Go/gin ecosystem.
type Target struct {
	cfg    *gen.Config
	mapper typeMapper
}

// NewTarget returns the Go target for the given configuration.
func NewTarget(cfg *gen.Config) *Target {
	return &Target{cfg: cfg}
}

// Name implements gen.Target.
func (*Target) Name() string { return "golang" }

// Mapper implements gen.Target.
func (t *Target) Mapper() gen.TypeMapper { return t.mapper }

// modulePath derives the Go module path from the reverse-domain base
// package: "com.example.shop" becomes "example.com/shop".
func (t *Target) modulePath() string {
	segs := strings.Split(t.cfg.BasePackage, ".")
	if len(segs) < 2 {
		return segs[0]
	}
	path := segs[1] + "." + segs[0]
	if len(segs) > 2 {
		path += "/" + strings.Join(segs[2:], "/")
	}
	return path
}

func (t *Target) pkg(layer string) string {
	return t.modulePath() + "/internal/" + layer
}

// newFile creates a Jennifer file with the configured header comment.
func (t *Target) newFile(pkg string) *jen.File {
	f := jen.NewFile(pkg)
	if t.cfg.Header != "" {
		f.HeaderComment(t.cfg.Header)
	}
	return f
}

// render writes a Jennifer file and runs it through goimports, which
// prunes unused imports and fixes grouping.
func (t *Target) render(f *jen.File, path string) (*gen.File, error) {
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, err
	}
	body, err := imports.Process(path, buf.Bytes(), nil)
	if err != nil {
		return nil, fmt.Errorf("format %s: %w", path, err)
	}
	return &gen.File{Path: path, Body: body}, nil
}

func layerPath(n *gen.Type, layer string) string {
	return "internal/" + layer + "/" + n.SingularName() + ".go"
}

// GenEntity implements gen.Target: the model struct.
func (t *Target) GenEntity(n *gen.Type) (*gen.File, error) {
	f := t.newFile("models")
	entity := n.EntityName()
	f.Commentf("%s is the model of the %s table.", entity, n.Name)
	f.Type().Id(entity).StructFunc(func(g *jen.Group) {
		g.Id("ID").Add(goType(n.ID.Type)).Tag(tags(n.ID.Name))
		for _, fd := range n.Fields {
			g.Id(fd.PascalName()).Add(fieldType(fd.Type, fd.Nullable)).Tag(tags(fd.Name))
		}
		for _, fk := range n.ForeignKeys {
			fd := fk.Field
			g.Id(fd.PascalName()).Add(fieldType(fk.RefTable.ID.Type, fd.Nullable)).Tag(tags(fd.Name))
		}
		g.Id("Audit")
	})
	f.Commentf("%sTable is the database table backing %s.", entity, entity)
	f.Const().Id(entity + "Table").Op("=").Lit(n.Name)
	return t.render(f, layerPath(n, "models"))
}

func tags(column string) map[string]string {
	return map[string]string{"db": column, "json": naming.Camel(column)}
}

// GenDTO implements gen.Target. Relationships surface as foreign-key
// ids; the id field is a pointer so create requests may omit it.
func (t *Target) GenDTO(n *gen.Type) (*gen.File, error) {
	f := t.newFile("dtos")
	entity := n.EntityName()
	f.Commentf("%sDTO is the transport representation of %s.", entity, entity)
	f.Type().Id(entity + "DTO").StructFunc(func(g *jen.Group) {
		g.Id("ID").Op("*").Add(goType(n.ID.Type)).Tag(jsonTag(n.ID.Name))
		for _, fd := range n.Fields {
			g.Id(fd.PascalName()).Add(fieldType(fd.Type, fd.Nullable)).Tag(jsonTag(fd.Name))
		}
		for _, e := range n.ManyToOnes() {
			fk := n.ForeignKey(e.Column)
			g.Id(naming.Pascal(e.IDName())).Add(fieldType(e.Type.ID.Type, fk != nil && fk.Field.Nullable)).Tag(jsonTag(e.IDName()))
		}
		for _, e := range n.ManyToManys() {
			g.Id(naming.Pascal(e.IDName())).Index().Add(goType(e.Type.ID.Type)).Tag(jsonTag(e.IDName()))
		}
	})
	return t.render(f, layerPath(n, "dtos"))
}

func jsonTag(column string) map[string]string {
	return map[string]string{"json": naming.Camel(column)}
}

// GenMigration implements gen.Target: a goose migration running the
// shared DDL.
func (t *Target) GenMigration(n *gen.Type, seq int) (*gen.File, error) {
	var b strings.Builder
	if t.cfg.Header != "" {
		fmt.Fprintf(&b, "-- %s\n", t.cfg.Header)
	}
	b.WriteString("-- +goose Up\n")
	b.WriteString(pgddl.CreateTable(n))
	b.WriteString("\n-- +goose Down\n")
	b.WriteString(pgddl.DropTable(n))
	path := fmt.Sprintf("migrations/%04d_create_%s.sql", seq, n.Name)
	return &gen.File{Path: path, Body: []byte(b.String())}, nil
}
