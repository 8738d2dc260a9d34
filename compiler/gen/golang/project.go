package golang

import (
	"fmt"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/schemaforge/schemaforge/compiler/gen"
	"github.com/schemaforge/schemaforge/naming"
	"github.com/schemaforge/schemaforge/schema/field"
)

// GenProject implements gen.ProjectGenerator: the shared audit struct,
// pool wiring, the service sentinel error, the server entrypoint and
// the scaffold's module file.
func (t *Target) GenProject(g *gen.Graph) ([]*gen.File, error) {
	var files []*gen.File
	for _, build := range []func(*gen.Graph) (*gen.File, error){
		t.genAudit,
		t.genDatabase,
		t.genServiceErrors,
		t.genMain,
		t.genGoMod,
	} {
		f, err := build(g)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

// genAudit emits the audit column set every model embeds.
func (t *Target) genAudit(*gen.Graph) (*gen.File, error) {
	f := t.newFile("models")
	f.Comment("Audit holds the columns shared by every table.")
	f.Type().Id("Audit").StructFunc(func(g *jen.Group) {
		for _, c := range t.cfg.AuditColumns {
			g.Id(naming.Pascal(c.Name)).Add(fieldType(c.Type, c.Nullable)).Tag(tags(c.Name))
		}
	})
	return t.render(f, "internal/models/base.go")
}

func (t *Target) genDatabase(*gen.Graph) (*gen.File, error) {
	f := t.newFile("database")
	f.Comment("Connect opens a pgx pool on the given URL and verifies it.")
	f.Func().Id("Connect").
		Params(jen.Id("ctx").Qual("context", "Context"), jen.Id("url").String()).
		Params(jen.Op("*").Qual(pgxPoolPkg, "Pool"), jen.Error()).
		Block(
			jen.List(jen.Id("pool"), jen.Err()).Op(":=").Qual(pgxPoolPkg, "New").Call(jen.Id("ctx"), jen.Id("url")),
			jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
			jen.If(
				jen.Err().Op(":=").Id("pool").Dot("Ping").Call(jen.Id("ctx")),
				jen.Err().Op("!=").Nil(),
			).Block(
				jen.Id("pool").Dot("Close").Call(),
				jen.Return(jen.Nil(), jen.Err()),
			),
			jen.Return(jen.Id("pool"), jen.Nil()),
		)
	return t.render(f, "internal/database/database.go")
}

func (t *Target) genServiceErrors(*gen.Graph) (*gen.File, error) {
	f := t.newFile("services")
	f.Comment("ErrNotFound reports that the addressed entity does not exist.")
	f.Var().Id("ErrNotFound").Op("=").Qual("errors", "New").Call(jen.Lit("not found"))
	return t.render(f, "internal/services/errors.go")
}

func (t *Target) genMain(g *gen.Graph) (*gen.File, error) {
	f := t.newFile("main")
	dbPkg := t.pkg("database")
	reposPkg, servicesPkg, routesPkg := t.pkg("repositories"), t.pkg("services"), t.pkg("routes")
	f.Func().Id("main").Params().BlockFunc(func(b *jen.Group) {
		b.Id("ctx").Op(":=").Qual("context", "Background").Call()
		b.List(jen.Id("pool"), jen.Err()).Op(":=").Qual(dbPkg, "Connect").Call(
			jen.Id("ctx"), jen.Qual("os", "Getenv").Call(jen.Lit("DATABASE_URL")),
		)
		b.If(jen.Err().Op("!=").Nil()).Block(jen.Qual("log", "Fatal").Call(jen.Err()))
		b.Defer().Id("pool").Dot("Close").Call()
		b.Id("r").Op(":=").Qual(ginPkg, "Default").Call()
		for _, n := range g.Nodes {
			if n.JoinTable {
				continue
			}
			entity := n.EntityName()
			b.Qual(routesPkg, "Register"+entity+"Routes").Call(
				jen.Id("r"),
				jen.Qual(servicesPkg, "New"+entity+"Service").Call(
					jen.Qual(reposPkg, "New"+entity+"Repository").Call(jen.Id("pool")),
				),
			)
		}
		b.If(
			jen.Err().Op(":=").Id("r").Dot("Run").Call(),
			jen.Err().Op("!=").Nil(),
		).Block(jen.Qual("log", "Fatal").Call(jen.Err()))
	})
	return t.render(f, "cmd/server/main.go")
}

// genGoMod emits the scaffold's module file; versions follow the
// libraries the generated code imports.
func (t *Target) genGoMod(g *gen.Graph) (*gen.File, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "module %s\n\ngo 1.24\n\nrequire (\n", t.modulePath())
	deps := []string{
		ginPkg + " v1.10.1",
		pgxPkg + " v5.7.5",
	}
	if usesUUID(t.cfg, g) {
		deps = append(deps, uuidPkg+" v1.6.0")
	}
	for _, d := range deps {
		fmt.Fprintf(&b, "\t%s\n", d)
	}
	b.WriteString(")\n")
	return &gen.File{Path: "go.mod", Body: []byte(b.String())}, nil
}

// usesUUID reports whether any generated type surfaces a uuid value:
// a business field, a primary key, a foreign key referencing a uuid
// key, or an audit column.
func usesUUID(cfg *gen.Config, g *gen.Graph) bool {
	if cfg.IDType == field.TypeUUID {
		return true
	}
	for _, c := range cfg.AuditColumns {
		if c.Type == field.TypeUUID {
			return true
		}
	}
	for _, n := range g.Nodes {
		if n.ID.Type == field.TypeUUID {
			return true
		}
		for _, f := range n.Fields {
			if f.Type == field.TypeUUID {
				return true
			}
		}
		for _, fk := range n.ForeignKeys {
			if fk.RefTable.ID.Type == field.TypeUUID {
				return true
			}
		}
	}
	return false
}
