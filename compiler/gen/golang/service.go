package golang

import (
	"github.com/dave/jennifer/jen"

	"github.com/schemaforge/schemaforge/compiler/gen"
	"github.com/schemaforge/schemaforge/naming"
)

// GenService implements gen.Target: CRUD operations over the
// repository, translating pgx.ErrNoRows to ErrNotFound and filling in
// ManyToMany id collections.
func (t *Target) GenService(n *gen.Type) (*gen.File, error) {
	f := t.newFile("services")
	entity := n.EntityName()
	service := entity + "Service"
	repo := entity + "Repository"
	reposPkg, dtosPkg, mappersPkg, modelsPkg := t.pkg("repositories"), t.pkg("dtos"), t.pkg("mappers"), t.pkg("models")
	dto := func() *jen.Statement { return jen.Qual(dtosPkg, entity+"DTO") }
	idType := goType(n.ID.Type)

	f.Commentf("%s implements the %s business operations.", service, n.SingularName())
	f.Type().Id(service).Struct(
		jen.Id("repo").Op("*").Qual(reposPkg, repo),
	)

	f.Commentf("New%s returns a service over the given repository.", service)
	f.Func().Id("New"+service).
		Params(jen.Id("repo").Op("*").Qual(reposPkg, repo)).
		Op("*").Id(service).
		Block(jen.Return(jen.Op("&").Id(service).Values(jen.Dict{
			jen.Id("repo"): jen.Id("repo"),
		})))

	// List
	f.Func().Params(jen.Id("s").Op("*").Id(service)).Id("List").
		Params(jen.Id("ctx").Qual("context", "Context")).
		Params(jen.Index().Op("*").Add(dto()), jen.Error()).
		Block(
			jen.List(jen.Id("items"), jen.Err()).Op(":=").Id("s").Dot("repo").Dot("List").Call(jen.Id("ctx")),
			jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
			jen.Id("out").Op(":=").Make(jen.Index().Op("*").Add(dto()), jen.Lit(0), jen.Len(jen.Id("items"))),
			jen.For(jen.List(jen.Id("_"), jen.Id("m")).Op(":=").Range().Id("items")).Block(
				jen.List(jen.Id("d"), jen.Err()).Op(":=").Id("s").Dot("dto").Call(jen.Id("ctx"), jen.Id("m")),
				jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
				jen.Id("out").Op("=").Append(jen.Id("out"), jen.Id("d")),
			),
			jen.Return(jen.Id("out"), jen.Nil()),
		)

	// Get
	f.Func().Params(jen.Id("s").Op("*").Id(service)).Id("Get").
		Params(jen.Id("ctx").Qual("context", "Context"), jen.Id("id").Add(idType)).
		Params(jen.Op("*").Add(dto()), jen.Error()).
		Block(
			jen.List(jen.Id("m"), jen.Err()).Op(":=").Id("s").Dot("repo").Dot("Get").Call(jen.Id("ctx"), jen.Id("id")),
			jen.If(jen.Qual("errors", "Is").Call(jen.Err(), jen.Qual(pgxPkg, "ErrNoRows"))).Block(
				jen.Return(jen.Nil(), jen.Id("ErrNotFound")),
			),
			jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
			jen.Return(jen.Id("s").Dot("dto").Call(jen.Id("ctx"), jen.Id("m"))),
		)

	// Create
	f.Func().Params(jen.Id("s").Op("*").Id(service)).Id("Create").
		Params(jen.Id("ctx").Qual("context", "Context"), jen.Id("d").Op("*").Add(dto())).
		Params(jen.Op("*").Add(dto()), jen.Error()).
		Block(
			jen.Id("m").Op(":=").Qual(mappersPkg, entity+"FromDTO").Call(jen.Id("d")),
			jen.If(
				jen.Err().Op(":=").Id("s").Dot("repo").Dot("Create").Call(jen.Id("ctx"), jen.Id("m")),
				jen.Err().Op("!=").Nil(),
			).Block(jen.Return(jen.Nil(), jen.Err())),
			jen.Return(jen.Id("s").Dot("dto").Call(jen.Id("ctx"), jen.Id("m"))),
		)

	// Update
	f.Func().Params(jen.Id("s").Op("*").Id(service)).Id("Update").
		Params(
			jen.Id("ctx").Qual("context", "Context"),
			jen.Id("id").Add(goType(n.ID.Type)),
			jen.Id("d").Op("*").Add(dto()),
		).
		Params(jen.Op("*").Add(dto()), jen.Error()).
		Block(
			jen.If(
				jen.List(jen.Id("_"), jen.Err()).Op(":=").Id("s").Dot("repo").Dot("Get").Call(jen.Id("ctx"), jen.Id("id")),
				jen.Err().Op("!=").Nil(),
			).Block(
				jen.If(jen.Qual("errors", "Is").Call(jen.Err(), jen.Qual(pgxPkg, "ErrNoRows"))).Block(
					jen.Return(jen.Nil(), jen.Id("ErrNotFound")),
				),
				jen.Return(jen.Nil(), jen.Err()),
			),
			jen.Id("m").Op(":=").Qual(mappersPkg, entity+"FromDTO").Call(jen.Id("d")),
			jen.Id("m").Dot("ID").Op("=").Id("id"),
			jen.If(
				jen.Err().Op(":=").Id("s").Dot("repo").Dot("Update").Call(jen.Id("ctx"), jen.Id("m")),
				jen.Err().Op("!=").Nil(),
			).Block(jen.Return(jen.Nil(), jen.Err())),
			jen.Return(jen.Id("s").Dot("dto").Call(jen.Id("ctx"), jen.Id("m"))),
		)

	// Delete
	f.Func().Params(jen.Id("s").Op("*").Id(service)).Id("Delete").
		Params(jen.Id("ctx").Qual("context", "Context"), jen.Id("id").Add(goType(n.ID.Type))).
		Error().
		Block(
			jen.If(
				jen.List(jen.Id("_"), jen.Err()).Op(":=").Id("s").Dot("repo").Dot("Get").Call(jen.Id("ctx"), jen.Id("id")),
				jen.Err().Op("!=").Nil(),
			).Block(
				jen.If(jen.Qual("errors", "Is").Call(jen.Err(), jen.Qual(pgxPkg, "ErrNoRows"))).Block(
					jen.Return(jen.Id("ErrNotFound")),
				),
				jen.Return(jen.Err()),
			),
			jen.Return(jen.Id("s").Dot("repo").Dot("Delete").Call(jen.Id("ctx"), jen.Id("id"))),
		)

	// dto converts a model and loads the relation id collections.
	f.Func().Params(jen.Id("s").Op("*").Id(service)).Id("dto").
		Params(jen.Id("ctx").Qual("context", "Context"), jen.Id("m").Op("*").Qual(modelsPkg, entity)).
		Params(jen.Op("*").Add(dto()), jen.Error()).
		BlockFunc(func(g *jen.Group) {
			g.Id("d").Op(":=").Qual(mappersPkg, entity+"ToDTO").Call(jen.Id("m"))
			for _, e := range n.ManyToManys() {
				method := naming.Pascal(naming.Singular(e.Name)) + "IDs"
				field := naming.Pascal(e.IDName())
				ids := naming.Camel(e.IDName())
				g.List(jen.Id(ids), jen.Err()).Op(":=").Id("s").Dot("repo").Dot(method).Call(jen.Id("ctx"), jen.Id("m").Dot("ID"))
				g.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err()))
				g.Id("d").Dot(field).Op("=").Id(ids)
			}
			g.Return(jen.Id("d"), jen.Nil())
		})

	return t.render(f, layerPath(n, "services"))
}
