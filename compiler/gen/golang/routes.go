package golang

import (
	"github.com/dave/jennifer/jen"

	"github.com/schemaforge/schemaforge/compiler/gen"
	"github.com/schemaforge/schemaforge/naming"
	"github.com/schemaforge/schemaforge/schema/field"
)

// GenController implements gen.Target: gin route registration with
// closure handlers.
func (t *Target) GenController(n *gen.Type) (*gen.File, error) {
	f := t.newFile("routes")
	entity := n.EntityName()
	servicesPkg, dtosPkg := t.pkg("services"), t.pkg("dtos")
	base := "/api/" + naming.Kebab(n.PluralName())

	f.Commentf("Register%sRoutes mounts the %s CRUD endpoints.", entity, base)
	f.Func().Id("Register"+entity+"Routes").
		Params(
			jen.Id("r").Qual(ginPkg, "IRouter"),
			jen.Id("service").Op("*").Qual(servicesPkg, entity+"Service"),
		).
		BlockFunc(func(g *jen.Group) {
			g.Id("g").Op(":=").Id("r").Dot("Group").Call(jen.Lit(base))

			g.Id("g").Dot("GET").Call(jen.Lit(""), jen.Func().Params(jen.Id("c").Op("*").Qual(ginPkg, "Context")).Block(
				jen.List(jen.Id("items"), jen.Err()).Op(":=").Id("service").Dot("List").Call(requestCtx()),
				jen.If(jen.Err().Op("!=").Nil()).Block(internalError(), jen.Return()),
				jen.Id("c").Dot("JSON").Call(jen.Qual("net/http", "StatusOK"), jen.Id("items")),
			))

			g.Id("g").Dot("GET").Call(jen.Lit("/:id"), jen.Func().Params(jen.Id("c").Op("*").Qual(ginPkg, "Context")).BlockFunc(func(g *jen.Group) {
				parseID(g, n.ID.Type)
				g.List(jen.Id("item"), jen.Err()).Op(":=").Id("service").Dot("Get").Call(requestCtx(), jen.Id("id"))
				notFoundOrError(g, servicesPkg)
				g.Id("c").Dot("JSON").Call(jen.Qual("net/http", "StatusOK"), jen.Id("item"))
			}))

			g.Id("g").Dot("POST").Call(jen.Lit(""), jen.Func().Params(jen.Id("c").Op("*").Qual(ginPkg, "Context")).Block(
				jen.Var().Id("dto").Qual(dtosPkg, entity+"DTO"),
				jen.If(
					jen.Err().Op(":=").Id("c").Dot("ShouldBindJSON").Call(jen.Op("&").Id("dto")),
					jen.Err().Op("!=").Nil(),
				).Block(badRequest("invalid body"), jen.Return()),
				jen.List(jen.Id("item"), jen.Err()).Op(":=").Id("service").Dot("Create").Call(requestCtx(), jen.Op("&").Id("dto")),
				jen.If(jen.Err().Op("!=").Nil()).Block(internalError(), jen.Return()),
				jen.Id("c").Dot("JSON").Call(jen.Qual("net/http", "StatusCreated"), jen.Id("item")),
			))

			g.Id("g").Dot("PUT").Call(jen.Lit("/:id"), jen.Func().Params(jen.Id("c").Op("*").Qual(ginPkg, "Context")).BlockFunc(func(g *jen.Group) {
				parseID(g, n.ID.Type)
				g.Var().Id("dto").Qual(dtosPkg, entity+"DTO")
				g.If(
					jen.Err().Op(":=").Id("c").Dot("ShouldBindJSON").Call(jen.Op("&").Id("dto")),
					jen.Err().Op("!=").Nil(),
				).Block(badRequest("invalid body"), jen.Return())
				g.List(jen.Id("item"), jen.Err()).Op(":=").Id("service").Dot("Update").Call(requestCtx(), jen.Id("id"), jen.Op("&").Id("dto"))
				notFoundOrError(g, servicesPkg)
				g.Id("c").Dot("JSON").Call(jen.Qual("net/http", "StatusOK"), jen.Id("item"))
			}))

			g.Id("g").Dot("DELETE").Call(jen.Lit("/:id"), jen.Func().Params(jen.Id("c").Op("*").Qual(ginPkg, "Context")).BlockFunc(func(g *jen.Group) {
				parseID(g, n.ID.Type)
				g.If(
					jen.Err().Op(":=").Id("service").Dot("Delete").Call(requestCtx(), jen.Id("id")),
					jen.Err().Op("!=").Nil(),
				).Block(notFoundBody(servicesPkg)...)
				g.Id("c").Dot("Status").Call(jen.Qual("net/http", "StatusNoContent"))
			}))
		})

	return t.render(f, layerPath(n, "routes"))
}

func requestCtx() jen.Code {
	return jen.Id("c").Dot("Request").Dot("Context").Call()
}

func internalError() jen.Code {
	return jen.Id("c").Dot("JSON").Call(
		jen.Qual("net/http", "StatusInternalServerError"),
		jen.Qual(ginPkg, "H").Values(jen.Dict{jen.Lit("error"): jen.Err().Dot("Error").Call()}),
	)
}

func badRequest(msg string) jen.Code {
	return jen.Id("c").Dot("JSON").Call(
		jen.Qual("net/http", "StatusBadRequest"),
		jen.Qual(ginPkg, "H").Values(jen.Dict{jen.Lit("error"): jen.Lit(msg)}),
	)
}

// notFoundBody is the err handling shared by the id-addressed
// handlers: 404 on ErrNotFound, 500 otherwise.
func notFoundBody(servicesPkg string) []jen.Code {
	return []jen.Code{
		jen.If(jen.Qual("errors", "Is").Call(jen.Err(), jen.Qual(servicesPkg, "ErrNotFound"))).Block(
			jen.Id("c").Dot("JSON").Call(
				jen.Qual("net/http", "StatusNotFound"),
				jen.Qual(ginPkg, "H").Values(jen.Dict{jen.Lit("error"): jen.Lit("not found")}),
			),
			jen.Return(),
		),
		internalError(),
		jen.Return(),
	}
}

func notFoundOrError(g *jen.Group, servicesPkg string) {
	g.If(jen.Err().Op("!=").Nil()).Block(notFoundBody(servicesPkg)...)
}

// parseID emits the statements binding the :id path parameter to the
// typed id variable, answering 400 on malformed input.
func parseID(g *jen.Group, t field.Type) {
	switch t {
	case field.TypeString:
		g.Id("id").Op(":=").Id("c").Dot("Param").Call(jen.Lit("id"))
	case field.TypeUUID:
		g.List(jen.Id("id"), jen.Err()).Op(":=").Qual(uuidPkg, "Parse").Call(jen.Id("c").Dot("Param").Call(jen.Lit("id")))
		g.If(jen.Err().Op("!=").Nil()).Block(badRequest("invalid id"), jen.Return())
	case field.TypeInt32:
		g.List(jen.Id("parsed"), jen.Err()).Op(":=").Qual("strconv", "ParseInt").Call(
			jen.Id("c").Dot("Param").Call(jen.Lit("id")), jen.Lit(10), jen.Lit(32),
		)
		g.If(jen.Err().Op("!=").Nil()).Block(badRequest("invalid id"), jen.Return())
		g.Id("id").Op(":=").Int32().Call(jen.Id("parsed"))
	default:
		g.List(jen.Id("id"), jen.Err()).Op(":=").Qual("strconv", "ParseInt").Call(
			jen.Id("c").Dot("Param").Call(jen.Lit("id")), jen.Lit(10), jen.Lit(64),
		)
		g.If(jen.Err().Op("!=").Nil()).Block(badRequest("invalid id"), jen.Return())
	}
}
