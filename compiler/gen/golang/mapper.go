package golang

import (
	"github.com/dave/jennifer/jen"

	"github.com/schemaforge/schemaforge/compiler/gen"
	"github.com/schemaforge/schemaforge/naming"
)

// GenMapper implements gen.Target: conversion functions between the
// model and its DTO. ManyToMany id collections are filled by the
// service, which has repository access.
func (t *Target) GenMapper(n *gen.Type) (*gen.File, error) {
	f := t.newFile("mappers")
	entity := n.EntityName()
	modelsPkg, dtosPkg := t.pkg("models"), t.pkg("dtos")

	f.Commentf("%sToDTO converts a model to its transport form.", entity)
	f.Func().Id(entity+"ToDTO").
		Params(jen.Id("m").Op("*").Qual(modelsPkg, entity)).
		Op("*").Qual(dtosPkg, entity+"DTO").
		Block(
			jen.Return(jen.Op("&").Qual(dtosPkg, entity+"DTO").Values(jen.DictFunc(func(d jen.Dict) {
				d[jen.Id("ID")] = jen.Op("&").Id("m").Dot("ID")
				for _, fd := range n.Fields {
					d[jen.Id(fd.PascalName())] = jen.Id("m").Dot(fd.PascalName())
				}
				for _, e := range n.ManyToOnes() {
					name := naming.Pascal(e.IDName())
					d[jen.Id(name)] = jen.Id("m").Dot(name)
				}
			}))),
		)

	f.Commentf("%sFromDTO converts a DTO to a model, ignoring the id when absent.", entity)
	f.Func().Id(entity+"FromDTO").
		Params(jen.Id("d").Op("*").Qual(dtosPkg, entity+"DTO")).
		Op("*").Qual(modelsPkg, entity).
		BlockFunc(func(g *jen.Group) {
			g.Id("m").Op(":=").Op("&").Qual(modelsPkg, entity).Values(jen.DictFunc(func(d jen.Dict) {
				for _, fd := range n.Fields {
					d[jen.Id(fd.PascalName())] = jen.Id("d").Dot(fd.PascalName())
				}
				for _, e := range n.ManyToOnes() {
					name := naming.Pascal(e.IDName())
					d[jen.Id(name)] = jen.Id("d").Dot(name)
				}
			}))
			g.If(jen.Id("d").Dot("ID").Op("!=").Nil()).Block(
				jen.Id("m").Dot("ID").Op("=").Op("*").Id("d").Dot("ID"),
			)
			g.Return(jen.Id("m"))
		})

	return t.render(f, layerPath(n, "mappers"))
}
