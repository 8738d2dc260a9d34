package golang

import (
	"fmt"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/schemaforge/schemaforge/compiler/gen"
	"github.com/schemaforge/schemaforge/naming"
)

// selectColumns returns the full column list of a type's table: the
// primary key, business columns, foreign keys and the audit set.
func (t *Target) selectColumns(n *gen.Type) []string {
	cols := []string{n.ID.Name}
	for _, f := range n.Fields {
		cols = append(cols, f.Name)
	}
	for _, fk := range n.ForeignKeys {
		cols = append(cols, fk.Field.Name)
	}
	for _, c := range t.cfg.AuditColumns {
		cols = append(cols, c.Name)
	}
	return cols
}

// writableColumns returns the columns insert and update statements
// carry: business columns and foreign keys.
func writableColumns(n *gen.Type) []string {
	var cols []string
	for _, f := range n.Fields {
		cols = append(cols, f.Name)
	}
	for _, fk := range n.ForeignKeys {
		cols = append(cols, fk.Field.Name)
	}
	return cols
}

func placeholders(from, n int) []string {
	out := make([]string, 0, n)
	for i := range n {
		out = append(out, fmt.Sprintf("$%d", from+i))
	}
	return out
}

// columnArgs appends the model's writable fields as query arguments.
func columnArgs(g *jen.Group, n *gen.Type) {
	for _, f := range n.Fields {
		g.Id("m").Dot(f.PascalName())
	}
	for _, fk := range n.ForeignKeys {
		g.Id("m").Dot(fk.Field.PascalName())
	}
}

// GenRepository implements gen.Target: pgx data access with explicit
// SQL. Rows scan through pgx's struct mapping on the db tags.
func (t *Target) GenRepository(n *gen.Type) (*gen.File, error) {
	f := t.newFile("repositories")
	entity := n.EntityName()
	repo := entity + "Repository"
	modelsPkg := t.pkg("models")
	model := func() *jen.Statement { return jen.Qual(modelsPkg, entity) }
	selectSQL := fmt.Sprintf("SELECT %s FROM %s", strings.Join(t.selectColumns(n), ", "), n.Name)

	f.Commentf("%s reads and writes %s rows.", repo, n.Name)
	f.Type().Id(repo).Struct(
		jen.Id("pool").Op("*").Qual(pgxPoolPkg, "Pool"),
	)

	f.Commentf("New%s returns a repository on the given pool.", repo)
	f.Func().Id("New"+repo).
		Params(jen.Id("pool").Op("*").Qual(pgxPoolPkg, "Pool")).
		Op("*").Id(repo).
		Block(jen.Return(jen.Op("&").Id(repo).Values(jen.Dict{
			jen.Id("pool"): jen.Id("pool"),
		})))

	// List
	f.Func().Params(jen.Id("r").Op("*").Id(repo)).Id("List").
		Params(jen.Id("ctx").Qual("context", "Context")).
		Params(jen.Index().Op("*").Add(model()), jen.Error()).
		Block(
			jen.List(jen.Id("rows"), jen.Err()).Op(":=").
				Id("r").Dot("pool").Dot("Query").Call(jen.Id("ctx"), jen.Lit(selectSQL+" ORDER BY "+n.ID.Name)),
			jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
			jen.Return(jen.Qual(pgxPkg, "CollectRows").Call(
				jen.Id("rows"),
				jen.Qual(pgxPkg, "RowToAddrOfStructByNameLax").Index(model()),
			)),
		)

	// Get
	f.Func().Params(jen.Id("r").Op("*").Id(repo)).Id("Get").
		Params(jen.Id("ctx").Qual("context", "Context"), jen.Id("id").Add(goType(n.ID.Type))).
		Params(jen.Op("*").Add(model()), jen.Error()).
		Block(
			jen.List(jen.Id("rows"), jen.Err()).Op(":=").
				Id("r").Dot("pool").Dot("Query").Call(
					jen.Id("ctx"),
					jen.Lit(selectSQL+fmt.Sprintf(" WHERE %s = $1", n.ID.Name)),
					jen.Id("id"),
				),
			jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
			jen.Return(jen.Qual(pgxPkg, "CollectOneRow").Call(
				jen.Id("rows"),
				jen.Qual(pgxPkg, "RowToAddrOfStructByNameLax").Index(model()),
			)),
		)

	t.genCreate(f, n, repo, model)
	t.genUpdate(f, n, repo, model)

	// Delete
	f.Func().Params(jen.Id("r").Op("*").Id(repo)).Id("Delete").
		Params(jen.Id("ctx").Qual("context", "Context"), jen.Id("id").Add(goType(n.ID.Type))).
		Error().
		Block(
			jen.List(jen.Id("_"), jen.Err()).Op(":=").
				Id("r").Dot("pool").Dot("Exec").Call(
					jen.Id("ctx"),
					jen.Lit(fmt.Sprintf("DELETE FROM %s WHERE %s = $1", n.Name, n.ID.Name)),
					jen.Id("id"),
				),
			jen.Return(jen.Err()),
		)

	for _, e := range n.ManyToManys() {
		t.genRelatedIDs(f, n, repo, e)
	}

	return t.render(f, layerPath(n, "repositories"))
}

func (t *Target) genCreate(f *jen.File, n *gen.Type, repo string, model func() *jen.Statement) {
	cols := writableColumns(n)
	var sql string
	if len(cols) == 0 {
		sql = fmt.Sprintf("INSERT INTO %s DEFAULT VALUES RETURNING %s", n.Name, n.ID.Name)
	} else {
		sql = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
			n.Name, strings.Join(cols, ", "), strings.Join(placeholders(1, len(cols)), ", "), n.ID.Name)
	}
	f.Comment("Create inserts the model and fills in its generated id.")
	f.Func().Params(jen.Id("r").Op("*").Id(repo)).Id("Create").
		Params(jen.Id("ctx").Qual("context", "Context"), jen.Id("m").Op("*").Add(model())).
		Error().
		Block(
			jen.Return(jen.Id("r").Dot("pool").Dot("QueryRow").CallFunc(func(g *jen.Group) {
				g.Id("ctx")
				g.Lit(sql)
				columnArgs(g, n)
			}).Dot("Scan").Call(jen.Op("&").Id("m").Dot("ID"))),
		)
}

func (t *Target) genUpdate(f *jen.File, n *gen.Type, repo string, model func() *jen.Statement) {
	cols := writableColumns(n)
	sets := make([]string, 0, len(cols)+1)
	for i, c := range cols {
		sets = append(sets, fmt.Sprintf("%s = $%d", c, i+1))
	}
	if t.cfg.AuditColumn("updated_at") != nil {
		sets = append(sets, "updated_at = now()")
	}
	f.Func().Params(jen.Id("r").Op("*").Id(repo)).Id("Update").
		Params(jen.Id("ctx").Qual("context", "Context"), jen.Id("m").Op("*").Add(model())).
		Error().
		BlockFunc(func(g *jen.Group) {
			if len(sets) == 0 {
				g.Return(jen.Nil())
				return
			}
			sql := fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d",
				n.Name, strings.Join(sets, ", "), n.ID.Name, len(cols)+1)
			g.List(jen.Id("_"), jen.Err()).Op(":=").
				Id("r").Dot("pool").Dot("Exec").CallFunc(func(g *jen.Group) {
				g.Id("ctx")
				g.Lit(sql)
				columnArgs(g, n)
				g.Id("m").Dot("ID")
			})
			g.Return(jen.Err())
		})
}

// genRelatedIDs emits the junction-table id projection of a ManyToMany
// edge, e.g. TagIDs on the product repository.
func (t *Target) genRelatedIDs(f *jen.File, n *gen.Type, repo string, e *gen.Edge) {
	method := naming.Pascal(naming.Singular(e.Name)) + "IDs"
	own, ref := e.ThroughColumns[0], e.ThroughColumns[1]
	sql := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1 ORDER BY %s", ref, e.Through, own, ref)
	f.Commentf("%s lists the related %s ids through %s.", method, e.Type.SingularName(), e.Through)
	f.Func().Params(jen.Id("r").Op("*").Id(repo)).Id(method).
		Params(jen.Id("ctx").Qual("context", "Context"), jen.Id("id").Add(goType(n.ID.Type))).
		Params(jen.Index().Add(goType(e.Type.ID.Type)), jen.Error()).
		Block(
			jen.List(jen.Id("rows"), jen.Err()).Op(":=").
				Id("r").Dot("pool").Dot("Query").Call(jen.Id("ctx"), jen.Lit(sql), jen.Id("id")),
			jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
			jen.Return(jen.Qual(pgxPkg, "CollectRows").Call(
				jen.Id("rows"),
				jen.Qual(pgxPkg, "RowTo").Index(goType(e.Type.ID.Type)),
			)),
		)
}
