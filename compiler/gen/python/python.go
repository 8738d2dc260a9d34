// Package python generates the FastAPI target: SQLAlchemy models,
// Pydantic schemas, mappers, session repositories, services, routers
// and Alembic migrations.
package python

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/schemaforge/schemaforge/compiler/gen"
	"github.com/schemaforge/schemaforge/naming"
	"github.com/schemaforge/schemaforge/schema/field"
)

// Target implements gen.Target for the Python/FastAPI ecosystem.
type Target struct {
	cfg    *gen.Config
	mapper typeMapper
}

// NewTarget returns the Python target for the given configuration.
func NewTarget(cfg *gen.Config) *Target {
	return &Target{cfg: cfg}
}

// Name implements gen.Target.
func (*Target) Name() string { return "python" }

// Mapper implements gen.Target.
func (t *Target) Mapper() gen.TypeMapper { return t.mapper }

func (t *Target) render(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if t.cfg.Header != "" {
		fmt.Fprintf(&buf, "# %s\n", t.cfg.Header)
	}
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func layerPath(layer string, n *gen.Type) string {
	return "app/" + layer + "/" + n.SingularName() + ".py"
}

func (t *Target) idType(n *gen.Type) string {
	return t.mapper.PrimaryKey(n.ID.Type)
}

// idImport returns the import line the primary-key annotation needs,
// or "".
func (t *Target) idImport(n *gen.Type) string {
	return stdLines(newStdSet(pyImport(n.ID.Type)))
}

// idArgs builds the mapped_column arguments of the model's primary-key
// attribute. The attribute is always named id; an overridden primary
// key passes its column name positionally.
func (t *Target) idArgs(n *gen.Type, std stdSet, sa map[string]struct{}) string {
	var parts []string
	if n.ID.Name != "id" {
		parts = append(parts, fmt.Sprintf("%q", n.ID.Name))
	}
	switch {
	case n.ID.Type == field.TypeUUID:
		std.add("uuid:uuid4")
		parts = append(parts, "primary_key=True", "default=uuid4")
	case n.ID.Type.Integer():
		parts = append(parts, "primary_key=True", "autoincrement=True")
	default:
		sa[saImport(n.ID.Type)] = struct{}{}
		parts = append(parts, saType(n.ID.Type))
		parts = append(parts, "primary_key=True")
	}
	return strings.Join(parts, ", ")
}

type fieldCtx struct {
	Name       string
	PyType     string
	SAType     string
	NullablePy string
	Nullable   bool
	Unique     bool
	Default    string
}

type fkCtx struct {
	Name       string
	PyType     string
	RefTable   string
	RefColumn  string
	NullablePy string
}

type edgeCtx struct {
	Name          string
	Entity        string
	OwnEntity     string
	Column        string
	Secondary     string
	BackPopulates string
	IdField       string
}

func pyBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

func (t *Target) fields(n *gen.Type) []fieldCtx {
	out := make([]fieldCtx, 0, len(n.Fields))
	for _, f := range n.Fields {
		py := t.mapper.Scalar(f.Type)
		if f.Nullable {
			py = t.mapper.Nullable(py, f.Type)
		}
		fc := fieldCtx{
			Name:       f.Name,
			PyType:     py,
			SAType:     saType(f.Type),
			NullablePy: pyBool(f.Nullable),
			Nullable:   f.Nullable,
			Unique:     f.Unique,
		}
		if f.HasDefault() {
			fc.Default = t.mapper.DefaultValue(f)
		}
		out = append(out, fc)
	}
	return out
}

// edgeColumn returns the foreign-key column realizing an edge,
// following the inverse for OneToMany edges.
func edgeColumn(e *gen.Edge) string {
	if e.Column != "" {
		return e.Column
	}
	if e.Ref != nil {
		return e.Ref.Column
	}
	return ""
}

// GenEntity implements gen.Target: the SQLAlchemy declarative model.
func (t *Target) GenEntity(n *gen.Type) (*gen.File, error) {
	std := newStdSet()
	sa := map[string]struct{}{}
	for _, f := range n.Fields {
		std.add(pyImport(f.Type))
		sa[saImport(f.Type)] = struct{}{}
	}
	ctx := struct {
		Entity       string
		Table        string
		StdImports   []string
		SAImports    string
		HasRelations bool
		IDPyType     string
		IDArgs       string
		Fields       []fieldCtx
		ForeignKeys  []fkCtx
		ManyToOnes   []edgeCtx
		OneToManys   []edgeCtx
		ManyToManys  []edgeCtx
	}{
		Entity:   n.EntityName(),
		Table:    n.Name,
		IDPyType: t.idType(n),
		IDArgs:   t.idArgs(n, std, sa),
		Fields:   t.fields(n),
	}
	std.add(pyImport(n.ID.Type))
	for _, fk := range n.ForeignKeys {
		f := fk.Field
		py := t.mapper.PrimaryKey(fk.RefTable.ID.Type)
		if f.Nullable {
			py = t.mapper.Nullable(py, f.Type)
		}
		std.add(pyImport(fk.RefTable.ID.Type))
		sa["ForeignKey"] = struct{}{}
		ctx.ForeignKeys = append(ctx.ForeignKeys, fkCtx{
			Name:       f.Name,
			PyType:     py,
			RefTable:   fk.RefTable.Name,
			RefColumn:  fk.RefColumn,
			NullablePy: pyBool(f.Nullable),
		})
	}
	for _, e := range n.ManyToOnes() {
		ctx.ManyToOnes = append(ctx.ManyToOnes, edgeCtx{
			Name:          e.Name,
			Entity:        e.Type.EntityName(),
			OwnEntity:     n.EntityName(),
			Column:        e.Column,
			BackPopulates: e.Ref.Name,
		})
	}
	for _, e := range n.OneToManys() {
		ctx.OneToManys = append(ctx.OneToManys, edgeCtx{
			Name:          e.Name,
			Entity:        e.Type.EntityName(),
			Column:        edgeColumn(e),
			BackPopulates: e.Ref.Name,
		})
	}
	for _, e := range n.ManyToManys() {
		ctx.ManyToManys = append(ctx.ManyToManys, edgeCtx{
			Name:          e.Name,
			Entity:        e.Type.EntityName(),
			Secondary:     e.Through,
			BackPopulates: e.Ref.Name,
		})
	}
	ctx.HasRelations = len(n.Edges) > 0
	ctx.StdImports = std.lines()
	ctx.SAImports = joinSorted(sa)
	body, err := t.render("model", ctx)
	if err != nil {
		return nil, err
	}
	return &gen.File{Path: layerPath("models", n), Body: body}, nil
}

type relationIDCtx struct {
	Name    string
	PyType  string
	Default string
}

// GenDTO implements gen.Target: the Pydantic schema. Relationships
// surface as foreign-key-id fields rather than nested objects.
func (t *Target) GenDTO(n *gen.Type) (*gen.File, error) {
	std := newStdSet(pyImport(n.ID.Type))
	type schemaFieldCtx struct {
		Name    string
		PyType  string
		Default string
	}
	ctx := struct {
		Entity      string
		StdImports  []string
		IDType      string
		Fields      []schemaFieldCtx
		RelationIds []relationIDCtx
	}{
		Entity: n.EntityName(),
		IDType: t.idType(n),
	}
	for _, f := range n.Fields {
		std.add(pyImport(f.Type))
		fc := schemaFieldCtx{Name: f.Name, PyType: t.mapper.Scalar(f.Type)}
		switch {
		case f.Nullable:
			fc.PyType = t.mapper.Nullable(fc.PyType, f.Type)
			fc.Default = "None"
		case f.HasDefault():
			fc.Default = t.mapper.DefaultValue(f)
		}
		ctx.Fields = append(ctx.Fields, fc)
	}
	for _, e := range n.ManyToOnes() {
		pk := t.mapper.PrimaryKey(e.Type.ID.Type)
		std.add(pyImport(e.Type.ID.Type))
		rc := relationIDCtx{Name: e.IDName(), PyType: pk}
		if fk := n.ForeignKey(e.Column); fk != nil && fk.Field.Nullable {
			rc.PyType = t.mapper.Nullable(pk, e.Type.ID.Type)
			rc.Default = "None"
		}
		ctx.RelationIds = append(ctx.RelationIds, rc)
	}
	for _, e := range n.ManyToManys() {
		std.add(pyImport(e.Type.ID.Type))
		ctx.RelationIds = append(ctx.RelationIds, relationIDCtx{
			Name:    e.IDName(),
			PyType:  t.mapper.Collection(t.mapper.PrimaryKey(e.Type.ID.Type)),
			Default: "[]",
		})
	}
	ctx.StdImports = std.lines()
	body, err := t.render("schema", ctx)
	if err != nil {
		return nil, err
	}
	return &gen.File{Path: layerPath("schemas", n), Body: body}, nil
}

type mapperEdgeCtx struct {
	Name    string
	IdField string
}

// GenMapper implements gen.Target.
func (t *Target) GenMapper(n *gen.Type) (*gen.File, error) {
	ctx := struct {
		Entity      string
		Singular    string
		Fields      []fieldCtx
		ManyToOnes  []mapperEdgeCtx
		ManyToManys []mapperEdgeCtx
	}{
		Entity:   n.EntityName(),
		Singular: n.SingularName(),
		Fields:   t.fields(n),
	}
	for _, e := range n.ManyToOnes() {
		ctx.ManyToOnes = append(ctx.ManyToOnes, mapperEdgeCtx{Name: e.Name, IdField: e.IDName()})
	}
	for _, e := range n.ManyToManys() {
		ctx.ManyToManys = append(ctx.ManyToManys, mapperEdgeCtx{Name: e.Name, IdField: e.IDName()})
	}
	body, err := t.render("mapper", ctx)
	if err != nil {
		return nil, err
	}
	return &gen.File{Path: layerPath("mappers", n), Body: body}, nil
}

// GenRepository implements gen.Target.
func (t *Target) GenRepository(n *gen.Type) (*gen.File, error) {
	ctx := struct {
		Entity   string
		Singular string
		IDType   string
		IDImport string
	}{
		Entity:   n.EntityName(),
		Singular: n.SingularName(),
		IDType:   t.idType(n),
		IDImport: t.idImport(n),
	}
	body, err := t.render("repository", ctx)
	if err != nil {
		return nil, err
	}
	return &gen.File{Path: layerPath("repositories", n), Body: body}, nil
}

// GenService implements gen.Target.
func (t *Target) GenService(n *gen.Type) (*gen.File, error) {
	ctx := struct {
		Entity     string
		Singular   string
		IDType     string
		IDImport   string
		Fields     []fieldCtx
		ManyToOnes []mapperEdgeCtx
	}{
		Entity:   n.EntityName(),
		Singular: n.SingularName(),
		IDType:   t.idType(n),
		IDImport: t.idImport(n),
		Fields:   t.fields(n),
	}
	for _, e := range n.ManyToOnes() {
		ctx.ManyToOnes = append(ctx.ManyToOnes, mapperEdgeCtx{Name: e.Name, IdField: e.IDName()})
	}
	body, err := t.render("service", ctx)
	if err != nil {
		return nil, err
	}
	return &gen.File{Path: layerPath("services", n), Body: body}, nil
}

// GenController implements gen.Target: the APIRouter module.
func (t *Target) GenController(n *gen.Type) (*gen.File, error) {
	ctx := struct {
		Entity   string
		Singular string
		Plural   string
		Path     string
		IDType   string
		IDImport string
	}{
		Entity:   n.EntityName(),
		Singular: n.SingularName(),
		Plural:   n.PluralName(),
		Path:     naming.Kebab(n.PluralName()),
		IDType:   t.idType(n),
		IDImport: t.idImport(n),
	}
	body, err := t.render("router", ctx)
	if err != nil {
		return nil, err
	}
	return &gen.File{Path: layerPath("routers", n), Body: body}, nil
}

type migrationColumnCtx struct {
	Name          string
	SAType        string
	NullablePy    string
	ServerDefault string
}

type migrationFKCtx struct {
	Column    string
	RefTable  string
	RefColumn string
}

type uniqueCtx struct {
	Columns string
	Name    string
}

// serverDefault renders a column's server-side default expression for
// op.create_table, or "".
func serverDefault(f *gen.Field) string {
	if !f.HasDefault() {
		return ""
	}
	switch {
	case f.Type == field.TypeBool:
		switch f.Default {
		case "true":
			return "sa.true()"
		case "false":
			return "sa.false()"
		}
		return ""
	case f.Type == field.TypeString:
		return fmt.Sprintf("sa.text(%q)", "'"+strings.ReplaceAll(f.Default, "'", "''")+"'")
	case f.Type.Temporal() && f.Default == "now":
		return `sa.text("now()")`
	case f.Type.Numeric():
		return fmt.Sprintf("sa.text(%q)", f.Default)
	default:
		return ""
	}
}

func auditServerDefault(c gen.AuditColumn) string {
	if c.Nullable {
		return ""
	}
	switch {
	case c.Type == field.TypeBool:
		return "sa.true()"
	case c.Type.Temporal():
		return `sa.text("now()")`
	case c.Type.Numeric():
		return `sa.text("0")`
	default:
		return ""
	}
}

func quoteJoin(cols ...string) string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = fmt.Sprintf("%q", c)
	}
	return strings.Join(out, ", ")
}

// GenMigration implements gen.Target: an Alembic revision module. The
// revision chain follows the foreign-key creation order, so
// down_revision of revision n is revision n-1.
func (t *Target) GenMigration(n *gen.Type, seq int) (*gen.File, error) {
	revision := fmt.Sprintf("%04d", seq)
	down := "None"
	if seq > 1 {
		down = fmt.Sprintf("%q", fmt.Sprintf("%04d", seq-1))
	}
	ctx := struct {
		Table             string
		Revision          string
		DownRevision      string
		IDName            string
		IDSAType          string
		Autoincrement     bool
		Columns           []migrationColumnCtx
		ForeignKeys       []migrationFKCtx
		UniqueConstraints []uniqueCtx
		Indexes           []string
	}{
		Table:         n.Name,
		Revision:      revision,
		DownRevision:  down,
		IDName:        n.ID.Name,
		IDSAType:      saType(n.ID.Type),
		Autoincrement: n.ID.Type.Integer(),
	}
	for _, f := range n.Fields {
		ctx.Columns = append(ctx.Columns, migrationColumnCtx{
			Name:          f.Name,
			SAType:        saType(f.Type),
			NullablePy:    pyBool(f.Nullable),
			ServerDefault: serverDefault(f),
		})
	}
	for _, fk := range n.ForeignKeys {
		ctx.Columns = append(ctx.Columns, migrationColumnCtx{
			Name:       fk.Field.Name,
			SAType:     saType(fk.Field.Type),
			NullablePy: pyBool(fk.Field.Nullable),
		})
		ctx.ForeignKeys = append(ctx.ForeignKeys, migrationFKCtx{
			Column:    fk.Field.Name,
			RefTable:  fk.RefTable.Name,
			RefColumn: fk.RefColumn,
		})
	}
	for _, c := range t.cfg.AuditColumns {
		ctx.Columns = append(ctx.Columns, migrationColumnCtx{
			Name:          c.Name,
			SAType:        saType(c.Type),
			NullablePy:    pyBool(c.Nullable),
			ServerDefault: auditServerDefault(c),
		})
	}
	for _, f := range n.Fields {
		if f.Unique {
			ctx.UniqueConstraints = append(ctx.UniqueConstraints, uniqueCtx{
				Columns: quoteJoin(f.Name),
				Name:    fmt.Sprintf("uq_%s_%s", n.Name, f.Name),
			})
		}
	}
	if n.JoinTable {
		a, b := n.ForeignKeys[0].Field.Name, n.ForeignKeys[1].Field.Name
		ctx.UniqueConstraints = append(ctx.UniqueConstraints, uniqueCtx{
			Columns: quoteJoin(a, b),
			Name:    fmt.Sprintf("uq_%s_%s_%s", n.Name, a, b),
		})
	}
	for _, uq := range n.Uniques() {
		ctx.UniqueConstraints = append(ctx.UniqueConstraints, uniqueCtx{
			Columns: quoteJoin(uq...),
			Name:    fmt.Sprintf("uq_%s_%s", n.Name, strings.Join(uq, "_")),
		})
	}
	for _, name := range []string{"is_active", "active", "created_at"} {
		if t.cfg.AuditColumn(name) != nil {
			ctx.Indexes = append(ctx.Indexes, name)
		}
	}
	body, err := t.render("migration", ctx)
	if err != nil {
		return nil, err
	}
	path := fmt.Sprintf("migrations/versions/%s_create_%s.py", revision, n.Name)
	return &gen.File{Path: path, Body: body}, nil
}

type auditCtx struct {
	Name       string
	PyType     string
	SAType     string
	NullablePy string
	Default    string
}

// auditDefault renders the client-side default of an audit column for
// the declarative base.
func (t *Target) auditDefault(c gen.AuditColumn) string {
	if c.Nullable {
		return ""
	}
	switch {
	case c.Type == field.TypeBool:
		return "True"
	case c.Type.Temporal():
		return "datetime.now"
	case c.Type.Numeric():
		return "0"
	default:
		return ""
	}
}

// GenProject implements gen.ProjectGenerator: the shared declarative
// base carrying the audit set, plus the session wiring. The primary
// key lives on each model, since tables may override its column and
// type.
func (t *Target) GenProject(g *gen.Graph) ([]*gen.File, error) {
	std := newStdSet()
	sa := map[string]struct{}{}
	audit := make([]auditCtx, 0, len(t.cfg.AuditColumns))
	needNow := false
	for _, c := range t.cfg.AuditColumns {
		py := t.mapper.Scalar(c.Type)
		if c.Nullable {
			py = t.mapper.Nullable(py, c.Type)
		}
		def := t.auditDefault(c)
		if def == "datetime.now" {
			needNow = true
		}
		audit = append(audit, auditCtx{
			Name:       c.Name,
			PyType:     py,
			SAType:     saType(c.Type),
			NullablePy: pyBool(c.Nullable),
			Default:    def,
		})
		std.add(pyImport(c.Type))
		sa[saImport(c.Type)] = struct{}{}
	}
	if needNow {
		std.add("datetime:datetime")
	}
	baseCtx := struct {
		StdImports []string
		SAImports  string
		Audit      []auditCtx
	}{
		StdImports: std.lines(),
		SAImports:  joinSorted(sa),
		Audit:      audit,
	}
	base, err := t.render("base", baseCtx)
	if err != nil {
		return nil, err
	}
	segs := strings.Split(t.cfg.BasePackage, ".")
	dbCtx := struct{ Database string }{Database: segs[len(segs)-1]}
	db, err := t.render("database", dbCtx)
	if err != nil {
		return nil, err
	}
	return []*gen.File{
		{Path: "app/core/base.py", Body: base},
		{Path: "app/core/database.py", Body: db},
	}, nil
}

// stdSet collects "module:name" standard-library imports and renders
// them as grouped "from module import a, b" lines.
type stdSet map[string]map[string]struct{}

func newStdSet(imports ...string) stdSet {
	s := make(stdSet)
	s.add(imports...)
	return s
}

func (s stdSet) add(imports ...string) {
	for _, imp := range imports {
		if imp == "" {
			continue
		}
		module, name, ok := strings.Cut(imp, ":")
		if !ok {
			continue
		}
		if s[module] == nil {
			s[module] = make(map[string]struct{})
		}
		s[module][name] = struct{}{}
	}
}

func (s stdSet) lines() []string {
	modules := make([]string, 0, len(s))
	for m := range s {
		modules = append(modules, m)
	}
	sort.Strings(modules)
	lines := make([]string, 0, len(modules))
	for _, m := range modules {
		names := make([]string, 0, len(s[m]))
		for n := range s[m] {
			names = append(names, n)
		}
		sort.Strings(names)
		lines = append(lines, "from "+m+" import "+strings.Join(names, ", "))
	}
	return lines
}

// stdLines renders a set as newline-joined import lines.
func stdLines(s stdSet) string {
	return strings.Join(s.lines(), "\n")
}

func joinSorted(set map[string]struct{}) string {
	out := make([]string, 0, len(set))
	for k := range set {
		if k == "" {
			continue
		}
		out = append(out, k)
	}
	sort.Strings(out)
	return strings.Join(out, ", ")
}
