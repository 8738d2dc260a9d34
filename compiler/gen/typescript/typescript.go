// Package typescript generates the NestJS target: TypeORM entities,
// class-validator DTOs, mappers, injectable repositories, services,
// controllers and TypeORM migrations.
package typescript

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/schemaforge/schemaforge/compiler/gen"
	"github.com/schemaforge/schemaforge/compiler/gen/internal/pgddl"
	"github.com/schemaforge/schemaforge/naming"
	"github.com/schemaforge/schemaforge/schema/field"
)

// Target implements gen.Target for the TypeScript/NestJS ecosystem.
type Target struct {
	cfg    *gen.Config
	mapper typeMapper
}

// NewTarget returns the TypeScript target for the given configuration.
func NewTarget(cfg *gen.Config) *Target {
	return &Target{cfg: cfg}
}

// Name implements gen.Target.
func (*Target) Name() string { return "typescript" }

// Mapper implements gen.Target.
func (t *Target) Mapper() gen.TypeMapper { return t.mapper }

func (t *Target) render(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if t.cfg.Header != "" {
		fmt.Fprintf(&buf, "// %s\n", t.cfg.Header)
	}
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// fileName is the kebab-case stem shared by all of a type's artifact
// files, e.g. "order-item".
func fileName(n *gen.Type) string {
	return naming.Kebab(n.SingularName())
}

func moduleDir(n *gen.Type) string {
	return naming.Kebab(n.Module)
}

func layerPath(n *gen.Type, layer, suffix string) string {
	return "src/" + moduleDir(n) + "/" + layer + "/" + fileName(n) + "." + suffix + ".ts"
}

func (t *Target) idType(n *gen.Type) string {
	return t.mapper.PrimaryKey(n.ID.Type)
}

// idPipe returns the NestJS param pipe validating the id path
// parameter, or "".
func idPipe(idType field.Type) string {
	switch idType {
	case field.TypeInt32, field.TypeInt64:
		return "ParseIntPipe"
	case field.TypeUUID:
		return "ParseUUIDPipe"
	default:
		return ""
	}
}

type fieldCtx struct {
	Name       string
	Column     string
	Type       string
	Orm        string
	NullableTs string
	Nullable   bool
	Unique     bool
	Validator  string
}

type edgeCtx struct {
	Name              string
	Entity            string
	Param             string
	Inverse           string
	Column            string
	Owning            bool
	JoinTable         string
	JoinColumn        string
	InverseJoinColumn string
	IdField           string
}

type entityImportCtx struct {
	Entity string
	Path   string
}

func tsBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func (t *Target) fields(n *gen.Type) []fieldCtx {
	out := make([]fieldCtx, 0, len(n.Fields))
	for _, f := range n.Fields {
		ts := t.mapper.Scalar(f.Type)
		if f.Nullable {
			ts = t.mapper.Nullable(ts, f.Type)
		}
		out = append(out, fieldCtx{
			Name:       f.CamelName(),
			Column:     f.Name,
			Type:       ts,
			Orm:        ormType(f.Type),
			NullableTs: tsBool(f.Nullable),
			Nullable:   f.Nullable,
			Unique:     f.Unique,
			Validator:  validator(f.Type),
		})
	}
	return out
}

// entityPath returns the import path of a referenced entity relative
// to a file in one of the importing type's layer directories.
func entityPath(ref, from *gen.Type) string {
	if ref.Module == from.Module {
		return "../entities/" + fileName(ref) + ".entity"
	}
	return "../../" + moduleDir(ref) + "/entities/" + fileName(ref) + ".entity"
}

// GenEntity implements gen.Target: the TypeORM entity class.
func (t *Target) GenEntity(n *gen.Type) (*gen.File, error) {
	orm := map[string]struct{}{"Column": {}, "Entity": {}}
	refs := map[string]entityImportCtx{}
	addRef := func(ref *gen.Type) {
		if ref.Name == n.Name {
			return
		}
		refs[ref.EntityName()] = entityImportCtx{
			Entity: ref.EntityName(),
			Path:   entityPath(ref, n),
		}
	}
	idDec := idDecorator(n.ID)
	orm[decoratorName(idDec)] = struct{}{}
	ctx := struct {
		OrmImports    string
		EntityImports []entityImportCtx
		Entity        string
		Table         string
		IDDecorator   string
		IDType        string
		Fields        []fieldCtx
		ForeignKeys   []fieldCtx
		ManyToOnes    []edgeCtx
		OneToManys    []edgeCtx
		ManyToManys   []edgeCtx
	}{
		Entity:      n.EntityName(),
		Table:       n.Name,
		IDDecorator: idDec,
		IDType:      t.idType(n),
		Fields:      t.fields(n),
	}
	for _, fk := range n.ForeignKeys {
		f := fk.Field
		ts := t.mapper.PrimaryKey(fk.RefTable.ID.Type)
		if f.Nullable {
			ts = t.mapper.Nullable(ts, f.Type)
		}
		ctx.ForeignKeys = append(ctx.ForeignKeys, fieldCtx{
			Name:       f.CamelName(),
			Column:     f.Name,
			Type:       ts,
			Orm:        ormType(f.Type),
			NullableTs: tsBool(f.Nullable),
		})
	}
	for _, e := range n.ManyToOnes() {
		orm["ManyToOne"] = struct{}{}
		orm["JoinColumn"] = struct{}{}
		ctx.ManyToOnes = append(ctx.ManyToOnes, edgeCtx{
			Name:    e.CamelName(),
			Entity:  e.Type.EntityName(),
			Param:   naming.Camel(e.Type.SingularName()),
			Inverse: naming.Camel(e.Ref.Name),
			Column:  e.Column,
		})
		addRef(e.Type)
	}
	for _, e := range n.OneToManys() {
		orm["OneToMany"] = struct{}{}
		ctx.OneToManys = append(ctx.OneToManys, edgeCtx{
			Name:    e.CamelName(),
			Entity:  e.Type.EntityName(),
			Param:   naming.Camel(e.Type.SingularName()),
			Inverse: naming.Camel(e.Ref.Name),
		})
		addRef(e.Type)
	}
	for _, e := range n.ManyToManys() {
		orm["ManyToMany"] = struct{}{}
		owning := e.Owner.Name < e.Type.Name
		if owning {
			orm["JoinTable"] = struct{}{}
		}
		ctx.ManyToManys = append(ctx.ManyToManys, edgeCtx{
			Name:              e.CamelName(),
			Entity:            e.Type.EntityName(),
			Param:             naming.Camel(e.Type.SingularName()),
			Inverse:           naming.Camel(e.Ref.Name),
			Owning:            owning,
			JoinTable:         e.Through,
			JoinColumn:        e.ThroughColumns[0],
			InverseJoinColumn: e.ThroughColumns[1],
		})
		addRef(e.Type)
	}
	ctx.OrmImports = joinKeys(orm)
	for _, imp := range refs {
		ctx.EntityImports = append(ctx.EntityImports, imp)
	}
	sort.Slice(ctx.EntityImports, func(i, j int) bool {
		return ctx.EntityImports[i].Path < ctx.EntityImports[j].Path
	})
	body, err := t.render("entity", ctx)
	if err != nil {
		return nil, err
	}
	return &gen.File{Path: layerPath(n, "entities", "entity"), Body: body}, nil
}

type relationIDCtx struct {
	Name      string
	Type      string
	Validator string
	Nullable  bool
}

// GenDTO implements gen.Target.
func (t *Target) GenDTO(n *gen.Type) (*gen.File, error) {
	validators := map[string]struct{}{"IsOptional": {}}
	addValidator := func(ft field.Type) {
		if v := validatorImport(ft); v != "" {
			validators[v] = struct{}{}
		}
	}
	addValidator(n.ID.Type)
	ctx := struct {
		ValidatorImports string
		Entity           string
		IDType           string
		IDValidator      string
		Fields           []fieldCtx
		RelationIds      []relationIDCtx
	}{
		Entity:      n.EntityName(),
		IDType:      t.idType(n),
		IDValidator: validator(n.ID.Type),
		Fields:      t.fields(n),
	}
	for _, f := range n.Fields {
		addValidator(f.Type)
	}
	for _, e := range n.ManyToOnes() {
		pk := t.mapper.PrimaryKey(e.Type.ID.Type)
		rc := relationIDCtx{
			Name:      naming.Camel(e.IDName()),
			Type:      pk,
			Validator: validator(e.Type.ID.Type),
		}
		if fk := n.ForeignKey(e.Column); fk != nil && fk.Field.Nullable {
			rc.Type = t.mapper.Nullable(pk, e.Type.ID.Type)
			rc.Nullable = true
		}
		addValidator(e.Type.ID.Type)
		ctx.RelationIds = append(ctx.RelationIds, rc)
	}
	for _, e := range n.ManyToManys() {
		validators["IsArray"] = struct{}{}
		ctx.RelationIds = append(ctx.RelationIds, relationIDCtx{
			Name:      naming.Camel(e.IDName()),
			Type:      t.mapper.Collection(t.mapper.PrimaryKey(e.Type.ID.Type)),
			Validator: "@IsArray()",
		})
	}
	ctx.ValidatorImports = joinKeys(validators)
	body, err := t.render("dto", ctx)
	if err != nil {
		return nil, err
	}
	return &gen.File{Path: layerPath(n, "dto", "dto"), Body: body}, nil
}

type mapperEdgeCtx struct {
	Name    string
	IdField string
}

func mapperEdges(n *gen.Type, r gen.Rel) []mapperEdgeCtx {
	var out []mapperEdgeCtx
	for _, e := range n.EdgesOfKind(r) {
		out = append(out, mapperEdgeCtx{
			Name:    e.CamelName(),
			IdField: naming.Camel(e.IDName()),
		})
	}
	return out
}

// GenMapper implements gen.Target.
func (t *Target) GenMapper(n *gen.Type) (*gen.File, error) {
	ctx := struct {
		Entity      string
		File        string
		Fields      []fieldCtx
		ManyToOnes  []mapperEdgeCtx
		ManyToManys []mapperEdgeCtx
	}{
		Entity:      n.EntityName(),
		File:        fileName(n),
		Fields:      t.fields(n),
		ManyToOnes:  mapperEdges(n, gen.ManyToOne),
		ManyToManys: mapperEdges(n, gen.ManyToMany),
	}
	body, err := t.render("mapper", ctx)
	if err != nil {
		return nil, err
	}
	return &gen.File{Path: layerPath(n, "mappers", "mapper"), Body: body}, nil
}

// GenRepository implements gen.Target.
func (t *Target) GenRepository(n *gen.Type) (*gen.File, error) {
	ctx := struct {
		Entity string
		File   string
		IDType string
	}{
		Entity: n.EntityName(),
		File:   fileName(n),
		IDType: t.idType(n),
	}
	body, err := t.render("repository", ctx)
	if err != nil {
		return nil, err
	}
	return &gen.File{Path: layerPath(n, "repositories", "repository"), Body: body}, nil
}

// GenService implements gen.Target.
func (t *Target) GenService(n *gen.Type) (*gen.File, error) {
	ctx := struct {
		Entity     string
		File       string
		IDType     string
		Fields     []fieldCtx
		ManyToOnes []mapperEdgeCtx
	}{
		Entity:     n.EntityName(),
		File:       fileName(n),
		IDType:     t.idType(n),
		Fields:     t.fields(n),
		ManyToOnes: mapperEdges(n, gen.ManyToOne),
	}
	body, err := t.render("service", ctx)
	if err != nil {
		return nil, err
	}
	return &gen.File{Path: layerPath(n, "services", "service"), Body: body}, nil
}

// GenController implements gen.Target.
func (t *Target) GenController(n *gen.Type) (*gen.File, error) {
	ctx := struct {
		Entity string
		File   string
		IDType string
		IDPipe string
		Path   string
	}{
		Entity: n.EntityName(),
		File:   fileName(n),
		IDType: t.idType(n),
		IDPipe: idPipe(n.ID.Type),
		Path:   naming.Kebab(n.PluralName()),
	}
	body, err := t.render("controller", ctx)
	if err != nil {
		return nil, err
	}
	return &gen.File{Path: layerPath(n, "controllers", "controller"), Body: body}, nil
}

// GenMigration implements gen.Target: a TypeORM migration class
// running the shared DDL statements.
func (t *Target) GenMigration(n *gen.Type, seq int) (*gen.File, error) {
	class := fmt.Sprintf("Create%s%04d", naming.Pascal(n.Name), seq)
	var b strings.Builder
	if t.cfg.Header != "" {
		fmt.Fprintf(&b, "// %s\n", t.cfg.Header)
	}
	b.WriteString("import { MigrationInterface, QueryRunner } from 'typeorm';\n\n")
	fmt.Fprintf(&b, "export class %s implements MigrationInterface {\n", class)
	fmt.Fprintf(&b, "  name = '%s';\n\n", class)
	b.WriteString("  public async up(queryRunner: QueryRunner): Promise<void> {\n")
	for _, stmt := range sqlStatements(pgddl.CreateTable(n)) {
		fmt.Fprintf(&b, "    await queryRunner.query(`%s`);\n", stmt)
	}
	b.WriteString("  }\n\n")
	b.WriteString("  public async down(queryRunner: QueryRunner): Promise<void> {\n")
	for _, stmt := range sqlStatements(pgddl.DropTable(n)) {
		fmt.Fprintf(&b, "    await queryRunner.query(`%s`);\n", stmt)
	}
	b.WriteString("  }\n}\n")
	path := fmt.Sprintf("src/migrations/%04d-create-%s.ts", seq, naming.Kebab(n.Name))
	return &gen.File{Path: path, Body: []byte(b.String())}, nil
}

// sqlStatements splits rendered DDL into individual statements;
// queryRunner.query executes one statement per call.
func sqlStatements(ddl string) []string {
	var out []string
	for _, stmt := range strings.Split(ddl, ";\n") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}

type auditCtx struct {
	Name      string
	Type      string
	Decorator string
}

// auditDecorator picks the TypeORM decorator for an audit column.
// The lifecycle columns map onto TypeORM's managed date columns.
func auditDecorator(c gen.AuditColumn) string {
	switch c.Name {
	case "created_at":
		return fmt.Sprintf("@CreateDateColumn({ name: '%s', %s })", c.Name, ormType(c.Type))
	case "updated_at":
		return fmt.Sprintf("@UpdateDateColumn({ name: '%s', %s })", c.Name, ormType(c.Type))
	case "deleted_at":
		return fmt.Sprintf("@DeleteDateColumn({ name: '%s', %s, nullable: true })", c.Name, ormType(c.Type))
	case "version":
		return fmt.Sprintf("@VersionColumn({ name: '%s' })", c.Name)
	default:
		return fmt.Sprintf("@Column({ name: '%s', %s, nullable: %s })", c.Name, ormType(c.Type), tsBool(c.Nullable))
	}
}

func auditOrmImport(c gen.AuditColumn) string {
	return decoratorName(auditDecorator(c))
}

// idDecorator picks the TypeORM primary-key decorator. The class
// property is always named id; an overridden primary key maps it onto
// the declared column.
func idDecorator(id *gen.Field) string {
	name := ""
	if id.Name != "id" {
		name = fmt.Sprintf("name: '%s', ", id.Name)
	}
	switch id.Type {
	case field.TypeUUID:
		if name != "" {
			return fmt.Sprintf("@PrimaryGeneratedColumn('uuid', { name: '%s' })", id.Name)
		}
		return "@PrimaryGeneratedColumn('uuid')"
	case field.TypeString:
		return fmt.Sprintf("@PrimaryColumn({ %stype: 'varchar', length: 255 })", name)
	default:
		return fmt.Sprintf("@PrimaryGeneratedColumn({ %s%s })", name, ormType(id.Type))
	}
}

// decoratorName extracts the identifier to import from a decorator
// expression, e.g. "PrimaryColumn" from "@PrimaryColumn({ ... })".
func decoratorName(dec string) string {
	return dec[1:strings.IndexByte(dec, '(')]
}

type moduleImportCtx struct {
	Name string
	Path string
}

// GenProject implements gen.ProjectGenerator: the shared base entity
// and the application module wiring every generated provider. The
// primary key lives on each entity, since tables may override its
// column and type.
func (t *Target) GenProject(g *gen.Graph) ([]*gen.File, error) {
	orm := map[string]struct{}{}
	audit := make([]auditCtx, 0, len(t.cfg.AuditColumns))
	for _, c := range t.cfg.AuditColumns {
		ts := t.mapper.Scalar(c.Type)
		if c.Nullable {
			ts = t.mapper.Nullable(ts, c.Type)
		}
		audit = append(audit, auditCtx{
			Name:      naming.Camel(c.Name),
			Type:      ts,
			Decorator: auditDecorator(c),
		})
		orm[auditOrmImport(c)] = struct{}{}
	}
	baseCtx := struct {
		OrmImports string
		Audit      []auditCtx
	}{
		OrmImports: joinKeys(orm),
		Audit:      audit,
	}
	base, err := t.render("base_entity", baseCtx)
	if err != nil {
		return nil, err
	}
	var (
		imports     []moduleImportCtx
		entities    []string
		controllers []string
		providers   []string
	)
	for _, n := range g.Nodes {
		if n.JoinTable {
			continue
		}
		e, file, dir := n.EntityName(), fileName(n), moduleDir(n)
		imports = append(imports,
			moduleImportCtx{Name: e, Path: "./" + dir + "/entities/" + file + ".entity"},
			moduleImportCtx{Name: e + "Controller", Path: "./" + dir + "/controllers/" + file + ".controller"},
			moduleImportCtx{Name: e + "Repository", Path: "./" + dir + "/repositories/" + file + ".repository"},
			moduleImportCtx{Name: e + "Service", Path: "./" + dir + "/services/" + file + ".service"},
		)
		entities = append(entities, e)
		controllers = append(controllers, e+"Controller")
		providers = append(providers, e+"Repository", e+"Service")
	}
	sort.Slice(imports, func(i, j int) bool { return imports[i].Path < imports[j].Path })
	moduleCtx := struct {
		Imports     []moduleImportCtx
		Entities    string
		Controllers string
		Providers   string
	}{
		Imports:     imports,
		Entities:    strings.Join(entities, ", "),
		Controllers: strings.Join(controllers, ", "),
		Providers:   strings.Join(providers, ", "),
	}
	appModule, err := t.render("app_module", moduleCtx)
	if err != nil {
		return nil, err
	}
	return []*gen.File{
		{Path: "src/common/base.entity.ts", Body: base},
		{Path: "src/app.module.ts", Body: appModule},
	}, nil
}

func joinKeys(set map[string]struct{}) string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return strings.Join(out, ", ")
}
