// Package java generates the Spring Boot target: JPA entities, DTOs,
// mappers, Spring Data repositories, services, REST controllers and
// Flyway migrations.
package java

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

// Target implements gen.Target for the Java/Spring ecosystem.
type Target struct {
	cfg    *gen.Config
	mapper typeMapper
}

// NewTarget returns the Java target for the given configuration.
func NewTarget(cfg *gen.Config) *Target {
	return &Target{cfg: cfg}
}

// Name implements gen.Target.
func (*Target) Name() string { return "java" }

// Mapper implements gen.Target.
func (t *Target) Mapper() gen.TypeMapper { return t.mapper }

// srcRoot is the Maven source root of the base package.
func (t *Target) srcRoot() string {
	return "src/main/java/" + strings.ReplaceAll(t.cfg.BasePackage, ".", "/")
}

// pkgSeg converts a module name to a Java package segment; Java
// convention drops underscores ("order_item" -> "orderitem").
func pkgSeg(module string) string {
	return strings.ReplaceAll(module, "_", "")
}

func (t *Target) pkg(n *gen.Type, layer string) string {
	return t.cfg.BasePackage + "." + pkgSeg(n.Module) + "." + layer
}

func (t *Target) path(n *gen.Type, layer, file string) string {
	return t.srcRoot() + "/" + pkgSeg(n.Module) + "/" + layer + "/" + file
}

func (t *Target) render(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (t *Target) idType(n *gen.Type) string {
	return t.mapper.PrimaryKey(n.ID.Type)
}

type idCtx struct {
	Type      string
	Column    string
	Generated string
}

// idGeneration picks the JPA generation strategy for a primary-key
// type. Natural string keys are assigned by the caller, not generated.
func idGeneration(t field.Type) string {
	switch {
	case t.Integer():
		return "IDENTITY"
	case t == field.TypeUUID:
		return "UUID"
	default:
		return ""
	}
}

// id describes the entity's primary-key property. The Java property is
// always named id so the DTO, mapper and service layers stay uniform;
// an overridden primary key maps it onto the declared column.
func (t *Target) id(n *gen.Type) idCtx {
	return idCtx{
		Type:      t.idType(n),
		Column:    n.ID.Name,
		Generated: idGeneration(n.ID.Type),
	}
}

type fieldCtx struct {
	Name     string
	Column   string
	Type     string
	Nullable bool
	Unique   bool
	Default  string
}

type edgeCtx struct {
	Field             string
	Entity            string
	Column            string
	Nullable          bool
	MappedBy          string
	JoinTable         string
	JoinColumn        string
	InverseJoinColumn string
	Owning            bool
	IdField           string
	Type              string
}

func (t *Target) fields(n *gen.Type) []fieldCtx {
	out := make([]fieldCtx, 0, len(n.Fields))
	for _, f := range n.Fields {
		fc := fieldCtx{
			Name:     f.CamelName(),
			Column:   f.Name,
			Type:     t.mapper.Nullable(t.mapper.Scalar(f.Type), f.Type),
			Nullable: f.Nullable,
			Unique:   f.Unique,
		}
		if f.HasDefault() {
			fc.Default = t.mapper.DefaultValue(f)
		}
		out = append(out, fc)
	}
	return out
}

// GenEntity implements gen.Target.
func (t *Target) GenEntity(n *gen.Type) (*gen.File, error) {
	imports := newImportSet(t.cfg.BasePackage + ".common.BaseEntity")
	imports.addType(n.ID.Type)
	for _, f := range n.Fields {
		imports.addType(f.Type)
	}
	ctx := struct {
		Header      string
		Package     string
		Imports     []string
		Entity      string
		Table       string
		ID          idCtx
		Fields      []fieldCtx
		ManyToOnes  []edgeCtx
		OneToManys  []edgeCtx
		ManyToManys []edgeCtx
	}{
		Header:  t.cfg.Header,
		Package: t.pkg(n, "entity"),
		Entity:  n.EntityName(),
		Table:   n.Name,
		ID:      t.id(n),
		Fields:  t.fields(n),
	}
	for _, e := range n.ManyToOnes() {
		fk := n.ForeignKey(e.Column)
		ctx.ManyToOnes = append(ctx.ManyToOnes, edgeCtx{
			Field:    e.CamelName(),
			Entity:   e.Type.EntityName(),
			Column:   e.Column,
			Nullable: fk != nil && fk.Field.Nullable,
		})
		imports.addEntity(t.cfg.BasePackage, e.Type, n)
	}
	for _, e := range n.OneToManys() {
		ctx.OneToManys = append(ctx.OneToManys, edgeCtx{
			Field:    e.CamelName(),
			Entity:   e.Type.EntityName(),
			MappedBy: naming.Camel(e.Ref.Name),
		})
		imports.addEntity(t.cfg.BasePackage, e.Type, n)
		imports.add("java.util.ArrayList", "java.util.List")
	}
	for _, e := range n.ManyToManys() {
		ctx.ManyToManys = append(ctx.ManyToManys, edgeCtx{
			Field:             e.CamelName(),
			Entity:            e.Type.EntityName(),
			MappedBy:          naming.Camel(e.Ref.Name),
			JoinTable:         e.Through,
			JoinColumn:        e.ThroughColumns[0],
			InverseJoinColumn: e.ThroughColumns[1],
			Owning:            e.Owner.Name < e.Type.Name,
		})
		imports.addEntity(t.cfg.BasePackage, e.Type, n)
		imports.add("java.util.ArrayList", "java.util.List")
	}
	ctx.Imports = imports.sorted()
	body, err := t.render("entity", ctx)
	if err != nil {
		return nil, err
	}
	return &gen.File{Path: t.path(n, "entity", ctx.Entity+".java"), Body: body}, nil
}

type relationIDCtx struct {
	Name string
	Type string
}

// GenDTO implements gen.Target. ManyToOne relationships surface as
// foreign-key-id fields and ManyToMany as id collections; nested
// objects would reintroduce the circular serialization the DTO layer
// exists to avoid.
func (t *Target) GenDTO(n *gen.Type) (*gen.File, error) {
	imports := newImportSet()
	imports.addType(n.ID.Type)
	for _, f := range n.Fields {
		imports.addType(f.Type)
	}
	ctx := struct {
		Header      string
		Package     string
		Imports     []string
		Entity      string
		IDType      string
		Fields      []fieldCtx
		RelationIds []relationIDCtx
	}{
		Header:  t.cfg.Header,
		Package: t.pkg(n, "dto"),
		Entity:  n.EntityName(),
		IDType:  t.idType(n),
		Fields:  t.fields(n),
	}
	for _, e := range n.ManyToOnes() {
		imports.addType(e.Type.ID.Type)
		ctx.RelationIds = append(ctx.RelationIds, relationIDCtx{
			Name: naming.Camel(e.IDName()),
			Type: t.mapper.PrimaryKey(e.Type.ID.Type),
		})
	}
	for _, e := range n.ManyToManys() {
		imports.addType(e.Type.ID.Type)
		ctx.RelationIds = append(ctx.RelationIds, relationIDCtx{
			Name: naming.Camel(e.IDName()),
			Type: t.mapper.Collection(t.mapper.PrimaryKey(e.Type.ID.Type)),
		})
		imports.add("java.util.List")
	}
	ctx.Imports = imports.sorted()
	body, err := t.render("dto", ctx)
	if err != nil {
		return nil, err
	}
	return &gen.File{Path: t.path(n, "dto", ctx.Entity+"DTO.java"), Body: body}, nil
}

type mapperEdgeCtx struct {
	Field   string
	IdField string
	Entity  string
}

// GenMapper implements gen.Target. The mapper copies scalars and
// projects relationship ids; resolving id references back to entities
// is the service's job, since it needs repository access.
func (t *Target) GenMapper(n *gen.Type) (*gen.File, error) {
	imports := newImportSet(
		t.pkg(n, "entity")+"."+n.EntityName(),
		t.pkg(n, "dto")+"."+n.EntityName()+"DTO",
	)
	ctx := struct {
		Header      string
		Package     string
		Imports     []string
		Entity      string
		Fields      []fieldCtx
		ManyToOnes  []mapperEdgeCtx
		ManyToManys []mapperEdgeCtx
	}{
		Header:  t.cfg.Header,
		Package: t.pkg(n, "mapper"),
		Entity:  n.EntityName(),
		Fields:  t.fields(n),
	}
	for _, e := range n.ManyToOnes() {
		ctx.ManyToOnes = append(ctx.ManyToOnes, mapperEdgeCtx{
			Field:   e.CamelName(),
			IdField: naming.Camel(e.IDName()),
		})
	}
	for _, e := range n.ManyToManys() {
		ctx.ManyToManys = append(ctx.ManyToManys, mapperEdgeCtx{
			Field:   e.CamelName(),
			IdField: naming.Camel(e.IDName()),
			Entity:  e.Type.EntityName(),
		})
		imports.add("java.util.stream.Collectors")
		imports.addEntity(t.cfg.BasePackage, e.Type, nil)
	}
	ctx.Imports = imports.sorted()
	body, err := t.render("mapper", ctx)
	if err != nil {
		return nil, err
	}
	return &gen.File{Path: t.path(n, "mapper", ctx.Entity+"Mapper.java"), Body: body}, nil
}

// GenRepository implements gen.Target.
func (t *Target) GenRepository(n *gen.Type) (*gen.File, error) {
	ctx := struct {
		Header       string
		Package      string
		Entity       string
		IDType       string
		IDImport     string
		EntityImport string
	}{
		Header:       t.cfg.Header,
		Package:      t.pkg(n, "repository"),
		Entity:       n.EntityName(),
		IDType:       t.idType(n),
		IDImport:     typeImport(n.ID.Type),
		EntityImport: t.pkg(n, "entity") + "." + n.EntityName(),
	}
	body, err := t.render("repository", ctx)
	if err != nil {
		return nil, err
	}
	return &gen.File{Path: t.path(n, "repository", ctx.Entity+"Repository.java"), Body: body}, nil
}

// GenService implements gen.Target.
func (t *Target) GenService(n *gen.Type) (*gen.File, error) {
	entity := n.EntityName()
	imports := newImportSet(
		t.pkg(n, "entity")+"."+entity,
		t.pkg(n, "dto")+"."+entity+"DTO",
		t.pkg(n, "mapper")+"."+entity+"Mapper",
		t.pkg(n, "repository")+"."+entity+"Repository",
	)
	imports.addType(n.ID.Type)
	ctx := struct {
		Header  string
		Package string
		Imports []string
		Entity  string
		IDType  string
		Fields  []fieldCtx
	}{
		Header:  t.cfg.Header,
		Package: t.pkg(n, "service"),
		Imports: imports.sorted(),
		Entity:  entity,
		IDType:  t.idType(n),
		Fields:  t.fields(n),
	}
	body, err := t.render("service", ctx)
	if err != nil {
		return nil, err
	}
	return &gen.File{Path: t.path(n, "service", entity+"Service.java"), Body: body}, nil
}

// GenController implements gen.Target.
func (t *Target) GenController(n *gen.Type) (*gen.File, error) {
	entity := n.EntityName()
	imports := newImportSet(
		t.pkg(n, "dto")+"."+entity+"DTO",
		t.pkg(n, "service")+"."+entity+"Service",
	)
	imports.addType(n.ID.Type)
	ctx := struct {
		Header  string
		Package string
		Imports []string
		Entity  string
		IDType  string
		Path    string
	}{
		Header:  t.cfg.Header,
		Package: t.pkg(n, "controller"),
		Imports: imports.sorted(),
		Entity:  entity,
		IDType:  t.idType(n),
		Path:    naming.Kebab(n.PluralName()),
	}
	body, err := t.render("controller", ctx)
	if err != nil {
		return nil, err
	}
	return &gen.File{Path: t.path(n, "controller", entity+"Controller.java"), Body: body}, nil
}

// GenMigration implements gen.Target. Flyway versioned migration.
func (t *Target) GenMigration(n *gen.Type, seq int) (*gen.File, error) {
	var b strings.Builder
	if t.cfg.Header != "" {
		fmt.Fprintf(&b, "-- %s\n", t.cfg.Header)
	}
	fmt.Fprintf(&b, "-- Create table %s.\n\n", n.Name)
	b.WriteString(pgddl.CreateTable(n))
	path := fmt.Sprintf("src/main/resources/db/migration/V%d__create_%s.sql", seq, n.Name)
	return &gen.File{Path: path, Body: []byte(b.String())}, nil
}

type auditCtx struct {
	Name     string
	Column   string
	Type     string
	Nullable bool
	Version  bool
}

// GenProject implements gen.ProjectGenerator: the shared audit base
// class every generated entity extends. The primary key lives on each
// entity, since tables may override its column and type.
func (t *Target) GenProject(g *gen.Graph) ([]*gen.File, error) {
	imports := newImportSet()
	audit := make([]auditCtx, 0, len(t.cfg.AuditColumns))
	for _, c := range t.cfg.AuditColumns {
		audit = append(audit, auditCtx{
			Name:     naming.Camel(c.Name),
			Column:   c.Name,
			Type:     t.mapper.Scalar(c.Type),
			Nullable: c.Nullable,
			Version:  c.Name == "version",
		})
		imports.addType(c.Type)
	}
	ctx := struct {
		Header  string
		Package string
		Imports []string
		Audit   []auditCtx
	}{
		Header:  t.cfg.Header,
		Package: t.cfg.BasePackage + ".common",
		Imports: imports.sorted(),
		Audit:   audit,
	}
	body, err := t.render("base_entity", ctx)
	if err != nil {
		return nil, err
	}
	path := t.srcRoot() + "/common/BaseEntity.java"
	return []*gen.File{{Path: path, Body: body}}, nil
}

// importSet deduplicates and sorts Java imports.
type importSet map[string]struct{}

func newImportSet(imports ...string) importSet {
	s := make(importSet)
	s.add(imports...)
	return s
}

func (s importSet) add(imports ...string) {
	for _, imp := range imports {
		s[imp] = struct{}{}
	}
}

func (s importSet) addType(t field.Type) {
	if imp := typeImport(t); imp != "" {
		s[imp] = struct{}{}
	}
}

// addEntity imports a referenced entity class unless it lives in the
// same module as the importing type.
func (s importSet) addEntity(base string, ref, from *gen.Type) {
	if from != nil && ref.Module == from.Module {
		return
	}
	s[base+"."+pkgSeg(ref.Module)+".entity."+ref.EntityName()] = struct{}{}
}

func (s importSet) sorted() []string {
	out := make([]string, 0, len(s))
	for imp := range s {
		out = append(out, imp)
	}
	sort.Strings(out)
	return out
}
