package gen

import (
	"sort"
	"strings"

	"github.com/schemaforge/schemaforge/naming"
	"github.com/schemaforge/schemaforge/schema"
	"github.com/schemaforge/schemaforge/schema/field"
)

// Graph is the fully-resolved model of one generation request: every
// table as a Type, annotated with the closed set of relationship
// edges. Relationship resolution is a global barrier; no artifact
// generator runs before the whole graph is built.
type Graph struct {
	*Config
	// Nodes holds the types of the graph, in schema order.
	Nodes []*Type
	nodes map[string]*Type
}

// NewGraph validates the canonical schema and resolves its
// relationships. It fails fast: any SchemaError or RelationError
// aborts the request before generation begins, with no partial output.
func NewGraph(c *Config, sc *schema.Schema) (*Graph, error) {
	if c == nil {
		return nil, NewConfigError("Config", nil, "config cannot be nil")
	}
	if sc == nil || len(sc.Tables) == 0 {
		return nil, NewSchemaError("", "", "schema has no tables", nil)
	}
	g := &Graph{
		Config: c,
		Nodes:  make([]*Type, 0, len(sc.Tables)),
		nodes:  make(map[string]*Type, len(sc.Tables)),
	}
	for _, tbl := range sc.Tables {
		n, err := g.addNode(tbl)
		if err != nil {
			return nil, err
		}
		g.Nodes = append(g.Nodes, n)
		g.nodes[n.Name] = n
	}
	if err := g.resolveEdges(); err != nil {
		return nil, err
	}
	g.reclassifyJunctions()
	return g, nil
}

// Type returns the node named by the given table name, or nil.
func (g *Graph) Type(name string) *Type {
	return g.nodes[name]
}

// EntityNodes returns the entity-bearing nodes of the graph: every
// node except pure junction tables.
func (g *Graph) EntityNodes() []*Type {
	nodes := make([]*Type, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		if !n.JoinTable {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

func (g *Graph) addNode(tbl *schema.Table) (*Type, error) {
	if tbl.Name == "" {
		return nil, NewSchemaError("", "", "table with empty name", nil)
	}
	if _, ok := g.nodes[tbl.Name]; ok {
		return nil, NewSchemaError(tbl.Name, "", "duplicate table name", nil)
	}
	n := &Type{
		Config: g.Config,
		table:  tbl,
		Name:   tbl.Name,
		Module: tbl.Module,
	}
	if n.Module == "" {
		n.Module = naming.Singular(tbl.Name)
	}
	seen := make(map[string]bool, len(tbl.Columns))
	for _, col := range tbl.Columns {
		if col.Name == "" {
			return nil, NewSchemaError(tbl.Name, "", "column with empty name", nil)
		}
		if seen[col.Name] {
			return nil, NewSchemaError(tbl.Name, col.Name, "duplicate column name", nil)
		}
		seen[col.Name] = true
		if !col.Type.Valid() && col.Ref == nil {
			// Foreign-key columns may leave the type unset; they
			// inherit the referenced column's type in resolveEdges.
			return nil, NewSchemaError(tbl.Name, col.Name, "invalid canonical type", nil)
		}
		f := &Field{
			def:      col,
			Name:     col.Name,
			Type:     col.Type,
			Nullable: col.Nullable,
			Unique:   col.Unique,
			Default:  col.Default,
		}
		switch {
		case col.PrimaryKey:
			if n.ID != nil {
				return nil, NewSchemaError(tbl.Name, col.Name, "multiple primary-key columns", nil)
			}
			switch col.Type {
			case field.TypeInt32, field.TypeInt64, field.TypeString, field.TypeUUID:
			default:
				return nil, NewSchemaError(tbl.Name, col.Name, "unsupported primary-key type "+col.Type.String(), nil)
			}
			n.ID = f
		case col.Ref != nil:
			// Resolved to a *Type in resolveEdges.
			n.ForeignKeys = append(n.ForeignKeys, &ForeignKey{Field: f, RefColumn: col.Ref.Column})
		case g.auditName(col.Name):
			// Supplied by the shared base type in every target.
		default:
			n.Fields = append(n.Fields, f)
		}
	}
	if n.ID == nil {
		// Implicit primary key.
		n.ID = &Field{Name: "id", Type: g.IDType}
	}
	for _, uq := range tbl.Uniques {
		for _, col := range uq {
			if !seen[col] {
				return nil, NewSchemaError(tbl.Name, col, "unique constraint references unknown column", nil)
			}
		}
	}
	return n, nil
}

// resolveEdges emits one ManyToOne edge per foreign key and its
// inverse OneToMany edge on the referenced type.
func (g *Graph) resolveEdges() error {
	for _, n := range g.Nodes {
		for _, fk := range n.ForeignKeys {
			ref := fk.Field.def.Ref
			target, ok := g.nodes[ref.Table]
			if !ok {
				return NewSchemaError(n.Name, fk.Field.Name, "foreign key references unknown table "+ref.Table, nil)
			}
			fk.RefTable = target
			switch {
			case fk.RefColumn == "":
				fk.RefColumn = target.ID.Name
			case target.table.Column(fk.RefColumn) == nil && fk.RefColumn != target.ID.Name:
				return NewRelationError(n.Name, target.Name, fk.Field.Name,
					"foreign key references unknown column "+ref.Table+"."+fk.RefColumn, nil)
			}
			// The FK column and the referenced column must carry the
			// same type, or every target would disagree with its own
			// migration about the column.
			refType := target.ID.Type
			if fk.RefColumn != target.ID.Name {
				refType = target.table.Column(fk.RefColumn).Type
			}
			switch {
			case !fk.Field.Type.Valid():
				fk.Field.Type = refType
			case fk.Field.Type != refType:
				return NewRelationError(n.Name, target.Name, fk.Field.Name,
					"foreign key type "+fk.Field.Type.String()+" does not match referenced column "+
						target.Name+"."+fk.RefColumn+" of type "+refType.String(), nil)
			}
			assoc := &Edge{
				Name:   edgeName(fk.Field.Name, target),
				Type:   target,
				Owner:  n,
				Rel:    ManyToOne,
				Column: fk.Field.Name,
			}
			inverseName := n.PluralName()
			if hasEdge(target, inverseName) {
				// Second foreign key to the same table; qualify the
				// inverse with the owning edge name to keep names
				// unique ("billing_address" -> "billing_address_orders").
				inverseName = assoc.Name + "_" + inverseName
			}
			inverse := &Edge{
				Name:   inverseName,
				Type:   n,
				Owner:  n,
				Rel:    OneToMany,
				Column: fk.Field.Name,
				Ref:    assoc,
			}
			assoc.Ref = inverse
			n.Edges = append(n.Edges, assoc)
			target.Edges = append(target.Edges, inverse)
		}
	}
	return nil
}

// reclassifyJunctions rewrites each pure junction table (primary key,
// exactly two foreign keys to distinct tables, only audit columns
// otherwise) as a single ManyToMany relationship between the two
// referenced tables. A table matching the shape but carrying business
// columns beyond the two foreign keys is NOT reclassified: dropping it
// would silently lose those columns in every target.
func (g *Graph) reclassifyJunctions() {
	for _, n := range g.Nodes {
		if len(n.Fields) != 0 || len(n.ForeignKeys) != 2 {
			continue
		}
		a, b := n.ForeignKeys[0], n.ForeignKeys[1]
		if a.RefTable == b.RefTable {
			continue
		}
		n.JoinTable = true
		dropEdges(a.RefTable, n)
		dropEdges(b.RefTable, n)
		n.Edges = nil
		ab := &Edge{
			Name:           b.RefTable.PluralName(),
			Type:           b.RefTable,
			Owner:          a.RefTable,
			Rel:            ManyToMany,
			Through:        n.Name,
			ThroughColumns: [2]string{a.Field.Name, b.Field.Name},
		}
		ba := &Edge{
			Name:           a.RefTable.PluralName(),
			Type:           a.RefTable,
			Owner:          b.RefTable,
			Rel:            ManyToMany,
			Through:        n.Name,
			ThroughColumns: [2]string{b.Field.Name, a.Field.Name},
			Ref:            ab,
		}
		ab.Ref = ba
		a.RefTable.Edges = append(a.RefTable.Edges, ab)
		b.RefTable.Edges = append(b.RefTable.Edges, ba)
	}
}

// hasEdge reports if the node already holds an edge with this name.
func hasEdge(n *Type, name string) bool {
	for _, e := range n.Edges {
		if e.Name == name {
			return true
		}
	}
	return false
}

// dropEdges removes the OneToMany edges pointing at the junction table
// from the given node.
func dropEdges(n *Type, junction *Type) {
	edges := n.Edges[:0]
	for _, e := range n.Edges {
		if e.Rel == OneToMany && e.Type == junction {
			continue
		}
		edges = append(edges, e)
	}
	n.Edges = edges
}

// edgeName derives the ManyToOne edge name from its column: the "_id"
// suffix is stripped when present ("category_id" -> "category"),
// otherwise the singular name of the referenced table is used.
func edgeName(column string, target *Type) string {
	if name := strings.TrimSuffix(column, "_id"); name != column && name != "" {
		return name
	}
	return target.SingularName()
}

// MigrationOrder returns every node (junction tables included) sorted
// so that a table is created after the tables its foreign keys
// reference. Ties and dependency cycles fall back to table-name order,
// keeping the output deterministic.
func (g *Graph) MigrationOrder() []*Type {
	indeg := make(map[*Type]int, len(g.Nodes))
	deps := make(map[*Type][]*Type, len(g.Nodes))
	for _, n := range g.Nodes {
		indeg[n] = 0
	}
	for _, n := range g.Nodes {
		for _, fk := range n.ForeignKeys {
			if fk.RefTable == n {
				continue // self-reference, no ordering constraint
			}
			deps[fk.RefTable] = append(deps[fk.RefTable], n)
			indeg[n]++
		}
	}
	ready := make([]*Type, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		if indeg[n] == 0 {
			ready = append(ready, n)
		}
	}
	byName := func(ns []*Type) {
		sort.Slice(ns, func(i, j int) bool { return ns[i].Name < ns[j].Name })
	}
	byName(ready)
	order := make([]*Type, 0, len(g.Nodes))
	for len(ready) > 0 {
		n := ready[0]
		ready = ready[1:]
		order = append(order, n)
		var next []*Type
		for _, d := range deps[n] {
			indeg[d]--
			if indeg[d] == 0 {
				next = append(next, d)
			}
		}
		byName(next)
		ready = append(ready, next...)
	}
	if len(order) < len(g.Nodes) {
		// Dependency cycle: append the remainder in name order.
		var rest []*Type
		for _, n := range g.Nodes {
			if indeg[n] > 0 {
				rest = append(rest, n)
			}
		}
		byName(rest)
		order = append(order, rest...)
	}
	return order
}
