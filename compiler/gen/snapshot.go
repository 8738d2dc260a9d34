package gen

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

// Snapshot is a compact fingerprint of a resolved graph, written to a
// lock file between runs so schema drift can be detected without
// regenerating. The snapshot never influences generation output.
type Snapshot struct {
	// ID identifies the snapshot instance.
	ID string `msgpack:"id"`
	// Tables holds the fingerprinted nodes, sorted by name.
	Tables []TableSnapshot `msgpack:"tables"`
}

// TableSnapshot fingerprints one node.
type TableSnapshot struct {
	Name      string           `msgpack:"name"`
	JoinTable bool             `msgpack:"join_table"`
	ID        ColumnSnapshot   `msgpack:"id"`
	Columns   []ColumnSnapshot `msgpack:"columns"`
	Edges     []EdgeSnapshot   `msgpack:"edges"`
}

// ColumnSnapshot fingerprints one business column.
type ColumnSnapshot struct {
	Name     string `msgpack:"name"`
	Type     string `msgpack:"type"`
	Nullable bool   `msgpack:"nullable"`
	Unique   bool   `msgpack:"unique"`
}

// EdgeSnapshot fingerprints one relationship edge.
type EdgeSnapshot struct {
	Name    string `msgpack:"name"`
	Kind    string `msgpack:"kind"`
	Target  string `msgpack:"target"`
	Column  string `msgpack:"column,omitempty"`
	Through string `msgpack:"through,omitempty"`
}

// Take fingerprints the graph.
func Take(g *Graph) *Snapshot {
	s := &Snapshot{ID: uuid.NewString()}
	for _, n := range g.Nodes {
		ts := TableSnapshot{
			Name:      n.Name,
			JoinTable: n.JoinTable,
			ID:        columnSnapshot(n.ID),
		}
		for _, f := range n.Fields {
			ts.Columns = append(ts.Columns, columnSnapshot(f))
		}
		for _, e := range n.Edges {
			ts.Edges = append(ts.Edges, EdgeSnapshot{
				Name:    e.Name,
				Kind:    e.Rel.String(),
				Target:  e.Type.Name,
				Column:  e.Column,
				Through: e.Through,
			})
		}
		s.Tables = append(s.Tables, ts)
	}
	sort.Slice(s.Tables, func(i, j int) bool { return s.Tables[i].Name < s.Tables[j].Name })
	return s
}

func columnSnapshot(f *Field) ColumnSnapshot {
	return ColumnSnapshot{
		Name:     f.Name,
		Type:     f.Type.String(),
		Nullable: f.Nullable,
		Unique:   f.Unique,
	}
}

// Encode serializes the snapshot.
func (s *Snapshot) Encode() ([]byte, error) {
	return msgpack.Marshal(s)
}

// DecodeSnapshot deserializes a snapshot written by Encode.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := msgpack.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &s, nil
}

// Diff reports human-readable drift between two snapshots: tables or
// columns added, removed, or changed. An empty result means no drift.
// Snapshot IDs are identity, not content, and are ignored.
func Diff(old, cur *Snapshot) []string {
	var drift []string
	prev := make(map[string]TableSnapshot, len(old.Tables))
	for _, t := range old.Tables {
		prev[t.Name] = t
	}
	seen := make(map[string]bool, len(cur.Tables))
	for _, t := range cur.Tables {
		seen[t.Name] = true
		o, ok := prev[t.Name]
		if !ok {
			drift = append(drift, fmt.Sprintf("table %s added", t.Name))
			continue
		}
		drift = append(drift, diffTable(o, t)...)
	}
	for _, t := range old.Tables {
		if !seen[t.Name] {
			drift = append(drift, fmt.Sprintf("table %s removed", t.Name))
		}
	}
	return drift
}

func diffTable(old, cur TableSnapshot) []string {
	var drift []string
	if old.JoinTable != cur.JoinTable {
		drift = append(drift, fmt.Sprintf("table %s junction classification changed", cur.Name))
	}
	if old.ID != cur.ID {
		drift = append(drift, fmt.Sprintf("table %s primary key changed", cur.Name))
	}
	prev := make(map[string]ColumnSnapshot, len(old.Columns))
	for _, c := range old.Columns {
		prev[c.Name] = c
	}
	seen := make(map[string]bool, len(cur.Columns))
	for _, c := range cur.Columns {
		seen[c.Name] = true
		o, ok := prev[c.Name]
		switch {
		case !ok:
			drift = append(drift, fmt.Sprintf("column %s.%s added", cur.Name, c.Name))
		case o != c:
			drift = append(drift, fmt.Sprintf("column %s.%s changed", cur.Name, c.Name))
		}
	}
	for _, c := range old.Columns {
		if !seen[c.Name] {
			drift = append(drift, fmt.Sprintf("column %s.%s removed", cur.Name, c.Name))
		}
	}
	prevEdges := make(map[string]EdgeSnapshot, len(old.Edges))
	for _, e := range old.Edges {
		prevEdges[e.Name] = e
	}
	seenEdges := make(map[string]bool, len(cur.Edges))
	for _, e := range cur.Edges {
		seenEdges[e.Name] = true
		o, ok := prevEdges[e.Name]
		switch {
		case !ok:
			drift = append(drift, fmt.Sprintf("relation %s.%s added", cur.Name, e.Name))
		case o != e:
			drift = append(drift, fmt.Sprintf("relation %s.%s changed", cur.Name, e.Name))
		}
	}
	for _, e := range old.Edges {
		if !seenEdges[e.Name] {
			drift = append(drift, fmt.Sprintf("relation %s.%s removed", cur.Name, e.Name))
		}
	}
	return drift
}
