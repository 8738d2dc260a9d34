package gen

import (
	"context"
	"path"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Generate runs the full orchestration: for every (table, target,
// artifact kind) triple it invokes the matching generator and collects
// the output under a target-prefixed relative path. The relationship
// resolution already happened in NewGraph, so generation is
// embarrassingly parallel across (table, target) pairs.
//
// Output is deterministic: the same graph and targets produce a
// byte-identical file set.
func Generate(ctx context.Context, g *Graph, targets ...Target) (*FileSet, error) {
	if len(targets) == 0 {
		return nil, NewConfigError("Targets", nil, "no targets selected")
	}
	seen := make(map[string]bool, len(targets))
	for _, tgt := range targets {
		if seen[tgt.Name()] {
			return nil, NewConfigError("Targets", tgt.Name(), "duplicate target")
		}
		seen[tgt.Name()] = true
		if err := CheckMapper(tgt); err != nil {
			return nil, err
		}
	}

	// Migration sequence numbers are a graph-level concern, computed
	// once before fan-out.
	seq := make(map[*Type]int, len(g.Nodes))
	for i, n := range g.MigrationOrder() {
		seq[n] = i + 1
	}

	fs := NewFileSet()
	workers := g.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	for _, tgt := range targets {
		if pg, ok := tgt.(ProjectGenerator); ok {
			eg.Go(func() error {
				files, err := pg.GenProject(g)
				if err != nil {
					return &GenerationError{Target: tgt.Name(), Artifact: "project", Cause: err}
				}
				return addAll(fs, tgt.Name(), files...)
			})
		}
		for _, n := range g.Nodes {
			eg.Go(func() error {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
				files, err := generateNode(tgt, n, seq[n])
				if err != nil {
					return err
				}
				return addAll(fs, tgt.Name(), files...)
			})
		}
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return fs, nil
}

// generateNode produces every artifact of one (table, target) pair.
// Pure junction tables only receive a migration: the join table must
// exist in the database even though no entity is generated for it.
func generateNode(tgt Target, n *Type, seq int) ([]*File, error) {
	type artifact struct {
		kind string
		gen  func(*Type) (*File, error)
	}
	var files []*File
	run := func(kind string, gen func(*Type) (*File, error)) error {
		f, err := gen(n)
		if err != nil {
			return &GenerationError{Target: tgt.Name(), Artifact: kind, Cause: err}
		}
		files = append(files, f)
		return nil
	}
	if err := run("migration", func(n *Type) (*File, error) { return tgt.GenMigration(n, seq) }); err != nil {
		return nil, err
	}
	if n.JoinTable {
		return files, nil
	}
	for _, a := range []artifact{
		{"entity", tgt.GenEntity},
		{"dto", tgt.GenDTO},
		{"mapper", tgt.GenMapper},
		{"repository", tgt.GenRepository},
		{"service", tgt.GenService},
		{"controller", tgt.GenController},
	} {
		if err := run(a.kind, a.gen); err != nil {
			return nil, err
		}
	}
	return files, nil
}

func addAll(fs *FileSet, target string, files ...*File) error {
	for _, f := range files {
		if f == nil {
			continue
		}
		if err := fs.Add(&File{Path: path.Join(target, f.Path), Body: f.Body}); err != nil {
			return err
		}
	}
	return nil
}
