package introspect

import (
	"context"
	"fmt"

	"github.com/schemaforge/schemaforge/schema"
)

func (i *Inspector) sqliteTableNames(ctx context.Context) ([]string, error) {
	const q = `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name`
	return scanStrings(i.db.QueryContext(ctx, q))
}

func (i *Inspector) sqliteTable(ctx context.Context, name string) (*schema.Table, error) {
	tbl := &schema.Table{Name: name}
	if err := i.sqliteColumns(ctx, tbl); err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}
	if err := i.sqliteForeignKeys(ctx, tbl); err != nil {
		return nil, fmt.Errorf("foreign keys: %w", err)
	}
	if err := i.sqliteIndexes(ctx, tbl); err != nil {
		return nil, fmt.Errorf("indexes: %w", err)
	}
	return tbl, nil
}

func (i *Inspector) sqliteColumns(ctx context.Context, tbl *schema.Table) error {
	rows, err := i.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%q)", tbl.Name))
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			cid, notNull, pk int
			name, colType    string
			def              *string
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &def, &pk); err != nil {
			return err
		}
		t, err := columnType(colType)
		if err != nil {
			return fmt.Errorf("column %s: %w", name, err)
		}
		col := &schema.Column{
			Name:       name,
			Type:       t,
			Nullable:   notNull == 0 && pk == 0,
			PrimaryKey: pk > 0,
		}
		if def != nil {
			col.Default = normalizeDefault(*def)
		}
		tbl.Columns = append(tbl.Columns, col)
	}
	return rows.Err()
}

func (i *Inspector) sqliteForeignKeys(ctx context.Context, tbl *schema.Table) error {
	rows, err := i.db.QueryContext(ctx, fmt.Sprintf("PRAGMA foreign_key_list(%q)", tbl.Name))
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id, seq                      int
			refTable, from               string
			to                           *string
			onUpdate, onDelete, matching string
		)
		if err := rows.Scan(&id, &seq, &refTable, &from, &to, &onUpdate, &onDelete, &matching); err != nil {
			return err
		}
		refColumn := "id"
		if to != nil {
			refColumn = *to
		}
		markForeignKey(tbl, from, refTable, refColumn)
	}
	return rows.Err()
}

// sqliteIndexes reads the unique indexes through the index_list and
// index_info pragmas.
func (i *Inspector) sqliteIndexes(ctx context.Context, tbl *schema.Table) error {
	rows, err := i.db.QueryContext(ctx, fmt.Sprintf("PRAGMA index_list(%q)", tbl.Name))
	if err != nil {
		return err
	}
	type index struct {
		name   string
		unique bool
		origin string
	}
	var indexes []index
	for rows.Next() {
		var (
			seq, unique, partial int
			name, origin         string
		)
		if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			rows.Close()
			return err
		}
		indexes = append(indexes, index{name: name, unique: unique == 1, origin: origin})
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()
	for _, idx := range indexes {
		// pk-origin indexes duplicate the primary key.
		if !idx.unique || idx.origin == "pk" {
			continue
		}
		cols, err := i.sqliteIndexColumns(ctx, idx.name)
		if err != nil {
			return err
		}
		addUnique(tbl, cols)
	}
	return nil
}

func (i *Inspector) sqliteIndexColumns(ctx context.Context, index string) ([]string, error) {
	rows, err := i.db.QueryContext(ctx, fmt.Sprintf("PRAGMA index_info(%q)", index))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var cols []string
	for rows.Next() {
		var seqno, cid int
		var name string
		if err := rows.Scan(&seqno, &cid, &name); err != nil {
			return nil, err
		}
		cols = append(cols, name)
	}
	return cols, rows.Err()
}
