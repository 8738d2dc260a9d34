package introspect

import (
	"context"
	"fmt"

	"github.com/schemaforge/schemaforge/schema"
)

// mysqlSchemaExpr returns the schema predicate and its arguments; when
// no schema was configured the current database is used.
func (i *Inspector) mysqlSchemaExpr() (string, []any) {
	if i.schema != "" {
		return "?", []any{i.schema}
	}
	return "DATABASE()", nil
}

func (i *Inspector) mysqlTableNames(ctx context.Context) ([]string, error) {
	expr, args := i.mysqlSchemaExpr()
	q := fmt.Sprintf(`
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = %s AND table_type = 'BASE TABLE'
		ORDER BY table_name`, expr)
	return scanStrings(i.db.QueryContext(ctx, q, args...))
}

func (i *Inspector) mysqlTable(ctx context.Context, name string) (*schema.Table, error) {
	tbl := &schema.Table{Name: name}
	if err := i.mysqlColumns(ctx, tbl); err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}
	if err := i.mysqlForeignKeys(ctx, tbl); err != nil {
		return nil, fmt.Errorf("foreign keys: %w", err)
	}
	if err := i.mysqlIndexes(ctx, tbl); err != nil {
		return nil, fmt.Errorf("indexes: %w", err)
	}
	return tbl, nil
}

func (i *Inspector) mysqlColumns(ctx context.Context, tbl *schema.Table) error {
	expr, args := i.mysqlSchemaExpr()
	q := fmt.Sprintf(`
		SELECT column_name, column_type, is_nullable, column_default, column_key
		FROM information_schema.columns
		WHERE table_schema = %s AND table_name = ?
		ORDER BY ordinal_position`, expr)
	rows, err := i.db.QueryContext(ctx, q, append(args, tbl.Name)...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			name, colType, nullable, key string
			def                          *string
		)
		if err := rows.Scan(&name, &colType, &nullable, &def, &key); err != nil {
			return err
		}
		t, err := columnType(colType)
		if err != nil {
			return fmt.Errorf("column %s: %w", name, err)
		}
		col := &schema.Column{
			Name:       name,
			Type:       t,
			Nullable:   nullable == "YES",
			PrimaryKey: key == "PRI",
		}
		if def != nil {
			col.Default = normalizeDefault(*def)
		}
		tbl.Columns = append(tbl.Columns, col)
	}
	return rows.Err()
}

func (i *Inspector) mysqlForeignKeys(ctx context.Context, tbl *schema.Table) error {
	expr, args := i.mysqlSchemaExpr()
	q := fmt.Sprintf(`
		SELECT column_name, referenced_table_name, referenced_column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = %s AND table_name = ?
			AND referenced_table_name IS NOT NULL
		ORDER BY ordinal_position`, expr)
	rows, err := i.db.QueryContext(ctx, q, append(args, tbl.Name)...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var column, refTable, refColumn string
		if err := rows.Scan(&column, &refTable, &refColumn); err != nil {
			return err
		}
		markForeignKey(tbl, column, refTable, refColumn)
	}
	return rows.Err()
}

// mysqlIndexes reads the unique indexes; the PRIMARY index is skipped
// since the key columns are already marked.
func (i *Inspector) mysqlIndexes(ctx context.Context, tbl *schema.Table) error {
	expr, args := i.mysqlSchemaExpr()
	q := fmt.Sprintf(`
		SELECT index_name, column_name
		FROM information_schema.statistics
		WHERE table_schema = %s AND table_name = ?
			AND non_unique = 0 AND index_name <> 'PRIMARY'
		ORDER BY index_name, seq_in_index`, expr)
	rows, err := i.db.QueryContext(ctx, q, append(args, tbl.Name)...)
	if err != nil {
		return err
	}
	defer rows.Close()
	groups, order, err := scanConstraintColumns(rows)
	if err != nil {
		return err
	}
	for _, name := range order {
		addUnique(tbl, groups[name])
	}
	return nil
}
