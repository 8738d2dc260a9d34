package introspect

import (
	"context"
	"fmt"

	"github.com/schemaforge/schemaforge/schema"
)

func (i *Inspector) postgresSchema() string {
	if i.schema != "" {
		return i.schema
	}
	return "public"
}

func (i *Inspector) postgresTableNames(ctx context.Context) ([]string, error) {
	const q = `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1 AND table_type = 'BASE TABLE'
		ORDER BY table_name`
	return scanStrings(i.db.QueryContext(ctx, q, i.postgresSchema()))
}

func (i *Inspector) postgresTable(ctx context.Context, name string) (*schema.Table, error) {
	tbl := &schema.Table{Name: name}
	if err := i.postgresColumns(ctx, tbl); err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}
	if err := i.postgresPrimaryKey(ctx, tbl); err != nil {
		return nil, fmt.Errorf("primary key: %w", err)
	}
	if err := i.postgresForeignKeys(ctx, tbl); err != nil {
		return nil, fmt.Errorf("foreign keys: %w", err)
	}
	if err := i.postgresUniques(ctx, tbl); err != nil {
		return nil, fmt.Errorf("uniques: %w", err)
	}
	return tbl, nil
}

func (i *Inspector) postgresColumns(ctx context.Context, tbl *schema.Table) error {
	const q = `
		SELECT c.column_name, c.data_type, c.udt_name, c.is_nullable, c.column_default
		FROM information_schema.columns c
		WHERE c.table_schema = $1 AND c.table_name = $2
		ORDER BY c.ordinal_position`
	rows, err := i.db.QueryContext(ctx, q, i.postgresSchema(), tbl.Name)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			name, dataType, udtName, nullable string
			def                               *string
		)
		if err := rows.Scan(&name, &dataType, &udtName, &nullable, &def); err != nil {
			return err
		}
		// USER-DEFINED covers enum types, which degrade to strings.
		if dataType == "USER-DEFINED" {
			dataType = "text"
		} else if dataType == "ARRAY" {
			return fmt.Errorf("column %s: array types are not supported", name)
		}
		t, err := columnType(dataType)
		if err != nil {
			return fmt.Errorf("column %s: %w", name, err)
		}
		col := &schema.Column{Name: name, Type: t, Nullable: nullable == "YES"}
		if def != nil {
			col.Default = normalizeDefault(*def)
		}
		tbl.Columns = append(tbl.Columns, col)
	}
	return rows.Err()
}

func (i *Inspector) postgresPrimaryKey(ctx context.Context, tbl *schema.Table) error {
	const q = `
		SELECT kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		WHERE tc.constraint_type = 'PRIMARY KEY'
			AND tc.table_schema = $1 AND tc.table_name = $2
		ORDER BY kcu.ordinal_position`
	cols, err := scanStrings(i.db.QueryContext(ctx, q, i.postgresSchema(), tbl.Name))
	if err != nil {
		return err
	}
	markPrimaryKey(tbl, cols)
	return nil
}

func (i *Inspector) postgresForeignKeys(ctx context.Context, tbl *schema.Table) error {
	const q = `
		SELECT kcu.column_name, ccu.table_name, ccu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		JOIN information_schema.constraint_column_usage ccu
			ON ccu.constraint_name = tc.constraint_name
			AND ccu.table_schema = tc.table_schema
		WHERE tc.constraint_type = 'FOREIGN KEY'
			AND tc.table_schema = $1 AND tc.table_name = $2
		ORDER BY kcu.ordinal_position`
	rows, err := i.db.QueryContext(ctx, q, i.postgresSchema(), tbl.Name)
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

func (i *Inspector) postgresUniques(ctx context.Context, tbl *schema.Table) error {
	const q = `
		SELECT tc.constraint_name, kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		WHERE tc.constraint_type = 'UNIQUE'
			AND tc.table_schema = $1 AND tc.table_name = $2
		ORDER BY tc.constraint_name, kcu.ordinal_position`
	rows, err := i.db.QueryContext(ctx, q, i.postgresSchema(), tbl.Name)
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
