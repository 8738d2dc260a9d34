// Package introspect reads a canonical schema out of a live database.
// PostgreSQL, MySQL and SQLite are supported; the extracted schema
// feeds gen.NewGraph the same way a parsed schema file does.
package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	// Database drivers registered for Open.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/schemaforge/schemaforge/schema"
	"github.com/schemaforge/schemaforge/schema/field"
)

// Driver identifies a supported database engine.
type Driver string

// Supported engines.
const (
	Postgres Driver = "postgres"
	MySQL    Driver = "mysql"
	SQLite   Driver = "sqlite"
)

// Valid reports if the driver is supported.
func (d Driver) Valid() bool {
	switch d {
	case Postgres, MySQL, SQLite:
		return true
	default:
		return false
	}
}

// Open opens and verifies a connection for the given driver.
func Open(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	if !driver.Valid() {
		return nil, fmt.Errorf("introspect: unsupported driver %q", driver)
	}
	db, err := sql.Open(string(driver), dsn)
	if err != nil {
		return nil, fmt.Errorf("introspect: open %s: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("introspect: ping %s: %w", driver, err)
	}
	return db, nil
}

// Inspector extracts the schema of one database.
type Inspector struct {
	db     *sql.DB
	driver Driver
	// schema is the namespace tables are read from: the search-path
	// schema on PostgreSQL, the database name on MySQL. Unused on
	// SQLite.
	schema string
}

// NewInspector returns an inspector over an open connection.
func NewInspector(db *sql.DB, driver Driver, schemaName string) *Inspector {
	return &Inspector{db: db, driver: driver, schema: schemaName}
}

// Inspect extracts the named tables, or every base table when none
// are given.
func (i *Inspector) Inspect(ctx context.Context, tables ...string) (*schema.Schema, error) {
	names := tables
	if len(names) == 0 {
		var err error
		if names, err = i.tableNames(ctx); err != nil {
			return nil, fmt.Errorf("introspect: list tables: %w", err)
		}
	}
	s := &schema.Schema{}
	for _, name := range names {
		tbl, err := i.table(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("introspect: table %s: %w", name, err)
		}
		s.Tables = append(s.Tables, tbl)
	}
	return s, nil
}

func (i *Inspector) tableNames(ctx context.Context) ([]string, error) {
	switch i.driver {
	case MySQL:
		return i.mysqlTableNames(ctx)
	case SQLite:
		return i.sqliteTableNames(ctx)
	default:
		return i.postgresTableNames(ctx)
	}
}

func (i *Inspector) table(ctx context.Context, name string) (*schema.Table, error) {
	switch i.driver {
	case MySQL:
		return i.mysqlTable(ctx, name)
	case SQLite:
		return i.sqliteTable(ctx, name)
	default:
		return i.postgresTable(ctx, name)
	}
}

// columnType maps a database type name to the canonical taxonomy.
func columnType(dbType string) (field.Type, error) {
	s := strings.ToLower(strings.TrimSpace(dbType))
	if s == "tinyint(1)" {
		return field.TypeBool, nil
	}
	base := s
	if idx := strings.IndexByte(base, '('); idx > 0 {
		base = base[:idx]
	}
	base = strings.TrimSpace(base)
	switch base {
	case "timestamp with time zone", "timestamptz":
		return field.TypeInstant, nil
	case "timestamp without time zone", "timestamp", "datetime":
		return field.TypeDateTime, nil
	case "time with time zone", "time without time zone", "time":
		return field.TypeTime, nil
	case "interval":
		return field.TypeDuration, nil
	case "character varying", "character", "varchar", "char", "text", "tinytext", "mediumtext", "longtext", "clob", "enum":
		return field.TypeString, nil
	case "smallint", "mediumint", "int", "integer", "serial", "int2", "int4":
		return field.TypeInt32, nil
	case "bigint", "bigserial", "int8":
		return field.TypeInt64, nil
	case "real", "float4", "float":
		return field.TypeFloat32, nil
	case "double precision", "double", "float8":
		return field.TypeFloat64, nil
	case "numeric", "decimal":
		return field.TypeDecimal, nil
	case "boolean", "bool", "tinyint":
		return field.TypeBool, nil
	case "bytea", "blob", "binary", "varbinary", "tinyblob", "mediumblob", "longblob":
		return field.TypeBytes, nil
	case "date":
		return field.TypeDate, nil
	case "uuid":
		return field.TypeUUID, nil
	}
	if t := field.TypeOf(base); t.Valid() {
		return t, nil
	}
	return field.TypeInvalid, fmt.Errorf("unsupported column type %q", dbType)
}

// normalizeDefault reduces a database default expression to the
// canonical hint form. Generated expressions that have no portable
// hint form are dropped.
func normalizeDefault(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" || strings.HasPrefix(strings.ToLower(s), "nextval(") {
		return ""
	}
	// Strip PostgreSQL literal casts: 'draft'::character varying.
	if idx := strings.Index(s, "::"); idx > 0 {
		s = s[:idx]
	}
	switch strings.ToLower(s) {
	case "now()", "current_timestamp", "current_timestamp()":
		return "now"
	case "true", "false":
		return strings.ToLower(s)
	case "null":
		return ""
	}
	return strings.Trim(s, "'")
}

// addUnique records a uniqueness constraint on the table: single
// columns go on the column, composites on the table.
func addUnique(tbl *schema.Table, cols []string) {
	if len(cols) == 1 {
		if c := tbl.Column(cols[0]); c != nil {
			c.Unique = true
		}
		return
	}
	tbl.Uniques = append(tbl.Uniques, cols)
}

func markPrimaryKey(tbl *schema.Table, cols []string) {
	for _, name := range cols {
		if c := tbl.Column(name); c != nil {
			c.PrimaryKey = true
		}
	}
}

func markForeignKey(tbl *schema.Table, column, refTable, refColumn string) {
	if c := tbl.Column(column); c != nil {
		c.Ref = &schema.Reference{Table: refTable, Column: refColumn}
	}
}

// scanStrings collects a single-column result set.
func scanStrings(rows *sql.Rows, err error) ([]string, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// scanConstraintColumns groups (constraint, column) rows by constraint,
// preserving first-seen order.
func scanConstraintColumns(rows *sql.Rows) (map[string][]string, []string, error) {
	groups := make(map[string][]string)
	var order []string
	for rows.Next() {
		var name, column string
		if err := rows.Scan(&name, &column); err != nil {
			return nil, nil, err
		}
		if _, ok := groups[name]; !ok {
			order = append(order, name)
		}
		groups[name] = append(groups[name], column)
	}
	return groups, order, rows.Err()
}
