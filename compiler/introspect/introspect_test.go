package introspect

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemaforge/schemaforge/schema"
	"github.com/schemaforge/schemaforge/schema/field"
)

func TestDriverValid(t *testing.T) {
	assert.True(t, Postgres.Valid())
	assert.True(t, MySQL.Valid())
	assert.True(t, SQLite.Valid())
	assert.False(t, Driver("oracle").Valid())
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), Driver("oracle"), "dsn")
	assert.Error(t, err)
}

func TestColumnType(t *testing.T) {
	tests := []struct {
		dbType   string
		expected field.Type
	}{
		{"integer", field.TypeInt32},
		{"int", field.TypeInt32},
		{"serial", field.TypeInt32},
		{"bigint", field.TypeInt64},
		{"bigserial", field.TypeInt64},
		{"real", field.TypeFloat32},
		{"double precision", field.TypeFloat64},
		{"numeric", field.TypeDecimal},
		{"decimal(10,2)", field.TypeDecimal},
		{"boolean", field.TypeBool},
		{"tinyint(1)", field.TypeBool},
		{"tinyint", field.TypeBool},
		{"character varying", field.TypeString},
		{"varchar(255)", field.TypeString},
		{"text", field.TypeString},
		{"enum('a','b')", field.TypeString},
		{"bytea", field.TypeBytes},
		{"blob", field.TypeBytes},
		{"date", field.TypeDate},
		{"timestamp without time zone", field.TypeDateTime},
		{"datetime", field.TypeDateTime},
		{"timestamp with time zone", field.TypeInstant},
		{"timestamptz", field.TypeInstant},
		{"time", field.TypeTime},
		{"interval", field.TypeDuration},
		{"uuid", field.TypeUUID},
		{"VARCHAR(64)", field.TypeString},
	}
	for _, tt := range tests {
		t.Run(tt.dbType, func(t *testing.T) {
			typ, err := columnType(tt.dbType)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, typ)
		})
	}

	_, err := columnType("geometry")
	assert.Error(t, err)
}

func TestNormalizeDefault(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
	}{
		{"", ""},
		{"nextval('products_id_seq'::regclass)", ""},
		{"NULL", ""},
		{"now()", "now"},
		{"CURRENT_TIMESTAMP", "now"},
		{"current_timestamp()", "now"},
		{"'draft'::character varying", "draft"},
		{"'draft'", "draft"},
		{"0", "0"},
		{"true", "true"},
		{"FALSE", "false"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalizeDefault(tt.raw))
		})
	}
}

func TestAddUnique(t *testing.T) {
	tbl := &schema.Table{
		Name: "products",
		Columns: []*schema.Column{
			{Name: "sku", Type: field.TypeString},
			{Name: "name", Type: field.TypeString},
		},
	}
	addUnique(tbl, []string{"sku"})
	assert.True(t, tbl.Column("sku").Unique)
	assert.Empty(t, tbl.Uniques)

	addUnique(tbl, []string{"name", "sku"})
	assert.Equal(t, [][]string{{"name", "sku"}}, tbl.Uniques)
}

func TestInspectPostgres(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM information_schema\.tables`).
		WithArgs("public").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow("products"))

	mock.ExpectQuery(`FROM information_schema\.columns`).
		WithArgs("public", "products").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "data_type", "udt_name", "is_nullable", "column_default"}).
			AddRow("id", "bigint", "int8", "NO", "nextval('products_id_seq'::regclass)").
			AddRow("sku", "character varying", "varchar", "NO", nil).
			AddRow("price", "numeric", "numeric", "NO", "0").
			AddRow("status", "USER-DEFINED", "product_status", "NO", "'draft'::product_status").
			AddRow("category_id", "bigint", "int8", "YES", nil))

	mock.ExpectQuery(`constraint_type = 'PRIMARY KEY'`).
		WithArgs("public", "products").
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}).AddRow("id"))

	mock.ExpectQuery(`constraint_type = 'FOREIGN KEY'`).
		WithArgs("public", "products").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "table_name", "column_name"}).
			AddRow("category_id", "categories", "id"))

	mock.ExpectQuery(`constraint_type = 'UNIQUE'`).
		WithArgs("public", "products").
		WillReturnRows(sqlmock.NewRows([]string{"constraint_name", "column_name"}).
			AddRow("uq_products_sku", "sku"))

	sc, err := NewInspector(db, Postgres, "").Inspect(context.Background())
	require.NoError(t, err)
	require.Len(t, sc.Tables, 1)

	tbl := sc.Tables[0]
	assert.Equal(t, "products", tbl.Name)
	require.Len(t, tbl.Columns, 5)

	id := tbl.Column("id")
	assert.True(t, id.PrimaryKey)
	assert.Equal(t, field.TypeInt64, id.Type)
	// Sequence defaults are dropped.
	assert.Empty(t, id.Default)

	sku := tbl.Column("sku")
	assert.Equal(t, field.TypeString, sku.Type)
	assert.True(t, sku.Unique)

	assert.Equal(t, "0", tbl.Column("price").Default)

	// Enum columns degrade to strings, with the cast stripped off the default.
	status := tbl.Column("status")
	assert.Equal(t, field.TypeString, status.Type)
	assert.Equal(t, "draft", status.Default)

	fk := tbl.Column("category_id")
	assert.True(t, fk.Nullable)
	require.NotNil(t, fk.Ref)
	assert.Equal(t, "categories", fk.Ref.Table)
	assert.Equal(t, "id", fk.Ref.Column)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInspectPostgresNamedTables(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	// No table listing happens when tables are named explicitly.
	mock.ExpectQuery(`FROM information_schema\.columns`).
		WithArgs("sales", "orders").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "data_type", "udt_name", "is_nullable", "column_default"}).
			AddRow("total", "numeric", "numeric", "NO", nil))
	mock.ExpectQuery(`constraint_type = 'PRIMARY KEY'`).
		WithArgs("sales", "orders").
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}))
	mock.ExpectQuery(`constraint_type = 'FOREIGN KEY'`).
		WithArgs("sales", "orders").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "table_name", "column_name"}))
	mock.ExpectQuery(`constraint_type = 'UNIQUE'`).
		WithArgs("sales", "orders").
		WillReturnRows(sqlmock.NewRows([]string{"constraint_name", "column_name"}))

	sc, err := NewInspector(db, Postgres, "sales").Inspect(context.Background(), "orders")
	require.NoError(t, err)
	require.Len(t, sc.Tables, 1)
	assert.Equal(t, "orders", sc.Tables[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInspectPostgresArrayColumnFails(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM information_schema\.columns`).
		WithArgs("public", "events").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "data_type", "udt_name", "is_nullable", "column_default"}).
			AddRow("labels", "ARRAY", "_text", "YES", nil))

	_, err = NewInspector(db, Postgres, "").Inspect(context.Background(), "events")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "array types are not supported")
}

func TestInspectMySQL(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM information_schema\.columns`).
		WithArgs("orders").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "column_type", "is_nullable", "column_default", "column_key"}).
			AddRow("id", "bigint", "NO", nil, "PRI").
			AddRow("is_paid", "tinyint(1)", "NO", "0", "").
			AddRow("customer_id", "bigint", "NO", nil, "MUL"))

	mock.ExpectQuery(`FROM information_schema\.key_column_usage`).
		WithArgs("orders").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "referenced_table_name", "referenced_column_name"}).
			AddRow("customer_id", "customers", "id"))

	mock.ExpectQuery(`FROM information_schema\.statistics`).
		WithArgs("orders").
		WillReturnRows(sqlmock.NewRows([]string{"index_name", "column_name"}))

	sc, err := NewInspector(db, MySQL, "").Inspect(context.Background(), "orders")
	require.NoError(t, err)
	require.Len(t, sc.Tables, 1)

	tbl := sc.Tables[0]
	assert.True(t, tbl.Column("id").PrimaryKey)
	assert.Equal(t, field.TypeBool, tbl.Column("is_paid").Type)
	require.NotNil(t, tbl.Column("customer_id").Ref)
	assert.Equal(t, "customers", tbl.Column("customer_id").Ref.Table)
	assert.NoError(t, mock.ExpectationsWereMet())
}
