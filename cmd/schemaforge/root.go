package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/schemaforge/schemaforge/compiler/introspect"
	"github.com/schemaforge/schemaforge/compiler/load"
	"github.com/schemaforge/schemaforge/schema"
)

var (
	logger  *zap.Logger
	verbose bool

	// Schema source flags, shared by every subcommand.
	schemaFile string
	dbURL      string
	mysqlURL   string
	sqlitePath string
	dbSchema   string
	tables     string
)

var rootCmd = &cobra.Command{
	Use:   "schemaforge",
	Short: "Generate multi-language CRUD scaffolds from a database schema",
	Long: `Schemaforge reads a schema - from a YAML document or a live
PostgreSQL, MySQL or SQLite database - resolves its relationships and
generates entity, DTO, mapper, repository, service, controller and
migration artifacts for the selected language targets.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if verbose {
			logger, err = zap.NewDevelopment()
		} else {
			logger, err = zap.NewProduction()
		}
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	pf.StringVar(&schemaFile, "schema", "", "YAML schema document")
	pf.StringVar(&dbURL, "db-url", "", "PostgreSQL connection string")
	pf.StringVar(&mysqlURL, "mysql-url", "", "MySQL connection string")
	pf.StringVar(&sqlitePath, "sqlite", "", "SQLite database file path")
	pf.StringVar(&dbSchema, "db-schema", "", "database schema to introspect (default: public / current database)")
	pf.StringVarP(&tables, "tables", "t", "", "specific tables (comma-separated, optional)")
}

// loadSchema reads the schema from whichever source was selected.
func loadSchema(ctx context.Context) (*schema.Schema, error) {
	sources := 0
	for _, s := range []string{schemaFile, dbURL, mysqlURL, sqlitePath} {
		if s != "" {
			sources++
		}
	}
	if sources == 0 {
		return nil, fmt.Errorf("one of --schema, --db-url, --mysql-url or --sqlite must be specified")
	}
	if sources > 1 {
		return nil, fmt.Errorf("only one of --schema, --db-url, --mysql-url or --sqlite can be specified")
	}
	if schemaFile != "" {
		return load.ParseFile(schemaFile)
	}
	driver, dsn := introspect.Postgres, dbURL
	switch {
	case mysqlURL != "":
		driver, dsn = introspect.MySQL, mysqlURL
	case sqlitePath != "":
		driver, dsn = introspect.SQLite, sqlitePath
	}
	db, err := introspect.Open(ctx, driver, dsn)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn("close database", zap.Error(err))
		}
	}()
	return introspect.NewInspector(db, driver, dbSchema).Inspect(ctx, tableList()...)
}

func tableList() []string {
	if tables == "" {
		return nil
	}
	parts := strings.Split(tables, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
