package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/schemaforge/schemaforge/compiler/load"
)

var inspectOut string

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Dump a live database schema as a YAML document",
	Long: `Inspect connects to a database, reverse-engineers its tables into
the canonical schema model and prints the result as YAML. The output
can be edited and fed back through --schema.`,
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().StringVarP(&inspectOut, "out", "o", "", "write YAML to a file instead of stdout")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	if schemaFile != "" {
		return fmt.Errorf("inspect reads from a database; use --db-url, --mysql-url or --sqlite")
	}
	sc, err := loadSchema(cmd.Context())
	if err != nil {
		return err
	}
	data, err := load.Marshal(sc)
	if err != nil {
		return err
	}
	if inspectOut == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(inspectOut, data, 0o644); err != nil {
		return err
	}
	logger.Info("schema written",
		zap.String("file", inspectOut),
		zap.Int("tables", len(sc.Tables)))
	return nil
}
