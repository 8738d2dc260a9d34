package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/schemaforge/schemaforge/compiler/gen"
)

var (
	snapshotOut  string
	snapshotFile string
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Write a schema fingerprint file for drift detection",
	RunE:  runSnapshot,
}

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Compare the current schema against a previous snapshot",
	RunE:  runDiff,
}

func init() {
	snapshotCmd.Flags().StringVarP(&snapshotOut, "out", "o", "schemaforge.lock", "snapshot output file")
	diffCmd.Flags().StringVar(&snapshotFile, "against", "schemaforge.lock", "snapshot file to compare against")
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(diffCmd)
}

func currentSnapshot(cmd *cobra.Command) (*gen.Snapshot, error) {
	sc, err := loadSchema(cmd.Context())
	if err != nil {
		return nil, err
	}
	// The base package has no bearing on the fingerprint; any valid
	// value lets the graph resolve.
	cfg, err := gen.NewConfig(gen.WithBasePackage("com.example.app"))
	if err != nil {
		return nil, err
	}
	graph, err := gen.NewGraph(cfg, sc)
	if err != nil {
		return nil, err
	}
	return gen.Take(graph), nil
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	snap, err := currentSnapshot(cmd)
	if err != nil {
		return err
	}
	data, err := snap.Encode()
	if err != nil {
		return err
	}
	if err := os.WriteFile(snapshotOut, data, 0o644); err != nil {
		return err
	}
	logger.Info("snapshot written",
		zap.String("file", snapshotOut),
		zap.Int("tables", len(snap.Tables)))
	return nil
}

func runDiff(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(snapshotFile)
	if err != nil {
		return err
	}
	old, err := gen.DecodeSnapshot(data)
	if err != nil {
		return err
	}
	cur, err := currentSnapshot(cmd)
	if err != nil {
		return err
	}
	drift := gen.Diff(old, cur)
	if len(drift) == 0 {
		logger.Info("no schema drift")
		return nil
	}
	for _, line := range drift {
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}
	return fmt.Errorf("schema drifted from %s (%d changes)", snapshotFile, len(drift))
}
