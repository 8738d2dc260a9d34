package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/schemaforge/schemaforge/compiler/gen"
	"github.com/schemaforge/schemaforge/compiler/gen/golang"
	"github.com/schemaforge/schemaforge/compiler/gen/java"
	"github.com/schemaforge/schemaforge/compiler/gen/python"
	"github.com/schemaforge/schemaforge/compiler/gen/typescript"
)

var (
	outDir      string
	targetNames []string
	basePackage string
	fileHeader  string
	idType      string
	workers     int
	watch       bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate project artifacts for the selected targets",
	RunE:  runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.StringVarP(&outDir, "out", "o", "gen", "output directory")
	f.StringSliceVar(&targetNames, "target", []string{"java"}, "targets to generate (java, python, typescript, golang)")
	f.StringVarP(&basePackage, "package", "p", "com.example.app", "base package in reverse-domain notation")
	f.StringVar(&fileHeader, "file-header", "Code generated by schemaforge. DO NOT EDIT.", "header comment for generated files")
	f.StringVar(&idType, "id-type", "int64", "primary key type (int32, int64, string, uuid)")
	f.IntVar(&workers, "workers", 0, "generation parallelism (0 = number of CPUs)")
	f.BoolVarP(&watch, "watch", "w", false, "watch the schema file and regenerate on change")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	targets, err := buildTargets(cfg)
	if err != nil {
		return err
	}
	if err := generateOnce(ctx, cfg, targets); err != nil {
		return err
	}
	if !watch {
		return nil
	}
	if schemaFile == "" {
		return fmt.Errorf("--watch requires --schema")
	}
	return watchSchema(ctx, cfg, targets)
}

func buildConfig() (*gen.Config, error) {
	return gen.NewConfig(
		gen.WithBasePackage(basePackage),
		gen.WithHeader(fileHeader),
		gen.WithIDType(idType),
		gen.WithWorkers(workers),
	)
}

func buildTargets(cfg *gen.Config) ([]gen.Target, error) {
	targets := make([]gen.Target, 0, len(targetNames))
	for _, name := range targetNames {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "java":
			targets = append(targets, java.NewTarget(cfg))
		case "python":
			targets = append(targets, python.NewTarget(cfg))
		case "typescript", "ts":
			targets = append(targets, typescript.NewTarget(cfg))
		case "golang", "go":
			targets = append(targets, golang.NewTarget(cfg))
		default:
			return nil, fmt.Errorf("unknown target %q", name)
		}
	}
	return targets, nil
}

func generateOnce(ctx context.Context, cfg *gen.Config, targets []gen.Target) error {
	start := time.Now()
	sc, err := loadSchema(ctx)
	if err != nil {
		return err
	}
	graph, err := gen.NewGraph(cfg, sc)
	if err != nil {
		return err
	}
	files, err := gen.Generate(ctx, graph, targets...)
	if err != nil {
		return err
	}
	if err := writeFileSet(files, outDir); err != nil {
		return err
	}
	logger.Info("generation complete",
		zap.Int("tables", len(graph.Nodes)),
		zap.Int("files", files.Len()),
		zap.String("out", outDir),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

func writeFileSet(files *gen.FileSet, dir string) error {
	for _, f := range files.Files() {
		dst := filepath.Join(dir, filepath.FromSlash(f.Path))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(dst, f.Body, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", dst, err)
		}
		logger.Debug("wrote file", zap.String("path", dst))
	}
	return nil
}

// watchSchema regenerates whenever the schema document changes. Editors
// often replace the file instead of writing in place, so the watcher
// tracks the parent directory and re-adds the file after rename events.
func watchSchema(ctx context.Context, cfg *gen.Config, targets []gen.Target) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			logger.Warn("close watcher", zap.Error(err))
		}
	}()

	abs, err := filepath.Abs(schemaFile)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return err
	}
	logger.Info("watching schema", zap.String("file", abs))

	// Debounce: editors fire multiple events per save.
	var timer *time.Timer
	pending := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(200*time.Millisecond, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})
		case <-pending:
			logger.Info("schema changed, regenerating")
			if err := generateOnce(ctx, cfg, targets); err != nil {
				logger.Error("generation failed", zap.Error(err))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", zap.Error(err))
		}
	}
}
