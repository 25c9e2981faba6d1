package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/devLucasOAK/lambda-serverless-api/internal/config"
	"github.com/devLucasOAK/lambda-serverless-api/internal/migration"
	"github.com/devLucasOAK/lambda-serverless-api/pkg/server"
)

// migrationTimeout bounds a whole import or export run
const migrationTimeout = 10 * time.Minute

func main() {
	var (
		file    = flag.String("file", "./data/products.json", "JSON file holding an array of products")
		action  = flag.String("action", "import", "Action: check, import, export")
		verbose = flag.Bool("verbose", false, "Enable verbose logging")
		dryRun  = flag.Bool("dry-run", false, "Validate an import without writing to the store")
	)
	flag.Parse()

	logger := logrus.New()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	absFile, err := filepath.Abs(*file)
	if err != nil {
		logger.WithError(err).Fatal("Failed to get absolute file path")
	}

	logger.WithFields(logrus.Fields{
		"file":    absFile,
		"action":  *action,
		"dry_run": *dryRun,
	}).Info("Starting JSON migration tool")

	ctx, cancel := context.WithTimeout(context.Background(), migrationTimeout)
	err = run(ctx, absFile, *action, *dryRun, config.Load, logger, os.Stdout)
	cancel()
	if err != nil {
		logger.WithError(err).Fatal("JSON migration tool failed")
	}

	logger.Info("JSON migration tool completed successfully")
}

// run applies one action. The store configuration is only loaded for
// actions that touch the store, and the container is closed before returning.
func run(ctx context.Context, path, action string, dryRun bool, loadConfig func() (*config.Config, error), logger *logrus.Logger, out io.Writer) error {
	switch action {
	case "check":
		return check(path, logger, out)
	case "import", "export":
	default:
		return fmt.Errorf("unknown action %q, use: check, import, export", action)
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	container, err := server.NewContainer(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize container: %w", err)
	}
	defer container.Close()

	importer := migration.NewProductImporter(container.ProductService, container.Logger, dryRun)

	if action == "export" {
		count, err := importer.ExportFile(ctx, path)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		fmt.Fprintf(out, "Exported %d products to %s\n", count, path)
		return nil
	}

	result, err := importer.ImportFile(ctx, path)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	for _, problem := range result.Errors {
		logger.Warn(problem)
	}
	fmt.Fprintf(out, "Processed %d, imported %d, skipped %d\n", result.Processed, result.Imported, result.Skipped)
	return nil
}

func check(path string, logger *logrus.Logger, out io.Writer) error {
	count, problems, err := migration.CheckFile(path)
	if err != nil {
		return err
	}

	for _, problem := range problems {
		logger.Warn(problem)
	}
	fmt.Fprintf(out, "%d products found, %d invalid\n", count, len(problems))
	return nil
}
