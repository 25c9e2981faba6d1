package main

import (
	"context"
	"flag"
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/devLucasOAK/lambda-serverless-api/internal/database"
)

func main() {
	var (
		dbPath  = flag.String("db", "./data/products.db", "Database file path")
		action  = flag.String("action", "up", "Migration action: up, down, status, validate")
		verbose = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	logger := logrus.New()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	absDBPath, err := filepath.Abs(*dbPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to get absolute database path")
	}

	logger.WithFields(logrus.Fields{
		"db_path": absDBPath,
		"action":  *action,
	}).Info("Starting migration tool")

	if err := run(context.Background(), absDBPath, *action, logger); err != nil {
		logger.WithError(err).Fatal("Migration tool failed")
	}

	logger.Info("Migration tool completed successfully")
}

// run connects without auto-migrating and applies one action
func run(ctx context.Context, dbPath, action string, logger *logrus.Logger) error {
	cm := database.NewConnectionManager(&database.ConnectionConfig{
		DatabasePath: dbPath,
		AutoMigrate:  false,
		Logger:       logger,
	})
	if err := cm.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer cm.Close()

	mm := cm.GetMigrationManager()

	switch action {
	case "up":
		return mm.RunMigrations()
	case "down":
		return mm.RollbackMigration()
	case "status":
		info, err := mm.GetMigrationStatus()
		if err != nil {
			return err
		}
		logger.WithFields(logrus.Fields{
			"version": info.Version,
			"dirty":   info.Dirty,
			"applied": info.Applied,
		}).Info("Migration status")
		return nil
	case "validate":
		if err := mm.ValidateSchema(); err != nil {
			return err
		}
		logger.Info("Schema validation passed")
		return nil
	default:
		return fmt.Errorf("unknown action %q, use: up, down, status, validate", action)
	}
}
