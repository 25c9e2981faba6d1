package database

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
)

func testConfig(path string) *ConnectionConfig {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return &ConnectionConfig{
		DatabasePath: path,
		AutoMigrate:  true,
		Logger:       logger,
	}
}

func TestConnectionManager_ConnectRunsMigrations(t *testing.T) {
	cm := NewConnectionManager(testConfig(MemoryPath))
	ctx := context.Background()

	if err := cm.Connect(ctx); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer cm.Close()

	if err := cm.Ping(ctx); err != nil {
		t.Errorf("Ping failed: %v", err)
	}

	mm := cm.GetMigrationManager()
	if err := mm.ValidateSchema(); err != nil {
		t.Errorf("ValidateSchema failed: %v", err)
	}

	status, err := mm.GetMigrationStatus()
	if err != nil {
		t.Fatalf("GetMigrationStatus failed: %v", err)
	}
	if status.Version != 1 || status.Dirty || !status.Applied {
		t.Errorf("Unexpected migration status: %+v", status)
	}

	// Running again is a no-op
	if err := mm.RunMigrations(); err != nil {
		t.Errorf("Second RunMigrations failed: %v", err)
	}
}

func TestConnectionManager_Rollback(t *testing.T) {
	cm := NewConnectionManager(testConfig(MemoryPath))
	if err := cm.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer cm.Close()

	mm := cm.GetMigrationManager()
	if err := mm.RollbackMigration(); err != nil {
		t.Fatalf("RollbackMigration failed: %v", err)
	}
	if err := mm.ValidateSchema(); err == nil {
		t.Error("Expected schema validation to fail after rollback")
	}

	if err := mm.RollbackMigration(); err == nil {
		t.Error("Expected rollback with nothing applied to fail")
	}

	if err := mm.RunMigrations(); err != nil {
		t.Fatalf("RunMigrations failed: %v", err)
	}
	if err := mm.ValidateSchema(); err != nil {
		t.Errorf("ValidateSchema failed after re-apply: %v", err)
	}
}

func TestConnectionManager_FileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "products.db")
	cm := NewConnectionManager(testConfig(path))

	if err := cm.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if err := cm.Connect(context.Background()); err == nil {
		t.Error("Expected second Connect to fail")
	}
	if err := cm.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if cm.GetDB() != nil {
		t.Error("Expected nil DB after Close")
	}
	if err := cm.Ping(context.Background()); err == nil {
		t.Error("Expected Ping to fail after Close")
	}
}
