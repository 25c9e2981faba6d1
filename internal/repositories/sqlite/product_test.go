package sqlite

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/devLucasOAK/lambda-serverless-api/internal/database"
	"github.com/devLucasOAK/lambda-serverless-api/internal/models"
	"github.com/devLucasOAK/lambda-serverless-api/internal/repositories"
)

func setupRepository(t *testing.T, pageSize int) *ProductRepository {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cm := database.NewConnectionManager(&database.ConnectionConfig{
		DatabasePath: filepath.Join(t.TempDir(), "products.db"),
		AutoMigrate:  true,
		Logger:       logger,
	})
	if err := cm.Connect(context.Background()); err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	t.Cleanup(func() { cm.Close() })

	return NewProductRepository(cm.GetDB(), pageSize, logger)
}

func TestProductRepository_RoundTrip(t *testing.T) {
	repo := setupRepository(t, 0)
	ctx := context.Background()

	item := models.Product{
		"productId": "1",
		"price":     10.0,
		"ratio":     0.25,
		"tags":      []interface{}{"a", 2},
		"dims":      map[string]interface{}{"w": 3},
		"discount":  nil,
	}
	if err := repo.Put(ctx, item); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := repo.Get(ctx, "1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	want := models.Product{
		"productId": "1",
		"price":     int64(10),
		"ratio":     0.25,
		"tags":      []interface{}{"a", int64(2)},
		"dims":      map[string]interface{}{"w": int64(3)},
		"discount":  nil,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Get() = %#v, want %#v", got, want)
	}
}

func TestProductRepository_PutReplaces(t *testing.T) {
	repo := setupRepository(t, 0)
	ctx := context.Background()

	_ = repo.Put(ctx, models.Product{"productId": "1", "color": "red"})
	if err := repo.Put(ctx, models.Product{"productId": "1", "price": 5}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, _ := repo.Get(ctx, "1")
	if !reflect.DeepEqual(got, models.Product{"productId": "1", "price": int64(5)}) {
		t.Errorf("Expected replaced item, got %#v", got)
	}
}

func TestProductRepository_GetMissing(t *testing.T) {
	repo := setupRepository(t, 0)

	if _, err := repo.Get(context.Background(), "missing"); !repositories.IsNotFound(err) {
		t.Errorf("Expected not found error, got %v", err)
	}
	if _, err := repo.Get(context.Background(), ""); !repositories.IsInvalidID(err) {
		t.Errorf("Expected invalid ID error, got %v", err)
	}
}

func TestProductRepository_KeysetPagination(t *testing.T) {
	repo := setupRepository(t, 4)
	ctx := context.Background()

	const total = 10
	for i := 0; i < total; i++ {
		if err := repo.Put(ctx, models.Product{"productId": fmt.Sprintf("p%02d", i), "n": i}); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	seen := make(map[string]int)
	pages := 0
	startKey := ""
	for {
		page, err := repo.ScanPage(ctx, startKey)
		if err != nil {
			t.Fatalf("ScanPage failed: %v", err)
		}
		pages++
		for _, item := range page.Items {
			seen[item.ID()]++
		}
		if !page.HasMore() {
			break
		}
		startKey = page.LastEvaluatedKey
	}

	if pages != 3 {
		t.Errorf("Expected 3 pages, got %d", pages)
	}
	if len(seen) != total {
		t.Errorf("Expected %d distinct items, got %d", total, len(seen))
	}
	for id, count := range seen {
		if count != 1 {
			t.Errorf("Item %s returned %d times", id, count)
		}
	}
}

func TestProductRepository_ScanEmpty(t *testing.T) {
	repo := setupRepository(t, 0)

	page, err := repo.ScanPage(context.Background(), "")
	if err != nil {
		t.Fatalf("ScanPage failed: %v", err)
	}
	if len(page.Items) != 0 || page.HasMore() {
		t.Errorf("Expected empty final page, got %#v", page)
	}
}

func TestProductRepository_UpdateAttribute(t *testing.T) {
	repo := setupRepository(t, 0)
	ctx := context.Background()

	_ = repo.Put(ctx, models.Product{"productId": "1", "price": 10, "name": "widget"})

	updated, err := repo.UpdateAttribute(ctx, "1", "price", 12.5)
	if err != nil {
		t.Fatalf("UpdateAttribute failed: %v", err)
	}
	if !reflect.DeepEqual(updated, models.Product{"price": 12.5}) {
		t.Errorf("Unexpected updated attributes: %#v", updated)
	}

	got, _ := repo.Get(ctx, "1")
	want := models.Product{"productId": "1", "price": 12.5, "name": "widget"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Get() after update = %#v, want %#v", got, want)
	}
}

func TestProductRepository_UpdateMissingIsNotFound(t *testing.T) {
	repo := setupRepository(t, 0)
	ctx := context.Background()

	_, err := repo.UpdateAttribute(ctx, "missing", "price", 1)
	if !repositories.IsNotFound(err) {
		t.Errorf("Expected not found error, got %v", err)
	}

	if _, err := repo.Get(ctx, "missing"); !repositories.IsNotFound(err) {
		t.Errorf("Update of missing item must not create it, got %v", err)
	}
}

func TestProductRepository_Delete(t *testing.T) {
	repo := setupRepository(t, 0)
	ctx := context.Background()

	_ = repo.Put(ctx, models.Product{"productId": "1", "price": 10})

	prior, err := repo.Delete(ctx, "1")
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if !reflect.DeepEqual(prior, models.Product{"productId": "1", "price": int64(10)}) {
		t.Errorf("Unexpected prior item: %#v", prior)
	}

	prior, err = repo.Delete(ctx, "1")
	if err != nil {
		t.Fatalf("Second delete failed: %v", err)
	}
	if prior != nil {
		t.Errorf("Expected nil prior item, got %#v", prior)
	}

	if _, err := repo.Get(ctx, "1"); !repositories.IsNotFound(err) {
		t.Errorf("Expected deleted item to be gone, got %v", err)
	}
}

func TestProductRepository_Ping(t *testing.T) {
	repo := setupRepository(t, 0)
	if err := repo.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}
