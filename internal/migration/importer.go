package migration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/devLucasOAK/lambda-serverless-api/internal/models"
	"github.com/devLucasOAK/lambda-serverless-api/internal/services"
)

// ImportResult contains the results of an import
type ImportResult struct {
	Processed int
	Imported  int
	Skipped   int
	Errors    []string
}

// ProductImporter moves products between JSON files and the product store
type ProductImporter struct {
	service services.ProductService
	logger  *logrus.Logger
	dryRun  bool
}

// NewProductImporter creates a new importer. In dry-run mode products are
// read and validated but never written.
func NewProductImporter(service services.ProductService, logger *logrus.Logger, dryRun bool) *ProductImporter {
	if logger == nil {
		logger = logrus.New()
	}
	return &ProductImporter{
		service: service,
		logger:  logger,
		dryRun:  dryRun,
	}
}

// ReadProducts decodes a JSON array of product objects. Numbers keep their
// exact textual value.
func ReadProducts(r io.Reader) ([]models.Product, error) {
	decoder := json.NewDecoder(r)
	decoder.UseNumber()

	var products []models.Product
	if err := decoder.Decode(&products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

// ImportFile reads products from path and saves each one. Invalid products
// are skipped and reported; a store failure stops the import.
func (p *ProductImporter) ImportFile(ctx context.Context, path string) (*ImportResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	products, err := ReadProducts(file)
	if err != nil {
		return nil, err
	}

	return p.Import(ctx, products)
}

// Import saves the given products through the product service
func (p *ProductImporter) Import(ctx context.Context, products []models.Product) (*ImportResult, error) {
	p.logger.WithFields(logrus.Fields{
		"count":   len(products),
		"dry_run": p.dryRun,
	}).Info("Starting product import...")

	result := &ImportResult{Errors: make([]string, 0)}

	for i, product := range products {
		result.Processed++

		if err := product.Validate(); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("product %d: %v", i, err))
			p.logger.WithFields(logrus.Fields{
				"index": i,
				"error": err.Error(),
			}).Warn("Skipping invalid product")
			continue
		}

		if p.dryRun {
			result.Imported++
			continue
		}

		if _, err := p.service.SaveProduct(ctx, product); err != nil {
			if services.IsInvalidInput(err) {
				result.Skipped++
				result.Errors = append(result.Errors, fmt.Sprintf("product %s: %v", product.ID(), err))
				continue
			}
			return result, fmt.Errorf("failed to import product %s: %w", product.ID(), err)
		}
		result.Imported++
	}

	p.logger.WithFields(logrus.Fields{
		"processed": result.Processed,
		"imported":  result.Imported,
		"skipped":   result.Skipped,
	}).Info("Product import completed")

	return result, nil
}

// Export writes every product in the store to w as an indented JSON array
func (p *ProductImporter) Export(ctx context.Context, w io.Writer) (int, error) {
	list, err := p.service.ListProducts(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list products: %w", err)
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(list.Products); err != nil {
		return 0, fmt.Errorf("failed to encode products: %w", err)
	}

	if _, err := w.Write(buf.Bytes()); err != nil {
		return 0, fmt.Errorf("failed to write products: %w", err)
	}
	return len(list.Products), nil
}

// ExportFile writes every product to path, creating parent directories
func (p *ProductImporter) ExportFile(ctx context.Context, path string) (int, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return 0, fmt.Errorf("failed to create export directory: %w", err)
	}

	var buf bytes.Buffer
	count, err := p.Export(ctx, &buf)
	if err != nil {
		return 0, err
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", path, err)
	}

	p.logger.WithFields(logrus.Fields{
		"path":  path,
		"count": count,
	}).Info("Products exported")
	return count, nil
}

// CheckFile reports how many products a file holds and which are invalid,
// without touching the store
func CheckFile(path string) (int, []string, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	products, err := ReadProducts(file)
	if err != nil {
		return 0, nil, err
	}

	var problems []string
	for i, product := range products {
		if err := product.Validate(); err != nil {
			problems = append(problems, fmt.Sprintf("product %d: %v", i, err))
		}
	}
	return len(products), problems, nil
}
