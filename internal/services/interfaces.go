package services

import (
	"context"

	"github.com/devLucasOAK/lambda-serverless-api/internal/models"
)

// ProductService defines the product inventory operations exposed by the API.
// Every error returned is a *ServiceError classified as invalid input, not
// found, or store failure.
type ProductService interface {
	// GetProduct retrieves a single product by key
	GetProduct(ctx context.Context, productID string) (models.Product, error)

	// ListProducts returns every product, following the store's continuation
	// tokens until the table is exhausted
	ListProducts(ctx context.Context) (*models.ProductList, error)

	// SaveProduct inserts or fully replaces a product keyed by its productId
	SaveProduct(ctx context.Context, item models.Product) (*models.SaveResult, error)

	// UpdateProduct sets one attribute on an existing product
	UpdateProduct(ctx context.Context, req *models.UpdateProductRequest) (*models.UpdateResult, error)

	// DeleteProduct removes a product; deleting a missing product succeeds
	DeleteProduct(ctx context.Context, req *models.DeleteProductRequest) (*models.DeleteResult, error)

	// Ping checks that the backing store is reachable
	Ping(ctx context.Context) error
}
