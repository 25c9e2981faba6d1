package repositories

import (
	"context"

	"github.com/devLucasOAK/lambda-serverless-api/internal/models"
)

// EntityProduct is the entity name used in repository errors
const EntityProduct = "product"

// Page is one page of a table scan
type Page struct {
	Items []models.Product

	// LastEvaluatedKey is the key of the last item read. Passing it back as the
	// start key resumes the scan; it is empty once the table is exhausted.
	LastEvaluatedKey string
}

// HasMore reports whether the store indicated more items beyond this page
func (p *Page) HasMore() bool {
	return p != nil && p.LastEvaluatedKey != ""
}

// ProductRepository is the store accessor for the product inventory table
type ProductRepository interface {
	// Get retrieves a product by key, returning ErrNotFound if it is absent
	Get(ctx context.Context, productID string) (models.Product, error)

	// ScanPage reads one page of products starting after startKey ("" for the beginning)
	ScanPage(ctx context.Context, startKey string) (*Page, error)

	// Put inserts or fully replaces the product keyed by its productId
	Put(ctx context.Context, item models.Product) error

	// UpdateAttribute sets one attribute on an existing product and returns the
	// updated attributes. Returns ErrNotFound if the product does not exist.
	UpdateAttribute(ctx context.Context, productID, key string, value interface{}) (models.Product, error)

	// Delete removes a product and returns its prior state, or nil if it did not exist
	Delete(ctx context.Context, productID string) (models.Product, error)

	// Ping checks that the backing store is reachable
	Ping(ctx context.Context) error

	// Close releases any resources held by the repository
	Close() error
}
