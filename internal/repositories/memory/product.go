package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/devLucasOAK/lambda-serverless-api/internal/models"
	"github.com/devLucasOAK/lambda-serverless-api/internal/repositories"
)

// DefaultPageSize is the number of items returned per scan page when none is configured
const DefaultPageSize = 100

// ProductRepository is an in-memory implementation of repositories.ProductRepository.
// Items are paged in key order so scans are deterministic.
type ProductRepository struct {
	mu       sync.RWMutex
	items    map[string]models.Product
	pageSize int

	// failures injects an error for the named operation (testing only)
	failures map[string]error
}

// NewProductRepository creates an empty in-memory product repository
func NewProductRepository(pageSize int) *ProductRepository {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &ProductRepository{
		items:    make(map[string]models.Product),
		pageSize: pageSize,
		failures: make(map[string]error),
	}
}

// Get implements repositories.ProductRepository.Get
func (r *ProductRepository) Get(ctx context.Context, productID string) (models.Product, error) {
	if productID == "" {
		return nil, repositories.NewRepositoryError("get", repositories.EntityProduct, productID, repositories.ErrInvalidID)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := r.failure("get"); err != nil {
		return nil, repositories.NewRepositoryError("get", repositories.EntityProduct, productID, err)
	}

	item, exists := r.items[productID]
	if !exists {
		return nil, repositories.NotFoundError("get", repositories.EntityProduct, productID)
	}

	return item.Clone(), nil
}

// ScanPage implements repositories.ProductRepository.ScanPage
func (r *ProductRepository) ScanPage(ctx context.Context, startKey string) (*repositories.Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := r.failure("scan"); err != nil {
		return nil, repositories.NewRepositoryError("scan", repositories.EntityProduct, "", err)
	}

	keys := make([]string, 0, len(r.items))
	for key := range r.items {
		if startKey != "" && key <= startKey {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	page := &repositories.Page{Items: make([]models.Product, 0, min(len(keys), r.pageSize))}
	for i, key := range keys {
		if i >= r.pageSize {
			break
		}
		page.Items = append(page.Items, r.items[key].Clone())
	}

	if len(keys) > r.pageSize {
		page.LastEvaluatedKey = keys[r.pageSize-1]
	}

	return page, nil
}

// Put implements repositories.ProductRepository.Put
func (r *ProductRepository) Put(ctx context.Context, item models.Product) error {
	id := item.ID()
	if id == "" {
		return repositories.NewRepositoryError("put", repositories.EntityProduct, id, repositories.ErrInvalidID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.failure("put"); err != nil {
		return repositories.NewRepositoryError("put", repositories.EntityProduct, id, err)
	}

	r.items[id] = models.NormalizeProduct(item.Clone())
	return nil
}

// UpdateAttribute implements repositories.ProductRepository.UpdateAttribute
func (r *ProductRepository) UpdateAttribute(ctx context.Context, productID, key string, value interface{}) (models.Product, error) {
	if productID == "" {
		return nil, repositories.NewRepositoryError("update", repositories.EntityProduct, productID, repositories.ErrInvalidID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.failure("update"); err != nil {
		return nil, repositories.NewRepositoryError("update", repositories.EntityProduct, productID, err)
	}

	item, exists := r.items[productID]
	if !exists {
		return nil, repositories.NotFoundError("update", repositories.EntityProduct, productID)
	}

	normalized := models.NormalizeValue(value)
	item[key] = normalized

	updated := models.Product{key: normalized}
	return updated.Clone(), nil
}

// Delete implements repositories.ProductRepository.Delete
func (r *ProductRepository) Delete(ctx context.Context, productID string) (models.Product, error) {
	if productID == "" {
		return nil, repositories.NewRepositoryError("delete", repositories.EntityProduct, productID, repositories.ErrInvalidID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.failure("delete"); err != nil {
		return nil, repositories.NewRepositoryError("delete", repositories.EntityProduct, productID, err)
	}

	item, exists := r.items[productID]
	if !exists {
		return nil, nil
	}

	delete(r.items, productID)
	return item, nil
}

// Ping implements repositories.ProductRepository.Ping
func (r *ProductRepository) Ping(ctx context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := r.failure("ping"); err != nil {
		return repositories.NewRepositoryError("ping", repositories.EntityProduct, "", err)
	}
	return nil
}

// Close implements repositories.ProductRepository.Close
func (r *ProductRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = make(map[string]models.Product)
	return nil
}

// Additional methods for testing

// FailOn makes every subsequent call of the named operation ("get", "scan",
// "put", "update", "delete", "ping") fail with err. A nil err clears it.
func (r *ProductRepository) FailOn(op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err == nil {
		delete(r.failures, op)
		return
	}
	r.failures[op] = err
}

// Count returns the number of stored products
func (r *ProductRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

func (r *ProductRepository) failure(op string) error {
	return r.failures[op]
}
