package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/devLucasOAK/lambda-serverless-api/internal/models"
	"github.com/devLucasOAK/lambda-serverless-api/internal/repositories"
)

// DefaultPageSize is the number of rows returned per scan page when none is configured
const DefaultPageSize = 100

// ProductRepository implements repositories.ProductRepository on the SQLite
// products table. Each item is stored as a JSON document keyed by product_id.
type ProductRepository struct {
	baseRepository
	pageSize int
}

// NewProductRepository creates a new SQLite product repository.
// The schema must already be applied (see database.MigrationManager).
func NewProductRepository(db *sql.DB, pageSize int, logger *logrus.Logger) *ProductRepository {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &ProductRepository{
		baseRepository: newBaseRepository(db, "products", repositories.EntityProduct, logger),
		pageSize:       pageSize,
	}
}

// Get implements repositories.ProductRepository.Get
func (r *ProductRepository) Get(ctx context.Context, productID string) (models.Product, error) {
	if err := r.validateID("get", productID); err != nil {
		return nil, err
	}

	return r.load(ctx, r.db, "get", productID)
}

// ScanPage implements repositories.ProductRepository.ScanPage using keyset pagination
func (r *ProductRepository) ScanPage(ctx context.Context, startKey string) (*repositories.Page, error) {
	query := `
		SELECT product_id, item
		FROM products
		WHERE product_id > ?
		ORDER BY product_id
		LIMIT ?`

	// One extra row tells whether another page follows
	rows, err := r.executeQuery(ctx, r.db, "scan", query, startKey, r.pageSize+1)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	page := &repositories.Page{Items: make([]models.Product, 0, r.pageSize)}
	var lastID string
	more := false
	for rows.Next() {
		if len(page.Items) == r.pageSize {
			more = true
			break
		}

		var id, doc string
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, r.storeError("scan", startKey, err)
		}

		item, err := decodeItem(doc)
		if err != nil {
			return nil, repositories.NewRepositoryError("scan", r.entity, id, err)
		}
		page.Items = append(page.Items, item)
		lastID = id
	}
	if err := rows.Err(); err != nil {
		return nil, r.storeError("scan", startKey, err)
	}

	if more {
		page.LastEvaluatedKey = lastID
	}

	return page, nil
}

// Put implements repositories.ProductRepository.Put
func (r *ProductRepository) Put(ctx context.Context, item models.Product) error {
	id := item.ID()
	if err := r.validateID("put", id); err != nil {
		return err
	}

	doc, err := encodeItem(item)
	if err != nil {
		return repositories.NewRepositoryError("put", r.entity, id, err)
	}

	query := `
		INSERT INTO products (product_id, item, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(product_id) DO UPDATE SET
			item = excluded.item,
			updated_at = excluded.updated_at`

	_, err = r.executeExec(ctx, r.db, "put", id, query, id, doc)
	return err
}

// UpdateAttribute implements repositories.ProductRepository.UpdateAttribute
func (r *ProductRepository) UpdateAttribute(ctx context.Context, productID, key string, value interface{}) (models.Product, error) {
	if err := r.validateID("update", productID); err != nil {
		return nil, err
	}

	normalized := models.NormalizeValue(value)

	err := r.withTx(ctx, "update", productID, func(tx *sql.Tx) error {
		item, err := r.load(ctx, tx, "update", productID)
		if err != nil {
			return err
		}

		item[key] = normalized
		doc, err := encodeItem(item)
		if err != nil {
			return repositories.NewRepositoryError("update", r.entity, productID, err)
		}

		result, err := r.executeExec(ctx, tx, "update", productID,
			`UPDATE products SET item = ?, updated_at = CURRENT_TIMESTAMP WHERE product_id = ?`,
			doc, productID)
		if err != nil {
			return err
		}
		return r.checkRowsAffected(result, "update", productID)
	})
	if err != nil {
		return nil, err
	}

	updated := models.Product{key: normalized}
	return updated.Clone(), nil
}

// Delete implements repositories.ProductRepository.Delete
func (r *ProductRepository) Delete(ctx context.Context, productID string) (models.Product, error) {
	if err := r.validateID("delete", productID); err != nil {
		return nil, err
	}

	var prior models.Product
	err := r.withTx(ctx, "delete", productID, func(tx *sql.Tx) error {
		item, err := r.load(ctx, tx, "delete", productID)
		if repositories.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}

		if _, err := r.executeExec(ctx, tx, "delete", productID,
			`DELETE FROM products WHERE product_id = ?`, productID); err != nil {
			return err
		}
		prior = item
		return nil
	})
	if err != nil {
		return nil, err
	}

	return prior, nil
}

// Ping implements repositories.ProductRepository.Ping
func (r *ProductRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return repositories.NewRepositoryError("ping", r.entity, "", fmt.Errorf("%w: %w", repositories.ErrConnection, err))
	}
	return nil
}

// Close implements repositories.ProductRepository.Close. The connection is
// owned by database.ConnectionManager and closed there.
func (r *ProductRepository) Close() error {
	return nil
}

func (r *ProductRepository) load(ctx context.Context, q queryer, operation, productID string) (models.Product, error) {
	var doc string
	err := r.scanRow(ctx, q, operation, `SELECT item FROM products WHERE product_id = ?`, []interface{}{productID}, &doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repositories.NotFoundError(operation, r.entity, productID)
	}
	if err != nil {
		return nil, r.storeError(operation, productID, err)
	}

	item, err := decodeItem(doc)
	if err != nil {
		return nil, repositories.NewRepositoryError(operation, r.entity, productID, err)
	}
	return item, nil
}

// withTx runs fn in a transaction, committing only if fn succeeds
func (r *ProductRepository) withTx(ctx context.Context, operation, id string, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return r.storeError(operation, id, err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			r.logger.WithError(rbErr).WithField("operation", operation).Warn("Failed to rollback transaction")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return r.storeError(operation, id, err)
	}
	return nil
}

func encodeItem(item models.Product) (string, error) {
	data, err := json.Marshal(models.NormalizeProduct(item))
	if err != nil {
		return "", fmt.Errorf("%w: %w", repositories.ErrSerialization, err)
	}
	return string(data), nil
}

func decodeItem(doc string) (models.Product, error) {
	decoder := json.NewDecoder(bytes.NewBufferString(doc))
	decoder.UseNumber()

	item := models.Product{}
	if err := decoder.Decode(&item); err != nil {
		return nil, fmt.Errorf("%w: %w", repositories.ErrSerialization, err)
	}
	return models.NormalizeProduct(item), nil
}
