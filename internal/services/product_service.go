package services

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/devLucasOAK/lambda-serverless-api/internal/models"
	"github.com/devLucasOAK/lambda-serverless-api/internal/repositories"
)

// productService implements the ProductService interface
type productService struct {
	productRepo repositories.ProductRepository
	validator   *validator.Validate
	logger      *logrus.Logger
}

// NewProductService creates a new product service instance
func NewProductService(productRepo repositories.ProductRepository, logger *logrus.Logger) ProductService {
	if logger == nil {
		logger = logrus.New()
	}
	return &productService{
		productRepo: productRepo,
		validator:   validator.New(),
		logger:      logger,
	}
}

// GetProduct retrieves a product by ID
func (s *productService) GetProduct(ctx context.Context, productID string) (models.Product, error) {
	if err := models.ValidateProductID(productID); err != nil {
		return nil, NewInvalidInputError("get", productID, "productId is required")
	}

	product, err := s.productRepo.Get(ctx, productID)
	if err != nil {
		return nil, s.classify("get", productID, err)
	}

	return product, nil
}

// ListProducts accumulates every scan page into one list. A continuation
// token seen twice means the store is not advancing and is reported as a
// store failure.
func (s *productService) ListProducts(ctx context.Context) (*models.ProductList, error) {
	products := make([]models.Product, 0)
	seen := make(map[string]struct{})
	startKey := ""
	pages := 0

	for {
		page, err := s.productRepo.ScanPage(ctx, startKey)
		if err != nil {
			return nil, s.classify("list", "", err)
		}
		pages++
		products = append(products, page.Items...)

		if !page.HasMore() {
			break
		}

		if _, repeated := seen[page.LastEvaluatedKey]; repeated {
			return nil, s.classify("list", "",
				fmt.Errorf("continuation token %q returned twice", page.LastEvaluatedKey))
		}
		seen[page.LastEvaluatedKey] = struct{}{}
		startKey = page.LastEvaluatedKey
	}

	s.logger.WithFields(logrus.Fields{
		"operation": "list",
		"pages":     pages,
		"count":     len(products),
	}).Debug("Listed products")

	return &models.ProductList{Products: products}, nil
}

// SaveProduct inserts or replaces a product
func (s *productService) SaveProduct(ctx context.Context, item models.Product) (*models.SaveResult, error) {
	if err := item.Validate(); err != nil {
		return nil, NewInvalidInputError("save", item.ID(), err.Error())
	}

	normalized := models.NormalizeProduct(item)
	if err := s.productRepo.Put(ctx, normalized); err != nil {
		return nil, s.classify("save", normalized.ID(), err)
	}

	s.logger.WithFields(logrus.Fields{
		"operation":  "save",
		"product_id": normalized.ID(),
	}).Info("Product saved")

	return models.NewSaveResult(normalized), nil
}

// UpdateProduct sets a single attribute on an existing product
func (s *productService) UpdateProduct(ctx context.Context, req *models.UpdateProductRequest) (*models.UpdateResult, error) {
	if req == nil {
		return nil, NewInvalidInputError("update", "", "request body is required")
	}

	if err := s.validator.Struct(req); err != nil {
		return nil, NewInvalidInputError("update", req.ProductID, models.FormatValidationError(err))
	}

	if err := req.Validate(); err != nil {
		return nil, NewInvalidInputError("update", req.ProductID, err.Error())
	}

	updated, err := s.productRepo.UpdateAttribute(ctx, req.ProductID, req.UpdateKey, req.UpdateValue)
	if err != nil {
		return nil, s.classify("update", req.ProductID, err)
	}

	s.logger.WithFields(logrus.Fields{
		"operation":  "update",
		"product_id": req.ProductID,
		"attribute":  req.UpdateKey,
	}).Info("Product updated")

	return models.NewUpdateResult(updated), nil
}

// DeleteProduct deletes a product by ID
func (s *productService) DeleteProduct(ctx context.Context, req *models.DeleteProductRequest) (*models.DeleteResult, error) {
	if req == nil {
		return nil, NewInvalidInputError("delete", "", "request body is required")
	}

	if err := s.validator.Struct(req); err != nil {
		return nil, NewInvalidInputError("delete", req.ProductID, models.FormatValidationError(err))
	}

	if err := req.Validate(); err != nil {
		return nil, NewInvalidInputError("delete", req.ProductID, err.Error())
	}

	prior, err := s.productRepo.Delete(ctx, req.ProductID)
	if err != nil {
		return nil, s.classify("delete", req.ProductID, err)
	}

	s.logger.WithFields(logrus.Fields{
		"operation":  "delete",
		"product_id": req.ProductID,
		"existed":    prior != nil,
	}).Info("Product deleted")

	return models.NewDeleteResult(prior), nil
}

// Ping checks that the backing store is reachable
func (s *productService) Ping(ctx context.Context) error {
	if err := s.productRepo.Ping(ctx); err != nil {
		return s.classify("ping", "", err)
	}
	return nil
}

// classify turns a repository error into a ServiceError and logs store failures
func (s *productService) classify(op, productID string, err error) error {
	switch {
	case repositories.IsNotFound(err):
		s.logger.WithFields(logrus.Fields{
			"operation":  op,
			"product_id": productID,
		}).Debug("Product not found")
		return NewNotFoundError(op, productID, err)
	case repositories.IsInvalidID(err):
		return NewInvalidInputError(op, productID, "productId is required")
	case repositories.IsThrottled(err):
		s.logger.WithFields(logrus.Fields{
			"operation":  op,
			"product_id": productID,
			"error":      err.Error(),
		}).Warn("Store throttled request")
		return NewStoreFailureError(op, productID, err)
	default:
		s.logger.WithFields(logrus.Fields{
			"operation":  op,
			"product_id": productID,
			"error":      err.Error(),
		}).Error("Store operation failed")
		return NewStoreFailureError(op, productID, err)
	}
}
