package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/devLucasOAK/lambda-serverless-api/internal/models"
	"github.com/devLucasOAK/lambda-serverless-api/internal/services"
	"github.com/devLucasOAK/lambda-serverless-api/pkg/lambda"
)

// ProductHandler handles product inventory requests
type ProductHandler struct {
	productService services.ProductService
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService services.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
	}
}

// HandleHealth godoc
// @Summary Health check
// @Description Liveness check; always answers 200 with an empty body
// @Tags health
// @Success 200
// @Router /health [get]
func (h *ProductHandler) HandleHealth(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	return BuildResponse(http.StatusOK, nil), nil
}

// HandleGet godoc
// @Summary Get a product
// @Description Fetch a single product by its productId
// @Tags products
// @Produce json
// @Param productId query string true "Product key"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.MessageBody
// @Failure 404 {object} models.MessageBody
// @Failure 500 {object} models.MessageBody
// @Router /product [get]
func (h *ProductHandler) HandleGet(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	productID := req.QueryParams[models.KeyAttribute]
	if productID == "" {
		return nil, services.NewInvalidInputError("get", "", MessageProductIDQueryParam)
	}

	product, err := h.productService.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	return BuildResponse(http.StatusOK, product), nil
}

// HandleList godoc
// @Summary List products
// @Description Return every product in the table, following store pagination until exhausted
// @Tags products
// @Produce json
// @Success 200 {object} models.ProductList
// @Failure 500 {object} models.MessageBody
// @Router /products [get]
func (h *ProductHandler) HandleList(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	list, err := h.productService.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	return BuildResponse(http.StatusOK, list), nil
}

// HandleSave godoc
// @Summary Save a product
// @Description Insert or fully replace the product keyed by productId
// @Tags products
// @Accept json
// @Produce json
// @Param product body map[string]interface{} true "Product attributes including productId"
// @Success 201 {object} models.SaveResult
// @Failure 400 {object} models.MessageBody
// @Failure 500 {object} models.MessageBody
// @Router /product [post]
func (h *ProductHandler) HandleSave(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	var item models.Product
	if err := decodeJSONBody("save", req.Body, &item); err != nil {
		return nil, err
	}

	result, err := h.productService.SaveProduct(ctx, item)
	if err != nil {
		return nil, err
	}

	return BuildResponse(http.StatusCreated, result), nil
}

// HandleUpdate godoc
// @Summary Update a product attribute
// @Description Set one attribute on an existing product
// @Tags products
// @Accept json
// @Produce json
// @Param request body models.UpdateProductRequest true "Attribute update"
// @Success 200 {object} models.UpdateResult
// @Failure 400 {object} models.MessageBody
// @Failure 404 {object} models.MessageBody
// @Failure 500 {object} models.MessageBody
// @Router /product [patch]
func (h *ProductHandler) HandleUpdate(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	var updateReq models.UpdateProductRequest
	if err := decodeJSONBody("update", req.Body, &updateReq); err != nil {
		return nil, err
	}

	result, err := h.productService.UpdateProduct(ctx, &updateReq)
	if err != nil {
		return nil, err
	}

	return BuildResponse(http.StatusOK, result), nil
}

// HandleDelete godoc
// @Summary Delete a product
// @Description Remove a product by key. Deleting a missing product succeeds without deletedItem.
// @Tags products
// @Accept json
// @Produce json
// @Param request body models.DeleteProductRequest true "Product key"
// @Success 200 {object} models.DeleteResult
// @Failure 400 {object} models.MessageBody
// @Failure 500 {object} models.MessageBody
// @Router /product [delete]
func (h *ProductHandler) HandleDelete(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	var deleteReq models.DeleteProductRequest
	if err := decodeJSONBody("delete", req.Body, &deleteReq); err != nil {
		return nil, err
	}

	result, err := h.productService.DeleteProduct(ctx, &deleteReq)
	if err != nil {
		return nil, err
	}

	return BuildResponse(http.StatusOK, result), nil
}

// decodeJSONBody decodes exactly one JSON value from body, keeping numbers
// as json.Number so large integers survive until normalisation
func decodeJSONBody(op string, body []byte, v interface{}) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return services.NewInvalidInputError(op, "", MessageBodyRequired)
	}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()

	if err := decoder.Decode(v); err != nil {
		return services.NewInvalidInputError(op, "", MessageBodyMalformed)
	}
	if decoder.More() {
		return services.NewInvalidInputError(op, "", MessageBodyMalformed)
	}

	return nil
}
