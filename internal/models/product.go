package models

import (
	"fmt"
	"strings"
)

// KeyAttribute is the primary key attribute of the product inventory table
const KeyAttribute = "productId"

// Product is a schema-less inventory item. The only structural requirement is
// a non-empty string productId; every other attribute is stored verbatim.
type Product map[string]interface{}

// ID returns the product's primary key, or "" if it is missing or not a string
func (p Product) ID() string {
	id, _ := p[KeyAttribute].(string)
	return id
}

// Validate checks that the product carries a usable primary key
func (p Product) Validate() error {
	if p == nil {
		return fmt.Errorf("product is required")
	}

	raw, ok := p[KeyAttribute]
	if !ok || raw == nil {
		return fmt.Errorf("%s is required", KeyAttribute)
	}

	id, ok := raw.(string)
	if !ok {
		return fmt.Errorf("%s must be a string", KeyAttribute)
	}

	return ValidateProductID(id)
}

// ValidateProductID rejects empty and whitespace-only keys. Every operation
// that takes a key checks it here, before any store is reached.
func ValidateProductID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%s cannot be empty", KeyAttribute)
	}
	return nil
}

// Clone returns a deep copy of the product
func (p Product) Clone() Product {
	if p == nil {
		return nil
	}
	return cloneValue(map[string]interface{}(p)).(map[string]interface{})
}

func cloneValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[k] = cloneValue(item)
		}
		return out
	case Product:
		return Product(cloneValue(map[string]interface{}(val)).(map[string]interface{}))
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	case []byte:
		return append([]byte(nil), val...)
	default:
		return val
	}
}

// UpdateProductRequest sets a single attribute on an existing product.
// UpdateValue may be any JSON value; only absence and null are rejected.
type UpdateProductRequest struct {
	ProductID   string      `json:"productId" validate:"required"`
	UpdateKey   string      `json:"updateKey" validate:"required"`
	UpdateValue interface{} `json:"updateValue"`
}

// Validate performs the checks struct tags cannot express
func (r *UpdateProductRequest) Validate() error {
	if err := ValidateProductID(r.ProductID); err != nil {
		return err
	}
	if r.UpdateKey == KeyAttribute {
		return fmt.Errorf("updateKey cannot be %s", KeyAttribute)
	}
	if r.UpdateValue == nil {
		return fmt.Errorf("updateValue is required")
	}
	return nil
}

// DeleteProductRequest removes a product by key
type DeleteProductRequest struct {
	ProductID string `json:"productId" validate:"required"`
}

// Validate performs the checks struct tags cannot express
func (r *DeleteProductRequest) Validate() error {
	return ValidateProductID(r.ProductID)
}
