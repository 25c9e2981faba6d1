package models

import (
	"encoding/json"
	"math"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/shopspring/decimal"
)

// NormalizeProduct converts every numeric attribute of the product into a
// plain int64 or float64, recursing into nested maps and lists.
func NormalizeProduct(p Product) Product {
	if p == nil {
		return nil
	}
	out := make(Product, len(p))
	for k, v := range p {
		out[k] = NormalizeValue(v)
	}
	return out
}

// NormalizeValue converts store- and decoder-specific numeric representations
// (json.Number, attributevalue.Number, decimal.Decimal) into int64 when the
// value is integral and fits, float64 otherwise. Non-numeric values are
// returned unchanged, with containers normalised recursively.
func NormalizeValue(v interface{}) interface{} {
	switch val := v.(type) {
	case json.Number:
		return normalizeNumberString(string(val))
	case attributevalue.Number:
		return normalizeNumberString(string(val))
	case decimal.Decimal:
		return normalizeDecimal(val)
	case *decimal.Decimal:
		if val == nil {
			return nil
		}
		return normalizeDecimal(*val)
	case float32:
		return normalizeDecimal(decimal.NewFromFloat32(val))
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return val
		}
		return normalizeDecimal(decimal.NewFromFloat(val))
	case int:
		return int64(val)
	case int32:
		return int64(val)
	case Product:
		return NormalizeProduct(val)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[k] = NormalizeValue(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = NormalizeValue(item)
		}
		return out
	default:
		return v
	}
}

func normalizeNumberString(s string) interface{} {
	d, err := decimal.NewFromString(s)
	if err != nil {
		// Leave unparseable numbers as their textual form
		return s
	}
	return normalizeDecimal(d)
}

func normalizeDecimal(d decimal.Decimal) interface{} {
	if d.Equal(d.Truncate(0)) && d.GreaterThanOrEqual(minInt64) && d.LessThanOrEqual(maxInt64) {
		return d.IntPart()
	}
	return d.InexactFloat64()
}

var (
	minInt64 = decimal.NewFromInt(math.MinInt64)
	maxInt64 = decimal.NewFromInt(math.MaxInt64)
)
