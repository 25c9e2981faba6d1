package models

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FormatValidationError turns validator field errors into a short message that
// names the offending JSON fields without echoing their values.
func FormatValidationError(err error) string {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrors) == 0 {
		return "invalid request"
	}

	fields := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		fields = append(fields, jsonFieldName(fe.Field()))
	}

	if len(fields) == 1 {
		return fmt.Sprintf("%s is required", fields[0])
	}
	return fmt.Sprintf("%s are required", strings.Join(fields, ", "))
}

func jsonFieldName(structField string) string {
	switch structField {
	case "ProductID":
		return KeyAttribute
	case "UpdateKey":
		return "updateKey"
	case "UpdateValue":
		return "updateValue"
	default:
		return structField
	}
}
