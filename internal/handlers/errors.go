package handlers

import (
	"errors"
	"net/http"

	"github.com/devLucasOAK/lambda-serverless-api/internal/services"
	"github.com/devLucasOAK/lambda-serverless-api/pkg/lambda"
)

// Caller-facing messages
const (
	MessageNotFound            = "Not Found"
	MessageBodyRequired        = "request body is required"
	MessageBodyMalformed       = "request body must be a JSON object"
	MessageProductIDQueryParam = "productId query parameter is required"
)

// errorStatus maps a service error kind to its HTTP status
func errorStatus(err error) int {
	switch {
	case services.IsInvalidInput(err):
		return http.StatusBadRequest
	case services.IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// errorResponse converts an error into an envelope. Only the ServiceError
// message reaches the caller; anything unclassified becomes a generic 500.
func errorResponse(err error) *lambda.Response {
	var serviceErr *services.ServiceError
	if !errors.As(err, &serviceErr) {
		return messageResponse(http.StatusInternalServerError, services.MessageInternalError)
	}

	status := errorStatus(serviceErr)
	if status == http.StatusInternalServerError {
		return messageResponse(status, services.MessageInternalError)
	}
	return messageResponse(status, serviceErr.Message)
}
