package main

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devLucasOAK/lambda-serverless-api/internal/handlers"
	"github.com/devLucasOAK/lambda-serverless-api/internal/middleware"
	"github.com/devLucasOAK/lambda-serverless-api/internal/models"
	"github.com/devLucasOAK/lambda-serverless-api/pkg/lambda"
)

const (
	// MessageBodyTooLarge is returned when the body exceeds the size limit
	MessageBodyTooLarge = "request body too large"
	// MessageBodyUnreadable is returned when the body cannot be read
	MessageBodyUnreadable = "request body could not be read"
)

// routerHandler serves the product router behind gin, so the local server
// answers exactly like the Lambda function does
func routerHandler(router *handlers.Router) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, models.MessageBody{Message: MessageBodyTooLarge})
				return
			}
			c.AbortWithStatusJSON(http.StatusBadRequest, models.MessageBody{Message: MessageBodyUnreadable})
			return
		}

		req := &lambda.Request{
			Method:      c.Request.Method,
			Path:        c.Request.URL.Path,
			Headers:     firstValues(c.Request.Header),
			QueryParams: firstValues(c.Request.URL.Query()),
			Body:        body,
			RequestID:   c.GetString(middleware.RequestIDKey),
		}

		resp := router.Handle(c.Request.Context(), req)

		for key, value := range resp.Headers {
			c.Header(key, value)
		}
		if len(resp.Body) == 0 {
			c.Status(resp.StatusCode)
			return
		}
		c.Data(resp.StatusCode, resp.Headers["Content-Type"], resp.Body)
	}
}

// firstValues flattens a multi-valued map to its first value per key
func firstValues(values map[string][]string) map[string]string {
	flat := make(map[string]string, len(values))
	for key, vals := range values {
		if len(vals) > 0 {
			flat[key] = vals[0]
		}
	}
	return flat
}
