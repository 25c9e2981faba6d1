package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// DefaultMaxBodySize bounds request bodies accepted by the local server
const DefaultMaxBodySize int64 = 1 << 20

// RateLimiter implements rate limiting middleware
func RateLimiter(logger *logrus.Logger, requestsPerSecond float64, burstSize int) gin.HandlerFunc {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	limiter := rate.NewLimiter(rate.Limit(requestsPerSecond), burstSize)

	return func(c *gin.Context) {
		if !limiter.Allow() {
			logger.WithFields(logrus.Fields{
				"request_id": c.GetString(RequestIDKey),
				"client_ip":  c.ClientIP(),
				"path":       c.Request.URL.Path,
			}).Warn("Rate limit exceeded")

			abortWithMessage(c, http.StatusTooManyRequests,
				fmt.Sprintf("Too many requests. Limit: %.1f requests per second", requestsPerSecond))
			return
		}
		c.Next()
	}
}

// ContentTypeValidation rejects request bodies sent with a media type other
// than the allowed ones. Requests without a body pass through.
func ContentTypeValidation(allowedTypes ...string) gin.HandlerFunc {
	if len(allowedTypes) == 0 {
		allowedTypes = []string{"application/json"}
	}

	return func(c *gin.Context) {
		if c.Request.ContentLength == 0 {
			c.Next()
			return
		}

		contentType := c.GetHeader("Content-Type")
		if contentType == "" {
			c.Next()
			return
		}

		mainType := strings.TrimSpace(strings.Split(contentType, ";")[0])
		for _, allowed := range allowedTypes {
			if strings.EqualFold(mainType, allowed) {
				c.Next()
				return
			}
		}

		abortWithMessage(c, http.StatusUnsupportedMediaType,
			fmt.Sprintf("Content-Type '%s' is not supported", mainType))
	}
}

// RequestSizeLimit limits the size of request bodies
func RequestSizeLimit(maxSize int64) gin.HandlerFunc {
	if maxSize <= 0 {
		maxSize = DefaultMaxBodySize
	}

	return func(c *gin.Context) {
		if c.Request.ContentLength > maxSize {
			abortWithMessage(c, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("Request body exceeds %d bytes", maxSize))
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}
