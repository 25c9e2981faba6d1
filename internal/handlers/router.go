package handlers

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/devLucasOAK/lambda-serverless-api/internal/services"
	"github.com/devLucasOAK/lambda-serverless-api/pkg/lambda"
)

// Route paths
const (
	PathHealth   = "/health"
	PathProduct  = "/product"
	PathProducts = "/products"
)

type routeKey struct {
	method string
	path   string
}

// Router dispatches a request to exactly one handler by exact method and path
type Router struct {
	routes map[routeKey]lambda.HandlerFunc
	logger *logrus.Logger
}

// NewRouter creates a router serving the product inventory routes
func NewRouter(productHandler *ProductHandler, logger *logrus.Logger) *Router {
	if logger == nil {
		logger = logrus.New()
	}

	r := &Router{
		routes: make(map[routeKey]lambda.HandlerFunc),
		logger: logger,
	}

	r.register(http.MethodGet, PathHealth, productHandler.HandleHealth)
	r.register(http.MethodGet, PathProduct, productHandler.HandleGet)
	r.register(http.MethodGet, PathProducts, productHandler.HandleList)
	r.register(http.MethodPost, PathProduct, productHandler.HandleSave)
	r.register(http.MethodPatch, PathProduct, productHandler.HandleUpdate)
	r.register(http.MethodDelete, PathProduct, productHandler.HandleDelete)

	return r
}

// NewProductRouter wires a product service into a ready router
func NewProductRouter(productService services.ProductService, logger *logrus.Logger) *Router {
	return NewRouter(NewProductHandler(productService), logger)
}

func (r *Router) register(method, path string, handler lambda.HandlerFunc) {
	r.routes[routeKey{method: method, path: path}] = handler
}

// Routes lists the registered routes as "METHOD path", sorted
func (r *Router) Routes() []string {
	routes := make([]string, 0, len(r.routes))
	for key := range r.routes {
		routes = append(routes, key.method+" "+key.path)
	}
	sort.Strings(routes)
	return routes
}

// Handle routes the request and always returns an envelope
func (r *Router) Handle(ctx context.Context, req *lambda.Request) (resp *lambda.Response) {
	start := time.Now()
	entry := r.logger.WithFields(logrus.Fields{
		"method":     req.Method,
		"path":       req.Path,
		"request_id": req.RequestID,
	})

	defer func() {
		if recovered := recover(); recovered != nil {
			entry.WithField("panic", fmt.Sprint(recovered)).Error("Handler panicked")
			resp = messageResponse(http.StatusInternalServerError, services.MessageInternalError)
		}

		entry.WithFields(logrus.Fields{
			"status":   resp.StatusCode,
			"duration": time.Since(start),
		}).Info("Request completed")
	}()

	entry.Debug("Request received")

	handler, ok := r.routes[routeKey{method: req.Method, path: req.Path}]
	if !ok {
		return messageResponse(http.StatusNotFound, MessageNotFound)
	}

	resp, err := handler(ctx, req)
	if err != nil {
		if errorStatus(err) == http.StatusInternalServerError {
			entry.WithError(err).Error("Request failed")
		} else {
			entry.WithError(err).Debug("Request rejected")
		}
		return errorResponse(err)
	}

	if resp == nil {
		return messageResponse(http.StatusInternalServerError, services.MessageInternalError)
	}

	return resp
}
