package main

import (
	"context"
	"net/http"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	awslambda "github.com/aws/aws-lambda-go/lambda"
	"github.com/sirupsen/logrus"

	"github.com/devLucasOAK/lambda-serverless-api/internal/handlers"
	"github.com/devLucasOAK/lambda-serverless-api/internal/models"
	"github.com/devLucasOAK/lambda-serverless-api/internal/services"
	"github.com/devLucasOAK/lambda-serverless-api/pkg/lambda"
	"github.com/devLucasOAK/lambda-serverless-api/pkg/server"
)

// MessageBodyEncoding is returned when a base64 flagged body cannot be decoded
const MessageBodyEncoding = "request body is not valid base64"

// routerCache holds the router built for the current container
type routerCache struct {
	mu        sync.Mutex
	container *server.Container
	router    *handlers.Router
}

// get returns the cached router, rebuilding it when the container changed
func (rc *routerCache) get(container *server.Container) *handlers.Router {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if rc.router == nil || rc.container != container {
		rc.router = handlers.NewProductRouter(container.ProductService, container.Logger)
		rc.container = container
	}
	return rc.router
}

// newHandler builds the API Gateway handler. The container is created on the
// first invocation and reused with its router while the execution environment
// stays warm.
// The handler never returns a Go error: every failure becomes an envelope.
func newHandler(cm *lambda.ConnectionManager) func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return newCachedHandler(cm, &routerCache{})
}

func newCachedHandler(cm *lambda.ConnectionManager, routers *routerCache) func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return func(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		req, err := lambda.FromAPIGateway(event)
		if err != nil {
			return lambda.ToAPIGateway(handlers.BuildResponse(http.StatusBadRequest, models.MessageBody{Message: MessageBodyEncoding})), nil
		}

		container, err := cm.GetContainer(ctx)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"request_id": req.RequestID,
				"error":      err.Error(),
			}).Error("Failed to initialize container")
			return lambda.ToAPIGateway(handlers.BuildResponse(http.StatusInternalServerError, models.MessageBody{Message: services.MessageInternalError})), nil
		}

		router := routers.get(container)
		return lambda.ToAPIGateway(router.Handle(ctx, req)), nil
	}
}

func main() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	awslambda.Start(newHandler(lambda.GetConnectionManager()))
}
