package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/devLucasOAK/lambda-serverless-api/docs"
	"github.com/devLucasOAK/lambda-serverless-api/internal/config"
	"github.com/devLucasOAK/lambda-serverless-api/internal/handlers"
	"github.com/devLucasOAK/lambda-serverless-api/internal/middleware"
	"github.com/devLucasOAK/lambda-serverless-api/pkg/server"
)

// slowRequestThreshold marks requests worth a warning in the local server log
const slowRequestThreshold = 500 * time.Millisecond

// newEngine builds the gin engine for the local server. Every path outside
// /swagger is answered by the product router.
func newEngine(container *server.Container) *gin.Engine {
	cfg := container.Config
	logger := container.Logger

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.StructuredLogger(logger))
	engine.Use(middleware.PerformanceMonitor(logger, slowRequestThreshold))
	engine.Use(middleware.CORS())
	engine.Use(middleware.SecurityHeaders())
	engine.Use(middleware.RateLimiter(logger, cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))
	engine.Use(middleware.RequestSizeLimit(middleware.DefaultMaxBodySize))
	engine.Use(middleware.ContentTypeValidation())

	// Swagger documentation
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router := handlers.NewProductRouter(container.ProductService, logger)
	engine.NoRoute(routerHandler(router))

	return engine
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}

	container, err := server.NewContainer(cfg)
	if err != nil {
		logrus.Fatalf("Failed to initialize container: %v", err)
	}
	defer container.Close()

	logger := container.Logger

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newEngine(container),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	logger.WithFields(logrus.Fields{
		"port":  cfg.Port,
		"store": cfg.Store.Type,
	}).Info("Server started")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
		return
	}

	logger.Info("Server exited")
}
