package server

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/sirupsen/logrus"

	"github.com/devLucasOAK/lambda-serverless-api/internal/config"
	"github.com/devLucasOAK/lambda-serverless-api/internal/database"
	"github.com/devLucasOAK/lambda-serverless-api/internal/repositories"
	"github.com/devLucasOAK/lambda-serverless-api/internal/repositories/dynamo"
	"github.com/devLucasOAK/lambda-serverless-api/internal/repositories/memory"
	"github.com/devLucasOAK/lambda-serverless-api/internal/repositories/sqlite"
	"github.com/devLucasOAK/lambda-serverless-api/internal/services"
)

// startupPingTimeout bounds the store reachability check done at construction
const startupPingTimeout = 5 * time.Second

// Container holds all application dependencies
type Container struct {
	Config         *config.Config
	Logger         *logrus.Logger
	Repository     repositories.ProductRepository
	ProductService services.ProductService

	// Internal dependencies
	conn *database.ConnectionManager
}

// NewContainer creates a new dependency injection container. The store is
// selected by cfg.Store.Type; an unreachable store is logged, not fatal, so
// the first request reports the failure through the normal error path.
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	container := &Container{
		Config: cfg,
		Logger: logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupPingTimeout)
	defer cancel()

	repo, err := container.newRepository(ctx)
	if err != nil {
		container.Close()
		return nil, err
	}
	container.Repository = repo
	container.ProductService = services.NewProductService(repo, logger)

	if err := repo.Ping(ctx); err != nil {
		logger.WithFields(logrus.Fields{
			"store": cfg.Store.Type,
			"error": err.Error(),
		}).Warn("Product store is not reachable")
	}

	logger.WithFields(logrus.Fields{
		"store":       cfg.Store.Type,
		"environment": cfg.Environment,
		"mode":        config.GetDeploymentMode(),
	}).Info("Container initialized")

	return container, nil
}

// newRepository builds the product repository for the configured store
func (c *Container) newRepository(ctx context.Context) (repositories.ProductRepository, error) {
	store := c.Config.Store

	switch store.Type {
	case config.StoreDynamoDB:
		client, err := newDynamoClient(ctx, store)
		if err != nil {
			return nil, err
		}
		return dynamo.NewProductRepository(client, store.TableName, c.Logger), nil

	case config.StoreSQLite:
		c.conn = database.NewConnectionManager(&database.ConnectionConfig{
			DatabasePath:    store.SQLitePath,
			AutoMigrate:     true,
			ConnMaxLifetime: time.Hour,
			Logger:          c.Logger,
		})
		if err := c.conn.Connect(ctx); err != nil {
			return nil, fmt.Errorf("failed to connect to sqlite store: %w", err)
		}
		return sqlite.NewProductRepository(c.conn.GetDB(), store.PageSize, c.Logger), nil

	case config.StoreMemory:
		return memory.NewProductRepository(store.PageSize), nil

	default:
		return nil, fmt.Errorf("unsupported store type %q", store.Type)
	}
}

// newDynamoClient loads the AWS SDK configuration from the environment and
// points the client at store.Endpoint when one is set
func newDynamoClient(ctx context.Context, store config.StoreConfig) (*dynamodb.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if store.Region != "" {
		opts = append(opts, awsconfig.WithRegion(store.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if store.Endpoint != "" {
			o.BaseEndpoint = aws.String(store.Endpoint)
		}
	}), nil
}

// Close cleans up all resources
func (c *Container) Close() error {
	if c.Repository != nil {
		if err := c.Repository.Close(); err != nil {
			return fmt.Errorf("failed to close repository: %w", err)
		}
	}

	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
		c.conn = nil
	}

	return nil
}
