package lambda

import (
	"context"
	"fmt"
	"sync"

	"github.com/devLucasOAK/lambda-serverless-api/internal/config"
	"github.com/devLucasOAK/lambda-serverless-api/pkg/server"
)

// ConnectionManager keeps one service container alive across warm Lambda
// invocations. A failed initialization is retried on the next invocation.
type ConnectionManager struct {
	container *server.Container
	mu        sync.Mutex
	config    *config.Config
	newFn     func(*config.Config) (*server.Container, error)
}

var (
	globalConnectionManager *ConnectionManager
	connectionManagerOnce   sync.Once
)

// GetConnectionManager returns the global connection manager instance
func GetConnectionManager() *ConnectionManager {
	connectionManagerOnce.Do(func() {
		globalConnectionManager = NewConnectionManager(nil)
	})
	return globalConnectionManager
}

// NewConnectionManager creates a connection manager. A nil cfg is loaded
// from the environment on first use.
func NewConnectionManager(cfg *config.Config) *ConnectionManager {
	return &ConnectionManager{
		config: cfg,
		newFn:  server.NewContainer,
	}
}

// GetContainer returns the service container, initializing it if necessary
func (cm *ConnectionManager) GetContainer(ctx context.Context) (*server.Container, error) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.container != nil {
		return cm.container, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if cm.config == nil {
		cfg, err := config.GetOptimizedConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		cm.config = cfg
	}

	container, err := cm.newFn(cm.config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize container: %w", err)
	}

	cm.container = container
	return container, nil
}

// Cleanup closes the container; the next GetContainer builds a new one
func (cm *ConnectionManager) Cleanup() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.container == nil {
		return nil
	}

	err := cm.container.Close()
	cm.container = nil
	return err
}
