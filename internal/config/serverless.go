package config

import (
	"context"
	"os"
)

// ServerlessConfig holds serverless-specific configuration
type ServerlessConfig struct {
	IsLambda     bool
	FunctionName string
	Region       string
	Stage        string
}

// GetServerlessConfig returns the serverless configuration read from the
// Lambda runtime environment
func GetServerlessConfig() *ServerlessConfig {
	return &ServerlessConfig{
		IsLambda:     isRunningInLambda(),
		FunctionName: os.Getenv("AWS_LAMBDA_FUNCTION_NAME"),
		Region:       os.Getenv("AWS_REGION"),
		Stage:        GetEnv("STAGE", "dev"),
	}
}

// isRunningInLambda detects if the application is running in AWS Lambda
func isRunningInLambda() bool {
	return os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""
}

// IsServerlessMode returns true if running in serverless mode
func IsServerlessMode() bool {
	return isRunningInLambda()
}

// GetDeploymentMode returns the current deployment mode
func GetDeploymentMode() string {
	if IsServerlessMode() {
		return "serverless"
	}
	return "server"
}

// AdaptConfigForServerless modifies configuration for serverless deployment.
// Inside Lambda the only usable store is DynamoDB and logs go to CloudWatch
// as JSON.
func AdaptConfigForServerless(ctx context.Context, config *Config) *Config {
	if !IsServerlessMode() {
		return config
	}

	sc := GetServerlessConfig()

	config.Store.Type = StoreDynamoDB
	if sc.Region != "" {
		config.Store.Region = sc.Region
	}

	config.Log.Format = LogFormatJSON
	config.Environment = sc.Stage

	return config
}

// GetOptimizedConfig returns validated configuration adapted to the current deployment mode
func GetOptimizedConfig() (*Config, error) {
	config, err := Load()
	if err != nil {
		return nil, err
	}

	// Apply serverless adaptations if needed
	config = AdaptConfigForServerless(context.Background(), config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}
