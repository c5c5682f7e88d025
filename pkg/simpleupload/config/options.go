package config

import (
	"fmt"

	"github.com/tendant/simple-upload/pkg/simpleupload"
)

// WithPort sets the server port
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		if port == "" {
			return fmt.Errorf("port cannot be empty")
		}
		c.Port = port
		return nil
	}
}

// WithEnvironment sets the environment (development, production, testing)
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		if env == "" {
			return fmt.Errorf("environment cannot be empty")
		}
		c.Environment = env
		return nil
	}
}

// WithAllowedOrigins sets the CORS origins
func WithAllowedOrigins(origins ...string) Option {
	return func(c *ServerConfig) error {
		c.AllowedOrigins = origins
		return nil
	}
}

// WithMemoryStorage configures the in-memory gateway
func WithMemoryStorage(bucket string) Option {
	return func(c *ServerConfig) error {
		if bucket == "" {
			return fmt.Errorf("bucket cannot be empty")
		}
		c.Storage = StorageConfig{Type: StorageTypeMemory, Bucket: bucket}
		return nil
	}
}

// WithS3Storage configures the S3 gateway
func WithS3Storage(storage StorageConfig) Option {
	return func(c *ServerConfig) error {
		if storage.Bucket == "" {
			return fmt.Errorf("bucket cannot be empty")
		}
		storage.Type = StorageTypeS3
		if storage.Region == "" {
			storage.Region = "us-east-1"
		}
		if storage.SSEAlgorithm == "" {
			storage.SSEAlgorithm = "AES256"
		}
		c.Storage = storage
		return nil
	}
}

// WithRules replaces the validation rules. Intended for tests.
func WithRules(rules simpleupload.Rules) Option {
	return func(c *ServerConfig) error {
		if err := rules.Validate(); err != nil {
			return fmt.Errorf("invalid rules: %w", err)
		}
		c.Rules = rules
		return nil
	}
}
