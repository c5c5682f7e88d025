package config

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/tendant/simple-upload/pkg/simpleupload"
	memorystorage "github.com/tendant/simple-upload/pkg/simpleupload/storage/memory"
	s3storage "github.com/tendant/simple-upload/pkg/simpleupload/storage/s3"
)

const (
	StorageTypeMemory = "memory"
	StorageTypeS3     = "s3"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
// WithEnv and WithFile assign every field they know about, so put them before
// programmatic overrides.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:           "3001",
		Environment:    "development",
		AllowedOrigins: []string{"http://localhost:3000"},
		Storage: StorageConfig{
			Type:         StorageTypeS3,
			Bucket:       "default-bucket",
			Region:       "us-east-1",
			SSEAlgorithm: "AES256",
		},
		Rules: simpleupload.DefaultRules(),
	}
}

// ServerConfig represents server configuration for the upload service
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing

	// Origins allowed to call the API from a browser
	AllowedOrigins []string

	Storage StorageConfig

	// Validation limits; fixed in production, overridable for tests
	Rules simpleupload.Rules
}

// StorageConfig selects and configures the storage gateway
type StorageConfig struct {
	Type string // "memory", "s3"

	Bucket          string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
	UsePathStyle    bool

	EnableSSE    bool
	SSEAlgorithm string
	SSEKMSKeyID  string

	CreateBucketIfNotExist bool
}

// IsDevelopment reports whether the server runs in development mode
func (c *ServerConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	switch c.Storage.Type {
	case StorageTypeMemory, StorageTypeS3:
	default:
		return fmt.Errorf("storage type must be '%s' or '%s', got: %s", StorageTypeMemory, StorageTypeS3, c.Storage.Type)
	}

	if c.Storage.Bucket == "" {
		return errors.New("storage bucket is required")
	}

	if err := c.Rules.Validate(); err != nil {
		return fmt.Errorf("invalid rules: %w", err)
	}

	return nil
}

// BuildGateway creates the storage gateway described by the configuration
func (c *ServerConfig) BuildGateway() (simpleupload.Gateway, error) {
	switch c.Storage.Type {
	case StorageTypeMemory:
		return memorystorage.New(c.Storage.Bucket), nil

	case StorageTypeS3:
		backend, err := s3storage.New(s3storage.Config{
			Region:                 c.Storage.Region,
			Bucket:                 c.Storage.Bucket,
			AccessKeyID:            c.Storage.AccessKeyID,
			SecretAccessKey:        c.Storage.SecretAccessKey,
			Endpoint:               c.Storage.Endpoint,
			UsePathStyle:           c.Storage.UsePathStyle,
			EnableSSE:              c.Storage.EnableSSE,
			SSEAlgorithm:           c.Storage.SSEAlgorithm,
			SSEKMSKeyID:            c.Storage.SSEKMSKeyID,
			CreateBucketIfNotExist: c.Storage.CreateBucketIfNotExist,
		})
		if err != nil {
			return nil, err
		}
		return backend, nil

	default:
		return nil, fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}
}

// BuildService creates a Service instance from the server configuration
func (c *ServerConfig) BuildService(logger *slog.Logger) (simpleupload.Service, error) {
	gateway, err := c.BuildGateway()
	if err != nil {
		return nil, fmt.Errorf("failed to build storage gateway: %w", err)
	}

	return simpleupload.New(
		simpleupload.WithGateway(gateway),
		simpleupload.WithRules(c.Rules),
		simpleupload.WithLogger(logger),
	)
}
