package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// fileConfig is the env/file representation of ServerConfig.
//
// Environment variables:
//
//	PORT                   server port (default "3001")
//	ENVIRONMENT            development, production, testing
//	CORS_ALLOWED_ORIGINS   comma separated origins for the browser client
//	STORAGE_TYPE           "s3" (default) or "memory"
//	AWS_S3_BUCKET          bucket name
//	AWS_REGION             region (default "us-east-1")
//	AWS_ACCESS_KEY_ID      static credentials; empty uses the default chain
//	AWS_SECRET_ACCESS_KEY
//	AWS_S3_ENDPOINT        custom endpoint for MinIO and other S3-compatible stores
//	AWS_S3_USE_PATH_STYLE
//	AWS_S3_ENABLE_SSE, AWS_S3_SSE_ALGORITHM, AWS_S3_SSE_KMS_KEY_ID
//	AWS_S3_CREATE_BUCKET   create the bucket at startup when missing
type fileConfig struct {
	Port           string            `yaml:"port" env:"PORT" env-default:"3001" env-description:"server port"`
	Environment    string            `yaml:"environment" env:"ENVIRONMENT" env-default:"development" env-description:"development, production or testing"`
	AllowedOrigins []string          `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"http://localhost:3000" env-description:"CORS origins"`
	Storage        storageFileConfig `yaml:"storage"`
}

type storageFileConfig struct {
	Type                   string `yaml:"type" env:"STORAGE_TYPE" env-default:"s3"`
	Bucket                 string `yaml:"bucket" env:"AWS_S3_BUCKET" env-default:"default-bucket"`
	Region                 string `yaml:"region" env:"AWS_REGION" env-default:"us-east-1"`
	AccessKeyID            string `yaml:"access_key_id" env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey        string `yaml:"secret_access_key" env:"AWS_SECRET_ACCESS_KEY"`
	Endpoint               string `yaml:"endpoint" env:"AWS_S3_ENDPOINT"`
	UsePathStyle           bool   `yaml:"use_path_style" env:"AWS_S3_USE_PATH_STYLE" env-default:"false"`
	EnableSSE              bool   `yaml:"enable_sse" env:"AWS_S3_ENABLE_SSE" env-default:"false"`
	SSEAlgorithm           string `yaml:"sse_algorithm" env:"AWS_S3_SSE_ALGORITHM" env-default:"AES256"`
	SSEKMSKeyID            string `yaml:"sse_kms_key_id" env:"AWS_S3_SSE_KMS_KEY_ID"`
	CreateBucketIfNotExist bool   `yaml:"create_bucket" env:"AWS_S3_CREATE_BUCKET" env-default:"false"`
}

// WithEnv reads the server configuration from environment variables.
func WithEnv() Option {
	return func(c *ServerConfig) error {
		var fc fileConfig
		if err := cleanenv.ReadEnv(&fc); err != nil {
			return fmt.Errorf("failed to read environment: %w", err)
		}
		fc.apply(c)
		return nil
	}
}

// WithFile reads the server configuration from a yaml, json, toml or .env
// file. Environment variables still take precedence over file values.
func WithFile(path string) Option {
	return func(c *ServerConfig) error {
		var fc fileConfig
		if err := cleanenv.ReadConfig(path, &fc); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		fc.apply(c)
		return nil
	}
}

// Usage returns a description of the supported environment variables
func Usage() (string, error) {
	var fc fileConfig
	return cleanenv.GetDescription(&fc, nil)
}

func (fc fileConfig) apply(c *ServerConfig) {
	c.Port = fc.Port
	c.Environment = fc.Environment
	c.AllowedOrigins = fc.AllowedOrigins
	c.Storage = StorageConfig{
		Type:                   fc.Storage.Type,
		Bucket:                 fc.Storage.Bucket,
		Region:                 fc.Storage.Region,
		AccessKeyID:            fc.Storage.AccessKeyID,
		SecretAccessKey:        fc.Storage.SecretAccessKey,
		Endpoint:               fc.Storage.Endpoint,
		UsePathStyle:           fc.Storage.UsePathStyle,
		EnableSSE:              fc.Storage.EnableSSE,
		SSEAlgorithm:           fc.Storage.SSEAlgorithm,
		SSEKMSKeyID:            fc.Storage.SSEKMSKeyID,
		CreateBucketIfNotExist: fc.Storage.CreateBucketIfNotExist,
	}
}
