package simpleupload

import (
	"context"
	"fmt"
	"log/slog"
)

// service implements the Service interface
type service struct {
	gateway Gateway
	rules   Rules
	logger  *slog.Logger
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithGateway sets the storage gateway
func WithGateway(gateway Gateway) Option {
	return func(s *service) {
		s.gateway = gateway
	}
}

// WithRules overrides the default validation rules
func WithRules(rules Rules) Option {
	return func(s *service) {
		s.rules = rules
	}
}

// WithLogger sets the structured logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		rules:  DefaultRules(),
		logger: slog.Default(),
	}

	for _, option := range options {
		option(s)
	}

	if s.gateway == nil {
		return nil, ErrNoGateway
	}
	if err := s.rules.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rules: %w", err)
	}

	return s, nil
}

func (s *service) Rules() Rules {
	return s.rules
}

func (s *service) IssueUploadURL(ctx context.Context, req UploadRequest) (*PresignedURL, error) {
	if err := s.rules.ValidateUpload(req).Err(); err != nil {
		s.logger.Warn("Rejected upload request", "key", req.Key, "content_type", req.ContentType,
			"content_length", req.ContentLength, "error", err)
		return nil, err
	}

	url, err := s.gateway.PresignPut(ctx, req.Key, req.ContentType, s.rules.URLExpiry)
	if err != nil {
		s.logger.Error("Failed to generate presigned upload URL", "key", req.Key, "error", err)
		return nil, &GatewayError{Op: OpPresignPut, Key: req.Key, Err: err}
	}

	s.logger.Info("Generated presigned PUT URL", "key", req.Key)
	return &PresignedURL{
		URL:       url,
		Key:       req.Key,
		ExpiresIn: s.rules.ExpiresInSeconds(),
	}, nil
}

// IssueDownloadURL does not check that the object exists; a well-formed key
// for a missing object still gets a URL that fails when fetched.
func (s *service) IssueDownloadURL(ctx context.Context, key string) (*PresignedURL, error) {
	if err := s.rules.ValidateKey(key).Err(); err != nil {
		s.logger.Warn("Rejected download request", "key", key, "error", err)
		return nil, err
	}

	url, err := s.gateway.PresignGet(ctx, key, s.rules.URLExpiry)
	if err != nil {
		s.logger.Error("Failed to generate presigned download URL", "key", key, "error", err)
		return nil, &GatewayError{Op: OpPresignGet, Key: key, Err: err}
	}

	s.logger.Info("Generated presigned GET URL", "key", key)
	return &PresignedURL{
		URL:       url,
		ExpiresIn: s.rules.ExpiresInSeconds(),
	}, nil
}

// GetMetadata reports a missing object as a gateway failure, not as not-found.
func (s *service) GetMetadata(ctx context.Context, key string) (*ObjectMeta, error) {
	if err := s.rules.ValidateKey(key).Err(); err != nil {
		s.logger.Warn("Rejected metadata request", "key", key, "error", err)
		return nil, err
	}

	meta, err := s.gateway.HeadObject(ctx, key)
	if err != nil {
		s.logger.Error("Failed to get object metadata", "key", key, "error", err)
		return nil, &GatewayError{Op: OpHeadObject, Key: key, Err: err}
	}

	s.logger.Info("Retrieved object metadata", "key", key)
	return meta, nil
}
