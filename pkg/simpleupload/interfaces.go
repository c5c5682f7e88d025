package simpleupload

import (
	"context"
	"time"
)

// Gateway defines the object-storage capability the service delegates to.
// Presign operations never transfer bytes; HeadObject performs a round-trip
// to the provider and fails when the object is absent or inaccessible.
type Gateway interface {
	// PresignPut returns a URL valid for ttl that accepts a PUT of exactly contentType
	PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, error)

	// PresignGet returns a URL valid for ttl that serves the object body
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)

	// HeadObject retrieves object attributes without the body
	HeadObject(ctx context.Context, key string) (*ObjectMeta, error)
}

// Service issues presigned URLs and looks up object metadata.
type Service interface {
	IssueUploadURL(ctx context.Context, req UploadRequest) (*PresignedURL, error)
	IssueDownloadURL(ctx context.Context, key string) (*PresignedURL, error)
	GetMetadata(ctx context.Context, key string) (*ObjectMeta, error)

	// Rules returns the validation rules the service was built with
	Rules() Rules
}
