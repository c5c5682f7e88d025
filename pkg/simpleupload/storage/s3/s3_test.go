package s3

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-upload/pkg/simpleupload"
)

var _ simpleupload.Gateway = (*Backend)(nil)

func newTestBackend(t *testing.T, endpoint string) *Backend {
	t.Helper()
	backend, err := New(Config{
		Region:          "us-east-1",
		Bucket:          "test-bucket",
		AccessKeyID:     "test-key",
		SecretAccessKey: "test-secret",
		Endpoint:        endpoint,
		UsePathStyle:    true,
	})
	require.NoError(t, err)
	return backend
}

// TestS3Backend_BasicConfiguration tests the configuration and creation of S3 backend
func TestS3Backend_BasicConfiguration(t *testing.T) {
	t.Run("EmptyBucket", func(t *testing.T) {
		_, err := New(Config{Region: "us-east-1"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket name is required")
	})

	t.Run("DefaultRegion", func(t *testing.T) {
		backend, err := New(Config{
			Bucket:          "test-bucket",
			AccessKeyID:     "test-key",
			SecretAccessKey: "test-secret",
		})
		require.NoError(t, err)
		assert.Equal(t, "us-east-1", backend.config.Region)
	})

	t.Run("InvalidSSEAlgorithm", func(t *testing.T) {
		_, err := New(Config{
			Bucket:          "test-bucket",
			AccessKeyID:     "test-key",
			SecretAccessKey: "test-secret",
			EnableSSE:       true,
			SSEAlgorithm:    "rot13",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid SSE algorithm")
	})
}

// Presigning is a local computation, so these run without a server.
func TestS3Backend_PresignPut(t *testing.T) {
	backend := newTestBackend(t, "http://localhost:9000")

	raw, err := backend.PresignPut(context.Background(), "uploads/test-file.jpg", "image/jpeg", time.Hour)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.Equal(t, "/test-bucket/uploads/test-file.jpg", u.Path)

	q := u.Query()
	assert.Equal(t, "3600", q.Get("X-Amz-Expires"))
	assert.NotEmpty(t, q.Get("X-Amz-Signature"))
	assert.Equal(t, "content-type;host", q.Get("X-Amz-SignedHeaders"))
	assert.True(t, strings.HasPrefix(q.Get("X-Amz-Credential"), "test-key/"))
}

func TestS3Backend_PresignPutWithSSE(t *testing.T) {
	backend, err := New(Config{
		Region:          "us-east-1",
		Bucket:          "test-bucket",
		AccessKeyID:     "test-key",
		SecretAccessKey: "test-secret",
		Endpoint:        "http://localhost:9000",
		UsePathStyle:    true,
		EnableSSE:       true,
		SSEAlgorithm:    "AES256",
	})
	require.NoError(t, err)

	raw, err := backend.PresignPut(context.Background(), "uploads/a.pdf", "application/pdf", time.Minute)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "60", u.Query().Get("X-Amz-Expires"))
	assert.Contains(t, u.Query().Get("X-Amz-SignedHeaders"), "content-type")
	assert.Contains(t, strings.ToLower(raw), "x-amz-server-side-encryption")
}

func TestS3Backend_PresignPutSignsEachContentType(t *testing.T) {
	backend := newTestBackend(t, "http://localhost:9000")
	ctx := context.Background()

	jpeg, err := backend.PresignPut(ctx, "uploads/same.bin", "image/jpeg", time.Hour)
	require.NoError(t, err)
	pdf, err := backend.PresignPut(ctx, "uploads/same.bin", "application/pdf", time.Hour)
	require.NoError(t, err)

	ju, err := url.Parse(jpeg)
	require.NoError(t, err)
	pu, err := url.Parse(pdf)
	require.NoError(t, err)

	if ju.Query().Get("X-Amz-Date") == pu.Query().Get("X-Amz-Date") {
		assert.NotEqual(t, ju.Query().Get("X-Amz-Signature"), pu.Query().Get("X-Amz-Signature"))
	}
}

func TestS3Backend_PresignGet(t *testing.T) {
	backend := newTestBackend(t, "http://localhost:9000")

	raw, err := backend.PresignGet(context.Background(), "uploads/does-not-exist.png", time.Hour)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "/test-bucket/uploads/does-not-exist.png", u.Path)
	assert.Equal(t, "3600", u.Query().Get("X-Amz-Expires"))
}

func TestS3Backend_HeadObject(t *testing.T) {
	lastModified := time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		switch r.URL.Path {
		case "/test-bucket/uploads/report.pdf":
			w.Header().Set("Content-Length", "2048")
			w.Header().Set("Content-Type", "application/pdf")
			w.Header().Set("Last-Modified", lastModified.Format(http.TimeFormat))
			w.Header().Set("ETag", `"9b2cf535f27731c974343645a3985328"`)
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	backend := newTestBackend(t, srv.URL)
	ctx := context.Background()

	t.Run("existing object", func(t *testing.T) {
		meta, err := backend.HeadObject(ctx, "uploads/report.pdf")
		require.NoError(t, err)
		assert.Equal(t, int64(2048), meta.ContentLength)
		assert.Equal(t, "application/pdf", meta.ContentType)
		assert.True(t, lastModified.Equal(meta.LastModified))
		assert.Equal(t, `"9b2cf535f27731c974343645a3985328"`, meta.ETag)
	})

	t.Run("missing object", func(t *testing.T) {
		_, err := backend.HeadObject(ctx, "uploads/missing.pdf")
		require.Error(t, err)

		var storageErr *simpleupload.StorageError
		require.True(t, errors.As(err, &storageErr))
		assert.Equal(t, simpleupload.OpHeadObject, storageErr.Op)
		assert.Equal(t, "uploads/missing.pdf", storageErr.Key)
	})
}

func TestS3Backend_WrapError(t *testing.T) {
	backend := newTestBackend(t, "http://localhost:9000")

	err := backend.wrapError(simpleupload.OpHeadObject, "uploads/a.png", &types.NotFound{})
	assert.ErrorIs(t, err, simpleupload.ErrObjectNotFound)

	var storageErr *simpleupload.StorageError
	require.True(t, errors.As(err, &storageErr))
	assert.Equal(t, "NotFound", storageErr.Code)
	assert.Equal(t, "s3", storageErr.Backend)

	plain := errors.New("dial tcp: connection refused")
	err = backend.wrapError(simpleupload.OpPresignGet, "uploads/a.png", plain)
	assert.NotErrorIs(t, err, simpleupload.ErrObjectNotFound)
	assert.ErrorIs(t, err, plain)
}
