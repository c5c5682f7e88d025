package memory

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/tendant/simple-upload/pkg/simpleupload"
)

type object struct {
	data         []byte
	contentType  string
	lastModified time.Time
}

// Backend is an in-memory implementation of the simpleupload.Gateway interface.
// Its URLs use the memory:// scheme and are only meaningful to tests and local
// development; nothing serves them.
type Backend struct {
	mu      sync.RWMutex
	bucket  string
	objects map[string]object
	now     func() time.Time
}

// New creates a new in-memory storage backend
func New(bucket string) *Backend {
	return &Backend{
		bucket:  bucket,
		objects: make(map[string]object),
		now:     time.Now,
	}
}

// Put stores an object so HeadObject can report it
func (b *Backend) Put(key string, data []byte, contentType string) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.objects[key] = object{
		data:         append([]byte(nil), data...),
		contentType:  contentType,
		lastModified: b.now().UTC(),
	}
}

// PresignPut returns a fake presigned URL that records the method, expiry and content type
func (b *Backend) PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, error) {
	q := url.Values{}
	q.Set("X-Method", "PUT")
	q.Set("X-Expires", strconv.FormatInt(b.now().Add(ttl).Unix(), 10))
	q.Set("content-type", contentType)
	return b.objectURL(key, q), nil
}

// PresignGet returns a fake presigned URL; like S3 it does not check existence
func (b *Backend) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	q := url.Values{}
	q.Set("X-Method", "GET")
	q.Set("X-Expires", strconv.FormatInt(b.now().Add(ttl).Unix(), 10))
	return b.objectURL(key, q), nil
}

// HeadObject retrieves metadata for an object in memory
func (b *Backend) HeadObject(ctx context.Context, key string) (*simpleupload.ObjectMeta, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	obj, exists := b.objects[key]
	if !exists {
		return nil, &simpleupload.StorageError{
			Backend: "memory",
			Key:     key,
			Op:      simpleupload.OpHeadObject,
			Err:     simpleupload.ErrObjectNotFound,
		}
	}

	sum := md5.Sum(obj.data)
	return &simpleupload.ObjectMeta{
		ContentLength: int64(len(obj.data)),
		ContentType:   obj.contentType,
		LastModified:  obj.lastModified,
		ETag:          hex.EncodeToString(sum[:]),
	}, nil
}

func (b *Backend) objectURL(key string, q url.Values) string {
	u := url.URL{
		Scheme:   "memory",
		Host:     b.bucket,
		Path:     "/" + key,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// String implements fmt.Stringer for log output
func (b *Backend) String() string {
	return fmt.Sprintf("memory://%s", b.bucket)
}
