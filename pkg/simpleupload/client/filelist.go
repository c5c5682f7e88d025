package client

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/tendant/simple-upload/pkg/simpleupload"
)

var (
	// ErrDownloadFailed wraps any failure while obtaining or opening a download URL
	ErrDownloadFailed = errors.New("download failed")

	// ErrDownloadInProgress is returned when the same key is already being downloaded
	ErrDownloadInProgress = errors.New("download already in progress")
)

// DownloadPresigner issues download URLs
type DownloadPresigner interface {
	PresignDownload(ctx context.Context, key string) (*simpleupload.PresignedURL, error)
}

// OpenFunc consumes a presigned download URL, e.g. by fetching it or handing it to a browser
type OpenFunc func(ctx context.Context, url string) error

// FileList is the client's in-memory list of completed uploads, most recent first.
// Nothing is persisted.
type FileList struct {
	mu          sync.Mutex
	records     []simpleupload.UploadedFileRecord
	downloading map[string]struct{}
	presigner   DownloadPresigner
}

func NewFileList(presigner DownloadPresigner) *FileList {
	return &FileList{
		downloading: make(map[string]struct{}),
		presigner:   presigner,
	}
}

// Add prepends a record
func (l *FileList) Add(record simpleupload.UploadedFileRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append([]simpleupload.UploadedFileRecord{record}, l.records...)
}

// Records returns a copy of the list
func (l *FileList) Records() []simpleupload.UploadedFileRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]simpleupload.UploadedFileRecord, len(l.records))
	copy(out, l.records)
	return out
}

func (l *FileList) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// IsDownloading reports whether a download for key is in flight
func (l *FileList) IsDownloading(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.downloading[key]
	return ok
}

// Download obtains a fresh URL for key and passes it to open. Different keys
// may download concurrently; the in-flight marker is always cleared.
func (l *FileList) Download(ctx context.Context, key string, open OpenFunc) error {
	l.mu.Lock()
	if _, ok := l.downloading[key]; ok {
		l.mu.Unlock()
		return ErrDownloadInProgress
	}
	l.downloading[key] = struct{}{}
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		delete(l.downloading, key)
		l.mu.Unlock()
	}()

	presigned, err := l.presigner.PresignDownload(ctx, key)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}

	if err := open(ctx, presigned.URL); err != nil {
		return fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}
	return nil
}

var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatFileSize renders a byte count with 1024-based units and at most two decimals
func FormatFileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}

	i := 0
	divisor := int64(1)
	for i < len(sizeUnits)-1 && bytes >= divisor*1024 {
		divisor *= 1024
		i++
	}

	value := math.Round(float64(bytes)/float64(divisor)*100) / 100
	return strconv.FormatFloat(value, 'f', -1, 64) + " " + sizeUnits[i]
}

// Icon returns a category glyph for a content type
func Icon(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return "🖼️"
	case contentType == "application/pdf":
		return "📄"
	case contentType == "text/plain":
		return "📝"
	default:
		return "📁"
	}
}
