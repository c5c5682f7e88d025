package client

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"
)

// ProgressFunc receives the transfer progress as a percentage in [0, 100]
type ProgressFunc func(percent int)

// Transfer sends file bytes straight to a presigned URL.
// It does not retry; a failed transfer fails the upload.
type Transfer struct {
	httpClient *http.Client
}

// TransferOption is a functional option for configuring a Transfer
type TransferOption func(*Transfer)

// WithTransferHTTPClient sets a custom HTTP client for transfers
func WithTransferHTTPClient(client *http.Client) TransferOption {
	return func(t *Transfer) {
		t.httpClient = client
	}
}

func NewTransfer(opts ...TransferOption) *Transfer {
	t := &Transfer{
		httpClient: &http.Client{
			Timeout: 30 * time.Minute,
		},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Put uploads size bytes from body to presignedURL. The Content-Type header
// must match the one the URL was signed with.
func (t *Transfer) Put(ctx context.Context, presignedURL string, body io.Reader, size int64, contentType string, progress ProgressFunc) error {
	reader := body
	if progress != nil {
		reader = &progressReader{reader: body, total: size, callback: progress, last: -1}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, presignedURL, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.ContentLength = size
	req.Header.Set("Content-Type", contentType)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("upload failed with status: %s", resp.Status)
	}

	return nil
}

// Percent rounds loaded/total to a whole percentage
func Percent(loaded, total int64) int {
	if total <= 0 {
		return 0
	}
	p := int(math.Round(float64(loaded) * 100 / float64(total)))
	return min(max(p, 0), 100)
}

// progressReader wraps an io.Reader to track upload progress
type progressReader struct {
	reader    io.Reader
	bytesRead int64
	total     int64
	last      int
	callback  ProgressFunc
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	pr.bytesRead += int64(n)
	if n > 0 {
		if pct := Percent(pr.bytesRead, pr.total); pct != pr.last {
			pr.last = pct
			pr.callback(pct)
		}
	}
	return n, err
}
