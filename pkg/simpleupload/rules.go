package simpleupload

import (
	"errors"
	"regexp"
	"slices"
	"strings"
	"time"
)

const (
	DefaultKeyPrefix       = "uploads/"
	DefaultMaxBytes  int64 = 10 << 20
	DefaultURLExpiry       = time.Hour
)

// DefaultKeyPattern anchors on the prefix, so it also covers the prefix check.
var DefaultKeyPattern = regexp.MustCompile(`^uploads/[a-zA-Z0-9\-_]+\.\w+$`)

// DefaultAllowedMIMETypes is the fixed upload allow-list.
var DefaultAllowedMIMETypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"application/pdf",
	"text/plain",
}

// Rules holds the static limits every request is checked against.
// Treat a Rules value as immutable once handed to a service.
type Rules struct {
	KeyPrefix        string
	KeyPattern       *regexp.Regexp
	MaxBytes         int64
	AllowedMIMETypes []string
	URLExpiry        time.Duration
}

// DefaultRules returns the production limits.
func DefaultRules() Rules {
	return Rules{
		KeyPrefix:        DefaultKeyPrefix,
		KeyPattern:       DefaultKeyPattern,
		MaxBytes:         DefaultMaxBytes,
		AllowedMIMETypes: slices.Clone(DefaultAllowedMIMETypes),
		URLExpiry:        DefaultURLExpiry,
	}
}

// Validate checks the rules themselves are usable.
func (r Rules) Validate() error {
	if r.KeyPattern == nil {
		return errors.New("key pattern is required")
	}
	if r.MaxBytes <= 0 {
		return errors.New("max bytes must be positive")
	}
	if len(r.AllowedMIMETypes) == 0 {
		return errors.New("at least one allowed MIME type is required")
	}
	if r.URLExpiry < time.Second {
		return errors.New("URL expiry must be at least one second")
	}
	return nil
}

// ExpiresInSeconds is the URL TTL as reported to callers.
func (r Rules) ExpiresInSeconds() int {
	return int(r.URLExpiry / time.Second)
}

func (r Rules) CheckKey(key string) error {
	if r.KeyPattern == nil || !r.KeyPattern.MatchString(key) {
		return ErrInvalidKeyFormat
	}
	return nil
}

func (r Rules) CheckKeyPrefix(key string) error {
	if !strings.HasPrefix(key, r.KeyPrefix) {
		return ErrInvalidKeyFormat
	}
	return nil
}

func (r Rules) CheckSize(n int64) error {
	if n < 1 {
		return ErrFileTooSmall
	}
	if n > r.MaxBytes {
		return ErrFileSizeExceeded
	}
	return nil
}

func (r Rules) CheckContentType(contentType string) error {
	if !slices.Contains(r.AllowedMIMETypes, contentType) {
		return ErrInvalidMIMEType
	}
	return nil
}

// ValidationResult is either OK or a list of field errors.
type ValidationResult struct {
	Errors []FieldError
}

func (v ValidationResult) OK() bool {
	return len(v.Errors) == 0
}

// Err returns nil for an OK result and a *ValidationError otherwise.
func (v ValidationResult) Err() error {
	if v.OK() {
		return nil
	}
	return &ValidationError{Fields: v.Errors}
}

func (v *ValidationResult) add(field string, err error) {
	v.Errors = append(v.Errors, FieldError{Field: field, Message: err.Error(), Err: err})
}

// ValidateKey checks a key used for download and metadata lookups.
func (r Rules) ValidateKey(key string) ValidationResult {
	var res ValidationResult
	if err := r.CheckKey(key); err != nil {
		res.add("key", err)
	}
	return res
}

// ValidateUpload runs the upload checks in order: key pattern, size, MIME
// type, then the explicit prefix check.
func (r Rules) ValidateUpload(req UploadRequest) ValidationResult {
	var res ValidationResult
	keyErr := r.CheckKey(req.Key)
	if keyErr != nil {
		res.add("key", keyErr)
	}
	if err := r.CheckSize(req.ContentLength); err != nil {
		res.add("contentLength", err)
	}
	if err := r.CheckContentType(req.ContentType); err != nil {
		res.add("contentType", err)
	}
	// only reachable with a custom pattern that does not anchor on the prefix
	if keyErr == nil {
		if err := r.CheckKeyPrefix(req.Key); err != nil {
			res.add("key", err)
		}
	}
	return res
}
