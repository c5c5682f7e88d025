package simpleupload

import (
	"errors"
	"fmt"
	"net/http"
)

// Validation reasons. The message of each sentinel is what callers see.
var (
	// ErrInvalidKeyFormat indicates the key does not match uploads/<chars>.<ext>
	ErrInvalidKeyFormat = errors.New("invalid key format")

	// ErrFileSizeExceeded indicates the declared content length is above the ceiling
	ErrFileSizeExceeded = errors.New("file size exceeded")

	// ErrFileTooSmall indicates the declared content length is below one byte
	ErrFileTooSmall = errors.New("file size must be at least 1 byte")

	// ErrInvalidMIMEType indicates the content type is not in the allow-list
	ErrInvalidMIMEType = errors.New("invalid MIME type")
)

var (
	// ErrObjectNotFound indicates the storage provider has no object for a key
	ErrObjectNotFound = errors.New("object not found")

	// ErrNoGateway indicates a service was built without a storage gateway
	ErrNoGateway = errors.New("storage gateway is required")
)

// Gateway operations, used to pick the public message for a failure.
const (
	OpPresignPut = "presign-put"
	OpPresignGet = "presign-get"
	OpHeadObject = "head-object"
)

var genericMessages = map[string]string{
	OpPresignPut: "failed to generate upload URL",
	OpPresignGet: "failed to generate download URL",
	OpHeadObject: "failed to get file metadata",
}

// GenericMessage returns the fixed caller-facing message for a failed operation.
func GenericMessage(op string) string {
	if msg, ok := genericMessages[op]; ok {
		return msg
	}
	return "internal server error"
}

// StatusCoder is implemented by errors that carry a client-facing status.
type StatusCoder interface {
	error
	HTTPStatus() int
	PublicMessage() string
}

// FieldError describes one failed check on one request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// ValidationError is returned when a request fails validation. It always maps to 400.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	return e.Fields[0].Message
}

// Unwrap exposes the per-field sentinels so errors.Is works on the aggregate.
func (e *ValidationError) Unwrap() []error {
	errs := make([]error, 0, len(e.Fields))
	for _, f := range e.Fields {
		if f.Err != nil {
			errs = append(errs, f.Err)
		}
	}
	return errs
}

func (e *ValidationError) HTTPStatus() int {
	return http.StatusBadRequest
}

func (e *ValidationError) PublicMessage() string {
	return e.Error()
}

// GatewayError wraps any failure from the storage gateway.
// The cause is for logs only; PublicMessage never includes it.
type GatewayError struct {
	Op  string
	Key string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway operation %s failed for key %s: %v", e.Op, e.Key, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

func (e *GatewayError) HTTPStatus() int {
	return http.StatusInternalServerError
}

func (e *GatewayError) PublicMessage() string {
	return GenericMessage(e.Op)
}

// StorageError represents an error raised inside a storage backend
type StorageError struct {
	Backend string
	Key     string
	Op      string
	Code    string
	Err     error
}

func (e *StorageError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("storage operation %s failed for key %s on backend %s (%s): %v", e.Op, e.Key, e.Backend, e.Code, e.Err)
	}
	return fmt.Sprintf("storage operation %s failed for key %s on backend %s: %v", e.Op, e.Key, e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
