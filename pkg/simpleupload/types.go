package simpleupload

import "time"

// UploadRequest describes a file a client intends to PUT directly to storage.
// Fields are declared in the order their checks are reported.
type UploadRequest struct {
	Key           string `json:"key" validate:"required,objectkey"`
	ContentLength int64  `json:"contentLength" validate:"required,min=1,maxsize"`
	ContentType   string `json:"contentType" validate:"required,allowedmime"`
}

// KeyQuery is the shape of the download and metadata query parameters.
type KeyQuery struct {
	Key string `json:"key" validate:"required,objectkey"`
}

// PresignedURL is the result of a presign operation.
// Key is only populated for uploads.
type PresignedURL struct {
	URL       string `json:"url"`
	Key       string `json:"key,omitempty"`
	ExpiresIn int    `json:"expiresIn"`
}

// ObjectMeta mirrors what the storage provider reports for an object.
type ObjectMeta struct {
	ContentLength int64     `json:"contentLength"`
	ContentType   string    `json:"contentType"`
	LastModified  time.Time `json:"lastModified"`
	ETag          string    `json:"etag"`
}

// UploadedFileRecord is a client-side record of a completed upload.
// It is never sent to or stored by the server.
type UploadedFileRecord struct {
	Key        string    `json:"key"`
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	Type       string    `json:"type"`
	UploadedAt time.Time `json:"uploadedAt"`
}
