package client

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
)

const defaultContentType = "application/octet-stream"

// File is a local file selected for upload
type File struct {
	Name string
	Size int64
	Type string

	open func() (io.ReadCloser, error)
}

// Open returns a fresh reader over the file contents
func (f File) Open() (io.ReadCloser, error) {
	if f.open == nil {
		return nil, fmt.Errorf("file %s has no content", f.Name)
	}
	return f.open()
}

// OpenFile describes the file at path, detecting its type from content
func OpenFile(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, err
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("%s is a directory", path)
	}

	contentType := defaultContentType
	if mt, err := mimetype.DetectFile(path); err == nil {
		contentType = baseMediaType(mt.String())
	}

	return File{
		Name: filepath.Base(path),
		Size: info.Size(),
		Type: contentType,
		open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

// NewFile describes an in-memory file. An empty contentType is detected from data.
func NewFile(name, contentType string, data []byte) File {
	if contentType == "" {
		contentType = baseMediaType(mimetype.Detect(data).String())
	}
	return File{
		Name: name,
		Size: int64(len(data)),
		Type: contentType,
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// baseMediaType drops parameters such as charset, which the allow-list does not carry
func baseMediaType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType == "" {
		return defaultContentType
	}
	return mediaType
}
