package simpleupload_test

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-upload/pkg/simpleupload"
)

func TestDefaultRules(t *testing.T) {
	rules := simpleupload.DefaultRules()

	assert.Equal(t, "uploads/", rules.KeyPrefix)
	assert.Equal(t, int64(10*1024*1024), rules.MaxBytes)
	assert.Equal(t, 3600, rules.ExpiresInSeconds())
	assert.Len(t, rules.AllowedMIMETypes, 6)
	require.NoError(t, rules.Validate())

	// callers must not be able to mutate the shared allow-list
	rules.AllowedMIMETypes[0] = "application/x-evil"
	assert.Equal(t, "image/jpeg", simpleupload.DefaultRules().AllowedMIMETypes[0])
}

func TestRules_CheckKey(t *testing.T) {
	rules := simpleupload.DefaultRules()

	valid := []string{
		"uploads/test-file.jpg",
		"uploads/a.png",
		"uploads/1700000000000-abc123_x.pdf",
		"uploads/A_B-c.txt",
	}
	for _, key := range valid {
		t.Run("valid "+key, func(t *testing.T) {
			assert.NoError(t, rules.CheckKey(key))
		})
	}

	invalid := []string{
		"",
		"invalid-key",
		"uploads/",
		"uploads/.png",
		"uploads/noext",
		"uploads/sub/dir.png",
		"uploads/space name.png",
		"uploads/a.png/",
		"other/a.png",
		"/uploads/a.png",
		"uploads/a.",
	}
	for _, key := range invalid {
		t.Run("invalid "+key, func(t *testing.T) {
			assert.ErrorIs(t, rules.CheckKey(key), simpleupload.ErrInvalidKeyFormat)
		})
	}
}

func TestRules_CheckSize(t *testing.T) {
	rules := simpleupload.DefaultRules()

	assert.NoError(t, rules.CheckSize(1))
	assert.NoError(t, rules.CheckSize(1024))
	assert.NoError(t, rules.CheckSize(10*1024*1024))
	assert.ErrorIs(t, rules.CheckSize(10*1024*1024+1), simpleupload.ErrFileSizeExceeded)
	assert.ErrorIs(t, rules.CheckSize(11*1024*1024), simpleupload.ErrFileSizeExceeded)
	assert.ErrorIs(t, rules.CheckSize(0), simpleupload.ErrFileTooSmall)
	assert.ErrorIs(t, rules.CheckSize(-5), simpleupload.ErrFileTooSmall)
}

func TestRules_CheckContentType(t *testing.T) {
	rules := simpleupload.DefaultRules()

	for _, ct := range simpleupload.DefaultAllowedMIMETypes {
		assert.NoError(t, rules.CheckContentType(ct), ct)
	}
	for _, ct := range []string{"application/octet-stream", "image/svg+xml", "", "IMAGE/PNG", "text/plain; charset=utf-8"} {
		assert.ErrorIs(t, rules.CheckContentType(ct), simpleupload.ErrInvalidMIMEType, ct)
	}
}

func TestRules_ValidateUpload(t *testing.T) {
	rules := simpleupload.DefaultRules()

	tests := []struct {
		name     string
		req      simpleupload.UploadRequest
		wantErrs []error
		fields   []string
	}{
		{
			name: "valid request",
			req:  simpleupload.UploadRequest{Key: "uploads/test-file.jpg", ContentType: "image/jpeg", ContentLength: 1024},
		},
		{
			name:     "bad key",
			req:      simpleupload.UploadRequest{Key: "invalid-key", ContentType: "image/jpeg", ContentLength: 1024},
			wantErrs: []error{simpleupload.ErrInvalidKeyFormat},
			fields:   []string{"key"},
		},
		{
			name:     "disallowed MIME type",
			req:      simpleupload.UploadRequest{Key: "uploads/a.png", ContentType: "application/octet-stream", ContentLength: 1024},
			wantErrs: []error{simpleupload.ErrInvalidMIMEType},
			fields:   []string{"contentType"},
		},
		{
			name:     "size exceeded",
			req:      simpleupload.UploadRequest{Key: "uploads/a.png", ContentType: "image/png", ContentLength: 11 << 20},
			wantErrs: []error{simpleupload.ErrFileSizeExceeded},
			fields:   []string{"contentLength"},
		},
		{
			name:     "every check fails in order",
			req:      simpleupload.UploadRequest{Key: "nope", ContentType: "x/y", ContentLength: 0},
			wantErrs: []error{simpleupload.ErrInvalidKeyFormat, simpleupload.ErrFileTooSmall, simpleupload.ErrInvalidMIMEType},
			fields:   []string{"key", "contentLength", "contentType"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := rules.ValidateUpload(tt.req)
			if len(tt.wantErrs) == 0 {
				assert.True(t, res.OK())
				assert.NoError(t, res.Err())
				return
			}

			require.False(t, res.OK())
			require.Len(t, res.Errors, len(tt.wantErrs))
			for i, fe := range res.Errors {
				assert.ErrorIs(t, fe.Err, tt.wantErrs[i])
				assert.Equal(t, tt.fields[i], fe.Field)
				assert.Equal(t, tt.wantErrs[i].Error(), fe.Message)
			}

			err := res.Err()
			var verr *simpleupload.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.wantErrs[0].Error(), err.Error())
			assert.Equal(t, 400, verr.HTTPStatus())
			for _, want := range tt.wantErrs {
				assert.ErrorIs(t, err, want)
			}
		})
	}
}

func TestRules_PrefixCheckWithCustomPattern(t *testing.T) {
	rules := simpleupload.DefaultRules()
	rules.KeyPattern = regexp.MustCompile(`^[a-z]+/[a-z]+\.\w+$`)

	res := rules.ValidateUpload(simpleupload.UploadRequest{Key: "images/cat.png", ContentType: "image/png", ContentLength: 10})
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "key", res.Errors[0].Field)
	assert.ErrorIs(t, res.Err(), simpleupload.ErrInvalidKeyFormat)
}

func TestRules_ValidateKey(t *testing.T) {
	rules := simpleupload.DefaultRules()

	assert.True(t, rules.ValidateKey("uploads/a.png").OK())
	res := rules.ValidateKey("invalid-key")
	assert.False(t, res.OK())
	assert.ErrorIs(t, res.Err(), simpleupload.ErrInvalidKeyFormat)
}

func TestRules_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*simpleupload.Rules)
	}{
		{"nil pattern", func(r *simpleupload.Rules) { r.KeyPattern = nil }},
		{"zero max bytes", func(r *simpleupload.Rules) { r.MaxBytes = 0 }},
		{"empty allow-list", func(r *simpleupload.Rules) { r.AllowedMIMETypes = nil }},
		{"sub-second expiry", func(r *simpleupload.Rules) { r.URLExpiry = time.Millisecond }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := simpleupload.DefaultRules()
			tt.mutate(&rules)
			assert.Error(t, rules.Validate())
		})
	}
}
