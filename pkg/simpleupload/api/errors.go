package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/tendant/simple-upload/pkg/simpleupload"
)

// Error codes returned in the error envelope
const (
	CodeValidationFailed   = "validation_failed"
	CodeInvalidRequestBody = "invalid_request_body"
	CodeUploadURLFailed    = "upload_url_failed"
	CodeDownloadURLFailed  = "download_url_failed"
	CodeMetadataFailed     = "metadata_failed"
	CodeInternalError      = "internal_error"
)

var opCodes = map[string]string{
	simpleupload.OpPresignPut: CodeUploadURLFailed,
	simpleupload.OpPresignGet: CodeDownloadURLFailed,
	simpleupload.OpHeadObject: CodeMetadataFailed,
}

// ErrorBody is the payload under the "error" key of a failed response
type ErrorBody struct {
	Code    string                    `json:"code"`
	Message string                    `json:"message"`
	Details []simpleupload.FieldError `json:"details,omitempty"`
}

// ErrorResponse is the JSON envelope for all failed requests
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, details []simpleupload.FieldError) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: ErrorBody{
		Code:    code,
		Message: message,
		Details: details,
	}})
}

// writeServiceError maps a service error to a response. Errors that carry
// their own status pass through; anything else is a 500 with the fixed
// message for op, so provider detail never reaches the caller.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, op string, err error) {
	var validationErr *simpleupload.ValidationError
	if errors.As(err, &validationErr) {
		writeError(w, r, validationErr.HTTPStatus(), CodeValidationFailed, validationErr.PublicMessage(), validationErr.Fields)
		return
	}

	code, ok := opCodes[op]
	if !ok {
		code = CodeInternalError
	}

	var coder simpleupload.StatusCoder
	if errors.As(err, &coder) {
		writeError(w, r, coder.HTTPStatus(), code, coder.PublicMessage(), nil)
		return
	}

	logger.Error("Unclassified service error", "op", op, "error", err)
	writeError(w, r, http.StatusInternalServerError, code, simpleupload.GenericMessage(op), nil)
}
