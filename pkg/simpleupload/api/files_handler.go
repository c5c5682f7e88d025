package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-upload/pkg/simpleupload"
)

// FilesHandler exposes the presign and metadata operations over HTTP
type FilesHandler struct {
	service   simpleupload.Service
	validator *simpleupload.StructValidator
	logger    *slog.Logger
}

func NewFilesHandler(service simpleupload.Service, logger *slog.Logger) *FilesHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &FilesHandler{
		service:   service,
		validator: simpleupload.NewStructValidator(service.Rules()),
		logger:    logger,
	}
}

// Routes returns the router for files endpoints
func (h *FilesHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/presign-upload", h.PresignUpload)
	r.Get("/presign-download", h.PresignDownload)
	r.Get("/head", h.HeadObject)
	return r
}

// PresignUpload handles POST /presign-upload
func (h *FilesHandler) PresignUpload(w http.ResponseWriter, r *http.Request) {
	var req simpleupload.UploadRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.logger.Warn("Invalid upload request body", "error", err)
		writeError(w, r, http.StatusBadRequest, CodeInvalidRequestBody, "invalid request body", nil)
		return
	}

	if err := h.validator.Struct(req).Err(); err != nil {
		writeServiceError(w, r, h.logger, simpleupload.OpPresignPut, err)
		return
	}

	result, err := h.service.IssueUploadURL(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, h.logger, simpleupload.OpPresignPut, err)
		return
	}

	render.JSON(w, r, result)
}

// PresignDownload handles GET /presign-download?key=
func (h *FilesHandler) PresignDownload(w http.ResponseWriter, r *http.Request) {
	query := simpleupload.KeyQuery{Key: r.URL.Query().Get("key")}
	if err := h.validator.Struct(query).Err(); err != nil {
		writeServiceError(w, r, h.logger, simpleupload.OpPresignGet, err)
		return
	}

	result, err := h.service.IssueDownloadURL(r.Context(), query.Key)
	if err != nil {
		writeServiceError(w, r, h.logger, simpleupload.OpPresignGet, err)
		return
	}

	render.JSON(w, r, result)
}

// HeadObject handles GET /head?key=
func (h *FilesHandler) HeadObject(w http.ResponseWriter, r *http.Request) {
	query := simpleupload.KeyQuery{Key: r.URL.Query().Get("key")}
	if err := h.validator.Struct(query).Err(); err != nil {
		writeServiceError(w, r, h.logger, simpleupload.OpHeadObject, err)
		return
	}

	meta, err := h.service.GetMetadata(r.Context(), query.Key)
	if err != nil {
		writeServiceError(w, r, h.logger, simpleupload.OpHeadObject, err)
		return
	}

	render.JSON(w, r, meta)
}
