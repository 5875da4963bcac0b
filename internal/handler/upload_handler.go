package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/askdoc-io/askdoc/internal/pkg/response"
	"github.com/askdoc-io/askdoc/internal/service"
)

type UploadHandler struct {
	uploads  *service.UploadService
	maxBytes int64
}

func NewUploadHandler(uploads *service.UploadService, maxBytes int64) *UploadHandler {
	return &UploadHandler{uploads: uploads, maxBytes: maxBytes}
}

func (h *UploadHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid_file", "file is required")
		return
	}
	if h.maxBytes > 0 && file.Size > h.maxBytes {
		response.Error(c, http.StatusBadRequest, "invalid_file", "file too large")
		return
	}
	opened, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid_file", "failed to open file")
		return
	}
	defer opened.Close()

	result, err := h.uploads.Upload(c.Request.Context(), file.Filename, opened, file.Size)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}
