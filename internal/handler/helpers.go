package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	appErr "github.com/askdoc-io/askdoc/internal/pkg/errors"
	"github.com/askdoc-io/askdoc/internal/pkg/response"
)

// handleError maps service errors to the HTTP surface. Internal detail never
// reaches the client beyond a generic description; the full error is logged
// with request context.
func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	requestID, _ := c.Get("request_id")
	logutil.GetLogger(c.Request.Context()).Error("request failed",
		zap.Any("request_id", requestID),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	switch {
	case errors.Is(err, appErr.ErrInvalid):
		response.Error(c, http.StatusBadRequest, "invalid", "invalid request")
	case errors.Is(err, appErr.ErrNotFound):
		// An unknown file id is a caller mistake, not a missing route.
		response.Error(c, http.StatusBadRequest, "not_found", "invalid or missing pdf")
	case errors.Is(err, appErr.ErrDocumentEmpty):
		response.Error(c, http.StatusBadRequest, "document_empty", "document has no indexable content")
	case errors.Is(err, appErr.ErrExtractionFailed):
		response.Error(c, http.StatusBadRequest, "extraction_failed", "failed to extract document text")
	case errors.Is(err, appErr.ErrGenerationFailed):
		response.Error(c, http.StatusInternalServerError, "generation_failed", "failed to generate answer")
	default:
		response.Error(c, http.StatusInternalServerError, "internal", "internal error")
	}
}
