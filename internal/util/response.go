package util

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/SergeySenin/user-service/internal/errors"
	"github.com/SergeySenin/user-service/internal/logger"
	"github.com/SergeySenin/user-service/internal/metrics"
	"github.com/SergeySenin/user-service/internal/storage"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
	Field   string `json:"field,omitempty"`
	Details string `json:"details,omitempty"`
}

// RespondWithAPIError sends a structured API error response
func RespondWithAPIError(c *gin.Context, apiErr *apperrors.APIError) {
	if apiErr.Status >= http.StatusInternalServerError {
		logger.Log.Error("API error",
			zap.String("code", string(apiErr.Code)),
			zap.String("message", apiErr.Message),
			zap.Int("status", apiErr.Status),
			zap.Error(apiErr.Unwrap()),
		)
	} else if apiErr.Status >= http.StatusBadRequest {
		logger.Log.Warn("API error",
			zap.String("code", string(apiErr.Code)),
			zap.String("message", apiErr.Message),
			zap.String("field", apiErr.Field),
		)
	}

	endpoint := c.FullPath()
	if endpoint == "" && c.Request != nil {
		endpoint = c.Request.URL.Path
	}
	metrics.Get().ErrorsTotal.WithLabelValues(string(apiErr.Code), endpoint).Inc()

	c.JSON(apiErr.Status, ErrorResponse{
		Code:    string(apiErr.Code),
		Message: apiErr.Message,
		Field:   apiErr.Field,
		Details: apiErr.Details,
	})
}

// RespondWithError maps any pipeline error onto the wire format.
// Storage failures surface as server faults carrying the attempted key in
// the log, never in the response body.
func RespondWithError(c *gin.Context, err error) {
	var apiErr *apperrors.APIError
	if errors.As(err, &apiErr) {
		RespondWithAPIError(c, apiErr)
		return
	}

	var storageErr *storage.StorageError
	if errors.As(err, &storageErr) {
		logger.ErrorWithFields("Object storage failure", storageErr,
			logger.WithObjectKey(storageErr.Key),
		)
		RespondWithAPIError(c, apperrors.FileStorage("object storage operation failed"))
		return
	}

	logger.ErrorWithFields("Unhandled error", err)
	RespondWithAPIError(c, apperrors.InternalError("internal server error"))
}

// RespondUnauthorized sends a 401 Unauthorized response
func RespondUnauthorized(c *gin.Context, message string) {
	RespondWithAPIError(c, apperrors.Unauthorized(message))
}

// RespondForbidden sends a 403 Forbidden response
func RespondForbidden(c *gin.Context, message string) {
	RespondWithAPIError(c, apperrors.Forbidden(message))
}

// RespondNotFound sends a 404 Not Found response
func RespondNotFound(c *gin.Context, resource string) {
	RespondWithAPIError(c, apperrors.NotFound(resource))
}

// RespondBadRequest sends a 400 Bad Request response
func RespondBadRequest(c *gin.Context, message string) {
	RespondWithAPIError(c, apperrors.BadRequest(message))
}

// RespondValidationError sends a 422 Unprocessable Entity response
func RespondValidationError(c *gin.Context, field, message string) {
	RespondWithAPIError(c, apperrors.ValidationError(field, message))
}
