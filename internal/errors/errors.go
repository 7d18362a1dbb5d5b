package errors

import (
	"fmt"
	"net/http"
)

// APIError represents a standardized API error response
type APIError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
	Details string    `json:"details,omitempty"`
	Status  int       `json:"-"`
	cause   error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As chains
func (e *APIError) Unwrap() error {
	return e.cause
}

// WithDetails adds additional details to an error
func (e *APIError) WithDetails(details string) *APIError {
	e.Details = details
	return e
}

// WithCause attaches the original error for diagnostics
func (e *APIError) WithCause(cause error) *APIError {
	e.cause = cause
	return e
}

// NotFound creates a NOT_FOUND error
func NotFound(resource string) *APIError {
	return &APIError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Status:  http.StatusNotFound,
	}
}

// UserNotFound creates a USER_NOT_FOUND error
func UserNotFound(userID int64) *APIError {
	return &APIError{
		Code:    ErrUserNotFound,
		Message: fmt.Sprintf("user %d not found", userID),
		Status:  http.StatusNotFound,
	}
}

// AvatarNotFound creates an AVATAR_NOT_FOUND error
func AvatarNotFound(userID int64) *APIError {
	return &APIError{
		Code:    ErrAvatarNotFound,
		Message: fmt.Sprintf("user %d has no avatar", userID),
		Status:  http.StatusNotFound,
	}
}

// ValidationError creates a VALIDATION_ERROR
func ValidationError(field, message string) *APIError {
	return &APIError{
		Code:    ErrValidation,
		Message: message,
		Field:   field,
		Status:  http.StatusUnprocessableEntity,
	}
}

// UploadFailed creates an AVATAR_UPLOAD_FAILED error
func UploadFailed(message string) *APIError {
	return &APIError{
		Code:    ErrUploadFailed,
		Message: message,
		Status:  http.StatusUnprocessableEntity,
	}
}

// FileStorage creates a FILE_STORAGE_ERROR
func FileStorage(message string) *APIError {
	return &APIError{
		Code:    ErrFileStorage,
		Message: message,
		Status:  http.StatusInternalServerError,
	}
}

// Unauthorized creates an UNAUTHORIZED error
func Unauthorized(message string) *APIError {
	return &APIError{
		Code:    ErrUnauthorized,
		Message: message,
		Status:  http.StatusUnauthorized,
	}
}

// Forbidden creates a FORBIDDEN error
func Forbidden(message string) *APIError {
	return &APIError{
		Code:    ErrForbidden,
		Message: message,
		Status:  http.StatusForbidden,
	}
}

// Conflict creates a CONFLICT error
func Conflict(resource string) *APIError {
	return &APIError{
		Code:    ErrConflict,
		Message: fmt.Sprintf("%s already exists or is in an invalid state", resource),
		Status:  http.StatusConflict,
	}
}

// BadRequest creates a BAD_REQUEST error
func BadRequest(message string) *APIError {
	return &APIError{
		Code:    ErrBadRequest,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// InternalError creates an INTERNAL_ERROR
func InternalError(message string) *APIError {
	return &APIError{
		Code:    ErrInternalError,
		Message: message,
		Status:  http.StatusInternalServerError,
	}
}
