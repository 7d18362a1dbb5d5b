package errors

import "net/http"

// ErrorCode represents the type of error
type ErrorCode string

const (
	ErrNotFound       ErrorCode = "NOT_FOUND"
	ErrUserNotFound   ErrorCode = "USER_NOT_FOUND"
	ErrAvatarNotFound ErrorCode = "AVATAR_NOT_FOUND"
	ErrValidation     ErrorCode = "VALIDATION_ERROR"
	ErrUploadFailed   ErrorCode = "AVATAR_UPLOAD_FAILED"
	ErrFileStorage    ErrorCode = "FILE_STORAGE_ERROR"
	ErrUnauthorized   ErrorCode = "UNAUTHORIZED"
	ErrForbidden      ErrorCode = "FORBIDDEN"
	ErrConflict       ErrorCode = "CONFLICT"
	ErrBadRequest     ErrorCode = "BAD_REQUEST"
	ErrInternalError  ErrorCode = "INTERNAL_ERROR"
)

// StatusCodeMap maps ErrorCode to HTTP status code
var StatusCodeMap = map[ErrorCode]int{
	ErrNotFound:       http.StatusNotFound,
	ErrUserNotFound:   http.StatusNotFound,
	ErrAvatarNotFound: http.StatusNotFound,
	ErrValidation:     http.StatusUnprocessableEntity,
	ErrUploadFailed:   http.StatusUnprocessableEntity,
	ErrFileStorage:    http.StatusInternalServerError,
	ErrUnauthorized:   http.StatusUnauthorized,
	ErrForbidden:      http.StatusForbidden,
	ErrConflict:       http.StatusConflict,
	ErrBadRequest:     http.StatusBadRequest,
	ErrInternalError:  http.StatusInternalServerError,
}

// StatusCode returns the HTTP status code for this error code
func (e ErrorCode) StatusCode() int {
	if code, ok := StatusCodeMap[e]; ok {
		return code
	}
	return http.StatusInternalServerError
}
