package util

import (
	"strconv"

	apperrors "github.com/SergeySenin/user-service/internal/errors"
)

// ParseID parses a positive int64 path parameter
func ParseID(raw, field string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.BadRequest(field + " must be a positive integer")
	}
	return id, nil
}
