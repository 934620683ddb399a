package media

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound    = errors.New("media not found")
	ErrForbidden   = errors.New("media belongs to another user")
	ErrStorage     = errors.New("storage failure")
	ErrPersistence = errors.New("persistence failure")
)

// ValidationError reports input the caller can fix.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
