package utils

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var (
	ErrorRecordNotFound   = errors.New("record not found")
	ErrorNotAuthenticated = errors.New("not authenticated")
	ErrorLockNotObtained  = errors.New("could not obtain lock")
)

// ValidationError is returned for client-side input problems and maps to 400.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidationError also recognises struct validation failures.
func IsValidationError(err error) bool {
	var ve *ValidationError
	var fields validator.ValidationErrors
	return errors.As(err, &ve) || errors.As(err, &fields)
}
