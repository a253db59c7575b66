package period

import (
	"errors"
	"fmt"
)

// ErrInvalidPeriod is matched by every ValidationError via errors.Is.
var ErrInvalidPeriod = errors.New("invalid period")

// ValidationError represents malformed period input.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s (value: %v)", e.Field, e.Message, e.Value)
}

// Is lets callers match any period validation failure with ErrInvalidPeriod.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidPeriod
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}
