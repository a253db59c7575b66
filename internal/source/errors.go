package source

import (
	"errors"
	"fmt"

	"asistente/pkg/models"
)

var (
	// ErrDataAccess is matched by every DataAccessError.
	ErrDataAccess = errors.New("data access failed")

	// ErrUnknownBackend is returned when the configured source is not supported.
	ErrUnknownBackend = errors.New("unknown data source backend")
)

// DataAccessError wraps a backend failure. It is fatal for the computation that
// hit it and is never retried here.
type DataAccessError struct {
	// Op is the operation that failed (e.g., "Snapshot", "QueryReceivables").
	Op string

	// Backend names the source ("postgres", "sqlite", "sheets").
	Backend string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *DataAccessError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("source %s: %s failed: %s: %v", e.Backend, e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("source %s: %s failed: %v", e.Backend, e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *DataAccessError) Unwrap() error {
	return e.Err
}

// Is matches ErrDataAccess as well as anything the underlying error matches.
func (e *DataAccessError) Is(target error) bool {
	return target == ErrDataAccess || errors.Is(e.Err, target)
}

// NewDataAccessError creates a new DataAccessError.
func NewDataAccessError(backend, op string, err error, details string) *DataAccessError {
	return &DataAccessError{
		Op:      op,
		Backend: backend,
		Err:     err,
		Details: details,
	}
}

// WrapDataAccessError wraps err unless it already is a DataAccessError.
func WrapDataAccessError(backend, op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var daErr *DataAccessError
	if errors.As(err, &daErr) {
		return err
	}

	return NewDataAccessError(backend, op, err, details)
}

// MissingFieldError records a monetary field a record did not carry. The value
// was treated as zero; the record was kept.
type MissingFieldError struct {
	Kind   models.Kind
	Record string
	Field  string
}

// Error implements the error interface.
func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s record %q: missing %s, defaulted to 0", e.Kind.Label(), e.Record, e.Field)
}
