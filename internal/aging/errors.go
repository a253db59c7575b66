package aging

import "errors"

var (
	// ErrMissingCounterparty is returned when a balance lookup has an empty name or id.
	ErrMissingCounterparty = errors.New("counterparty name or id is required")
)
