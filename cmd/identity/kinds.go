package identity

import "errors"

// Error kinds. Handlers map these to HTTP status codes via errors.Is; the
// string values double as API error codes.
var (
	ErrInvalidInput = errors.New("invalid_input")
	ErrNotFound     = errors.New("not_found")
	ErrConflict     = errors.New("conflict")
)
