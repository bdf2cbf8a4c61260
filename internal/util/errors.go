package util

import "errors"

// Error taxonomy. Services wrap these with fmt.Errorf("...: %w", Err*) so the
// controller layer can map them to status codes with errors.Is.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("permission denied")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
)
