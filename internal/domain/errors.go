package domain

import "errors"

// Error classes shared by every workflow. Services wrap these with context
// ("claim 7: %w") and the transport classifies them with errors.Is.
//
// ErrNotFound, ErrConflict and ErrInvalidArgument are recoverable by the
// caller and are always raised before any write. ErrUnauthorized and
// ErrForbidden only come from the identity layer.
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
)
