package app

import "errors"

// Service-level errors the handler layer maps to HTTP statuses.
var (
	// ErrNotFound: the record does not exist or is not visible to the
	// caller.
	ErrNotFound = errors.New("not found")
	// ErrForbidden: the record exists but the caller may not see it.
	ErrForbidden = errors.New("forbidden")
	// ErrDuplicate: a uniqueness rule was violated (taken email,
	// repeated review, item already in catalog).
	ErrDuplicate = errors.New("already exists")
	// ErrInvalidCredentials: login failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrItemRejected: the referenced item could not be resolved against
	// the upstream catalog; the write is rejected as a validation error.
	ErrItemRejected = errors.New("item could not be resolved")
)
