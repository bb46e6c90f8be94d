package spotify

import (
	"errors"
	"fmt"
)

// ErrNotFound reports that a specific id does not exist upstream. It
// drives the album-then-track fallback and is never shown to end users.
var ErrNotFound = errors.New("not found upstream")

// UpstreamError is any other non-2xx catalog API response: rate limits,
// 5xx, malformed bodies.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Message)
}

// CredentialError reports a rejected grant at the token endpoint. Not
// retried within the same request.
type CredentialError struct {
	StatusCode int
	Message    string
}

func (e *CredentialError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("token endpoint returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("token endpoint returned status %d: %s", e.StatusCode, e.Message)
}
