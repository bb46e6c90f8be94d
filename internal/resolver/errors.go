package resolver

import (
	"errors"
	"fmt"

	"github.com/mireyav/crescendo/internal/spotify"
)

// Kind classifies why a resolution failed, so callers can tell an
// upstream outage from an id that legitimately does not exist.
type Kind string

const (
	// KindCredential: the token endpoint rejected an exchange.
	KindCredential Kind = "credential_exchange"
	// KindNotFound: the id names neither an album nor a track upstream.
	KindNotFound Kind = "not_found"
	// KindUpstream: any other upstream failure (rate limit, 5xx, bad body).
	KindUpstream Kind = "upstream"
	// KindStorage: local storage failed.
	KindStorage Kind = "storage"
)

// Error is a terminal resolution failure. The handler layer maps it to a
// user-facing response without exposing upstream detail.
type Error struct {
	Kind     Kind
	ItemID   string
	ArtistID string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("resolution of item %q for artist %q failed (%s): %v", e.ItemID, e.ArtistID, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// wrap normalizes an underlying failure into a kinded resolution error.
func wrap(itemID, artistID string, err error) *Error {
	kind := KindStorage

	var credErr *spotify.CredentialError
	var upErr *spotify.UpstreamError
	switch {
	case errors.Is(err, spotify.ErrNotFound):
		kind = KindNotFound
	case errors.As(err, &credErr):
		kind = KindCredential
	case errors.As(err, &upErr):
		kind = KindUpstream
	}

	return &Error{Kind: kind, ItemID: itemID, ArtistID: artistID, Err: err}
}
