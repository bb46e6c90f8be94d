// Package constants contains application-wide constants to avoid magic numbers and strings.
package constants

import "time"

// Application defaults
const (
	DefaultPort            = "8080"
	DefaultDBPath          = "crescendo.db"
	DefaultHTTPTimeout     = 10 * time.Second
	DefaultRetryCount      = 3
	DefaultRetryBase       = 1 * time.Second
	DefaultCacheTTL        = 12 * time.Hour
	DefaultSessionLifetime = 7 * 24 * time.Hour
)

// Spotify endpoints and limits
const (
	DefaultSpotifyAPIURL      = "https://api.spotify.com/v1"
	DefaultSpotifyAccountsURL = "https://accounts.spotify.com"

	// Maximum number of ids the batch albums endpoint accepts per call.
	AlbumBatchLimit = 20

	// Default token lifetime when the token endpoint omits expires_in.
	DefaultTokenLifetime = time.Hour

	// Tokens within this margin of expiry are treated as expired.
	TokenExpiryMargin = 30 * time.Second
)

// Search limits
const (
	DefaultSearchLimit = 20
	MaxSearchLimit     = 50
)
