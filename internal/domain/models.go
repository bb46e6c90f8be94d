package domain

import (
	"time"
)

// AlbumType is the category the provider assigns to an album.
type AlbumType string

const (
	AlbumTypeAlbum       AlbumType = "album"
	AlbumTypeSingle      AlbumType = "single"
	AlbumTypeCompilation AlbumType = "compilation"
)

// Artist is a locally cached artist row, created the first time any user
// references one of the artist's items. Shared reference data, owned by
// no user.
type Artist struct {
	ID            int64     `json:"id" db:"id"`
	SpotifyID     string    `json:"spotifyId" db:"spotify_id"`
	Title         string    `json:"title" db:"title"`
	ImageURL640px *string   `json:"imageUrl640px" db:"image_url_640px"`
	ImageURL320px *string   `json:"imageUrl320px" db:"image_url_320px"`
	ImageURL160px *string   `json:"imageUrl160px" db:"image_url_160px"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
}

// Album is a locally cached album row keyed by its provider id.
type Album struct {
	ID            int64     `json:"id" db:"id"`
	SpotifyID     string    `json:"spotifyId" db:"spotify_id"`
	Title         string    `json:"title" db:"title"`
	AlbumType     AlbumType `json:"albumType" db:"album_type"`
	TotalTracks   int       `json:"totalTracks" db:"total_tracks"`
	ReleaseDate   string    `json:"releaseDate" db:"release_date"`
	ImageURL640px *string   `json:"imageUrl640px" db:"image_url_640px"`
	ImageURL300px *string   `json:"imageUrl300px" db:"image_url_300px"`
	ImageURL64px  *string   `json:"imageUrl64px" db:"image_url_64px"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
}

// Track is a locally cached track row keyed by its provider id.
type Track struct {
	ID         int64     `json:"id" db:"id"`
	SpotifyID  string    `json:"spotifyId" db:"spotify_id"`
	Title      string    `json:"title" db:"title"`
	DiscNumber int       `json:"discNumber" db:"disc_number"`
	TrackOrder int       `json:"trackOrder" db:"track_order"`
	DurationMS int       `json:"durationMs" db:"duration_ms"`
	Explicit   bool      `json:"explicit" db:"explicit"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

// Linkage ties an artist to an optional album and optional track under one
// provider id. The id on the row is the id of whichever entity the row
// represents: artist-only, artist+album, or artist+album+track. Exactly one
// linkage row exists per (artist, spotify_id) pair that has been resolved.
type Linkage struct {
	ID        int64     `json:"id" db:"id"`
	ArtistID  int64     `json:"artistId" db:"artist_id"`
	AlbumID   *int64    `json:"albumId" db:"album_id"`
	TrackID   *int64    `json:"trackId" db:"track_id"`
	SpotifyID string    `json:"spotifyId" db:"spotify_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// User is a registered account. The spotify_* columns hold the user's
// delegated upstream credential; they are nil until the user links their
// Spotify account.
type User struct {
	ID                  int64      `json:"id" db:"id"`
	Username            string     `json:"username" db:"username"`
	Email               string     `json:"email" db:"email"`
	PasswordHash        string     `json:"-" db:"password_hash"`
	DisplayName         *string    `json:"displayName" db:"display_name"`
	ProfilePicURL       *string    `json:"profilePicUrl" db:"profile_pic_url"`
	SpotifyRefreshToken *string    `json:"-" db:"spotify_refresh_token"`
	SpotifyAccessToken  *string    `json:"-" db:"spotify_access_token"`
	SpotifyTokenExpires *time.Time `json:"-" db:"spotify_token_expires"`
	CreatedAt           time.Time  `json:"createdAt" db:"created_at"`
}

// Catalog is a user-curated list of items.
type Catalog struct {
	ID        string    `json:"id" db:"id"`
	UserID    int64     `json:"userId" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	Comment   string    `json:"comment" db:"comment"`
	IsPrivate bool      `json:"isPrivate" db:"is_private"`
	ImageURL  *string   `json:"imageUrl" db:"image_url"`
	Upvotes   int       `json:"upvotes" db:"upvotes"`
	Downvotes int       `json:"downvotes" db:"downvotes"`
	CreatedAt time.Time `json:"createdDate" db:"created_at"`
	UpdatedAt time.Time `json:"updatedDate" db:"updated_at"`
}

// CatalogItem is one entry in a catalog, referencing an item by its
// provider id. The referenced artist/album/track rows are reached through
// the linkage table.
type CatalogItem struct {
	ID              string    `json:"id" db:"id"`
	CatalogID       string    `json:"catalogId" db:"catalog_id"`
	SpotifyID       string    `json:"spotifyId" db:"spotify_id"`
	SpotifyArtistID string    `json:"spotifyArtistId" db:"spotify_artist_id"`
	Position        int       `json:"position" db:"position"`
	Comment         string    `json:"comment" db:"comment"`
	CreatedAt       time.Time `json:"createdDate" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedDate" db:"updated_at"`
}

// Review is a user's rating of an item. One review per user per item.
type Review struct {
	ID              string    `json:"id" db:"id"`
	UserID          int64     `json:"userId" db:"user_id"`
	SpotifyID       string    `json:"spotifyId" db:"spotify_id"`
	SpotifyArtistID string    `json:"spotifyArtistId" db:"spotify_artist_id"`
	Rating          int       `json:"rating" db:"rating"`
	Comment         string    `json:"comment" db:"comment"`
	IsPrivate       bool      `json:"isPrivate" db:"is_private"`
	Upvotes         int       `json:"upvotes" db:"upvotes"`
	Downvotes       int       `json:"downvotes" db:"downvotes"`
	CreatedAt       time.Time `json:"createdDate" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedDate" db:"updated_at"`
}

// CatalogEntry is a catalog item joined through its linkage row to the
// cached artist/album/track detail, as returned by catalog reads.
type CatalogEntry struct {
	Item   CatalogItem `json:"item"`
	Artist Artist      `json:"artist"`
	Album  *Album      `json:"album,omitempty"`
	Track  *Track      `json:"track,omitempty"`
}
