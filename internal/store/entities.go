package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/mireyav/crescendo/internal/domain"
)

// Reference-row inserts use ON CONFLICT DO NOTHING so that two requests
// racing on the same never-before-seen provider id both succeed: the loser
// of the race just reads back the winner's row. The uniqueness constraint
// is the only correctness mechanism; there are no application-level locks.

// InsertArtist inserts an artist row unless one with the same spotify id
// exists, and returns the row id either way.
func InsertArtist(e sqlx.Ext, artist *domain.Artist) (int64, error) {
	if artist.CreatedAt.IsZero() {
		artist.CreatedAt = time.Now().UTC()
	}
	_, err := e.Exec(`
		INSERT INTO artists (spotify_id, title, image_url_640px, image_url_320px, image_url_160px, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(spotify_id) DO NOTHING
	`, artist.SpotifyID, artist.Title, artist.ImageURL640px, artist.ImageURL320px, artist.ImageURL160px, artist.CreatedAt)
	if err != nil {
		return 0, err
	}

	var id int64
	if err := sqlx.Get(e, &id, `SELECT id FROM artists WHERE spotify_id = ?`, artist.SpotifyID); err != nil {
		return 0, err
	}
	artist.ID = id
	return id, nil
}

// InsertAlbum inserts an album row unless one with the same spotify id
// exists, and returns the row id either way.
func InsertAlbum(e sqlx.Ext, album *domain.Album) (int64, error) {
	if album.CreatedAt.IsZero() {
		album.CreatedAt = time.Now().UTC()
	}
	_, err := e.Exec(`
		INSERT INTO albums (spotify_id, title, album_type, total_tracks, release_date,
			image_url_640px, image_url_300px, image_url_64px, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(spotify_id) DO NOTHING
	`, album.SpotifyID, album.Title, album.AlbumType, album.TotalTracks, album.ReleaseDate,
		album.ImageURL640px, album.ImageURL300px, album.ImageURL64px, album.CreatedAt)
	if err != nil {
		return 0, err
	}

	var id int64
	if err := sqlx.Get(e, &id, `SELECT id FROM albums WHERE spotify_id = ?`, album.SpotifyID); err != nil {
		return 0, err
	}
	album.ID = id
	return id, nil
}

// InsertTrack inserts a track row unless one with the same spotify id
// exists, and returns the row id either way.
func InsertTrack(e sqlx.Ext, track *domain.Track) (int64, error) {
	if track.CreatedAt.IsZero() {
		track.CreatedAt = time.Now().UTC()
	}
	_, err := e.Exec(`
		INSERT INTO tracks (spotify_id, title, disc_number, track_order, duration_ms, explicit, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(spotify_id) DO NOTHING
	`, track.SpotifyID, track.Title, track.DiscNumber, track.TrackOrder, track.DurationMS, track.Explicit, track.CreatedAt)
	if err != nil {
		return 0, err
	}

	var id int64
	if err := sqlx.Get(e, &id, `SELECT id FROM tracks WHERE spotify_id = ?`, track.SpotifyID); err != nil {
		return 0, err
	}
	track.ID = id
	return id, nil
}

// InsertLinkage records that (artist, spotify_id) has been resolved at the
// granularity given by album/track. A duplicate insert is not an error.
func InsertLinkage(e sqlx.Ext, link *domain.Linkage) error {
	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now().UTC()
	}
	_, err := e.Exec(`
		INSERT INTO artist_album_tracks (artist_id, album_id, track_id, spotify_id, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(artist_id, spotify_id) DO NOTHING
	`, link.ArtistID, link.AlbumID, link.TrackID, link.SpotifyID, link.CreatedAt)
	return err
}

// GetLinkage looks up the linkage row for (artist, spotify_id). Returns
// (nil, nil) when the pair has never been resolved.
func GetLinkage(e sqlx.Ext, artistID int64, spotifyID string) (*domain.Linkage, error) {
	var link domain.Linkage
	err := sqlx.Get(e, &link, `
		SELECT * FROM artist_album_tracks WHERE artist_id = ? AND spotify_id = ?
	`, artistID, spotifyID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (db *DB) InsertArtist(artist *domain.Artist) (int64, error) {
	return InsertArtist(db.DB, artist)
}

func (db *DB) InsertAlbum(album *domain.Album) (int64, error) {
	return InsertAlbum(db.DB, album)
}

func (db *DB) InsertTrack(track *domain.Track) (int64, error) {
	return InsertTrack(db.DB, track)
}

func (db *DB) InsertLinkage(link *domain.Linkage) error {
	return InsertLinkage(db.DB, link)
}

func (db *DB) GetLinkage(artistID int64, spotifyID string) (*domain.Linkage, error) {
	return GetLinkage(db.DB, artistID, spotifyID)
}

// GetArtistBySpotifyID returns (nil, nil) when no such artist is cached.
func (db *DB) GetArtistBySpotifyID(spotifyID string) (*domain.Artist, error) {
	var artist domain.Artist
	err := db.Get(&artist, `SELECT * FROM artists WHERE spotify_id = ?`, spotifyID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &artist, nil
}

// GetAlbumBySpotifyID returns (nil, nil) when no such album is cached.
func (db *DB) GetAlbumBySpotifyID(spotifyID string) (*domain.Album, error) {
	var album domain.Album
	err := db.Get(&album, `SELECT * FROM albums WHERE spotify_id = ?`, spotifyID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &album, nil
}

// GetTrackBySpotifyID returns (nil, nil) when no such track is cached.
func (db *DB) GetTrackBySpotifyID(spotifyID string) (*domain.Track, error) {
	var track domain.Track
	err := db.Get(&track, `SELECT * FROM tracks WHERE spotify_id = ?`, spotifyID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &track, nil
}

// Tx runs fn inside a transaction, rolling back on error.
func (db *DB) Tx(fn func(tx *sqlx.Tx) error) error {
	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
