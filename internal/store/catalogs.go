package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mireyav/crescendo/internal/domain"
)

func (db *DB) CreateCatalog(catalog *domain.Catalog) error {
	now := time.Now().UTC()
	if catalog.CreatedAt.IsZero() {
		catalog.CreatedAt = now
	}
	if catalog.UpdatedAt.IsZero() {
		catalog.UpdatedAt = now
	}
	_, err := db.NamedExec(`
		INSERT INTO catalogs (id, user_id, name, comment, is_private, image_url, upvotes, downvotes, created_at, updated_at)
		VALUES (:id, :user_id, :name, :comment, :is_private, :image_url, :upvotes, :downvotes, :created_at, :updated_at)
	`, catalog)
	return classify(err)
}

// GetCatalog returns (nil, nil) when no such catalog exists.
func (db *DB) GetCatalog(id string) (*domain.Catalog, error) {
	var catalog domain.Catalog
	err := db.Get(&catalog, `SELECT * FROM catalogs WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &catalog, nil
}

// ListUserCatalogs returns every catalog owned by the user, private ones
// included.
func (db *DB) ListUserCatalogs(userID int64) ([]domain.Catalog, error) {
	var catalogs []domain.Catalog
	err := db.Select(&catalogs, `
		SELECT * FROM catalogs WHERE user_id = ? ORDER BY created_at DESC
	`, userID)
	return catalogs, err
}

// ListPublicUserCatalogs returns the user's non-private catalogs.
func (db *DB) ListPublicUserCatalogs(userID int64) ([]domain.Catalog, error) {
	var catalogs []domain.Catalog
	err := db.Select(&catalogs, `
		SELECT * FROM catalogs WHERE user_id = ? AND is_private = 0 ORDER BY created_at DESC
	`, userID)
	return catalogs, err
}

func (db *DB) UpdateCatalog(catalog *domain.Catalog) error {
	catalog.UpdatedAt = time.Now().UTC()
	result, err := db.NamedExec(`
		UPDATE catalogs SET
			name = :name, comment = :comment, is_private = :is_private,
			image_url = :image_url, updated_at = :updated_at
		WHERE id = :id AND user_id = :user_id
	`, catalog)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("catalog %s not found", catalog.ID)
	}
	return nil
}

// DeleteCatalog removes the catalog and, via cascade, its items. The
// reference rows the items pointed at are shared and are left alone.
func (db *DB) DeleteCatalog(id string, userID int64) error {
	result, err := db.Exec(`DELETE FROM catalogs WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("catalog %s not found", id)
	}
	return nil
}

// CreateCatalogItem inserts an item. Returns ErrConflict when the catalog
// already contains this spotify id.
func (db *DB) CreateCatalogItem(item *domain.CatalogItem) error {
	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = now
	}
	_, err := db.NamedExec(`
		INSERT INTO catalog_items (id, catalog_id, spotify_id, spotify_artist_id, position, comment, created_at, updated_at)
		VALUES (:id, :catalog_id, :spotify_id, :spotify_artist_id, :position, :comment, :created_at, :updated_at)
	`, item)
	return classify(err)
}

// GetCatalogItemForUser fetches an item only if its catalog belongs to the
// user. Returns (nil, nil) otherwise.
func (db *DB) GetCatalogItemForUser(itemID string, userID int64) (*domain.CatalogItem, error) {
	var item domain.CatalogItem
	err := db.Get(&item, `
		SELECT ci.* FROM catalog_items ci
		JOIN catalogs c ON ci.catalog_id = c.id
		WHERE ci.id = ? AND c.user_id = ?
	`, itemID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (db *DB) UpdateCatalogItem(item *domain.CatalogItem) error {
	item.UpdatedAt = time.Now().UTC()
	result, err := db.NamedExec(`
		UPDATE catalog_items SET position = :position, comment = :comment, updated_at = :updated_at
		WHERE id = :id
	`, item)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("catalog item %s not found", item.ID)
	}
	return nil
}

func (db *DB) DeleteCatalogItem(itemID string) error {
	result, err := db.Exec(`DELETE FROM catalog_items WHERE id = ?`, itemID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("catalog item %s not found", itemID)
	}
	return nil
}

type catalogEntryRow struct {
	domain.CatalogItem

	ArtistID        int64   `db:"artist_row_id"`
	ArtistSpotifyID string  `db:"artist_spotify_id"`
	ArtistTitle     string  `db:"artist_title"`
	ArtistImage640  *string `db:"artist_image_url_640px"`
	ArtistImage320  *string `db:"artist_image_url_320px"`
	ArtistImage160  *string `db:"artist_image_url_160px"`

	AlbumID          *int64  `db:"album_row_id"`
	AlbumSpotifyID   *string `db:"album_spotify_id"`
	AlbumTitle       *string `db:"album_title"`
	AlbumType        *string `db:"album_type"`
	AlbumTotalTracks *int    `db:"total_tracks"`
	AlbumReleaseDate *string `db:"release_date"`
	AlbumImage640    *string `db:"album_image_url_640px"`
	AlbumImage300    *string `db:"album_image_url_300px"`
	AlbumImage64     *string `db:"album_image_url_64px"`

	TrackID         *int64  `db:"track_row_id"`
	TrackSpotifyID  *string `db:"track_spotify_id"`
	TrackTitle      *string `db:"track_title"`
	TrackDiscNumber *int    `db:"disc_number"`
	TrackOrder      *int    `db:"track_order"`
	TrackDurationMS *int    `db:"duration_ms"`
	TrackExplicit   *bool   `db:"explicit"`
}

// ListCatalogEntries returns the catalog's items joined through their
// linkage rows to the cached artist/album/track detail, ordered by
// position then insertion time.
func (db *DB) ListCatalogEntries(catalogID string) ([]domain.CatalogEntry, error) {
	var rows []catalogEntryRow
	err := db.Select(&rows, `
		SELECT
			ci.*,
			ar.id AS artist_row_id,
			ar.spotify_id AS artist_spotify_id,
			ar.title AS artist_title,
			ar.image_url_640px AS artist_image_url_640px,
			ar.image_url_320px AS artist_image_url_320px,
			ar.image_url_160px AS artist_image_url_160px,
			al.id AS album_row_id,
			al.spotify_id AS album_spotify_id,
			al.title AS album_title,
			al.album_type,
			al.total_tracks,
			al.release_date,
			al.image_url_640px AS album_image_url_640px,
			al.image_url_300px AS album_image_url_300px,
			al.image_url_64px AS album_image_url_64px,
			tr.id AS track_row_id,
			tr.spotify_id AS track_spotify_id,
			tr.title AS track_title,
			tr.disc_number,
			tr.track_order,
			tr.duration_ms,
			tr.explicit
		FROM catalog_items ci
		JOIN artist_album_tracks aat
			ON ci.spotify_id = aat.spotify_id
		JOIN artists ar ON aat.artist_id = ar.id
		LEFT JOIN albums al ON aat.album_id = al.id
		LEFT JOIN tracks tr ON aat.track_id = tr.id
		WHERE ci.catalog_id = ?
		ORDER BY ci.position ASC, ci.created_at ASC
	`, catalogID)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.CatalogEntry, 0, len(rows))
	for _, row := range rows {
		entry := domain.CatalogEntry{
			Item: row.CatalogItem,
			Artist: domain.Artist{
				ID:            row.ArtistID,
				SpotifyID:     row.ArtistSpotifyID,
				Title:         row.ArtistTitle,
				ImageURL640px: row.ArtistImage640,
				ImageURL320px: row.ArtistImage320,
				ImageURL160px: row.ArtistImage160,
			},
		}
		if row.AlbumID != nil {
			entry.Album = &domain.Album{
				ID:            *row.AlbumID,
				SpotifyID:     deref(row.AlbumSpotifyID),
				Title:         deref(row.AlbumTitle),
				AlbumType:     domain.AlbumType(deref(row.AlbumType)),
				TotalTracks:   derefInt(row.AlbumTotalTracks),
				ReleaseDate:   deref(row.AlbumReleaseDate),
				ImageURL640px: row.AlbumImage640,
				ImageURL300px: row.AlbumImage300,
				ImageURL64px:  row.AlbumImage64,
			}
		}
		if row.TrackID != nil {
			entry.Track = &domain.Track{
				ID:         *row.TrackID,
				SpotifyID:  deref(row.TrackSpotifyID),
				Title:      deref(row.TrackTitle),
				DiscNumber: derefInt(row.TrackDiscNumber),
				TrackOrder: derefInt(row.TrackOrder),
				DurationMS: derefInt(row.TrackDurationMS),
				Explicit:   row.TrackExplicit != nil && *row.TrackExplicit,
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ArtistCatalogRef is a public catalog that references an artist, as shown
// on the artist profile page.
type ArtistCatalogRef struct {
	CatalogItemID        string  `json:"catalogItemId" db:"catalog_item_id"`
	CatalogItemSpotifyID string  `json:"spotifyId" db:"catalog_item_spotify_id"`
	CatalogID            string  `json:"catalogId" db:"catalog_id"`
	UserID               int64   `json:"userId" db:"user_id"`
	Name                 string  `json:"name" db:"name"`
	Comment              string  `json:"comment" db:"comment"`
	ImageURL             *string `json:"imageUrl" db:"image_url"`
	Upvotes              int     `json:"upvotes" db:"upvotes"`
	Downvotes            int     `json:"downvotes" db:"downvotes"`
}

// ListCatalogsReferencingArtist returns public catalogs (or the viewer's
// own private ones) containing at least one item by the artist, most
// upvoted first.
func (db *DB) ListCatalogsReferencingArtist(spotifyArtistID string, viewerID int64) ([]ArtistCatalogRef, error) {
	var refs []ArtistCatalogRef
	err := db.Select(&refs, `
		SELECT
			ci.id AS catalog_item_id,
			ci.spotify_id AS catalog_item_spotify_id,
			c.id AS catalog_id,
			c.user_id,
			c.name,
			c.comment,
			c.image_url,
			c.upvotes,
			c.downvotes
		FROM catalog_items ci
		JOIN catalogs c ON ci.catalog_id = c.id
		WHERE ci.spotify_artist_id = ?
			AND (c.is_private = 0 OR c.user_id = ?)
		ORDER BY c.upvotes DESC, c.created_at DESC
	`, spotifyArtistID, viewerID)
	return refs, err
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}
