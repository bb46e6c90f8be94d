// Package resolver guarantees that local artist/album/track rows and their
// linkage exist for an externally-identified item, backfilling from the
// upstream catalog on first reference.
package resolver

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mireyav/crescendo/internal/domain"
	"github.com/mireyav/crescendo/internal/logger"
	"github.com/mireyav/crescendo/internal/spotify"
	"github.com/mireyav/crescendo/internal/store"
	"github.com/mireyav/crescendo/internal/tokens"
)

// Catalog is the slice of the upstream client the resolver needs.
type Catalog interface {
	Artist(ctx context.Context, token, id string) (*spotify.Artist, error)
	AlbumOrTrack(ctx context.Context, token, id string) (*spotify.Item, error)
}

// TokenSource is the slice of the token manager the resolver needs.
type TokenSource interface {
	Token(ctx context.Context, principal tokens.Principal) (string, error)
}

// Resolver is the backfill pipeline. Resolution is idempotent: once a
// (artist, item) pair has a linkage row, repeat calls return from local
// state without network or write work. Races on a never-before-seen id
// are settled by the unique constraints; the loser reads the winner's
// rows.
type Resolver struct {
	db      *store.DB
	catalog Catalog
	tokens  TokenSource
	log     *logger.Logger
}

func New(db *store.DB, catalog Catalog, tokenSource TokenSource, log *logger.Logger) *Resolver {
	return &Resolver{
		db:      db,
		catalog: catalog,
		tokens:  tokenSource,
		log:     log.WithComponent("resolver"),
	}
}

// Resolve ensures the local rows and linkage for (itemID, artistID) exist.
// A nil return means the item is fully resolved locally. Failures come
// back as *Error; if the artist phase succeeded first, the artist rows
// survive the failure and a retry picks up from there.
func (r *Resolver) Resolve(ctx context.Context, itemID, artistID string) error {
	if itemID == "" || artistID == "" {
		return &Error{Kind: KindNotFound, ItemID: itemID, ArtistID: artistID, Err: fmt.Errorf("empty id")}
	}

	artist, err := r.ensureArtist(ctx, artistID)
	if err != nil {
		return wrap(itemID, artistID, err)
	}

	// Idempotence fast path: anything ever resolved for this pair, by
	// any user, short-circuits here.
	link, err := r.db.GetLinkage(artist.ID, itemID)
	if err != nil {
		return wrap(itemID, artistID, err)
	}
	if link != nil {
		return nil
	}

	token, err := r.tokens.Token(ctx, tokens.ServiceAccount())
	if err != nil {
		return wrap(itemID, artistID, err)
	}

	item, err := r.catalog.AlbumOrTrack(ctx, token, itemID)
	if err != nil {
		// Intentional partial state: the artist row stays. It is valid
		// on its own and a retry resumes from the short-circuit check.
		return wrap(itemID, artistID, err)
	}

	if err := r.persistItem(artist.ID, item); err != nil {
		return wrap(itemID, artistID, err)
	}

	r.log.WithItem(itemID, artistID).Debug("resolved item")
	return nil
}

// ensureArtist returns the local artist row for the external id, fetching
// and inserting it on first reference along with its artist-only linkage.
func (r *Resolver) ensureArtist(ctx context.Context, artistID string) (*domain.Artist, error) {
	artist, err := r.db.GetArtistBySpotifyID(artistID)
	if err != nil {
		return nil, err
	}
	if artist != nil {
		return artist, nil
	}

	token, err := r.tokens.Token(ctx, tokens.ServiceAccount())
	if err != nil {
		return nil, err
	}

	payload, err := r.catalog.Artist(ctx, token, artistID)
	if err != nil {
		return nil, err
	}

	row := &domain.Artist{
		SpotifyID:     artistID,
		Title:         payload.Name,
		ImageURL640px: spotify.ImageAt(payload.Images, 0),
		ImageURL320px: spotify.ImageAt(payload.Images, 1),
		ImageURL160px: spotify.ImageAt(payload.Images, 2),
	}

	// The artist phase commits on its own so it survives a later item
	// failure.
	err = r.db.Tx(func(tx *sqlx.Tx) error {
		if _, err := store.InsertArtist(tx, row); err != nil {
			return err
		}
		return store.InsertLinkage(tx, &domain.Linkage{
			ArtistID:  row.ID,
			SpotifyID: artistID,
		})
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// persistItem writes the album row, the optional track row, and their
// linkage rows in one transaction, so a crash mid-sequence cannot leave
// an album without its linkage.
func (r *Resolver) persistItem(artistRowID int64, item *spotify.Item) error {
	album := item.Album
	if item.Track != nil {
		album = item.Track.Album
	}

	albumRow := &domain.Album{
		SpotifyID:     album.ID,
		Title:         album.Name,
		AlbumType:     domain.AlbumType(album.AlbumType),
		TotalTracks:   album.TotalTracks,
		ReleaseDate:   album.ReleaseDate,
		ImageURL640px: spotify.ImageAt(album.Images, 0),
		ImageURL300px: spotify.ImageAt(album.Images, 1),
		ImageURL64px:  spotify.ImageAt(album.Images, 2),
	}

	return r.db.Tx(func(tx *sqlx.Tx) error {
		albumID, err := store.InsertAlbum(tx, albumRow)
		if err != nil {
			return err
		}
		if err := store.InsertLinkage(tx, &domain.Linkage{
			ArtistID:  artistRowID,
			AlbumID:   &albumID,
			SpotifyID: album.ID,
		}); err != nil {
			return err
		}

		if item.Track == nil {
			return nil
		}

		trackRow := &domain.Track{
			SpotifyID:  item.Track.ID,
			Title:      item.Track.Name,
			DiscNumber: item.Track.DiscNumber,
			TrackOrder: item.Track.TrackNumber,
			DurationMS: item.Track.DurationMS,
			Explicit:   item.Track.Explicit,
		}
		trackID, err := store.InsertTrack(tx, trackRow)
		if err != nil {
			return err
		}
		return store.InsertLinkage(tx, &domain.Linkage{
			ArtistID:  artistRowID,
			AlbumID:   &albumID,
			TrackID:   &trackID,
			SpotifyID: item.Track.ID,
		})
	})
}
