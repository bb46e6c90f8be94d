package app

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mireyav/crescendo/internal/constants"
	"github.com/mireyav/crescendo/internal/domain"
	"github.com/mireyav/crescendo/internal/logger"
	"github.com/mireyav/crescendo/internal/spotify"
	"github.com/mireyav/crescendo/internal/store"
	"github.com/mireyav/crescendo/internal/tokens"
)

// SpotifyService exposes the upstream catalog to the API: account linking,
// delegated profile reads, search, and artist profiles. Upstream payloads
// for search and artist profiles are cached in the store with a TTL;
// reviews and catalogs are always read fresh.
type SpotifyService struct {
	Repo     *store.DB
	Client   *spotify.Client
	Accounts *spotify.Accounts
	Tokens   *tokens.Manager
	Logger   *logger.Logger
}

func NewSpotifyService(repo *store.DB, client *spotify.Client, accounts *spotify.Accounts, manager *tokens.Manager, log *logger.Logger) *SpotifyService {
	return &SpotifyService{
		Repo:     repo,
		Client:   client,
		Accounts: accounts,
		Tokens:   manager,
		Logger:   log.WithComponent("spotify"),
	}
}

// LoginURL builds the consent URL a user is redirected to when linking
// their account.
func (s *SpotifyService) LoginURL(state string) string {
	return s.Accounts.AuthCodeURL(state)
}

// Callback finishes the account-linking flow: trades the authorization
// code for a token pair and stores it on the user.
func (s *SpotifyService) Callback(ctx context.Context, userID int64, code string) error {
	token, err := s.Accounts.ExchangeCode(ctx, code)
	if err != nil {
		return err
	}

	var refresh *string
	if token.RefreshToken != "" {
		refresh = &token.RefreshToken
	}
	if err := s.Repo.UpdateUserSpotifyTokens(userID, refresh, token.AccessToken, token.ExpiresAt); err != nil {
		return fmt.Errorf("failed to store tokens: %w", err)
	}

	s.Logger.WithUser(userID).Info("spotify account linked")
	return nil
}

// UserProfile fetches the linked upstream profile with the user's
// delegated token.
func (s *SpotifyService) UserProfile(ctx context.Context, userID int64) (*spotify.User, error) {
	token, err := s.Tokens.Token(ctx, tokens.User(userID))
	if err != nil {
		return nil, err
	}
	return s.Client.Me(ctx, token)
}

// SearchCounts carries the provider's per-type result totals.
type SearchCounts struct {
	Albums  int `json:"albums"`
	Artists int `json:"artists"`
	Tracks  int `json:"tracks"`
}

// SearchMetadata echoes the query back with the result counts.
type SearchMetadata struct {
	Offset int          `json:"offset"`
	Limit  int          `json:"limit"`
	Query  string       `json:"q"`
	Type   string       `json:"type"`
	Count  SearchCounts `json:"count"`
}

// SearchArtistRef is a compact artist reference in search results.
type SearchArtistRef struct {
	SpotifyID string `json:"spotifyId"`
	Title     string `json:"title"`
}

// SearchAlbum is a normalized album search hit.
type SearchAlbum struct {
	SpotifyID   string            `json:"spotifyId"`
	Title       string            `json:"title"`
	Images      []spotify.Image   `json:"images"`
	ReleaseDate string            `json:"releaseDate"`
	TracksCount int               `json:"tracksCount"`
	AlbumType   string            `json:"albumType"`
	Artists     []SearchArtistRef `json:"artists"`
}

// SearchArtist is a normalized artist search hit.
type SearchArtist struct {
	SpotifyID  string          `json:"spotifyId"`
	Title      string          `json:"title"`
	Images     []spotify.Image `json:"images"`
	Popularity int             `json:"popularity"`
	Genres     []string        `json:"genres"`
}

// SearchTrackAlbum is the album summary attached to a track hit.
type SearchTrackAlbum struct {
	SpotifyID string `json:"spotifyId"`
	Title     string `json:"title"`
	AlbumType string `json:"albumType"`
}

// SearchTrack is a normalized track search hit.
type SearchTrack struct {
	SpotifyID   string            `json:"spotifyId"`
	Title       string            `json:"title"`
	DurationMS  int               `json:"durationMs"`
	Popularity  int               `json:"popularity"`
	Images      []spotify.Image   `json:"images"`
	ReleaseDate string            `json:"releaseDate"`
	Album       SearchTrackAlbum  `json:"album"`
	Artists     []SearchArtistRef `json:"artists"`
}

// SearchResponse is the API's search payload.
type SearchResponse struct {
	Metadata SearchMetadata `json:"metadata"`
	Albums   []SearchAlbum  `json:"albums"`
	Artists  []SearchArtist `json:"artists"`
	Tracks   []SearchTrack  `json:"tracks"`
}

// Search queries the upstream catalog with the service token and
// normalizes the result. Responses are cached by the full query.
func (s *SpotifyService) Search(ctx context.Context, q, searchType string, limit, offset int) (*SearchResponse, error) {
	cacheKey := fmt.Sprintf("search:%s:%s:%d:%d", searchType, q, limit, offset)
	if data, err := s.Repo.GetCache(cacheKey); err == nil && data != nil {
		var cached SearchResponse
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	token, err := s.Tokens.Token(ctx, tokens.ServiceAccount())
	if err != nil {
		return nil, err
	}

	results, err := s.Client.Search(ctx, token, q, searchType, limit, offset)
	if err != nil {
		return nil, err
	}

	response := normalizeSearch(q, searchType, limit, offset, results)
	if data, err := json.Marshal(response); err == nil {
		_ = s.Repo.SetCache(cacheKey, data, constants.DefaultCacheTTL)
	}
	return response, nil
}

func normalizeSearch(q, searchType string, limit, offset int, results *spotify.SearchResults) *SearchResponse {
	artistTotal, albumTotal, trackTotal := results.Counts()
	response := &SearchResponse{
		Metadata: SearchMetadata{
			Offset: offset,
			Limit:  limit,
			Query:  q,
			Type:   searchType,
			Count: SearchCounts{
				Albums:  albumTotal,
				Artists: artistTotal,
				Tracks:  trackTotal,
			},
		},
		Albums:  []SearchAlbum{},
		Artists: []SearchArtist{},
		Tracks:  []SearchTrack{},
	}

	for _, album := range results.Albums.Items {
		response.Albums = append(response.Albums, SearchAlbum{
			SpotifyID:   album.ID,
			Title:       album.Name,
			Images:      album.Images,
			ReleaseDate: album.ReleaseDate,
			TracksCount: album.TotalTracks,
			AlbumType:   album.AlbumType,
			Artists:     artistRefs(album.Artists),
		})
	}
	for _, artist := range results.Artists.Items {
		response.Artists = append(response.Artists, SearchArtist{
			SpotifyID:  artist.ID,
			Title:      artist.Name,
			Images:     artist.Images,
			Popularity: artist.Popularity,
			Genres:     artist.Genres,
		})
	}
	for _, track := range results.Tracks.Items {
		hit := SearchTrack{
			SpotifyID:  track.ID,
			Title:      track.Name,
			DurationMS: track.DurationMS,
			Artists:    artistRefs(track.Artists),
		}
		if track.Album != nil {
			hit.Images = track.Album.Images
			hit.ReleaseDate = track.Album.ReleaseDate
			hit.Album = SearchTrackAlbum{
				SpotifyID: track.Album.ID,
				Title:     track.Album.Name,
				AlbumType: track.Album.AlbumType,
			}
		}
		response.Tracks = append(response.Tracks, hit)
	}
	return response
}

func artistRefs(refs []spotify.ArtistRef) []SearchArtistRef {
	out := make([]SearchArtistRef, 0, len(refs))
	for _, ref := range refs {
		out = append(out, SearchArtistRef{SpotifyID: ref.ID, Title: ref.Name})
	}
	return out
}

// ProfileTrack is one track inside an artist-profile album listing.
type ProfileTrack struct {
	Title       string `json:"title"`
	SpotifyID   string `json:"spotifyId"`
	DurationMS  int    `json:"durationMs"`
	DiscNumber  int    `json:"discNumber"`
	TrackNumber int    `json:"trackNumber"`
	Explicit    bool   `json:"explicit"`
	IsPlayable  bool   `json:"isPlayable"`
}

// ProfileAlbum is one album on an artist profile, with its track listing.
type ProfileAlbum struct {
	Title       string          `json:"title"`
	SpotifyID   string          `json:"spotifyId"`
	ReleaseDate string          `json:"releaseDate"`
	Popularity  int             `json:"popularity"`
	Images      []spotify.Image `json:"images"`
	Tracks      []ProfileTrack  `json:"tracks"`
}

// ArtistProfile is the artist page: upstream identity and discography plus
// local community content referencing the artist.
type ArtistProfile struct {
	Title      string                              `json:"title"`
	Popularity int                                 `json:"popularity"`
	SpotifyID  string                              `json:"spotifyId"`
	Images     []spotify.Image                     `json:"images"`
	Albums     []ProfileAlbum                      `json:"albums"`
	Reviews    map[string][]domain.Review          `json:"reviews"`
	Catalogs   map[string][]store.ArtistCatalogRef `json:"catalogs"`
}

// artistDiscography is the cacheable upstream half of an artist profile.
type artistDiscography struct {
	Artist spotify.Artist `json:"artist"`
	Albums []ProfileAlbum `json:"albums"`
}

// ArtistProfile assembles the artist page. The upstream half is cached;
// the community half (reviews, catalogs) is read fresh so new content
// appears immediately. viewerID is 0 for anonymous viewers.
func (s *SpotifyService) ArtistProfile(ctx context.Context, spotifyArtistID string, viewerID int64) (*ArtistProfile, error) {
	disco, err := s.discography(ctx, spotifyArtistID)
	if err != nil {
		return nil, err
	}

	reviews, err := s.Repo.ListPublicReviewsForArtist(spotifyArtistID)
	if err != nil {
		return nil, err
	}
	groupedReviews := make(map[string][]domain.Review, len(reviews))
	for _, review := range reviews {
		groupedReviews[review.SpotifyID] = append(groupedReviews[review.SpotifyID], review)
	}

	catalogRefs, err := s.Repo.ListCatalogsReferencingArtist(spotifyArtistID, viewerID)
	if err != nil {
		return nil, err
	}
	groupedCatalogs := make(map[string][]store.ArtistCatalogRef, len(catalogRefs))
	for _, ref := range catalogRefs {
		groupedCatalogs[ref.CatalogItemSpotifyID] = append(groupedCatalogs[ref.CatalogItemSpotifyID], ref)
	}

	return &ArtistProfile{
		Title:      disco.Artist.Name,
		Popularity: disco.Artist.Popularity,
		SpotifyID:  disco.Artist.ID,
		Images:     disco.Artist.Images,
		Albums:     disco.Albums,
		Reviews:    groupedReviews,
		Catalogs:   groupedCatalogs,
	}, nil
}

func (s *SpotifyService) discography(ctx context.Context, spotifyArtistID string) (*artistDiscography, error) {
	cacheKey := "artist-profile:" + spotifyArtistID
	if data, err := s.Repo.GetCache(cacheKey); err == nil && data != nil {
		var cached artistDiscography
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	token, err := s.Tokens.Token(ctx, tokens.ServiceAccount())
	if err != nil {
		return nil, err
	}

	artist, err := s.Client.Artist(ctx, token, spotifyArtistID)
	if err != nil {
		return nil, err
	}

	albumIDs, err := s.Client.ArtistAlbumIDs(ctx, token, spotifyArtistID, constants.DefaultSearchLimit)
	if err != nil {
		return nil, err
	}
	albums, err := s.Client.Albums(ctx, token, albumIDs)
	if err != nil {
		return nil, err
	}

	disco := &artistDiscography{Artist: *artist, Albums: make([]ProfileAlbum, 0, len(albums))}
	for _, album := range albums {
		profileAlbum := ProfileAlbum{
			Title:       album.Name,
			SpotifyID:   album.ID,
			ReleaseDate: album.ReleaseDate,
			Popularity:  album.Popularity,
			Images:      album.Images,
			Tracks:      make([]ProfileTrack, 0, len(album.Tracks.Items)),
		}
		for _, track := range album.Tracks.Items {
			profileAlbum.Tracks = append(profileAlbum.Tracks, ProfileTrack{
				Title:       track.Name,
				SpotifyID:   track.ID,
				DurationMS:  track.DurationMS,
				DiscNumber:  track.DiscNumber,
				TrackNumber: track.TrackNumber,
				Explicit:    track.Explicit,
				IsPlayable:  track.IsPlayable,
			})
		}
		disco.Albums = append(disco.Albums, profileAlbum)
	}

	if data, err := json.Marshal(disco); err == nil {
		_ = s.Repo.SetCache(cacheKey, data, constants.DefaultCacheTTL)
	}
	return disco, nil
}
