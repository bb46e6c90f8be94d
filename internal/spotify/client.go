package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mireyav/crescendo/internal/constants"
)

// Client talks to the provider's catalog API. It is stateless: every call
// takes the bearer token to use, so the same client serves both delegated
// and service-level requests.
type Client struct {
	apiURL     string
	httpClient *http.Client
}

// NewClient creates a catalog API client against the given base URL.
func NewClient(apiURL string) *Client {
	return &Client{
		apiURL: strings.TrimSuffix(apiURL, "/"),
		httpClient: &http.Client{
			Timeout: constants.DefaultHTTPTimeout,
		},
	}
}

// Artist fetches the full artist representation for an external id.
func (c *Client) Artist(ctx context.Context, token, id string) (*Artist, error) {
	var artist Artist
	if err := c.getJSON(ctx, token, "/artists/"+url.PathEscape(id), nil, &artist); err != nil {
		return nil, err
	}
	return &artist, nil
}

// Album fetches the full album representation for an external id.
func (c *Client) Album(ctx context.Context, token, id string) (*Album, error) {
	var album Album
	if err := c.getJSON(ctx, token, "/albums/"+url.PathEscape(id), nil, &album); err != nil {
		return nil, err
	}
	return &album, nil
}

// Track fetches the track representation for an external id. The payload
// embeds the parent album summary.
func (c *Client) Track(ctx context.Context, token, id string) (*Track, error) {
	var track Track
	if err := c.getJSON(ctx, token, "/tracks/"+url.PathEscape(id), nil, &track); err != nil {
		return nil, err
	}
	return &track, nil
}

// AlbumOrTrack resolves an id that may name either an album or a track.
// The album lookup goes first; on a provider 404 the track lookup runs.
// Any other failure of the album lookup is returned as-is.
func (c *Client) AlbumOrTrack(ctx context.Context, token, id string) (*Item, error) {
	album, err := c.Album(ctx, token, id)
	if err == nil {
		return &Item{Album: album}, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	track, err := c.Track(ctx, token, id)
	if err != nil {
		return nil, err
	}
	if track.Album == nil {
		return nil, &UpstreamError{StatusCode: http.StatusOK, Message: fmt.Sprintf("track %s has no album in payload", id)}
	}
	return &Item{Track: track}, nil
}

// Albums fetches full album representations for a list of ids, chunking
// requests to the provider's batch limit and concatenating results in
// input order.
func (c *Client) Albums(ctx context.Context, token string, ids []string) ([]Album, error) {
	var albums []Album
	for start := 0; start < len(ids); start += constants.AlbumBatchLimit {
		end := start + constants.AlbumBatchLimit
		if end > len(ids) {
			end = len(ids)
		}

		query := url.Values{}
		query.Set("ids", strings.Join(ids[start:end], ","))

		var page struct {
			Albums []Album `json:"albums"`
		}
		if err := c.getJSON(ctx, token, "/albums", query, &page); err != nil {
			return nil, err
		}
		albums = append(albums, page.Albums...)
	}
	return albums, nil
}

// ArtistAlbumIDs lists the ids of an artist's albums, first page only.
func (c *Client) ArtistAlbumIDs(ctx context.Context, token, artistID string, limit int) ([]string, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("include_groups", "album,single,compilation")

	var page albumPage
	if err := c.getJSON(ctx, token, "/artists/"+url.PathEscape(artistID)+"/albums", query, &page); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(page.Items))
	for _, album := range page.Items {
		ids = append(ids, album.ID)
	}
	return ids, nil
}

// Me fetches the profile of the user the token was delegated by.
func (c *Client) Me(ctx context.Context, token string) (*User, error) {
	var user User
	if err := c.getJSON(ctx, token, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Search queries the provider for artists, albums and tracks.
func (c *Client) Search(ctx context.Context, token, q, searchType string, limit, offset int) (*SearchResults, error) {
	if searchType == "" {
		searchType = "album,artist,track"
	}
	query := url.Values{}
	query.Set("q", q)
	query.Set("type", searchType)
	query.Set("limit", strconv.Itoa(limit))
	query.Set("offset", strconv.Itoa(offset))

	var results SearchResults
	if err := c.getJSON(ctx, token, "/search", query, &results); err != nil {
		return nil, err
	}
	return &results, nil
}

func (c *Client) getJSON(ctx context.Context, token, path string, query url.Values, dest any) error {
	u := c.apiURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.doWithRetry(ctx, req)
	if err != nil {
		return &UpstreamError{Message: err.Error()}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &UpstreamError{StatusCode: resp.StatusCode, Message: readAPIError(resp)}
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return &UpstreamError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to decode response: %v", err)}
	}
	return nil
}

// doWithRetry retries transport-level failures with linear backoff. Status
// codes are not retried here; the resolver treats them as terminal within
// a request.
func (c *Client) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt < constants.DefaultRetryCount; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		resp, err := c.httpClient.Do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		backoff := time.Duration(attempt+1) * constants.DefaultRetryBase
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return nil, lastErr
}

// readAPIError extracts the message from the provider's JSON error body.
func readAPIError(resp *http.Response) string {
	var body struct {
		Error struct {
			Status  int    `json:"status"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return ""
	}
	return body.Error.Message
}
