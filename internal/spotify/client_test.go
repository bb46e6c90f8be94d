package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestImageAt(t *testing.T) {
	images := []Image{
		{URL: "http://img/640", Width: 640},
		{URL: "http://img/300", Width: 300},
	}

	if got := ImageAt(images, 0); got == nil || *got != "http://img/640" {
		t.Errorf("Expected first image, got %v", got)
	}
	if got := ImageAt(images, 2); got != nil {
		t.Errorf("Expected nil past the end, got %q", *got)
	}
	if got := ImageAt(nil, 0); got != nil {
		t.Errorf("Expected nil for empty slice, got %q", *got)
	}
}

func TestClient_AlbumOrTrack_AlbumWins(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/albums/id1" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(Album{ID: "id1", Name: "Album"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	item, err := client.AlbumOrTrack(context.Background(), "tok", "id1")
	if err != nil {
		t.Fatalf("AlbumOrTrack failed: %v", err)
	}
	if item.Album == nil || item.Album.Name != "Album" {
		t.Errorf("Expected album item, got %+v", item)
	}
	if item.Track != nil {
		t.Errorf("Expected no track on album item, got %+v", item.Track)
	}
}

func TestClient_AlbumOrTrack_FallsBackToTrack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/albums/"):
			w.WriteHeader(http.StatusNotFound)
		case strings.HasPrefix(r.URL.Path, "/tracks/"):
			json.NewEncoder(w).Encode(Track{
				ID:    "id1",
				Name:  "Track",
				Album: &Album{ID: "al1", Name: "Parent"},
			})
		default:
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	item, err := client.AlbumOrTrack(context.Background(), "tok", "id1")
	if err != nil {
		t.Fatalf("AlbumOrTrack failed: %v", err)
	}
	if item.Track == nil || item.Track.Album.Name != "Parent" {
		t.Errorf("Expected track with parent album, got %+v", item)
	}
}

func TestClient_AlbumOrTrack_NeitherExists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.AlbumOrTrack(context.Background(), "tok", "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestClient_AlbumOrTrack_UpstreamErrorNotRetriedAsTrack(t *testing.T) {
	var trackCalls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/tracks/") {
			trackCalls++
		}
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"status":500,"message":"boom"}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.AlbumOrTrack(context.Background(), "tok", "id1")

	var upstreamErr *UpstreamError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("Expected UpstreamError, got %v", err)
	}
	if upstreamErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", upstreamErr.StatusCode)
	}
	if upstreamErr.Message != "boom" {
		t.Errorf("Expected provider message, got %q", upstreamErr.Message)
	}
	// Only a 404 on the album lookup triggers the track fallback.
	if trackCalls != 0 {
		t.Errorf("Expected no track lookup after 500, got %d", trackCalls)
	}
}

func TestClient_Albums_ChunksRequests(t *testing.T) {
	var batches [][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids := strings.Split(r.URL.Query().Get("ids"), ",")
		batches = append(batches, ids)

		albums := make([]Album, 0, len(ids))
		for _, id := range ids {
			albums = append(albums, Album{ID: id})
		}
		json.NewEncoder(w).Encode(map[string][]Album{"albums": albums})
	}))
	defer srv.Close()

	ids := make([]string, 45)
	for i := range ids {
		ids[i] = "al" + string(rune('a'+i%26)) + string(rune('a'+i/26))
	}

	client := NewClient(srv.URL)
	albums, err := client.Albums(context.Background(), "tok", ids)
	if err != nil {
		t.Fatalf("Albums failed: %v", err)
	}

	if len(batches) != 3 {
		t.Fatalf("Expected 3 batches for 45 ids, got %d", len(batches))
	}
	for i, batch := range batches {
		if len(batch) > 20 {
			t.Errorf("Batch %d exceeds limit: %d ids", i, len(batch))
		}
	}
	if len(albums) != 45 {
		t.Fatalf("Expected 45 albums, got %d", len(albums))
	}
	// Results keep input order across chunk boundaries.
	for i, album := range albums {
		if album.ID != ids[i] {
			t.Errorf("Album %d out of order: expected %s, got %s", i, ids[i], album.ID)
			break
		}
	}
}

func TestClient_Albums_NoIDsNoRequests(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(map[string][]Album{"albums": {}})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	albums, err := client.Albums(context.Background(), "tok", nil)
	if err != nil {
		t.Fatalf("Albums failed: %v", err)
	}
	if len(albums) != 0 || calls != 0 {
		t.Errorf("Expected no albums and no requests, got %d albums, %d calls", len(albums), calls)
	}
}

func TestClient_SendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Errorf("Expected bearer header, got %q", got)
		}
		json.NewEncoder(w).Encode(Artist{ID: "ar1"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	if _, err := client.Artist(context.Background(), "tok-123", "ar1"); err != nil {
		t.Fatalf("Artist failed: %v", err)
	}
}

func TestClient_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("q") != "daft" {
			t.Errorf("Expected q=daft, got %q", q.Get("q"))
		}
		if q.Get("type") != "album,artist,track" {
			t.Errorf("Expected default type list, got %q", q.Get("type"))
		}
		json.NewEncoder(w).Encode(SearchResults{
			Artists: artistPage{Total: 2, Items: []Artist{{ID: "ar1"}, {ID: "ar2"}}},
			Albums:  albumPage{Total: 1, Items: []Album{{ID: "al1"}}},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	results, err := client.Search(context.Background(), "tok", "daft", "", 20, 0)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	artists, albums, tracks := results.Counts()
	if artists != 2 || albums != 1 || tracks != 0 {
		t.Errorf("Unexpected counts: %d artists, %d albums, %d tracks", artists, albums, tracks)
	}
}
