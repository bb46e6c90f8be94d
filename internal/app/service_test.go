package app

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/mireyav/crescendo/internal/logger"
	"github.com/mireyav/crescendo/internal/resolver"
	"github.com/mireyav/crescendo/internal/spotify"
	"github.com/mireyav/crescendo/internal/store"
	"github.com/mireyav/crescendo/internal/tokens"
)

// The services are tested against a real temp database and a resolver
// wired to an in-memory fake upstream.

type fakeUpstream struct {
	artists map[string]*spotify.Artist
	items   map[string]*spotify.Item
}

func (f *fakeUpstream) Artist(ctx context.Context, token, id string) (*spotify.Artist, error) {
	artist, ok := f.artists[id]
	if !ok {
		return nil, fmt.Errorf("artist %s: %w", id, spotify.ErrNotFound)
	}
	return artist, nil
}

func (f *fakeUpstream) AlbumOrTrack(ctx context.Context, token, id string) (*spotify.Item, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, fmt.Errorf("item %s: %w", id, spotify.ErrNotFound)
	}
	return item, nil
}

type fakeTokens struct{}

func (fakeTokens) Token(ctx context.Context, principal tokens.Principal) (string, error) {
	return "test-token", nil
}

type testEnv struct {
	db       *store.DB
	resolver *resolver.Resolver
	upstream *fakeUpstream
	log      *logger.Logger
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := store.NewSQLiteDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})

	upstream := &fakeUpstream{
		artists: map[string]*spotify.Artist{
			"ar1": {ID: "ar1", Name: "Artist One"},
		},
		items: map[string]*spotify.Item{
			"al1": {Album: &spotify.Album{ID: "al1", Name: "Album One", AlbumType: "album"}},
		},
	}

	log := logger.New(logger.Config{Level: "error", Format: "text"})
	return &testEnv{
		db:       db,
		resolver: resolver.New(db, upstream, fakeTokens{}, log),
		upstream: upstream,
		log:      log,
	}
}
