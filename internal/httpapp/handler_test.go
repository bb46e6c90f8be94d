package httpapp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/mireyav/crescendo/internal/app"
	"github.com/mireyav/crescendo/internal/httpapp/session"
	"github.com/mireyav/crescendo/internal/logger"
	"github.com/mireyav/crescendo/internal/resolver"
	"github.com/mireyav/crescendo/internal/spotify"
	"github.com/mireyav/crescendo/internal/store"
	"github.com/mireyav/crescendo/internal/tokens"
)

// Handlers are tested through a real router with real services over a
// temp database. Only the upstream provider is faked.

func setupAPI(t *testing.T) *httptest.Server {
	t.Helper()

	db, err := store.NewSQLiteDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/artists/ar1":
			json.NewEncoder(w).Encode(spotify.Artist{ID: "ar1", Name: "Artist One"})
		case "/albums/al1":
			json.NewEncoder(w).Encode(spotify.Album{ID: "al1", Name: "Album One", AlbumType: "album"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(upstream.Close)

	accountsSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"access_token":"svc-tok","expires_in":3600}`))
	}))
	t.Cleanup(accountsSrv.Close)

	log := logger.New(logger.Config{Level: "error", Format: "text"})
	client := spotify.NewClient(upstream.URL)
	accounts := spotify.NewAccounts(accountsSrv.URL, "cid", "secret", "http://localhost/callback")
	manager := tokens.NewManager(db, accounts, log)
	itemResolver := resolver.New(db, client, manager, log)

	sessions := session.NewIssuer("test-secret")
	h := NewHandler(
		app.NewAuthService(db, log),
		app.NewUserService(db, log),
		app.NewCatalogService(db, itemResolver, log),
		app.NewReviewService(db, itemResolver, log),
		app.NewSpotifyService(db, client, accounts, manager, log),
		sessions,
		log,
	)

	r := chi.NewRouter()
	h.RegisterRoutes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, token string, payload any) (*http.Response, map[string]json.RawMessage) {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatalf("Failed to encode payload: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &body)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	t.Cleanup(func() {
		resp.Body.Close()
	})

	var fields map[string]json.RawMessage
	_ = json.NewDecoder(resp.Body).Decode(&fields)
	return resp, fields
}

func registerAndLogin(t *testing.T, srv *httptest.Server, name string) string {
	t.Helper()

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/auth/register", "", map[string]string{
		"username": name,
		"email":    name + "@example.com",
		"password": "hunter22",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Register returned %d", resp.StatusCode)
	}

	resp, fields := doJSON(t, http.MethodPost, srv.URL+"/api/auth/login", "", map[string]string{
		"email":    name + "@example.com",
		"password": "hunter22",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Login returned %d", resp.StatusCode)
	}

	var token string
	if err := json.Unmarshal(fields["token"], &token); err != nil {
		t.Fatalf("Login response missing token: %v", err)
	}
	return token
}

func TestAPI_AuthFlow(t *testing.T) {
	srv := setupAPI(t)
	token := registerAndLogin(t, srv, "ana")

	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/api/auth/verify", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Verify with token returned %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/auth/verify", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Verify without token returned %d", resp.StatusCode)
	}

	// Duplicate registration maps to 409.
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/auth/register", "", map[string]string{
		"username": "ana2", "email": "ana@example.com", "password": "x",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("Duplicate register returned %d", resp.StatusCode)
	}

	// Wrong password maps to 401.
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/auth/login", "", map[string]string{
		"email": "ana@example.com", "password": "wrong",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Bad login returned %d", resp.StatusCode)
	}
}

func TestAPI_CatalogLifecycle(t *testing.T) {
	srv := setupAPI(t)
	token := registerAndLogin(t, srv, "ana")

	// Creation requires auth.
	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/catalogs", "", map[string]any{"name": "Favorites"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Unauthenticated create returned %d", resp.StatusCode)
	}

	resp, fields := doJSON(t, http.MethodPost, srv.URL+"/api/catalogs", token, map[string]any{"name": "Favorites"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Create catalog returned %d", resp.StatusCode)
	}
	var catalogID string
	if err := json.Unmarshal(fields["id"], &catalogID); err != nil {
		t.Fatalf("Create response missing id: %v", err)
	}

	// A resolvable item is accepted.
	itemPayload := map[string]any{"spotifyId": "al1", "spotifyArtistId": "ar1", "position": 1}
	resp, _ = doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/catalogs/%s/items", srv.URL, catalogID), token, itemPayload)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Add item returned %d", resp.StatusCode)
	}

	// The same item again is a conflict.
	resp, _ = doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/catalogs/%s/items", srv.URL, catalogID), token, itemPayload)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("Duplicate item returned %d", resp.StatusCode)
	}

	// An id unknown upstream is rejected, not stored.
	resp, _ = doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/catalogs/%s/items", srv.URL, catalogID), token,
		map[string]any{"spotifyId": "ghost", "spotifyArtistId": "ar1"})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("Unresolvable item returned %d", resp.StatusCode)
	}

	// Anyone can read a public catalog with its joined entries.
	resp, fields = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/catalogs/%s", srv.URL, catalogID), "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Get catalog returned %d", resp.StatusCode)
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(fields["items"], &entries); err != nil || len(entries) != 1 {
		t.Errorf("Expected 1 joined entry, got %v (%v)", len(entries), err)
	}
}

func TestAPI_PrivateCatalogHidden(t *testing.T) {
	srv := setupAPI(t)
	owner := registerAndLogin(t, srv, "ana")
	stranger := registerAndLogin(t, srv, "bo")

	_, fields := doJSON(t, http.MethodPost, srv.URL+"/api/catalogs", owner, map[string]any{
		"name": "Secret", "isPrivate": true,
	})
	var catalogID string
	if err := json.Unmarshal(fields["id"], &catalogID); err != nil {
		t.Fatalf("Create response missing id: %v", err)
	}

	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/api/catalogs/"+catalogID, stranger, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("Stranger read of private catalog returned %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/catalogs/"+catalogID, owner, nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Owner read of private catalog returned %d", resp.StatusCode)
	}
}

func TestAPI_ReviewConflictAndProfile(t *testing.T) {
	srv := setupAPI(t)
	token := registerAndLogin(t, srv, "ana")

	payload := map[string]any{"spotifyId": "al1", "spotifyArtistId": "ar1", "rating": 5, "comment": "classic"}
	resp, fields := doJSON(t, http.MethodPost, srv.URL+"/api/reviews", token, payload)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Create review returned %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/reviews", token, payload)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("Second review of same item returned %d", resp.StatusCode)
	}

	var userID int64
	if err := json.Unmarshal(fields["userId"], &userID); err != nil {
		t.Fatalf("Review response missing userId: %v", err)
	}

	resp, fields = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/user/%d", srv.URL, userID), "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Public profile returned %d", resp.StatusCode)
	}
	var reviewsByItem map[string][]json.RawMessage
	if err := json.Unmarshal(fields["reviews"], &reviewsByItem); err != nil || len(reviewsByItem["al1"]) != 1 {
		t.Errorf("Expected review grouped under al1 on profile, got %s", fields["reviews"])
	}
}

func TestAPI_UnknownUserProfile(t *testing.T) {
	srv := setupAPI(t)

	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/api/user/9999", "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Unknown user profile returned %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/user/abc", "", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Malformed user id returned %d", resp.StatusCode)
	}
}
