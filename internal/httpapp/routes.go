package httpapp

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mireyav/crescendo/internal/constants"
	"github.com/mireyav/crescendo/internal/domain"
	"github.com/mireyav/crescendo/internal/httpapp/session"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		h.respondError(w, http.StatusBadRequest, "username, email and password are required")
		return
	}

	user, err := h.Auth.Register(req.Username, req.Email, req.Password)
	if err != nil {
		h.serviceError(w, err)
		return
	}
	h.respond(w, http.StatusCreated, map[string]any{
		"userId":   user.ID,
		"username": user.Username,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.Auth.Authenticate(req.Email, req.Password)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	token, err := h.Sessions.Issue(user.ID)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(constants.DefaultSessionLifetime.Seconds()),
	})
	h.respond(w, http.StatusOK, map[string]any{
		"token":    token,
		"userId":   user.ID,
		"username": user.Username,
	})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	h.respond(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	h.respond(w, http.StatusOK, map[string]any{"userId": viewerID(r)})
}

func (h *Handler) UserProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	profile, err := h.Users.Profile(userID)
	if err != nil {
		h.serviceError(w, err)
		return
	}
	h.respond(w, http.StatusOK, profile)
}

func (h *Handler) UserReviews(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	reviews, err := h.Users.PublicReviews(userID)
	if err != nil {
		h.serviceError(w, err)
		return
	}
	h.respond(w, http.StatusOK, reviews)
}

type catalogRequest struct {
	Name      string  `json:"name"`
	Comment   string  `json:"comment"`
	IsPrivate bool    `json:"isPrivate"`
	ImageURL  *string `json:"imageUrl"`
}

func (h *Handler) CreateCatalog(w http.ResponseWriter, r *http.Request) {
	var req catalogRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Name == "" {
		h.respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	catalog, err := h.Catalogs.Create(viewerID(r), req.Name, req.Comment, req.IsPrivate, req.ImageURL)
	if err != nil {
		h.serviceError(w, err)
		return
	}
	h.respond(w, http.StatusCreated, catalog)
}

func (h *Handler) ListCatalogs(w http.ResponseWriter, r *http.Request) {
	catalogs, err := h.Catalogs.ListOwn(viewerID(r))
	if err != nil {
		h.serviceError(w, err)
		return
	}
	h.respond(w, http.StatusOK, catalogs)
}

func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	catalog, entries, err := h.Catalogs.Get(chi.URLParam(r, "id"), viewerID(r))
	if err != nil {
		h.serviceError(w, err)
		return
	}
	h.respond(w, http.StatusOK, map[string]any{
		"catalog": catalog,
		"items":   entries,
	})
}

func (h *Handler) UpdateCatalog(w http.ResponseWriter, r *http.Request) {
	var req catalogRequest
	if !h.decode(w, r, &req) {
		return
	}

	catalog := &domain.Catalog{
		ID:        chi.URLParam(r, "id"),
		Name:      req.Name,
		Comment:   req.Comment,
		IsPrivate: req.IsPrivate,
		ImageURL:  req.ImageURL,
	}
	if err := h.Catalogs.Update(viewerID(r), catalog); err != nil {
		h.serviceError(w, err)
		return
	}
	h.respond(w, http.StatusOK, catalog)
}

func (h *Handler) DeleteCatalog(w http.ResponseWriter, r *http.Request) {
	if err := h.Catalogs.Delete(viewerID(r), chi.URLParam(r, "id")); err != nil {
		h.serviceError(w, err)
		return
	}
	h.respond(w, http.StatusNoContent, nil)
}

type catalogItemRequest struct {
	SpotifyID       string `json:"spotifyId"`
	SpotifyArtistID string `json:"spotifyArtistId"`
	Position        int    `json:"position"`
	Comment         string `json:"comment"`
}

func (h *Handler) AddCatalogItem(w http.ResponseWriter, r *http.Request) {
	var req catalogItemRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.SpotifyID == "" || req.SpotifyArtistID == "" {
		h.respondError(w, http.StatusBadRequest, "spotifyId and spotifyArtistId are required")
		return
	}

	item, err := h.Catalogs.AddItem(r.Context(), viewerID(r), chi.URLParam(r, "id"), req.SpotifyID, req.SpotifyArtistID, req.Position, req.Comment)
	if err != nil {
		h.serviceError(w, err)
		return
	}
	h.respond(w, http.StatusCreated, item)
}

func (h *Handler) UpdateCatalogItem(w http.ResponseWriter, r *http.Request) {
	var req catalogItemRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.Catalogs.UpdateItem(viewerID(r), chi.URLParam(r, "itemID"), req.Position, req.Comment); err != nil {
		h.serviceError(w, err)
		return
	}
	h.respond(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) RemoveCatalogItem(w http.ResponseWriter, r *http.Request) {
	if err := h.Catalogs.RemoveItem(viewerID(r), chi.URLParam(r, "itemID")); err != nil {
		h.serviceError(w, err)
		return
	}
	h.respond(w, http.StatusNoContent, nil)
}

type reviewRequest struct {
	SpotifyID       string `json:"spotifyId"`
	SpotifyArtistID string `json:"spotifyArtistId"`
	Rating          int    `json:"rating"`
	Comment         string `json:"comment"`
	IsPrivate       bool   `json:"isPrivate"`
}

func (h *Handler) CreateReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.SpotifyID == "" || req.SpotifyArtistID == "" {
		h.respondError(w, http.StatusBadRequest, "spotifyId and spotifyArtistId are required")
		return
	}

	review, err := h.Reviews.Create(r.Context(), viewerID(r), req.SpotifyID, req.SpotifyArtistID, req.Rating, req.Comment, req.IsPrivate)
	if err != nil {
		h.serviceError(w, err)
		return
	}
	h.respond(w, http.StatusCreated, review)
}

func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.Reviews.ListOwn(viewerID(r))
	if err != nil {
		h.serviceError(w, err)
		return
	}
	h.respond(w, http.StatusOK, reviews)
}

func (h *Handler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.Reviews.Update(viewerID(r), chi.URLParam(r, "id"), req.Rating, req.Comment, req.IsPrivate); err != nil {
		h.serviceError(w, err)
		return
	}
	h.respond(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	if err := h.Reviews.Delete(viewerID(r), chi.URLParam(r, "id")); err != nil {
		h.serviceError(w, err)
		return
	}
	h.respond(w, http.StatusNoContent, nil)
}

func (h *Handler) SpotifyLogin(w http.ResponseWriter, r *http.Request) {
	state := strconv.FormatInt(viewerID(r), 10)
	http.Redirect(w, r, h.Spotify.LoginURL(state), http.StatusTemporaryRedirect)
}

func (h *Handler) SpotifyCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		h.respondError(w, http.StatusBadRequest, "code is required")
		return
	}

	if err := h.Spotify.Callback(r.Context(), viewerID(r), code); err != nil {
		h.serviceError(w, err)
		return
	}
	h.respond(w, http.StatusOK, map[string]string{"status": "linked"})
}

func (h *Handler) SpotifyUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.Spotify.UserProfile(r.Context(), viewerID(r))
	if err != nil {
		h.serviceError(w, err)
		return
	}
	h.respond(w, http.StatusOK, user)
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		h.respondError(w, http.StatusBadRequest, "q is required")
		return
	}
	searchType := r.URL.Query().Get("type")

	limit := queryInt(r, "limit", constants.DefaultSearchLimit)
	if limit < 1 || limit > constants.MaxSearchLimit {
		limit = constants.DefaultSearchLimit
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	results, err := h.Spotify.Search(r.Context(), q, searchType, limit, offset)
	if err != nil {
		h.serviceError(w, err)
		return
	}
	h.respond(w, http.StatusOK, results)
}

func (h *Handler) ArtistProfilePage(w http.ResponseWriter, r *http.Request) {
	artistID := r.URL.Query().Get("id")
	if artistID == "" {
		h.respondError(w, http.StatusBadRequest, "id is required")
		return
	}

	profile, err := h.Spotify.ArtistProfile(r.Context(), artistID, viewerID(r))
	if err != nil {
		h.serviceError(w, err)
		return
	}
	h.respond(w, http.StatusOK, profile)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
