// Package httpapp is the JSON API surface: request decoding, session
// handling and the mapping from service errors to HTTP statuses.
package httpapp

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mireyav/crescendo/internal/app"
	"github.com/mireyav/crescendo/internal/httpapp/session"
	"github.com/mireyav/crescendo/internal/logger"
	"github.com/mireyav/crescendo/internal/resolver"
	"github.com/mireyav/crescendo/internal/spotify"
	"github.com/mireyav/crescendo/internal/tokens"
)

type Handler struct {
	Auth     *app.AuthService
	Users    *app.UserService
	Catalogs *app.CatalogService
	Reviews  *app.ReviewService
	Spotify  *app.SpotifyService
	Sessions *session.Issuer
	Logger   *logger.Logger
}

func NewHandler(auth *app.AuthService, users *app.UserService, catalogs *app.CatalogService, reviews *app.ReviewService, spotify *app.SpotifyService, sessions *session.Issuer, log *logger.Logger) *Handler {
	return &Handler{
		Auth:     auth,
		Users:    users,
		Catalogs: catalogs,
		Reviews:  reviews,
		Spotify:  spotify,
		Sessions: sessions,
		Logger:   log.WithComponent("http"),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Use(session.Middleware(h.Sessions))

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", h.Register)
		r.Post("/auth/login", h.Login)
		r.Post("/auth/logout", h.Logout)
		r.With(session.RequireAuth).Get("/auth/verify", h.Verify)

		r.Get("/user/{id}", h.UserProfile)
		r.Get("/user/{id}/reviews", h.UserReviews)

		r.Get("/spotify/search", h.Search)
		r.Get("/spotify/artist-profile", h.ArtistProfilePage)
		r.Group(func(r chi.Router) {
			r.Use(session.RequireAuth)
			r.Get("/spotify/login", h.SpotifyLogin)
			r.Get("/spotify/callback", h.SpotifyCallback)
			r.Get("/spotify/user", h.SpotifyUser)
		})

		r.Get("/catalogs/{id}", h.GetCatalog)
		r.Group(func(r chi.Router) {
			r.Use(session.RequireAuth)
			r.Post("/catalogs", h.CreateCatalog)
			r.Get("/catalogs", h.ListCatalogs)
			r.Put("/catalogs/{id}", h.UpdateCatalog)
			r.Delete("/catalogs/{id}", h.DeleteCatalog)
			r.Post("/catalogs/{id}/items", h.AddCatalogItem)
			r.Put("/catalogs/items/{itemID}", h.UpdateCatalogItem)
			r.Delete("/catalogs/items/{itemID}", h.RemoveCatalogItem)
		})

		r.Group(func(r chi.Router) {
			r.Use(session.RequireAuth)
			r.Post("/reviews", h.CreateReview)
			r.Get("/reviews", h.ListReviews)
			r.Put("/reviews/{id}", h.UpdateReview)
			r.Delete("/reviews/{id}", h.DeleteReview)
		})
	})
}

func (h *Handler) respond(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.Logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dest any) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.respond(w, status, map[string]string{"error": message})
}

// serviceError maps service-layer errors to HTTP statuses. Rejected item
// references keep the resolver's classification in the response so a
// client can tell a bad id from an upstream outage.
func (h *Handler) serviceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrNotFound):
		h.respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, app.ErrForbidden):
		h.respondError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, app.ErrDuplicate):
		h.respondError(w, http.StatusConflict, "already exists")
	case errors.Is(err, app.ErrInvalidCredentials):
		h.respondError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, app.ErrItemRejected):
		h.itemRejected(w, err)
	case errors.Is(err, tokens.ErrNotLinked):
		h.respondError(w, http.StatusConflict, "spotify account not linked")
	case errors.Is(err, spotify.ErrNotFound):
		h.respondError(w, http.StatusNotFound, "not found upstream")
	case isUpstream(err):
		h.respondError(w, http.StatusBadGateway, "upstream error")
	default:
		h.Logger.Error("request failed", "error", err)
		h.respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *Handler) itemRejected(w http.ResponseWriter, err error) {
	var resolveErr *resolver.Error
	if errors.As(err, &resolveErr) {
		switch resolveErr.Kind {
		case resolver.KindNotFound:
			h.respondError(w, http.StatusUnprocessableEntity, "item not found upstream")
			return
		case resolver.KindCredential:
			h.respondError(w, http.StatusBadGateway, "upstream credentials rejected")
			return
		case resolver.KindUpstream:
			h.respondError(w, http.StatusBadGateway, "upstream error")
			return
		}
	}
	h.respondError(w, http.StatusUnprocessableEntity, "item could not be resolved")
}

func isUpstream(err error) bool {
	var upstreamErr *spotify.UpstreamError
	var credErr *spotify.CredentialError
	return errors.As(err, &upstreamErr) || errors.As(err, &credErr)
}

// viewerID returns the authenticated user id, or 0 for anonymous
// requests. Routes behind RequireAuth always get a real id.
func viewerID(r *http.Request) int64 {
	id, _ := session.UserID(r.Context())
	return id
}
