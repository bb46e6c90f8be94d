package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mireyav/crescendo/internal/app"
	"github.com/mireyav/crescendo/internal/config"
	"github.com/mireyav/crescendo/internal/httpapp"
	"github.com/mireyav/crescendo/internal/httpapp/session"
	"github.com/mireyav/crescendo/internal/logger"
	"github.com/mireyav/crescendo/internal/resolver"
	"github.com/mireyav/crescendo/internal/spotify"
	"github.com/mireyav/crescendo/internal/store"
	"github.com/mireyav/crescendo/internal/tokens"
)

func main() {
	cfg := config.Load()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Initialize Logger
	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	// Initialize DB
	db, err := store.NewSQLiteDB(cfg.DBPath)
	if err != nil {
		appLogger.Error("Failed to init DB", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Upstream catalog client and token plumbing
	client := spotify.NewClient(cfg.SpotifyAPIURL)
	accounts := spotify.NewAccounts(cfg.SpotifyAccountsURL, cfg.SpotifyClientID, cfg.SpotifyClientSecret, cfg.SpotifyRedirectURI)
	tokenManager := tokens.NewManager(db, accounts, appLogger)
	itemResolver := resolver.New(db, client, tokenManager, appLogger)

	// Services
	authService := app.NewAuthService(db, appLogger)
	userService := app.NewUserService(db, appLogger)
	catalogService := app.NewCatalogService(db, itemResolver, appLogger)
	reviewService := app.NewReviewService(db, itemResolver, appLogger)
	spotifyService := app.NewSpotifyService(db, client, accounts, tokenManager, appLogger)

	// Router
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	sessions := session.NewIssuer(cfg.JWTSecret)
	h := httpapp.NewHandler(authService, userService, catalogService, reviewService, spotifyService, sessions, appLogger)
	h.RegisterRoutes(r)

	// Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
