package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/mireyav/crescendo/internal/constants"
)

// Config holds all application configuration
type Config struct {
	Port      string
	DBPath    string
	LogLevel  string
	LogFormat string

	// Session signing secret for issued JWTs.
	JWTSecret string

	// Spotify application credentials and endpoints.
	SpotifyClientID     string
	SpotifyClientSecret string
	SpotifyRedirectURI  string
	SpotifyAPIURL       string
	SpotifyAccountsURL  string
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Port:                getEnv("PORT", constants.DefaultPort),
		DBPath:              getEnv("DB_PATH", constants.DefaultDBPath),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           getEnv("LOG_FORMAT", "text"),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		SpotifyClientID:     getEnv("SPOTIFY_CLIENT_ID", ""),
		SpotifyClientSecret: getEnv("SPOTIFY_CLIENT_SECRET", ""),
		SpotifyRedirectURI:  getEnv("SPOTIFY_REDIRECT_URI", ""),
		SpotifyAPIURL:       getEnv("SPOTIFY_API_URL", constants.DefaultSpotifyAPIURL),
		SpotifyAccountsURL:  getEnv("SPOTIFY_ACCOUNTS_URL", constants.DefaultSpotifyAccountsURL),
	}
}

// Validate validates the configuration and returns detailed errors
func (c *Config) Validate() error {
	var errors []string

	if c.Port == "" {
		errors = append(errors, "PORT cannot be empty")
	} else {
		port, err := strconv.Atoi(c.Port)
		if err != nil {
			errors = append(errors, fmt.Sprintf("PORT must be a valid number, got: %s", c.Port))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("PORT must be between 1 and 65535, got: %d", port))
		}
	}

	if c.DBPath == "" {
		errors = append(errors, "DB_PATH cannot be empty")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: debug, info, warn, error, got: %s", c.LogLevel))
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[c.LogFormat] {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of: text, json, got: %s", c.LogFormat))
	}

	if c.JWTSecret == "" {
		errors = append(errors, "JWT_SECRET cannot be empty")
	}

	if c.SpotifyClientID == "" {
		errors = append(errors, "SPOTIFY_CLIENT_ID cannot be empty")
	}
	if c.SpotifyClientSecret == "" {
		errors = append(errors, "SPOTIFY_CLIENT_SECRET cannot be empty")
	}
	if c.SpotifyRedirectURI == "" {
		errors = append(errors, "SPOTIFY_REDIRECT_URI cannot be empty")
	} else if _, err := url.Parse(c.SpotifyRedirectURI); err != nil {
		errors = append(errors, fmt.Sprintf("SPOTIFY_REDIRECT_URI is not a valid URL: %s", c.SpotifyRedirectURI))
	}

	for key, value := range map[string]string{
		"SPOTIFY_API_URL":      c.SpotifyAPIURL,
		"SPOTIFY_ACCOUNTS_URL": c.SpotifyAccountsURL,
	} {
		if value == "" {
			errors = append(errors, key+" cannot be empty")
			continue
		}
		if _, err := url.Parse(value); err != nil {
			errors = append(errors, fmt.Sprintf("%s is not a valid URL: %s", key, value))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
