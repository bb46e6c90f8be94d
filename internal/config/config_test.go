package config

import (
	"os"
	"testing"

	"github.com/mireyav/crescendo/internal/constants"
)

func TestLoad(t *testing.T) {
	// Test default values
	cfg := Load()

	if cfg.Port != constants.DefaultPort {
		t.Errorf("Expected Port to be %s, got %s", constants.DefaultPort, cfg.Port)
	}

	if cfg.DBPath != constants.DefaultDBPath {
		t.Errorf("Expected DBPath to be %s, got %s", constants.DefaultDBPath, cfg.DBPath)
	}

	if cfg.SpotifyAPIURL != constants.DefaultSpotifyAPIURL {
		t.Errorf("Expected SpotifyAPIURL to be %s, got %s", constants.DefaultSpotifyAPIURL, cfg.SpotifyAPIURL)
	}

	if cfg.SpotifyAccountsURL != constants.DefaultSpotifyAccountsURL {
		t.Errorf("Expected SpotifyAccountsURL to be %s, got %s", constants.DefaultSpotifyAccountsURL, cfg.SpotifyAccountsURL)
	}
}

func TestLoadWithEnvVars(t *testing.T) {
	os.Setenv("PORT", "9090")
	os.Setenv("DB_PATH", "/tmp/test.db")
	os.Setenv("JWT_SECRET", "s3cret")
	os.Setenv("SPOTIFY_CLIENT_ID", "cid")
	defer func() {
		os.Unsetenv("PORT")
		os.Unsetenv("DB_PATH")
		os.Unsetenv("JWT_SECRET")
		os.Unsetenv("SPOTIFY_CLIENT_ID")
	}()

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("Expected Port to be 9090, got %s", cfg.Port)
	}

	if cfg.DBPath != "/tmp/test.db" {
		t.Errorf("Expected DBPath to be /tmp/test.db, got %s", cfg.DBPath)
	}

	if cfg.JWTSecret != "s3cret" {
		t.Errorf("Expected JWTSecret to be s3cret, got %s", cfg.JWTSecret)
	}

	if cfg.SpotifyClientID != "cid" {
		t.Errorf("Expected SpotifyClientID to be cid, got %s", cfg.SpotifyClientID)
	}
}

func validConfig() Config {
	return Config{
		Port:                "8080",
		DBPath:              "test.db",
		LogLevel:            "info",
		LogFormat:           "text",
		JWTSecret:           "s3cret",
		SpotifyClientID:     "cid",
		SpotifyClientSecret: "secret",
		SpotifyRedirectURI:  "http://localhost:8080/api/spotify/callback",
		SpotifyAPIURL:       "https://api.spotify.com/v1",
		SpotifyAccountsURL:  "https://accounts.spotify.com",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "empty port",
			mutate:  func(c *Config) { c.Port = "" },
			wantErr: true,
		},
		{
			name:    "non-numeric port",
			mutate:  func(c *Config) { c.Port = "http" },
			wantErr: true,
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Port = "70000" },
			wantErr: true,
		},
		{
			name:    "empty db path",
			mutate:  func(c *Config) { c.DBPath = "" },
			wantErr: true,
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.LogLevel = "verbose" },
			wantErr: true,
		},
		{
			name:    "invalid log format",
			mutate:  func(c *Config) { c.LogFormat = "xml" },
			wantErr: true,
		},
		{
			name:    "missing jwt secret",
			mutate:  func(c *Config) { c.JWTSecret = "" },
			wantErr: true,
		},
		{
			name:    "missing spotify client id",
			mutate:  func(c *Config) { c.SpotifyClientID = "" },
			wantErr: true,
		},
		{
			name:    "missing spotify client secret",
			mutate:  func(c *Config) { c.SpotifyClientSecret = "" },
			wantErr: true,
		},
		{
			name:    "missing redirect uri",
			mutate:  func(c *Config) { c.SpotifyRedirectURI = "" },
			wantErr: true,
		},
		{
			name:    "missing accounts url",
			mutate:  func(c *Config) { c.SpotifyAccountsURL = "" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
