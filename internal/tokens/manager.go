package tokens

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mireyav/crescendo/internal/constants"
	"github.com/mireyav/crescendo/internal/logger"
	"github.com/mireyav/crescendo/internal/spotify"
	"github.com/mireyav/crescendo/internal/store"
)

// ErrNotLinked reports that a user principal has no stored refresh token,
// so no delegated call can be made on their behalf.
var ErrNotLinked = errors.New("user has not linked a spotify account")

// Manager produces currently-valid bearer tokens for principals, hitting
// the token endpoint only when the stored token is within the expiry
// margin. Refreshed tokens are persisted before they are returned.
// Concurrent refreshes for the same principal are last-write-wins.
type Manager struct {
	db       *store.DB
	accounts *spotify.Accounts
	log      *logger.Logger
}

func NewManager(db *store.DB, accounts *spotify.Accounts, log *logger.Logger) *Manager {
	return &Manager{
		db:       db,
		accounts: accounts,
		log:      log.WithComponent("tokens"),
	}
}

// Token returns a non-expired access token for the principal.
func (m *Manager) Token(ctx context.Context, principal Principal) (string, error) {
	if principal.IsService() {
		return m.serviceToken(ctx)
	}
	userID, _ := principal.UserID()
	return m.userToken(ctx, userID)
}

func (m *Manager) serviceToken(ctx context.Context) (string, error) {
	cred, err := m.db.GetServiceCredential()
	if err != nil {
		return "", fmt.Errorf("failed to load service credential: %w", err)
	}
	if cred != nil && usable(cred.ExpiresAt) {
		return cred.AccessToken, nil
	}

	token, err := m.accounts.ClientCredentials(ctx)
	if err != nil {
		return "", err
	}
	if err := m.db.UpsertServiceCredential(token.AccessToken, token.ExpiresAt); err != nil {
		return "", fmt.Errorf("failed to persist service credential: %w", err)
	}

	m.log.Debug("refreshed service token", "expires_at", token.ExpiresAt)
	return token.AccessToken, nil
}

func (m *Manager) userToken(ctx context.Context, userID int64) (string, error) {
	user, err := m.db.GetUserByID(userID)
	if err != nil {
		return "", fmt.Errorf("failed to load user %d: %w", userID, err)
	}
	if user == nil {
		return "", fmt.Errorf("user with id %d not found", userID)
	}

	if user.SpotifyAccessToken != nil && user.SpotifyTokenExpires != nil && usable(*user.SpotifyTokenExpires) {
		return *user.SpotifyAccessToken, nil
	}

	if user.SpotifyRefreshToken == nil || *user.SpotifyRefreshToken == "" {
		return "", ErrNotLinked
	}

	token, err := m.accounts.Refresh(ctx, *user.SpotifyRefreshToken)
	if err != nil {
		return "", err
	}

	// Refresh responses usually omit the refresh token; keep the stored
	// one in that case.
	var newRefresh *string
	if token.RefreshToken != "" {
		newRefresh = &token.RefreshToken
	}
	if err := m.db.UpdateUserSpotifyTokens(userID, newRefresh, token.AccessToken, token.ExpiresAt); err != nil {
		return "", fmt.Errorf("failed to persist user token: %w", err)
	}

	m.log.WithUser(userID).Debug("refreshed user token", "expires_at", token.ExpiresAt)
	return token.AccessToken, nil
}

// usable reports whether a token expiring at the given time can still be
// sent upstream, leaving a safety margin.
func usable(expiresAt time.Time) bool {
	return time.Now().Add(constants.TokenExpiryMargin).Before(expiresAt)
}
