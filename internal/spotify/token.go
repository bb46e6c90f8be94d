package spotify

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/mireyav/crescendo/internal/constants"
)

// Token is a credential issued by the provider's accounts service.
// RefreshToken is empty on refresh and client-credentials grants.
type Token struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Accounts talks to the provider's accounts service: the user consent
// redirect and the three token grants.
type Accounts struct {
	accountsURL  string
	clientID     string
	clientSecret string
	oauth        *oauth2.Config
	httpClient   *http.Client
}

// NewAccounts creates an accounts client for the given application
// credentials.
func NewAccounts(accountsURL, clientID, clientSecret, redirectURI string) *Accounts {
	accountsURL = strings.TrimSuffix(accountsURL, "/")
	return &Accounts{
		accountsURL:  accountsURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes:       []string{"user-read-email", "user-read-private"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  accountsURL + "/authorize",
				TokenURL: accountsURL + "/api/token",
			},
		},
		httpClient: &http.Client{
			Timeout: constants.DefaultHTTPTimeout,
		},
	}
}

// AuthCodeURL builds the consent page URL the user is redirected to.
func (a *Accounts) AuthCodeURL(state string) string {
	return a.oauth.AuthCodeURL(state)
}

// ExchangeCode trades an authorization code for a user token pair.
func (a *Accounts) ExchangeCode(ctx context.Context, code string) (*Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)
	tok, err := a.oauth.Exchange(ctx, code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return nil, &CredentialError{StatusCode: retrieveErr.Response.StatusCode, Message: string(retrieveErr.Body)}
		}
		return nil, &CredentialError{Message: err.Error()}
	}

	expiresAt := tok.Expiry
	if expiresAt.IsZero() {
		expiresAt = time.Now().Add(constants.DefaultTokenLifetime)
	}
	return &Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    expiresAt,
	}, nil
}

// Refresh exchanges a long-lived refresh token for a fresh access token.
func (a *Accounts) Refresh(ctx context.Context, refreshToken string) (*Token, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	form.Set("client_id", a.clientID)
	form.Set("client_secret", a.clientSecret)

	return a.postGrant(ctx, form, nil)
}

// ClientCredentials obtains the shared service-level token using the
// application's own identity.
func (a *Accounts) ClientCredentials(ctx context.Context) (*Token, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	basic := base64.StdEncoding.EncodeToString([]byte(a.clientID + ":" + a.clientSecret))
	headers := map[string]string{
		"Authorization": "Basic " + basic,
	}
	return a.postGrant(ctx, form, headers)
}

func (a *Accounts) postGrant(ctx context.Context, form url.Values, headers map[string]string) (*Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.accountsURL+"/api/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	requestAt := time.Now()
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, &CredentialError{Message: err.Error()}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		var body struct {
			Error            string `json:"error"`
			ErrorDescription string `json:"error_description"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return nil, &CredentialError{StatusCode: resp.StatusCode, Message: body.ErrorDescription}
	}

	var body struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &CredentialError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to decode token response: %v", err)}
	}

	lifetime := constants.DefaultTokenLifetime
	if body.ExpiresIn > 0 {
		lifetime = time.Duration(body.ExpiresIn) * time.Second
	}
	return &Token{
		AccessToken:  body.AccessToken,
		RefreshToken: body.RefreshToken,
		ExpiresAt:    requestAt.Add(lifetime),
	}, nil
}
