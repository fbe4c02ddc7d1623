// Package tokenprovider supplies bearer tokens for calls to Dokarkiv.
//
// Suppliers are safe for concurrent use. Caching and refresh live here, not
// in the client, which asks for a token before every request.
package tokenprovider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// ErrTokenExpired is returned by Static when the configured token has
// expired.
var ErrTokenExpired = errors.New("access token has expired")

// ClientCredentialsConfig configures the OAuth2 client credentials flow.
type ClientCredentialsConfig struct {
	TokenURL     string   `hcl:"token_url"`
	ClientID     string   `hcl:"client_id"`
	ClientSecret string   `hcl:"client_secret,optional"`
	Scopes       []string `hcl:"scopes,optional"`
}

// ClientCredentials fetches tokens with the OAuth2 client credentials grant
// and reuses them until shortly before expiry.
type ClientCredentials struct {
	source oauth2.TokenSource
}

// NewClientCredentials creates a ClientCredentials supplier. ctx is used for
// token requests, including its HTTP client (see oauth2.HTTPClient).
func NewClientCredentials(ctx context.Context, cfg ClientCredentialsConfig) (*ClientCredentials, error) {
	if cfg.TokenURL == "" {
		return nil, fmt.Errorf("token_url is required")
	}
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("client_id is required")
	}

	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		Scopes:       cfg.Scopes,
	}

	// TokenSource already wraps the source in oauth2.ReuseTokenSource.
	return &ClientCredentials{source: cc.TokenSource(ctx)}, nil
}

// Token returns a valid access token.
func (c *ClientCredentials) Token(_ context.Context) (string, error) {
	tok, err := c.source.Token()
	if err != nil {
		return "", fmt.Errorf("failed to fetch access token: %w", err)
	}
	return tok.AccessToken, nil
}

// Static supplies a fixed token, for example one handed to a CLI through the
// environment. If the token is a JWT with an exp claim, Token fails once it
// has expired instead of letting the server reject it.
type Static struct {
	token   string
	expires time.Time
	now     func() time.Time
}

// NewStatic creates a Static supplier. The token signature is not verified;
// only the expiry is read.
func NewStatic(token string) (*Static, error) {
	if token == "" {
		return nil, fmt.Errorf("token is empty")
	}

	s := &Static{token: token, now: time.Now}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			s.expires = exp.Time
		}
	}

	return s, nil
}

// Expires returns the token expiry, or the zero time if unknown.
func (s *Static) Expires() time.Time {
	return s.expires
}

// Token returns the static token.
func (s *Static) Token(_ context.Context) (string, error) {
	if !s.expires.IsZero() && !s.now().Before(s.expires) {
		return "", fmt.Errorf("%w at %s", ErrTokenExpired, s.expires.Format(time.RFC3339))
	}
	return s.token, nil
}
