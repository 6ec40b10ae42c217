package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"

	"github.com/roomboard-io/roomboard-engine/pkg/config"
)

// Identity is the external profile returned by the OAuth provider.
type Identity struct {
	Provider    string
	Subject     string
	Email       string
	DisplayName string
}

// OAuthClient drives the authorization code flow against the
// configured provider.
type OAuthClient struct {
	oauth2Config *oauth2.Config
	userInfoURL  string
	provider     string
}

// NewOAuthClient builds the flow from config. The redirect URL is the
// server's callback endpoint.
func NewOAuthClient(cfg config.OAuthConfig, baseURL string) *OAuthClient {
	return &OAuthClient{
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
			},
			RedirectURL: baseURL + "/api/auth/callback",
			Scopes:      strings.Fields(cfg.Scopes),
		},
		userInfoURL: cfg.UserInfoURL,
		provider:    cfg.Provider,
	}
}

// AuthCodeURL returns the provider's authorization URL for the state.
func (c *OAuthClient) AuthCodeURL(state string) string {
	return c.oauth2Config.AuthCodeURL(state)
}

// Exchange trades the authorization code for a token and fetches the
// user's profile from the userinfo endpoint.
func (c *OAuthClient) Exchange(ctx context.Context, code string) (*Identity, error) {
	token, err := c.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	client := c.oauth2Config.Client(ctx, token)
	resp, err := client.Get(c.userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("user info request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var info struct {
		Sub      string `json:"sub"`
		Email    string `json:"email"`
		Name     string `json:"name"`
		Username string `json:"preferred_username"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}
	if info.Sub == "" {
		return nil, fmt.Errorf("user info response carries no subject")
	}

	name := info.Name
	if name == "" {
		name = info.Username
	}
	if name == "" {
		name = info.Email
	}
	return &Identity{
		Provider:    c.provider,
		Subject:     info.Sub,
		Email:       info.Email,
		DisplayName: name,
	}, nil
}

// GenerateState creates a random state parameter for CSRF protection.
func GenerateState() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
