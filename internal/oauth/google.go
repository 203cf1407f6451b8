// Package oauth builds authorization URLs for external OAuth providers.
package oauth

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Google issues Google OAuth authorization URLs. It only builds the URL; the
// callback completion is handled by the auth callback endpoint.
type Google struct {
	config *oauth2.Config
}

// NewGoogle creates a Google URL builder. baseURL is the public server URL
// used for the OAuth callback.
func NewGoogle(clientID, clientSecret, baseURL string) *Google {
	return &Google{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  baseURL + "/auth/callback",
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
	}
}

// Configured reports whether client credentials are present.
func (g *Google) Configured() bool {
	return g.config.ClientID != ""
}

// AuthURL returns the authorization URL carrying redirectTo as opaque state,
// so the post-OAuth flow can resume where the user left off.
func (g *Google) AuthURL(redirectTo string) (string, error) {
	state, err := json.Marshal(map[string]string{"redirectTo": redirectTo})
	if err != nil {
		return "", fmt.Errorf("failed to encode oauth state: %w", err)
	}

	url := g.config.AuthCodeURL(
		base64.StdEncoding.EncodeToString(state),
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)

	return url, nil
}
