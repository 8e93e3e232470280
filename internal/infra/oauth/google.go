// Package oauth wraps the Google authorization-code flow. The handler sends
// users to AuthCodeURL and trades the returned code for a profile here.
package oauth

import (
	"context"
	"encoding/json"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"nazca360/internal/infra"
	"nazca360/internal/pkg/config"
	"nazca360/internal/pkg/errs"
)

const userinfoEndpoint = "https://www.googleapis.com/oauth2/v2/userinfo"

type GoogleProfile struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

type GoogleClient struct {
	conf *oauth2.Config
}

func NewGoogleClient(cfg config.OAuthConfig) *GoogleClient {
	return &GoogleClient{
		conf: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURI,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
	}
}

func (g *GoogleClient) AuthCodeURL(state string) string {
	return g.conf.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades an authorization code for the user's Google profile.
func (g *GoogleClient) Exchange(ctx context.Context, code string) (*GoogleProfile, error) {
	token, err := g.conf.Exchange(ctx, code)
	if err != nil {
		return nil, errs.Wrap(err, "failed to exchange authorization code")
	}

	resp, err := g.conf.Client(ctx, token).Get(userinfoEndpoint)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to fetch google userinfo", err, infra.KindUpstream)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, infra.WrapRepoErr("google userinfo request rejected", nil, infra.KindUpstream)
	}

	var profile GoogleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, errs.Wrap(err, "failed to decode google userinfo")
	}
	if profile.Email == "" {
		return nil, errs.New("google userinfo missing email")
	}
	return &profile, nil
}
