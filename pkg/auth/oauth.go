package auth

import (
	"campuscalendarservice/pkg/config"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
)

const userinfoEndpoint = "https://www.googleapis.com/oauth2/v2/userinfo"

// NewOAuthConfig builds the Google OAuth2 configuration used for the
// login flow, token refresh, and calendar API clients.
func NewOAuthConfig(cfg config.Config) *oauth2.Config {
	return &oauth2.Config{
		RedirectURL:  cfg.RedirectURL,
		ClientID:     cfg.GoogleClientId,
		ClientSecret: cfg.GoogleSecretId,
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
			calendar.CalendarScope,
		},
		Endpoint: google.Endpoint,
	}
}

// LoginURL is the provider authorization URL for the initial redirect.
// Offline access and the consent prompt make Google issue a refresh
// token; the hd hint pre-selects the organizational account.
func LoginURL(oauthCfg *oauth2.Config, allowedDomain string) string {
	return oauthCfg.AuthCodeURL("state-token",
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
		oauth2.SetAuthURLParam("hd", allowedDomain),
	)
}
