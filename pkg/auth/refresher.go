package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"campuscalendarservice/pkg/models"
	"campuscalendarservice/pkg/repository"

	"golang.org/x/oauth2"
)

// RefreshFunc exchanges a token carrying a refresh token for a fresh
// one at the provider's token endpoint.
type RefreshFunc func(ctx context.Context, tok *oauth2.Token) (*oauth2.Token, error)

// TokenRefresher produces valid credentials from the tokens stored on
// a user record, refreshing and persisting them when expired.
type TokenRefresher struct {
	users   repository.UserStore
	refresh RefreshFunc
	logger  *slog.Logger
}

func NewTokenRefresher(oauthCfg *oauth2.Config, users repository.UserStore, logger *slog.Logger) *TokenRefresher {
	return &TokenRefresher{
		users: users,
		refresh: func(ctx context.Context, tok *oauth2.Token) (*oauth2.Token, error) {
			return oauthCfg.TokenSource(ctx, tok).Token()
		},
		logger: logger,
	}
}

// EnsureValid returns a non-expired token for the user, or (nil, nil)
// when no refresh token is on file. A stored token with unknown expiry
// is treated as expired. Refreshed tokens are written back to the user
// record; concurrent refreshes race with last-writer-wins.
func (r *TokenRefresher) EnsureValid(ctx context.Context, user *models.User) (*oauth2.Token, error) {
	if user.GoogleRefreshToken == nil || *user.GoogleRefreshToken == "" {
		return nil, nil
	}

	tok := StoredToken(user)
	if tok.AccessToken != "" && tok.Expiry.After(time.Now()) {
		return tok, nil
	}

	// The refresh request carries only the refresh token: oauth2 regards
	// a token holding an access token with zero expiry as never expiring
	// and would hand the stale token back without a round trip.
	fresh, err := r.refresh(ctx, &oauth2.Token{RefreshToken: tok.RefreshToken})
	if err != nil {
		return nil, fmt.Errorf("token refresh failed: %w", err)
	}
	var expiry *time.Time
	if !fresh.Expiry.IsZero() {
		e := fresh.Expiry
		expiry = &e
	}
	user.GoogleAccessToken = &fresh.AccessToken
	user.TokenExpiry = expiry
	if err := r.users.UpdateTokens(ctx, user.UserID, fresh.AccessToken, expiry); err != nil {
		return nil, fmt.Errorf("failed to persist refreshed token: %w", err)
	}
	r.logger.Info("refreshed access token", "user_id", user.UserID)
	return fresh, nil
}

// ResolveToken is the two-step credential resolution used by the sync
// engine and the normalizer: EnsureValid first, then a fallback to the
// unrefreshed stored access token when no refresh token exists. A
// refresh failure is returned as-is and never falls back to possibly
// stale tokens.
func (r *TokenRefresher) ResolveToken(ctx context.Context, user *models.User) (*oauth2.Token, error) {
	tok, err := r.EnsureValid(ctx, user)
	if err != nil {
		return nil, err
	}
	if tok != nil {
		return tok, nil
	}
	return FallbackFromStored(user), nil
}

// StoredToken rebuilds an oauth2 token from the fields persisted on
// the user record. Nil expiry maps to the zero time; EnsureValid
// treats that as expired (oauth2 itself would treat it as never
// expiring, so the refresh path never hands this token to oauth2
// directly).
func StoredToken(user *models.User) *oauth2.Token {
	tok := &oauth2.Token{}
	if user.GoogleAccessToken != nil {
		tok.AccessToken = *user.GoogleAccessToken
	}
	if user.GoogleRefreshToken != nil {
		tok.RefreshToken = *user.GoogleRefreshToken
	}
	if user.TokenExpiry != nil {
		tok.Expiry = *user.TokenExpiry
	}
	return tok
}

// FallbackFromStored builds an unrefreshed token when an access token
// is stored but no refresh token is available. Returns nil when there
// is nothing to build a credential from.
func FallbackFromStored(user *models.User) *oauth2.Token {
	if user.GoogleAccessToken == nil || *user.GoogleAccessToken == "" {
		return nil
	}
	return StoredToken(user)
}
