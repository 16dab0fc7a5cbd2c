package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"campuscalendarservice/pkg/models"
	"campuscalendarservice/pkg/repository"

	"golang.org/x/oauth2"
)

var (
	ErrMissingCode  = errors.New("authorization code not found")
	ErrDomainDenied = errors.New("email outside the allowed domain")
)

// ExchangeError carries the provider's raw payload when the token
// exchange yields no access token, for diagnosis at the HTTP boundary.
type ExchangeError struct {
	Detail string
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("failed to retrieve access token: %s", e.Detail)
}

// Userinfo is the subset of the provider's userinfo response we keep.
type Userinfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// CalendarDirectory looks up which remote calendar to sync to.
type CalendarDirectory interface {
	// PrimaryCalendarID returns the id of the calendar flagged primary,
	// the first calendar when none is flagged, or "" for an empty list.
	PrimaryCalendarID(ctx context.Context, tok *oauth2.Token) (string, error)
}

type exchangeFunc func(ctx context.Context, code string) (*oauth2.Token, error)
type userinfoFunc func(ctx context.Context, tok *oauth2.Token) (*Userinfo, error)

// CallbackService completes the authorization-code flow: exchange,
// identity fetch, domain gate, calendar discovery, and user upsert.
type CallbackService struct {
	users         repository.UserStore
	calendars     CalendarDirectory
	allowedDomain string
	exchange      exchangeFunc
	userinfo      userinfoFunc
	logger        *slog.Logger
}

func NewCallbackService(oauthCfg *oauth2.Config, users repository.UserStore, calendars CalendarDirectory, allowedDomain string, logger *slog.Logger) *CallbackService {
	return &CallbackService{
		users:         users,
		calendars:     calendars,
		allowedDomain: allowedDomain,
		exchange: func(ctx context.Context, code string) (*oauth2.Token, error) {
			return oauthCfg.Exchange(ctx, code)
		},
		userinfo: func(ctx context.Context, tok *oauth2.Token) (*Userinfo, error) {
			return fetchUserinfo(ctx, oauthCfg, tok)
		},
		logger: logger,
	}
}

// Complete runs the whole callback flow and returns the upserted user.
// Terminal failures: ErrMissingCode, *ExchangeError, ErrDomainDenied.
func (s *CallbackService) Complete(ctx context.Context, code string) (*models.User, error) {
	if code == "" {
		return nil, ErrMissingCode
	}

	tok, err := s.exchange(ctx, code)
	if err != nil {
		return nil, &ExchangeError{Detail: err.Error()}
	}
	if tok.AccessToken == "" {
		return nil, &ExchangeError{Detail: "empty access token in provider response"}
	}

	info, err := s.userinfo(ctx, tok)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve user info: %w", err)
	}
	if info.Email == "" || !strings.HasSuffix(info.Email, "@"+s.allowedDomain) {
		return nil, ErrDomainDenied
	}

	calendarID, err := s.calendars.PrimaryCalendarID(ctx, tok)
	if err != nil {
		// A missing calendar id only disables sync; the login still
		// completes and a later login can recover it.
		s.logger.Warn("calendar discovery failed", "email", info.Email, "error", err)
		calendarID = ""
	}

	user, err := s.upsert(ctx, info, tok, calendarID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("login completed", "email", user.Email, "user_id", user.UserID)
	return user, nil
}

// upsert creates the user on first login or updates tokens on later
// ones. The refresh token is only overwritten when the provider
// reissued one; Google omits it on repeat consents.
func (s *CallbackService) upsert(ctx context.Context, info *Userinfo, tok *oauth2.Token, calendarID string) (*models.User, error) {
	var expiry *time.Time
	if !tok.Expiry.IsZero() {
		t := tok.Expiry
		expiry = &t
	}
	var calID *string
	if calendarID != "" {
		calID = &calendarID
	}

	user, err := s.users.GetByEmail(ctx, info.Email)
	if errors.Is(err, repository.ErrNotFound) {
		user = &models.User{
			Email:             info.Email,
			GoogleID:          optional(info.ID),
			Name:              optional(info.Name),
			Picture:           optional(info.Picture),
			GoogleAccessToken: &tok.AccessToken,
			TokenExpiry:       expiry,
			CalendarID:        calID,
		}
		if tok.RefreshToken != "" {
			user.GoogleRefreshToken = &tok.RefreshToken
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to store user: %w", err)
		}
		return user, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	user.GoogleAccessToken = &tok.AccessToken
	if tok.RefreshToken != "" {
		user.GoogleRefreshToken = &tok.RefreshToken
	}
	user.TokenExpiry = expiry
	user.CalendarID = calID
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

func fetchUserinfo(ctx context.Context, oauthCfg *oauth2.Config, tok *oauth2.Token) (*Userinfo, error) {
	client := oauthCfg.Client(ctx, tok)
	resp, err := client.Get(userinfoEndpoint)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("userinfo returned %d: %s", resp.StatusCode, body)
	}
	var info Userinfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("unable to parse user info: %w", err)
	}
	return &info, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
