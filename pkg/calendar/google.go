package calendar

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// API is the slice of the remote calendar provider the service uses.
type API interface {
	InsertEvent(ctx context.Context, tok *oauth2.Token, calendarID string, event *calendar.Event) (*calendar.Event, error)
	ListEvents(ctx context.Context, tok *oauth2.Token, calendarID string, timeMin, timeMax time.Time) ([]*calendar.Event, error)
	PrimaryCalendarID(ctx context.Context, tok *oauth2.Token) (string, error)
}

// GoogleAPI implements API against the Google Calendar v3 service,
// building an authenticated client per call from the caller's token.
type GoogleAPI struct {
	oauthCfg *oauth2.Config
}

func NewGoogleAPI(oauthCfg *oauth2.Config) *GoogleAPI {
	return &GoogleAPI{oauthCfg: oauthCfg}
}

func (g *GoogleAPI) service(ctx context.Context, tok *oauth2.Token) (*calendar.Service, error) {
	client := g.oauthCfg.Client(ctx, tok)
	svc, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return svc, nil
}

func (g *GoogleAPI) InsertEvent(ctx context.Context, tok *oauth2.Token, calendarID string, event *calendar.Event) (*calendar.Event, error) {
	svc, err := g.service(ctx, tok)
	if err != nil {
		return nil, err
	}
	created, err := svc.Events.Insert(calendarID, event).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to create event: %w", err)
	}
	return created, nil
}

func (g *GoogleAPI) ListEvents(ctx context.Context, tok *oauth2.Token, calendarID string, timeMin, timeMax time.Time) ([]*calendar.Event, error) {
	svc, err := g.service(ctx, tok)
	if err != nil {
		return nil, err
	}
	events, err := svc.Events.List(calendarID).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve events: %w", err)
	}
	return events.Items, nil
}

func (g *GoogleAPI) PrimaryCalendarID(ctx context.Context, tok *oauth2.Token) (string, error) {
	svc, err := g.service(ctx, tok)
	if err != nil {
		return "", err
	}
	list, err := svc.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to list calendars: %w", err)
	}
	for _, item := range list.Items {
		if item.Primary {
			return item.Id, nil
		}
	}
	if len(list.Items) > 0 {
		return list.Items[0].Id, nil
	}
	return "", nil
}
