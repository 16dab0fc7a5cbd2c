package calendar

import (
	"context"
	"time"

	"campuscalendarservice/pkg/models"
)

// NormalizedEvent is a remote calendar item reshaped into a stable
// local-facing structure regardless of its timed or all-day form.
// Start and End are ISO strings as delivered by the provider.
type NormalizedEvent struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Start    string `json:"start"`
	End      string `json:"end"`
	HTMLLink string `json:"htmlLink"`
	IsAllDay bool   `json:"isAllDay"`
}

const untitledEvent = "(No title)"

// ListRemote fetches the user's remote events inside the window and
// normalizes them. No usable credentials or a remote failure both
// degrade to an empty list; a list endpoint has nothing to show.
func (s *Service) ListRemote(ctx context.Context, user *models.User, timeMin, timeMax *time.Time) ([]NormalizedEvent, error) {
	tok, err := s.refresher.ResolveToken(ctx, user)
	if err != nil {
		s.logger.Error("token refresh failed for remote listing", "user_id", user.UserID, "error", err)
		return []NormalizedEvent{}, nil
	}
	if tok == nil {
		return []NormalizedEvent{}, nil
	}

	now := time.Now().UTC()
	min := now.Truncate(24 * time.Hour)
	if timeMin != nil {
		min = *timeMin
	}
	max := now.Add(31 * 24 * time.Hour)
	if timeMax != nil {
		max = *timeMax
	}

	items, err := s.api.ListEvents(ctx, tok, calendarOrPrimary(user), min, max)
	if err != nil {
		s.logger.Error("failed to list google events", "user_id", user.UserID, "error", err)
		return []NormalizedEvent{}, nil
	}

	normalized := make([]NormalizedEvent, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		ev := NormalizedEvent{
			ID:       item.Id,
			Title:    item.Summary,
			HTMLLink: item.HtmlLink,
		}
		if ev.Title == "" {
			ev.Title = untitledEvent
		}
		if item.Start != nil {
			// All-day events carry a bare date instead of a dateTime.
			if item.Start.DateTime != "" {
				ev.Start = item.Start.DateTime
			} else {
				ev.Start = item.Start.Date
				ev.IsAllDay = true
			}
		}
		if item.End != nil {
			if item.End.DateTime != "" {
				ev.End = item.End.DateTime
			} else {
				ev.End = item.End.Date
			}
		}
		if ev.End == "" {
			ev.End = ev.Start
		}
		normalized = append(normalized, ev)
	}
	return normalized, nil
}
