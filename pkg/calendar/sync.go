package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"campuscalendarservice/pkg/auth"
	"campuscalendarservice/pkg/models"
	"campuscalendarservice/pkg/repository"

	gcal "google.golang.org/api/calendar/v3"
)

// SyncStatus is the outcome of the best-effort remote sync attempt.
type SyncStatus string

const (
	StatusSynced  SyncStatus = "synced"
	StatusSkipped SyncStatus = "skipped"
	StatusFailed  SyncStatus = "failed"
)

// SyncResult reports what happened to the remote copy of an event.
// The local write has already succeeded by the time one is produced.
type SyncResult struct {
	Status        SyncStatus
	Reason        string
	GoogleEventID string
}

func skipped(reason string) SyncResult { return SyncResult{Status: StatusSkipped, Reason: reason} }
func failed(reason string) SyncResult  { return SyncResult{Status: StatusFailed, Reason: reason} }

// CreateEventInput is a locally created event plus the caller's choice
// whether to push it to Google Calendar.
type CreateEventInput struct {
	Title           string           `json:"title"`
	Description     *string          `json:"description"`
	Type            models.EventType `json:"type"`
	EventDate       time.Time        `json:"event_date"`
	TaskTime        string           `json:"task_time"`
	DurationMinutes int              `json:"duration_minutes"`
	AddToGoogle     bool             `json:"add_to_google"`
}

// Service owns event creation with best-effort remote sync and the
// normalized remote listing.
type Service struct {
	events    repository.EventStore
	refresher *auth.TokenRefresher
	api       API
	logger    *slog.Logger
}

func NewService(events repository.EventStore, refresher *auth.TokenRefresher, api API, logger *slog.Logger) *Service {
	return &Service{events: events, refresher: refresher, api: api, logger: logger}
}

// CreateAndSync persists the event locally first, unconditionally,
// then attempts the remote create when requested. Remote failure never
// rolls back or errors the local write; it is reported in SyncResult.
func (s *Service) CreateAndSync(ctx context.Context, user *models.User, input CreateEventInput) (*models.Event, SyncResult, error) {
	duration := input.DurationMinutes
	if duration <= 0 {
		duration = 60
	}
	event := &models.Event{
		UserID:          user.UserID,
		Title:           input.Title,
		Description:     input.Description,
		Type:            input.Type,
		EventDate:       input.EventDate,
		TaskTime:        input.TaskTime,
		DurationMinutes: duration,
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, SyncResult{}, fmt.Errorf("failed to store event: %w", err)
	}

	if !input.AddToGoogle {
		return event, skipped("sync not requested"), nil
	}
	if user.GoogleAccessToken == nil && user.GoogleRefreshToken == nil {
		return event, skipped("no google account linked"), nil
	}

	result := s.syncRemote(ctx, user, event)
	if result.Status == StatusFailed {
		s.logger.Error("google calendar sync failed",
			"event_id", event.ID, "user_id", user.UserID, "reason", result.Reason)
	}
	return event, result, nil
}

// syncRemote pushes one local event to the user's calendar. The local
// record is only touched again on confirmed remote success, setting
// the remote id and synced flag together.
func (s *Service) syncRemote(ctx context.Context, user *models.User, event *models.Event) SyncResult {
	tok, err := s.refresher.ResolveToken(ctx, user)
	if err != nil {
		return failed(err.Error())
	}
	if tok == nil {
		return skipped("no usable credentials")
	}

	start, err := event.StartTime()
	if err != nil {
		return failed(err.Error())
	}
	end, err := event.EndTime()
	if err != nil {
		return failed(err.Error())
	}

	payload := &gcal.Event{
		Summary: event.Title,
		Start: &gcal.EventDateTime{
			DateTime: start.Format(time.RFC3339),
			TimeZone: "UTC",
		},
		End: &gcal.EventDateTime{
			DateTime: end.Format(time.RFC3339),
			TimeZone: "UTC",
		},
	}
	if event.Description != nil {
		payload.Description = *event.Description
	}

	created, err := s.api.InsertEvent(ctx, tok, calendarOrPrimary(user), payload)
	if err != nil {
		return failed(err.Error())
	}
	if err := s.events.MarkSynced(ctx, event.ID, created.Id); err != nil {
		return failed(fmt.Sprintf("remote event %s created but local update failed: %v", created.Id, err))
	}
	event.GoogleEventID = &created.Id
	event.IsSynced = true
	return SyncResult{Status: StatusSynced, GoogleEventID: created.Id}
}

func calendarOrPrimary(user *models.User) string {
	if user.CalendarID != nil && *user.CalendarID != "" {
		return *user.CalendarID
	}
	return "primary"
}
