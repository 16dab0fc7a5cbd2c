package repository

import (
	"context"
	"errors"
	"time"

	"campuscalendarservice/pkg/models"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("record not found")

// UserStore defines user-related database operations.
type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, u *models.User) error
	// UpdateTokens overwrites the stored access token and expiry after a
	// refresh. Last writer wins; concurrent refreshes each hold a valid
	// provider-issued token.
	UpdateTokens(ctx context.Context, userID uuid.UUID, accessToken string, expiry *time.Time) error
}

// EventStore defines event-related database operations.
type EventStore interface {
	Create(ctx context.Context, e *models.Event) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Event, error)
	// MarkSynced sets the remote event id and the synced flag in a single
	// update so one is never persisted without the other.
	MarkSynced(ctx context.Context, eventID uuid.UUID, googleEventID string) error
}
