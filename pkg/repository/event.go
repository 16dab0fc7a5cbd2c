package repository

import (
	"context"

	"campuscalendarservice/pkg/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EventRepo struct {
	db *gorm.DB
}

func NewEventRepo(db *gorm.DB) *EventRepo {
	return &EventRepo{db: db}
}

func (r *EventRepo) Create(ctx context.Context, e *models.Event) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *EventRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Event, error) {
	var events []models.Event
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("event_date, task_time").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *EventRepo) MarkSynced(ctx context.Context, eventID uuid.UUID, googleEventID string) error {
	res := r.db.WithContext(ctx).Model(&models.Event{}).
		Where("id = ?", eventID).
		Updates(map[string]interface{}{
			"google_event_id": googleEventID,
			"is_synced":       true,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
