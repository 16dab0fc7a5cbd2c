package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EventType is the closed set of categories an event can belong to.
type EventType string

const (
	EventAssignment  EventType = "assignment"
	EventExam        EventType = "exam"
	EventFinal       EventType = "final"
	EventProject     EventType = "project"
	EventOfficeHours EventType = "office-hours"
	EventReminder    EventType = "reminder"
)

func (t EventType) Valid() bool {
	switch t {
	case EventAssignment, EventExam, EventFinal, EventProject, EventOfficeHours, EventReminder:
		return true
	}
	return false
}

type User struct {
	UserID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	Email   string    `gorm:"uniqueIndex;not null" json:"email"`
	Name    *string   `json:"name"`
	Picture *string   `json:"picture"`

	GoogleID           *string    `gorm:"index" json:"-"`
	CalendarID         *string    `json:"-"`
	GoogleAccessToken  *string    `gorm:"type:text" json:"-"`
	GoogleRefreshToken *string    `gorm:"type:text" json:"-"`
	TokenExpiry        *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Events []Event `gorm:"foreignKey:UserID" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UserID == uuid.Nil {
		u.UserID = uuid.New()
	}
	return nil
}

type Event struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`

	Title       string    `gorm:"not null" json:"title"`
	Description *string   `gorm:"type:text" json:"description"`
	Type        EventType `gorm:"not null" json:"type"`

	// EventDate carries the calendar date, TaskTime the time of day
	// ("15:04" or "15:04:05"). The two combine into the actual instant.
	EventDate       time.Time `gorm:"not null" json:"event_date"`
	TaskTime        string    `gorm:"size:8;not null" json:"task_time"`
	DurationMinutes int       `gorm:"default:60" json:"duration_minutes"`

	GoogleEventID *string `json:"google_event_id"`
	IsSynced      bool    `gorm:"default:false" json:"is_synced"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// StartTime combines the event date with the task time into a UTC instant.
func (e *Event) StartTime() (time.Time, error) {
	return CombineUTC(e.EventDate, e.TaskTime)
}

// EndTime is StartTime plus the event duration (60 minutes when unset).
func (e *Event) EndTime() (time.Time, error) {
	start, err := e.StartTime()
	if err != nil {
		return time.Time{}, err
	}
	minutes := e.DurationMinutes
	if minutes <= 0 {
		minutes = 60
	}
	return start.Add(time.Duration(minutes) * time.Minute), nil
}

// CombineUTC builds the UTC instant from a date and a "HH:MM[:SS]"
// time-of-day string. The calendar date is read in the date's own
// zone; converting to UTC first would shift offset-bearing dates
// across midnight onto the wrong day.
func CombineUTC(date time.Time, taskTime string) (time.Time, error) {
	tod, err := time.Parse("15:04:05", taskTime)
	if err != nil {
		tod, err = time.Parse("15:04", taskTime)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid task time %q: %w", taskTime, err)
		}
	}
	return time.Date(date.Year(), date.Month(), date.Day(),
		tod.Hour(), tod.Minute(), tod.Second(), 0, time.UTC), nil
}
