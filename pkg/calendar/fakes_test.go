package calendar

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"campuscalendarservice/pkg/models"
	"campuscalendarservice/pkg/repository"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
)

type fakeEventStore struct {
	mu        sync.RWMutex
	events    map[uuid.UUID]*models.Event
	createErr error
	markErr   error
}

func newFakeEventStore() *fakeEventStore {
	return &fakeEventStore{events: map[uuid.UUID]*models.Event{}}
}

func (f *fakeEventStore) Create(ctx context.Context, e *models.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	stored := *e
	f.events[e.ID] = &stored
	return nil
}

func (f *fakeEventStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Event, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var out []models.Event
	for _, e := range f.events {
		if e.UserID == userID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeEventStore) MarkSynced(ctx context.Context, eventID uuid.UUID, googleEventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.markErr != nil {
		return f.markErr
	}
	e, ok := f.events[eventID]
	if !ok {
		return repository.ErrNotFound
	}
	id := googleEventID
	e.GoogleEventID = &id
	e.IsSynced = true
	return nil
}

func (f *fakeEventStore) get(id uuid.UUID) *models.Event {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.events[id]
}

func (f *fakeEventStore) count() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.events)
}

// fakeUserStore satisfies repository.UserStore for the refresher; the
// sync tests only exercise token persistence.
type fakeUserStore struct {
	mu           sync.Mutex
	tokenUpdates int
}

func (f *fakeUserStore) Create(ctx context.Context, u *models.User) error { return nil }
func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, repository.ErrNotFound
}
func (f *fakeUserStore) Update(ctx context.Context, u *models.User) error { return nil }
func (f *fakeUserStore) UpdateTokens(ctx context.Context, userID uuid.UUID, accessToken string, expiry *time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokenUpdates++
	return nil
}

type listCall struct {
	calendarID string
	timeMin    time.Time
	timeMax    time.Time
}

type fakeAPI struct {
	mu          sync.Mutex
	insertErr   error
	listErr     error
	created     *gcal.Event
	listItems   []*gcal.Event
	inserted    []*gcal.Event
	insertedCal []string
	listCalls   []listCall
}

func (f *fakeAPI) InsertEvent(ctx context.Context, tok *oauth2.Token, calendarID string, event *gcal.Event) (*gcal.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	f.inserted = append(f.inserted, event)
	f.insertedCal = append(f.insertedCal, calendarID)
	if f.created != nil {
		return f.created, nil
	}
	return &gcal.Event{Id: "gcal-event-1"}, nil
}

func (f *fakeAPI) ListEvents(ctx context.Context, tok *oauth2.Token, calendarID string, timeMin, timeMax time.Time) ([]*gcal.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls = append(f.listCalls, listCall{calendarID: calendarID, timeMin: timeMin, timeMax: timeMax})
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listItems, nil
}

func (f *fakeAPI) PrimaryCalendarID(ctx context.Context, tok *oauth2.Token) (string, error) {
	return "primary", nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func strptr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }
