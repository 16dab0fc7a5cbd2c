package auth

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
)

// fakeUserStore is an in-memory repository.UserStore with error
// injection fields for behavior testing.
type fakeUserStore struct {
	mu        sync.RWMutex
	users     map[string]*models.User
	createErr error
	updateErr error
	tokensErr error

	tokenUpdates int
	updates      int
	creates      int
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]*models.User{}}
}

func (f *fakeUserStore) Create(ctx context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if u.UserID == uuid.Nil {
		u.UserID = uuid.New()
	}
	f.creates++
	f.users[u.Email] = u
	return nil
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	u, ok := f.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserStore) Update(ctx context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates++
	f.users[u.Email] = u
	return nil
}

func (f *fakeUserStore) UpdateTokens(ctx context.Context, userID uuid.UUID, accessToken string, expiry *time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.tokensErr != nil {
		return f.tokensErr
	}
	f.tokenUpdates++
	for _, u := range f.users {
		if u.UserID == userID {
			u.GoogleAccessToken = &accessToken
			u.TokenExpiry = expiry
		}
	}
	return nil
}

// fakeCalendarDirectory returns a fixed primary calendar id.
type fakeCalendarDirectory struct {
	id  string
	err error
}

func (f *fakeCalendarDirectory) PrimaryCalendarID(ctx context.Context, tok *oauth2.Token) (string, error) {
	return f.id, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func strptr(s string) *string { return &s }
