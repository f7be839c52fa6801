package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/evencat/server/internal/auth"
	"github.com/evencat/server/internal/domain/events"
	"github.com/evencat/server/internal/domain/users"
	"github.com/evencat/server/internal/uploads"
)

var errNotImplemented = errors.New("not implemented")

const testTTL = time.Hour

func jsonDecode(rec *httptest.ResponseRecorder, v any) error {
	return json.Unmarshal(rec.Body.Bytes(), v)
}

type stubUsersRepo struct {
	createFn        func(params users.CreateParams) (*users.User, error)
	getByIDFn       func(id string) (*users.User, error)
	getByUsernameFn func(username string) (*users.User, error)
	updateHashFn    func(id, hash string) error
	updateProfileFn func(id string, patch users.ProfilePatch) (*users.User, error)
}

func (s stubUsersRepo) Create(_ context.Context, params users.CreateParams) (*users.User, error) {
	if s.createFn == nil {
		return nil, errNotImplemented
	}
	return s.createFn(params)
}

func (s stubUsersRepo) GetByID(_ context.Context, id string) (*users.User, error) {
	if s.getByIDFn == nil {
		return nil, users.ErrNotFound
	}
	return s.getByIDFn(id)
}

func (s stubUsersRepo) GetByUsername(_ context.Context, username string) (*users.User, error) {
	if s.getByUsernameFn == nil {
		return nil, users.ErrNotFound
	}
	return s.getByUsernameFn(username)
}

func (s stubUsersRepo) UpdatePasswordHash(_ context.Context, id, hash string) error {
	if s.updateHashFn == nil {
		return errNotImplemented
	}
	return s.updateHashFn(id, hash)
}

func (s stubUsersRepo) UpdateProfile(_ context.Context, id string, patch users.ProfilePatch) (*users.User, error) {
	if s.updateProfileFn == nil {
		return nil, errNotImplemented
	}
	return s.updateProfileFn(id, patch)
}

type stubEventsRepo struct {
	createFn      func(params events.CreateParams) (*events.Event, error)
	getFn         func(id string) (*events.Event, error)
	updateFn      func(id string, patch events.Patch) (*events.Event, error)
	deleteFn      func(id string) error
	listFn        func(query events.ListQuery) (events.ListResult, error)
	listByOwnerFn func(ownerID string) ([]events.Event, error)
	listAllFn     func() ([]events.Event, error)
	summarizeFn   func(now time.Time) (events.Summary, error)
}

func (s stubEventsRepo) Create(_ context.Context, params events.CreateParams) (*events.Event, error) {
	if s.createFn == nil {
		return nil, errNotImplemented
	}
	return s.createFn(params)
}

func (s stubEventsRepo) GetByID(_ context.Context, id string) (*events.Event, error) {
	if s.getFn == nil {
		return nil, events.ErrNotFound
	}
	return s.getFn(id)
}

func (s stubEventsRepo) Update(_ context.Context, id string, patch events.Patch) (*events.Event, error) {
	if s.updateFn == nil {
		return nil, errNotImplemented
	}
	return s.updateFn(id, patch)
}

func (s stubEventsRepo) Delete(_ context.Context, id string) error {
	if s.deleteFn == nil {
		return errNotImplemented
	}
	return s.deleteFn(id)
}

func (s stubEventsRepo) List(_ context.Context, query events.ListQuery) (events.ListResult, error) {
	if s.listFn == nil {
		return events.ListResult{}, errNotImplemented
	}
	return s.listFn(query)
}

func (s stubEventsRepo) ListByOwner(_ context.Context, ownerID string) ([]events.Event, error) {
	if s.listByOwnerFn == nil {
		return nil, errNotImplemented
	}
	return s.listByOwnerFn(ownerID)
}

func (s stubEventsRepo) ListAll(_ context.Context) ([]events.Event, error) {
	if s.listAllFn == nil {
		return nil, errNotImplemented
	}
	return s.listAllFn()
}

func (s stubEventsRepo) Summarize(_ context.Context, now time.Time) (events.Summary, error) {
	if s.summarizeFn == nil {
		return events.Summary{}, errNotImplemented
	}
	return s.summarizeFn(now)
}

func testTokens() *auth.TokenIssuer {
	return auth.NewTokenIssuer("test-secret", "test")
}

func testUploads(t *testing.T) *uploads.Store {
	t.Helper()
	store, err := uploads.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("uploads store: %v", err)
	}
	return store
}

func newTestAuthHandler(repo users.Repository, store *uploads.Store) *AuthHandler {
	svc := users.NewService(repo, zerolog.Nop())
	return NewAuthHandler(svc, testTokens(), store, time.Hour, 24*time.Hour, "test")
}

func newTestEventsHandler(repo events.Repository, store *uploads.Store) *EventsHandler {
	return NewEventsHandler(events.NewService(repo), store, "test")
}
