package events

import (
	"context"
	"fmt"
	"time"

	"github.com/evencat/server/internal/domain/ids"
)

// Service executes catalog queries and mutations against the event
// repository.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Event, error) {
	if !IsAllowedStatus(string(params.Status)) {
		return nil, QueryError{Field: "status", Message: "unsupported status"}
	}

	id, err := ids.NewULID()
	if err != nil {
		return nil, fmt.Errorf("mint event id: %w", err)
	}
	params.ID = id

	return s.repo.Create(ctx, params)
}

func (s *Service) Get(ctx context.Context, id string) (*Event, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, id string, patch Patch) (*Event, error) {
	if patch.Status != nil && !IsAllowedStatus(string(*patch.Status)) {
		return nil, QueryError{Field: "status", Message: "unsupported status"}
	}
	return s.repo.Update(ctx, id, patch)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// List returns one page of the catalog plus the total match count.
// The echoed page/limit are the normalized values, not raw input.
func (s *Service) List(ctx context.Context, query ListQuery) (ListResult, error) {
	if query.Page < 1 {
		query.Page = DefaultPage
	}
	if query.Limit < 1 {
		query.Limit = DefaultLimit
	}
	return s.repo.List(ctx, query)
}

func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]Event, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *Service) ListAll(ctx context.Context) ([]Event, error) {
	return s.repo.ListAll(ctx)
}

// Summarize computes catalog statistics as of now.
func (s *Service) Summarize(ctx context.Context) (Summary, error) {
	return s.repo.Summarize(ctx, time.Now())
}
