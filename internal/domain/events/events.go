package events

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("event not found")

// Status is the closed lifecycle enumeration for catalog events.
type Status string

const (
	StatusUpcoming  Status = "Upcoming"
	StatusOngoing   Status = "Ongoing"
	StatusCompleted Status = "Completed"
)

func IsAllowedStatus(value string) bool {
	switch Status(value) {
	case StatusUpcoming, StatusOngoing, StatusCompleted:
		return true
	default:
		return false
	}
}

type Event struct {
	ID          string
	Name        string
	Date        time.Time
	Location    string
	Description string
	Status      Status
	// OwnerID is a soft reference; the store does not enforce it and a
	// dangling owner is tolerated.
	OwnerID   string
	ImageURL  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CreateParams struct {
	ID          string
	Name        string
	Date        time.Time
	Location    string
	Description string
	Status      Status
	OwnerID     string
	ImageURL    string
}

// Patch applies a partial update. Nil fields are left untouched.
// OwnerID is deliberately absent; ownership never changes.
type Patch struct {
	Name        *string
	Date        *time.Time
	Location    *string
	Description *string
	Status      *Status
	ImageURL    *string
}

// ListQuery is the normalized filter/sort/page window for a listing
// call. It is derived from request parameters and never persisted.
type ListQuery struct {
	Page   int
	Limit  int
	Sort   string
	Order  string
	Search string
	Status Status
}

func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

type ListResult struct {
	Total int64
	Page  int
	Limit int
	Items []Event
}

type StatusCount struct {
	Status Status
	Count  int64
}

// Summary holds catalog-wide statistics. Statuses with no events are
// omitted from EventsByStatus; NextEvent is nil when nothing is
// scheduled at or after the reference instant.
type Summary struct {
	TotalEvents    int64
	EventsByStatus []StatusCount
	NextEvent      *Event
}

type Repository interface {
	Create(ctx context.Context, params CreateParams) (*Event, error)
	GetByID(ctx context.Context, id string) (*Event, error)
	Update(ctx context.Context, id string, patch Patch) (*Event, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, query ListQuery) (ListResult, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Event, error)
	ListAll(ctx context.Context) ([]Event, error)
	Summarize(ctx context.Context, now time.Time) (Summary, error)
}
