// Package userdata is the dashboard's data access layer. A Source serves user
// records; RemoteSource talks to the registry API and LocalSource serves a
// seeded in-memory set so the dashboard keeps working when the API is down.
// Client combines both with a response cache.
package userdata

import (
	"context"
	"time"

	"github.com/campusreg/student-registry/internal/core/domain"
)

// ListQuery mirrors the list endpoint's query parameters.
type ListQuery struct {
	Search    string
	Role      string
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

// ListResult is one page of users plus pagination counts.
type ListResult struct {
	Items      []*domain.User
	Total      int
	Page       int
	Limit      int
	TotalPages int
}

// CreateInput carries the fields for a new user.
type CreateInput struct {
	FirstName   string
	LastName    string
	Email       string
	Password    string
	DateOfBirth time.Time
	Role        string
	Course      string
}

// UpdateInput carries a partial edit; nil fields are left untouched.
type UpdateInput struct {
	FirstName   *string
	LastName    *string
	Email       *string
	DateOfBirth *time.Time
	Role        *string
	Course      *string
	Status      *string
}

// Source serves and mutates user records. Implementations translate their
// failures into the domain sentinel errors so callers can branch on
// errors.Is without knowing which source answered.
type Source interface {
	List(ctx context.Context, q ListQuery) (*ListResult, error)
	Create(ctx context.Context, input CreateInput) (*domain.User, error)
	Update(ctx context.Context, id string, input UpdateInput) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}
