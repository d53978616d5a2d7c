package ports

import (
	"context"
	"time"

	"github.com/campusreg/student-registry/internal/core/domain"
)

// ListUsersInput carries all parameters for the admin list endpoint.
type ListUsersInput struct {
	Search    string
	Role      string
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

// ListUsersResult is returned by ListUsers.
type ListUsersResult struct {
	Items      []*domain.User
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// CreateUserInput carries an admin "add user" payload. Role may be elevated
// to admin only when CallerRole is admin; it defaults to student.
type CreateUserInput struct {
	FirstName   string
	LastName    string
	Email       string
	Password    string
	DateOfBirth time.Time
	Role        string
	Course      string
	Status      string
	CallerRole  string
}

// UpdateUserInput is a partial edit; nil pointers leave fields untouched.
type UpdateUserInput struct {
	FirstName   *string
	LastName    *string
	Email       *string
	DateOfBirth *time.Time
	Role        *string
	Course      *string
	Status      *string
}

// UserService defines the admin-facing use cases over user records.
type UserService interface {
	ListUsers(ctx context.Context, input ListUsersInput) (*ListUsersResult, error)
	CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error)
	UpdateUser(ctx context.Context, id string, input UpdateUserInput) (*domain.User, error)
	DeleteUser(ctx context.Context, id string) error
}
