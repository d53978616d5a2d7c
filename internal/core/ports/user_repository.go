package ports

import (
	"context"
	"time"

	"github.com/campusreg/student-registry/internal/core/domain"
)

// ListUsersFilter carries all query parameters for listing users.
type ListUsersFilter struct {
	Search    string // optional: partial match on name, email, or registration number
	Role      string // optional: exact role match
	SortBy    string // name, email, registrationNumber, dateOfBirth, role, createdAt
	SortOrder string // "asc" or "desc"
	Page      int    // 1-based
	Limit     int    // max rows per page (capped at 100 by service)
}

// UpdateUserFields carries a partial update. Nil pointers leave the field
// untouched. The registration number is deliberately absent: it is immutable.
type UpdateUserFields struct {
	FirstName   *string
	LastName    *string
	Email       *string
	DateOfBirth *time.Time
	Role        *string
	Course      *string
	Status      *string
}

// UserRepository defines persistence operations for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// List returns a page of users matching filter and the total match count.
	List(ctx context.Context, filter ListUsersFilter) ([]*domain.User, int64, error)
	Update(ctx context.Context, id string, fields UpdateUserFields) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}

// RegNumberAllocator hands out the monotonically increasing sequence part of
// registration numbers, scoped per prefix and year.
type RegNumberAllocator interface {
	Next(ctx context.Context, prefix string, year int) (int, error)
}
