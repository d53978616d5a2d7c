package ports

import (
	"context"
	"time"

	"github.com/campusreg/student-registry/internal/core/domain"
)

// RegisterInput carries the self-service sign-up payload. Registrations
// created through this path always receive the student role.
type RegisterInput struct {
	FirstName   string
	LastName    string
	Email       string
	Password    string
	DateOfBirth time.Time
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	// Login returns a signed token and the matched user.
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	Profile(ctx context.Context, userID string) (*domain.User, error)
}
