package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/campusreg/student-registry/internal/api/metrics"
	"github.com/campusreg/student-registry/internal/core/domain"
	"github.com/campusreg/student-registry/internal/core/ports"
)

// AuthService implements self-service registration, login, and profile lookup.
type AuthService struct {
	repo      ports.UserRepository
	regNums   ports.RegNumberAllocator
	jwtSecret string
	tokenTTL  time.Duration
	log       zerolog.Logger
	now       func() time.Time
}

func NewAuthService(repo ports.UserRepository, regNums ports.RegNumberAllocator, jwtSecret string, tokenTTL time.Duration, log zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		repo:      repo,
		regNums:   regNums,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		log:       log,
		now:       time.Now,
	}
}

// Register creates a student account. Email uniqueness and the student age
// bounds are enforced here; the registration number is generated once and is
// immutable afterwards.
func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	if input.FirstName == "" || input.LastName == "" || input.Email == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: missing required field", domain.ErrValidation)
	}

	now := s.now().UTC()
	if err := domain.ValidateStudentAge(input.DateOfBirth, now); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:                 uuid.NewString(),
		FirstName:          input.FirstName,
		LastName:           input.LastName,
		Email:              email,
		RegistrationNumber: s.nextRegistrationNumber(ctx, domain.RoleStudent, now),
		DateOfBirth:        input.DateOfBirth,
		Role:               domain.RoleStudent,
		Status:             "Active",
		PasswordHash:       string(hash),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	metrics.RegistrationsTotal.WithLabelValues(created.Role).Inc()
	s.log.Info().
		Str("user_id", created.ID).
		Str("registration_number", created.RegistrationNumber).
		Msg("user registered")

	return created, nil
}

// Login verifies credentials and issues a signed token carrying id, email,
// and role claims.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		// an unknown email must look the same as a wrong password
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return token, user, nil
}

// Profile returns the account behind an authenticated token.
func (s *AuthService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return s.repo.FindByID(ctx, userID)
}

// nextRegistrationNumber asks the allocator for the next sequence value. When
// the allocator is unreachable a time-derived sequence is used instead so
// registration never blocks on the sequence store.
func (s *AuthService) nextRegistrationNumber(ctx context.Context, role string, now time.Time) string {
	prefix := domain.RegPrefixFor(role)
	seq, err := s.regNums.Next(ctx, prefix, now.Year())
	if err != nil {
		s.log.Warn().Err(err).Msg("registration number allocator unavailable, using time-derived sequence")
		seq = int(now.UnixNano() % 9_000_000)
	}
	return domain.FormatRegistrationNumber(prefix, seq, now.Year())
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
		"exp":     s.now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
