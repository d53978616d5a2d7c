package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/campusreg/student-registry/internal/api/metrics"
	"github.com/campusreg/student-registry/internal/core/domain"
	"github.com/campusreg/student-registry/internal/core/ports"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// UserService implements the admin use cases over user records.
type UserService struct {
	repo    ports.UserRepository
	regNums ports.RegNumberAllocator
	log     zerolog.Logger
	now     func() time.Time
}

func NewUserService(repo ports.UserRepository, regNums ports.RegNumberAllocator, log zerolog.Logger) *UserService {
	return &UserService{repo: repo, regNums: regNums, log: log, now: time.Now}
}

// ListUsers returns a filtered, sorted page of users plus pagination metadata.
func (s *UserService) ListUsers(ctx context.Context, input ports.ListUsersInput) (*ports.ListUsersResult, error) {
	timer := prometheus.NewTimer(metrics.ListUsersDuration)
	defer timer.ObserveDuration()

	page := input.Page
	if page < 1 {
		page = 1
	}
	limit := input.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if input.Role != "" && !domain.ValidRole(input.Role) {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, input.Role)
	}

	users, total, err := s.repo.List(ctx, ports.ListUsersFilter{
		Search:    input.Search,
		Role:      input.Role,
		SortBy:    input.SortBy,
		SortOrder: input.SortOrder,
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &ports.ListUsersResult{
		Items:      users,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// CreateUser is the admin "add user" action. Unlike self-service sign-up it
// may elevate the new account to admin, but only for admin callers. Student
// accounts still get the registration-time age check.
func (s *UserService) CreateUser(ctx context.Context, input ports.CreateUserInput) (*domain.User, error) {
	if input.FirstName == "" || input.LastName == "" || input.Email == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: missing required field", domain.ErrValidation)
	}

	role := input.Role
	if role == "" {
		role = domain.RoleStudent
	}
	if !domain.ValidRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, role)
	}
	if role == domain.RoleAdmin && input.CallerRole != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}

	now := s.now().UTC()
	if role == domain.RoleStudent {
		if err := domain.ValidateStudentAge(input.DateOfBirth, now); err != nil {
			return nil, err
		}
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	prefix := domain.RegPrefixFor(role)
	seq, err := s.regNums.Next(ctx, prefix, now.Year())
	if err != nil {
		s.log.Warn().Err(err).Msg("registration number allocator unavailable, using time-derived sequence")
		seq = int(now.UnixNano() % 9_000_000)
	}

	status := input.Status
	if status == "" {
		status = "Active"
	}

	user := &domain.User{
		ID:                 uuid.NewString(),
		FirstName:          input.FirstName,
		LastName:           input.LastName,
		Email:              email,
		RegistrationNumber: domain.FormatRegistrationNumber(prefix, seq, now.Year()),
		DateOfBirth:        input.DateOfBirth,
		Role:               role,
		Course:             input.Course,
		Status:             status,
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
		Str("role", created.Role).
		Msg("user created by admin")

	return created, nil
}

// UpdateUser applies a partial edit. The registration number is never
// touched, and the age bounds are not re-checked on edit.
func (s *UserService) UpdateUser(ctx context.Context, id string, input ports.UpdateUserInput) (*domain.User, error) {
	if input.Role != nil && !domain.ValidRole(*input.Role) {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, *input.Role)
	}

	fields := ports.UpdateUserFields{
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		DateOfBirth: input.DateOfBirth,
		Role:        input.Role,
		Course:      input.Course,
		Status:      input.Status,
	}

	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email == "" {
			return nil, fmt.Errorf("%w: email cannot be empty", domain.ErrValidation)
		}
		if existing, err := s.repo.FindByEmail(ctx, email); err == nil && existing.ID != id {
			return nil, domain.ErrEmailTaken
		}
		fields.Email = &email
	}

	updated, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		metrics.UserMutationsTotal.WithLabelValues("update", "failure").Inc()
		return nil, err
	}

	metrics.UserMutationsTotal.WithLabelValues("update", "success").Inc()
	s.log.Info().Str("user_id", id).Msg("user updated")
	return updated, nil
}

// DeleteUser removes the record immediately; there is no soft delete.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		metrics.UserMutationsTotal.WithLabelValues("delete", "failure").Inc()
		return err
	}

	metrics.UserMutationsTotal.WithLabelValues("delete", "success").Inc()
	s.log.Info().Str("user_id", id).Msg("user deleted")
	return nil
}
