package userdata

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/campusreg/student-registry/internal/client/view"
	"github.com/campusreg/student-registry/internal/core/domain"
)

// LocalSource keeps the user set in memory. It backs the dashboard when the
// API is unreachable, seeded with a small demo roster so the table is never
// blank.
type LocalSource struct {
	mu    sync.Mutex
	users []*domain.User
	seq   map[string]int
	now   func() time.Time
}

func NewLocalSource() *LocalSource {
	s := &LocalSource{
		seq: map[string]int{domain.RegPrefixStudent: 1004, domain.RegPrefixAdmin: 1001},
		now: time.Now,
	}
	s.users = seedUsers()
	return s
}

func seedUsers() []*domain.User {
	base := time.Date(2025, time.January, 6, 9, 0, 0, 0, time.UTC)
	mk := func(i int, first, last, email, reg string, dob time.Time, role, course string) *domain.User {
		return &domain.User{
			ID:                 uuid.NewString(),
			FirstName:          first,
			LastName:           last,
			Email:              email,
			RegistrationNumber: reg,
			DateOfBirth:        dob,
			Role:               role,
			Course:             course,
			Status:             "Active",
			CreatedAt:          base.Add(time.Duration(i) * time.Hour),
			UpdatedAt:          base.Add(time.Duration(i) * time.Hour),
		}
	}
	return []*domain.User{
		mk(0, "John", "Doe", "john.doe@example.com", "REG-1001-2025",
			time.Date(2007, time.May, 15, 0, 0, 0, 0, time.UTC), domain.RoleStudent, "Computer Science"),
		mk(1, "Jane", "Smith", "jane.smith@example.com", "REG-1002-2025",
			time.Date(2006, time.March, 22, 0, 0, 0, 0, time.UTC), domain.RoleStudent, "Mathematics"),
		mk(2, "Alice", "Johnson", "alice.johnson@example.com", "REG-1003-2025",
			time.Date(2008, time.November, 3, 0, 0, 0, 0, time.UTC), domain.RoleStudent, "Physics"),
		mk(3, "Bob", "Williams", "bob.williams@example.com", "REG-1004-2025",
			time.Date(2007, time.August, 30, 0, 0, 0, 0, time.UTC), domain.RoleStudent, "Biology"),
		mk(4, "Michael", "Brown", "michael.brown@example.com", "ADM-1001-2025",
			time.Date(1985, time.February, 10, 0, 0, 0, 0, time.UTC), domain.RoleAdmin, ""),
	}
}

func (s *LocalSource) List(_ context.Context, q ListQuery) (*ListResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	limit := q.Limit
	if limit <= 0 {
		limit = view.DefaultPageSize
	}

	res := view.Apply(s.users, view.State{
		Search:    q.Search,
		Role:      q.Role,
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
		Page:      q.Page,
		PageSize:  limit,
	})

	items := make([]*domain.User, len(res.Items))
	for i, u := range res.Items {
		cp := *u
		items[i] = &cp
	}

	return &ListResult{
		Items:      items,
		Total:      res.FilteredCount,
		Page:       res.Page,
		Limit:      limit,
		TotalPages: res.TotalPages,
	}, nil
}

func (s *LocalSource) Create(_ context.Context, input CreateInput) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	role := input.Role
	if role == "" {
		role = domain.RoleStudent
	}
	if !domain.ValidRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, role)
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.FirstName == "" || input.LastName == "" {
		return nil, fmt.Errorf("%w: first name, last name and email are required", domain.ErrValidation)
	}
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return nil, domain.ErrEmailTaken
		}
	}

	now := s.now()
	if role == domain.RoleStudent {
		if err := domain.ValidateStudentAge(input.DateOfBirth, now); err != nil {
			return nil, err
		}
	}

	prefix := domain.RegPrefixFor(role)
	s.seq[prefix]++

	u := &domain.User{
		ID:                 uuid.NewString(),
		FirstName:          input.FirstName,
		LastName:           input.LastName,
		Email:              email,
		RegistrationNumber: domain.FormatRegistrationNumber(prefix, s.seq[prefix], now.Year()),
		DateOfBirth:        input.DateOfBirth,
		Role:               role,
		Course:             input.Course,
		Status:             "Active",
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	s.users = append(s.users, u)

	cp := *u
	return &cp, nil
}

func (s *LocalSource) Update(_ context.Context, id string, input UpdateInput) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.find(id)
	if u == nil {
		return nil, domain.ErrUserNotFound
	}

	// validate everything before touching the record so a rejected edit
	// leaves it exactly as it was
	var newEmail string
	if input.Email != nil {
		newEmail = strings.ToLower(strings.TrimSpace(*input.Email))
		for _, other := range s.users {
			if other.ID != id && strings.EqualFold(other.Email, newEmail) {
				return nil, domain.ErrEmailTaken
			}
		}
	}
	if input.Role != nil && !domain.ValidRole(*input.Role) {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, *input.Role)
	}

	if input.Email != nil {
		u.Email = newEmail
	}
	if input.Role != nil {
		u.Role = *input.Role
	}
	if input.FirstName != nil {
		u.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		u.LastName = *input.LastName
	}
	if input.DateOfBirth != nil {
		u.DateOfBirth = *input.DateOfBirth
	}
	if input.Course != nil {
		u.Course = *input.Course
	}
	if input.Status != nil {
		u.Status = *input.Status
	}
	u.UpdatedAt = s.now()

	cp := *u
	return &cp, nil
}

func (s *LocalSource) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, u := range s.users {
		if u.ID == id {
			s.users = append(s.users[:i], s.users[i+1:]...)
			return nil
		}
	}
	return domain.ErrUserNotFound
}

func (s *LocalSource) find(id string) *domain.User {
	for _, u := range s.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}
