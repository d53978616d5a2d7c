// Package view implements the data view pipeline for user tables: free-text
// filtering, role filtering, stable sorting, and pagination. Apply is a pure
// function over an in-memory record set, used both by the dashboard when it
// works offline and by tests to pin down the exact table a state produces.
package view

import (
	"sort"
	"strings"

	"github.com/campusreg/student-registry/internal/core/domain"
)

const (
	DefaultPageSize = 5

	SortByName      = "name"
	SortByEmail     = "email"
	SortByRegNumber = "registrationNumber"
	SortByDOB       = "dateOfBirth"
	SortByRole      = "role"
	SortByCreatedAt = "createdAt"
	OrderAscending  = "asc"
	OrderDescending = "desc"
)

// State is everything that determines what the table shows. Two equal states
// applied to the same records always yield the same Result.
type State struct {
	Search    string
	Role      string
	SortBy    string
	SortOrder string
	Page      int
	PageSize  int
}

// DefaultState lists everyone, newest registration first.
func DefaultState() State {
	return State{
		SortBy:    SortByCreatedAt,
		SortOrder: OrderDescending,
		Page:      1,
		PageSize:  DefaultPageSize,
	}
}

// Result is one page of the view plus enough counts to render pagination.
type Result struct {
	Items         []*domain.User
	FilteredCount int
	TotalPages    int
	Page          int
}

// Apply runs the full pipeline: filter, sort, paginate. The input slice is
// never mutated; sorting happens on a copy.
func Apply(records []*domain.User, s State) Result {
	filtered := filter(records, s)
	sortUsers(filtered, s)

	pageSize := s.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	total := len(filtered)
	totalPages := (total + pageSize - 1) / pageSize

	page := s.Page
	if page < 1 {
		page = 1
	}
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return Result{
		Items:         filtered[start:end],
		FilteredCount: total,
		TotalPages:    totalPages,
		Page:          page,
	}
}

func filter(records []*domain.User, s State) []*domain.User {
	needle := strings.ToLower(strings.TrimSpace(s.Search))
	out := make([]*domain.User, 0, len(records))
	for _, u := range records {
		if s.Role != "" && u.Role != s.Role {
			continue
		}
		if needle != "" && !matches(u, needle) {
			continue
		}
		out = append(out, u)
	}
	return out
}

func matches(u *domain.User, needle string) bool {
	return strings.Contains(strings.ToLower(u.FullName()), needle) ||
		strings.Contains(strings.ToLower(u.Email), needle) ||
		strings.Contains(strings.ToLower(u.RegistrationNumber), needle)
}

// sortUsers sorts in place. SliceStable keeps the incoming order for records
// that compare equal, so repeated applications never shuffle ties.
func sortUsers(users []*domain.User, s State) {
	key := s.SortBy
	if key == "" {
		key = SortByCreatedAt
	}
	desc := s.SortOrder == OrderDescending

	sort.SliceStable(users, func(i, j int) bool {
		a, b := users[i], users[j]
		if desc {
			a, b = b, a
		}
		switch key {
		case SortByName:
			return strings.ToLower(a.FullName()) < strings.ToLower(b.FullName())
		case SortByEmail:
			return strings.ToLower(a.Email) < strings.ToLower(b.Email)
		case SortByRegNumber:
			return a.RegistrationNumber < b.RegistrationNumber
		case SortByDOB:
			return a.DateOfBirth.Before(b.DateOfBirth)
		case SortByRole:
			return a.Role < b.Role
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	})
}
