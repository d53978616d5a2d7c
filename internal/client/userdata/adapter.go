package userdata

import (
	"fmt"
	"time"

	"github.com/campusreg/student-registry/internal/core/domain"
)

const dateOnly = "2006-01-02"

// wireUser is the API's JSON representation of a user.
type wireUser struct {
	ID                 string `json:"id"`
	FirstName          string `json:"firstName"`
	LastName           string `json:"lastName"`
	Email              string `json:"email"`
	RegistrationNumber string `json:"registrationNumber"`
	DateOfBirth        string `json:"dateOfBirth"`
	Role               string `json:"role"`
	Course             string `json:"course,omitempty"`
	Status             string `json:"status,omitempty"`
	CreatedAt          string `json:"createdAt"`
	UpdatedAt          string `json:"updatedAt"`
}

type wirePagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

type wireListResponse struct {
	Data       []wireUser     `json:"data"`
	Pagination wirePagination `json:"pagination"`
}

// fromWire validates and converts an API record. A record with no id, an
// unknown role, or unparseable dates is rejected rather than half-built.
func fromWire(w wireUser) (*domain.User, error) {
	if w.ID == "" {
		return nil, fmt.Errorf("%w: user record missing id", domain.ErrValidation)
	}
	if !domain.ValidRole(w.Role) {
		return nil, fmt.Errorf("%w: unknown role %q for user %s", domain.ErrValidation, w.Role, w.ID)
	}

	dob, err := time.Parse(dateOnly, w.DateOfBirth)
	if err != nil {
		return nil, fmt.Errorf("%w: bad dateOfBirth %q for user %s", domain.ErrValidation, w.DateOfBirth, w.ID)
	}

	u := &domain.User{
		ID:                 w.ID,
		FirstName:          w.FirstName,
		LastName:           w.LastName,
		Email:              w.Email,
		RegistrationNumber: w.RegistrationNumber,
		DateOfBirth:        dob,
		Role:               w.Role,
		Course:             w.Course,
		Status:             w.Status,
	}
	if w.CreatedAt != "" {
		ts, err := time.Parse(time.RFC3339, w.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("%w: bad createdAt %q for user %s", domain.ErrValidation, w.CreatedAt, w.ID)
		}
		u.CreatedAt = ts
	}
	if w.UpdatedAt != "" {
		ts, err := time.Parse(time.RFC3339, w.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("%w: bad updatedAt %q for user %s", domain.ErrValidation, w.UpdatedAt, w.ID)
		}
		u.UpdatedAt = ts
	}
	return u, nil
}

func fromWireList(resp wireListResponse) (*ListResult, error) {
	items := make([]*domain.User, 0, len(resp.Data))
	for _, w := range resp.Data {
		u, err := fromWire(w)
		if err != nil {
			return nil, err
		}
		items = append(items, u)
	}
	return &ListResult{
		Items:      items,
		Total:      resp.Pagination.Total,
		Page:       resp.Pagination.Page,
		Limit:      resp.Pagination.Limit,
		TotalPages: resp.Pagination.TotalPages,
	}, nil
}
