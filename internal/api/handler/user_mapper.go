package handler

import (
	"time"

	"github.com/campusreg/student-registry/internal/core/domain"
	"github.com/campusreg/student-registry/internal/core/ports"
)

const dateOnly = "2006-01-02"

// --- Service result → HTTP response ---

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:                 u.ID,
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		Email:              u.Email,
		RegistrationNumber: u.RegistrationNumber,
		DateOfBirth:        u.DateOfBirth.UTC().Format(dateOnly),
		Role:               u.Role,
		Course:             u.Course,
		Status:             u.Status,
		CreatedAt:          u.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:          u.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toListResponse(r *ports.ListUsersResult) listUsersResponse {
	items := make([]userResponse, len(r.Items))
	for i, u := range r.Items {
		items[i] = toUserResponse(u)
	}
	return listUsersResponse{
		Data: items,
		Pagination: paginationResponse{
			Page:       r.Page,
			Limit:      r.Limit,
			Total:      r.Total,
			TotalPages: r.TotalPages,
		},
	}
}

// --- Request → Service input ---

func toUpdateInput(req updateUserRequest) (ports.UpdateUserInput, error) {
	input := ports.UpdateUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Role:      req.Role,
		Course:    req.Course,
		Status:    req.Status,
	}
	if req.DateOfBirth != nil {
		dob, err := time.ParseInLocation(dateOnly, *req.DateOfBirth, time.UTC)
		if err != nil {
			return ports.UpdateUserInput{}, err
		}
		input.DateOfBirth = &dob
	}
	return input, nil
}
