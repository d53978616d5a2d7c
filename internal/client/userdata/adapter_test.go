package userdata

import (
	"errors"
	"testing"
	"time"

	"github.com/campusreg/student-registry/internal/core/domain"
)

func TestFromWire_Valid(t *testing.T) {
	u, err := fromWire(wireUser{
		ID:                 "u-1",
		FirstName:          "Jane",
		LastName:           "Smith",
		Email:              "jane.smith@example.com",
		RegistrationNumber: "REG-1002-2025",
		DateOfBirth:        "2006-03-22",
		Role:               "student",
		CreatedAt:          "2025-02-10T08:30:00Z",
		UpdatedAt:          "2025-02-11T08:30:00Z",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !u.DateOfBirth.Equal(time.Date(2006, time.March, 22, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("dateOfBirth parsed wrong: %v", u.DateOfBirth)
	}
	if u.CreatedAt.IsZero() || u.UpdatedAt.IsZero() {
		t.Fatalf("timestamps should be parsed")
	}
}

func TestFromWire_Rejections(t *testing.T) {
	cases := []struct {
		name string
		w    wireUser
	}{
		{"missing id", wireUser{Role: "student", DateOfBirth: "2006-03-22"}},
		{"unknown role", wireUser{ID: "u-1", Role: "teacher", DateOfBirth: "2006-03-22"}},
		{"bad date", wireUser{ID: "u-1", Role: "student", DateOfBirth: "22/03/2006"}},
		{"bad createdAt", wireUser{ID: "u-1", Role: "student", DateOfBirth: "2006-03-22", CreatedAt: "yesterday"}},
	}
	for _, tc := range cases {
		if _, err := fromWire(tc.w); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("%s: expected ErrValidation, got %v", tc.name, err)
		}
	}
}

func TestFromWireList_PropagatesBadRecord(t *testing.T) {
	resp := wireListResponse{
		Data: []wireUser{
			{ID: "u-1", Role: "student", DateOfBirth: "2006-03-22"},
			{ID: "u-2", Role: "wizard", DateOfBirth: "2006-03-22"},
		},
		Pagination: wirePagination{Page: 1, Limit: 5, Total: 2, TotalPages: 1},
	}
	if _, err := fromWireList(resp); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected bad record to fail the whole page, got %v", err)
	}
}
