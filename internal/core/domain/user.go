package domain

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

const (
	RoleAdmin   = "admin"
	RoleStudent = "student"
)

// Registration numbers follow <PREFIX>-<digits>-<year>, e.g. REG-1001-2025.
// The prefix encodes the role the account was created with. The number is
// assigned once at creation and never mutated afterwards.
const (
	RegPrefixStudent = "REG"
	RegPrefixAdmin   = "ADM"
)

// Student accounts must be between these ages (inclusive) at registration
// time. The bound is enforced at creation only, not re-checked on edit.
const (
	MinStudentAge = 10
	MaxStudentAge = 20
)

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrUnauthenticated = errors.New("authentication required")
var ErrForbidden = errors.New("access forbidden")
var ErrUserNotFound = errors.New("user not found")
var ErrEmailTaken = errors.New("email already registered")
var ErrValidation = errors.New("validation failed")
var ErrNetworkUnavailable = errors.New("network unavailable")

var regNumberPattern = regexp.MustCompile(`^[A-Z]{2,4}-\d+-\d{4}$`)

// User models a registered account, student or admin.
type User struct {
	ID                 string    `json:"id"`
	FirstName          string    `json:"firstName"`
	LastName           string    `json:"lastName"`
	Email              string    `json:"email"`
	RegistrationNumber string    `json:"registrationNumber"`
	DateOfBirth        time.Time `json:"dateOfBirth"`
	Role               string    `json:"role"`
	Course             string    `json:"course,omitempty"`
	Status             string    `json:"status,omitempty"`
	PasswordHash       string    `json:"-"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// FullName is the display name used for search matching and name sorting.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// ValidRole reports whether role is one of the two known variants.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleStudent
}

// RegPrefixFor maps a role to its registration number prefix.
func RegPrefixFor(role string) string {
	if role == RoleAdmin {
		return RegPrefixAdmin
	}
	return RegPrefixStudent
}

// FormatRegistrationNumber renders a registration number such as REG-1001-2025.
func FormatRegistrationNumber(prefix string, seq int, year int) string {
	return fmt.Sprintf("%s-%d-%d", prefix, seq, year)
}

// ValidRegistrationNumber reports whether s matches <PREFIX>-<digits>-<year>.
func ValidRegistrationNumber(s string) bool {
	return regNumberPattern.MatchString(s)
}

// Age computes the full years elapsed between dob and at, accounting for
// whether the birthday has occurred yet this year.
func Age(dob, at time.Time) int {
	years := at.Year() - dob.Year()
	if at.Month() < dob.Month() || (at.Month() == dob.Month() && at.Day() < dob.Day()) {
		years--
	}
	return years
}

// ValidateStudentAge enforces the registration-time age bounds for students.
func ValidateStudentAge(dob, at time.Time) error {
	age := Age(dob, at)
	if age < MinStudentAge || age > MaxStudentAge {
		return fmt.Errorf("%w: age %d is outside the allowed range %d-%d",
			ErrValidation, age, MinStudentAge, MaxStudentAge)
	}
	return nil
}
