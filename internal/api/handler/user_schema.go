package handler

// Request and response shapes for the user endpoints. Field names are
// camelCase; that is the wire contract the web and CLI clients consume.

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// messageResponse is the envelope for mutation acknowledgements.
type messageResponse struct {
	Message string `json:"message"`
}

// --- Auth ---

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

type registerRequest struct {
	FirstName   string `json:"firstName"   validate:"required"`
	LastName    string `json:"lastName"    validate:"required"`
	Email       string `json:"email"       validate:"required,email"`
	Password    string `json:"password"    validate:"required,min=6"`
	DateOfBirth string `json:"dateOfBirth" validate:"required,datetime=2006-01-02"`
}

// --- Admin user CRUD ---

type createUserRequest struct {
	FirstName   string `json:"firstName"   validate:"required"`
	LastName    string `json:"lastName"    validate:"required"`
	Email       string `json:"email"       validate:"required,email"`
	Password    string `json:"password"    validate:"required,min=6"`
	DateOfBirth string `json:"dateOfBirth" validate:"required,datetime=2006-01-02"`
	Role        string `json:"role"        validate:"omitempty,oneof=admin student"`
	Course      string `json:"course"`
	Status      string `json:"status"`
}

// updateUserRequest is a partial edit; absent fields stay untouched. The
// registration number is deliberately not accepted here.
type updateUserRequest struct {
	FirstName   *string `json:"firstName"`
	LastName    *string `json:"lastName"`
	Email       *string `json:"email"       validate:"omitempty,email"`
	DateOfBirth *string `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
	Role        *string `json:"role"        validate:"omitempty,oneof=admin student"`
	Course      *string `json:"course"`
	Status      *string `json:"status"`
}

type userResponse struct {
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

type paginationResponse struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

type listUsersResponse struct {
	Data       []userResponse     `json:"data"`
	Pagination paginationResponse `json:"pagination"`
}
