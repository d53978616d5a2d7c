package userdata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/campusreg/student-registry/internal/client/session"
	"github.com/campusreg/student-registry/internal/core/domain"
)

const defaultRequestTimeout = 10 * time.Second

// RemoteSource talks to the registry REST API. Transport failures come back
// as ErrNetworkUnavailable so the caller can decide to fall back; HTTP error
// statuses map onto the matching domain sentinels.
type RemoteSource struct {
	baseURL string
	http    *http.Client
	session *session.Session
}

func NewRemoteSource(baseURL string, sess *session.Session) *RemoteSource {
	return &RemoteSource{
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultRequestTimeout},
		session: sess,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

// Login authenticates against the API and stores the token in the session.
func (r *RemoteSource) Login(ctx context.Context, email, password string) error {
	var resp loginResponse
	err := r.do(ctx, http.MethodPost, "/api/login", loginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		// a 401 on login means wrong credentials, not an expired token
		if errors.Is(err, domain.ErrUnauthenticated) {
			return fmt.Errorf("%w: %s", domain.ErrInvalidCredentials, email)
		}
		return err
	}
	r.session.Set(resp.Token, email, resp.Role)
	return nil
}

func (r *RemoteSource) List(ctx context.Context, q ListQuery) (*ListResult, error) {
	params := url.Values{}
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	if q.Role != "" {
		params.Set("role", q.Role)
	}
	if q.SortBy != "" {
		params.Set("sortBy", q.SortBy)
	}
	if q.SortOrder != "" {
		params.Set("sortOrder", q.SortOrder)
	}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	path := "/api/admin/users"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var resp wireListResponse
	if err := r.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return fromWireList(resp)
}

type createUserBody struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	DateOfBirth string `json:"dateOfBirth"`
	Role        string `json:"role,omitempty"`
	Course      string `json:"course,omitempty"`
}

func (r *RemoteSource) Create(ctx context.Context, input CreateInput) (*domain.User, error) {
	body := createUserBody{
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Email:       input.Email,
		Password:    input.Password,
		DateOfBirth: input.DateOfBirth.Format(dateOnly),
		Role:        input.Role,
		Course:      input.Course,
	}

	var resp wireUser
	if err := r.do(ctx, http.MethodPost, "/api/admin/users", body, &resp); err != nil {
		return nil, err
	}
	return fromWire(resp)
}

type updateUserBody struct {
	FirstName   *string `json:"firstName,omitempty"`
	LastName    *string `json:"lastName,omitempty"`
	Email       *string `json:"email,omitempty"`
	DateOfBirth *string `json:"dateOfBirth,omitempty"`
	Role        *string `json:"role,omitempty"`
	Course      *string `json:"course,omitempty"`
	Status      *string `json:"status,omitempty"`
}

func (r *RemoteSource) Update(ctx context.Context, id string, input UpdateInput) (*domain.User, error) {
	body := updateUserBody{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Role:      input.Role,
		Course:    input.Course,
		Status:    input.Status,
	}
	if input.DateOfBirth != nil {
		dob := input.DateOfBirth.Format(dateOnly)
		body.DateOfBirth = &dob
	}

	// the update endpoint answers with a message envelope, so refetch is the
	// caller's job; we only need the status mapping here
	if err := r.do(ctx, http.MethodPut, "/api/admin/users/"+url.PathEscape(id), body, nil); err != nil {
		return nil, err
	}
	return &domain.User{ID: id}, nil
}

func (r *RemoteSource) Delete(ctx context.Context, id string) error {
	return r.do(ctx, http.MethodDelete, "/api/admin/users/"+url.PathEscape(id), nil, nil)
}

func (r *RemoteSource) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := r.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrNetworkUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return r.statusError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: decode response: %v", domain.ErrValidation, err)
		}
	}
	return nil
}

func (r *RemoteSource) statusError(resp *http.Response) error {
	var envelope struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&envelope)
	detail := envelope.Error
	if detail == "" {
		detail = envelope.Message
	}
	if detail == "" {
		detail = resp.Status
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		// server no longer accepts the token, drop it so the next call does
		// not retry with the same one
		r.session.Clear()
		return fmt.Errorf("%w: %s", domain.ErrUnauthenticated, detail)
	case http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrForbidden, detail)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrUserNotFound, detail)
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", domain.ErrEmailTaken, detail)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %s", domain.ErrValidation, detail)
	default:
		// a 5xx is still a response: pass the server's message through
		// rather than pretending the network is down
		return fmt.Errorf("server error (%d): %s", resp.StatusCode, detail)
	}
}
