package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/campusreg/student-registry/internal/core/ports"
)

// UserHandler handles the admin-facing user CRUD endpoints.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// List handles GET /api/admin/users.
//
// @Summary      List users with filtering, sorting, and pagination
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        page       query     int     false  "Page number (1-based)"
// @Param        limit      query     int     false  "Items per page"
// @Param        search     query     string  false  "Partial match on name, email, or registration number"
// @Param        role       query     string  false  "Exact role filter (admin|student)"
// @Param        sortBy     query     string  false  "Sort key (name|email|registrationNumber|dateOfBirth|role|createdAt)"
// @Param        sortOrder  query     string  false  "asc or desc"
// @Success      200        {object}  listUsersResponse
// @Failure      401        {object}  errorResponse
// @Failure      403        {object}  errorResponse
// @Router       /api/admin/users [get]
func (h *UserHandler) List(c echo.Context) error {
	if _, _, err := ctxClaims(c); err != nil {
		return err
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	result, err := h.service.ListUsers(c.Request().Context(), ports.ListUsersInput{
		Search:    c.QueryParam("search"),
		Role:      c.QueryParam("role"),
		SortBy:    c.QueryParam("sortBy"),
		SortOrder: c.QueryParam("sortOrder"),
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toListResponse(result))
}

// Create handles POST /api/admin/users: the admin "add user" action.
//
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createUserRequest  true  "New user details"
// @Success      201   {object}  userResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/admin/users [post]
func (h *UserHandler) Create(c echo.Context) error {
	_, role, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	dob, err := time.ParseInLocation(dateOnly, req.DateOfBirth, time.UTC)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "dateofbirth must be a date in 2006-01-02 format")
	}

	user, err := h.service.CreateUser(c.Request().Context(), ports.CreateUserInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Password:    req.Password,
		DateOfBirth: dob,
		Role:        req.Role,
		Course:      req.Course,
		Status:      req.Status,
		CallerRole:  role,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toUserResponse(user))
}

// Update handles PUT /api/admin/users/:id: a partial edit.
//
// @Summary      Update a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "User id"
// @Param        body  body      updateUserRequest  true  "Fields to change"
// @Success      200   {object}  messageResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/admin/users/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	if _, _, err := ctxClaims(c); err != nil {
		return err
	}

	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	input, err := toUpdateInput(req)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "dateofbirth must be a date in 2006-01-02 format")
	}

	if _, err := h.service.UpdateUser(c.Request().Context(), c.Param("id"), input); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "User updated successfully"})
}

// Delete handles DELETE /api/admin/users/:id. Deletion is immediate; there
// is no soft delete.
//
// @Summary      Delete a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "User id"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/admin/users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	if _, _, err := ctxClaims(c); err != nil {
		return err
	}

	if err := h.service.DeleteUser(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "User deleted successfully"})
}
