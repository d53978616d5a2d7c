package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/campusreg/student-registry/internal/core/domain"
)

// RBAC guards a route group behind an allow-list of roles. It reads the role
// claim set by Auth, so it must be registered after that middleware. A denial
// surfaces as domain.ErrForbidden and takes the central error handler's 403
// path like every other authorization failure.
func RBAC(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get("role").(string)
			if _, ok := allowed[role]; !ok {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
