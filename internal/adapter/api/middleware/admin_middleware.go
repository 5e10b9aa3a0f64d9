package middleware

import (
	"github.com/labstack/echo/v4"

	"b2bmarket/internal/domain/entity"
	"b2bmarket/internal/domain/repository"
	"b2bmarket/pkg/errors"
)

type AdminMiddleware struct {
	userRepo repository.UserRepository
}

func NewAdminMiddleware(userRepo repository.UserRepository) *AdminMiddleware {
	return &AdminMiddleware{
		userRepo: userRepo,
	}
}

func (m *AdminMiddleware) AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return m.RequireRole(entity.RoleAdmin)(next)
}

// RequireRole admits only registered users holding role and stores the role
// under "role" for handlers.
func (m *AdminMiddleware) RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid, ok := c.Get("uid").(string)
			if !ok || uid == "" {
				return errors.Unauthorized("Authentication required", nil)
			}

			user, err := m.userRepo.GetByID(c.Request().Context(), uid)
			if err != nil {
				if errors.Is(err, errors.CodeNotFound) {
					return errors.NotAuthorized("Complete registration first")
				}
				return errors.Internal("Failed to verify user role", err)
			}

			if user.Role != role {
				return errors.NotAuthorized(role + " privileges required")
			}

			c.Set("role", user.Role)
			return next(c)
		}
	}
}
