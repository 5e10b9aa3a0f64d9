package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"b2bmarket/pkg/errors"
	"b2bmarket/pkg/logger"
)

// TokenVerifier resolves a bearer token to a user id. Both the Firebase client
// and the HS256 token manager satisfy it.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (string, error)
}

type AuthMiddleware struct {
	verifier TokenVerifier
}

func NewAuthMiddleware(verifier TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
	}
}

func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, err := bearerToken(c)
		if err != nil {
			return err
		}

		uid, err := m.verifier.VerifyToken(c.Request().Context(), token)
		if err != nil || uid == "" {
			logger.Debug("token rejected for %s: %v", c.Path(), err)
			return errors.Unauthorized("Invalid or expired token", err)
		}

		c.Set("uid", uid)
		return next(c)
	}
}

// bearerToken reads the Authorization header. Browsers cannot set headers on a
// websocket handshake, so /ws may pass the token as a query parameter instead.
func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		if token := c.QueryParam("token"); token != "" {
			return token, nil
		}
		return "", errors.Unauthorized("Authorization header is required", nil)
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", errors.Unauthorized("Invalid authorization format", nil)
	}
	return parts[1], nil
}
