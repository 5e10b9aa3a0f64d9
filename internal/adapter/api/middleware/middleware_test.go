package middleware

import (
	"context"
	goerrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"b2bmarket/internal/domain/entity"
	"b2bmarket/internal/infrastructure/ratelimit"
	"b2bmarket/pkg/errors"
)

type stubVerifier map[string]string

func (s stubVerifier) VerifyToken(_ context.Context, token string) (string, error) {
	if uid, ok := s[token]; ok {
		return uid, nil
	}
	return "", goerrors.New("bad token")
}

type stubUsers map[string]*entity.User

func (s stubUsers) Create(context.Context, *entity.User) error { return nil }
func (s stubUsers) Update(context.Context, *entity.User) error { return nil }

func (s stubUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, errors.NotFound("User", nil)
}

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func newContext(req *http.Request) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func requireAppError(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *errors.AppError
	require.True(t, goerrors.As(err, &appErr), "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
}

func TestAuthenticate(t *testing.T) {
	auth := NewAuthMiddleware(stubVerifier{"good": "buyer-1"})

	tests := []struct {
		name    string
		target  string
		header  string
		wantUID string
		wantErr bool
	}{
		{name: "bearer header", target: "/api/rfqs", header: "Bearer good", wantUID: "buyer-1"},
		{name: "lowercase scheme", target: "/api/rfqs", header: "bearer good", wantUID: "buyer-1"},
		{name: "query token", target: "/ws?token=good", wantUID: "buyer-1"},
		{name: "missing", target: "/api/rfqs", wantErr: true},
		{name: "wrong scheme", target: "/api/rfqs", header: "Basic good", wantErr: true},
		{name: "unknown token", target: "/api/rfqs", header: "Bearer nope", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			c, rec := newContext(req)

			err := auth.Authenticate(okHandler)(c)

			if tt.wantErr {
				requireAppError(t, err, errors.CodeUnauthorized)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.wantUID, c.Get("uid"))
		})
	}
}

func TestRequireRole(t *testing.T) {
	admin := NewAdminMiddleware(stubUsers{
		"buyer-1":    {ID: "buyer-1", Role: entity.RoleBuyer},
		"supplier-1": {ID: "supplier-1", Role: entity.RoleSupplier},
	})

	tests := []struct {
		name     string
		uid      string
		wantCode string
	}{
		{name: "matching role", uid: "supplier-1"},
		{name: "other role", uid: "buyer-1", wantCode: errors.CodeNotAuthorized},
		{name: "unregistered", uid: "ghost", wantCode: errors.CodeNotAuthorized},
		{name: "unauthenticated", wantCode: errors.CodeUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newContext(httptest.NewRequest(http.MethodGet, "/api/supplier/credits", nil))
			if tt.uid != "" {
				c.Set("uid", tt.uid)
			}

			err := admin.RequireRole(entity.RoleSupplier)(okHandler)(c)

			if tt.wantCode != "" {
				requireAppError(t, err, tt.wantCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, entity.RoleSupplier, c.Get("role"))
		})
	}
}

func TestAdminOnly(t *testing.T) {
	admin := NewAdminMiddleware(stubUsers{
		"admin-1": {ID: "admin-1", Role: entity.RoleAdmin},
		"buyer-1": {ID: "buyer-1", Role: entity.RoleBuyer},
	})

	c, _ := newContext(httptest.NewRequest(http.MethodGet, "/api/admin/chat/rooms", nil))
	c.Set("uid", "admin-1")
	assert.NoError(t, admin.AdminOnly(okHandler)(c))

	c, _ = newContext(httptest.NewRequest(http.MethodGet, "/api/admin/chat/rooms", nil))
	c.Set("uid", "buyer-1")
	requireAppError(t, admin.AdminOnly(okHandler)(c), errors.CodeNotAuthorized)
}

func TestRateLimit(t *testing.T) {
	mw := RateLimit(ratelimit.NewRateLimiter(2))

	call := func(ip string) (echo.Context, error) {
		req := httptest.NewRequest(http.MethodGet, "/api/rfqs", nil)
		req.Header.Set(echo.HeaderXRealIP, ip)
		c, _ := newContext(req)
		return c, mw(okHandler)(c)
	}

	for i := 0; i < 2; i++ {
		_, err := call("10.0.0.1")
		require.NoError(t, err)
	}

	c, err := call("10.0.0.1")
	requireAppError(t, err, errors.CodeTooManyRequests)
	assert.NotEmpty(t, c.Response().Header().Get("Retry-After"))

	_, err = call("10.0.0.2")
	assert.NoError(t, err)
}

func TestRateLimit_NilLimiter(t *testing.T) {
	c, rec := newContext(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, RateLimit(nil)(okHandler)(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}
