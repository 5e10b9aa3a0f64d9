package handler

import (
	"github.com/labstack/echo/v4"

	"b2bmarket/internal/infrastructure/jwt"
	"b2bmarket/pkg/response"
)

type DevTokenHandler struct {
	tokens *jwt.TokenManager
}

var devTokenHandler *DevTokenHandler

func NewDevTokenHandler(tokens *jwt.TokenManager) *DevTokenHandler {
	return &DevTokenHandler{
		tokens: tokens,
	}
}

func SetupDevTokenHandler(tokens *jwt.TokenManager) {
	devTokenHandler = NewDevTokenHandler(tokens)
}

func GetDevTokenHandler() *DevTokenHandler {
	return devTokenHandler
}

type devTokenRequest struct {
	UID string `json:"uid" validate:"required,max=128"`
}

// GenerateToken issues a signed token for any uid. Only routed in development.
func (h *DevTokenHandler) GenerateToken(c echo.Context) error {
	var req devTokenRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	token, err := h.tokens.Generate(req.UID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"uid":   req.UID,
		"token": token,
	})
}
