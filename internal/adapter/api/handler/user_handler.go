package handler

import (
	"github.com/labstack/echo/v4"

	"b2bmarket/internal/usecase"
	"b2bmarket/pkg/response"
)

type UserHandler struct {
	userUseCase *usecase.UserUseCase
}

func NewUserHandler(userUseCase *usecase.UserUseCase) *UserHandler {
	return &UserHandler{
		userUseCase: userUseCase,
	}
}

type registerRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Name        string `json:"name" validate:"required,max=100"`
	CompanyName string `json:"companyName" validate:"required,max=200"`
	Phone       string `json:"phone" validate:"omitempty,max=32"`
	Role        string `json:"role" validate:"required,oneof=buyer supplier"`
}

type updateProfileRequest struct {
	Name        string `json:"name" validate:"omitempty,max=100"`
	CompanyName string `json:"companyName" validate:"omitempty,max=200"`
	Phone       string `json:"phone" validate:"omitempty,max=32"`
}

func (h *UserHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	uid := c.Get("uid").(string)

	user, err := h.userUseCase.Register(c.Request().Context(), uid, usecase.RegisterInput{
		Email:       req.Email,
		Name:        req.Name,
		CompanyName: req.CompanyName,
		Phone:       req.Phone,
		Role:        req.Role,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, user)
}

func (h *UserHandler) GetProfile(c echo.Context) error {
	uid := c.Get("uid").(string)

	user, err := h.userUseCase.GetProfile(c.Request().Context(), uid)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}

func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	uid := c.Get("uid").(string)

	user, err := h.userUseCase.UpdateProfile(c.Request().Context(), uid, usecase.UpdateProfileInput{
		Name:        req.Name,
		CompanyName: req.CompanyName,
		Phone:       req.Phone,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}
