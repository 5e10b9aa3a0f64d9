package handler

import (
	"context"

	"github.com/labstack/echo/v4"

	"b2bmarket/internal/domain/entity"
	"b2bmarket/internal/usecase"
	"b2bmarket/pkg/errors"
	"b2bmarket/pkg/logger"
	"b2bmarket/pkg/response"
	"b2bmarket/pkg/utils"
)

type AdminHandler struct {
	creditUseCase   *usecase.CreditUseCase
	chatRoomUseCase *usecase.ChatRoomUseCase
	expiryUseCase   *usecase.ExpiryUseCase
}

func NewAdminHandler(
	creditUseCase *usecase.CreditUseCase,
	chatRoomUseCase *usecase.ChatRoomUseCase,
	expiryUseCase *usecase.ExpiryUseCase,
) *AdminHandler {
	return &AdminHandler{
		creditUseCase:   creditUseCase,
		chatRoomUseCase: chatRoomUseCase,
		expiryUseCase:   expiryUseCase,
	}
}

type processChargeRequest struct {
	AdminNotes string `json:"adminNotes" validate:"max=500"`
}

func (h *AdminHandler) ListChargeRequests(c echo.Context) error {
	status, err := parseChargeStatus(c.QueryParam("status"))
	if err != nil {
		return response.Error(c, err)
	}

	page := utils.GetPagination(c)

	requests, total, err := h.creditUseCase.ListChargeRequests(c.Request().Context(), "", status, page)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, requests, total, page.Page, page.Limit)
}

func (h *AdminHandler) ApproveChargeRequest(c echo.Context) error {
	return h.processChargeRequest(c, h.creditUseCase.ApproveChargeRequest)
}

func (h *AdminHandler) RejectChargeRequest(c echo.Context) error {
	return h.processChargeRequest(c, h.creditUseCase.RejectChargeRequest)
}

type chargeProcessor func(ctx context.Context, adminID, requestID string, input usecase.ProcessChargeInput) (*entity.CreditChargeRequest, error)

func (h *AdminHandler) processChargeRequest(c echo.Context, process chargeProcessor) error {
	var req processChargeRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	adminID := c.Get("uid").(string)

	request, err := process(c.Request().Context(), adminID, c.Param("id"), usecase.ProcessChargeInput{
		AdminNotes: req.AdminNotes,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, request)
}

// ListRooms is the retention view over every room, optionally filtered by status.
func (h *AdminHandler) ListRooms(c echo.Context) error {
	status := entity.RoomStatus(c.QueryParam("status"))
	if status != "" && !status.Valid() {
		return response.Error(c, errors.BadRequest("Unknown room status: "+string(status), nil))
	}

	page := utils.GetPagination(c)

	rooms, total, err := h.chatRoomUseCase.ListAllRooms(c.Request().Context(), status, page)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, rooms, total, page.Page, page.Limit)
}

func (h *AdminHandler) TriggerExpirySweep(c echo.Context) error {
	expired, err := h.expiryUseCase.SweepExpired(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}

	logger.Info("manual expiry sweep by %s expired %d rooms", c.Get("uid"), expired)
	return response.Success(c, map[string]interface{}{
		"expired": expired,
		"policy":  h.expiryUseCase.Policy(),
	})
}
