package handler

import (
	"github.com/labstack/echo/v4"

	"b2bmarket/internal/domain/entity"
	"b2bmarket/internal/usecase"
	"b2bmarket/pkg/response"
	"b2bmarket/pkg/utils"
)

type ChatRoomHandler struct {
	chatRoomUseCase *usecase.ChatRoomUseCase
}

func NewChatRoomHandler(chatRoomUseCase *usecase.ChatRoomUseCase) *ChatRoomHandler {
	return &ChatRoomHandler{
		chatRoomUseCase: chatRoomUseCase,
	}
}

type performActionRequest struct {
	Action        string `json:"action" validate:"required,oneof=request_payment confirm_payment complete_delivery"`
	PaymentMethod string `json:"paymentMethod" validate:"omitempty,max=32"`
}

type sendMessageRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
	Image   string `json:"image" validate:"omitempty,url"`
}

func (h *ChatRoomHandler) ListRooms(c echo.Context) error {
	uid := c.Get("uid").(string)
	page := utils.GetPagination(c)

	rooms, total, err := h.chatRoomUseCase.ListRooms(c.Request().Context(), uid, page)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, rooms, total, page.Page, page.Limit)
}

func (h *ChatRoomHandler) GetRoom(c echo.Context) error {
	uid := c.Get("uid").(string)

	detail, err := h.chatRoomUseCase.GetRoom(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, detail)
}

func (h *ChatRoomHandler) PerformAction(c echo.Context) error {
	var req performActionRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	uid := c.Get("uid").(string)

	detail, err := h.chatRoomUseCase.PerformAction(c.Request().Context(), uid, c.Param("id"), usecase.PerformActionInput{
		Action:        entity.RoomAction(req.Action),
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, detail)
}

func (h *ChatRoomHandler) GetMessages(c echo.Context) error {
	uid := c.Get("uid").(string)
	page := utils.GetPagination(c)

	messages, total, err := h.chatRoomUseCase.GetMessages(c.Request().Context(), uid, c.Param("id"), page)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, messages, total, page.Page, page.Limit)
}

func (h *ChatRoomHandler) SendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	uid := c.Get("uid").(string)

	message, err := h.chatRoomUseCase.SendMessage(c.Request().Context(), uid, c.Param("id"), usecase.SendMessageInput{
		Content: req.Content,
		Image:   req.Image,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

func (h *ChatRoomHandler) GetPaymentMethods(c echo.Context) error {
	return response.Success(c, h.chatRoomUseCase.PaymentMethods())
}
