package handler

import (
	"time"

	"github.com/labstack/echo/v4"

	"b2bmarket/internal/usecase"
	"b2bmarket/pkg/errors"
	"b2bmarket/pkg/response"
	"b2bmarket/pkg/utils"
)

const dateLayout = "2006-01-02"

type RFQHandler struct {
	rfqUseCase *usecase.RFQUseCase
}

func NewRFQHandler(rfqUseCase *usecase.RFQUseCase) *RFQHandler {
	return &RFQHandler{
		rfqUseCase: rfqUseCase,
	}
}

type createRFQRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
	Category    string `json:"category" validate:"omitempty,max=100"`
	Quantity    int    `json:"quantity" validate:"required,gt=0"`
	Unit        string `json:"unit" validate:"omitempty,max=32"`
	Budget      int64  `json:"budget" validate:"gte=0"`
	DueDate     string `json:"dueDate" validate:"omitempty"` // YYYY-MM-DD
}

// parseDate accepts an optional YYYY-MM-DD value.
func parseDate(value, field string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, errors.BadRequest("Invalid "+field+" format, expected YYYY-MM-DD", err)
	}
	return &t, nil
}

func (h *RFQHandler) CreateRFQ(c echo.Context) error {
	var req createRFQRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	dueDate, err := parseDate(req.DueDate, "dueDate")
	if err != nil {
		return response.Error(c, err)
	}

	uid := c.Get("uid").(string)

	rfq, err := h.rfqUseCase.CreateRFQ(c.Request().Context(), uid, usecase.CreateRFQInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Quantity:    req.Quantity,
		Unit:        req.Unit,
		Budget:      req.Budget,
		DueDate:     dueDate,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, rfq)
}

func (h *RFQHandler) ListMyRFQs(c echo.Context) error {
	uid := c.Get("uid").(string)
	page := utils.GetPagination(c)

	rfqs, total, err := h.rfqUseCase.ListMyRFQs(c.Request().Context(), uid, page)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, rfqs, total, page.Page, page.Limit)
}

func (h *RFQHandler) ListOpenRFQs(c echo.Context) error {
	page := utils.GetPagination(c)

	rfqs, total, err := h.rfqUseCase.ListOpenRFQs(c.Request().Context(), page)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, rfqs, total, page.Page, page.Limit)
}

func (h *RFQHandler) GetRFQ(c echo.Context) error {
	rfq, err := h.rfqUseCase.GetRFQ(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, rfq)
}

func (h *RFQHandler) CancelRFQ(c echo.Context) error {
	uid := c.Get("uid").(string)

	rfq, err := h.rfqUseCase.CancelRFQ(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, rfq)
}
