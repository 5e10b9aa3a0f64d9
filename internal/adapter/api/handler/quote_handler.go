package handler

import (
	"github.com/labstack/echo/v4"

	"b2bmarket/internal/usecase"
	"b2bmarket/pkg/response"
	"b2bmarket/pkg/utils"
)

type QuoteHandler struct {
	quoteUseCase *usecase.QuoteUseCase
}

func NewQuoteHandler(quoteUseCase *usecase.QuoteUseCase) *QuoteHandler {
	return &QuoteHandler{
		quoteUseCase: quoteUseCase,
	}
}

type submitQuoteRequest struct {
	TotalPrice   int64    `json:"totalPrice" validate:"required,gt=0,max=922337203685477"`
	DeliveryDate string   `json:"deliveryDate" validate:"omitempty"`
	Note         string   `json:"note" validate:"max=2000"`
	Attachments  []string `json:"attachments" validate:"omitempty,max=10,dive,url"`
}

func (h *QuoteHandler) SubmitQuote(c echo.Context) error {
	var req submitQuoteRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	deliveryDate, err := parseDate(req.DeliveryDate, "deliveryDate")
	if err != nil {
		return response.Error(c, err)
	}

	uid := c.Get("uid").(string)

	result, err := h.quoteUseCase.SubmitQuote(c.Request().Context(), uid, c.Param("id"), usecase.SubmitQuoteInput{
		TotalPrice:   req.TotalPrice,
		DeliveryDate: deliveryDate,
		Note:         req.Note,
		Attachments:  req.Attachments,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, result)
}

func (h *QuoteHandler) ListQuotesForRFQ(c echo.Context) error {
	uid := c.Get("uid").(string)

	quotes, err := h.quoteUseCase.ListQuotesForRFQ(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, quotes)
}

func (h *QuoteHandler) ListMyQuotes(c echo.Context) error {
	uid := c.Get("uid").(string)
	page := utils.GetPagination(c)

	quotes, total, err := h.quoteUseCase.ListMyQuotes(c.Request().Context(), uid, page)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, quotes, total, page.Page, page.Limit)
}

// AcceptQuote confirms the deal. The UI navigates to data.chatRoom.id.
func (h *QuoteHandler) AcceptQuote(c echo.Context) error {
	uid := c.Get("uid").(string)

	result, err := h.quoteUseCase.AcceptQuote(c.Request().Context(), c.Param("id"), uid)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, result)
}

func (h *QuoteHandler) RejectQuote(c echo.Context) error {
	uid := c.Get("uid").(string)

	quote, err := h.quoteUseCase.RejectQuote(c.Request().Context(), c.Param("id"), uid)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, quote)
}
