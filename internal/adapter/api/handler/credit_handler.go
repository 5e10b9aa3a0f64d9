package handler

import (
	"github.com/labstack/echo/v4"

	"b2bmarket/internal/domain/entity"
	"b2bmarket/internal/usecase"
	"b2bmarket/pkg/errors"
	"b2bmarket/pkg/response"
	"b2bmarket/pkg/utils"
)

type CreditHandler struct {
	creditUseCase *usecase.CreditUseCase
}

func NewCreditHandler(creditUseCase *usecase.CreditUseCase) *CreditHandler {
	return &CreditHandler{
		creditUseCase: creditUseCase,
	}
}

type requestChargeRequest struct {
	Amount        int64  `json:"amount" validate:"required,gt=0"`
	DepositorName string `json:"depositorName" validate:"required,max=100"`
}

type creditOverview struct {
	Balance int64                       `json:"balance"`
	Entries *response.PaginatedResponse `json:"entries"`
}

func parseChargeStatus(value string) (entity.ChargeRequestStatus, error) {
	status := entity.ChargeRequestStatus(value)
	switch status {
	case "", entity.ChargeRequestPending, entity.ChargeRequestApproved, entity.ChargeRequestRejected:
		return status, nil
	}
	return "", errors.BadRequest("Unknown charge request status: "+value, nil)
}

// GetCredits returns the balance together with a page of ledger entries,
// newest first.
func (h *CreditHandler) GetCredits(c echo.Context) error {
	uid := c.Get("uid").(string)
	page := utils.GetPagination(c)
	ctx := c.Request().Context()

	balance, err := h.creditUseCase.GetBalance(ctx, uid)
	if err != nil {
		return response.Error(c, err)
	}

	entries, total, err := h.creditUseCase.ListEntries(ctx, uid, page)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, creditOverview{
		Balance: balance,
		Entries: response.NewPaginatedResponse(entries, total, page.Page, page.Limit),
	})
}

func (h *CreditHandler) RequestCharge(c echo.Context) error {
	var req requestChargeRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	uid := c.Get("uid").(string)

	request, err := h.creditUseCase.RequestCharge(c.Request().Context(), uid, usecase.RequestChargeInput{
		Amount:        req.Amount,
		DepositorName: req.DepositorName,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, request)
}

func (h *CreditHandler) ListChargeRequests(c echo.Context) error {
	status, err := parseChargeStatus(c.QueryParam("status"))
	if err != nil {
		return response.Error(c, err)
	}

	uid := c.Get("uid").(string)
	page := utils.GetPagination(c)

	requests, total, err := h.creditUseCase.ListChargeRequests(c.Request().Context(), uid, status, page)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, requests, total, page.Page, page.Limit)
}
