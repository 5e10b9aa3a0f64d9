package usecase

import (
	"context"
	"strings"
	"time"

	"b2bmarket/internal/domain/entity"
	"b2bmarket/internal/domain/repository"
	"b2bmarket/pkg/errors"
	"b2bmarket/pkg/logger"
	"b2bmarket/pkg/utils"
)

type RFQUseCase struct {
	store   repository.DealStore
	rfqRepo repository.RFQRepository
	now     func() time.Time
}

func NewRFQUseCase(store repository.DealStore, rfqRepo repository.RFQRepository) *RFQUseCase {
	return &RFQUseCase{
		store:   store,
		rfqRepo: rfqRepo,
		now:     utcNow,
	}
}

type CreateRFQInput struct {
	Title       string
	Description string
	Category    string
	Quantity    int
	Unit        string
	Budget      int64
	DueDate     *time.Time
}

func (uc *RFQUseCase) CreateRFQ(ctx context.Context, buyerID string, input CreateRFQInput) (*entity.RFQ, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, errors.BadRequest("Title is required", nil)
	}
	if input.Quantity < 0 || input.Budget < 0 {
		return nil, errors.BadRequest("Quantity and budget cannot be negative", nil)
	}

	now := uc.now()
	if input.DueDate != nil && input.DueDate.Before(now) {
		return nil, errors.BadRequest("Due date must be in the future", nil)
	}

	rfq := &entity.RFQ{
		ID:          newID(),
		BuyerID:     buyerID,
		Title:       title,
		Description: input.Description,
		Category:    input.Category,
		Quantity:    input.Quantity,
		Unit:        input.Unit,
		Budget:      input.Budget,
		DueDate:     input.DueDate,
		Status:      entity.RFQStatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.rfqRepo.Create(ctx, rfq); err != nil {
		return nil, err
	}

	logger.Info("rfq created %s", logger.Fields("rfq", rfq.ID, "buyer", buyerID))
	return rfq, nil
}

func (uc *RFQUseCase) GetRFQ(ctx context.Context, id string) (*entity.RFQ, error) {
	return uc.rfqRepo.GetByID(ctx, id)
}

func (uc *RFQUseCase) ListMyRFQs(ctx context.Context, buyerID string, page utils.Pagination) ([]*entity.RFQ, int64, error) {
	page = page.Normalize()
	return uc.rfqRepo.List(ctx, repository.RFQFilter{BuyerID: buyerID}, page.Limit, page.Offset())
}

// ListOpenRFQs is the supplier-facing board of RFQs still accepting quotes.
func (uc *RFQUseCase) ListOpenRFQs(ctx context.Context, page utils.Pagination) ([]*entity.RFQ, int64, error) {
	page = page.Normalize()
	return uc.rfqRepo.List(ctx, repository.RFQFilter{Status: entity.RFQStatusOpen}, page.Limit, page.Offset())
}

// CancelRFQ withdraws an open RFQ and rejects its pending quotes.
func (uc *RFQUseCase) CancelRFQ(ctx context.Context, buyerID, rfqID string) (*entity.RFQ, error) {
	var rfq *entity.RFQ
	err := uc.store.RunInTransaction(ctx, func(ctx context.Context, tx repository.DealTx) error {
		var err error
		rfq, err = tx.GetRFQ(rfqID)
		if err != nil {
			return err
		}
		if rfq.BuyerID != buyerID {
			return errors.NotAuthorized("Only the RFQ owner can cancel it")
		}
		if rfq.Status != entity.RFQStatusOpen {
			return errors.InvalidStateTransition("Only open RFQs can be cancelled")
		}
		quotes, err := tx.ListQuotesByRFQ(rfqID)
		if err != nil {
			return err
		}

		now := uc.now()
		for _, q := range quotes {
			if q.Status != entity.QuoteStatusPending {
				continue
			}
			q.Status = entity.QuoteStatusRejected
			q.RejectedAt = &now
			q.UpdatedAt = now
			if err := tx.SaveQuote(q); err != nil {
				return err
			}
		}
		rfq.Status = entity.RFQStatusCancelled
		rfq.UpdatedAt = now
		return tx.SaveRFQ(rfq)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("rfq cancelled %s", logger.Fields("rfq", rfq.ID, "buyer", buyerID))
	return rfq, nil
}
