package repository

import (
	"context"

	"b2bmarket/internal/domain/entity"
)

type RFQFilter struct {
	BuyerID string
	Status  entity.RFQStatus
}

type RFQRepository interface {
	Create(ctx context.Context, rfq *entity.RFQ) error
	GetByID(ctx context.Context, id string) (*entity.RFQ, error)
	List(ctx context.Context, filter RFQFilter, limit, offset int) ([]*entity.RFQ, int64, error)
}

type QuoteRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Quote, error)
	ListByRFQ(ctx context.Context, rfqID string) ([]*entity.Quote, error)
	ListBySupplier(ctx context.Context, supplierID string, limit, offset int) ([]*entity.Quote, int64, error)
}
