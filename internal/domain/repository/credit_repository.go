package repository

import (
	"context"

	"b2bmarket/internal/domain/entity"
)

type CreditRepository interface {
	// GetLatestEntry returns (nil, nil) for suppliers with no ledger history.
	GetLatestEntry(ctx context.Context, supplierID string) (*entity.CreditLedgerEntry, error)
	// ListEntries returns entries newest first.
	ListEntries(ctx context.Context, supplierID string, limit, offset int) ([]*entity.CreditLedgerEntry, int64, error)

	CreateChargeRequest(ctx context.Context, req *entity.CreditChargeRequest) error
	ListChargeRequests(ctx context.Context, supplierID string, status entity.ChargeRequestStatus, limit, offset int) ([]*entity.CreditChargeRequest, int64, error)
}
