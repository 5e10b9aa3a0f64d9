package repository

import (
	"context"

	"cloud.google.com/go/firestore"

	"b2bmarket/internal/domain/entity"
	"b2bmarket/internal/domain/repository"
	"b2bmarket/pkg/errors"
)

type firestoreCreditRepository struct {
	client *firestore.Client
}

func NewFirestoreCreditRepository(client *firestore.Client) repository.CreditRepository {
	return &firestoreCreditRepository{client: client}
}

func (r *firestoreCreditRepository) GetLatestEntry(ctx context.Context, supplierID string) (*entity.CreditLedgerEntry, error) {
	query := r.client.Collection(colLedgerEntries).
		Where("supplierId", "==", supplierID).
		OrderBy("sequence", firestore.Desc).
		Limit(1)
	entry, err := first[entity.CreditLedgerEntry](query.Documents(ctx))
	if err != nil {
		return nil, errors.Internal("Failed to read ledger", err)
	}
	return entry, nil
}

func (r *firestoreCreditRepository) ListEntries(ctx context.Context, supplierID string, limit, offset int) ([]*entity.CreditLedgerEntry, int64, error) {
	query := r.client.Collection(colLedgerEntries).
		Where("supplierId", "==", supplierID).
		OrderBy("sequence", firestore.Desc)
	entries, total, err := page[entity.CreditLedgerEntry](ctx, query, limit, offset)
	if err != nil {
		return nil, 0, errors.Internal("Failed to list ledger entries", err)
	}
	return entries, total, nil
}

func (r *firestoreCreditRepository) CreateChargeRequest(ctx context.Context, req *entity.CreditChargeRequest) error {
	if _, err := r.client.Collection(colChargeRequests).Doc(req.ID).Create(ctx, req); err != nil {
		return errors.Internal("Failed to create charge request", err)
	}
	return nil
}

func (r *firestoreCreditRepository) ListChargeRequests(ctx context.Context, supplierID string, status entity.ChargeRequestStatus, limit, offset int) ([]*entity.CreditChargeRequest, int64, error) {
	query := r.client.Collection(colChargeRequests).Query
	if supplierID != "" {
		query = query.Where("supplierId", "==", supplierID)
	}
	if status != "" {
		query = query.Where("status", "==", string(status))
	}
	query = query.OrderBy("createdAt", firestore.Desc)

	reqs, total, err := page[entity.CreditChargeRequest](ctx, query, limit, offset)
	if err != nil {
		return nil, 0, errors.Internal("Failed to list charge requests", err)
	}
	return reqs, total, nil
}
