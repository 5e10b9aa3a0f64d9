package repository

import (
	"context"

	"cloud.google.com/go/firestore"

	"b2bmarket/internal/domain/entity"
	"b2bmarket/internal/domain/repository"
	"b2bmarket/pkg/errors"
)

type firestoreRFQRepository struct {
	client *firestore.Client
}

func NewFirestoreRFQRepository(client *firestore.Client) repository.RFQRepository {
	return &firestoreRFQRepository{client: client}
}

func (r *firestoreRFQRepository) Create(ctx context.Context, rfq *entity.RFQ) error {
	if _, err := r.client.Collection(colRFQs).Doc(rfq.ID).Set(ctx, rfq); err != nil {
		return errors.Internal("Failed to create RFQ", err)
	}
	return nil
}

func (r *firestoreRFQRepository) GetByID(ctx context.Context, id string) (*entity.RFQ, error) {
	doc, err := r.client.Collection(colRFQs).Doc(id).Get(ctx)
	if err != nil {
		return nil, wrapGetError("RFQ", err)
	}
	var rfq entity.RFQ
	if err := doc.DataTo(&rfq); err != nil {
		return nil, errors.Internal("Failed to parse RFQ", err)
	}
	return &rfq, nil
}

func (r *firestoreRFQRepository) List(ctx context.Context, filter repository.RFQFilter, limit, offset int) ([]*entity.RFQ, int64, error) {
	query := r.client.Collection(colRFQs).Query
	if filter.BuyerID != "" {
		query = query.Where("buyerId", "==", filter.BuyerID)
	}
	if filter.Status != "" {
		query = query.Where("status", "==", string(filter.Status))
	}
	query = query.OrderBy("createdAt", firestore.Desc)

	rfqs, total, err := page[entity.RFQ](ctx, query, limit, offset)
	if err != nil {
		return nil, 0, errors.Internal("Failed to list RFQs", err)
	}
	return rfqs, total, nil
}

type firestoreQuoteRepository struct {
	client *firestore.Client
}

func NewFirestoreQuoteRepository(client *firestore.Client) repository.QuoteRepository {
	return &firestoreQuoteRepository{client: client}
}

func (r *firestoreQuoteRepository) GetByID(ctx context.Context, id string) (*entity.Quote, error) {
	doc, err := r.client.Collection(colQuotes).Doc(id).Get(ctx)
	if err != nil {
		return nil, wrapGetError("Quote", err)
	}
	var quote entity.Quote
	if err := doc.DataTo(&quote); err != nil {
		return nil, errors.Internal("Failed to parse quote", err)
	}
	return &quote, nil
}

func (r *firestoreQuoteRepository) ListByRFQ(ctx context.Context, rfqID string) ([]*entity.Quote, error) {
	query := r.client.Collection(colQuotes).Where("rfqId", "==", rfqID).OrderBy("createdAt", firestore.Asc)
	quotes, err := decodeAll[entity.Quote](query.Documents(ctx))
	if err != nil {
		return nil, errors.Internal("Failed to list quotes", err)
	}
	return quotes, nil
}

func (r *firestoreQuoteRepository) ListBySupplier(ctx context.Context, supplierID string, limit, offset int) ([]*entity.Quote, int64, error) {
	query := r.client.Collection(colQuotes).Where("supplierId", "==", supplierID).OrderBy("createdAt", firestore.Desc)
	quotes, total, err := page[entity.Quote](ctx, query, limit, offset)
	if err != nil {
		return nil, 0, errors.Internal("Failed to list quotes", err)
	}
	return quotes, total, nil
}
