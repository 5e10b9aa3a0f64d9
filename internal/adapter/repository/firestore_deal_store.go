package repository

import (
	"context"

	"cloud.google.com/go/firestore"

	"b2bmarket/internal/domain/entity"
	"b2bmarket/internal/domain/repository"
	"b2bmarket/pkg/errors"
)

type firestoreDealStore struct {
	client *firestore.Client
}

func NewFirestoreDealStore(client *firestore.Client) repository.DealStore {
	return &firestoreDealStore{client: client}
}

// RunInTransaction uses Firestore's optimistic transactions. Contended
// documents (the credit account head in particular) make the losing
// transaction retry from the first read.
func (s *firestoreDealStore) RunInTransaction(ctx context.Context, fn func(ctx context.Context, tx repository.DealTx) error) error {
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		return fn(ctx, &firestoreDealTx{client: s.client, tx: tx})
	})
	if err == nil {
		return nil
	}
	if _, ok := errors.As(err); ok {
		return err
	}
	return errors.Internal("Transaction failed", err)
}

type firestoreDealTx struct {
	client *firestore.Client
	tx     *firestore.Transaction
}

func (t *firestoreDealTx) get(ref *firestore.DocumentRef, resource string, v interface{}) error {
	doc, err := t.tx.Get(ref)
	if err != nil {
		return wrapGetError(resource, err)
	}
	if err := doc.DataTo(v); err != nil {
		return errors.Internal("Failed to parse "+resource, err)
	}
	return nil
}

func (t *firestoreDealTx) GetRFQ(id string) (*entity.RFQ, error) {
	var rfq entity.RFQ
	if err := t.get(t.client.Collection(colRFQs).Doc(id), "RFQ", &rfq); err != nil {
		return nil, err
	}
	return &rfq, nil
}

func (t *firestoreDealTx) GetQuote(id string) (*entity.Quote, error) {
	var quote entity.Quote
	if err := t.get(t.client.Collection(colQuotes).Doc(id), "Quote", &quote); err != nil {
		return nil, err
	}
	return &quote, nil
}

func (t *firestoreDealTx) ListQuotesByRFQ(rfqID string) ([]*entity.Quote, error) {
	query := t.client.Collection(colQuotes).Where("rfqId", "==", rfqID)
	quotes, err := decodeAll[entity.Quote](t.tx.Documents(query))
	if err != nil {
		return nil, errors.Internal("Failed to list quotes", err)
	}
	return quotes, nil
}

func (t *firestoreDealTx) GetChatRoom(id string) (*entity.ChatRoom, error) {
	var room entity.ChatRoom
	if err := t.get(t.client.Collection(colChatRooms).Doc(id), "Chat room", &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (t *firestoreDealTx) FindChatRoomByQuote(quoteID string) (*entity.ChatRoom, error) {
	query := t.client.Collection(colChatRooms).Where("quoteId", "==", quoteID).Limit(1)
	room, err := first[entity.ChatRoom](t.tx.Documents(query))
	if err != nil {
		return nil, errors.Internal("Failed to find chat room", err)
	}
	return room, nil
}

func (t *firestoreDealTx) GetCreditAccount(supplierID string) (*entity.CreditAccount, error) {
	doc, err := t.tx.Get(t.client.Collection(colCreditAccounts).Doc(supplierID))
	if err != nil {
		if isNotFound(err) {
			return &entity.CreditAccount{SupplierID: supplierID}, nil
		}
		return nil, errors.Internal("Failed to get credit account", err)
	}
	var account entity.CreditAccount
	if err := doc.DataTo(&account); err != nil {
		return nil, errors.Internal("Failed to parse credit account", err)
	}
	return &account, nil
}

func (t *firestoreDealTx) FindLedgerEntryByRoom(roomID string, entryType entity.LedgerEntryType) (*entity.CreditLedgerEntry, error) {
	query := t.client.Collection(colLedgerEntries).
		Where("roomId", "==", roomID).
		Where("type", "==", string(entryType)).
		Limit(1)
	entry, err := first[entity.CreditLedgerEntry](t.tx.Documents(query))
	if err != nil {
		return nil, errors.Internal("Failed to find ledger entry", err)
	}
	return entry, nil
}

func (t *firestoreDealTx) GetOrderByRoom(roomID string) (*entity.Order, error) {
	if roomID == "" {
		return nil, nil
	}
	query := t.client.Collection(colOrders).Where("roomId", "==", roomID).Limit(1)
	order, err := first[entity.Order](t.tx.Documents(query))
	if err != nil {
		return nil, errors.Internal("Failed to find order", err)
	}
	return order, nil
}

func (t *firestoreDealTx) GetChargeRequest(id string) (*entity.CreditChargeRequest, error) {
	var req entity.CreditChargeRequest
	if err := t.get(t.client.Collection(colChargeRequests).Doc(id), "Charge request", &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (t *firestoreDealTx) set(ref *firestore.DocumentRef, v interface{}) error {
	if err := t.tx.Set(ref, v); err != nil {
		return errors.Internal("Failed to write "+ref.Parent.ID, err)
	}
	return nil
}

func (t *firestoreDealTx) SaveRFQ(rfq *entity.RFQ) error {
	return t.set(t.client.Collection(colRFQs).Doc(rfq.ID), rfq)
}

func (t *firestoreDealTx) SaveQuote(quote *entity.Quote) error {
	return t.set(t.client.Collection(colQuotes).Doc(quote.ID), quote)
}

func (t *firestoreDealTx) SaveChatRoom(room *entity.ChatRoom) error {
	return t.set(t.client.Collection(colChatRooms).Doc(room.ID), room)
}

func (t *firestoreDealTx) SaveOrder(order *entity.Order) error {
	return t.set(t.client.Collection(colOrders).Doc(order.ID), order)
}

func (t *firestoreDealTx) SaveCreditAccount(account *entity.CreditAccount) error {
	return t.set(t.client.Collection(colCreditAccounts).Doc(account.SupplierID), account)
}

func (t *firestoreDealTx) SaveChargeRequest(req *entity.CreditChargeRequest) error {
	return t.set(t.client.Collection(colChargeRequests).Doc(req.ID), req)
}

// AppendLedgerEntry uses Create so an entry id can never be overwritten.
func (t *firestoreDealTx) AppendLedgerEntry(entry *entity.CreditLedgerEntry) error {
	if err := t.tx.Create(t.client.Collection(colLedgerEntries).Doc(entry.ID), entry); err != nil {
		return errors.Internal("Failed to append ledger entry", err)
	}
	return nil
}

func (t *firestoreDealTx) CreateMessage(msg *entity.Message) error {
	ref := t.client.Collection(colChatRooms).Doc(msg.RoomID).Collection(colMessages).Doc(msg.ID)
	if err := t.tx.Create(ref, msg); err != nil {
		return errors.Internal("Failed to create message", err)
	}
	return nil
}
