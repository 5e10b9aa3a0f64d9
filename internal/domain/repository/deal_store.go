package repository

import (
	"context"

	"b2bmarket/internal/domain/entity"
)

// DealStore runs a unit of work that touches rooms, quotes, orders and the
// credit ledger atomically. Implementations retry on contention and discard
// every write when fn returns an error.
type DealStore interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context, tx DealTx) error) error
}

// DealTx is the transactional view of the store. All reads must be issued
// before the first write.
type DealTx interface {
	GetRFQ(id string) (*entity.RFQ, error)
	GetQuote(id string) (*entity.Quote, error)
	ListQuotesByRFQ(rfqID string) ([]*entity.Quote, error)
	GetChatRoom(id string) (*entity.ChatRoom, error)
	// FindChatRoomByQuote returns (nil, nil) when the quote has no room.
	FindChatRoomByQuote(quoteID string) (*entity.ChatRoom, error)
	// GetCreditAccount returns a zero account when the supplier has none yet.
	GetCreditAccount(supplierID string) (*entity.CreditAccount, error)
	// FindLedgerEntryByRoom returns (nil, nil) when no entry of that type exists.
	FindLedgerEntryByRoom(roomID string, entryType entity.LedgerEntryType) (*entity.CreditLedgerEntry, error)
	// GetOrderByRoom returns (nil, nil) when the room has no order.
	GetOrderByRoom(roomID string) (*entity.Order, error)
	GetChargeRequest(id string) (*entity.CreditChargeRequest, error)

	SaveRFQ(rfq *entity.RFQ) error
	SaveQuote(quote *entity.Quote) error
	SaveChatRoom(room *entity.ChatRoom) error
	SaveOrder(order *entity.Order) error
	SaveCreditAccount(account *entity.CreditAccount) error
	SaveChargeRequest(req *entity.CreditChargeRequest) error
	AppendLedgerEntry(entry *entity.CreditLedgerEntry) error
	CreateMessage(msg *entity.Message) error
}
