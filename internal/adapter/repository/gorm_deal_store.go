package repository

import (
	"context"
	goerrors "errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"b2bmarket/internal/domain/entity"
	"b2bmarket/internal/domain/repository"
	"b2bmarket/pkg/errors"
)

type gormDealStore struct {
	db *gorm.DB
}

func NewGormDealStore(db *gorm.DB) repository.DealStore {
	return &gormDealStore{db: db}
}

func (s *gormDealStore) RunInTransaction(ctx context.Context, fn func(ctx context.Context, tx repository.DealTx) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &gormDealTx{db: tx})
	})
	if err == nil {
		return nil
	}
	if _, ok := errors.As(err); ok {
		return err
	}
	return errors.Internal("Transaction failed", err)
}

type gormDealTx struct {
	db *gorm.DB
}

// forUpdate row-locks the rows read, except on SQLite which has no row locks
// and serializes writers on its own.
func (t *gormDealTx) forUpdate() *gorm.DB {
	if t.db.Dialector.Name() == DriverSQLite {
		return t.db
	}
	return t.db.Clauses(clause.Locking{Strength: "UPDATE"})
}

func getByID[T any](db *gorm.DB, id, resource string) (*T, error) {
	var v T
	err := db.Where("id = ?", id).Take(&v).Error
	if err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound(resource, err)
		}
		return nil, errors.Internal("Failed to get "+resource, err)
	}
	return &v, nil
}

// findOne returns nil when nothing matches.
func findOne[T any](db *gorm.DB, query string, args ...interface{}) (*T, error) {
	var rows []*T
	if err := db.Where(query, args...).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (t *gormDealTx) GetRFQ(id string) (*entity.RFQ, error) {
	return getByID[entity.RFQ](t.forUpdate(), id, "RFQ")
}

func (t *gormDealTx) GetQuote(id string) (*entity.Quote, error) {
	return getByID[entity.Quote](t.forUpdate(), id, "Quote")
}

func (t *gormDealTx) ListQuotesByRFQ(rfqID string) ([]*entity.Quote, error) {
	var quotes []*entity.Quote
	if err := t.db.Where("rfq_id = ?", rfqID).Order("created_at ASC").Find(&quotes).Error; err != nil {
		return nil, errors.Internal("Failed to list quotes", err)
	}
	return quotes, nil
}

func (t *gormDealTx) GetChatRoom(id string) (*entity.ChatRoom, error) {
	return getByID[entity.ChatRoom](t.forUpdate(), id, "Chat room")
}

func (t *gormDealTx) FindChatRoomByQuote(quoteID string) (*entity.ChatRoom, error) {
	room, err := findOne[entity.ChatRoom](t.forUpdate(), "quote_id = ?", quoteID)
	if err != nil {
		return nil, errors.Internal("Failed to find chat room", err)
	}
	return room, nil
}

// GetCreditAccount inserts the account row if missing and then locks it, so
// a supplier's first postings also serialize on the row lock.
func (t *gormDealTx) GetCreditAccount(supplierID string) (*entity.CreditAccount, error) {
	seed := &entity.CreditAccount{SupplierID: supplierID, UpdatedAt: time.Now().UTC()}
	if err := t.db.Clauses(clause.OnConflict{DoNothing: true}).Create(seed).Error; err != nil {
		return nil, errors.Internal("Failed to initialize credit account", err)
	}
	account, err := findOne[entity.CreditAccount](t.forUpdate(), "supplier_id = ?", supplierID)
	if err != nil {
		return nil, errors.Internal("Failed to get credit account", err)
	}
	if account == nil {
		return &entity.CreditAccount{SupplierID: supplierID}, nil
	}
	return account, nil
}

func (t *gormDealTx) FindLedgerEntryByRoom(roomID string, entryType entity.LedgerEntryType) (*entity.CreditLedgerEntry, error) {
	entry, err := findOne[entity.CreditLedgerEntry](t.db, "room_id = ? AND type = ?", roomID, string(entryType))
	if err != nil {
		return nil, errors.Internal("Failed to find ledger entry", err)
	}
	return entry, nil
}

func (t *gormDealTx) GetOrderByRoom(roomID string) (*entity.Order, error) {
	if roomID == "" {
		return nil, nil
	}
	order, err := findOne[entity.Order](t.forUpdate(), "room_id = ?", roomID)
	if err != nil {
		return nil, errors.Internal("Failed to find order", err)
	}
	return order, nil
}

func (t *gormDealTx) GetChargeRequest(id string) (*entity.CreditChargeRequest, error) {
	return getByID[entity.CreditChargeRequest](t.forUpdate(), id, "Charge request")
}

// upsert inserts or fully overwrites the row with the same primary key.
func (t *gormDealTx) upsert(v interface{}, what string) error {
	if err := t.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(v).Error; err != nil {
		return errors.Internal("Failed to save "+what, err)
	}
	return nil
}

func (t *gormDealTx) SaveRFQ(rfq *entity.RFQ) error {
	return t.upsert(rfq, "RFQ")
}

func (t *gormDealTx) SaveQuote(quote *entity.Quote) error {
	return t.upsert(quote, "quote")
}

func (t *gormDealTx) SaveChatRoom(room *entity.ChatRoom) error {
	return t.upsert(room, "chat room")
}

func (t *gormDealTx) SaveOrder(order *entity.Order) error {
	return t.upsert(order, "order")
}

func (t *gormDealTx) SaveCreditAccount(account *entity.CreditAccount) error {
	return t.upsert(account, "credit account")
}

func (t *gormDealTx) SaveChargeRequest(req *entity.CreditChargeRequest) error {
	return t.upsert(req, "charge request")
}

// AppendLedgerEntry is a plain insert; the (supplier_id, sequence) unique
// index rejects a second writer that raced past the account head.
func (t *gormDealTx) AppendLedgerEntry(entry *entity.CreditLedgerEntry) error {
	if err := t.db.Create(entry).Error; err != nil {
		return errors.Internal("Failed to append ledger entry", err)
	}
	return nil
}

func (t *gormDealTx) CreateMessage(msg *entity.Message) error {
	if err := t.db.Create(msg).Error; err != nil {
		return errors.Internal("Failed to create message", err)
	}
	return nil
}
