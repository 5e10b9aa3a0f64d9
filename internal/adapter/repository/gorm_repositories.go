package repository

import (
	"context"
	goerrors "errors"
	"time"

	"gorm.io/gorm"

	"b2bmarket/internal/domain/entity"
	"b2bmarket/internal/domain/repository"
	"b2bmarket/pkg/errors"
)

func listPage[T any](query *gorm.DB, order string, limit, offset int) ([]*T, int64, error) {
	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var items []*T
	if err := query.Session(&gorm.Session{}).Order(order).Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

type gormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) repository.UserRepository {
	return &gormUserRepository{db: db}
}

func (r *gormUserRepository) Create(ctx context.Context, user *entity.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if goerrors.Is(err, gorm.ErrDuplicatedKey) {
			return errors.Conflict("User is already registered")
		}
		return errors.Internal("Failed to create user", err)
	}
	return nil
}

func (r *gormUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return getByID[entity.User](r.db.WithContext(ctx), id, "User")
}

func (r *gormUserRepository) Update(ctx context.Context, user *entity.User) error {
	err := r.db.WithContext(ctx).Model(&entity.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"name":         user.Name,
		"company_name": user.CompanyName,
		"phone":        user.Phone,
		"updated_at":   user.UpdatedAt,
	}).Error
	if err != nil {
		return errors.Internal("Failed to update user", err)
	}
	return nil
}

type gormRFQRepository struct {
	db *gorm.DB
}

func NewGormRFQRepository(db *gorm.DB) repository.RFQRepository {
	return &gormRFQRepository{db: db}
}

func (r *gormRFQRepository) Create(ctx context.Context, rfq *entity.RFQ) error {
	if err := r.db.WithContext(ctx).Create(rfq).Error; err != nil {
		return errors.Internal("Failed to create RFQ", err)
	}
	return nil
}

func (r *gormRFQRepository) GetByID(ctx context.Context, id string) (*entity.RFQ, error) {
	return getByID[entity.RFQ](r.db.WithContext(ctx), id, "RFQ")
}

func (r *gormRFQRepository) List(ctx context.Context, filter repository.RFQFilter, limit, offset int) ([]*entity.RFQ, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.RFQ{})
	if filter.BuyerID != "" {
		query = query.Where("buyer_id = ?", filter.BuyerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	rfqs, total, err := listPage[entity.RFQ](query, "created_at DESC", limit, offset)
	if err != nil {
		return nil, 0, errors.Internal("Failed to list RFQs", err)
	}
	return rfqs, total, nil
}

type gormQuoteRepository struct {
	db *gorm.DB
}

func NewGormQuoteRepository(db *gorm.DB) repository.QuoteRepository {
	return &gormQuoteRepository{db: db}
}

func (r *gormQuoteRepository) GetByID(ctx context.Context, id string) (*entity.Quote, error) {
	return getByID[entity.Quote](r.db.WithContext(ctx), id, "Quote")
}

func (r *gormQuoteRepository) ListByRFQ(ctx context.Context, rfqID string) ([]*entity.Quote, error) {
	var quotes []*entity.Quote
	if err := r.db.WithContext(ctx).Where("rfq_id = ?", rfqID).Order("created_at ASC").Find(&quotes).Error; err != nil {
		return nil, errors.Internal("Failed to list quotes", err)
	}
	return quotes, nil
}

func (r *gormQuoteRepository) ListBySupplier(ctx context.Context, supplierID string, limit, offset int) ([]*entity.Quote, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Quote{}).Where("supplier_id = ?", supplierID)
	quotes, total, err := listPage[entity.Quote](query, "created_at DESC", limit, offset)
	if err != nil {
		return nil, 0, errors.Internal("Failed to list quotes", err)
	}
	return quotes, total, nil
}

type gormChatRoomRepository struct {
	db *gorm.DB
}

func NewGormChatRoomRepository(db *gorm.DB) repository.ChatRoomRepository {
	return &gormChatRoomRepository{db: db}
}

func (r *gormChatRoomRepository) GetByID(ctx context.Context, id string) (*entity.ChatRoom, error) {
	return getByID[entity.ChatRoom](r.db.WithContext(ctx), id, "Chat room")
}

func (r *gormChatRoomRepository) ListByParticipant(ctx context.Context, userID string, limit, offset int) ([]*entity.ChatRoom, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.ChatRoom{}).Where("buyer_id = ? OR supplier_id = ?", userID, userID)
	rooms, total, err := listPage[entity.ChatRoom](query, "updated_at DESC", limit, offset)
	if err != nil {
		return nil, 0, errors.Internal("Failed to list chat rooms", err)
	}
	return rooms, total, nil
}

func (r *gormChatRoomRepository) ListAll(ctx context.Context, status entity.RoomStatus, limit, offset int) ([]*entity.ChatRoom, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.ChatRoom{})
	if status != "" {
		query = query.Where("status = ?", string(status))
	}
	rooms, total, err := listPage[entity.ChatRoom](query, "created_at DESC", limit, offset)
	if err != nil {
		return nil, 0, errors.Internal("Failed to list chat rooms", err)
	}
	return rooms, total, nil
}

func (r *gormChatRoomRepository) ListDueForExpiry(ctx context.Context, statuses []entity.RoomStatus, now time.Time, limit int) ([]*entity.ChatRoom, error) {
	values := make([]string, len(statuses))
	for i, s := range statuses {
		values[i] = string(s)
	}
	var rooms []*entity.ChatRoom
	err := r.db.WithContext(ctx).
		Where("status IN ? AND expires_at < ?", values, now).
		Order("expires_at ASC").
		Limit(limit).
		Find(&rooms).Error
	if err != nil {
		return nil, errors.Internal("Failed to list expiring rooms", err)
	}
	return rooms, nil
}

func (r *gormChatRoomRepository) ListMessages(ctx context.Context, roomID string, limit, offset int) ([]*entity.Message, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Message{}).Where("room_id = ?", roomID)
	messages, total, err := listPage[entity.Message](query, "created_at ASC, id ASC", limit, offset)
	if err != nil {
		return nil, 0, errors.Internal("Failed to list messages", err)
	}
	return messages, total, nil
}

func (r *gormChatRoomRepository) CountUnread(ctx context.Context, roomID, userID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.Message{}).
		Where("room_id = ? AND is_read = ? AND sender_id <> ?", roomID, false, userID).
		Count(&n).Error
	if err != nil {
		return 0, errors.Internal("Failed to count unread messages", err)
	}
	return n, nil
}

func (r *gormChatRoomRepository) MarkRead(ctx context.Context, roomID, userID string) error {
	err := r.db.WithContext(ctx).Model(&entity.Message{}).
		Where("room_id = ? AND is_read = ? AND sender_id <> ?", roomID, false, userID).
		Update("is_read", true).Error
	if err != nil {
		return errors.Internal("Failed to mark messages read", err)
	}
	return nil
}

type gormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &gormOrderRepository{db: db}
}

func (r *gormOrderRepository) GetByRoomID(ctx context.Context, roomID string) (*entity.Order, error) {
	order, err := findOne[entity.Order](r.db.WithContext(ctx), "room_id = ?", roomID)
	if err != nil {
		return nil, errors.Internal("Failed to get order", err)
	}
	if order == nil {
		return nil, errors.NotFound("Order", nil)
	}
	return order, nil
}

type gormCreditRepository struct {
	db *gorm.DB
}

func NewGormCreditRepository(db *gorm.DB) repository.CreditRepository {
	return &gormCreditRepository{db: db}
}

func (r *gormCreditRepository) GetLatestEntry(ctx context.Context, supplierID string) (*entity.CreditLedgerEntry, error) {
	var entries []*entity.CreditLedgerEntry
	err := r.db.WithContext(ctx).
		Where("supplier_id = ?", supplierID).
		Order("sequence DESC").
		Limit(1).
		Find(&entries).Error
	if err != nil {
		return nil, errors.Internal("Failed to read ledger", err)
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return entries[0], nil
}

func (r *gormCreditRepository) ListEntries(ctx context.Context, supplierID string, limit, offset int) ([]*entity.CreditLedgerEntry, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.CreditLedgerEntry{}).Where("supplier_id = ?", supplierID)
	entries, total, err := listPage[entity.CreditLedgerEntry](query, "sequence DESC", limit, offset)
	if err != nil {
		return nil, 0, errors.Internal("Failed to list ledger entries", err)
	}
	return entries, total, nil
}

func (r *gormCreditRepository) CreateChargeRequest(ctx context.Context, req *entity.CreditChargeRequest) error {
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		return errors.Internal("Failed to create charge request", err)
	}
	return nil
}

func (r *gormCreditRepository) ListChargeRequests(ctx context.Context, supplierID string, status entity.ChargeRequestStatus, limit, offset int) ([]*entity.CreditChargeRequest, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.CreditChargeRequest{})
	if supplierID != "" {
		query = query.Where("supplier_id = ?", supplierID)
	}
	if status != "" {
		query = query.Where("status = ?", string(status))
	}
	reqs, total, err := listPage[entity.CreditChargeRequest](query, "created_at DESC", limit, offset)
	if err != nil {
		return nil, 0, errors.Internal("Failed to list charge requests", err)
	}
	return reqs, total, nil
}
