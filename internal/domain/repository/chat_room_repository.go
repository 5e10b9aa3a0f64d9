package repository

import (
	"context"
	"time"

	"b2bmarket/internal/domain/entity"
)

type ChatRoomRepository interface {
	GetByID(ctx context.Context, id string) (*entity.ChatRoom, error)
	ListByParticipant(ctx context.Context, userID string, limit, offset int) ([]*entity.ChatRoom, int64, error)
	// ListAll filters by status when status is non-empty.
	ListAll(ctx context.Context, status entity.RoomStatus, limit, offset int) ([]*entity.ChatRoom, int64, error)
	// ListDueForExpiry returns rooms in one of statuses whose expiresAt is before now.
	ListDueForExpiry(ctx context.Context, statuses []entity.RoomStatus, now time.Time, limit int) ([]*entity.ChatRoom, error)

	// ListMessages returns messages oldest first.
	ListMessages(ctx context.Context, roomID string, limit, offset int) ([]*entity.Message, int64, error)
	CountUnread(ctx context.Context, roomID, userID string) (int64, error)
	// MarkRead flags every message in the room not sent by userID as read.
	MarkRead(ctx context.Context, roomID, userID string) error
}

type OrderRepository interface {
	GetByRoomID(ctx context.Context, roomID string) (*entity.Order, error)
}
