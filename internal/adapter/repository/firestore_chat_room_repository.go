package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"

	"b2bmarket/internal/domain/entity"
	"b2bmarket/internal/domain/repository"
	"b2bmarket/pkg/errors"
)

type firestoreChatRoomRepository struct {
	client *firestore.Client
}

func NewFirestoreChatRoomRepository(client *firestore.Client) repository.ChatRoomRepository {
	return &firestoreChatRoomRepository{client: client}
}

func (r *firestoreChatRoomRepository) messages(roomID string) *firestore.CollectionRef {
	return r.client.Collection(colChatRooms).Doc(roomID).Collection(colMessages)
}

func (r *firestoreChatRoomRepository) GetByID(ctx context.Context, id string) (*entity.ChatRoom, error) {
	doc, err := r.client.Collection(colChatRooms).Doc(id).Get(ctx)
	if err != nil {
		return nil, wrapGetError("Chat room", err)
	}
	var room entity.ChatRoom
	if err := doc.DataTo(&room); err != nil {
		return nil, errors.Internal("Failed to parse chat room", err)
	}
	return &room, nil
}

func (r *firestoreChatRoomRepository) ListByParticipant(ctx context.Context, userID string, limit, offset int) ([]*entity.ChatRoom, int64, error) {
	query := r.client.Collection(colChatRooms).
		Where("participants", "array-contains", userID).
		OrderBy("updatedAt", firestore.Desc)
	rooms, total, err := page[entity.ChatRoom](ctx, query, limit, offset)
	if err != nil {
		return nil, 0, errors.Internal("Failed to list chat rooms", err)
	}
	return rooms, total, nil
}

func (r *firestoreChatRoomRepository) ListAll(ctx context.Context, status entity.RoomStatus, limit, offset int) ([]*entity.ChatRoom, int64, error) {
	query := r.client.Collection(colChatRooms).Query
	if status != "" {
		query = query.Where("status", "==", string(status))
	}
	query = query.OrderBy("createdAt", firestore.Desc)
	rooms, total, err := page[entity.ChatRoom](ctx, query, limit, offset)
	if err != nil {
		return nil, 0, errors.Internal("Failed to list chat rooms", err)
	}
	return rooms, total, nil
}

func (r *firestoreChatRoomRepository) ListDueForExpiry(ctx context.Context, statuses []entity.RoomStatus, now time.Time, limit int) ([]*entity.ChatRoom, error) {
	values := make([]string, len(statuses))
	for i, s := range statuses {
		values[i] = string(s)
	}
	query := r.client.Collection(colChatRooms).
		Where("status", "in", values).
		Where("expiresAt", "<", now).
		OrderBy("expiresAt", firestore.Asc).
		Limit(limit)
	rooms, err := decodeAll[entity.ChatRoom](query.Documents(ctx))
	if err != nil {
		return nil, errors.Internal("Failed to list expiring rooms", err)
	}
	return rooms, nil
}

func (r *firestoreChatRoomRepository) ListMessages(ctx context.Context, roomID string, limit, offset int) ([]*entity.Message, int64, error) {
	query := r.messages(roomID).OrderBy("createdAt", firestore.Asc)
	messages, total, err := page[entity.Message](ctx, query, limit, offset)
	if err != nil {
		return nil, 0, errors.Internal("Failed to list messages", err)
	}
	return messages, total, nil
}

func (r *firestoreChatRoomRepository) unreadQuery(roomID, userID string) firestore.Query {
	return r.messages(roomID).
		Where("isRead", "==", false).
		Where("senderId", "!=", userID)
}

func (r *firestoreChatRoomRepository) CountUnread(ctx context.Context, roomID, userID string) (int64, error) {
	n, err := count(ctx, r.unreadQuery(roomID, userID))
	if err != nil {
		return 0, errors.Internal("Failed to count unread messages", err)
	}
	return n, nil
}

func (r *firestoreChatRoomRepository) MarkRead(ctx context.Context, roomID, userID string) error {
	iter := r.unreadQuery(roomID, userID).Select().Documents(ctx)
	docs, err := iter.GetAll()
	if err != nil {
		return errors.Internal("Failed to load unread messages", err)
	}
	if len(docs) == 0 {
		return nil
	}

	bw := r.client.BulkWriter(ctx)
	for _, doc := range docs {
		if _, err := bw.Update(doc.Ref, []firestore.Update{{Path: "isRead", Value: true}}); err != nil {
			bw.End()
			return errors.Internal("Failed to mark messages read", err)
		}
	}
	bw.End()
	return nil
}

type firestoreOrderRepository struct {
	client *firestore.Client
}

func NewFirestoreOrderRepository(client *firestore.Client) repository.OrderRepository {
	return &firestoreOrderRepository{client: client}
}

func (r *firestoreOrderRepository) GetByRoomID(ctx context.Context, roomID string) (*entity.Order, error) {
	query := r.client.Collection(colOrders).Where("roomId", "==", roomID).Limit(1)
	order, err := first[entity.Order](query.Documents(ctx))
	if err != nil {
		return nil, errors.Internal("Failed to get order", err)
	}
	if order == nil {
		return nil, errors.NotFound("Order", nil)
	}
	return order, nil
}
