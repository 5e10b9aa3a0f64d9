package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"b2bmarket/internal/domain/entity"
	"b2bmarket/internal/domain/repository"
	"b2bmarket/internal/domain/service"
	"b2bmarket/internal/infrastructure/ratelimit"
	"b2bmarket/pkg/errors"
	"b2bmarket/pkg/logger"
	"b2bmarket/pkg/utils"
)

type ChatRoomUseCase struct {
	store       repository.DealStore
	roomRepo    repository.ChatRoomRepository
	rfqRepo     repository.RFQRepository
	quoteRepo   repository.QuoteRepository
	userRepo    repository.UserRepository
	orderRepo   repository.OrderRepository
	payments    *service.PaymentMethodRegistry
	expiry      *ExpiryUseCase
	rateLimiter *ratelimit.RateLimiter
	publisher   DealEventPublisher
	now         func() time.Time
}

func NewChatRoomUseCase(
	store repository.DealStore,
	roomRepo repository.ChatRoomRepository,
	rfqRepo repository.RFQRepository,
	quoteRepo repository.QuoteRepository,
	userRepo repository.UserRepository,
	orderRepo repository.OrderRepository,
	payments *service.PaymentMethodRegistry,
	expiry *ExpiryUseCase,
	rateLimiter *ratelimit.RateLimiter,
	publisher DealEventPublisher,
) *ChatRoomUseCase {
	return &ChatRoomUseCase{
		store:       store,
		roomRepo:    roomRepo,
		rfqRepo:     rfqRepo,
		quoteRepo:   quoteRepo,
		userRepo:    userRepo,
		orderRepo:   orderRepo,
		payments:    payments,
		expiry:      expiry,
		rateLimiter: rateLimiter,
		publisher:   publisher,
		now:         utcNow,
	}
}

type PerformActionInput struct {
	Action        entity.RoomAction
	PaymentMethod string
}

type SendMessageInput struct {
	Content string
	Image   string
}

// RoomSummary is one row of the room list.
type RoomSummary struct {
	*entity.ChatRoom
	RFQ         *entity.RFQSummary   `json:"rfq,omitempty"`
	Quote       *entity.QuoteSummary `json:"quote,omitempty"`
	Buyer       *entity.UserSummary  `json:"buyer,omitempty"`
	Supplier    *entity.UserSummary  `json:"supplier,omitempty"`
	UnreadCount int64                `json:"unreadCount"`
}

// RoomDetail is the full view a participant sees when opening a room.
type RoomDetail struct {
	ChatRoom         *entity.ChatRoom        `json:"chatRoom"`
	RFQ              *entity.RFQ             `json:"rfq,omitempty"`
	Quote            *entity.Quote           `json:"quote,omitempty"`
	Order            *entity.Order           `json:"order,omitempty"`
	Buyer            *entity.UserSummary     `json:"buyer,omitempty"`
	Supplier         *entity.UserSummary     `json:"supplier,omitempty"`
	CurrentUserID    string                  `json:"currentUserId"`
	CurrentUserRole  string                  `json:"currentUserRole"`
	AvailableActions []entity.RoomAction     `json:"availableActions"`
	PaymentMethods   []service.PaymentMethod `json:"paymentMethods"`
	ReadOnly         bool                    `json:"readOnly"`
}

// lookups memoizes summary reads while building a page of rooms.
type lookups struct {
	uc     *ChatRoomUseCase
	users  map[string]*entity.User
	rfqs   map[string]*entity.RFQ
	quotes map[string]*entity.Quote
}

func (uc *ChatRoomUseCase) newLookups() *lookups {
	return &lookups{
		uc:     uc,
		users:  make(map[string]*entity.User),
		rfqs:   make(map[string]*entity.RFQ),
		quotes: make(map[string]*entity.Quote),
	}
}

func (l *lookups) user(ctx context.Context, id string) *entity.User {
	if u, ok := l.users[id]; ok {
		return u
	}
	u, err := l.uc.userRepo.GetByID(ctx, id)
	if err != nil {
		logger.Debug("user lookup failed %s", logger.Fields("user", id, "err", err))
		u = nil
	}
	l.users[id] = u
	return u
}

func (l *lookups) rfq(ctx context.Context, id string) *entity.RFQ {
	if r, ok := l.rfqs[id]; ok {
		return r
	}
	r, err := l.uc.rfqRepo.GetByID(ctx, id)
	if err != nil {
		r = nil
	}
	l.rfqs[id] = r
	return r
}

func (l *lookups) quote(ctx context.Context, id string) *entity.Quote {
	if q, ok := l.quotes[id]; ok {
		return q
	}
	q, err := l.uc.quoteRepo.GetByID(ctx, id)
	if err != nil {
		q = nil
	}
	l.quotes[id] = q
	return q
}

// ListRooms returns the rooms the user takes part in, newest activity first.
func (uc *ChatRoomUseCase) ListRooms(ctx context.Context, userID string, page utils.Pagination) ([]*RoomSummary, int64, error) {
	page = page.Normalize()
	rooms, total, err := uc.roomRepo.ListByParticipant(ctx, userID, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, err
	}

	now := uc.now()
	l := uc.newLookups()
	summaries := make([]*RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		if room.ExpiryDue(now, uc.expiry.Policy()) {
			if fresh, err := uc.expiry.ExpireIfDue(ctx, room.ID); err == nil {
				room = fresh
			} else {
				logger.Warn("expire on list failed %s", logger.Fields("room", room.ID, "err", err))
			}
		}

		unread, err := uc.roomRepo.CountUnread(ctx, room.ID, userID)
		if err != nil {
			return nil, 0, err
		}
		summaries = append(summaries, &RoomSummary{
			ChatRoom:    room,
			RFQ:         l.rfq(ctx, room.RFQID).Summary(),
			Quote:       l.quote(ctx, room.QuoteID).Summary(),
			Buyer:       l.user(ctx, room.BuyerID).Summary(),
			Supplier:    l.user(ctx, room.SupplierID).Summary(),
			UnreadCount: unread,
		})
	}
	return summaries, total, nil
}

// ListAllRooms is the admin retention view across every participant.
func (uc *ChatRoomUseCase) ListAllRooms(ctx context.Context, status entity.RoomStatus, page utils.Pagination) ([]*entity.ChatRoom, int64, error) {
	if status != "" && !status.Valid() {
		return nil, 0, errors.BadRequest("Unknown room status: "+string(status), nil)
	}
	page = page.Normalize()
	return uc.roomRepo.ListAll(ctx, status, page.Limit, page.Offset())
}

func (uc *ChatRoomUseCase) GetRoom(ctx context.Context, userID, roomID string) (*RoomDetail, error) {
	room, err := uc.expiry.ExpireIfDue(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.IsParticipant(userID) {
		return nil, errors.NotAuthorized("You are not a participant of this room")
	}
	return uc.detail(ctx, room, userID)
}

func (uc *ChatRoomUseCase) detail(ctx context.Context, room *entity.ChatRoom, userID string) (*RoomDetail, error) {
	role := room.RoleOf(userID)
	l := uc.newLookups()

	order, err := uc.orderRepo.GetByRoomID(ctx, room.ID)
	if err != nil && !errors.Is(err, errors.CodeNotFound) {
		return nil, err
	}

	return &RoomDetail{
		ChatRoom:         room,
		RFQ:              l.rfq(ctx, room.RFQID),
		Quote:            l.quote(ctx, room.QuoteID),
		Order:            order,
		Buyer:            l.user(ctx, room.BuyerID).Summary(),
		Supplier:         l.user(ctx, room.SupplierID).Summary(),
		CurrentUserID:    userID,
		CurrentUserRole:  role,
		AvailableActions: room.AvailableActions(role),
		PaymentMethods:   uc.payments.List(),
		ReadOnly:         room.IsReadOnly(),
	}, nil
}

func (uc *ChatRoomUseCase) PaymentMethods() []service.PaymentMethod {
	return uc.payments.List()
}

var actionMessages = map[entity.RoomAction]string{
	entity.ActionRequestPayment:   "The buyer requested to pay by %s. The supplier will confirm once payment is received.",
	entity.ActionConfirmPayment:   "The supplier confirmed the payment was received.",
	entity.ActionCompleteDelivery: "The supplier marked the delivery as completed. This deal is closed.",
}

// PerformAction runs one step of the payment handshake. The acting role is
// derived from the room's stored participants, never from the request.
func (uc *ChatRoomUseCase) PerformAction(ctx context.Context, userID, roomID string, input PerformActionInput) (*RoomDetail, error) {
	rule, ok := entity.LookupAction(input.Action)
	if !ok {
		return nil, errors.BadRequest("Unknown action: "+string(input.Action), nil)
	}

	method := ""
	if input.Action == entity.ActionRequestPayment {
		var err error
		if method, err = uc.payments.Resolve(input.PaymentMethod); err != nil {
			return nil, err
		}
	}

	if _, err := uc.expiry.ExpireIfDue(ctx, roomID); err != nil {
		return nil, err
	}

	var (
		room *entity.ChatRoom
		from entity.RoomStatus
	)
	err := uc.store.RunInTransaction(ctx, func(ctx context.Context, tx repository.DealTx) error {
		var err error
		room, err = tx.GetChatRoom(roomID)
		if err != nil {
			return err
		}
		role := room.RoleOf(userID)
		if role == "" {
			return errors.NotAuthorized("You are not a participant of this room")
		}
		if role != rule.Actor {
			return errors.NotAuthorized(fmt.Sprintf("Only the %s can %s", rule.Actor, input.Action))
		}
		now := uc.now()
		if room.Status == entity.RoomStatusExpired || room.ExpiryDue(now, uc.expiry.Policy()) {
			return errors.InvalidStateTransition("This room has expired")
		}
		if room.Status != rule.From {
			return errors.InvalidStateTransition(fmt.Sprintf("Cannot %s while the room is %s", input.Action, room.Status))
		}
		order, err := tx.GetOrderByRoom(room.ID)
		if err != nil {
			return err
		}

		from = room.Status
		if err := room.Transition(rule.To, now); err != nil {
			return errors.InvalidStateTransition(err.Error())
		}
		content := actionMessages[input.Action]
		if method != "" {
			room.PaymentMethod = method
			content = fmt.Sprintf(content, method)
		}
		msg := newSystemMessage(room.ID, entity.EventForTransition(rule.To), content, now)
		applyLastMessage(room, msg)

		if err := tx.SaveChatRoom(room); err != nil {
			return err
		}
		if order != nil {
			order.SyncWithRoom(room, now)
			if err := tx.SaveOrder(order); err != nil {
				return err
			}
		}
		return tx.CreateMessage(msg)
	})
	if err != nil {
		return nil, err
	}

	logger.LogTransition(room.ID, string(from), string(room.Status), userID)
	publish(ctx, uc.publisher, entity.DealEvent{
		Type:       entity.EventForTransition(room.Status),
		RoomID:     room.ID,
		RFQID:      room.RFQID,
		QuoteID:    room.QuoteID,
		Status:     room.Status,
		ActorID:    userID,
		Recipients: participants(room),
		OccurredAt: room.UpdatedAt,
	})
	return uc.detail(ctx, room, userID)
}

func (uc *ChatRoomUseCase) SendMessage(ctx context.Context, userID, roomID string, input SendMessageInput) (*entity.Message, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" && input.Image == "" {
		return nil, errors.BadRequest("Message content is required", nil)
	}

	if allowed, wait := uc.rateLimiter.Allow(userID, ratelimit.ActionSendMessage); !allowed {
		return nil, errors.TooManyRequests(fmt.Sprintf("Too many messages, retry in %d seconds", int(wait.Seconds())+1))
	}

	if _, err := uc.expiry.ExpireIfDue(ctx, roomID); err != nil {
		return nil, err
	}

	var (
		room *entity.ChatRoom
		msg  *entity.Message
	)
	err := uc.store.RunInTransaction(ctx, func(ctx context.Context, tx repository.DealTx) error {
		var err error
		room, err = tx.GetChatRoom(roomID)
		if err != nil {
			return err
		}
		role := room.RoleOf(userID)
		if role == "" {
			return errors.NotAuthorized("You are not a participant of this room")
		}
		now := uc.now()
		if room.IsReadOnly() || room.ExpiryDue(now, uc.expiry.Policy()) {
			return errors.RoomReadOnly("This room has expired and is read-only")
		}

		msg = &entity.Message{
			ID:         newSortableID(),
			RoomID:     room.ID,
			SenderID:   userID,
			SenderType: role,
			Content:    content,
			Image:      input.Image,
			CreatedAt:  now,
		}
		applyLastMessage(room, msg)
		room.UpdatedAt = now
		if err := tx.SaveChatRoom(room); err != nil {
			return err
		}
		return tx.CreateMessage(msg)
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, uc.publisher, entity.DealEvent{
		Type:       entity.EventMessageCreated,
		RoomID:     room.ID,
		Status:     room.Status,
		ActorID:    userID,
		Recipients: participants(room),
		Payload:    msg,
		OccurredAt: msg.CreatedAt,
	})
	return msg, nil
}

// GetMessages returns the room history and marks the counterparty's messages read.
func (uc *ChatRoomUseCase) GetMessages(ctx context.Context, userID, roomID string, page utils.Pagination) ([]*entity.Message, int64, error) {
	room, err := uc.expiry.ExpireIfDue(ctx, roomID)
	if err != nil {
		return nil, 0, err
	}
	if !room.IsParticipant(userID) {
		return nil, 0, errors.NotAuthorized("You are not a participant of this room")
	}

	page = page.Normalize()
	messages, total, err := uc.roomRepo.ListMessages(ctx, roomID, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	if err := uc.roomRepo.MarkRead(ctx, roomID, userID); err != nil {
		logger.Warn("mark read failed %s", logger.Fields("room", roomID, "user", userID, "err", err))
	}
	return messages, total, nil
}
