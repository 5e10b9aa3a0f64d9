package entity

import (
	"errors"
	"fmt"
	"time"
)

type RoomStatus string

const (
	RoomStatusActive            RoomStatus = "active"
	RoomStatusDealConfirmed     RoomStatus = "deal_confirmed"
	RoomStatusPaymentRequested  RoomStatus = "payment_requested"
	RoomStatusPaymentConfirmed  RoomStatus = "payment_confirmed"
	RoomStatusDeliveryCompleted RoomStatus = "delivery_completed"
	RoomStatusExpired           RoomStatus = "expired"
)

var ErrInvalidTransition = errors.New("invalid room state transition")

// roomTransitions is the complete lifecycle graph. Anything not listed is rejected.
var roomTransitions = map[RoomStatus][]RoomStatus{
	RoomStatusActive:            {RoomStatusDealConfirmed, RoomStatusExpired},
	RoomStatusDealConfirmed:     {RoomStatusPaymentRequested, RoomStatusExpired},
	RoomStatusPaymentRequested:  {RoomStatusPaymentConfirmed, RoomStatusExpired},
	RoomStatusPaymentConfirmed:  {RoomStatusDeliveryCompleted},
	RoomStatusDeliveryCompleted: nil,
	RoomStatusExpired:           nil,
}

func (s RoomStatus) Valid() bool {
	_, ok := roomTransitions[s]
	return ok
}

func (s RoomStatus) IsTerminal() bool {
	return s.Valid() && len(roomTransitions[s]) == 0
}

// NextStatuses returns the states reachable from s in one step.
func (s RoomStatus) NextStatuses() []RoomStatus {
	next := roomTransitions[s]
	out := make([]RoomStatus, len(next))
	copy(out, next)
	return out
}

func CanTransition(from, to RoomStatus) bool {
	for _, next := range roomTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// RoomAction is a participant-triggered lifecycle step.
type RoomAction string

const (
	ActionRequestPayment   RoomAction = "request_payment"
	ActionConfirmPayment   RoomAction = "confirm_payment"
	ActionCompleteDelivery RoomAction = "complete_delivery"
)

type ActionRule struct {
	Actor string
	From  RoomStatus
	To    RoomStatus
}

var roomActions = map[RoomAction]ActionRule{
	ActionRequestPayment:   {Actor: RoleBuyer, From: RoomStatusDealConfirmed, To: RoomStatusPaymentRequested},
	ActionConfirmPayment:   {Actor: RoleSupplier, From: RoomStatusPaymentRequested, To: RoomStatusPaymentConfirmed},
	ActionCompleteDelivery: {Actor: RoleSupplier, From: RoomStatusPaymentConfirmed, To: RoomStatusDeliveryCompleted},
}

func LookupAction(action RoomAction) (ActionRule, bool) {
	rule, ok := roomActions[action]
	return rule, ok
}

type ExpiryPolicy string

const (
	// ExpiryFreezeOnConfirm stops the expiry clock once a deal is confirmed.
	ExpiryFreezeOnConfirm ExpiryPolicy = "freeze_on_confirm"
	// ExpireUnsettled lets confirmed rooms expire until payment is confirmed.
	ExpireUnsettled ExpiryPolicy = "expire_unsettled"
)

// ExpirableStatuses lists the room states the watchdog may move to expired.
func (p ExpiryPolicy) ExpirableStatuses() []RoomStatus {
	if p == ExpireUnsettled {
		return []RoomStatus{RoomStatusActive, RoomStatusDealConfirmed, RoomStatusPaymentRequested}
	}
	return []RoomStatus{RoomStatusActive}
}

type ChatRoom struct {
	ID           string     `json:"id" firestore:"id" gorm:"primaryKey;size:64"`
	RFQID        string     `json:"rfqId" firestore:"rfqId" gorm:"size:64;index;not null"`
	QuoteID      string     `json:"quoteId" firestore:"quoteId" gorm:"size:64;uniqueIndex;not null"`
	BuyerID      string     `json:"buyerId" firestore:"buyerId" gorm:"size:128;index;not null"`
	SupplierID   string     `json:"supplierId" firestore:"supplierId" gorm:"size:128;index;not null"`
	Participants []string   `json:"-" firestore:"participants" gorm:"serializer:json"`
	Status       RoomStatus `json:"status" firestore:"status" gorm:"size:32;index;not null"`

	PaymentMethod string `json:"paymentMethod,omitempty" firestore:"paymentMethod,omitempty" gorm:"size:32"`

	LastMessage   string     `json:"lastMessage,omitempty" firestore:"lastMessage,omitempty" gorm:"type:text"`
	LastMessageAt *time.Time `json:"lastMessageAt,omitempty" firestore:"lastMessageAt,omitempty"`

	CreatedAt          time.Time  `json:"createdAt" firestore:"createdAt"`
	ExpiresAt          time.Time  `json:"expiresAt" firestore:"expiresAt" gorm:"index"`
	DealConfirmedAt    *time.Time `json:"dealConfirmedAt,omitempty" firestore:"dealConfirmedAt,omitempty"`
	PaymentRequestedAt *time.Time `json:"paymentRequestedAt,omitempty" firestore:"paymentRequestedAt,omitempty"`
	PaymentConfirmedAt *time.Time `json:"paymentConfirmedAt,omitempty" firestore:"paymentConfirmedAt,omitempty"`
	CompletedAt        *time.Time `json:"completedAt,omitempty" firestore:"completedAt,omitempty"`
	ExpiredAt          *time.Time `json:"expiredAt,omitempty" firestore:"expiredAt,omitempty"`
	UpdatedAt          time.Time  `json:"updatedAt" firestore:"updatedAt"`
}

func (ChatRoom) TableName() string { return "chat_rooms" }

// NewChatRoom opens a negotiation room for a submitted quote. ExpiresAt is
// fixed here and never recomputed.
func NewChatRoom(id string, quote *Quote, createdAt time.Time, window time.Duration) *ChatRoom {
	return &ChatRoom{
		ID:           id,
		RFQID:        quote.RFQID,
		QuoteID:      quote.ID,
		BuyerID:      quote.BuyerID,
		SupplierID:   quote.SupplierID,
		Participants: []string{quote.BuyerID, quote.SupplierID},
		Status:       RoomStatusActive,
		CreatedAt:    createdAt,
		ExpiresAt:    createdAt.Add(window),
		UpdatedAt:    createdAt,
	}
}

// Transition moves the room to the given state and stamps the matching timestamp.
func (r *ChatRoom) Transition(to RoomStatus, at time.Time) error {
	if !CanTransition(r.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.Status, to)
	}

	stamp := at
	switch to {
	case RoomStatusDealConfirmed:
		if r.DealConfirmedAt != nil {
			return fmt.Errorf("%w: deal already confirmed", ErrInvalidTransition)
		}
		r.DealConfirmedAt = &stamp
	case RoomStatusPaymentRequested:
		r.PaymentRequestedAt = &stamp
	case RoomStatusPaymentConfirmed:
		r.PaymentConfirmedAt = &stamp
	case RoomStatusDeliveryCompleted:
		r.CompletedAt = &stamp
	case RoomStatusExpired:
		r.ExpiredAt = &stamp
	}

	r.Status = to
	r.UpdatedAt = at
	return nil
}

// RoleOf resolves the caller's role in this room from the stored participant
// ids. Returns "" for non-participants.
func (r *ChatRoom) RoleOf(userID string) string {
	switch {
	case userID == "":
		return ""
	case userID == r.BuyerID:
		return RoleBuyer
	case userID == r.SupplierID:
		return RoleSupplier
	default:
		return ""
	}
}

func (r *ChatRoom) IsParticipant(userID string) bool {
	return r.RoleOf(userID) != ""
}

// IsReadOnly reports whether chat writes are frozen.
func (r *ChatRoom) IsReadOnly() bool {
	return r.Status == RoomStatusExpired
}

// ExpiryDue reports whether the watchdog should expire the room at now.
func (r *ChatRoom) ExpiryDue(now time.Time, policy ExpiryPolicy) bool {
	if !now.After(r.ExpiresAt) {
		return false
	}
	if policy != ExpireUnsettled && r.DealConfirmedAt != nil {
		return false
	}
	for _, s := range policy.ExpirableStatuses() {
		if r.Status == s {
			return true
		}
	}
	return false
}

// AvailableActions lists the actions the given role may take right now.
func (r *ChatRoom) AvailableActions(role string) []RoomAction {
	actions := []RoomAction{}
	for _, a := range []RoomAction{ActionRequestPayment, ActionConfirmPayment, ActionCompleteDelivery} {
		rule := roomActions[a]
		if rule.Actor == role && rule.From == r.Status {
			actions = append(actions, a)
		}
	}
	return actions
}
