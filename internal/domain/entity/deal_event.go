package entity

import "time"

const (
	EventDealConfirmed     = "deal_confirmed"
	EventPaymentRequested  = "payment_requested"
	EventPaymentConfirmed  = "payment_confirmed"
	EventDeliveryCompleted = "delivery_completed"
	EventRoomExpired       = "room_expired"
	EventMessageCreated    = "message_created"
	EventCreditCharged     = "credit_charged"
)

// DealEvent is published after a lifecycle change commits. Recipients are the
// user ids that should be notified.
type DealEvent struct {
	Type       string      `json:"type"`
	RoomID     string      `json:"roomId,omitempty"`
	RFQID      string      `json:"rfqId,omitempty"`
	QuoteID    string      `json:"quoteId,omitempty"`
	Status     RoomStatus  `json:"status,omitempty"`
	ActorID    string      `json:"actorId,omitempty"`
	Recipients []string    `json:"recipients"`
	Payload    interface{} `json:"payload,omitempty"`
	OccurredAt time.Time   `json:"occurredAt"`
}

// EventForTransition maps a room state to the event announcing it.
func EventForTransition(to RoomStatus) string {
	switch to {
	case RoomStatusDealConfirmed:
		return EventDealConfirmed
	case RoomStatusPaymentRequested:
		return EventPaymentRequested
	case RoomStatusPaymentConfirmed:
		return EventPaymentConfirmed
	case RoomStatusDeliveryCompleted:
		return EventDeliveryCompleted
	case RoomStatusExpired:
		return EventRoomExpired
	}
	return ""
}
