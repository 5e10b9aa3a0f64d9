package entity

import "time"

type OrderStatus string

const (
	OrderStatusPendingPayment   OrderStatus = "pending_payment"
	OrderStatusPaymentRequested OrderStatus = "payment_requested"
	OrderStatusPaid             OrderStatus = "paid"
	OrderStatusCompleted        OrderStatus = "completed"
	OrderStatusCancelled        OrderStatus = "cancelled"
)

// Order mirrors a confirmed deal for fulfilment and reporting. Its status is
// kept in step with the room lifecycle.
type Order struct {
	ID            string      `json:"id" firestore:"id" gorm:"primaryKey;size:64"`
	RoomID        string      `json:"roomId" firestore:"roomId" gorm:"size:64;uniqueIndex;not null"`
	RFQID         string      `json:"rfqId" firestore:"rfqId" gorm:"size:64;index"`
	QuoteID       string      `json:"quoteId" firestore:"quoteId" gorm:"size:64;index"`
	BuyerID       string      `json:"buyerId" firestore:"buyerId" gorm:"size:128;index"`
	SupplierID    string      `json:"supplierId" firestore:"supplierId" gorm:"size:128;index"`
	Amount        int64       `json:"amount" firestore:"amount"`
	Fee           int64       `json:"fee" firestore:"fee"`
	PaymentMethod string      `json:"paymentMethod,omitempty" firestore:"paymentMethod,omitempty" gorm:"size:32"`
	Status        OrderStatus `json:"status" firestore:"status" gorm:"size:32;index;not null"`
	CompletedAt   *time.Time  `json:"completedAt,omitempty" firestore:"completedAt,omitempty"`
	CancelledAt   *time.Time  `json:"cancelledAt,omitempty" firestore:"cancelledAt,omitempty"`
	CreatedAt     time.Time   `json:"createdAt" firestore:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt" firestore:"updatedAt"`
}

func (Order) TableName() string { return "orders" }

// orderStatusForRoom maps room states to the order status they imply.
var orderStatusForRoom = map[RoomStatus]OrderStatus{
	RoomStatusDealConfirmed:     OrderStatusPendingPayment,
	RoomStatusPaymentRequested:  OrderStatusPaymentRequested,
	RoomStatusPaymentConfirmed:  OrderStatusPaid,
	RoomStatusDeliveryCompleted: OrderStatusCompleted,
	RoomStatusExpired:           OrderStatusCancelled,
}

// SyncWithRoom aligns the order with the room's current state.
func (o *Order) SyncWithRoom(room *ChatRoom, at time.Time) {
	status, ok := orderStatusForRoom[room.Status]
	if !ok || o.Status == status {
		return
	}
	o.Status = status
	o.PaymentMethod = room.PaymentMethod
	switch status {
	case OrderStatusCompleted:
		o.CompletedAt = &at
	case OrderStatusCancelled:
		o.CancelledAt = &at
	}
	o.UpdatedAt = at
}
