package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOrder_SyncWithRoom(t *testing.T) {
	room := newTestRoom()
	order := &Order{ID: "o1", RoomID: room.ID, Status: OrderStatusPendingPayment}

	room.Status = RoomStatusPaymentRequested
	room.PaymentMethod = "bank_transfer"
	order.SyncWithRoom(room, t0.Add(time.Hour))
	assert.Equal(t, OrderStatusPaymentRequested, order.Status)
	assert.Equal(t, "bank_transfer", order.PaymentMethod)

	room.Status = RoomStatusDeliveryCompleted
	done := t0.Add(2 * time.Hour)
	order.SyncWithRoom(room, done)
	assert.Equal(t, OrderStatusCompleted, order.Status)
	if assert.NotNil(t, order.CompletedAt) {
		assert.Equal(t, done, *order.CompletedAt)
	}
	assert.Nil(t, order.CancelledAt)
}

func TestOrder_SyncWithExpiredRoomCancels(t *testing.T) {
	room := newTestRoom()
	room.Status = RoomStatusExpired
	order := &Order{Status: OrderStatusPendingPayment}

	order.SyncWithRoom(room, t0)

	assert.Equal(t, OrderStatusCancelled, order.Status)
	assert.NotNil(t, order.CancelledAt)
}

func TestOrder_SyncIgnoresActiveRoom(t *testing.T) {
	room := newTestRoom()
	order := &Order{Status: OrderStatusPendingPayment}

	order.SyncWithRoom(room, t0)

	assert.Equal(t, OrderStatusPendingPayment, order.Status)
	assert.True(t, order.UpdatedAt.IsZero())
}
