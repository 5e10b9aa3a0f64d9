package entity

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestRoom() *ChatRoom {
	quote := &Quote{ID: "q1", RFQID: "r1", BuyerID: "buyer", SupplierID: "supplier"}
	return NewChatRoom("room1", quote, t0, 72*time.Hour)
}

func TestNewChatRoom(t *testing.T) {
	room := newTestRoom()

	assert.Equal(t, RoomStatusActive, room.Status)
	assert.Equal(t, t0.Add(72*time.Hour), room.ExpiresAt)
	assert.Equal(t, []string{"buyer", "supplier"}, room.Participants)
	assert.Nil(t, room.DealConfirmedAt)
}

func TestChatRoom_FullLifecycle(t *testing.T) {
	room := newTestRoom()
	steps := []RoomStatus{
		RoomStatusDealConfirmed,
		RoomStatusPaymentRequested,
		RoomStatusPaymentConfirmed,
		RoomStatusDeliveryCompleted,
	}

	for i, to := range steps {
		at := t0.Add(time.Duration(i+1) * time.Hour)
		require.NoError(t, room.Transition(to, at))
		assert.Equal(t, to, room.Status)
		assert.Equal(t, at, room.UpdatedAt)
	}

	require.NotNil(t, room.DealConfirmedAt)
	require.NotNil(t, room.PaymentRequestedAt)
	require.NotNil(t, room.PaymentConfirmedAt)
	require.NotNil(t, room.CompletedAt)
	assert.Equal(t, t0.Add(time.Hour), *room.DealConfirmedAt)
	assert.True(t, room.Status.IsTerminal())
}

func TestChatRoom_RejectsSkippedAndBackwardTransitions(t *testing.T) {
	tests := []struct {
		name string
		from RoomStatus
		to   RoomStatus
	}{
		{"skip to payment requested", RoomStatusActive, RoomStatusPaymentRequested},
		{"skip confirmation", RoomStatusDealConfirmed, RoomStatusPaymentConfirmed},
		{"backwards", RoomStatusPaymentRequested, RoomStatusDealConfirmed},
		{"out of completed", RoomStatusDeliveryCompleted, RoomStatusExpired},
		{"out of expired", RoomStatusExpired, RoomStatusActive},
		{"paid room cannot expire", RoomStatusPaymentConfirmed, RoomStatusExpired},
		{"self loop", RoomStatusDealConfirmed, RoomStatusDealConfirmed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			room := newTestRoom()
			room.Status = tt.from

			err := room.Transition(tt.to, t0)

			assert.True(t, errors.Is(err, ErrInvalidTransition))
			assert.Equal(t, tt.from, room.Status)
		})
	}
}

func TestChatRoom_DealConfirmedStampedOnce(t *testing.T) {
	room := newTestRoom()
	confirmed := t0.Add(time.Hour)
	room.DealConfirmedAt = &confirmed

	err := room.Transition(RoomStatusDealConfirmed, t0.Add(2*time.Hour))

	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, confirmed, *room.DealConfirmedAt)
	assert.Equal(t, RoomStatusActive, room.Status)
}

func TestChatRoom_RoleOf(t *testing.T) {
	room := newTestRoom()

	assert.Equal(t, RoleBuyer, room.RoleOf("buyer"))
	assert.Equal(t, RoleSupplier, room.RoleOf("supplier"))
	assert.Equal(t, "", room.RoleOf("stranger"))
	assert.Equal(t, "", room.RoleOf(""))
	assert.False(t, room.IsParticipant("stranger"))
}

func TestChatRoom_AvailableActions(t *testing.T) {
	tests := []struct {
		status   RoomStatus
		buyer    []RoomAction
		supplier []RoomAction
	}{
		{RoomStatusActive, []RoomAction{}, []RoomAction{}},
		{RoomStatusDealConfirmed, []RoomAction{ActionRequestPayment}, []RoomAction{}},
		{RoomStatusPaymentRequested, []RoomAction{}, []RoomAction{ActionConfirmPayment}},
		{RoomStatusPaymentConfirmed, []RoomAction{}, []RoomAction{ActionCompleteDelivery}},
		{RoomStatusDeliveryCompleted, []RoomAction{}, []RoomAction{}},
		{RoomStatusExpired, []RoomAction{}, []RoomAction{}},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			room := newTestRoom()
			room.Status = tt.status

			assert.Equal(t, tt.buyer, room.AvailableActions(RoleBuyer))
			assert.Equal(t, tt.supplier, room.AvailableActions(RoleSupplier))
			assert.Equal(t, []RoomAction{}, room.AvailableActions(""))
		})
	}
}

func TestChatRoom_ExpiryDue(t *testing.T) {
	afterDeadline := t0.Add(73 * time.Hour)
	confirmedAt := t0.Add(time.Hour)

	tests := []struct {
		name      string
		status    RoomStatus
		confirmed bool
		now       time.Time
		policy    ExpiryPolicy
		want      bool
	}{
		{"active before deadline", RoomStatusActive, false, t0.Add(time.Hour), ExpiryFreezeOnConfirm, false},
		{"active exactly at deadline", RoomStatusActive, false, t0.Add(72 * time.Hour), ExpiryFreezeOnConfirm, false},
		{"active after deadline", RoomStatusActive, false, afterDeadline, ExpiryFreezeOnConfirm, true},
		{"confirmed is frozen", RoomStatusDealConfirmed, true, afterDeadline, ExpiryFreezeOnConfirm, false},
		{"confirmed expires when unsettled", RoomStatusDealConfirmed, true, afterDeadline, ExpireUnsettled, true},
		{"payment requested expires when unsettled", RoomStatusPaymentRequested, true, afterDeadline, ExpireUnsettled, true},
		{"paid never expires", RoomStatusPaymentConfirmed, true, afterDeadline, ExpireUnsettled, false},
		{"already expired", RoomStatusExpired, false, afterDeadline, ExpireUnsettled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			room := newTestRoom()
			room.Status = tt.status
			if tt.confirmed {
				room.DealConfirmedAt = &confirmedAt
			}

			assert.Equal(t, tt.want, room.ExpiryDue(tt.now, tt.policy))
		})
	}
}

func TestLookupAction(t *testing.T) {
	rule, ok := LookupAction(ActionConfirmPayment)
	require.True(t, ok)
	assert.Equal(t, RoleSupplier, rule.Actor)
	assert.Equal(t, RoomStatusPaymentRequested, rule.From)
	assert.Equal(t, RoomStatusPaymentConfirmed, rule.To)

	_, ok = LookupAction("refund")
	assert.False(t, ok)
}

func TestRoomStatus_Valid(t *testing.T) {
	assert.True(t, RoomStatusExpired.Valid())
	assert.False(t, RoomStatus("archived").Valid())
	assert.ElementsMatch(t, []RoomStatus{RoomStatusDealConfirmed, RoomStatusExpired}, RoomStatusActive.NextStatuses())
}
