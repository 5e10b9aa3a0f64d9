package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"b2bmarket/internal/domain/entity"
	"b2bmarket/pkg/errors"
)

func TestSweepExpired_LapsedNegotiation(t *testing.T) {
	env := newTestEnv(t)
	rfq := env.createRFQ(t)
	submitted := env.submitQuote(t, supplierID, rfq.ID, 1_000_000)
	roomID := submitted.ChatRoom.ID

	env.clock.Advance(testExpiryWindow - time.Minute)
	n, err := env.expiry.SweepExpired(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	env.clock.Advance(2 * time.Minute)
	n, err = env.expiry.SweepExpired(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	room := env.reloadRoom(t, roomID)
	assert.Equal(t, entity.RoomStatusExpired, room.Status)
	assert.NotNil(t, room.ExpiredAt)
	assert.Equal(t, entity.QuoteStatusExpired, env.reloadQuote(t, submitted.Quote.ID).Status)
	assert.Equal(t, entity.RFQStatusOpen, env.reloadRFQ(t, rfq.ID).Status)
	assert.Empty(t, env.ledger(t, supplierID), "no fee was taken so nothing is refunded")
	assert.Equal(t, []string{"quote_submitted", entity.EventRoomExpired}, env.systemEvents(t, roomID))
	assert.Contains(t, env.events.Types(), entity.EventRoomExpired)

	_, err = env.rooms.SendMessage(env.ctx, buyerID, roomID, SendMessageInput{Content: "still there?"})
	assertCode(t, err, errors.CodeRoomReadOnly)

	detail, err := env.rooms.GetRoom(env.ctx, supplierID, roomID)
	require.NoError(t, err)
	assert.True(t, detail.ReadOnly)
	assert.Empty(t, detail.AvailableActions)

	n, err = env.expiry.SweepExpired(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestExpireIfDue_ExpiresOnAccess(t *testing.T) {
	env := newTestEnv(t)
	rfq := env.createRFQ(t)
	roomID := env.submitQuote(t, supplierID, rfq.ID, 1_000_000).ChatRoom.ID

	env.clock.Advance(testExpiryWindow + time.Second)

	detail, err := env.rooms.GetRoom(env.ctx, buyerID, roomID)
	require.NoError(t, err)
	assert.Equal(t, entity.RoomStatusExpired, detail.ChatRoom.Status)
	assert.Equal(t, []string{"quote_submitted", entity.EventRoomExpired}, env.systemEvents(t, roomID))
}

func TestSweepExpired_FreezeOnConfirmKeepsDeal(t *testing.T) {
	env := newTestEnv(t)
	room := confirmedDeal(t, env)

	env.clock.Advance(2 * testExpiryWindow)
	n, err := env.expiry.SweepExpired(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, entity.RoomStatusDealConfirmed, env.reloadRoom(t, room.ID).Status)

	_, err = act(env, buyerID, room.ID, entity.ActionRequestPayment)
	assert.NoError(t, err)
}

func TestSweepExpired_ExpireUnsettledRefundsFee(t *testing.T) {
	env := newTestEnv(t, withPolicy(entity.ExpireUnsettled))
	room := confirmedDeal(t, env)
	require.Equal(t, int64(70_000), env.balance(t, supplierID))

	env.clock.Advance(testExpiryWindow)
	n, err := env.expiry.SweepExpired(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Equal(t, int64(100_000), env.balance(t, supplierID))
	entries := env.ledger(t, supplierID)
	require.Len(t, entries, 3)
	refund := entries[2]
	assert.Equal(t, entity.LedgerEntryRefund, refund.Type)
	assert.Equal(t, int64(30_000), refund.Amount)
	assert.Equal(t, int64(3), refund.Sequence)
	assert.Equal(t, room.ID, refund.RoomID)
	assert.Equal(t, entries[1].ID, refund.Reference)

	order, err := env.orders.GetByRoomID(env.ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCancelled, order.Status)

	_, expired, err := env.expiry.expire(env.ctx, room.ID)
	require.NoError(t, err)
	assert.False(t, expired)
	assert.Len(t, env.ledger(t, supplierID), 3)
}

func TestSweepExpired_ExpireUnsettledSparesPaidDeal(t *testing.T) {
	env := newTestEnv(t, withPolicy(entity.ExpireUnsettled))
	room := confirmedDeal(t, env)
	_, err := act(env, buyerID, room.ID, entity.ActionRequestPayment)
	require.NoError(t, err)
	_, err = act(env, supplierID, room.ID, entity.ActionConfirmPayment)
	require.NoError(t, err)

	env.clock.Advance(2 * testExpiryWindow)
	n, err := env.expiry.SweepExpired(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, entity.RoomStatusPaymentConfirmed, env.reloadRoom(t, room.ID).Status)
	assert.Equal(t, int64(70_000), env.balance(t, supplierID))
}

func TestSweepExpired_SkipsWhenLeaseHeld(t *testing.T) {
	env := newTestEnv(t)
	rfq := env.createRFQ(t)
	roomID := env.submitQuote(t, supplierID, rfq.ID, 1_000_000).ChatRoom.ID
	env.clock.Advance(testExpiryWindow + time.Minute)

	release, ok, err := env.lock.TryAcquire(env.ctx, sweepLockKey, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	n, err := env.expiry.SweepExpired(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, entity.RoomStatusActive, env.reloadRoom(t, roomID).Status)

	release()
	n, err = env.expiry.SweepExpired(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
