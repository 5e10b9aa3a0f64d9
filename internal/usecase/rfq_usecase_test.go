package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"b2bmarket/internal/domain/entity"
	"b2bmarket/pkg/errors"
)

func TestCreateRFQ(t *testing.T) {
	env := newTestEnv(t)
	due := env.clock.Now().Add(14 * 24 * time.Hour)

	rfq, err := env.rfqs.CreateRFQ(env.ctx, buyerID, CreateRFQInput{
		Title:    "  Cardboard boxes  ",
		Quantity: 10_000,
		Unit:     "ea",
		Budget:   3_000_000,
		DueDate:  &due,
	})
	require.NoError(t, err)
	assert.Equal(t, "Cardboard boxes", rfq.Title)
	assert.Equal(t, entity.RFQStatusOpen, rfq.Status)
	assert.Equal(t, buyerID, rfq.BuyerID)

	got, err := env.rfqs.GetRFQ(env.ctx, rfq.ID)
	require.NoError(t, err)
	assert.Equal(t, rfq.Title, got.Title)
}

func TestCreateRFQ_Validation(t *testing.T) {
	env := newTestEnv(t)
	past := env.clock.Now().Add(-time.Hour)

	tests := []struct {
		name  string
		input CreateRFQInput
	}{
		{"blank title", CreateRFQInput{Title: "   "}},
		{"negative quantity", CreateRFQInput{Title: "x", Quantity: -1}},
		{"negative budget", CreateRFQInput{Title: "x", Budget: -1}},
		{"due date passed", CreateRFQInput{Title: "x", DueDate: &past}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.rfqs.CreateRFQ(env.ctx, buyerID, tt.input)
			assertCode(t, err, errors.CodeBadRequest)
		})
	}
}

func TestListRFQs(t *testing.T) {
	env := newTestEnv(t)
	first := env.createRFQ(t)
	env.clock.Advance(time.Minute)
	second := env.createRFQ(t)
	_, err := env.rfqs.CancelRFQ(env.ctx, buyerID, first.ID)
	require.NoError(t, err)

	mine, total, err := env.rfqs.ListMyRFQs(env.ctx, buyerID, allPages)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, second.ID, mine[0].ID)

	open, total, err := env.rfqs.ListOpenRFQs(env.ctx, allPages)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, second.ID, open[0].ID)
}

func TestCancelRFQ_RejectsPendingQuotes(t *testing.T) {
	env := newTestEnv(t)
	rfq := env.createRFQ(t)
	q1 := env.submitQuote(t, supplierID, rfq.ID, 900_000)
	q2 := env.submitQuote(t, supplier2ID, rfq.ID, 950_000)

	cancelled, err := env.rfqs.CancelRFQ(env.ctx, buyerID, rfq.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RFQStatusCancelled, cancelled.Status)

	for _, id := range []string{q1.Quote.ID, q2.Quote.ID} {
		q := env.reloadQuote(t, id)
		assert.Equal(t, entity.QuoteStatusRejected, q.Status)
		assert.NotNil(t, q.RejectedAt)
	}

	_, err = env.quotes.SubmitQuote(env.ctx, supplierID, rfq.ID, SubmitQuoteInput{TotalPrice: 800_000})
	assert.Error(t, err)
}

func TestCancelRFQ_Guards(t *testing.T) {
	env := newTestEnv(t)
	rfq := env.createRFQ(t)

	_, err := env.rfqs.CancelRFQ(env.ctx, strangerID, rfq.ID)
	assertCode(t, err, errors.CodeNotAuthorized)

	_, err = env.rfqs.CancelRFQ(env.ctx, buyerID, rfq.ID)
	require.NoError(t, err)

	_, err = env.rfqs.CancelRFQ(env.ctx, buyerID, rfq.ID)
	assertCode(t, err, errors.CodeInvalidStateTransition)

	_, err = env.rfqs.CancelRFQ(env.ctx, buyerID, "missing")
	assertCode(t, err, errors.CodeNotFound)
}
