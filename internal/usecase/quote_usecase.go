package usecase

import (
	"context"
	"fmt"
	"time"

	"b2bmarket/internal/domain/entity"
	"b2bmarket/internal/domain/repository"
	"b2bmarket/internal/domain/service"
	"b2bmarket/pkg/errors"
	"b2bmarket/pkg/logger"
	"b2bmarket/pkg/utils"
)

type QuoteUseCase struct {
	store        repository.DealStore
	quoteRepo    repository.QuoteRepository
	rfqRepo      repository.RFQRepository
	fees         *service.FeePolicy
	expiryWindow time.Duration
	publisher    DealEventPublisher
	now          func() time.Time
}

func NewQuoteUseCase(
	store repository.DealStore,
	quoteRepo repository.QuoteRepository,
	rfqRepo repository.RFQRepository,
	fees *service.FeePolicy,
	expiryWindow time.Duration,
	publisher DealEventPublisher,
) *QuoteUseCase {
	return &QuoteUseCase{
		store:        store,
		quoteRepo:    quoteRepo,
		rfqRepo:      rfqRepo,
		fees:         fees,
		expiryWindow: expiryWindow,
		publisher:    publisher,
		now:          utcNow,
	}
}

type SubmitQuoteInput struct {
	TotalPrice   int64
	DeliveryDate *time.Time
	Note         string
	Attachments  []string
}

type SubmitQuoteResult struct {
	Quote    *entity.Quote    `json:"quote"`
	ChatRoom *entity.ChatRoom `json:"chatRoom"`
}

type AcceptQuoteResult struct {
	ChatRoom     *entity.ChatRoom `json:"chatRoom"`
	Quote        *entity.Quote    `json:"quote"`
	Order        *entity.Order    `json:"order"`
	Fee          int64            `json:"fee"`
	BalanceAfter int64            `json:"balanceAfter"`
}

// SubmitQuote records a supplier's offer and opens the negotiation room for it.
func (uc *QuoteUseCase) SubmitQuote(ctx context.Context, supplierID, rfqID string, input SubmitQuoteInput) (*SubmitQuoteResult, error) {
	if input.TotalPrice <= 0 {
		return nil, errors.BadRequest("Total price must be positive", nil)
	}
	if input.TotalPrice > service.MaxQuotePrice {
		return nil, errors.BadRequest("Total price is too large", nil)
	}

	var result *SubmitQuoteResult
	err := uc.store.RunInTransaction(ctx, func(ctx context.Context, tx repository.DealTx) error {
		rfq, err := tx.GetRFQ(rfqID)
		if err != nil {
			return err
		}
		if rfq.BuyerID == supplierID {
			return errors.BadRequest("You cannot quote on your own RFQ", nil)
		}
		if rfq.Status != entity.RFQStatusOpen {
			return errors.InvalidStateTransition("RFQ is not accepting quotes")
		}
		existing, err := tx.ListQuotesByRFQ(rfqID)
		if err != nil {
			return err
		}
		for _, q := range existing {
			if q.SupplierID == supplierID && q.Status == entity.QuoteStatusPending {
				return errors.Conflict("You already have a pending quote for this RFQ")
			}
		}

		now := uc.now()
		quote := &entity.Quote{
			ID:           newID(),
			RFQID:        rfq.ID,
			SupplierID:   supplierID,
			BuyerID:      rfq.BuyerID,
			TotalPrice:   input.TotalPrice,
			DeliveryDate: input.DeliveryDate,
			Note:         input.Note,
			Attachments:  input.Attachments,
			Status:       entity.QuoteStatusPending,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		room := entity.NewChatRoom(newID(), quote, now, uc.expiryWindow)
		msg := newSystemMessage(room.ID, "quote_submitted",
			fmt.Sprintf("Quote submitted: %d KRW. This room expires at %s.", quote.TotalPrice, room.ExpiresAt.UTC().Format(time.RFC3339)), now)
		applyLastMessage(room, msg)

		if err := tx.SaveQuote(quote); err != nil {
			return err
		}
		if err := tx.SaveChatRoom(room); err != nil {
			return err
		}
		if err := tx.CreateMessage(msg); err != nil {
			return err
		}
		result = &SubmitQuoteResult{Quote: quote, ChatRoom: room}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("quote submitted %s", logger.Fields("quote", result.Quote.ID, "rfq", rfqID, "supplier", supplierID, "room", result.ChatRoom.ID))
	publish(ctx, uc.publisher, entity.DealEvent{
		Type:       entity.EventMessageCreated,
		RoomID:     result.ChatRoom.ID,
		RFQID:      rfqID,
		QuoteID:    result.Quote.ID,
		Status:     result.ChatRoom.Status,
		ActorID:    supplierID,
		Recipients: participants(result.ChatRoom),
		OccurredAt: result.Quote.CreatedAt,
	})
	return result, nil
}

// ListQuotesForRFQ is visible to the RFQ owner only.
func (uc *QuoteUseCase) ListQuotesForRFQ(ctx context.Context, buyerID, rfqID string) ([]*entity.Quote, error) {
	rfq, err := uc.rfqRepo.GetByID(ctx, rfqID)
	if err != nil {
		return nil, err
	}
	if rfq.BuyerID != buyerID {
		return nil, errors.NotAuthorized("Only the RFQ owner can view its quotes")
	}
	return uc.quoteRepo.ListByRFQ(ctx, rfqID)
}

func (uc *QuoteUseCase) ListMyQuotes(ctx context.Context, supplierID string, page utils.Pagination) ([]*entity.Quote, int64, error) {
	page = page.Normalize()
	return uc.quoteRepo.ListBySupplier(ctx, supplierID, page.Limit, page.Offset())
}

// AcceptQuote confirms a deal. Every precondition, including the supplier's
// credit, is checked before the first write, so a failure leaves quote, RFQ,
// room and ledger untouched.
func (uc *QuoteUseCase) AcceptQuote(ctx context.Context, quoteID, buyerID string) (*AcceptQuoteResult, error) {
	var result *AcceptQuoteResult
	err := uc.store.RunInTransaction(ctx, func(ctx context.Context, tx repository.DealTx) error {
		result = nil

		quote, err := tx.GetQuote(quoteID)
		if err != nil {
			return err
		}
		rfq, err := tx.GetRFQ(quote.RFQID)
		if err != nil {
			return err
		}
		if rfq.BuyerID != buyerID {
			return errors.NotAuthorized("Only the RFQ owner can accept quotes")
		}
		if quote.RFQID != rfq.ID || quote.BuyerID != rfq.BuyerID || quote.SupplierID == "" {
			return errors.InsufficientContext("Quote does not match its RFQ")
		}
		switch quote.Status {
		case entity.QuoteStatusPending:
		case entity.QuoteStatusAccepted:
			return errors.AlreadyProcessed("Quote has already been accepted")
		default:
			return errors.QuoteNotPending(string(quote.Status))
		}
		if rfq.Status != entity.RFQStatusOpen {
			return errors.InvalidStateTransition("RFQ is no longer open")
		}

		siblings, err := tx.ListQuotesByRFQ(rfq.ID)
		if err != nil {
			return err
		}
		room, err := tx.FindChatRoomByQuote(quote.ID)
		if err != nil {
			return err
		}
		now := uc.now()
		if room != nil {
			if room.BuyerID != quote.BuyerID || room.SupplierID != quote.SupplierID {
				return errors.InsufficientContext("Room participants do not match the quote")
			}
			if room.Status != entity.RoomStatusActive {
				return errors.InvalidStateTransition(fmt.Sprintf("Room is %s", room.Status))
			}
			if now.After(room.ExpiresAt) {
				return errors.InvalidStateTransition("Negotiation room has expired")
			}
		}
		account, err := tx.GetCreditAccount(quote.SupplierID)
		if err != nil {
			return err
		}
		order, err := tx.GetOrderByRoom(roomIDOf(room))
		if err != nil {
			return err
		}

		fee := uc.fees.FeeFor(quote.TotalPrice)
		if account.Balance < fee {
			return errors.InsufficientCredit(fee, account.Balance)
		}

		// Writes start here.
		quote.Status = entity.QuoteStatusAccepted
		quote.AcceptedAt = &now
		quote.UpdatedAt = now
		if err := tx.SaveQuote(quote); err != nil {
			return err
		}
		for _, q := range siblings {
			if q.ID == quote.ID || q.Status != entity.QuoteStatusPending {
				continue
			}
			q.Status = entity.QuoteStatusRejected
			q.RejectedAt = &now
			q.UpdatedAt = now
			if err := tx.SaveQuote(q); err != nil {
				return err
			}
		}
		rfq.Status = entity.RFQStatusInProgress
		rfq.UpdatedAt = now
		if err := tx.SaveRFQ(rfq); err != nil {
			return err
		}

		if room == nil {
			room = entity.NewChatRoom(newID(), quote, now, uc.expiryWindow)
		}
		if err := room.Transition(entity.RoomStatusDealConfirmed, now); err != nil {
			return errors.InvalidStateTransition(err.Error())
		}

		balanceAfter := account.Balance
		if fee > 0 {
			entry, err := appendLedgerEntry(tx, account, ledgerPosting{
				SupplierID:  quote.SupplierID,
				Amount:      -fee,
				Type:        entity.LedgerEntryUse,
				Description: fmt.Sprintf("Platform fee for deal on RFQ %q", rfq.Title),
				RoomID:      room.ID,
				Reference:   quote.ID,
			}, now)
			if err != nil {
				return err
			}
			balanceAfter = entry.BalanceAfter
		}

		if order == nil {
			order = &entity.Order{
				ID:         newID(),
				RoomID:     room.ID,
				RFQID:      rfq.ID,
				QuoteID:    quote.ID,
				BuyerID:    quote.BuyerID,
				SupplierID: quote.SupplierID,
				Amount:     quote.TotalPrice,
				CreatedAt:  now,
			}
		}
		order.Fee = fee
		order.Status = entity.OrderStatusPendingPayment
		order.UpdatedAt = now
		if err := tx.SaveOrder(order); err != nil {
			return err
		}

		msg := newSystemMessage(room.ID, entity.EventDealConfirmed,
			fmt.Sprintf("Deal confirmed at %d KRW. The buyer can now request payment.", quote.TotalPrice), now)
		applyLastMessage(room, msg)
		if err := tx.SaveChatRoom(room); err != nil {
			return err
		}
		if err := tx.CreateMessage(msg); err != nil {
			return err
		}

		result = &AcceptQuoteResult{
			ChatRoom:     room,
			Quote:        quote,
			Order:        order,
			Fee:          fee,
			BalanceAfter: balanceAfter,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.LogTransition(result.ChatRoom.ID, string(entity.RoomStatusActive), string(entity.RoomStatusDealConfirmed), buyerID)
	logger.Info("quote accepted %s", logger.Fields("quote", quoteID, "fee", result.Fee, "balance", result.BalanceAfter))
	publish(ctx, uc.publisher, entity.DealEvent{
		Type:       entity.EventDealConfirmed,
		RoomID:     result.ChatRoom.ID,
		RFQID:      result.Quote.RFQID,
		QuoteID:    result.Quote.ID,
		Status:     result.ChatRoom.Status,
		ActorID:    buyerID,
		Recipients: participants(result.ChatRoom),
		OccurredAt: uc.now(),
	})
	return result, nil
}

// RejectQuote declines a pending quote. Its room is left to expire.
func (uc *QuoteUseCase) RejectQuote(ctx context.Context, quoteID, buyerID string) (*entity.Quote, error) {
	var quote *entity.Quote
	err := uc.store.RunInTransaction(ctx, func(ctx context.Context, tx repository.DealTx) error {
		var err error
		quote, err = tx.GetQuote(quoteID)
		if err != nil {
			return err
		}
		if quote.BuyerID != buyerID {
			return errors.NotAuthorized("Only the RFQ owner can reject quotes")
		}
		if quote.Status != entity.QuoteStatusPending {
			return errors.QuoteNotPending(string(quote.Status))
		}

		now := uc.now()
		quote.Status = entity.QuoteStatusRejected
		quote.RejectedAt = &now
		quote.UpdatedAt = now
		return tx.SaveQuote(quote)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("quote rejected %s", logger.Fields("quote", quoteID, "buyer", buyerID))
	return quote, nil
}

func roomIDOf(room *entity.ChatRoom) string {
	if room == nil {
		return ""
	}
	return room.ID
}
