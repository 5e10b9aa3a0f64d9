package usecase

import (
	"context"
	"time"

	"b2bmarket/internal/domain/entity"
	"b2bmarket/internal/domain/repository"
	"b2bmarket/pkg/errors"
	"b2bmarket/pkg/logger"
)

const sweepLockKey = "expiry-sweep"

type ExpiryConfig struct {
	Policy  entity.ExpiryPolicy
	Batch   int
	LockTTL time.Duration
}

// ExpiryUseCase moves lapsed negotiation rooms to expired and refunds any
// fee taken for them. It runs both on access and from a periodic sweep.
type ExpiryUseCase struct {
	store     repository.DealStore
	roomRepo  repository.ChatRoomRepository
	cfg       ExpiryConfig
	lock      SweepLock
	publisher DealEventPublisher
	now       func() time.Time
}

func NewExpiryUseCase(
	store repository.DealStore,
	roomRepo repository.ChatRoomRepository,
	cfg ExpiryConfig,
	lock SweepLock,
	publisher DealEventPublisher,
) *ExpiryUseCase {
	if cfg.Policy == "" {
		cfg.Policy = entity.ExpiryFreezeOnConfirm
	}
	if cfg.Batch <= 0 {
		cfg.Batch = 100
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = time.Minute
	}
	return &ExpiryUseCase{
		store:     store,
		roomRepo:  roomRepo,
		cfg:       cfg,
		lock:      lock,
		publisher: publisher,
		now:       utcNow,
	}
}

func (uc *ExpiryUseCase) Policy() entity.ExpiryPolicy {
	return uc.cfg.Policy
}

// ExpireIfDue returns the room, expiring it first when its deadline has passed.
func (uc *ExpiryUseCase) ExpireIfDue(ctx context.Context, roomID string) (*entity.ChatRoom, error) {
	room, err := uc.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.ExpiryDue(uc.now(), uc.cfg.Policy) {
		return room, nil
	}
	room, _, err = uc.expire(ctx, roomID)
	return room, err
}

// expire runs the expiry transaction and reports whether this call performed it.
func (uc *ExpiryUseCase) expire(ctx context.Context, roomID string) (*entity.ChatRoom, bool, error) {
	var (
		room    *entity.ChatRoom
		expired bool
		refund  *entity.CreditLedgerEntry
		from    entity.RoomStatus
	)
	err := uc.store.RunInTransaction(ctx, func(ctx context.Context, tx repository.DealTx) error {
		expired, refund = false, nil

		var err error
		room, err = tx.GetChatRoom(roomID)
		if err != nil {
			return err
		}
		now := uc.now()
		if !room.ExpiryDue(now, uc.cfg.Policy) {
			return nil
		}
		from = room.Status

		quote, err := tx.GetQuote(room.QuoteID)
		if err != nil && !errors.Is(err, errors.CodeNotFound) {
			return err
		}
		use, err := tx.FindLedgerEntryByRoom(room.ID, entity.LedgerEntryUse)
		if err != nil {
			return err
		}
		var account *entity.CreditAccount
		if use != nil {
			prior, err := tx.FindLedgerEntryByRoom(room.ID, entity.LedgerEntryRefund)
			if err != nil {
				return err
			}
			if prior == nil {
				account, err = tx.GetCreditAccount(room.SupplierID)
				if err != nil {
					return err
				}
			}
		}
		order, err := tx.GetOrderByRoom(room.ID)
		if err != nil {
			return err
		}

		// Writes start here.
		if err := room.Transition(entity.RoomStatusExpired, now); err != nil {
			return errors.InvalidStateTransition(err.Error())
		}
		content := "This room has expired and is now read-only."
		if account != nil {
			content = "This room has expired and is now read-only. The platform fee has been refunded."
		}
		msg := newSystemMessage(room.ID, entity.EventRoomExpired, content, now)
		applyLastMessage(room, msg)
		if err := tx.SaveChatRoom(room); err != nil {
			return err
		}

		if quote != nil && quote.Status == entity.QuoteStatusPending {
			quote.Status = entity.QuoteStatusExpired
			quote.UpdatedAt = now
			if err := tx.SaveQuote(quote); err != nil {
				return err
			}
		}
		if account != nil {
			refund, err = appendLedgerEntry(tx, account, ledgerPosting{
				SupplierID:  room.SupplierID,
				Amount:      -use.Amount,
				Type:        entity.LedgerEntryRefund,
				Description: "Refund of platform fee for expired deal",
				RoomID:      room.ID,
				Reference:   use.ID,
			}, now)
			if err != nil {
				return err
			}
		}
		if order != nil && order.Status != entity.OrderStatusCompleted && order.Status != entity.OrderStatusCancelled {
			order.SyncWithRoom(room, now)
			if err := tx.SaveOrder(order); err != nil {
				return err
			}
		}
		if err := tx.CreateMessage(msg); err != nil {
			return err
		}
		expired = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if expired {
		logger.LogTransition(room.ID, string(from), string(entity.RoomStatusExpired), entity.SystemSenderID)
		if refund != nil {
			logger.Info("fee refunded on expiry %s", logger.Fields("room", room.ID, "amount", refund.Amount, "balance", refund.BalanceAfter))
		}
		publish(ctx, uc.publisher, entity.DealEvent{
			Type:       entity.EventRoomExpired,
			RoomID:     room.ID,
			RFQID:      room.RFQID,
			QuoteID:    room.QuoteID,
			Status:     room.Status,
			ActorID:    entity.SystemSenderID,
			Recipients: participants(room),
			OccurredAt: *room.ExpiredAt,
		})
	}
	return room, expired, nil
}

// SweepExpired expires one batch of due rooms. Only the instance holding the
// sweep lease does any work.
func (uc *ExpiryUseCase) SweepExpired(ctx context.Context) (int, error) {
	if uc.lock != nil {
		release, ok, err := uc.lock.TryAcquire(ctx, sweepLockKey, uc.cfg.LockTTL)
		if err != nil {
			return 0, err
		}
		if !ok {
			logger.Debug("expiry sweep skipped, lease held elsewhere")
			return 0, nil
		}
		defer release()
	}

	now := uc.now()
	rooms, err := uc.roomRepo.ListDueForExpiry(ctx, uc.cfg.Policy.ExpirableStatuses(), now, uc.cfg.Batch)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, room := range rooms {
		if !room.ExpiryDue(now, uc.cfg.Policy) {
			continue
		}
		_, expired, err := uc.expire(ctx, room.ID)
		if err != nil {
			logger.Error("failed to expire room %s: %v", room.ID, err)
			continue
		}
		if expired {
			count++
		}
	}

	if count > 0 {
		logger.Info("expiry sweep done %s", logger.Fields("expired", count, "scanned", len(rooms)))
	}
	return count, nil
}

func (uc *ExpiryUseCase) StartExpiryJob(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)

	go func() {
		for {
			select {
			case <-ticker.C:
				if _, err := uc.SweepExpired(ctx); err != nil {
					logger.Error("expiry sweep error: %v", err)
				}
			case <-ctx.Done():
				ticker.Stop()
				return
			}
		}
	}()

	logger.Info("expiry job started %s", logger.Fields("interval", interval, "policy", uc.cfg.Policy))
}
