package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"b2bmarket/internal/domain/entity"
	"b2bmarket/internal/domain/repository"
	"b2bmarket/pkg/errors"
	"b2bmarket/pkg/logger"
	"b2bmarket/pkg/utils"
)

type CreditUseCase struct {
	store      repository.DealStore
	creditRepo repository.CreditRepository
	publisher  DealEventPublisher
	now        func() time.Time
}

func NewCreditUseCase(
	store repository.DealStore,
	creditRepo repository.CreditRepository,
	publisher DealEventPublisher,
) *CreditUseCase {
	return &CreditUseCase{
		store:      store,
		creditRepo: creditRepo,
		publisher:  publisher,
		now:        utcNow,
	}
}

type RequestChargeInput struct {
	Amount        int64
	DepositorName string
}

type ProcessChargeInput struct {
	AdminNotes string
}

func (uc *CreditUseCase) post(ctx context.Context, p ledgerPosting) (*entity.CreditLedgerEntry, error) {
	if p.SupplierID == "" {
		return nil, errors.BadRequest("Supplier is required", nil)
	}

	var entry *entity.CreditLedgerEntry
	err := uc.store.RunInTransaction(ctx, func(ctx context.Context, tx repository.DealTx) error {
		account, err := tx.GetCreditAccount(p.SupplierID)
		if err != nil {
			return err
		}
		entry, err = appendLedgerEntry(tx, account, p, uc.now())
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info("ledger entry posted %s", logger.Fields(
		"supplier", entry.SupplierID, "type", entry.Type, "amount", entry.Amount,
		"seq", entry.Sequence, "balance", entry.BalanceAfter))
	return entry, nil
}

// Debit removes amount from the supplier's balance as a "use" entry.
func (uc *CreditUseCase) Debit(ctx context.Context, supplierID string, amount int64, reason string) (*entity.CreditLedgerEntry, error) {
	if amount <= 0 {
		return nil, errors.BadRequest("Amount must be positive", nil)
	}
	return uc.post(ctx, ledgerPosting{
		SupplierID:  supplierID,
		Amount:      -amount,
		Type:        entity.LedgerEntryUse,
		Description: reason,
	})
}

// Credit tops the balance up with a "charge" entry.
func (uc *CreditUseCase) Credit(ctx context.Context, supplierID string, amount int64, reason string) (*entity.CreditLedgerEntry, error) {
	if amount <= 0 {
		return nil, errors.BadRequest("Amount must be positive", nil)
	}
	return uc.post(ctx, ledgerPosting{
		SupplierID:  supplierID,
		Amount:      amount,
		Type:        entity.LedgerEntryCharge,
		Description: reason,
	})
}

// Refund returns a previous debit with a "refund" entry.
func (uc *CreditUseCase) Refund(ctx context.Context, supplierID string, amount int64, reason, roomID string) (*entity.CreditLedgerEntry, error) {
	if amount <= 0 {
		return nil, errors.BadRequest("Amount must be positive", nil)
	}
	return uc.post(ctx, ledgerPosting{
		SupplierID:  supplierID,
		Amount:      amount,
		Type:        entity.LedgerEntryRefund,
		Description: reason,
		RoomID:      roomID,
	})
}

// GetBalance reads the balanceAfter of the newest entry.
func (uc *CreditUseCase) GetBalance(ctx context.Context, supplierID string) (int64, error) {
	latest, err := uc.creditRepo.GetLatestEntry(ctx, supplierID)
	if err != nil {
		return 0, err
	}
	if latest == nil {
		return 0, nil
	}
	return latest.BalanceAfter, nil
}

func (uc *CreditUseCase) ListEntries(ctx context.Context, supplierID string, page utils.Pagination) ([]*entity.CreditLedgerEntry, int64, error) {
	page = page.Normalize()
	return uc.creditRepo.ListEntries(ctx, supplierID, page.Limit, page.Offset())
}

func (uc *CreditUseCase) RequestCharge(ctx context.Context, supplierID string, input RequestChargeInput) (*entity.CreditChargeRequest, error) {
	if input.Amount <= 0 {
		return nil, errors.BadRequest("Amount must be positive", nil)
	}
	depositor := strings.TrimSpace(input.DepositorName)
	if depositor == "" {
		return nil, errors.BadRequest("Depositor name is required", nil)
	}

	now := uc.now()
	req := &entity.CreditChargeRequest{
		ID:            newID(),
		SupplierID:    supplierID,
		Amount:        input.Amount,
		DepositorName: depositor,
		Status:        entity.ChargeRequestPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.creditRepo.CreateChargeRequest(ctx, req); err != nil {
		return nil, err
	}

	logger.Info("charge request created %s", logger.Fields("request", req.ID, "supplier", supplierID, "amount", req.Amount))
	return req, nil
}

func (uc *CreditUseCase) ListChargeRequests(ctx context.Context, supplierID string, status entity.ChargeRequestStatus, page utils.Pagination) ([]*entity.CreditChargeRequest, int64, error) {
	page = page.Normalize()
	return uc.creditRepo.ListChargeRequests(ctx, supplierID, status, page.Limit, page.Offset())
}

// ApproveChargeRequest credits the supplier and closes the request in one transaction.
func (uc *CreditUseCase) ApproveChargeRequest(ctx context.Context, adminID, requestID string, input ProcessChargeInput) (*entity.CreditChargeRequest, error) {
	var (
		req   *entity.CreditChargeRequest
		entry *entity.CreditLedgerEntry
	)
	err := uc.store.RunInTransaction(ctx, func(ctx context.Context, tx repository.DealTx) error {
		var err error
		req, err = tx.GetChargeRequest(requestID)
		if err != nil {
			return err
		}
		if req.Status != entity.ChargeRequestPending {
			return errors.AlreadyProcessed(fmt.Sprintf("Charge request is already %s", req.Status))
		}
		account, err := tx.GetCreditAccount(req.SupplierID)
		if err != nil {
			return err
		}

		now := uc.now()
		entry, err = appendLedgerEntry(tx, account, ledgerPosting{
			SupplierID:  req.SupplierID,
			Amount:      req.Amount,
			Type:        entity.LedgerEntryCharge,
			Description: fmt.Sprintf("Bank transfer from %s", req.DepositorName),
			Reference:   req.ID,
		}, now)
		if err != nil {
			return err
		}

		req.Status = entity.ChargeRequestApproved
		req.AdminNotes = input.AdminNotes
		req.ProcessedBy = adminID
		req.ProcessedAt = &now
		req.LedgerEntryID = entry.ID
		req.UpdatedAt = now
		return tx.SaveChargeRequest(req)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("charge request approved %s", logger.Fields("request", req.ID, "admin", adminID, "balance", entry.BalanceAfter))
	publish(ctx, uc.publisher, entity.DealEvent{
		Type:       entity.EventCreditCharged,
		ActorID:    adminID,
		Recipients: []string{req.SupplierID},
		Payload:    entry,
		OccurredAt: entry.CreatedAt,
	})
	return req, nil
}

func (uc *CreditUseCase) RejectChargeRequest(ctx context.Context, adminID, requestID string, input ProcessChargeInput) (*entity.CreditChargeRequest, error) {
	var req *entity.CreditChargeRequest
	err := uc.store.RunInTransaction(ctx, func(ctx context.Context, tx repository.DealTx) error {
		var err error
		req, err = tx.GetChargeRequest(requestID)
		if err != nil {
			return err
		}
		if req.Status != entity.ChargeRequestPending {
			return errors.AlreadyProcessed(fmt.Sprintf("Charge request is already %s", req.Status))
		}

		now := uc.now()
		req.Status = entity.ChargeRequestRejected
		req.AdminNotes = input.AdminNotes
		req.ProcessedBy = adminID
		req.ProcessedAt = &now
		req.UpdatedAt = now
		return tx.SaveChargeRequest(req)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("charge request rejected %s", logger.Fields("request", req.ID, "admin", adminID))
	return req, nil
}
