package usecase

import (
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"b2bmarket/internal/domain/entity"
	"b2bmarket/internal/domain/repository"
	"b2bmarket/pkg/errors"
)

const lastMessagePreviewLen = 100

func utcNow() time.Time {
	return time.Now().UTC()
}

func newID() string {
	return uuid.New().String()
}

// newSortableID is used for ledger entries and messages, which are listed in
// creation order.
func newSortableID() string {
	return ulid.Make().String()
}

func newSystemMessage(roomID, event, content string, at time.Time) *entity.Message {
	return &entity.Message{
		ID:          newSortableID(),
		RoomID:      roomID,
		SenderID:    entity.SystemSenderID,
		SenderType:  entity.SenderTypeSystem,
		Content:     content,
		SystemEvent: event,
		CreatedAt:   at,
	}
}

func applyLastMessage(room *entity.ChatRoom, msg *entity.Message) {
	preview := msg.Content
	if preview == "" && msg.Image != "" {
		preview = "[image]"
	}
	if utf8.RuneCountInString(preview) > lastMessagePreviewLen {
		preview = string([]rune(preview)[:lastMessagePreviewLen])
	}
	at := msg.CreatedAt
	room.LastMessage = preview
	room.LastMessageAt = &at
}

type ledgerPosting struct {
	SupplierID  string
	Amount      int64
	Type        entity.LedgerEntryType
	Description string
	RoomID      string
	Reference   string
}

// appendLedgerEntry writes the next entry against an account head that was
// already read in this transaction. It performs writes only.
func appendLedgerEntry(tx repository.DealTx, account *entity.CreditAccount, p ledgerPosting, at time.Time) (*entity.CreditLedgerEntry, error) {
	balanceAfter := account.Balance + p.Amount
	if balanceAfter < 0 {
		return nil, errors.InsufficientCredit(-p.Amount, account.Balance)
	}

	entry := &entity.CreditLedgerEntry{
		ID:           newSortableID(),
		SupplierID:   p.SupplierID,
		Sequence:     account.LastSequence + 1,
		Amount:       p.Amount,
		Type:         p.Type,
		BalanceAfter: balanceAfter,
		Description:  p.Description,
		RoomID:       p.RoomID,
		Reference:    p.Reference,
		CreatedAt:    at,
	}
	if err := tx.AppendLedgerEntry(entry); err != nil {
		return nil, err
	}

	account.SupplierID = p.SupplierID
	account.Balance = balanceAfter
	account.LastSequence = entry.Sequence
	account.UpdatedAt = at
	if err := tx.SaveCreditAccount(account); err != nil {
		return nil, err
	}
	return entry, nil
}

func participants(room *entity.ChatRoom) []string {
	return []string{room.BuyerID, room.SupplierID}
}
