package entity

import (
	"time"
)

type LedgerEntryType string

const (
	LedgerEntryCharge LedgerEntryType = "charge"
	LedgerEntryUse    LedgerEntryType = "use"
	LedgerEntryRefund LedgerEntryType = "refund"
)

// CreditAccount is the head of a supplier's ledger. It is read and written in
// the same transaction as every appended entry, which serializes writers per
// supplier. Balance always equals the BalanceAfter of entry LastSequence.
type CreditAccount struct {
	SupplierID   string    `json:"supplierId" firestore:"supplierId" gorm:"primaryKey;size:128"`
	Balance      int64     `json:"balance" firestore:"balance"`
	LastSequence int64     `json:"lastSequence" firestore:"lastSequence"`
	UpdatedAt    time.Time `json:"updatedAt" firestore:"updatedAt"`
}

func (CreditAccount) TableName() string { return "credit_accounts" }

// CreditLedgerEntry is an append-only balance movement. Amount is signed.
type CreditLedgerEntry struct {
	ID           string          `json:"id" firestore:"id" gorm:"primaryKey;size:32"`
	SupplierID   string          `json:"supplierId" firestore:"supplierId" gorm:"size:128;not null;uniqueIndex:ux_ledger_supplier_seq,priority:1"`
	Sequence     int64           `json:"sequence" firestore:"sequence" gorm:"not null;uniqueIndex:ux_ledger_supplier_seq,priority:2"`
	Amount       int64           `json:"amount" firestore:"amount" gorm:"not null"`
	Type         LedgerEntryType `json:"type" firestore:"type" gorm:"size:16;not null"`
	BalanceAfter int64           `json:"balanceAfter" firestore:"balanceAfter" gorm:"not null"`
	Description  string          `json:"description" firestore:"description" gorm:"size:512"`
	RoomID       string          `json:"roomId,omitempty" firestore:"roomId,omitempty" gorm:"size:64;index"`
	Reference    string          `json:"reference,omitempty" firestore:"reference,omitempty" gorm:"size:64"`
	CreatedAt    time.Time       `json:"createdAt" firestore:"createdAt"`
}

func (CreditLedgerEntry) TableName() string { return "credit_ledger_entries" }

type ChargeRequestStatus string

const (
	ChargeRequestPending  ChargeRequestStatus = "pending"
	ChargeRequestApproved ChargeRequestStatus = "approved"
	ChargeRequestRejected ChargeRequestStatus = "rejected"
)

// CreditChargeRequest is a supplier's manual bank-transfer top-up awaiting admin review.
type CreditChargeRequest struct {
	ID            string              `json:"id" firestore:"id" gorm:"primaryKey;size:64"`
	SupplierID    string              `json:"supplierId" firestore:"supplierId" gorm:"size:128;index;not null"`
	Amount        int64               `json:"amount" firestore:"amount" gorm:"not null"`
	DepositorName string              `json:"depositorName" firestore:"depositorName" gorm:"size:255"`
	Status        ChargeRequestStatus `json:"status" firestore:"status" gorm:"size:16;index;not null"`
	AdminNotes    string              `json:"adminNotes,omitempty" firestore:"adminNotes,omitempty" gorm:"size:512"`
	ProcessedBy   string              `json:"processedBy,omitempty" firestore:"processedBy,omitempty" gorm:"size:128"`
	ProcessedAt   *time.Time          `json:"processedAt,omitempty" firestore:"processedAt,omitempty"`
	LedgerEntryID string              `json:"ledgerEntryId,omitempty" firestore:"ledgerEntryId,omitempty" gorm:"size:32"`
	CreatedAt     time.Time           `json:"createdAt" firestore:"createdAt" gorm:"index"`
	UpdatedAt     time.Time           `json:"updatedAt" firestore:"updatedAt"`
}

func (CreditChargeRequest) TableName() string { return "credit_charge_requests" }
