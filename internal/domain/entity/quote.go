package entity

import "time"

type QuoteStatus string

const (
	QuoteStatusPending  QuoteStatus = "pending"
	QuoteStatusAccepted QuoteStatus = "accepted"
	QuoteStatusRejected QuoteStatus = "rejected"
	QuoteStatusExpired  QuoteStatus = "expired"
)

// Quote is a supplier's priced response to an RFQ. Prices are whole won.
type Quote struct {
	ID           string      `json:"id" firestore:"id" gorm:"primaryKey;size:64"`
	RFQID        string      `json:"rfqId" firestore:"rfqId" gorm:"size:64;index;not null"`
	SupplierID   string      `json:"supplierId" firestore:"supplierId" gorm:"size:128;index;not null"`
	BuyerID      string      `json:"buyerId" firestore:"buyerId" gorm:"size:128;index;not null"`
	TotalPrice   int64       `json:"totalPrice" firestore:"totalPrice" gorm:"not null"`
	DeliveryDate *time.Time  `json:"deliveryDate,omitempty" firestore:"deliveryDate,omitempty"`
	Note         string      `json:"note,omitempty" firestore:"note,omitempty" gorm:"type:text"`
	Attachments  []string    `json:"attachments,omitempty" firestore:"attachments,omitempty" gorm:"serializer:json"`
	Status       QuoteStatus `json:"status" firestore:"status" gorm:"size:32;index;not null"`
	AcceptedAt   *time.Time  `json:"acceptedAt,omitempty" firestore:"acceptedAt,omitempty"`
	RejectedAt   *time.Time  `json:"rejectedAt,omitempty" firestore:"rejectedAt,omitempty"`
	CreatedAt    time.Time   `json:"createdAt" firestore:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt" firestore:"updatedAt"`
}

func (Quote) TableName() string { return "quotes" }

type QuoteSummary struct {
	ID           string      `json:"id"`
	TotalPrice   int64       `json:"totalPrice"`
	DeliveryDate *time.Time  `json:"deliveryDate,omitempty"`
	Status       QuoteStatus `json:"status"`
}

func (q *Quote) Summary() *QuoteSummary {
	if q == nil {
		return nil
	}
	return &QuoteSummary{ID: q.ID, TotalPrice: q.TotalPrice, DeliveryDate: q.DeliveryDate, Status: q.Status}
}
