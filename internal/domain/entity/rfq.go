package entity

import "time"

type RFQStatus string

const (
	RFQStatusOpen       RFQStatus = "open"
	RFQStatusInProgress RFQStatus = "in_progress"
	RFQStatusClosed     RFQStatus = "closed"
	RFQStatusCancelled  RFQStatus = "cancelled"
)

// RFQ is a buyer's posted sourcing need.
type RFQ struct {
	ID          string     `json:"id" firestore:"id" gorm:"primaryKey;size:64"`
	BuyerID     string     `json:"buyerId" firestore:"buyerId" gorm:"size:128;index;not null"`
	Title       string     `json:"title" firestore:"title" gorm:"size:255;not null"`
	Description string     `json:"description" firestore:"description" gorm:"type:text"`
	Category    string     `json:"category,omitempty" firestore:"category,omitempty" gorm:"size:128"`
	Quantity    int        `json:"quantity" firestore:"quantity"`
	Unit        string     `json:"unit,omitempty" firestore:"unit,omitempty" gorm:"size:32"`
	Budget      int64      `json:"budget,omitempty" firestore:"budget,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty" firestore:"dueDate,omitempty"`
	Status      RFQStatus  `json:"status" firestore:"status" gorm:"size:32;index;not null"`
	CreatedAt   time.Time  `json:"createdAt" firestore:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt" firestore:"updatedAt"`
}

func (RFQ) TableName() string { return "rfqs" }

type RFQSummary struct {
	ID     string    `json:"id"`
	Title  string    `json:"title"`
	Status RFQStatus `json:"status"`
}

func (r *RFQ) Summary() *RFQSummary {
	if r == nil {
		return nil
	}
	return &RFQSummary{ID: r.ID, Title: r.Title, Status: r.Status}
}
