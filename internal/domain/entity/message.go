package entity

import "time"

const (
	SenderTypeBuyer    = "buyer"
	SenderTypeSupplier = "supplier"
	SenderTypeSystem   = "system"

	SystemSenderID = "system"
)

// Message is a chat line. System messages mark lifecycle transitions and are
// never edited after creation.
type Message struct {
	ID          string    `json:"id" firestore:"id" gorm:"primaryKey;size:32"`
	RoomID      string    `json:"roomId" firestore:"roomId" gorm:"size:64;index;not null"`
	SenderID    string    `json:"senderId" firestore:"senderId" gorm:"size:128;not null"`
	SenderType  string    `json:"senderType" firestore:"senderType" gorm:"size:16;not null"` // buyer, supplier, system
	Content     string    `json:"content" firestore:"content" gorm:"type:text"`
	Image       string    `json:"image,omitempty" firestore:"image,omitempty" gorm:"size:1024"`
	SystemEvent string    `json:"systemEvent,omitempty" firestore:"systemEvent,omitempty" gorm:"size:64"`
	IsRead      bool      `json:"isRead" firestore:"isRead" gorm:"index"`
	CreatedAt   time.Time `json:"createdAt" firestore:"createdAt" gorm:"index"`
}

func (Message) TableName() string { return "messages" }

func (m *Message) IsSystem() bool {
	return m.SenderType == SenderTypeSystem
}
