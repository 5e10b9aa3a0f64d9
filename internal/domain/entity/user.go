package entity

import (
	"time"
)

const (
	RoleBuyer    = "buyer"
	RoleSupplier = "supplier"
	RoleAdmin    = "admin"
)

type User struct {
	ID          string `json:"id" firestore:"id" gorm:"primaryKey;size:128"`
	Email       string `json:"email,omitempty" firestore:"email,omitempty" gorm:"size:255;index"`
	Name        string `json:"name" firestore:"name" gorm:"size:255"`
	CompanyName string `json:"companyName,omitempty" firestore:"companyName,omitempty" gorm:"size:255"`
	Phone       string `json:"phone,omitempty" firestore:"phone,omitempty" gorm:"size:64"`
	Role        string `json:"role" firestore:"role" gorm:"size:32;index;not null"` // buyer, supplier, admin

	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt"`
}

func (User) TableName() string { return "users" }

// UserSummary is the embedded view of a counterparty in room listings.
type UserSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	CompanyName string `json:"companyName,omitempty"`
}

func (u *User) Summary() *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{ID: u.ID, Name: u.Name, CompanyName: u.CompanyName}
}
