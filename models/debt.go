package models

import (
	"time"
)

// DebtStatus is the lifecycle state of a monthly debt.
// pending -> in_review (client reports payment) -> paid (admin verifies)
// or back to pending (admin rejects).
type DebtStatus string

const (
	DebtPending  DebtStatus = "pending"
	DebtInReview DebtStatus = "in_review"
	DebtPaid     DebtStatus = "paid"
)

type Debt struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	ClientID  uint       `gorm:"not null;index" json:"client_id"`
	Client    *Client    `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"client,omitempty"`
	Month     string     `gorm:"size:20;not null" json:"month"` // Spanish month name, e.g. "Diciembre"
	Year      int        `gorm:"not null" json:"year"`
	Amount    float64    `gorm:"not null" json:"amount"` // fixed at creation, never recomputed
	Status    DebtStatus `gorm:"size:20;default:'pending'" json:"status"` // pending, in_review, paid
	DueDate   time.Time  `json:"due_date"`
}

// TableName overrides the table name
func (Debt) TableName() string {
	return "debts"
}
