package models

import (
	"time"
)

// PaymentType tags where a payment originated.
type PaymentType string

const (
	PaymentTypeClientReport      PaymentType = "pago_cliente"      // client self-report with voucher
	PaymentTypeFieldCollection   PaymentType = "cobro_campo"       // collector charged in person
	PaymentTypeAdminVerification PaymentType = "yape_verification" // admin approved a reported debt
)

// VerificationStatus of a payment record.
type VerificationStatus string

const (
	PaymentUnverified VerificationStatus = "pending"
	PaymentVerified   VerificationStatus = "verified"
)

// Payment is an immutable audit record of a monetary event. Rows are written
// once and never updated afterwards.
type Payment struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ClientID    uint       `gorm:"not null;index" json:"client_id"`
	Client      *Client    `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"client,omitempty"`
	DebtID      *uint      `json:"debt_id"` // nullable: standalone client payments may not reference a debt yet
	Debt        *Debt      `gorm:"foreignKey:DebtID;constraint:OnDelete:SET NULL" json:"debt,omitempty"`
	CollectorID *uint      `json:"collector_id"` // set for field collections
	Collector   *Collector `gorm:"foreignKey:CollectorID;constraint:OnDelete:SET NULL" json:"collector,omitempty"`

	Amount             float64            `gorm:"not null" json:"amount"`
	PaymentMethod      string             `gorm:"size:30" json:"payment_method"` // yape, efectivo
	PaymentType        PaymentType        `gorm:"size:30;not null" json:"payment_type"`
	VerificationStatus VerificationStatus `gorm:"size:20;default:'pending'" json:"verification_status"` // pending, verified
	VoucherFile        string             `gorm:"size:255" json:"voucher_file"`
	SubmittedAt        time.Time          `json:"submitted_at"`
	VerifiedAt         *time.Time         `json:"verified_at"`
}

// TableName overrides the table name
func (Payment) TableName() string {
	return "payments"
}
