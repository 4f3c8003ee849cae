package models

import (
	"time"
)

// Message type tags for WhatsAppHistory records.
const (
	MessagePaymentApproved = "payment_approved"
	MessagePaymentRejected = "payment_rejected"
	MessagePaymentReminder = "payment_reminder"
)

// WhatsAppHistory is an append-only log of outbound notification text.
// The system never sends messages itself; it records what was prepared.
type WhatsAppHistory struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time  `json:"created_at"`
	ClientID    *uint      `json:"client_id"`
	Client      *Client    `gorm:"foreignKey:ClientID;constraint:OnDelete:SET NULL" json:"client,omitempty"`
	CollectorID *uint      `json:"collector_id"` // nil when the actor is the admin
	Collector   *Collector `gorm:"foreignKey:CollectorID;constraint:OnDelete:SET NULL" json:"collector,omitempty"`
	MessageType string     `gorm:"size:50;not null" json:"message_type"`
	Message     string     `gorm:"type:text" json:"message"`
	SentBy      string     `gorm:"size:100" json:"sent_by"`
}

// TableName overrides the table name
func (WhatsAppHistory) TableName() string {
	return "whatsapp_history"
}

// AuditLog is an append-only record of administrative mutations.
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Actor     string    `gorm:"size:100;not null" json:"actor"`
	Role      string    `gorm:"size:20;not null" json:"role"`
	Action    string    `gorm:"size:50;not null" json:"action"`
	Entity    string    `gorm:"size:50;not null" json:"entity"`
	EntityID  uint      `json:"entity_id"`
	Detail    string    `gorm:"type:text" json:"detail"`
}

// TableName overrides the table name
func (AuditLog) TableName() string {
	return "audit_logs"
}
