package models

import (
	"time"
)

// Well-known configuration keys.
const (
	ConfigYapePhone    = "yape_phone"
	ConfigYapeQRFile   = "yape_qr_file"
	ConfigBusinessName = "business_name"
)

// SystemConfig is a flat key/value store for runtime settings
// (Yape number, QR filename, message templates). Upserted by key.
type SystemConfig struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Key       string    `gorm:"uniqueIndex;size:100;not null" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
}

// TableName overrides the table name
func (SystemConfig) TableName() string {
	return "system_config"
}
