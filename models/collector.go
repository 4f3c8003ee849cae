package models

import (
	"time"
)

// CollectorStatus marks whether a collector is eligible for assignments.
type CollectorStatus string

const (
	CollectorActive   CollectorStatus = "activo"
	CollectorInactive CollectorStatus = "inactivo"
)

type Collector struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Username     string          `gorm:"uniqueIndex;size:100;not null" json:"username"`
	PasswordHash string          `gorm:"size:255;not null" json:"-"`
	Name         string          `gorm:"size:255;not null" json:"name"`
	Phone        string          `gorm:"size:20" json:"phone"`
	Zone         string          `gorm:"size:500" json:"zone"` // comma-joined summary of assigned localities
	Status       CollectorStatus `gorm:"size:20;default:'activo'" json:"status"` // activo, inactivo
}

// TableName overrides the table name
func (Collector) TableName() string {
	return "collectors"
}
