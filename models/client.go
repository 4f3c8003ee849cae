package models

import (
	"time"
)

// ServiceStatus is the connection state of a client's installation.
type ServiceStatus string

const (
	ServiceActive       ServiceStatus = "activo"
	ServiceSuspended    ServiceStatus = "suspendido"
	ServiceDisconnected ServiceStatus = "cortado"
	ServiceReconnecting ServiceStatus = "reconexion"
)

// Defaults applied when a registration omits the field.
const (
	DefaultPaymentDay = 5
	DefaultPlanType   = "INTERNET"
)

type Client struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	DNI       string    `gorm:"uniqueIndex;size:15;not null" json:"dni"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Phone     string    `gorm:"size:20" json:"phone"`
	Address   string    `gorm:"size:255" json:"address"`

	// Hierarchical location: region > province > district > locality, plus a
	// free-text zone used for collector matching.
	Region   string `gorm:"size:100" json:"region"`
	Province string `gorm:"size:100" json:"province"`
	District string `gorm:"size:100" json:"district"`
	Locality string `gorm:"size:100" json:"locality"`
	Zone     string `gorm:"size:100" json:"zone"`

	PlanType      string        `gorm:"size:50;default:'INTERNET'" json:"plan_type"`
	PlanSpeed     string        `gorm:"size:50" json:"plan_speed"`
	Cost          float64       `gorm:"not null" json:"cost"`
	PaymentDay    int           `gorm:"default:5" json:"payment_day"`
	ServiceStatus ServiceStatus `gorm:"size:20;default:'activo'" json:"service_status"` // activo, suspendido, cortado, reconexion

	CollectorID *uint      `json:"collector_id"`
	Collector   *Collector `gorm:"foreignKey:CollectorID;constraint:OnDelete:SET NULL" json:"collector,omitempty"`
}

// TableName overrides the table name
func (Client) TableName() string {
	return "clients"
}
