// Package audit appends administrative mutations to the audit log.
package audit

import (
	"log"

	"github.com/miramax/cobranzas/models"
	"gorm.io/gorm"
)

// Record appends one audit entry. Audit writes never fail the operation they
// describe; an error is logged and dropped.
func Record(db *gorm.DB, actor, role, action, entity string, entityID uint, detail string) {
	entry := models.AuditLog{
		Actor:    actor,
		Role:     role,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Detail:   detail,
	}
	if err := db.Create(&entry).Error; err != nil {
		log.Printf("audit write failed (%s %s %d): %v", action, entity, entityID, err)
	}
}
