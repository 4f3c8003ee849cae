// Package zones assigns collectors to clients by geography: a substring match
// of the client's effective zone against each collector's zone summary, with
// a first-active-collector fallback, plus bulk reassignment by district and
// locality lists.
package zones

import (
	"errors"

	"github.com/miramax/cobranzas/apperrors"
	"github.com/miramax/cobranzas/models"
	"gorm.io/gorm"
)

// Assignment is one district worth of localities to hand to a collector.
type Assignment struct {
	District   string   `json:"district"`
	Localities []string `json:"localities"`
}

// EffectiveZone picks the string used for collector matching: the explicit
// zone, else the locality, else the district.
func EffectiveZone(zone, locality, district string) string {
	if zone != "" {
		return zone
	}
	if locality != "" {
		return locality
	}
	return district
}

// AutoAssign resolves the collector for a new client. Match order: first
// collector whose zone summary contains the effective zone, then the first
// active collector. nil means no collector exists, which is a valid state.
func AutoAssign(db *gorm.DB, zone, locality, district string) (*uint, error) {
	effective := EffectiveZone(zone, locality, district)

	var collector models.Collector
	if effective != "" {
		err := db.Where("zone LIKE ?", "%"+effective+"%").First(&collector).Error
		if err == nil {
			return &collector.ID, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Internal("Error al buscar cobrador por zona", err)
		}
	}

	err := db.Where("status = ?", models.CollectorActive).First(&collector).Error
	if err == nil {
		return &collector.ID, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, apperrors.Internal("Error al buscar cobrador activo", err)
}

// BulkAssign reassigns every client matching each {district, localities} pair
// to the given collector, overwriting any previous owner. Pairs with no
// localities are skipped. When summary is non-empty it replaces the
// collector's display zone. Returns the total clients reassigned.
func BulkAssign(db *gorm.DB, collectorID uint, assignments []Assignment, summary string) (int64, error) {
	var collector models.Collector
	if err := db.First(&collector, collectorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apperrors.NotFound("Cobrador no encontrado")
		}
		return 0, apperrors.Internal("Error al buscar cobrador", err)
	}

	var total int64
	for _, a := range assignments {
		if len(a.Localities) == 0 {
			continue
		}
		res := db.Model(&models.Client{}).
			Where("district = ? AND locality IN ?", a.District, a.Localities).
			Update("collector_id", collectorID)
		if res.Error != nil {
			return total, apperrors.Internal("No se pudo reasignar clientes", res.Error)
		}
		total += res.RowsAffected
	}

	if summary != "" {
		if err := db.Model(&collector).Update("zone", summary).Error; err != nil {
			return total, apperrors.Internal("No se pudo actualizar la zona del cobrador", err)
		}
	}
	return total, nil
}
