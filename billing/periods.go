package billing

import (
	"time"

	"github.com/miramax/cobranzas/apperrors"
	"github.com/miramax/cobranzas/models"
	"gorm.io/gorm"
)

var monthNames = [12]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// MonthName returns the Spanish name for a calendar month.
func MonthName(m time.Month) string {
	return monthNames[int(m)-1]
}

// OpenInitialDebt creates the first invoice for a freshly registered client:
// billing is post-paid, so it covers the previous calendar month and falls
// due on the 7th of the current one. The period year stays the registration
// year even when the previous month crosses into December.
func OpenInitialDebt(db *gorm.DB, clientID uint, cost float64, now time.Time) (*models.Debt, error) {
	prev := now.Month() - 1
	if prev < time.January {
		prev = time.December
	}

	debt := models.Debt{
		ClientID: clientID,
		Month:    MonthName(prev),
		Year:     now.Year(),
		Amount:   cost,
		Status:   models.DebtPending,
		DueDate:  time.Date(now.Year(), now.Month(), 7, 0, 0, 0, 0, now.Location()),
	}
	if err := db.Create(&debt).Error; err != nil {
		return nil, apperrors.Internal("No se pudo crear la deuda inicial", err)
	}
	return &debt, nil
}
