// Package billing owns the debt lifecycle: the pending -> in_review -> paid
// state machine, outstanding balance queries, and the first invoice opened at
// client registration.
package billing

import (
	"errors"
	"time"

	"github.com/miramax/cobranzas/apperrors"
	"github.com/miramax/cobranzas/models"
	"gorm.io/gorm"
)

// DefaultRejectReason is recorded when the operator gives no reason.
const DefaultRejectReason = "Comprobante no válido"

// ErrAlreadyPaid signals a verify call on a debt that is already paid.
// The guard makes double-submission harmless: no second payment row.
var ErrAlreadyPaid = apperrors.Conflict("La deuda ya fue pagada")

// Report moves the given debts of a client from pending to in_review.
// IDs that do not belong to the client, or are not pending, are filtered out
// by the update clause and silently skipped. Returns how many transitioned.
func Report(db *gorm.DB, clientID uint, debtIDs []uint) (int64, error) {
	if len(debtIDs) == 0 {
		return 0, apperrors.Validation("Debe indicar al menos una deuda")
	}

	res := db.Model(&models.Debt{}).
		Where("client_id = ? AND id IN ? AND status = ?", clientID, debtIDs, models.DebtPending).
		Update("status", models.DebtInReview)
	if res.Error != nil {
		return 0, apperrors.Internal("No se pudo registrar el reporte de pago", res.Error)
	}
	return res.RowsAffected, nil
}

// Verify marks a debt paid and records the matching verified payment. Both
// writes happen in one transaction so a failure leaves neither.
// A debt already paid yields ErrAlreadyPaid and no new payment row.
func Verify(db *gorm.DB, debtID uint) (*models.Debt, *models.Payment, error) {
	var debt models.Debt
	var payment models.Payment

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&debt, debtID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("Deuda no encontrada")
			}
			return apperrors.Internal("Error al buscar la deuda", err)
		}

		res := tx.Model(&models.Debt{}).
			Where("id = ? AND status <> ?", debtID, models.DebtPaid).
			Update("status", models.DebtPaid)
		if res.Error != nil {
			return apperrors.Internal("No se pudo actualizar la deuda", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyPaid
		}
		debt.Status = models.DebtPaid

		now := time.Now()
		payment = models.Payment{
			ClientID:           debt.ClientID,
			DebtID:             &debt.ID,
			Amount:             debt.Amount,
			PaymentMethod:      "yape",
			PaymentType:        models.PaymentTypeAdminVerification,
			VerificationStatus: models.PaymentVerified,
			SubmittedAt:        now,
			VerifiedAt:         &now,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return apperrors.Internal("No se pudo registrar el pago", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &debt, &payment, nil
}

// Reject reopens a debt: status back to pending, no payment row. The reason
// is returned to the caller for the notification message; an empty reason
// falls back to DefaultRejectReason.
func Reject(db *gorm.DB, debtID uint, reason string) (*models.Debt, string, error) {
	if reason == "" {
		reason = DefaultRejectReason
	}

	var debt models.Debt
	if err := db.First(&debt, debtID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", apperrors.NotFound("Deuda no encontrada")
		}
		return nil, "", apperrors.Internal("Error al buscar la deuda", err)
	}

	if err := db.Model(&debt).Update("status", models.DebtPending).Error; err != nil {
		return nil, "", apperrors.Internal("No se pudo actualizar la deuda", err)
	}
	debt.Status = models.DebtPending
	return &debt, reason, nil
}

// PendingBalance sums the amounts a client owes counting only pending debts.
// This is the figure collectors see in the field: a debt under review is not
// collectable until the admin resolves it.
func PendingBalance(db *gorm.DB, clientID uint) (float64, error) {
	return sumByStatus(db, clientID, []models.DebtStatus{models.DebtPending})
}

// OutstandingBalance sums pending plus in_review debts. This is the figure
// shown to the client: a reported payment is still owed until verified.
func OutstandingBalance(db *gorm.DB, clientID uint) (float64, error) {
	return sumByStatus(db, clientID, []models.DebtStatus{models.DebtPending, models.DebtInReview})
}

func sumByStatus(db *gorm.DB, clientID uint, statuses []models.DebtStatus) (float64, error) {
	var total float64
	err := db.Model(&models.Debt{}).
		Where("client_id = ? AND status IN ?", clientID, statuses).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, apperrors.Internal("No se pudo calcular la deuda total", err)
	}
	return total, nil
}
