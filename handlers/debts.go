package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/miramax/cobranzas/apperrors"
	"github.com/miramax/cobranzas/audit"
	"github.com/miramax/cobranzas/billing"
	"github.com/miramax/cobranzas/config"
	"github.com/miramax/cobranzas/middleware"
	"github.com/miramax/cobranzas/models"
	"github.com/miramax/cobranzas/notify"
	"github.com/miramax/cobranzas/receipts"
	"gorm.io/gorm"
)

type DebtHandler struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewDebtHandler(db *gorm.DB, cfg *config.Config) *DebtHandler {
	return &DebtHandler{db: db, cfg: cfg}
}

type CreateDebtRequest struct {
	ClientID uint    `json:"client_id" binding:"required"`
	Month    string  `json:"month" binding:"required"`
	Year     int     `json:"year" binding:"required"`
	Amount   float64 `json:"amount" binding:"required,gt=0"`
	DueDate  string  `json:"due_date"` // YYYY-MM-DD
}

// Create adds a manual debt for an existing client.
func (h *DebtHandler) Create(c *gin.Context) {
	var req CreateDebtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var client models.Client
	if err := h.db.First(&client, req.ClientID).Error; err != nil {
		respondError(c, apperrors.NotFound("Cliente no encontrado"))
		return
	}

	debt := models.Debt{
		ClientID: client.ID,
		Month:    req.Month,
		Year:     req.Year,
		Amount:   req.Amount,
		Status:   models.DebtPending,
	}
	if req.DueDate != "" {
		due, err := time.Parse("2006-01-02", req.DueDate)
		if err != nil {
			respondError(c, apperrors.Validation("Formato de fecha inválido, use YYYY-MM-DD"))
			return
		}
		debt.DueDate = due
	}

	if err := h.db.Create(&debt).Error; err != nil {
		respondError(c, apperrors.Internal("No se pudo crear la deuda", err))
		return
	}

	username, role := actorFrom(c)
	audit.Record(h.db, username, role, "create", "debt", debt.ID,
		fmt.Sprintf("deuda manual %s %d S/ %.2f", debt.Month, debt.Year, debt.Amount))

	c.JSON(http.StatusCreated, debt)
}

// List returns debts filtered by status and/or client, paginated.
func (h *DebtHandler) List(c *gin.Context) {
	query := h.db.Model(&models.Debt{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if clientID := c.Query("client_id"); clientID != "" {
		query = query.Where("client_id = ?", clientID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondError(c, apperrors.Internal("No se pudo contar deudas", err))
		return
	}

	var debts []models.Debt
	if err := query.Scopes(Paginate(c)).Preload("Client").Order("id").Find(&debts).Error; err != nil {
		respondError(c, apperrors.Internal("No se pudo listar deudas", err))
		return
	}

	c.JSON(http.StatusOK, CreatePaginatedResponse(c, debts, total))
}

type UpdateDebtRequest struct {
	Month   *string  `json:"month"`
	Year    *int     `json:"year"`
	Amount  *float64 `json:"amount"`
	Status  *string  `json:"status"` // escape hatch: admin may force any status
	DueDate *string  `json:"due_date"`
}

// Update is the admin correction endpoint. Forcing a status here bypasses the
// lifecycle transitions on purpose.
func (h *DebtHandler) Update(c *gin.Context) {
	var debt models.Debt
	if err := h.db.First(&debt, c.Param("id")).Error; err != nil {
		respondError(c, apperrors.NotFound("Deuda no encontrada"))
		return
	}

	var req UpdateDebtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Month != nil {
		updates["month"] = *req.Month
	}
	if req.Year != nil {
		updates["year"] = *req.Year
	}
	if req.Amount != nil {
		updates["amount"] = *req.Amount
	}
	if req.Status != nil {
		switch models.DebtStatus(*req.Status) {
		case models.DebtPending, models.DebtInReview, models.DebtPaid:
			updates["status"] = *req.Status
		default:
			respondError(c, apperrors.Validation("Estado de deuda inválido"))
			return
		}
	}
	if req.DueDate != nil {
		due, err := time.Parse("2006-01-02", *req.DueDate)
		if err != nil {
			respondError(c, apperrors.Validation("Formato de fecha inválido, use YYYY-MM-DD"))
			return
		}
		updates["due_date"] = due
	}

	if len(updates) > 0 {
		if err := h.db.Model(&debt).Updates(updates).Error; err != nil {
			respondError(c, apperrors.Internal("No se pudo actualizar la deuda", err))
			return
		}
	}

	username, role := actorFrom(c)
	audit.Record(h.db, username, role, "update", "debt", debt.ID, fmt.Sprintf("%d campos modificados", len(updates)))

	c.JSON(http.StatusOK, debt)
}

func (h *DebtHandler) Delete(c *gin.Context) {
	var debt models.Debt
	if err := h.db.First(&debt, c.Param("id")).Error; err != nil {
		respondError(c, apperrors.NotFound("Deuda no encontrada"))
		return
	}
	if err := h.db.Delete(&debt).Error; err != nil {
		respondError(c, apperrors.Internal("No se pudo eliminar la deuda", err))
		return
	}

	username, role := actorFrom(c)
	audit.Record(h.db, username, role, "delete", "debt", debt.ID, "deuda eliminada")

	c.JSON(http.StatusOK, gin.H{"message": "Deuda eliminada"})
}

type ReportPaymentRequest struct {
	DNI     string `json:"dni" binding:"required"`
	DebtIDs []uint `json:"debt_ids" binding:"required"`
}

// Report is the public "ya pagué" endpoint: the client flags pending debts as
// under review. No payment row is written until the admin verifies.
func (h *DebtHandler) Report(c *gin.Context) {
	var req ReportPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var client models.Client
	if err := h.db.Where("dni = ?", req.DNI).First(&client).Error; err != nil {
		respondError(c, apperrors.NotFound("Cliente no encontrado"))
		return
	}

	reported, err := billing.Report(h.db, client.ID, req.DebtIDs)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Pago reportado, queda pendiente de verificación",
		"reported": reported,
	})
}

// Verify approves a reported payment: the debt becomes paid, a verified
// payment row is written and the WhatsApp confirmation is prepared for the
// operator. The history write is a side channel and never fails the approval.
func (h *DebtHandler) Verify(c *gin.Context) {
	var debt models.Debt
	if err := h.db.Preload("Client").First(&debt, c.Param("id")).Error; err != nil {
		respondError(c, apperrors.NotFound("Deuda no encontrada"))
		return
	}
	client := debt.Client

	verified, payment, err := billing.Verify(h.db, debt.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	message := notify.PaymentApprovedMessage(client.Name, verified.Amount, verified.Month, verified.Year)
	link := notify.DeepLink(client.Phone, h.cfg.CountryCode, message)
	notify.RecordHistory(h.db, client.ID, nil, models.MessagePaymentApproved, message, middleware.RoleAdmin)

	username, role := actorFrom(c)
	audit.Record(h.db, username, role, "verify", "debt", verified.ID,
		fmt.Sprintf("pago verificado S/ %.2f", payment.Amount))

	c.JSON(http.StatusOK, gin.H{
		"debt":          verified,
		"payment":       payment,
		"client_name":   client.Name,
		"client_phone":  client.Phone,
		"amount":        verified.Amount,
		"period":        fmt.Sprintf("%s %d", verified.Month, verified.Year),
		"message":       message,
		"whatsapp_link": link,
	})
}

type RejectDebtRequest struct {
	Reason string `json:"reason"`
}

// Reject sends a reported debt back to pending with the operator's reason and
// prepares the rejection message. No payment row is written.
func (h *DebtHandler) Reject(c *gin.Context) {
	var debt models.Debt
	if err := h.db.Preload("Client").First(&debt, c.Param("id")).Error; err != nil {
		respondError(c, apperrors.NotFound("Deuda no encontrada"))
		return
	}
	client := debt.Client

	// The body is optional; a rejection without a reason gets the default.
	var req RejectDebtRequest
	_ = c.ShouldBindJSON(&req)

	rejected, reason, err := billing.Reject(h.db, debt.ID, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	message := notify.PaymentRejectedMessage(client.Name, rejected.Amount, rejected.Month, rejected.Year, reason)
	link := notify.DeepLink(client.Phone, h.cfg.CountryCode, message)
	notify.RecordHistory(h.db, client.ID, nil, models.MessagePaymentRejected, message, middleware.RoleAdmin)

	username, role := actorFrom(c)
	audit.Record(h.db, username, role, "reject", "debt", rejected.ID, "motivo: "+reason)

	c.JSON(http.StatusOK, gin.H{
		"debt":          rejected,
		"reason":        reason,
		"client_name":   client.Name,
		"client_phone":  client.Phone,
		"message":       message,
		"whatsapp_link": link,
	})
}

// Receipt renders the PDF receipt for a debt. The payment method on the
// receipt is a fixed display label.
func (h *DebtHandler) Receipt(c *gin.Context) {
	var debt models.Debt
	if err := h.db.Preload("Client").First(&debt, c.Param("id")).Error; err != nil {
		respondError(c, apperrors.NotFound("Deuda no encontrada"))
		return
	}

	status := "PENDIENTE"
	if debt.Status == models.DebtPaid {
		status = "PAGADO"
	}

	var buf bytes.Buffer
	err := receipts.Render(&buf, receipts.Data{
		BusinessName: h.cfg.BusinessName,
		ClientName:   debt.Client.Name,
		ClientDNI:    debt.Client.DNI,
		Month:        debt.Month,
		Year:         debt.Year,
		Amount:       debt.Amount,
		Method:       "Yape",
		Status:       status,
		IssuedAt:     time.Now(),
	})
	if err != nil {
		respondError(c, apperrors.Internal("No se pudo generar el recibo", err))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=recibo-%d.pdf", debt.ID))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
