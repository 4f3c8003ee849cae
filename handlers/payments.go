package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/miramax/cobranzas/apperrors"
	"github.com/miramax/cobranzas/config"
	"github.com/miramax/cobranzas/models"
	"github.com/miramax/cobranzas/uploads"
	"gorm.io/gorm"
)

type PaymentHandler struct {
	db    *gorm.DB
	cfg   *config.Config
	store *uploads.Store
}

func NewPaymentHandler(db *gorm.DB, cfg *config.Config) *PaymentHandler {
	return &PaymentHandler{
		db:    db,
		cfg:   cfg,
		store: uploads.NewStore(cfg.UploadDir, cfg.MaxUploadBytes),
	}
}

// List returns payments filtered by client, collector or verification status.
func (h *PaymentHandler) List(c *gin.Context) {
	query := h.db.Model(&models.Payment{})
	if clientID := c.Query("client_id"); clientID != "" {
		query = query.Where("client_id = ?", clientID)
	}
	if collectorID := c.Query("collector_id"); collectorID != "" {
		query = query.Where("collector_id = ?", collectorID)
	}
	if status := c.Query("verification_status"); status != "" {
		query = query.Where("verification_status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondError(c, apperrors.Internal("No se pudo contar pagos", err))
		return
	}

	var payments []models.Payment
	if err := query.Scopes(Paginate(c)).Preload("Client").Preload("Collector").
		Order("id DESC").Find(&payments).Error; err != nil {
		respondError(c, apperrors.Internal("No se pudo listar pagos", err))
		return
	}

	c.JSON(http.StatusOK, CreatePaginatedResponse(c, payments, total))
}

type FieldCollectionRequest struct {
	ClientID      uint    `json:"client_id" binding:"required"`
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	PaymentMethod string  `json:"payment_method" binding:"required"`
	DebtIDs       []uint  `json:"debt_ids" binding:"required,min=1"`
}

// FieldCollection records an in-person charge by the authenticated collector.
// The payment is verified on the spot and the named debts go straight to
// paid, skipping the review step: the collector was physically there.
func (h *PaymentHandler) FieldCollection(c *gin.Context) {
	var req FieldCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	collectorID, _ := c.Get("userID")
	cid, ok := collectorID.(uint)
	if !ok {
		respondError(c, apperrors.Auth("Sesión de cobrador inválida"))
		return
	}

	var client models.Client
	if err := h.db.First(&client, req.ClientID).Error; err != nil {
		respondError(c, apperrors.NotFound("Cliente no encontrado"))
		return
	}

	var payment models.Payment
	err := h.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		payment = models.Payment{
			ClientID:           client.ID,
			CollectorID:        &cid,
			Amount:             req.Amount,
			PaymentMethod:      req.PaymentMethod,
			PaymentType:        models.PaymentTypeFieldCollection,
			VerificationStatus: models.PaymentVerified,
			SubmittedAt:        now,
			VerifiedAt:         &now,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return apperrors.Internal("No se pudo registrar el cobro", err)
		}

		res := tx.Model(&models.Debt{}).
			Where("client_id = ? AND id IN ?", client.ID, req.DebtIDs).
			Update("status", models.DebtPaid)
		if res.Error != nil {
			return apperrors.Internal("No se pudo actualizar las deudas", res.Error)
		}
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, payment)
}

// ClientPayment is the public voucher submission: the client uploads a Yape
// capture with an amount. It creates an unverified payment record only; the
// debts move to in_review when the client reports them explicitly.
func (h *PaymentHandler) ClientPayment(c *gin.Context) {
	dni := c.PostForm("dni")
	if dni == "" {
		respondError(c, apperrors.Validation("El DNI es obligatorio"))
		return
	}
	amount, err := strconv.ParseFloat(c.PostForm("amount"), 64)
	if err != nil || amount <= 0 {
		respondError(c, apperrors.Validation("Monto inválido"))
		return
	}

	var client models.Client
	if err := h.db.Where("dni = ?", dni).First(&client).Error; err != nil {
		respondError(c, apperrors.NotFound("Cliente no encontrado"))
		return
	}

	var voucherFile string
	if fh, err := c.FormFile("voucher"); err == nil {
		voucherFile, err = h.store.Save(fh)
		if err != nil {
			respondError(c, err)
			return
		}
	}

	var debtID *uint
	if raw := c.PostForm("debt_id"); raw != "" {
		id64, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondError(c, apperrors.Validation("Deuda inválida"))
			return
		}
		id := uint(id64)
		debtID = &id
	}

	method := c.PostForm("payment_method")
	if method == "" {
		method = "yape"
	}

	payment := models.Payment{
		ClientID:           client.ID,
		DebtID:             debtID,
		Amount:             amount,
		PaymentMethod:      method,
		PaymentType:        models.PaymentTypeClientReport,
		VerificationStatus: models.PaymentUnverified,
		VoucherFile:        voucherFile,
		SubmittedAt:        time.Now(),
	}
	if err := h.db.Create(&payment).Error; err != nil {
		respondError(c, apperrors.Internal("No se pudo registrar el pago", err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": fmt.Sprintf("Pago de S/ %.2f registrado, pendiente de verificación", amount),
		"payment": payment,
	})
}
