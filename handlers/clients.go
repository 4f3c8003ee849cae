package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/miramax/cobranzas/apperrors"
	"github.com/miramax/cobranzas/audit"
	"github.com/miramax/cobranzas/billing"
	"github.com/miramax/cobranzas/config"
	"github.com/miramax/cobranzas/models"
	"github.com/miramax/cobranzas/zones"
	"gorm.io/gorm"
)

type ClientHandler struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewClientHandler(db *gorm.DB, cfg *config.Config) *ClientHandler {
	return &ClientHandler{db: db, cfg: cfg}
}

type RegisterClientRequest struct {
	DNI           string  `json:"dni" binding:"required"`
	Name          string  `json:"name" binding:"required"`
	Phone         string  `json:"phone"`
	Address       string  `json:"address"`
	Region        string  `json:"region"`
	Province      string  `json:"province"`
	District      string  `json:"district"`
	Locality      string  `json:"locality"`
	Zone          string  `json:"zone"`
	PlanType      string  `json:"plan_type"`
	PlanSpeed     string  `json:"plan_speed"`
	Cost          float64 `json:"cost" binding:"required,gt=0"`
	PaymentDay    int     `json:"payment_day"`
	ServiceStatus string  `json:"service_status"`
}

// newClient applies registration defaults in one place.
func newClient(req RegisterClientRequest) models.Client {
	planType := req.PlanType
	if planType == "" {
		planType = models.DefaultPlanType
	}
	paymentDay := req.PaymentDay
	if paymentDay <= 0 || paymentDay > 28 {
		paymentDay = models.DefaultPaymentDay
	}
	status := models.ServiceStatus(req.ServiceStatus)
	if status == "" {
		status = models.ServiceActive
	}
	return models.Client{
		DNI:           req.DNI,
		Name:          req.Name,
		Phone:         req.Phone,
		Address:       req.Address,
		Region:        req.Region,
		Province:      req.Province,
		District:      req.District,
		Locality:      req.Locality,
		Zone:          req.Zone,
		PlanType:      planType,
		PlanSpeed:     req.PlanSpeed,
		Cost:          req.Cost,
		PaymentDay:    paymentDay,
		ServiceStatus: status,
	}
}

// Register creates a client, auto-assigns a collector by zone and opens the
// first post-paid debt, all inside one transaction.
func (h *ClientHandler) Register(c *gin.Context) {
	var req RegisterClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	client := newClient(req)
	var debt *models.Debt

	err := h.db.Transaction(func(tx *gorm.DB) error {
		collectorID, err := zones.AutoAssign(tx, client.Zone, client.Locality, client.District)
		if err != nil {
			return err
		}
		client.CollectorID = collectorID

		if err := tx.Create(&client).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.Conflict("El DNI ya está registrado")
			}
			return apperrors.Internal("No se pudo registrar el cliente", err)
		}

		debt, err = billing.OpenInitialDebt(tx, client.ID, client.Cost, time.Now())
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}

	username, role := actorFrom(c)
	audit.Record(h.db, username, role, "create", "client", client.ID, "registro de cliente "+client.DNI)

	c.JSON(http.StatusCreated, gin.H{
		"client": client,
		"debt":   debt,
	})
}

// List returns clients with pagination and optional filters.
func (h *ClientHandler) List(c *gin.Context) {
	query := h.db.Model(&models.Client{})

	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("dni LIKE ? OR name LIKE ?", like, like)
	}
	if district := c.Query("district"); district != "" {
		query = query.Where("district = ?", district)
	}
	if collectorID := c.Query("collector_id"); collectorID != "" {
		query = query.Where("collector_id = ?", collectorID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondError(c, apperrors.Internal("No se pudo contar clientes", err))
		return
	}

	var clients []models.Client
	if err := query.Scopes(Paginate(c)).Preload("Collector").Order("id").Find(&clients).Error; err != nil {
		respondError(c, apperrors.Internal("No se pudo listar clientes", err))
		return
	}

	c.JSON(http.StatusOK, CreatePaginatedResponse(c, clients, total))
}

func (h *ClientHandler) Get(c *gin.Context) {
	var client models.Client
	if err := h.db.Preload("Collector").First(&client, c.Param("id")).Error; err != nil {
		respondError(c, apperrors.NotFound("Cliente no encontrado"))
		return
	}
	c.JSON(http.StatusOK, client)
}

type UpdateClientRequest struct {
	Name          *string  `json:"name"`
	Phone         *string  `json:"phone"`
	Address       *string  `json:"address"`
	Region        *string  `json:"region"`
	Province      *string  `json:"province"`
	District      *string  `json:"district"`
	Locality      *string  `json:"locality"`
	Zone          *string  `json:"zone"`
	PlanType      *string  `json:"plan_type"`
	PlanSpeed     *string  `json:"plan_speed"`
	Cost          *float64 `json:"cost"`
	PaymentDay    *int     `json:"payment_day"`
	ServiceStatus *string  `json:"service_status"`
	CollectorID   *uint    `json:"collector_id"`
}

// Update applies the non-nil fields of the request to an existing client.
func (h *ClientHandler) Update(c *gin.Context) {
	var client models.Client
	if err := h.db.First(&client, c.Param("id")).Error; err != nil {
		respondError(c, apperrors.NotFound("Cliente no encontrado"))
		return
	}

	var req UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	setIf := func(col string, v interface{}, ok bool) {
		if ok {
			updates[col] = v
		}
	}
	setIf("name", deref(req.Name), req.Name != nil)
	setIf("phone", deref(req.Phone), req.Phone != nil)
	setIf("address", deref(req.Address), req.Address != nil)
	setIf("region", deref(req.Region), req.Region != nil)
	setIf("province", deref(req.Province), req.Province != nil)
	setIf("district", deref(req.District), req.District != nil)
	setIf("locality", deref(req.Locality), req.Locality != nil)
	setIf("zone", deref(req.Zone), req.Zone != nil)
	setIf("plan_type", deref(req.PlanType), req.PlanType != nil)
	setIf("plan_speed", deref(req.PlanSpeed), req.PlanSpeed != nil)
	if req.Cost != nil {
		updates["cost"] = *req.Cost
	}
	if req.PaymentDay != nil {
		updates["payment_day"] = *req.PaymentDay
	}
	setIf("service_status", deref(req.ServiceStatus), req.ServiceStatus != nil)
	if req.CollectorID != nil {
		updates["collector_id"] = *req.CollectorID
	}

	if len(updates) > 0 {
		if err := h.db.Model(&client).Updates(updates).Error; err != nil {
			respondError(c, apperrors.Internal("No se pudo actualizar el cliente", err))
			return
		}
	}

	username, role := actorFrom(c)
	audit.Record(h.db, username, role, "update", "client", client.ID, fmt.Sprintf("%d campos modificados", len(updates)))

	c.JSON(http.StatusOK, client)
}

// Delete removes a client together with its debts and payments. The explicit
// transactional deletes keep the cascade portable across postgres and the
// sqlite test store.
func (h *ClientHandler) Delete(c *gin.Context) {
	var client models.Client
	if err := h.db.First(&client, c.Param("id")).Error; err != nil {
		respondError(c, apperrors.NotFound("Cliente no encontrado"))
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("client_id = ?", client.ID).Delete(&models.Payment{}).Error; err != nil {
			return apperrors.Internal("No se pudo eliminar pagos del cliente", err)
		}
		if err := tx.Where("client_id = ?", client.ID).Delete(&models.Debt{}).Error; err != nil {
			return apperrors.Internal("No se pudo eliminar deudas del cliente", err)
		}
		if err := tx.Model(&models.WhatsAppHistory{}).Where("client_id = ?", client.ID).
			Update("client_id", nil).Error; err != nil {
			return apperrors.Internal("No se pudo desvincular historial del cliente", err)
		}
		if err := tx.Delete(&client).Error; err != nil {
			return apperrors.Internal("No se pudo eliminar el cliente", err)
		}
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}

	username, role := actorFrom(c)
	audit.Record(h.db, username, role, "delete", "client", client.ID, "cliente "+client.DNI+" eliminado con deudas y pagos")

	c.JSON(http.StatusOK, gin.H{"message": "Cliente eliminado"})
}

// CheckDebt is the public client-portal lookup: debts still owed plus their
// total, keyed by DNI. In-review debts count toward the total here because
// the client still owes them until the admin verifies.
func (h *ClientHandler) CheckDebt(c *gin.Context) {
	dni := c.Param("dni")

	var client models.Client
	if err := h.db.Where("dni = ?", dni).First(&client).Error; err != nil {
		respondError(c, apperrors.NotFound("Cliente no encontrado"))
		return
	}

	var debts []models.Debt
	if err := h.db.Where("client_id = ? AND status IN ?", client.ID,
		[]models.DebtStatus{models.DebtPending, models.DebtInReview}).
		Order("year, id").Find(&debts).Error; err != nil {
		respondError(c, apperrors.Internal("No se pudo listar deudas", err))
		return
	}

	total, err := billing.OutstandingBalance(h.db, client.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"client": gin.H{
			"name":           client.Name,
			"dni":            client.DNI,
			"plan_type":      client.PlanType,
			"plan_speed":     client.PlanSpeed,
			"service_status": client.ServiceStatus,
		},
		"debts":      debts,
		"total_debt": total,
	})
}

// Portfolio lists the clients assigned to the authenticated collector with
// their pending balance. Debts under review are excluded from the field
// figure: they are not collectable until resolved.
func (h *ClientHandler) Portfolio(c *gin.Context) {
	collectorID, _ := c.Get("userID")

	var clients []models.Client
	if err := h.db.Where("collector_id = ?", collectorID).Order("name").Find(&clients).Error; err != nil {
		respondError(c, apperrors.Internal("No se pudo listar clientes", err))
		return
	}

	type entry struct {
		models.Client
		PendingDebt float64 `json:"pending_debt"`
	}
	result := make([]entry, 0, len(clients))
	for _, cl := range clients {
		pending, err := billing.PendingBalance(h.db, cl.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		result = append(result, entry{Client: cl, PendingDebt: pending})
	}

	c.JSON(http.StatusOK, result)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
