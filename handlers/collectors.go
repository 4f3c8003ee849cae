package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/miramax/cobranzas/apperrors"
	"github.com/miramax/cobranzas/audit"
	"github.com/miramax/cobranzas/config"
	"github.com/miramax/cobranzas/models"
	"github.com/miramax/cobranzas/zones"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type CollectorHandler struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewCollectorHandler(db *gorm.DB, cfg *config.Config) *CollectorHandler {
	return &CollectorHandler{db: db, cfg: cfg}
}

type CreateCollectorRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone"`
	Zone     string `json:"zone"`
}

func (h *CollectorHandler) Create(c *gin.Context) {
	var req CreateCollectorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, apperrors.Internal("No se pudo procesar la contraseña", err))
		return
	}

	collector := models.Collector{
		Username:     req.Username,
		PasswordHash: string(hash),
		Name:         req.Name,
		Phone:        req.Phone,
		Zone:         req.Zone,
		Status:       models.CollectorActive,
	}
	if err := h.db.Create(&collector).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			respondError(c, apperrors.Conflict("El usuario ya está registrado"))
			return
		}
		respondError(c, apperrors.Internal("No se pudo crear el cobrador", err))
		return
	}

	username, role := actorFrom(c)
	audit.Record(h.db, username, role, "create", "collector", collector.ID, "cobrador "+collector.Username)

	c.JSON(http.StatusCreated, collector)
}

func (h *CollectorHandler) List(c *gin.Context) {
	var collectors []models.Collector
	if err := h.db.Order("id").Find(&collectors).Error; err != nil {
		respondError(c, apperrors.Internal("No se pudo listar cobradores", err))
		return
	}
	c.JSON(http.StatusOK, collectors)
}

func (h *CollectorHandler) Get(c *gin.Context) {
	var collector models.Collector
	if err := h.db.First(&collector, c.Param("id")).Error; err != nil {
		respondError(c, apperrors.NotFound("Cobrador no encontrado"))
		return
	}
	c.JSON(http.StatusOK, collector)
}

type UpdateCollectorRequest struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	Zone     *string `json:"zone"`
	Status   *string `json:"status"`
	Password *string `json:"password"`
}

func (h *CollectorHandler) Update(c *gin.Context) {
	var collector models.Collector
	if err := h.db.First(&collector, c.Param("id")).Error; err != nil {
		respondError(c, apperrors.NotFound("Cobrador no encontrado"))
		return
	}

	var req UpdateCollectorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Zone != nil {
		updates["zone"] = *req.Zone
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.Password != nil && *req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			respondError(c, apperrors.Internal("No se pudo procesar la contraseña", err))
			return
		}
		updates["password_hash"] = string(hash)
	}

	if len(updates) > 0 {
		if err := h.db.Model(&collector).Updates(updates).Error; err != nil {
			respondError(c, apperrors.Internal("No se pudo actualizar el cobrador", err))
			return
		}
	}

	username, role := actorFrom(c)
	audit.Record(h.db, username, role, "update", "collector", collector.ID, fmt.Sprintf("%d campos modificados", len(updates)))

	c.JSON(http.StatusOK, collector)
}

// Delete removes a collector. Ownership is weak: assigned clients keep
// existing with their collector reference nulled out.
func (h *CollectorHandler) Delete(c *gin.Context) {
	var collector models.Collector
	if err := h.db.First(&collector, c.Param("id")).Error; err != nil {
		respondError(c, apperrors.NotFound("Cobrador no encontrado"))
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Client{}).Where("collector_id = ?", collector.ID).
			Update("collector_id", nil).Error; err != nil {
			return apperrors.Internal("No se pudo desvincular clientes", err)
		}
		if err := tx.Delete(&collector).Error; err != nil {
			return apperrors.Internal("No se pudo eliminar el cobrador", err)
		}
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}

	username, role := actorFrom(c)
	audit.Record(h.db, username, role, "delete", "collector", collector.ID, "cobrador "+collector.Username+" eliminado")

	c.JSON(http.StatusOK, gin.H{"message": "Cobrador eliminado"})
}

// AssignZonesRequest carries either a list of district/locality pairs or, for
// backward compatibility, a single flat pair.
type AssignZonesRequest struct {
	Locations []zones.Assignment `json:"locations"`
	Summary   string             `json:"summary"`

	// Flat single-pair form.
	District   string   `json:"district"`
	Localities []string `json:"localities"`
}

// AssignZones bulk-reassigns clients in the given localities to a collector.
// An empty locations list is a valid no-op that reports zero reassigned.
func (h *CollectorHandler) AssignZones(c *gin.Context) {
	var collector models.Collector
	if err := h.db.First(&collector, c.Param("id")).Error; err != nil {
		respondError(c, apperrors.NotFound("Cobrador no encontrado"))
		return
	}

	var req AssignZonesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	assignments := req.Locations
	if len(assignments) == 0 && req.District != "" {
		assignments = []zones.Assignment{{District: req.District, Localities: req.Localities}}
	}

	total, err := zones.BulkAssign(h.db, collector.ID, assignments, req.Summary)
	if err != nil {
		respondError(c, err)
		return
	}

	username, role := actorFrom(c)
	audit.Record(h.db, username, role, "assign_zones", "collector", collector.ID,
		fmt.Sprintf("%d clientes reasignados", total))

	c.JSON(http.StatusOK, gin.H{"assigned": total})
}
