package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/miramax/cobranzas/apperrors"
	"github.com/miramax/cobranzas/audit"
	"github.com/miramax/cobranzas/config"
	"github.com/miramax/cobranzas/models"
	"github.com/miramax/cobranzas/uploads"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SystemConfigHandler struct {
	db    *gorm.DB
	cfg   *config.Config
	store *uploads.Store
}

func NewSystemConfigHandler(db *gorm.DB, cfg *config.Config) *SystemConfigHandler {
	return &SystemConfigHandler{
		db:    db,
		cfg:   cfg,
		store: uploads.NewStore(cfg.UploadDir, cfg.MaxUploadBytes),
	}
}

// Get returns the whole configuration as a flat key/value map.
func (h *SystemConfigHandler) Get(c *gin.Context) {
	var entries []models.SystemConfig
	if err := h.db.Find(&entries).Error; err != nil {
		respondError(c, apperrors.Internal("No se pudo leer la configuración", err))
		return
	}

	values := make(map[string]string, len(entries))
	for _, e := range entries {
		values[e.Key] = e.Value
	}
	c.JSON(http.StatusOK, values)
}

// Upsert writes the given keys, inserting or overwriting by unique key.
func (h *SystemConfigHandler) Upsert(c *gin.Context) {
	var values map[string]string
	if err := c.ShouldBindJSON(&values); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(values) == 0 {
		respondError(c, apperrors.Validation("No hay valores para guardar"))
		return
	}

	for key, value := range values {
		entry := models.SystemConfig{Key: key, Value: value}
		err := h.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&entry).Error
		if err != nil {
			respondError(c, apperrors.Internal("No se pudo guardar la configuración", err))
			return
		}
	}

	username, role := actorFrom(c)
	audit.Record(h.db, username, role, "update", "system_config", 0, "configuración actualizada")

	c.JSON(http.StatusOK, gin.H{"message": "Configuración guardada"})
}

// UploadQR stores the Yape QR image and records its filename in the config.
func (h *SystemConfigHandler) UploadQR(c *gin.Context) {
	fh, err := c.FormFile("qr")
	if err != nil {
		respondError(c, apperrors.Validation("Debe adjuntar la imagen del QR"))
		return
	}

	name, err := h.store.Save(fh)
	if err != nil {
		respondError(c, err)
		return
	}

	entry := models.SystemConfig{Key: models.ConfigYapeQRFile, Value: name}
	err = h.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		respondError(c, apperrors.Internal("No se pudo guardar la configuración", err))
		return
	}

	username, role := actorFrom(c)
	audit.Record(h.db, username, role, "update", "system_config", 0, "QR de Yape actualizado")

	c.JSON(http.StatusOK, gin.H{"file": name})
}

// History lists the outbound messages prepared for one client.
func (h *SystemConfigHandler) History(c *gin.Context) {
	var entries []models.WhatsAppHistory
	if err := h.db.Where("client_id = ?", c.Param("id")).
		Order("id DESC").Find(&entries).Error; err != nil {
		respondError(c, apperrors.Internal("No se pudo listar el historial", err))
		return
	}
	c.JSON(http.StatusOK, entries)
}
