package handlers

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/miramax/cobranzas/config"
	"github.com/miramax/cobranzas/middleware"
	"github.com/miramax/cobranzas/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

type AuthHandler struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewAuthHandler(db *gorm.DB, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		DB:  db,
		Cfg: cfg,
	}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates the admin (env-configured credentials) or a collector
// (stored bcrypt hash) and issues an access/refresh token pair.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Username == h.Cfg.AdminUsername {
		if !adminPasswordMatches(h.Cfg.AdminPassword, req.Password) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Credenciales inválidas"})
			return
		}
		h.issueTokens(c, 0, h.Cfg.AdminUsername, middleware.RoleAdmin, nil)
		return
	}

	var collector models.Collector
	if err := h.DB.Where("username = ?", req.Username).First(&collector).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Credenciales inválidas"})
		return
	}
	if collector.Status != models.CollectorActive {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cobrador inactivo"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(collector.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Credenciales inválidas"})
		return
	}
	h.issueTokens(c, collector.ID, collector.Username, middleware.RoleCollector, &collector)
}

// RefreshToken request body
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Refresh handles token refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Validate refresh token using the refresh secret
	claims := &middleware.Claims{}
	token, err := jwt.ParseWithClaims(req.RefreshToken, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(h.Cfg.JWTRefreshSecret), nil
	})

	if err != nil || !token.Valid {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired refresh token", "code": "InvalidToken"})
		return
	}

	// Collectors are re-checked against the store so a deactivated account
	// cannot keep refreshing. The admin has no DB row to check.
	if claims.Role == middleware.RoleCollector {
		var collector models.Collector
		if err := h.DB.First(&collector, claims.UserID).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Cobrador no encontrado"})
			return
		}
		if collector.Status != models.CollectorActive {
			c.JSON(http.StatusForbidden, gin.H{"error": "Cobrador inactivo"})
			return
		}
	}

	h.issueTokens(c, claims.UserID, claims.Username, claims.Role, nil)
}

func (h *AuthHandler) issueTokens(c *gin.Context, userID uint, username, role string, collector *models.Collector) {
	accessToken, err := middleware.GenerateToken(userID, username, role, h.Cfg.JWTSecret, accessTokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate access token"})
		return
	}

	refreshToken, err := middleware.GenerateToken(userID, username, role, h.Cfg.JWTRefreshSecret, refreshTokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate refresh token"})
		return
	}

	resp := gin.H{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"role":          role,
	}
	if collector != nil {
		resp["collector"] = collector
	}
	c.JSON(http.StatusOK, resp)
}

// adminPasswordMatches accepts either a bcrypt hash or (for development) a
// plain value in ADMIN_PASSWORD. An empty configured password never matches.
func adminPasswordMatches(configured, supplied string) bool {
	if configured == "" {
		return false
	}
	if strings.HasPrefix(configured, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(configured), []byte(supplied)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(configured), []byte(supplied)) == 1
}
