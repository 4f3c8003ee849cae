package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/miramax/cobranzas/config"
	"github.com/miramax/cobranzas/middleware"
	"github.com/miramax/cobranzas/models"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	assert.NoError(t, err)
	assert.NoError(t, config.Migrate(db))
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:      "test-secret",
		CountryCode:    "51",
		BusinessName:   "MIRAMAX",
		MaxUploadBytes: 1 << 20,
	}
}

// asAdmin injects the identity the auth middleware would set.
func asAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", uint(0))
		c.Set("username", "admin")
		c.Set("role", middleware.RoleAdmin)
		c.Next()
	}
}

func seedClient(t *testing.T, db *gorm.DB, dni, phone string) models.Client {
	client := models.Client{DNI: dni, Name: "Juan Pérez", Phone: phone, Cost: 50}
	assert.NoError(t, db.Create(&client).Error)
	return client
}

func seedDebt(t *testing.T, db *gorm.DB, clientID uint, status models.DebtStatus) models.Debt {
	debt := models.Debt{ClientID: clientID, Month: "Diciembre", Year: 2025, Amount: 50, Status: status}
	assert.NoError(t, db.Create(&debt).Error)
	return debt
}

func jsonBody(t *testing.T, v interface{}) *bytes.Buffer {
	body, err := json.Marshal(v)
	assert.NoError(t, err)
	return bytes.NewBuffer(body)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func TestVerifyEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(db *gorm.DB) *gin.Engine {
		handler := NewDebtHandler(db, testConfig())
		router := gin.New()
		router.Use(asAdmin())
		router.POST("/debts/:id/verify", handler.Verify)
		return router
	}

	t.Run("Approves Debt With WhatsApp Link", func(t *testing.T) {
		db := setupTestDB(t)
		client := seedClient(t, db, "12345678", "987654321")
		debt := seedDebt(t, db, client.ID, models.DebtInReview)
		router := newRouter(db)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/debts/"+itoa(debt.ID)+"/verify", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var got models.Debt
		db.First(&got, debt.ID)
		assert.Equal(t, models.DebtPaid, got.Status)

		var payments []models.Payment
		db.Where("debt_id = ?", debt.ID).Find(&payments)
		assert.Len(t, payments, 1)
		assert.Equal(t, models.PaymentVerified, payments[0].VerificationStatus)

		var resp map[string]interface{}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Contains(t, resp["whatsapp_link"], "https://wa.me/51987654321")
		assert.Equal(t, "Juan Pérez", resp["client_name"])

		// Side channel recorded with the admin as actor.
		var history models.WhatsAppHistory
		assert.NoError(t, db.First(&history).Error)
		assert.Equal(t, models.MessagePaymentApproved, history.MessageType)
		assert.Equal(t, "admin", history.SentBy)
	})

	t.Run("Blank Phone Yields Empty Link", func(t *testing.T) {
		db := setupTestDB(t)
		client := seedClient(t, db, "12345678", "")
		debt := seedDebt(t, db, client.ID, models.DebtInReview)
		router := newRouter(db)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/debts/"+itoa(debt.ID)+"/verify", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp map[string]interface{}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "", resp["whatsapp_link"])
	})

	t.Run("Second Verify Conflicts Without Duplicate Payment", func(t *testing.T) {
		db := setupTestDB(t)
		client := seedClient(t, db, "12345678", "987654321")
		debt := seedDebt(t, db, client.ID, models.DebtInReview)
		router := newRouter(db)

		first := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/debts/"+itoa(debt.ID)+"/verify", nil)
		router.ServeHTTP(first, req)
		assert.Equal(t, http.StatusOK, first.Code)

		second := httptest.NewRecorder()
		req, _ = http.NewRequest("POST", "/debts/"+itoa(debt.ID)+"/verify", nil)
		router.ServeHTTP(second, req)
		assert.Equal(t, http.StatusConflict, second.Code)

		var count int64
		db.Model(&models.Payment{}).Count(&count)
		assert.Equal(t, int64(1), count)
	})

	t.Run("Missing Debt Is 404", func(t *testing.T) {
		db := setupTestDB(t)
		router := newRouter(db)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/debts/999/verify", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestRejectEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db := setupTestDB(t)
	client := seedClient(t, db, "12345678", "987654321")
	debt := seedDebt(t, db, client.ID, models.DebtInReview)

	handler := NewDebtHandler(db, testConfig())
	router := gin.New()
	router.Use(asAdmin())
	router.POST("/debts/:id/reject", handler.Reject)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/debts/"+itoa(debt.ID)+"/reject",
		jsonBody(t, RejectDebtRequest{Reason: "Comprobante ilegible"}))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var got models.Debt
	db.First(&got, debt.ID)
	assert.Equal(t, models.DebtPending, got.Status)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Comprobante ilegible", resp["reason"])

	var count int64
	db.Model(&models.Payment{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestReportEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db := setupTestDB(t)
	client := seedClient(t, db, "12345678", "")
	pending := seedDebt(t, db, client.ID, models.DebtPending)
	paid := seedDebt(t, db, client.ID, models.DebtPaid)

	handler := NewDebtHandler(db, testConfig())
	router := gin.New()
	router.POST("/debts/report", handler.Report)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/debts/report",
		jsonBody(t, ReportPaymentRequest{DNI: "12345678", DebtIDs: []uint{pending.ID, paid.ID}}))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var got models.Debt
	db.First(&got, pending.ID)
	assert.Equal(t, models.DebtInReview, got.Status)
	got = models.Debt{}
	db.First(&got, paid.ID)
	assert.Equal(t, models.DebtPaid, got.Status)
}

func TestReceiptEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db := setupTestDB(t)
	client := seedClient(t, db, "12345678", "")
	debt := seedDebt(t, db, client.ID, models.DebtPaid)

	handler := NewDebtHandler(db, testConfig())
	router := gin.New()
	router.Use(asAdmin())
	router.GET("/debts/:id/receipt", handler.Receipt)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/debts/"+itoa(debt.ID)+"/receipt", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))
}
