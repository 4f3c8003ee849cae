package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/miramax/cobranzas/middleware"
	"github.com/miramax/cobranzas/models"
	"github.com/stretchr/testify/assert"
)

func TestFieldCollection(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db := setupTestDB(t)
	collector := seedCollector(t, db, "cobrador1")
	client := seedClient(t, db, "12345678", "")
	d1 := seedDebt(t, db, client.ID, models.DebtPending)
	d2 := seedDebt(t, db, client.ID, models.DebtPending)

	handler := NewPaymentHandler(db, testConfig())
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userID", collector.ID)
		c.Set("username", collector.Username)
		c.Set("role", middleware.RoleCollector)
		c.Next()
	})
	router.POST("/payments", handler.FieldCollection)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/payments", jsonBody(t, FieldCollectionRequest{
		ClientID:      client.ID,
		Amount:        100,
		PaymentMethod: "efectivo",
		DebtIDs:       []uint{d1.ID, d2.ID},
	}))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	// Field collections are self-verifying: paid on the spot.
	var payment models.Payment
	assert.NoError(t, db.First(&payment).Error)
	assert.Equal(t, models.PaymentVerified, payment.VerificationStatus)
	assert.Equal(t, models.PaymentTypeFieldCollection, payment.PaymentType)
	assert.NotNil(t, payment.CollectorID)
	assert.Equal(t, collector.ID, *payment.CollectorID)

	var debts []models.Debt
	db.Where("client_id = ?", client.ID).Find(&debts)
	for _, d := range debts {
		assert.Equal(t, models.DebtPaid, d.Status)
	}
}

func TestClientPayment(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRequest := func(t *testing.T, fields map[string]string) *http.Request {
		var body bytes.Buffer
		writer := multipart.NewWriter(&body)
		for k, v := range fields {
			assert.NoError(t, writer.WriteField(k, v))
		}
		assert.NoError(t, writer.Close())
		req, _ := http.NewRequest("POST", "/payments", &body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		return req
	}

	t.Run("Registers Unverified Payment Without Touching Debts", func(t *testing.T) {
		db := setupTestDB(t)
		client := seedClient(t, db, "12345678", "")
		debt := seedDebt(t, db, client.ID, models.DebtPending)

		cfg := testConfig()
		cfg.UploadDir = t.TempDir()
		handler := NewPaymentHandler(db, cfg)
		router := gin.New()
		router.POST("/payments", handler.ClientPayment)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, newRequest(t, map[string]string{
			"dni":    "12345678",
			"amount": "50",
		}))

		assert.Equal(t, http.StatusCreated, w.Code)

		var payment models.Payment
		assert.NoError(t, db.First(&payment).Error)
		assert.Equal(t, models.PaymentUnverified, payment.VerificationStatus)
		assert.Equal(t, models.PaymentTypeClientReport, payment.PaymentType)

		// The debt only moves to in_review when explicitly reported.
		var got models.Debt
		db.First(&got, debt.ID)
		assert.Equal(t, models.DebtPending, got.Status)
	})

	t.Run("Unknown DNI Is 404", func(t *testing.T) {
		db := setupTestDB(t)
		cfg := testConfig()
		cfg.UploadDir = t.TempDir()
		handler := NewPaymentHandler(db, cfg)
		router := gin.New()
		router.POST("/payments", handler.ClientPayment)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, newRequest(t, map[string]string{
			"dni":    "00000000",
			"amount": "50",
		}))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Invalid Amount Is 400", func(t *testing.T) {
		db := setupTestDB(t)
		seedClient(t, db, "12345678", "")
		cfg := testConfig()
		cfg.UploadDir = t.TempDir()
		handler := NewPaymentHandler(db, cfg)
		router := gin.New()
		router.POST("/payments", handler.ClientPayment)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, newRequest(t, map[string]string{
			"dni":    "12345678",
			"amount": "-5",
		}))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
