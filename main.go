package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/miramax/cobranzas/config"
	"github.com/miramax/cobranzas/handlers"
	"github.com/miramax/cobranzas/middleware"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Setup router
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "Authorization"},
	}))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "cobranzas-api",
		})
	})

	// Uploaded vouchers and QR images
	router.Static("/uploads", cfg.UploadDir)

	authHandler := handlers.NewAuthHandler(db, cfg)
	clientHandler := handlers.NewClientHandler(db, cfg)
	collectorHandler := handlers.NewCollectorHandler(db, cfg)
	debtHandler := handlers.NewDebtHandler(db, cfg)
	paymentHandler := handlers.NewPaymentHandler(db, cfg)
	configHandler := handlers.NewSystemConfigHandler(db, cfg)

	api := router.Group("/api/v1")
	{
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/refresh", authHandler.Refresh)

		// Public client portal: debt lookup by DNI, payment report, voucher
		// submission.
		public := api.Group("/public")
		{
			public.GET("/clients/:dni/debts", clientHandler.CheckDebt)
			public.POST("/debts/report", debtHandler.Report)
			public.POST("/payments", paymentHandler.ClientPayment)
		}

		// Field collector portal.
		collector := api.Group("/collector")
		collector.Use(middleware.JwtAuthMiddleware(cfg), middleware.RequireRole(middleware.RoleCollector))
		{
			collector.GET("/clients", clientHandler.Portfolio)
			collector.POST("/payments", paymentHandler.FieldCollection)
		}

		// Admin portal.
		admin := api.Group("/admin")
		admin.Use(middleware.JwtAuthMiddleware(cfg), middleware.RequireRole(middleware.RoleAdmin))
		{
			admin.POST("/clients", clientHandler.Register)
			admin.GET("/clients", clientHandler.List)
			admin.GET("/clients/:id", clientHandler.Get)
			admin.PUT("/clients/:id", clientHandler.Update)
			admin.DELETE("/clients/:id", clientHandler.Delete)
			admin.GET("/clients/:id/history", configHandler.History)

			admin.POST("/collectors", collectorHandler.Create)
			admin.GET("/collectors", collectorHandler.List)
			admin.GET("/collectors/:id", collectorHandler.Get)
			admin.PUT("/collectors/:id", collectorHandler.Update)
			admin.DELETE("/collectors/:id", collectorHandler.Delete)
			admin.POST("/collectors/:id/zones", collectorHandler.AssignZones)

			admin.POST("/debts", debtHandler.Create)
			admin.GET("/debts", debtHandler.List)
			admin.PUT("/debts/:id", debtHandler.Update)
			admin.DELETE("/debts/:id", debtHandler.Delete)
			admin.POST("/debts/:id/verify", debtHandler.Verify)
			admin.POST("/debts/:id/reject", debtHandler.Reject)
			admin.GET("/debts/:id/receipt", debtHandler.Receipt)

			admin.GET("/payments", paymentHandler.List)

			admin.GET("/config", configHandler.Get)
			admin.PUT("/config", configHandler.Upsert)
			admin.POST("/config/qr", configHandler.UploadQR)
		}
	}

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting Cobranzas API server on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
