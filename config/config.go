package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/miramax/cobranzas/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Config struct {
	Port             string
	DatabaseURL      string
	JWTSecret        string
	JWTRefreshSecret string
	AdminUsername    string
	AdminPassword    string
	UploadDir        string
	MaxUploadBytes   int64
	CountryCode      string
	BusinessName     string
	DevMode          bool
}

func LoadConfig() (*Config, error) {
	godotenv.Load()

	maxUpload, err := strconv.ParseInt(getEnvOrDefault("MAX_UPLOAD_BYTES", "5242880"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_UPLOAD_BYTES: %w", err)
	}

	return &Config{
		Port:             os.Getenv("PORT"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		JWTSecret:        getEnvOrDefault("JWT_SECRET", "dev-secret"),
		JWTRefreshSecret: getEnvOrDefault("JWT_REFRESH_SECRET", "dev-refresh-secret"),
		AdminUsername:    getEnvOrDefault("ADMIN_USERNAME", "admin"),
		AdminPassword:    os.Getenv("ADMIN_PASSWORD"),
		UploadDir:        getEnvOrDefault("UPLOAD_DIR", "uploads"),
		MaxUploadBytes:   maxUpload,
		CountryCode:      getEnvOrDefault("COUNTRY_CODE", "51"),
		BusinessName:     getEnvOrDefault("BUSINESS_NAME", "MIRAMAX"),
		DevMode:          os.Getenv("GIN_MODE") != "release",
	}, nil
}

func InitDB(cfg *Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates or updates the schema for every table the service owns.
// Shared with tests, which run it against in-memory sqlite.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Collector{},
		&models.Client{},
		&models.Debt{},
		&models.Payment{},
		&models.SystemConfig{},
		&models.WhatsAppHistory{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
