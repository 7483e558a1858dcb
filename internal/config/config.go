package config

import (
	"log"
	"os"
	"strconv"
)

type Config struct {
	HTTPPort         string
	DatabaseDSN      string
	JWTSecret        string
	CORSOrigins      string
	ProductImagePath string // Ürün fotoğraflarının kaydedileceği klasör yolu

	// Zamanlanmış işler (cron spec formatı)
	SnapshotCron     string // Gece stok fotoğrafı
	LowStockCron     string // Kritik stok taraması
	WebhookRetryCron string // Başarısız webhook tekrar denemeleri

	WebhookTimeoutSec  int // Webhook HTTP isteği zaman aşımı
	WebhookMaxAttempts int // Teslimat başına azami deneme
}

func Load() *Config {
	cfg := &Config{
		HTTPPort:         getEnv("HTTP_PORT", "8080"),
		DatabaseDSN:      getEnv("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=mutfak port=5432 sslmode=disable"),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		CORSOrigins:      getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		ProductImagePath: getEnv("PRODUCT_IMAGE_PATH", "./product-images"), // Default: local development için

		SnapshotCron:     getEnv("SNAPSHOT_CRON", "30 2 * * *"),
		LowStockCron:     getEnv("LOW_STOCK_CRON", "0 7 * * *"),
		WebhookRetryCron: getEnv("WEBHOOK_RETRY_CRON", "*/5 * * * *"),

		WebhookTimeoutSec:  getEnvInt("WEBHOOK_TIMEOUT_SEC", 10),
		WebhookMaxAttempts: getEnvInt("WEBHOOK_MAX_ATTEMPTS", 5),
	}

	// Production güvenlik kontrolleri
	if cfg.JWTSecret == "" {
		log.Fatal("[FATAL] JWT_SECRET environment değişkeni tanımlanmamış! Production için zorunludur.")
	}
	if len(cfg.JWTSecret) < 32 {
		log.Fatal("[FATAL] JWT_SECRET en az 32 karakter olmalıdır! Güvenlik riski.")
	}
	if cfg.DatabaseDSN == "host=localhost user=postgres password=postgres dbname=mutfak port=5432 sslmode=disable" {
		log.Println("[WARN] DATABASE_DSN varsayılan değer kullanılıyor, production için mutlaka kendi Postgres bağlantı bilgisini tanımla.")
	}
	if cfg.CORSOrigins == "http://localhost:5173" {
		log.Println("[WARN] CORS_ALLOWED_ORIGINS varsayılan değer kullanılıyor, production için mutlaka kendi domain'ini tanımla.")
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("[WARN] %s sayı değil, varsayılan kullanılıyor: %d", key, def)
	}
	return def
}
