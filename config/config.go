// Package config, uygulamanın tüm konfigürasyonunu merkezi olarak yönetir.
// Environment variable'lardan okur, .env dosyasını da destekler.
//
// Go'da "struct" bir veri yapısıdır — birden fazla field'ı bir arada tutar.
// Config struct'ı tüm ayarları tek bir yerde toplar, böylece
// her yerde ayrı ayrı os.Getenv() çağırmak yerine tek bir Config nesnesi taşırız.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config, uygulamanın tüm konfigürasyon değerlerini taşır.
// Her alt bölüm ayrı bir struct — Single Responsibility: her struct tek bir concern'ü temsil eder.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Email    EmailConfig
	AI       AIConfig
	HTTP     HTTPConfig
	Storage  StorageConfig
}

// ServerConfig, HTTP server ayarları.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig, SQLite database ayarları.
type DatabaseConfig struct {
	Path string // SQLite dosya yolu (ör: ./data/vita.db)
}

// RedisConfig, paylaşılan sayaç/cache store ayarları.
// Rate limiting, response cache, refresh token cache ve doğrulama
// kodları aynı Redis instance'ını kullanır.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig, JWT token ayarları.
type JWTConfig struct {
	Secret             string // Token imzalama anahtarı — GİZLİ TUTULMALI
	AccessTokenExpiry  int    // Dakika cinsinden (varsayılan: 60)
	RefreshTokenExpiry int    // Gün cinsinden (varsayılan: 30)
}

// EmailConfig, Resend email servisi ayarları.
// ResendAPIKey boşsa email gönderimi devre dışı kalır — doğrulama kodları
// sadece loglanır (development kolaylığı).
type EmailConfig struct {
	ResendAPIKey string
	FromEmail    string
	AppName      string
}

// AIConfig, Gemini streaming API ayarları.
type AIConfig struct {
	APIKey            string
	Model             string // Sohbet yanıtları için model (varsayılan: gemini-2.0-flash)
	ModerationEnabled bool   // Mesaj gönderiminden önce AI moderation kontrolü
}

// HTTPConfig, request pipeline ayarları.
type HTTPConfig struct {
	MaxBodySize    int64    // POST body üst sınırı (byte)
	AllowedOrigins []string // CORS izinli origin listesi
}

// StorageConfig, S3 uyumlu obje deposu (MinIO) ayarları.
// Chat dosya ekleri burada saklanır; Endpoint boşsa upload devre dışı kalır
// (development kolaylığı — email'deki ResendAPIKey davranışıyla aynı).
type StorageConfig struct {
	Endpoint    string
	AccessKey   string
	SecretKey   string
	Bucket      string
	UseSSL      bool
	MaxFileSize int64 // Upload üst sınırı (byte)
}

// Load, environment variable'lardan Config oluşturur.
// .env dosyası varsa önce onu yükler (development kolaylığı için).
//
// Go'da error handling: Go'da exception/try-catch yoktur.
// Fonksiyonlar hata durumunda (value, error) tuple'ı döner.
// Çağıran taraf her zaman error'ı kontrol ETMEK ZORUNDADIR.
func Load() (*Config, error) {
	// .env dosyasını yükle — dosya yoksa hata vermez, sessizce devam eder.
	// Production'da bu dosya olmaz, gerçek env variable'lar kullanılır.
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("SERVER_PORT", "9090"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	accessExpiry, err := strconv.Atoi(getEnv("JWT_ACCESS_EXPIRY_MINUTES", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_EXPIRY_MINUTES: %w", err)
	}

	refreshExpiry, err := strconv.Atoi(getEnv("JWT_REFRESH_EXPIRY_DAYS", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_REFRESH_EXPIRY_DAYS: %w", err)
	}

	maxBody, err := strconv.ParseInt(getEnv("HTTP_MAX_BODY_SIZE", "10485760"), 10, 64) // 10MB
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_MAX_BODY_SIZE: %w", err)
	}

	maxFileMB, err := strconv.ParseInt(getEnv("CHAT_MAX_FILE_SIZE_MB", "10"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid CHAT_MAX_FILE_SIZE_MB: %w", err)
	}

	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		Database: DatabaseConfig{
			Path: getEnv("DATABASE_PATH", "./data/vita.db"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		JWT: JWTConfig{
			Secret:             jwtSecret,
			AccessTokenExpiry:  accessExpiry,
			RefreshTokenExpiry: refreshExpiry,
		},
		Email: EmailConfig{
			ResendAPIKey: getEnv("RESEND_API_KEY", ""),
			FromEmail:    getEnv("EMAIL_FROM", ""),
			AppName:      getEnv("APP_NAME", "vita"),
		},
		AI: AIConfig{
			APIKey:            getEnv("GEMINI_API_KEY", ""),
			Model:             getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			ModerationEnabled: getEnv("CHAT_MODERATION_ENABLED", "true") == "true",
		},
		HTTP: HTTPConfig{
			MaxBodySize:    maxBody,
			AllowedOrigins: splitComma(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		Storage: StorageConfig{
			Endpoint:    getEnv("STORAGE_ENDPOINT", ""),
			AccessKey:   getEnv("STORAGE_ACCESS_KEY", ""),
			SecretKey:   getEnv("STORAGE_SECRET_KEY", ""),
			Bucket:      getEnv("STORAGE_BUCKET", "vita-chat-uploads"),
			UseSSL:      getEnv("STORAGE_USE_SSL", "false") == "true",
			MaxFileSize: maxFileMB * 1024 * 1024,
		},
	}

	return cfg, nil
}

// Addr, HTTP server'ın dinleyeceği adresi döner (ör: "0.0.0.0:9090").
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv, environment variable'ı okur, yoksa fallback değeri döner.
func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

// splitComma, virgülle ayrılmış env değerini listeye çevirir.
// Boş parçalar atlanır ("a,,b" → ["a","b"]).
func splitComma(s string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			part := s[start:i]
			if part != "" {
				out = append(out, part)
			}
			start = i + 1
		}
	}
	return out
}
