package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Admin
	AdminPassword      string
	AdminEmail         string
	AdminMaxAttempts   int
	AdminLockoutWindow time.Duration
	AdminSweepInterval time.Duration

	// Mail (Brevo)
	BrevoAPIKey  string
	SenderName   string
	SenderEmail  string
	SendInterval time.Duration
	SendTimeout  time.Duration

	// LinkedIn verification (Apify)
	ApifyToken    string
	VerifyTimeout time.Duration

	// Rate Limit
	RateLimitGeneral int
	RateLimitSubmit  int

	// Server
	ServerPort string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
// ADMIN_PASSWORDは意図的に必須としない: 未設定の場合は管理系エンドポイントが
// リクエスト時に設定エラー（フェイルクローズ）を返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.AdminPassword = os.Getenv("ADMIN_PASSWORD")
	cfg.AdminEmail = os.Getenv("ADMIN_EMAIL")
	cfg.AdminMaxAttempts = getEnvInt("ADMIN_MAX_ATTEMPTS", 5)
	cfg.AdminLockoutWindow = getEnvDuration("ADMIN_LOCKOUT_WINDOW", 60*time.Second)
	cfg.AdminSweepInterval = getEnvDuration("ADMIN_SWEEP_INTERVAL", time.Minute)

	cfg.BrevoAPIKey = os.Getenv("BREVO_API_KEY")
	cfg.SenderName = getEnvString("SENDER_NAME", "EngagePod")
	cfg.SenderEmail = getEnvString("SENDER_EMAIL", "hello@mail.engagepod.app")
	cfg.SendInterval = getEnvDuration("EMAIL_SEND_INTERVAL", 600*time.Millisecond)
	cfg.SendTimeout = getEnvDuration("EMAIL_SEND_TIMEOUT", 10*time.Second)

	cfg.ApifyToken = os.Getenv("APIFY_TOKEN")
	cfg.VerifyTimeout = getEnvDuration("VERIFY_TIMEOUT", 15*time.Second)

	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitSubmit = getEnvInt("RATE_LIMIT_SUBMIT", 10)

	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:5173")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
