package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port        string
	DatabaseURL string
	CORSOrigins []string

	JWTSecret string // base64-encoded, decodes to >= 32 bytes
	JWTTTL    time.Duration

	RedisURL string // empty = revocation disabled (no-op store)

	BrokerURL string // empty = event publishing disabled

	SMTPHost string // empty = mail alerts disabled
	SMTPPort int
	SMTPUser string
	SMTPPass string
	MailFrom string

	AIServiceURL string

	PaymentWebhookSecret string

	TenantCurrency string

	TrialDays        int
	SubscriptionDays int

	AIChatLimitActive int
	AIChatLimitTrial  int
	AIChatLimitFree   int

	LoginMaxAttempts      int
	LoginWindowMinutes    int
	RegisterMaxAttempts   int
	RegisterWindowMinutes int
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	cfg := Config{
		Port:        fallback(os.Getenv("PORT"), "8080"),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		CORSOrigins: parseCSV(fallback(os.Getenv("CORS_ALLOWED_ORIGINS"), "*")),

		JWTSecret: strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTTTL:    time.Duration(intEnv("JWT_TTL_HOURS", 24)) * time.Hour,

		RedisURL:  strings.TrimSpace(os.Getenv("REDIS_URL")),
		BrokerURL: strings.TrimSpace(os.Getenv("RABBITMQ_URL")),

		SMTPHost: strings.TrimSpace(os.Getenv("SMTP_HOST")),
		SMTPPort: intEnv("SMTP_PORT", 587),
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),
		MailFrom: fallback(os.Getenv("MAIL_FROM"), os.Getenv("SMTP_USER")),

		AIServiceURL: fallback(os.Getenv("AI_SERVICE_URL"), "http://localhost:5000"),

		PaymentWebhookSecret: os.Getenv("PAYMENT_WEBHOOK_SECRET"),

		TenantCurrency: fallback(os.Getenv("TENANT_CURRENCY"), "USD"),

		TrialDays:        intEnv("TRIAL_DAYS", 5),
		SubscriptionDays: intEnv("SUBSCRIPTION_DAYS", 30),

		AIChatLimitActive: intEnv("AI_CHAT_LIMIT_ACTIVE", 50),
		AIChatLimitTrial:  intEnv("AI_CHAT_LIMIT_TRIAL", 10),
		AIChatLimitFree:   intEnv("AI_CHAT_LIMIT_FREE", 3),

		LoginMaxAttempts:      intEnv("RATE_LIMIT_LOGIN_MAX", 5),
		LoginWindowMinutes:    intEnv("RATE_LIMIT_LOGIN_WINDOW_MIN", 1),
		RegisterMaxAttempts:   intEnv("RATE_LIMIT_REGISTER_MAX", 3),
		RegisterWindowMinutes: intEnv("RATE_LIMIT_REGISTER_WINDOW_MIN", 10),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func intEnv(key string, def int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key))); err == nil && v > 0 {
		return v
	}
	return def
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
