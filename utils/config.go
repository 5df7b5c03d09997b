package utils

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds the runtime settings read from the environment
type Config struct {
	Port           string
	AppEnv         string
	LogLevel       string
	BaseURL        string
	MongoURI       string
	MongoDBName    string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	SnapshotTTL    time.Duration
	JWTSecret      string
	MailProvider   string
	SendGridAPIKey string
	PostmarkToken  string
	EmailSender    string
	OrderInbox     string
	RequestTimeout time.Duration
	StandardFee    decimal.Decimal
	RemoteFee      decimal.Decimal
}

// LoadConfig reads .env when present and falls back to process variables
func LoadConfig() (*Config, error) {
	// a missing .env is fine, the variables may come from the process
	_ = godotenv.Load()

	port := getEnv("PORT", "8000")
	cfg := &Config{
		Port:           port,
		AppEnv:         getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		BaseURL:        getEnv("BASE_URL", "http://localhost:"+port),
		MongoURI:       getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:    getEnv("MONGO_DB_NAME", "storefront"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisDB:        getEnvAsInt("REDIS_DB", 0),
		SnapshotTTL:    getEnvAsDuration("SNAPSHOT_TTL", 30*24*time.Hour),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		MailProvider:   getEnv("MAIL_PROVIDER", "postmark"),
		SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
		PostmarkToken:  getEnv("POSTMARK_API_TOKEN", ""),
		EmailSender:    getEnv("EMAIL_SENDER", ""),
		OrderInbox:     getEnv("ORDER_INBOX", ""),
		RequestTimeout: getEnvAsDuration("REQUEST_TIMEOUT", 5*time.Second),
	}

	var err error
	if cfg.StandardFee, err = decimal.NewFromString(getEnv("SHIPPING_FEE_STANDARD", "7")); err != nil {
		return nil, WrapConfigError("SHIPPING_FEE_STANDARD", err)
	}
	if cfg.RemoteFee, err = decimal.NewFromString(getEnv("SHIPPING_FEE_REMOTE", "14")); err != nil {
		return nil, WrapConfigError("SHIPPING_FEE_REMOTE", err)
	}
	if cfg.JWTSecret == "" {
		return nil, WrapConfigError("JWT_SECRET", ErrMissingValue)
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}
