package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the service settings, read from the environment
type Config struct {
	Port     string `envconfig:"PORT" default:"8000"`
	AppEnv   string `envconfig:"APP_ENV" default:"dev"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	DatabaseURL  string        `envconfig:"DATABASE_URL"`
	DatabaseName string        `envconfig:"DATABASE_NAME" default:"storefront"`
	StoreTimeout time.Duration `envconfig:"STORE_TIMEOUT" default:"5s"`

	OrderClearAttempts int           `envconfig:"ORDER_CLEAR_ATTEMPTS" default:"3"`
	OrderClearBackoff  time.Duration `envconfig:"ORDER_CLEAR_BACKOFF" default:"100ms"`
	ReconcileLimit     int           `envconfig:"RECONCILE_LIMIT" default:"500"`

	JWTSecret    string `envconfig:"JWT_SECRET"`
	AuthRequired bool   `envconfig:"AUTH_REQUIRED" default:"false"`

	PostmarkAPIToken string `envconfig:"POSTMARK_API_TOKEN"`
	SendGridAPIKey   string `envconfig:"SENDGRID_API_KEY"`
	EmailSender      string `envconfig:"EMAIL_SENDER"`
}

// Load reads .env (if present) and then the process environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Proceeding with environment variables.")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
