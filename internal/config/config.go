package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort        string   `env:"APP_PORT" envDefault:"3000"`
	AppEnv         string   `env:"APP_ENV" envDefault:"development"`
	LogLevel       string   `env:"LOG_LEVEL" envDefault:"info"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"http://localhost:5173,http://127.0.0.1:5173,http://localhost:5174" envSeparator:","`

	DBDriver       string        `env:"DB_DRIVER" envDefault:"sqlite"` // "postgres" | "sqlite"
	DatabaseURL    string        `env:"DATABASE_URL" envDefault:"app.db"`
	DBSeedProducts bool          `env:"DB_SEED_PRODUCTS" envDefault:"false"`
	DBTimeout      time.Duration `env:"DB_TIMEOUT" envDefault:"5s"`

	// KVBackend selects the primary verification store. When the primary
	// cannot be reached at startup the in-process store is used instead.
	KVBackend     string        `env:"KV_BACKEND" envDefault:"redis"` // "redis" | "dynamodb" | "memory"
	RedisAddr     string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	StoreTimeout  time.Duration `env:"STORE_TIMEOUT" envDefault:"2s"`

	AWSRegion      string `env:"AWS_REGION" envDefault:"us-east-1"`
	AWSEndpointURL string `env:"AWS_ENDPOINT_URL"` // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretKey   string `env:"AWS_SECRET_ACCESS_KEY"`
	DynamoTable    string `env:"DYNAMO_TABLE_VERIFICATIONS" envDefault:"verification_sessions"`

	// EmailEnabled=false turns email delivery into a logged no-op that
	// reports success, which is what local development relies on.
	EmailEnabled  bool          `env:"EMAIL_ENABLED" envDefault:"false"`
	SMTPHost      string        `env:"SMTP_HOST" envDefault:"smtp.gmail.com"`
	SMTPPort      string        `env:"SMTP_PORT" envDefault:"587"`
	SMTPFrom      string        `env:"SMTP_FROM" envDefault:"noreply@example.com"`
	SMTPUsername  string        `env:"SMTP_USERNAME"`
	SMTPPassword  string        `env:"SMTP_PASSWORD"`
	NotifyTimeout time.Duration `env:"NOTIFY_TIMEOUT" envDefault:"10s"`

	SMSEnabled       bool   `env:"SMS_ENABLED" envDefault:"false"`
	SMSProvider      string `env:"SMS_PROVIDER" envDefault:"sns"` // "sns" | "twilio"
	SMSCountryCode   string `env:"SMS_COUNTRY_CODE" envDefault:"254"`
	SNSRegion        string `env:"SNS_REGION" envDefault:"us-east-1"`
	SNSSenderID      string `env:"SNS_SENDER_ID"`
	TwilioAccountSID string `env:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken  string `env:"TWILIO_AUTH_TOKEN"`
	TwilioFrom       string `env:"TWILIO_FROM"`

	JWTPrivateKeyPath string        `env:"JWT_PRIVATE_KEY_PATH" envDefault:"./private_key.pem"`
	JWTPublicKeyPath  string        `env:"JWT_PUBLIC_KEY_PATH" envDefault:"./public_key.pem"`
	JWTExpiry         time.Duration `env:"JWT_EXPIRY" envDefault:"168h"`
}

// Load reads all configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	switch cfg.KVBackend {
	case "redis", "dynamodb", "memory":
	default:
		return nil, fmt.Errorf("unsupported KV_BACKEND %q", cfg.KVBackend)
	}
	switch cfg.DBDriver {
	case "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	return &cfg, nil
}

// SMTPConfigured reports whether SMTP credentials are present.
func (c *Config) SMTPConfigured() bool {
	return c.SMTPUsername != "" && c.SMTPPassword != ""
}
