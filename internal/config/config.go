package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Database
	DatabaseURL string

	// Auth0
	Auth0Domain   string
	Auth0Audience string
	Auth0ClientID string

	// Server
	Port        string
	CORSOrigins []string
	Env         string

	// Per-user ceiling on transaction creation
	TransactionRateLimitPerHour int

	// Shared secret for the internal trigger endpoints. Empty disables them.
	InternalAPIKey string

	Scheduler SchedulerConfig
	Jobs      JobsConfig
	Budget    BudgetConfig
	Email     EmailConfig
	Gemini    GeminiConfig

	// S3 Storage
	S3 S3Config
}

// SchedulerConfig holds the cron triggers for the background sweeps
type SchedulerConfig struct {
	Enabled            bool
	RecurringSweepCron string
	BudgetAlertCron    string
	Timezone           string
}

// Location resolves the configured timezone, falling back to UTC
func (s SchedulerConfig) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// JobsConfig holds work-item delivery settings
type JobsConfig struct {
	Workers                    int
	MaxAttempts                int
	RetryBaseDelay             time.Duration
	RecurringThrottlePerMinute int
}

// BudgetConfig holds budget alert settings
type BudgetConfig struct {
	AlertThreshold float64 // percent
}

// EmailConfig holds the transactional email provider settings
type EmailConfig struct {
	ResendAPIKey string // Empty = log emails instead of sending
	From         string
}

// GeminiConfig holds the receipt scanner settings
type GeminiConfig struct {
	APIKey string // Empty = receipt scanning disabled
	Model  string
}

// S3Config holds AWS S3 configuration
type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // Optional: for MinIO/LocalStack local dev
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:                 getEnv("DATABASE_URL", ""),
		Auth0Domain:                 getEnv("AUTH0_DOMAIN", ""),
		Auth0Audience:               getEnv("AUTH0_AUDIENCE", ""),
		Auth0ClientID:               getEnv("AUTH0_CLIENT_ID", ""),
		Port:                        getEnv("PORT", "8080"),
		CORSOrigins:                 strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ","),
		Env:                         getEnv("ENV", "development"),
		TransactionRateLimitPerHour: getEnvInt("TRANSACTION_RATE_LIMIT_PER_HOUR", 10),
		InternalAPIKey:              getEnv("INTERNAL_API_KEY", ""),
		Scheduler: SchedulerConfig{
			Enabled:            getEnvBool("SCHEDULER_ENABLED", true),
			RecurringSweepCron: getEnv("RECURRING_SWEEP_CRON", "0 0 * * *"),
			BudgetAlertCron:    getEnv("BUDGET_ALERT_CRON", "0 */6 * * *"),
			Timezone:           getEnv("SCHEDULER_TIMEZONE", "UTC"),
		},
		Jobs: JobsConfig{
			Workers:                    getEnvInt("JOB_WORKERS", 5),
			MaxAttempts:                getEnvInt("JOB_MAX_ATTEMPTS", 3),
			RetryBaseDelay:             getEnvDuration("JOB_RETRY_BASE_DELAY", time.Second),
			RecurringThrottlePerMinute: getEnvInt("RECURRING_THROTTLE_PER_MINUTE", 10),
		},
		Budget: BudgetConfig{
			AlertThreshold: getEnvFloat("BUDGET_ALERT_THRESHOLD", 80),
		},
		Email: EmailConfig{
			ResendAPIKey: getEnv("RESEND_API_KEY", ""),
			From:         getEnv("EMAIL_FROM", "SpendSmart <onboarding@resend.dev>"),
		},
		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
			Model:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		},
		S3: S3Config{
			Region:          getEnv("S3_REGION", "us-east-1"),
			Bucket:          getEnv("S3_BUCKET", ""),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Endpoint:        getEnv("S3_ENDPOINT", ""), // Empty = use AWS, set for MinIO/LocalStack
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Auth0Domain == "" {
		return fmt.Errorf("AUTH0_DOMAIN is required")
	}
	if c.Auth0Audience == "" {
		return fmt.Errorf("AUTH0_AUDIENCE is required")
	}
	if c.Jobs.Workers < 1 {
		return fmt.Errorf("JOB_WORKERS must be at least 1")
	}
	if c.Jobs.MaxAttempts < 1 {
		return fmt.Errorf("JOB_MAX_ATTEMPTS must be at least 1")
	}
	if c.Jobs.RecurringThrottlePerMinute < 1 {
		return fmt.Errorf("RECURRING_THROTTLE_PER_MINUTE must be at least 1")
	}
	if c.Budget.AlertThreshold <= 0 {
		return fmt.Errorf("BUDGET_ALERT_THRESHOLD must be positive")
	}
	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("SCHEDULER_TIMEZONE is invalid: %w", err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}
