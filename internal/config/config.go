package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Twilio      TwilioConfig
	Market      MarketConfig
	Reference   ReferenceConfig
	Jobs        JobsConfig
	AdminAPIKey string
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port                     string
	DisableWebhookValidation bool
	PublicURL                string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver                 string // postgres | sqlite | memory
	Host                   string
	Port                   int
	User                   string
	Password               string
	Name                   string
	SSLMode                string
	InstanceConnectionName string
	SQLitePath             string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// TwilioConfig holds Twilio credentials
type TwilioConfig struct {
	AccountSID   string
	AuthToken    string
	WhatsAppFrom string
	// ReminderTemplateSID is the Content SID of the approved reminder template
	ReminderTemplateSID string
}

// MarketConfig configures the external market price API
type MarketConfig struct {
	APIURL   string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// ReferenceConfig points at optional reference table overrides
type ReferenceConfig struct {
	WorkbookPath string
}

// JobsConfig configures scheduled jobs
type JobsConfig struct {
	ReminderInterval time.Duration
	ReminderAfter    time.Duration
}

// Load reads .env (development only) and then the process environment
func Load() (*Config, error) {
	env := getEnv("ENVIRONMENT", "development")
	if env == "development" {
		// Missing .env is fine, variables may come from the shell
		_ = godotenv.Load(".env")
	}

	cfg := &Config{
		Environment: env,
		Server: ServerConfig{
			Port:                     getEnv("PORT", "8080"),
			DisableWebhookValidation: getEnvAsBool("DISABLE_WEBHOOK_VALIDATION", env == "development"),
			PublicURL:                strings.TrimRight(getEnv("PUBLIC_URL", ""), "/"),
		},
		Database: DatabaseConfig{
			Driver:                 getEnv("DB_DRIVER", "postgres"),
			Host:                   getEnv("DB_HOST", "localhost"),
			Port:                   getEnvAsInt("DB_PORT", 5432),
			User:                   getEnv("DB_USER", "postgres"),
			Password:               getEnv("DB_PASS", ""),
			Name:                   getEnv("DB_NAME", "agrocredito"),
			SSLMode:                getEnv("DB_SSLMODE", "disable"),
			InstanceConnectionName: getEnv("INSTANCE_CONNECTION_NAME", ""),
			SQLitePath:             getEnv("SQLITE_PATH", "agrocredito.db"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Twilio: TwilioConfig{
			AccountSID:          getEnv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:           getEnv("TWILIO_AUTH_TOKEN", ""),
			WhatsAppFrom:        getEnv("TWILIO_WHATSAPP_FROM", ""),
			ReminderTemplateSID: getEnv("TWILIO_REMINDER_TEMPLATE_SID", ""),
		},
		Market: MarketConfig{
			APIURL:   strings.TrimRight(getEnv("MARKET_API_URL", ""), "/"),
			Timeout:  getEnvAsDuration("MARKET_API_TIMEOUT", 5*time.Second),
			CacheTTL: getEnvAsDuration("MARKET_CACHE_TTL", 6*time.Hour),
		},
		Reference: ReferenceConfig{
			WorkbookPath: getEnv("REFERENCE_WORKBOOK", ""),
		},
		Jobs: JobsConfig{
			ReminderInterval: getEnvAsDuration("REMINDER_INTERVAL", time.Hour),
			ReminderAfter:    getEnvAsDuration("REMINDER_AFTER", 24*time.Hour),
		},
		AdminAPIKey: getEnv("ADMIN_API_KEY", ""),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite", "memory":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.Jobs.ReminderInterval <= 0 {
		return fmt.Errorf("REMINDER_INTERVAL must be positive")
	}
	if c.AdminAPIKey == "" && !c.IsDevelopment() {
		return fmt.Errorf("ADMIN_API_KEY is required outside development")
	}
	return nil
}

// IsDevelopment reports whether the service runs locally
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// TwilioConfigured reports whether outbound WhatsApp is possible
func (c *TwilioConfig) TwilioConfigured() bool {
	return c.AccountSID != "" && c.AuthToken != "" && c.WhatsAppFrom != ""
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	if c.InstanceConnectionName != "" {
		// Cloud Run with Cloud SQL connects over the unix socket
		return fmt.Sprintf("host=/cloudsql/%s user=%s password=%s dbname=%s sslmode=disable",
			c.InstanceConnectionName, c.User, c.Password, c.Name)
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
