package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port           string
	Env            string
	JWTSecret      string
	JWTTTL         time.Duration
	MigrationsPath string
	// CORSAllowedHosts lists the storefront and admin panel hosts allowed
	// to call the API from a browser.
	CORSAllowedHosts []string

	DB     DatabaseConfig
	Mongo  MongoConfig
	Redis  RedisConfig
	Stock  StockConfig
	Admin  AdminConfig
	Worker WorkerConfig
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// MongoConfig contains the product catalog store parameters.
type MongoConfig struct {
	URI               string
	Database          string
	ProductCollection string
}

// RedisConfig contains Redis connection parameters.
type RedisConfig struct {
	Host            string
	Port            string
	Password        string
	DB              int
	ProductCacheTTL time.Duration
}

// StockConfig tunes the stock ledger.
type StockConfig struct {
	// PreventOversell makes reductions conditional on the leaf holding
	// enough stock. Off by default: counters may go negative.
	PreventOversell bool
	// LowThreshold triggers a stock.low event when a write leaves a leaf at
	// or below this value.
	LowThreshold int
}

// AdminConfig seeds the first admin account on startup. Empty email skips it.
type AdminConfig struct {
	BootstrapEmail    string
	BootstrapPassword string
}

// WorkerConfig controls background workers.
type WorkerConfig struct {
	// PendingOrderTTL is how long an order may stay pending before it is
	// cancelled and its stock restored. Zero disables expiry.
	PendingOrderTTL time.Duration
	ExpiryInterval  time.Duration
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Load .env if present; ignore error if file is missing so that production
	// environments relying solely on real environment variables keep working.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")
	cfg.JWTSecret = getEnv("JWT_SECRET", "")
	cfg.MigrationsPath = getEnv("MIGRATIONS_PATH", "file://migrations")
	cfg.CORSAllowedHosts = getEnvList("CORS_ALLOWED_HOSTS", "localhost:3000,127.0.0.1:3000")

	// Database
	cfg.DB = DatabaseConfig{
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Mongo
	cfg.Mongo = MongoConfig{
		URI:               getEnv("MONGO_URI", "mongodb://localhost:27017"),
		Database:          getEnv("MONGO_DATABASE", "storefront"),
		ProductCollection: getEnv("MONGO_PRODUCT_COLLECTION", "products"),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", "redis"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	// Stock
	cfg.Stock = StockConfig{
		PreventOversell: getEnvBool("STOCK_PREVENT_OVERSELL", false),
		LowThreshold:    getEnvInt("STOCK_LOW_THRESHOLD", 5),
	}

	// Admin bootstrap
	cfg.Admin = AdminConfig{
		BootstrapEmail:    getEnv("ADMIN_BOOTSTRAP_EMAIL", ""),
		BootstrapPassword: getEnv("ADMIN_BOOTSTRAP_PASSWORD", ""),
	}
	if cfg.Admin.BootstrapEmail != "" && len(cfg.Admin.BootstrapPassword) < 8 {
		return nil, errors.New("ADMIN_BOOTSTRAP_PASSWORD must be at least 8 characters when ADMIN_BOOTSTRAP_EMAIL is set")
	}

	var err error
	if cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", "24h"); err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	if cfg.Redis.ProductCacheTTL, err = parseDurationEnv("PRODUCT_CACHE_TTL", "5m"); err != nil {
		return nil, fmt.Errorf("invalid PRODUCT_CACHE_TTL: %w", err)
	}
	if cfg.Worker.PendingOrderTTL, err = parseDurationEnv("PENDING_ORDER_TTL", "0s"); err != nil {
		return nil, fmt.Errorf("invalid PENDING_ORDER_TTL: %w", err)
	}
	if cfg.Worker.ExpiryInterval, err = parseDurationEnv("ORDER_EXPIRY_INTERVAL", "5m"); err != nil {
		return nil, fmt.Errorf("invalid ORDER_EXPIRY_INTERVAL: %w", err)
	}
	if cfg.Worker.PendingOrderTTL > 0 && cfg.Worker.ExpiryInterval == 0 {
		return nil, errors.New("ORDER_EXPIRY_INTERVAL must be > 0 when PENDING_ORDER_TTL is set")
	}

	if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.Name == "" {
		return nil, errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
	}

	// Validate JWT_SECRET
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set for authentication")
	}

	return cfg, nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// getEnvBool returns the value of an environment variable as a bool or a default if empty/invalid.
func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// getEnvList splits a comma separated environment variable, dropping empty entries.
func getEnvList(key, def string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, def), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}
