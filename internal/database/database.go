package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver

	appconfig "github.com/atelierhq/storefront_api/internal/config"
)

// Retry policy shared by every store: up to 5 attempts, exponential backoff
// starting at 500ms and capped at 5s.
const (
	maxAttempts = 5
	baseDelay   = 500 * time.Millisecond
	pingTimeout = 5 * time.Second
)

// Connect establishes the PostgreSQL connection that backs orders and admin
// users. The returned *sqlx.DB has pool settings pre-configured and is pinged
// before returning.
func Connect(cfg *appconfig.DatabaseConfig) (*sqlx.DB, error) {
	if cfg == nil {
		return nil, errors.New("nil database config")
	}

	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		url.QueryEscape(cfg.User), url.QueryEscape(cfg.Password), cfg.Host, cfg.Port, cfg.Name, cfg.SSLMode,
	)

	var db *sqlx.DB
	err := withRetry("postgres", func() error {
		conn, err := sqlx.Open("postgres", dsn)
		if err != nil {
			return err
		}
		setPool(conn.DB)

		ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
		defer cancel()
		if err := conn.PingContext(ctx); err != nil {
			_ = conn.Close()
			return err
		}
		db = conn
		return nil
	})
	if err != nil {
		return nil, err
	}
	return db, nil
}

// setPool configures the connection pool for the database.
func setPool(db *sql.DB) {
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
}

// withRetry runs connect until it succeeds or maxAttempts is reached.
func withRetry(store string, connect func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if lastErr = connect(); lastErr == nil {
			return nil
		}
		if attempt < maxAttempts {
			sleepWithBackoff(attempt, baseDelay)
		}
	}
	return fmt.Errorf("failed to connect to %s after %d attempts: %w", store, maxAttempts, lastErr)
}

// sleepWithBackoff sleeps for an exponentially increasing duration.
func sleepWithBackoff(attempt int, base time.Duration) {
	d := base << (attempt - 1)
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	time.Sleep(d)
}
