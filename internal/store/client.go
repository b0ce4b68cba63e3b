// Package store persists telemetry to MySQL and serves the catalog of
// time-series reads behind the query service.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

// =============================================================================
// DATABASE CLIENT
// =============================================================================

// Config holds the MySQL connection settings.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	Timeout  time.Duration // connect/ping timeout (0 = none)
}

// Client manages the physical connection to the telemetry database.
type Client struct {
	db     *sqlx.DB
	config Config
}

// Option configures the client.
type Option func(*Client)

// WithTimeout sets the connect/ping timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.config.Timeout = d
	}
}

// NewClient opens and verifies a MySQL connection.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	client := &Client{config: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.config.Port == 0 {
		client.config.Port = 3306
	}

	mc := mysql.NewConfig()
	mc.Net = "tcp"
	mc.Addr = fmt.Sprintf("%s:%d", client.config.Host, client.config.Port)
	mc.User = client.config.User
	mc.Passwd = client.config.Password
	mc.DBName = client.config.Database
	mc.Params = map[string]string{"charset": "utf8mb4"}

	db, err := sqlx.Open("mysql", mc.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open mysql: %w", err)
	}

	ctx := context.Background()
	if client.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, client.config.Timeout)
		defer cancel()
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping mysql: %w", err)
	}

	// Writes are serialized through one connection; the manager is the
	// only writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	client.db = db
	return client, nil
}

// DB returns the underlying sqlx.DB instance.
func (c *Client) DB() *sqlx.DB {
	return c.db
}

// Close releases database resources.
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Ping verifies database connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if c.db == nil {
		return fmt.Errorf("database not initialized")
	}
	return c.db.PingContext(ctx)
}
