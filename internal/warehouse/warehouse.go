// Package warehouse is the Redshift client: table DDL, the S3 staging
// COPY load, and the deduplicating merge into the final fact tables.
// Redshift speaks the postgres wire protocol, so the connection goes
// through database/sql with the pgx driver.
package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Config holds connection settings plus the names of the four fact
// tables and the COPY credentials.
type Config struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	Schema   string
	SSLMode  string

	// IAMRole is the role ARN Redshift assumes to read the landing
	// bucket during COPY.
	IAMRole string

	StagingSalesTable     string
	StagingInventoryTable string
	FinalSalesTable       string
	FinalInventoryTable   string

	// DropRecreateStaging and DropRecreateFinal force a DROP before
	// CREATE. Dropping the final table discards history; it exists for
	// schema rebuilds only.
	DropRecreateStaging bool
	DropRecreateFinal   bool
}

// Client wraps one warehouse connection.
type Client struct {
	db     *sql.DB
	cfg    Config
	logger *slog.Logger
}

// Open connects and pings the warehouse. A nil logger discards.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	db, err := sql.Open("pgx", buildDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open warehouse connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping warehouse: %w", err)
	}

	logger.Info("warehouse connection established", "host", cfg.Host, "database", cfg.Database)
	return &Client{db: db, cfg: cfg, logger: logger}, nil
}

// NewWithDB wraps an existing handle. Used by tests with a mock driver.
func NewWithDB(db *sql.DB, cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{db: db, cfg: cfg, logger: logger}
}

// Close releases the connection.
func (c *Client) Close() error {
	return c.db.Close()
}

func buildDSN(cfg Config) string {
	port := cfg.Port
	if port == 0 {
		port = 5439
	}
	dsn := fmt.Sprintf("host=%s port=%d dbname=%s", cfg.Host, port, cfg.Database)
	if cfg.User != "" {
		dsn += fmt.Sprintf(" user=%s", cfg.User)
	}
	if cfg.Password != "" {
		dsn += fmt.Sprintf(" password=%s", cfg.Password)
	}
	if cfg.SSLMode != "" {
		dsn += fmt.Sprintf(" sslmode=%s", cfg.SSLMode)
	}
	if cfg.Schema != "" {
		dsn += fmt.Sprintf(" search_path=%s", cfg.Schema)
	}
	return dsn
}

// StoreIDs returns the store_id column of a reference table, satisfying
// the parser-side store lookup.
func (c *Client) StoreIDs(ctx context.Context, tableName string) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, fmt.Sprintf("SELECT store_id FROM %s", tableName))
	if err != nil {
		return nil, fmt.Errorf("failed to query store table %s: %w", tableName, err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan store id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating store table %s: %w", tableName, err)
	}
	return ids, nil
}
