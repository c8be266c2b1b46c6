package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"HydroWatchAPI/internal/config"

	_ "github.com/lib/pq"
)

// Database wraps the pooled Postgres handle shared by every repository.
type Database struct {
	DB  *sql.DB
	cfg *config.DatabaseConfig
}

// New opens the pool and verifies the connection before returning. Schema
// setup is a separate step; call Migrate after New.
func New(cfg *config.DatabaseConfig) (*Database, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{DB: db, cfg: cfg}, nil
}

func (d *Database) Close() error {
	return d.DB.Close()
}

// Health confirms the backing store answers a round-trip query.
func (d *Database) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	var one int
	if err := d.DB.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	return nil
}
