package database

import (
	"context"
	"fmt"
	"time"

	"cinelume/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// ConnString builds a libpq style connection string from the DB_* variables.
func ConnString() (string, error) {
	host, port, user, password, databaseName := config.DatabaseConfig()
	if host == "" || port == "" || user == "" || databaseName == "" {
		return "", fmt.Errorf("missing required database configuration")
	}

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, databaseName), nil
}

func Connect(ctx context.Context, log *logrus.Logger) (*pgxpool.Pool, error) {
	connStr, err := ConnString()
	if err != nil {
		return nil, err
	}

	cfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	// a CLI needs very few connections
	cfg.MaxConns = 2
	cfg.MinConns = 0
	cfg.MaxConnIdleTime = time.Minute
	cfg.HealthCheckPeriod = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Debug("Connection to database successful")
	return pool, nil
}
