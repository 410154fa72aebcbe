// Package postgres provides the relational access used by the periodic
// recalculation loop: a pgx connection pool and the organization listing.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/derril-tech/ai-social-engineering-defense-trainer/internal/config"
	"github.com/derril-tech/ai-social-engineering-defense-trainer/pkg/logger"
)

// NewPool establishes a pgx connection pool and verifies connectivity.
func NewPool(ctx context.Context, cfg *config.PostgresConfig, log logger.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres config: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	log.Info(ctx, "postgres connection pool established",
		logger.String("host", cfg.Host),
		logger.String("database", cfg.Database),
		logger.Int("max_conns", cfg.MaxConns),
	)

	return pool, nil
}
