// Package clickhouse implements the read-only event aggregate queries against
// the columnar analytics store.
package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/derril-tech/ai-social-engineering-defense-trainer/internal/config"
	"github.com/derril-tech/ai-social-engineering-defense-trainer/pkg/logger"
)

// NewConnection opens and verifies a native ClickHouse connection.
func NewConnection(cfg *config.ClickHouseConfig, log logger.Logger) (driver.Conn, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: cfg.Addresses,
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		DialTimeout:     time.Duration(cfg.DialTimeout) * time.Second,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: time.Hour,
		Compression:     &clickhouse.Compression{Method: clickhouse.CompressionLZ4},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open clickhouse connection: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}

	log.Info(ctx, "clickhouse connection established",
		logger.Any("addresses", cfg.Addresses),
		logger.String("database", cfg.Database),
	)

	return conn, nil
}
