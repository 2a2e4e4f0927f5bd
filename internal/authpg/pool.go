// Package authpg provides pgx-backed credential and refresh token stores for
// pgx:// database URLs, for deployments that want pooled PostgreSQL access
// without the GORM layer.
package authpg

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// BuildPool creates a pgx pool with pooling defaults suited to a small
// auth service. Accepts pgx:// URLs and rewrites them to postgres://.
func BuildPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	normalized := normalizeURL(databaseURL)
	config, err := pgxpool.ParseConfig(normalized)
	if err != nil {
		return nil, fmt.Errorf("authpg.pool.parse: %w", err)
	}
	config.MinConns = 1
	config.MaxConns = 8
	config.MaxConnLifetime = 30 * time.Minute
	config.HealthCheckPeriod = 30 * time.Second
	pool, newErr := pgxpool.NewWithConfig(ctx, config)
	if newErr != nil {
		return nil, fmt.Errorf("authpg.pool.connect: %w", newErr)
	}
	return pool, nil
}

func normalizeURL(databaseURL string) string {
	trimmed := strings.TrimSpace(databaseURL)
	if strings.HasPrefix(trimmed, "pgx://") {
		return "postgres://" + strings.TrimPrefix(trimmed, "pgx://")
	}
	return trimmed
}
