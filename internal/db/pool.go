// Package db provides database connection pooling and startup checks.
package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	maxRetries    = 10
	retryBaseWait = 1 * time.Second
	retryMaxWait  = 10 * time.Second
)

// ChunkTable holds job-description chunks and their embeddings.
const ChunkTable = "jd_chunks"

var requiredExtensions = []string{"vector"}

// requiredColumns lists the columns the retrieval queries read and write.
var requiredColumns = []string{"chunk_id", "content", "heading", "department", "embedding", "created_at"}

// Connect creates a pgx connection pool, retrying with exponential backoff
// while the database comes up.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 1
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	var pool *pgxpool.Pool
	wait := retryBaseWait

	for attempt := 1; attempt <= maxRetries; attempt++ {
		pool, err = pgxpool.NewWithConfig(ctx, config)
		if err == nil {
			pingErr := pool.Ping(ctx)
			if pingErr == nil {
				slog.Info("database connected", "attempt", attempt)
				return pool, nil
			}
			err = pingErr
			pool.Close()
		}

		if attempt == maxRetries {
			break
		}
		slog.Warn("database connection failed, retrying",
			"attempt", attempt,
			"max_retries", maxRetries,
			"wait", wait.String(),
			"error", err,
		)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled during DB connect: %w", ctx.Err())
		case <-time.After(wait):
		}
		wait = min(wait*2, retryMaxWait)
	}

	return nil, fmt.Errorf("database connection failed after %d attempts: %w", maxRetries, err)
}

// CheckExtensions verifies that the pgvector extension is installed.
func CheckExtensions(ctx context.Context, pool *pgxpool.Pool) error {
	for _, ext := range requiredExtensions {
		var exists bool
		err := pool.QueryRow(ctx,
			"SELECT EXISTS(SELECT 1 FROM pg_extension WHERE extname = $1)", ext,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check extension %q: %w", ext, err)
		}
		if !exists {
			return fmt.Errorf("required extension %q is not installed", ext)
		}
		slog.Debug("extension check passed", "extension", ext)
	}
	return nil
}

// CheckChunkTable verifies that the chunk table exists with every column the
// service uses. The schema itself is managed outside this service.
func CheckChunkTable(ctx context.Context, pool *pgxpool.Pool) error {
	rows, err := pool.Query(ctx,
		"SELECT column_name FROM information_schema.columns WHERE table_name = $1", ChunkTable)
	if err != nil {
		return fmt.Errorf("check table %q: %w", ChunkTable, err)
	}
	defer rows.Close()

	present := make(map[string]bool)
	for rows.Next() {
		var col string
		if err := rows.Scan(&col); err != nil {
			return fmt.Errorf("scan column name: %w", err)
		}
		present[col] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("check table %q: %w", ChunkTable, err)
	}

	if len(present) == 0 {
		return fmt.Errorf("required table %q does not exist", ChunkTable)
	}
	if missing := MissingColumns(present); len(missing) > 0 {
		return fmt.Errorf("table %q is missing columns %v", ChunkTable, missing)
	}
	slog.Debug("table check passed", "table", ChunkTable)
	return nil
}

// MissingColumns returns the required chunk-table columns absent from present.
func MissingColumns(present map[string]bool) []string {
	var missing []string
	for _, c := range requiredColumns {
		if !present[c] {
			missing = append(missing, c)
		}
	}
	return missing
}

// StartupChecks runs all pre-flight checks (extension + table).
func StartupChecks(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("running startup checks...")

	if err := CheckExtensions(ctx, pool); err != nil {
		return fmt.Errorf("extension check failed: %w", err)
	}
	if err := CheckChunkTable(ctx, pool); err != nil {
		return fmt.Errorf("table check failed: %w", err)
	}
	slog.Info("startup checks passed")
	return nil
}
