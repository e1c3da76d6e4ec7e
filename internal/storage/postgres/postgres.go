package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/FranksOps/careerscout/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ storage.Backend = (*postgresBackend)(nil)

type postgresBackend struct {
	pool *pgxpool.Pool
}

const schema = `
CREATE TABLE IF NOT EXISTS upstream_fetches (
	id TEXT PRIMARY KEY,
	platform TEXT NOT NULL,
	url TEXT NOT NULL,
	method TEXT NOT NULL,
	status_code INTEGER NOT NULL,
	bytes BIGINT NOT NULL,
	duration_ms BIGINT NOT NULL,
	detected_bot BOOLEAN NOT NULL,
	detection_src TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	error TEXT
);
CREATE INDEX IF NOT EXISTS upstream_fetches_platform_idx ON upstream_fetches (platform, created_at DESC);
`

// New connects to Postgres at dsn and ensures the audit table exists.
func New(ctx context.Context, dsn string) (storage.Backend, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create postgres schema: %w", err)
	}

	return &postgresBackend{pool: pool}, nil
}

func (b *postgresBackend) Save(ctx context.Context, result *storage.FetchResult) error {
	query := `
	INSERT INTO upstream_fetches (
		id, platform, url, method, status_code, bytes, duration_ms, detected_bot, detection_src, created_at, error
	) VALUES (@id, @platform, @url, @method, @status_code, @bytes, @duration_ms, @detected_bot, @detection_src, @created_at, @error)
	ON CONFLICT (id) DO NOTHING
	`

	_, err := b.pool.Exec(ctx, query, pgx.NamedArgs{
		"id":            result.ID,
		"platform":      result.Platform,
		"url":           result.URL,
		"method":        result.Method,
		"status_code":   result.StatusCode,
		"bytes":         result.Bytes,
		"duration_ms":   result.Duration.Milliseconds(),
		"detected_bot":  result.DetectedBot,
		"detection_src": result.DetectionSrc,
		"created_at":    result.CreatedAt,
		"error":         result.Error,
	})
	if err != nil {
		return fmt.Errorf("insert fetch %s: %w", result.ID, err)
	}
	return nil
}

func (b *postgresBackend) Query(ctx context.Context, filter storage.Filter) ([]*storage.FetchResult, error) {
	query := `SELECT id, platform, url, method, status_code, bytes, duration_ms, detected_bot, COALESCE(detection_src, ''), created_at, COALESCE(error, '') FROM upstream_fetches WHERE 1=1`
	args := pgx.NamedArgs{}

	if filter.Platform != "" {
		query += ` AND platform = @platform`
		args["platform"] = filter.Platform
	}
	if filter.URL != "" {
		query += ` AND url = @url`
		args["url"] = filter.URL
	}
	if filter.DetectedBot != nil {
		query += ` AND detected_bot = @detected_bot`
		args["detected_bot"] = *filter.DetectedBot
	}
	if filter.Since != nil {
		query += ` AND created_at >= @since`
		args["since"] = *filter.Since
	}

	query += ` ORDER BY created_at DESC`

	if filter.Limit > 0 {
		query += ` LIMIT @limit`
		args["limit"] = filter.Limit
	}
	if filter.Offset > 0 {
		query += ` OFFSET @offset`
		args["offset"] = filter.Offset
	}

	rows, err := b.pool.Query(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("query fetches: %w", err)
	}

	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*storage.FetchResult, error) {
		var r storage.FetchResult
		var durationMs int64
		err := row.Scan(
			&r.ID, &r.Platform, &r.URL, &r.Method, &r.StatusCode, &r.Bytes,
			&durationMs, &r.DetectedBot, &r.DetectionSrc, &r.CreatedAt, &r.Error,
		)
		r.Duration = time.Duration(durationMs) * time.Millisecond
		return &r, err
	})
	if err != nil {
		return nil, fmt.Errorf("collect fetch rows: %w", err)
	}
	return results, nil
}

func (b *postgresBackend) Close() error {
	b.pool.Close()
	return nil
}
