package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/FranksOps/careerscout/internal/storage"
	_ "modernc.org/sqlite"
)

var _ storage.Backend = (*sqliteBackend)(nil)

type sqliteBackend struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS upstream_fetches (
	id TEXT PRIMARY KEY,
	platform TEXT NOT NULL,
	url TEXT NOT NULL,
	method TEXT NOT NULL,
	status_code INTEGER NOT NULL,
	bytes INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL,
	detected_bot BOOLEAN NOT NULL,
	detection_src TEXT,
	created_at DATETIME NOT NULL,
	error TEXT
);
CREATE INDEX IF NOT EXISTS upstream_fetches_platform_idx ON upstream_fetches (platform, created_at);
`

// New opens (or creates) a SQLite audit log at dsn.
func New(dsn string) (storage.Backend, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create sqlite schema: %w", err)
	}

	return &sqliteBackend{db: db}, nil
}

func (b *sqliteBackend) Save(ctx context.Context, result *storage.FetchResult) error {
	query := `
	INSERT INTO upstream_fetches (
		id, platform, url, method, status_code, bytes, duration_ms, detected_bot, detection_src, created_at, error
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := b.db.ExecContext(ctx, query,
		result.ID,
		result.Platform,
		result.URL,
		result.Method,
		result.StatusCode,
		result.Bytes,
		result.Duration.Milliseconds(),
		result.DetectedBot,
		result.DetectionSrc,
		result.CreatedAt,
		result.Error,
	)
	if err != nil {
		return fmt.Errorf("insert fetch %s: %w", result.ID, err)
	}
	return nil
}

func (b *sqliteBackend) Query(ctx context.Context, filter storage.Filter) ([]*storage.FetchResult, error) {
	query := `SELECT id, platform, url, method, status_code, bytes, duration_ms, detected_bot, detection_src, created_at, error FROM upstream_fetches WHERE 1=1`
	args := []any{}

	if filter.Platform != "" {
		query += ` AND platform = ?`
		args = append(args, filter.Platform)
	}
	if filter.URL != "" {
		query += ` AND url = ?`
		args = append(args, filter.URL)
	}
	if filter.DetectedBot != nil {
		query += ` AND detected_bot = ?`
		args = append(args, *filter.DetectedBot)
	}
	if filter.Since != nil {
		query += ` AND created_at >= ?`
		args = append(args, *filter.Since)
	}

	query += ` ORDER BY created_at DESC`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		if filter.Limit <= 0 {
			query += ` LIMIT -1`
		}
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query fetches: %w", err)
	}
	defer rows.Close()

	var results []*storage.FetchResult
	for rows.Next() {
		var r storage.FetchResult
		var durationMs int64
		var detectionSrc, errText sql.NullString

		if err := rows.Scan(
			&r.ID, &r.Platform, &r.URL, &r.Method, &r.StatusCode, &r.Bytes,
			&durationMs, &r.DetectedBot, &detectionSrc, &r.CreatedAt, &errText,
		); err != nil {
			return nil, fmt.Errorf("scan fetch row: %w", err)
		}

		r.Duration = time.Duration(durationMs) * time.Millisecond
		r.DetectionSrc = detectionSrc.String
		r.Error = errText.String
		results = append(results, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fetch rows: %w", err)
	}
	return results, nil
}

func (b *sqliteBackend) Close() error {
	return b.db.Close()
}
