package infra

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS videos (
	id            TEXT PRIMARY KEY,
	prompt        TEXT NOT NULL DEFAULT '',
	title         TEXT NOT NULL DEFAULT '',
	mode          TEXT NOT NULL DEFAULT 'video',
	video_url     TEXT NOT NULL,
	tts_audio_url TEXT,
	settings      JSONB NOT NULL DEFAULT '{}'::jsonb,
	generated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS videos_generated_at_idx ON videos (generated_at DESC);

CREATE TABLE IF NOT EXISTS studio_auth (
	password TEXT NOT NULL
);
`

// NewPgxPool connects, pings and makes sure the tables exist.
func NewPgxPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect pgxpool: %w", err)
	}

	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctxPing); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return pool, nil
}
