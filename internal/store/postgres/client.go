package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"waymark/internal/store"
)

var _ store.Store = (*Client)(nil)

const applicationName = "waymark"

type Client struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// New connects a pool to dsn. The connection reports itself as "waymark"
// unless the dsn names an application already.
func New(ctx context.Context, dsn string, log zerolog.Logger) (*Client, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing postgres DSN: %w", err)
	}
	if _, ok := cfg.ConnConfig.RuntimeParams["application_name"]; !ok {
		cfg.ConnConfig.RuntimeParams["application_name"] = applicationName
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	log = log.With().Str("store", "postgres").Logger()
	log.Debug().
		Str("host", cfg.ConnConfig.Host).
		Str("database", cfg.ConnConfig.Database).
		Int32("max_conns", cfg.MaxConns).
		Msg("connected")
	return &Client{pool: pool, log: log}, nil
}

func (c *Client) Close(ctx context.Context) error {
	c.pool.Close()
	c.log.Debug().Msg("closed pool")
	return nil
}
