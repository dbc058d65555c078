package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"waymark/internal/store"

	_ "modernc.org/sqlite"
)

var _ store.Store = (*Client)(nil)

var pragmas = []string{
	"PRAGMA busy_timeout = 30000;",
	"PRAGMA journal_mode = WAL;",
	"PRAGMA foreign_keys = ON;",
}

type Client struct {
	db  *sql.DB
	log zerolog.Logger
}

func New(ctx context.Context, dsn string, log zerolog.Logger) (*Client, error) {
	driverDSN, err := parseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing sqlite DSN: %w", err)
	}

	if dir := databaseDir(driverDSN); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", driverDSN)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	// Every connection to :memory: is its own database.
	if driverDSN == memoryDSN {
		db.SetMaxOpenConns(1)
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite: %w", err)
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", pragma, err)
		}
	}

	log = log.With().Str("store", "sqlite").Logger()
	log.Debug().Str("path", driverDSN).Msg("opened database")
	return &Client{db: db, log: log}, nil
}

func (c *Client) Close(ctx context.Context) error {
	return c.db.Close()
}
