package postgres

import (
	"context"
	"fmt"
)

// EnsureSchema runs the DDL as one multi-statement call, which postgres
// executes in an implicit transaction.
func (c *Client) EnsureSchema(ctx context.Context) error {
	ddl := `
CREATE TABLE IF NOT EXISTS stories (
    id            TEXT PRIMARY KEY,
    title         TEXT NOT NULL DEFAULT '',
    description   TEXT NOT NULL DEFAULT '',
    audience      TEXT NOT NULL DEFAULT '',
    tags          TEXT[] NOT NULL DEFAULT '{}',
    source_file   TEXT NOT NULL DEFAULT '',
    source_hash   TEXT NOT NULL DEFAULT '',
    page_count    INTEGER NOT NULL DEFAULT 0,
    chapter_count INTEGER NOT NULL DEFAULT 0,
    advanced      BOOLEAN NOT NULL DEFAULT FALSE,
    snapshot      JSONB NOT NULL DEFAULT '{}',
    body          TEXT NOT NULL DEFAULT '',
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

ALTER TABLE stories ADD COLUMN IF NOT EXISTS search_vector TSVECTOR;

CREATE INDEX IF NOT EXISTS idx_stories_search ON stories USING GIN (search_vector);
CREATE INDEX IF NOT EXISTS idx_stories_tags ON stories USING GIN (tags);
CREATE INDEX IF NOT EXISTS idx_stories_source_file ON stories (source_file);
CREATE INDEX IF NOT EXISTS idx_stories_title ON stories (title);
`
	if _, err := c.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	c.log.Debug().Msg("schema ensured")
	return nil
}
