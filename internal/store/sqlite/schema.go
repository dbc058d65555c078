package sqlite

import (
	"context"
	"fmt"
	"strings"
)

func (c *Client) EnsureSchema(ctx context.Context) error {
	ddl := `
	CREATE TABLE IF NOT EXISTS stories (
		id            TEXT PRIMARY KEY,
		title         TEXT NOT NULL DEFAULT '',
		description   TEXT NOT NULL DEFAULT '',
		audience      TEXT NOT NULL DEFAULT '',
		tags          TEXT NOT NULL DEFAULT '[]',
		source_file   TEXT NOT NULL DEFAULT '',
		source_hash   TEXT NOT NULL DEFAULT '',
		page_count    INTEGER NOT NULL DEFAULT 0,
		chapter_count INTEGER NOT NULL DEFAULT 0,
		advanced      INTEGER NOT NULL DEFAULT 0,
		snapshot      TEXT NOT NULL DEFAULT '{}',
		body          TEXT NOT NULL DEFAULT '',
		updated_at    TEXT DEFAULT (datetime('now'))
	);

	CREATE INDEX IF NOT EXISTS idx_stories_source_file ON stories (source_file);
	CREATE INDEX IF NOT EXISTS idx_stories_title ON stories (title);

	CREATE VIRTUAL TABLE IF NOT EXISTS stories_fts USING fts5(
		title,
		tags,
		body,
		content=stories
	);

	CREATE TRIGGER IF NOT EXISTS stories_ai AFTER INSERT ON stories BEGIN
		INSERT INTO stories_fts(rowid, title, tags, body)
		VALUES (new.rowid, new.title, new.tags, new.body);
	END;

	CREATE TRIGGER IF NOT EXISTS stories_ad AFTER DELETE ON stories BEGIN
		INSERT INTO stories_fts(stories_fts, rowid, title, tags, body)
		VALUES ('delete', old.rowid, old.title, old.tags, old.body);
	END;

	CREATE TRIGGER IF NOT EXISTS stories_au AFTER UPDATE ON stories BEGIN
		INSERT INTO stories_fts(stories_fts, rowid, title, tags, body)
		VALUES ('delete', old.rowid, old.title, old.tags, old.body);
		INSERT INTO stories_fts(rowid, title, tags, body)
		VALUES (new.rowid, new.title, new.tags, new.body);
	END;
	`

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	statements := splitStatements(ddl)
	for _, stmt := range statements {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing DDL: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing schema transaction: %w", err)
	}

	c.log.Debug().Int("statements", len(statements)).Msg("schema ensured")
	return nil
}

// splitStatements splits on lines ending in ';'. Trigger bodies are kept
// whole because their inner statements are indented under BEGIN and only the
// END line closes the statement.
func splitStatements(ddl string) []string {
	var statements []string
	var current strings.Builder
	inTrigger := false

	for _, line := range strings.Split(ddl, "\n") {
		stripped := strings.TrimSpace(line)
		if strings.HasPrefix(stripped, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteString("\n")

		if strings.HasPrefix(stripped, "CREATE TRIGGER") {
			inTrigger = true
		}
		if inTrigger {
			if stripped == "END;" {
				inTrigger = false
				statements = append(statements, current.String())
				current.Reset()
			}
			continue
		}

		if strings.HasSuffix(stripped, ";") {
			statements = append(statements, current.String())
			current.Reset()
		}
	}

	if strings.TrimSpace(current.String()) != "" {
		statements = append(statements, current.String())
	}

	return statements
}
