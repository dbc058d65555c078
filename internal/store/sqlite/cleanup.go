package sqlite

import (
	"context"
	"fmt"
	"strings"

	"waymark/internal/store"
)

// RemoveStaleStories deletes imported stories whose source file is not in
// currentSourceFiles. Stories saved without a source file are never touched.
func (c *Client) RemoveStaleStories(ctx context.Context, currentSourceFiles []string) (int64, error) {
	query := `DELETE FROM stories WHERE source_file <> ''`
	args := make([]any, len(currentSourceFiles))
	if len(currentSourceFiles) > 0 {
		placeholders := make([]string, len(currentSourceFiles))
		for i, f := range currentSourceFiles {
			placeholders[i] = "?"
			args[i] = f
		}
		query += fmt.Sprintf(" AND source_file NOT IN (%s)", strings.Join(placeholders, ", "))
	}

	result, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("removing stale stories: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("getting rows affected: %w", err)
	}

	if affected > 0 {
		c.log.Info().Int64("removed", affected).Msg("removed stale stories")
	}
	return affected, nil
}

func (c *Client) GetSourceHashes(ctx context.Context) (map[string]store.SourceHash, error) {
	query := `SELECT id, source_file, source_hash FROM stories WHERE source_file <> ''`

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query source hashes: %w", err)
	}
	defer rows.Close()

	hashes := make(map[string]store.SourceHash)
	for rows.Next() {
		var id, sourceFile, sourceHash string
		if err := rows.Scan(&id, &sourceFile, &sourceHash); err != nil {
			return nil, fmt.Errorf("scanning source hash: %w", err)
		}
		hashes[sourceFile] = store.SourceHash{StoryID: id, Hash: sourceHash}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating source hashes: %w", err)
	}

	return hashes, nil
}
