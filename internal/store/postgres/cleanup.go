package postgres

import (
	"context"
	"fmt"

	"waymark/internal/store"
)

// RemoveStaleStories deletes imported stories whose source file is not in
// currentSourceFiles. Stories saved without a source file are never touched.
func (c *Client) RemoveStaleStories(ctx context.Context, currentSourceFiles []string) (int64, error) {
	if currentSourceFiles == nil {
		currentSourceFiles = []string{}
	}

	query := `
DELETE FROM stories
WHERE source_file <> ''
  AND NOT (source_file = ANY($1))
`

	tag, err := c.pool.Exec(ctx, query, currentSourceFiles)
	if err != nil {
		return 0, fmt.Errorf("removing stale stories: %w", err)
	}

	removed := tag.RowsAffected()
	if removed > 0 {
		c.log.Info().Int64("removed", removed).Msg("removed stale stories")
	}
	return removed, nil
}

func (c *Client) GetSourceHashes(ctx context.Context) (map[string]store.SourceHash, error) {
	query := `SELECT id, source_file, source_hash FROM stories WHERE source_file <> ''`

	rows, err := c.pool.Query(ctx, query)
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
