package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"waymark/internal/store"
)

func (c *Client) SaveStory(ctx context.Context, s store.StoryInput) error {
	if strings.TrimSpace(s.ID) == "" {
		return fmt.Errorf("story id is required")
	}

	tags := s.Tags
	if tags == nil {
		tags = []string{}
	}
	snapshot := s.Snapshot
	if len(snapshot) == 0 {
		snapshot = []byte("{}")
	}

	query := `
INSERT INTO stories (id, title, description, audience, tags, source_file, source_hash,
    page_count, chapter_count, advanced, snapshot, body, updated_at, search_vector)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now(),
    setweight(to_tsvector('simple', coalesce($2, '')), 'A') ||
    setweight(to_tsvector('english', array_to_string($5::text[], ' ')), 'B') ||
    setweight(to_tsvector('english', coalesce($12, '')), 'C')
)
ON CONFLICT (id) DO UPDATE SET
    title = EXCLUDED.title,
    description = EXCLUDED.description,
    audience = EXCLUDED.audience,
    tags = EXCLUDED.tags,
    source_file = EXCLUDED.source_file,
    source_hash = EXCLUDED.source_hash,
    page_count = EXCLUDED.page_count,
    chapter_count = EXCLUDED.chapter_count,
    advanced = EXCLUDED.advanced,
    snapshot = EXCLUDED.snapshot,
    body = EXCLUDED.body,
    updated_at = now(),
    search_vector = EXCLUDED.search_vector
`

	_, err := c.pool.Exec(ctx, query,
		s.ID,
		s.Title,
		s.Description,
		s.Audience,
		tags,
		s.SourceFile,
		s.SourceHash,
		s.PageCount,
		s.ChapterCount,
		s.Advanced,
		string(snapshot),
		s.Body,
	)
	if err != nil {
		return fmt.Errorf("saving story: %w", err)
	}
	c.log.Debug().Str("story", s.ID).Str("source", s.SourceFile).Msg("saved story")
	return nil
}

func (c *Client) GetStory(ctx context.Context, id string) (*store.StoryRecord, error) {
	query := `
SELECT id, title, description, audience, tags, source_file, source_hash,
    page_count, chapter_count, advanced, snapshot::text, updated_at
FROM stories
WHERE id = $1
`

	var r store.StoryRecord
	var snapshot string
	var updatedAt time.Time
	err := c.pool.QueryRow(ctx, query, id).Scan(
		&r.ID,
		&r.Title,
		&r.Description,
		&r.Audience,
		&r.Tags,
		&r.SourceFile,
		&r.SourceHash,
		&r.PageCount,
		&r.ChapterCount,
		&r.Advanced,
		&snapshot,
		&updatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting story: %w", err)
	}

	if r.Tags == nil {
		r.Tags = []string{}
	}
	r.Snapshot = []byte(snapshot)
	r.UpdatedAt = updatedAt.UTC().Format(time.DateTime)
	return &r, nil
}

func (c *Client) ListStories(ctx context.Context, tag string) ([]store.StorySummary, error) {
	query := `
SELECT id, title, tags, page_count, chapter_count, advanced
FROM stories
WHERE $1 = '' OR EXISTS (SELECT 1 FROM unnest(tags) t WHERE lower(t) = lower($1))
ORDER BY title, id
`

	rows, err := c.pool.Query(ctx, query, tag)
	if err != nil {
		return nil, fmt.Errorf("listing stories: %w", err)
	}
	defer rows.Close()

	summaries := make([]store.StorySummary, 0)
	for rows.Next() {
		var s store.StorySummary
		if err := rows.Scan(&s.ID, &s.Title, &s.Tags, &s.PageCount, &s.ChapterCount, &s.Advanced); err != nil {
			return nil, fmt.Errorf("scanning story summary: %w", err)
		}
		if s.Tags == nil {
			s.Tags = []string{}
		}
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating story summaries: %w", err)
	}

	return summaries, nil
}

func (c *Client) DeleteStory(ctx context.Context, id string) (bool, error) {
	tag, err := c.pool.Exec(ctx, "DELETE FROM stories WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("deleting story: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
