package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

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
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("marshaling tags: %w", err)
	}

	query := `
	INSERT INTO stories (id, title, description, audience, tags, source_file, source_hash, page_count, chapter_count, advanced, snapshot, body, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, datetime('now'))
	ON CONFLICT (id) DO UPDATE SET
		title = excluded.title,
		description = excluded.description,
		audience = excluded.audience,
		tags = excluded.tags,
		source_file = excluded.source_file,
		source_hash = excluded.source_hash,
		page_count = excluded.page_count,
		chapter_count = excluded.chapter_count,
		advanced = excluded.advanced,
		snapshot = excluded.snapshot,
		body = excluded.body,
		updated_at = datetime('now')
	`

	_, err = c.db.ExecContext(ctx, query,
		s.ID,
		s.Title,
		s.Description,
		s.Audience,
		string(tagsJSON),
		s.SourceFile,
		s.SourceHash,
		s.PageCount,
		s.ChapterCount,
		boolToInt(s.Advanced),
		string(s.Snapshot),
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
		   page_count, chapter_count, advanced, snapshot, updated_at
	FROM stories
	WHERE id = ?
	`

	var r store.StoryRecord
	var tagsText, snapshot string
	var advanced int
	err := c.db.QueryRowContext(ctx, query, id).Scan(
		&r.ID,
		&r.Title,
		&r.Description,
		&r.Audience,
		&tagsText,
		&r.SourceFile,
		&r.SourceHash,
		&r.PageCount,
		&r.ChapterCount,
		&advanced,
		&snapshot,
		&r.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting story: %w", err)
	}

	if r.Tags, err = decodeTags(tagsText); err != nil {
		return nil, err
	}
	r.Advanced = advanced != 0
	r.Snapshot = []byte(snapshot)
	return &r, nil
}

func (c *Client) ListStories(ctx context.Context, tag string) ([]store.StorySummary, error) {
	query := `
	SELECT id, title, tags, page_count, chapter_count, advanced
	FROM stories
	ORDER BY title, id
	`

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing stories: %w", err)
	}
	defer rows.Close()

	summaries := make([]store.StorySummary, 0)
	for rows.Next() {
		var s store.StorySummary
		var tagsText string
		var advanced int
		if err := rows.Scan(&s.ID, &s.Title, &tagsText, &s.PageCount, &s.ChapterCount, &advanced); err != nil {
			return nil, fmt.Errorf("scanning story summary: %w", err)
		}
		if s.Tags, err = decodeTags(tagsText); err != nil {
			return nil, err
		}
		s.Advanced = advanced != 0

		if tag != "" && !containsTag(s.Tags, tag) {
			continue
		}
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating story summaries: %w", err)
	}

	return summaries, nil
}

func (c *Client) DeleteStory(ctx context.Context, id string) (bool, error) {
	result, err := c.db.ExecContext(ctx, "DELETE FROM stories WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("deleting story: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("getting rows affected: %w", err)
	}
	return affected > 0, nil
}

func decodeTags(text string) ([]string, error) {
	var tags []string
	if text != "" {
		if err := json.Unmarshal([]byte(text), &tags); err != nil {
			return nil, fmt.Errorf("unmarshaling tags: %w", err)
		}
	}
	if tags == nil {
		tags = []string{}
	}
	return tags, nil
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
