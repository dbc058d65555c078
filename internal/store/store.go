package store

import (
	"context"
)

// Store persists whole story snapshots. GetStory returns nil without an error
// when the story does not exist.
type Store interface {
	Close(ctx context.Context) error
	EnsureSchema(ctx context.Context) error

	SaveStory(ctx context.Context, s StoryInput) error
	DeleteStory(ctx context.Context, id string) (bool, error)
	RemoveStaleStories(ctx context.Context, currentSourceFiles []string) (int64, error)
	GetSourceHashes(ctx context.Context) (map[string]SourceHash, error)

	GetStory(ctx context.Context, id string) (*StoryRecord, error)
	ListStories(ctx context.Context, tag string) ([]StorySummary, error)
	Search(ctx context.Context, query, tag string) ([]SearchResult, error)

	RunSQL(ctx context.Context, query string, params map[string]any) ([]map[string]any, error)
}
