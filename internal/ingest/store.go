package ingest

import (
	"context"

	"waymark/internal/store"
)

// Store is the part of store.Store an import needs.
type Store interface {
	EnsureSchema(ctx context.Context) error
	GetSourceHashes(ctx context.Context) (map[string]store.SourceHash, error)
	SaveStory(ctx context.Context, s store.StoryInput) error
	RemoveStaleStories(ctx context.Context, currentSourceFiles []string) (int64, error)
}
