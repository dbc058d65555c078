package store

import (
	"encoding/json"
	"fmt"
	"strings"

	"waymark/internal/graph"
)

type StoryInput struct {
	ID           string
	Title        string
	Description  string
	Audience     string
	Tags         []string
	SourceFile   string
	SourceHash   string
	PageCount    int
	ChapterCount int
	Advanced     bool
	Snapshot     []byte
	Body         string
}

// SourceHash is the stored state of one imported source file.
type SourceHash struct {
	StoryID string
	Hash    string
}

type StorySummary struct {
	ID           string
	Title        string
	Tags         []string
	PageCount    int
	ChapterCount int
	Advanced     bool
}

type StoryRecord struct {
	StorySummary
	Description string
	Audience    string
	SourceFile  string
	SourceHash  string
	Snapshot    []byte
	UpdatedAt   string
}

type SearchResult struct {
	ID      string
	Title   string
	Tags    []string
	Score   float64
	Snippet string
}

// NewStoryInput captures a graph as a storable snapshot. Body holds the page
// and chapter text that full-text search indexes.
func NewStoryInput(g *graph.Graph, sourceFile, sourceHash string) (StoryInput, error) {
	if g == nil {
		return StoryInput{}, fmt.Errorf("story graph is required")
	}
	if strings.TrimSpace(g.Story.ID) == "" {
		return StoryInput{}, fmt.Errorf("story id is required")
	}

	snapshot, err := json.Marshal(g)
	if err != nil {
		return StoryInput{}, fmt.Errorf("encoding story %s: %w", g.Story.ID, err)
	}

	var body strings.Builder
	body.WriteString(g.Story.Description)
	for _, chapter := range g.Chapters().Items() {
		body.WriteString("\n")
		body.WriteString(chapter.Name)
	}
	for _, page := range g.Pages().Items() {
		body.WriteString("\n")
		body.WriteString(page.Name)
		if page.Content != "" {
			body.WriteString("\n")
			body.WriteString(page.Content)
		}
	}

	tags := g.Story.Tags
	if tags == nil {
		tags = []string{}
	}

	return StoryInput{
		ID:           g.Story.ID,
		Title:        g.Story.Title,
		Description:  g.Story.Description,
		Audience:     g.Story.Audience,
		Tags:         tags,
		SourceFile:   sourceFile,
		SourceHash:   sourceHash,
		PageCount:    g.Pages().Len(),
		ChapterCount: g.Chapters().Len(),
		Advanced:     g.HasAdvanced(),
		Snapshot:     snapshot,
		Body:         strings.TrimSpace(body.String()),
	}, nil
}

// Graph decodes the stored snapshot.
func (r *StoryRecord) Graph() (*graph.Graph, error) {
	g, err := graph.Decode(r.Snapshot)
	if err != nil {
		return nil, fmt.Errorf("decoding story %s: %w", r.ID, err)
	}
	return g, nil
}
