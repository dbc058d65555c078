package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"waymark/internal/graph"
	"waymark/internal/model"
	"waymark/internal/synth"
	"waymark/internal/validate"
)

type ListStoriesInput struct {
	Tag string `json:"tag,omitempty" jsonschema:"tag filter"`
}

type SearchStoriesInput struct {
	Query string `json:"query" jsonschema:"search terms"`
	Tag   string `json:"tag,omitempty" jsonschema:"restrict to stories with this tag"`
}

type StoryInput struct {
	StoryID string `json:"story_id" jsonschema:"story id"`
}

type EntityUsageInput struct {
	StoryID string `json:"story_id" jsonschema:"story id"`
	Kind    string `json:"kind" jsonschema:"page, chapter, location, variable, condition or function"`
	ID      string `json:"id" jsonschema:"entity id"`
}

type StorySummaryOutput struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Tags         []string `json:"tags"`
	PageCount    int      `json:"page_count"`
	ChapterCount int      `json:"chapter_count"`
	Advanced     bool     `json:"advanced"`
}

type ListStoriesOutput struct {
	Stories []StorySummaryOutput `json:"stories"`
}

type SearchResultOutput struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Tags    []string `json:"tags"`
	Score   float64  `json:"score"`
	Snippet string   `json:"snippet,omitempty"`
}

type SearchStoriesOutput struct {
	Results []SearchResultOutput `json:"results"`
}

type StoryOutput struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Tags         []string       `json:"tags"`
	PageCount    int            `json:"page_count"`
	ChapterCount int            `json:"chapter_count"`
	Advanced     bool           `json:"advanced"`
	Description  string         `json:"description,omitempty"`
	Audience     string         `json:"audience,omitempty"`
	SourceFile   string         `json:"source_file,omitempty"`
	UpdatedAt    string         `json:"updated_at,omitempty"`
	Story        map[string]any `json:"story"`
}

type EntityUsageOutput struct {
	Kind   string   `json:"kind"`
	ID     string   `json:"id"`
	InUse  bool     `json:"in_use"`
	UsedIn []string `json:"used_in"`
}

type OptionOutput struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

type SyntheticOptionsOutput struct {
	Variables  []OptionOutput `json:"variables"`
	Conditions []OptionOutput `json:"conditions"`
	Locations  []OptionOutput `json:"locations"`
}

type IssueOutput struct {
	Severity string `json:"severity"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Kind     string `json:"kind,omitempty"`
	ID       string `json:"id,omitempty"`
}

type ValidateStoryOutput struct {
	Errors   int           `json:"errors"`
	Warnings int           `json:"warnings"`
	Issues   []IssueOutput `json:"issues"`
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_stories",
		Description: "List stored stories with optional tag filter",
	}, s.handleListStories)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "search_stories",
		Description: "Search stories by title, tags and page text",
	}, s.handleSearchStories)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_story",
		Description: "Retrieve a story with all of its records",
	}, s.handleGetStory)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "entity_usage",
		Description: "Report where a page, chapter or advanced entity is referenced before deleting it",
	}, s.handleEntityUsage)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "synthetic_options",
		Description: "List the auto-generated variables, conditions and locations of a story",
	}, s.handleSyntheticOptions)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "validate_story",
		Description: "Check a story for broken records and references",
	}, s.handleValidateStory)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "check_record",
		Description: "Check one page, chapter or advanced record before saving it",
	}, s.handleCheckRecord)
}

func (s *Server) handleListStories(ctx context.Context, req *sdk.CallToolRequest, input ListStoriesInput) (*sdk.CallToolResult, ListStoriesOutput, error) {
	stories, err := s.db.ListStories(ctx, input.Tag)
	if err != nil {
		return nil, ListStoriesOutput{}, err
	}

	output := make([]StorySummaryOutput, 0, len(stories))
	for _, story := range stories {
		output = append(output, StorySummaryOutput{
			ID:           story.ID,
			Title:        story.Title,
			Tags:         append([]string{}, story.Tags...),
			PageCount:    story.PageCount,
			ChapterCount: story.ChapterCount,
			Advanced:     story.Advanced,
		})
	}
	return nil, ListStoriesOutput{Stories: output}, nil
}

func (s *Server) handleSearchStories(ctx context.Context, req *sdk.CallToolRequest, input SearchStoriesInput) (*sdk.CallToolResult, SearchStoriesOutput, error) {
	if input.Query == "" {
		return nil, SearchStoriesOutput{}, fmt.Errorf("query is required")
	}
	results, err := s.db.Search(ctx, input.Query, input.Tag)
	if err != nil {
		return nil, SearchStoriesOutput{}, err
	}

	output := make([]SearchResultOutput, 0, len(results))
	for _, result := range results {
		output = append(output, SearchResultOutput{
			ID:      result.ID,
			Title:   result.Title,
			Tags:    append([]string{}, result.Tags...),
			Score:   result.Score,
			Snippet: result.Snippet,
		})
	}
	return nil, SearchStoriesOutput{Results: output}, nil
}

func (s *Server) handleGetStory(ctx context.Context, req *sdk.CallToolRequest, input StoryInput) (*sdk.CallToolResult, StoryOutput, error) {
	if input.StoryID == "" {
		return nil, StoryOutput{}, fmt.Errorf("story_id is required")
	}
	record, err := s.db.GetStory(ctx, input.StoryID)
	if err != nil {
		return nil, StoryOutput{}, err
	}
	if record == nil {
		return nil, StoryOutput{}, fmt.Errorf("story %s not found", input.StoryID)
	}

	story := map[string]any{}
	if len(record.Snapshot) > 0 {
		if err := json.Unmarshal(record.Snapshot, &story); err != nil {
			return nil, StoryOutput{}, fmt.Errorf("decoding story %s: %w", record.ID, err)
		}
	}

	return nil, StoryOutput{
		ID:           record.ID,
		Title:        record.Title,
		Tags:         append([]string{}, record.Tags...),
		PageCount:    record.PageCount,
		ChapterCount: record.ChapterCount,
		Advanced:     record.Advanced,
		Description:  record.Description,
		Audience:     record.Audience,
		SourceFile:   record.SourceFile,
		UpdatedAt:    record.UpdatedAt,
		Story:        story,
	}, nil
}

func (s *Server) handleEntityUsage(ctx context.Context, req *sdk.CallToolRequest, input EntityUsageInput) (*sdk.CallToolResult, EntityUsageOutput, error) {
	if input.Kind == "" || input.ID == "" {
		return nil, EntityUsageOutput{}, fmt.Errorf("kind and id are required")
	}
	g, err := s.loadGraph(ctx, input.StoryID)
	if err != nil {
		return nil, EntityUsageOutput{}, err
	}

	usage, err := g.UsageByID(input.Kind, input.ID)
	if err != nil {
		return nil, EntityUsageOutput{}, err
	}
	return nil, EntityUsageOutput{
		Kind:   input.Kind,
		ID:     usage.Item,
		InUse:  usage.InUse,
		UsedIn: usage.UsedIn,
	}, nil
}

func (s *Server) handleSyntheticOptions(ctx context.Context, req *sdk.CallToolRequest, input StoryInput) (*sdk.CallToolResult, SyntheticOptionsOutput, error) {
	g, err := s.loadGraph(ctx, input.StoryID)
	if err != nil {
		return nil, SyntheticOptionsOutput{}, err
	}

	set := synth.Derive(g.View())
	output := SyntheticOptionsOutput{
		Variables:  make([]OptionOutput, 0, len(set.Variables)),
		Conditions: make([]OptionOutput, 0, len(set.Conditions)),
		Locations:  make([]OptionOutput, 0, len(set.Locations)),
	}
	for _, v := range set.Variables {
		output.Variables = append(output.Variables, OptionOutput{ID: v.ID, Name: v.Name})
	}
	for _, c := range set.Conditions {
		output.Conditions = append(output.Conditions, OptionOutput{ID: c.ID, Name: c.Name, Type: string(c.Type())})
	}
	for _, l := range set.Locations {
		output.Locations = append(output.Locations, OptionOutput{ID: l.ID, Name: l.Name})
	}
	return nil, output, nil
}

func (s *Server) handleValidateStory(ctx context.Context, req *sdk.CallToolRequest, input StoryInput) (*sdk.CallToolResult, ValidateStoryOutput, error) {
	g, err := s.loadGraph(ctx, input.StoryID)
	if err != nil {
		return nil, ValidateStoryOutput{}, err
	}

	report, err := validate.Run(g, s.bounds)
	if err != nil {
		return nil, ValidateStoryOutput{}, err
	}

	output := ValidateStoryOutput{
		Errors:   report.Count(validate.SeverityError),
		Warnings: report.Count(validate.SeverityWarn),
		Issues:   make([]IssueOutput, 0, len(report.Issues)),
	}
	for _, issue := range report.Issues {
		output.Issues = append(output.Issues, IssueOutput{
			Severity: string(issue.Severity),
			Code:     issue.Code,
			Message:  issue.Message,
			Kind:     issue.Kind,
			ID:       issue.ID,
		})
	}
	return nil, output, nil
}

func (s *Server) loadGraph(ctx context.Context, storyID string) (*graph.Graph, error) {
	if storyID == "" {
		return nil, fmt.Errorf("story_id is required")
	}
	record, err := s.db.GetStory(ctx, storyID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("story %s not found", storyID)
	}
	return record.Graph()
}

// boundsOrDefault keeps a zero Bounds from rejecting every radius.
func boundsOrDefault(b model.Bounds) model.Bounds {
	if b.MaxRadius == 0 {
		return model.DefaultBounds
	}
	return b
}
