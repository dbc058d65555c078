package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"waymark/internal/collection"
	"waymark/internal/graph"
	"waymark/internal/model"
	"waymark/internal/store"
)

type mockQuerier struct {
	stories      map[string]*store.StoryRecord
	listResult   []store.StorySummary
	searchResult []store.SearchResult
	err          error

	lastListTag     string
	lastSearchQuery string
	lastSearchTag   string
}

func (m *mockQuerier) GetStory(ctx context.Context, id string) (*store.StoryRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.stories[id], nil
}

func (m *mockQuerier) ListStories(ctx context.Context, tag string) ([]store.StorySummary, error) {
	m.lastListTag = tag
	return m.listResult, m.err
}

func (m *mockQuerier) Search(ctx context.Context, query, tag string) ([]store.SearchResult, error) {
	m.lastSearchQuery = query
	m.lastSearchTag = tag
	return m.searchResult, m.err
}

func harbourRecord(t *testing.T) *store.StoryRecord {
	t.Helper()
	g := graph.New(model.Story{ID: "harbour-walk", Title: "Harbour Walk"})
	g.SavePage(&model.Page{ID: "p1", Name: "Quay", LocationID: "l-quay", AdvancedFunctionIDs: []string{"f1"}})
	g.SavePage(&model.Page{ID: "p2", Name: "Lighthouse", UnlockedByPageIDs: []string{"p1"}})
	g.SaveChapter(&model.Chapter{ID: "ch1", Name: "Morning", PageIDs: []string{"p1", "p2"}})
	g.SaveVariable(&model.Variable{ID: "v1", Name: "coins"})
	g.SaveFunction(&model.Function{ID: "f1", Name: "Add coin", Spec: &model.Increment{VariableID: "v1", Value: "1"}})
	g.SaveCondition(&model.Condition{ID: "c1", Name: "Ghost", Spec: &model.Check{VariableID: "missing"}})

	input, err := store.NewStoryInput(g, "stories/harbour.json", "h1")
	if err != nil {
		t.Fatalf("story input: %v", err)
	}
	record := &store.StoryRecord{Snapshot: input.Snapshot, SourceFile: input.SourceFile}
	record.ID = input.ID
	record.Title = input.Title
	record.PageCount = input.PageCount
	return record
}

func newTestServer(t *testing.T) (*Server, *mockQuerier) {
	t.Helper()
	db := &mockQuerier{stories: map[string]*store.StoryRecord{"harbour-walk": harbourRecord(t)}}
	return NewServer(db, Options{Version: "test", Logger: zerolog.Nop()}), db
}

func TestListStories(t *testing.T) {
	server, db := newTestServer(t)
	db.listResult = []store.StorySummary{{ID: "harbour-walk", Title: "Harbour Walk", PageCount: 2}}

	_, output, err := server.handleListStories(context.Background(), nil, ListStoriesInput{Tag: "coast"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if db.lastListTag != "coast" {
		t.Fatalf("expected tag passed through, got %q", db.lastListTag)
	}
	if len(output.Stories) != 1 || output.Stories[0].PageCount != 2 || output.Stories[0].Tags == nil {
		t.Fatalf("unexpected output %+v", output)
	}
}

func TestSearchStories(t *testing.T) {
	server, db := newTestServer(t)
	db.searchResult = []store.SearchResult{{ID: "harbour-walk", Title: "Harbour Walk", Score: 1.5, Snippet: "**quay**"}}

	_, output, err := server.handleSearchStories(context.Background(), nil, SearchStoriesInput{Query: "quay", Tag: "coast"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if db.lastSearchQuery != "quay" || db.lastSearchTag != "coast" {
		t.Fatalf("unexpected search args %q %q", db.lastSearchQuery, db.lastSearchTag)
	}
	if len(output.Results) != 1 || output.Results[0].Score != 1.5 {
		t.Fatalf("unexpected results %+v", output.Results)
	}

	if _, _, err := server.handleSearchStories(context.Background(), nil, SearchStoriesInput{}); err == nil {
		t.Fatalf("expected error for empty query")
	}
}

func TestGetStory(t *testing.T) {
	server, _ := newTestServer(t)

	_, output, err := server.handleGetStory(context.Background(), nil, StoryInput{StoryID: "harbour-walk"})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if output.Title != "Harbour Walk" || output.Story["id"] != "harbour-walk" {
		t.Fatalf("unexpected story %+v", output)
	}
	pages, ok := output.Story["pages"].([]any)
	if !ok || len(pages) != 2 {
		t.Fatalf("expected two pages in story, got %v", output.Story["pages"])
	}

	if _, _, err := server.handleGetStory(context.Background(), nil, StoryInput{StoryID: "missing"}); err == nil {
		t.Fatalf("expected not found error")
	}
}

func TestEntityUsage(t *testing.T) {
	server, _ := newTestServer(t)
	ctx := context.Background()

	_, output, err := server.handleEntityUsage(ctx, nil, EntityUsageInput{StoryID: "harbour-walk", Kind: "function", ID: "f1"})
	if err != nil {
		t.Fatalf("usage: %v", err)
	}
	if !output.InUse || !reflect.DeepEqual(output.UsedIn, []string{"Page: Quay"}) {
		t.Fatalf("unexpected usage %+v", output)
	}

	_, output, err = server.handleEntityUsage(ctx, nil, EntityUsageInput{StoryID: "harbour-walk", Kind: "chapter", ID: "ch1"})
	if err != nil || output.InUse || output.UsedIn == nil {
		t.Fatalf("expected unused chapter, got %+v %v", output, err)
	}

	_, _, err = server.handleEntityUsage(ctx, nil, EntityUsageInput{StoryID: "harbour-walk", Kind: "variable", ID: "nope"})
	if !errors.Is(err, collection.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSyntheticOptions(t *testing.T) {
	server, _ := newTestServer(t)

	_, output, err := server.handleSyntheticOptions(context.Background(), nil, StoryInput{StoryID: "harbour-walk"})
	if err != nil {
		t.Fatalf("synthetic: %v", err)
	}
	if len(output.Variables) != 3 {
		t.Fatalf("expected chapter and page variables, got %+v", output.Variables)
	}
	if len(output.Locations) != 1 || output.Locations[0].ID != "l-quay" {
		t.Fatalf("expected page location, got %+v", output.Locations)
	}
	if output.Conditions[0].Type != string(model.ConditionCheck) {
		t.Fatalf("expected typed conditions, got %+v", output.Conditions[0])
	}
}

func TestValidateStory(t *testing.T) {
	server, _ := newTestServer(t)

	_, output, err := server.handleValidateStory(context.Background(), nil, StoryInput{StoryID: "harbour-walk"})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if output.Errors == 0 {
		t.Fatalf("expected dangling reference error, got %+v", output)
	}
	var found bool
	for _, issue := range output.Issues {
		found = found || (issue.Code == "dangling_reference" && issue.ID == "c1")
	}
	if !found {
		t.Fatalf("expected dangling reference on c1, got %+v", output.Issues)
	}
}

func TestStoreErrorsPropagate(t *testing.T) {
	server, db := newTestServer(t)
	db.err = errors.New("database down")

	if _, _, err := server.handleValidateStory(context.Background(), nil, StoryInput{StoryID: "harbour-walk"}); err == nil {
		t.Fatalf("expected error")
	}
	if _, _, err := server.handleListStories(context.Background(), nil, ListStoriesInput{}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestOutputsEncode(t *testing.T) {
	server, _ := newTestServer(t)
	_, output, err := server.handleSyntheticOptions(context.Background(), nil, StoryInput{StoryID: "harbour-walk"})
	if err != nil {
		t.Fatalf("synthetic: %v", err)
	}
	data, err := json.Marshal(output)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := decoded["conditions"]; !ok {
		t.Fatalf("expected conditions key in %s", data)
	}
}

func TestCheckRecord(t *testing.T) {
	server, _ := newTestServer(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		input    CheckRecordInput
		valid    bool
		problems int
	}{
		{"valid variable", CheckRecordInput{Kind: "variable", Record: map[string]any{"id": "v1", "name": "coins"}}, true, 0},
		{"out of range location", CheckRecordInput{Kind: "location", Record: map[string]any{"id": "l1", "name": "Far", "lat": 120.0, "long": 0.0, "radius": 50000.0}}, false, 2},
		{"wrong field type", CheckRecordInput{Kind: "page", Record: map[string]any{"id": "p1", "singleVisit": "yes"}}, false, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, output, err := server.handleCheckRecord(ctx, nil, tt.input)
			if err != nil {
				t.Fatalf("check: %v", err)
			}
			if output.Valid != tt.valid || len(output.Problems) != tt.problems {
				t.Fatalf("expected valid=%v with %d problems, got %+v", tt.valid, tt.problems, output)
			}
		})
	}

	_, _, err := server.handleCheckRecord(ctx, nil, CheckRecordInput{Kind: "weather"})
	if !errors.Is(err, graph.ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}
