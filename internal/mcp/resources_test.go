package mcp

import (
	"context"
	"encoding/json"
	"testing"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"waymark/internal/store"
)

func readRequest(uri string) *sdk.ReadResourceRequest {
	return &sdk.ReadResourceRequest{Params: &sdk.ReadResourceParams{URI: uri}}
}

func TestReadStoriesResource(t *testing.T) {
	server, db := newTestServer(t)
	db.listResult = []store.StorySummary{{ID: "harbour-walk", Title: "Harbour Walk", PageCount: 2}}

	result, err := server.readStories(context.Background(), readRequest(storiesURI))
	if err != nil {
		t.Fatalf("read stories: %v", err)
	}
	if len(result.Contents) != 1 || result.Contents[0].URI != storiesURI || result.Contents[0].MIMEType != jsonMIMEType {
		t.Fatalf("unexpected contents %+v", result.Contents)
	}

	var payload ListStoriesOutput
	if err := json.Unmarshal([]byte(result.Contents[0].Text), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.Stories) != 1 || payload.Stories[0].ID != "harbour-walk" {
		t.Fatalf("unexpected payload %+v", payload)
	}
	if db.lastListTag != "" {
		t.Fatalf("expected unfiltered listing, got tag %q", db.lastListTag)
	}
}

func TestReadStoryResource(t *testing.T) {
	server, _ := newTestServer(t)

	result, err := server.readStory(context.Background(), readRequest("waymark://stories/harbour-walk"))
	if err != nil {
		t.Fatalf("read story: %v", err)
	}
	var payload StoryOutput
	if err := json.Unmarshal([]byte(result.Contents[0].Text), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.ID != "harbour-walk" || payload.Story["id"] != "harbour-walk" {
		t.Fatalf("unexpected payload %+v", payload)
	}

	if _, err := server.readStory(context.Background(), readRequest("waymark://stories/missing")); err == nil {
		t.Fatalf("expected error for missing story")
	}
	if _, err := server.readStory(context.Background(), nil); err == nil {
		t.Fatalf("expected error for missing request")
	}
}

func TestStoryIDFromURI(t *testing.T) {
	tests := []struct {
		uri     string
		want    string
		wantErr bool
	}{
		{"waymark://stories/harbour-walk", "harbour-walk", false},
		{"waymark://stories/storm%20night", "storm night", false},
		{"waymark://stories/", "", true},
		{"waymark://stories/a/b", "", true},
		{"campaign://stories/a", "", true},
	}
	for _, tt := range tests {
		got, err := storyIDFromURI(tt.uri)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("%s: expected error", tt.uri)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Fatalf("%s: expected %q, got %q (%v)", tt.uri, tt.want, got, err)
		}
	}
}
