package store

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"waymark/internal/graph"
	"waymark/internal/model"
)

func TestCheckReadOnly(t *testing.T) {
	tests := []struct {
		query string
		ok    bool
	}{
		{"SELECT id FROM stories", true},
		{"  select count(*) from stories;", true},
		{"WITH t AS (SELECT 1) SELECT * FROM t", true},
		{"(SELECT 1)", true},
		{"DELETE FROM stories", false},
		{"SELECT 1; DROP TABLE stories", false},
		{"PRAGMA journal_mode = DELETE", false},
	}
	for _, tt := range tests {
		err := CheckReadOnly(tt.query)
		if tt.ok && err != nil {
			t.Fatalf("%q: expected ok, got %v", tt.query, err)
		}
		if !tt.ok && !errors.Is(err, ErrWriteQuery) {
			t.Fatalf("%q: expected ErrWriteQuery, got %v", tt.query, err)
		}
	}

	if err := CheckReadOnly("   "); err == nil {
		t.Fatalf("expected error for empty query")
	}
}

func TestPositionalArgs(t *testing.T) {
	got := PositionalArgs(map[string]any{"2": "b", "1": "a", "4": "d"})
	if !reflect.DeepEqual(got, []any{"a", "b"}) {
		t.Fatalf("expected [a b], got %v", got)
	}
	if got := PositionalArgs(nil); len(got) != 0 {
		t.Fatalf("expected no args, got %v", got)
	}
}

func TestSQLValue(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.FixedZone("CET", 3600))
	tests := []struct {
		in   any
		want any
	}{
		{[]byte("quay"), "quay"},
		{at, "2026-03-01T08:30:00Z"},
		{int64(4), int64(4)},
		{nil, nil},
	}
	for _, tt := range tests {
		if got := SQLValue(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("SQLValue(%v): expected %v, got %v", tt.in, tt.want, got)
		}
	}
}

func TestNewStoryInput(t *testing.T) {
	g := graph.New(model.Story{ID: "s1", Title: "Harbour Walk", Description: "Morning walk"})
	g.SavePage(&model.Page{ID: "p1", Name: "Quay", Content: "Gulls everywhere."})
	g.SaveChapter(&model.Chapter{ID: "ch1", Name: "Morning"})

	input, err := NewStoryInput(g, "stories/harbour.json", "abc")
	if err != nil {
		t.Fatalf("new story input: %v", err)
	}
	if input.PageCount != 1 || input.ChapterCount != 1 || input.Advanced {
		t.Fatalf("unexpected counters %+v", input)
	}
	if input.Tags == nil {
		t.Fatalf("expected non-nil tags")
	}
	want := "Morning walk\nMorning\nQuay\nGulls everywhere."
	if input.Body != want {
		t.Fatalf("expected body %q, got %q", want, input.Body)
	}

	record := &StoryRecord{Snapshot: input.Snapshot}
	record.ID = "s1"
	decoded, err := record.Graph()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Story.Title != "Harbour Walk" || decoded.Pages().Len() != 1 {
		t.Fatalf("unexpected decoded story %+v", decoded.Story)
	}
}

func TestNewStoryInputRequiresID(t *testing.T) {
	if _, err := NewStoryInput(graph.New(model.Story{}), "", ""); err == nil {
		t.Fatalf("expected error for missing id")
	}
	if _, err := NewStoryInput(nil, "", ""); err == nil {
		t.Fatalf("expected error for nil graph")
	}
}
