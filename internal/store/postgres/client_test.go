//go:build integration

package postgres

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"waymark/internal/store"
)

// Run with WAYMARK_TEST_POSTGRES_DSN pointing at a scratch database.
func newTestClient(t *testing.T) *Client {
	t.Helper()
	dsn := os.Getenv("WAYMARK_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("WAYMARK_TEST_POSTGRES_DSN not set")
	}

	ctx := context.Background()
	client, err := New(ctx, dsn, zerolog.Nop())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { client.Close(ctx) })

	if err := client.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return client
}

func TestStoryLifecycle(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	id := "it-" + uuid.NewString()
	source := "stories/" + id + ".json"
	t.Cleanup(func() { client.DeleteStory(ctx, id) })

	err := client.SaveStory(ctx, store.StoryInput{
		ID: id, Title: "Harbour Walk", Tags: []string{"walking"},
		SourceFile: source, SourceHash: "h1", PageCount: 2,
		Snapshot: []byte(`{"id":"` + id + `","pages":[],"chapters":[]}`),
		Body:     "The lighthouse keeper waves from the old pier.",
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	record, err := client.GetStory(ctx, id)
	if err != nil || record == nil {
		t.Fatalf("get: %+v %v", record, err)
	}
	if record.PageCount != 2 || record.Tags[0] != "walking" || record.UpdatedAt == "" {
		t.Fatalf("unexpected record %+v", record)
	}

	listed, err := client.ListStories(ctx, "WALKING")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var found bool
	for _, s := range listed {
		found = found || s.ID == id
	}
	if !found {
		t.Fatalf("expected %s in tag listing", id)
	}

	results, err := client.Search(ctx, "lighthouse keeper", "walking")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	found = false
	for _, r := range results {
		found = found || r.ID == id
	}
	if !found {
		t.Fatalf("expected %s in search results %+v", id, results)
	}

	hashes, err := client.GetSourceHashes(ctx)
	if err != nil || hashes[source] != (store.SourceHash{StoryID: id, Hash: "h1"}) {
		t.Fatalf("expected source hash, got %v %v", hashes, err)
	}

	rows, err := client.RunSQL(ctx, "SELECT id FROM stories WHERE id = $1", map[string]any{"1": id})
	if err != nil || len(rows) != 1 {
		t.Fatalf("run sql: %+v %v", rows, err)
	}
	if _, err := client.RunSQL(ctx, "DROP TABLE stories", nil); !errors.Is(err, store.ErrWriteQuery) {
		t.Fatalf("expected ErrWriteQuery, got %v", err)
	}

	deleted, err := client.DeleteStory(ctx, id)
	if err != nil || !deleted {
		t.Fatalf("delete: %v %v", deleted, err)
	}
	if record, _ := client.GetStory(ctx, id); record != nil {
		t.Fatalf("expected story gone")
	}
}
