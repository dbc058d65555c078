package main

import (
	"context"
	"fmt"

	"waymark/internal/graph"
	"waymark/internal/parser"
)

// loadStory resolves a command argument to a graph: story files (.json,
// .yaml, .yml) are parsed directly, anything else is a stored story id.
func loadStory(ctx context.Context, source string) (*graph.Graph, error) {
	if _, err := parser.FormatFromPath(source); err == nil {
		doc, err := parser.ParseFile(source)
		if err != nil {
			return nil, err
		}
		return doc.Graph, nil
	}

	ctx, cfg, err := loadProject(ctx)
	if err != nil {
		return nil, err
	}
	db, err := openDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer db.Close(ctx)

	record, err := db.GetStory(ctx, source)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("story %s not found", source)
	}
	return record.Graph()
}
