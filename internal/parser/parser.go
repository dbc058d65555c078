package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"waymark/internal/graph"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Document is one story file decoded into a graph. Snapshot is the graph's
// canonical JSON encoding, the form stores persist.
type Document struct {
	Graph      *graph.Graph
	StoryID    string
	Title      string
	Tags       []string
	Snapshot   []byte
	SourceFile string
}

var (
	ErrUnsupportedFormat = errors.New("unsupported story file format")
	ErrEmptyDocument     = errors.New("story document is empty")
	ErrInvalidDocument   = errors.New("story document must be an object")
	ErrMissingStoryID    = errors.New("story document missing required 'id' field")
)

func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
}

func ParseFile(path string) (*Document, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	doc, err := Parse(data, format)
	if err != nil {
		return nil, err
	}
	doc.SourceFile = path
	return doc, nil
}

func Parse(content []byte, format Format) (*Document, error) {
	trimmed := bytes.TrimLeft(content, "\ufeff\n\r\t ")
	if len(trimmed) == 0 {
		return nil, ErrEmptyDocument
	}

	var raw any
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(trimmed, &raw); err != nil {
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("%q: %w", format, ErrUnsupportedFormat)
	}

	if raw == nil {
		return nil, ErrEmptyDocument
	}
	story, ok := raw.(map[string]any)
	if !ok {
		return nil, ErrInvalidDocument
	}

	id, ok := story["id"].(string)
	if !ok || strings.TrimSpace(id) == "" {
		return nil, ErrMissingStoryID
	}

	tags, err := parseTags(story["tags"])
	if err != nil {
		return nil, err
	}
	if tags == nil {
		delete(story, "tags")
	} else {
		story["tags"] = tags
	}

	normalized, err := json.Marshal(story)
	if err != nil {
		return nil, fmt.Errorf("encoding story %s: %w", id, err)
	}
	g, err := graph.Decode(normalized)
	if err != nil {
		return nil, fmt.Errorf("story %s: %w", id, err)
	}
	snapshot, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("encoding story %s: %w", id, err)
	}

	return &Document{
		Graph:    g,
		StoryID:  g.Story.ID,
		Title:    g.Story.Title,
		Tags:     g.Story.Tags,
		Snapshot: snapshot,
	}, nil
}

func parseTags(value any) ([]string, error) {
	if value == nil {
		return nil, nil
	}
	switch v := value.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		return []string{v}, nil
	case []any:
		tags := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("tags must be strings")
			}
			if strings.TrimSpace(s) == "" {
				continue
			}
			tags = append(tags, s)
		}
		if len(tags) == 0 {
			return nil, nil
		}
		return tags, nil
	default:
		return nil, fmt.Errorf("tags must be string or list of strings")
	}
}
