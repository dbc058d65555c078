package graph

import (
	"encoding/json"
	"fmt"

	"waymark/internal/collection"
	"waymark/internal/model"
)

const (
	fieldPages      = "pages"
	fieldChapters   = "chapters"
	fieldLocations  = "locations"
	fieldVariables  = "variables"
	fieldConditions = "conditions"
	fieldFunctions  = "functions"
)

var collectionFields = map[string]struct{}{
	fieldPages:      {},
	fieldChapters:   {},
	fieldLocations:  {},
	fieldVariables:  {},
	fieldConditions: {},
	fieldFunctions:  {},
}

// MarshalJSON writes the whole story as one document. Advanced collections
// are omitted when the story has never enabled them.
func (g *Graph) MarshalJSON() ([]byte, error) {
	doc := g.Story.Object()
	doc[fieldPages] = orEmpty(g.pages.Items())
	doc[fieldChapters] = orEmpty(g.chapters.Items())
	if g.locations != nil {
		doc[fieldLocations] = orEmpty(g.locations.Items())
	}
	if g.variables != nil {
		doc[fieldVariables] = orEmpty(g.variables.Items())
	}
	if g.conditions != nil {
		doc[fieldConditions] = orEmpty(g.conditions.Items())
	}
	if g.functions != nil {
		doc[fieldFunctions] = orEmpty(g.functions.Items())
	}
	return json.Marshal(doc)
}

// UnmarshalJSON replaces the graph's contents with the document in data.
// Subscribers are kept and receive a single reload change.
func (g *Graph) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decoding story: %w", err)
	}

	meta := model.Object{}
	for key, value := range raw {
		if _, ok := collectionFields[key]; ok {
			continue
		}
		var decoded any
		if err := json.Unmarshal(value, &decoded); err != nil {
			return fmt.Errorf("decoding story %s: %w", key, err)
		}
		meta[key] = decoded
	}
	story, err := model.NewStory(meta)
	if err != nil {
		return fmt.Errorf("decoding story: %w", err)
	}

	next := New(*story, g.idOpts...)
	if err := load(raw, fieldPages, next.pages); err != nil {
		return err
	}
	if err := load(raw, fieldChapters, next.chapters); err != nil {
		return err
	}

	_, hasLocations := raw[fieldLocations]
	_, hasVariables := raw[fieldVariables]
	_, hasConditions := raw[fieldConditions]
	_, hasFunctions := raw[fieldFunctions]
	if hasLocations || hasVariables || hasConditions || hasFunctions {
		next.EnableAdvanced()
		if err := load(raw, fieldLocations, next.locations); err != nil {
			return err
		}
		if err := load(raw, fieldVariables, next.variables); err != nil {
			return err
		}
		if err := load(raw, fieldConditions, next.conditions); err != nil {
			return err
		}
		if err := load(raw, fieldFunctions, next.functions); err != nil {
			return err
		}
	}

	g.Story = next.Story
	g.pages = next.pages
	g.chapters = next.chapters
	g.locations = next.locations
	g.variables = next.variables
	g.conditions = next.conditions
	g.functions = next.functions
	if g.subscribers == nil {
		g.subscribers = make(map[int]func(Change))
	}
	g.notify(Change{Kind: model.KindStory, Op: OpReload, ID: g.Story.ID})
	return nil
}

// Decode builds a new graph from a story document.
func Decode(data []byte, opts ...collection.Option) (*Graph, error) {
	g := New(model.Story{}, opts...)
	if err := json.Unmarshal(data, g); err != nil {
		return nil, err
	}
	return g, nil
}

func load[T collection.Identifiable](raw map[string]json.RawMessage, field string, c *collection.Collection[T]) error {
	data, ok := raw[field]
	if !ok {
		return nil
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("decoding %s: %w", field, err)
	}
	if _, err := c.SaveMany(items); err != nil {
		return fmt.Errorf("loading %s: %w", field, err)
	}
	return nil
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
