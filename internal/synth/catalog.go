package synth

import (
	"waymark/internal/graph"
	"waymark/internal/model"
)

// Catalog serves the pick-lists an advanced-logic editor shows: authored
// entities followed by synthetic ones. The synthetic part is cached and
// recomputed on the first read after a page or chapter change.
type Catalog struct {
	graph       *graph.Graph
	synthetic   Set
	stale       bool
	unsubscribe func()
	computed    int
}

func NewCatalog(g *graph.Graph) *Catalog {
	c := &Catalog{graph: g, stale: true}
	c.unsubscribe = g.Subscribe(func(change graph.Change) {
		if change.Touches() {
			c.stale = true
		}
	})
	return c
}

// Close stops tracking graph changes. The catalog keeps its last state.
func (c *Catalog) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
}

// Refresh forces a recompute on the next read.
func (c *Catalog) Refresh() {
	c.stale = true
}

func (c *Catalog) Synthetic() Set {
	if c.stale {
		c.synthetic = Derive(c.graph.View())
		c.stale = false
		c.computed++
	}
	return c.synthetic
}

func (c *Catalog) Variables() []*model.Variable {
	return append(c.graph.Variables().Items(), c.Synthetic().Variables...)
}

func (c *Catalog) Conditions() []*model.Condition {
	return append(c.graph.Conditions().Items(), c.Synthetic().Conditions...)
}

func (c *Catalog) Locations() []*model.Location {
	return append(c.graph.Locations().Items(), c.Synthetic().Locations...)
}

// Known reports whether id names an authored or synthetic entity of kind.
func (c *Catalog) Known(kind, id string) bool {
	switch kind {
	case model.KindVariable:
		return c.graph.Variables().Has(id) || containsID(c.Synthetic().Variables, id)
	case model.KindCondition:
		return c.graph.Conditions().Has(id) || containsID(c.Synthetic().Conditions, id)
	case model.KindLocation:
		return c.graph.Locations().Has(id) || containsID(c.Synthetic().Locations, id)
	case model.KindFunction:
		return c.graph.Functions().Has(id)
	case model.KindPage:
		return c.graph.Pages().Has(id)
	case model.KindChapter:
		return c.graph.Chapters().Has(id)
	}
	return false
}

func containsID[T interface{ EntityID() string }](items []T, id string) bool {
	for _, item := range items {
		if item.EntityID() == id {
			return true
		}
	}
	return false
}
