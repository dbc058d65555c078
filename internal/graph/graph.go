// Package graph holds the in-memory aggregate of one story: its pages,
// chapters and advanced-logic entities, the usage queries that stand in for
// foreign keys, and change notifications for derived views.
package graph

import (
	"fmt"

	"waymark/internal/collection"
	"waymark/internal/model"
)

type Op string

const (
	OpSave   Op = "save"
	OpRemove Op = "remove"
	OpReload Op = "reload"
)

// Change describes one mutation. Kind is one of the model.Kind constants.
type Change struct {
	Kind string
	Op   Op
	ID   string
}

// Touches reports whether the change can affect entities derived from
// pages and chapters.
func (c Change) Touches() bool {
	return c.Kind == model.KindPage || c.Kind == model.KindChapter || c.Op == OpReload
}

type Graph struct {
	Story model.Story

	pages    *collection.Collection[*model.Page]
	chapters *collection.Collection[*model.Chapter]

	// The advanced collections stay nil until the story opts into advanced
	// logic.
	locations  *collection.Collection[*model.Location]
	variables  *collection.Collection[*model.Variable]
	conditions *collection.Collection[*model.Condition]
	functions  *collection.Collection[*model.Function]

	idOpts      []collection.Option
	subscribers map[int]func(Change)
	nextSub     int
}

var _ collection.Reader[*model.Page] = (*collection.Collection[*model.Page])(nil)

func New(story model.Story, opts ...collection.Option) *Graph {
	g := &Graph{
		Story:       story,
		idOpts:      opts,
		subscribers: make(map[int]func(Change)),
	}
	g.reset()
	return g
}

func (g *Graph) reset() {
	g.pages = collection.New[*model.Page](g.idOpts...)
	g.chapters = collection.New[*model.Chapter](g.idOpts...)
	g.locations = nil
	g.variables = nil
	g.conditions = nil
	g.functions = nil
}

// EnableAdvanced creates any missing advanced collection.
func (g *Graph) EnableAdvanced() {
	if g.locations == nil {
		g.locations = collection.New[*model.Location](g.idOpts...)
	}
	if g.variables == nil {
		g.variables = collection.New[*model.Variable](g.idOpts...)
	}
	if g.conditions == nil {
		g.conditions = collection.New[*model.Condition](g.idOpts...)
	}
	if g.functions == nil {
		g.functions = collection.New[*model.Function](g.idOpts...)
	}
}

// HasAdvanced is true when all four advanced collections exist and at least
// one of them holds something.
func (g *Graph) HasAdvanced() bool {
	if g.locations == nil || g.variables == nil || g.conditions == nil || g.functions == nil {
		return false
	}
	return g.locations.Len() > 0 || g.variables.Len() > 0 || g.conditions.Len() > 0 || g.functions.Len() > 0
}

func (g *Graph) Pages() collection.Reader[*model.Page]           { return g.pages }
func (g *Graph) Chapters() collection.Reader[*model.Chapter]     { return g.chapters }
func (g *Graph) Locations() collection.Reader[*model.Location]   { return g.locations }
func (g *Graph) Variables() collection.Reader[*model.Variable]   { return g.variables }
func (g *Graph) Conditions() collection.Reader[*model.Condition] { return g.conditions }
func (g *Graph) Functions() collection.Reader[*model.Function]   { return g.functions }

// Subscribe registers fn for every subsequent change and returns a function
// that removes it. Callbacks run synchronously, in no particular order.
func (g *Graph) Subscribe(fn func(Change)) func() {
	id := g.nextSub
	g.nextSub++
	g.subscribers[id] = fn
	return func() {
		delete(g.subscribers, id)
	}
}

func (g *Graph) notify(change Change) {
	for _, fn := range g.subscribers {
		fn(change)
	}
}

func (g *Graph) SavePage(p *model.Page) (string, error) {
	return save(g, g.pages, model.KindPage, p)
}

func (g *Graph) RemovePage(id string) bool {
	return remove(g, g.pages, model.KindPage, id)
}

func (g *Graph) SaveChapter(c *model.Chapter) (string, error) {
	return save(g, g.chapters, model.KindChapter, c)
}

func (g *Graph) RemoveChapter(id string) bool {
	return remove(g, g.chapters, model.KindChapter, id)
}

func (g *Graph) SaveLocation(l *model.Location) (string, error) {
	g.EnableAdvanced()
	return save(g, g.locations, model.KindLocation, l)
}

func (g *Graph) RemoveLocation(id string) bool {
	return remove(g, g.locations, model.KindLocation, id)
}

func (g *Graph) SaveVariable(v *model.Variable) (string, error) {
	g.EnableAdvanced()
	return save(g, g.variables, model.KindVariable, v)
}

func (g *Graph) RemoveVariable(id string) bool {
	return remove(g, g.variables, model.KindVariable, id)
}

func (g *Graph) SaveCondition(c *model.Condition) (string, error) {
	g.EnableAdvanced()
	return save(g, g.conditions, model.KindCondition, c)
}

func (g *Graph) RemoveCondition(id string) bool {
	return remove(g, g.conditions, model.KindCondition, id)
}

func (g *Graph) SaveFunction(f *model.Function) (string, error) {
	g.EnableAdvanced()
	return save(g, g.functions, model.KindFunction, f)
}

func (g *Graph) RemoveFunction(id string) bool {
	return remove(g, g.functions, model.KindFunction, id)
}

func save[T collection.Identifiable](g *Graph, c *collection.Collection[T], kind string, item T) (string, error) {
	id, err := c.Save(item)
	if err != nil {
		return "", fmt.Errorf("saving %s: %w", kind, err)
	}
	g.notify(Change{Kind: kind, Op: OpSave, ID: id})
	return id, nil
}

func remove[T collection.Identifiable](g *Graph, c *collection.Collection[T], kind, id string) bool {
	if c == nil || !c.Remove(id) {
		return false
	}
	g.notify(Change{Kind: kind, Op: OpRemove, ID: id})
	return true
}

// View is a read-only snapshot of the graph's collections. The slices are
// copies; the records are shared.
type View struct {
	Pages      []*model.Page
	Chapters   []*model.Chapter
	Locations  []*model.Location
	Variables  []*model.Variable
	Conditions []*model.Condition
	Functions  []*model.Function
}

func (g *Graph) View() View {
	return View{
		Pages:      g.pages.Items(),
		Chapters:   g.chapters.Items(),
		Locations:  g.locations.Items(),
		Variables:  g.variables.Items(),
		Conditions: g.conditions.Items(),
		Functions:  g.functions.Items(),
	}
}

func (g *Graph) VariableInUse(v *model.Variable) Usage[*model.Variable] {
	return VariableInUse(g.View(), v)
}

func (g *Graph) FunctionInUse(f *model.Function) Usage[*model.Function] {
	return FunctionInUse(g.View(), f)
}

func (g *Graph) ConditionInUse(c *model.Condition) Usage[*model.Condition] {
	return ConditionInUse(g.View(), c)
}

func (g *Graph) LocationInUse(l *model.Location) Usage[*model.Location] {
	return LocationInUse(g.View(), l)
}

func (g *Graph) PageInUse(p *model.Page) Usage[*model.Page] {
	return PageInUse(g.View(), p)
}

func (g *Graph) ChapterInUse(c *model.Chapter) Usage[*model.Chapter] {
	return ChapterInUse(g.View(), c)
}
