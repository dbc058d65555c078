package graph

import (
	"errors"
	"fmt"

	"waymark/internal/collection"
	"waymark/internal/model"
)

const (
	labelCondition = "Advanced Condition: %s"
	labelFunction  = "Advanced Function: %s"
	labelPage      = "Page: %s"
	labelChapter   = "Chapter: %s"
)

// Usage answers "is this entity referenced anywhere, and where". An entity
// nobody references and an entity that does not exist look the same.
type Usage[T any] struct {
	Item   T
	InUse  bool
	UsedIn []string
}

func newUsage[T any](item T, usedIn []string) Usage[T] {
	if usedIn == nil {
		usedIn = []string{}
	}
	return Usage[T]{Item: item, InUse: len(usedIn) > 0, UsedIn: usedIn}
}

// VariableInUse scans conditions for variableA, variableB or variableId and
// functions for variableId.
func VariableInUse(v View, variable *model.Variable) Usage[*model.Variable] {
	if variable == nil {
		return newUsage(variable, nil)
	}
	var usedIn []string
	for _, cond := range v.Conditions {
		if cond.ReferencesVariable(variable.ID) {
			usedIn = append(usedIn, fmt.Sprintf(labelCondition, cond.Name))
		}
	}
	for _, fn := range v.Functions {
		if id := fn.VariableID(); id != "" && id == variable.ID {
			usedIn = append(usedIn, fmt.Sprintf(labelFunction, fn.Name))
		}
	}
	return newUsage(variable, usedIn)
}

func FunctionInUse(v View, fn *model.Function) Usage[*model.Function] {
	if fn == nil {
		return newUsage(fn, nil)
	}
	var usedIn []string
	for _, page := range v.Pages {
		if contains(page.AdvancedFunctionIDs, fn.ID) {
			usedIn = append(usedIn, fmt.Sprintf(labelPage, page.Name))
		}
	}
	return newUsage(fn, usedIn)
}

// ConditionInUse scans functions' conditionIds, then pages'
// advancedConditionIds.
func ConditionInUse(v View, cond *model.Condition) Usage[*model.Condition] {
	if cond == nil {
		return newUsage(cond, nil)
	}
	var usedIn []string
	for _, fn := range v.Functions {
		if contains(fn.ConditionIDs, cond.ID) {
			usedIn = append(usedIn, fmt.Sprintf(labelFunction, fn.Name))
		}
	}
	for _, page := range v.Pages {
		if contains(page.AdvancedConditionIDs, cond.ID) {
			usedIn = append(usedIn, fmt.Sprintf(labelPage, page.Name))
		}
	}
	return newUsage(cond, usedIn)
}

func LocationInUse(v View, loc *model.Location) Usage[*model.Location] {
	if loc == nil {
		return newUsage(loc, nil)
	}
	var usedIn []string
	for _, cond := range v.Conditions {
		if id := cond.LocationID(); id != "" && id == loc.ID {
			usedIn = append(usedIn, fmt.Sprintf(labelCondition, cond.Name))
		}
	}
	return newUsage(loc, usedIn)
}

// PageInUse scans chapters' pageIds and unlockedByPageIds, then other pages'
// unlockedByPageIds.
func PageInUse(v View, page *model.Page) Usage[*model.Page] {
	if page == nil {
		return newUsage(page, nil)
	}
	var usedIn []string
	for _, chapter := range v.Chapters {
		if contains(chapter.PageIDs, page.ID) || contains(chapter.UnlockedByPageIDs, page.ID) {
			usedIn = append(usedIn, fmt.Sprintf(labelChapter, chapter.Name))
		}
	}
	for _, other := range v.Pages {
		if other.ID != page.ID && contains(other.UnlockedByPageIDs, page.ID) {
			usedIn = append(usedIn, fmt.Sprintf(labelPage, other.Name))
		}
	}
	return newUsage(page, usedIn)
}

func ChapterInUse(v View, chapter *model.Chapter) Usage[*model.Chapter] {
	if chapter == nil {
		return newUsage(chapter, nil)
	}
	var usedIn []string
	for _, other := range v.Chapters {
		if other.ID != chapter.ID && contains(other.LocksChapters, chapter.ID) {
			usedIn = append(usedIn, fmt.Sprintf(labelChapter, other.Name))
		}
	}
	return newUsage(chapter, usedIn)
}

func contains(ids []string, id string) bool {
	if id == "" {
		return false
	}
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

var ErrUnknownKind = errors.New("unknown entity kind")

// UsageByID resolves an entity by kind and id and reports where it is used.
// A missing entity is a *collection.NotFoundError.
func (g *Graph) UsageByID(kind, id string) (Usage[string], error) {
	v := g.View()
	switch kind {
	case model.KindVariable:
		item, ok := g.variables.Get(id)
		if !ok {
			return Usage[string]{}, &collection.NotFoundError{Kind: kind, ID: id}
		}
		return relabel(id, VariableInUse(v, item)), nil
	case model.KindFunction:
		item, ok := g.functions.Get(id)
		if !ok {
			return Usage[string]{}, &collection.NotFoundError{Kind: kind, ID: id}
		}
		return relabel(id, FunctionInUse(v, item)), nil
	case model.KindCondition:
		item, ok := g.conditions.Get(id)
		if !ok {
			return Usage[string]{}, &collection.NotFoundError{Kind: kind, ID: id}
		}
		return relabel(id, ConditionInUse(v, item)), nil
	case model.KindLocation:
		item, ok := g.locations.Get(id)
		if !ok {
			return Usage[string]{}, &collection.NotFoundError{Kind: kind, ID: id}
		}
		return relabel(id, LocationInUse(v, item)), nil
	case model.KindPage:
		item, ok := g.pages.Get(id)
		if !ok {
			return Usage[string]{}, &collection.NotFoundError{Kind: kind, ID: id}
		}
		return relabel(id, PageInUse(v, item)), nil
	case model.KindChapter:
		item, ok := g.chapters.Get(id)
		if !ok {
			return Usage[string]{}, &collection.NotFoundError{Kind: kind, ID: id}
		}
		return relabel(id, ChapterInUse(v, item)), nil
	}
	return Usage[string]{}, fmt.Errorf("%q: %w", kind, ErrUnknownKind)
}

func relabel[T any](id string, u Usage[T]) Usage[string] {
	return Usage[string]{Item: id, InUse: u.InUse, UsedIn: u.UsedIn}
}
