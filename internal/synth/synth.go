// Package synth derives the "auto" variables, conditions and locations implied
// by a story's pages and chapters. Derived entities are never stored; editors
// offer them next to the authored ones.
package synth

import (
	"fmt"

	"waymark/internal/graph"
	"waymark/internal/model"
)

const (
	chapterUnlockedPrefix = "chapter-unlocked-"
	pageReadPrefix        = "page-read-"
	pageNotReadPrefix     = "page-not-read-"
	locationPrefix        = "location-"
	variableSuffix        = "-variable"

	readValue = "true"
)

func ChapterUnlockedVariableID(chapterID string) string {
	return chapterUnlockedPrefix + chapterID + variableSuffix
}

func PageReadVariableID(pageID string) string {
	return pageReadPrefix + pageID + variableSuffix
}

func ChapterUnlockedConditionID(chapterID string) string {
	return chapterUnlockedPrefix + chapterID
}

func PageReadConditionID(pageID string) string {
	return pageReadPrefix + pageID
}

func PageNotReadConditionID(pageID string) string {
	return pageNotReadPrefix + pageID
}

func LocationConditionID(locationID string) string {
	return locationPrefix + locationID
}

// StoryVariables returns one variable per chapter, then one per page.
func StoryVariables(v graph.View) []*model.Variable {
	out := make([]*model.Variable, 0, len(v.Chapters)+len(v.Pages))
	for _, chapter := range v.Chapters {
		out = append(out, &model.Variable{
			ID:   ChapterUnlockedVariableID(chapter.ID),
			Name: fmt.Sprintf("Auto: Chapter '%s' unlocked", chapter.Name),
		})
	}
	for _, page := range v.Pages {
		out = append(out, &model.Variable{
			ID:   PageReadVariableID(page.ID),
			Name: fmt.Sprintf("Auto: Page '%s' read", page.Name),
		})
	}
	return out
}

// StoryConditions returns chapter-unlocked, page-read and page-not-read
// conditions, then a location condition for each page with a location.
func StoryConditions(v graph.View) []*model.Condition {
	out := make([]*model.Condition, 0, len(v.Chapters)+3*len(v.Pages))
	for _, chapter := range v.Chapters {
		out = append(out, &model.Condition{
			ID:   ChapterUnlockedConditionID(chapter.ID),
			Name: fmt.Sprintf("Auto: Chapter '%s' unlocked", chapter.Name),
			Spec: &model.Check{VariableID: ChapterUnlockedVariableID(chapter.ID)},
		})
	}
	for _, page := range v.Pages {
		out = append(out, &model.Condition{
			ID:   PageReadConditionID(page.ID),
			Name: fmt.Sprintf("Auto: Page '%s' read", page.Name),
			Spec: &model.Check{VariableID: PageReadVariableID(page.ID)},
		})
	}
	for _, page := range v.Pages {
		out = append(out, &model.Condition{
			ID:   PageNotReadConditionID(page.ID),
			Name: fmt.Sprintf("Auto: Page '%s' not read", page.Name),
			Spec: &model.Comparison{
				VariableA:     PageReadVariableID(page.ID),
				VariableAType: model.OperandTypeVariable,
				VariableB:     readValue,
				VariableBType: model.OperandTypeString,
				Operand:       "!=",
			},
		})
	}
	for _, page := range v.Pages {
		if page.LocationID == "" {
			continue
		}
		out = append(out, &model.Condition{
			ID:   LocationConditionID(page.LocationID),
			Name: fmt.Sprintf("Auto: At page '%s' location", page.Name),
			Spec: &model.LocationCheck{LocationID: page.LocationID},
		})
	}
	return out
}

// StoryLocations returns one location per page with a location. The id is the
// page's location id as is.
func StoryLocations(v graph.View) []*model.Location {
	var out []*model.Location
	for _, page := range v.Pages {
		if page.LocationID == "" {
			continue
		}
		out = append(out, &model.Location{
			ID:   page.LocationID,
			Name: fmt.Sprintf("Auto: Page '%s' location", page.Name),
		})
	}
	return out
}

// Set is every synthetic entity of one story.
type Set struct {
	Variables  []*model.Variable
	Conditions []*model.Condition
	Locations  []*model.Location
}

func Derive(v graph.View) Set {
	return Set{
		Variables:  StoryVariables(v),
		Conditions: StoryConditions(v),
		Locations:  StoryLocations(v),
	}
}
