package validate

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"waymark/internal/graph"
	"waymark/internal/model"
	"waymark/internal/synth"
)

type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warning"
)

const (
	codeInvalidRecord     = "invalid_record"
	codeInvalidType       = "invalid_type"
	codeDanglingReference = "dangling_reference"
	codeUnusedEntity      = "unused_entity"
	codeDuplicateName     = "duplicate_name"
	codeReferenceCycle    = "reference_cycle"
)

type Issue struct {
	Severity Severity
	Code     string
	Message  string
	Kind     string
	ID       string
	Entity   string
}

type Report struct {
	Issues []Issue
}

func (r *Report) Count(severity Severity) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == severity {
			n++
		}
	}
	return n
}

func (r *Report) HasErrors() bool {
	return r.Count(SeverityError) > 0
}

// Run checks a story for broken records, dangling and cyclic references,
// unused advanced entities and duplicate names. References may point at
// synthetic entities as well as authored ones.
func Run(g *graph.Graph, bounds model.Bounds) (*Report, error) {
	if g == nil {
		return nil, fmt.Errorf("story graph is required")
	}

	catalog := synth.NewCatalog(g)
	defer catalog.Close()

	view := g.View()
	issues := make([]Issue, 0)
	issues = append(issues, validateRecords(view, bounds)...)
	issues = append(issues, danglingReferences(view, catalog)...)
	issues = append(issues, unusedEntities(view)...)
	issues = append(issues, duplicateNames(view)...)
	issues = append(issues, referenceCycles(view)...)

	return &Report{Issues: issues}, nil
}

func validateRecords(v graph.View, bounds model.Bounds) []Issue {
	var issues []Issue
	for _, page := range v.Pages {
		issues = append(issues, recordIssues(model.KindPage, page.ID, page.Name, page.Validate())...)
	}
	for _, chapter := range v.Chapters {
		issues = append(issues, recordIssues(model.KindChapter, chapter.ID, chapter.Name, chapter.Validate())...)
	}
	for _, loc := range v.Locations {
		issues = append(issues, recordIssues(model.KindLocation, loc.ID, loc.Name, loc.Validate(bounds))...)
	}
	for _, variable := range v.Variables {
		issues = append(issues, recordIssues(model.KindVariable, variable.ID, variable.Name, variable.Validate())...)
	}
	for _, cond := range v.Conditions {
		issues = append(issues, recordIssues(model.KindCondition, cond.ID, cond.Name, cond.Validate())...)
	}
	for _, fn := range v.Functions {
		issues = append(issues, recordIssues(model.KindFunction, fn.ID, fn.Name, fn.Validate())...)
	}
	return issues
}

func recordIssues(kind, id, name string, err error) []Issue {
	if err == nil {
		return nil
	}
	errs := []error{err}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	}

	issues := make([]Issue, 0, len(errs))
	for _, e := range errs {
		code := codeInvalidRecord
		if errors.Is(e, model.ErrUnknownType) {
			code = codeInvalidType
		}
		issues = append(issues, Issue{
			Severity: SeverityError,
			Code:     code,
			Message:  fmt.Sprintf("invalid %s: %v", kind, e),
			Kind:     kind,
			ID:       id,
			Entity:   name,
		})
	}
	return issues
}

func unusedEntities(v graph.View) []Issue {
	var issues []Issue
	unused := func(kind, id, name string) {
		issues = append(issues, Issue{
			Severity: SeverityWarn,
			Code:     codeUnusedEntity,
			Message:  fmt.Sprintf("%s is not used anywhere", kind),
			Kind:     kind,
			ID:       id,
			Entity:   name,
		})
	}

	chained := make(map[string]bool)
	for _, fn := range v.Functions {
		for _, id := range fn.ChainFunctionIDs() {
			chained[id] = true
		}
	}
	nested := make(map[string]bool)
	for _, cond := range v.Conditions {
		for _, id := range cond.ConditionIDs() {
			nested[id] = true
		}
	}

	for _, loc := range v.Locations {
		if !graph.LocationInUse(v, loc).InUse {
			unused(model.KindLocation, loc.ID, loc.Name)
		}
	}
	for _, variable := range v.Variables {
		if !graph.VariableInUse(v, variable).InUse {
			unused(model.KindVariable, variable.ID, variable.Name)
		}
	}
	for _, cond := range v.Conditions {
		if !graph.ConditionInUse(v, cond).InUse && !nested[cond.ID] {
			unused(model.KindCondition, cond.ID, cond.Name)
		}
	}
	for _, fn := range v.Functions {
		if !graph.FunctionInUse(v, fn).InUse && !chained[fn.ID] {
			unused(model.KindFunction, fn.ID, fn.Name)
		}
	}
	return issues
}

type named struct {
	id   string
	name string
}

func duplicateNames(v graph.View) []Issue {
	var issues []Issue
	check := func(kind string, entries []named) {
		seen := make(map[string][]named)
		var order []string
		for _, entry := range entries {
			key := strings.ToLower(strings.TrimSpace(entry.name))
			if key == "" {
				continue
			}
			if _, ok := seen[key]; !ok {
				order = append(order, key)
			}
			seen[key] = append(seen[key], entry)
		}
		for _, key := range order {
			group := seen[key]
			if len(group) < 2 {
				continue
			}
			for _, entry := range group[1:] {
				issues = append(issues, Issue{
					Severity: SeverityWarn,
					Code:     codeDuplicateName,
					Message:  fmt.Sprintf("duplicate %s name, also used by %s", kind, group[0].id),
					Kind:     kind,
					ID:       entry.id,
					Entity:   entry.name,
				})
			}
		}
	}

	check(model.KindPage, namesOf(v.Pages, func(p *model.Page) named { return named{p.ID, p.Name} }))
	check(model.KindChapter, namesOf(v.Chapters, func(c *model.Chapter) named { return named{c.ID, c.Name} }))
	check(model.KindLocation, namesOf(v.Locations, func(l *model.Location) named { return named{l.ID, l.Name} }))
	check(model.KindVariable, namesOf(v.Variables, func(x *model.Variable) named { return named{x.ID, x.Name} }))
	check(model.KindCondition, namesOf(v.Conditions, func(c *model.Condition) named { return named{c.ID, c.Name} }))
	check(model.KindFunction, namesOf(v.Functions, func(f *model.Function) named { return named{f.ID, f.Name} }))
	return issues
}

func namesOf[T any](items []T, fn func(T) named) []named {
	out := make([]named, len(items))
	for i, item := range items {
		out[i] = fn(item)
	}
	return out
}

// SortIssues orders issues errors first, then by kind and id.
func SortIssues(issues []Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Severity != issues[j].Severity {
			return issues[i].Severity == SeverityError
		}
		if issues[i].Kind != issues[j].Kind {
			return issues[i].Kind < issues[j].Kind
		}
		return issues[i].ID < issues[j].ID
	})
}
