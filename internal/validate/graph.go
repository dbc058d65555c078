package validate

import (
	"fmt"
	"strings"

	"waymark/internal/graph"
	"waymark/internal/model"
	"waymark/internal/synth"
)

// Resolver answers whether an id names a known entity of a kind.
// *synth.Catalog is the implementation used by Run.
type Resolver interface {
	Known(kind, id string) bool
}

var _ Resolver = (*synth.Catalog)(nil)

type reference struct {
	kind string
	ids  []string
}

func danglingReferences(v graph.View, r Resolver) []Issue {
	var issues []Issue
	check := func(kind, id, name string, refs ...reference) {
		for _, ref := range refs {
			for _, target := range ref.ids {
				if target == "" || r.Known(ref.kind, target) {
					continue
				}
				issues = append(issues, Issue{
					Severity: SeverityError,
					Code:     codeDanglingReference,
					Message:  fmt.Sprintf("references missing %s %q", ref.kind, target),
					Kind:     kind,
					ID:       id,
					Entity:   name,
				})
			}
		}
	}

	for _, page := range v.Pages {
		check(model.KindPage, page.ID, page.Name,
			reference{model.KindPage, page.UnlockedByPageIDs},
			reference{model.KindCondition, page.AdvancedConditionIDs},
			reference{model.KindFunction, page.AdvancedFunctionIDs},
		)
	}
	for _, chapter := range v.Chapters {
		check(model.KindChapter, chapter.ID, chapter.Name,
			reference{model.KindPage, chapter.PageIDs},
			reference{model.KindPage, chapter.UnlockedByPageIDs},
			reference{model.KindChapter, chapter.LocksChapters},
		)
	}
	for _, cond := range v.Conditions {
		check(model.KindCondition, cond.ID, cond.Name,
			reference{model.KindVariable, cond.VariableIDs()},
			reference{model.KindLocation, []string{cond.LocationID()}},
			reference{model.KindCondition, cond.ConditionIDs()},
		)
	}
	for _, fn := range v.Functions {
		check(model.KindFunction, fn.ID, fn.Name,
			reference{model.KindVariable, []string{fn.VariableID()}},
			reference{model.KindCondition, fn.ConditionIDs},
			reference{model.KindFunction, fn.ChainFunctionIDs()},
		)
	}
	return issues
}

// referenceCycles reports chain functions and logical conditions that reach
// themselves.
func referenceCycles(v graph.View) []Issue {
	functions := make(map[string][]string, len(v.Functions))
	var functionOrder []string
	names := make(map[string]string)
	for _, fn := range v.Functions {
		functions[fn.ID] = fn.ChainFunctionIDs()
		functionOrder = append(functionOrder, fn.ID)
		names[model.KindFunction+"|"+fn.ID] = fn.Name
	}
	conditions := make(map[string][]string, len(v.Conditions))
	var conditionOrder []string
	for _, cond := range v.Conditions {
		conditions[cond.ID] = cond.ConditionIDs()
		conditionOrder = append(conditionOrder, cond.ID)
		names[model.KindCondition+"|"+cond.ID] = cond.Name
	}

	var issues []Issue
	for _, cycle := range findCycles(functionOrder, functions) {
		issues = append(issues, cycleIssue(model.KindFunction, cycle, names))
	}
	for _, cycle := range findCycles(conditionOrder, conditions) {
		issues = append(issues, cycleIssue(model.KindCondition, cycle, names))
	}
	return issues
}

func cycleIssue(kind string, cycle []string, names map[string]string) Issue {
	return Issue{
		Severity: SeverityError,
		Code:     codeReferenceCycle,
		Message:  fmt.Sprintf("%s cycle: %s", kind, strings.Join(cycle, " -> ")),
		Kind:     kind,
		ID:       cycle[0],
		Entity:   names[kind+"|"+cycle[0]],
	}
}

const (
	unvisited = iota
	visiting
	done
)

// findCycles walks edges depth first from each node in order and returns each
// cycle once, closed (first id repeated at the end).
func findCycles(order []string, edges map[string][]string) [][]string {
	state := make(map[string]int, len(order))
	var cycles [][]string
	var path []string

	var visit func(id string)
	visit = func(id string) {
		state[id] = visiting
		path = append(path, id)
		for _, next := range edges[id] {
			if _, ok := edges[next]; !ok {
				continue
			}
			switch state[next] {
			case unvisited:
				visit(next)
			case visiting:
				start := indexOf(path, next)
				cycle := append([]string(nil), path[start:]...)
				cycles = append(cycles, append(cycle, next))
			}
		}
		path = path[:len(path)-1]
		state[id] = done
	}

	for _, id := range order {
		if state[id] == unvisited {
			visit(id)
		}
	}
	return cycles
}

func indexOf(values []string, target string) int {
	for i, value := range values {
		if value == target {
			return i
		}
	}
	return -1
}
