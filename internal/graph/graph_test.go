package graph

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"waymark/internal/collection"
	"waymark/internal/model"
)

func newTestGraph(t *testing.T) *Graph {
	t.Helper()
	g := New(model.Story{ID: "s1", Title: "Harbour Walk"})
	for _, p := range []*model.Page{
		{ID: "p1", Name: "Quay", AdvancedFunctionIDs: []string{"f1"}, AdvancedConditionIDs: []string{"c1"}},
		{ID: "p2", Name: "Lighthouse", UnlockedByPageIDs: []string{"p1"}},
	} {
		if _, err := g.SavePage(p); err != nil {
			t.Fatalf("save page: %v", err)
		}
	}
	if _, err := g.SaveChapter(&model.Chapter{ID: "ch1", Name: "Morning", PageIDs: []string{"p1", "p2"}}); err != nil {
		t.Fatalf("save chapter: %v", err)
	}
	return g
}

func TestHasAdvanced(t *testing.T) {
	g := New(model.Story{ID: "s1"})
	if g.HasAdvanced() {
		t.Fatalf("expected no advanced layer on a new graph")
	}

	g.EnableAdvanced()
	if g.HasAdvanced() {
		t.Fatalf("expected empty advanced collections to count as no advanced layer")
	}

	if _, err := g.SaveVariable(&model.Variable{ID: "v1", Name: "coins"}); err != nil {
		t.Fatalf("save variable: %v", err)
	}
	if !g.HasAdvanced() {
		t.Fatalf("expected advanced layer after saving a variable")
	}

	g.RemoveVariable("v1")
	if g.HasAdvanced() {
		t.Fatalf("expected no advanced layer once the only entity is removed")
	}
}

func TestSaveAdvancedEnablesLayer(t *testing.T) {
	g := New(model.Story{ID: "s1"})
	if g.Locations().Len() != 0 {
		t.Fatalf("expected empty locations before enabling")
	}
	if _, err := g.SaveLocation(&model.Location{ID: "l1", Name: "Pier"}); err != nil {
		t.Fatalf("save location: %v", err)
	}
	if g.variables == nil || g.conditions == nil || g.functions == nil {
		t.Fatalf("expected all advanced collections created")
	}
	if !g.HasAdvanced() {
		t.Fatalf("expected advanced layer")
	}
}

func TestVariableInUse(t *testing.T) {
	g := newTestGraph(t)
	variable := &model.Variable{ID: "v1", Name: "coins"}
	g.SaveVariable(variable)

	usage := g.VariableInUse(variable)
	if usage.InUse {
		t.Fatalf("expected unreferenced variable not in use")
	}
	if usage.UsedIn == nil || len(usage.UsedIn) != 0 {
		t.Fatalf("expected empty non-nil UsedIn, got %#v", usage.UsedIn)
	}
	if usage.Item != variable {
		t.Fatalf("expected item echoed back")
	}

	g.SaveCondition(&model.Condition{ID: "c1", Name: "Has coins", Spec: &model.Check{VariableID: "v1"}})
	usage = g.VariableInUse(variable)
	if !usage.InUse {
		t.Fatalf("expected variable in use")
	}
	if !reflect.DeepEqual(usage.UsedIn, []string{"Advanced Condition: Has coins"}) {
		t.Fatalf("unexpected usedIn %v", usage.UsedIn)
	}
}

func TestVariableInUseOrdersConditionsBeforeFunctions(t *testing.T) {
	g := newTestGraph(t)
	variable := &model.Variable{ID: "v1", Name: "coins"}
	g.SaveVariable(variable)
	g.SaveFunction(&model.Function{ID: "f1", Name: "Add coin", Spec: &model.Increment{VariableID: "v1", Value: "1"}})
	g.SaveCondition(&model.Condition{ID: "c1", Name: "Rich", Spec: &model.Comparison{
		VariableA: "v1", VariableAType: model.OperandTypeVariable,
		VariableB: "10", VariableBType: model.OperandTypeInteger, Operand: ">",
	}})
	g.SaveCondition(&model.Condition{ID: "c2", Name: "Poor", Spec: &model.Comparison{
		VariableA: "5", VariableB: "v1", Operand: "<",
	}})
	g.SaveCondition(&model.Condition{ID: "c3", Name: "Other", Spec: &model.Check{VariableID: "v2"}})

	usage := g.VariableInUse(variable)
	want := []string{
		"Advanced Condition: Rich",
		"Advanced Condition: Poor",
		"Advanced Function: Add coin",
	}
	if !reflect.DeepEqual(usage.UsedIn, want) {
		t.Fatalf("expected %v, got %v", want, usage.UsedIn)
	}
}

func TestVariableInUseIgnoresUnsetFields(t *testing.T) {
	g := New(model.Story{ID: "s1"})
	g.SaveCondition(&model.Condition{ID: "c1", Name: "Blank", Spec: &model.Comparison{}})
	g.SaveFunction(&model.Function{ID: "f1", Name: "Chain", Spec: &model.Chain{}})

	usage := g.VariableInUse(&model.Variable{Name: "unsaved"})
	if usage.InUse {
		t.Fatalf("expected unset ids never to match, got %v", usage.UsedIn)
	}
}

func TestFunctionInUse(t *testing.T) {
	g := newTestGraph(t)
	used := &model.Function{ID: "f1", Name: "Add coin", Spec: &model.SetTimestamp{VariableID: "v1"}}
	unused := &model.Function{ID: "f2", Name: "Spare", Spec: &model.SetTimestamp{VariableID: "v1"}}
	g.SaveFunction(used)
	g.SaveFunction(unused)

	if got := g.FunctionInUse(used); !got.InUse || !reflect.DeepEqual(got.UsedIn, []string{"Page: Quay"}) {
		t.Fatalf("unexpected usage %+v", got)
	}
	if got := g.FunctionInUse(unused); got.InUse || len(got.UsedIn) != 0 {
		t.Fatalf("expected f2 unused, got %+v", got)
	}
}

func TestConditionInUse(t *testing.T) {
	g := newTestGraph(t)
	cond := &model.Condition{ID: "c1", Name: "Morning", Spec: &model.Check{VariableID: "v1"}}
	g.SaveCondition(cond)
	g.SaveFunction(&model.Function{ID: "f1", Name: "Gated", ConditionIDs: []string{"c1"}, Spec: &model.SetTimestamp{VariableID: "v1"}})

	got := g.ConditionInUse(cond)
	want := []string{"Advanced Function: Gated", "Page: Quay"}
	if !reflect.DeepEqual(got.UsedIn, want) {
		t.Fatalf("expected %v, got %v", want, got.UsedIn)
	}
}

func TestUnknownEntityLooksUnused(t *testing.T) {
	g := newTestGraph(t)
	missing := &model.Condition{ID: "nowhere", Name: "Ghost", Spec: &model.Check{}}
	got := g.ConditionInUse(missing)
	if got.InUse || len(got.UsedIn) != 0 {
		t.Fatalf("expected unknown entity to look unused, got %+v", got)
	}
}

func TestLocationPageChapterInUse(t *testing.T) {
	g := newTestGraph(t)
	loc := &model.Location{ID: "l1", Name: "Pier"}
	g.SaveLocation(loc)
	g.SaveCondition(&model.Condition{ID: "c9", Name: "At pier", Spec: &model.LocationCheck{LocationID: "l1"}})
	g.SaveChapter(&model.Chapter{ID: "ch2", Name: "Evening", LocksChapters: []string{"ch1"}})

	if got := g.LocationInUse(loc); !reflect.DeepEqual(got.UsedIn, []string{"Advanced Condition: At pier"}) {
		t.Fatalf("unexpected location usage %v", got.UsedIn)
	}

	p1, _ := g.Pages().Get("p1")
	if got := g.PageInUse(p1); !reflect.DeepEqual(got.UsedIn, []string{"Chapter: Morning", "Page: Lighthouse"}) {
		t.Fatalf("unexpected page usage %v", got.UsedIn)
	}

	ch1, _ := g.Chapters().Get("ch1")
	if got := g.ChapterInUse(ch1); !reflect.DeepEqual(got.UsedIn, []string{"Chapter: Evening"}) {
		t.Fatalf("unexpected chapter usage %v", got.UsedIn)
	}
}

func TestUsageOnNil(t *testing.T) {
	g := newTestGraph(t)
	if got := g.VariableInUse(nil); got.InUse || got.UsedIn == nil {
		t.Fatalf("expected empty usage for nil, got %+v", got)
	}
}

func TestSubscribe(t *testing.T) {
	g := New(model.Story{ID: "s1"})
	var changes []Change
	unsubscribe := g.Subscribe(func(c Change) {
		changes = append(changes, c)
	})

	g.SavePage(&model.Page{ID: "p1"})
	g.SaveVariable(&model.Variable{ID: "v1"})
	g.RemovePage("p1")
	g.RemovePage("p1")
	g.RemoveCondition("missing")

	want := []Change{
		{Kind: model.KindPage, Op: OpSave, ID: "p1"},
		{Kind: model.KindVariable, Op: OpSave, ID: "v1"},
		{Kind: model.KindPage, Op: OpRemove, ID: "p1"},
	}
	if !reflect.DeepEqual(changes, want) {
		t.Fatalf("expected %v, got %v", want, changes)
	}

	unsubscribe()
	g.SavePage(&model.Page{ID: "p2"})
	if len(changes) != 3 {
		t.Fatalf("expected no changes after unsubscribe, got %v", changes)
	}
}

func TestSaveErrorDoesNotNotify(t *testing.T) {
	g := New(model.Story{ID: "s1"})
	called := false
	g.Subscribe(func(Change) { called = true })

	if _, err := g.SavePage(nil); err == nil || !strings.Contains(err.Error(), "saving page") {
		t.Fatalf("expected wrapped save error, got %v", err)
	}
	if called {
		t.Fatalf("expected no notification for a failed save")
	}
}

func TestSaveRenamedPageRejected(t *testing.T) {
	g := New(model.Story{ID: "s1"})
	p := &model.Page{Name: "Quay"}
	id, err := g.SavePage(p)
	if err != nil {
		t.Fatalf("save page: %v", err)
	}

	p.ID = "renamed"
	if _, err := g.SavePage(p); !errors.Is(err, collection.ErrIDChanged) {
		t.Fatalf("expected ErrIDChanged, got %v", err)
	}
	if got := g.Pages().IDs(); !reflect.DeepEqual(got, []string{id}) {
		t.Fatalf("expected single page %q, got %v", id, got)
	}
	if _, ok := g.Pages().Get("renamed"); ok {
		t.Fatalf("expected renamed id to be unknown")
	}
}

func TestChangeTouches(t *testing.T) {
	tests := []struct {
		change Change
		want   bool
	}{
		{Change{Kind: model.KindPage, Op: OpSave}, true},
		{Change{Kind: model.KindChapter, Op: OpRemove}, true},
		{Change{Kind: model.KindStory, Op: OpReload}, true},
		{Change{Kind: model.KindVariable, Op: OpSave}, false},
		{Change{Kind: model.KindCondition, Op: OpRemove}, false},
	}
	for _, tt := range tests {
		if got := tt.change.Touches(); got != tt.want {
			t.Fatalf("%+v: expected %v, got %v", tt.change, tt.want, got)
		}
	}
}

func TestJSONRoundTrip(t *testing.T) {
	g := newTestGraph(t)
	g.SaveVariable(&model.Variable{ID: "v1", Name: "coins"})
	g.SaveCondition(&model.Condition{ID: "c1", Name: "Has coins", Spec: &model.Check{VariableID: "v1"}})

	data, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var reloads int
	copyGraph := New(model.Story{})
	copyGraph.Subscribe(func(c Change) {
		if c.Op == OpReload {
			reloads++
		}
	})
	if err := json.Unmarshal(data, copyGraph); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if reloads != 1 {
		t.Fatalf("expected one reload notification, got %d", reloads)
	}
	if copyGraph.Story.ID != "s1" || copyGraph.Story.Title != "Harbour Walk" {
		t.Fatalf("unexpected story %+v", copyGraph.Story)
	}
	if !reflect.DeepEqual(copyGraph.Pages().IDs(), []string{"p1", "p2"}) {
		t.Fatalf("unexpected pages %v", copyGraph.Pages().IDs())
	}
	cond, ok := copyGraph.Conditions().Get("c1")
	if !ok || cond.Type() != model.ConditionCheck {
		t.Fatalf("expected check condition back, got %+v", cond)
	}

	again, err := json.Marshal(copyGraph)
	if err != nil {
		t.Fatalf("marshal again: %v", err)
	}
	var first, second map[string]any
	json.Unmarshal(data, &first)
	json.Unmarshal(again, &second)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected stable round trip\nfirst:  %s\nsecond: %s", data, again)
	}
}

func TestMarshalOmitsAdvancedWhenDisabled(t *testing.T) {
	g := New(model.Story{ID: "s1"})
	data, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := doc["variables"]; ok {
		t.Fatalf("expected no variables key, got %s", data)
	}
	if pages, ok := doc["pages"].([]any); !ok || len(pages) != 0 {
		t.Fatalf("expected empty pages array, got %s", data)
	}

	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("decode graph: %v", err)
	}
	if decoded.Variables().Len() != 0 || decoded.HasAdvanced() {
		t.Fatalf("expected no advanced layer after decode")
	}
}

func TestDecodeFailsFast(t *testing.T) {
	_, err := Decode([]byte(`{"id":"s1","pages":[{"id":"p1","name":42}]}`))
	if err == nil || !strings.Contains(err.Error(), "decoding pages") {
		t.Fatalf("expected page decode error, got %v", err)
	}
}

func TestUsageByID(t *testing.T) {
	g := newTestGraph(t)

	usage, err := g.UsageByID(model.KindPage, "p1")
	if err != nil {
		t.Fatalf("usage: %v", err)
	}
	want := []string{"Chapter: Morning", "Page: Lighthouse"}
	if usage.Item != "p1" || !usage.InUse || !reflect.DeepEqual(usage.UsedIn, want) {
		t.Fatalf("unexpected usage %+v", usage)
	}

	usage, err = g.UsageByID(model.KindChapter, "ch1")
	if err != nil || usage.InUse || usage.UsedIn == nil {
		t.Fatalf("expected unused chapter with empty list, got %+v %v", usage, err)
	}

	_, err = g.UsageByID(model.KindVariable, "v1")
	if !errors.Is(err, collection.ErrNotFound) {
		t.Fatalf("expected ErrNotFound without advanced layer, got %v", err)
	}

	_, err = g.UsageByID("weather", "x")
	if !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}
