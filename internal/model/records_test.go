package model

import (
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestPageSetTypeChecks(t *testing.T) {
	page, err := NewPage(Object{"id": "p1", "name": "Gate", "locationId": "l1"})
	if err != nil {
		t.Fatalf("new page: %v", err)
	}

	tests := []struct {
		field string
		value any
	}{
		{field: "name", value: 12.0},
		{field: "content", value: []any{"a"}},
		{field: "singleVisit", value: "yes"},
		{field: "advancedFunctionIds", value: "f1"},
		{field: "unlockedByPageIds", value: []any{"p2", false}},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			var typeErr *TypeError
			if err := page.Set(tt.field, tt.value); !errors.As(err, &typeErr) {
				t.Fatalf("expected TypeError, got %v", err)
			}
		})
	}

	if page.Name != "Gate" {
		t.Fatalf("expected rejected assignment to keep name, got %q", page.Name)
	}
	if err := page.Set("name", nil); err != nil {
		t.Fatalf("expected unset to be accepted, got %v", err)
	}
	if page.Name != "" {
		t.Fatalf("expected name cleared, got %q", page.Name)
	}
}

func TestPageBatchIsNotTransactional(t *testing.T) {
	page := &Page{ID: "p1"}
	patch := []struct {
		field string
		value any
	}{
		{field: "name", value: "Harbour"},
		{field: "singleVisit", value: "nope"},
		{field: "content", value: "never applied"},
	}

	var failed error
	for _, item := range patch {
		if err := page.Set(item.field, item.value); err != nil {
			failed = err
			break
		}
	}
	if failed == nil {
		t.Fatalf("expected an error")
	}
	if page.Name != "Harbour" {
		t.Fatalf("expected earlier assignment to stay applied, got %q", page.Name)
	}
	if page.Content != "" {
		t.Fatalf("expected later assignment not applied, got %q", page.Content)
	}
}

func TestIDIsImmutable(t *testing.T) {
	v := &Variable{}
	v.AssignID("v1")
	v.AssignID("v2")
	if v.ID != "v1" {
		t.Fatalf("expected id v1, got %q", v.ID)
	}
	if err := v.Set("id", "v3"); !errors.Is(err, ErrImmutableID) {
		t.Fatalf("expected ErrImmutableID, got %v", err)
	}
	if err := v.Set("id", "v1"); err != nil {
		t.Fatalf("expected same id to be accepted, got %v", err)
	}
}

func TestPageJSONRoundTrip(t *testing.T) {
	input := `{"id":"p1","name":"Gate","content":"You arrive.","locationId":"l1","unlockedByPageIds":["p0"],"unlockedByPagesOperator":"or","singleVisit":true,"advancedConditionIds":["c1"],"advancedFunctionIds":[],"pageTransition":"next","ignored":42}`

	var page Page
	if err := json.Unmarshal([]byte(input), &page); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if page.SingleVisit == nil || !*page.SingleVisit {
		t.Fatalf("expected singleVisit true")
	}
	if page.AllowMultiplayer != nil {
		t.Fatalf("expected allowMultiplayer unset")
	}
	if page.AdvancedFunctionIDs == nil || len(page.AdvancedFunctionIDs) != 0 {
		t.Fatalf("expected empty but set function ids, got %#v", page.AdvancedFunctionIDs)
	}

	data, err := json.Marshal(&page)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var again Page
	if err := json.Unmarshal(data, &again); err != nil {
		t.Fatalf("unmarshal again: %v", err)
	}
	if !reflect.DeepEqual(page, again) {
		t.Fatalf("expected %#v, got %#v", page, again)
	}
}

func TestChapterFromObject(t *testing.T) {
	chapter, err := NewChapter(Object{
		"id":                    "ch1",
		"name":                  "Act One",
		"pageIds":               []any{"p1", "p2"},
		"locksChapters":         []any{"ch2"},
		"locksAllOtherChapters": false,
	})
	if err != nil {
		t.Fatalf("new chapter: %v", err)
	}
	if !reflect.DeepEqual(chapter.PageIDs, []string{"p1", "p2"}) {
		t.Fatalf("unexpected page ids %v", chapter.PageIDs)
	}
	if chapter.LocksAllOtherChapters == nil || *chapter.LocksAllOtherChapters {
		t.Fatalf("expected locksAllOtherChapters false")
	}

	if _, err := NewChapter(Object{"pageIds": "p1"}); err == nil {
		t.Fatalf("expected error for non-array pageIds")
	}
}

func TestLocationNumbers(t *testing.T) {
	loc, err := NewLocation(Object{"id": "l1", "name": "Quay", "lat": 50.9, "long": json.Number("-1.4"), "radius": 20})
	if err != nil {
		t.Fatalf("new location: %v", err)
	}
	if *loc.Long != -1.4 || *loc.Radius != 20 {
		t.Fatalf("unexpected numbers %v %v", *loc.Long, *loc.Radius)
	}
	if err := loc.Set("lat", "50.9"); err == nil {
		t.Fatalf("expected TypeError for string latitude")
	}
	if *loc.Lat != 50.9 {
		t.Fatalf("expected latitude untouched, got %v", *loc.Lat)
	}
	for _, bad := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
		var typeErr *TypeError
		if err := loc.Set("lat", bad); !errors.As(err, &typeErr) {
			t.Fatalf("expected TypeError for %v, got %v", bad, err)
		}
	}
	if _, err := json.Marshal(loc); err != nil {
		t.Fatalf("expected location to stay encodable, got %v", err)
	}
}

func TestFunctionRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		seed Object
		keys []string
	}{
		{
			name: "set",
			seed: Object{"id": "f1", "name": "Open", "type": "set", "variableId": "v1", "value": "open", "conditionIds": []any{"c1"}},
			keys: []string{"conditionIds", "id", "name", "type", "value", "variableId"},
		},
		{
			name: "settimestamp",
			seed: Object{"id": "f2", "name": "Stamp", "type": "settimestamp", "variableId": "v2", "value": "ignored"},
			keys: []string{"id", "name", "type", "variableId"},
		},
		{
			name: "increment",
			seed: Object{"id": "f3", "name": "Count", "type": "increment", "variableId": "v3", "value": "1"},
			keys: []string{"id", "name", "type", "value", "variableId"},
		},
		{
			name: "chain",
			seed: Object{"id": "f4", "name": "All", "type": "chain", "chainFunctionIds": []any{"f1", "f3"}},
			keys: []string{"chainFunctionIds", "id", "name", "type"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, err := NewFunction(tt.seed)
			if err != nil {
				t.Fatalf("new function: %v", err)
			}
			obj := fn.Object()
			if got := keysOf(obj); !reflect.DeepEqual(got, tt.keys) {
				t.Fatalf("expected keys %v, got %v", tt.keys, got)
			}
			again, err := NewFunction(obj)
			if err != nil {
				t.Fatalf("rebuild: %v", err)
			}
			if !reflect.DeepEqual(again, fn) {
				t.Fatalf("expected %#v, got %#v", fn, again)
			}
		})
	}
}

func TestFunctionSetKeepsEmptyValue(t *testing.T) {
	fn, err := NewFunction(Object{"id": "f1", "name": "Clear", "type": "set", "variableId": "v1", "value": ""})
	if err != nil {
		t.Fatalf("new function: %v", err)
	}
	data, err := json.Marshal(fn)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var again Function
	if err := json.Unmarshal(data, &again); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	spec, ok := again.Spec.(*SetValue)
	if !ok || spec.Value == nil || *spec.Value != "" {
		t.Fatalf("expected explicit empty value, got %s", data)
	}

	unset, _ := NewFunction(Object{"id": "f2", "type": "set", "variableId": "v1"})
	if _, ok := unset.Object()["value"]; ok {
		t.Fatalf("expected unset value omitted, got %v", unset.Object())
	}
}

func TestFunctionUnknownType(t *testing.T) {
	fn, err := NewFunction(Object{"id": "f1", "name": "Odd", "type": "teleport"})
	if err != nil {
		t.Fatalf("new function: %v", err)
	}
	obj := fn.Object()
	if obj["type"] != TypeInvalid || len(obj) != 3 {
		t.Fatalf("expected invalid fallback, got %v", obj)
	}
	if _, err := NewFunction(Object{"type": "set", "value": 1.0}); err == nil {
		t.Fatalf("expected TypeError for numeric value")
	}
}
