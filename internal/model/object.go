package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
)

// Object is the plain JSON-shaped form every record is built from and
// serialized to.
type Object = map[string]any

var ErrFieldNotApplicable = errors.New("field not applicable")

type TypeError struct {
	Kind  string
	Field string
	Want  string
	Got   any
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("%s.%s: expected %s, got %T", e.Kind, e.Field, e.Want, e.Got)
}

const (
	wantString  = "string"
	wantNumber  = "number"
	wantBoolean = "boolean"
	wantStrings = "array of string"
)

func asString(kind, field string, value any) (string, error) {
	if value == nil {
		return "", nil
	}
	s, ok := value.(string)
	if !ok {
		return "", &TypeError{Kind: kind, Field: field, Want: wantString, Got: value}
	}
	return s, nil
}

func asNumber(kind, field string, value any) (*float64, error) {
	var n float64
	switch v := value.(type) {
	case nil:
		return nil, nil
	case float64:
		n = v
	case float32:
		n = float64(v)
	case int:
		n = float64(v)
	case int64:
		n = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return nil, &TypeError{Kind: kind, Field: field, Want: wantNumber, Got: value}
		}
		n = parsed
	default:
		return nil, &TypeError{Kind: kind, Field: field, Want: wantNumber, Got: value}
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return nil, &TypeError{Kind: kind, Field: field, Want: wantNumber, Got: value}
	}
	return &n, nil
}

func asBool(kind, field string, value any) (*bool, error) {
	if value == nil {
		return nil, nil
	}
	b, ok := value.(bool)
	if !ok {
		return nil, &TypeError{Kind: kind, Field: field, Want: wantBoolean, Got: value}
	}
	return &b, nil
}

func asStrings(kind, field string, value any) ([]string, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []string:
		return append([]string{}, v...), nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, &TypeError{Kind: kind, Field: field, Want: wantStrings, Got: value}
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, &TypeError{Kind: kind, Field: field, Want: wantStrings, Got: value}
	}
}

// sortedKeys gives seed application a stable order so the first reported
// error does not depend on map iteration.
func sortedKeys(obj Object) []string {
	keys := make([]string, 0, len(obj))
	for key := range obj {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func decodeObject(data []byte) (Object, error) {
	var obj Object
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return Object{}, nil
	}
	return obj, nil
}

func putString(obj Object, key, value string) {
	if value != "" {
		obj[key] = value
	}
}

func putNumber(obj Object, key string, value *float64) {
	if value != nil {
		obj[key] = *value
	}
}

func putBool(obj Object, key string, value *bool) {
	if value != nil {
		obj[key] = *value
	}
}

func putStrings(obj Object, key string, value []string) {
	if value != nil {
		obj[key] = append([]string{}, value...)
	}
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	return append([]string{}, values...)
}

func containsString(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}

// Float returns a pointer to v, for optional numeric fields.
func Float(v float64) *float64 { return &v }

// Bool returns a pointer to v, for optional boolean fields.
func Bool(v bool) *bool { return &v }

func marshalObject(obj Object) ([]byte, error) {
	return json.Marshal(obj)
}
