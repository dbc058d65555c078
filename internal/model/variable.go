package model

import (
	"errors"
	"fmt"
)

const (
	KindVariable  = "variable"
	KindLocation  = "location"
	KindFunction  = "function"
	KindCondition = "condition"
	KindPage      = "page"
	KindChapter   = "chapter"
	KindStory     = "story"
)

var (
	ErrUnknownField = errors.New("unknown field")
	ErrImmutableID  = errors.New("id is immutable once assigned")
)

func assignID(kind string, current *string, value any) error {
	id, err := asString(kind, "id", value)
	if err != nil {
		return err
	}
	if id == "" {
		return nil
	}
	if *current != "" && id != *current {
		return fmt.Errorf("%s.id: %w", kind, ErrImmutableID)
	}
	*current = id
	return nil
}

func unknownField(kind, field string) error {
	return fmt.Errorf("%s.%s: %w", kind, field, ErrUnknownField)
}

// skippable reports whether a seed key can be ignored during construction.
func skippable(err error) bool {
	return errors.Is(err, ErrUnknownField) || errors.Is(err, ErrFieldNotApplicable)
}

type Variable struct {
	ID   string
	Name string
}

func NewVariable(seed Object) (*Variable, error) {
	v := &Variable{}
	for _, key := range sortedKeys(seed) {
		if err := v.Set(key, seed[key]); err != nil && !skippable(err) {
			return nil, err
		}
	}
	return v, nil
}

func (v *Variable) EntityID() string { return v.ID }

func (v *Variable) AssignID(id string) {
	if v.ID == "" {
		v.ID = id
	}
}

func (v *Variable) Set(field string, value any) error {
	var err error
	switch field {
	case "id":
		return assignID(KindVariable, &v.ID, value)
	case "name":
		v.Name, err = setString(v.Name, KindVariable, field, value)
	default:
		return unknownField(KindVariable, field)
	}
	return err
}

func (v *Variable) Object() Object {
	obj := Object{}
	putString(obj, "id", v.ID)
	putString(obj, "name", v.Name)
	return obj
}

func (v *Variable) MarshalJSON() ([]byte, error) {
	return marshalObject(v.Object())
}

func (v *Variable) UnmarshalJSON(data []byte) error {
	obj, err := decodeObject(data)
	if err != nil {
		return err
	}
	decoded, err := NewVariable(obj)
	if err != nil {
		return err
	}
	*v = *decoded
	return nil
}
