package model

import "fmt"

type FunctionType string

const (
	FunctionSet          FunctionType = "set"
	FunctionSetTimestamp FunctionType = "settimestamp"
	FunctionIncrement    FunctionType = "increment"
	FunctionChain        FunctionType = "chain"
)

var functionFields = map[string]string{
	"variableId":       wantString,
	"value":            wantString,
	"chainFunctionIds": wantStrings,
}

type FunctionSpec interface {
	FunctionType() FunctionType
	set(field string, value any) error
	put(obj Object)
}

// Function changes story state when a page is read. ConditionIDs gate it and
// apply to every function type.
type Function struct {
	ID           string
	Name         string
	ConditionIDs []string
	Spec         FunctionSpec
}

// SetValue keeps Value as a pointer so an explicit empty value survives a
// round trip.
type SetValue struct {
	VariableID string
	Value      *string
}

type SetTimestamp struct {
	VariableID string
}

type Increment struct {
	VariableID string
	Value      string
}

type Chain struct {
	FunctionIDs []string
}

type UnknownFunction struct {
	Type string
}

func NewFunction(seed Object) (*Function, error) {
	f := &Function{}
	for _, key := range []string{"id", "name", "type"} {
		if err := f.Set(key, seed[key]); err != nil {
			return nil, err
		}
	}
	for _, key := range sortedKeys(seed) {
		if key == "id" || key == "name" || key == "type" {
			continue
		}
		if err := f.Set(key, seed[key]); err != nil && !skippable(err) {
			return nil, err
		}
	}
	return f, nil
}

func newFunctionSpec(t FunctionType) FunctionSpec {
	switch t {
	case FunctionSet:
		return &SetValue{}
	case FunctionSetTimestamp:
		return &SetTimestamp{}
	case FunctionIncrement:
		return &Increment{}
	case FunctionChain:
		return &Chain{}
	default:
		return &UnknownFunction{Type: string(t)}
	}
}

func (f *Function) EntityID() string { return f.ID }

func (f *Function) AssignID(id string) {
	if f.ID == "" {
		f.ID = id
	}
}

func (f *Function) Type() FunctionType {
	if f.Spec == nil {
		return ""
	}
	return f.Spec.FunctionType()
}

func (f *Function) SetType(t FunctionType) {
	if t == "" {
		f.Spec = nil
		return
	}
	if f.Spec != nil && f.Spec.FunctionType() == t {
		return
	}
	f.Spec = newFunctionSpec(t)
}

func (f *Function) Set(field string, value any) error {
	switch field {
	case "id":
		return assignID(KindFunction, &f.ID, value)
	case "name":
		name, err := asString(KindFunction, field, value)
		if err != nil {
			return err
		}
		f.Name = name
		return nil
	case "type":
		t, err := asString(KindFunction, field, value)
		if err != nil {
			return err
		}
		f.SetType(FunctionType(t))
		return nil
	case "conditionIds":
		return setStrings(&f.ConditionIDs, KindFunction, field, value)
	}

	want, ok := functionFields[field]
	if !ok {
		return unknownField(KindFunction, field)
	}
	if err := checkType(KindFunction, field, want, value); err != nil {
		return err
	}
	if f.Spec == nil {
		return fmt.Errorf("%s.%s: %w", KindFunction, field, ErrFieldNotApplicable)
	}
	return f.Spec.set(field, value)
}

func (f *Function) Object() Object {
	obj := Object{}
	putString(obj, "id", f.ID)
	putString(obj, "name", f.Name)
	switch f.Spec.(type) {
	case nil, *UnknownFunction:
		obj["type"] = TypeInvalid
		return obj
	}
	obj["type"] = string(f.Spec.FunctionType())
	putStrings(obj, "conditionIds", f.ConditionIDs)
	f.Spec.put(obj)
	return obj
}

func (f *Function) MarshalJSON() ([]byte, error) {
	return marshalObject(f.Object())
}

func (f *Function) UnmarshalJSON(data []byte) error {
	obj, err := decodeObject(data)
	if err != nil {
		return err
	}
	decoded, err := NewFunction(obj)
	if err != nil {
		return err
	}
	*f = *decoded
	return nil
}

// VariableID returns the variable a set, settimestamp or increment function
// writes to.
func (f *Function) VariableID() string {
	switch spec := f.Spec.(type) {
	case *SetValue:
		return spec.VariableID
	case *SetTimestamp:
		return spec.VariableID
	case *Increment:
		return spec.VariableID
	}
	return ""
}

func (f *Function) ChainFunctionIDs() []string {
	if spec, ok := f.Spec.(*Chain); ok {
		return spec.FunctionIDs
	}
	return nil
}

func (s *SetValue) FunctionType() FunctionType { return FunctionSet }

func (s *SetValue) set(field string, value any) error {
	v, _ := value.(string)
	switch field {
	case "variableId":
		s.VariableID = v
	case "value":
		s.Value = nil
		if value != nil {
			s.Value = &v
		}
	default:
		return notApplicable(field)
	}
	return nil
}

func (s *SetValue) put(obj Object) {
	putString(obj, "variableId", s.VariableID)
	if s.Value != nil {
		obj["value"] = *s.Value
	}
}

func (s *SetTimestamp) FunctionType() FunctionType { return FunctionSetTimestamp }

func (s *SetTimestamp) set(field string, value any) error {
	if field != "variableId" {
		return notApplicable(field)
	}
	s.VariableID, _ = value.(string)
	return nil
}

func (s *SetTimestamp) put(obj Object) {
	putString(obj, "variableId", s.VariableID)
}

func (s *Increment) FunctionType() FunctionType { return FunctionIncrement }

func (s *Increment) set(field string, value any) error {
	v, _ := value.(string)
	switch field {
	case "variableId":
		s.VariableID = v
	case "value":
		s.Value = v
	default:
		return notApplicable(field)
	}
	return nil
}

func (s *Increment) put(obj Object) {
	putString(obj, "variableId", s.VariableID)
	putString(obj, "value", s.Value)
}

func (s *Chain) FunctionType() FunctionType { return FunctionChain }

func (s *Chain) set(field string, value any) error {
	if field != "chainFunctionIds" {
		return notApplicable(field)
	}
	ids, _ := asStrings(KindFunction, field, value)
	s.FunctionIDs = ids
	return nil
}

func (s *Chain) put(obj Object) {
	putStrings(obj, "chainFunctionIds", s.FunctionIDs)
}

func (s *UnknownFunction) FunctionType() FunctionType { return FunctionType(s.Type) }

func (s *UnknownFunction) set(field string, value any) error {
	return notApplicable(field)
}

func (s *UnknownFunction) put(obj Object) {}
