package model

import (
	"errors"
	"fmt"
	"regexp"
)

type ConditionType string

const (
	ConditionComparison ConditionType = "comparison"
	ConditionCheck      ConditionType = "check"
	ConditionLocation   ConditionType = "location"
	ConditionLogical    ConditionType = "logical"
	ConditionTimePassed ConditionType = "timepassed"
	ConditionTimeRange  ConditionType = "timerange"

	// TypeInvalid is what an unrecognized condition or function type
	// serializes as.
	TypeInvalid = "invalid"
)

var ErrInvalidTime = errors.New("time must be H:MM or HH:MM")

var timePattern = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):[0-5][0-9]$`)

// ValidTime reports whether s is a clock time in H:MM or HH:MM form.
func ValidTime(s string) bool {
	return timePattern.MatchString(s)
}

// conditionFields declares the wire type of every type-specific condition
// field, whatever the condition's own type.
var conditionFields = map[string]string{
	"variableA":     wantString,
	"variableB":     wantString,
	"variableAType": wantString,
	"variableBType": wantString,
	"operand":       wantString,
	"variableId":    wantString,
	"locationId":    wantString,
	"conditionIds":  wantStrings,
	"minutes":       wantNumber,
	"start":         wantString,
	"end":           wantString,
}

// ConditionSpec is the type-specific part of a Condition. The set of
// implementations is closed.
type ConditionSpec interface {
	ConditionType() ConditionType
	set(field string, value any) error
	put(obj Object)
}

type Condition struct {
	ID   string
	Name string
	Spec ConditionSpec
}

type Comparison struct {
	VariableA     string
	VariableB     string
	VariableAType string
	VariableBType string
	Operand       string
}

type Check struct {
	VariableID string
}

type LocationCheck struct {
	LocationID string
}

type Logical struct {
	Operand      string
	ConditionIDs []string
}

type TimePassed struct {
	VariableID string
	Minutes    *float64
}

// TimeRange keeps start and end unexported so every assignment goes through
// the time format check.
type TimeRange struct {
	VariableID string
	start      string
	end        string
}

// UnknownCondition holds a condition whose type string is not recognized.
type UnknownCondition struct {
	Type string
}

func NewCondition(seed Object) (*Condition, error) {
	c := &Condition{}
	for _, key := range []string{"id", "name", "type"} {
		if err := c.Set(key, seed[key]); err != nil {
			return nil, err
		}
	}
	for _, key := range sortedKeys(seed) {
		if key == "id" || key == "name" || key == "type" {
			continue
		}
		if err := c.Set(key, seed[key]); err != nil && !skippable(err) {
			return nil, err
		}
	}
	return c, nil
}

func NewTimeRange(variableID, start, end string) (*TimeRange, error) {
	t := &TimeRange{VariableID: variableID}
	if err := t.SetStart(start); err != nil {
		return nil, err
	}
	if err := t.SetEnd(end); err != nil {
		return nil, err
	}
	return t, nil
}

func newConditionSpec(t ConditionType) ConditionSpec {
	switch t {
	case ConditionComparison:
		return &Comparison{}
	case ConditionCheck:
		return &Check{}
	case ConditionLocation:
		return &LocationCheck{}
	case ConditionLogical:
		return &Logical{}
	case ConditionTimePassed:
		return &TimePassed{}
	case ConditionTimeRange:
		return &TimeRange{}
	default:
		return &UnknownCondition{Type: string(t)}
	}
}

func (c *Condition) EntityID() string { return c.ID }

func (c *Condition) AssignID(id string) {
	if c.ID == "" {
		c.ID = id
	}
}

// Type returns the condition type, or "" when no type is set.
func (c *Condition) Type() ConditionType {
	if c.Spec == nil {
		return ""
	}
	return c.Spec.ConditionType()
}

// SetType replaces the variant with an empty one of type t. An empty t
// clears the variant.
func (c *Condition) SetType(t ConditionType) {
	if t == "" {
		c.Spec = nil
		return
	}
	if c.Spec != nil && c.Spec.ConditionType() == t {
		return
	}
	c.Spec = newConditionSpec(t)
}

func (c *Condition) Set(field string, value any) error {
	switch field {
	case "id":
		return assignID(KindCondition, &c.ID, value)
	case "name":
		name, err := asString(KindCondition, field, value)
		if err != nil {
			return err
		}
		c.Name = name
		return nil
	case "type":
		t, err := asString(KindCondition, field, value)
		if err != nil {
			return err
		}
		c.SetType(ConditionType(t))
		return nil
	}

	want, ok := conditionFields[field]
	if !ok {
		return unknownField(KindCondition, field)
	}
	if err := checkType(KindCondition, field, want, value); err != nil {
		return err
	}
	if c.Spec == nil {
		return fmt.Errorf("%s.%s: %w", KindCondition, field, ErrFieldNotApplicable)
	}
	return c.Spec.set(field, value)
}

// Object emits only the fields relevant to the condition's type. A missing or
// unrecognized type yields {id, name, type: "invalid"}.
func (c *Condition) Object() Object {
	obj := Object{}
	putString(obj, "id", c.ID)
	putString(obj, "name", c.Name)
	switch c.Spec.(type) {
	case nil, *UnknownCondition:
		obj["type"] = TypeInvalid
		return obj
	}
	obj["type"] = string(c.Spec.ConditionType())
	c.Spec.put(obj)
	return obj
}

func (c *Condition) MarshalJSON() ([]byte, error) {
	return marshalObject(c.Object())
}

func (c *Condition) UnmarshalJSON(data []byte) error {
	obj, err := decodeObject(data)
	if err != nil {
		return err
	}
	decoded, err := NewCondition(obj)
	if err != nil {
		return err
	}
	*c = *decoded
	return nil
}

// ReferencesVariable reports whether any of variableA, variableB or
// variableId is set and equal to id.
func (c *Condition) ReferencesVariable(id string) bool {
	if id == "" {
		return false
	}
	switch spec := c.Spec.(type) {
	case *Comparison:
		return (spec.VariableA != "" && spec.VariableA == id) ||
			(spec.VariableB != "" && spec.VariableB == id)
	case *Check:
		return spec.VariableID == id
	case *TimePassed:
		return spec.VariableID == id
	case *TimeRange:
		return spec.VariableID == id
	}
	return false
}

// VariableIDs lists the variables a condition reads. Comparison operands are
// only included when their declared type is "Variable".
func (c *Condition) VariableIDs() []string {
	switch spec := c.Spec.(type) {
	case *Comparison:
		var ids []string
		if spec.VariableA != "" && spec.VariableAType == OperandTypeVariable {
			ids = append(ids, spec.VariableA)
		}
		if spec.VariableB != "" && spec.VariableBType == OperandTypeVariable {
			ids = append(ids, spec.VariableB)
		}
		return ids
	case *Check:
		return nonEmpty(spec.VariableID)
	case *TimePassed:
		return nonEmpty(spec.VariableID)
	case *TimeRange:
		return nonEmpty(spec.VariableID)
	}
	return nil
}

func (c *Condition) LocationID() string {
	if spec, ok := c.Spec.(*LocationCheck); ok {
		return spec.LocationID
	}
	return ""
}

// ConditionIDs returns the children of a logical condition.
func (c *Condition) ConditionIDs() []string {
	if spec, ok := c.Spec.(*Logical); ok {
		return spec.ConditionIDs
	}
	return nil
}

func (s *Comparison) ConditionType() ConditionType { return ConditionComparison }

func (s *Comparison) set(field string, value any) error {
	v, _ := value.(string)
	switch field {
	case "variableA":
		s.VariableA = v
	case "variableB":
		s.VariableB = v
	case "variableAType":
		s.VariableAType = v
	case "variableBType":
		s.VariableBType = v
	case "operand":
		s.Operand = v
	default:
		return notApplicable(field)
	}
	return nil
}

func (s *Comparison) put(obj Object) {
	putString(obj, "variableA", s.VariableA)
	putString(obj, "variableB", s.VariableB)
	putString(obj, "variableAType", s.VariableAType)
	putString(obj, "variableBType", s.VariableBType)
	putString(obj, "operand", s.Operand)
}

func (s *Check) ConditionType() ConditionType { return ConditionCheck }

func (s *Check) set(field string, value any) error {
	if field != "variableId" {
		return notApplicable(field)
	}
	s.VariableID, _ = value.(string)
	return nil
}

func (s *Check) put(obj Object) {
	putString(obj, "variableId", s.VariableID)
}

func (s *LocationCheck) ConditionType() ConditionType { return ConditionLocation }

func (s *LocationCheck) set(field string, value any) error {
	if field != "locationId" {
		return notApplicable(field)
	}
	s.LocationID, _ = value.(string)
	return nil
}

func (s *LocationCheck) put(obj Object) {
	putString(obj, "locationId", s.LocationID)
}

func (s *Logical) ConditionType() ConditionType { return ConditionLogical }

func (s *Logical) set(field string, value any) error {
	switch field {
	case "operand":
		s.Operand, _ = value.(string)
	case "conditionIds":
		ids, _ := asStrings(KindCondition, field, value)
		s.ConditionIDs = ids
	default:
		return notApplicable(field)
	}
	return nil
}

func (s *Logical) put(obj Object) {
	putString(obj, "operand", s.Operand)
	putStrings(obj, "conditionIds", s.ConditionIDs)
}

func (s *TimePassed) ConditionType() ConditionType { return ConditionTimePassed }

func (s *TimePassed) set(field string, value any) error {
	switch field {
	case "variableId":
		s.VariableID, _ = value.(string)
	case "minutes":
		return setNumber(&s.Minutes, KindCondition, field, value)
	default:
		return notApplicable(field)
	}
	return nil
}

func (s *TimePassed) put(obj Object) {
	putString(obj, "variableId", s.VariableID)
	putNumber(obj, "minutes", s.Minutes)
}

func (s *TimeRange) ConditionType() ConditionType { return ConditionTimeRange }

func (s *TimeRange) Start() string { return s.start }

func (s *TimeRange) End() string { return s.end }

func (s *TimeRange) SetStart(v string) error {
	if err := checkTime("start", v); err != nil {
		return err
	}
	s.start = v
	return nil
}

func (s *TimeRange) SetEnd(v string) error {
	if err := checkTime("end", v); err != nil {
		return err
	}
	s.end = v
	return nil
}

func (s *TimeRange) set(field string, value any) error {
	v, _ := value.(string)
	switch field {
	case "variableId":
		s.VariableID = v
	case "start":
		return s.SetStart(v)
	case "end":
		return s.SetEnd(v)
	default:
		return notApplicable(field)
	}
	return nil
}

func (s *TimeRange) put(obj Object) {
	putString(obj, "variableId", s.VariableID)
	putString(obj, "start", s.start)
	putString(obj, "end", s.end)
}

func (s *UnknownCondition) ConditionType() ConditionType { return ConditionType(s.Type) }

func (s *UnknownCondition) set(field string, value any) error {
	return notApplicable(field)
}

func (s *UnknownCondition) put(obj Object) {}

func checkTime(field, v string) error {
	if v == "" || ValidTime(v) {
		return nil
	}
	return fmt.Errorf("%s.%s %q: %w", KindCondition, field, v, ErrInvalidTime)
}

func checkType(kind, field, want string, value any) error {
	var err error
	switch want {
	case wantString:
		_, err = asString(kind, field, value)
	case wantNumber:
		_, err = asNumber(kind, field, value)
	case wantBoolean:
		_, err = asBool(kind, field, value)
	case wantStrings:
		_, err = asStrings(kind, field, value)
	}
	return err
}

func notApplicable(field string) error {
	return fmt.Errorf("%s: %w", field, ErrFieldNotApplicable)
}

func nonEmpty(id string) []string {
	if id == "" {
		return nil
	}
	return []string{id}
}
