package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Semantic rules shared by the validate package and editor surfaces. Records
// accept any well-typed value on assignment; these checks decide whether the
// value makes sense.

var (
	ErrRequired    = errors.New("required")
	ErrOutOfRange  = errors.New("out of range")
	ErrUnsupported = errors.New("unsupported value")
	ErrUnknownType = errors.New("unknown type")
)

const (
	OperandTypeVariable = "Variable"
	OperandTypeString   = "String"
	OperandTypeInteger  = "Integer"

	LogicalAnd = "AND"
	LogicalOr  = "OR"

	UnlockAnd = "and"
	UnlockOr  = "or"

	TransitionNext = "next"
	TransitionEnd  = "end"
)

var comparisonOperands = []string{"==", "!=", "<", ">", "<=", ">="}

var operandTypes = []string{OperandTypeVariable, OperandTypeString, OperandTypeInteger}

// Bounds are the geographic limits applied to locations.
type Bounds struct {
	MinRadius float64
	MaxRadius float64
}

var DefaultBounds = Bounds{MinRadius: 1, MaxRadius: 10000}

func CheckLatitude(v float64) error {
	if v < -90 || v > 90 {
		return fmt.Errorf("lat %v: %w", v, ErrOutOfRange)
	}
	return nil
}

func CheckLongitude(v float64) error {
	if v < -180 || v > 180 {
		return fmt.Errorf("long %v: %w", v, ErrOutOfRange)
	}
	return nil
}

func (b Bounds) CheckRadius(v float64) error {
	if v < b.MinRadius || v > b.MaxRadius {
		return fmt.Errorf("radius %v not in [%v, %v]: %w", v, b.MinRadius, b.MaxRadius, ErrOutOfRange)
	}
	return nil
}

func (l *Location) Validate(b Bounds) error {
	var errs []error
	if strings.TrimSpace(l.Name) == "" {
		errs = append(errs, fmt.Errorf("name: %w", ErrRequired))
	}
	if l.Lat == nil {
		errs = append(errs, fmt.Errorf("lat: %w", ErrRequired))
	} else if err := CheckLatitude(*l.Lat); err != nil {
		errs = append(errs, err)
	}
	if l.Long == nil {
		errs = append(errs, fmt.Errorf("long: %w", ErrRequired))
	} else if err := CheckLongitude(*l.Long); err != nil {
		errs = append(errs, err)
	}
	if l.Radius == nil {
		errs = append(errs, fmt.Errorf("radius: %w", ErrRequired))
	} else if err := b.CheckRadius(*l.Radius); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (v *Variable) Validate() error {
	if strings.TrimSpace(v.Name) == "" {
		return fmt.Errorf("name: %w", ErrRequired)
	}
	return nil
}

func (c *Condition) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, fmt.Errorf("name: %w", ErrRequired))
	}
	switch spec := c.Spec.(type) {
	case nil:
		errs = append(errs, fmt.Errorf("type: %w", ErrRequired))
	case *Comparison:
		errs = append(errs, requireString("variableA", spec.VariableA))
		errs = append(errs, requireString("variableB", spec.VariableB))
		errs = append(errs, oneOf("variableAType", spec.VariableAType, operandTypes))
		errs = append(errs, oneOf("variableBType", spec.VariableBType, operandTypes))
		errs = append(errs, oneOf("operand", spec.Operand, comparisonOperands))
	case *Check:
		errs = append(errs, requireString("variableId", spec.VariableID))
	case *LocationCheck:
		errs = append(errs, requireString("locationId", spec.LocationID))
	case *Logical:
		errs = append(errs, oneOf("operand", spec.Operand, []string{LogicalAnd, LogicalOr}))
		if len(spec.ConditionIDs) == 0 {
			errs = append(errs, fmt.Errorf("conditionIds: %w", ErrRequired))
		}
	case *TimePassed:
		errs = append(errs, requireString("variableId", spec.VariableID))
		if spec.Minutes == nil {
			errs = append(errs, fmt.Errorf("minutes: %w", ErrRequired))
		} else if *spec.Minutes < 0 {
			errs = append(errs, fmt.Errorf("minutes %v: %w", *spec.Minutes, ErrOutOfRange))
		}
	case *TimeRange:
		errs = append(errs, requireString("variableId", spec.VariableID))
		errs = append(errs, requireString("start", spec.Start()))
		errs = append(errs, requireString("end", spec.End()))
	case *UnknownCondition:
		errs = append(errs, fmt.Errorf("type %q: %w", spec.Type, ErrUnknownType))
	}
	return errors.Join(errs...)
}

func (f *Function) Validate() error {
	var errs []error
	if strings.TrimSpace(f.Name) == "" {
		errs = append(errs, fmt.Errorf("name: %w", ErrRequired))
	}
	switch spec := f.Spec.(type) {
	case nil:
		errs = append(errs, fmt.Errorf("type: %w", ErrRequired))
	case *SetValue:
		errs = append(errs, requireString("variableId", spec.VariableID))
	case *SetTimestamp:
		errs = append(errs, requireString("variableId", spec.VariableID))
	case *Increment:
		errs = append(errs, requireString("variableId", spec.VariableID))
		if _, err := strconv.ParseFloat(spec.Value, 64); err != nil {
			errs = append(errs, fmt.Errorf("value %q: %w", spec.Value, ErrUnsupported))
		}
	case *Chain:
		if len(spec.FunctionIDs) == 0 {
			errs = append(errs, fmt.Errorf("chainFunctionIds: %w", ErrRequired))
		}
		if f.ID != "" && containsString(spec.FunctionIDs, f.ID) {
			errs = append(errs, fmt.Errorf("chainFunctionIds contains itself: %w", ErrUnsupported))
		}
	case *UnknownFunction:
		errs = append(errs, fmt.Errorf("type %q: %w", spec.Type, ErrUnknownType))
	}
	return errors.Join(errs...)
}

func (p *Page) Validate() error {
	var errs []error
	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, fmt.Errorf("name: %w", ErrRequired))
	}
	errs = append(errs, optionalOneOf("pageTransition", p.PageTransition, []string{TransitionNext, TransitionEnd}))
	errs = append(errs, optionalOneOf("unlockedByPagesOperator", p.UnlockedByPagesOperator, []string{UnlockAnd, UnlockOr}))
	if p.ID != "" && containsString(p.UnlockedByPageIDs, p.ID) {
		errs = append(errs, fmt.Errorf("unlockedByPageIds contains itself: %w", ErrUnsupported))
	}
	return errors.Join(errs...)
}

func (c *Chapter) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, fmt.Errorf("name: %w", ErrRequired))
	}
	errs = append(errs, optionalOneOf("unlockedByPagesOperator", c.UnlockedByPagesOperator, []string{UnlockAnd, UnlockOr}))
	if c.ID != "" && containsString(c.LocksChapters, c.ID) {
		errs = append(errs, fmt.Errorf("locksChapters contains itself: %w", ErrUnsupported))
	}
	return errors.Join(errs...)
}

func requireString(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s: %w", field, ErrRequired)
	}
	return nil
}

func oneOf(field, value string, allowed []string) error {
	if value == "" {
		return fmt.Errorf("%s: %w", field, ErrRequired)
	}
	return optionalOneOf(field, value, allowed)
}

func optionalOneOf(field, value string, allowed []string) error {
	if value == "" || containsString(allowed, value) {
		return nil
	}
	return fmt.Errorf("%s %q: %w", field, value, ErrUnsupported)
}
