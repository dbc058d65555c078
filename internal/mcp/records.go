package mcp

import (
	"context"
	"errors"
	"fmt"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"waymark/internal/graph"
	"waymark/internal/model"
)

type CheckRecordInput struct {
	Kind   string         `json:"kind" jsonschema:"page, chapter, location, variable, condition or function"`
	Record map[string]any `json:"record" jsonschema:"the record as the editor would save it"`
}

type CheckRecordOutput struct {
	Valid    bool           `json:"valid"`
	Problems []string       `json:"problems"`
	Record   map[string]any `json:"record,omitempty"`
}

type record interface {
	Object() model.Object
}

// handleCheckRecord builds a record the way a save would and runs the
// semantic rules on it. Type errors and rule violations are problems, not
// tool errors.
func (s *Server) handleCheckRecord(ctx context.Context, req *sdk.CallToolRequest, input CheckRecordInput) (*sdk.CallToolResult, CheckRecordOutput, error) {
	rec, check, err := s.buildRecord(input.Kind, input.Record)
	if errors.Is(err, graph.ErrUnknownKind) {
		return nil, CheckRecordOutput{}, err
	}
	if err != nil {
		return nil, CheckRecordOutput{Problems: []string{err.Error()}}, nil
	}

	output := CheckRecordOutput{Problems: []string{}, Record: rec.Object()}
	if err := check(); err != nil {
		errs := []error{err}
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			errs = joined.Unwrap()
		}
		for _, e := range errs {
			output.Problems = append(output.Problems, e.Error())
		}
	}
	output.Valid = len(output.Problems) == 0
	return nil, output, nil
}

func (s *Server) buildRecord(kind string, seed model.Object) (record, func() error, error) {
	switch kind {
	case model.KindPage:
		p, err := model.NewPage(seed)
		if err != nil {
			return nil, nil, err
		}
		return p, p.Validate, nil
	case model.KindChapter:
		c, err := model.NewChapter(seed)
		if err != nil {
			return nil, nil, err
		}
		return c, c.Validate, nil
	case model.KindLocation:
		l, err := model.NewLocation(seed)
		if err != nil {
			return nil, nil, err
		}
		return l, func() error { return l.Validate(s.bounds) }, nil
	case model.KindVariable:
		v, err := model.NewVariable(seed)
		if err != nil {
			return nil, nil, err
		}
		return v, v.Validate, nil
	case model.KindCondition:
		c, err := model.NewCondition(seed)
		if err != nil {
			return nil, nil, err
		}
		return c, c.Validate, nil
	case model.KindFunction:
		f, err := model.NewFunction(seed)
		if err != nil {
			return nil, nil, err
		}
		return f, f.Validate, nil
	}
	return nil, nil, fmt.Errorf("%q: %w", kind, graph.ErrUnknownKind)
}
