package assert

import (
	"context"
	"reflect"
	"strings"

	"github.com/viant/gxl/model/ast"
	"github.com/viant/gxl/model/types"
	"github.com/viant/gxl/model/value"
	"github.com/viant/gxl/runtime/evaluator"
	"github.com/viant/gxl/runtime/execution"
	"github.com/viant/gxl/service/dao/module/parser"
)

const name = "assert"

// Service checks conditions
type Service struct{}

// Input holds either a condition or a value compared against expect.
type Input struct {
	Cond   interface{} `json:"cond,omitempty"`
	Value  interface{} `json:"value,omitempty"`
	Expect interface{} `json:"expect,omitempty"`
	Msg    string      `json:"msg,omitempty"`
}

type Output struct {
	Passed bool `json:"passed"`
}

// New creates an assert service
func New() *Service {
	return &Service{}
}

// Name returns the service name
func (s *Service) Name() string {
	return name
}

func (s *Service) DefaultMethod() string {
	return "check"
}

// Methods returns the service methods
func (s *Service) Methods() types.Signatures {
	return []types.Signature{
		{
			Name:        "check",
			Description: "Fails the flow with msg when the condition does not hold.",
			Input:       reflect.TypeOf(&Input{}),
			Output:      reflect.TypeOf(&Output{}),
			Default:     "cond",
		},
	}
}

// Method returns the specified method
func (s *Service) Method(name string) (types.Executable, error) {
	switch strings.ToLower(name) {
	case "check":
		return s.check, nil
	default:
		return nil, types.NewMethodNotFoundError(name)
	}
}

func (s *Service) check(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*Input)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*Output)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	passed, err := s.evaluate(ctx, input)
	if err != nil {
		return err
	}
	output.Passed = passed
	if passed {
		return nil
	}
	msg := execution.Display(ctx, "msg", input.Msg)
	if msg == "" {
		msg = "assertion failed: " + s.describe(ctx, input)
	}
	return types.NewCheckError(msg)
}

func (s *Service) evaluate(ctx context.Context, input *Input) (bool, error) {
	if input.Cond == nil {
		if input.Value == nil && input.Expect == nil {
			return false, types.NewArgsError("assert requires cond or value with expect")
		}
		return evaluator.Compare(ast.OpEq, value.From(input.Value), value.From(input.Expect))
	}
	text, ok := s.condition(ctx, input)
	if !ok {
		return value.From(input.Cond).Truthy(), nil
	}
	cond, err := parser.ParseCondition("assert", text)
	if err != nil {
		return false, types.NewArgsError("assert: invalid condition: %v", err)
	}
	return evaluator.Evaluate(cond, execution.VarsOf(ctx))
}

// condition returns the condition text as written in the flow, before ${} expansion.
func (s *Service) condition(ctx context.Context, input *Input) (string, bool) {
	if source, ok := execution.Source(ctx, "cond"); ok {
		if source.Kind != value.KindString {
			return "", false
		}
		return source.Str, true
	}
	text, ok := input.Cond.(string)
	return text, ok
}

func (s *Service) describe(ctx context.Context, input *Input) string {
	if input.Cond != nil {
		return execution.Display(ctx, "cond", value.From(input.Cond).Display())
	}
	return execution.Display(ctx, "value", value.From(input.Value).Display()) + " != " +
		execution.Display(ctx, "expect", value.From(input.Expect).Display())
}
