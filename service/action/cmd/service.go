// Package cmd implements the cmd action dispatching to another action by alias, e.g. cmd("ver.update").
package cmd

import (
	"context"
	"reflect"
	"strings"

	"github.com/viant/gxl/extension"
	"github.com/viant/gxl/model/types"
	"github.com/viant/gxl/model/value"
	"github.com/viant/gxl/runtime/execution"
)

const name = "cmd"

// Service dispatches aliases through the action registry
type Service struct {
	actions *extension.Actions
}

type Input struct {
	Alias string      `json:"alias,omitempty" description:"service.method to call"`
	Args  interface{} `json:"args,omitempty" description:"object of named arguments, or a value for the default argument"`
}

type Output struct {
	Alias  string      `json:"alias,omitempty"`
	Output interface{} `json:"output,omitempty"`
}

// New creates a cmd service resolving aliases with actions
func New(actions *extension.Actions) *Service {
	return &Service{actions: actions}
}

func (s *Service) Name() string { return name }

func (s *Service) DefaultMethod() string { return "call" }

// DispatchArg names the argument holding the alias.
func (s *Service) DispatchArg() string { return "alias" }

func (s *Service) Methods() types.Signatures {
	return []types.Signature{
		{
			Name:        "call",
			Description: "Calls the action named by alias with args.",
			Input:       reflect.TypeOf(&Input{}),
			Output:      reflect.TypeOf(&Output{}),
			Default:     "alias",
		},
	}
}

func (s *Service) Method(name string) (types.Executable, error) {
	switch strings.ToLower(name) {
	case "call":
		return s.call, nil
	default:
		return nil, types.NewMethodNotFoundError(name)
	}
}

func (s *Service) call(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*Input)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*Output)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	return s.Call(ctx, input, output)
}

// Call resolves input.Alias and runs it with input.Args bound to the target input.
func (s *Service) Call(ctx context.Context, input *Input, output *Output) error {
	if input.Alias == "" {
		return types.NewArgsError("cmd requires alias")
	}
	if strings.EqualFold(strings.SplitN(input.Alias, ".", 2)[0], name) {
		return types.NewArgsError("cmd cannot dispatch to itself")
	}
	method, err := s.actions.ResolveName(input.Alias, "")
	if err != nil {
		return err
	}
	session := execution.SessionOf(ctx)
	if session != nil && session.DryRun && method.Signature.Effect {
		return types.NewDryRunNotSupportedError(method.Name())
	}
	args, err := s.args(ctx, method, input.Args)
	if err != nil {
		return err
	}
	targetIn, targetOut, err := method.Bind(args)
	if err != nil {
		return err
	}
	if execCtx := execution.ContextValue[*execution.Context](ctx); execCtx != nil {
		ctx = execCtx.WithArgs(args).WithSource(s.source(ctx, method))
	}
	if err = method.Executable(ctx, targetIn, targetOut); err != nil {
		return err
	}
	output.Alias = method.Name()
	output.Output = targetOut
	return nil
}

// source maps the unexpanded args value onto the target method parameters.
func (s *Service) source(ctx context.Context, method *extension.Method) value.Object {
	raw, ok := execution.Source(ctx, "args")
	if !ok {
		return nil
	}
	switch raw.Kind {
	case value.KindObject:
		return raw.Object
	case value.KindNull:
		return nil
	}
	if method.Signature.Default == "" {
		return nil
	}
	return value.Object{value.Key(method.Signature.Default): raw}
}

// args keeps the secret flags of the originally expanded args value when available.
func (s *Service) args(ctx context.Context, method *extension.Method, raw interface{}) (value.Object, error) {
	v := value.From(raw)
	if callArgs := execution.ContextValue[value.Object](ctx); callArgs != nil {
		if original, ok := callArgs.Get("args"); ok {
			v = original
		}
	}
	switch v.Kind {
	case value.KindNull:
		return value.Object{}, nil
	case value.KindObject:
		return v.Object.Clone(), nil
	}
	if method.Signature.Default == "" {
		return nil, types.NewArgsError("%s has no default argument", method.Name())
	}
	return value.Object{value.Key(method.Signature.Default): v}, nil
}
