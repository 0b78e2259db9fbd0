package tpl

import (
	"context"
	"reflect"
	"strings"

	"github.com/viant/gxl/model/types"
)

const Name = "tpl"

func (s *Service) Name() string {
	return Name
}

func (s *Service) DefaultMethod() string {
	return "render"
}

func (s *Service) Methods() types.Signatures {
	return []types.Signature{
		{
			Name:        "render",
			Description: "Renders a handlebars template against data or the variable space.",
			Input:       reflect.TypeOf(&Input{}),
			Output:      reflect.TypeOf(&Output{}),
			Default:     "src",
			Effect:      true,
		},
	}
}

func (s *Service) render(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*Input)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*Output)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	return s.Render(ctx, input, output)
}

// Method returns method by Name
func (s *Service) Method(name string) (types.Executable, error) {
	switch strings.ToLower(name) {
	case "render":
		return s.render, nil
	default:
		return nil, types.NewMethodNotFoundError(name)
	}
}
