package input

import (
	"context"
	"reflect"
	"strings"

	"github.com/viant/gxl/model/types"
)

func (s *Service) Name() string { return Name }

func (s *Service) Methods() types.Signatures {
	return []types.Signature{
		{
			Name:        "file",
			Description: "Reads a file into a global; json, yaml, hcl and plist files are parsed.",
			Input:       reflect.TypeOf(&FileInput{}),
			Output:      reflect.TypeOf(&Output{}),
			Default:     "path",
		},
		{
			Name:        "stdin",
			Description: "Reads a line from standard input into a global.",
			Input:       reflect.TypeOf(&StdinInput{}),
			Output:      reflect.TypeOf(&Output{}),
			Default:     "var",
		},
		{
			Name:        "cmd",
			Description: "Runs a command and stores its trimmed stdout in a global.",
			Input:       reflect.TypeOf(&CmdInput{}),
			Output:      reflect.TypeOf(&Output{}),
			Default:     "cmd",
			Effect:      true,
		},
	}
}

// Method returns method by Name
func (s *Service) Method(name string) (types.Executable, error) {
	switch strings.ToLower(name) {
	case "file":
		return func(ctx context.Context, in, out interface{}) error {
			input, ok := in.(*FileInput)
			if !ok {
				return types.NewInvalidInputError(in)
			}
			output, ok := out.(*Output)
			if !ok {
				return types.NewInvalidOutputError(out)
			}
			return s.file(ctx, input, output)
		}, nil
	case "stdin":
		return func(ctx context.Context, in, out interface{}) error {
			input, ok := in.(*StdinInput)
			if !ok {
				return types.NewInvalidInputError(in)
			}
			output, ok := out.(*Output)
			if !ok {
				return types.NewInvalidOutputError(out)
			}
			return s.stdin(ctx, input, output)
		}, nil
	case "cmd":
		return func(ctx context.Context, in, out interface{}) error {
			input, ok := in.(*CmdInput)
			if !ok {
				return types.NewInvalidInputError(in)
			}
			output, ok := out.(*Output)
			if !ok {
				return types.NewInvalidOutputError(out)
			}
			return s.cmd(ctx, input, output)
		}, nil
	default:
		return nil, types.NewMethodNotFoundError(name)
	}
}
