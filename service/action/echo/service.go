package echo

import (
	"context"
	"reflect"
	"strings"

	"github.com/viant/gxl/model/types"
	"github.com/viant/gxl/runtime/execution"
)

const name = "echo"

// Service prints substituted text
type Service struct{}

type Input struct {
	Text string `json:"text,omitempty"`
}

type Output struct {
	Text string `json:"text,omitempty"`
}

// New creates an echo service
func New() *Service {
	return &Service{}
}

// Name returns the service name
func (s *Service) Name() string {
	return name
}

func (s *Service) DefaultMethod() string {
	return "print"
}

// Methods returns the service methods
func (s *Service) Methods() types.Signatures {
	return []types.Signature{
		{
			Name:        "print",
			Description: "Prints text to standard output; secrets are masked.",
			Input:       reflect.TypeOf(&Input{}),
			Output:      reflect.TypeOf(&Output{}),
			Default:     "text",
		},
	}
}

// Method returns the specified method
func (s *Service) Method(name string) (types.Executable, error) {
	switch strings.ToLower(name) {
	case "print":
		return s.print, nil
	default:
		return nil, types.NewMethodNotFoundError(name)
	}
}

// print writes the masked rendering of text followed by a newline.
func (s *Service) print(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*Input)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*Output)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	output.Text = execution.Display(ctx, "text", input.Text)
	execution.SessionOf(ctx).Print(ctx, output.Text+"\n")
	return nil
}
