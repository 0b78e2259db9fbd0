package download

import (
	"context"
	"reflect"
	"strings"

	"github.com/viant/gxl/model/types"
)

const name = "download"

// Name returns the service name
func (s *Service) Name() string {
	return name
}

func (s *Service) DefaultMethod() string {
	return "get"
}

// Methods returns the service methods
func (s *Service) Methods() types.Signatures {
	return []types.Signature{
		{
			Name:        "get",
			Description: "Downloads url into dst with up to three attempts.",
			Input:       reflect.TypeOf(&Input{}),
			Output:      reflect.TypeOf(&Output{}),
			Default:     "url",
			Effect:      true,
		},
	}
}

// Method returns the specified method
func (s *Service) Method(name string) (types.Executable, error) {
	switch strings.ToLower(name) {
	case "get":
		return s.download, nil
	default:
		return nil, types.NewMethodNotFoundError(name)
	}
}

func (s *Service) download(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*Input)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*Output)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	return s.Download(ctx, input, output)
}
