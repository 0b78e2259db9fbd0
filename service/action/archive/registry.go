package archive

import (
	"context"
	"reflect"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/gxl/model/types"
)

const (
	PackName   = "tar"
	UnpackName = "untar"
)

// Tar packs a file or directory into a tarball.
type Tar struct{ service }

func (s *Tar) Name() string { return PackName }

func (s *Tar) DefaultMethod() string { return "pack" }

func (s *Tar) Methods() types.Signatures {
	return []types.Signature{
		{
			Name:        "pack",
			Description: "Packs src into file; .tar.gz/.tgz, .tar.bz2, .tar.xz and .tar are supported.",
			Input:       reflect.TypeOf(&PackInput{}),
			Output:      reflect.TypeOf(&Output{}),
			Default:     "src",
			Effect:      true,
		},
	}
}

func (s *Tar) Method(name string) (types.Executable, error) {
	switch strings.ToLower(name) {
	case "pack":
		return func(ctx context.Context, in, out interface{}) error {
			input, ok := in.(*PackInput)
			if !ok {
				return types.NewInvalidInputError(in)
			}
			output, ok := out.(*Output)
			if !ok {
				return types.NewInvalidOutputError(out)
			}
			return s.pack(ctx, input, output)
		}, nil
	default:
		return nil, types.NewMethodNotFoundError(name)
	}
}

// Untar extracts a tarball.
type Untar struct{ service }

func (s *Untar) Name() string { return UnpackName }

func (s *Untar) DefaultMethod() string { return "unpack" }

func (s *Untar) Methods() types.Signatures {
	return []types.Signature{
		{
			Name:        "unpack",
			Description: "Extracts file into dst, defaulting to the working directory.",
			Input:       reflect.TypeOf(&UnpackInput{}),
			Output:      reflect.TypeOf(&Output{}),
			Default:     "file",
			Effect:      true,
		},
	}
}

func (s *Untar) Method(name string) (types.Executable, error) {
	switch strings.ToLower(name) {
	case "unpack":
		return func(ctx context.Context, in, out interface{}) error {
			input, ok := in.(*UnpackInput)
			if !ok {
				return types.NewInvalidInputError(in)
			}
			output, ok := out.(*Output)
			if !ok {
				return types.NewInvalidOutputError(out)
			}
			return s.unpack(ctx, input, output)
		}, nil
	default:
		return nil, types.NewMethodNotFoundError(name)
	}
}

// New returns the tar and untar services sharing fs.
func New(fs afs.Service) (*Tar, *Untar) {
	if fs == nil {
		fs = afs.New()
	}
	return &Tar{service{fs: fs}}, &Untar{service{fs: fs}}
}
