// Package ver implements the ver action that bumps a version file.
package ver

import (
	"context"
	"reflect"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/gxl/model/types"
	"github.com/viant/gxl/model/value"
	"github.com/viant/gxl/runtime/execution"
	"github.com/viant/gxl/service/transaction"
)

const (
	name = "ver"
	// DefaultVar receives the new version.
	DefaultVar = "VERSION"
	// DefaultFile is the version file looked up in the working directory.
	DefaultFile = "version.txt"
)

// Service maintains version files
type Service struct {
	fs afs.Service
}

type Input struct {
	File string `json:"file,omitempty" description:"version file"`
	Inc  string `json:"inc,omitempty" description:"main, feature, bugfix or build"`
	Var  string `json:"var,omitempty" description:"global receiving the version"`
}

type Output struct {
	Previous string `json:"previous,omitempty"`
	Version  string `json:"version,omitempty"`
}

func (i *Input) Init() {
	if i.File == "" {
		i.File = DefaultFile
	}
	if i.Inc == "" {
		i.Inc = Build
	}
	if i.Var == "" {
		i.Var = DefaultVar
	}
}

// Update increments the version stored in input.File and exports it.
func (s *Service) Update(ctx context.Context, input *Input, output *Output) error {
	input.Init()
	session := execution.SessionOf(ctx)
	location := session.Path(input.File)
	current, err := s.load(ctx, location)
	if err != nil {
		return err
	}
	next, err := current.Inc(input.Inc)
	if err != nil {
		return types.NewArgsError("%v", err)
	}
	hold, err := transaction.Snapshot(ctx, s.fs, location)
	if err != nil {
		return types.NewIoError("failed to snapshot "+location, err)
	}
	if err = s.fs.Upload(ctx, location, file.DefaultFileOsMode, strings.NewReader(next.String()+"\n")); err != nil {
		return types.NewIoError("failed to write "+location, err)
	}
	session.Hold(hold)
	execution.VarsOf(ctx).SetGlobal(input.Var, value.String(next.String()))
	output.Previous, output.Version = current.String(), next.String()
	session.Logger.Infow("version updated", "file", location, "from", output.Previous, "to", output.Version)
	return nil
}

// Get exports the current version without changing it.
func (s *Service) Get(ctx context.Context, input *Input, output *Output) error {
	input.Init()
	current, err := s.load(ctx, execution.SessionOf(ctx).Path(input.File))
	if err != nil {
		return err
	}
	execution.VarsOf(ctx).SetGlobal(input.Var, value.String(current.String()))
	output.Version = current.String()
	return nil
}

func (s *Service) load(ctx context.Context, location string) (Version, error) {
	exists, err := s.fs.Exists(ctx, location)
	if err != nil {
		return Version{}, types.NewIoError("failed to check "+location, err)
	}
	if !exists {
		return Version{}, nil
	}
	data, err := s.fs.DownloadWithURL(ctx, location)
	if err != nil {
		return Version{}, types.NewIoError("failed to read "+location, err)
	}
	ret, err := Parse(string(data))
	if err != nil {
		return Version{}, types.NewArgsError("%s: %v", location, err)
	}
	return ret, nil
}

func (s *Service) Name() string {
	return name
}

func (s *Service) DefaultMethod() string {
	return "update"
}

func (s *Service) Methods() types.Signatures {
	return []types.Signature{
		{
			Name:        "update",
			Description: "Increments the version file and exports the new version.",
			Input:       reflect.TypeOf(&Input{}),
			Output:      reflect.TypeOf(&Output{}),
			Default:     "file",
			Effect:      true,
		},
		{
			Name:        "get",
			Description: "Exports the current version.",
			Input:       reflect.TypeOf(&Input{}),
			Output:      reflect.TypeOf(&Output{}),
			Default:     "file",
		},
	}
}

// Method returns method by Name
func (s *Service) Method(name string) (types.Executable, error) {
	var handler func(ctx context.Context, input *Input, output *Output) error
	switch strings.ToLower(name) {
	case "update":
		handler = s.Update
	case "get":
		handler = s.Get
	default:
		return nil, types.NewMethodNotFoundError(name)
	}
	return func(ctx context.Context, in, out interface{}) error {
		input, ok := in.(*Input)
		if !ok {
			return types.NewInvalidInputError(in)
		}
		output, ok := out.(*Output)
		if !ok {
			return types.NewInvalidOutputError(out)
		}
		return handler(ctx, input, output)
	}, nil
}

// New creates a ver service
func New(fs afs.Service) *Service {
	if fs == nil {
		fs = afs.New()
	}
	return &Service{fs: fs}
}
