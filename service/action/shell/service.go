package shell

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/gxl/model/types"
	"github.com/viant/gxl/model/value"
	"github.com/viant/gxl/model/vars"
	"github.com/viant/gxl/runtime/execution"
)

// DataFileSuffix marks arg files merged into globals.
const DataFileSuffix = ".data.json"

// OutDir hosts gx_out_<var> capture files.
var OutDir = os.TempDir()

// Service runs shell commands
type Service struct {
	runner Runner
	fs     afs.Service
}

// Execute runs input.Cmd with the variable space exported as environment.
func (s *Service) Execute(ctx context.Context, input *Input, output *Output) error {
	input.Init()
	session := execution.SessionOf(ctx)
	space := execution.VarsOf(ctx)
	if input.ArgFile != "" {
		if err := s.mergeArgFile(ctx, session.Path(input.ArgFile), space); err != nil {
			return err
		}
	}
	display := execution.Display(ctx, "cmd", input.Cmd)
	env := space.Environ()
	if input.ArgFile != "" && !strings.HasSuffix(input.ArgFile, DataFileSuffix) {
		env["GXL_ARG_FILE"] = session.Path(input.ArgFile)
	}
	session.Logger.Debugw("shell", "cmd", display, "dir", session.WorkDir)
	stdout, code, err := s.runner.Run(ctx, input.Command(), env, session.WorkDir)
	if err != nil {
		if ctx.Err() != nil {
			return types.NewCancelledError(ctx.Err())
		}
		return types.NewIoError(fmt.Sprintf("failed to run %s", display), err)
	}
	output.Stdout = stdout
	output.Status = code
	session.Capture(ctx, stdout, input.Quiet)
	if !input.Expected(code) {
		return types.NewOsCmdError(display, code, session.WorkDir)
	}
	if input.OutVar != "" {
		trimmed := strings.TrimSpace(stdout)
		space.SetGlobal(input.OutVar, value.String(trimmed))
		if err := s.writeOut(ctx, input.OutVar, trimmed); err != nil {
			session.Logger.Warnw("failed to write out var file", "var", input.OutVar, "error", err)
		}
	}
	return nil
}

// OutFile returns the capture file of an out var.
func OutFile(name string) string {
	return filepath.Join(OutDir, "gx_out_"+name)
}

func (s *Service) writeOut(ctx context.Context, name, content string) error {
	location := OutFile(name)
	if ok, _ := s.fs.Exists(ctx, location); ok {
		if err := s.fs.Delete(ctx, location); err != nil {
			return err
		}
	}
	return s.fs.Upload(ctx, location, file.DefaultFileOsMode, strings.NewReader(content))
}

func (s *Service) mergeArgFile(ctx context.Context, location string, space *vars.Space) error {
	if !strings.HasSuffix(location, DataFileSuffix) {
		return nil
	}
	data, err := s.fs.DownloadWithURL(ctx, location)
	if err != nil {
		return types.NewIoError(fmt.Sprintf("failed to read %s", location), err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return types.NewArgsError("invalid arg file %s: %v", location, err)
	}
	for k, v := range decoded {
		space.SetGlobal(k, value.From(v))
	}
	return nil
}

// New creates a shell service
func New(opts ...Option) *Service {
	ret := &Service{fs: afs.New()}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.runner == nil {
		ret.runner = &LocalRunner{}
	}
	return ret
}
