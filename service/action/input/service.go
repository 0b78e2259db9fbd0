// Package input implements the read action: read.file, read.stdin and read.cmd
// acquire a string (or a parsed document) and store it in a global variable.
package input

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/viant/afs"
	"github.com/viant/gxl/model/types"
	"github.com/viant/gxl/model/value"
	"github.com/viant/gxl/runtime/execution"
	"github.com/viant/gxl/service/action/shell"
)

// Name of the service as used by workflows.
const Name = "read"

// Service reads values from files, standard input or command output.
type Service struct {
	fs     afs.Service
	runner shell.Runner
	// prompt asks on an interactive terminal; tests and pipes fall back to line reads.
	prompt func(title string, secret bool) (string, error)
}

type FileInput struct {
	Path string `json:"path,omitempty" description:"file location"`
	Var  string `json:"var,omitempty" description:"global receiving the content"`
	Name string `json:"name,omitempty" description:"key extracted from a parsed document"`
	Raw  bool   `json:"raw,omitempty" description:"keep structured files as text"`
}

type StdinInput struct {
	Var    string `json:"var,omitempty"`
	Prompt string `json:"prompt,omitempty"`
	Secret bool   `json:"secret,omitempty"`
}

type CmdInput struct {
	Cmd string `json:"cmd,omitempty"`
	Var string `json:"var,omitempty"`
}

type Output struct {
	Value interface{} `json:"value,omitempty"`
}

func (s *Service) file(ctx context.Context, input *FileInput, output *Output) error {
	if input.Path == "" || input.Var == "" {
		return types.NewArgsError("read.file requires path and var")
	}
	session := execution.SessionOf(ctx)
	location := session.Path(input.Path)
	data, err := s.fs.DownloadWithURL(ctx, location)
	if err != nil {
		return types.NewIoError(fmt.Sprintf("failed to read %s", location), err)
	}
	result := value.String(string(data))
	if !input.Raw {
		if decoder := decoderFor(location); decoder != nil {
			if result, err = decoder(location, data); err != nil {
				return types.NewArgsError("failed to parse %s: %v", location, err)
			}
		}
	}
	if input.Name != "" {
		field, ok := result.Field(input.Name)
		if !ok {
			return types.NewNoValError(input.Path + "." + input.Name)
		}
		result = field
	}
	execution.VarsOf(ctx).SetGlobal(input.Var, result)
	output.Value = result.Interface()
	return nil
}

func (s *Service) stdin(ctx context.Context, input *StdinInput, output *Output) error {
	if input.Var == "" {
		return types.NewArgsError("read.stdin requires var")
	}
	session := execution.SessionOf(ctx)
	prompt := input.Prompt
	if prompt == "" {
		prompt = input.Var
	}
	var text string
	var err error
	if file, ok := session.Stdin.(*os.File); ok && s.prompt != nil && isTerminal(file) {
		text, err = s.prompt(prompt, input.Secret)
	} else {
		text, err = readLine(session.Stdin)
	}
	if err != nil {
		return types.NewIoError("failed to read stdin", err)
	}
	result := value.String(text)
	if input.Secret {
		result = result.AsSecret()
	}
	execution.VarsOf(ctx).SetGlobal(input.Var, result)
	output.Value = result.Display()
	return nil
}

func (s *Service) cmd(ctx context.Context, input *CmdInput, output *Output) error {
	if input.Cmd == "" || input.Var == "" {
		return types.NewArgsError("read.cmd requires cmd and var")
	}
	session := execution.SessionOf(ctx)
	space := execution.VarsOf(ctx)
	display := execution.Display(ctx, "cmd", input.Cmd)
	stdout, code, err := s.runner.Run(ctx, input.Cmd, space.Environ(), session.WorkDir)
	if err != nil {
		if ctx.Err() != nil {
			return types.NewCancelledError(ctx.Err())
		}
		return types.NewIoError(fmt.Sprintf("failed to run %s", display), err)
	}
	if code != 0 {
		return types.NewOsCmdError(display, code, session.WorkDir)
	}
	result := value.String(strings.TrimSpace(stdout))
	if execution.Secret(ctx, "cmd") {
		result = result.AsSecret()
	}
	space.SetGlobal(input.Var, result)
	output.Value = result.Display()
	return nil
}

func readLine(r io.Reader) (string, error) {
	if r == nil {
		return "", io.EOF
	}
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func isTerminal(file *os.File) bool {
	info, err := file.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

func terminalPrompt(title string, secret bool) (string, error) {
	var text string
	field := huh.NewInput().Title(title).Value(&text)
	if secret {
		field = field.EchoMode(huh.EchoModePassword)
	}
	if err := field.Run(); err != nil {
		return "", err
	}
	return text, nil
}

// New returns a read service using runner for read.cmd.
func New(fs afs.Service, runner shell.Runner) *Service {
	if fs == nil {
		fs = afs.New()
	}
	if runner == nil {
		runner = &shell.LocalRunner{}
	}
	return &Service{fs: fs, runner: runner, prompt: terminalPrompt}
}
