package shell

import (
	"context"
	"fmt"
	"strings"

	"github.com/viant/gosh"
	"github.com/viant/gosh/runner"
	"github.com/viant/gosh/runner/local"
)

// Runner spawns a command in dir with env and returns its output and exit code.
type Runner interface {
	Run(ctx context.Context, cmd string, env map[string]string, dir string) (stdout string, code int, err error)
}

// LocalRunner runs commands in a fresh local gosh session per call.
type LocalRunner struct{}

func (r *LocalRunner) Run(ctx context.Context, cmd string, env map[string]string, dir string) (string, int, error) {
	var options []runner.Option
	if len(env) > 0 {
		options = append(options, runner.WithEnvironment(env))
	}
	service, err := gosh.New(ctx, local.New(options...))
	if err != nil {
		return "", -1, fmt.Errorf("failed to start shell: %w", err)
	}
	defer service.Close()
	if dir != "" {
		if _, code, err := service.Run(ctx, "cd "+quote(dir)); err != nil || code != 0 {
			return "", code, fmt.Errorf("failed to change directory %s: %v", dir, err)
		}
	}
	stdout, code, err := service.Run(ctx, cmd)
	if err != nil && ctx.Err() != nil {
		return stdout, code, ctx.Err()
	}
	return normalize(stdout), code, nil
}

// normalize terminates non empty output with a newline.
func normalize(stdout string) string {
	stdout = strings.ReplaceAll(stdout, "\r\n", "\n")
	if stdout != "" && !strings.HasSuffix(stdout, "\n") {
		stdout += "\n"
	}
	return stdout
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
