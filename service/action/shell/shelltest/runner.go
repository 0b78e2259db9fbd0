// Package shelltest provides a scripted shell runner for tests.
package shelltest

import (
	"context"
	"strings"
	"sync"
)

// Call records one command run.
type Call struct {
	Cmd string
	Env map[string]string
	Dir string
}

// Result scripts the outcome of commands with a given prefix.
type Result struct {
	Stdout string
	Code   int
	Err    error
}

// Runner records calls and answers from scripted results; unscripted `echo x` prints x.
type Runner struct {
	mu      sync.Mutex
	Calls   []*Call
	Results map[string]*Result
}

func (r *Runner) Run(ctx context.Context, cmd string, env map[string]string, dir string) (string, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls = append(r.Calls, &Call{Cmd: cmd, Env: env, Dir: dir})
	if err := ctx.Err(); err != nil {
		return "", -1, err
	}
	for prefix, result := range r.Results {
		if strings.HasPrefix(cmd, prefix) {
			return result.Stdout, result.Code, result.Err
		}
	}
	switch {
	case strings.HasPrefix(cmd, "echo "):
		return strings.Trim(strings.TrimPrefix(cmd, "echo "), `"'`) + "\n", 0, nil
	case strings.HasPrefix(cmd, "printenv "):
		if v, ok := env[strings.TrimSpace(strings.TrimPrefix(cmd, "printenv "))]; ok {
			return v + "\n", 0, nil
		}
		return "", 1, nil
	case cmd == "false":
		return "", 1, nil
	}
	return "", 0, nil
}

// Commands returns the recorded command lines.
func (r *Runner) Commands() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ret := make([]string, len(r.Calls))
	for i, call := range r.Calls {
		ret[i] = call.Cmd
	}
	return ret
}

// New creates a runner with scripted results keyed by command prefix.
func New(results map[string]*Result) *Runner {
	if results == nil {
		results = map[string]*Result{}
	}
	return &Runner{Results: results}
}
