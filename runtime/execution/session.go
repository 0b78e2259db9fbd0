package execution

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/viant/gxl/model/task"
	"github.com/viant/gxl/model/vars"
	"github.com/viant/gxl/service/transaction"
	"go.uber.org/zap"
)

// Engine re-enters the workflow engine for a sub run.
type Engine interface {
	SubRun(ctx context.Context, request *SubRun) (*task.Job, error)
}

// SubRun describes a nested engine invocation.
type SubRun struct {
	Local   string
	Conf    string
	Envs    []string
	Flows   []string
	Isolate bool
	Scope   string
	// Vars is the shared space when not isolated; it is mutated in place.
	Vars *vars.Space
}

// Session holds run-wide settings and collaborators shared by every action of a run.
type Session struct {
	ID           string
	WorkDir      string
	DryRun       bool
	Quiet        bool
	Stdout       io.Writer
	Stdin        io.Reader
	Transactions *transaction.Manager
	Engine       Engine
	Logger       *zap.SugaredLogger
	mu           sync.Mutex
}

// Print writes text to session stdout and appends it to the current action record.
func (s *Session) Print(ctx context.Context, text string) {
	if action := ContextValue[*task.Action](ctx); action != nil {
		s.mu.Lock()
		action.Stdout += text
		s.mu.Unlock()
	}
	if s.Stdout != nil {
		_, _ = io.WriteString(s.Stdout, text)
	}
}

// Capture appends child output to the current action record; it is echoed unless quiet.
func (s *Session) Capture(ctx context.Context, text string, quiet bool) {
	if action := ContextValue[*task.Action](ctx); action != nil {
		s.mu.Lock()
		action.Stdout += text
		s.mu.Unlock()
	}
	if s.Quiet || quiet || s.Stdout == nil {
		return
	}
	_, _ = io.WriteString(s.Stdout, text)
}

// Hold registers a compensating step with the open transaction, if any.
func (s *Session) Hold(hold transaction.Hold) bool {
	if s.Transactions == nil {
		return false
	}
	return s.Transactions.Register(hold)
}

// Path resolves a relative location against the session working directory.
func (s *Session) Path(location string) string {
	if location == "" || strings.HasPrefix(location, "/") || strings.Contains(location, "://") || s.WorkDir == "" {
		return location
	}
	if strings.Contains(s.WorkDir, "://") {
		return strings.TrimRight(s.WorkDir, "/") + "/" + strings.TrimPrefix(location, "./")
	}
	return filepath.Join(s.WorkDir, location)
}

// Child returns a session for a sub run in workDir sharing the stream and transaction settings.
func (s *Session) Child(workDir string, isolate bool) *Session {
	ret := &Session{
		ID:           s.ID,
		WorkDir:      workDir,
		DryRun:       s.DryRun,
		Quiet:        s.Quiet,
		Stdout:       s.Stdout,
		Stdin:        s.Stdin,
		Transactions: s.Transactions,
		Engine:       s.Engine,
		Logger:       s.Logger,
	}
	if isolate {
		ret.Transactions = transaction.New(s.Logger)
	}
	return ret
}

// NewSession creates a session with defaults applied.
func NewSession(opts ...Option) *Session {
	ret := &Session{
		Stdout: os.Stdout,
		Stdin:  os.Stdin,
		Logger: zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.WorkDir == "" {
		ret.WorkDir, _ = os.Getwd()
	}
	if ret.Transactions == nil {
		ret.Transactions = transaction.New(ret.Logger)
	}
	return ret
}
