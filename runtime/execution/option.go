package execution

import (
	"io"

	"github.com/viant/gxl/service/transaction"
	"go.uber.org/zap"
)

type Option func(session *Session)

// WithID sets the run ID
func WithID(id string) Option {
	return func(session *Session) {
		session.ID = id
	}
}

// WithWorkDir sets the working directory
func WithWorkDir(dir string) Option {
	return func(session *Session) {
		session.WorkDir = dir
	}
}

// WithDryRun enables dry-run semantics
func WithDryRun(dryRun bool) Option {
	return func(session *Session) {
		session.DryRun = dryRun
	}
}

// WithQuiet suppresses child process output
func WithQuiet(quiet bool) Option {
	return func(session *Session) {
		session.Quiet = quiet
	}
}

// WithStdout sets the output stream
func WithStdout(w io.Writer) Option {
	return func(session *Session) {
		session.Stdout = w
	}
}

// WithStdin sets the input stream
func WithStdin(r io.Reader) Option {
	return func(session *Session) {
		session.Stdin = r
	}
}

// WithTransactions shares a transaction manager
func WithTransactions(manager *transaction.Manager) Option {
	return func(session *Session) {
		session.Transactions = manager
	}
}

// WithEngine sets the sub run engine
func WithEngine(engine Engine) Option {
	return func(session *Session) {
		session.Engine = engine
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(session *Session) {
		session.Logger = logger
	}
}
