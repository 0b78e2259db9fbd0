package gxl

import (
	"io"

	"github.com/viant/afs"
	"github.com/viant/gxl/model/types"
	"github.com/viant/gxl/service/action/shell"
	"github.com/viant/gxl/service/dao/record"
	"github.com/viant/gxl/service/executor"
	"github.com/viant/gxl/service/report"
	"github.com/viant/gxl/tracing"
	"go.uber.org/zap"
)

// Option customises the engine.
type Option func(s *Service)

// WithConfig sets the engine configuration
func WithConfig(config *Config) Option {
	return func(s *Service) { s.config = config }
}

// WithLogger sets the root logger; components use named children.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithFileSystem sets the storage used for sources and file actions
func WithFileSystem(fs afs.Service) Option {
	return func(s *Service) { s.fs = fs }
}

// WithRunner sets the process runner used by shell and read.cmd
func WithRunner(runner shell.Runner) Option {
	return func(s *Service) { s.runner = runner }
}

// WithStdout sets the output stream
func WithStdout(w io.Writer) Option {
	return func(s *Service) { s.stdout = w }
}

// WithStdin sets the input stream
func WithStdin(r io.Reader) Option {
	return func(s *Service) { s.stdin = r }
}

// WithExtensionServices registers additional actions
func WithExtensionServices(services ...types.Service) Option {
	return func(s *Service) {
		s.extensionServices = append(s.extensionServices, services...)
	}
}

// WithRecordService persists run records
func WithRecordService(records record.Service) Option {
	return func(s *Service) { s.records = records }
}

// WithReportOptions passes options to the task report service
func WithReportOptions(opts ...report.Option) Option {
	return func(s *Service) {
		s.reportOptions = append(s.reportOptions, opts...)
	}
}

// WithExecutorOptions passes options to the executor
func WithExecutorOptions(opts ...executor.Option) Option {
	return func(s *Service) {
		s.executorOptions = append(s.executorOptions, opts...)
	}
}

// WithInherited replaces the process environment derived variables, mostly for tests.
func WithInherited(inherited map[string]string) Option {
	return func(s *Service) { s.environ = inherited }
}

// WithSecretFile sets the secret file location
func WithSecretFile(location string) Option {
	return func(s *Service) { s.secretFile = location }
}

// WithTracing writes spans to outputFile (stdout when empty). The first successful call wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		if err := tracing.Init(serviceName, serviceVersion, outputFile); err != nil {
			s.logger.Warnw("tracing disabled", "error", err)
		}
	}
}
