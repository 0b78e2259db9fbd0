package gxl

import (
	"context"
	"io"
	"os"

	"github.com/viant/afs"
	"github.com/viant/gxl/extension"
	"github.com/viant/gxl/internal/logger"
	"github.com/viant/gxl/internal/secret"
	"github.com/viant/gxl/model/types"
	"github.com/viant/gxl/service/action/archive"
	"github.com/viant/gxl/service/action/assert"
	"github.com/viant/gxl/service/action/cmd"
	"github.com/viant/gxl/service/action/download"
	"github.com/viant/gxl/service/action/echo"
	"github.com/viant/gxl/service/action/input"
	"github.com/viant/gxl/service/action/shell"
	"github.com/viant/gxl/service/action/tpl"
	"github.com/viant/gxl/service/action/vault"
	"github.com/viant/gxl/service/action/ver"
	"github.com/viant/gxl/service/action/workflow"
	"github.com/viant/gxl/service/assembler"
	"github.com/viant/gxl/service/dao/module"
	"github.com/viant/gxl/service/dao/record"
	recordfs "github.com/viant/gxl/service/dao/record/fs"
	"github.com/viant/gxl/service/executor"
	"github.com/viant/gxl/service/report"
	"github.com/viant/gxl/service/sequencer"
	"go.uber.org/zap"
)

// Service is the engine facade: load, assemble, sequence and execute.
type Service struct {
	config            *Config
	fs                afs.Service
	runner            shell.Runner
	stdout            io.Writer
	stdin             io.Reader
	logger            *zap.SugaredLogger
	actions           *extension.Actions
	loader            *module.Service
	assembler         *assembler.Service
	sequencer         *sequencer.Service
	executor          *executor.Service
	reporter          *report.Service
	records           record.Service
	extensionServices []types.Service
	executorOptions   []executor.Option
	reportOptions     []report.Option
	environ           map[string]string
	secretFile        string
}

// Actions returns the action registry
func (s *Service) Actions() *extension.Actions {
	return s.actions
}

func (s *Service) init(options []Option) error {
	for _, option := range options {
		option(s)
	}
	if s.config == nil {
		s.config = DefaultConfig()
	}
	if err := s.config.Validate(); err != nil {
		return err
	}
	if s.secretFile == "" {
		s.secretFile = secret.Path()
	}
	s.loader = module.New(module.WithFileSystem(s.fs), module.WithLogger(logger.Named(s.logger, "loader")))
	s.assembler = assembler.New(assembler.WithLogger(logger.Named(s.logger, "assembler")))
	s.sequencer = sequencer.New(sequencer.WithLogger(logger.Named(s.logger, "sequencer")))
	s.reporter = report.New(&s.config.TaskReport, append([]report.Option{report.WithLogger(logger.Named(s.logger, "report"))}, s.reportOptions...)...)
	if s.records == nil && s.config.Record.Dir != "" {
		records, err := recordfs.New(context.Background(), s.config.Record.Dir, logger.Named(s.logger, "record"))
		if err != nil {
			return err
		}
		s.records = records
	}

	s.actions = extension.NewActions()
	tar, untar := archive.New(s.fs)
	s.actions.Register(
		shell.New(shell.WithRunner(s.runner), shell.WithFileSystem(s.fs)),
		tpl.New(s.fs),
		input.New(s.fs, s.runner),
		echo.New(),
		assert.New(),
		tar, untar,
		download.New(download.WithFileSystem(s.fs)),
		workflow.New(),
		ver.New(s.fs),
		vault.New(s.fs),
	)
	s.actions.Register(cmd.New(s.actions))
	s.actions.Register(s.extensionServices...)
	s.executor = executor.New(s.actions, append([]executor.Option{executor.WithLogger(logger.Named(s.logger, "executor"))}, s.executorOptions...)...)
	return nil
}

// New creates an engine
func New(options ...Option) (*Service, error) {
	ret := &Service{
		fs:     afs.New(),
		runner: &shell.LocalRunner{},
		stdout: os.Stdout,
		stdin:  os.Stdin,
		logger: zap.NewNop().Sugar(),
	}
	if err := ret.init(options); err != nil {
		return nil, err
	}
	return ret, nil
}
