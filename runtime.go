package gxl

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/viant/gxl/internal/idgen"
	"github.com/viant/gxl/internal/logger"
	"github.com/viant/gxl/internal/secret"
	"github.com/viant/gxl/internal/sysinfo"
	"github.com/viant/gxl/model/ast"
	"github.com/viant/gxl/model/task"
	"github.com/viant/gxl/model/types"
	"github.com/viant/gxl/model/value"
	"github.com/viant/gxl/model/vars"
	"github.com/viant/gxl/progress"
	"github.com/viant/gxl/runtime/execution"
	"github.com/viant/gxl/service/dao/module"
	"github.com/viant/gxl/service/executor"
	"github.com/viant/gxl/tracing"
)

// DefaultConf is the entry file location relative to the working directory.
const DefaultConf = "_gal/work.gxl"

// Variables exported into the inherited layer of every run.
const (
	VarCmdArg    = "GXL_CMD_ARG"
	VarSecFile   = secret.PathEnv
	VarConfPath  = ConfPathEnv
	VarPrjRoot   = "GXL_PRJ_ROOT"
	VarStartRoot = "GXL_START_ROOT"
	VarCurDir    = "GXL_CUR_DIR"
	VarOsSys     = "GXL_OS_SYS"
)

// Request describes one engine invocation.
type Request struct {
	ID      string
	Conf    string
	Envs    []string
	Flows   []string
	WorkDir string
	DryRun  bool
	Quiet   bool
	// Args is the raw command line tail exported as GXL_CMD_ARG.
	Args []string
}

// Init applies defaults
func (r *Request) Init() {
	if r.ID == "" {
		r.ID = idgen.New()
	}
	if r.WorkDir == "" {
		r.WorkDir, _ = os.Getwd()
	}
	if r.Conf == "" {
		r.Conf = DefaultConf
	}
}

var osSys struct {
	once  sync.Once
	value string
}

// Load reads the entry file with its externs and assembles the module space.
func (s *Service) Load(ctx context.Context, URL string) (*ast.Space, error) {
	files, err := s.loader.Load(ctx, URL)
	if err != nil {
		return nil, err
	}
	return s.assembler.Assemble(files...)
}

// Flows returns the flows declared by the entry file and its externs.
func (s *Service) Flows(ctx context.Context, URL string) ([]*ast.Flow, error) {
	space, err := s.Load(ctx, URL)
	if err != nil {
		return nil, err
	}
	return space.Flows(), nil
}

// Run executes request.Flows under request.Envs. The returned job records every step, also on failure.
func (s *Service) Run(ctx context.Context, request *Request) (*task.Job, error) {
	request.Init()
	job := task.NewJob(request.ID, "gxl")
	conf := module.JoinURL(request.WorkDir, request.Conf)
	space, err := s.Load(ctx, conf)
	if err != nil {
		return s.finish(ctx, job, err)
	}
	units, err := s.sequencer.Sequence(space, request.Envs, request.Flows...)
	if err != nil {
		return s.finish(ctx, job, err)
	}
	session := execution.NewSession(
		execution.WithID(request.ID),
		execution.WithWorkDir(request.WorkDir),
		execution.WithDryRun(request.DryRun),
		execution.WithQuiet(request.Quiet),
		execution.WithStdout(s.stdout),
		execution.WithStdin(s.stdin),
		execution.WithEngine(s),
		execution.WithLogger(logger.Named(s.logger, "session")),
	)
	ctx, _ = progress.WithNewTracker(ctx, request.ID, request.Flows, nil)
	ctx, span := tracing.StartSpan(ctx, "gxl.run")
	s.logger.Infow("run", "id", request.ID, "conf", conf, "envs", request.Envs, "flows", request.Flows, "dryRun", request.DryRun)
	err = s.executor.Execute(ctx, &executor.Run{
		Space:   space,
		Units:   units,
		Session: session,
		Vars:    vars.New(s.Inherited(ctx, request, conf)),
		Job:     job,
	})
	tracing.EndSpan(span, err)
	return s.finish(ctx, job, err)
}

func (s *Service) finish(ctx context.Context, job *task.Job, err error) (*task.Job, error) {
	job.Finish(err)
	ctx = context.WithoutCancel(ctx)
	s.reporter.Report(ctx, job)
	if s.records != nil {
		if saveErr := s.records.Save(ctx, job); saveErr != nil {
			s.logger.Warnw("failed to save run record", "id", job.ID, "error", saveErr)
		}
	}
	return job, err
}

// SubRun re-enters the engine from a run action: it loads the project in sub.Local and executes its
// flows with the caller's session settings. A shared run mutates sub.Vars in place.
func (s *Service) SubRun(ctx context.Context, sub *execution.SubRun) (*task.Job, error) {
	parent := execution.SessionOf(ctx)
	if parent == nil {
		return nil, types.NewBugError("sub run outside of a session")
	}
	local := sub.Local
	if local == "" {
		local = "."
	}
	local = parent.Path(local)
	conf := sub.Conf
	if conf == "" {
		conf = DefaultConf
	}
	conf = module.JoinURL(local, conf)
	job := task.NewJob(parent.ID, "run "+strings.Join(sub.Flows, ","))

	space, err := s.Load(ctx, conf)
	if err != nil {
		job.Finish(err)
		return job, err
	}
	units, err := s.sequencer.Sequence(space, sub.Envs, sub.Flows...)
	if err != nil {
		job.Finish(err)
		return job, err
	}
	runVars := sub.Vars
	if sub.Isolate || runVars == nil {
		inherited := value.Object{}
		if current := execution.VarsOf(ctx); current != nil {
			inherited = current.Inherited().Clone()
		}
		inherited.Set(VarCurDir, value.String(local))
		runVars = vars.New(inherited)
	} else if sub.Scope != "" {
		previous := runVars.Enter(sub.Scope)
		defer runVars.Leave(previous)
	}
	s.logger.Debugw("sub run", "conf", conf, "envs", sub.Envs, "flows", sub.Flows, "isolate", sub.Isolate, "scope", sub.Scope)
	err = s.executor.Execute(ctx, &executor.Run{
		Space:   space,
		Units:   units,
		Session: parent.Child(local, sub.Isolate),
		Vars:    runVars,
		Job:     job,
	})
	job.Finish(err)
	return job, err
}

// Inherited builds the init layer: process environment, engine variables and SEC_ secrets.
func (s *Service) Inherited(ctx context.Context, request *Request, conf string) value.Object {
	ret := value.Object{}
	if s.environ != nil {
		for k, v := range s.environ {
			ret.Set(k, value.String(v))
		}
	} else {
		for _, pair := range os.Environ() {
			if k, v, ok := strings.Cut(pair, "="); ok && k != "" {
				ret.Set(k, value.String(v))
			}
		}
	}
	start := request.WorkDir
	if location, ok := ret.Get(VarStartRoot); ok && location.Raw() != "" {
		start = location.Raw()
	}
	confPath := DefaultConfigPath()
	if s.config.Source != "" {
		confPath = s.config.Source
	}
	ret.Set(VarCmdArg, value.String(strings.Join(request.Args, " ")))
	ret.Set(VarSecFile, value.String(s.secretFile))
	ret.Set(VarConfPath, value.String(confPath))
	ret.Set(VarPrjRoot, value.String(ProjectRoot(conf)))
	ret.Set(VarStartRoot, value.String(start))
	ret.Set(VarCurDir, value.String(request.WorkDir))
	osSys.once.Do(func() { osSys.value = sysinfo.Describe(ctx) })
	ret.Set(VarOsSys, value.String(osSys.value))

	secrets, err := secret.Load(ctx, s.fs, s.secretFile)
	if err != nil {
		s.logger.Warnw("secrets not loaded", "file", s.secretFile, "error", err)
		return ret
	}
	for k, v := range secrets {
		ret.Set(k, v)
	}
	return ret
}

// ProjectRoot returns the directory holding the _gal folder of conf, or the directory of conf.
func ProjectRoot(conf string) string {
	dir := filepath.Dir(conf)
	if filepath.Base(dir) == "_gal" {
		return filepath.Dir(dir)
	}
	return dir
}
