package sequencer

import (
	"errors"
	"strings"

	"github.com/dominikbraun/graph"
	"github.com/viant/gxl/model/ast"
	"github.com/viant/gxl/model/types"
	"go.uber.org/zap"
)

// DefaultModule hosts flows referenced without module.
const DefaultModule = "main"

// envModules is the fallback lookup order for unqualified env names after the target module.
var envModules = []string{DefaultModule, "env", "envs"}

// Service linearizes env setup and flow dependencies into run units.
type Service struct {
	logger *zap.SugaredLogger
}

// Sequence emits setup units for envs followed by the units of each target flow.
func (s *Service) Sequence(space *ast.Space, envs []string, flows ...string) ([]*Unit, error) {
	if !space.Assembled {
		return nil, types.NewBugError("space is not assembled")
	}
	targets := make([]*ast.Flow, 0, len(flows))
	for _, name := range flows {
		flow, err := ResolveFlow(space, name)
		if err != nil {
			return nil, err
		}
		targets = append(targets, flow)
	}
	module := DefaultModule
	if len(targets) > 0 {
		module = targets[0].Module
	}
	seq := newSequence(space)
	for _, name := range envs {
		env, err := ResolveEnv(space, module, name)
		if err != nil {
			return nil, err
		}
		seq.emit(&Unit{Role: RoleSetup, Env: env, Module: space.Module(env.Module)})
	}
	for _, flow := range targets {
		if err := seq.target(flow); err != nil {
			return nil, err
		}
	}
	s.logger.Debugw("sequenced", "units", seq.names())
	return seq.units, nil
}

// ResolveFlow resolves module.flow, or flow within main then within the first module declaring it.
func ResolveFlow(space *ast.Space, name string) (*ast.Flow, error) {
	ref := ast.ParseFlowRef(name, ast.Pos{})
	if ref.Module != "" {
		if flow := space.Flow(ref); flow != nil {
			return flow, nil
		}
		return nil, types.NewAssembleMissError(ref.String())
	}
	if flow := space.Flow(ref.Qualified(DefaultModule)); flow != nil {
		return flow, nil
	}
	for _, module := range space.Modules {
		if flow := module.Flow(ref.Name); flow != nil {
			return flow, nil
		}
	}
	return nil, types.NewAssembleMissError(ref.Qualified(DefaultModule).String())
}

// ResolveEnv looks an env up as module.E, main.E, env.E then envs.E; first match wins.
func ResolveEnv(space *ast.Space, module, name string) (*ast.Env, error) {
	if idx := strings.LastIndex(name, "."); idx != -1 {
		if env := space.Env(name[:idx], name[idx+1:]); env != nil {
			return env, nil
		}
		return nil, types.NewArgsError("env %s not found", name)
	}
	for _, candidate := range append([]string{module}, envModules...) {
		if env := space.Env(candidate, name); env != nil {
			return env, nil
		}
	}
	return nil, types.NewArgsError("env %s not found", name)
}

type sequence struct {
	space   *ast.Space
	units   []*Unit
	emitted map[string]bool
	deps    graph.Graph[string, string]
	current string
}

func newSequence(space *ast.Space) *sequence {
	return &sequence{
		space:   space,
		emitted: map[string]bool{},
		deps:    graph.New(graph.StringHash, graph.Directed(), graph.PreventCycles()),
	}
}

func (s *sequence) emit(unit *Unit) {
	key := unit.Key()
	if s.emitted[key] {
		return
	}
	s.emitted[key] = true
	s.units = append(s.units, unit)
}

func (s *sequence) target(flow *ast.Flow) error {
	module := s.space.Module(flow.Module)
	s.current = strings.ToUpper(module.Name)
	for _, ref := range module.Entry {
		if err := s.expandRef(ref, StageEntry); err != nil {
			return err
		}
	}
	s.emit(&Unit{Role: RoleModProp, Module: module})
	if err := s.expand(flow, StageMain); err != nil {
		return err
	}
	for _, ref := range module.Exit {
		if err := s.expandRef(ref, StageExit); err != nil {
			return err
		}
	}
	return nil
}

func (s *sequence) expandRef(ref *ast.FlowRef, stage Stage) error {
	flow := s.space.Flow(ref)
	if flow == nil {
		return types.NewAssembleMissError(ref.String())
	}
	return s.expand(flow, stage)
}

// expand emits pre flows (recursively), the flow, then post flows.
func (s *sequence) expand(flow *ast.Flow, stage Stage) error {
	if s.emitted[(&Unit{Role: RoleFlow, Flow: flow}).Key()] {
		return nil
	}
	for _, ref := range flow.Pre {
		if err := s.depend(flow, ref); err != nil {
			return err
		}
		if err := s.expandRef(ref, StagePre); err != nil {
			return err
		}
	}
	if module := strings.ToUpper(flow.Module); module != s.current {
		s.emit(&Unit{Role: RoleModProp, Module: s.space.Module(flow.Module)})
	}
	s.emit(&Unit{Role: RoleFlow, Stage: stage, Module: s.space.Module(flow.Module), Flow: flow})
	for _, ref := range flow.Post {
		if err := s.depend(flow, ref); err != nil {
			return err
		}
		if err := s.expandRef(ref, StagePost); err != nil {
			return err
		}
	}
	return nil
}

// depend records flow -> ref; an edge closing a loop is reported with the cycle path.
func (s *sequence) depend(flow *ast.Flow, ref *ast.FlowRef) error {
	from := strings.ToLower(flow.Path())
	to := strings.ToLower(ref.String())
	if from == to {
		return types.NewCycleError([]string{from, to})
	}
	for _, vertex := range []string{from, to} {
		if err := s.deps.AddVertex(vertex); err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
			return types.NewBugError("dependency graph: %v", err)
		}
	}
	err := s.deps.AddEdge(from, to)
	switch {
	case err == nil, errors.Is(err, graph.ErrEdgeAlreadyExists):
		return nil
	case errors.Is(err, graph.ErrEdgeCreatesCycle):
		path, pathErr := graph.ShortestPath(s.deps, to, from)
		if pathErr != nil {
			return types.NewCycleError([]string{from, to, from})
		}
		return types.NewCycleError(append(path, to))
	}
	return types.NewBugError("dependency graph: %v", err)
}

func (s *sequence) names() []string {
	ret := make([]string, len(s.units))
	for i, unit := range s.units {
		ret[i] = unit.String()
	}
	return ret
}

// New creates a sequencer.
func New(opts ...Option) *Service {
	ret := &Service{logger: zap.NewNop().Sugar()}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}
