package assembler

import (
	"fmt"
	"strings"

	"github.com/viant/gxl/model/ast"
	"github.com/viant/gxl/model/types"
	"go.uber.org/zap"
)

// Service folds mixes and links flow references of a parsed compilation unit.
type Service struct {
	logger *zap.SugaredLogger
}

// Assemble builds an assembled space from parsed files; the first file is the entry unit.
func (s *Service) Assemble(files ...*ast.File) (*ast.Space, error) {
	modules, err := s.collect(files)
	if err != nil {
		return nil, err
	}
	return s.assemble(modules)
}

// AssembleSpace re-assembles a space; an assembled space is returned unchanged.
func (s *Service) AssembleSpace(space *ast.Space) (*ast.Space, error) {
	if space.Assembled {
		return space, nil
	}
	return s.assemble(space.Modules)
}

func (s *Service) collect(files []*ast.File) ([]*ast.Module, error) {
	var modules []*ast.Module
	index := map[string]int{}
	for _, file := range files {
		for _, module := range file.Modules {
			key := strings.ToLower(module.Name)
			pos, ok := index[key]
			if !ok {
				index[key] = len(modules)
				modules = append(modules, module)
				continue
			}
			existing := modules[pos]
			switch {
			case !existing.Extern && !module.Extern:
				return nil, &types.Error{Kind: types.KindParse, Message: fmt.Sprintf("duplicate module %s at %v", module.Name, module.Pos)}
			case existing.Extern && !module.Extern:
				s.logger.Warnw("local module shadows extern", "module", module.Name, "extern", existing.Pos.String())
				modules[pos] = module
			default:
				s.logger.Warnw("extern module ignored, name already defined", "module", module.Name, "at", module.Pos.String())
			}
		}
	}
	return modules, nil
}

func (s *Service) assemble(modules []*ast.Module) (*ast.Space, error) {
	f := &folder{logger: s.logger, sources: map[string]*ast.Module{}, folded: map[string]*ast.Module{}, visiting: map[string]bool{}}
	for _, module := range modules {
		f.sources[strings.ToLower(module.Name)] = module
	}
	space := &ast.Space{}
	for _, module := range modules {
		folded, err := f.module(module.Name)
		if err != nil {
			return nil, err
		}
		space.Modules = append(space.Modules, folded)
	}
	for _, module := range space.Modules {
		if err := link(space, module); err != nil {
			return nil, err
		}
	}
	space.Assembled = true
	return space, nil
}

// folder performs mix resolution with memoization; mixes are folded left to right, later entries win.
type folder struct {
	logger   *zap.SugaredLogger
	sources  map[string]*ast.Module
	folded   map[string]*ast.Module
	visiting map[string]bool
	stack    []string
}

func (f *folder) module(name string) (*ast.Module, error) {
	key := strings.ToLower(name)
	if ret, ok := f.folded[key]; ok {
		return ret, nil
	}
	source, ok := f.sources[key]
	if !ok {
		return nil, types.NewAssembleMissError(name)
	}
	if f.visiting[key] {
		return nil, types.NewCycleError(append(append([]string{}, f.stack...), name))
	}
	f.visiting[key] = true
	f.stack = append(f.stack, name)
	defer func() {
		f.visiting[key] = false
		f.stack = f.stack[:len(f.stack)-1]
	}()

	ret := &ast.Module{
		Name:        source.Name,
		Mixes:       source.Mixes,
		Annotations: source.Annotations,
		Pos:         source.Pos,
		Extern:      source.Extern,
		Entry:       append([]*ast.FlowRef{}, source.Entry...),
		Exit:        append([]*ast.FlowRef{}, source.Exit...),
	}
	var props []*ast.Var
	var envs []*ast.Env
	var flows []*ast.Flow
	for _, mix := range source.Mixes {
		target, err := f.module(mix)
		if err != nil {
			return nil, err
		}
		props = mergeProps(f.logger, ret.Name, props, target.Props)
		envs = f.mergeEnvs(ret.Name, envs, target.Envs)
		flows = f.mergeFlows(ret.Name, flows, target.Flows)
	}
	props = mergeProps(f.logger, ret.Name, props, source.Props)
	envs = f.mergeEnvs(ret.Name, envs, source.Envs)
	flows = f.mergeFlows(ret.Name, flows, source.Flows)
	ret.Props = props
	ret.Flows = flows
	folded, err := f.foldEnvs(ret.Name, envs)
	if err != nil {
		return nil, err
	}
	ret.Envs = folded
	if ann := ret.Annotations.Lookup(ast.AnnotationAutoLoad); ann != nil {
		if ref, ok := ann.RefArg("flow", 0); ok && !containsRef(ret.Entry, ref) {
			ret.Entry = append(ret.Entry, ref)
		}
	}
	f.folded[key] = ret
	return ret, nil
}

func containsRef(refs []*ast.FlowRef, ref *ast.FlowRef) bool {
	for _, candidate := range refs {
		if strings.EqualFold(candidate.String(), ref.String()) {
			return true
		}
	}
	return false
}

// mergeProps keeps the order of first appearance; a later value replaces an earlier one.
func mergeProps(logger *zap.SugaredLogger, owner string, base, override []*ast.Var) []*ast.Var {
	ret := append([]*ast.Var{}, base...)
	for _, prop := range override {
		replaced := false
		for i, existing := range ret {
			if strings.EqualFold(existing.Name, prop.Name) {
				if existing.Pos != prop.Pos {
					warnOverride(logger, owner, "prop", prop.Name, existing.Pos, prop.Pos)
				}
				ret[i] = prop
				replaced = true
				break
			}
		}
		if !replaced {
			ret = append(ret, prop)
		}
	}
	return ret
}

func (f *folder) mergeEnvs(module string, base, override []*ast.Env) []*ast.Env {
	ret := append([]*ast.Env{}, base...)
	for _, env := range override {
		copied := *env
		copied.Module = module
		replaced := false
		for i, existing := range ret {
			if strings.EqualFold(existing.Name, env.Name) {
				if existing.Pos != env.Pos {
					warnOverride(f.logger, module, "env", env.Name, existing.Pos, env.Pos)
				}
				ret[i] = &copied
				replaced = true
				break
			}
		}
		if !replaced {
			ret = append(ret, &copied)
		}
	}
	return ret
}

func (f *folder) mergeFlows(module string, base, override []*ast.Flow) []*ast.Flow {
	ret := append([]*ast.Flow{}, base...)
	for _, flow := range override {
		copied := *flow
		copied.Module = module
		replaced := false
		for i, existing := range ret {
			if !strings.EqualFold(existing.Name, flow.Name) {
				continue
			}
			prevUndo, hadUndo := existing.Undo()
			nextUndo, hasUndo := flow.Undo()
			if hadUndo && (!hasUndo || !strings.EqualFold(prevUndo.String(), nextUndo.String())) {
				f.logger.Warnw("conflicting transaction, last declaration wins",
					"flow", module+"."+flow.Name, "previous", existing.Pos.String(), "winner", flow.Pos.String())
			}
			if existing.Pos != flow.Pos {
				warnOverride(f.logger, module, "flow", flow.Name, existing.Pos, flow.Pos)
			}
			ret[i] = &copied
			replaced = true
			break
		}
		if !replaced {
			ret = append(ret, &copied)
		}
	}
	return ret
}

// warnOverride reports a declaration replaced by a later mix or by the module itself.
func warnOverride(logger *zap.SugaredLogger, owner, kind, name string, previous, winner ast.Pos) {
	logger.Warnw("override", "module", owner, "kind", kind, "name", name, "previous", previous.String(), "winner", winner.String())
}

// foldEnvs resolves env mixes within the folded module; a mix may be env or module.env.
func (f *folder) foldEnvs(module string, envs []*ast.Env) ([]*ast.Env, error) {
	done := map[string]*ast.Env{}
	visiting := map[string]bool{}
	var resolve func(env *ast.Env, trail []string) (*ast.Env, error)
	resolve = func(env *ast.Env, trail []string) (*ast.Env, error) {
		key := strings.ToLower(env.Path())
		if ret, ok := done[key]; ok {
			return ret, nil
		}
		if visiting[key] {
			return nil, types.NewCycleError(append(trail, env.Path()))
		}
		visiting[key] = true
		defer delete(visiting, key)
		var props []*ast.Var
		for _, mix := range env.Mixes {
			target, err := f.lookupEnv(module, envs, mix)
			if err != nil {
				return nil, err
			}
			if strings.EqualFold(target.Module, module) {
				if target, err = resolve(target, append(trail, env.Path())); err != nil {
					return nil, err
				}
			}
			props = mergeProps(f.logger, env.Path(), props, target.Props)
		}
		ret := *env
		ret.Props = mergeProps(f.logger, env.Path(), props, env.Props)
		done[key] = &ret
		return &ret, nil
	}
	ret := make([]*ast.Env, 0, len(envs))
	for _, env := range envs {
		folded, err := resolve(env, nil)
		if err != nil {
			return nil, err
		}
		ret = append(ret, folded)
	}
	return ret, nil
}

func (f *folder) lookupEnv(module string, envs []*ast.Env, mix string) (*ast.Env, error) {
	if idx := strings.LastIndex(mix, "."); idx != -1 && !strings.EqualFold(mix[:idx], module) {
		other, err := f.module(mix[:idx])
		if err != nil {
			return nil, err
		}
		if env := other.Env(mix[idx+1:]); env != nil {
			return env, nil
		}
		return nil, types.NewAssembleMissError(mix)
	} else if idx != -1 {
		mix = mix[idx+1:]
	}
	for _, env := range envs {
		if strings.EqualFold(env.Name, mix) {
			return env, nil
		}
	}
	return nil, types.NewAssembleMissError(module + "." + mix)
}

// link qualifies pre, post, entry and exit references and validates every flow reference.
func link(space *ast.Space, module *ast.Module) error {
	var err error
	if module.Entry, err = qualify(space, module.Name, module.Entry); err != nil {
		return err
	}
	if module.Exit, err = qualify(space, module.Name, module.Exit); err != nil {
		return err
	}
	for i, flow := range module.Flows {
		copied := *flow
		if copied.Pre, err = qualify(space, module.Name, flow.Pre); err != nil {
			return err
		}
		if copied.Post, err = qualify(space, module.Name, flow.Post); err != nil {
			return err
		}
		if ref, ok := flow.Undo(); ok {
			if err = resolve(space, module.Name, ref); err != nil {
				return err
			}
		}
		if ref, ok := flow.DryRun(); ok {
			if err = resolve(space, module.Name, ref); err != nil {
				return err
			}
		}
		ast.Walk(flow.Body, func(node ast.Node) bool {
			if err != nil {
				return false
			}
			err = linkNode(space, module.Name, node)
			return err == nil
		})
		if err != nil {
			return err
		}
		module.Flows[i] = &copied
	}
	return nil
}

func linkNode(space *ast.Space, module string, node ast.Node) error {
	var annotations ast.Annotations
	switch actual := node.(type) {
	case *ast.CallFlow:
		if err := resolve(space, module, actual.Ref); err != nil {
			return err
		}
		annotations = actual.Annotations
	case *ast.Action:
		annotations = actual.Annotations
	case *ast.SetVar:
		annotations = actual.Annotations
	}
	if ref, ok := annotations.DryRun(); ok {
		return resolve(space, module, ref)
	}
	return nil
}

func qualify(space *ast.Space, module string, refs []*ast.FlowRef) ([]*ast.FlowRef, error) {
	if refs == nil {
		return nil, nil
	}
	ret := make([]*ast.FlowRef, len(refs))
	for i, ref := range refs {
		qualified := ref.Qualified(module)
		if space.Flow(qualified) == nil {
			return nil, types.NewAssembleMissError(qualified.String())
		}
		ret[i] = qualified
	}
	return ret, nil
}

func resolve(space *ast.Space, module string, ref *ast.FlowRef) error {
	qualified := ref.Qualified(module)
	if space.Flow(qualified) == nil {
		return types.NewAssembleMissError(qualified.String())
	}
	return nil
}

// New creates an assembler.
func New(opts ...Option) *Service {
	ret := &Service{logger: zap.NewNop().Sugar()}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}
