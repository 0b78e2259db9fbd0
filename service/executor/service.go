package executor

import (
	"context"
	"errors"

	"github.com/viant/gxl/extension"
	"github.com/viant/gxl/model/ast"
	"github.com/viant/gxl/model/task"
	"github.com/viant/gxl/model/types"
	"github.com/viant/gxl/model/value"
	"github.com/viant/gxl/model/vars"
	"github.com/viant/gxl/progress"
	"github.com/viant/gxl/runtime/evaluator"
	"github.com/viant/gxl/runtime/execution"
	"github.com/viant/gxl/runtime/expander"
	"github.com/viant/gxl/service/sequencer"
	"github.com/viant/gxl/service/transaction"
	"github.com/viant/gxl/tracing"
	"go.uber.org/zap"
)

// MaxCallDepth bounds nested call statements.
const MaxCallDepth = 64

// Listener is invoked once an action completes, whether it failed or not.
type Listener func(node *ast.Action, input, output interface{}, err error)

// Run is one execution of a unit list.
type Run struct {
	Space   *ast.Space
	Units   []*sequencer.Unit
	Session *execution.Session
	Vars    *vars.Space
	Job     *task.Job
}

// Service executes sequenced units.
type Service struct {
	actions  *extension.Actions
	listener Listener
	logger   *zap.SugaredLogger
}

// frame is the state of one flow invocation.
type frame struct {
	run   *Run
	job   *task.Job
	flow  *ast.Flow
	task  *task.Task
	depth int
}

// Execute runs every unit in order and stops at the first error. In dry-run the whole unit list
// is checked for unsupported effects before anything runs.
func (s *Service) Execute(ctx context.Context, run *Run) error {
	if run.Session.DryRun {
		if err := s.Prescan(run.Space, run.Units); err != nil {
			return err
		}
	}
	progress.UpdateCtx(ctx, progress.Delta{Total: len(run.Units)})
	for i, unit := range run.Units {
		if err := ctx.Err(); err != nil {
			progress.UpdateCtx(ctx, progress.Delta{Skipped: len(run.Units) - i})
			return types.NewCancelledError(err)
		}
		progress.UpdateCtx(ctx, progress.Delta{Running: 1})
		if err := s.unit(ctx, run, unit); err != nil {
			progress.UpdateCtx(ctx, progress.Delta{Running: -1, Failed: 1, Skipped: len(run.Units) - i - 1})
			return err
		}
		progress.UpdateCtx(ctx, progress.Delta{Running: -1, Completed: 1})
	}
	return nil
}

func (s *Service) unit(ctx context.Context, run *Run, unit *sequencer.Unit) (err error) {
	ctx, span := tracing.StartSpan(ctx, unit.String())
	defer func() { tracing.EndSpan(span, err) }()
	s.logger.Debugw("unit", "unit", unit.String())
	switch unit.Role {
	case sequencer.RoleSetup, sequencer.RoleModProp:
		return s.export(run, unit)
	}
	return s.flow(ctx, &frame{run: run, job: run.Job}, unit.Flow)
}

// export writes props one at a time so later props can reference earlier ones.
func (s *Service) export(run *Run, unit *sequencer.Unit) error {
	prefix := unit.Prefix()
	for _, prop := range unit.Props() {
		v, err := expander.ExpandValue(prop.Value, run.Vars)
		if err != nil {
			return types.WithLocation(err, unit.Name(), prop.Name)
		}
		run.Vars.Export(prefix, value.Object{value.Key(prop.Name): v})
	}
	return nil
}

func (s *Service) flow(ctx context.Context, parent *frame, flow *ast.Flow) error {
	session := parent.run.Session
	if session.DryRun {
		if ref, ok := flow.DryRun(); ok {
			s.logger.Infow("dry-run substitution", "flow", flow.Path(), "with", ref.Qualified(flow.Module).String())
			return s.call(ctx, parent, flow, ref.Qualified(flow.Module))
		}
	}
	if parent.depth >= MaxCallDepth {
		return types.WithLocation(types.NewArgsError("call depth exceeds %d", MaxCallDepth), flow.Path(), "")
	}
	record := task.NewTask(flow.TaskName(), flow.Path())
	parent.job.Append(task.TaskOutcome(record))
	current := &frame{run: parent.run, job: parent.job, flow: flow, task: record, depth: parent.depth + 1}

	var tx *transaction.Transaction
	var rollback *task.Job
	if undo, ok := flow.Undo(); ok {
		undoRef := undo.Qualified(flow.Module)
		rollback = task.NewJob(session.ID, "rollback")
		tx = session.Transactions.Begin(flow.Path())
		session.Transactions.Register(transaction.NewHold("flow "+undoRef.String(), func(ctx context.Context) error {
			return s.call(ctx, &frame{run: parent.run, job: rollback, flow: flow, depth: current.depth}, flow, undoRef)
		}))
	}

	err := s.nodes(ctx, current, flow.Body)
	if tx != nil {
		if err == nil {
			session.Transactions.Commit(tx)
		} else {
			rollback.Start()
			s.logger.Warnw("rolling back", "flow", flow.Path(), "error", err)
			undoErrs := session.Transactions.Rollback(ctx, tx)
			rollback.Finish(errors.Join(undoErrs...))
			parent.job.Append(task.JobOutcome(rollback))
		}
	}
	record.Finish(err)
	return err
}

func (s *Service) call(ctx context.Context, f *frame, from *ast.Flow, ref *ast.FlowRef) error {
	target := f.run.Space.Flow(ref)
	if target == nil {
		return types.WithLocation(types.NewAssembleMissError(ref.String()), from.Path(), "call")
	}
	return s.flow(ctx, f, target)
}

func (s *Service) nodes(ctx context.Context, f *frame, nodes []ast.Node) error {
	space := f.run.Vars
	for _, node := range nodes {
		if err := ctx.Err(); err != nil {
			return types.NewCancelledError(err)
		}
		var err error
		switch actual := node.(type) {
		case *ast.SetVar:
			var v value.Value
			if v, err = expander.ExpandValue(actual.Value, space); err == nil {
				space.Set(actual.Name, v)
			}
			err = types.WithLocation(err, f.flow.Path(), actual.Name)
		case *ast.Action:
			err = s.action(ctx, f, actual)
		case *ast.CallFlow:
			err = s.call(ctx, f, f.flow, actual.Ref.Qualified(f.flow.Module))
		case *ast.If:
			var ok bool
			if ok, err = evaluator.Evaluate(actual.Cond, space); err != nil {
				err = types.WithLocation(err, f.flow.Path(), "if")
			} else if ok {
				err = s.nodes(ctx, f, actual.Then)
			} else {
				err = s.nodes(ctx, f, actual.Else)
			}
		case *ast.For:
			err = s.loop(ctx, f, actual)
		default:
			err = types.NewBugError("unsupported node %T", node)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// loop binds the iterator for each item and restores the previous binding afterwards.
func (s *Service) loop(ctx context.Context, f *frame, node *ast.For) error {
	space := f.run.Vars
	items, err := expander.ExpandValue(node.In, space)
	if err != nil {
		return types.WithLocation(err, f.flow.Path(), "for "+node.Var)
	}
	previous, had := space.Lookup(node.Var)
	defer func() {
		if had {
			space.Set(node.Var, previous)
			return
		}
		space.Delete(node.Var)
	}()
	list := items.List
	if items.Kind != value.KindList {
		list = nil
		for _, item := range items.Strings() {
			list = append(list, value.String(item))
		}
	}
	for _, item := range list {
		space.Set(node.Var, item)
		if err := s.nodes(ctx, f, node.Body); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) action(ctx context.Context, f *frame, node *ast.Action) (err error) {
	run := f.run
	session := run.Session
	if session.DryRun {
		if ref, ok := node.Annotations.DryRun(); ok {
			return s.call(ctx, f, f.flow, ref.Qualified(f.flow.Module))
		}
	}
	record := task.NewAction(node.Name())
	f.task.Actions = append(f.task.Actions, record)
	defer func() {
		record.Finish(err)
		err = types.WithLocation(err, f.flow.Path(), node.Name())
	}()

	method, err := s.actions.Resolve(node)
	if err != nil {
		return err
	}
	if session.DryRun && s.actions.Effect(method, node) {
		return types.NewDryRunNotSupportedError(node.Name())
	}
	values := make([]value.Value, len(node.Args))
	sources := make([]value.Value, len(node.Args))
	for i, arg := range node.Args {
		sources[i] = arg.Value
		if values[i], err = expander.ExpandValue(arg.Value, run.Vars); err != nil {
			return err
		}
	}
	args, err := method.Args(node.Args, values)
	if err != nil {
		return err
	}
	source, _ := method.Args(node.Args, sources)
	input, output, err := method.Bind(args)
	if err != nil {
		return err
	}
	s.logger.Debugw("action", "flow", f.flow.Path(), "action", method.Name(), "args", display(args))

	clone := run.Vars.Clone()
	spanCtx, span := tracing.StartSpan(ctx, method.Name())
	execCtx := execution.NewContext(spanCtx, session, clone).WithAction(record).WithArgs(args).WithSource(source)
	err = method.Executable(execCtx, input, output)
	tracing.EndSpan(span, err)

	if carrier, ok := output.(task.JobCarrier); ok && carrier.NestedJob() != nil {
		f.job.Append(task.JobOutcome(carrier.NestedJob()))
	}
	if s.listener != nil {
		s.listener(node, input, output, err)
	}
	if err != nil {
		if ctx.Err() != nil && types.KindOf(err) != types.KindCancelled {
			return types.NewCancelledError(ctx.Err())
		}
		return err
	}
	run.Vars.Adopt(clone)
	return nil
}

func display(args value.Object) map[string]string {
	ret := make(map[string]string, len(args))
	for k, v := range args {
		ret[k] = v.Display()
	}
	return ret
}

// New creates an executor
func New(actions *extension.Actions, opts ...Option) *Service {
	ret := &Service{actions: actions, logger: zap.NewNop().Sugar()}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}
