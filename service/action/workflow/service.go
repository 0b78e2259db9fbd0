// Package workflow implements the run action that re-enters the engine for a sub run.
package workflow

import (
	"context"
	"reflect"
	"strings"

	"github.com/viant/gxl/model/task"
	"github.com/viant/gxl/model/types"
	"github.com/viant/gxl/model/value"
	"github.com/viant/gxl/runtime/execution"
)

const name = "run"

// Service starts nested runs through the session engine
type Service struct{}

type RunInput struct {
	Local   string      `json:"local,omitempty" description:"working directory of the sub run"`
	Env     interface{} `json:"env,omitempty" description:"env name, comma separated names or a list"`
	Flow    interface{} `json:"flow,omitempty" description:"flow name, comma separated names or a list"`
	Isolate bool        `json:"isolate,omitempty" description:"start from the inherited variables only"`
	Conf    string      `json:"conf,omitempty" description:"entry file relative to local"`
	Scope   string      `json:"scope,omitempty" description:"named variable scope for a shared run"`
}

type RunOutput struct {
	Job *task.Job `json:"job,omitempty"`
}

// NestedJob exposes the sub run record.
func (o *RunOutput) NestedJob() *task.Job { return o.Job }

// New creates a run service
func New() *Service {
	return &Service{}
}

// Name returns the service name
func (s *Service) Name() string {
	return name
}

func (s *Service) DefaultMethod() string {
	return "flow"
}

// Methods returns the service methods
func (s *Service) Methods() types.Signatures {
	return []types.Signature{
		{
			Name:        "flow",
			Description: "Runs flows of another project directory, sharing or isolating variables.",
			Input:       reflect.TypeOf(&RunInput{}),
			Output:      reflect.TypeOf(&RunOutput{}),
			Default:     "local",
			Effect:      true,
		},
	}
}

// Method returns the specified method
func (s *Service) Method(name string) (types.Executable, error) {
	switch strings.ToLower(name) {
	case "flow":
		return s.run, nil
	default:
		return nil, types.NewMethodNotFoundError(name)
	}
}

func (s *Service) run(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*RunInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*RunOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	return s.Run(ctx, input, output)
}

// Run re-enters the engine; the inner job is kept on output even when the sub run fails.
func (s *Service) Run(ctx context.Context, input *RunInput, output *RunOutput) error {
	session := execution.SessionOf(ctx)
	if session == nil || session.Engine == nil {
		return types.NewBugError("run: no engine bound to session")
	}
	flows := names(input.Flow)
	if len(flows) == 0 {
		return types.NewArgsError("run requires flow")
	}
	local := input.Local
	if local == "" {
		local = "."
	}
	request := &execution.SubRun{
		Local:   session.Path(local),
		Conf:    input.Conf,
		Envs:    names(input.Env),
		Flows:   flows,
		Isolate: input.Isolate,
		Scope:   input.Scope,
	}
	if !input.Isolate {
		request.Vars = execution.VarsOf(ctx)
	}
	session.Logger.Infow("sub run", "local", request.Local, "envs", request.Envs, "flows", request.Flows, "isolate", request.Isolate)
	job, err := session.Engine.SubRun(ctx, request)
	output.Job = job
	return err
}

func names(v interface{}) []string {
	var ret []string
	for _, item := range value.From(v).Strings() {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				ret = append(ret, part)
			}
		}
	}
	return ret
}
