package executor

import (
	"strings"

	"github.com/viant/gxl/model/ast"
	"github.com/viant/gxl/model/types"
	"github.com/viant/gxl/service/sequencer"
)

// Prescan reports the first effect-bearing action reachable from units that has no @dryrun substitute.
func (s *Service) Prescan(space *ast.Space, units []*sequencer.Unit) error {
	scan := &prescan{service: s, space: space, visited: map[string]bool{}}
	for _, unit := range units {
		if unit.Role != sequencer.RoleFlow {
			continue
		}
		if err := scan.flow(unit.Flow); err != nil {
			return err
		}
	}
	return nil
}

type prescan struct {
	service *Service
	space   *ast.Space
	visited map[string]bool
}

func (p *prescan) flow(flow *ast.Flow) error {
	key := strings.ToUpper(flow.Path())
	if p.visited[key] {
		return nil
	}
	p.visited[key] = true
	if ref, ok := flow.DryRun(); ok {
		return p.ref(flow, ref)
	}
	var err error
	ast.Walk(flow.Body, func(node ast.Node) bool {
		if err != nil {
			return false
		}
		switch actual := node.(type) {
		case *ast.Action:
			err = p.action(flow, actual)
		case *ast.CallFlow:
			err = p.ref(flow, actual.Ref)
		}
		return err == nil
	})
	return err
}

func (p *prescan) ref(from *ast.Flow, ref *ast.FlowRef) error {
	qualified := ref.Qualified(from.Module)
	target := p.space.Flow(qualified)
	if target == nil {
		return types.WithLocation(types.NewAssembleMissError(qualified.String()), from.Path(), "")
	}
	return p.flow(target)
}

func (p *prescan) action(flow *ast.Flow, node *ast.Action) error {
	if ref, ok := node.Annotations.DryRun(); ok {
		return p.ref(flow, ref)
	}
	method, err := p.service.actions.Resolve(node)
	if err != nil {
		return types.WithLocation(err, flow.Path(), node.Name())
	}
	if p.service.actions.Effect(method, node) {
		return types.WithLocation(types.NewDryRunNotSupportedError(node.Name()), flow.Path(), node.Name())
	}
	return nil
}
