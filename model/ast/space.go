package ast

import "strings"

// Space is the assembled, read-only module namespace.
type Space struct {
	Modules   []*Module
	Assembled bool
}

// Module returns the named module.
func (s *Space) Module(name string) *Module {
	for _, module := range s.Modules {
		if strings.EqualFold(module.Name, name) {
			return module
		}
	}
	return nil
}

// Flow resolves a qualified flow reference.
func (s *Space) Flow(ref *FlowRef) *Flow {
	module := s.Module(ref.Module)
	if module == nil {
		return nil
	}
	return module.Flow(ref.Name)
}

// Env returns module.env.
func (s *Space) Env(module, name string) *Env {
	m := s.Module(module)
	if m == nil {
		return nil
	}
	return m.Env(name)
}

// Flows returns every flow in module order.
func (s *Space) Flows() []*Flow {
	var ret []*Flow
	for _, module := range s.Modules {
		ret = append(ret, module.Flows...)
	}
	return ret
}
