package ast

import (
	"fmt"
	"strings"

	"github.com/viant/gxl/model/value"
)

// Pos is a source coordinate.
type Pos struct {
	File   string `json:",omitempty"`
	Line   int    `json:",omitempty"`
	Column int    `json:",omitempty"`
}

func (p Pos) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// File is a parsed compilation unit.
type File struct {
	Name    string
	Externs []*ExternRef
	Modules []*Module
}

// ExternRef references modules defined outside of the current file.
type ExternRef struct {
	Names []string
	// Props holds path, git, branch, ...
	Props []*Var
	Pos   Pos
}

// Prop returns the raw literal of a named property.
func (e *ExternRef) Prop(name string) (string, bool) {
	for _, prop := range e.Props {
		if strings.EqualFold(prop.Name, name) {
			return prop.Value.Raw(), true
		}
	}
	return "", false
}

// Var is a name/value declaration; string values may contain ${...} references.
type Var struct {
	Name  string
	Value value.Value
	Pos   Pos
}

// Module groups props, envs and flows.
type Module struct {
	Name        string
	Mixes       []string
	Props       []*Var
	Envs        []*Env
	Flows       []*Flow
	Entry       []*FlowRef
	Exit        []*FlowRef
	Annotations Annotations
	Pos         Pos
	// Extern is set for modules loaded through an extern reference.
	Extern bool
}

// Env returns the named env.
func (m *Module) Env(name string) *Env {
	for _, env := range m.Envs {
		if strings.EqualFold(env.Name, name) {
			return env
		}
	}
	return nil
}

// Flow returns the named flow.
func (m *Module) Flow(name string) *Flow {
	for _, flow := range m.Flows {
		if strings.EqualFold(flow.Name, name) {
			return flow
		}
	}
	return nil
}

// Env is a named set of props.
type Env struct {
	Module      string
	Name        string
	Mixes       []string
	Props       []*Var
	Annotations Annotations
	Pos         Pos
}

// Path returns module.env.
func (e *Env) Path() string {
	return e.Module + "." + e.Name
}

// Flow is a named sequence of nodes with pre/post dependencies.
type Flow struct {
	Module      string
	Name        string
	Pre         []*FlowRef
	Post        []*FlowRef
	Body        []Node
	Annotations Annotations
	Pos         Pos
}

// Path returns module.flow.
func (f *Flow) Path() string {
	return f.Module + "." + f.Name
}

// Undo returns the undo flow of a transactional flow.
func (f *Flow) Undo() (*FlowRef, bool) {
	ann := f.Annotations.Lookup(AnnotationTransaction)
	if ann == nil {
		return nil, false
	}
	ref, ok := ann.RefArg("undo", 0)
	return ref, ok
}

// DryRun returns the flow substituted for this flow in dry-run.
func (f *Flow) DryRun() (*FlowRef, bool) {
	return f.Annotations.DryRun()
}

// TaskName returns the @task name, or the flow path.
func (f *Flow) TaskName() string {
	if ann := f.Annotations.Lookup(AnnotationTask); ann != nil {
		if v, ok := ann.Arg("name", 0); ok {
			return v.Raw()
		}
	}
	return f.Path()
}

// Usage returns @usage description and color.
func (f *Flow) Usage() (desp, color string, ok bool) {
	ann := f.Annotations.Lookup(AnnotationUsage)
	if ann == nil {
		return "", "", false
	}
	if v, has := ann.Arg("desp", 0); has {
		desp = v.Raw()
	}
	if v, has := ann.Arg("color", 1); has {
		color = v.Raw()
	}
	return desp, color, true
}

// FlowRef references a flow as module.name or name (within the current module).
type FlowRef struct {
	Module string
	Name   string
	Pos    Pos
}

// ParseFlowRef parses "module.name" or "name".
func ParseFlowRef(text string, pos Pos) *FlowRef {
	text = strings.TrimSpace(text)
	if idx := strings.LastIndex(text, "."); idx != -1 {
		return &FlowRef{Module: text[:idx], Name: text[idx+1:], Pos: pos}
	}
	return &FlowRef{Name: text, Pos: pos}
}

func (r *FlowRef) String() string {
	if r.Module == "" {
		return r.Name
	}
	return r.Module + "." + r.Name
}

// Qualified returns a copy bound to module when unqualified.
func (r *FlowRef) Qualified(module string) *FlowRef {
	ret := *r
	if ret.Module == "" {
		ret.Module = module
	}
	return &ret
}
