package ast

import (
	"strings"

	"github.com/viant/gxl/model/value"
)

// Recognized annotations; others are kept verbatim and ignored.
const (
	AnnotationUsage       = "usage"
	AnnotationTask        = "task"
	AnnotationDryRun      = "dryrun"
	AnnotationAutoLoad    = "auto_load"
	AnnotationTransaction = "transaction"
)

// Arg is a positional (empty Name) or named argument.
type Arg struct {
	Name  string
	Value value.Value
	Pos   Pos
}

// Annotation is an @name(args) tag.
type Annotation struct {
	Name string
	Args []*Arg
	Pos  Pos
}

// Recognized reports whether the tag has engine semantics.
func (a *Annotation) Recognized() bool {
	switch strings.ToLower(a.Name) {
	case AnnotationUsage, AnnotationTask, AnnotationDryRun, AnnotationAutoLoad, AnnotationTransaction:
		return true
	}
	return false
}

// Arg returns the argument by name, falling back to position index among unnamed arguments.
func (a *Annotation) Arg(name string, index int) (value.Value, bool) {
	for _, arg := range a.Args {
		if strings.EqualFold(arg.Name, name) {
			return arg.Value, true
		}
	}
	position := 0
	for _, arg := range a.Args {
		if arg.Name != "" {
			continue
		}
		if position == index {
			return arg.Value, true
		}
		position++
	}
	return value.Value{}, false
}

// RefArg returns a flow reference argument.
func (a *Annotation) RefArg(name string, index int) (*FlowRef, bool) {
	v, ok := a.Arg(name, index)
	if !ok || v.Raw() == "" {
		return nil, false
	}
	return ParseFlowRef(v.Raw(), a.Pos), true
}

// Annotations is an ordered annotation list.
type Annotations []*Annotation

// Lookup returns the last annotation with name.
func (a Annotations) Lookup(name string) *Annotation {
	for i := len(a) - 1; i >= 0; i-- {
		if strings.EqualFold(a[i].Name, name) {
			return a[i]
		}
	}
	return nil
}

// DryRun returns the @dryrun flow reference.
func (a Annotations) DryRun() (*FlowRef, bool) {
	ann := a.Lookup(AnnotationDryRun)
	if ann == nil {
		return nil, false
	}
	return ann.RefArg("flow", 0)
}

// Merge returns base annotations overridden by tags of the same name in override.
func (a Annotations) Merge(override Annotations) Annotations {
	var ret Annotations
	for _, ann := range a {
		if override.Lookup(ann.Name) == nil {
			ret = append(ret, ann)
		}
	}
	return append(ret, override...)
}
