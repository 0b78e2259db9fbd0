package ast

import (
	"strings"

	"github.com/viant/gxl/model/value"
)

// Node is a flow body statement.
type Node interface {
	Position() Pos
}

// SetVar assigns a global variable.
type SetVar struct {
	Name        string
	Value       value.Value
	Annotations Annotations
	Pos         Pos
}

func (n *SetVar) Position() Pos { return n.Pos }

// Action calls a built-in action: service.method(args) or service(args).
type Action struct {
	Service     string
	Method      string
	Args        []*Arg
	Annotations Annotations
	Pos         Pos
}

func (n *Action) Position() Pos { return n.Pos }

// Name returns service or service.method.
func (n *Action) Name() string {
	if n.Method == "" {
		return n.Service
	}
	return n.Service + "." + n.Method
}

// Arg returns a named argument.
func (n *Action) Arg(name string) (*Arg, bool) {
	for _, arg := range n.Args {
		if strings.EqualFold(arg.Name, name) {
			return arg, true
		}
	}
	return nil, false
}

// CallFlow runs another flow inline.
type CallFlow struct {
	Ref         *FlowRef
	Annotations Annotations
	Pos         Pos
}

func (n *CallFlow) Position() Pos { return n.Pos }

// If runs Then when Cond holds, else Else.
type If struct {
	Cond Condition
	Then []Node
	Else []Node
	Pos  Pos
}

func (n *If) Position() Pos { return n.Pos }

// For binds Var to each item of In and runs Body.
type For struct {
	Var  string
	In   value.Value
	Body []Node
	Pos  Pos
}

func (n *For) Position() Pos { return n.Pos }

// Walk visits nodes depth-first; returning false skips children.
func Walk(nodes []Node, visit func(node Node) bool) {
	for _, node := range nodes {
		if !visit(node) {
			continue
		}
		switch actual := node.(type) {
		case *If:
			Walk(actual.Then, visit)
			Walk(actual.Else, visit)
		case *For:
			Walk(actual.Body, visit)
		}
	}
}
