package ast

import "github.com/viant/gxl/model/value"

// Comparison and logic operators.
const (
	OpEq    = "=="
	OpNe    = "!="
	OpLt    = "<"
	OpLe    = "<="
	OpGt    = ">"
	OpGe    = ">="
	OpFuzzy = "=*"
	OpAnd   = "&&"
	OpOr    = "||"
)

// Condition is a logic tree over value atoms.
type Condition interface {
	condition()
}

// Compare compares two atoms.
type Compare struct {
	Op    string
	Left  value.Value
	Right value.Value
}

// Logic combines two conditions with && or ||.
type Logic struct {
	Op    string
	Left  Condition
	Right Condition
}

// Not negates a condition.
type Not struct {
	Cond Condition
}

// Truth tests the truthiness of a single atom.
type Truth struct {
	Value value.Value
}

func (*Compare) condition() {}
func (*Logic) condition()   {}
func (*Not) condition()     {}
func (*Truth) condition()   {}
