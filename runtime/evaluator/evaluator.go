package evaluator

import (
	"net"
	"regexp"
	"strings"

	"github.com/viant/gxl/model/ast"
	"github.com/viant/gxl/model/types"
	"github.com/viant/gxl/model/value"
	"github.com/viant/gxl/runtime/expander"
	"github.com/viant/toolbox"
)

// Evaluate evaluates a condition: atoms are substituted first, then compared by type.
func Evaluate(cond ast.Condition, vars expander.Lookup) (bool, error) {
	switch actual := cond.(type) {
	case *ast.Truth:
		v, err := expander.ExpandValue(actual.Value, vars)
		if err != nil {
			return false, err
		}
		return v.Truthy(), nil
	case *ast.Not:
		ok, err := Evaluate(actual.Cond, vars)
		return !ok, err
	case *ast.Logic:
		left, err := Evaluate(actual.Left, vars)
		if err != nil {
			return false, err
		}
		switch actual.Op {
		case ast.OpAnd:
			if !left {
				return false, nil
			}
		case ast.OpOr:
			if left {
				return true, nil
			}
		default:
			return false, types.NewBugError("unsupported logic operator %q", actual.Op)
		}
		return Evaluate(actual.Right, vars)
	case *ast.Compare:
		left, err := expander.ExpandValue(actual.Left, vars)
		if err != nil {
			return false, err
		}
		right, err := expander.ExpandValue(actual.Right, vars)
		if err != nil {
			return false, err
		}
		return Compare(actual.Op, left, right)
	case nil:
		return true, nil
	}
	return false, types.NewBugError("unsupported condition %T", cond)
}

// Compare applies op to two values: numbers compare numerically, bools and IPs by value,
// everything else as strings. =* is a case-insensitive wildcard match with right as pattern.
func Compare(op string, left, right value.Value) (bool, error) {
	if op == ast.OpFuzzy {
		return wildcard(right.Raw(), left.Raw()), nil
	}
	cmp, ordered := compare(left, right)
	switch op {
	case ast.OpEq:
		return cmp == 0, nil
	case ast.OpNe:
		return cmp != 0, nil
	}
	if !ordered {
		return false, types.NewArgsError("cannot order %s %s %s", left.Display(), op, right.Display())
	}
	switch op {
	case ast.OpLt:
		return cmp < 0, nil
	case ast.OpLe:
		return cmp <= 0, nil
	case ast.OpGt:
		return cmp > 0, nil
	case ast.OpGe:
		return cmp >= 0, nil
	}
	return false, types.NewBugError("unsupported operator %q", op)
}

func compare(left, right value.Value) (int, bool) {
	if isNumeric(left) && isNumeric(right) {
		l, _ := toolbox.ToFloat(left.Raw())
		r, _ := toolbox.ToFloat(right.Raw())
		switch {
		case l < r:
			return -1, true
		case l > r:
			return 1, true
		}
		return 0, true
	}
	if left.Kind == value.KindBool || right.Kind == value.KindBool {
		if toolbox.AsBoolean(left.Raw()) == toolbox.AsBoolean(right.Raw()) {
			return 0, false
		}
		return 1, false
	}
	if lIP, rIP := net.ParseIP(left.Raw()), net.ParseIP(right.Raw()); lIP != nil && rIP != nil {
		return compareBytes(lIP.To16(), rIP.To16()), true
	}
	return strings.Compare(left.Raw(), right.Raw()), true
}

func isNumeric(v value.Value) bool {
	switch v.Kind {
	case value.KindInt, value.KindFloat:
		return true
	case value.KindString:
		_, err := toolbox.ToFloat(strings.TrimSpace(v.Str))
		return err == nil && strings.TrimSpace(v.Str) != ""
	}
	return false
}

func compareBytes(l, r []byte) int {
	for i := range l {
		if l[i] != r[i] {
			if l[i] < r[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

func wildcard(pattern, text string) bool {
	expr := "(?is)^" + strings.ReplaceAll(strings.ReplaceAll(regexp.QuoteMeta(pattern), `\*`, ".*"), `\?`, ".") + "$"
	re, err := regexp.Compile(expr)
	if err != nil {
		return false
	}
	return re.MatchString(text)
}
