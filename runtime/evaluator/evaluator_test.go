package evaluator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/gxl/model/ast"
	"github.com/viant/gxl/model/types"
	"github.com/viant/gxl/model/value"
	"github.com/viant/gxl/model/vars"
)

func TestEvaluate(t *testing.T) {
	space := vars.New(nil)
	space.Set("os", value.String("macos"))
	space.Set("count", value.Int(10))
	space.Set("ver", value.String("9"))
	space.Set("flag", value.Bool(true))
	space.Set("ip", value.String("10.0.0.2"))

	str := value.String
	testCases := []struct {
		description string
		cond        ast.Condition
		expect      bool
		kind        types.Kind
	}{
		{description: "string eq", cond: &ast.Compare{Op: ast.OpEq, Left: str("${os}"), Right: str("macos")}, expect: true},
		{description: "string ne", cond: &ast.Compare{Op: ast.OpNe, Left: str("${os}"), Right: str("linux")}, expect: true},
		{description: "numeric not lexical", cond: &ast.Compare{Op: ast.OpGt, Left: str("${count}"), Right: str("${ver}")}, expect: true},
		{description: "numeric le", cond: &ast.Compare{Op: ast.OpLe, Left: value.Int(3), Right: str("3")}, expect: true},
		{description: "fuzzy", cond: &ast.Compare{Op: ast.OpFuzzy, Left: str("${os}"), Right: str("MAC*")}, expect: true},
		{description: "fuzzy miss", cond: &ast.Compare{Op: ast.OpFuzzy, Left: str("${os}"), Right: str("lin*")}, expect: false},
		{description: "ip order", cond: &ast.Compare{Op: ast.OpLt, Left: str("10.0.0.1"), Right: str("${ip}")}, expect: true},
		{description: "truth", cond: &ast.Truth{Value: str("${flag}")}, expect: true},
		{description: "not", cond: &ast.Not{Cond: &ast.Truth{Value: str("${flag}")}}, expect: false},
		{description: "and short circuit", cond: &ast.Logic{Op: ast.OpAnd, Left: &ast.Truth{Value: value.Bool(false)}, Right: &ast.Truth{Value: str("${missing}")}}, expect: false},
		{description: "or", cond: &ast.Logic{Op: ast.OpOr, Left: &ast.Truth{Value: value.Bool(false)}, Right: &ast.Truth{Value: value.Bool(true)}}, expect: true},
		{description: "missing var", cond: &ast.Truth{Value: str("${missing}")}, kind: types.KindNoVal},
		{description: "bool order", cond: &ast.Compare{Op: ast.OpLt, Left: value.Bool(true), Right: value.Bool(false)}, kind: types.KindArgs},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			actual, err := Evaluate(testCase.cond, space)
			if testCase.kind != types.KindBug {
				assert.EqualValues(t, testCase.kind, types.KindOf(err))
				return
			}
			assert.NoError(t, err)
			assert.EqualValues(t, testCase.expect, actual)
		})
	}
}
