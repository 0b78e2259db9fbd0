package assert

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/gxl/model/types"
	"github.com/viant/gxl/model/value"
	"github.com/viant/gxl/model/vars"
	"github.com/viant/gxl/runtime/execution"
)

func TestService_Check(t *testing.T) {
	testCases := []struct {
		description string
		input       *Input
		expectErr   string
		expectKind  types.Kind
	}{
		{description: "bool true", input: &Input{Cond: true}},
		{description: "bool false with msg", input: &Input{Cond: false, Msg: "no match"}, expectErr: "no match", expectKind: types.KindCheck},
		{description: "expression", input: &Input{Cond: "10 > 9 && \"a\" != \"b\""}},
		{description: "expression false", input: &Input{Cond: `"x" == "y"`}, expectKind: types.KindCheck, expectErr: "assertion failed"},
		{description: "unparsable condition", input: &Input{Cond: `bob == "alice"`}, expectKind: types.KindArgs, expectErr: "invalid condition"},
		{description: "value expect", input: &Input{Value: "3", Expect: int64(3)}},
		{description: "value mismatch", input: &Input{Value: "v1", Expect: "v2"}, expectKind: types.KindCheck, expectErr: "v1 != v2"},
		{description: "missing", input: &Input{}, expectKind: types.KindArgs, expectErr: "requires cond"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			ctx := execution.NewContext(context.Background(), execution.NewSession(), vars.New(value.Object{}))
			output := &Output{}
			err := New().check(ctx, testCase.input, output)
			if testCase.expectErr != "" {
				require.Error(t, err)
				assert.EqualValues(t, testCase.expectKind, types.KindOf(err))
				assert.Contains(t, err.Error(), testCase.expectErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, output.Passed)
		})
	}
}

func TestService_CheckSource(t *testing.T) {
	testCases := []struct {
		description string
		vars        value.Object
		cond        string
		msg         value.Value
		expectErr   string
		expectKind  types.Kind
	}{
		{
			description: "unquoted string var mismatch",
			vars:        value.Object{"NAME": value.String("bob")},
			cond:        `${name} == "alice"`,
			expectKind:  types.KindCheck,
			expectErr:   "assertion failed",
		},
		{
			description: "unquoted string var match",
			vars:        value.Object{"NAME": value.String("alice")},
			cond:        `${name} == "alice"`,
		},
		{
			description: "numeric var",
			vars:        value.Object{"COUNT": value.Int(3)},
			cond:        `${count} >= 2 && ${count} < 4`,
		},
		{
			description: "secret message masked",
			vars:        value.Object{"TOKEN": value.SecretString("t0p")},
			cond:        `${token} == "other"`,
			msg:         value.Derived("bad token t0p", "bad token ***", true),
			expectKind:  types.KindCheck,
			expectErr:   "bad token ***",
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			space := vars.New(testCase.vars)
			expanded := value.Object{value.Key("cond"): value.String(testCase.cond)}
			input := &Input{Cond: testCase.cond}
			if !testCase.msg.IsNull() {
				expanded.Set("msg", testCase.msg)
				input.Msg = testCase.msg.Raw()
			}
			ctx := execution.NewContext(context.Background(), execution.NewSession(), space).
				WithArgs(expanded).
				WithSource(value.Object{value.Key("cond"): value.String(testCase.cond)})
			err := New().check(ctx, input, &Output{})
			if testCase.expectErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.EqualValues(t, testCase.expectKind, types.KindOf(err))
			assert.Contains(t, err.Error(), testCase.expectErr)
			assert.NotContains(t, err.Error(), "t0p")
		})
	}
}
