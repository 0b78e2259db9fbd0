package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/gxl/extension"
	"github.com/viant/gxl/model/ast"
	"github.com/viant/gxl/model/types"
	"github.com/viant/gxl/model/value"
	"github.com/viant/gxl/model/vars"
	"github.com/viant/gxl/runtime/execution"
	"github.com/viant/gxl/service/action/echo"
	"github.com/viant/gxl/service/action/shell"
	"github.com/viant/gxl/service/action/shell/shelltest"
)

func TestService_Call(t *testing.T) {
	testCases := []struct {
		description string
		input       *Input
		dryRun      bool
		expectOut   string
		expectKind  types.Kind
		expectErr   bool
	}{
		{description: "default argument", input: &Input{Alias: "echo", Args: "hi"}, expectOut: "hi\n"},
		{description: "named arguments", input: &Input{Alias: "echo.print", Args: map[string]interface{}{"text": "named"}}, expectOut: "named\n"},
		{description: "unknown alias", input: &Input{Alias: "nope.x"}, expectErr: true, expectKind: types.KindArgs},
		{description: "self dispatch", input: &Input{Alias: "cmd.call"}, expectErr: true, expectKind: types.KindArgs},
		{description: "effect in dry run", input: &Input{Alias: "shell", Args: "ls"}, dryRun: true, expectErr: true, expectKind: types.KindDryRunNotSupported},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			actions := extension.NewActions(echo.New(), shell.New(shell.WithRunner(shelltest.New(nil))))
			actions.Register(New(actions))
			stdout := &bytes.Buffer{}
			session := execution.NewSession(execution.WithStdout(stdout), execution.WithDryRun(testCase.dryRun))
			ctx := execution.NewContext(context.Background(), session, vars.New(nil))
			err := New(actions).Call(ctx, testCase.input, &Output{})
			if testCase.expectErr {
				require.Error(t, err)
				assert.EqualValues(t, testCase.expectKind, types.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.EqualValues(t, testCase.expectOut, stdout.String())
		})
	}
}

func TestActions_EffectThroughAlias(t *testing.T) {
	actions := extension.NewActions(echo.New(), shell.New())
	service := New(actions)
	actions.Register(service)
	method, err := actions.ResolveName("cmd", "")
	require.NoError(t, err)
	testCases := []struct {
		description string
		args        []*ast.Arg
		expect      bool
	}{
		{description: "pure target", args: []*ast.Arg{{Value: value.String("echo")}}, expect: false},
		{description: "effect target", args: []*ast.Arg{{Name: "alias", Value: value.String("shell.run")}}, expect: true},
		{description: "dynamic alias", args: []*ast.Arg{{Value: value.String("${ACTION}")}}, expect: true},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			assert.EqualValues(t, testCase.expect, actions.Effect(method, &ast.Action{Service: "cmd", Args: testCase.args}))
		})
	}
}
