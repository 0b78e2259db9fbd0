package shell

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/gxl/model/task"
	"github.com/viant/gxl/model/types"
	"github.com/viant/gxl/model/value"
	"github.com/viant/gxl/model/vars"
	"github.com/viant/gxl/runtime/execution"
	"github.com/viant/gxl/service/action/shell/shelltest"
)

func TestService_Execute(t *testing.T) {
	OutDir = t.TempDir()
	workDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(workDir, "args.data.json"), []byte(`{"region":"us"}`), 0o644))

	testCases := []struct {
		description string
		input       *Input
		args        value.Object
		results     map[string]*shelltest.Result
		expectOut   string
		expectKind  types.Kind
		expectErr   string
		expectVars  map[string]string
	}{
		{description: "echo", input: &Input{Cmd: "echo hi"}, expectOut: "hi\n"},
		{description: "out var", input: &Input{Cmd: "echo  value ", OutVar: "OUT"}, expectOut: " value \n", expectVars: map[string]string{"OUT": "value"}},
		{description: "unexpected code", input: &Input{Cmd: "false"}, expectKind: types.KindOsCmd, expectErr: "false exited with 1"},
		{description: "expected code", input: &Input{Cmd: "false", Expect: []int{0, 1}}},
		{description: "masked command in error",
			input:      &Input{Cmd: "login s3cret"},
			args:       value.Object{"CMD": value.Derived("login s3cret", "login ***", true)},
			results:    map[string]*shelltest.Result{"login": {Code: 2}},
			expectKind: types.KindOsCmd, expectErr: "login *** exited with 2"},
		{description: "data arg file", input: &Input{Cmd: "echo ok", ArgFile: "args.data.json"}, expectOut: "ok\n", expectVars: map[string]string{"REGION": "us"}},
		{description: "sudo", input: &Input{Cmd: "whoami", Sudo: true}, results: map[string]*shelltest.Result{"sudo whoami": {Stdout: "root\n"}}, expectOut: "root\n"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			runner := shelltest.New(testCase.results)
			service := New(WithRunner(runner))
			stdout := &bytes.Buffer{}
			session := execution.NewSession(execution.WithStdout(stdout), execution.WithWorkDir(workDir))
			space := vars.New(nil)
			action := task.NewAction("shell")
			ctx := execution.NewContext(context.Background(), session, space).WithAction(action).WithArgs(testCase.args)
			output := &Output{}
			err := service.Execute(ctx, testCase.input, output)
			if testCase.expectErr != "" {
				require.Error(t, err)
				assert.EqualValues(t, testCase.expectKind, types.KindOf(err))
				assert.Contains(t, err.Error(), testCase.expectErr)
				return
			}
			require.NoError(t, err)
			assert.EqualValues(t, testCase.expectOut, action.Stdout)
			assert.EqualValues(t, testCase.expectOut, stdout.String())
			for k, v := range testCase.expectVars {
				actual, ok := space.Lookup(k)
				require.True(t, ok, k)
				assert.EqualValues(t, v, actual.Raw())
			}
		})
	}
	data, err := os.ReadFile(OutFile("OUT"))
	require.NoError(t, err)
	assert.EqualValues(t, "value", string(data))
}

func TestService_EnvironmentCarriesRawSecrets(t *testing.T) {
	runner := shelltest.New(nil)
	space := vars.New(value.Object{"SEC_DB_PASS": value.SecretString("s3cret")})
	space.SetGlobal("X", value.SecretString("s3cret"))
	session := execution.NewSession(execution.WithStdout(&bytes.Buffer{}))
	action := task.NewAction("shell")
	ctx := execution.NewContext(context.Background(), session, space).WithAction(action)
	require.NoError(t, New(WithRunner(runner)).Execute(ctx, &Input{Cmd: "printenv X"}, &Output{}))
	assert.EqualValues(t, "s3cret", runner.Calls[0].Env["X"])
	assert.EqualValues(t, "s3cret\n", action.Stdout)
}

func TestService_Quiet(t *testing.T) {
	stdout := &bytes.Buffer{}
	session := execution.NewSession(execution.WithStdout(stdout), execution.WithQuiet(true))
	action := task.NewAction("shell")
	ctx := execution.NewContext(context.Background(), session, vars.New(nil)).WithAction(action)
	require.NoError(t, New(WithRunner(shelltest.New(nil))).Execute(ctx, &Input{Cmd: "echo hi"}, &Output{}))
	assert.EqualValues(t, "", stdout.String())
	assert.EqualValues(t, "hi\n", action.Stdout)
}
