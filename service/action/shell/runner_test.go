package shell

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/gxl/model/task"
	"github.com/viant/gxl/model/types"
	"github.com/viant/gxl/model/value"
	"github.com/viant/gxl/model/vars"
	"github.com/viant/gxl/runtime/execution"
)

func TestLocalRunner_Execute(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("local runner requires a posix shell")
	}
	OutDir = t.TempDir()
	workDir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	testCases := []struct {
		description string
		input       *Input
		expectOut   string
		expectCode  int
		expectVars  map[string]string
	}{
		{description: "echo", input: &Input{Cmd: "echo hello"}, expectOut: "hello\n"},
		{description: "missing trailing newline", input: &Input{Cmd: "printf abc"}, expectOut: "abc\n"},
		{description: "work dir", input: &Input{Cmd: "pwd"}, expectOut: workDir + "\n"},
		{description: "environment", input: &Input{Cmd: "echo $GREETING"}, expectOut: "hi\n"},
		{description: "out var", input: &Input{Cmd: "echo '  v1 '", OutVar: "RESULT"}, expectOut: "  v1 \n", expectVars: map[string]string{"RESULT": "v1"}},
		{description: "unexpected exit code", input: &Input{Cmd: "false"}, expectCode: 1},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			stdout := &bytes.Buffer{}
			session := execution.NewSession(execution.WithStdout(stdout), execution.WithWorkDir(workDir))
			space := vars.New(nil)
			space.SetGlobal("GREETING", value.String("hi"))
			action := task.NewAction("shell")
			ctx := execution.NewContext(context.Background(), session, space).WithAction(action)
			err := New().Execute(ctx, testCase.input, &Output{})
			if testCase.expectCode != 0 {
				require.Error(t, err)
				var typed *types.Error
				require.True(t, errors.As(err, &typed))
				assert.EqualValues(t, types.KindOsCmd, typed.Kind)
				assert.EqualValues(t, testCase.expectCode, typed.Code)
				assert.EqualValues(t, workDir, typed.Dir)
				return
			}
			require.NoError(t, err)
			assert.EqualValues(t, testCase.expectOut, action.Stdout)
			for k, v := range testCase.expectVars {
				actual, ok := space.Lookup(k)
				require.True(t, ok, k)
				assert.EqualValues(t, v, actual.Raw())
				data, err := os.ReadFile(OutFile(k))
				require.NoError(t, err)
				assert.EqualValues(t, v, string(data))
			}
		})
	}
}
