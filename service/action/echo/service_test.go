package echo

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/gxl/model/task"
	"github.com/viant/gxl/model/value"
	"github.com/viant/gxl/model/vars"
	"github.com/viant/gxl/runtime/execution"
)

func TestService_Print(t *testing.T) {
	testCases := []struct {
		description string
		input       *Input
		args        value.Object
		expect      string
	}{
		{description: "plain", input: &Input{Text: "A"}, expect: "A\n"},
		{description: "secret masked", input: &Input{Text: "pw=s3cret"},
			args: value.Object{"TEXT": value.Derived("pw=s3cret", "pw=***", true)}, expect: "pw=***\n"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			stdout := &bytes.Buffer{}
			session := execution.NewSession(execution.WithStdout(stdout))
			action := task.NewAction("echo")
			ctx := execution.NewContext(context.Background(), session, vars.New(nil)).WithAction(action).WithArgs(testCase.args)
			executable, err := New().Method("print")
			require.NoError(t, err)
			require.NoError(t, executable(ctx, testCase.input, &Output{}))
			assert.EqualValues(t, testCase.expect, stdout.String())
			assert.EqualValues(t, testCase.expect, action.Stdout)
		})
	}
}
