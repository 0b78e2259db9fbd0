package ver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/gxl/model/types"
	"github.com/viant/gxl/model/vars"
	"github.com/viant/gxl/runtime/execution"
)

func TestVersion_Inc(t *testing.T) {
	testCases := []struct {
		description string
		text        string
		part        string
		expect      string
		expectErr   bool
	}{
		{description: "build", text: "1.2.3.4", part: Build, expect: "1.2.3.5"},
		{description: "bugfix resets build", text: "1.2.3.4", part: Bugfix, expect: "1.2.4.0"},
		{description: "feature", text: "v1.2.3", part: Feature, expect: "1.3.0.0"},
		{description: "main", text: "1.9.9.9", part: "MAIN", expect: "2.0.0.0"},
		{description: "empty", text: "", part: Build, expect: "0.0.0.1"},
		{description: "unknown part", text: "1.0", part: "patch", expectErr: true},
		{description: "invalid", text: "1.x", part: Build, expectErr: true},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			version, err := Parse(testCase.text)
			if err == nil {
				version, err = version.Inc(testCase.part)
			}
			if testCase.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.EqualValues(t, testCase.expect, version.String())
		})
	}
}

func TestService_Update(t *testing.T) {
	dir := t.TempDir()
	location := filepath.Join(dir, "version.txt")
	require.NoError(t, os.WriteFile(location, []byte("1.0.0.7\n"), 0o644))
	session := execution.NewSession(execution.WithWorkDir(dir))
	space := vars.New(nil)
	ctx := execution.NewContext(context.Background(), session, space)
	tx := session.Transactions.Begin("release")

	output := &Output{}
	service := New(afs.New())
	require.NoError(t, service.Update(ctx, &Input{Inc: Bugfix}, output))
	assert.EqualValues(t, "1.0.0.7", output.Previous)
	assert.EqualValues(t, "1.0.1.0", output.Version)
	exported, ok := space.Lookup(DefaultVar)
	require.True(t, ok)
	assert.EqualValues(t, "1.0.1.0", exported.Raw())

	assert.Empty(t, session.Transactions.Rollback(context.Background(), tx))
	data, err := os.ReadFile(location)
	require.NoError(t, err)
	assert.EqualValues(t, "1.0.0.7\n", string(data))

	err = service.Update(ctx, &Input{Inc: "major"}, &Output{})
	assert.EqualValues(t, types.KindArgs, types.KindOf(err))
}
