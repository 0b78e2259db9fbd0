package tpl

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/gxl/model/types"
	"github.com/viant/gxl/model/value"
	"github.com/viant/gxl/model/vars"
	"github.com/viant/gxl/runtime/execution"
)

func TestService_Render(t *testing.T) {
	testCases := []struct {
		description string
		template    string
		data        map[string]interface{}
		previous    string
		expect      string
		expectKind  types.Kind
	}{
		{description: "var space", template: "host={{host}} port={{PORT}}", expect: "host=localhost port=8080"},
		{description: "explicit data", template: "{{#each items}}[{{this}}]{{/each}}", data: map[string]interface{}{"items": []interface{}{"a", "b"}}, expect: "[a][b]"},
		{description: "overwrite", template: "v2", previous: "v1", expect: "v2"},
		{description: "bad template", template: "{{#each items}}x", expectKind: types.KindTpl},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, "conf.tpl"), []byte(testCase.template), 0o644))
			dst := filepath.Join(dir, "out", "conf")
			if testCase.previous != "" {
				require.NoError(t, os.MkdirAll(filepath.Dir(dst), 0o755))
				require.NoError(t, os.WriteFile(dst, []byte(testCase.previous), 0o644))
			}
			space := vars.New(nil)
			space.SetGlobal("host", value.String("localhost"))
			space.SetGlobal("port", value.Int(8080))
			session := execution.NewSession(execution.WithWorkDir(dir), execution.WithStdout(&bytes.Buffer{}))
			tx := session.Transactions.Begin("test")
			ctx := execution.NewContext(context.Background(), session, space)

			err := New(nil).Render(ctx, &Input{Src: "conf.tpl", Dst: "out/conf", Data: testCase.data}, &Output{})
			if testCase.expectKind != 0 {
				require.Error(t, err)
				assert.EqualValues(t, testCase.expectKind, types.KindOf(err))
				return
			}
			require.NoError(t, err)
			data, err := os.ReadFile(dst)
			require.NoError(t, err)
			assert.EqualValues(t, testCase.expect, string(data))

			require.Len(t, tx.Holds(), 1)
			assert.Empty(t, session.Transactions.Rollback(ctx, tx))
			restored, err := os.ReadFile(dst)
			if testCase.previous == "" {
				assert.True(t, os.IsNotExist(err))
				return
			}
			require.NoError(t, err)
			assert.EqualValues(t, testCase.previous, string(restored))
		})
	}
}

func TestGenerateDiff(t *testing.T) {
	diff, err := GenerateDiff([]byte("a\nb\n"), []byte("a\nc\nd\n"), "f.txt", 3)
	require.NoError(t, err)
	assert.Contains(t, diff.Patch, "+c")
	assert.EqualValues(t, 1, diff.Stats.Hunks)
	_, err = GenerateDiff([]byte("x"), []byte("x"), "f", 3)
	assert.ErrorIs(t, err, ErrNoChange)
}
